package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"
	"time"

	"classtime/core/constants"
)

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// MemoryCache is a process-local Cache used when no Redis address is configured.
type MemoryCache struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		items: make(map[string]memoryItem),
		now:   time.Now,
	}
}

// get must be called with mu held.
func (m *MemoryCache) get(key string) ([]byte, bool) {
	item, ok := m.items[key]
	if !ok {
		return nil, false
	}
	if !item.expiresAt.IsZero() && !m.now().Before(item.expiresAt) {
		delete(m.items, key)
		return nil, false
	}
	return item.value, true
}

func (m *MemoryCache) set(key string, value []byte, ttl time.Duration) {
	item := memoryItem{value: value}
	if ttl > 0 {
		item.expiresAt = m.now().Add(ttl)
	}
	m.items[key] = item
}

func (m *MemoryCache) IsTokenBlacklisted(_ context.Context, token string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.get(tokenKey(constants.RedisKeyTokenBlacklist, token))
	return ok, nil
}

func (m *MemoryCache) AddToTokenBlacklist(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(tokenKey(constants.RedisKeyTokenBlacklist, token), []byte("1"), ttl)
	return nil
}

func (m *MemoryCache) IncrementLoginAttempt(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	attempts := 0
	if raw, ok := m.get(key); ok {
		attempts, _ = strconv.Atoi(string(raw))
	}
	m.set(key, []byte(strconv.Itoa(attempts+1)), constants.BlockDuration)
	return nil
}

func (m *MemoryCache) IsLoginBlocked(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.get(key)
	if !ok {
		return false, nil
	}
	attempts, _ := strconv.Atoi(string(raw))
	return attempts >= constants.MaxLoginAttempts, nil
}

func (m *MemoryCache) GetJSON(_ context.Context, key string, dest any) error {
	m.mu.Lock()
	raw, ok := m.get(key)
	m.mu.Unlock()
	if !ok {
		return ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *MemoryCache) SetJSON(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.set(key, data, ttl)
	return nil
}

func (m *MemoryCache) Expire(_ context.Context, key string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if raw, ok := m.get(key); ok {
		m.set(key, raw, ttl)
	}
	return nil
}

func (m *MemoryCache) Del(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *MemoryCache) Ping(context.Context) error { return nil }

func (m *MemoryCache) Close() error { return nil }
