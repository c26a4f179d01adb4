package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"classtime/core/cache"
	"classtime/core/config"
	"classtime/core/constants"
	"classtime/core/utils"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*echo.Echo, *Middleware, *cache.MemoryCache) {
	t.Helper()
	prev, _ := config.GetSafe()
	config.Set(&config.Config{JWT: config.JWTConfig{
		Secret: "test-secret", Issuer: "classtime", AccessTTL: time.Hour, RefreshTTL: 2 * time.Hour,
	}})
	t.Cleanup(func() { config.Set(prev) })

	mem := cache.NewMemoryCache()
	mw := NewMiddleware(mem, "admin-key")

	e := echo.New()
	e.GET("/private", func(c echo.Context) error {
		id, err := CurrentStudentID(c)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, map[string]int64{"student_id": id})
	}, mw.AuthMiddleware())
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, mw.AdminMiddleware())
	return e, mw, mem
}

func token(t *testing.T, scope string) string {
	t.Helper()
	tok, err := utils.GenerateToken(utils.TokenSubject{StudentID: 42, Nickname: "ann"}, scope)
	require.NoError(t, err)
	return tok
}

func TestAuthMiddleware(t *testing.T) {
	e, _, mem := setup(t)
	access := token(t, constants.ScopeTokenAccess)
	refresh := token(t, constants.ScopeTokenRefresh)
	revoked := token(t, constants.ScopeTokenAccess)
	require.NoError(t, mem.AddToTokenBlacklist(context.Background(), revoked, time.Hour))

	tests := []struct {
		name     string
		header   string
		cookie   string
		wantCode int
	}{
		{"missing", "", "", http.StatusUnauthorized},
		{"bearer", "Bearer " + access, "", http.StatusOK},
		{"cookie", "", access, http.StatusOK},
		{"refresh token rejected", "Bearer " + refresh, "", http.StatusUnauthorized},
		{"revoked", "Bearer " + revoked, "", http.StatusUnauthorized},
		{"garbage", "Bearer not-a-jwt", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tt.header != "" {
				req.Header.Set(echo.HeaderAuthorization, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusOK {
				assert.JSONEq(t, `{"student_id":42}`, rec.Body.String())
			} else {
				assert.Contains(t, rec.Body.String(), "Not authenticated")
			}
		})
	}
}

func TestAdminMiddleware(t *testing.T) {
	e, _, _ := setup(t)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.AdminKeyHeader, "admin-key")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAdminMiddlewareWithoutKeyRefusesAll(t *testing.T) {
	mw := NewMiddleware(cache.NewMemoryCache(), "")
	e := echo.New()
	e.GET("/admin", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, mw.AdminMiddleware())

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(constants.AdminKeyHeader, "")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRateLimit(t *testing.T) {
	mw := NewMiddleware(cache.NewMemoryCache(), "")
	e := echo.New()
	e.GET("/chat", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, mw.RateLimit(1))

	codes := map[int]int{}
	for i := 0; i < 10; i++ {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/chat", nil))
		codes[rec.Code]++
	}
	assert.Positive(t, codes[http.StatusNoContent])
	assert.Positive(t, codes[http.StatusTooManyRequests])
}
