package constants

import "time"

// Timeouts
const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	ClassifierTimeout     = 5 * time.Second
	ShutdownTimeout       = 15 * time.Second
	SchedulerJobTimeout   = 2 * time.Minute
)

// Token scopes and request context keys
const (
	ScopeTokenAccess  = "access"
	ScopeTokenRefresh = "refresh"

	ContextTokenData = "token_data"

	SessionCookieName = "classtime_session"
	AdminKeyHeader    = "X-Admin-Key"
)

// Login throttling
const (
	MaxLoginAttempts = 5
	BlockDuration    = 15 * time.Minute
)

// Redis key prefixes
const (
	RedisKeyTokenBlacklist = "blacklist:"
	RedisKeyLoginAttempt   = "login:"
	RedisKeyDialogState    = "chat:dialog:"
)

const (
	OAuthStateTTL  = 10 * time.Minute
	DialogStateTTL = 30 * time.Minute
	ProviderGoogle = "google"
)

// Calendar formats and bounds
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04:05"

	MinCalendarYear = 2020
	MaxCalendarYear = 2030
)

// Timeslot states
const (
	TimeslotAvailable = "available"
	TimeslotBooked    = "booked"

	RepeatabilitySingle   = "single"
	RepeatabilityRepeated = "repeated"
)

// Pagination
const (
	DefaultPageNumber = 1
	DefaultPageSize   = 20
	MaxPageSize       = 100
)
