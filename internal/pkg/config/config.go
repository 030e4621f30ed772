package config

import (
	"io"
	"time"
)

// TimeConfig defines helpers for retrieving duration values whose unit is
// encoded in the key name (e.g. otp_ttl_seconds, refresh_token_ttl_days).
type TimeConfig interface {
	// GetSecond retrieves the value for key as a duration in seconds.
	GetSecond(key string) time.Duration

	// GetMinute retrieves the value for key as a duration in minutes.
	GetMinute(key string) time.Duration

	// GetHour retrieves the value for key as a duration in hours.
	GetHour(key string) time.Duration

	// GetDay retrieves the value for key as a duration in days (24h).
	GetDay(key string) time.Duration
}

// Config defines typed accessors for runtime configuration. Implementations
// should return zero values for missing keys; callers treat zero as "use the
// documented default" where one exists.
type Config interface {
	io.Closer
	TimeConfig

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetInt32 retrieves the value for key as an int32.
	GetInt32(key string) int32

	// GetInt64 retrieves the value for key as an int64.
	GetInt64(key string) int64

	// GetUint retrieves the value for key as a uint.
	GetUint(key string) uint

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetArray retrieves the value for key as a string slice.
	// The value is stored comma separated: <element1>,<element2>,...
	GetArray(key string) []string
}
