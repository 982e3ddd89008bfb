package config

import (
	"io"
	"time"
)

// Config is the read-only view of process configuration.
//
// Keys are dotted paths (for example "auth0.domain"). Implementations also
// resolve them from the environment by upper-casing the key and replacing
// dots with underscores ("AUTH0_DOMAIN").
type Config interface {
	io.Closer

	// GetString returns the value for key as string, or "" when unset.
	GetString(key string) string

	// GetInt returns the value for key as int, or 0 when unset or not numeric.
	GetInt(key string) int

	// GetBool returns the value for key as bool.
	GetBool(key string) bool

	// GetFloat64 returns the value for key as float64.
	GetFloat64(key string) float64

	// GetSecond returns the value for key interpreted as a number of seconds.
	GetSecond(key string) time.Duration

	// GetArray returns the value for key split on commas. Elements are
	// trimmed and empty elements are dropped.
	GetArray(key string) []string

	// IsSet reports whether key has a value from any source, defaults included.
	IsSet(key string) bool
}
