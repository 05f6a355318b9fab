package session

import "time"

// RetryConfig controls the backoff schedule used to retry a failed connection
// attempt (spec.md §4.2).
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	Jitter        bool
}

// DefaultRetryConfig matches the teacher's own conservative defaults: a
// handful of attempts, short initial delay, capped backoff.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      2 * time.Second,
		BackoffFactor: 2.0,
		Jitter:        true,
	}
}

// Config collects the options accepted by New (spec.md §4.2).
type Config struct {
	Host     string
	Port     int32
	User     string
	Password string
	Database string
	SSL      bool

	Max                  int
	Min                  int
	IdleTimeout          time.Duration
	AcquireTimeout       time.Duration
	SearchPath           string
	ApplicationName      string
	Retry                RetryConfig
}

// DefaultConfig fills in the pool-sizing and timeout defaults the teacher's
// AgensGraphConnection left to the Postgres driver's own defaults; spec.md
// §4.2 requires these be explicit and configurable.
func DefaultConfig() Config {
	return Config{
		Port:           5432,
		Max:            10,
		Min:            1,
		IdleTimeout:    5 * time.Minute,
		AcquireTimeout: 30 * time.Second,
		SearchPath:     "ag_catalog",
		Retry:          DefaultRetryConfig(),
	}
}
