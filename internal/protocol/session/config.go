package session

import (
	"time"

	"github.com/danmuck/agentwire/internal/protocol/frame"
)

// BackoffConfig defines retry backoff behavior.
type BackoffConfig struct {
	InitialDelay time.Duration
	Multiplier   float64
	MaxDelay     time.Duration
	Jitter       bool
}

// Config defines agent connection defaults.
type Config struct {
	DialTimeout  time.Duration
	DialAttempts int
	// RequestTimeout bounds one request/response exchange.
	RequestTimeout time.Duration
	Backoff        BackoffConfig
	Limits         frame.Limits
}

// DefaultConfig returns defaults suited to a local agent socket.
func DefaultConfig() Config {
	return Config{
		DialTimeout:    2 * time.Second,
		DialAttempts:   3,
		RequestTimeout: 10 * time.Second,
		Backoff: BackoffConfig{
			InitialDelay: 100 * time.Millisecond,
			Multiplier:   2.0,
			MaxDelay:     2 * time.Second,
			Jitter:       true,
		},
		Limits: frame.DefaultLimits(),
	}
}
