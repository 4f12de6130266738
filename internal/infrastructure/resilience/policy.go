package resilience

import "time"

type Config struct {
	MaxAttempts  int
	RetryBackoff time.Duration
	MaxBackoff   time.Duration

	BreakerEnabled          bool
	BreakerMinRequests      uint32
	BreakerFailureRatio     float64
	BreakerOpenTimeout      time.Duration
	BreakerHalfOpenMaxCalls uint32
}

// GenerationConfig guards the local generation server: circuit breaking
// only, no retries. A timed-out generation must surface to the user, not be
// silently replayed against an already overloaded model.
func GenerationConfig() Config {
	return Config{
		MaxAttempts: 1,

		BreakerEnabled:          true,
		BreakerMinRequests:      3,
		BreakerFailureRatio:     0.6,
		BreakerOpenTimeout:      15 * time.Second,
		BreakerHalfOpenMaxCalls: 1,
	}
}

func (c Config) normalize() Config {
	out := c
	if out.MaxAttempts <= 0 {
		out.MaxAttempts = 1
	}
	if out.RetryBackoff <= 0 {
		out.RetryBackoff = 100 * time.Millisecond
	}
	if out.MaxBackoff < out.RetryBackoff {
		out.MaxBackoff = out.RetryBackoff
	}
	if out.BreakerMinRequests == 0 {
		out.BreakerMinRequests = 3
	}
	if out.BreakerFailureRatio <= 0 || out.BreakerFailureRatio > 1 {
		out.BreakerFailureRatio = 0.6
	}
	if out.BreakerOpenTimeout <= 0 {
		out.BreakerOpenTimeout = 15 * time.Second
	}
	if out.BreakerHalfOpenMaxCalls == 0 {
		out.BreakerHalfOpenMaxCalls = 1
	}
	return out
}
