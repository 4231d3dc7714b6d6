package resilience

import (
	"strings"
	"time"
)

// Default retry policy applied when a config field is zero
const (
	DefaultMaxAttempts       = 5
	DefaultBaseDelay         = time.Second
	DefaultBackoffMultiplier = 2.0
	DefaultMaxDelay          = 30 * time.Second
)

// RetryConfig bounds the retry loop of a resilient call
type RetryConfig struct {
	MaxAttempts       int
	BaseDelay         time.Duration
	BackoffMultiplier float64
	MaxDelay          time.Duration
}

// DefaultRetryConfig returns the retry policy used when callers pass nothing
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:       DefaultMaxAttempts,
		BaseDelay:         DefaultBaseDelay,
		BackoffMultiplier: DefaultBackoffMultiplier,
		MaxDelay:          DefaultMaxDelay,
	}
}

func (c RetryConfig) normalize() RetryConfig {
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.BackoffMultiplier <= 0 {
		c.BackoffMultiplier = DefaultBackoffMultiplier
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = DefaultMaxDelay
	}
	return c
}

// DelayFor returns the backoff delay scheduled after the given attempt:
// min(baseDelay * multiplier^(attempt-1), maxDelay). Attempts count from 1.
func (c RetryConfig) DelayFor(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := float64(c.BaseDelay)
	for i := 1; i < attempt; i++ {
		delay *= c.BackoffMultiplier
		if delay >= float64(c.MaxDelay) {
			return c.MaxDelay
		}
	}
	if delay > float64(c.MaxDelay) {
		return c.MaxDelay
	}
	return time.Duration(delay)
}

// retryablePatterns is the fixed allow-list of transient failure signatures.
// Anything else fails immediately without consuming remaining retries.
var retryablePatterns = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"timed out",
	"service unavailable",
	"model timeout",
	"rate limit exceeded",
	"temporarily unavailable",
}

// IsRetryable reports whether the error looks like a transient service
// failure worth retrying
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, p := range retryablePatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
