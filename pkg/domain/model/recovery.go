package model

import "time"

// RecoveryMethod describes how an operation eventually succeeded
type RecoveryMethod string

const (
	RecoveryNone     RecoveryMethod = "none"     // first attempt succeeded
	RecoveryRetry    RecoveryMethod = "retry"    // succeeded after at least one retry
	RecoveryFallback RecoveryMethod = "fallback" // degraded path produced the result
	RecoveryFailed   RecoveryMethod = "failed"
)

// RecoveryAttempt records one attempt against an external service
type RecoveryAttempt struct {
	Number    int
	StartedAt time.Time
	Duration  time.Duration
	Error     string        // empty on success
	Delay     time.Duration // backoff delay scheduled after this attempt
}

// RecoveryResult is the full diagnostic record of a resilient call
type RecoveryResult struct {
	ServiceName   string
	OperationName string
	Success       bool
	Method        RecoveryMethod
	UsedFallback  bool
	// PrimaryError keeps the original failure when a fallback produced the
	// result, for observability.
	PrimaryError  string
	Attempts      []RecoveryAttempt
	TotalDuration time.Duration
}

// BreakerState mirrors the circuit breaker state for health reporting
type BreakerState string

const (
	BreakerClosed   BreakerState = "closed"
	BreakerOpen     BreakerState = "open"
	BreakerHalfOpen BreakerState = "half-open"
)

// ServiceHealth is the process-lifetime health record of one external service
type ServiceHealth struct {
	ServiceName         string
	ConsecutiveFailures int
	AvgResponseTime     time.Duration
	LastSuccess         time.Time
	LastFailure         time.Time
	State               BreakerState
	OpenUntil           time.Time // zero unless the breaker is open
}

// Healthy reports whether calls to the service are currently expected to work
func (h *ServiceHealth) Healthy() bool {
	return h.State == BreakerClosed && h.ConsecutiveFailures == 0
}
