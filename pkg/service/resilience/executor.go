// Package resilience wraps calls to external AI services with bounded
// retries, exponential backoff and a per-service circuit breaker, and keeps a
// process-lifetime health record per service.
package resilience

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/utils/logging"
	"github.com/sony/gobreaker/v2"
)

// Circuit breaker defaults: the breaker opens after FailureThreshold
// consecutive failures and stays open for the cool-down window, then admits a
// single trial call (half-open).
const (
	DefaultFailureThreshold = 5
	DefaultCooldown         = 60 * time.Second
)

// Sentinel errors surfaced by the executor
var (
	// ErrCircuitOpen is returned without invoking the operation while the
	// service's breaker is open. The wrapped error carries the reset time.
	ErrCircuitOpen = errors.New("circuit breaker is open")
	// ErrAttemptsExhausted is returned when every permitted attempt failed
	// with a transient error.
	ErrAttemptsExhausted = errors.New("retry attempts exhausted")
)

// Operation is a resilient call producing an untyped value. The typed
// Execute wrappers are the usual entry points.
type Operation func(ctx context.Context) (any, error)

// SleepFunc waits for the backoff delay; it must honor ctx cancellation
type SleepFunc func(ctx context.Context, d time.Duration) error

// Executor runs operations with retry and circuit-breaker protection
type Executor struct {
	mu               sync.Mutex
	services         map[string]*serviceState
	failureThreshold uint32
	cooldown         time.Duration
	sleep            SleepFunc
	now              func() time.Time
}

// serviceState is the per-service breaker plus health bookkeeping.
// Updates are monotonic increments/resets guarded by its own mutex, safe
// under parallel generations.
type serviceState struct {
	breaker *gobreaker.CircuitBreaker[any]

	mu          sync.Mutex
	avgResponse time.Duration
	lastSuccess time.Time
	lastFailure time.Time
	openedAt    time.Time
}

// Option is a functional option for Executor configuration
type Option func(*Executor)

// WithFailureThreshold overrides the consecutive-failure count that opens a breaker
func WithFailureThreshold(n int) Option {
	return func(e *Executor) {
		if n > 0 {
			e.failureThreshold = uint32(n)
		}
	}
}

// WithCooldown overrides the open-state cool-down window
func WithCooldown(d time.Duration) Option {
	return func(e *Executor) {
		if d > 0 {
			e.cooldown = d
		}
	}
}

// WithSleepFunc replaces the backoff sleeper, for tests
func WithSleepFunc(f SleepFunc) Option {
	return func(e *Executor) {
		e.sleep = f
	}
}

// WithClock replaces the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// New creates a new Executor
func New(opts ...Option) *Executor {
	e := &Executor{
		services:         make(map[string]*serviceState),
		failureThreshold: DefaultFailureThreshold,
		cooldown:         DefaultCooldown,
		now:              time.Now,
	}
	e.sleep = func(ctx context.Context, d time.Duration) error {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		}
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// service returns the breaker state for the given name, creating it on first use
func (e *Executor) service(name string) *serviceState {
	e.mu.Lock()
	defer e.mu.Unlock()

	if svc, ok := e.services[name]; ok {
		return svc
	}

	svc := &serviceState{}
	threshold := e.failureThreshold
	svc.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1, // half-open admits a single trial call
		Timeout:     e.cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			svc.mu.Lock()
			if to == gobreaker.StateOpen {
				svc.openedAt = e.now()
			}
			svc.mu.Unlock()
			logging.Default().Warn("circuit breaker state change",
				"service", name, "from", from.String(), "to", to.String())
		},
	})
	e.services[name] = svc
	return svc
}

// ExecuteWithRecovery runs op with bounded retries and the service's circuit
// breaker. Transient errors are retried with exponential backoff until the
// attempt budget runs out; non-retryable errors and open-breaker rejections
// fail immediately. The returned RecoveryResult always carries the full
// attempt history, also on failure.
func (e *Executor) ExecuteWithRecovery(ctx context.Context, serviceName, operationName string, cfg RetryConfig, op Operation) (any, *model.RecoveryResult, error) {
	cfg = cfg.normalize()
	svc := e.service(serviceName)

	result := &model.RecoveryResult{
		ServiceName:   serviceName,
		OperationName: operationName,
		Method:        model.RecoveryFailed,
	}
	started := e.now()
	defer func() {
		result.TotalDuration = e.now().Sub(started)
	}()

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		attemptStart := e.now()
		value, err := svc.breaker.Execute(func() (any, error) {
			v, opErr := op(ctx)
			svc.observe(e.now(), e.now().Sub(attemptStart), opErr)
			return v, opErr
		})
		record := model.RecoveryAttempt{
			Number:    attempt,
			StartedAt: attemptStart,
			Duration:  e.now().Sub(attemptStart),
		}

		if err == nil {
			result.Attempts = append(result.Attempts, record)
			result.Success = true
			if attempt == 1 {
				result.Method = model.RecoveryNone
			} else {
				result.Method = model.RecoveryRetry
			}
			return value, result, nil
		}

		record.Error = err.Error()
		lastErr = err

		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			// Fail fast with a known reset time instead of waiting out a timeout
			result.Attempts = append(result.Attempts, record)
			return nil, result, goerr.Wrap(ErrCircuitOpen, "service call rejected",
				goerr.V("service", serviceName),
				goerr.V("operation", operationName),
				goerr.V("reset_at", svc.resetAt(e.cooldown)))
		}

		if !IsRetryable(err) {
			result.Attempts = append(result.Attempts, record)
			return nil, result, goerr.Wrap(err, "non-retryable service error",
				goerr.V("service", serviceName),
				goerr.V("operation", operationName),
				goerr.V("attempt", attempt))
		}

		if attempt < cfg.MaxAttempts {
			delay := cfg.DelayFor(attempt)
			record.Delay = delay
			result.Attempts = append(result.Attempts, record)
			logging.From(ctx).Debug("retrying transient failure",
				"service", serviceName, "operation", operationName,
				"attempt", attempt, "delay", delay, "error", err.Error())
			if sleepErr := e.sleep(ctx, delay); sleepErr != nil {
				return nil, result, goerr.Wrap(sleepErr, "retry abandoned",
					goerr.V("service", serviceName), goerr.V("operation", operationName))
			}
			continue
		}
		result.Attempts = append(result.Attempts, record)
	}

	return nil, result, goerr.Wrap(ErrAttemptsExhausted, lastErr.Error(),
		goerr.V("service", serviceName),
		goerr.V("operation", operationName),
		goerr.V("attempts", cfg.MaxAttempts))
}

// observe folds one attempt into the service health record
func (s *serviceState) observe(at time.Time, duration time.Duration, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Exponential moving average, O(1) memory
	if s.avgResponse == 0 {
		s.avgResponse = duration
	} else {
		s.avgResponse = (s.avgResponse*4 + duration) / 5
	}
	if err != nil {
		s.lastFailure = at
	} else {
		s.lastSuccess = at
	}
}

// resetAt returns when the open breaker will admit a trial call
func (s *serviceState) resetAt(cooldown time.Duration) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openedAt.IsZero() {
		return time.Time{}
	}
	return s.openedAt.Add(cooldown)
}

// Execute is the typed entry point over ExecuteWithRecovery
func Execute[T any](ctx context.Context, e *Executor, serviceName, operationName string, cfg RetryConfig, op func(ctx context.Context) (T, error)) (T, *model.RecoveryResult, error) {
	var zero T
	value, result, err := e.ExecuteWithRecovery(ctx, serviceName, operationName, cfg, func(ctx context.Context) (any, error) {
		return op(ctx)
	})
	if err != nil {
		return zero, result, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, result, goerr.New("unexpected operation result type",
			goerr.V("service", serviceName), goerr.V("operation", operationName))
	}
	return typed, result, nil
}

// ExecuteWithGracefulDegradation attempts primary via ExecuteWithRecovery and
// falls back on total failure. The result reports UsedFallback plus the
// original error; a fallback failure propagates.
func ExecuteWithGracefulDegradation[T any](ctx context.Context, e *Executor, serviceName, operationName string, cfg RetryConfig, primary, fallback func(ctx context.Context) (T, error)) (T, *model.RecoveryResult, error) {
	value, result, err := Execute(ctx, e, serviceName, operationName, cfg, primary)
	if err == nil {
		return value, result, nil
	}

	logging.From(ctx).Warn("primary path failed, trying fallback",
		"service", serviceName, "operation", operationName, "error", err.Error())

	fallbackValue, fallbackErr := fallback(ctx)
	if fallbackErr != nil {
		var zero T
		return zero, result, goerr.Wrap(fallbackErr, "fallback also failed",
			goerr.V("service", serviceName),
			goerr.V("operation", operationName),
			goerr.V("primary_error", err.Error()))
	}

	result.Success = true
	result.UsedFallback = true
	result.Method = model.RecoveryFallback
	result.PrimaryError = err.Error()
	return fallbackValue, result, nil
}
