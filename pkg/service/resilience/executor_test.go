package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/service/resilience"
)

var errTransient = errors.New("embedding service unavailable")

// noSleep records scheduled backoff delays instead of waiting
func noSleep(delays *[]time.Duration) resilience.SleepFunc {
	return func(ctx context.Context, d time.Duration) error {
		*delays = append(*delays, d)
		return nil
	}
}

func TestExecuteFirstAttemptSucceeds(t *testing.T) {
	e := resilience.New()

	value, result, err := resilience.Execute(context.Background(), e, "svc", "op",
		resilience.DefaultRetryConfig(), func(ctx context.Context) (string, error) {
			return "ok", nil
		})
	gt.NoError(t, err).Required()
	gt.S(t, value).Equal("ok")
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Method).Equal(model.RecoveryNone)
	gt.Array(t, result.Attempts).Length(1)
}

func TestExecuteRetriesTransientFailures(t *testing.T) {
	var delays []time.Duration
	e := resilience.New(resilience.WithSleepFunc(noSleep(&delays)))

	calls := 0
	value, result, err := resilience.Execute(context.Background(), e, "svc", "op",
		resilience.DefaultRetryConfig(), func(ctx context.Context) (string, error) {
			calls++
			if calls <= 3 {
				return "", errTransient
			}
			return "recovered", nil
		})
	gt.NoError(t, err).Required()

	gt.S(t, value).Equal("recovered")
	gt.Number(t, calls).Equal(4)
	gt.Bool(t, result.Success).True()
	gt.Value(t, result.Method).Equal(model.RecoveryRetry)
	gt.Array(t, result.Attempts).Length(4)

	// Exponential backoff between the three failed attempts
	gt.Value(t, delays).Equal([]time.Duration{time.Second, 2 * time.Second, 4 * time.Second})

	// Failed attempts carry the error and the scheduled delay
	gt.S(t, result.Attempts[0].Error).Equal(errTransient.Error())
	gt.Value(t, result.Attempts[0].Delay).Equal(time.Second)
	gt.S(t, result.Attempts[3].Error).Equal("")
}

func TestExecuteNonRetryableFailsImmediately(t *testing.T) {
	var delays []time.Duration
	e := resilience.New(resilience.WithSleepFunc(noSleep(&delays)))

	calls := 0
	_, result, err := resilience.Execute(context.Background(), e, "svc", "op",
		resilience.DefaultRetryConfig(), func(ctx context.Context) (string, error) {
			calls++
			return "", errors.New("invalid request payload")
		})
	gt.Error(t, err)
	gt.Number(t, calls).Equal(1)
	gt.Array(t, delays).Length(0)
	gt.Bool(t, result.Success).False()
	gt.Array(t, result.Attempts).Length(1)
}

func TestExecuteExhaustsAttempts(t *testing.T) {
	var delays []time.Duration
	e := resilience.New(
		resilience.WithSleepFunc(noSleep(&delays)),
		resilience.WithFailureThreshold(100),
	)

	cfg := resilience.RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, BackoffMultiplier: 2.0, MaxDelay: 30 * time.Second}
	calls := 0
	_, result, err := resilience.Execute(context.Background(), e, "svc", "op", cfg,
		func(ctx context.Context) (string, error) {
			calls++
			return "", errTransient
		})
	gt.Error(t, err)
	gt.B(t, errors.Is(err, resilience.ErrAttemptsExhausted)).True()
	gt.Number(t, calls).Equal(3)
	gt.Array(t, result.Attempts).Length(3)
	gt.Array(t, delays).Length(2)
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var delays []time.Duration
	e := resilience.New(
		resilience.WithSleepFunc(noSleep(&delays)),
		resilience.WithFailureThreshold(5),
	)
	cfg := resilience.DefaultRetryConfig() // 5 attempts

	calls := 0
	_, _, err := resilience.Execute(context.Background(), e, "svc", "op", cfg,
		func(ctx context.Context) (string, error) {
			calls++
			return "", errTransient
		})
	gt.Error(t, err)
	gt.B(t, errors.Is(err, resilience.ErrAttemptsExhausted)).True()
	gt.Number(t, calls).Equal(5)

	// The fifth consecutive failure opened the breaker: the next call is
	// rejected without invoking the operation
	_, result, err := resilience.Execute(context.Background(), e, "svc", "op", cfg,
		func(ctx context.Context) (string, error) {
			calls++
			return "", nil
		})
	gt.Error(t, err)
	gt.B(t, errors.Is(err, resilience.ErrCircuitOpen)).True()
	gt.Number(t, calls).Equal(5)
	gt.Array(t, result.Attempts).Length(1)

	health, ok := e.ServiceHealth("svc")
	gt.Bool(t, ok).True()
	gt.Value(t, health.State).Equal(model.BreakerOpen)
	gt.Bool(t, health.OpenUntil.IsZero()).False()
}

func TestBreakerOpensMidRetryLoop(t *testing.T) {
	var delays []time.Duration
	e := resilience.New(
		resilience.WithSleepFunc(noSleep(&delays)),
		resilience.WithFailureThreshold(3),
	)
	cfg := resilience.DefaultRetryConfig()

	calls := 0
	_, _, err := resilience.Execute(context.Background(), e, "svc", "op", cfg,
		func(ctx context.Context) (string, error) {
			calls++
			return "", errTransient
		})

	// The third failure trips the breaker, so the fourth attempt is rejected
	// before the operation runs
	gt.Error(t, err)
	gt.B(t, errors.Is(err, resilience.ErrCircuitOpen)).True()
	gt.Number(t, calls).Equal(3)
}

func TestBreakerHalfOpenTrial(t *testing.T) {
	var delays []time.Duration
	e := resilience.New(
		resilience.WithSleepFunc(noSleep(&delays)),
		resilience.WithFailureThreshold(1),
		resilience.WithCooldown(50*time.Millisecond),
	)
	cfg := resilience.RetryConfig{MaxAttempts: 1, BaseDelay: time.Millisecond, BackoffMultiplier: 2.0, MaxDelay: time.Millisecond}

	_, _, err := resilience.Execute(context.Background(), e, "svc", "op", cfg,
		func(ctx context.Context) (string, error) {
			return "", errTransient
		})
	gt.Error(t, err)

	_, _, err = resilience.Execute(context.Background(), e, "svc", "op", cfg,
		func(ctx context.Context) (string, error) {
			return "late", nil
		})
	gt.Error(t, err)
	gt.B(t, errors.Is(err, resilience.ErrCircuitOpen)).True()

	// After the cool-down the breaker admits a trial call; success closes it
	time.Sleep(60 * time.Millisecond)

	value, _, err := resilience.Execute(context.Background(), e, "svc", "op", cfg,
		func(ctx context.Context) (string, error) {
			return "trial", nil
		})
	gt.NoError(t, err).Required()
	gt.S(t, value).Equal("trial")

	health, ok := e.ServiceHealth("svc")
	gt.Bool(t, ok).True()
	gt.Value(t, health.State).Equal(model.BreakerClosed)
}

func TestGracefulDegradation(t *testing.T) {
	t.Run("fallback produces result", func(t *testing.T) {
		var delays []time.Duration
		e := resilience.New(resilience.WithSleepFunc(noSleep(&delays)))

		value, result, err := resilience.ExecuteWithGracefulDegradation(context.Background(), e, "svc", "op",
			resilience.DefaultRetryConfig(),
			func(ctx context.Context) (string, error) {
				return "", errors.New("invalid request payload")
			},
			func(ctx context.Context) (string, error) {
				return "degraded", nil
			})
		gt.NoError(t, err).Required()
		gt.S(t, value).Equal("degraded")
		gt.Bool(t, result.Success).True()
		gt.Bool(t, result.UsedFallback).True()
		gt.Value(t, result.Method).Equal(model.RecoveryFallback)
		gt.S(t, result.PrimaryError).NotEqual("")
	})

	t.Run("fallback failure propagates", func(t *testing.T) {
		var delays []time.Duration
		e := resilience.New(resilience.WithSleepFunc(noSleep(&delays)))

		_, result, err := resilience.ExecuteWithGracefulDegradation(context.Background(), e, "svc", "op",
			resilience.DefaultRetryConfig(),
			func(ctx context.Context) (string, error) {
				return "", errors.New("invalid request payload")
			},
			func(ctx context.Context) (string, error) {
				return "", errors.New("fallback broken too")
			})
		gt.Error(t, err)
		gt.Bool(t, result.Success).False()
		gt.Bool(t, result.UsedFallback).False()
	})

	t.Run("primary success skips fallback", func(t *testing.T) {
		e := resilience.New()

		fallbackCalled := false
		value, result, err := resilience.ExecuteWithGracefulDegradation(context.Background(), e, "svc", "op",
			resilience.DefaultRetryConfig(),
			func(ctx context.Context) (string, error) {
				return "primary", nil
			},
			func(ctx context.Context) (string, error) {
				fallbackCalled = true
				return "degraded", nil
			})
		gt.NoError(t, err).Required()
		gt.S(t, value).Equal("primary")
		gt.Bool(t, fallbackCalled).False()
		gt.Bool(t, result.UsedFallback).False()
	})
}

func TestSleepHonorsCancellation(t *testing.T) {
	e := resilience.New()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := resilience.Execute(ctx, e, "svc", "op",
		resilience.DefaultRetryConfig(), func(ctx context.Context) (string, error) {
			return "", errTransient
		})
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, context.Canceled)).True()
}

func TestServiceHealthTracking(t *testing.T) {
	e := resilience.New()

	_, _, err := resilience.Execute(context.Background(), e, "healthy-svc", "op",
		resilience.DefaultRetryConfig(), func(ctx context.Context) (string, error) {
			return "ok", nil
		})
	gt.NoError(t, err).Required()

	health, ok := e.ServiceHealth("healthy-svc")
	gt.Bool(t, ok).True()
	gt.Bool(t, health.Healthy()).True()
	gt.Number(t, health.ConsecutiveFailures).Equal(0)
	gt.Bool(t, health.LastSuccess.IsZero()).False()

	_, ok = e.ServiceHealth("never-seen")
	gt.Bool(t, ok).False()

	all := e.AllServiceHealth()
	gt.Array(t, all).Length(1)
}
