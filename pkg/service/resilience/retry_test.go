package resilience_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/projhub-lab/recommender/pkg/service/resilience"
)

func TestDelayForExponentialBackoff(t *testing.T) {
	cfg := resilience.RetryConfig{
		MaxAttempts:       6,
		BaseDelay:         time.Second,
		BackoffMultiplier: 2.0,
		MaxDelay:          30 * time.Second,
	}

	expected := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second, // capped, raw value would be 32s
	}
	for attempt, want := range expected {
		gt.Value(t, cfg.DelayFor(attempt+1)).Equal(want)
	}
}

func TestIsRetryable(t *testing.T) {
	retryable := []string{
		"read tcp: connection reset by peer",
		"dial tcp: connection refused",
		"context deadline exceeded (Client.Timeout exceeded)",
		"request timed out",
		"embedding service unavailable (status 503)",
		"model timeout after 30s",
		"rate limit exceeded, retry later",
		"backend temporarily unavailable",
		"Service Unavailable",
	}
	for _, msg := range retryable {
		t.Run(msg, func(t *testing.T) {
			gt.Bool(t, resilience.IsRetryable(errors.New(msg))).True()
		})
	}

	permanent := []string{
		"invalid request payload",
		"embedding dimension mismatch",
		"unauthorized",
	}
	for _, msg := range permanent {
		t.Run(msg, func(t *testing.T) {
			gt.Bool(t, resilience.IsRetryable(errors.New(msg))).False()
		})
	}

	gt.Bool(t, resilience.IsRetryable(nil)).False()
}
