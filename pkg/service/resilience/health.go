package resilience

import (
	"fmt"
	"sort"
	"time"

	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/sony/gobreaker/v2"
)

// ServiceHealth returns the health snapshot for one service, or false if the
// executor has never called it
func (e *Executor) ServiceHealth(name string) (*model.ServiceHealth, bool) {
	e.mu.Lock()
	svc, ok := e.services[name]
	e.mu.Unlock()
	if !ok {
		return nil, false
	}
	return e.snapshot(name, svc), true
}

// AllServiceHealth returns health snapshots for every service seen so far,
// sorted by name
func (e *Executor) AllServiceHealth() []*model.ServiceHealth {
	e.mu.Lock()
	names := make([]string, 0, len(e.services))
	for name := range e.services {
		names = append(names, name)
	}
	e.mu.Unlock()
	sort.Strings(names)

	healths := make([]*model.ServiceHealth, 0, len(names))
	for _, name := range names {
		if h, ok := e.ServiceHealth(name); ok {
			healths = append(healths, h)
		}
	}
	return healths
}

func (e *Executor) snapshot(name string, svc *serviceState) *model.ServiceHealth {
	counts := svc.breaker.Counts()
	state := breakerState(svc.breaker.State())

	svc.mu.Lock()
	defer svc.mu.Unlock()

	h := &model.ServiceHealth{
		ServiceName:         name,
		ConsecutiveFailures: int(counts.ConsecutiveFailures),
		AvgResponseTime:     svc.avgResponse,
		LastSuccess:         svc.lastSuccess,
		LastFailure:         svc.lastFailure,
		State:               state,
	}
	if state == model.BreakerOpen && !svc.openedAt.IsZero() {
		h.OpenUntil = svc.openedAt.Add(e.cooldown)
	}
	return h
}

func breakerState(s gobreaker.State) model.BreakerState {
	switch s {
	case gobreaker.StateOpen:
		return model.BreakerOpen
	case gobreaker.StateHalfOpen:
		return model.BreakerHalfOpen
	default:
		return model.BreakerClosed
	}
}

// slowResponse is the average latency above which a service is called out in
// recovery recommendations
const slowResponse = 5 * time.Second

// Recommendations turns the health registry into human-readable recovery
// advice for operators
func (e *Executor) Recommendations() []string {
	var recs []string
	for _, h := range e.AllServiceHealth() {
		switch {
		case h.State == model.BreakerOpen:
			recs = append(recs, fmt.Sprintf(
				"%s: circuit is open after %d consecutive failures; calls resume at %s",
				h.ServiceName, h.ConsecutiveFailures, h.OpenUntil.Format(time.RFC3339)))
		case h.ConsecutiveFailures > 0:
			recs = append(recs, fmt.Sprintf(
				"%s: %d consecutive failures, last at %s; check service availability",
				h.ServiceName, h.ConsecutiveFailures, h.LastFailure.Format(time.RFC3339)))
		case h.AvgResponseTime > slowResponse:
			recs = append(recs, fmt.Sprintf(
				"%s: average response time %s; consider reducing batch sizes",
				h.ServiceName, h.AvgResponseTime.Round(time.Millisecond)))
		}
	}
	if len(recs) == 0 {
		recs = append(recs, "all external services healthy")
	}
	return recs
}

// DegradedMessage returns the user-facing text shown when the named service
// is unavailable and a degraded result was served instead
func (e *Executor) DegradedMessage(name string) string {
	h, ok := e.ServiceHealth(name)
	if !ok || h.Healthy() {
		return ""
	}
	if h.State == model.BreakerOpen {
		return fmt.Sprintf(
			"The %s service is temporarily unavailable. Results may be less accurate until around %s.",
			name, h.OpenUntil.Format("15:04 MST"))
	}
	return fmt.Sprintf(
		"The %s service is having trouble right now. Results may be less accurate than usual.", name)
}
