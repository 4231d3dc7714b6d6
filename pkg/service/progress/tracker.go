// Package progress tracks multi-stage progress of generation requests for
// polling callers. State is ephemeral and process-local; terminal records are
// pruned after a grace period.
package progress

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/utils/logging"
)

// ErrUnknownRequest is returned when polling a request the tracker does not know
var ErrUnknownRequest = goerr.New("unknown request ID")

// estimatedStageTime is the rough per-queued-request wait used for the
// queue's estimated wait. Generation is typically sub-second to low seconds.
const estimatedStageTime = 2 * time.Second

// Tracker tracks progress records keyed by request ID
type Tracker struct {
	mu        sync.Mutex
	requests  map[types.RequestID]*model.ProgressRecord
	order     []types.RequestID // insertion order, for queue position
	completed int
	failed    int
	now       func() time.Time
}

// Option is a functional option for Tracker configuration
type Option func(*Tracker)

// WithClock replaces the time source, for tests
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// New creates a new Tracker
func New(opts ...Option) *Tracker {
	t := &Tracker{
		requests: make(map[types.RequestID]*model.ProgressRecord),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// StartRequest registers a new generation request and returns its ID
func (t *Tracker) StartRequest(studentID types.StudentID) types.RequestID {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := types.NewRequestID()
	now := t.now()
	t.requests[id] = &model.ProgressRecord{
		RequestID: id,
		StudentID: studentID,
		Stage:     types.StageValidatingProfile,
		Percent:   0,
		Message:   "request accepted",
		StartedAt: now,
		UpdatedAt: now,
	}
	t.order = append(t.order, id)
	return id
}

// UpdateProgress moves the request to the given stage. Percent never goes
// backwards: a lower value than the current one is ignored, so pollers
// observe a non-decreasing sequence. Updates to terminal requests error.
func (t *Tracker) UpdateProgress(id types.RequestID, stage types.ProgressStage, percent int, message string) error {
	if !stage.IsValid() {
		return goerr.New("invalid progress stage", goerr.V("stage", stage))
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.requests[id]
	if !ok {
		return goerr.Wrap(ErrUnknownRequest, "cannot update progress", goerr.V("requestID", id))
	}
	if rec.IsTerminal() {
		return goerr.New("request already finished", goerr.V("requestID", id), goerr.V("stage", rec.Stage))
	}

	rec.Stage = stage
	if percent > rec.Percent {
		rec.Percent = clampPercent(percent)
	}
	rec.Message = message
	rec.UpdatedAt = t.now()
	return nil
}

// CompleteRequest marks the request COMPLETE at 100%
func (t *Tracker) CompleteRequest(id types.RequestID) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.requests[id]
	if !ok {
		return goerr.Wrap(ErrUnknownRequest, "cannot complete request", goerr.V("requestID", id))
	}
	if rec.IsTerminal() {
		return goerr.New("request already finished", goerr.V("requestID", id), goerr.V("stage", rec.Stage))
	}

	rec.Stage = types.StageComplete
	rec.Percent = 100
	rec.Message = "recommendations ready"
	rec.UpdatedAt = t.now()
	t.completed++
	t.dropFromOrder(id)
	return nil
}

// FailRequest marks the request FAILED with the given reason. FAILED is
// reachable from any non-terminal stage.
func (t *Tracker) FailRequest(id types.RequestID, reason string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.requests[id]
	if !ok {
		return goerr.Wrap(ErrUnknownRequest, "cannot fail request", goerr.V("requestID", id))
	}
	if rec.IsTerminal() {
		return goerr.New("request already finished", goerr.V("requestID", id), goerr.V("stage", rec.Stage))
	}

	rec.Stage = types.StageFailed
	rec.Error = reason
	rec.Message = "generation failed"
	rec.UpdatedAt = t.now()
	t.failed++
	t.dropFromOrder(id)
	return nil
}

// GetProgress returns a copy of the request's progress record
func (t *Tracker) GetProgress(id types.RequestID) (*model.ProgressRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	rec, ok := t.requests[id]
	if !ok {
		return nil, goerr.Wrap(ErrUnknownRequest, "no progress record", goerr.V("requestID", id))
	}

	copied := *rec
	return &copied, nil
}

// GetQueueStatus returns the request's position among active requests.
// Finished requests report position 0.
func (t *Tracker) GetQueueStatus(id types.RequestID) (*model.QueueStatus, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.requests[id]; !ok {
		return nil, goerr.Wrap(ErrUnknownRequest, "no queue status", goerr.V("requestID", id))
	}

	status := &model.QueueStatus{
		ActiveRequests: len(t.order),
	}
	for i, rid := range t.order {
		if rid == id {
			status.Position = i + 1
			status.EstimatedWait = time.Duration(i) * estimatedStageTime
			break
		}
	}
	return status, nil
}

// GetSystemLoad returns aggregate counters over the tracker's lifetime
func (t *Tracker) GetSystemLoad() *model.SystemLoad {
	t.mu.Lock()
	defer t.mu.Unlock()

	return &model.SystemLoad{
		ActiveRequests:    len(t.order),
		CompletedRequests: t.completed,
		FailedRequests:    t.failed,
	}
}

// Prune removes terminal records whose last update is older than grace, and
// returns how many were removed. Callers that stop polling therefore do not
// accumulate state forever.
func (t *Tracker) Prune(grace time.Duration) int {
	t.mu.Lock()
	defer t.mu.Unlock()

	cutoff := t.now().Add(-grace)
	removed := 0
	for id, rec := range t.requests {
		if rec.IsTerminal() && rec.UpdatedAt.Before(cutoff) {
			delete(t.requests, id)
			removed++
		}
	}
	return removed
}

// RunPruner sweeps terminal records at the given interval until ctx is done
func (t *Tracker) RunPruner(ctx context.Context, interval, grace time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := t.Prune(grace); n > 0 {
				logging.From(ctx).Debug("pruned progress records", "count", n)
			}
		}
	}
}

// dropFromOrder removes id from the active queue; caller holds the lock
func (t *Tracker) dropFromOrder(id types.RequestID) {
	for i, rid := range t.order {
		if rid == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			return
		}
	}
}

func clampPercent(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
