package progress_test

import (
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/service/progress"
)

func TestTrackerLifecycle(t *testing.T) {
	tracker := progress.New()

	id := tracker.StartRequest("student-1")
	gt.Value(t, id).NotEqual(types.RequestID(""))

	rec, err := tracker.GetProgress(id)
	gt.NoError(t, err).Required()
	gt.Value(t, rec.Stage).Equal(types.StageValidatingProfile)
	gt.Number(t, rec.Percent).Equal(0)

	gt.NoError(t, tracker.UpdateProgress(id, types.StageFetchingProjects, 25, "fetching"))
	gt.NoError(t, tracker.CompleteRequest(id))

	rec, err = tracker.GetProgress(id)
	gt.NoError(t, err).Required()
	gt.Value(t, rec.Stage).Equal(types.StageComplete)
	gt.Number(t, rec.Percent).Equal(100)
	gt.Bool(t, rec.IsTerminal()).True()
}

func TestTrackerPercentMonotonic(t *testing.T) {
	tracker := progress.New()
	id := tracker.StartRequest("student-1")

	gt.NoError(t, tracker.UpdateProgress(id, types.StageGeneratingEmbeddings, 45, "embedding"))
	// A lower percent is ignored, not an error
	gt.NoError(t, tracker.UpdateProgress(id, types.StageCalculatingSimilarity, 30, "similarity"))

	rec, err := tracker.GetProgress(id)
	gt.NoError(t, err).Required()
	gt.Number(t, rec.Percent).Equal(45)
	gt.Value(t, rec.Stage).Equal(types.StageCalculatingSimilarity)
}

func TestTrackerTerminalStateIsFinal(t *testing.T) {
	tracker := progress.New()

	t.Run("complete then update fails", func(t *testing.T) {
		id := tracker.StartRequest("student-1")
		gt.NoError(t, tracker.CompleteRequest(id))
		gt.Error(t, tracker.UpdateProgress(id, types.StageApplyingFilters, 80, "late"))
		gt.Error(t, tracker.CompleteRequest(id))
	})

	t.Run("fail records the reason", func(t *testing.T) {
		id := tracker.StartRequest("student-2")
		gt.NoError(t, tracker.FailRequest(id, "embedding service unavailable"))

		rec, err := tracker.GetProgress(id)
		gt.NoError(t, err).Required()
		gt.Value(t, rec.Stage).Equal(types.StageFailed)
		gt.S(t, rec.Error).Equal("embedding service unavailable")
		gt.Error(t, tracker.FailRequest(id, "again"))
	})
}

func TestTrackerUnknownRequest(t *testing.T) {
	tracker := progress.New()

	_, err := tracker.GetProgress("no-such-request")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, progress.ErrUnknownRequest)).True()
}

func TestTrackerQueueStatus(t *testing.T) {
	tracker := progress.New()

	first := tracker.StartRequest("student-1")
	second := tracker.StartRequest("student-2")
	third := tracker.StartRequest("student-3")

	status, err := tracker.GetQueueStatus(third)
	gt.NoError(t, err).Required()
	gt.Number(t, status.Position).Equal(3)
	gt.Number(t, status.ActiveRequests).Equal(3)
	gt.Bool(t, status.EstimatedWait > 0).True()

	// Finishing an earlier request moves the queue up
	gt.NoError(t, tracker.CompleteRequest(first))
	status, err = tracker.GetQueueStatus(third)
	gt.NoError(t, err).Required()
	gt.Number(t, status.Position).Equal(2)
	gt.Number(t, status.ActiveRequests).Equal(2)

	status, err = tracker.GetQueueStatus(second)
	gt.NoError(t, err).Required()
	gt.Number(t, status.Position).Equal(1)
	gt.Value(t, status.EstimatedWait).Equal(time.Duration(0))
}

func TestTrackerSystemLoad(t *testing.T) {
	tracker := progress.New()

	a := tracker.StartRequest("student-1")
	b := tracker.StartRequest("student-2")
	tracker.StartRequest("student-3")

	gt.NoError(t, tracker.CompleteRequest(a))
	gt.NoError(t, tracker.FailRequest(b, "boom"))

	load := tracker.GetSystemLoad()
	gt.Number(t, load.ActiveRequests).Equal(1)
	gt.Number(t, load.CompletedRequests).Equal(1)
	gt.Number(t, load.FailedRequests).Equal(1)
}

func TestTrackerPrune(t *testing.T) {
	current := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	tracker := progress.New(progress.WithClock(func() time.Time {
		return current
	}))

	done := tracker.StartRequest("student-1")
	active := tracker.StartRequest("student-2")
	gt.NoError(t, tracker.CompleteRequest(done))

	// Within the grace period nothing is removed
	gt.Number(t, tracker.Prune(time.Hour)).Equal(0)

	current = current.Add(2 * time.Hour)
	gt.Number(t, tracker.Prune(time.Hour)).Equal(1)

	_, err := tracker.GetProgress(done)
	gt.Error(t, err)

	// Active requests survive pruning regardless of age
	_, err = tracker.GetProgress(active)
	gt.NoError(t, err)
}
