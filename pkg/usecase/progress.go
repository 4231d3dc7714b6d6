package usecase

import (
	"context"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/service/progress"
	"github.com/projhub-lab/recommender/pkg/utils/async"
)

// GenerateRecommendationsWithProgress starts generation in the background and
// returns a request ID immediately. The caller polls
// GetRecommendationProgress; the request always ends COMPLETE or FAILED.
// There is no mid-generation cancellation, a started generation runs to its
// terminal state.
func (uc *UseCases) GenerateRecommendationsWithProgress(ctx context.Context, studentID types.StudentID, opts model.RecommendationOptions) (types.RequestID, error) {
	if err := opts.Validate(); err != nil {
		return "", goerr.Wrap(ErrInvalidOptions, err.Error(), goerr.V(StudentIDKey, studentID))
	}

	requestID := uc.tracker.StartRequest(studentID)

	async.Dispatch(ctx, func(ctx context.Context) error {
		if _, err := uc.generate(ctx, studentID, opts, requestID); err != nil {
			return goerr.Wrap(err, "background generation failed",
				goerr.V(StudentIDKey, studentID), goerr.V(RequestIDKey, requestID))
		}
		return nil
	})

	return requestID, nil
}

// GetRecommendationProgress returns the progress record together with queue
// position and system load, everything a polling client renders in one call
func (uc *UseCases) GetRecommendationProgress(ctx context.Context, requestID types.RequestID) (*model.ProgressReport, error) {
	record, err := uc.tracker.GetProgress(requestID)
	if err != nil {
		return nil, goerr.Wrap(err, "unknown recommendation request", goerr.V(RequestIDKey, requestID))
	}

	report := &model.ProgressReport{
		Progress:   record,
		SystemLoad: uc.tracker.GetSystemLoad(),
	}

	// Terminal requests have left the queue and report position 0
	if queue, queueErr := uc.tracker.GetQueueStatus(requestID); queueErr == nil {
		report.QueueStatus = queue
	}

	return report, nil
}

// IsUnknownRequest reports whether the error means the request ID was never
// tracked or has been pruned
func IsUnknownRequest(err error) bool {
	return errors.Is(err, progress.ErrUnknownRequest)
}
