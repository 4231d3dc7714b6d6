package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/utils/logging"
)

// FeedbackInput is the caller-supplied part of a feedback event
type FeedbackInput struct {
	Type    types.FeedbackType
	Rating  *float64
	Comment string
}

// SubmitFeedback validates that the snapshot exists and the project is part
// of it, then appends the event to the student's history. The project's
// specialization is denormalized into the event so the learner can aggregate
// without lookups, and the equivalent implicit action is recorded alongside
// the explicit type.
func (uc *UseCases) SubmitFeedback(ctx context.Context, snapshotID types.SnapshotID, projectID types.ProjectID, input FeedbackInput) error {
	snapshot, err := uc.repo.Snapshots().Get(ctx, snapshotID)
	if err != nil {
		return goerr.Wrap(ErrSnapshotNotFound, "snapshot not found", goerr.V(SnapshotIDKey, snapshotID))
	}
	if _, ok := snapshot.Find(projectID); !ok {
		return goerr.Wrap(ErrProjectNotInSnapshot, "project is not part of the snapshot",
			goerr.V(SnapshotIDKey, snapshotID), goerr.V(ProjectIDKey, projectID))
	}

	event := &model.FeedbackEvent{
		SnapshotID: snapshotID,
		StudentID:  snapshot.StudentID,
		ProjectID:  projectID,
		Type:       input.Type,
		Action:     input.Type.ToImplicitAction(),
		Rating:     input.Rating,
		Comment:    input.Comment,
	}
	if err := event.Validate(); err != nil {
		return goerr.Wrap(ErrInvalidFeedback, err.Error(),
			goerr.V(SnapshotIDKey, snapshotID), goerr.V(ProjectIDKey, projectID))
	}

	// Specialization lookup is best-effort: a since-removed project still
	// gets its event recorded, just without the specialization signal
	if project, projErr := uc.repo.Projects().Get(ctx, projectID); projErr == nil {
		event.Specialization = project.Specialization
	} else {
		logging.From(ctx).Warn("could not resolve project for feedback",
			"projectID", projectID, "error", projErr)
	}

	if err := uc.repo.Feedback().Append(ctx, event); err != nil {
		return goerr.Wrap(err, "failed to persist feedback",
			goerr.V(SnapshotIDKey, snapshotID), goerr.V(ProjectIDKey, projectID))
	}

	// Future generations must see the new signal
	uc.cache.Invalidate(snapshot.StudentID)

	logging.From(ctx).Info("feedback recorded",
		"studentID", snapshot.StudentID,
		"snapshotID", snapshotID,
		"projectID", projectID,
		"type", input.Type,
		"action", event.Action)

	return nil
}
