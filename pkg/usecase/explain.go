package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// ExplainRecommendation reconstructs the score breakdown of one
// recommendation from its persisted snapshot. Superseded snapshots remain
// explainable, the history is append-only.
func (uc *UseCases) ExplainRecommendation(ctx context.Context, snapshotID types.SnapshotID, projectID types.ProjectID) (*model.Explanation, error) {
	snapshot, err := uc.repo.Snapshots().Get(ctx, snapshotID)
	if err != nil {
		return nil, goerr.Wrap(ErrSnapshotNotFound, "snapshot not found", goerr.V(SnapshotIDKey, snapshotID))
	}

	rec, ok := snapshot.Find(projectID)
	if !ok {
		return nil, goerr.Wrap(ErrProjectNotInSnapshot, "project is not part of the snapshot",
			goerr.V(SnapshotIDKey, snapshotID), goerr.V(ProjectIDKey, projectID))
	}

	return &model.Explanation{
		SnapshotID:         snapshotID,
		ProjectID:          projectID,
		Rank:               rec.Rank,
		SimilarityScore:    rec.SimilarityScore,
		DiversityBoost:     rec.DiversityBoost,
		FeedbackAdjustment: rec.FeedbackAdjustment,
		FinalScore:         rec.FinalScore,
		MatchingSkills:     rec.MatchingSkills,
		MatchingInterests:  rec.MatchingInterests,
		Reasoning:          rec.Reasoning,
		SupervisorSummary:  rec.SupervisorSummary,
		GeneratedAt:        snapshot.GeneratedAt,
	}, nil
}
