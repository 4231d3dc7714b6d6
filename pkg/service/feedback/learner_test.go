package feedback_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/model/config"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/repository/memory"
	"github.com/projhub-lab/recommender/pkg/service/feedback"
)

const testStudent = types.StudentID("student-1")

func appendEvents(t *testing.T, repo *memory.Memory, spec string, feedbackType types.FeedbackType, rating *float64, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		err := repo.Feedback().Append(ctx, &model.FeedbackEvent{
			SnapshotID:     types.NewSnapshotID(),
			StudentID:      testStudent,
			ProjectID:      types.ProjectID("project-x"),
			Specialization: spec,
			Type:           feedbackType,
			Action:         feedbackType.ToImplicitAction(),
			Rating:         rating,
		})
		gt.NoError(t, err).Required()
	}
}

func TestAdjustmentsEmptyHistory(t *testing.T) {
	repo := memory.New()
	learner := feedback.New(repo.Feedback(), nil)

	adj, err := learner.Adjustments(context.Background(), testStudent)
	gt.NoError(t, err).Required()

	gt.Number(t, adj.ScoreAdjustment).Equal(0)
	gt.Array(t, adj.BoostSpecializations).Length(0)
	gt.Array(t, adj.PenalizeSpecializations).Length(0)
}

func TestAdjustmentsBoostsAndPenalizes(t *testing.T) {
	repo := memory.New()
	learner := feedback.New(repo.Feedback(), nil)

	// Default threshold is 2: three positives boost, three negatives penalize
	appendEvents(t, repo, "Data Science", types.FeedbackLike, nil, 3)
	appendEvents(t, repo, "Art", types.FeedbackDislike, nil, 3)

	adj, err := learner.Adjustments(context.Background(), testStudent)
	gt.NoError(t, err).Required()

	gt.Value(t, adj.BoostSpecializations).Equal([]string{"Data Science"})
	gt.Value(t, adj.PenalizeSpecializations).Equal([]string{"Art"})
	gt.Bool(t, adj.Boosts("Data Science")).True()
	gt.Bool(t, adj.Penalizes("Art")).True()
}

func TestAdjustmentsSetsAreDisjoint(t *testing.T) {
	repo := memory.New()
	learner := feedback.New(repo.Feedback(), nil)

	// Both sides past the threshold with equal counts: positive wins the tie
	appendEvents(t, repo, "Robotics", types.FeedbackLike, nil, 3)
	appendEvents(t, repo, "Robotics", types.FeedbackDislike, nil, 3)

	adj, err := learner.Adjustments(context.Background(), testStudent)
	gt.NoError(t, err).Required()

	gt.Bool(t, adj.Boosts("Robotics")).True()
	gt.Bool(t, adj.Penalizes("Robotics")).False()
}

func TestAdjustmentsRatingClassification(t *testing.T) {
	repo := memory.New()
	learner := feedback.New(repo.Feedback(), nil)

	high := 4.5
	low := 1.5
	mid := 3.0
	appendEvents(t, repo, "Data Science", types.FeedbackRating, &high, 3)
	appendEvents(t, repo, "Art", types.FeedbackRating, &low, 3)
	// Mid-range ratings are neutral and must not move any counter
	appendEvents(t, repo, "Robotics", types.FeedbackRating, &mid, 3)

	adj, err := learner.Adjustments(context.Background(), testStudent)
	gt.NoError(t, err).Required()

	gt.Bool(t, adj.Boosts("Data Science")).True()
	gt.Bool(t, adj.Penalizes("Art")).True()
	gt.Bool(t, adj.Boosts("Robotics")).False()
	gt.Bool(t, adj.Penalizes("Robotics")).False()
}

func TestAdjustmentsViewsAreNeutral(t *testing.T) {
	repo := memory.New()
	learner := feedback.New(repo.Feedback(), nil)

	appendEvents(t, repo, "Data Science", types.FeedbackView, nil, 10)

	adj, err := learner.Adjustments(context.Background(), testStudent)
	gt.NoError(t, err).Required()
	gt.Number(t, adj.ScoreAdjustment).Equal(0)
	gt.Array(t, adj.BoostSpecializations).Length(0)
}

func TestAdjustmentsBiasClamped(t *testing.T) {
	repo := memory.New()
	tuning := config.DefaultTuning()
	learner := feedback.New(repo.Feedback(), tuning)

	appendEvents(t, repo, "Data Science", types.FeedbackLike, nil, 50)

	adj, err := learner.Adjustments(context.Background(), testStudent)
	gt.NoError(t, err).Required()

	// All-positive history pins the bias at the clamp, never beyond
	gt.Number(t, adj.ScoreAdjustment).Equal(tuning.BiasClamp)

	t.Run("negative direction", func(t *testing.T) {
		repo := memory.New()
		learner := feedback.New(repo.Feedback(), tuning)
		appendEvents(t, repo, "Art", types.FeedbackDismiss, nil, 50)

		adj, err := learner.Adjustments(context.Background(), testStudent)
		gt.NoError(t, err).Required()
		gt.Number(t, adj.ScoreAdjustment).Equal(-tuning.BiasClamp)
	})
}

func TestAdjustmentsIdempotent(t *testing.T) {
	repo := memory.New()
	learner := feedback.New(repo.Feedback(), nil)

	appendEvents(t, repo, "Data Science", types.FeedbackBookmark, nil, 4)
	appendEvents(t, repo, "Art", types.FeedbackDismiss, nil, 1)

	first, err := learner.Adjustments(context.Background(), testStudent)
	gt.NoError(t, err).Required()
	second, err := learner.Adjustments(context.Background(), testStudent)
	gt.NoError(t, err).Required()

	gt.Value(t, second).Equal(first)
}
