package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/repository/memory"
	"github.com/projhub-lab/recommender/pkg/usecase"
)

func waitTerminal(t *testing.T, uc *usecase.UseCases, requestID types.RequestID) *model.ProgressReport {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		report, err := uc.GetRecommendationProgress(context.Background(), requestID)
		gt.NoError(t, err).Required()
		if report.Progress.IsTerminal() {
			return report
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("generation did not reach a terminal state")
	return nil
}

func TestGenerateRecommendationsWithProgress(t *testing.T) {
	repo := memory.New()
	seedStudent(t, repo)
	seedProjects(t, repo)

	uc := usecase.New(repo, usecase.WithEmbeddingClient(&stubEmbedder{}))
	ctx := context.Background()

	requestID, err := uc.GenerateRecommendationsWithProgress(ctx, "student-1", model.DefaultRecommendationOptions())
	gt.NoError(t, err).Required()
	gt.B(t, requestID != "").True()

	report := waitTerminal(t, uc, requestID)
	gt.Value(t, report.Progress.Stage).Equal(types.StageComplete)
	gt.Number(t, report.Progress.Percent).Equal(100)
	gt.Number(t, report.SystemLoad.CompletedRequests).Equal(1)

	// The background generation persisted an active snapshot
	list, err := repo.Snapshots().ListByStudent(ctx, "student-1")
	gt.NoError(t, err).Required()
	gt.Array(t, list).Length(1).Required()
	gt.Value(t, list[0].Status).Equal(model.SnapshotActive)
}

func TestGenerateRecommendationsWithProgressFailure(t *testing.T) {
	repo := memory.New()
	seedProjects(t, repo)

	uc := usecase.New(repo, usecase.WithEmbeddingClient(&stubEmbedder{}))

	// Unknown student: the request must end FAILED, never hang
	requestID, err := uc.GenerateRecommendationsWithProgress(context.Background(), "missing", model.DefaultRecommendationOptions())
	gt.NoError(t, err).Required()

	report := waitTerminal(t, uc, requestID)
	gt.Value(t, report.Progress.Stage).Equal(types.StageFailed)
	gt.B(t, report.Progress.Error != "").True()
	gt.Number(t, report.SystemLoad.FailedRequests).Equal(1)
}

func TestGenerateRecommendationsWithProgressInvalidOptions(t *testing.T) {
	repo := memory.New()
	seedStudent(t, repo)

	uc := usecase.New(repo, usecase.WithEmbeddingClient(&stubEmbedder{}))

	opts := model.RecommendationOptions{Limit: -1}
	_, err := uc.GenerateRecommendationsWithProgress(context.Background(), "student-1", opts)
	gt.Error(t, err)
	gt.B(t, errors.Is(err, usecase.ErrInvalidOptions)).True()
}

func TestGetRecommendationProgressUnknownRequest(t *testing.T) {
	uc := usecase.New(memory.New(), usecase.WithEmbeddingClient(&stubEmbedder{}))

	_, err := uc.GetRecommendationProgress(context.Background(), "never-started")
	gt.Error(t, err)
	gt.B(t, usecase.IsUnknownRequest(err)).True()
}

func TestGetSystemHealth(t *testing.T) {
	repo := memory.New()
	seedStudent(t, repo)
	seedProjects(t, repo)

	uc := usecase.New(repo, usecase.WithEmbeddingClient(&stubEmbedder{}))
	ctx := context.Background()

	_, err := uc.GenerateRecommendations(ctx, "student-1", model.DefaultRecommendationOptions())
	gt.NoError(t, err).Required()

	health := uc.GetSystemHealth(ctx)
	gt.Array(t, health.Services).Length(1).Required()
	gt.Value(t, health.Services[0].ServiceName).Equal("stub-embedding")
	gt.Value(t, health.Services[0].State).Equal(model.BreakerClosed)
}
