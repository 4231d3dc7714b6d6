package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/m-mizutani/gt"
	httpctrl "github.com/projhub-lab/recommender/pkg/controller/http"
	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/repository/memory"
	"github.com/projhub-lab/recommender/pkg/usecase"
)

type fixedEmbedder struct{}

func (fixedEmbedder) Name() string { return "fixed-embedding" }

func (fixedEmbedder) Embed(ctx context.Context, texts []string) (*model.EmbeddingBatch, error) {
	batch := &model.EmbeddingBatch{Model: "fixed-model", Dimensions: 2}
	for range texts {
		batch.Vectors = append(batch.Vectors, []float64{1, 0})
	}
	return batch, nil
}

func newTestServer(t *testing.T) (*httpctrl.Server, interfaces.Repository) {
	t.Helper()
	repo := memory.New()
	ctx := context.Background()

	gt.NoError(t, repo.Students().Put(ctx, &model.Student{
		ID:   "student-1",
		Name: "Aiko Tanaka",
		Profile: &model.StudentProfile{
			Skills:    []string{"Python"},
			Interests: []string{"machine learning"},
		},
	})).Required()
	gt.NoError(t, repo.Projects().Put(ctx, &model.Project{
		ID:             "proj-a",
		Title:          "Crop Disease Detection",
		Specialization: "Data Science",
		TechStack:      []string{"Python"},
		Approved:       true,
	})).Required()

	uc := usecase.New(repo, usecase.WithEmbeddingClient(fixedEmbedder{}))
	return httpctrl.New(uc), repo
}

func doJSON(t *testing.T, srv *httpctrl.Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		gt.NoError(t, json.NewEncoder(&buf).Encode(body)).Required()
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func TestHandleGenerate(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/students/student-1/recommendations", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		SnapshotID      string `json:"snapshotId"`
		StudentID       string `json:"studentId"`
		Status          string `json:"status"`
		Recommendations []struct {
			ProjectID      string   `json:"projectId"`
			Rank           int      `json:"rank"`
			FinalScore     float64  `json:"finalScore"`
			MatchingSkills []string `json:"matchingSkills"`
		} `json:"recommendations"`
		Metadata struct {
			Method           string `json:"method"`
			ProjectsAnalyzed int    `json:"projectsAnalyzed"`
		} `json:"metadata"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()

	gt.B(t, resp.SnapshotID != "").True()
	gt.Value(t, resp.StudentID).Equal("student-1")
	gt.Value(t, resp.Status).Equal("ACTIVE")
	gt.A(t, resp.Recommendations).Length(1).Required()
	gt.Value(t, resp.Recommendations[0].ProjectID).Equal("proj-a")
	gt.Number(t, resp.Recommendations[0].Rank).Equal(1)
	gt.Array(t, resp.Recommendations[0].MatchingSkills).Equal([]string{"Python"})
	gt.Value(t, resp.Metadata.Method).Equal("embedding-similarity")
	gt.Number(t, resp.Metadata.ProjectsAnalyzed).Equal(1)
}

func TestHandleGenerateWithOptions(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/students/student-1/recommendations", map[string]any{
		"limit":                  5,
		"excludeSpecializations": []string{"Data Science"},
	})

	// The only candidate is excluded by the filter
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestHandleGenerateUnknownStudent(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/students/missing/recommendations", nil)
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

func TestHandleGenerateInvalidOptions(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/students/student-1/recommendations", map[string]any{
		"minSimilarityScore": 2.0,
	})
	gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
}

func TestHandleGenerateAsync(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodPost, "/api/students/student-1/recommendations/async", nil)
	gt.Number(t, rec.Code).Equal(http.StatusAccepted)

	var resp struct {
		RequestID string `json:"requestId"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.B(t, resp.RequestID != "").True()

	progressRec := doJSON(t, srv, http.MethodGet, "/api/recommendations/progress/"+resp.RequestID, nil)
	gt.Number(t, progressRec.Code).Equal(http.StatusOK)
}

func TestHandleProgressUnknownRequest(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/api/recommendations/progress/never-started", nil)
	gt.Number(t, rec.Code).Equal(http.StatusNotFound)
}

func TestHandleFeedbackAndExplanation(t *testing.T) {
	srv, repo := newTestServer(t)

	genRec := doJSON(t, srv, http.MethodPost, "/api/students/student-1/recommendations", nil)
	gt.Number(t, genRec.Code).Equal(http.StatusOK)

	var snapshot struct {
		SnapshotID string `json:"snapshotId"`
	}
	gt.NoError(t, json.Unmarshal(genRec.Body.Bytes(), &snapshot)).Required()

	t.Run("submit feedback", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost,
			"/api/snapshots/"+snapshot.SnapshotID+"/projects/proj-a/feedback",
			map[string]any{"type": "like"})
		gt.Number(t, rec.Code).Equal(http.StatusCreated)

		events, err := repo.Feedback().AllForStudent(context.Background(), "student-1")
		gt.NoError(t, err).Required()
		gt.Array(t, events).Length(1).Required()
		gt.Value(t, events[0].Type).Equal(types.FeedbackLike)
	})

	t.Run("invalid feedback type", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodPost,
			"/api/snapshots/"+snapshot.SnapshotID+"/projects/proj-a/feedback",
			map[string]any{"type": "thumbs-sideways"})
		gt.Number(t, rec.Code).Equal(http.StatusBadRequest)
	})

	t.Run("explanation", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet,
			"/api/snapshots/"+snapshot.SnapshotID+"/projects/proj-a/explanation", nil)
		gt.Number(t, rec.Code).Equal(http.StatusOK)

		var resp struct {
			SnapshotID string  `json:"snapshotId"`
			ProjectID  string  `json:"projectId"`
			Rank       int     `json:"rank"`
			FinalScore float64 `json:"finalScore"`
		}
		gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
		gt.Value(t, resp.SnapshotID).Equal(snapshot.SnapshotID)
		gt.Value(t, resp.ProjectID).Equal("proj-a")
		gt.Number(t, resp.Rank).Equal(1)
	})

	t.Run("project not in snapshot", func(t *testing.T) {
		rec := doJSON(t, srv, http.MethodGet,
			"/api/snapshots/"+snapshot.SnapshotID+"/projects/proj-z/explanation", nil)
		gt.Number(t, rec.Code).Equal(http.StatusNotFound)
	})
}

func TestHandleSystemHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	// Generate once so the embedding service appears in the health report
	genRec := doJSON(t, srv, http.MethodPost, "/api/students/student-1/recommendations", nil)
	gt.Number(t, genRec.Code).Equal(http.StatusOK)

	rec := doJSON(t, srv, http.MethodGet, "/api/recommendations/system/health", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)

	var resp struct {
		Services []struct {
			ServiceName string `json:"serviceName"`
			Healthy     bool   `json:"healthy"`
			State       string `json:"state"`
		} `json:"services"`
		Load struct {
			CompletedRequests int `json:"completedRequests"`
		} `json:"load"`
	}
	gt.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp)).Required()
	gt.Array(t, resp.Services).Length(1).Required()
	gt.Value(t, resp.Services[0].ServiceName).Equal("fixed-embedding")
	gt.B(t, resp.Services[0].Healthy).True()
	gt.Value(t, resp.Services[0].State).Equal("closed")
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doJSON(t, srv, http.MethodGet, "/health", nil)
	gt.Number(t, rec.Code).Equal(http.StatusOK)
	gt.Value(t, rec.Body.String()).Equal("OK")
}
