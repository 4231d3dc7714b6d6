package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/utils/errutil"
	"github.com/projhub-lab/recommender/pkg/utils/logging"
)

// optionsRequest mirrors model.RecommendationOptions for JSON decoding.
// Absent fields keep their defaults; IncludeDiversityBoost needs a pointer to
// tell "absent" from "false".
type optionsRequest struct {
	Limit                  int      `json:"limit"`
	IncludeSpecializations []string `json:"includeSpecializations"`
	ExcludeSpecializations []string `json:"excludeSpecializations"`
	MaxDifficulty          string   `json:"maxDifficulty"`
	ForceRefresh           bool     `json:"forceRefresh"`
	MinSimilarityScore     float64  `json:"minSimilarityScore"`
	IncludeDiversityBoost  *bool    `json:"includeDiversityBoost"`
}

func (req *optionsRequest) toOptions() model.RecommendationOptions {
	opts := model.DefaultRecommendationOptions()
	if req.Limit > 0 {
		opts.Limit = req.Limit
	}
	opts.IncludeSpecializations = req.IncludeSpecializations
	opts.ExcludeSpecializations = req.ExcludeSpecializations
	opts.MaxDifficulty = types.Difficulty(req.MaxDifficulty)
	opts.ForceRefresh = req.ForceRefresh
	if req.MinSimilarityScore > 0 {
		opts.MinSimilarityScore = req.MinSimilarityScore
	}
	if req.IncludeDiversityBoost != nil {
		opts.IncludeDiversityBoost = *req.IncludeDiversityBoost
	}
	return opts
}

// decodeOptions reads the request body into options. An empty body means
// default options.
func decodeOptions(r *http.Request) (model.RecommendationOptions, error) {
	var req optionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return model.RecommendationOptions{}, err
	}
	return req.toOptions(), nil
}

type recommendationEntry struct {
	ProjectID          string   `json:"projectId"`
	Rank               int      `json:"rank"`
	SimilarityScore    float64  `json:"similarityScore"`
	DiversityBoost     float64  `json:"diversityBoost"`
	FeedbackAdjustment float64  `json:"feedbackAdjustment"`
	FinalScore         float64  `json:"finalScore"`
	MatchingSkills     []string `json:"matchingSkills"`
	MatchingInterests  []string `json:"matchingInterests"`
	Reasoning          string   `json:"reasoning"`
	SupervisorSummary  string   `json:"supervisorSummary,omitempty"`
}

type snapshotResponse struct {
	SnapshotID         string                `json:"snapshotId"`
	StudentID          string                `json:"studentId"`
	Status             string                `json:"status"`
	Recommendations    []recommendationEntry `json:"recommendations"`
	AggregateReasoning string                `json:"aggregateReasoning"`
	AverageScore       float64               `json:"averageScore"`
	GeneratedAt        time.Time             `json:"generatedAt"`
	ExpiresAt          time.Time             `json:"expiresAt"`
	Metadata           snapshotMetadata      `json:"metadata"`
}

type snapshotMetadata struct {
	Method              string `json:"method"`
	UsedFallback        bool   `json:"usedFallback"`
	ProjectsAnalyzed    int    `json:"projectsAnalyzed"`
	ProcessingTimeMS    int64  `json:"processingTimeMs"`
	EmbeddingModel      string `json:"embeddingModel"`
	EmbeddingDimensions int    `json:"embeddingDimensions"`
}

func toSnapshotResponse(s *model.RecommendationSnapshot) *snapshotResponse {
	resp := &snapshotResponse{
		SnapshotID:         s.ID.String(),
		StudentID:          s.StudentID.String(),
		Status:             string(s.Status),
		Recommendations:    make([]recommendationEntry, 0, len(s.Recommendations)),
		AggregateReasoning: s.AggregateReasoning,
		AverageScore:       s.AverageScore,
		GeneratedAt:        s.GeneratedAt,
		ExpiresAt:          s.ExpiresAt,
		Metadata: snapshotMetadata{
			Method:              s.Metadata.Method,
			UsedFallback:        s.Metadata.UsedFallback,
			ProjectsAnalyzed:    s.Metadata.ProjectsAnalyzed,
			ProcessingTimeMS:    s.Metadata.ProcessingTime.Milliseconds(),
			EmbeddingModel:      s.Metadata.EmbeddingModel,
			EmbeddingDimensions: s.Metadata.EmbeddingDimensions,
		},
	}
	for _, rec := range s.Recommendations {
		entry := recommendationEntry{
			ProjectID:          rec.ProjectID.String(),
			Rank:               rec.Rank,
			SimilarityScore:    rec.SimilarityScore,
			DiversityBoost:     rec.DiversityBoost,
			FeedbackAdjustment: rec.FeedbackAdjustment,
			FinalScore:         rec.FinalScore,
			MatchingSkills:     emptyToSlice(rec.MatchingSkills),
			MatchingInterests:  emptyToSlice(rec.MatchingInterests),
			Reasoning:          rec.Reasoning,
			SupervisorSummary:  rec.SupervisorSummary,
		}
		resp.Recommendations = append(resp.Recommendations, entry)
	}
	return resp
}

// emptyToSlice keeps JSON arrays as [] instead of null
func emptyToSlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID := types.StudentID(chi.URLParam(r, "studentID"))

	opts, err := decodeOptions(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	snapshot, err := s.uc.GenerateRecommendations(ctx, studentID, opts)
	if err != nil {
		s.handleError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSnapshotResponse(snapshot))
}

func (s *Server) handleGenerateAsync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID := types.StudentID(chi.URLParam(r, "studentID"))

	opts, err := decodeOptions(r)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	requestID, err := s.uc.GenerateRecommendationsWithProgress(ctx, studentID, opts)
	if err != nil {
		s.handleError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"requestId": requestID.String(),
	})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	studentID := types.StudentID(chi.URLParam(r, "studentID"))

	snapshot, err := s.uc.RefreshRecommendations(ctx, studentID)
	if err != nil {
		s.handleError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toSnapshotResponse(snapshot))
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Default().Error("failed to encode response", "error", err)
	}
}
