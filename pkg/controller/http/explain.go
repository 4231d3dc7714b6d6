package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

type explanationResponse struct {
	SnapshotID         string    `json:"snapshotId"`
	ProjectID          string    `json:"projectId"`
	Rank               int       `json:"rank"`
	SimilarityScore    float64   `json:"similarityScore"`
	DiversityBoost     float64   `json:"diversityBoost"`
	FeedbackAdjustment float64   `json:"feedbackAdjustment"`
	FinalScore         float64   `json:"finalScore"`
	MatchingSkills     []string  `json:"matchingSkills"`
	MatchingInterests  []string  `json:"matchingInterests"`
	Reasoning          string    `json:"reasoning"`
	SupervisorSummary  string    `json:"supervisorSummary,omitempty"`
	GeneratedAt        time.Time `json:"generatedAt"`
}

func toExplanationResponse(e *model.Explanation) *explanationResponse {
	return &explanationResponse{
		SnapshotID:         e.SnapshotID.String(),
		ProjectID:          e.ProjectID.String(),
		Rank:               e.Rank,
		SimilarityScore:    e.SimilarityScore,
		DiversityBoost:     e.DiversityBoost,
		FeedbackAdjustment: e.FeedbackAdjustment,
		FinalScore:         e.FinalScore,
		MatchingSkills:     emptyToSlice(e.MatchingSkills),
		MatchingInterests:  emptyToSlice(e.MatchingInterests),
		Reasoning:          e.Reasoning,
		SupervisorSummary:  e.SupervisorSummary,
		GeneratedAt:        e.GeneratedAt,
	}
}

func (s *Server) handleExplanation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshotID := types.SnapshotID(chi.URLParam(r, "snapshotID"))
	projectID := types.ProjectID(chi.URLParam(r, "projectID"))

	explanation, err := s.uc.ExplainRecommendation(ctx, snapshotID, projectID)
	if err != nil {
		s.handleError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toExplanationResponse(explanation))
}
