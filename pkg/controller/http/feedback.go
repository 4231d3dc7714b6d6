package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/projhub-lab/recommender/pkg/domain/types"
	"github.com/projhub-lab/recommender/pkg/usecase"
	"github.com/projhub-lab/recommender/pkg/utils/errutil"
)

type feedbackRequest struct {
	Type    string   `json:"type"`
	Rating  *float64 `json:"rating,omitempty"`
	Comment string   `json:"comment,omitempty"`
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	snapshotID := types.SnapshotID(chi.URLParam(r, "snapshotID"))
	projectID := types.ProjectID(chi.URLParam(r, "projectID"))

	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	feedbackType, err := types.ParseFeedbackType(req.Type)
	if err != nil {
		errutil.HandleHTTP(ctx, w, err, http.StatusBadRequest)
		return
	}

	input := usecase.FeedbackInput{
		Type:    feedbackType,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := s.uc.SubmitFeedback(ctx, snapshotID, projectID, input); err != nil {
		s.handleError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}
