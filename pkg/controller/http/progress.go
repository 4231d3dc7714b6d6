package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

type progressResponse struct {
	RequestID string    `json:"requestId"`
	StudentID string    `json:"studentId"`
	Stage     string    `json:"stage"`
	Percent   int       `json:"percent"`
	Message   string    `json:"message"`
	Error     string    `json:"error,omitempty"`
	StartedAt time.Time `json:"startedAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type queueStatusResponse struct {
	Position        int   `json:"position"`
	ActiveRequests  int   `json:"activeRequests"`
	EstimatedWaitMS int64 `json:"estimatedWaitMs"`
}

type systemLoadResponse struct {
	ActiveRequests    int `json:"activeRequests"`
	CompletedRequests int `json:"completedRequests"`
	FailedRequests    int `json:"failedRequests"`
}

type progressReportResponse struct {
	Progress    progressResponse     `json:"progress"`
	QueueStatus *queueStatusResponse `json:"queueStatus,omitempty"`
	SystemLoad  systemLoadResponse   `json:"systemLoad"`
}

func toProgressReportResponse(report *model.ProgressReport) *progressReportResponse {
	resp := &progressReportResponse{
		Progress: progressResponse{
			RequestID: report.Progress.RequestID.String(),
			StudentID: report.Progress.StudentID.String(),
			Stage:     report.Progress.Stage.String(),
			Percent:   report.Progress.Percent,
			Message:   report.Progress.Message,
			Error:     report.Progress.Error,
			StartedAt: report.Progress.StartedAt,
			UpdatedAt: report.Progress.UpdatedAt,
		},
		SystemLoad: systemLoadResponse{
			ActiveRequests:    report.SystemLoad.ActiveRequests,
			CompletedRequests: report.SystemLoad.CompletedRequests,
			FailedRequests:    report.SystemLoad.FailedRequests,
		},
	}
	if report.QueueStatus != nil {
		resp.QueueStatus = &queueStatusResponse{
			Position:        report.QueueStatus.Position,
			ActiveRequests:  report.QueueStatus.ActiveRequests,
			EstimatedWaitMS: report.QueueStatus.EstimatedWait.Milliseconds(),
		}
	}
	return resp
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := types.RequestID(chi.URLParam(r, "requestID"))

	report, err := s.uc.GetRecommendationProgress(ctx, requestID)
	if err != nil {
		s.handleError(ctx, w, err)
		return
	}

	respondJSON(w, http.StatusOK, toProgressReportResponse(report))
}
