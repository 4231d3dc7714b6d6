package http

import (
	"net/http"
	"time"

	"github.com/projhub-lab/recommender/pkg/domain/model"
)

type serviceHealthResponse struct {
	ServiceName         string     `json:"serviceName"`
	Healthy             bool       `json:"healthy"`
	State               string     `json:"state"`
	ConsecutiveFailures int        `json:"consecutiveFailures"`
	AvgResponseTimeMS   int64      `json:"avgResponseTimeMs"`
	LastSuccess         *time.Time `json:"lastSuccess,omitempty"`
	LastFailure         *time.Time `json:"lastFailure,omitempty"`
	OpenUntil           *time.Time `json:"openUntil,omitempty"`
}

type systemHealthResponse struct {
	Services        []serviceHealthResponse `json:"services"`
	Recommendations []string                `json:"recommendations"`
	Load            systemLoadResponse      `json:"load"`
}

func toServiceHealthResponse(h *model.ServiceHealth) serviceHealthResponse {
	resp := serviceHealthResponse{
		ServiceName:         h.ServiceName,
		Healthy:             h.Healthy(),
		State:               string(h.State),
		ConsecutiveFailures: h.ConsecutiveFailures,
		AvgResponseTimeMS:   h.AvgResponseTime.Milliseconds(),
	}
	if !h.LastSuccess.IsZero() {
		resp.LastSuccess = &h.LastSuccess
	}
	if !h.LastFailure.IsZero() {
		resp.LastFailure = &h.LastFailure
	}
	if !h.OpenUntil.IsZero() {
		resp.OpenUntil = &h.OpenUntil
	}
	return resp
}

func (s *Server) handleSystemHealth(w http.ResponseWriter, r *http.Request) {
	health := s.uc.GetSystemHealth(r.Context())

	resp := &systemHealthResponse{
		Services:        make([]serviceHealthResponse, 0, len(health.Services)),
		Recommendations: health.Recommendations,
		Load: systemLoadResponse{
			ActiveRequests:    health.Load.ActiveRequests,
			CompletedRequests: health.Load.CompletedRequests,
			FailedRequests:    health.Load.FailedRequests,
		},
	}
	for _, svc := range health.Services {
		resp.Services = append(resp.Services, toServiceHealthResponse(svc))
	}

	respondJSON(w, http.StatusOK, resp)
}
