package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/projhub-lab/recommender/pkg/service/resilience"
	"github.com/projhub-lab/recommender/pkg/usecase"
	"github.com/projhub-lab/recommender/pkg/utils/errutil"
)

// statusFor maps use case errors onto HTTP status codes: validation failures
// are 400, missing entities 404, degraded or circuit-open services 503,
// everything else 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidOptions),
		errors.Is(err, usecase.ErrProfileIncomplete),
		errors.Is(err, usecase.ErrNoCandidateProjects),
		errors.Is(err, usecase.ErrInvalidFeedback):
		return http.StatusBadRequest

	case errors.Is(err, usecase.ErrStudentNotFound),
		errors.Is(err, usecase.ErrSnapshotNotFound),
		errors.Is(err, usecase.ErrProjectNotInSnapshot),
		usecase.IsUnknownRequest(err):
		return http.StatusNotFound

	case errors.Is(err, resilience.ErrCircuitOpen),
		errors.Is(err, resilience.ErrAttemptsExhausted):
		return http.StatusServiceUnavailable

	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)

	// Degraded services get a friendly message, not a raw error chain
	if status == http.StatusServiceUnavailable {
		for _, health := range s.uc.Executor().AllServiceHealth() {
			if health.Healthy() {
				continue
			}
			if msg := s.uc.Executor().DegradedMessage(health.ServiceName); msg != "" {
				errutil.HandleHTTP(ctx, w, errors.New(msg), status)
				return
			}
		}
	}

	errutil.HandleHTTP(ctx, w, err, status)
}
