package usecase

import (
	"context"

	"github.com/projhub-lab/recommender/pkg/domain/model"
)

// SystemHealth aggregates service health, recovery advice and tracker load
// for the status endpoint
type SystemHealth struct {
	Services        []*model.ServiceHealth
	Recommendations []string
	Load            *model.SystemLoad
}

// GetSystemHealth reports the health of every external service seen so far
func (uc *UseCases) GetSystemHealth(ctx context.Context) *SystemHealth {
	return &SystemHealth{
		Services:        uc.executor.AllServiceHealth(),
		Recommendations: uc.executor.Recommendations(),
		Load:            uc.tracker.GetSystemLoad(),
	}
}
