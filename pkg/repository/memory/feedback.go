package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

type feedbackRepository struct {
	mu     sync.RWMutex
	events []*model.FeedbackEvent
}

func newFeedbackRepository() *feedbackRepository {
	return &feedbackRepository{}
}

func (r *feedbackRepository) Append(ctx context.Context, event *model.FeedbackEvent) error {
	if err := event.Validate(); err != nil {
		return goerr.Wrap(err, "invalid feedback event")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyEvent(event)
	if stored.ID == "" {
		stored.ID = types.NewFeedbackID()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}

	r.events = append(r.events, stored)
	return nil
}

func (r *feedbackRepository) AllForStudent(ctx context.Context, studentID types.StudentID) ([]*model.FeedbackEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.FeedbackEvent
	for _, event := range r.events {
		if event.StudentID == studentID {
			result = append(result, copyEvent(event))
		}
	}
	return result, nil
}

// copyEvent returns a deep copy to prevent external modification
func copyEvent(e *model.FeedbackEvent) *model.FeedbackEvent {
	copied := *e
	if e.Rating != nil {
		rating := *e.Rating
		copied.Rating = &rating
	}
	return &copied
}
