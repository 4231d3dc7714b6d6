package interfaces

import (
	"context"

	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// Repository defines the interface for data persistence
type Repository interface {
	Students() StudentRepository
	Projects() ProjectRepository
	Snapshots() SnapshotRepository
	Feedback() FeedbackRepository

	Close() error
}

// StudentRepository reads students owned by the surrounding CRUD layer
type StudentRepository interface {
	// GetWithProfile returns the student including their profile. The error
	// wraps the backend's ErrNotFound when the student does not exist.
	GetWithProfile(ctx context.Context, id types.StudentID) (*model.Student, error)
	Put(ctx context.Context, student *model.Student) error
}

// ProjectRepository reads candidate projects owned by the surrounding CRUD layer
type ProjectRepository interface {
	// FindApproved returns approved projects passing the filter
	FindApproved(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error)
	Get(ctx context.Context, id types.ProjectID) (*model.Project, error)
	Put(ctx context.Context, project *model.Project) error
}

// SnapshotRepository is the append-only store of recommendation snapshots
type SnapshotRepository interface {
	Create(ctx context.Context, snapshot *model.RecommendationSnapshot) error
	Get(ctx context.Context, id types.SnapshotID) (*model.RecommendationSnapshot, error)
	// SupersedeActive flips every active snapshot of the student to
	// SUPERSEDED. It is a monotonic status change, never a delete.
	SupersedeActive(ctx context.Context, studentID types.StudentID) error
	ListByStudent(ctx context.Context, studentID types.StudentID) ([]*model.RecommendationSnapshot, error)
}

// FeedbackRepository is the append-only store of feedback events
type FeedbackRepository interface {
	Append(ctx context.Context, event *model.FeedbackEvent) error
	AllForStudent(ctx context.Context, studentID types.StudentID) ([]*model.FeedbackEvent, error)
}
