package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

type studentRepository struct {
	mu       sync.RWMutex
	students map[types.StudentID]*model.Student
}

func newStudentRepository() *studentRepository {
	return &studentRepository{
		students: make(map[types.StudentID]*model.Student),
	}
}

func (r *studentRepository) GetWithProfile(ctx context.Context, id types.StudentID) (*model.Student, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	student, exists := r.students[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "student not found", goerr.V("id", id))
	}

	return copyStudent(student), nil
}

func (r *studentRepository) Put(ctx context.Context, student *model.Student) error {
	if student.ID == "" {
		return goerr.New("student ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyStudent(student)
	now := time.Now().UTC()
	if existing, ok := r.students[student.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.students[student.ID] = stored
	return nil
}

// copyStudent returns a deep copy to prevent external modification
func copyStudent(s *model.Student) *model.Student {
	copied := *s
	if s.Profile != nil {
		profile := *s.Profile
		profile.Skills = append([]string(nil), s.Profile.Skills...)
		profile.Interests = append([]string(nil), s.Profile.Interests...)
		profile.PreferredSpecializations = append([]string(nil), s.Profile.PreferredSpecializations...)
		copied.Profile = &profile
	}
	return &copied
}
