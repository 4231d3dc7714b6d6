// Package memory provides the in-memory repository backend used for
// development and tests
package memory

import (
	"errors"

	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
)

// ErrNotFound is the sentinel wrapped by every missing-entity error
var ErrNotFound = errors.New("not found")

// Repository is an alias for Memory to match the pattern
type Repository = Memory

type Memory struct {
	students  *studentRepository
	projects  *projectRepository
	snapshots *snapshotRepository
	feedback  *feedbackRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		students:  newStudentRepository(),
		projects:  newProjectRepository(),
		snapshots: newSnapshotRepository(),
		feedback:  newFeedbackRepository(),
	}
}

func (m *Memory) Students() interfaces.StudentRepository {
	return m.students
}

func (m *Memory) Projects() interfaces.ProjectRepository {
	return m.projects
}

func (m *Memory) Snapshots() interfaces.SnapshotRepository {
	return m.snapshots
}

func (m *Memory) Feedback() interfaces.FeedbackRepository {
	return m.feedback
}

func (m *Memory) Close() error {
	return nil
}
