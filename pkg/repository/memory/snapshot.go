package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

type snapshotRepository struct {
	mu        sync.RWMutex
	snapshots map[types.SnapshotID]*model.RecommendationSnapshot
}

func newSnapshotRepository() *snapshotRepository {
	return &snapshotRepository{
		snapshots: make(map[types.SnapshotID]*model.RecommendationSnapshot),
	}
}

func (r *snapshotRepository) Create(ctx context.Context, snapshot *model.RecommendationSnapshot) error {
	if snapshot.ID == "" {
		return goerr.New("snapshot ID is required")
	}
	if snapshot.StudentID == "" {
		return goerr.New("snapshot student ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.snapshots[snapshot.ID]; exists {
		return goerr.New("snapshot already exists", goerr.V("id", snapshot.ID))
	}

	r.snapshots[snapshot.ID] = copySnapshot(snapshot)
	return nil
}

func (r *snapshotRepository) Get(ctx context.Context, id types.SnapshotID) (*model.RecommendationSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot, exists := r.snapshots[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "snapshot not found", goerr.V("id", id))
	}

	return copySnapshot(snapshot), nil
}

func (r *snapshotRepository) SupersedeActive(ctx context.Context, studentID types.StudentID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, snapshot := range r.snapshots {
		if snapshot.StudentID == studentID && snapshot.Status == model.SnapshotActive {
			snapshot.Status = model.SnapshotSuperseded
		}
	}
	return nil
}

func (r *snapshotRepository) ListByStudent(ctx context.Context, studentID types.StudentID) ([]*model.RecommendationSnapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.RecommendationSnapshot
	for _, snapshot := range r.snapshots {
		if snapshot.StudentID == studentID {
			result = append(result, copySnapshot(snapshot))
		}
	}

	// Newest first, the order an audit view wants
	sort.Slice(result, func(i, j int) bool {
		return result[i].GeneratedAt.After(result[j].GeneratedAt)
	})
	return result, nil
}

// copySnapshot returns a deep copy to prevent external modification
func copySnapshot(s *model.RecommendationSnapshot) *model.RecommendationSnapshot {
	copied := *s
	copied.Recommendations = make([]model.ProjectRecommendation, len(s.Recommendations))
	for i, rec := range s.Recommendations {
		rec.MatchingSkills = append([]string(nil), rec.MatchingSkills...)
		rec.MatchingInterests = append([]string(nil), rec.MatchingInterests...)
		copied.Recommendations[i] = rec
	}
	return &copied
}
