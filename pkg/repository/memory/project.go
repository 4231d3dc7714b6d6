package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

type projectRepository struct {
	mu       sync.RWMutex
	projects map[types.ProjectID]*model.Project
}

func newProjectRepository() *projectRepository {
	return &projectRepository{
		projects: make(map[types.ProjectID]*model.Project),
	}
}

func (r *projectRepository) FindApproved(ctx context.Context, filter model.ProjectFilter) ([]*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.Project
	for _, p := range r.projects {
		if !p.Approved {
			continue
		}
		if !filter.Matches(p) {
			continue
		}
		result = append(result, copyProject(p))
	}

	// Map iteration order is random; callers need a stable candidate order
	// for deterministic ranking.
	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})
	return result, nil
}

func (r *projectRepository) Get(ctx context.Context, id types.ProjectID) (*model.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, exists := r.projects[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "project not found", goerr.V("id", id))
	}

	return copyProject(project), nil
}

func (r *projectRepository) Put(ctx context.Context, project *model.Project) error {
	if project.ID == "" {
		return goerr.New("project ID is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyProject(project)
	now := time.Now().UTC()
	if existing, ok := r.projects[project.ID]; ok {
		stored.CreatedAt = existing.CreatedAt
	} else {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = now

	r.projects[project.ID] = stored
	return nil
}

// copyProject returns a deep copy to prevent external modification
func copyProject(p *model.Project) *model.Project {
	copied := *p
	copied.TechStack = append([]string(nil), p.TechStack...)
	copied.Tags = append([]string(nil), p.Tags...)
	return &copied
}
