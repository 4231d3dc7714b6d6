package model

import (
	"time"

	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// Project represents an approved supervisor project offered to students
type Project struct {
	ID             types.ProjectID
	Title          string
	Abstract       string
	Specialization string
	TechStack      []string
	Tags           []string
	Difficulty     types.Difficulty
	SupervisorID   types.SupervisorID
	SupervisorName string
	Approved       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProjectFilter narrows the candidate set fetched for a generation.
// Empty slices and an empty MaxDifficulty mean "no constraint".
type ProjectFilter struct {
	IncludeSpecializations []string
	ExcludeSpecializations []string
	MaxDifficulty          types.Difficulty
}

// Matches reports whether the project passes the filter. Approval status is
// checked by the repository query itself.
func (f ProjectFilter) Matches(p *Project) bool {
	if len(f.IncludeSpecializations) > 0 && !containsString(f.IncludeSpecializations, p.Specialization) {
		return false
	}
	if containsString(f.ExcludeSpecializations, p.Specialization) {
		return false
	}
	if f.MaxDifficulty != "" && !f.MaxDifficulty.Includes(p.Difficulty) {
		return false
	}
	return true
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
