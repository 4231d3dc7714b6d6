package model

import (
	"time"

	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// Student represents a student in the surrounding matching platform.
// Only the fields the recommendation engine reads are modeled here.
type Student struct {
	ID        types.StudentID
	Name      string
	Email     string `masq:"secret"`
	Profile   *StudentProfile
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StudentProfile is the immutable profile snapshot a generation works from
type StudentProfile struct {
	Skills                   []string
	Interests                []string
	PreferredSpecializations []string
	AcademicYear             int
	GPA                      float64
}

// IsComplete reports whether the profile carries enough signal to generate
// recommendations. A profile with no skills, no interests and no preferred
// specializations cannot be matched against anything.
func (p *StudentProfile) IsComplete() bool {
	if p == nil {
		return false
	}
	return len(p.Skills) > 0 || len(p.Interests) > 0 || len(p.PreferredSpecializations) > 0
}
