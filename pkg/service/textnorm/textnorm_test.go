package textnorm_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/service/textnorm"
)

func TestStudentCanonicalOrder(t *testing.T) {
	profile := &model.StudentProfile{
		Skills:                   []string{"Python", "React"},
		Interests:                []string{"AI"},
		PreferredSpecializations: []string{"Data Science"},
		AcademicYear:             3,
		GPA:                      3.5,
	}

	got := textnorm.Student(profile)
	lines := strings.Split(got, "\n")
	gt.Array(t, lines).Equal([]string{
		"Skills: Python, React",
		"Interests: AI",
		"Preferred specializations: Data Science",
		"Academic year: 3",
		"GPA: 3.50",
	})
}

func TestStudentDeterministic(t *testing.T) {
	profile := &model.StudentProfile{
		Skills:    []string{"Go", "SQL"},
		Interests: []string{"Databases", "Networking"},
	}

	gt.Value(t, textnorm.Student(profile)).Equal(textnorm.Student(profile))
}

func TestStudentOmitsEmptyFields(t *testing.T) {
	profile := &model.StudentProfile{
		Skills: []string{"Python", "  ", ""},
	}

	gt.Value(t, textnorm.Student(profile)).Equal("Skills: Python")
}

func TestStudentNil(t *testing.T) {
	gt.Value(t, textnorm.Student(nil)).Equal("")
}

func TestProjectCanonicalOrder(t *testing.T) {
	project := &model.Project{
		Title:          "Crop Disease Detection",
		Abstract:       "Detect plant diseases from leaf photos.",
		Specialization: "Data Science",
		Tags:           []string{"ml", "vision"},
		TechStack:      []string{"Python", "TensorFlow"},
	}

	got := textnorm.Project(project)
	lines := strings.Split(got, "\n")
	gt.Array(t, lines).Equal([]string{
		"Title: Crop Disease Detection",
		"Abstract: Detect plant diseases from leaf photos.",
		"Specialization: Data Science",
		"Tags: ml, vision",
		"Technology stack: Python, TensorFlow",
	})
}

func TestProjectOmitsEmptyFields(t *testing.T) {
	project := &model.Project{
		Title: "Untitled Effort",
	}

	gt.Value(t, textnorm.Project(project)).Equal("Title: Untitled Effort")
}

func TestProjectNil(t *testing.T) {
	gt.Value(t, textnorm.Project(nil)).Equal("")
}
