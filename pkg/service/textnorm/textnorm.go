// Package textnorm converts profiles and projects into canonical text blobs
// for embedding. Field order is fixed so identical inputs always produce
// identical text, which the cache layer depends on.
package textnorm

import (
	"fmt"
	"strings"

	"github.com/projhub-lab/recommender/pkg/domain/model"
)

// Student renders a student profile as one canonical string. Missing fields
// are omitted, never an error.
func Student(profile *model.StudentProfile) string {
	if profile == nil {
		return ""
	}

	var sb strings.Builder
	writeSection(&sb, "Skills", profile.Skills)
	writeSection(&sb, "Interests", profile.Interests)
	writeSection(&sb, "Preferred specializations", profile.PreferredSpecializations)
	if profile.AcademicYear > 0 {
		fmt.Fprintf(&sb, "Academic year: %d\n", profile.AcademicYear)
	}
	if profile.GPA > 0 {
		fmt.Fprintf(&sb, "GPA: %.2f\n", profile.GPA)
	}

	return strings.TrimSpace(sb.String())
}

// Project renders a project record as one canonical string
func Project(p *model.Project) string {
	if p == nil {
		return ""
	}

	var sb strings.Builder
	if p.Title != "" {
		fmt.Fprintf(&sb, "Title: %s\n", p.Title)
	}
	if p.Abstract != "" {
		fmt.Fprintf(&sb, "Abstract: %s\n", p.Abstract)
	}
	if p.Specialization != "" {
		fmt.Fprintf(&sb, "Specialization: %s\n", p.Specialization)
	}
	writeSection(&sb, "Tags", p.Tags)
	writeSection(&sb, "Technology stack", p.TechStack)

	return strings.TrimSpace(sb.String())
}

func writeSection(sb *strings.Builder, label string, values []string) {
	kept := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			kept = append(kept, s)
		}
	}
	if len(kept) == 0 {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, strings.Join(kept, ", "))
}
