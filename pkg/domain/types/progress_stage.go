package types

import "fmt"

// ProgressStage represents one stage of a recommendation generation request
type ProgressStage string

const (
	StageValidatingProfile      ProgressStage = "VALIDATING_PROFILE"
	StageFetchingProjects       ProgressStage = "FETCHING_PROJECTS"
	StageGeneratingEmbeddings   ProgressStage = "GENERATING_EMBEDDINGS"
	StageCalculatingSimilarity  ProgressStage = "CALCULATING_SIMILARITY"
	StageApplyingFilters        ProgressStage = "APPLYING_FILTERS"
	StageGeneratingExplanations ProgressStage = "GENERATING_EXPLANATIONS"
	StageComplete               ProgressStage = "COMPLETE"
	StageFailed                 ProgressStage = "FAILED"
)

// AllProgressStages returns the non-terminal stages in pipeline order,
// followed by the terminal stages
func AllProgressStages() []ProgressStage {
	return []ProgressStage{
		StageValidatingProfile,
		StageFetchingProjects,
		StageGeneratingEmbeddings,
		StageCalculatingSimilarity,
		StageApplyingFilters,
		StageGeneratingExplanations,
		StageComplete,
		StageFailed,
	}
}

// IsValid checks if the progress stage is valid
func (s ProgressStage) IsValid() bool {
	switch s {
	case StageValidatingProfile,
		StageFetchingProjects,
		StageGeneratingEmbeddings,
		StageCalculatingSimilarity,
		StageApplyingFilters,
		StageGeneratingExplanations,
		StageComplete,
		StageFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the stage ends the request lifecycle
func (s ProgressStage) IsTerminal() bool {
	return s == StageComplete || s == StageFailed
}

// String returns the string representation of the progress stage
func (s ProgressStage) String() string {
	return string(s)
}

// ParseProgressStage parses a string into a ProgressStage
func ParseProgressStage(v string) (ProgressStage, error) {
	s := ProgressStage(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid progress stage: %s", v)
	}
	return s, nil
}
