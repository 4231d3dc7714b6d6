package model

import (
	"time"

	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// Explanation is the score breakdown for one recommendation entry,
// reconstructed from the persisted snapshot
type Explanation struct {
	SnapshotID         types.SnapshotID
	ProjectID          types.ProjectID
	Rank               int
	SimilarityScore    float64
	DiversityBoost     float64
	FeedbackAdjustment float64
	FinalScore         float64
	MatchingSkills     []string
	MatchingInterests  []string
	Reasoning          string
	SupervisorSummary  string
	GeneratedAt        time.Time
}
