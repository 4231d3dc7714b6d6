package model

import (
	"time"

	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// SnapshotStatus represents the lifecycle status of a recommendation snapshot
type SnapshotStatus string

const (
	SnapshotActive     SnapshotStatus = "ACTIVE"
	SnapshotSuperseded SnapshotStatus = "SUPERSEDED"
)

// ProjectRecommendation is one ranked entry of a snapshot
type ProjectRecommendation struct {
	ProjectID          types.ProjectID
	Rank               int
	SimilarityScore    float64 // normalized cosine similarity in [0,1]
	DiversityBoost     float64
	FeedbackAdjustment float64
	FinalScore         float64 // clamped to [0,1]
	MatchingSkills     []string
	MatchingInterests  []string
	Reasoning          string
	SupervisorSummary  string
}

// GenerationMetadata records how a snapshot was produced
type GenerationMetadata struct {
	Method              string
	UsedFallback        bool
	ProjectsAnalyzed    int
	ProcessingTime      time.Duration
	EmbeddingModel      string
	EmbeddingDimensions int
}

// RecommendationSnapshot is an immutable, timestamped result set for one
// student. A new generation supersedes the previous active snapshot; nothing
// is ever deleted, so feedback can always be attributed to the snapshot it
// was given on.
type RecommendationSnapshot struct {
	ID                 types.SnapshotID
	StudentID          types.StudentID
	Status             SnapshotStatus
	Recommendations    []ProjectRecommendation
	AggregateReasoning string
	AverageScore       float64
	GeneratedAt        time.Time
	ExpiresAt          time.Time
	Metadata           GenerationMetadata
}

// IsExpired reports whether the snapshot is past its expiry at the given time
func (s *RecommendationSnapshot) IsExpired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// Find returns the recommendation entry for the given project, if present
func (s *RecommendationSnapshot) Find(projectID types.ProjectID) (*ProjectRecommendation, bool) {
	for i := range s.Recommendations {
		if s.Recommendations[i].ProjectID == projectID {
			return &s.Recommendations[i], true
		}
	}
	return nil, false
}
