package model

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// Rating bounds for rating-type feedback
const (
	MinRating = 1.0
	MaxRating = 5.0
)

// FeedbackEvent is one explicit or implicit reaction of a student to a
// recommended project. Events are append-only; the learner derives all
// adjustments by re-reading the history.
type FeedbackEvent struct {
	ID         types.FeedbackID
	SnapshotID types.SnapshotID
	StudentID  types.StudentID
	ProjectID  types.ProjectID
	// Specialization of the project at feedback time, denormalized so the
	// learner can aggregate without project lookups.
	Specialization string
	Type           types.FeedbackType
	// Action is the implicit-interaction equivalent of Type, recorded for
	// usage analytics alongside the explicit signal.
	Action    types.ImplicitAction
	Rating    *float64
	Comment   string
	CreatedAt time.Time
}

// Validate checks the event at the system boundary, before anything is
// persisted
func (e *FeedbackEvent) Validate() error {
	if e.SnapshotID == "" {
		return goerr.New("feedback requires a snapshot ID")
	}
	if e.ProjectID == "" {
		return goerr.New("feedback requires a project ID")
	}
	if !e.Type.IsValid() {
		return goerr.New("invalid feedback type", goerr.V("type", e.Type))
	}
	if e.Type.RequiresRating() {
		if e.Rating == nil {
			return goerr.New("rating feedback requires a rating value")
		}
		if *e.Rating < MinRating || *e.Rating > MaxRating {
			return goerr.New("rating out of range", goerr.V("rating", *e.Rating))
		}
	}
	return nil
}

// FeedbackAdjustment is the derived, recomputed-on-read view of a student's
// feedback history. It is never stored; contradictions cannot survive a
// recomputation.
type FeedbackAdjustment struct {
	StudentID               types.StudentID
	ScoreAdjustment         float64
	BoostSpecializations    []string
	PenalizeSpecializations []string
}

// Boosts reports whether the given specialization is boosted
func (a *FeedbackAdjustment) Boosts(specialization string) bool {
	return containsString(a.BoostSpecializations, specialization)
}

// Penalizes reports whether the given specialization is penalized
func (a *FeedbackAdjustment) Penalizes(specialization string) bool {
	return containsString(a.PenalizeSpecializations, specialization)
}
