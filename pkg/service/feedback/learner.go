// Package feedback derives per-student score adjustments from the append-only
// feedback event history. The adjustment is a pure view: it is recomputed on
// every read and never stored, so it can never contradict the history.
package feedback

import (
	"context"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
	"github.com/projhub-lab/recommender/pkg/domain/model"
	"github.com/projhub-lab/recommender/pkg/domain/model/config"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// Learner aggregates feedback history into a FeedbackAdjustment
type Learner struct {
	store  interfaces.FeedbackRepository
	tuning *config.Tuning
}

// New creates a new Learner over the given feedback store
func New(store interfaces.FeedbackRepository, tuning *config.Tuning) *Learner {
	if tuning == nil {
		tuning = config.DefaultTuning()
	}
	return &Learner{
		store:  store,
		tuning: tuning,
	}
}

type signalCount struct {
	positive int
	negative int
}

// Adjustments recomputes the student's adjustment from their full feedback
// history. A specialization is boosted when its positive signals exceed the
// configured threshold while negative signals stay below it, penalized under
// the inverse condition; on a tie the positive side wins, so the two sets are
// always disjoint.
func (l *Learner) Adjustments(ctx context.Context, studentID types.StudentID) (*model.FeedbackAdjustment, error) {
	events, err := l.store.AllForStudent(ctx, studentID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load feedback history", goerr.V("studentID", studentID))
	}

	adj := &model.FeedbackAdjustment{StudentID: studentID}

	var totalPositive, totalNegative int
	bySpecialization := map[string]*signalCount{}

	for _, ev := range events {
		positive, negative := l.classify(ev)
		if !positive && !negative {
			continue
		}

		if positive {
			totalPositive++
		} else {
			totalNegative++
		}

		if ev.Specialization == "" {
			continue
		}
		count, ok := bySpecialization[ev.Specialization]
		if !ok {
			count = &signalCount{}
			bySpecialization[ev.Specialization] = count
		}
		if positive {
			count.positive++
		} else {
			count.negative++
		}
	}

	threshold := l.tuning.PositiveThreshold
	for spec, count := range bySpecialization {
		switch {
		case count.positive > threshold && count.negative <= threshold:
			adj.BoostSpecializations = append(adj.BoostSpecializations, spec)
		case count.negative > threshold && count.positive <= threshold:
			adj.PenalizeSpecializations = append(adj.PenalizeSpecializations, spec)
		case count.positive > threshold && count.negative > threshold:
			// both sides past the threshold: positive-dominant wins ties
			if count.positive >= count.negative {
				adj.BoostSpecializations = append(adj.BoostSpecializations, spec)
			} else {
				adj.PenalizeSpecializations = append(adj.PenalizeSpecializations, spec)
			}
		}
	}

	// Map iteration order is random; keep the derived view deterministic.
	sort.Strings(adj.BoostSpecializations)
	sort.Strings(adj.PenalizeSpecializations)

	adj.ScoreAdjustment = l.bias(totalPositive, totalNegative)

	return adj, nil
}

// classify splits an event into a positive or negative signal. Views are
// neutral; ratings split on the configured high/low bounds, with mid-range
// ratings counting as neither.
func (l *Learner) classify(ev *model.FeedbackEvent) (positive, negative bool) {
	switch ev.Type {
	case types.FeedbackLike, types.FeedbackBookmark:
		return true, false
	case types.FeedbackDislike, types.FeedbackDismiss:
		return false, true
	case types.FeedbackRating:
		if ev.Rating == nil {
			return false, false
		}
		if *ev.Rating >= l.tuning.HighRating {
			return true, false
		}
		if *ev.Rating <= l.tuning.LowRating {
			return false, true
		}
	}
	return false, false
}

// bias computes the global score adjustment from the positive/negative ratio,
// clamped to the configured bound
func (l *Learner) bias(positive, negative int) float64 {
	total := positive + negative
	if total == 0 {
		return 0
	}

	clamp := l.tuning.BiasClamp
	bias := clamp * float64(positive-negative) / float64(total)
	if bias > clamp {
		return clamp
	}
	if bias < -clamp {
		return -clamp
	}
	return bias
}
