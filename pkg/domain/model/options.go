package model

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/projhub-lab/recommender/pkg/domain/types"
)

// Default option values applied by DefaultRecommendationOptions
const (
	DefaultLimit              = 10
	DefaultMinSimilarityScore = 0.3
)

// RecommendationOptions controls a single generation request
type RecommendationOptions struct {
	Limit                  int
	IncludeSpecializations []string
	ExcludeSpecializations []string
	MaxDifficulty          types.Difficulty
	ForceRefresh           bool
	MinSimilarityScore     float64
	IncludeDiversityBoost  bool
}

// DefaultRecommendationOptions returns the options applied when a caller
// supplies nothing
func DefaultRecommendationOptions() RecommendationOptions {
	return RecommendationOptions{
		Limit:                 DefaultLimit,
		MinSimilarityScore:    DefaultMinSimilarityScore,
		IncludeDiversityBoost: true,
	}
}

// Validate checks option values at the system boundary
func (o RecommendationOptions) Validate() error {
	if o.Limit < 0 {
		return goerr.New("limit must not be negative", goerr.V("limit", o.Limit))
	}
	if o.MinSimilarityScore < 0 || o.MinSimilarityScore > 1 {
		return goerr.New("minSimilarityScore must be in [0,1]", goerr.V("minSimilarityScore", o.MinSimilarityScore))
	}
	if o.MaxDifficulty != "" && !o.MaxDifficulty.IsValid() {
		return goerr.New("invalid maxDifficulty", goerr.V("maxDifficulty", o.MaxDifficulty))
	}
	return nil
}

// Normalize fills zero values with defaults, leaving explicit settings alone
func (o RecommendationOptions) Normalize() RecommendationOptions {
	if o.Limit == 0 {
		o.Limit = DefaultLimit
	}
	if o.MinSimilarityScore == 0 {
		o.MinSimilarityScore = DefaultMinSimilarityScore
	}
	return o
}

// Filter converts the options into a repository project filter
func (o RecommendationOptions) Filter() ProjectFilter {
	return ProjectFilter{
		IncludeSpecializations: o.IncludeSpecializations,
		ExcludeSpecializations: o.ExcludeSpecializations,
		MaxDifficulty:          o.MaxDifficulty,
	}
}
