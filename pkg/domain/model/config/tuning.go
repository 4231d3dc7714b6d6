package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Tuning holds the heuristic constants of the recommendation pipeline.
// The defaults are starting points, not algorithmic invariants; a TOML file
// can override any of them.
type Tuning struct {
	// DiversityBoost is the one-time bonus for the first candidate of a
	// specialization not yet represented in the output.
	DiversityBoost float64 `toml:"diversity_boost"`
	// SpecializationAdjustment is the magnitude added (boosted) or
	// subtracted (penalized) per specialization from feedback learning.
	SpecializationAdjustment float64 `toml:"specialization_adjustment"`
	// BiasClamp bounds the global feedback score bias to [-BiasClamp, +BiasClamp].
	BiasClamp float64 `toml:"bias_clamp"`
	// PositiveThreshold is the signal count a specialization must exceed to
	// be boosted (or, inverted, penalized).
	PositiveThreshold int `toml:"positive_threshold"`
	// HighRating and LowRating split rating feedback into positive and
	// negative signals.
	HighRating float64 `toml:"high_rating"`
	LowRating  float64 `toml:"low_rating"`
	// CacheTTL controls snapshot expiry and cache entry lifetime.
	CacheTTL time.Duration `toml:"cache_ttl"`
	// CacheSize bounds the number of cached result sets.
	CacheSize int `toml:"cache_size"`
}

// DefaultTuning returns the tuning constants used when no file is supplied
func DefaultTuning() *Tuning {
	return &Tuning{
		DiversityBoost:           0.1,
		SpecializationAdjustment: 0.15,
		BiasClamp:                0.3,
		PositiveThreshold:        2,
		HighRating:               4.0,
		LowRating:                2.0,
		CacheTTL:                 time.Hour,
		CacheSize:                1024,
	}
}

// Validate checks if the Tuning values are usable
func (t *Tuning) Validate() error {
	if t.DiversityBoost < 0 || t.DiversityBoost > 1 {
		return goerr.New("diversity_boost must be in [0,1]", goerr.V("value", t.DiversityBoost))
	}
	if t.SpecializationAdjustment < 0 || t.SpecializationAdjustment > 1 {
		return goerr.New("specialization_adjustment must be in [0,1]", goerr.V("value", t.SpecializationAdjustment))
	}
	if t.BiasClamp < 0 || t.BiasClamp > 1 {
		return goerr.New("bias_clamp must be in [0,1]", goerr.V("value", t.BiasClamp))
	}
	if t.PositiveThreshold < 1 {
		return goerr.New("positive_threshold must be at least 1", goerr.V("value", t.PositiveThreshold))
	}
	if t.LowRating >= t.HighRating {
		return goerr.New("low_rating must be below high_rating",
			goerr.V("low", t.LowRating), goerr.V("high", t.HighRating))
	}
	if t.CacheTTL <= 0 {
		return goerr.New("cache_ttl must be positive", goerr.V("value", t.CacheTTL))
	}
	if t.CacheSize < 1 {
		return goerr.New("cache_size must be at least 1", goerr.V("value", t.CacheSize))
	}
	return nil
}
