package rank_test

import (
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/projhub-lab/recommender/pkg/service/rank"
)

func TestRankOrdersBySimilarity(t *testing.T) {
	r := rank.New()

	query := []float64{1, 0, 0}
	candidates := [][]float64{
		{0, 1, 0},     // orthogonal
		{1, 0, 0},     // identical
		{0.9, 0.1, 0}, // close
		{-1, 0, 0},    // opposite
	}

	result, err := r.Rank(query, candidates, rank.Options{})
	gt.NoError(t, err).Required()

	gt.Array(t, result.RankedIndices).Length(4)
	gt.Value(t, result.RankedIndices[0]).Equal(1)
	gt.Value(t, result.RankedIndices[1]).Equal(2)
	gt.Value(t, result.RankedIndices[2]).Equal(0)
	gt.Value(t, result.RankedIndices[3]).Equal(3)

	// Affine map (s+1)/2: identical → 1.0, orthogonal → 0.5, opposite → 0.0
	gt.Number(t, result.NormalizedScores[1]).Equal(1.0)
	gt.Number(t, result.NormalizedScores[0]).Equal(0.5)
	gt.Number(t, result.NormalizedScores[3]).Equal(0.0)
}

func TestRankDeterministic(t *testing.T) {
	r := rank.New()

	query := []float64{0.3, 0.7, 0.2}
	candidates := [][]float64{
		{0.1, 0.9, 0.3},
		{0.5, 0.5, 0.5},
		{0.2, 0.8, 0.1},
	}

	first, err := r.Rank(query, candidates, rank.Options{})
	gt.NoError(t, err).Required()
	second, err := r.Rank(query, candidates, rank.Options{})
	gt.NoError(t, err).Required()

	gt.Value(t, second.RankedIndices).Equal(first.RankedIndices)
	gt.Value(t, second.NormalizedScores).Equal(first.NormalizedScores)
	gt.Value(t, second.Similarities).Equal(first.Similarities)
}

func TestRankTieBreakKeepsInputOrder(t *testing.T) {
	r := rank.New()

	query := []float64{1, 0}
	// Identical candidates tie exactly
	candidates := [][]float64{
		{2, 0},
		{1, 0},
		{3, 0},
	}

	result, err := r.Rank(query, candidates, rank.Options{})
	gt.NoError(t, err).Required()
	gt.Value(t, result.RankedIndices).Equal([]int{0, 1, 2})
}

func TestRankThresholdAndLimit(t *testing.T) {
	r := rank.New()

	query := []float64{1, 0}
	candidates := [][]float64{
		{1, 0},   // score 1.0
		{0, 1},   // score 0.5
		{-1, 0},  // score 0.0
		{1, 0.1}, // just under 1.0
	}

	t.Run("threshold excludes low scores", func(t *testing.T) {
		result, err := r.Rank(query, candidates, rank.Options{MinThreshold: 0.6})
		gt.NoError(t, err).Required()

		for _, idx := range result.RankedIndices {
			gt.Number(t, result.NormalizedScores[idx]).GreaterOrEqual(0.6)
		}
		gt.Array(t, result.RankedIndices).Length(2)

		// Excluded candidates still appear in the raw similarity list
		gt.Array(t, result.Similarities).Length(4)
	})

	t.Run("limit truncates after filtering", func(t *testing.T) {
		result, err := r.Rank(query, candidates, rank.Options{MaxResults: 2})
		gt.NoError(t, err).Required()
		gt.Array(t, result.RankedIndices).Length(2)
		gt.Value(t, result.RankedIndices[0]).Equal(0)
	})
}

func TestRankEmptyCandidates(t *testing.T) {
	r := rank.New()

	result, err := r.Rank([]float64{1, 0}, nil, rank.Options{})
	gt.NoError(t, err).Required()
	gt.Array(t, result.RankedIndices).Length(0)
	gt.Array(t, result.Similarities).Length(0)
}

func TestRankDimensionMismatch(t *testing.T) {
	r := rank.New()

	_, err := r.Rank([]float64{1, 0}, [][]float64{{1, 0, 0}}, rank.Options{})
	gt.Error(t, err)
}

func TestRankZeroVector(t *testing.T) {
	r := rank.New()

	result, err := r.Rank([]float64{1, 0}, [][]float64{{0, 0}}, rank.Options{})
	gt.NoError(t, err).Required()
	gt.Number(t, result.Similarities[0]).Equal(0)
	gt.Number(t, result.NormalizedScores[0]).Equal(0.5)
}

func TestRankScoresWithinBounds(t *testing.T) {
	r := rank.New()

	query := []float64{0.12, -0.7, 0.33, 0.41}
	candidates := [][]float64{
		{0.9, 0.1, -0.5, 0.2},
		{-0.3, 0.6, 0.6, -0.9},
		{0.0, 0.0, 1.0, 0.0},
	}

	result, err := r.Rank(query, candidates, rank.Options{})
	gt.NoError(t, err).Required()

	for i, score := range result.NormalizedScores {
		gt.Bool(t, score >= 0 && score <= 1).True()
		gt.Bool(t, math.Abs(result.Similarities[i]) <= 1+1e-9).True()
	}
}
