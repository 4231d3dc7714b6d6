// Package rank computes cosine similarity between a query vector and a batch
// of candidate vectors and produces a deterministic ranked index list.
package rank

import (
	"math"
	"sort"

	"github.com/m-mizutani/goerr/v2"
)

// Options control threshold filtering and truncation of the ranked output
type Options struct {
	// MinThreshold excludes candidates whose normalized score falls below it.
	// Excluded candidates are still reported in Similarities for debugging.
	MinThreshold float64
	// MaxResults truncates RankedIndices after filtering. Zero means no limit.
	MaxResults int
}

// Result holds raw similarities, normalized scores and the ranked index list
type Result struct {
	Similarities     []float64
	NormalizedScores []float64
	RankedIndices    []int
}

// Ranker ranks candidate vectors against a query vector
type Ranker struct{}

// New creates a new Ranker
func New() *Ranker {
	return &Ranker{}
}

// Rank computes cosine similarity between query and each candidate, rescales
// each score to [0,1] with the fixed affine map (s+1)/2, and returns indices
// sorted by normalized score descending. Ties keep input order, so identical
// inputs always rank identically.
//
// The fixed map keeps a candidate's score independent of the other
// candidates in the batch; repeated queries see stable scores.
//
// An empty candidate list yields empty outputs, not an error. A candidate
// whose dimension differs from the query is an error.
func (r *Ranker) Rank(query []float64, candidates [][]float64, opts Options) (*Result, error) {
	result := &Result{
		Similarities:     make([]float64, 0, len(candidates)),
		NormalizedScores: make([]float64, 0, len(candidates)),
		RankedIndices:    make([]int, 0, len(candidates)),
	}
	if len(candidates) == 0 {
		return result, nil
	}

	for i, c := range candidates {
		if len(c) != len(query) {
			return nil, goerr.New("embedding dimension mismatch",
				goerr.V("index", i), goerr.V("query_dim", len(query)), goerr.V("candidate_dim", len(c)))
		}
		result.Similarities = append(result.Similarities, cosine(query, c))
	}

	result.NormalizedScores = normalize(result.Similarities)

	for i, score := range result.NormalizedScores {
		if score >= opts.MinThreshold {
			result.RankedIndices = append(result.RankedIndices, i)
		}
	}

	// Stable sort keeps input order as the tie-break
	sort.SliceStable(result.RankedIndices, func(a, b int) bool {
		return result.NormalizedScores[result.RankedIndices[a]] > result.NormalizedScores[result.RankedIndices[b]]
	})

	if opts.MaxResults > 0 && len(result.RankedIndices) > opts.MaxResults {
		result.RankedIndices = result.RankedIndices[:opts.MaxResults]
	}

	return result, nil
}

// cosine returns the cosine similarity of two equal-length vectors.
// A zero vector has no direction and scores 0 against everything.
func cosine(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// normalize maps raw cosine scores from [-1,1] onto [0,1]. The map is affine
// and monotonic, so rank order is preserved. Clamping guards against float
// drift pushing a score a hair outside the cosine range.
func normalize(scores []float64) []float64 {
	normalized := make([]float64, len(scores))
	for i, s := range scores {
		v := (s + 1) / 2
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		normalized[i] = v
	}
	return normalized
}
