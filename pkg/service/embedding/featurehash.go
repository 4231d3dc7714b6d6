package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"

	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
	"github.com/projhub-lab/recommender/pkg/domain/model"
)

// FeatureHashDimension keeps the fallback vectors small; they only need to
// separate texts well enough for a best-effort ranking.
const FeatureHashDimension = 256

// FeatureHash is the deterministic degraded-mode embedder. It hashes tokens
// into signed buckets and L2-normalizes the result, so it never fails and
// needs no network. Quality is far below a real model; results produced with
// it are flagged as fallback output.
type FeatureHash struct {
	dimension int
}

var _ interfaces.EmbeddingClient = &FeatureHash{}

// NewFeatureHash creates the fallback embedder
func NewFeatureHash() *FeatureHash {
	return &FeatureHash{dimension: FeatureHashDimension}
}

// Name identifies the backend for health tracking and metadata
func (f *FeatureHash) Name() string {
	return "feature-hash"
}

// Embed maps each text to a hashed bag-of-tokens vector. Identical texts
// always produce identical vectors.
func (f *FeatureHash) Embed(ctx context.Context, texts []string) (*model.EmbeddingBatch, error) {
	batch := &model.EmbeddingBatch{
		Vectors:    make([][]float64, 0, len(texts)),
		Model:      f.Name(),
		Dimensions: f.dimension,
	}
	for _, text := range texts {
		batch.Vectors = append(batch.Vectors, f.vector(text))
	}
	return batch, nil
}

func (f *FeatureHash) vector(text string) []float64 {
	v := make([]float64, f.dimension)
	for _, token := range tokenize(text) {
		h := fnv.New64a()
		_, _ = h.Write([]byte(token))
		sum := h.Sum64()

		bucket := int(sum % uint64(f.dimension))
		// One hash bit decides the sign, spreading tokens around zero
		sign := 1.0
		if sum&(1<<63) != 0 {
			sign = -1.0
		}
		v[bucket] += sign
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})
	return fields
}
