package embedding_test

import (
	"context"
	"math"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/projhub-lab/recommender/pkg/service/embedding"
)

func TestFeatureHashDeterministic(t *testing.T) {
	fh := embedding.NewFeatureHash()
	ctx := context.Background()

	first, err := fh.Embed(ctx, []string{"Skills: Python, React"})
	gt.NoError(t, err).Required()
	second, err := fh.Embed(ctx, []string{"Skills: Python, React"})
	gt.NoError(t, err).Required()

	gt.Array(t, first.Vectors[0]).Equal(second.Vectors[0])
}

func TestFeatureHashDimensions(t *testing.T) {
	fh := embedding.NewFeatureHash()

	batch, err := fh.Embed(context.Background(), []string{"alpha", "beta", "gamma"})
	gt.NoError(t, err).Required()

	gt.Number(t, batch.Dimensions).Equal(embedding.FeatureHashDimension)
	gt.Value(t, batch.Model).Equal("feature-hash")
	gt.Array(t, batch.Vectors).Length(3)
	for _, v := range batch.Vectors {
		gt.Array(t, v).Length(embedding.FeatureHashDimension)
	}
}

func TestFeatureHashUnitNorm(t *testing.T) {
	fh := embedding.NewFeatureHash()

	batch, err := fh.Embed(context.Background(), []string{"machine learning with python"})
	gt.NoError(t, err).Required()

	var norm float64
	for _, x := range batch.Vectors[0] {
		norm += x * x
	}
	gt.B(t, math.Abs(math.Sqrt(norm)-1.0) < 1e-9).True()
}

func TestFeatureHashEmptyText(t *testing.T) {
	fh := embedding.NewFeatureHash()

	batch, err := fh.Embed(context.Background(), []string{""})
	gt.NoError(t, err).Required()

	// Empty text yields the zero vector rather than an error
	for _, x := range batch.Vectors[0] {
		gt.Number(t, x).Equal(0)
	}
}

func TestFeatureHashDistinguishesTexts(t *testing.T) {
	fh := embedding.NewFeatureHash()

	batch, err := fh.Embed(context.Background(), []string{
		"python machine learning",
		"watercolor painting techniques",
	})
	gt.NoError(t, err).Required()

	var dot float64
	for i := range batch.Vectors[0] {
		dot += batch.Vectors[0][i] * batch.Vectors[1][i]
	}
	// Unrelated texts should not collide into near-identical vectors
	gt.B(t, dot < 0.99).True()
}
