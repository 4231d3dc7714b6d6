package interfaces

import (
	"context"

	"github.com/projhub-lab/recommender/pkg/domain/model"
)

// EmbeddingClient maps a batch of texts to fixed-length vectors.
// Implementations must preserve input order and return one vector per text.
type EmbeddingClient interface {
	Embed(ctx context.Context, texts []string) (*model.EmbeddingBatch, error)
	// Name identifies the backend for health tracking and metadata
	Name() string
}
