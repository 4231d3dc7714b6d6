package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/projhub-lab/recommender/pkg/domain/interfaces"
	"github.com/projhub-lab/recommender/pkg/domain/model"
)

// GeminiDimension matches the text-embedding-004 output size
const GeminiDimension = 768

// Gemini embeds texts through a gollem LLM client
type Gemini struct {
	llm       gollem.LLMClient
	dimension int
}

var _ interfaces.EmbeddingClient = &Gemini{}

// NewGemini creates an embedding client over the given LLM client
func NewGemini(llm gollem.LLMClient) (*Gemini, error) {
	if llm == nil {
		return nil, goerr.New("LLM client is required")
	}
	return &Gemini{
		llm:       llm,
		dimension: GeminiDimension,
	}, nil
}

// Name identifies the backend for health tracking
func (g *Gemini) Name() string {
	return "gemini-embedding"
}

// Embed generates one vector per text in a single batch call
func (g *Gemini) Embed(ctx context.Context, texts []string) (*model.EmbeddingBatch, error) {
	if len(texts) == 0 {
		return &model.EmbeddingBatch{}, nil
	}

	vectors, err := g.llm.GenerateEmbedding(ctx, g.dimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings", goerr.V("texts", len(texts)))
	}

	batch := &model.EmbeddingBatch{
		Vectors:    vectors,
		Model:      "text-embedding-004",
		Dimensions: g.dimension,
	}
	if err := batch.Validate(len(texts)); err != nil {
		return nil, err
	}
	return batch, nil
}
