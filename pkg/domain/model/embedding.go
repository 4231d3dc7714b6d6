package model

import "github.com/m-mizutani/goerr/v2"

// EmbeddingBatch is the order-preserving result of one batch embedding call
type EmbeddingBatch struct {
	Vectors    [][]float64
	Model      string
	Dimensions int
}

// Validate checks the batch invariants: one vector per input text, constant
// dimensionality across the batch.
func (b *EmbeddingBatch) Validate(expectTexts int) error {
	if len(b.Vectors) != expectTexts {
		return goerr.New("embedding count does not match input count",
			goerr.V("expected", expectTexts), goerr.V("got", len(b.Vectors)))
	}
	for i, v := range b.Vectors {
		if len(v) != b.Dimensions {
			return goerr.New("mixed embedding dimensions in batch",
				goerr.V("index", i), goerr.V("expected", b.Dimensions), goerr.V("got", len(v)))
		}
	}
	return nil
}
