package embeddings

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"math"
	"math/rand"
)

// Embedder converts text into fixed-dimension vectors.
type Embedder interface {
	// EmbedText embeds a single text into a dim-dimensional vector.
	EmbedText(ctx context.Context, text string, dim int) ([]float64, error)
	// EmbedTexts embeds several texts. Result ordering matches the input.
	EmbedTexts(ctx context.Context, texts []string, dim int) ([][]float64, error)
}

// HashEmbedder is the reference offline embedder. Vectors are seeded purely
// from text content and dimension, never from wall-clock time: identical text
// must always yield identical vectors so runs are reproducible.
type HashEmbedder struct{}

// NewHashEmbedder returns the deterministic offline embedder.
func NewHashEmbedder() *HashEmbedder {
	return &HashEmbedder{}
}

// EmbedText returns a unit-length vector derived from a content hash of text.
func (e *HashEmbedder) EmbedText(_ context.Context, text string, dim int) ([]float64, error) {
	if text == "" {
		return nil, &EmbeddingError{Message: "cannot embed empty text"}
	}
	if dim <= 0 {
		return nil, &EmbeddingError{Message: "dimension must be positive"}
	}

	sum := sha256.Sum256([]byte(text))
	seed := int64(binary.BigEndian.Uint64(sum[:8])) ^ int64(dim)
	rng := rand.New(rand.NewSource(seed))

	vec := make([]float64, dim)
	var norm float64
	for i := range vec {
		vec[i] = rng.Float64()*2 - 1
		norm += vec[i] * vec[i]
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, &EmbeddingError{Message: "degenerate zero vector"}
	}
	for i := range vec {
		vec[i] /= norm
	}
	return vec, nil
}

// EmbedTexts embeds each text in order.
func (e *HashEmbedder) EmbedTexts(ctx context.Context, texts []string, dim int) ([][]float64, error) {
	out := make([][]float64, len(texts))
	for i, text := range texts {
		vec, err := e.EmbedText(ctx, text, dim)
		if err != nil {
			return nil, err
		}
		out[i] = vec
	}
	return out, nil
}
