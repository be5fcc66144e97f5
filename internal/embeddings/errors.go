// Package embeddings provides the vector embedding capability consumed by the
// similarity gate: a deterministic offline embedder and an HTTP client for an
// OpenAI-compatible embedding service.
package embeddings

import "fmt"

// EmbeddingError indicates an unusable embedding input or result.
type EmbeddingError struct {
	Message string
	Cause   error
}

func (e *EmbeddingError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("embedding error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("embedding error: %s", e.Message)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}
