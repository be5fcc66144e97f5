package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPEmbedder talks to an OpenAI-compatible /v1/embeddings endpoint.
// It is the production counterpart of HashEmbedder.
type HTTPEmbedder struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// NewHTTPEmbedder creates an embedder against the given base URL and model.
func NewHTTPEmbedder(baseURL, model string) *HTTPEmbedder {
	return &HTTPEmbedder{
		baseURL: baseURL,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// EmbedText embeds a single text. The remote service decides the true
// dimension; a mismatch against dim is reported as an EmbeddingError.
func (e *HTTPEmbedder) EmbedText(ctx context.Context, text string, dim int) ([]float64, error) {
	vecs, err := e.EmbedTexts(ctx, []string{text}, dim)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedTexts embeds several texts in one request.
func (e *HTTPEmbedder) EmbedTexts(ctx context.Context, texts []string, dim int) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, &EmbeddingError{Message: "no texts to embed"}
	}
	for _, t := range texts {
		if t == "" {
			return nil, &EmbeddingError{Message: "cannot embed empty text"}
		}
	}

	body, err := json.Marshal(embeddingRequest{Model: e.model, Input: texts})
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, embeddingURL(e.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, &EmbeddingError{Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Message: "embedding request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(resp.Body)
		return nil, &EmbeddingError{
			Message: fmt.Sprintf("embedding request returned status %d: %s", resp.StatusCode, string(payload)),
		}
	}

	var decoded embeddingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, &EmbeddingError{Message: "failed to decode response", Cause: err}
	}

	if len(decoded.Data) != len(texts) {
		return nil, &EmbeddingError{
			Message: fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(decoded.Data)),
		}
	}

	out := make([][]float64, len(decoded.Data))
	for i, d := range decoded.Data {
		if len(d.Embedding) == 0 {
			return nil, &EmbeddingError{Message: "service returned an empty vector"}
		}
		if dim > 0 && len(d.Embedding) != dim {
			return nil, &EmbeddingError{
				Message: fmt.Sprintf("dimension mismatch: expected %d, got %d", dim, len(d.Embedding)),
			}
		}
		out[i] = d.Embedding
	}
	return out, nil
}

func embeddingURL(baseURL string) string {
	if strings.HasSuffix(baseURL, "/v1") || strings.HasSuffix(baseURL, "/api") {
		return baseURL + "/embeddings"
	}
	return baseURL + "/v1/embeddings"
}
