package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MakikoOhashi/lexidrill/internal/config"
	"github.com/MakikoOhashi/lexidrill/internal/embeddings"
	"github.com/MakikoOhashi/lexidrill/internal/pipeline"
	"github.com/MakikoOhashi/lexidrill/internal/similarity"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(config.Default(), nil, embeddings.NewHashEmbedder(), nil)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestWeights(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodGet, "/weights", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]float64
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 0.30, got["wl"])
}

func TestScore(t *testing.T) {
	body := `{"components": {"l": 0.5, "s": 0.5, "a": 0.5, "r": 0.5}}`
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/score", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Value float64 `json:"value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.InDelta(t, 0.5, got.Value, 1e-9)
}

func TestScore_NonFiniteComponentRejected(t *testing.T) {
	// NaN is not representable in JSON, so a malformed body stands in for it.
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/score", `{"components": {"l": nan}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTarget(t *testing.T) {
	body := `{"sources": ["The cat sat.", "The dog ran.", "The bird flew."]}`
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/target", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Stability   string `json:"stability"`
		SampleCount int    `json:"sample_count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "high", strings.ToLower(got.Stability))
	assert.Equal(t, 3, got.SampleCount)
}

func TestTarget_EmptySources(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/target", `{"sources": ["", "  "]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTarget_TooManySources(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/target", `{"sources": ["a", "b", "c", "d"]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateCloze(t *testing.T) {
	body := `{"source": "The weather is sunny and warm today."}`
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/generate/cloze", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var got pipeline.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Contains(t, got.Item.Text, "_")
	assert.Len(t, got.Item.Distractors, 3)
	assert.NotEmpty(t, got.Trail.Run.RunID)
}

func TestGenerateCloze_MissingSource(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/generate/cloze", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateChoice_UnparseableSourceIs422(t *testing.T) {
	rec := doJSON(t, newTestServer(t), http.MethodPost, "/generate/choice", `{"source": "no structure here"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/score", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHTTPStatus_Taxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation failed", &pipeline.ValidationFailedError{Reason: "shape"}, http.StatusUnprocessableEntity},
		{"similarity rejected", &pipeline.SimilarityRejectedError{Metrics: similarity.Metrics{Jaccard: 1}}, http.StatusUnprocessableEntity},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}
