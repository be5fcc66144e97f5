package similarity

import (
	"context"
	"testing"

	"github.com/MakikoOhashi/lexidrill/internal/embeddings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCosine_SelfSimilarityIsOne(t *testing.T) {
	e := embeddings.NewHashEmbedder()
	vec, err := e.EmbedText(context.Background(), "identical text", 64)
	require.NoError(t, err)

	cos, err := Cosine(vec, vec)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, cos, 1e-9)
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine([]float64{1, 0}, []float64{1, 0, 0})

	var ee *embeddings.EmbeddingError
	assert.ErrorAs(t, err, &ee)
}

func TestCosine_EmptyVectors(t *testing.T) {
	_, err := Cosine(nil, []float64{1})

	var ee *embeddings.EmbeddingError
	assert.ErrorAs(t, err, &ee)
}

func TestCosine_Orthogonal(t *testing.T) {
	cos, err := Cosine([]float64{1, 0}, []float64{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, cos, 1e-9)
}

func TestJaccard_SelfOverlapIsOne(t *testing.T) {
	text := "The weather is sunny and warm today."
	assert.Equal(t, 1.0, Jaccard(text, text))
}

func TestJaccard_DisjointTexts(t *testing.T) {
	assert.Equal(t, 0.0, Jaccard("alpha beta gamma", "delta epsilon zeta"))
}

func TestJaccard_PartialOverlap(t *testing.T) {
	j := Jaccard("the quick brown fox", "the slow brown dog")
	// Shared: the, brown. Union: the, quick, brown, fox, slow, dog.
	assert.InDelta(t, 2.0/6.0, j, 1e-9)
}

func TestJaccard_CJKUsesBigrams(t *testing.T) {
	// Identical Japanese sentences must overlap fully even without whitespace.
	text := "彼は毎朝学校に行きます"
	assert.Equal(t, 1.0, Jaccard(text, text))

	// Mostly different sentences should not fully overlap.
	j := Jaccard("彼は毎朝学校に行きます", "猫は魚が大好きです")
	assert.Less(t, j, 0.5)
}

func TestTokenize_StripsPunctuation(t *testing.T) {
	tokens := Tokenize("Hello, world! (Again)")
	assert.Equal(t, []string{"hello", "world", "again"}, tokens)
}

func TestGate(t *testing.T) {
	band := Band{MinCosine: 0.35, MaxCosine: 0.9, MaxJaccard: 0.8}

	tests := []struct {
		name   string
		m      Metrics
		accept bool
	}{
		{"inside band", Metrics{Cosine: 0.6, Jaccard: 0.3}, true},
		{"cosine too low", Metrics{Cosine: 0.2, Jaccard: 0.3}, false},
		{"cosine too high", Metrics{Cosine: 0.95, Jaccard: 0.3}, false},
		{"jaccard too high", Metrics{Cosine: 0.6, Jaccard: 0.85}, false},
		{"exact copy always rejected", Metrics{Cosine: 0.6, Jaccard: 1.0}, false},
		{"boundary cosine accepted", Metrics{Cosine: 0.35, Jaccard: 0.0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.accept, Gate(band, tt.m))
		})
	}
}

func TestGate_ExactCopyRejectedEvenWithPermissiveBand(t *testing.T) {
	band := Band{MinCosine: 0, MaxCosine: 1, MaxJaccard: 1}
	assert.False(t, Gate(band, Metrics{Cosine: 0.5, Jaccard: 1.0}))
}
