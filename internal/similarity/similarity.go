// Package similarity provides the anti-plagiarism gate: embedding cosine
// similarity plus lexical token overlap, combined with AND semantics.
package similarity

import (
	"math"
	"strings"

	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/embeddings"
)

// Band is the acceptance window for a candidate against its source.
// Cosine similarity must fall inside [MinCosine, MaxCosine] and token overlap
// must not exceed MaxJaccard.
type Band struct {
	MinCosine  float64 `json:"min_cosine" toml:"min_cosine"`
	MaxCosine  float64 `json:"max_cosine" toml:"max_cosine"`
	MaxJaccard float64 `json:"max_jaccard" toml:"max_jaccard"`
}

// Metrics are the two computed signals, logged into the audit trail by the caller.
type Metrics struct {
	Cosine  float64 `json:"cosine"`
	Jaccard float64 `json:"jaccard"`
}

// Cosine returns the cosine similarity of two vectors.
// Comparing vectors of different dimensions is an EmbeddingError.
func Cosine(a, b []float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, &embeddings.EmbeddingError{Message: "cannot compare empty vectors"}
	}
	if len(a) != len(b) {
		return 0, &embeddings.EmbeddingError{Message: "vector dimension mismatch"}
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, &embeddings.EmbeddingError{Message: "cannot compare zero vectors"}
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}

// Tokenize splits text into overlap units: whitespace tokens for Latin-script
// text, character bigrams for CJK, where whitespace carries no information.
func Tokenize(text string) []string {
	if difficulty.IsCJKText(text) {
		return charBigrams(text)
	}
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:\"'()[]")
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func charBigrams(text string) []string {
	var runes []rune
	for _, r := range text {
		if !isCJKPunctOrSpace(r) {
			runes = append(runes, r)
		}
	}
	if len(runes) < 2 {
		if len(runes) == 1 {
			return []string{string(runes)}
		}
		return nil
	}
	grams := make([]string, 0, len(runes)-1)
	for i := 0; i+1 < len(runes); i++ {
		grams = append(grams, string(runes[i:i+2]))
	}
	return grams
}

func isCJKPunctOrSpace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '。', '、', '，', '？', '！', '「', '」', '（', '）':
		return true
	}
	return false
}

// Jaccard returns the token-overlap ratio between two texts.
// A text compared with itself yields exactly 1.0.
func Jaccard(a, b string) float64 {
	setA := toSet(Tokenize(a))
	setB := toSet(Tokenize(b))
	if len(setA) == 0 && len(setB) == 0 {
		return 1.0
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0.0
	}

	intersection := 0
	for token := range setA {
		if _, ok := setB[token]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

func toSet(tokens []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Gate is the pure accept/reject predicate. Both signals must pass: cosine
// inside the band and jaccard at or below the ceiling. An exact copy
// (jaccard == 1.0) is always rejected, whatever the band says.
func Gate(band Band, m Metrics) bool {
	if m.Jaccard >= 1.0 {
		return false
	}
	if m.Jaccard > band.MaxJaccard {
		return false
	}
	return m.Cosine >= band.MinCosine && m.Cosine <= band.MaxCosine
}
