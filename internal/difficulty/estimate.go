package difficulty

import (
	"strings"
	"unicode"
)

// EstimateOptions tunes the deterministic component estimation. The CJK
// thresholds are empirically tuned and therefore configuration, not invariants.
type EstimateOptions struct {
	// LongWordLetters is the minimum letter count for a word to count as "hard".
	LongWordLetters int
	// MaxReasoningCues caps the reasoning-cue count used for R normalization.
	MaxReasoningCues int
	// KanjiDensityCeiling is the Han-rune ratio at which L saturates for CJK text.
	KanjiDensityCeiling float64
}

// DefaultEstimateOptions returns the default estimation tuning.
func DefaultEstimateOptions() EstimateOptions {
	return EstimateOptions{
		LongWordLetters:     7,
		MaxReasoningCues:    4,
		KanjiDensityCeiling: 0.55,
	}
}

var reasoningCues = []string{
	"because", "therefore", "however", "although", "unless", "implies",
	"conclude", "infer", "if ", "ため", "しかし", "したがって", "なぜなら",
}

var ambiguityCues = []string{
	"not ", "except", "least", "most likely", "best", "mainly", "適切でない", "誤り",
}

// EstimateComponents produces a deterministic (L, S, A, R) sample for a text.
// It is a pure heuristic: identical text always yields identical components.
// CJK text is measured by kanji density and bigram variety instead of word
// length, since whitespace segmentation is meaningless there.
func EstimateComponents(text string, opts EstimateOptions) Components {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Components{}
	}

	var l float64
	if isCJK(trimmed) {
		l = cjkLexical(trimmed, opts)
	} else {
		l = latinLexical(trimmed, opts)
	}

	s := structural(trimmed)

	lower := strings.ToLower(trimmed)
	a := 0.5
	for _, cue := range ambiguityCues {
		if strings.Contains(lower, cue) {
			a += 0.05
		}
	}
	a = Clamp01(a)

	cueCount := 0
	for _, cue := range reasoningCues {
		cueCount += strings.Count(lower, cue)
	}
	if cueCount > opts.MaxReasoningCues {
		cueCount = opts.MaxReasoningCues
	}
	// MaxReasoningCues > 0 by construction of the options.
	r, _ := NormalizeReasoningDepth(cueCount, opts.MaxReasoningCues)

	return Components{L: l, S: s, A: a, R: r}
}

func latinLexical(text string, opts EstimateOptions) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	totalLetters := 0
	longWords := 0
	for _, w := range words {
		letters := 0
		for _, r := range w {
			if unicode.IsLetter(r) {
				letters++
			}
		}
		totalLetters += letters
		if letters >= opts.LongWordLetters {
			longWords++
		}
	}
	avgLen := float64(totalLetters) / float64(len(words))
	longRatio := float64(longWords) / float64(len(words))
	return Clamp01(0.55*(avgLen/9.0) + 0.45*longRatio)
}

func cjkLexical(text string, opts EstimateOptions) float64 {
	runes := []rune(text)
	han := 0
	hanBigrams := make(map[string]struct{})
	var prev rune
	for _, r := range runes {
		if unicode.Is(unicode.Han, r) {
			han++
			if unicode.Is(unicode.Han, prev) {
				hanBigrams[string([]rune{prev, r})] = struct{}{}
			}
		}
		prev = r
	}
	if len(runes) == 0 {
		return 0
	}
	density := float64(han) / float64(len(runes))
	variety := float64(len(hanBigrams)) / 20.0
	if variety > 1 {
		variety = 1
	}
	return Clamp01(0.7*(density/opts.KanjiDensityCeiling) + 0.3*variety)
}

func structural(text string) float64 {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return 0
	}
	totalTokens := 0
	for _, s := range sentences {
		if isCJK(s) {
			totalTokens += len([]rune(s)) / 2
		} else {
			totalTokens += len(strings.Fields(s))
		}
	}
	avgLen := float64(totalTokens) / float64(len(sentences))
	clauseMarks := strings.Count(text, ",") + strings.Count(text, ";") +
		strings.Count(text, "、") + strings.Count(text, "，")
	clauseScore := float64(clauseMarks) / float64(len(sentences)) / 3.0
	if clauseScore > 1 {
		clauseScore = 1
	}
	return Clamp01(0.7*(avgLen/25.0) + 0.3*clauseScore)
}

func splitSentences(text string) []string {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		switch r {
		case '.', '!', '?', '。', '！', '？':
			return true
		}
		return false
	})
	out := parts[:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}

// isCJK reports whether the text is predominantly Han/Kana/Hangul script.
func isCJK(text string) bool {
	letters, cjk := 0, 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.Is(unicode.Han, r) || unicode.Is(unicode.Hiragana, r) ||
				unicode.Is(unicode.Katakana, r) || unicode.Is(unicode.Hangul, r) {
				cjk++
			}
		}
	}
	if letters == 0 {
		return false
	}
	return float64(cjk)/float64(letters) > 0.3
}

// IsCJKText reports whether text is predominantly CJK. Exported for the
// tokenization choice in similarity checks.
func IsCJKText(text string) bool { return isCJK(text) }
