package mcq

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/similarity"
)

// Thresholds tune the Japanese statement-combination checks. The values are
// empirically set and should be re-validated against a labeled corpus before
// tightening; they are configuration, not invariants.
type Thresholds struct {
	NovelKanjiCeiling  float64
	StatementSimLimit  float64
	KanjiDensityTarget float64
}

var kanjiTerm = regexp.MustCompile(`\p{Han}+`)

// CheckCombo runs the statement-combination heuristics on a CJK item: novel
// kanji vocabulary share, pairwise statement similarity, and kanji density.
// Non-CJK items pass untouched.
func CheckCombo(candidate Structure, source string, th Thresholds) error {
	body := candidate.Passage + " " + candidate.Question + " " + strings.Join(candidate.Choices, " ")
	if !difficulty.IsCJKText(body) {
		return nil
	}

	if density := kanjiDensity(body); density > th.KanjiDensityTarget {
		return &ShapeError{Reason: fmt.Sprintf("kanji density %.2f exceeds target %.2f", density, th.KanjiDensityTarget)}
	}

	if share := novelKanjiShare(candidate.Choices, source); share > th.NovelKanjiCeiling {
		return &ShapeError{Reason: fmt.Sprintf("novel kanji term share %.2f exceeds ceiling %.2f", share, th.NovelKanjiCeiling)}
	}

	for i := 0; i < len(candidate.Choices); i++ {
		for j := i + 1; j < len(candidate.Choices); j++ {
			sim := similarity.Jaccard(candidate.Choices[i], candidate.Choices[j])
			if sim > th.StatementSimLimit {
				return &ShapeError{Reason: fmt.Sprintf("statements %d and %d are %.0f%% similar", i, j, sim*100)}
			}
		}
	}
	return nil
}

// kanjiDensity is the share of Han characters among all letter characters.
func kanjiDensity(text string) float64 {
	kanji, letters := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Han, r) {
			kanji++
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(kanji) / float64(letters)
}

// novelKanjiShare is the fraction of distinct kanji terms in the choices that
// never appear in the source. A high share means invented vocabulary the
// learner has no anchor for.
func novelKanjiShare(choices []string, source string) float64 {
	terms := make(map[string]struct{})
	for _, c := range choices {
		for _, t := range kanjiTerm.FindAllString(c, -1) {
			terms[t] = struct{}{}
		}
	}
	if len(terms) == 0 {
		return 0
	}

	novel := 0
	for t := range terms {
		if !strings.Contains(source, t) {
			novel++
		}
	}
	return float64(novel) / float64(len(terms))
}
