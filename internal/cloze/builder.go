// Package cloze builds and shape-checks fill-in-the-blank candidates. The
// deterministic path here is the structural baseline: it must succeed on any
// reasonable source even when the generation capability is unavailable.
package cloze

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/MakikoOhashi/lexidrill/internal/slots"
	"github.com/MakikoOhashi/lexidrill/internal/types"
)

// Words too common to make useful blanks.
var stopwords = map[string]bool{
	"about": true, "after": true, "again": true, "because": true,
	"before": true, "being": true, "between": true, "could": true,
	"every": true, "other": true, "shall": true, "should": true,
	"their": true, "there": true, "these": true, "thing": true,
	"those": true, "through": true, "under": true, "where": true,
	"which": true, "while": true, "would": true, "写真": true,
}

const (
	minBlankWord = 5
	maxBlankWord = 14
)

// BuildPrimary constructs the deterministic baseline candidate from a source.
// If the source already carries blanks, they are rebuilt verbatim; otherwise
// one content word is selected and carved. A source with no blankable word
// yields a short-answer candidate instead of an error further up.
func BuildPrimary(source string, extracted slots.Extraction) (types.Candidate, slots.Extraction, error) {
	if len(extracted.Slots) > 0 && len(extracted.AnswerKey) == len(extracted.Slots) {
		cand := types.Candidate{
			Text:    extracted.DisplayText,
			Answers: append([]string(nil), extracted.AnswerKey...),
			Format:  types.FormatCloze,
		}
		attachDistractors(&cand)
		return cand, extracted, nil
	}

	word := SelectBlankWord(source, nil)
	if word == "" {
		return types.Candidate{
			Text:   source,
			Format: types.FormatShortAnswer,
		}, slots.Extraction{DisplayText: source, Source: slots.SourceNone}, nil
	}

	rebuilt, err := slots.Reconstruct(source, []string{word}, slots.DetectStyle(extracted.Slots))
	if err != nil {
		return types.Candidate{}, slots.Extraction{}, err
	}

	cand := types.Candidate{
		Text:    rebuilt.DisplayText,
		Answers: append([]string(nil), rebuilt.AnswerKey...),
		Format:  types.FormatCloze,
	}
	attachDistractors(&cand)
	return cand, rebuilt, nil
}

// Carve blanks the given answer words out of generated text, producing a
// candidate in the source's blank style. Blanking stays on this side of the
// generation boundary: exact character bookkeeping cannot be delegated.
func Carve(text string, answers []string, style slots.BlankStyle) (types.Candidate, slots.Extraction, error) {
	rebuilt, err := slots.Reconstruct(text, answers, style)
	if err != nil {
		return types.Candidate{}, slots.Extraction{}, err
	}
	cand := types.Candidate{
		Text:    rebuilt.DisplayText,
		Answers: append([]string(nil), rebuilt.AnswerKey...),
		Format:  types.FormatCloze,
	}
	attachDistractors(&cand)
	return cand, rebuilt, nil
}

// SelectBlankWord picks the content word to blank: longest word of 5-14 ASCII
// letters that is not a stopword and not excluded, earliest occurrence on
// ties. Empty result means nothing qualifies.
func SelectBlankWord(text string, exclude []string) string {
	excluded := make(map[string]bool, len(exclude))
	for _, w := range exclude {
		excluded[strings.ToLower(w)] = true
	}

	best := ""
	for _, raw := range strings.Fields(text) {
		word := strings.TrimFunc(raw, func(r rune) bool {
			return !unicode.IsLetter(r)
		})
		if !isASCIIWord(word) {
			continue
		}
		if len(word) < minBlankWord || len(word) > maxBlankWord {
			continue
		}
		lower := strings.ToLower(word)
		if stopwords[lower] || excluded[lower] {
			continue
		}
		if len(word) > len(best) {
			best = word
		}
	}
	return best
}

func attachDistractors(c *types.Candidate) {
	for _, answer := range c.Answers {
		c.Distractors = append(c.Distractors, Distractors(answer)...)
	}
}

var blankRun = regexp.MustCompile(`_{2,}`)

func isASCIIWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
