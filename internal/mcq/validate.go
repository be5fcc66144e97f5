package mcq

import (
	"fmt"
	"strings"

	"github.com/MakikoOhashi/lexidrill/internal/similarity"
)

// metaChoices are answer options that gut the item regardless of content.
var metaChoices = []string{
	"all of the above",
	"none of the above",
	"both a and b",
	"both b and c",
	"上記のすべて",
	"どれでもない",
}

// inferenceCues mark a question as asking for an inference rather than
// literal recall.
var inferenceCues = []string{
	"most likely",
	"probably",
	"suggest",
	"suggests",
	"infer",
	"inferred",
	"imply",
	"implies",
	"implied",
	"best supported",
	"conclude",
	"だろう",
	"考えられる",
	"推測",
}

const maxTrigramCopy = 0.65

// Validate runs the structural validators on a rewritten item against its
// source. Cheapest checks first; the first failure wins.
func Validate(candidate, source Structure) error {
	if n := len(candidate.Choices); n < 2 || n > 6 {
		return &ShapeError{Reason: fmt.Sprintf("choice count %d outside 2-6", n)}
	}
	if candidate.CorrectIndex < 0 || candidate.CorrectIndex >= len(candidate.Choices) {
		return &ShapeError{Reason: fmt.Sprintf("correct index %d out of range", candidate.CorrectIndex)}
	}

	if err := checkUnique(candidate.Choices); err != nil {
		return err
	}
	if err := checkMetaChoices(candidate.Choices); err != nil {
		return err
	}
	if err := checkShapeConsistency(candidate.Choices); err != nil {
		return err
	}
	if err := checkInferenceCue(candidate.Question); err != nil {
		return err
	}

	// Verbatim reuse of the source's correct answer is always fatal, whatever
	// the similarity scores say.
	if len(source.Choices) > source.CorrectIndex && source.CorrectIndex >= 0 {
		if candidate.Choices[candidate.CorrectIndex] == source.Choices[source.CorrectIndex] {
			return &ShapeError{Reason: "correct choice reuses the source answer verbatim"}
		}
	}

	if candidate.Passage != "" {
		if err := checkGrounding(candidate); err != nil {
			return err
		}
	}
	return nil
}

func checkUnique(choices []string) error {
	seen := make(map[string]int, len(choices))
	for i, c := range choices {
		key := strings.ToLower(strings.TrimSpace(c))
		if prev, dup := seen[key]; dup {
			return &ShapeError{Reason: fmt.Sprintf("choices %d and %d are duplicates", prev, i)}
		}
		seen[key] = i
	}
	return nil
}

func checkMetaChoices(choices []string) error {
	for i, c := range choices {
		lower := strings.ToLower(c)
		for _, meta := range metaChoices {
			if strings.Contains(lower, meta) {
				return &ShapeError{Reason: fmt.Sprintf("choice %d is a meta-choice (%q)", i, meta)}
			}
		}
	}
	return nil
}

// checkShapeConsistency requires every choice to have the same shape: all
// short phrases or all full sentences. Mixed shapes leak the answer.
func checkShapeConsistency(choices []string) error {
	sentences := 0
	for _, c := range choices {
		if isSentence(c) {
			sentences++
		}
	}
	if sentences != 0 && sentences != len(choices) {
		return &ShapeError{Reason: "choices mix phrases and full sentences"}
	}
	return nil
}

func isSentence(s string) bool {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?':
		return true
	}
	r := []rune(trimmed)
	switch r[len(r)-1] {
	case '。', '！', '？':
		return true
	}
	return false
}

func checkInferenceCue(question string) error {
	lower := strings.ToLower(question)
	for _, cue := range inferenceCues {
		if strings.Contains(lower, cue) {
			return nil
		}
	}
	return &ShapeError{Reason: "question lacks an inference cue"}
}

// checkGrounding requires the correct choice to share at least one content
// token with the passage, while no choice may copy passage 3-grams beyond the
// ceiling. The first catches fabricated answers, the second verbatim lifting.
func checkGrounding(s Structure) error {
	passageTokens := toTokenSet(s.Passage)

	correct := s.Choices[s.CorrectIndex]
	if !sharesContentToken(correct, passageTokens) {
		return &ShapeError{Reason: "correct choice shares no content token with passage"}
	}

	passageGrams := trigramSet(s.Passage)
	for i, c := range s.Choices {
		grams := trigrams(c)
		if len(grams) == 0 {
			continue
		}
		copied := 0
		for _, g := range grams {
			if _, ok := passageGrams[g]; ok {
				copied++
			}
		}
		if ratio := float64(copied) / float64(len(grams)); ratio > maxTrigramCopy {
			return &ShapeError{Reason: fmt.Sprintf("choice %d copies %.0f%% of its 3-grams from the passage", i, ratio*100)}
		}
	}
	return nil
}

func toTokenSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, t := range similarity.Tokenize(text) {
		set[t] = struct{}{}
	}
	return set
}

// sharesContentToken ignores short function words; CJK bigrams count as-is.
func sharesContentToken(text string, passage map[string]struct{}) bool {
	for _, t := range similarity.Tokenize(text) {
		if len([]rune(t)) < 4 && !isCJKToken(t) {
			continue
		}
		if _, ok := passage[t]; ok {
			return true
		}
	}
	return false
}

func isCJKToken(t string) bool {
	for _, r := range t {
		if r >= 0x3040 && r <= 0x9FFF {
			return true
		}
	}
	return false
}

func trigrams(text string) []string {
	tokens := similarity.Tokenize(text)
	if len(tokens) < 3 {
		return nil
	}
	grams := make([]string, 0, len(tokens)-2)
	for i := 0; i+2 < len(tokens); i++ {
		grams = append(grams, tokens[i]+" "+tokens[i+1]+" "+tokens[i+2])
	}
	return grams
}

func trigramSet(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, g := range trigrams(text) {
		set[g] = struct{}{}
	}
	return set
}
