package slots

import (
	"fmt"
	"regexp"
	"strings"
)

// BlankStyle controls how a carved blank renders: a bare underscore run or a
// visible first-letter prefix followed by underscores.
type BlankStyle string

const (
	StyleFull   BlankStyle = "full"
	StylePrefix BlankStyle = "prefix"
)

// DetectStyle infers the blank style used by an extracted slot set so that
// generated candidates can match the source's rendering.
func DetectStyle(extracted []Slot) BlankStyle {
	for _, s := range extracted {
		if s.Prefix != "" {
			return StylePrefix
		}
	}
	return StyleFull
}

// Reconstruct carves the given answers out of clean text, producing the
// canonical blanked display string, ordered slots and the answer key.
// Blanking is done here deterministically, never delegated to a generation
// capability: exact character bookkeeping is the whole point.
// Invariant: len(prefix) + missingCount == len(answer) for every slot.
func Reconstruct(text string, answers []string, style BlankStyle) (Extraction, error) {
	display := text
	carved := make([]Slot, 0, len(answers))
	key := make([]string, 0, len(answers))

	for _, answer := range answers {
		answer = strings.TrimSpace(answer)
		prefixLen, missing, err := splitLengths(answer, style)
		if err != nil {
			return Extraction{}, err
		}

		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(answer) + `\b`)
		if err != nil {
			return Extraction{}, fmt.Errorf("failed to build answer pattern: %w", err)
		}
		loc := re.FindStringIndex(display)
		if loc == nil {
			return Extraction{}, fmt.Errorf("answer %q not found in text", answer)
		}

		actual := display[loc[0]:loc[1]]
		prefix := actual[:prefixLen]
		blank := prefix + strings.Repeat("_", missing)
		display = display[:loc[0]] + blank + display[loc[1]:]

		carved = append(carved, Slot{
			Start:        loc[0],
			End:          loc[0] + len(blank),
			Prefix:       prefix,
			MissingCount: missing,
			Confidence:   1.0,
		})
		key = append(key, actual)
	}

	// Carving shifts later offsets; re-derive ordering from the final display.
	sortByStart(carved, key)
	for i := range carved {
		carved[i].Index = i
		carved[i].ContextSnippet = snippet(display, carved[i].Start, carved[i].End)
	}

	return Extraction{
		DisplayText: display,
		Slots:       carved,
		AnswerKey:   key,
		Source:      SourceRegex,
	}, nil
}

// splitLengths chooses the visible-prefix length so the underscore run stays
// within the 2-10 grammar while preserving the length invariant.
func splitLengths(answer string, style BlankStyle) (prefixLen, missing int, err error) {
	n := len(answer)
	if n == 0 {
		return 0, 0, fmt.Errorf("empty answer")
	}
	for _, r := range answer {
		if !isASCIILetter(r) {
			return 0, 0, fmt.Errorf("answer %q contains non-letter characters", answer)
		}
	}

	prefixLen = 0
	if style == StylePrefix {
		prefixLen = 1
	}
	missing = n - prefixLen
	if missing > maxMissing {
		prefixLen = n - maxMissing
		missing = maxMissing
	}
	if prefixLen > maxPrefixLetters {
		return 0, 0, fmt.Errorf("answer %q is too long to blank (%d letters)", answer, n)
	}
	if missing < minMissing {
		return 0, 0, fmt.Errorf("answer %q is too short to blank (%d letters)", answer, n)
	}
	return prefixLen, missing, nil
}

func sortByStart(carved []Slot, key []string) {
	for i := 1; i < len(carved); i++ {
		for j := i; j > 0 && carved[j].Start < carved[j-1].Start; j-- {
			carved[j], carved[j-1] = carved[j-1], carved[j]
			key[j], key[j-1] = key[j-1], key[j]
		}
	}
}
