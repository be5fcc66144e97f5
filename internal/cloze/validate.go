package cloze

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/MakikoOhashi/lexidrill/internal/slots"
)

var choiceMarker = regexp.MustCompile(`(?m)(?:^|\s)(?:[A-Da-d][).]|\([A-Da-d]\)|[1-4][).])\s`)

// Validate runs the structural shape checks on a constructed cloze candidate
// before it is scored. The checks are ordered cheapest first; the first
// failure wins and its reason goes into the audit trail.
func Validate(ext slots.Extraction, source string, expectedBlanks, wordWindow int) error {
	blanks := blankRun.FindAllString(ext.DisplayText, -1)
	if len(blanks) != expectedBlanks {
		return &ShapeError{Reason: fmt.Sprintf("expected %d blanks, found %d", expectedBlanks, len(blanks))}
	}

	if choiceMarker.MatchString(ext.DisplayText) {
		return &ShapeError{Reason: "text contains multiple-choice markers"}
	}

	if endsWithBlank(ext.DisplayText) {
		return &ShapeError{Reason: "blank positioned at end of text"}
	}

	if len(ext.AnswerKey) != len(ext.Slots) {
		return &ShapeError{Reason: fmt.Sprintf("answer key has %d entries for %d slots", len(ext.AnswerKey), len(ext.Slots))}
	}
	for i, s := range ext.Slots {
		if len(s.Prefix)+s.MissingCount != len(ext.AnswerKey[i]) {
			return &ShapeError{Reason: fmt.Sprintf("slot %d blank length %d does not match answer %q", i, len(s.Prefix)+s.MissingCount, ext.AnswerKey[i])}
		}
	}

	srcWords := len(strings.Fields(source))
	candWords := len(strings.Fields(ext.DisplayText))
	if diff := candWords - srcWords; diff > wordWindow || diff < -wordWindow {
		return &ShapeError{Reason: fmt.Sprintf("word count %d outside ±%d of source %d", candWords, wordWindow, srcWords)}
	}

	return nil
}

func endsWithBlank(text string) bool {
	trimmed := strings.TrimRight(text, " \t\n.。!?！？,、")
	return strings.HasSuffix(trimmed, "_")
}
