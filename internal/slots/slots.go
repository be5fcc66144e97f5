// Package slots converts noisy source text (OCR output, pasted text) into
// canonical blank-slot descriptors and rebuilds blanked display strings.
package slots

// Slot is a single blank position: an optional visible prefix and a count of
// missing letters. Slots are ephemeral; they are consumed immediately to build
// display text and answer keys.
type Slot struct {
	Index          int     `json:"index"`
	Start          int     `json:"start"`
	End            int     `json:"end"`
	Prefix         string  `json:"prefix"`
	MissingCount   int     `json:"missing_count"`
	Confidence     float64 `json:"confidence"`
	ContextSnippet string  `json:"context_snippet"`
}

// Source identifies which strategy produced a slot set.
type Source string

const (
	SourceRegex      Source = "regex"
	SourceHints      Source = "hints"
	SourceRepair     Source = "llm_repair"
	SourceLooseRegex Source = "loose_regex"
	SourceNone       Source = "none"
)

// Extraction is the result of scanning a text for blanks. Zero slots is a
// valid outcome: the caller falls back to whole-text formats instead of failing.
type Extraction struct {
	DisplayText string   `json:"display_text"`
	Slots       []Slot   `json:"slots"`
	AnswerKey   []string `json:"answer_key,omitempty"`
	Source      Source   `json:"source"`
}

// Hint is an externally supplied slot descriptor, typically derived from a
// vision/image-analysis collaborator. Start < 0 means the offset is unknown
// and the hint must be re-anchored onto the text.
type Hint struct {
	Prefix       string `json:"prefix"`
	MissingCount int    `json:"missing_count"`
	Start        int    `json:"start"`
}

const (
	maxSlots         = 6
	maxPrefixLetters = 4
	minMissing       = 2
	maxMissing       = 10
	maxRepairMissing = 8
	snippetRadius    = 24
	looseConfidence  = 0.58
)
