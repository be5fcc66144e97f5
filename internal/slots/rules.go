package slots

import (
	"regexp"
	"strings"
)

// normalizeRule rewrites one family of look-alike blank glyphs to underscores.
// Rules run in order; adding a script means adding a row, not new control flow.
type normalizeRule struct {
	pattern   *regexp.Regexp
	normalize func(match string) string
}

func sameLengthUnderscores(match string) string {
	return strings.Repeat("_", len([]rune(match)))
}

var normalizeRules = []normalizeRule{
	// Full-width underscore to ASCII.
	{regexp.MustCompile(`＿`), func(string) string { return "_" }},
	// Asterisk runs of blank length.
	{regexp.MustCompile(`[*＊]{2,}`), sameLengthUnderscores},
	// En/em dash and long-vowel-bar runs.
	{regexp.MustCompile(`[\x{2013}\x{2014}\x{30FC}]{2,}`), sameLengthUnderscores},
	// Horizontal ellipsis, single or repeated.
	{regexp.MustCompile(`\x{2026}+`), func(m string) string {
		return strings.Repeat("_", 3*len([]rune(m)))
	}},
	// ASCII dot runs used as blanks.
	{regexp.MustCompile(`\.{3,}`), sameLengthUnderscores},
	// Middle-dot runs (common OCR rendering of dotted blanks).
	{regexp.MustCompile(`[・]{2,}`), sameLengthUnderscores},
}

// Normalize rewrites look-alike blank glyphs to canonical underscores.
func Normalize(text string) string {
	for _, rule := range normalizeRules {
		text = rule.pattern.ReplaceAllStringFunc(text, rule.normalize)
	}
	return text
}

var (
	// Visible prefix of 0-4 letters followed by an underscore run.
	directPattern = regexp.MustCompile(`([A-Za-z]{0,4})(_{2,10})`)
	// Last-resort pattern: letters followed by any run of blank-ish noise.
	loosePattern = regexp.MustCompile(`([A-Za-z]{0,4})([_\-~.]{2,})`)
)
