// Package ingestion turns raw source material (pasted text, OCR output,
// scraped HTML) into clean normalized text for downstream analysis.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
)

var (
	multiSpace = regexp.MustCompile(`[ \t]{2,}`)
	multiBlank = regexp.MustCompile(`\n{3,}`)
	softHyphen = regexp.MustCompile(`(\p{L})-\n(\p{L})`)
)

// ocrReplacements fixes artifacts common in OCR output. Curly quotes are
// flattened so tokenization is stable across sources.
var ocrReplacements = strings.NewReplacer(
	"“", `"`,
	"”", `"`,
	"‘", "'",
	"’", "'",
	" ", " ",
	"　", " ",
	"\uFEFF", "",
	"​", "",
	"ﬁ", "fi",
	"ﬂ", "fl",
)

// Normalize cleans raw text: line endings, OCR artifacts, hyphenated line
// breaks, runs of whitespace. Blank lines are capped at one so paragraph
// boundaries survive but padding does not.
func Normalize(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = ocrReplacements.Replace(content)

	// Rejoin words split across lines by OCR hyphenation.
	content = softHyphen.ReplaceAllString(content, "$1$2")

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		line = multiSpace.ReplaceAllString(line, " ")
		cleaned = append(cleaned, line)
	}

	result := strings.Join(cleaned, "\n")
	result = multiBlank.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// SourceID derives a stable identifier for a normalized source text. The
// same source always maps to the same ID, which keeps audit trails joinable.
func SourceID(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:8])
}
