package pipeline

import (
	"regexp"
	"strings"
)

// synonyms is the fixed softening table: common words mapped to close
// synonyms that lower lexical overlap with the source. Some entries chain so
// a second round can still make progress.
var synonyms = map[string]string{
	"weather":   "climate",
	"sunny":     "bright",
	"bright":    "radiant",
	"warm":      "mild",
	"mild":      "gentle",
	"cold":      "chilly",
	"today":     "currently",
	"big":       "large",
	"large":     "sizable",
	"small":     "little",
	"little":    "tiny",
	"happy":     "glad",
	"sad":       "unhappy",
	"fast":      "quick",
	"quick":     "swift",
	"slow":      "gradual",
	"good":      "fine",
	"bad":       "poor",
	"house":     "dwelling",
	"town":      "settlement",
	"city":      "metropolis",
	"said":      "stated",
	"told":      "informed",
	"walk":      "stroll",
	"walked":    "strolled",
	"look":      "glance",
	"looked":    "glanced",
	"make":      "craft",
	"made":      "crafted",
	"begin":     "commence",
	"began":     "commenced",
	"start":     "begin",
	"end":       "finish",
	"old":       "aged",
	"new":       "recent",
	"beautiful": "lovely",
	"important": "significant",
	"people":    "residents",
	"children":  "youngsters",
	"food":      "meals",
	"water":     "fresh water",
	"morning":   "daybreak",
	"evening":   "dusk",
	"night":     "nighttime",
	"rain":      "rainfall",
	"story":     "tale",
	"quiet":     "hushed",
	"empty":     "deserted",
	"finished":  "completed",
	"very":      "quite",
	"many":      "numerous",
	"often":     "frequently",
}

// Trailing \b keeps blank prefixes safe: underscores are word characters, so
// the letters glued to a blank never match as a standalone word.
var softenWord = regexp.MustCompile(`\b[A-Za-z]+\b`)

// soften applies one round of synonym substitution to text, skipping
// protected words (answer keys). Underscore blanks are untouched because
// their prefix letters never form a standalone word.
func soften(text string, protected []string) string {
	skip := make(map[string]bool, len(protected))
	for _, p := range protected {
		skip[strings.ToLower(p)] = true
	}

	return softenWord.ReplaceAllStringFunc(text, func(word string) string {
		lower := strings.ToLower(word)
		if skip[lower] {
			return word
		}
		replacement, ok := synonyms[lower]
		if !ok {
			return word
		}
		return matchWordCase(word, replacement)
	})
}

func matchWordCase(original, replacement string) string {
	if original == "" || replacement == "" {
		return replacement
	}
	if original[0] >= 'A' && original[0] <= 'Z' {
		return strings.ToUpper(replacement[:1]) + replacement[1:]
	}
	return replacement
}
