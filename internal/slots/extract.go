package slots

import (
	"context"
	"regexp"
	"sort"
	"strings"
)

// Repairer proposes slot descriptors for a text in which no blank pattern
// could be found directly. Implementations are expected to be unreliable;
// every proposal is re-validated against the slot grammar.
type Repairer interface {
	ProposeSlots(ctx context.Context, text string) ([]Hint, error)
}

// Extractor runs the ordered extraction strategies. The repairer is optional;
// without one the LLM-repair tier is skipped.
type Extractor struct {
	repairer Repairer
}

// NewExtractor creates an extractor. repairer may be nil.
func NewExtractor(repairer Repairer) *Extractor {
	return &Extractor{repairer: repairer}
}

// Extract scans text for blank slots. Strategies in priority order: validated
// external hints, direct regex scan, LLM repair, loose regex last resort.
// Zero slots is a valid result; the caller falls back to whole-text formats.
func (e *Extractor) Extract(ctx context.Context, text string, hints []Hint) Extraction {
	norm := Normalize(text)
	raw := scanDirect(norm)

	if len(hints) > 0 {
		if anchored, ok := anchorHints(norm, hints); ok {
			return finish(norm, anchored, raw, SourceHints)
		}
	}

	if len(raw) > 0 {
		return finish(norm, raw, raw, SourceRegex)
	}

	if e.repairer != nil {
		proposed, err := e.repairer.ProposeSlots(ctx, norm)
		if err == nil {
			if display, anchored, ok := anchorRepair(norm, proposed); ok {
				return finish(display, anchored, raw, SourceRepair)
			}
		}
	}

	if display, loose := scanLoose(norm); len(loose) > 0 {
		for i := range loose {
			loose[i].Confidence = looseConfidence
		}
		ext := finish(display, loose, nil, SourceLooseRegex)
		for i := range ext.Slots {
			ext.Slots[i].Confidence = looseConfidence
		}
		return ext
	}

	return Extraction{DisplayText: norm, Source: SourceNone}
}

// scanDirect finds prefix+underscore and bare underscore-run blanks.
func scanDirect(text string) []Slot {
	matches := directPattern.FindAllStringSubmatchIndex(text, -1)
	slots := make([]Slot, 0, len(matches))
	for _, m := range matches {
		prefix := text[m[2]:m[3]]
		underscores := text[m[4]:m[5]]
		slots = append(slots, Slot{
			Start:        m[0],
			End:          m[1],
			Prefix:       prefix,
			MissingCount: len(underscores),
		})
	}
	return slots
}

// scanLoose matches blank-ish noise runs and canonicalizes them to underscores
// in the returned display text.
func scanLoose(text string) (string, []Slot) {
	matches := loosePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text, nil
	}

	var b strings.Builder
	var slots []Slot
	last := 0
	for _, m := range matches {
		prefix := text[m[2]:m[3]]
		run := text[m[4]:m[5]]
		missing := len(run)
		if missing > maxMissing {
			missing = maxMissing
		}

		b.WriteString(text[last:m[0]])
		start := b.Len()
		b.WriteString(prefix)
		b.WriteString(strings.Repeat("_", missing))
		slots = append(slots, Slot{
			Start:        start,
			End:          b.Len(),
			Prefix:       prefix,
			MissingCount: missing,
		})
		last = m[1]
	}
	b.WriteString(text[last:])
	return b.String(), slots
}

// anchorHints validates each hint against the slot grammar and re-anchors it
// onto the text by locating the matching prefix+underscores pattern. All hints
// must validate and anchor, otherwise the hint set is discarded.
func anchorHints(text string, hints []Hint) ([]Slot, bool) {
	anchored := make([]Slot, 0, len(hints))
	for _, h := range hints {
		if !validHint(h, maxMissing) {
			return nil, false
		}
		slot, ok := locatePattern(text, h)
		if !ok {
			return nil, false
		}
		anchored = append(anchored, slot)
	}
	return anchored, true
}

func validHint(h Hint, missingCeiling int) bool {
	if len(h.Prefix) > maxPrefixLetters {
		return false
	}
	for _, r := range h.Prefix {
		if !isASCIILetter(r) {
			return false
		}
	}
	return h.MissingCount >= 1 && h.MissingCount <= missingCeiling
}

func isASCIILetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// locatePattern finds the hint's prefix+underscores pattern in the text,
// preferring the hinted start offset when one is given.
func locatePattern(text string, h Hint) (Slot, bool) {
	re, err := regexp.Compile(regexp.QuoteMeta(h.Prefix) + `_{2,10}`)
	if err != nil {
		return Slot{}, false
	}
	matches := re.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return Slot{}, false
	}

	best := matches[0]
	if h.Start >= 0 {
		for _, m := range matches {
			if abs(m[0]-h.Start) < abs(best[0]-h.Start) {
				best = m
			}
		}
	}
	return Slot{
		Start:        best[0],
		End:          best[1],
		Prefix:       h.Prefix,
		MissingCount: h.MissingCount,
	}, true
}

// anchorRepair validates LLM-proposed slots against the tighter repair grammar
// (prefix 1-4 letters, missing 1-8, at most 6 slots) and anchors each onto a
// blank-ish noise run, canonicalizing the run to underscores.
func anchorRepair(text string, proposed []Hint) (string, []Slot, bool) {
	if len(proposed) == 0 || len(proposed) > maxSlots {
		return "", nil, false
	}
	for _, h := range proposed {
		if len(h.Prefix) == 0 || !validHint(h, maxRepairMissing) {
			return "", nil, false
		}
	}

	// Claim every match against the original text before rewriting anything.
	// Proposals arrive in no particular order; rewriting as we match would
	// leave earlier slots' offsets pointing into a stale display string.
	type claim struct {
		start, end int
		hint       Hint
	}
	claims := make([]claim, 0, len(proposed))
	for _, h := range proposed {
		re, err := regexp.Compile(regexp.QuoteMeta(h.Prefix) + `[_\-~.]{2,}`)
		if err != nil {
			return "", nil, false
		}
		var loc []int
		for _, m := range re.FindAllStringIndex(text, -1) {
			taken := false
			for _, c := range claims {
				if m[0] < c.end && m[1] > c.start {
					taken = true
					break
				}
			}
			if !taken {
				loc = m
				break
			}
		}
		if loc == nil {
			return "", nil, false
		}
		claims = append(claims, claim{start: loc[0], end: loc[1], hint: h})
	}

	sort.Slice(claims, func(i, j int) bool { return claims[i].start < claims[j].start })

	var b strings.Builder
	anchored := make([]Slot, 0, len(claims))
	last := 0
	for _, c := range claims {
		b.WriteString(text[last:c.start])
		start := b.Len()
		b.WriteString(c.hint.Prefix)
		b.WriteString(strings.Repeat("_", c.hint.MissingCount))
		anchored = append(anchored, Slot{
			Start:        start,
			End:          b.Len(),
			Prefix:       c.hint.Prefix,
			MissingCount: c.hint.MissingCount,
		})
		last = c.end
	}
	b.WriteString(text[last:])
	return b.String(), anchored, true
}

// finish blends confidences against the raw-regex scan, caps the slot count,
// re-sorts by text position and attaches context snippets.
func finish(display string, final, raw []Slot, source Source) Extraction {
	for i := range final {
		if final[i].Confidence == 0 {
			final[i].Confidence = blendConfidence(final[i], i, raw)
		}
	}

	if len(final) > maxSlots {
		sort.SliceStable(final, func(i, j int) bool {
			return final[i].Confidence > final[j].Confidence
		})
		final = final[:maxSlots]
	}

	sort.SliceStable(final, func(i, j int) bool {
		return final[i].Start < final[j].Start
	})

	for i := range final {
		final[i].Index = i
		final[i].ContextSnippet = snippet(display, final[i].Start, final[i].End)
	}

	return Extraction{DisplayText: display, Slots: final, Source: source}
}

// blendConfidence scores agreement between a final slot and the raw-regex slot
// at the same ordinal position.
func blendConfidence(s Slot, ordinal int, raw []Slot) float64 {
	confidence := 0.55
	if ordinal >= len(raw) {
		return confidence
	}
	ref := raw[ordinal]
	if s.MissingCount == ref.MissingCount {
		confidence += 0.20
	}
	if s.Prefix == ref.Prefix {
		confidence += 0.15
	}
	if abs(s.Start-ref.Start) <= 3 {
		confidence += 0.10
	}
	return confidence
}

// snippet returns up to snippetRadius characters of context on each side.
func snippet(text string, start, end int) string {
	lo := start - snippetRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + snippetRadius
	if hi > len(text) {
		hi = len(text)
	}
	// Avoid splitting multi-byte runes at the cut points.
	for lo > 0 && !isRuneStart(text[lo]) {
		lo--
	}
	for hi < len(text) && !isRuneStart(text[hi]) {
		hi++
	}
	return text[lo:hi]
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
