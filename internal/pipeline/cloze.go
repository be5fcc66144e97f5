package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/MakikoOhashi/lexidrill/internal/cloze"
	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/llm"
	"github.com/MakikoOhashi/lexidrill/internal/prompts"
	"github.com/MakikoOhashi/lexidrill/internal/schemas"
	"github.com/MakikoOhashi/lexidrill/internal/similarity"
	"github.com/MakikoOhashi/lexidrill/internal/slots"
	"github.com/MakikoOhashi/lexidrill/internal/types"
)

// clozeEntry pairs a structurally valid candidate with the extraction that
// produced it, kept for revalidation after soften/repair passes.
type clozeEntry struct {
	cand types.Candidate
	ext  slots.Extraction
}

// GenerateCloze runs the cloze task through the state machine.
func (e *Engine) GenerateCloze(ctx context.Context, req Request) (*Result, error) {
	r := e.newRun(types.TaskCloze, req.Source)
	band := e.cfg.Similarity.Cloze
	weights := e.weights(req.Weights)
	window := e.cfg.Generation.WordCountWindow

	srcExt := e.extractor().Extract(ctx, req.Source, req.Hints)
	r.record(types.StageStructureLoaded, fmt.Sprintf("%d source slots via %s", len(srcExt.Slots), srcExt.Source))

	var entries []clozeEntry
	lastReason := "no candidate constructed"
	lastText := ""
	constructed := false

	primary, primaryExt, err := cloze.BuildPrimary(req.Source, srcExt)
	if err != nil {
		lastReason = err.Error()
	} else {
		constructed = true
		if verr := cloze.Validate(primaryExt, req.Source, len(primaryExt.Slots), window); verr != nil {
			lastReason = verr.Error()
			lastText = primary.Text
		} else {
			entries = append(entries, clozeEntry{primary, primaryExt})
		}
	}

	style := slots.DetectStyle(srcExt.Slots)
	exclusions := append(append([]string(nil), srcExt.AnswerKey...), primary.Answers...)
	blankCount := len(srcExt.Slots)
	if blankCount < 1 {
		blankCount = 1
	}
	if blankCount > 2 {
		blankCount = 2
	}

	if e.client != nil {
		entries, lastReason, lastText, constructed, err = e.clozeAttempts(ctx, r, req.Source, style, exclusions, blankCount, entries, lastReason, lastText, constructed)
		if err != nil && len(entries) == 0 {
			r.record(types.StageValidationFailed, err.Error())
			return nil, err
		}
	}

	if len(entries) == 0 {
		r.record(types.StageValidationFailed, lastReason)
		if !constructed {
			return nil, &NoCandidateError{Task: types.TaskCloze, Reason: lastReason}
		}
		return nil, &ValidationFailedError{Reason: lastReason, Metrics: e.lastKnownMetrics(ctx, req.Source, lastText)}
	}

	scored := make([]types.ScoredCandidate, 0, len(entries))
	exts := make(map[string]slots.Extraction, len(entries))
	for _, en := range entries {
		sc, serr := e.score(en.cand, req.Target, weights)
		if serr != nil {
			return nil, serr
		}
		scored = append(scored, sc)
		exts[en.cand.Text] = en.ext
	}
	if err := e.measure(ctx, req.Source, scored); err != nil {
		return nil, err
	}
	rank(scored)
	r.record(types.StageScored, fmt.Sprintf("%d candidates, best distance %.3f", len(scored), scored[0].DistanceToTarget))

	// Tier 1: a candidate clears the gate outright.
	for _, sc := range scored {
		if similarity.Gate(band, metricsOf(sc)) {
			return e.accept(r, sc, types.TierPrimary, false), nil
		}
	}

	// Tier 2: soften the closest candidate. Answer words are protected so the
	// key never changes under substitution.
	best := scored[0]
	softened := best
	for round := 0; round < e.cfg.Generation.SoftenRounds; round++ {
		next := soften(softened.Text, softened.Answers)
		if next == softened.Text {
			break
		}
		candidate := softened
		candidate.Text = next
		sc, serr := e.score(candidate.Candidate, req.Target, weights)
		if serr != nil {
			break
		}
		if err := e.measureOne(ctx, req.Source, &sc); err != nil {
			return nil, err
		}
		softened = sc
		r.record(types.StageGenerationAttempt, fmt.Sprintf("soften round %d: jaccard %.3f", round+1, sc.JaccardToSource))
		if similarity.Gate(band, metricsOf(sc)) {
			return e.accept(r, sc, types.TierSoftened, false), nil
		}
	}

	// Tier 3: minimal LLM rewrite of the closest candidate, verified to keep
	// the blank structure intact before it can be accepted.
	if e.client != nil && best.Format == types.FormatCloze {
		if sc, ok := e.clozeRepair(ctx, r, req, best, exts[best.Text], weights); ok {
			if similarity.Gate(band, metricsOf(sc)) {
				return e.accept(r, sc, types.TierRepaired, false), nil
			}
		}
	}

	// Tier 4: fallback acceptance. The similarity band is a soft preference
	// once format constraints hold; only an outright copy stays ineligible.
	for _, sc := range scored {
		if sc.JaccardToSource < 1.0 {
			return e.accept(r, sc, types.TierFallback, true), nil
		}
	}

	m := bestMetrics(scored)
	r.record(types.StageSimilarityRejected, fmt.Sprintf("best cosine %.3f jaccard %.3f", m.Cosine, m.Jaccard))
	return nil, &SimilarityRejectedError{Metrics: m}
}

// clozeAttempts runs the bounded generation loop: fresh passage, blank-word
// selection under the exclusion list, deterministic carving, shape check.
func (e *Engine) clozeAttempts(ctx context.Context, r *run, source string, style slots.BlankStyle, exclusions []string, blankCount int, entries []clozeEntry, lastReason, lastText string, constructed bool) ([]clozeEntry, string, string, bool, error) {
	language := "English"
	if difficulty.IsCJKText(source) {
		language = "Japanese"
	}
	targetWords := len(strings.Fields(source))

	for attempt := 1; attempt <= e.cfg.Generation.MaxAttempts; attempt++ {
		r.record(types.StageGenerationAttempt, fmt.Sprintf("attempt %d", attempt))

		passage, err := e.client.GenerateText(ctx, prompts.Format(prompts.MustGet("cloze.json", "generate-passage"), map[string]string{
			"Language":    language,
			"TargetWords": strconv.Itoa(targetWords),
			"Source":      source,
		}), "", llm.TierStandard)
		if err != nil {
			lastReason = err.Error()
			if isProviderDown(err) {
				return entries, lastReason, lastText, constructed, err
			}
			continue
		}
		passage = strings.TrimSpace(passage)

		words, err := e.selectBlankWords(ctx, passage, exclusions, blankCount)
		if err != nil {
			lastReason = err.Error()
			if isProviderDown(err) {
				return entries, lastReason, lastText, constructed, err
			}
			continue
		}

		cand, ext, err := cloze.Carve(passage, words, style)
		if err != nil {
			lastReason = err.Error()
			continue
		}
		constructed = true
		if verr := cloze.Validate(ext, source, len(words), e.cfg.Generation.WordCountWindow); verr != nil {
			lastReason = verr.Error()
			lastText = cand.Text
			r.record(types.StageGenerationAttempt, fmt.Sprintf("attempt %d rejected: %s", attempt, verr.Error()))
			continue
		}
		entries = append(entries, clozeEntry{cand, ext})
	}
	return entries, lastReason, lastText, constructed, nil
}

// selectBlankWords asks the generation capability which words to blank,
// schema-validating the response before use.
func (e *Engine) selectBlankWords(ctx context.Context, passage string, exclusions []string, count int) ([]string, error) {
	excluded := "(none)"
	if len(exclusions) > 0 {
		excluded = strings.Join(exclusions, ", ")
	}
	raw, err := e.client.GenerateJSON(ctx, prompts.Format(prompts.MustGet("cloze.json", "select-blanks"), map[string]string{
		"BlankCount": strconv.Itoa(count),
		"Passage":    passage,
		"Excluded":   excluded,
	}), "", llm.TierLite)
	if err != nil {
		return nil, err
	}

	if err := schemas.Validate(schemas.BlankSelection, raw); err != nil {
		return nil, &llm.MalformedOutputError{Message: "blank selection failed validation", Raw: raw, Cause: err}
	}
	var resp struct {
		Words []string `json:"words"`
	}
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &llm.MalformedOutputError{Message: "blank selection is not valid JSON", Raw: raw, Cause: err}
	}
	return resp.Words, nil
}

// clozeRepair asks for a minimal rewrite around the blanks, then proves the
// blank structure survived by re-extracting and comparing slot grammar.
func (e *Engine) clozeRepair(ctx context.Context, r *run, req Request, best types.ScoredCandidate, bestExt slots.Extraction, weights difficulty.Weights) (types.ScoredCandidate, bool) {
	repaired, err := e.client.GenerateText(ctx, prompts.Format(prompts.MustGet("cloze.json", "repair-candidate"), map[string]string{
		"Passage": best.Text,
		"Source":  req.Source,
	}), "", llm.TierAdvanced)
	if err != nil {
		r.record(types.StageGenerationAttempt, "repair failed: "+err.Error())
		return types.ScoredCandidate{}, false
	}
	repaired = strings.TrimSpace(repaired)

	recheck := slots.NewExtractor(nil).Extract(ctx, repaired, nil)
	if !sameSlotGrammar(bestExt.Slots, recheck.Slots) {
		r.record(types.StageGenerationAttempt, "repair rejected: blank structure changed")
		return types.ScoredCandidate{}, false
	}

	candidate := best.Candidate
	candidate.Text = repaired
	sc, err := e.score(candidate, req.Target, weights)
	if err != nil {
		return types.ScoredCandidate{}, false
	}
	if err := e.measureOne(ctx, req.Source, &sc); err != nil {
		return types.ScoredCandidate{}, false
	}
	r.record(types.StageGenerationAttempt, fmt.Sprintf("repair pass: jaccard %.3f", sc.JaccardToSource))
	return sc, true
}

func sameSlotGrammar(a, b []slots.Slot) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Prefix != b[i].Prefix || a[i].MissingCount != b[i].MissingCount {
			return false
		}
	}
	return true
}
