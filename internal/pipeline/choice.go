package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/mcq"
	"github.com/MakikoOhashi/lexidrill/internal/similarity"
	"github.com/MakikoOhashi/lexidrill/internal/types"
)

// choiceEntry pairs a validated structure with its reasoning steps.
type choiceEntry struct {
	structure mcq.Structure
	steps     []string
}

// GenerateChoice runs the multiple-choice task through the state machine.
func (e *Engine) GenerateChoice(ctx context.Context, req Request) (*Result, error) {
	r := e.newRun(types.TaskChoice, req.Source)
	band := e.cfg.Similarity.Choice
	weights := e.weights(req.Weights)
	thresholds := mcq.Thresholds{
		NovelKanjiCeiling:  e.cfg.Combo.NovelKanjiCeiling,
		StatementSimLimit:  e.cfg.Combo.StatementSimLimit,
		KanjiDensityTarget: e.cfg.Combo.KanjiDensityTarget,
	}

	var parser mcq.StructureParser
	if e.client != nil {
		parser = mcq.NewLLMParser(e.client)
	}
	src, method, err := mcq.Parse(ctx, req.Source, parser)
	if err != nil {
		r.record(types.StageValidationFailed, err.Error())
		return nil, &NoCandidateError{Task: types.TaskChoice, Reason: err.Error()}
	}
	r.record(types.StageStructureLoaded, string(method))

	check := func(c mcq.Structure) error {
		if verr := mcq.Validate(c, src); verr != nil {
			return verr
		}
		return mcq.CheckCombo(c, req.Source, thresholds)
	}

	var entries []choiceEntry
	lastReason := "no candidate constructed"
	lastText := ""

	// The deterministic baseline keeps the source answer verbatim, so it can
	// be structurally sound yet still fail validation. Either way it counts
	// as a constructed candidate.
	baseline := mcq.BuildPrimary(src)
	if verr := check(baseline); verr != nil {
		lastReason = verr.Error()
		lastText = mcq.Render(baseline)
	} else {
		entries = append(entries, choiceEntry{structure: baseline})
	}

	if e.client != nil {
		entries, lastReason, lastText, err = e.choiceAttempts(ctx, r, req, src, check, entries, lastReason, lastText)
		if err != nil && len(entries) == 0 {
			r.record(types.StageValidationFailed, err.Error())
			return nil, err
		}
	}

	if len(entries) == 0 {
		r.record(types.StageValidationFailed, lastReason)
		return nil, &ValidationFailedError{Reason: lastReason, Metrics: e.lastKnownMetrics(ctx, req.Source, lastText)}
	}

	scored := make([]types.ScoredCandidate, 0, len(entries))
	structures := make(map[string]mcq.Structure, len(entries))
	for _, en := range entries {
		cand := toChoiceCandidate(en.structure, en.steps)
		sc, serr := e.score(cand, req.Target, weights)
		if serr != nil {
			return nil, serr
		}
		scored = append(scored, sc)
		structures[cand.Text] = en.structure
	}
	if err := e.measure(ctx, req.Source, scored); err != nil {
		return nil, err
	}
	rank(scored)
	r.record(types.StageScored, fmt.Sprintf("%d candidates, best distance %.3f", len(scored), scored[0].DistanceToTarget))

	// Tier 1: outright pass.
	for _, sc := range scored {
		if similarity.Gate(band, metricsOf(sc)) {
			return e.accept(r, sc, types.TierPrimary, false), nil
		}
	}

	// Tier 2: soften passage and question of the closest candidate. Choices
	// stay untouched, and the structural checks rerun because substitution
	// can break grounding.
	best := scored[0]
	current := structures[best.Text]
	for round := 0; round < e.cfg.Generation.SoftenRounds; round++ {
		next := current
		next.Passage = soften(current.Passage, nil)
		next.Question = soften(current.Question, nil)
		if next.Passage == current.Passage && next.Question == current.Question {
			break
		}
		if verr := check(next); verr != nil {
			r.record(types.StageGenerationAttempt, fmt.Sprintf("soften round %d rejected: %s", round+1, verr.Error()))
			break
		}
		sc, serr := e.score(toChoiceCandidate(next, best.ReasoningSteps), req.Target, weights)
		if serr != nil {
			break
		}
		if err := e.measureOne(ctx, req.Source, &sc); err != nil {
			return nil, err
		}
		current = next
		r.record(types.StageGenerationAttempt, fmt.Sprintf("soften round %d: jaccard %.3f", round+1, sc.JaccardToSource))
		if similarity.Gate(band, metricsOf(sc)) {
			return e.accept(r, sc, types.TierSoftened, false), nil
		}
	}

	// Tier 3: minimal LLM repair of the closest candidate.
	if e.client != nil {
		rewriter := mcq.NewRewriter(e.client)
		repaired, rerr := rewriter.RepairCandidate(ctx, structures[best.Text], req.Source)
		if rerr != nil {
			r.record(types.StageGenerationAttempt, "repair failed: "+rerr.Error())
		} else if verr := check(repaired); verr != nil {
			r.record(types.StageGenerationAttempt, "repair rejected: "+verr.Error())
		} else {
			sc, serr := e.score(toChoiceCandidate(repaired, best.ReasoningSteps), req.Target, weights)
			if serr == nil {
				if err := e.measureOne(ctx, req.Source, &sc); err != nil {
					return nil, err
				}
				r.record(types.StageGenerationAttempt, fmt.Sprintf("repair pass: jaccard %.3f", sc.JaccardToSource))
				if similarity.Gate(band, metricsOf(sc)) {
					return e.accept(r, sc, types.TierRepaired, false), nil
				}
			}
		}
	}

	// Tier 4: fallback acceptance, copies excluded.
	for _, sc := range scored {
		if sc.JaccardToSource < 1.0 {
			return e.accept(r, sc, types.TierFallback, true), nil
		}
	}

	m := bestMetrics(scored)
	r.record(types.StageSimilarityRejected, fmt.Sprintf("best cosine %.3f jaccard %.3f", m.Cosine, m.Jaccard))
	return nil, &SimilarityRejectedError{Metrics: m}
}

// choiceAttempts runs the bounded themed-rewrite loop. When the source has a
// passage, a fixed-length passage is pre-generated once so length cannot
// drift across attempts.
func (e *Engine) choiceAttempts(ctx context.Context, r *run, req Request, src mcq.Structure, check func(mcq.Structure) error, entries []choiceEntry, lastReason, lastText string) ([]choiceEntry, string, string, error) {
	rewriter := mcq.NewRewriter(e.client)
	theme := req.Theme
	if theme == "" {
		theme = "a closely related everyday topic"
	}

	fixedPassage := ""
	if src.Passage != "" {
		language := "English"
		if difficulty.IsCJKText(src.Passage) {
			language = "Japanese"
		}
		p, err := rewriter.FixedPassage(ctx, theme, language, len(strings.Fields(src.Passage)))
		if err != nil {
			if isProviderDown(err) {
				return entries, err.Error(), lastText, err
			}
			r.record(types.StageGenerationAttempt, "fixed passage failed: "+err.Error())
		} else {
			fixedPassage = p
		}
	}

	for attempt := 1; attempt <= e.cfg.Generation.MaxAttempts; attempt++ {
		r.record(types.StageGenerationAttempt, fmt.Sprintf("attempt %d", attempt))

		s, steps, err := rewriter.ThemedRewrite(ctx, src, theme, fixedPassage)
		if err != nil {
			lastReason = err.Error()
			if isProviderDown(err) {
				return entries, lastReason, lastText, err
			}
			continue
		}
		if verr := check(s); verr != nil {
			lastReason = verr.Error()
			lastText = mcq.Render(s)
			r.record(types.StageGenerationAttempt, fmt.Sprintf("attempt %d rejected: %s", attempt, verr.Error()))
			continue
		}
		entries = append(entries, choiceEntry{structure: s, steps: steps})
	}
	return entries, lastReason, lastText, nil
}

func toChoiceCandidate(s mcq.Structure, steps []string) types.Candidate {
	return types.Candidate{
		Text:           mcq.Render(s),
		Passage:        s.Passage,
		Question:       s.Question,
		Choices:        append([]string(nil), s.Choices...),
		CorrectIndex:   s.CorrectIndex,
		Answers:        []string{s.Choices[s.CorrectIndex]},
		ReasoningSteps: steps,
		Format:         types.FormatChoice,
	}
}
