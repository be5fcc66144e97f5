// Package pipeline is the evaluation-guided candidate generation controller:
// an explicit state machine that builds candidates, scores them against a
// difficulty target, and walks a fallback ladder of increasingly lenient
// acceptance strategies before giving up.
package pipeline

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/MakikoOhashi/lexidrill/internal/config"
	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/embeddings"
	"github.com/MakikoOhashi/lexidrill/internal/ingestion"
	"github.com/MakikoOhashi/lexidrill/internal/llm"
	"github.com/MakikoOhashi/lexidrill/internal/similarity"
	"github.com/MakikoOhashi/lexidrill/internal/slots"
	"github.com/MakikoOhashi/lexidrill/internal/target"
	"github.com/MakikoOhashi/lexidrill/internal/types"
)

// Engine runs the generation state machine. A nil llm client is valid: the
// engine then works purely from deterministic candidates.
type Engine struct {
	cfg      config.Config
	client   llm.Client
	embedder embeddings.Embedder
	logger   *zap.Logger
}

func NewEngine(cfg config.Config, client llm.Client, embedder embeddings.Embedder, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, client: client, embedder: embedder, logger: logger}
}

// Request is one generation request. Target and Weights are optional; Hints
// carry externally supplied slot descriptors for the cloze task.
type Request struct {
	Source  string              `json:"source"`
	Hints   []slots.Hint        `json:"hints,omitempty"`
	Theme   string              `json:"theme,omitempty"`
	Target  *target.Profile     `json:"target,omitempty"`
	Weights *difficulty.Weights `json:"weights,omitempty"`
}

// Result is an accepted item plus the recorded path that produced it.
type Result struct {
	Item              types.ScoredCandidate `json:"item"`
	SimilarityWarning bool                  `json:"similarity_warning,omitempty"`
	Trail             types.AuditTrail      `json:"trail"`
}

// run accumulates the audit trail. Transitions are recorded as they happen.
type run struct {
	trail  types.AuditTrail
	logger *zap.Logger
}

func (e *Engine) newRun(task types.TaskType, source string) *run {
	r := &run{logger: e.logger}
	r.trail.Run = types.GenerationRun{
		RunID:    uuid.NewString(),
		SourceID: ingestion.SourceID(source),
	}
	r.record(types.StageReceived, string(task))
	return r
}

func (r *run) record(stage types.Stage, detail string) {
	r.trail.Run.Stage = stage
	r.trail.Records = append(r.trail.Records, types.StageRecord{Stage: stage, Detail: detail})
	r.logger.Debug("stage transition",
		zap.String("run_id", r.trail.Run.RunID),
		zap.String("stage", string(stage)),
		zap.String("detail", detail))
}

func (e *Engine) weights(override *difficulty.Weights) difficulty.Weights {
	if override != nil {
		return *override
	}
	return e.cfg.DefaultWeights()
}

func (e *Engine) extractor() *slots.Extractor {
	if e.client == nil {
		return slots.NewExtractor(nil)
	}
	return slots.NewExtractor(slots.NewLLMRepairer(e.client))
}

// score turns a candidate into a scored one. Reasoning steps, when present,
// override the heuristic R axis; extra choices raise ambiguity.
func (e *Engine) score(c types.Candidate, tgt *target.Profile, w difficulty.Weights) (types.ScoredCandidate, error) {
	comps := difficulty.EstimateComponents(c.Text, e.cfg.EstimateOptions())
	if len(c.ReasoningSteps) > 0 {
		if r, err := difficulty.NormalizeReasoningDepth(len(c.ReasoningSteps), e.cfg.Generation.MaxReasoningStep); err == nil {
			comps.R = r
		}
	}
	if n := len(c.Choices); n > 2 {
		comps.A = difficulty.Clamp01(comps.A + 0.05*float64(n-2))
	}

	res, err := difficulty.Score(comps, w)
	if err != nil {
		return types.ScoredCandidate{}, err
	}

	sc := types.ScoredCandidate{Candidate: c, Score: res}
	if tgt != nil {
		tres, terr := difficulty.Score(tgt.Mean, w)
		if terr != nil {
			return types.ScoredCandidate{}, terr
		}
		sc.DistanceToTarget = difficulty.Distance(res.Value, tres.Value)
	}
	return sc, nil
}

// measure computes both gate signals for each candidate against the source.
// Candidate embeddings run concurrently; ranking is by numeric distance, so
// arrival order cannot change the outcome.
func (e *Engine) measure(ctx context.Context, source string, cands []types.ScoredCandidate) error {
	dim := e.cfg.Embedding.Dim
	srcVec, err := e.embedder.EmbedText(ctx, source, dim)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range cands {
		g.Go(func() error {
			vec, err := e.embedder.EmbedText(gctx, cands[i].Text, dim)
			if err != nil {
				return err
			}
			cos, err := similarity.Cosine(srcVec, vec)
			if err != nil {
				return err
			}
			cands[i].SimilarityToSource = cos
			cands[i].JaccardToSource = similarity.Jaccard(source, cands[i].Text)
			return nil
		})
	}
	return g.Wait()
}

// measureOne recomputes the gate signals for a single reworked candidate.
func (e *Engine) measureOne(ctx context.Context, source string, cand *types.ScoredCandidate) error {
	one := []types.ScoredCandidate{*cand}
	if err := e.measure(ctx, source, one); err != nil {
		return err
	}
	*cand = one[0]
	return nil
}

func rank(cands []types.ScoredCandidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].DistanceToTarget < cands[j].DistanceToTarget
	})
}

func metricsOf(c types.ScoredCandidate) similarity.Metrics {
	return similarity.Metrics{Cosine: c.SimilarityToSource, Jaccard: c.JaccardToSource}
}

// bestMetrics picks the pair closest to acceptable for diagnostics: the
// lowest jaccard seen, which is the least copy-like candidate.
func bestMetrics(cands []types.ScoredCandidate) similarity.Metrics {
	if len(cands) == 0 {
		return similarity.Metrics{}
	}
	best := metricsOf(cands[0])
	for _, c := range cands[1:] {
		if c.JaccardToSource < best.Jaccard {
			best = metricsOf(c)
		}
	}
	return best
}

// lastKnownMetrics computes the gate pair for the last rejected candidate
// text so terminal errors carry it for diagnosis. Best effort: an embedding
// failure leaves the cosine at zero, the jaccard is always computable.
func (e *Engine) lastKnownMetrics(ctx context.Context, source, text string) similarity.Metrics {
	if text == "" {
		return similarity.Metrics{}
	}
	m := similarity.Metrics{Jaccard: similarity.Jaccard(source, text)}

	dim := e.cfg.Embedding.Dim
	srcVec, err := e.embedder.EmbedText(ctx, source, dim)
	if err != nil {
		return m
	}
	vec, err := e.embedder.EmbedText(ctx, text, dim)
	if err != nil {
		return m
	}
	if cos, cerr := similarity.Cosine(srcVec, vec); cerr == nil {
		m.Cosine = cos
	}
	return m
}

func (e *Engine) accept(r *run, sc types.ScoredCandidate, tier types.AcceptTier, warning bool) *Result {
	r.trail.Tier = tier
	r.trail.Run.CandidateID = uuid.NewString()
	detail := string(tier)
	if warning {
		detail += " with similarity warning"
	}
	r.record(types.StageAccepted, detail)
	e.logger.Info("candidate accepted",
		zap.String("run_id", r.trail.Run.RunID),
		zap.String("tier", string(tier)),
		zap.Bool("similarity_warning", warning),
		zap.Float64("cosine", sc.SimilarityToSource),
		zap.Float64("jaccard", sc.JaccardToSource))
	return &Result{Item: sc, SimilarityWarning: warning, Trail: r.trail}
}

func isProviderDown(err error) bool {
	var pe *llm.ProviderUnavailableError
	return errors.As(err, &pe)
}
