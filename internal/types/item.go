// Package types defines the shared data-model entities that travel between
// the pipeline, the similarity gate and the HTTP surface.
package types

import "github.com/MakikoOhashi/lexidrill/internal/difficulty"

// TaskType selects the exercise variant being generated.
type TaskType string

const (
	TaskCloze  TaskType = "cloze"
	TaskChoice TaskType = "choice"
)

// Format describes the shape of a produced item. ShortAnswer is the
// whole-text fallback used when no blank slot can be found in a source.
type Format string

const (
	FormatCloze       Format = "cloze"
	FormatChoice      Format = "multiple_choice"
	FormatShortAnswer Format = "short_answer"
)

// Candidate is one generated or deterministically constructed exercise item.
// A candidate is never mutated after scoring; re-scoring produces a new one.
type Candidate struct {
	Text           string   `json:"text"`
	Passage        string   `json:"passage,omitempty"`
	Question       string   `json:"question,omitempty"`
	Answers        []string `json:"answers,omitempty"`
	Distractors    []string `json:"distractors,omitempty"`
	Choices        []string `json:"choices,omitempty"`
	CorrectIndex   int      `json:"correct_index,omitempty"`
	ReasoningSteps []string `json:"reasoning_steps,omitempty"`
	Format         Format   `json:"format"`
}

// ScoredCandidate attaches the difficulty score and gate metrics. Candidates
// are ranked ascending by DistanceToTarget before gating.
type ScoredCandidate struct {
	Candidate
	Score              difficulty.Result `json:"score"`
	DistanceToTarget   float64           `json:"distance_to_target"`
	SimilarityToSource float64           `json:"similarity_to_source"`
	JaccardToSource    float64           `json:"jaccard_to_source"`
}

// Stage names one state of the generation state machine.
type Stage string

const (
	StageReceived           Stage = "received"
	StageStructureLoaded    Stage = "structure_loaded"
	StageGenerationAttempt  Stage = "generation_attempt"
	StageScored             Stage = "scored"
	StageAccepted           Stage = "accepted"
	StageValidationFailed   Stage = "validation_failed"
	StageSimilarityRejected Stage = "similarity_rejected"
)

// AcceptTier names the fallback-ladder tier that produced an accepted item.
type AcceptTier string

const (
	TierPrimary  AcceptTier = "primary"
	TierSoftened AcceptTier = "softened"
	TierRepaired AcceptTier = "repaired"
	TierFallback AcceptTier = "fallback"
)

// GenerationRun is audit metadata attached to every response. It never
// influences control flow; it exists only for traceability.
type GenerationRun struct {
	RunID       string `json:"run_id"`
	SourceID    string `json:"source_id"`
	CandidateID string `json:"candidate_id,omitempty"`
	Stage       Stage  `json:"stage"`
}

// StageRecord is one recorded state transition. Transitions are recorded as
// they happen, not re-derived afterwards.
type StageRecord struct {
	Stage  Stage  `json:"stage"`
	Detail string `json:"detail,omitempty"`
}

// AuditTrail is the full recorded path a request took through the machine.
type AuditTrail struct {
	Run     GenerationRun `json:"run"`
	Records []StageRecord `json:"records"`
	Tier    AcceptTier    `json:"tier,omitempty"`
}
