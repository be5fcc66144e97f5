package pipeline

import (
	"fmt"

	"github.com/MakikoOhashi/lexidrill/internal/similarity"
	"github.com/MakikoOhashi/lexidrill/internal/types"
)

// ValidationFailedError means candidates were constructed but every one
// failed the structural checks, across the whole fallback ladder. It carries
// the last failing reason and the last rejected candidate's similarity pair.
type ValidationFailedError struct {
	Reason  string
	Metrics similarity.Metrics
}

func (e *ValidationFailedError) Error() string {
	return fmt.Sprintf("no candidate passed validation: %s (last cosine %.3f, jaccard %.3f)", e.Reason, e.Metrics.Cosine, e.Metrics.Jaccard)
}

// SimilarityRejectedError means structurally valid candidates existed but
// none could be accepted even by the fallback tier, because every one was an
// effective copy of the source.
type SimilarityRejectedError struct {
	Metrics similarity.Metrics
}

func (e *SimilarityRejectedError) Error() string {
	return fmt.Sprintf("every candidate rejected as a source copy (best cosine %.3f, jaccard %.3f)", e.Metrics.Cosine, e.Metrics.Jaccard)
}

// NoCandidateError means no candidate could be constructed at all,
// deterministic or generated.
type NoCandidateError struct {
	Task   types.TaskType
	Reason string
}

func (e *NoCandidateError) Error() string {
	return fmt.Sprintf("no %s candidate could be constructed: %s", e.Task, e.Reason)
}
