// Package server provides the HTTP REST API for the exercise generator.
package server

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/MakikoOhashi/lexidrill/internal/difficulty"
	"github.com/MakikoOhashi/lexidrill/internal/embeddings"
	"github.com/MakikoOhashi/lexidrill/internal/llm"
	"github.com/MakikoOhashi/lexidrill/internal/pipeline"
	"github.com/MakikoOhashi/lexidrill/internal/target"
)

// HTTPStatus maps the error taxonomy onto response codes. Client-caused
// conditions are 400, upstream capability failures 502/503, and candidates
// that could not be produced 422.
func HTTPStatus(err error) int {
	var (
		invalidComponent *difficulty.InvalidComponentError
		invalidInput     *difficulty.InvalidInputError
		emptySource      *target.EmptySourceError
		validationErrs   validator.ValidationErrors

		embedding   *embeddings.EmbeddingError
		unavailable *llm.ProviderUnavailableError
		generation  *llm.GenerationError
		malformed   *llm.MalformedOutputError

		validationFailed   *pipeline.ValidationFailedError
		similarityRejected *pipeline.SimilarityRejectedError
		noCandidate        *pipeline.NoCandidateError
	)

	switch {
	case errors.As(err, &invalidComponent),
		errors.As(err, &invalidInput),
		errors.As(err, &emptySource),
		errors.As(err, &validationErrs):
		return http.StatusBadRequest
	case errors.As(err, &unavailable):
		return http.StatusServiceUnavailable
	case errors.As(err, &embedding),
		errors.As(err, &generation),
		errors.As(err, &malformed):
		return http.StatusBadGateway
	case errors.As(err, &validationFailed),
		errors.As(err, &similarityRejected),
		errors.As(err, &noCandidate):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
