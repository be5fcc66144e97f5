// Package difficulty provides the scoring engine that combines normalized
// component scores into a single difficulty value.
package difficulty

import "fmt"

// InvalidComponentError indicates a non-finite component or weight value.
type InvalidComponentError struct {
	Field string
	Value float64
}

func (e *InvalidComponentError) Error() string {
	return fmt.Sprintf("invalid difficulty component %s: %v is not finite", e.Field, e.Value)
}

// InvalidInputError indicates malformed numeric input to a normalization function.
type InvalidInputError struct {
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Message)
}
