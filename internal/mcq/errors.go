package mcq

import "fmt"

// ShapeError reports a structural defect in a multiple-choice item. Shape
// failures are retried by the caller across the fallback ladder.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("choice shape check failed: %s", e.Reason)
}

// ParseError means the source could not be split into question and choices by
// any parsing layer.
type ParseError struct {
	Message string
	Cause   error
}

func (e *ParseError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("choice parse failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("choice parse failed: %s", e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Cause
}
