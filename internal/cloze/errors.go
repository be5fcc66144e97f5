package cloze

import "fmt"

// ShapeError reports a structural defect in a constructed cloze candidate.
// Shape failures are retried by the caller, never surfaced directly.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("cloze shape check failed: %s", e.Reason)
}
