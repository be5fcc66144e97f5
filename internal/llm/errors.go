// Package llm provides the external text-generation capability behind a small
// client interface, with bounded retries around transient provider failures.
package llm

import "fmt"

// ProviderUnavailableError indicates a transient provider failure (server
// busy, rate limited) that persisted through the bounded retry budget.
type ProviderUnavailableError struct {
	StatusCode int
	Attempts   int
	Cause      error
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("provider unavailable after %d attempts (status %d): %v",
		e.Attempts, e.StatusCode, e.Cause)
}

func (e *ProviderUnavailableError) Unwrap() error {
	return e.Cause
}

// GenerationError indicates a non-transient generation failure.
type GenerationError struct {
	Message string
	Cause   error
}

func (e *GenerationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("generation failed: %s", e.Message)
}

func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// MalformedOutputError indicates generated output that failed the strict
// schema-validating decode. The raw output is kept for diagnosis.
type MalformedOutputError struct {
	Message string
	Raw     string
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed generation output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed generation output: %s", e.Message)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}
