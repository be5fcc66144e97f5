package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	"google.golang.org/api/googleapi"
)

const (
	maxTransientRetries = 3
	baseBackoff         = 500 * time.Millisecond
)

// isTransient reports whether an error looks like a server-busy condition
// worth retrying. Anything else propagates immediately.
func isTransient(err error) (int, bool) {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case 429, 500, 502, 503:
			return gerr.Code, true
		}
		return gerr.Code, false
	}
	msg := err.Error()
	if strings.Contains(msg, "429") || strings.Contains(msg, "503") ||
		strings.Contains(msg, "overloaded") || strings.Contains(msg, "rate limit") {
		return 0, true
	}
	return 0, false
}

// withRetry runs fn with exponential backoff on transient failures, bounded to
// a small fixed retry count. Non-transient failures propagate immediately.
func withRetry(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error
	lastStatus := 0

	for attempt := 0; attempt < maxTransientRetries; attempt++ {
		if attempt > 0 {
			backoff := baseBackoff << (attempt - 1)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		out, err := fn()
		if err == nil {
			return out, nil
		}
		status, transient := isTransient(err)
		if !transient {
			return "", err
		}
		lastErr = err
		lastStatus = status
	}

	return "", &ProviderUnavailableError{
		StatusCode: lastStatus,
		Attempts:   maxTransientRetries,
		Cause:      lastErr,
	}
}
