package catalog

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrNotFound reports an identifier the catalog knows nothing about.
// It is never retried; the deck file needs editing.
var ErrNotFound = errors.New("card not found")

// AmbiguousError reports a name lookup matching more than one card.
// It is never retried; retrying cannot resolve semantic ambiguity.
type AmbiguousError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	if len(e.Candidates) == 0 {
		return fmt.Sprintf("ambiguous card name %q", e.Query)
	}
	return fmt.Sprintf("ambiguous card name %q (could be: %s)", e.Query, strings.Join(e.Candidates, ", "))
}

// RateLimitedError reports a catalog throttle response. The caller should
// wait RetryAfter (zero when the catalog gave no hint) before retrying.
type RateLimitedError struct {
	RetryAfter time.Duration
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited by catalog, retry after %s", e.RetryAfter)
	}
	return "rate limited by catalog"
}

// TransientError wraps a network or server failure worth retrying
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string { return fmt.Sprintf("transient catalog error: %v", e.Err) }
func (e *TransientError) Unwrap() error { return e.Err }

// Retriable reports whether the error may succeed on a later attempt
func Retriable(err error) bool {
	var rl *RateLimitedError
	var tr *TransientError
	return errors.As(err, &rl) || errors.As(err, &tr)
}
