package engine

import (
	"errors"
	"fmt"
)

// Client protocol violations. Surfaced as 4xx by the HTTP boundary.
var (
	ErrInvalidConfig    = errors.New("invalid interview configuration")
	ErrSessionNotFound  = errors.New("interview session not found")
	ErrSessionTerminal  = errors.New("interview session already ended")
	ErrQuestionMismatch = errors.New("question id does not match the pending question")
)

// DependencyError wraps a failed external call: the Question Source, the
// Answer Scorer, or the attempt store. The step that produced it made no
// committed state change, so the caller can retry with the same inputs.
type DependencyError struct {
	Op  string // "generate_question", "score_answer", "load_attempt", "persist_attempt"
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("external dependency failure during %s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }

// IsRetryable reports whether err is a retryable external-dependency
// failure rather than a protocol violation.
func IsRetryable(err error) bool {
	var de *DependencyError
	return errors.As(err, &de)
}
