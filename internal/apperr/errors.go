package apperr

import (
	"errors"
	"fmt"
)

// Sentinel errors for the document chat domain. Services wrap these with
// %w so controllers and the error middleware can classify with errors.Is.
var (
	// ErrNotFound covers unknown session, turn, or insight ids.
	ErrNotFound = errors.New("resource not found")
	// ErrDuplicateSession is returned when registering an id that already exists.
	ErrDuplicateSession = errors.New("session already exists")
	// ErrAlreadyProcessing rejects a concurrent process call on one session.
	ErrAlreadyProcessing = errors.New("session is already being processed")
	// ErrSessionNotReady rejects chat against a session that has not finished processing.
	ErrSessionNotReady = errors.New("session is not ready for chat")
	// ErrRetrievalFailed signals the semantic index was unreachable or errored.
	ErrRetrievalFailed = errors.New("retrieval failed")
	// ErrGenerationFailed signals the LLM call failed or timed out mid-stream.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrPersistenceDegraded signals a transcript or insight write failed after
	// the answer was already delivered. Observability only, never user-fatal.
	ErrPersistenceDegraded = errors.New("persistence degraded")
)

func NotFound(resource string, id any) error {
	return fmt.Errorf("%s %v: %w", resource, id, ErrNotFound)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
