package chat

import (
	"errors"
	"fmt"
)

// ErrUnavailable is returned while no language model is configured. The
// process stays up and reports the state instead of refusing to start.
var ErrUnavailable = errors.New("conversational model not configured")

// ErrEmptyMessage rejects requests whose message text is missing or blank.
var ErrEmptyMessage = errors.New("message text is required")

// ProcessingError wraps a failed turn with the conversation it belonged to.
// The cause is the unmodified error from the turn executor.
type ProcessingError struct {
	ConversationID string
	Cause          error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("chat processing failed for %s: %v", e.ConversationID, e.Cause)
}

func (e *ProcessingError) Unwrap() error {
	return e.Cause
}
