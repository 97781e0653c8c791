package session

import (
	"errors"
	"fmt"
)

// ErrEmptyAnswer is returned when an answer with no content is submitted.
// The session state is unchanged; the caller should re-prompt.
var ErrEmptyAnswer = errors.New("please provide an answer before submitting")

// StateError reports an action attempted in a phase that does not allow it.
type StateError struct {
	Action string
	Phase  Phase
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in phase %s", e.Action, e.Phase)
}

// GenerationError reports a terminal question-generation failure. The session
// remains in Setup when Start returns one.
type GenerationError struct {
	Message string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("question generation failed: %s", e.Message)
}
