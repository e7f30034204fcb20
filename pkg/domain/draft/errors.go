package draft

import (
	"errors"
	"fmt"
)

var (
	// ErrNoDraft indicates no question is selected.
	ErrNoDraft = errors.New("no question selected")

	// ErrNothingToSave indicates the draft matches the server text.
	ErrNothingToSave = errors.New("no unsaved changes")

	// ErrSaveInProgress indicates a save for this draft is already in flight.
	ErrSaveInProgress = errors.New("save already in progress")

	// ErrInvalidTransition indicates the event is not accepted in the current state.
	ErrInvalidTransition = errors.New("invalid draft transition")
)

// TransitionError provides details about a rejected event.
type TransitionError struct {
	From  State
	Event string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("the action '%s' is not allowed while the draft is %s", e.Event, e.From)
}

// Is allows errors.Is to work with TransitionError.
func (e *TransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}
