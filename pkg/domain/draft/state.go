package draft

import (
	"encoding/json"
	"fmt"
	"sort"
)

// State is the lifecycle of the active draft.
type State string

const (
	StateIdle     State = "idle"
	StateHydrated State = "hydrated"
	StateDirty    State = "dirty"
	StateSaving   State = "saving"
)

// Events accepted by the draft machine.
const (
	EventSelect             = "select"
	EventEdit               = "edit"
	EventRevert             = "revert"
	EventSave               = "save"
	EventSaveSucceeded      = "save_succeeded"
	EventSaveSucceededDirty = "save_succeeded_dirty"
	EventSaveFailed         = "save_failed"
	EventClose              = "close"
)

// validTransitions defines the allowed state transitions and their events.
// Map: currentState -> event -> targetState
var validTransitions = map[State]map[string]State{
	StateIdle: {
		EventSelect: StateHydrated,
		EventClose:  StateIdle,
	},
	StateHydrated: {
		EventSelect: StateHydrated,
		EventEdit:   StateDirty,
		EventClose:  StateIdle,
	},
	StateDirty: {
		EventSelect: StateHydrated,
		EventEdit:   StateDirty,
		EventRevert: StateHydrated,
		EventSave:   StateSaving,
		EventClose:  StateIdle,
	},
	StateSaving: {
		EventSelect:             StateHydrated,
		EventSaveSucceeded:      StateHydrated,
		EventSaveSucceededDirty: StateDirty,
		EventSaveFailed:         StateDirty,
		EventClose:              StateIdle,
	},
}

// AllStates returns all valid draft states.
func AllStates() []State {
	return []State{StateIdle, StateHydrated, StateDirty, StateSaving}
}

// IsValid returns true if the state is a valid draft state.
func (s State) IsValid() bool {
	_, ok := validTransitions[s]
	return ok
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// CanTransitionWith returns true if the given event can trigger a transition from this state.
func (s State) CanTransitionWith(event string) bool {
	_, ok := validTransitions[s][event]
	return ok
}

// TransitionWith returns the target state for a given event, or an error if not allowed.
func (s State) TransitionWith(event string) (State, error) {
	transitions, ok := validTransitions[s]
	if !ok {
		return s, fmt.Errorf("no transitions defined for state: %s", s)
	}
	target, ok := transitions[event]
	if !ok {
		return s, &TransitionError{From: s, Event: event}
	}
	return target, nil
}

// ValidEvents returns the events accepted in this state, sorted.
func (s State) ValidEvents() []string {
	transitions := validTransitions[s]
	events := make([]string, 0, len(transitions))
	for event := range transitions {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

// HasDraft reports whether a question is selected.
func (s State) HasDraft() bool {
	return s != StateIdle
}

// IsSaving returns true while a save is in flight.
func (s State) IsSaving() bool {
	return s == StateSaving
}

// DisplayName returns a human-readable display name for the state.
func (s State) DisplayName() string {
	switch s {
	case StateIdle:
		return "No selection"
	case StateHydrated:
		return "Saved"
	case StateDirty:
		return "Unsaved changes"
	case StateSaving:
		return "Saving…"
	default:
		return string(s)
	}
}

// MarshalJSON implements json.Marshaler interface.
func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(s))
}

// UnmarshalJSON implements json.Unmarshaler interface.
func (s *State) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	st := State(str)
	if !st.IsValid() {
		return fmt.Errorf("invalid draft state: %s", str)
	}
	*s = st
	return nil
}
