package draft

import (
	"fmt"

	"github.com/felixgeelhaar/statekit"
)

// MachineContext carries the question the machine currently tracks.
type MachineContext struct {
	QuestionID string
}

// Machine drives the draft lifecycle. The transition table in state.go is the
// source of truth for legality; statekit holds the current state.
type Machine struct {
	interpreter *statekit.Interpreter[MachineContext]
}

// NewMachine builds a machine starting in the idle state.
func NewMachine() (*Machine, error) {
	builder := statekit.NewMachine[MachineContext]("draft-machine").
		WithInitial(statekit.StateID(StateIdle)).
		WithContext(MachineContext{})

	for _, from := range AllStates() {
		sb := builder.State(statekit.StateID(from))
		for _, event := range from.ValidEvents() {
			target := validTransitions[from][event]
			sb = sb.On(statekit.EventType(event)).Target(statekit.StateID(target)).End()
		}
		sb.Done()
	}

	machine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build draft machine: %w", err)
	}

	interpreter := statekit.NewInterpreter(machine)
	interpreter.Start()

	return &Machine{interpreter: interpreter}, nil
}

// Fire applies event, returning a TransitionError when the current state
// does not accept it. The state is unchanged on error.
func (m *Machine) Fire(event string) error {
	before := m.Current()
	target, err := before.TransitionWith(event)
	if err != nil {
		return err
	}
	m.interpreter.Send(statekit.Event{Type: statekit.EventType(event)})
	if after := m.Current(); after != target {
		return fmt.Errorf("draft machine moved %s -> %s on %q, expected %s", before, after, event, target)
	}
	return nil
}

// Current returns the current state.
func (m *Machine) Current() State {
	return State(m.interpreter.State().Value)
}

// Can reports whether event is accepted in the current state.
func (m *Machine) Can(event string) bool {
	return m.Current().CanTransitionWith(event)
}
