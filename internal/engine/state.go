package engine

import (
	"fmt"
	"sync"
)

// State is a run's position in its lifecycle.
type State string

const (
	Idle      State = "idle"
	Running   State = "running"
	Succeeded State = "succeeded"
	Cancelled State = "cancelled"
	Failed    State = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == Succeeded || s == Cancelled || s == Failed
}

// Machine enforces Idle -> Running -> {Succeeded, Cancelled, Failed}.
type Machine struct {
	mu    sync.Mutex
	state State
}

// NewMachine returns a machine in the Idle state.
func NewMachine() *Machine {
	return &Machine{state: Idle}
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Transition moves to next or returns an error describing the illegal move.
func (m *Machine) Transition(next State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case m.state == Idle && next == Running:
	case m.state == Running && next.Terminal():
	default:
		return fmt.Errorf("illegal run transition %s -> %s", m.state, next)
	}
	m.state = next
	return nil
}
