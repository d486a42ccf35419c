package entities

import (
	"fmt"
	"sync"
)

// LifecycleState is the state of an approval or a transaction
type LifecycleState string

const (
	StateIdle                LifecycleState = "idle"
	StateSimulating          LifecycleState = "simulating"
	StateReady               LifecycleState = "ready"
	StateSubmitting          LifecycleState = "submitting"
	StatePendingConfirmation LifecycleState = "pending_confirmation"
	StateConfirmed           LifecycleState = "confirmed"
	StateFailed              LifecycleState = "failed"
)

var lifecycleTransitions = map[LifecycleState][]LifecycleState{
	StateIdle:                {StateSimulating},
	StateSimulating:          {StateReady, StateFailed},
	StateReady:               {StateSubmitting, StateSimulating},
	StateSubmitting:          {StatePendingConfirmation, StateFailed},
	StatePendingConfirmation: {StateConfirmed, StateFailed},
	StateConfirmed:           {StateIdle, StateSimulating},
	StateFailed:              {StateIdle, StateSimulating},
}

// CanTransition reports whether from -> to is a legal lifecycle move
func CanTransition(from, to LifecycleState) bool {
	for _, next := range lifecycleTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Lifecycle tracks one approval or transaction flow. Safe for concurrent readers.
type Lifecycle struct {
	mu    sync.RWMutex
	state LifecycleState
	err   error
}

func NewLifecycle() *Lifecycle {
	return &Lifecycle{state: StateIdle}
}

func (l *Lifecycle) State() LifecycleState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// Err returns the error recorded by the last failure
func (l *Lifecycle) Err() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Transition moves to the next state or returns an error for an illegal move
func (l *Lifecycle) Transition(to LifecycleState) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !CanTransition(l.state, to) {
		return fmt.Errorf("illegal lifecycle transition %s -> %s", l.state, to)
	}
	l.state = to
	if to != StateFailed {
		l.err = nil
	}
	return nil
}

// Fail moves to StateFailed and records err
func (l *Lifecycle) Fail(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if CanTransition(l.state, StateFailed) {
		l.state = StateFailed
	}
	l.err = err
}

// SimulationStatus is the state of a quote simulation
type SimulationStatus string

const (
	SimulationIdle     SimulationStatus = "idle"
	SimulationInFlight SimulationStatus = "in_flight"
	SimulationSuccess  SimulationStatus = "success"
	SimulationError    SimulationStatus = "error"
)
