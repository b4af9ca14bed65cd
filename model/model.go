// Package model defines the sequential-specification contract the search
// engine drives a history against.
package model

import "fmt"

// State is an opaque value produced by a Model. States reached by applying
// the same sequence of operations must compare Equal; the Seen cache (see
// package seen) relies on this for dedup correctness.
type State interface {
	// Equal reports whether two states are semantically interchangeable for
	// the purposes of future Step calls.
	Equal(other State) bool
}

// Dead marks a State as unreachable: the sequential specification rejects
// whatever operation produced it. Dead is absorbing — Model implementations
// must return Dead from Step whenever the incoming state is Dead, and the
// search engine never calls Step again on a world whose model is Dead
// (invariant 4, §3).
type Dead struct {
	// Msg is a diagnostic describing why the step was rejected.
	Msg string
}

func (d *Dead) Equal(other State) bool {
	_, ok := other.(*Dead)
	return ok
}

func (d *Dead) Error() string {
	return d.Msg
}

// IsDead reports whether s is an inconsistent (Dead) state.
func IsDead(s State) bool {
	_, ok := s.(*Dead)
	return ok
}

// AsDead returns the Dead value behind s, if s is Dead.
func AsDead(s State) (*Dead, bool) {
	d, ok := s.(*Dead)
	return d, ok
}

// Op is the view of a single linearized operation a Model needs: the
// function invoked, the value it was invoked with (Input), and the value
// its completion (ok/fail/info) carried (Output). Both are supplied
// together — mirroring the call/return pair a sequential specification
// checks as one atomic step — because some operations (e.g. a register
// write) are validated from their Input alone, while others (e.g. a
// register read) are validated from their Output alone; a Model is free to
// use either, both, or neither.
type Op struct {
	Function string
	Input    any
	Output   any
}

// Model is a sequential specification: given a current state and the next
// operation to linearize, it either advances to a new state or reports that
// the operation cannot be explained (by returning a Dead state). Model
// implementations must be pure: Step must not mutate state.
//
// Models must not panic for semantic rejection — Dead is the only legitimate
// failure mode (§4.A).
type Model interface {
	// Init returns the model's initial state.
	Init() State

	// Step advances state by applying op, returning the next state. If op
	// cannot be explained from state, Step returns a Dead state. Step must
	// never be called again on a world once its state is Dead.
	Step(state State, op Op) State
}

// Step is a convenience wrapper that short-circuits on an already-Dead
// state, so callers folding a sequence of ops don't need to check IsDead
// after every call.
func Step(m Model, state State, op Op) State {
	if IsDead(state) {
		return state
	}
	return m.Step(state, op)
}

// Reduce applies ops to state in order, left-to-right, short-circuiting as
// soon as the state goes Dead (§4.D "reduce(step, model, π)").
func Reduce(m Model, state State, ops []Op) State {
	for _, op := range ops {
		state = Step(m, state, op)
		if IsDead(state) {
			return state
		}
	}
	return state
}

// describe renders a state for diagnostics; Model implementations may embed
// fmt.Stringer for nicer output, otherwise "%v" is used.
func describe(s State) string {
	if str, ok := s.(fmt.Stringer); ok {
		return str.String()
	}
	return fmt.Sprintf("%v", s)
}

// Describe renders a state for diagnostics, used by the Analyzer when
// reporting inconsistent transitions (§6 "Analysis report").
func Describe(s State) string {
	return describe(s)
}
