package model

import "fmt"

// RegisterState is the state of a single-register sequential specification:
// the last value written (or the zero value, if nothing has been written
// yet).
type RegisterState struct {
	Value any
}

func (s RegisterState) Equal(other State) bool {
	o, ok := other.(RegisterState)
	if !ok {
		return false
	}
	return s.Value == o.Value
}

// Register is the canonical example model from §6: a single read/write/cas
// register. Read is checked against its Output (the value observed at
// completion): nil is a wildcard ("unknown read", matched against whatever
// the current value happens to be), any other value must equal the
// current value exactly. Write sets the value unconditionally from its
// Input. Cas (compare-and-swap) takes a [2]any{old, new} Input and only
// succeeds (and only advances state) if the current value equals old.
//
// Additional models (mutex, etc.) are pluggable via the Model interface and
// are out of scope for this package (§1 Non-goals).
type Register struct {
	// Initial is the register's initial value. Defaults to nil.
	Initial any
}

func (r Register) Init() State {
	return RegisterState{Value: r.Initial}
}

func (r Register) Step(state State, op Op) State {
	s, ok := state.(RegisterState)
	if !ok {
		return &Dead{Msg: fmt.Sprintf("register: unexpected state type %T", state)}
	}

	switch op.Function {
	case "read":
		if op.Output != nil && op.Output != s.Value {
			return &Dead{Msg: fmt.Sprintf("register: read %v, expected %v", op.Output, s.Value)}
		}
		return s

	case "write":
		return RegisterState{Value: op.Input}

	case "cas":
		pair, ok := op.Input.([2]any)
		if !ok {
			return &Dead{Msg: fmt.Sprintf("register: cas: expected [2]any value, got %T", op.Input)}
		}
		old, new := pair[0], pair[1]
		if s.Value != old {
			return &Dead{Msg: fmt.Sprintf("register: cas(%v, %v): current value is %v", old, new, s.Value)}
		}
		return RegisterState{Value: new}

	default:
		return &Dead{Msg: fmt.Sprintf("register: unknown function %q", op.Function)}
	}
}
