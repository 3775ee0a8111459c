package check

import "fmt"

// State is a submission pipeline state.
type State string

const (
	StateIdle       State = "idle"
	StateValidating State = "validating"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateFailed     State = "failed"
)

// transitions lists every legal edge. FAILED -> IDLE is the retry edge;
// VALIDATING -> IDLE is a rejected request.
var transitions = map[State][]State{
	StateIdle:       {StateValidating},
	StateValidating: {StateIdle, StateProcessing},
	StateProcessing: {StateDone, StateFailed},
	StateFailed:     {StateIdle},
}

// CanTransition reports whether from -> to is a legal edge.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ErrIllegalTransition is returned when a caller asks for an edge the
// machine does not have.
type ErrIllegalTransition struct {
	From, To State
}

func (e *ErrIllegalTransition) Error() string {
	return fmt.Sprintf("illegal submission transition %s -> %s", e.From, e.To)
}

// Transition returns to if the edge is legal.
// PRE: none
// POST: returns (to, nil) on a legal edge, (from, *ErrIllegalTransition) otherwise
func Transition(from, to State) (State, error) {
	if !CanTransition(from, to) {
		return from, &ErrIllegalTransition{From: from, To: to}
	}
	return to, nil
}
