package assembler

import (
	"fmt"

	"reelforge/internal/services"
)

// State tracks a montage run through the build pipeline. Transitions are
// strictly forward; a run that cannot advance fails in place.
type State string

const (
	StateInit               State = "init"
	StateSegmentsExtracted  State = "segments_extracted"
	StateConcatenated       State = "concatenated"
	StateComposited         State = "composited"
	StateVerified           State = "verified"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

var transitions = map[State][]State{
	StateInit:              {StateSegmentsExtracted, StateFailed},
	StateSegmentsExtracted: {StateConcatenated, StateFailed},
	StateConcatenated:      {StateComposited, StateFailed},
	StateComposited:        {StateVerified, StateFailed},
	StateVerified:          {StateDone, StateFailed},
	StateDone:              nil,
	StateFailed:            nil,
}

// CanTransition reports whether moving from one state to another is legal.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// advance moves the run to the next state or reports an illegal transition.
func (r *run) advance(to State) error {
	if !CanTransition(r.state, to) {
		return services.Wrap(services.ErrCompositeFailed, "assembler", "transition",
			fmt.Sprintf("illegal state transition %s -> %s", r.state, to), nil)
	}
	r.state = to
	return nil
}
