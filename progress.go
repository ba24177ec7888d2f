package system

import (
	"context"
	"time"
)

// Phase tells which half of the lifecycle a System is running.
type Phase uint8

const (
	PhaseStart Phase = iota
	PhaseStop
)

// String makes Phase satisfy the fmt.Stringer interface.
func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseStop:
		return "stop"
	default:
		return "unknown"
	}
}

// byPhase returns the lifecycle method of c that matches the phase.
// It panics if the phase is unknown.
func (p Phase) byPhase(c Component) Func {
	switch p {
	case PhaseStart:
		return c.Start
	case PhaseStop:
		return c.Stop
	default:
		panic(panicUnknownPhase)
	}
}

// transition returns the state a component is in while the phase runs, and the state it settles in when the phase
// succeeds.
func (p Phase) transition() (during, after State) {
	if p == PhaseStop {
		return Stopping, Stopped
	}
	return Starting, Started
}

// Progress is the lifecycle feedback medium.
// A Progress is reported every time a component has completed a phase. This includes the name of the System and of
// the component, the level the component belongs to (counting from 1), how long it took and an optional error if the
// component failed. Err will be nil on success. OpID is shared by all reports of one Start or Stop call.
// Progress satisfies the error interface.
type Progress struct {
	System    string
	Component string
	Phase     Phase
	Level     int
	OpID      string
	Duration  time.Duration
	Err       error
}

// Error returns the error message for the receiver. Error returns an empty string if there is no error.
func (p Progress) Error() string {
	if p.Err == nil {
		return ""
	}
	return p.Err.Error()
}

// ProgressFunc receives Progress reports. It is called from the goroutines that run a level, so it must be safe for
// concurrent use.
type ProgressFunc func(ctx context.Context, p Progress)

// Verify that Progress satisfies the error interface.
var _ error = Progress{}
