package engine

import "time"

// InitializeEventArg is passed to Initialize listeners once, before the first Process.
type InitializeEventArg struct{}

// ProcessEventArg is passed to Process listeners once per engine tick.
type ProcessEventArg struct {
	// Start is the wall-clock time the tick began.
	Start time.Time
	// DeltaTime is the time in seconds since the previous tick began.
	DeltaTime float32
	// Frame is the zero-based tick counter.
	Frame uint64
}

// DeinitializeEventArg is passed to Deinitialize listeners once, after the last Process.
type DeinitializeEventArg struct{}

// Phase names a lifecycle notification point of the engine.
type Phase int

const (
	PhaseInitialize Phase = iota
	PhaseProcess
	PhaseDeinitialize
)

func (p Phase) String() string {
	switch p {
	case PhaseInitialize:
		return "Initialize"
	case PhaseProcess:
		return "Process"
	case PhaseDeinitialize:
		return "Deinitialize"
	default:
		return "Unknown"
	}
}
