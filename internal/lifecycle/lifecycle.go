package lifecycle

import "sync/atomic"

// Phase is the process lifecycle stage reported by /health.
type Phase int32

const (
	PhaseStarting Phase = iota
	PhaseServing
	PhaseDraining
)

func (p Phase) String() string {
	switch p {
	case PhaseStarting:
		return "starting"
	case PhaseServing:
		return "serving"
	case PhaseDraining:
		return "shutting-down"
	default:
		return "unknown"
	}
}

var phase atomic.Int32

// SetPhase records the current phase. main moves to PhaseServing once the
// listener is up and to PhaseDraining on SIGTERM/SIGINT.
func SetPhase(p Phase) {
	phase.Store(int32(p))
}

// CurrentPhase returns the last phase set; PhaseStarting before any call.
func CurrentPhase() Phase {
	return Phase(phase.Load())
}

// IsShuttingDown returns true if the process is draining and should not receive new traffic.
func IsShuttingDown() bool {
	return CurrentPhase() == PhaseDraining
}
