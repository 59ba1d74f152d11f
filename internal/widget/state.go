package widget

// State is the lifecycle state of a widget's message form.
type State int

const (
	StateUnloaded State = iota
	StateLoading
	StateReady
	StateSubmitting
	StateStreaming
	StateRevalidating
	StateFailed
)

var stateNames = [...]string{
	StateUnloaded:     "unloaded",
	StateLoading:      "loading",
	StateReady:        "ready",
	StateSubmitting:   "submitting",
	StateStreaming:    "streaming",
	StateRevalidating: "revalidating",
	StateFailed:       "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// InFlight reports whether a submission cycle is running.
func (s State) InFlight() bool {
	switch s {
	case StateSubmitting, StateStreaming, StateRevalidating, StateFailed:
		return true
	}
	return false
}

// Every cycle ends back in StateReady, whichever branch it took.
var transitions = map[State][]State{
	StateUnloaded:     {StateLoading},
	StateLoading:      {StateReady, StateUnloaded},
	StateReady:        {StateSubmitting},
	StateSubmitting:   {StateStreaming, StateRevalidating, StateFailed},
	StateStreaming:    {StateReady, StateFailed},
	StateRevalidating: {StateReady, StateFailed},
	StateFailed:       {StateReady},
}

// CanTransition reports whether the state machine allows s -> to.
func (s State) CanTransition(to State) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}
