// internal/acquisition/state.go
package acquisition

// State is the per-run acquisition state.
// Transitions are strictly forward; any non-terminal state may fail.
type State uint16

const (
	Idle State = iota
	Configured
	Armed
	Polling
	Draining
	Parsed
	Failed
)

var stateNames = [...]string{
	Idle:       "idle",
	Configured: "configured",
	Armed:      "armed",
	Polling:    "polling",
	Draining:   "draining",
	Parsed:     "parsed",
	Failed:     "failed",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool { return s == Parsed || s == Failed }
