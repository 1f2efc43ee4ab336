package loader

import "fmt"

// State is the load state of a codec module.
type State int

const (
	Unloaded State = iota // registered, no instance
	Loading               // load in flight
	Ready                 // instance available
	Failed                // last load failed, error recorded
)

var stateNames = [...]string{
	Unloaded: "unloaded",
	Loading:  "loading",
	Ready:    "ready",
	Failed:   "failed",
}

// States lists every state in declaration order.
var States = []State{Unloaded, Loading, Ready, Failed}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// validTransitions maps from-state to allowed to-states
var validTransitions = map[State]map[State]bool{
	Unloaded: {
		Loading: true, // load started
	},
	Loading: {
		Ready:    true, // load succeeded
		Failed:   true, // load failed or timed out
		Unloaded: true, // forced reload or close while in flight
	},
	Ready: {
		Unloaded: true, // forced reload or close
	},
	Failed: {
		Unloaded: true, // reset before retry
	},
}

// ValidateTransition checks if a state transition is valid
func ValidateTransition(from, to State) error {
	allowed, ok := validTransitions[from]
	if !ok {
		return fmt.Errorf("unknown source state: %s", from)
	}
	if !allowed[to] {
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	return nil
}
