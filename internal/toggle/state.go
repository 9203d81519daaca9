package toggle

import "github.com/qms/qms/pkg/monitor"

// State is whether secondary monitors are currently enabled
type State int

const (
	Disabled State = iota
	Enabled
)

func (s State) String() string {
	if s == Enabled {
		return "enabled"
	}
	return "disabled"
}

// Flip returns the opposite state
func (s State) Flip() State {
	if s == Enabled {
		return Disabled
	}
	return Enabled
}

// Derive computes the state from a registry scan: enabled when at least one
// selectable monitor is active.
func Derive(monitors []monitor.Monitor) State {
	for _, m := range monitors {
		if m.Active && m.Selectable() {
			return Enabled
		}
	}
	return Disabled
}

// ActiveCount returns the number of active monitors in a scan
func ActiveCount(monitors []monitor.Monitor) int {
	n := 0
	for _, m := range monitors {
		if m.Active {
			n++
		}
	}
	return n
}
