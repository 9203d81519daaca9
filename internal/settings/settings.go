package settings

import "github.com/qms/qms/pkg/monitor"

// Settings is the persisted secondary monitor selection
type Settings struct {
	SecondaryMonitors []string `json:"secondary_monitors"`
}

// FromSelection builds Settings from checked monitor names, keeping order and dropping duplicates
func FromSelection(names []string) Settings {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return Settings{SecondaryMonitors: out}
}

// Contains reports whether name is in the secondary set
func (s Settings) Contains(name string) bool {
	for _, n := range s.SecondaryMonitors {
		if n == name {
			return true
		}
	}
	return false
}

// Prune drops names that are not selectable monitors of the given scan
func (s Settings) Prune(monitors []monitor.Monitor) Settings {
	kept := make([]string, 0, len(s.SecondaryMonitors))
	for _, name := range s.SecondaryMonitors {
		if m, ok := monitor.Find(monitors, name); ok && m.Selectable() {
			kept = append(kept, name)
		}
	}
	return FromSelection(kept)
}

// Equal compares two selections, order included
func (s Settings) Equal(other Settings) bool {
	if len(s.SecondaryMonitors) != len(other.SecondaryMonitors) {
		return false
	}
	for i := range s.SecondaryMonitors {
		if s.SecondaryMonitors[i] != other.SecondaryMonitors[i] {
			return false
		}
	}
	return true
}
