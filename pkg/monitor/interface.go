package monitor

import "context"

// ConnectionKind describes how a monitor can be controlled
type ConnectionKind string

const (
	// ConnectionDDCCI monitors accept individual power commands over DDC/CI
	ConnectionDDCCI ConnectionKind = "ddcci"

	// ConnectionDisplaySwitch monitors are only reachable through the OS display switch
	ConnectionDisplaySwitch ConnectionKind = "display-switch"
)

// SwitchMode is an OS-level display composition mode
type SwitchMode string

const (
	SwitchExtend   SwitchMode = "extend"
	SwitchInternal SwitchMode = "internal"
)

// Monitor represents a display reported by the OS enumeration
type Monitor struct {
	Index      int            `json:"index" yaml:"index"`
	Name       string         `json:"name" yaml:"name"`
	Connection ConnectionKind `json:"connection" yaml:"connection"`
	Active     bool           `json:"active" yaml:"active"`
	Primary    bool           `json:"primary" yaml:"primary"`
}

// Selectable reports whether the monitor can be part of the secondary set
func (m Monitor) Selectable() bool {
	return !m.Primary
}

// Addressable reports whether the monitor accepts individual power commands
func (m Monitor) Addressable() bool {
	return m.Connection == ConnectionDDCCI
}

// Registry enumerates attached monitors
type Registry interface {
	// Scan returns the monitors in OS enumeration order. It must not mutate anything.
	Scan(ctx context.Context) ([]Monitor, error)
}

// PowerController turns a single monitor on or off
type PowerController interface {
	SetPower(ctx context.Context, m Monitor, on bool) error
}

// DisplaySwitcher changes how the OS composes the attached displays
type DisplaySwitcher interface {
	Switch(ctx context.Context, mode SwitchMode) error
}

// Backend is the interface that all platform integrations must satisfy
type Backend interface {
	Registry
	PowerController
	DisplaySwitcher

	// Name returns the backend identifier ("x11", "wayland", "windows", ...)
	Name() string

	// IsAvailable checks if this backend can run on the current system
	IsAvailable() bool

	// Close cleans up any resources used by the backend
	Close() error
}

// Find returns the first monitor with the given name
func Find(monitors []Monitor, name string) (Monitor, bool) {
	for _, m := range monitors {
		if m.Name == name {
			return m, true
		}
	}
	return Monitor{}, false
}

// SelectableNames returns the names of selectable monitors in scan order
func SelectableNames(monitors []Monitor) []string {
	names := make([]string, 0, len(monitors))
	for _, m := range monitors {
		if m.Selectable() {
			names = append(names, m.Name)
		}
	}
	return names
}
