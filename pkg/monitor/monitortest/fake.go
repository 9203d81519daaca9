// Package monitortest provides an in-memory monitor.Backend for tests.
package monitortest

import (
	"context"
	"fmt"

	"github.com/qms/qms/pkg/monitor"
)

// Backend simulates a desktop with one primary monitor and any number of secondaries.
// Display-switch modes flip every non-primary monitor, power commands flip a single one.
type Backend struct {
	Monitors []monitor.Monitor

	// FailPower makes SetPower fail for the named monitors
	FailPower map[string]error

	// FailSwitch makes Switch fail for the given modes
	FailSwitch map[monitor.SwitchMode]error

	// ScanErr is returned by Scan when set
	ScanErr error

	// Calls records every mutating call in order, e.g. "switch:extend", "power:on:DELL"
	Calls []string

	Scans  int
	Closed bool
}

// New returns a backend holding a copy of monitors
func New(monitors ...monitor.Monitor) *Backend {
	b := &Backend{
		FailPower:  make(map[string]error),
		FailSwitch: make(map[monitor.SwitchMode]error),
	}
	b.Monitors = append(b.Monitors, monitors...)
	return b
}

func (b *Backend) Name() string      { return "fake" }
func (b *Backend) IsAvailable() bool { return true }

func (b *Backend) Close() error {
	b.Closed = true
	return nil
}

func (b *Backend) Scan(ctx context.Context) ([]monitor.Monitor, error) {
	b.Scans++
	if b.ScanErr != nil {
		return nil, b.ScanErr
	}
	out := make([]monitor.Monitor, len(b.Monitors))
	copy(out, b.Monitors)
	return out, nil
}

func (b *Backend) SetPower(ctx context.Context, m monitor.Monitor, on bool) error {
	state := "off"
	if on {
		state = "on"
	}
	b.Calls = append(b.Calls, fmt.Sprintf("power:%s:%s", state, m.Name))
	if err := b.FailPower[m.Name]; err != nil {
		return err
	}
	for i := range b.Monitors {
		if b.Monitors[i].Name == m.Name {
			b.Monitors[i].Active = on
			return nil
		}
	}
	return fmt.Errorf("no such monitor %q", m.Name)
}

func (b *Backend) Switch(ctx context.Context, mode monitor.SwitchMode) error {
	b.Calls = append(b.Calls, "switch:"+string(mode))
	if err := b.FailSwitch[mode]; err != nil {
		return err
	}
	for i := range b.Monitors {
		if b.Monitors[i].Primary {
			continue
		}
		b.Monitors[i].Active = mode == monitor.SwitchExtend
	}
	return nil
}

// ActiveCount returns the number of active monitors
func (b *Backend) ActiveCount() int {
	n := 0
	for _, m := range b.Monitors {
		if m.Active {
			n++
		}
	}
	return n
}

// Desk returns a typical laptop setup: internal panel plus two DDC/CI externals and one
// external without DDC/CI, all active.
func Desk() []monitor.Monitor {
	return []monitor.Monitor{
		{Index: 0, Name: "eDP-1", Connection: monitor.ConnectionDisplaySwitch, Active: true, Primary: true},
		{Index: 1, Name: "Monitor1", Connection: monitor.ConnectionDDCCI, Active: true},
		{Index: 2, Name: "Monitor2", Connection: monitor.ConnectionDDCCI, Active: true},
		{Index: 3, Name: "Projector", Connection: monitor.ConnectionDisplaySwitch, Active: true},
	}
}

var _ monitor.Backend = (*Backend)(nil)
