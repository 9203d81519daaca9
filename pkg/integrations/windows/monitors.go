// Package windows controls monitors through the Win32 display APIs, DDC/CI over
// dxva2 and DisplaySwitch.exe.
package windows

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/qms/qms/pkg/monitor"
)

// entry is one monitor device found under a display adapter
type entry struct {
	Name    string
	Device  string
	Active  bool
	Primary bool
	DDC     bool
}

// buildMonitors turns enumeration entries into monitors with unique names.
// Duplicate names (two "Generic PnP Monitor") get a " (2)" suffix.
func buildMonitors(entries []entry) ([]monitor.Monitor, map[string]string) {
	monitors := make([]monitor.Monitor, 0, len(entries))
	devices := make(map[string]string, len(entries))
	seen := make(map[string]int)
	hasPrimary := false

	for i, e := range entries {
		name := e.Name
		if name == "" {
			name = "Monitor"
		}
		seen[name]++
		if n := seen[name]; n > 1 {
			name = fmt.Sprintf("%s (%d)", name, n)
		}

		conn := monitor.ConnectionDisplaySwitch
		if e.DDC {
			conn = monitor.ConnectionDDCCI
		}

		primary := e.Primary && !hasPrimary
		hasPrimary = hasPrimary || primary

		monitors = append(monitors, monitor.Monitor{
			Index:      i,
			Name:       name,
			Connection: conn,
			Active:     e.Active,
			Primary:    primary,
		})
		devices[name] = e.Device
	}
	return monitors, devices
}

// displaySwitchArg maps a switch mode to its DisplaySwitch.exe flag
func displaySwitchArg(mode monitor.SwitchMode) (string, error) {
	switch mode {
	case monitor.SwitchExtend:
		return "/extend", nil
	case monitor.SwitchInternal:
		return "/internal", nil
	default:
		return "", errors.Errorf("unknown switch mode %q", mode)
	}
}
