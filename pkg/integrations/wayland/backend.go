package wayland

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/qms/qms/pkg/integrations/common"
	"github.com/qms/qms/pkg/monitor"
)

// compositors are detected in order with pgrep
var compositors = []struct {
	process string
	name    string
}{
	{"Hyprland", "hyprland"},
	{"sway", "sway"},
	{"wayfire", "wayfire"},
	{"river", "river"},
	{"labwc", "labwc"},
	{"gnome-shell", "gnome"},
	{"kwin_wayland", "kde"},
}

// internalPrefixes name connectors of built-in laptop panels
var internalPrefixes = []string{"eDP", "LVDS", "DSI"}

// Backend implements monitor.Backend for Wayland compositors. Hyprland is driven
// through hyprctl, wlroots compositors through wlr-randr.
type Backend struct {
	runner     common.Runner
	compositor string
}

// NewBackend creates a new Wayland backend
func NewBackend(runner common.Runner) *Backend {
	if runner == nil {
		runner = common.ExecRunner{}
	}
	b := &Backend{runner: runner}
	b.detectCompositor()
	return b
}

// detectCompositor attempts to detect the running Wayland compositor
func (b *Backend) detectCompositor() {
	if os.Getenv("HYPRLAND_INSTANCE_SIGNATURE") != "" {
		b.compositor = "hyprland"
		return
	}

	for _, c := range compositors {
		if _, err := b.runner.Run(context.Background(), "pgrep", "-x", c.process); err == nil {
			b.compositor = c.name
			return
		}
	}

	b.compositor = "unknown"
}

// Name returns "wayland"
func (b *Backend) Name() string {
	return "wayland"
}

// Compositor returns the detected compositor name
func (b *Backend) Compositor() string {
	return b.compositor
}

// IsAvailable checks if the tool for the detected compositor is installed.
// GNOME and KDE do not implement wlr-output-management.
func (b *Backend) IsAvailable() bool {
	switch b.compositor {
	case "hyprland":
		return b.runner.LookPath("hyprctl")
	case "gnome", "kde":
		return false
	default:
		return b.runner.LookPath("wlr-randr")
	}
}

// Scan returns the outputs reported by the compositor
func (b *Backend) Scan(ctx context.Context) ([]monitor.Monitor, error) {
	if b.compositor == "hyprland" {
		out, err := b.runner.Run(ctx, "hyprctl", "monitors", "all", "-j")
		if err != nil {
			return nil, err
		}
		return parseHyprctlMonitors(out)
	}

	out, err := b.runner.Run(ctx, "wlr-randr", "--json")
	if err != nil {
		return nil, err
	}
	return parseWlrRandr(out)
}

// SetPower is not available on Wayland; power commands go through DDC/CI
func (b *Backend) SetPower(ctx context.Context, m monitor.Monitor, on bool) error {
	return common.ErrNotSupported
}

// Switch enables or disables every secondary output. Every output is attempted.
func (b *Backend) Switch(ctx context.Context, mode monitor.SwitchMode) error {
	if mode != monitor.SwitchExtend && mode != monitor.SwitchInternal {
		return errors.Errorf("unknown switch mode %q", mode)
	}

	monitors, err := b.Scan(ctx)
	if err != nil {
		return err
	}

	on := mode == monitor.SwitchExtend
	var errs error
	for _, m := range monitors {
		if m.Primary {
			continue
		}
		name, args := b.outputCommand(m.Name, on)
		if _, err := b.runner.Run(ctx, name, args...); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (b *Backend) outputCommand(output string, on bool) (string, []string) {
	if b.compositor == "hyprland" {
		rule := output + ",disable"
		if on {
			rule = output + ",preferred,auto,1"
		}
		return "hyprctl", []string{"keyword", "monitor", rule}
	}

	state := "--off"
	if on {
		state = "--on"
	}
	return "wlr-randr", []string{"--output", output, state}
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

type wlrOutput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
}

// parseWlrRandr parses `wlr-randr --json`
func parseWlrRandr(data []byte) ([]monitor.Monitor, error) {
	var outputs []wlrOutput
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, errors.Wrap(err, "failed to parse wlr-randr output")
	}

	monitors := make([]monitor.Monitor, 0, len(outputs))
	for i, o := range outputs {
		monitors = append(monitors, monitor.Monitor{
			Index:      i,
			Name:       o.Name,
			Connection: monitor.ConnectionDisplaySwitch,
			Active:     o.Enabled,
		})
	}
	markPrimary(monitors)
	return monitors, nil
}

type hyprMonitor struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Disabled    bool   `json:"disabled"`
}

// parseHyprctlMonitors parses `hyprctl monitors all -j`
func parseHyprctlMonitors(data []byte) ([]monitor.Monitor, error) {
	var outputs []hyprMonitor
	if err := json.Unmarshal(data, &outputs); err != nil {
		return nil, errors.Wrap(err, "failed to parse hyprctl output")
	}

	monitors := make([]monitor.Monitor, 0, len(outputs))
	for i, o := range outputs {
		monitors = append(monitors, monitor.Monitor{
			Index:      i,
			Name:       o.Name,
			Connection: monitor.ConnectionDisplaySwitch,
			Active:     !o.Disabled,
		})
	}
	markPrimary(monitors)
	return monitors, nil
}

// markPrimary picks the built-in panel, or the first listed output when there is none.
// The choice must not depend on which outputs are enabled.
func markPrimary(monitors []monitor.Monitor) {
	for i := range monitors {
		if isInternal(monitors[i].Name) {
			monitors[i].Primary = true
			return
		}
	}
	if len(monitors) > 0 {
		monitors[0].Primary = true
	}
}

func isInternal(name string) bool {
	for _, prefix := range internalPrefixes {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

var _ monitor.Backend = (*Backend)(nil)
