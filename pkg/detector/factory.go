package detector

import (
	"os"
	"runtime"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qms/qms/pkg/integrations/common"
	"github.com/qms/qms/pkg/integrations/ddcci"
	"github.com/qms/qms/pkg/integrations/hybrid"
	"github.com/qms/qms/pkg/integrations/wayland"
	"github.com/qms/qms/pkg/integrations/windows"
	"github.com/qms/qms/pkg/integrations/x11"
	"github.com/qms/qms/pkg/monitor"
)

// ErrNoBackend is returned when no backend can run on this system
var ErrNoBackend = errors.New("no supported display backend found")

// Options selects and configures a backend
type Options struct {
	// Backend is "auto", "x11", "wayland" or "windows"
	Backend string

	// NoDDCCI leaves per-monitor power control out of the Linux backends
	NoDDCCI bool

	// Runner executes external commands, nil uses os/exec
	Runner common.Runner

	Logger *zap.Logger
}

// New creates the backend for the current system
func New(opts Options) (monitor.Backend, error) {
	if opts.Runner == nil {
		opts.Runner = common.ExecRunner{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	name := opts.Backend
	if name == "" || name == "auto" {
		name = autoBackend()
	}

	var display monitor.Backend
	switch name {
	case "windows":
		display = windows.NewBackend(opts.Runner)
	case "x11":
		display = x11.NewBackend(opts.Runner)
	case "wayland":
		display = wayland.NewBackend(opts.Runner)
	default:
		return nil, errors.Wrapf(ErrNoBackend, "display server %q", name)
	}

	if !display.IsAvailable() {
		return nil, errors.Wrapf(ErrNoBackend, "%s backend unavailable", name)
	}

	opts.Logger.Info("Display backend selected", zap.String("backend", display.Name()))

	// Windows talks DDC/CI through dxva2 itself
	if name == "windows" {
		return display, nil
	}

	var ddc *ddcci.Client
	if !opts.NoDDCCI {
		ddc = ddcci.NewClient(opts.Runner)
		if !ddc.IsAvailable() {
			opts.Logger.Warn("ddcutil not found, monitors are controlled through the display switch only")
			ddc = nil
		}
	}
	return hybrid.NewBackend(display, ddc, opts.Logger), nil
}

func autoBackend() string {
	if runtime.GOOS == "windows" {
		return "windows"
	}
	return DetectDisplayServer()
}

// DetectDisplayServer reports "wayland", "x11" or "unknown" from the session environment
func DetectDisplayServer() string {
	sessionType := os.Getenv("XDG_SESSION_TYPE")
	waylandDisplay := os.Getenv("WAYLAND_DISPLAY")
	x11Display := os.Getenv("DISPLAY")

	if sessionType == "wayland" || waylandDisplay != "" {
		return "wayland"
	}

	if sessionType == "x11" || x11Display != "" {
		return "x11"
	}

	return "unknown"
}
