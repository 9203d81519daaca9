package x11

import (
	"context"
	"os"
	"sync"

	"github.com/pkg/errors"

	"github.com/qms/qms/pkg/integrations/common"
	"github.com/qms/qms/pkg/monitor"
)

// Backend implements monitor.Backend for X11. Outputs are read through RandR and
// the display switch is performed with xrandr.
type Backend struct {
	runner common.Runner

	mu     sync.Mutex
	client *randrClient
}

// NewBackend creates a new X11 backend
func NewBackend(runner common.Runner) *Backend {
	if runner == nil {
		runner = common.ExecRunner{}
	}
	return &Backend{runner: runner}
}

// Name returns "x11"
func (b *Backend) Name() string {
	return "x11"
}

// IsAvailable checks if an X display and xrandr are present
func (b *Backend) IsAvailable() bool {
	return os.Getenv("DISPLAY") != "" && b.runner.LookPath("xrandr")
}

// Scan returns the connected outputs
func (b *Backend) Scan(ctx context.Context) ([]monitor.Monitor, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client == nil {
		client, err := newRandRClient()
		if err != nil {
			return nil, err
		}
		b.client = client
	}

	outs, err := b.client.outputs()
	if err != nil {
		// the connection may have gone away, reconnect on the next scan
		b.client.close()
		b.client = nil
		return nil, err
	}
	return monitorsFromOutputs(outs), nil
}

// SetPower is not available on plain X11; power commands go through DDC/CI
func (b *Backend) SetPower(ctx context.Context, m monitor.Monitor, on bool) error {
	return common.ErrNotSupported
}

// Switch extends the desktop onto every secondary output, or turns them all off
func (b *Backend) Switch(ctx context.Context, mode monitor.SwitchMode) error {
	monitors, err := b.Scan(ctx)
	if err != nil {
		return err
	}

	args, err := switchArgs(monitors, mode)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}

	_, err = b.runner.Run(ctx, "xrandr", args...)
	return err
}

// Close releases the X connection
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.client != nil {
		b.client.close()
		b.client = nil
	}
	return nil
}

// monitorsFromOutputs keeps connected outputs and makes sure exactly one is primary.
// Without a RandR primary the first active output is used.
func monitorsFromOutputs(outs []output) []monitor.Monitor {
	monitors := make([]monitor.Monitor, 0, len(outs))
	hasPrimary := false

	for _, o := range outs {
		if !o.connected {
			continue
		}
		primary := o.primary && !hasPrimary
		hasPrimary = hasPrimary || primary
		monitors = append(monitors, monitor.Monitor{
			Index:      len(monitors),
			Name:       o.name,
			Connection: monitor.ConnectionDisplaySwitch,
			Active:     o.active,
			Primary:    primary,
		})
	}

	// Without a RandR primary the first connected output is pinned, whatever is switched on
	if !hasPrimary && len(monitors) > 0 {
		monitors[0].Primary = true
	}
	return monitors
}

// switchArgs builds the xrandr arguments for a display switch. Extend places each
// secondary to the right of the previous one.
func switchArgs(monitors []monitor.Monitor, mode monitor.SwitchMode) ([]string, error) {
	var anchor string
	for _, m := range monitors {
		if m.Primary {
			anchor = m.Name
			break
		}
	}

	var args []string
	for _, m := range monitors {
		if m.Primary {
			continue
		}
		switch mode {
		case monitor.SwitchExtend:
			args = append(args, "--output", m.Name, "--auto")
			if anchor != "" {
				args = append(args, "--right-of", anchor)
			}
			anchor = m.Name
		case monitor.SwitchInternal:
			args = append(args, "--output", m.Name, "--off")
		default:
			return nil, errors.Errorf("unknown switch mode %q", mode)
		}
	}
	return args, nil
}

var _ monitor.Backend = (*Backend)(nil)
