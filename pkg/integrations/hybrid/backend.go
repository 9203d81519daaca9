package hybrid

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qms/qms/pkg/integrations/ddcci"
	"github.com/qms/qms/pkg/monitor"
)

// Backend combines a display-server backend with DDC/CI power control. The display
// server owns enumeration and the display switch; monitors that ddcutil can reach
// on the same connector become individually addressable.
type Backend struct {
	display monitor.Backend
	ddc     *ddcci.Client
	logger  *zap.Logger

	mu       sync.Mutex
	displays map[string]ddcci.Display // connector key -> ddcutil display
}

// NewBackend wraps a display-server backend. A nil ddc client disables DDC/CI.
func NewBackend(display monitor.Backend, ddc *ddcci.Client, logger *zap.Logger) *Backend {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Backend{
		display:  display,
		ddc:      ddc,
		logger:   logger.Named("hybrid"),
		displays: make(map[string]ddcci.Display),
	}
}

// Name returns the display-server name with a ddcci suffix when DDC/CI is in use
func (b *Backend) Name() string {
	if b.ddc == nil {
		return b.display.Name()
	}
	return b.display.Name() + "+ddcci"
}

func (b *Backend) IsAvailable() bool {
	return b.display.IsAvailable()
}

// Scan enumerates through the display server and marks DDC/CI capable monitors.
// A failing ddcutil only costs addressability, never the scan.
func (b *Backend) Scan(ctx context.Context) ([]monitor.Monitor, error) {
	monitors, err := b.display.Scan(ctx)
	if err != nil {
		return nil, err
	}
	if b.ddc == nil {
		return monitors, nil
	}

	displays, err := b.detect(ctx)
	if err != nil {
		b.logger.Warn("DDC/CI detection failed", zap.Error(err))
		return monitors, nil
	}

	for i := range monitors {
		if _, ok := displays[ddcci.ConnectorKey(monitors[i].Name)]; ok {
			monitors[i].Connection = monitor.ConnectionDDCCI
		}
	}
	return monitors, nil
}

// SetPower sends the DDC/CI power command for m
func (b *Backend) SetPower(ctx context.Context, m monitor.Monitor, on bool) error {
	if b.ddc == nil {
		return errors.New("DDC/CI is disabled")
	}

	key := ddcci.ConnectorKey(m.Name)
	b.mu.Lock()
	d, ok := b.displays[key]
	b.mu.Unlock()

	if !ok {
		displays, err := b.detect(ctx)
		if err != nil {
			return err
		}
		if d, ok = displays[key]; !ok {
			return errors.Errorf("no DDC/CI display on connector %s", m.Name)
		}
	}

	return b.ddc.SetPower(ctx, d, on)
}

// Switch delegates to the display server
func (b *Backend) Switch(ctx context.Context, mode monitor.SwitchMode) error {
	return b.display.Switch(ctx, mode)
}

func (b *Backend) Close() error {
	return b.display.Close()
}

// detect refreshes the connector -> display map
func (b *Backend) detect(ctx context.Context) (map[string]ddcci.Display, error) {
	found, err := b.ddc.Detect(ctx)
	if err != nil {
		return nil, err
	}

	displays := make(map[string]ddcci.Display, len(found))
	for _, d := range found {
		if d.Connector == "" {
			continue
		}
		displays[ddcci.ConnectorKey(d.Connector)] = d
	}

	b.mu.Lock()
	b.displays = displays
	b.mu.Unlock()
	return displays, nil
}

var _ monitor.Backend = (*Backend)(nil)
