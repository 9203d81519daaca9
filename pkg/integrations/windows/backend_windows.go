//go:build windows

package windows

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/windows"

	"github.com/qms/qms/pkg/integrations/common"
	"github.com/qms/qms/pkg/monitor"
)

// settleDelay gives Windows time to apply a DisplaySwitch topology change
const settleDelay = 2 * time.Second

// Backend implements monitor.Backend with user32/dxva2 and DisplaySwitch.exe
type Backend struct {
	runner common.Runner

	mu      sync.Mutex
	devices map[string]string // monitor name -> GDI device name
}

// NewBackend creates a new Windows backend
func NewBackend(runner common.Runner) *Backend {
	if runner == nil {
		runner = common.ExecRunner{}
	}
	return &Backend{
		runner:  runner,
		devices: make(map[string]string),
	}
}

func (b *Backend) Name() string {
	return "windows"
}

func (b *Backend) IsAvailable() bool {
	return user32.Load() == nil
}

// Scan enumerates monitors attached to every display adapter
func (b *Backend) Scan(ctx context.Context) ([]monitor.Monitor, error) {
	handles := hmonitors()

	var entries []entry
	for i := uint32(0); ; i++ {
		adapter, ok := enumDisplayDevice("", i)
		if !ok {
			break
		}
		if adapter.StateFlags&displayDeviceMirroringDriver != 0 {
			continue
		}

		adapterName := windows.UTF16ToString(adapter.DeviceName[:])
		for j := uint32(0); ; j++ {
			mon, ok := enumDisplayDevice(adapterName, j)
			if !ok {
				break
			}

			e := entry{
				Name:    windows.UTF16ToString(mon.DeviceString[:]),
				Device:  adapterName,
				Active:  adapter.StateFlags&displayDeviceAttachedToDesktop != 0,
				Primary: adapter.StateFlags&displayDevicePrimaryDevice != 0,
			}
			if h, ok := handles[adapterName]; ok && e.Active {
				e.DDC = hasDDC(h)
			}
			entries = append(entries, e)
		}
	}

	if len(entries) == 0 {
		return nil, errors.New("no display devices found")
	}

	monitors, devices := buildMonitors(entries)

	b.mu.Lock()
	b.devices = devices
	b.mu.Unlock()

	return monitors, nil
}

func hasDDC(hMonitor uintptr) bool {
	supported := false
	_ = withPhysicalMonitors(hMonitor, func(pms []physicalMonitor) error {
		supported = supportsPowerMode(pms[0].Handle)
		return nil
	})
	return supported
}

// SetPower writes VCP 0xD6 on the physical monitor behind m
func (b *Backend) SetPower(ctx context.Context, m monitor.Monitor, on bool) error {
	b.mu.Lock()
	device, ok := b.devices[m.Name]
	b.mu.Unlock()

	if !ok {
		if _, err := b.Scan(ctx); err != nil {
			return err
		}
		b.mu.Lock()
		device, ok = b.devices[m.Name]
		b.mu.Unlock()
		if !ok {
			return errors.Errorf("monitor %q not found", m.Name)
		}
	}

	h, ok := hmonitors()[device]
	if !ok {
		return errors.Errorf("monitor %q is not attached to the desktop", m.Name)
	}

	return withPhysicalMonitors(h, func(pms []physicalMonitor) error {
		return setPowerMode(pms[0].Handle, on)
	})
}

// Switch runs DisplaySwitch.exe and waits for the topology change to settle
func (b *Backend) Switch(ctx context.Context, mode monitor.SwitchMode) error {
	arg, err := displaySwitchArg(mode)
	if err != nil {
		return err
	}

	if _, err := b.runner.Run(ctx, displaySwitchPath(), arg); err != nil {
		return err
	}

	select {
	case <-time.After(settleDelay):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *Backend) Close() error {
	return nil
}

func displaySwitchPath() string {
	if root := os.Getenv("SystemRoot"); root != "" {
		return filepath.Join(root, "System32", "DisplaySwitch.exe")
	}
	return "DisplaySwitch.exe"
}

var _ monitor.Backend = (*Backend)(nil)
