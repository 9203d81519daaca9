package hybrid

import (
	"context"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/qms/qms/pkg/integrations/common"
	"github.com/qms/qms/pkg/integrations/ddcci"
	"github.com/qms/qms/pkg/monitor"
	"github.com/qms/qms/pkg/monitor/monitortest"
)

const detectOutput = `Display 1
   I2C bus:  /dev/i2c-4
   DRM connector:           card0-DP-1
   Monitor:                 DEL:DELL U2720Q:ABC1234

Display 2
   I2C bus:  /dev/i2c-7
   DRM connector:           card0-HDMI-A-1
   Monitor:                 GSM:LG HDR 4K:
`

func desk() *monitortest.Backend {
	return monitortest.New(
		monitor.Monitor{Index: 0, Name: "eDP-1", Connection: monitor.ConnectionDisplaySwitch, Active: true, Primary: true},
		monitor.Monitor{Index: 1, Name: "DP-1", Connection: monitor.ConnectionDisplaySwitch, Active: true},
		monitor.Monitor{Index: 2, Name: "HDMI-1", Connection: monitor.ConnectionDisplaySwitch, Active: true},
		monitor.Monitor{Index: 3, Name: "DP-2", Connection: monitor.ConnectionDisplaySwitch, Active: false},
	)
}

func TestScanMarksDDCCapableMonitors(t *testing.T) {
	runner := common.NewFakeRunner()
	runner.Outputs["ddcutil detect --brief"] = detectOutput

	backend := NewBackend(desk(), ddcci.NewClient(runner), nil)
	monitors, err := backend.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}

	var addressable []string
	for _, m := range monitors {
		if m.Addressable() {
			addressable = append(addressable, m.Name)
		}
	}
	if !reflect.DeepEqual(addressable, []string{"DP-1", "HDMI-1"}) {
		t.Errorf("addressable = %v, want [DP-1 HDMI-1]", addressable)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	runner := common.NewFakeRunner()
	runner.Outputs["ddcutil detect --brief"] = detectOutput
	display := desk()

	backend := NewBackend(display, ddcci.NewClient(runner), nil)
	ctx := context.Background()

	first, err := backend.Scan(ctx)
	if err != nil {
		t.Fatalf("first Scan() error: %v", err)
	}
	second, err := backend.Scan(ctx)
	if err != nil {
		t.Fatalf("second Scan() error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Scan() not idempotent:\n%+v\n%+v", first, second)
	}
	for i, m := range first {
		if m.Index != i {
			t.Errorf("monitor %s at position %d has index %d", m.Name, i, m.Index)
		}
	}
	if len(display.Calls) != 0 {
		t.Errorf("Scan() changed the display: %v", display.Calls)
	}
	for _, call := range runner.CallsSnapshot() {
		if call != "ddcutil detect --brief" {
			t.Errorf("Scan() ran %q, want only detection", call)
		}
	}
}

func TestScanSurvivesDDCFailure(t *testing.T) {
	runner := common.NewFakeRunner()
	runner.Errors["ddcutil detect --brief"] = errors.New("permission denied")

	backend := NewBackend(desk(), ddcci.NewClient(runner), nil)
	monitors, err := backend.Scan(context.Background())
	if err != nil {
		t.Fatalf("Scan() error: %v", err)
	}
	if len(monitors) != 4 {
		t.Fatalf("len = %d, want 4", len(monitors))
	}
	for _, m := range monitors {
		if m.Addressable() {
			t.Errorf("%s addressable after ddcutil failure", m.Name)
		}
	}
}

func TestSetPower(t *testing.T) {
	runner := common.NewFakeRunner()
	runner.Outputs["ddcutil detect --brief"] = detectOutput

	backend := NewBackend(desk(), ddcci.NewClient(runner), nil)
	ctx := context.Background()

	if err := backend.SetPower(ctx, monitor.Monitor{Name: "HDMI-1"}, false); err != nil {
		t.Fatalf("SetPower() error: %v", err)
	}

	want := []string{"ddcutil detect --brief", "ddcutil --bus 7 setvcp D6 04"}
	if got := runner.CallsSnapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}

	if err := backend.SetPower(ctx, monitor.Monitor{Name: "DP-2"}, true); err == nil {
		t.Error("SetPower(DP-2) error = nil for a monitor without DDC/CI")
	}
}

func TestSwitchAndCloseDelegate(t *testing.T) {
	display := desk()
	backend := NewBackend(display, nil, nil)

	if err := backend.Switch(context.Background(), monitor.SwitchInternal); err != nil {
		t.Fatalf("Switch() error: %v", err)
	}
	if !reflect.DeepEqual(display.Calls, []string{"switch:internal"}) {
		t.Errorf("calls = %v", display.Calls)
	}
	if backend.Name() != "fake" {
		t.Errorf("Name() = %s, want fake", backend.Name())
	}
	if err := backend.SetPower(context.Background(), monitor.Monitor{Name: "DP-1"}, true); err == nil {
		t.Error("SetPower() error = nil with DDC/CI disabled")
	}

	backend.Close()
	if !display.Closed {
		t.Error("Close() did not close the display backend")
	}
}
