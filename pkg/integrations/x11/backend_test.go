package x11

import (
	"context"
	"reflect"
	"testing"

	"github.com/qms/qms/pkg/integrations/common"
	"github.com/qms/qms/pkg/monitor"
)

func TestNewBackend(t *testing.T) {
	backend := NewBackend(nil)
	if backend == nil {
		t.Fatal("NewBackend() returned nil")
	}
	if backend.Name() != "x11" {
		t.Errorf("Name() = %s, want x11", backend.Name())
	}
	t.Logf("X11 backend available: %v", backend.IsAvailable())
}

func TestIsAvailableWithoutXrandr(t *testing.T) {
	runner := common.NewFakeRunner()
	runner.Missing["xrandr"] = true
	t.Setenv("DISPLAY", ":0")

	if NewBackend(runner).IsAvailable() {
		t.Error("IsAvailable() = true without xrandr")
	}
}

func TestMonitorsFromOutputs(t *testing.T) {
	tests := []struct {
		name        string
		outputs     []output
		wantNames   []string
		wantPrimary string
	}{
		{
			name: "RandR primary",
			outputs: []output{
				{name: "eDP-1", connected: true, active: true},
				{name: "HDMI-1", connected: true, active: true, primary: true},
				{name: "DP-1", connected: false},
			},
			wantNames:   []string{"eDP-1", "HDMI-1"},
			wantPrimary: "HDMI-1",
		},
		{
			name: "No primary pins the first connected output",
			outputs: []output{
				{name: "DP-3", connected: false},
				{name: "HDMI-1", connected: true, active: false},
				{name: "eDP-1", connected: true, active: true},
			},
			wantNames:   []string{"HDMI-1", "eDP-1"},
			wantPrimary: "HDMI-1",
		},
		{
			name: "Nothing active",
			outputs: []output{
				{name: "VGA-1", connected: true},
			},
			wantNames:   []string{"VGA-1"},
			wantPrimary: "VGA-1",
		},
		{
			name:    "Nothing connected",
			outputs: []output{{name: "DP-2"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			monitors := monitorsFromOutputs(tt.outputs)

			var names []string
			var primaries []string
			for i, m := range monitors {
				names = append(names, m.Name)
				if m.Primary {
					primaries = append(primaries, m.Name)
				}
				if m.Index != i {
					t.Errorf("%s Index = %d, want %d", m.Name, m.Index, i)
				}
				if m.Connection != monitor.ConnectionDisplaySwitch {
					t.Errorf("%s Connection = %s", m.Name, m.Connection)
				}
			}

			if !reflect.DeepEqual(names, tt.wantNames) {
				t.Errorf("names = %v, want %v", names, tt.wantNames)
			}
			if tt.wantPrimary == "" {
				if len(primaries) != 0 {
					t.Errorf("primaries = %v, want none", primaries)
				}
				return
			}
			if len(primaries) != 1 || primaries[0] != tt.wantPrimary {
				t.Errorf("primaries = %v, want [%s]", primaries, tt.wantPrimary)
			}
		})
	}
}

func TestSwitchArgs(t *testing.T) {
	monitors := []monitor.Monitor{
		{Name: "eDP-1", Primary: true, Active: true},
		{Name: "HDMI-1"},
		{Name: "DP-1"},
	}

	extend, err := switchArgs(monitors, monitor.SwitchExtend)
	if err != nil {
		t.Fatalf("switchArgs(extend) error: %v", err)
	}
	wantExtend := []string{
		"--output", "HDMI-1", "--auto", "--right-of", "eDP-1",
		"--output", "DP-1", "--auto", "--right-of", "HDMI-1",
	}
	if !reflect.DeepEqual(extend, wantExtend) {
		t.Errorf("extend args = %v, want %v", extend, wantExtend)
	}

	internal, err := switchArgs(monitors, monitor.SwitchInternal)
	if err != nil {
		t.Fatalf("switchArgs(internal) error: %v", err)
	}
	wantInternal := []string{"--output", "HDMI-1", "--off", "--output", "DP-1", "--off"}
	if !reflect.DeepEqual(internal, wantInternal) {
		t.Errorf("internal args = %v, want %v", internal, wantInternal)
	}

	if _, err := switchArgs(monitors, monitor.SwitchMode("clone")); err == nil {
		t.Error("switchArgs(clone) error = nil")
	}
}

func TestSetPowerNotSupported(t *testing.T) {
	err := NewBackend(common.NewFakeRunner()).SetPower(context.Background(), monitor.Monitor{Name: "HDMI-1"}, true)
	if err != common.ErrNotSupported {
		t.Errorf("SetPower() error = %v, want ErrNotSupported", err)
	}
}

func TestScan(t *testing.T) {
	backend := NewBackend(nil)
	if !backend.IsAvailable() {
		t.Skip("X11 backend not available on this system")
	}
	defer backend.Close()

	monitors, err := backend.Scan(context.Background())
	if err != nil {
		t.Logf("Scan() error (may be expected): %v", err)
		return
	}
	for _, m := range monitors {
		t.Logf("Output %d: %s active=%v primary=%v", m.Index, m.Name, m.Active, m.Primary)
	}
}

func TestPrimaryIndependentOfActiveOutputs(t *testing.T) {
	on := monitorsFromOutputs([]output{
		{name: "DP-1", connected: true, active: true},
		{name: "DP-2", connected: true, active: true},
	})
	off := monitorsFromOutputs([]output{
		{name: "DP-1", connected: true, active: false},
		{name: "DP-2", connected: true, active: true},
	})

	if !on[0].Primary || !off[0].Primary || off[1].Primary {
		t.Errorf("primary moved with output state: on=%+v off=%+v", on, off)
	}
}
