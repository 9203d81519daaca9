package ddcci

import (
	"context"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/qms/qms/pkg/integrations/common"
)

const detectOutput = `Display 1
   I2C bus:  /dev/i2c-4
   DRM connector:           card0-DP-1
   Monitor:                 DEL:DELL U2720Q:ABC1234

Invalid display
   I2C bus:  /dev/i2c-6
   DRM connector:           card0-eDP-1
   EDID synopsis:
      Mfg id:               BOE

Display 2
   I2C bus:  /dev/i2c-7
   DRM connector:           card1-HDMI-A-1
   Monitor:                 GSM:LG HDR 4K:
`

func TestParseDetect(t *testing.T) {
	displays := ParseDetect([]byte(detectOutput))

	want := []Display{
		{Number: 1, Bus: 4, Connector: "DP-1", Model: "DEL:DELL U2720Q:ABC1234", Valid: true},
		{Bus: 6, Connector: "eDP-1"},
		{Number: 2, Bus: 7, Connector: "HDMI-A-1", Model: "GSM:LG HDR 4K:", Valid: true},
	}
	if !reflect.DeepEqual(displays, want) {
		t.Errorf("ParseDetect() = %+v, want %+v", displays, want)
	}
}

func TestParseDetectEmpty(t *testing.T) {
	if displays := ParseDetect([]byte("No displays found.\n")); len(displays) != 0 {
		t.Errorf("ParseDetect() = %+v, want none", displays)
	}
}

func TestDetectSkipsInvalid(t *testing.T) {
	runner := common.NewFakeRunner()
	runner.Outputs["ddcutil detect --brief"] = detectOutput

	displays, err := NewClient(runner).Detect(context.Background())
	if err != nil {
		t.Fatalf("Detect() error: %v", err)
	}
	if len(displays) != 2 {
		t.Errorf("Detect() = %+v, want two valid displays", displays)
	}
}

func TestDetectFailure(t *testing.T) {
	runner := common.NewFakeRunner()
	runner.Errors["ddcutil detect --brief"] = errors.New("no /dev/i2c devices")

	if _, err := NewClient(runner).Detect(context.Background()); err == nil {
		t.Error("Detect() error = nil")
	}
}

func TestSetPower(t *testing.T) {
	tests := []struct {
		name    string
		display Display
		on      bool
		want    string
	}{
		{"On by bus", Display{Number: 1, Bus: 4}, true, "ddcutil --bus 4 setvcp D6 01"},
		{"Off by bus", Display{Number: 1, Bus: 4}, false, "ddcutil --bus 4 setvcp D6 04"},
		{"Off by display number", Display{Number: 2}, false, "ddcutil --display 2 setvcp D6 04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := common.NewFakeRunner()
			if err := NewClient(runner).SetPower(context.Background(), tt.display, tt.on); err != nil {
				t.Fatalf("SetPower() error: %v", err)
			}
			if calls := runner.CallsSnapshot(); len(calls) != 1 || calls[0] != tt.want {
				t.Errorf("calls = %v, want [%s]", calls, tt.want)
			}
		})
	}
}

func TestConnectorKey(t *testing.T) {
	tests := map[string]string{
		"card0-HDMI-A-1": "hdmi-1",
		"HDMI-A-1":       "hdmi-1",
		"HDMI-1":         "hdmi-1",
		"card1-DP-2":     "dp-2",
		"DisplayPort-0":  "dp-0",
		"eDP-1":          "edp-1",
	}
	for in, want := range tests {
		if got := ConnectorKey(in); got != want {
			t.Errorf("ConnectorKey(%q) = %q, want %q", in, got, want)
		}
	}
}
