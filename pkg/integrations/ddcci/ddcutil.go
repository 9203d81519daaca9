// Package ddcci drives monitor power over DDC/CI with ddcutil.
package ddcci

import (
	"bufio"
	"bytes"
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/qms/qms/pkg/integrations/common"
)

// VCP feature 0xD6 (power mode) values
const (
	vcpPowerMode = "D6"
	powerOn      = "01"
	powerOff     = "04"
)

// Display is one monitor reported by `ddcutil detect --brief`
type Display struct {
	// Number is ddcutil's display number, zero for invalid displays
	Number int

	// Bus is the I2C bus number (/dev/i2c-N)
	Bus int

	// Connector is the DRM connector without the card prefix (e.g. "DP-1")
	Connector string

	// Model is the "MFG:model:serial" triple
	Model string

	// Valid is false for displays ddcutil found but cannot talk to
	Valid bool
}

var (
	displayLine = regexp.MustCompile(`^Display (\d+)$`)
	busLine     = regexp.MustCompile(`/dev/i2c-(\d+)`)
	cardPrefix  = regexp.MustCompile(`^card\d+-`)
)

// ParseDetect parses `ddcutil detect --brief`
func ParseDetect(out []byte) []Display {
	var displays []Display
	var cur *Display

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
			continue
		case displayLine.MatchString(line):
			n, _ := strconv.Atoi(displayLine.FindStringSubmatch(line)[1])
			displays = append(displays, Display{Number: n, Valid: true})
			cur = &displays[len(displays)-1]
		case strings.HasPrefix(line, "Invalid display"), strings.HasPrefix(line, "Phantom display"):
			displays = append(displays, Display{})
			cur = &displays[len(displays)-1]
		case cur == nil:
			continue
		case strings.HasPrefix(line, "I2C bus:"):
			if m := busLine.FindStringSubmatch(line); m != nil {
				cur.Bus, _ = strconv.Atoi(m[1])
			}
		case strings.HasPrefix(line, "DRM connector:"), strings.HasPrefix(line, "DRM_connector:"):
			cur.Connector = cardPrefix.ReplaceAllString(fieldValue(line), "")
		case strings.HasPrefix(line, "Monitor:"):
			cur.Model = fieldValue(line)
		}
	}
	return displays
}

func fieldValue(line string) string {
	_, value, _ := strings.Cut(line, ":")
	return strings.TrimSpace(value)
}

// Client runs ddcutil
type Client struct {
	runner common.Runner
}

// NewClient creates a ddcutil client
func NewClient(runner common.Runner) *Client {
	if runner == nil {
		runner = common.ExecRunner{}
	}
	return &Client{runner: runner}
}

// IsAvailable checks if ddcutil is installed
func (c *Client) IsAvailable() bool {
	return c.runner.LookPath("ddcutil")
}

// Detect lists the valid DDC/CI displays
func (c *Client) Detect(ctx context.Context) ([]Display, error) {
	out, err := c.runner.Run(ctx, "ddcutil", "detect", "--brief")
	if err != nil {
		return nil, errors.Wrap(err, "ddcutil detect failed")
	}

	var valid []Display
	for _, d := range ParseDetect(out) {
		if d.Valid {
			valid = append(valid, d)
		}
	}
	return valid, nil
}

// SetPower writes the power mode feature. The bus is used when known since display
// numbers shift when monitors are unplugged.
func (c *Client) SetPower(ctx context.Context, d Display, on bool) error {
	value := powerOff
	if on {
		value = powerOn
	}

	var args []string
	if d.Bus > 0 {
		args = []string{"--bus", strconv.Itoa(d.Bus)}
	} else {
		args = []string{"--display", strconv.Itoa(d.Number)}
	}
	args = append(args, "setvcp", vcpPowerMode, value)

	_, err := c.runner.Run(ctx, "ddcutil", args...)
	return err
}

// ConnectorKey normalizes connector names so DRM and RandR spellings compare equal
// ("card0-HDMI-A-1", "HDMI-A-1" and "HDMI-1" all map to "hdmi-1").
func ConnectorKey(name string) string {
	key := strings.ToLower(cardPrefix.ReplaceAllString(name, ""))
	key = strings.Replace(key, "hdmi-a-", "hdmi-", 1)
	key = strings.Replace(key, "displayport-", "dp-", 1)
	return key
}
