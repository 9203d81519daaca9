package toggle

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/qms/qms/pkg/monitor"
)

var (
	// ErrTooSoon is returned when a toggle arrives inside the cooldown window
	ErrTooSoon = errors.New("toggle requested too soon after the previous one")

	// ErrUnknownMonitor means a named monitor is not in the current scan
	ErrUnknownMonitor = errors.New("monitor not found")

	// ErrNotAddressable means the monitor does not accept DDC/CI power commands
	ErrNotAddressable = errors.New("monitor does not support DDC/CI")
)

// DeviceError is a failed power command for a single monitor
type DeviceError struct {
	Monitor string
	On      bool
	Err     error
}

func (e *DeviceError) Error() string {
	action := "disable"
	if e.On {
		action = "enable"
	}
	return fmt.Sprintf("%s monitor %q: %v", action, e.Monitor, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// OSCommandError is a failed display switch invocation
type OSCommandError struct {
	Mode monitor.SwitchMode
	Err  error
}

func (e *OSCommandError) Error() string {
	return fmt.Sprintf("display switch %q: %v", e.Mode, e.Err)
}

func (e *OSCommandError) Unwrap() error {
	return e.Err
}
