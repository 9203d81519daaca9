package common

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrNotSupported is returned by backends for operations their platform cannot perform
var ErrNotSupported = errors.New("operation not supported by this backend")

// CommandError is a failed external command
type CommandError struct {
	// Name is the executable that was run (e.g. "xrandr", "ddcutil")
	Name string

	// Args are the arguments passed to it
	Args []string

	// Output is whatever the command wrote to stderr, trimmed
	Output string

	Err error
}

func (e *CommandError) Error() string {
	cmd := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	if e.Output != "" {
		return fmt.Sprintf("%s: %v: %s", cmd, e.Err, e.Output)
	}
	return fmt.Sprintf("%s: %v", cmd, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
