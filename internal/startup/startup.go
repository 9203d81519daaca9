// Package startup registers the tray application to start with the user session.
package startup

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const appName = "QMS"

// Manager enables or disables launching the app at login
type Manager interface {
	// Enabled reports whether a startup entry exists
	Enabled() (bool, error)

	// Enable creates the startup entry, launching the executable with args
	Enable(args []string) error

	// Disable removes the startup entry; a missing entry is not an error
	Disable() error
}

// New returns the manager for the current platform
func New() (Manager, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, errors.Wrap(err, "failed to locate executable")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return newPlatformManager(exe)
}

// Set enables or disables the startup entry
func Set(m Manager, enabled bool, args []string) error {
	if enabled {
		return m.Enable(args)
	}
	return m.Disable()
}
