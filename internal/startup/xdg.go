//go:build !windows

package startup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// XDGManager writes a freedesktop autostart entry
type XDGManager struct {
	path string
	exe  string
}

// NewXDGManager creates a manager writing <dir>/qms.desktop
func NewXDGManager(dir, exe string) *XDGManager {
	return &XDGManager{
		path: filepath.Join(dir, "qms.desktop"),
		exe:  exe,
	}
}

func newPlatformManager(exe string) (Manager, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "failed to locate home directory")
		}
		dir = filepath.Join(home, ".config")
	}
	return NewXDGManager(filepath.Join(dir, "autostart"), exe), nil
}

// Path returns the desktop entry location
func (m *XDGManager) Path() string {
	return m.path
}

func (m *XDGManager) Enabled() (bool, error) {
	_, err := os.Stat(m.path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, errors.Wrap(err, "failed to check autostart entry")
}

func (m *XDGManager) Enable(args []string) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return errors.Wrap(err, "failed to create autostart directory")
	}
	if err := os.WriteFile(m.path, []byte(desktopEntry(m.exe, args)), 0644); err != nil {
		return errors.Wrap(err, "failed to write autostart entry")
	}
	return nil
}

func (m *XDGManager) Disable() error {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove autostart entry")
	}
	return nil
}

func desktopEntry(exe string, args []string) string {
	cmd := make([]string, 0, len(args)+1)
	for _, a := range append([]string{exe}, args...) {
		cmd = append(cmd, quoteExecArg(a))
	}

	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", appName)
	b.WriteString("Comment=Toggle secondary monitors from the system tray\n")
	fmt.Fprintf(&b, "Exec=%s\n", strings.Join(cmd, " "))
	b.WriteString("Terminal=false\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// quoteExecArg quotes an argument for the Exec key of a .desktop file
func quoteExecArg(s string) string {
	if !strings.ContainsAny(s, " \t\"'\\$`") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "$", `\$`, "`", "\\`")
	return `"` + r.Replace(s) + `"`
}
