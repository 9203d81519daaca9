package instance

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/shirou/gopsutil/v3/process"
)

// ErrAlreadyRunning is returned by Acquire when another live process holds the pid file
var ErrAlreadyRunning = errors.New("another instance is already running")

// Guard keeps a single tray instance per user with a pid file
type Guard struct {
	pidFile string
}

// New creates a guard for pidFile
func New(pidFile string) *Guard {
	return &Guard{pidFile: pidFile}
}

// Acquire claims the pid file. A stale file left by a dead process is taken over.
func (g *Guard) Acquire() error {
	running, pid, err := g.IsRunning()
	if err != nil {
		return err
	}
	if running && pid != os.Getpid() {
		return errors.Wrapf(ErrAlreadyRunning, "pid %d", pid)
	}
	return g.WritePID()
}

// Release removes the pid file if it still belongs to this process
func (g *Guard) Release() error {
	pid, err := g.ReadPID()
	if err != nil || pid != os.Getpid() {
		return err
	}
	return g.RemovePID()
}

func (g *Guard) WritePID() error {
	if err := os.MkdirAll(filepath.Dir(g.pidFile), 0755); err != nil {
		return errors.Wrap(err, "failed to create pid directory")
	}
	return os.WriteFile(g.pidFile, fmt.Appendf([]byte{}, "%d", os.Getpid()), 0644)
}

func (g *Guard) ReadPID() (int, error) {
	data, err := os.ReadFile(g.pidFile)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, errors.Wrap(err, "failed to read PID file")
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, errors.Wrap(err, "invalid PID in file")
	}

	return pid, nil
}

func (g *Guard) RemovePID() error {
	if err := os.Remove(g.pidFile); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "failed to remove PID file")
	}
	return nil
}

// IsRunning reports whether the recorded process is alive. Stale and corrupt pid
// files are removed.
func (g *Guard) IsRunning() (bool, int, error) {
	pid, err := g.ReadPID()
	if err != nil {
		_ = g.RemovePID()
		return false, 0, nil
	}

	if pid == 0 {
		return false, 0, nil
	}

	alive, err := process.PidExists(int32(pid))
	if err != nil {
		return false, 0, errors.Wrap(err, "failed to check process")
	}
	if !alive {
		_ = g.RemovePID()
		return false, 0, nil
	}

	return true, pid, nil
}
