package instance

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/pkg/errors"
)

func TestAcquireRelease(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run", "qms.pid")
	g := New(path)

	if err := g.Acquire(); err != nil {
		t.Fatalf("Acquire() error: %v", err)
	}

	pid, err := g.ReadPID()
	if err != nil {
		t.Fatalf("ReadPID() error: %v", err)
	}
	if pid != os.Getpid() {
		t.Errorf("ReadPID() = %d, want %d", pid, os.Getpid())
	}

	// re-acquiring from the same process is allowed
	if err := g.Acquire(); err != nil {
		t.Errorf("second Acquire() error: %v", err)
	}

	if err := g.Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("pid file still exists after Release()")
	}
}

func TestAcquireWhileAnotherInstanceRuns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qms.pid")
	// the parent process (go test) is alive and is not us
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0644); err != nil {
		t.Fatal(err)
	}

	err := New(path).Acquire()
	if !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("Acquire() error = %v, want ErrAlreadyRunning", err)
	}
}

func TestStalePIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qms.pid")
	// pid numbers this large are never assigned
	if err := os.WriteFile(path, []byte("999999999"), 0644); err != nil {
		t.Fatal(err)
	}

	g := New(path)
	running, _, err := g.IsRunning()
	if err != nil {
		t.Fatalf("IsRunning() error: %v", err)
	}
	if running {
		t.Error("IsRunning() = true for a dead pid")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("stale pid file was not removed")
	}

	if err := g.Acquire(); err != nil {
		t.Errorf("Acquire() over stale file error: %v", err)
	}
}

func TestCorruptPIDFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qms.pid")
	if err := os.WriteFile(path, []byte("not-a-pid"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := New(path).Acquire(); err != nil {
		t.Errorf("Acquire() over corrupt file error: %v", err)
	}
}

func TestReleaseLeavesForeignFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "qms.pid")
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getppid())), 0644); err != nil {
		t.Fatal(err)
	}

	if err := New(path).Release(); err != nil {
		t.Fatalf("Release() error: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Error("Release() removed a pid file owned by another process")
	}
}
