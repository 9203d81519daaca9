package common

import (
	"context"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// FakeRunner is a scripted Runner for tests. Responses are keyed by the full
// command line, e.g. "ddcutil detect --brief".
type FakeRunner struct {
	mu sync.Mutex

	// Outputs maps a command line to its stdout
	Outputs map[string]string

	// Errors maps a command line to the error it fails with
	Errors map[string]error

	// Missing lists executables LookPath reports as absent
	Missing map[string]bool

	// Calls records every command line run, in order
	Calls []string
}

// NewFakeRunner creates an empty fake runner
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Outputs: make(map[string]string),
		Errors:  make(map[string]error),
		Missing: make(map[string]bool),
	}
}

func (f *FakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))

	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, line)

	if err := ctx.Err(); err != nil {
		return nil, &CommandError{Name: name, Args: args, Err: err}
	}
	if err, ok := f.Errors[line]; ok {
		return nil, &CommandError{Name: name, Args: args, Err: err}
	}
	if out, ok := f.Outputs[line]; ok {
		return []byte(out), nil
	}
	if f.Missing[name] {
		return nil, &CommandError{Name: name, Args: args, Err: errors.New("executable file not found in $PATH")}
	}
	return nil, nil
}

func (f *FakeRunner) LookPath(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return !f.Missing[name]
}

// CallsSnapshot returns a copy of the recorded calls
func (f *FakeRunner) CallsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Calls))
	copy(out, f.Calls)
	return out
}
