package common

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
)

// Runner executes external commands on behalf of a backend
type Runner interface {
	// Run executes name with args and returns its stdout
	Run(ctx context.Context, name string, args ...string) ([]byte, error)

	// LookPath checks if a command is available in PATH
	LookPath(name string) bool
}

// ExecRunner runs commands through os/exec
type ExecRunner struct{}

// Run executes the command, failures are returned as *CommandError
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return stdout.Bytes(), &CommandError{
			Name:   name,
			Args:   args,
			Output: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return stdout.Bytes(), nil
}

// LookPath checks if a command is available in PATH
func (ExecRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
