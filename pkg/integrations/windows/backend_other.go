//go:build !windows

package windows

import (
	"context"

	"github.com/qms/qms/pkg/integrations/common"
	"github.com/qms/qms/pkg/monitor"
)

// Backend is unavailable outside Windows
type Backend struct{}

// NewBackend returns a backend that reports itself unavailable
func NewBackend(runner common.Runner) *Backend {
	return &Backend{}
}

func (b *Backend) Name() string      { return "windows" }
func (b *Backend) IsAvailable() bool { return false }
func (b *Backend) Close() error      { return nil }

func (b *Backend) Scan(ctx context.Context) ([]monitor.Monitor, error) {
	return nil, common.ErrNotSupported
}

func (b *Backend) SetPower(ctx context.Context, m monitor.Monitor, on bool) error {
	return common.ErrNotSupported
}

func (b *Backend) Switch(ctx context.Context, mode monitor.SwitchMode) error {
	return common.ErrNotSupported
}

var _ monitor.Backend = (*Backend)(nil)
