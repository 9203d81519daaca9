package watcher

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qms/qms/pkg/monitor"
)

// Service polls the monitor registry and reports when the attached monitors change.
// Without a dispatcher, checks and callbacks run on the polling goroutine.
type Service struct {
	registry monitor.Registry
	interval time.Duration
	logger   *zap.Logger

	onChange func([]monitor.Monitor)
	onError  func(error)

	dispatch func(func())
	baseline func() []monitor.Monitor

	mu      sync.Mutex
	last    []monitor.Monitor
	primed  bool
	failing bool
	running bool
	stopCh  chan struct{}
}

// NewService creates a watcher. onError may be nil.
func NewService(registry monitor.Registry, interval time.Duration, onChange func([]monitor.Monitor), onError func(error), logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		registry: registry,
		interval: interval,
		logger:   logger.Named("watcher"),
		onChange: onChange,
		onError:  onError,
		stopCh:   make(chan struct{}),
	}
}

// RunOn makes every periodic check, scan and callbacks included, run through dispatch.
// A UI passes its "run on the main thread" function so no scan result can overtake
// work done on that thread in the meantime. Call before Start.
func (s *Service) RunOn(dispatch func(func())) {
	s.dispatch = dispatch
}

// CompareWith makes CheckOnce compare against current() instead of its own last scan,
// so a scan applied elsewhere (after a toggle) is the reference. current is called
// from CheckOnce; with RunOn it runs on the dispatcher's thread.
func (s *Service) CompareWith(current func() []monitor.Monitor) {
	s.baseline = current
}

// Start polls until ctx is cancelled or Stop is called
func (s *Service) Start(ctx context.Context) error {
	if s.interval <= 0 {
		return errors.New("watcher interval must be positive")
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return errors.New("watcher is already running")
	}
	s.running = true
	stop := s.stopCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	s.logger.Info("Starting monitor watcher", zap.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Watcher stopped by context")
			return ctx.Err()

		case <-stop:
			s.logger.Debug("Watcher stopped")
			return nil

		case <-ticker.C:
			if s.dispatch != nil {
				s.dispatch(func() {
					if ctx.Err() == nil {
						s.CheckOnce(ctx)
					}
				})
			} else {
				s.CheckOnce(ctx)
			}
		}
	}
}

// Stop ends a running Start
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		close(s.stopCh)
		s.stopCh = make(chan struct{})
	}
}

// IsRunning reports whether Start is polling
func (s *Service) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// CheckOnce scans once and reports a change. It returns true when onChange was called.
// Only the first of consecutive scan failures reaches onError.
func (s *Service) CheckOnce(ctx context.Context) bool {
	monitors, err := s.registry.Scan(ctx)
	if err != nil {
		s.logger.Warn("Monitor scan failed", zap.Error(err))
		s.mu.Lock()
		first := !s.failing
		s.failing = true
		s.mu.Unlock()
		if first && s.onError != nil {
			s.onError(errors.Wrap(err, "failed to refresh monitors"))
		}
		return false
	}

	s.mu.Lock()
	s.failing = false
	last, primed := s.last, s.primed
	if s.baseline != nil {
		last, primed = s.baseline(), true
	}
	changed := !primed || !reflect.DeepEqual(last, monitors)
	s.last = monitors
	s.primed = true
	s.mu.Unlock()

	if !changed {
		return false
	}

	s.logger.Info("Monitor configuration changed", zap.Int("monitors", len(monitors)))
	if s.onChange != nil {
		s.onChange(monitors)
	}
	return true
}
