package toggle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/qms/qms/pkg/monitor"
)

// Options tunes controller behavior
type Options struct {
	// NoDDCCI disables per-monitor power commands; only the display switch is used
	NoDDCCI bool

	// CommandTimeout bounds each OS or DDC/CI command, zero means no bound
	CommandTimeout time.Duration

	// Cooldown is the minimum interval between two toggles, zero disables the limit
	Cooldown time.Duration
}

// Result describes what a toggle or power command did
type Result struct {
	ID        string
	From      State
	State     State
	Addressed []string
	Skipped   []string
	Failures  []error
	StartedAt time.Time
	Duration  time.Duration
}

// Err combines the per-monitor failures, nil when every command succeeded
func (r Result) Err() error {
	return multierr.Combine(r.Failures...)
}

// Controller flips secondary monitors on and off
type Controller struct {
	registry monitor.Registry
	power    monitor.PowerController
	switcher monitor.DisplaySwitcher
	opts     Options
	limiter  *rate.Limiter
	logger   *zap.Logger
}

// NewController creates a controller on top of a platform backend
func NewController(backend monitor.Backend, opts Options, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := &Controller{
		registry: backend,
		power:    backend,
		switcher: backend,
		opts:     opts,
		logger:   logger.Named("toggle"),
	}
	if opts.Cooldown > 0 {
		c.limiter = rate.NewLimiter(rate.Every(opts.Cooldown), 1)
	}
	return c
}

// Toggle flips the secondary monitor state once. current is the state the caller
// last derived from the registry; the returned Result carries the next state.
//
// The display switch to "extend" runs before any enable, and every disable runs
// before the switch to "internal", so no monitor is addressed while the OS does
// not present it. Per-monitor failures are collected, never fatal. A failing
// display switch aborts and leaves the state unchanged.
func (c *Controller) Toggle(ctx context.Context, current State, selected []string) (res Result, err error) {
	res = Result{
		ID:        uuid.NewString(),
		From:      current,
		State:     current,
		StartedAt: time.Now(),
	}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	if c.limiter != nil && !c.limiter.Allow() {
		return res, ErrTooSoon
	}

	enable := current == Disabled
	log := c.logger.With(zap.String("toggle_id", res.ID), zap.Stringer("from", current))
	log.Info("Toggling secondary monitors", zap.Strings("selected", selected))

	if enable {
		if err = c.runSwitch(ctx, monitor.SwitchExtend); err != nil {
			log.Error("Display switch failed, toggle aborted", zap.Error(err))
			return res, err
		}
	}

	if !c.opts.NoDDCCI && len(selected) > 0 {
		c.powerSelected(ctx, &res, selected, enable, log)
	}

	if !enable {
		if err = c.runSwitch(ctx, monitor.SwitchInternal); err != nil {
			log.Error("Display switch failed after disabling monitors", zap.Error(err))
			return res, err
		}
	}

	res.State = current.Flip()
	log.Info("Toggle finished",
		zap.Stringer("to", res.State),
		zap.Strings("addressed", res.Addressed),
		zap.Int("failures", len(res.Failures)))
	return res, nil
}

// SetPower enables or disables the named monitors individually. Every name is
// attempted; failures are collected in the Result.
func (c *Controller) SetPower(ctx context.Context, names []string, on bool) (res Result, err error) {
	res = Result{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	defer func() { res.Duration = time.Since(res.StartedAt) }()

	monitors, scanErr := c.registry.Scan(ctx)
	if scanErr != nil {
		return res, errors.Wrap(scanErr, "failed to scan monitors")
	}
	res.From = Derive(monitors)
	res.State = res.From

	log := c.logger.With(zap.String("toggle_id", res.ID), zap.Bool("on", on))
	for _, name := range names {
		m, ok := monitor.Find(monitors, name)
		if !ok {
			res.Failures = append(res.Failures, &DeviceError{Monitor: name, On: on, Err: ErrUnknownMonitor})
			continue
		}
		if !m.Addressable() {
			res.Failures = append(res.Failures, &DeviceError{Monitor: name, On: on, Err: ErrNotAddressable})
			continue
		}
		if perr := c.runPower(ctx, m, on); perr != nil {
			log.Warn("Monitor command failed", zap.String("monitor", name), zap.Error(perr))
			res.Failures = append(res.Failures, perr)
			continue
		}
		res.Addressed = append(res.Addressed, name)
	}

	if after, rescanErr := c.registry.Scan(ctx); rescanErr == nil {
		res.State = Derive(after)
	}
	return res, nil
}

func (c *Controller) powerSelected(ctx context.Context, res *Result, selected []string, on bool, log *zap.Logger) {
	monitors, err := c.registry.Scan(ctx)
	if err != nil {
		for _, name := range selected {
			res.Failures = append(res.Failures, &DeviceError{Monitor: name, On: on, Err: errors.Wrap(err, "scan failed")})
		}
		return
	}

	for _, name := range selected {
		m, ok := monitor.Find(monitors, name)
		if !ok || !m.Addressable() {
			log.Debug("Skipping monitor without DDC/CI", zap.String("monitor", name), zap.Bool("present", ok))
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if err := c.runPower(ctx, m, on); err != nil {
			log.Warn("Monitor command failed", zap.String("monitor", name), zap.Error(err))
			res.Failures = append(res.Failures, err)
			continue
		}
		res.Addressed = append(res.Addressed, name)
	}
}

func (c *Controller) runSwitch(ctx context.Context, mode monitor.SwitchMode) error {
	ctx, cancel := c.commandContext(ctx)
	defer cancel()

	if err := c.switcher.Switch(ctx, mode); err != nil {
		return &OSCommandError{Mode: mode, Err: err}
	}
	return nil
}

func (c *Controller) runPower(ctx context.Context, m monitor.Monitor, on bool) error {
	ctx, cancel := c.commandContext(ctx)
	defer cancel()

	if err := c.power.SetPower(ctx, m, on); err != nil {
		return &DeviceError{Monitor: m.Name, On: on, Err: err}
	}
	return nil
}

func (c *Controller) commandContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.opts.CommandTimeout > 0 {
		return context.WithTimeout(ctx, c.opts.CommandTimeout)
	}
	return context.WithCancel(ctx)
}
