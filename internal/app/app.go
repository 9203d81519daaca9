package app

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qms/qms/internal/models"
	"github.com/qms/qms/internal/reporter"
	"github.com/qms/qms/internal/settings"
	"github.com/qms/qms/internal/startup"
	"github.com/qms/qms/internal/toggle"
	"github.com/qms/qms/pkg/monitor"
)

// Error kinds recorded in the history database
const (
	KindSettings = "settings"
	KindScan     = "scan"
	KindToggle   = "toggle"
	KindDevice   = "device"
	KindStartup  = "startup"
)

// Row is one entry of the monitor selection list
type Row struct {
	Name        string
	Checked     bool
	Active      bool
	Addressable bool
}

// View renders the application state. All calls happen on the UI thread.
type View interface {
	// ShowMonitors discards the current list and shows rows
	ShowMonitors(rows []Row)

	// SetState republishes the tray icon and menu for state
	SetState(state toggle.State)

	// ShowWindow brings up the settings window
	ShowWindow()
}

// Notifier shows a non-blocking message to the user
type Notifier interface {
	Notify(title, message string)
}

// Deps are the collaborators of App; Recorder and Startup may be nil
type Deps struct {
	Registry   monitor.Registry
	Controller *toggle.Controller
	Store      *settings.Store
	Recorder   *reporter.Recorder
	Startup    startup.Manager
	Logger     *zap.Logger
}

// Options mirror the command line
type Options struct {
	NoDDCCI bool
}

// App is the tray application model: the latest scan, the stored selection and the
// derived toggle state. It is not safe for concurrent use; callers run it on the
// UI thread.
type App struct {
	deps   Deps
	opts   Options
	logger *zap.Logger

	view     View
	notifier Notifier

	monitors  []monitor.Monitor
	selection settings.Settings
	state     toggle.State
	firstRun  bool
}

// New creates the model. Call Attach before Init.
func New(deps Deps, opts Options) *App {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &App{
		deps:   deps,
		opts:   opts,
		logger: logger.Named("app"),
	}
}

// Attach connects the presentation layer
func (a *App) Attach(view View, notifier Notifier) {
	a.view = view
	a.notifier = notifier
}

// Init loads the stored selection and performs the first scan. A missing settings
// file marks the first run; a malformed one is reported and treated as empty.
func (a *App) Init(ctx context.Context) error {
	stored, err := a.deps.Store.Load()
	switch {
	case err == nil:
		a.selection = stored
	case errors.Is(err, settings.ErrNotFound):
		a.firstRun = true
		a.selection = settings.Settings{SecondaryMonitors: []string{}}
	default:
		a.selection = settings.Settings{SecondaryMonitors: []string{}}
		a.reportError(KindSettings, "Settings could not be loaded", err)
	}

	if err := a.Rescan(ctx); err != nil {
		return err
	}

	if a.firstRun && a.view != nil {
		a.view.ShowWindow()
	}
	return nil
}

// FirstRun reports whether no settings file existed at startup
func (a *App) FirstRun() bool {
	return a.firstRun
}

// NoDDCCI reports whether per-monitor control is disabled
func (a *App) NoDDCCI() bool {
	return a.opts.NoDDCCI
}

// State returns the last derived toggle state
func (a *App) State() toggle.State {
	return a.state
}

// Monitors returns the last scan
func (a *App) Monitors() []monitor.Monitor {
	return a.monitors
}

// Selection returns the stored secondary monitor selection
func (a *App) Selection() settings.Settings {
	return a.selection
}

// Rescan discards the list and rebuilds it from a fresh scan. Stored selections are
// re-applied by name.
func (a *App) Rescan(ctx context.Context) error {
	monitors, err := a.deps.Registry.Scan(ctx)
	if err != nil {
		err = errors.Wrap(err, "failed to scan monitors")
		a.reportError(KindScan, "Monitor scan failed", err)
		return err
	}
	a.ApplyScan(monitors)
	return nil
}

// ApplyScan installs monitors as the current scan and republishes the view
func (a *App) ApplyScan(monitors []monitor.Monitor) {
	a.monitors = monitors
	a.state = toggle.Derive(monitors)
	a.publish()
}

// Rows returns the selection list for the current scan
func (a *App) Rows() []Row {
	rows := make([]Row, 0, len(a.monitors))
	for _, m := range a.monitors {
		if !m.Selectable() {
			continue
		}
		rows = append(rows, Row{
			Name:        m.Name,
			Checked:     a.selection.Contains(m.Name),
			Active:      m.Active,
			Addressable: m.Addressable(),
		})
	}
	return rows
}

// SetSelected checks or unchecks a monitor and saves the whole selection at once
func (a *App) SetSelected(name string, checked bool) error {
	var names []string
	for _, row := range a.Rows() {
		on := row.Checked
		if row.Name == name {
			on = checked
		}
		if on {
			names = append(names, row.Name)
		}
	}

	next := settings.FromSelection(names).Prune(a.monitors)
	if err := a.deps.Store.Save(next); err != nil {
		a.reportError(KindSettings, "Settings could not be saved", err)
		return err
	}

	a.selection = next
	a.logger.Debug("Selection saved", zap.Strings("secondary_monitors", next.SecondaryMonitors))
	return nil
}

// Toggle flips the secondary monitors and republishes the view. The direction comes
// from a scan taken right before; the last known state is used only when that scan
// fails. Device failures are reported but do not stop the toggle.
func (a *App) Toggle(ctx context.Context) error {
	if monitors, err := a.deps.Registry.Scan(ctx); err == nil {
		a.monitors = monitors
		a.state = toggle.Derive(monitors)
	} else {
		a.logger.Warn("Scan before toggle failed, using last known state",
			zap.Stringer("state", a.state), zap.Error(err))
	}

	var selected []string
	if !a.opts.NoDDCCI {
		selected = a.selection.SecondaryMonitors
	}

	res, err := a.deps.Controller.Toggle(ctx, a.state, selected)
	a.deps.Recorder.RecordResult(models.ActionToggle, "tray", res, err)

	if errors.Is(err, toggle.ErrTooSoon) {
		a.logger.Debug("Toggle ignored during cooldown")
		return nil
	}
	if err != nil {
		a.reportError(KindToggle, "Toggle failed", err)
	}
	for _, f := range res.Failures {
		a.reportError(KindDevice, "Monitor command failed", f)
	}
	if err == nil {
		a.state = res.State
	}

	// the registry is authoritative after a toggle; keep the flipped state if it cannot be read
	if monitors, scanErr := a.deps.Registry.Scan(ctx); scanErr == nil {
		a.ApplyScan(monitors)
	} else {
		a.logger.Warn("Rescan after toggle failed", zap.Error(scanErr))
		a.publish()
	}
	return err
}

// StartupEnabled reports whether the app launches at login
func (a *App) StartupEnabled() bool {
	if a.deps.Startup == nil {
		return false
	}
	enabled, err := a.deps.Startup.Enabled()
	if err != nil {
		a.logger.Warn("Failed to check startup entry", zap.Error(err))
	}
	return enabled
}

// SetStartup creates or removes the startup entry, carrying --no-ddcci along
func (a *App) SetStartup(enabled bool) error {
	if a.deps.Startup == nil {
		return errors.New("startup registration is not supported on this system")
	}

	var args []string
	if a.opts.NoDDCCI {
		args = append(args, "--no-ddcci")
	}
	if err := startup.Set(a.deps.Startup, enabled, args); err != nil {
		a.reportError(KindStartup, "Startup setting could not be changed", err)
		return err
	}
	return nil
}

// ReportError surfaces an error from the presentation layer
func (a *App) ReportError(kind, title string, err error) {
	a.reportError(kind, title, err)
}

func (a *App) publish() {
	if a.view == nil {
		return
	}
	if !a.opts.NoDDCCI {
		a.view.ShowMonitors(a.Rows())
	}
	a.view.SetState(a.state)
}

func (a *App) reportError(kind, title string, err error) {
	a.logger.Error(title, zap.String("kind", kind), zap.Error(err))
	a.deps.Recorder.RecordError(kind, title, err)
	if a.notifier != nil {
		a.notifier.Notify(title, err.Error())
	}
}
