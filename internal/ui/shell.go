package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/lang"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"

	"github.com/qms/qms/internal/app"
	"github.com/qms/qms/internal/toggle"
)

const appTitle = "QMS"

// Shell is the fyne front end: the settings window and the tray icon. It implements
// app.View and app.Notifier.
type Shell struct {
	ctx     context.Context
	fyneApp fyne.App
	model   *app.App
	theme   ThemeProvider
	logger  *zap.Logger

	window  fyne.Window
	label   *widget.Label
	list    *fyne.Container
	rescan  *widget.Button
	startup *widget.Check
	checks  map[string]*widget.Check

	tray       desktop.App
	menu       *fyne.Menu
	toggleItem *fyne.MenuItem
	state      toggle.State
}

// New builds the window and tray menu. ctx bounds every OS command started from the UI.
func New(ctx context.Context, fyneApp fyne.App, model *app.App, themes ThemeProvider, logger *zap.Logger) *Shell {
	if logger == nil {
		logger = zap.NewNop()
	}
	if themes == nil {
		themes = FyneTheme{App: fyneApp}
	}

	s := &Shell{
		ctx:     ctx,
		fyneApp: fyneApp,
		model:   model,
		theme:   themes,
		logger:  logger.Named("ui"),
		checks:  make(map[string]*widget.Check),
	}
	s.buildWindow()
	s.buildTray()
	return s
}

func (s *Shell) buildWindow() {
	s.window = s.fyneApp.NewWindow(appTitle)
	s.window.SetIcon(trayIcon(toggle.Enabled, false))

	s.label = widget.NewLabel(lang.L("Select the secondary monitors to toggle:"))
	s.list = container.NewVBox()
	s.rescan = widget.NewButton(lang.L("Rescan monitors"), func() {
		_ = s.model.Rescan(s.ctx) // already notified by the model
	})

	s.startup = widget.NewCheck(lang.L("Run at startup"), nil)
	s.startup.SetChecked(s.model.StartupEnabled())
	s.startup.OnChanged = func(enabled bool) {
		if err := s.model.SetStartup(enabled); err != nil {
			s.setStartupChecked(!enabled)
		}
	}

	content := container.NewVBox(s.label, s.list, s.rescan, widget.NewSeparator(), s.startup)
	if s.model.NoDDCCI() {
		s.label.Hide()
		s.list.Hide()
		s.rescan.Hide()
	}

	s.window.SetContent(container.NewPadded(content))
	s.window.SetCloseIntercept(func() {
		s.window.Hide()
	})
}

func (s *Shell) buildTray() {
	s.toggleItem = fyne.NewMenuItem(lang.L("Disable secondary monitors"), s.Toggle)
	settings := fyne.NewMenuItem(lang.L("Settings"), s.ShowWindow)
	exit := fyne.NewMenuItem(lang.L("Exit"), s.Quit)
	exit.IsQuit = true

	s.menu = fyne.NewMenu(appTitle, s.toggleItem, settings, exit)

	if tray, ok := s.fyneApp.(desktop.App); ok {
		s.tray = tray
		tray.SetSystemTrayMenu(s.menu)
	} else {
		s.logger.Warn("System tray not supported by this driver")
	}
}

// ShowMonitors rebuilds the checkbox list
func (s *Shell) ShowMonitors(rows []app.Row) {
	s.list.RemoveAll()
	s.checks = make(map[string]*widget.Check, len(rows))

	for _, row := range rows {
		name := row.Name
		text := name
		if !row.Addressable {
			text = name + " (" + lang.L("display switch only") + ")"
		}

		check := widget.NewCheck(text, nil)
		check.SetChecked(row.Checked)
		check.OnChanged = func(checked bool) {
			// the model notified the failure; show what is actually stored
			if err := s.model.SetSelected(name, checked); err != nil {
				s.ShowMonitors(s.model.Rows())
			}
		}

		s.checks[name] = check
		s.list.Add(check)
	}
	s.list.Refresh()
}

// SetState republishes the tray icon and the toggle menu label
func (s *Shell) SetState(state toggle.State) {
	s.state = state

	if state == toggle.Enabled {
		s.toggleItem.Label = lang.L("Disable secondary monitors")
	} else {
		s.toggleItem.Label = lang.L("Enable secondary monitors")
	}
	s.menu.Refresh()

	if s.tray != nil {
		s.tray.SetSystemTrayIcon(trayIcon(state, s.theme.Dark()))
		s.tray.SetSystemTrayMenu(s.menu)
	}
}

// ShowWindow brings up the settings window
func (s *Shell) ShowWindow() {
	s.window.Show()
	s.window.RequestFocus()
}

// Notify shows a desktop notification
func (s *Shell) Notify(title, message string) {
	s.fyneApp.SendNotification(fyne.NewNotification(appTitle+": "+title, message))
}

// Toggle flips the secondary monitors; errors are reported through Notify
func (s *Shell) Toggle() {
	_ = s.model.Toggle(s.ctx)
}

// Post runs fn on the UI thread
func (s *Shell) Post(fn func()) {
	fyne.Do(fn)
}

// Run starts the event loop and blocks until Quit
func (s *Shell) Run() {
	s.fyneApp.Run()
}

// Quit stops the event loop
func (s *Shell) Quit() {
	s.fyneApp.Quit()
}

func (s *Shell) setStartupChecked(checked bool) {
	handler := s.startup.OnChanged
	s.startup.OnChanged = nil
	s.startup.SetChecked(checked)
	s.startup.OnChanged = handler
}

var (
	_ app.View     = (*Shell)(nil)
	_ app.Notifier = (*Shell)(nil)
)
