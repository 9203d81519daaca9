package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"

	"github.com/qms/qms/internal/settings"
	"github.com/qms/qms/internal/toggle"
	"github.com/qms/qms/pkg/monitor/monitortest"
)

type fakeView struct {
	lists   [][]Row
	states  []toggle.State
	windows int
}

func (v *fakeView) ShowMonitors(rows []Row)     { v.lists = append(v.lists, rows) }
func (v *fakeView) SetState(state toggle.State) { v.states = append(v.states, state) }
func (v *fakeView) ShowWindow()                 { v.windows++ }

func (v *fakeView) lastRows() []Row {
	if len(v.lists) == 0 {
		return nil
	}
	return v.lists[len(v.lists)-1]
}

type fakeNotifier struct {
	titles []string
}

func (n *fakeNotifier) Notify(title, message string) { n.titles = append(n.titles, title) }

type fakeStartup struct {
	enabled bool
	args    []string
}

func (s *fakeStartup) Enabled() (bool, error) { return s.enabled, nil }

func (s *fakeStartup) Enable(args []string) error {
	s.enabled = true
	s.args = args
	return nil
}

func (s *fakeStartup) Disable() error {
	s.enabled = false
	return nil
}

type fixture struct {
	app      *App
	backend  *monitortest.Backend
	store    *settings.Store
	view     *fakeView
	notifier *fakeNotifier
	startup  *fakeStartup
}

func newFixture(t *testing.T, opts Options) *fixture {
	t.Helper()
	backend := monitortest.New(monitortest.Desk()...)
	store := settings.NewStore(filepath.Join(t.TempDir(), "QMS", "settings.json"))
	f := &fixture{
		backend:  backend,
		store:    store,
		view:     &fakeView{},
		notifier: &fakeNotifier{},
		startup:  &fakeStartup{},
	}
	f.app = New(Deps{
		Registry:   backend,
		Controller: toggle.NewController(backend, toggle.Options{NoDDCCI: opts.NoDDCCI}, nil),
		Store:      store,
		Startup:    f.startup,
	}, opts)
	f.app.Attach(f.view, f.notifier)
	return f
}

func rowNames(rows []Row, checked bool) []string {
	var names []string
	for _, r := range rows {
		if r.Checked == checked {
			names = append(names, r.Name)
		}
	}
	return names
}

func TestFirstRunShowsWindow(t *testing.T) {
	f := newFixture(t, Options{})

	if err := f.app.Init(context.Background()); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	if !f.app.FirstRun() {
		t.Error("FirstRun() = false without a settings file")
	}
	if f.view.windows != 1 {
		t.Errorf("ShowWindow calls = %d, want 1", f.view.windows)
	}
	if f.app.State() != toggle.Enabled {
		t.Errorf("State() = %v, want enabled", f.app.State())
	}
	if len(f.notifier.titles) != 0 {
		t.Errorf("notifications = %v, want none on first run", f.notifier.titles)
	}
}

func TestCheckboxAutosave(t *testing.T) {
	f := newFixture(t, Options{})
	if err := f.app.Init(context.Background()); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	wantRows := []string{"Monitor1", "Monitor2", "Projector"}
	if got := rowNames(f.view.lastRows(), false); !reflect.DeepEqual(got, wantRows) {
		t.Fatalf("rows = %v, want %v (primary excluded)", got, wantRows)
	}

	if err := f.app.SetSelected("Monitor1", true); err != nil {
		t.Fatalf("SetSelected() error: %v", err)
	}

	data, err := os.ReadFile(f.store.Path())
	if err != nil {
		t.Fatalf("settings file not written: %v", err)
	}
	var doc map[string][]string
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("settings file is not JSON: %v", err)
	}
	want := map[string][]string{"secondary_monitors": {"Monitor1"}}
	if !reflect.DeepEqual(doc, want) {
		t.Errorf("settings = %v, want %v", doc, want)
	}
}

func TestUncheckSavesFullSelection(t *testing.T) {
	f := newFixture(t, Options{})
	if err := f.store.Save(settings.FromSelection([]string{"Monitor1", "Monitor2"})); err != nil {
		t.Fatal(err)
	}
	if err := f.app.Init(context.Background()); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if f.app.FirstRun() || f.view.windows != 0 {
		t.Error("existing settings should start hidden in the tray")
	}

	if err := f.app.SetSelected("Monitor1", false); err != nil {
		t.Fatalf("SetSelected() error: %v", err)
	}

	stored, err := f.store.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !reflect.DeepEqual(stored.SecondaryMonitors, []string{"Monitor2"}) {
		t.Errorf("stored = %v, want [Monitor2]", stored.SecondaryMonitors)
	}
}

func TestMalformedSettingsReported(t *testing.T) {
	f := newFixture(t, Options{})
	if err := os.MkdirAll(filepath.Dir(f.store.Path()), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(f.store.Path(), []byte(`{"secondary_monitors": [`), 0644); err != nil {
		t.Fatal(err)
	}

	if err := f.app.Init(context.Background()); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	if f.app.FirstRun() {
		t.Error("malformed settings must not count as first run")
	}
	if len(f.notifier.titles) != 1 || f.notifier.titles[0] != "Settings could not be loaded" {
		t.Errorf("notifications = %v, want settings load failure", f.notifier.titles)
	}
	if len(f.app.Selection().SecondaryMonitors) != 0 {
		t.Errorf("selection = %v, want empty", f.app.Selection().SecondaryMonitors)
	}
}

func TestRescanReappliesSelectionByName(t *testing.T) {
	f := newFixture(t, Options{})
	if err := f.store.Save(settings.FromSelection([]string{"Monitor1", "Monitor2"})); err != nil {
		t.Fatal(err)
	}
	if err := f.app.Init(context.Background()); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	f.backend.Monitors[2].Name = "Monitor3"
	if err := f.app.Rescan(context.Background()); err != nil {
		t.Fatalf("Rescan() error: %v", err)
	}

	if got := rowNames(f.view.lastRows(), true); !reflect.DeepEqual(got, []string{"Monitor1"}) {
		t.Errorf("checked = %v, want [Monitor1]", got)
	}

	if err := f.app.SetSelected("Projector", true); err != nil {
		t.Fatalf("SetSelected() error: %v", err)
	}
	stored, _ := f.store.Load()
	if !reflect.DeepEqual(stored.SecondaryMonitors, []string{"Monitor1", "Projector"}) {
		t.Errorf("stored = %v, want renamed monitor dropped", stored.SecondaryMonitors)
	}
}

func TestToggle(t *testing.T) {
	f := newFixture(t, Options{})
	if err := f.store.Save(settings.FromSelection([]string{"Monitor1"})); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := f.app.Init(ctx); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	lists := len(f.view.lists)

	if err := f.app.Toggle(ctx); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}

	want := []string{"power:off:Monitor1", "switch:internal"}
	if !reflect.DeepEqual(f.backend.Calls, want) {
		t.Errorf("calls = %v, want %v", f.backend.Calls, want)
	}
	if f.app.State() != toggle.Disabled {
		t.Errorf("State() = %v, want disabled", f.app.State())
	}
	if last := f.view.states[len(f.view.states)-1]; last != toggle.Disabled {
		t.Errorf("published state = %v, want disabled", last)
	}
	if len(f.view.lists) != lists+1 {
		t.Error("monitor list was not rebuilt after toggle")
	}

	if err := f.app.Toggle(ctx); err != nil {
		t.Fatalf("second Toggle() error: %v", err)
	}
	if f.app.State() != toggle.Enabled {
		t.Errorf("State() after two toggles = %v, want enabled", f.app.State())
	}
}

func TestToggleFollowsExternalChange(t *testing.T) {
	f := newFixture(t, Options{})
	if err := f.store.Save(settings.FromSelection([]string{"Monitor1"})); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := f.app.Init(ctx); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	// secondaries switched off behind the app's back, no rescan in between
	if err := f.backend.Switch(ctx, "internal"); err != nil {
		t.Fatal(err)
	}
	f.backend.Calls = nil

	if err := f.app.Toggle(ctx); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}

	want := []string{"switch:extend", "power:on:Monitor1"}
	if !reflect.DeepEqual(f.backend.Calls, want) {
		t.Errorf("calls = %v, want %v", f.backend.Calls, want)
	}
	if f.app.State() != toggle.Enabled {
		t.Errorf("State() = %v, want enabled", f.app.State())
	}
	if f.backend.ActiveCount() != len(monitortest.Desk()) {
		t.Errorf("active monitors = %d, want all", f.backend.ActiveCount())
	}
}

func TestToggleUsesLastStateWhenScanFails(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	if err := f.app.Init(ctx); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	f.backend.ScanErr = errors.New("display server restarting")

	if err := f.app.Toggle(ctx); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}
	if !reflect.DeepEqual(f.backend.Calls, []string{"switch:internal"}) {
		t.Errorf("calls = %v, want the disable path from the last known state", f.backend.Calls)
	}
	if f.app.State() != toggle.Disabled {
		t.Errorf("State() = %v, want disabled", f.app.State())
	}
}

func TestToggleReportsDeviceFailures(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.FailPower["Monitor1"] = errors.New("i2c timeout")
	if err := f.store.Save(settings.FromSelection([]string{"Monitor1", "Monitor2"})); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := f.app.Init(ctx); err != nil {
		t.Fatalf("Init() error: %v", err)
	}

	if err := f.app.Toggle(ctx); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}

	if len(f.notifier.titles) != 1 || f.notifier.titles[0] != "Monitor command failed" {
		t.Errorf("notifications = %v, want one device failure", f.notifier.titles)
	}
	if f.app.State() != toggle.Disabled {
		t.Errorf("State() = %v, want disabled", f.app.State())
	}
}

func TestToggleSwitchFailure(t *testing.T) {
	f := newFixture(t, Options{})
	ctx := context.Background()
	if err := f.app.Init(ctx); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	f.backend.FailSwitch["internal"] = errors.New("xrandr: cannot find output")

	var osErr *toggle.OSCommandError
	if err := f.app.Toggle(ctx); !errors.As(err, &osErr) {
		t.Errorf("Toggle() error = %v, want *OSCommandError", err)
	}
	if f.app.State() != toggle.Enabled {
		t.Errorf("State() = %v, want unchanged", f.app.State())
	}
	if len(f.notifier.titles) == 0 {
		t.Error("switch failure was not notified")
	}
}

func TestNoDDCCI(t *testing.T) {
	f := newFixture(t, Options{NoDDCCI: true})
	if err := f.store.Save(settings.FromSelection([]string{"Monitor1"})); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	if err := f.app.Init(ctx); err != nil {
		t.Fatalf("Init() error: %v", err)
	}
	if len(f.view.lists) != 0 {
		t.Error("monitor list shown with DDC/CI disabled")
	}

	if err := f.app.Toggle(ctx); err != nil {
		t.Fatalf("Toggle() error: %v", err)
	}
	if !reflect.DeepEqual(f.backend.Calls, []string{"switch:internal"}) {
		t.Errorf("calls = %v, want display switch only", f.backend.Calls)
	}
}

func TestScanFailureAtInit(t *testing.T) {
	f := newFixture(t, Options{})
	f.backend.ScanErr = errors.New("cannot open display")

	if err := f.app.Init(context.Background()); err == nil {
		t.Error("Init() error = nil on scan failure")
	}
	if len(f.notifier.titles) != 1 {
		t.Errorf("notifications = %v, want one", f.notifier.titles)
	}
}

func TestStartupCarriesNoDDCCI(t *testing.T) {
	f := newFixture(t, Options{NoDDCCI: true})

	if err := f.app.SetStartup(true); err != nil {
		t.Fatalf("SetStartup() error: %v", err)
	}
	if !f.app.StartupEnabled() {
		t.Error("StartupEnabled() = false after enabling")
	}
	if !reflect.DeepEqual(f.startup.args, []string{"--no-ddcci"}) {
		t.Errorf("startup args = %v, want [--no-ddcci]", f.startup.args)
	}

	if err := f.app.SetStartup(false); err != nil {
		t.Fatalf("SetStartup(false) error: %v", err)
	}
	if f.app.StartupEnabled() {
		t.Error("StartupEnabled() = true after disabling")
	}
}
