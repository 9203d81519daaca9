package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qms.yaml")
	content := `settings_path: /tmp/qms-test/settings.json
refresh_interval: 1m
toggle_cooldown: 2s
no_ddcci: true
backend: x11
log_level: debug
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Settings.Path != "/tmp/qms-test/settings.json" {
		t.Errorf("Settings.Path = %s", cfg.Settings.Path)
	}
	if cfg.Watcher.RefreshInterval != time.Minute {
		t.Errorf("RefreshInterval = %v, want 1m", cfg.Watcher.RefreshInterval)
	}
	if cfg.Toggle.Cooldown != 2*time.Second {
		t.Errorf("Cooldown = %v, want 2s", cfg.Toggle.Cooldown)
	}
	if !cfg.Toggle.NoDDCCI {
		t.Error("NoDDCCI = false, want true")
	}
	if cfg.Backend != "x11" {
		t.Errorf("Backend = %s, want x11", cfg.Backend)
	}
	if cfg.ConfigFile != path {
		t.Errorf("ConfigFile = %s, want %s", cfg.ConfigFile, path)
	}
	if cfg.Toggle.CommandTimeout != 10*time.Second {
		t.Errorf("CommandTimeout = %v, want default 10s", cfg.Toggle.CommandTimeout)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qms.yaml")
	if err := os.WriteFile(path, []byte("backend: x11\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("QMS_BACKEND", "wayland")
	t.Setenv("QMS_COMMAND_TIMEOUT", "3s")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Backend != "wayland" {
		t.Errorf("Backend = %s, want wayland", cfg.Backend)
	}
	if cfg.Toggle.CommandTimeout != 3*time.Second {
		t.Errorf("CommandTimeout = %v, want 3s", cfg.Toggle.CommandTimeout)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Load() error = nil, want error for missing explicit file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"Defaults", func(c *Config) {}, ""},
		{"Polling disabled", func(c *Config) { c.Watcher.RefreshInterval = 0 }, ""},
		{"Refresh too low", func(c *Config) { c.Watcher.RefreshInterval = time.Second }, "less than minimum"},
		{"Refresh too high", func(c *Config) { c.Watcher.RefreshInterval = time.Hour }, "greater than maximum"},
		{"Empty settings path", func(c *Config) { c.Settings.Path = "" }, "settings path"},
		{"Empty pid file", func(c *Config) { c.PIDFile = "" }, "pid file"},
		{"Negative timeout", func(c *Config) { c.Toggle.CommandTimeout = -1 }, "command timeout"},
		{"Bad log level", func(c *Config) { c.Log.Level = "trace" }, "log level"},
		{"Bad backend", func(c *Config) { c.Backend = "quartz" }, "backend"},
		{"Negative retention", func(c *Config) { c.Database.RetentionDays = -1 }, "retention"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestStringMentionsPaths(t *testing.T) {
	cfg := Default()
	out := cfg.String()
	if !strings.Contains(out, cfg.Settings.Path) {
		t.Errorf("String() does not mention settings path: %s", out)
	}
}
