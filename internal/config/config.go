package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const appDirName = "QMS"

// Config holds all application configuration
type Config struct {
	// Settings store configuration
	Settings SettingsConfig

	// History database configuration
	Database DatabaseConfig

	// Logging configuration
	Log LogConfig

	// Toggle behavior configuration
	Toggle ToggleConfig

	// Registry watcher configuration
	Watcher WatcherConfig

	// Backend selects the platform integration ("auto", "x11", "wayland", "windows")
	Backend string

	// PIDFile guards against a second tray instance
	PIDFile string

	// Path of the config file that was read, empty when none
	ConfigFile string
}

// SettingsConfig holds the monitor selection file location
type SettingsConfig struct {
	Path string // Path to settings.json
}

// DatabaseConfig holds history database configuration
type DatabaseConfig struct {
	Path          string // Path to SQLite database file
	RetentionDays int    // Toggle events older than this are purged on startup
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level string // debug, info, warn, error
	File  string // Log file for the tray app, empty logs to stderr
}

// ToggleConfig holds toggle controller configuration
type ToggleConfig struct {
	NoDDCCI        bool          // Use the display switch only
	CommandTimeout time.Duration // Upper bound for a single OS or DDC/CI command
	Cooldown       time.Duration // Minimum interval between two toggles
}

// WatcherConfig holds registry polling configuration
type WatcherConfig struct {
	RefreshInterval    time.Duration // How often to rescan monitors, 0 disables polling
	MinRefreshInterval time.Duration // Minimum allowed refresh interval
	MaxRefreshInterval time.Duration // Maximum allowed refresh interval
}

// Dir returns the per-user application directory
func Dir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir, _ = os.UserHomeDir()
	}
	return filepath.Join(dir, appDirName)
}

// Default returns a Config with sensible default values
func Default() *Config {
	dir := Dir()
	return &Config{
		Settings: SettingsConfig{
			Path: filepath.Join(dir, "settings.json"),
		},
		Database: DatabaseConfig{
			Path:          filepath.Join(dir, "qms.db"),
			RetentionDays: 90,
		},
		Log: LogConfig{
			Level: "info",
			File:  filepath.Join(dir, "qms.log"),
		},
		Toggle: ToggleConfig{
			NoDDCCI:        false,
			CommandTimeout: 10 * time.Second,
			Cooldown:       time.Second,
		},
		Watcher: WatcherConfig{
			RefreshInterval:    30 * time.Second,
			MinRefreshInterval: 5 * time.Second,
			MaxRefreshInterval: 10 * time.Minute,
		},
		Backend: "auto",
		PIDFile: filepath.Join(dir, "qms.pid"),
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Settings.Path == "" {
		return fmt.Errorf("settings path cannot be empty")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path cannot be empty")
	}

	if c.Database.RetentionDays < 0 {
		return fmt.Errorf("history retention cannot be negative")
	}

	if c.Watcher.RefreshInterval != 0 {
		if c.Watcher.RefreshInterval < c.Watcher.MinRefreshInterval {
			return fmt.Errorf("refresh interval (%v) cannot be less than minimum (%v)",
				c.Watcher.RefreshInterval, c.Watcher.MinRefreshInterval)
		}
		if c.Watcher.RefreshInterval > c.Watcher.MaxRefreshInterval {
			return fmt.Errorf("refresh interval (%v) cannot be greater than maximum (%v)",
				c.Watcher.RefreshInterval, c.Watcher.MaxRefreshInterval)
		}
	}

	if c.Toggle.CommandTimeout < 0 {
		return fmt.Errorf("command timeout cannot be negative")
	}

	if c.Toggle.Cooldown < 0 {
		return fmt.Errorf("toggle cooldown cannot be negative")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}

	if c.PIDFile == "" {
		return fmt.Errorf("pid file cannot be empty")
	}

	switch c.Backend {
	case "auto", "x11", "wayland", "windows":
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}

	return nil
}

// SetRefreshInterval sets the watcher interval with validation
func (c *Config) SetRefreshInterval(interval time.Duration) error {
	if interval == 0 {
		c.Watcher.RefreshInterval = 0
		return nil
	}
	if interval < c.Watcher.MinRefreshInterval {
		return fmt.Errorf("refresh interval cannot be less than %v", c.Watcher.MinRefreshInterval)
	}
	if interval > c.Watcher.MaxRefreshInterval {
		return fmt.Errorf("refresh interval cannot be greater than %v", c.Watcher.MaxRefreshInterval)
	}
	c.Watcher.RefreshInterval = interval
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Config File: %s
  Backend: %s
  PID File: %s
  Settings:
    Path: %s
  Database:
    Path: %s
    Retention: %d days
  Log:
    Level: %s
    File: %s
  Toggle:
    No DDC/CI: %v
    Command Timeout: %v
    Cooldown: %v
  Watcher:
    Refresh Interval: %v`,
		c.ConfigFile,
		c.Backend,
		c.PIDFile,
		c.Settings.Path,
		c.Database.Path,
		c.Database.RetentionDays,
		c.Log.Level,
		c.Log.File,
		c.Toggle.NoDDCCI,
		c.Toggle.CommandTimeout,
		c.Toggle.Cooldown,
		c.Watcher.RefreshInterval,
	)
}
