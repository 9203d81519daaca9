package config

import (
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const (
	configName = "qms"
	envPrefix  = "QMS"
)

// Config keys, also accepted as QMS_<KEY> environment variables
const (
	KeySettingsPath     = "settings_path"
	KeyDatabasePath     = "database_path"
	KeyHistoryRetention = "history_retention"
	KeyLogLevel         = "log_level"
	KeyLogFile          = "log_file"
	KeyRefreshInterval  = "refresh_interval"
	KeyCommandTimeout   = "command_timeout"
	KeyToggleCooldown   = "toggle_cooldown"
	KeyNoDDCCI          = "no_ddcci"
	KeyBackend          = "backend"
	KeyPIDFile          = "pid_file"
)

// Load builds the configuration from defaults, the config file and the environment.
// An empty configFile looks for qms.yaml in the application directory; a missing
// default file is not an error, a missing explicit file is.
func Load(configFile string) (*Config, error) {
	cfg := Default()

	v := viper.New()
	setDefaults(v, cfg)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType("yaml")
		v.AddConfigPath(Dir())
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, errors.Wrap(err, "error reading config")
		}
	} else {
		cfg.ConfigFile = v.ConfigFileUsed()
	}

	apply(v, cfg)
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault(KeySettingsPath, cfg.Settings.Path)
	v.SetDefault(KeyDatabasePath, cfg.Database.Path)
	v.SetDefault(KeyHistoryRetention, cfg.Database.RetentionDays)
	v.SetDefault(KeyLogLevel, cfg.Log.Level)
	v.SetDefault(KeyLogFile, cfg.Log.File)
	v.SetDefault(KeyRefreshInterval, cfg.Watcher.RefreshInterval)
	v.SetDefault(KeyCommandTimeout, cfg.Toggle.CommandTimeout)
	v.SetDefault(KeyToggleCooldown, cfg.Toggle.Cooldown)
	v.SetDefault(KeyNoDDCCI, cfg.Toggle.NoDDCCI)
	v.SetDefault(KeyBackend, cfg.Backend)
	v.SetDefault(KeyPIDFile, cfg.PIDFile)
}

func apply(v *viper.Viper, cfg *Config) {
	cfg.Settings.Path = v.GetString(KeySettingsPath)
	cfg.Database.Path = v.GetString(KeyDatabasePath)
	cfg.Database.RetentionDays = v.GetInt(KeyHistoryRetention)
	cfg.Log.Level = v.GetString(KeyLogLevel)
	cfg.Log.File = v.GetString(KeyLogFile)
	cfg.Watcher.RefreshInterval = v.GetDuration(KeyRefreshInterval)
	cfg.Toggle.CommandTimeout = v.GetDuration(KeyCommandTimeout)
	cfg.Toggle.Cooldown = v.GetDuration(KeyToggleCooldown)
	cfg.Toggle.NoDDCCI = v.GetBool(KeyNoDDCCI)
	cfg.Backend = v.GetString(KeyBackend)
	cfg.PIDFile = v.GetString(KeyPIDFile)
}
