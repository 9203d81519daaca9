package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

const (
	defaultDirName  = "QMS"
	defaultFileName = "settings.json"
)

// ErrNotFound is returned by Load when no settings file exists yet (first run)
var ErrNotFound = errors.New("settings file not found")

// ParseError reports a settings file that exists but is not valid JSON
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse settings file %q: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Store reads and writes the settings document
type Store struct {
	path string
}

// NewStore creates a store backed by path
func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns <user config dir>/QMS/settings.json
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "failed to get user config directory")
	}
	return filepath.Join(dir, defaultDirName, defaultFileName), nil
}

// Path returns the settings file location
func (s *Store) Path() string {
	return s.path
}

// Load reads the settings file
func (s *Store) Load() (Settings, error) {
	var out Settings

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return out, ErrNotFound
		}
		return out, errors.Wrapf(err, "failed to read settings file %q", s.path)
	}

	if err := json.Unmarshal(data, &out); err != nil {
		return Settings{}, &ParseError{Path: s.path, Err: err}
	}

	if out.SecondaryMonitors == nil {
		out.SecondaryMonitors = []string{}
	}
	return out, nil
}

// Save writes the settings file through a temp file and rename so a crash
// mid-write leaves the previous document intact.
func (s *Store) Save(settings Settings) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create settings directory %q", dir)
	}

	if settings.SecondaryMonitors == nil {
		settings.SecondaryMonitors = []string{}
	}

	data, err := json.MarshalIndent(settings, "", "    ")
	if err != nil {
		return errors.Wrap(err, "failed to serialize settings")
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp settings file")
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temp settings file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to sync temp settings file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temp settings file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return errors.Wrapf(err, "failed to commit settings file %q", s.path)
	}
	return nil
}
