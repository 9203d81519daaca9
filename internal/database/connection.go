package database

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/qms/qms/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The tray app and a CLI invocation may write at the same time
const dsnOptions = "?_busy_timeout=5000&_journal_mode=WAL"

// DB is the toggle history database
type DB struct {
	*gorm.DB
}

// Connect opens the history database at dbPath, creating its directory.
// ":memory:" opens a private in-memory database.
func Connect(dbPath string) (*DB, error) {
	if dbPath == "" {
		return nil, errors.New("database path cannot be empty")
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
		dsn += dsnOptions
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history database %s", dbPath)
	}

	return &DB{db}, nil
}

// Initialize creates or migrates the schema
func (db *DB) Initialize() error {
	if err := db.AutoMigrate(&models.ToggleEvent{}, &models.ErrorLog{}); err != nil {
		return errors.Wrap(err, "failed to initialize database schema")
	}
	return nil
}

func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
