package database

import (
	"time"

	"github.com/qms/qms/internal/models"

	"github.com/pkg/errors"
)

// Repository handles all database operations for toggle history
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new toggle event into the database
func (r *Repository) Create(event *models.ToggleEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	result := r.db.Create(event)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert toggle event")
	}
	return nil
}

// GetRecent retrieves the most recent toggle events, newest first
func (r *Repository) GetRecent(limit int) ([]*models.ToggleEvent, error) {
	var events []*models.ToggleEvent
	result := r.db.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&events)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query toggle events")
	}
	return events, nil
}

// GetOutcomeSummary counts toggle events per outcome
func (r *Repository) GetOutcomeSummary() ([]models.OutcomeSummary, error) {
	var summaries []models.OutcomeSummary

	result := r.db.Model(&models.ToggleEvent{}).
		Select("outcome, COUNT(*) as count").
		Group("outcome").
		Order("count DESC").
		Scan(&summaries)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query outcome summary")
	}

	return summaries, nil
}

// DeleteOldEvents purges toggle events and error logs older than before. It returns
// the number of toggle events removed.
func (r *Repository) DeleteOldEvents(before time.Time) (int64, error) {
	result := r.db.Unscoped().Where("timestamp < ?", before).Delete(&models.ToggleEvent{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old events")
	}
	if err := r.db.Where("timestamp < ?", before).Delete(&models.ErrorLog{}).Error; err != nil {
		return result.RowsAffected, errors.Wrap(err, "failed to delete old error logs")
	}
	return result.RowsAffected, nil
}

// CreateErrorLog inserts a new error log into the database
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	if errorLog.Timestamp.IsZero() {
		errorLog.Timestamp = time.Now()
	}
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetRecentErrors retrieves the most recent error logs, newest first
func (r *Repository) GetRecentErrors(limit int) ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	result := r.db.Order("timestamp DESC").Order("id DESC").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return logs, nil
}

// Clear removes all toggle events and error logs from the database
func (r *Repository) Clear() error {
	if result := r.db.Exec("DELETE FROM toggle_events"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear toggle events")
	}
	if result := r.db.Exec("DELETE FROM error_logs"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
