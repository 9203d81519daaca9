package reporter

import (
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/qms/qms/internal/database"
	"github.com/qms/qms/internal/models"
	"github.com/qms/qms/internal/toggle"
)

// Recorder persists toggle results and errors. A nil repository turns it into a no-op
// so the CLI can run without a history database.
type Recorder struct {
	repo   *database.Repository
	logger *zap.Logger
}

// NewRecorder creates a recorder
func NewRecorder(repo *database.Repository, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{repo: repo, logger: logger.Named("history")}
}

// RecordResult stores one toggle or power command outcome
func (r *Recorder) RecordResult(action, source string, res toggle.Result, err error) {
	if r == nil || r.repo == nil {
		return
	}

	failures := make([]string, 0, len(res.Failures)+1)
	for _, f := range res.Failures {
		failures = append(failures, f.Error())
	}
	if err != nil {
		failures = append(failures, err.Error())
	}

	event := &models.ToggleEvent{
		EventID:    res.ID,
		Timestamp:  res.StartedAt,
		Action:     action,
		FromState:  res.From.String(),
		ToState:    res.State.String(),
		Monitors:   strings.Join(res.Addressed, ", "),
		Outcome:    Outcome(res, err),
		Failures:   strings.Join(failures, "; "),
		DurationMs: res.Duration.Milliseconds(),
		Source:     source,
	}

	if dbErr := r.repo.Create(event); dbErr != nil {
		r.logger.Warn("Failed to store toggle event", zap.Error(dbErr))
	}
}

// RecordError stores an error that was shown to the user
func (r *Recorder) RecordError(kind, title string, err error) {
	if r == nil || r.repo == nil || err == nil {
		return
	}

	if dbErr := r.repo.CreateErrorLog(&models.ErrorLog{Kind: kind, Title: title, ErrorMsg: err.Error()}); dbErr != nil {
		r.logger.Warn("Failed to store error in database", zap.Error(dbErr), zap.NamedError("original", err))
	}
}

// Outcome classifies a result for the history table
func Outcome(res toggle.Result, err error) string {
	switch {
	case errors.Is(err, toggle.ErrTooSoon):
		return models.OutcomeSkipped
	case err != nil:
		return models.OutcomeFailed
	case len(res.Failures) > 0 && len(res.Addressed) == 0 && res.State == res.From:
		return models.OutcomeFailed
	case len(res.Failures) > 0:
		return models.OutcomePartial
	default:
		return models.OutcomeOK
	}
}
