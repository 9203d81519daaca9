package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/qms/qms/internal/database"
	"github.com/qms/qms/internal/models"
	"github.com/qms/qms/pkg/utils"
)

// Reporter handles toggle history reports
type Reporter struct {
	repo *database.Repository
	now  func() time.Time
}

// New creates a new reporter
func New(repo *database.Repository) *Reporter {
	return &Reporter{
		repo: repo,
		now:  time.Now,
	}
}

// GenerateReport builds a report of the last limit toggle events
func (r *Reporter) GenerateReport(limit int) (*models.HistoryReport, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("invalid history limit: %d", limit)
	}

	events, err := r.repo.GetRecent(limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent events: %w", err)
	}

	outcomes, err := r.repo.GetOutcomeSummary()
	if err != nil {
		return nil, fmt.Errorf("failed to get outcome summary: %w", err)
	}

	errorsLogged, err := r.repo.GetRecentErrors(5)
	if err != nil {
		return nil, fmt.Errorf("failed to get error logs: %w", err)
	}

	var total int64
	for _, o := range outcomes {
		total += o.Count
	}

	return &models.HistoryReport{
		Events:      events,
		Outcomes:    outcomes,
		Total:       total,
		LastErrors:  errorsLogged,
		GeneratedAt: r.now(),
	}, nil
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.HistoryReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Toggle History (%d recorded)\n", report.Total)
	for _, o := range report.Outcomes {
		fmt.Fprintf(&b, "  %-8s %d\n", o.Outcome, o.Count)
	}
	b.WriteString("\n")

	if len(report.Events) == 0 {
		b.WriteString("No toggles recorded yet.\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%-8s %-8s %-20s %-8s %-8s %s\n", "When", "Action", "Change", "Outcome", "Took", "Monitors")
	b.WriteString(strings.Repeat("-", 80) + "\n")

	for _, e := range report.Events {
		fmt.Fprintf(&b, "%-8s %-8s %-20s %-8s %-8s %s\n",
			utils.FormatAge(report.GeneratedAt.Sub(e.Timestamp))+" ago",
			e.Action,
			e.FromState+" -> "+e.ToState,
			e.Outcome,
			utils.FormatMillis(e.DurationMs),
			truncate(e.Monitors, 30))
		if e.Failures != "" {
			fmt.Fprintf(&b, "         ! %s\n", e.Failures)
		}
	}

	if len(report.LastErrors) > 0 {
		b.WriteString("\nRecent errors:\n")
		for _, l := range report.LastErrors {
			fmt.Fprintf(&b, "  %s [%s] %s: %s\n", l.Timestamp.Format("2006-01-02 15:04"), l.Kind, l.Title, l.ErrorMsg)
		}
	}

	return b.String()
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.HistoryReport) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

// truncate shortens s to maxLen bytes
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
