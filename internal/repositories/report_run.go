package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/playtime/internal/models"
)

// ReportRun is the persisted summary of one report.
type ReportRun struct {
	ID                string    `json:"id"`
	User              string    `json:"user"`
	Range             string    `json:"range"`
	RequestedCount    int       `json:"requested_count"`
	RankedCount       int       `json:"ranked_count"`
	SkippedCount      int       `json:"skipped_count"`
	UnresolvableCount int       `json:"unresolvable_count"`
	TotalListeningMS  int64     `json:"total_listening_ms"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewReportRun summarises a finished report.
func NewReportRun(report *models.Report) *ReportRun {
	return &ReportRun{
		ID:                report.RunID,
		User:              report.User,
		Range:             report.Range,
		RequestedCount:    report.RequestedCount,
		RankedCount:       len(report.Entries),
		SkippedCount:      len(report.Skipped),
		UnresolvableCount: len(report.Unresolvable),
		TotalListeningMS:  report.TotalListeningMS,
		CreatedAt:         report.GeneratedAt,
	}
}

// ReportRunRepository records completed runs in the report_runs table.
type ReportRunRepository struct {
	db *sql.DB
}

// NewReportRunRepository creates a new ReportRunRepository with the given database connection
func NewReportRunRepository(db *sql.DB) *ReportRunRepository {
	return &ReportRunRepository{db: db}
}

// Create inserts a run.
func (r *ReportRunRepository) Create(run *ReportRun) error {
	if run.ID == "" {
		return fmt.Errorf("validation failed: run id is required")
	}

	query := `
		INSERT INTO report_runs (id, user_name, stats_range, requested_count, ranked_count, skipped_count, unresolvable_count, total_listening_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		run.ID,
		run.User,
		run.Range,
		run.RequestedCount,
		run.RankedCount,
		run.SkippedCount,
		run.UnresolvableCount,
		run.TotalListeningMS,
		run.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert report run: %w", err)
	}
	return nil
}

// List returns the most recent runs first, at most limit rows (limit <= 0 means all).
func (r *ReportRunRepository) List(limit int) ([]*ReportRun, error) {
	query := `
		SELECT id, user_name, stats_range, requested_count, ranked_count, skipped_count, unresolvable_count, total_listening_ms, created_at
		FROM report_runs
		ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list report runs: %w", err)
	}
	defer rows.Close()

	var runs []*ReportRun
	for rows.Next() {
		run := &ReportRun{}
		if err := rows.Scan(
			&run.ID,
			&run.User,
			&run.Range,
			&run.RequestedCount,
			&run.RankedCount,
			&run.SkippedCount,
			&run.UnresolvableCount,
			&run.TotalListeningMS,
			&run.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan report run: %w", err)
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating report runs: %w", err)
	}
	return runs, nil
}
