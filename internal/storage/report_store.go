package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"reportgen/internal/models"
)

// ReportStore records the outcome of every generation request.
type ReportStore struct {
	db *sql.DB
}

func NewReportStore(db *sql.DB) *ReportStore {
	return &ReportStore{db: db}
}

// LogReport inserts one generation record.
func (s *ReportStore) LogReport(ctx context.Context, entry models.ReportLog) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO report_logs (id, status, message, file_count, text_chars, model, duration_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.Status, entry.Message, entry.FileCount, entry.TextChars, entry.Model, entry.DurationMS, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("log report: %w", err)
	}
	return nil
}

// RecentReports returns the newest records, capped at limit.
func (s *ReportStore) RecentReports(ctx context.Context, limit int) ([]models.ReportLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, status, message, file_count, text_chars, model, duration_ms, created_at
		 FROM report_logs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var logs []models.ReportLog
	for rows.Next() {
		var l models.ReportLog
		if err := rows.Scan(&l.ID, &l.Status, &l.Message, &l.FileCount, &l.TextChars, &l.Model, &l.DurationMS, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// Stats summarizes the report log for the admin dashboard.
type Stats struct {
	ReportsGenerated int64   `json:"reports_generated"`
	ProcessingErrors int64   `json:"processing_errors"`
	AvgDurationSecs  float64 `json:"avg_generation_seconds"`
}

// Stats aggregates success and error counts and the average generation time
// of successful runs.
func (s *ReportStore) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.db.QueryRowContext(ctx,
		`SELECT
			COUNT(CASE WHEN status = ? THEN 1 END),
			COUNT(CASE WHEN status = ? THEN 1 END),
			COALESCE(AVG(CASE WHEN status = ? THEN duration_ms END), 0) / 1000.0
		 FROM report_logs`,
		models.ReportSuccess, models.ReportError, models.ReportSuccess,
	).Scan(&st.ReportsGenerated, &st.ProcessingErrors, &st.AvgDurationSecs)
	if err != nil {
		return Stats{}, fmt.Errorf("report stats: %w", err)
	}
	return st, nil
}
