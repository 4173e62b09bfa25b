package models

import "time"

// ReportStatus marks the outcome of one generation attempt.
type ReportStatus string

const (
	ReportSuccess ReportStatus = "success"
	ReportError   ReportStatus = "error"
)

// ReportLog records one report-generation attempt for the admin dashboard.
type ReportLog struct {
	ID         string       `json:"id"`
	Status     ReportStatus `json:"status"`
	Message    string       `json:"message,omitempty"`
	FileCount  int          `json:"file_count"`
	TextChars  int          `json:"text_chars"`
	Model      string       `json:"model"`
	DurationMS int64        `json:"duration_ms"`
	CreatedAt  time.Time    `json:"created_at"`
}
