package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportgen/internal/models"
)

func openTestStore(t *testing.T) *ReportStore {
	t.Helper()
	db, err := Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, Migrate(db, "sqlite3"))
	return NewReportStore(db)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open("postgres", "dsn")
	assert.Error(t, err)
	_, err = Open("sqlite3", "")
	assert.Error(t, err)
}

func TestLogAndListReports(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	entries := []models.ReportLog{
		{ID: "a", Status: models.ReportSuccess, FileCount: 2, TextChars: 1200, Model: "gemini", DurationMS: 4000, CreatedAt: base},
		{ID: "b", Status: models.ReportError, Message: "Error: blocked", FileCount: 1, Model: "gemini", DurationMS: 900, CreatedAt: base.Add(time.Minute)},
		{ID: "c", Status: models.ReportSuccess, FileCount: 3, TextChars: 800, Model: "gemini", DurationMS: 6000, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, e := range entries {
		require.NoError(t, store.LogReport(ctx, e))
	}

	logs, err := store.RecentReports(ctx, 2)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "c", logs[0].ID)
	assert.Equal(t, "b", logs[1].ID)
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.LogReport(ctx, models.ReportLog{ID: "s1", Status: models.ReportSuccess, Model: "m", DurationMS: 2000}))
	require.NoError(t, store.LogReport(ctx, models.ReportLog{ID: "s2", Status: models.ReportSuccess, Model: "m", DurationMS: 4000}))
	require.NoError(t, store.LogReport(ctx, models.ReportLog{ID: "e1", Status: models.ReportError, Model: "m", DurationMS: 100}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.ReportsGenerated)
	assert.Equal(t, int64(1), stats.ProcessingErrors)
	assert.InDelta(t, 3.0, stats.AvgDurationSecs, 0.001)
}

func TestStatsEmpty(t *testing.T) {
	store := openTestStore(t)

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.ReportsGenerated)
	assert.Zero(t, stats.ProcessingErrors)
	assert.Zero(t, stats.AvgDurationSecs)
}
