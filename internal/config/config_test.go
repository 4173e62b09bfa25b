package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, int64(25), cfg.MaxFileSizeMB)
	assert.Equal(t, int64(100), cfg.MaxTotalUploadSizeMB)
	assert.Equal(t, 500000, cfg.MaxExtractedTextLength)
	assert.Equal(t, "gemini-2.5-flash-preview-05-20", cfg.ModelName)
	assert.Equal(t, 30, cfg.CacheTTLDays)
	assert.Equal(t, 3, cfg.RetryAttempts)
	assert.Equal(t, "Times New Roman", cfg.DocxFontName)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver)
}

func TestLoadRequiresSecretKey(t *testing.T) {
	t.Setenv("SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestSizeHelpers(t *testing.T) {
	cfg := &Settings{MaxFileSizeMB: 2, MaxTotalUploadSizeMB: 5}
	assert.Equal(t, int64(2*1024*1024), cfg.MaxFileSizeBytes())
	assert.Equal(t, int64(5*1024*1024), cfg.MaxTotalUploadSizeBytes())
}

func TestExtensionAllowed(t *testing.T) {
	cfg := &Settings{AllowedExtensions: []string{"pdf", "txt", "eml"}}

	assert.True(t, cfg.ExtensionAllowed(".pdf"))
	assert.True(t, cfg.ExtensionAllowed("PDF"))
	assert.True(t, cfg.ExtensionAllowed(".TXT"))
	assert.False(t, cfg.ExtensionAllowed(".exe"))
	assert.False(t, cfg.ExtensionAllowed(""))
}
