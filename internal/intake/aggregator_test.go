package intake

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportgen/internal/config"
	"reportgen/internal/models"
)

func testSettings() *config.Settings {
	return &config.Settings{
		AllowedExtensions:      []string{"png", "jpg", "jpeg", "webp", "gif", "xlsx", "pdf", "docx", "txt", "eml"},
		MaxFileSizeMB:          25,
		MaxTotalUploadSizeMB:   100,
		MaxExtractedTextLength: 500000,
	}
}

func textUpload(name, content string) Upload {
	return Upload{
		Name: name,
		Size: int64(len(content)),
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// echoProcessor returns the saved file's own content as a text result,
// standing in for real extraction.
func echoProcessor(results map[string]models.ExtractionResult) ProcessFunc {
	return func(path, scratchDir string) models.ExtractionResult {
		name := filepath.Base(path)
		if res, ok := results[name]; ok {
			return res
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return models.ErrorResult(name, err.Error())
		}
		return models.TextResult(name, string(data))
	}
}

func TestAggregateNoFiles(t *testing.T) {
	agg := NewWithProcessor(testSettings(), echoProcessor(nil))

	_, err := agg.Aggregate(nil, t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)

	_, err = agg.Aggregate([]Upload{{Name: ""}}, t.TempDir())
	assert.ErrorIs(t, err, ErrNoFiles)
}

func TestAggregateTotalSizeExceeded(t *testing.T) {
	cfg := testSettings()
	cfg.MaxTotalUploadSizeMB = 1
	agg := NewWithProcessor(cfg, echoProcessor(nil))

	big := Upload{Name: "big.txt", Size: 2 * 1024 * 1024}
	_, err := agg.Aggregate([]Upload{big}, t.TempDir())
	assert.ErrorIs(t, err, ErrTotalSizeExceeded)
}

func TestAggregatePerFileSizeSkips(t *testing.T) {
	cfg := testSettings()
	cfg.MaxFileSizeMB = 1
	cfg.MaxTotalUploadSizeMB = 100
	agg := NewWithProcessor(cfg, echoProcessor(nil))

	uploads := []Upload{
		{Name: "big.txt", Size: 2 * 1024 * 1024},
		textUpload("small.txt", "contenuto breve"),
	}
	result, err := agg.Aggregate(uploads, t.TempDir())
	require.NoError(t, err)

	require.Len(t, result.Pieces, 2)
	assert.Equal(t, models.TypeError, result.Pieces[0].Type)
	assert.Equal(t, "big.txt", result.Pieces[0].Filename)
	assert.Equal(t, models.TypeText, result.Pieces[1].Type)
	assert.Equal(t, []string{"small.txt"}, result.SavedNames)

	require.NotEmpty(t, result.Notices)
	assert.Equal(t, models.NoticeWarning, result.Notices[0].Level)
	assert.Contains(t, result.Notices[0].Message, "big.txt")
}

func TestAggregateDisallowedExtension(t *testing.T) {
	agg := NewWithProcessor(testSettings(), echoProcessor(nil))

	result, err := agg.Aggregate([]Upload{textUpload("malware.exe", "x")}, t.TempDir())
	require.NoError(t, err)
	require.Len(t, result.Pieces, 1)
	assert.Equal(t, models.TypeUnsupported, result.Pieces[0].Type)
	assert.Empty(t, result.SavedNames)
}

func TestAggregateBudgetTruncatesExactly(t *testing.T) {
	cfg := testSettings()
	cfg.MaxExtractedTextLength = 10
	agg := NewWithProcessor(cfg, echoProcessor(nil))

	result, err := agg.Aggregate([]Upload{
		textUpload("a.txt", "12345"),
		textUpload("b.txt", "abcdefghij"),
		textUpload("c.txt", "skipped entirely"),
	}, t.TempDir())
	require.NoError(t, err)

	require.Len(t, result.Pieces, 2)
	assert.Equal(t, "12345", result.Pieces[0].Content)
	// Second piece is cut to exactly the remaining budget.
	assert.Equal(t, "abcde", result.Pieces[1].Content)

	var messages []string
	for _, n := range result.Notices {
		messages = append(messages, n.Message)
	}
	joined := strings.Join(messages, " | ")
	assert.Contains(t, joined, "Content from b.txt (file content) was truncated")
	assert.Contains(t, joined, "Skipped some content from c.txt (file content)")
}

func TestAggregateVisionBypassesBudget(t *testing.T) {
	cfg := testSettings()
	cfg.MaxExtractedTextLength = 3
	results := map[string]models.ExtractionResult{
		"foto.png": models.VisionResult("foto.png", "/tmp/foto.png", "image/png"),
	}
	agg := NewWithProcessor(cfg, echoProcessor(results))

	result, err := agg.Aggregate([]Upload{
		textUpload("lungo.txt", "testo oltre il limite"),
		textUpload("foto.png", "binary"),
	}, t.TempDir())
	require.NoError(t, err)

	require.Len(t, result.Pieces, 2)
	assert.Equal(t, models.TypeText, result.Pieces[0].Type)
	assert.Equal(t, models.TypeVision, result.Pieces[1].Type)
	assert.Equal(t, "image/png", result.Pieces[1].MimeType)
}

func TestAggregateFlattensEmail(t *testing.T) {
	results := map[string]models.ExtractionResult{
		"denuncia.eml": {
			Type:     models.TypeEmail,
			Filename: "denuncia.eml",
			Content:  "corpo della mail",
			Attachments: []models.ExtractionResult{
				models.TextResult("nota.txt", "testo allegato"),
				models.VisionResult("foto.jpg", "/tmp/foto.jpg", "image/jpeg"),
			},
		},
	}
	agg := NewWithProcessor(testSettings(), echoProcessor(results))

	result, err := agg.Aggregate([]Upload{textUpload("denuncia.eml", "raw")}, t.TempDir())
	require.NoError(t, err)

	require.Len(t, result.Pieces, 3)
	assert.Equal(t, models.SourceEmailBody, result.Pieces[0].Source)
	assert.Equal(t, "attachment from EML: denuncia.eml", result.Pieces[1].Source)
	assert.Equal(t, models.TypeVision, result.Pieces[2].Type)
}

func TestSecureFilename(t *testing.T) {
	assert.Equal(t, "report_2024.pdf", SecureFilename("report 2024.pdf"))
	assert.Equal(t, "passwd", SecureFilename("../../etc/passwd"))
	assert.Equal(t, "nota.txt", SecureFilename(`C:\Users\mario\nota.txt`))
	assert.Equal(t, "", SecureFilename("???"))
}
