package intake

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/samber/lo"

	"reportgen/internal/config"
	"reportgen/internal/extract"
	"reportgen/internal/models"
)

var (
	// ErrNoFiles signals a batch with no named file at all.
	ErrNoFiles = errors.New("no files selected for uploading")
	// ErrTotalSizeExceeded signals that the batch byte sum is over the cap;
	// nothing was saved or processed.
	ErrTotalSizeExceeded = errors.New("total upload size exceeds the limit")
	// ErrNothingProcessed signals that every file in the batch was skipped
	// or failed before producing a piece.
	ErrNothingProcessed = errors.New("no files were suitable for processing")
)

// Upload is one file of the inbound batch, decoupled from the web layer.
type Upload struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// ProcessFunc matches extract.Process; injectable for tests.
type ProcessFunc func(path, scratchDir string) models.ExtractionResult

// Aggregator drives the whole-batch upload flow and enforces the byte and
// text-length budgets.
type Aggregator struct {
	cfg     *config.Settings
	process ProcessFunc
}

// Result is the aggregated outcome of one batch.
type Result struct {
	Pieces     []models.ReportPiece
	Notices    []models.Notice
	SavedNames []string
}

// New builds an Aggregator wired to the real content extractor.
func New(cfg *config.Settings) *Aggregator {
	return &Aggregator{cfg: cfg, process: extract.Process}
}

// NewWithProcessor builds an Aggregator with a custom extraction function.
func NewWithProcessor(cfg *config.Settings, process ProcessFunc) *Aggregator {
	return &Aggregator{cfg: cfg, process: process}
}

// textBudget tracks the running character count of admitted text pieces.
// It only ever grows.
type textBudget struct {
	used int
	max  int
}

// Aggregate processes the batch in upload order, saving files into
// scratchDir and folding extraction results into an ordered piece list.
func (a *Aggregator) Aggregate(uploads []Upload, scratchDir string) (*Result, error) {
	named := lo.Filter(uploads, func(u Upload, _ int) bool { return u.Name != "" })
	if len(named) == 0 {
		return nil, ErrNoFiles
	}

	total := lo.SumBy(named, func(u Upload) int64 { return u.Size })
	if total > a.cfg.MaxTotalUploadSizeBytes() {
		log.Printf("total upload size %d bytes exceeds limit of %d bytes", total, a.cfg.MaxTotalUploadSizeBytes())
		return nil, ErrTotalSizeExceeded
	}

	result := &Result{}
	budget := &textBudget{max: a.cfg.MaxExtractedTextLength}

	for _, upload := range named {
		if upload.Size > a.cfg.MaxFileSizeBytes() {
			result.warnf("File %s exceeds the size limit of %d MB and was skipped.", upload.Name, a.cfg.MaxFileSizeMB)
			result.Pieces = append(result.Pieces, models.ReportPiece{
				Type:     models.TypeError,
				Filename: upload.Name,
				Message:  fmt.Sprintf("File exceeds size limit of %d MB", a.cfg.MaxFileSizeMB),
			})
			continue
		}

		if !a.cfg.ExtensionAllowed(filepath.Ext(upload.Name)) {
			result.warnf("File type not allowed for %s. It has been skipped.", upload.Name)
			result.Pieces = append(result.Pieces, models.ReportPiece{
				Type:     models.TypeUnsupported,
				Filename: upload.Name,
				Message:  "File type not allowed",
			})
			continue
		}

		filename := SecureFilename(upload.Name)
		if filename == "" {
			log.Printf("securing filename emptied original name %q, skipping", upload.Name)
			result.Pieces = append(result.Pieces, models.ReportPiece{
				Type:     models.TypeError,
				Filename: upload.Name,
				Message:  "Invalid filename after securing.",
			})
			continue
		}

		path, err := saveUpload(upload, scratchDir, filename)
		if err != nil {
			log.Printf("error saving file %s: %v", filename, err)
			result.errorf("Error processing file %s. It has been skipped.", filename)
			result.Pieces = append(result.Pieces, models.ReportPiece{
				Type:     models.TypeError,
				Filename: filename,
				Message:  fmt.Sprintf("Error saving file: %v", err),
			})
			continue
		}
		result.SavedNames = append(result.SavedNames, filename)

		a.fold(result, budget, a.process(path, scratchDir))
	}

	if len(result.Pieces) == 0 && len(result.SavedNames) == 0 {
		return nil, ErrNothingProcessed
	}
	return result, nil
}

// fold classifies one extraction result into pieces, flattening emails and
// routing text chunks through the running-length budget.
func (a *Aggregator) fold(result *Result, budget *textBudget, res models.ExtractionResult) {
	switch res.Type {
	case models.TypeError:
		result.errorf("Error processing file %s. It has been skipped.", res.Filename)
		result.Pieces = append(result.Pieces, models.ReportPiece{
			Type: models.TypeError, Filename: res.Filename, Message: res.Message,
		})
	case models.TypeUnsupported:
		result.warnf("File type not allowed for %s. It has been skipped.", res.Filename)
		result.Pieces = append(result.Pieces, models.ReportPiece{
			Type: models.TypeUnsupported, Filename: res.Filename, Message: res.Message,
		})
	case models.TypeEmail:
		if res.Content != "" {
			result.admitText(budget, models.ReportPiece{
				Type: models.TypeText, Filename: res.Filename, Content: res.Content, Source: models.SourceEmailBody,
			})
		}
		attachmentSource := fmt.Sprintf("attachment from EML: %s", res.Filename)
		for _, att := range res.Attachments {
			switch att.Type {
			case models.TypeText:
				result.admitText(budget, models.ReportPiece{
					Type: models.TypeText, Filename: att.Filename, Content: att.Content, Source: attachmentSource,
				})
			case models.TypeVision:
				// Binary pieces bypass the text budget entirely.
				result.Pieces = append(result.Pieces, models.ReportPiece{
					Type: models.TypeVision, Filename: att.Filename, Path: att.Path, MimeType: att.MimeType,
				})
			default:
				result.Pieces = append(result.Pieces, models.ReportPiece{
					Type: att.Type, Filename: att.Filename, Message: att.Message,
				})
			}
		}
	case models.TypeText:
		result.admitText(budget, models.ReportPiece{
			Type: models.TypeText, Filename: res.Filename, Content: res.Content, Source: models.SourceFileContent,
		})
	case models.TypeVision:
		result.Pieces = append(result.Pieces, models.ReportPiece{
			Type: models.TypeVision, Filename: res.Filename, Path: res.Path, MimeType: res.MimeType,
		})
	}
}

// admitText applies the running-length budget to one text chunk: admit it
// whole, truncate it to exactly fill the remaining budget, or skip it.
func (r *Result) admitText(budget *textBudget, piece models.ReportPiece) {
	content := []rune(piece.Content)
	remaining := budget.max - budget.used
	switch {
	case remaining <= 0:
		log.Printf("extracted text limit of %d characters reached, skipping content from %s", budget.max, piece.Filename)
		r.warnf("Skipped some content from %s (%s): extracted text limit reached.", piece.Filename, piece.Source)
	case len(content) > remaining:
		piece.Content = string(content[:remaining])
		budget.used = budget.max
		r.Pieces = append(r.Pieces, piece)
		r.warnf("Content from %s (%s) was truncated: extracted text limit reached.", piece.Filename, piece.Source)
	default:
		budget.used += len(content)
		r.Pieces = append(r.Pieces, piece)
	}
}

func (r *Result) warnf(format string, args ...any) {
	r.Notices = append(r.Notices, models.Notice{Level: models.NoticeWarning, Message: fmt.Sprintf(format, args...)})
}

func (r *Result) errorf(format string, args ...any) {
	r.Notices = append(r.Notices, models.Notice{Level: models.NoticeError, Message: fmt.Sprintf(format, args...)})
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SecureFilename reduces an uploaded name to its base name with a safe
// character set. Returns "" when nothing usable survives.
func SecureFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = unsafeNameChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._-")
	return name
}

// saveUpload copies the upload stream into scratchDir, de-duplicating name
// collisions with an incrementing numeric suffix.
func saveUpload(upload Upload, scratchDir, filename string) (string, error) {
	src, err := upload.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	dest := filepath.Join(scratchDir, filename)
	ext := filepath.Ext(filename)
	base := strings.TrimSuffix(filename, ext)
	for idx := 1; ; idx++ {
		if _, err := os.Stat(dest); os.IsNotExist(err) {
			break
		}
		dest = filepath.Join(scratchDir, fmt.Sprintf("%s_%d%s", base, idx, ext))
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create scratch file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, src); err != nil {
		os.Remove(dest)
		return "", fmt.Errorf("write scratch file: %w", err)
	}
	return dest, nil
}
