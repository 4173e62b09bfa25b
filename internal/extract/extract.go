package extract

import (
	"fmt"
	"image"
	"log"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/fumiama/go-docx"
	"github.com/gabriel-vasile/mimetype"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/xuri/excelize/v2"
	_ "golang.org/x/image/webp"

	"reportgen/internal/models"
)

var imageExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
	".gif":  true,
}

// Process maps one file path to an ExtractionResult based on its extension.
// scratchDir is the request's scratch space; the email unpacker saves decoded
// attachments under it. Extraction failures never propagate as errors past
// this package: they come back as the error variant.
func Process(path, scratchDir string) models.ExtractionResult {
	ext := strings.ToLower(filepath.Ext(path))
	filename := filepath.Base(path)

	var result models.ExtractionResult
	switch {
	case ext == ".pdf":
		result = wrapExtraction(path, preparePDF)
	case imageExtensions[ext]:
		result = wrapExtraction(path, prepareImage)
	case ext == ".docx":
		result = wrapExtraction(path, extractDocx)
	case ext == ".xlsx":
		result = wrapExtraction(path, extractXlsx)
	case ext == ".txt":
		result = wrapExtraction(path, extractTxt)
	case ext == ".eml":
		result = wrapExtraction(path, func(p string) (models.ExtractionResult, error) {
			return unpackEmail(p, scratchDir)
		})
	default:
		log.Printf("unsupported file type %s for %s", ext, filename)
		return models.UnsupportedResult(filename, fmt.Sprintf("Unsupported file type: %s", ext))
	}

	if result.Filename == "" {
		result.Filename = filename
	}
	return result
}

// wrapExtraction calls the inner extraction operation and maps any failure
// into the error variant, so single-file faults stay contained.
func wrapExtraction(path string, fn func(string) (models.ExtractionResult, error)) models.ExtractionResult {
	filename := filepath.Base(path)
	result, err := fn(path)
	if err != nil {
		log.Printf("extraction failed for %s: %v", filename, err)
		return models.ErrorResult(filename, err.Error())
	}
	return result
}

// preparePDF validates that the PDF opens correctly and hands the file back
// as opaque content for the remote model. No local text extraction happens.
func preparePDF(path string) (models.ExtractionResult, error) {
	if _, err := os.Stat(path); err != nil {
		return models.ExtractionResult{}, fmt.Errorf("file not found: %s", filepath.Base(path))
	}
	if err := api.ValidateFile(path, model.NewDefaultConfiguration()); err != nil {
		return models.ExtractionResult{}, fmt.Errorf("invalid PDF file: %w", err)
	}
	return models.VisionResult(filepath.Base(path), path, "application/pdf"), nil
}

// prepareImage validates that the image decodes structurally and resolves its
// MIME type: extension first, content sniff second, octet-stream last. The
// octet-stream fallback is a known soft edge; the remote service may reject it.
func prepareImage(path string) (models.ExtractionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("file not found: %s", filepath.Base(path))
	}
	_, _, err = image.DecodeConfig(f)
	f.Close()
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("cannot identify image file: %w", err)
	}

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(path)))
	if !strings.HasPrefix(mimeType, "image/") {
		if detected, derr := mimetype.DetectFile(path); derr == nil && strings.HasPrefix(detected.String(), "image/") {
			mimeType = detected.String()
		} else {
			log.Printf("could not determine an image MIME type for %s, defaulting to application/octet-stream", filepath.Base(path))
			mimeType = "application/octet-stream"
		}
	}
	return models.VisionResult(filepath.Base(path), path, mimeType), nil
}

// extractDocx concatenates every paragraph's text with newline separators.
func extractDocx(path string) (models.ExtractionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("file not found: %s", filepath.Base(path))
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return models.ExtractionResult{}, err
	}
	doc, err := docx.Parse(f, info.Size())
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("invalid DOCX file: %w", err)
	}

	var paragraphs []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			paragraphs = append(paragraphs, p.String())
		}
	}
	return models.TextResult(filepath.Base(path), strings.Join(paragraphs, "\n")), nil
}

// extractXlsx renders every sheet as a marker line followed by one
// comma-joined line per row, in workbook order. Empty cells come out as
// empty strings.
func extractXlsx(path string) (models.ExtractionResult, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("invalid Excel file: %w", err)
	}
	defer wb.Close()

	var sb strings.Builder
	for _, sheet := range wb.GetSheetList() {
		sb.WriteString(fmt.Sprintf("--- Sheet: %s ---\n", sheet))
		rows, err := wb.GetRows(sheet)
		if err != nil {
			return models.ExtractionResult{}, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		for _, row := range rows {
			sb.WriteString(strings.Join(row, ","))
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return models.TextResult(filepath.Base(path), sb.String()), nil
}

// extractTxt reads the whole file as UTF-8 text. Files in other encodings
// are rejected rather than admitted with mangled bytes.
func extractTxt(path string) (models.ExtractionResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("file not found: %s", filepath.Base(path))
	}
	if !utf8.Valid(content) {
		return models.ExtractionResult{}, fmt.Errorf("file is not valid UTF-8 text")
	}
	return models.TextResult(filepath.Base(path), string(content)), nil
}
