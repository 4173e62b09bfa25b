package extract

import (
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/jhillyerd/enmime"

	"reportgen/internal/models"
)

const attachmentsSubdir = "attachments"

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// unpackEmail decodes a .eml file into a body text plus a flat list of
// processed attachments. Only PDF and image attachments are processed; the
// recursion through Process is bounded to depth one because attachments are
// never themselves emails.
func unpackEmail(path, scratchDir string) (models.ExtractionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("file not found: %s", filepath.Base(path))
	}
	defer f.Close()

	envelope, err := enmime.ReadEnvelope(f)
	if err != nil {
		return models.ExtractionResult{}, fmt.Errorf("invalid email file: %w", err)
	}

	filename := filepath.Base(path)
	body := emailBody(envelope)
	if body == "" {
		log.Printf("email %s has no readable body", filename)
	}

	result := models.ExtractionResult{
		Type:     models.TypeEmail,
		Filename: filename,
		Content:  body,
	}

	attachDir := filepath.Join(scratchDir, attachmentsSubdir)
	for _, part := range envelope.Attachments {
		contentType := strings.ToLower(part.ContentType)
		if contentType != "application/pdf" && !strings.HasPrefix(contentType, "image/") {
			log.Printf("skipping attachment %q of %s: content type %s not processed", part.FileName, filename, part.ContentType)
			continue
		}
		saved, err := saveAttachment(attachDir, part.FileName, contentType, part.Content)
		if err != nil {
			log.Printf("failed to save attachment %q of %s: %v", part.FileName, filename, err)
			continue
		}
		result.Attachments = append(result.Attachments, Process(saved, scratchDir))
	}
	return result, nil
}

// emailBody prefers the plain-text body and falls back to a text rendering
// of the HTML part.
func emailBody(envelope *enmime.Envelope) string {
	if text := strings.TrimSpace(envelope.Text); text != "" {
		return text
	}
	if envelope.HTML != "" {
		rendered, err := htmltomarkdown.ConvertString(envelope.HTML)
		if err != nil {
			log.Printf("html body rendering failed: %v", err)
			return ""
		}
		return strings.TrimSpace(rendered)
	}
	return ""
}

// saveAttachment writes the decoded payload under the attachments subdir,
// de-duplicating name collisions with an incrementing numeric suffix.
func saveAttachment(dir, name, contentType string, payload []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create attachments dir: %w", err)
	}
	safe := sanitizeAttachmentName(name, contentType)
	dest := uniquePath(dir, safe)
	if err := os.WriteFile(dest, payload, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return dest, nil
}

// sanitizeAttachmentName reduces the declared filename to a safe character
// set. When nothing safe survives, a generic name is derived from the
// content type.
func sanitizeAttachmentName(name, contentType string) string {
	safe := unsafeFilenameChars.ReplaceAllString(name, "_")
	safe = strings.Trim(safe, "._-")
	if safe == "" {
		ext := ".bin"
		if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
		safe = "attachment" + ext
	}
	return safe
}

// uniquePath finds a non-colliding destination path inside dir.
func uniquePath(dir, name string) string {
	dest := filepath.Join(dir, name)
	if _, err := os.Stat(dest); os.IsNotExist(err) {
		return dest
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	for idx := 1; ; idx++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", base, idx, ext))
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
