package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportgen/internal/models"
)

func writeTestEmail(t *testing.T, dir, name string, build func(b enmime.MailBuilder) enmime.MailBuilder) string {
	t.Helper()
	b := enmime.Builder().
		From("Mario Rossi", "rossi@example.com").
		To("Perito", "perito@example.com").
		Subject("Denuncia sinistro")
	b = build(b)
	part, err := b.Build()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, part.Encode(&buf))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestProcessEmailBodyAndAttachments(t *testing.T) {
	dir := t.TempDir()
	pdfPath := writeTestPDF(t, dir, "fixture.pdf")
	pdfBytes, err := os.ReadFile(pdfPath)
	require.NoError(t, err)

	path := writeTestEmail(t, dir, "denuncia.eml", func(b enmime.MailBuilder) enmime.MailBuilder {
		return b.
			Text([]byte("In allegato la documentazione del sinistro.")).
			AddAttachment(pdfBytes, "application/pdf", "verbale.pdf").
			AddAttachment([]byte("zipped"), "application/zip", "archivio.zip")
	})

	res := Process(path, dir)
	require.Equal(t, models.TypeEmail, res.Type)
	assert.Equal(t, "denuncia.eml", res.Filename)
	assert.Equal(t, "In allegato la documentazione del sinistro.", res.Content)

	// The zip attachment is filtered out before processing.
	require.Len(t, res.Attachments, 1)
	att := res.Attachments[0]
	assert.Equal(t, models.TypeVision, att.Type)
	assert.Equal(t, "verbale.pdf", att.Filename)
	assert.Equal(t, "application/pdf", att.MimeType)
	assert.FileExists(t, att.Path)
}

func TestProcessEmailZipOnlyAttachmentYieldsBodyOnly(t *testing.T) {
	dir := t.TempDir()
	path := writeTestEmail(t, dir, "solo_zip.eml", func(b enmime.MailBuilder) enmime.MailBuilder {
		return b.
			Text([]byte("Vi giro l'archivio completo.")).
			AddAttachment([]byte("zipped"), "application/zip", "archivio.zip")
	})

	res := Process(path, dir)
	require.Equal(t, models.TypeEmail, res.Type)
	assert.Equal(t, "Vi giro l'archivio completo.", res.Content)
	assert.Empty(t, res.Attachments)
}

func TestProcessEmailHTMLBodyFallback(t *testing.T) {
	dir := t.TempDir()
	path := writeTestEmail(t, dir, "html.eml", func(b enmime.MailBuilder) enmime.MailBuilder {
		return b.HTML([]byte("<p>Segnalo un <strong>danno</strong> al tetto.</p>"))
	})

	res := Process(path, dir)
	require.Equal(t, models.TypeEmail, res.Type)
	assert.Contains(t, res.Content, "danno")
	assert.NotContains(t, res.Content, "<strong>")
}

func TestProcessEmailCorruptAttachmentContained(t *testing.T) {
	dir := t.TempDir()
	path := writeTestEmail(t, dir, "rotto.eml", func(b enmime.MailBuilder) enmime.MailBuilder {
		return b.
			Text([]byte("Allego le foto.")).
			AddAttachment([]byte("not a real image"), "image/jpeg", "foto.jpg")
	})

	res := Process(path, dir)
	require.Equal(t, models.TypeEmail, res.Type)
	require.Len(t, res.Attachments, 1)
	assert.Equal(t, models.TypeError, res.Attachments[0].Type)
}

func TestSanitizeAttachmentName(t *testing.T) {
	assert.Equal(t, "bad_name_.pdf", sanitizeAttachmentName("bad name!!.pdf", "application/pdf"))
	assert.Equal(t, "foto.jpg", sanitizeAttachmentName("foto.jpg", "image/jpeg"))
	got := sanitizeAttachmentName("???", "application/pdf")
	assert.Contains(t, got, "attachment")
}

func TestUniquePathAddsSuffix(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "doc.pdf", []byte("x"))

	assert.Equal(t, filepath.Join(dir, "doc_1.pdf"), uniquePath(dir, "doc.pdf"))
}
