package docgen

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportgen/internal/config"
)

func testSettings() *config.Settings {
	return &config.Settings{
		DocxFontName:       "Times New Roman",
		DocxFontSizeNormal: 11,
		DocxFontSizeHead:   12,
		DocxFooterTemplate: "Salomone & Associati S.r.l. - Pag. {page_number} di {total_pages}",
	}
}

func buildAndUnzip(t *testing.T, text string) map[string]string {
	t.Helper()
	data, err := NewFormatter(testSettings()).Build(text)
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)

	parts := make(map[string]string)
	for _, file := range reader.File {
		rc, err := file.Open()
		require.NoError(t, err)
		content, err := io.ReadAll(rc)
		rc.Close()
		require.NoError(t, err)
		parts[file.Name] = string(content)
	}
	return parts
}

func TestBuildPackageStructure(t *testing.T) {
	parts := buildAndUnzip(t, "Testo del report.")

	for _, name := range []string{
		"[Content_Types].xml",
		"_rels/.rels",
		"word/document.xml",
		"word/styles.xml",
		"word/footer1.xml",
		"word/_rels/document.xml.rels",
	} {
		assert.Contains(t, parts, name)
	}
	assert.Contains(t, parts["word/document.xml"], `<w:footerReference w:type="default" r:id="rId2"/>`)
}

func TestBuildHeadingIsBold(t *testing.T) {
	parts := buildAndUnzip(t, "1 – DATI GENERALI\nIl sinistro è avvenuto a Milano.")
	doc := parts["word/document.xml"]

	headingIdx := strings.Index(doc, "1 – DATI GENERALI")
	require.GreaterOrEqual(t, headingIdx, 0)
	runStart := strings.LastIndex(doc[:headingIdx], "<w:r>")
	assert.Contains(t, doc[runStart:headingIdx], "<w:b/>")

	bodyIdx := strings.Index(doc, "Il sinistro è avvenuto a Milano.")
	require.GreaterOrEqual(t, bodyIdx, 0)
	bodyRunStart := strings.LastIndex(doc[:bodyIdx], "<w:r>")
	assert.NotContains(t, doc[bodyRunStart:bodyIdx], "<w:b/>")
}

func TestBuildListItemIsIndented(t *testing.T) {
	parts := buildAndUnzip(t, "- prima voce di danno")
	doc := parts["word/document.xml"]

	itemIdx := strings.Index(doc, "- prima voce di danno")
	require.GreaterOrEqual(t, itemIdx, 0)
	paraStart := strings.LastIndex(doc[:itemIdx], "<w:p>")
	assert.Contains(t, doc[paraStart:itemIdx], `<w:ind w:left="360"/>`)
}

func TestBuildCollapsesBlankRuns(t *testing.T) {
	parts := buildAndUnzip(t, "Primo paragrafo.\n\n\n\nSecondo paragrafo.")
	doc := parts["word/document.xml"]

	first := strings.Index(doc, "Primo paragrafo.")
	second := strings.Index(doc, "Secondo paragrafo.")
	require.Greater(t, second, first)
	between := doc[first:second]
	assert.Equal(t, 1, strings.Count(between, "<w:p/>"))
}

func TestBuildAppendsClosingSentence(t *testing.T) {
	parts := buildAndUnzip(t, "Corpo della perizia.")
	doc := parts["word/document.xml"]
	assert.Contains(t, doc, escapeXML(ClosingSentence))

	// The closing sentence follows the body directly, with no blank
	// paragraph in between.
	bodyIdx := strings.Index(doc, "Corpo della perizia.")
	closingIdx := strings.Index(doc, escapeXML(ClosingSentence))
	require.Greater(t, closingIdx, bodyIdx)
	assert.NotContains(t, doc[bodyIdx:closingIdx], "<w:p/>")
}

func TestFooterCarriesPageFields(t *testing.T) {
	parts := buildAndUnzip(t, "Testo.")
	footer := parts["word/footer1.xml"]

	assert.Contains(t, footer, "Salomone &amp; Associati S.r.l. - Pag. ")
	assert.Contains(t, footer, `<w:instrText xml:space="preserve"> PAGE </w:instrText>`)
	assert.Contains(t, footer, `<w:instrText xml:space="preserve"> NUMPAGES </w:instrText>`)
	assert.Contains(t, footer, `<w:jc w:val="center"/>`)
	pageIdx := strings.Index(footer, "PAGE")
	numIdx := strings.Index(footer, "NUMPAGES")
	assert.Less(t, pageIdx, numIdx)
}

func TestFilename(t *testing.T) {
	at := time.Date(2024, 3, 12, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "Insurance_Report_20240312_150405.docx", Filename(at))
}
