// Package docgen renders generated report text into a styled Word document.
package docgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"strings"
	"time"

	"reportgen/internal/config"
)

// MIMEType is the content type of the produced .docx file.
const MIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// ClosingSentence is appended after the generated body on every report.
const ClosingSentence = "Restando comunque a disposizione per ulteriori chiarimenti che potessero necessitare cogliamo l'occasione per porgere distinti saluti. Salomone & Associati S.r.l."

// Formatter turns plain report text into a .docx package.
type Formatter struct {
	cfg *config.Settings
}

func NewFormatter(cfg *config.Settings) *Formatter {
	return &Formatter{cfg: cfg}
}

// Filename returns the download name for a report generated at t.
func Filename(t time.Time) string {
	return "Insurance_Report_" + t.Format("20060102_150405") + ".docx"
}

type block struct {
	kind LineKind
	text string
}

// Build renders the report text as a complete OOXML document package.
func (f *Formatter) Build(text string) ([]byte, error) {
	blocks := f.layout(text)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", f.stylesXML()},
		{"word/footer1.xml", f.footerXML()},
		{"word/document.xml", f.documentXML(blocks)},
	}
	for _, p := range parts {
		w, err := zw.Create(p.name)
		if err != nil {
			return nil, fmt.Errorf("docgen: create %s: %w", p.name, err)
		}
		if _, err := w.Write([]byte(p.data)); err != nil {
			return nil, fmt.Errorf("docgen: write %s: %w", p.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("docgen: close package: %w", err)
	}
	return buf.Bytes(), nil
}

// layout classifies every source line and collapses runs of blank lines into
// a single separator. Two leading spacer paragraphs leave room for the
// letterhead, and the fixed closing sentence lands at the end.
func (f *Formatter) layout(text string) []block {
	blocks := []block{{kind: KindBlank}, {kind: KindBlank}}
	prevBlank := true
	for _, line := range strings.Split(text, "\n") {
		kind := Classify(line)
		if kind == KindBlank {
			if !prevBlank {
				blocks = append(blocks, block{kind: KindBlank})
			}
			prevBlank = true
			continue
		}
		prevBlank = false
		blocks = append(blocks, block{kind: kind, text: strings.TrimSpace(line)})
	}
	blocks = append(blocks, block{kind: KindParagraph, text: ClosingSentence})
	return blocks
}

func (f *Formatter) documentXML(blocks []block) string {
	var b strings.Builder
	b.WriteString(xmlHeader)
	b.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships"><w:body>`)
	for _, bl := range blocks {
		b.WriteString(f.paragraphXML(bl))
	}
	b.WriteString(`<w:sectPr><w:footerReference w:type="default" r:id="rId2"/><w:pgSz w:w="11906" w:h="16838"/><w:pgMar w:top="1417" w:right="1134" w:bottom="1417" w:left="1134" w:header="708" w:footer="708" w:gutter="0"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

func (f *Formatter) paragraphXML(bl block) string {
	switch bl.kind {
	case KindBlank:
		return `<w:p/>`
	case KindHeading:
		sz := f.cfg.DocxFontSizeHead * 2
		return fmt.Sprintf(
			`<w:p><w:pPr><w:spacing w:before="120" w:after="120"/></w:pPr><w:r><w:rPr><w:b/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
			sz, sz, escapeXML(bl.text))
	case KindListItem:
		return fmt.Sprintf(
			`<w:p><w:pPr><w:ind w:left="360"/></w:pPr><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
			escapeXML(bl.text))
	default:
		return fmt.Sprintf(
			`<w:p><w:r><w:t xml:space="preserve">%s</w:t></w:r></w:p>`,
			escapeXML(bl.text))
	}
}

// stylesXML defines the Normal style: configured font and body size with
// 1.5 line spacing.
func (f *Formatter) stylesXML() string {
	return fmt.Sprintf(xmlHeader+
		`<w:styles xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`+
		`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/>`+
		`<w:pPr><w:spacing w:line="360" w:lineRule="auto"/></w:pPr>`+
		`<w:rPr><w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s"/><w:sz w:val="%[2]d"/><w:szCs w:val="%[2]d"/></w:rPr>`+
		`</w:style></w:styles>`,
		escapeXML(f.cfg.DocxFontName), f.cfg.DocxFontSizeNormal*2)
}

// footerXML renders the configured footer template as a centered paragraph,
// substituting live PAGE and NUMPAGES fields for the placeholders.
func (f *Formatter) footerXML() string {
	var runs strings.Builder
	rest := f.cfg.DocxFooterTemplate
	for rest != "" {
		pageIdx := strings.Index(rest, "{page_number}")
		totalIdx := strings.Index(rest, "{total_pages}")
		switch {
		case pageIdx >= 0 && (totalIdx < 0 || pageIdx < totalIdx):
			runs.WriteString(f.footerTextRun(rest[:pageIdx]))
			runs.WriteString(f.fieldRuns("PAGE"))
			rest = rest[pageIdx+len("{page_number}"):]
		case totalIdx >= 0:
			runs.WriteString(f.footerTextRun(rest[:totalIdx]))
			runs.WriteString(f.fieldRuns("NUMPAGES"))
			rest = rest[totalIdx+len("{total_pages}"):]
		default:
			runs.WriteString(f.footerTextRun(rest))
			rest = ""
		}
	}
	return xmlHeader +
		`<w:ftr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">` +
		`<w:p><w:pPr><w:jc w:val="center"/></w:pPr>` + runs.String() + `</w:p></w:ftr>`
}

func (f *Formatter) footerTextRun(text string) string {
	if text == "" {
		return ""
	}
	return fmt.Sprintf(`<w:r>%s<w:t xml:space="preserve">%s</w:t></w:r>`,
		f.footerRunProps(), escapeXML(text))
}

// fieldRuns emits the begin/instruction/end run triple of a simple field.
func (f *Formatter) fieldRuns(instruction string) string {
	props := f.footerRunProps()
	return fmt.Sprintf(
		`<w:r>%[1]s<w:fldChar w:fldCharType="begin"/></w:r>`+
			`<w:r>%[1]s<w:instrText xml:space="preserve"> %[2]s </w:instrText></w:r>`+
			`<w:r>%[1]s<w:fldChar w:fldCharType="end"/></w:r>`,
		props, instruction)
}

// footerFontSizePT is the point size of the page footer text.
const footerFontSizePT = 9

func (f *Formatter) footerRunProps() string {
	return fmt.Sprintf(`<w:rPr><w:sz w:val="%[1]d"/><w:szCs w:val="%[1]d"/></w:rPr>`, footerFontSizePT*2)
}

func escapeXML(s string) string {
	return xmlReplacer.Replace(s)
}

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

const xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

const contentTypesXML = xmlHeader + `<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>` +
	`</Types>`

const packageRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = xmlHeader + `<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/footer" Target="footer1.xml"/>` +
	`</Relationships>`
