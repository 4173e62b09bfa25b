package docgen

import (
	"regexp"
	"strings"
	"unicode"
)

// LineKind tags one source line of the plain-text report.
type LineKind int

const (
	KindBlank LineKind = iota
	KindHeading
	KindListItem
	KindParagraph
)

var (
	// Optional numeric prefix of a section heading: "1. ", "2 – ", "3 - ", "4) ".
	headingNumberPrefix = regexp.MustCompile(`^\d+\s*[.)\-–—]?\s*`)
	listItemPrefix      = regexp.MustCompile(`^([-*]|\d+\.)\s+`)
)

// Classify maps one source line to its rendering kind. Predicates are
// evaluated in order: blank, heading, list item, paragraph.
func Classify(line string) LineKind {
	stripped := strings.TrimSpace(line)
	switch {
	case stripped == "":
		return KindBlank
	case isHeading(stripped):
		return KindHeading
	case listItemPrefix.MatchString(stripped):
		return KindListItem
	default:
		return KindParagraph
	}
}

// isHeading recognizes the ALL-CAPS section-title shape: an optional number
// prefix, an upper-case body, an optional trailing colon — or the literal
// subject marker.
func isHeading(stripped string) bool {
	if strings.HasPrefix(stripped, "OGGETTO:") {
		return true
	}
	body := headingNumberPrefix.ReplaceAllString(stripped, "")
	body = strings.TrimSuffix(body, ":")
	runes := []rune(body)
	if len(runes) < 2 {
		return false
	}
	if !unicode.IsUpper(runes[0]) {
		return false
	}
	last := runes[len(runes)-1]
	if !unicode.IsUpper(last) && !unicode.IsDigit(last) {
		return false
	}
	for _, r := range runes {
		switch {
		case unicode.IsLower(r):
			return false
		case unicode.IsUpper(r) || unicode.IsDigit(r) || unicode.IsSpace(r):
		case strings.ContainsRune(`,()/-'.&°`, r):
		default:
			return false
		}
	}
	return true
}
