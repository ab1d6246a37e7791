package textrepair

import (
	"regexp"
	"strings"
)

var (
	// Zero-for-O inside the LOT token itself.
	lotWord = regexp.MustCompile(`\bL[0O]TE?\b`)

	// Separator between the LOT prefix and its digits.
	lotSep = regexp.MustCompile(`\b(LOTE?)[\s.]+(\d)`)

	// Date separators between digit groups.
	dateSep = regexp.MustCompile(`(\d)\s*[.\-]\s*(\d)`)

	// A letter run glued to a digit run by stray whitespace.
	letterDigitGap = regexp.MustCompile(`\b([A-Z]{2,})\s+(\d)`)
)

// repairFormats applies regex-level fixes for the closed set of label idioms.
func repairFormats(text string) string {
	// L0T / L0TE with a zero where the O belongs.
	text = lotWord.ReplaceAllStringFunc(text, func(m string) string {
		if strings.HasSuffix(m, "E") {
			return "LOTE"
		}
		return "LOT"
	})

	// Normalize the gap between a LOT prefix and its digits to one space.
	text = lotSep.ReplaceAllString(text, "$1 $2")

	// Digit groups separated by '.' or '-' are date fields; use '/'.
	// Two passes so adjacent separators ("25.12.2025") are both caught.
	text = dateSep.ReplaceAllString(text, "$1/$2")
	text = dateSep.ReplaceAllString(text, "$1/$2")

	// "AB 123" is usually one code split by OCR. LOT prefixes keep their
	// space; the previous fix already normalized them.
	text = letterDigitGap.ReplaceAllStringFunc(text, func(m string) string {
		parts := letterDigitGap.FindStringSubmatch(m)
		if parts[1] == "LOT" || parts[1] == "LOTE" {
			return m
		}
		return parts[1] + parts[2]
	})

	return text
}

// Known label grammars, checked in order by ValidateFormat.
var knownFormats = []struct {
	name    string
	pattern *regexp.Regexp
}{
	{"lot_code", regexp.MustCompile(`LOT[EO]?\d+`)},
	{"date", regexp.MustCompile(`\d{1,2}/\d{1,2}/\d{2,4}`)},
	{"alphanumeric_code", regexp.MustCompile(`[A-Z]{2,}\d+`)},
}

// ValidateFormat returns the name of the first label grammar the text
// matches, or the empty string when none do.
func (r *Repairer) ValidateFormat(text string) string {
	for _, f := range knownFormats {
		if f.pattern.MatchString(text) {
			return f.name
		}
	}
	return ""
}
