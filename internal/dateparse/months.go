package dateparse

import "strings"

// monthAbbrevs maps Portuguese and English three-letter abbreviations to
// month numbers. Both languages show up on the same labels.
var monthAbbrevs = map[string]int{
	"JAN": 1, "FEV": 2, "MAR": 3, "ABR": 4, "MAI": 5, "JUN": 6,
	"JUL": 7, "AGO": 8, "SET": 9, "OUT": 10, "NOV": 11, "DEZ": 12,
	"FEB": 2, "APR": 4, "MAY": 5, "AUG": 8, "SEP": 9, "OCT": 10, "DEC": 12,
}

// monthNames maps full month names, Portuguese and English.
var monthNames = map[string]int{
	"JANEIRO": 1, "FEVEREIRO": 2, "MARCO": 3, "MARÇO": 3, "ABRIL": 4,
	"MAIO": 5, "JUNHO": 6, "JULHO": 7, "AGOSTO": 8, "SETEMBRO": 9,
	"OUTUBRO": 10, "NOVEMBRO": 11, "DEZEMBRO": 12,
	"JANUARY": 1, "FEBRUARY": 2, "MARCH": 3, "APRIL": 4,
	"JUNE": 6, "JULY": 7, "AUGUST": 8, "SEPTEMBER": 9,
	"OCTOBER": 10, "NOVEMBER": 11, "DECEMBER": 12,
}

// monthCorrections fixes month tokens the OCR reliably mangles in ways the
// digit remap and fuzzy matching don't cover.
var monthCorrections = map[string]string{
	"MARC": "MAR",
	"MRC":  "MAR",
	"JANV": "JAN",
	"AGU":  "AGO",
	"STT":  "SET",
}

// monthDigitFix undoes digit substitutions inside month tokens; the
// preprocessing digit table is tuned for numbers and overshoots on letters.
var monthDigitFix = strings.NewReplacer(
	"0", "O", "1", "I", "5", "S", "8", "B", "6", "G", "2", "Z",
)

// minMonthSimilarity is the LCS-ratio floor for fuzzy month matching.
const minMonthSimilarity = 0.7

// resolveMonth converts a month token to its number. Resolution order:
// direct abbreviation/name lookup, hand-coded OCR corrections, then fuzzy
// matching against known abbreviations. Returns 0 when unresolved.
func resolveMonth(token string) int {
	token = strings.ToUpper(strings.TrimSpace(token))
	if token == "" {
		return 0
	}
	fixed := monthDigitFix.Replace(token)

	for _, t := range []string{token, fixed} {
		if m, ok := monthAbbrevs[t]; ok {
			return m
		}
		if m, ok := monthNames[t]; ok {
			return m
		}
		if corrected, ok := monthCorrections[t]; ok {
			return monthAbbrevs[corrected]
		}
	}

	// Fuzzy fallback over abbreviations only; full names are long enough
	// that a partial read still matches an abbreviation.
	best := 0
	bestRatio := minMonthSimilarity
	for abbrev, m := range monthAbbrevs {
		if ratio := lcsRatio(fixed, abbrev); ratio > bestRatio {
			bestRatio = ratio
			best = m
		}
	}
	return best
}

// lcsRatio is a longest-common-subsequence similarity in [0,1]:
// 2*LCS / (len(a)+len(b)).
func lcsRatio(a, b string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return 2 * float64(prev[len(b)]) / float64(len(a)+len(b))
}
