// Package dateparse extracts calendar dates from corrected label text.
//
// Several independent strategies run over the cleaned text, each yielding
// candidates at a strategy-fixed confidence. Candidates are deduplicated by
// calendar date keeping the highest confidence, then ranked.
package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
)

// Strategy identifies which extraction strategy produced a candidate.
type Strategy string

const (
	StrategyAbbrevMonth Strategy = "abbrev_month"
	StrategyNumeric     Strategy = "numeric"
	StrategyTextual     Strategy = "textual"
	StrategyAggressive  Strategy = "aggressive"
	StrategyFallback    Strategy = "fallback"
)

// Strategy-fixed confidences.
const (
	confAbbrevMonth = 0.95
	confNumeric     = 0.85
	confTextual     = 0.90
	confAggressive  = 0.75
	confFallback    = 0.65
)

// Candidate is one possible reading of a date from the text.
type Candidate struct {
	Date       time.Time
	Confidence float64
	Strategy   Strategy
}

// Parser extracts dates from free-form label text.
// A configured Parser is stateless and safe for concurrent use.
type Parser struct {
	cfg config.DateParserConfig
}

// New creates a Parser with the given configuration.
func New(cfg config.DateParserConfig) *Parser {
	if cfg.MinYear == 0 {
		cfg.MinYear = 2000
	}
	if cfg.MaxYear == 0 {
		cfg.MaxYear = 2040
	}
	return &Parser{cfg: cfg}
}

// Parse returns the best date found in the text with its confidence, or
// ok=false when nothing survives validation.
func (p *Parser) Parse(text string) (date time.Time, confidence float64, ok bool) {
	candidates := p.Candidates(text)
	if len(candidates) == 0 {
		return time.Time{}, 0, false
	}
	best := candidates[0]
	return best.Date, best.Confidence, true
}

// Candidates returns all surviving candidates, deduplicated by calendar date
// (keeping the highest confidence per date) and sorted by confidence
// descending. The sort is stable over the strategy priority order, so equal
// confidences keep their strategy precedence.
func (p *Parser) Candidates(text string) []Candidate {
	cleaned := preprocess(text)

	var all []Candidate
	all = append(all, p.extractAbbrevMonth(cleaned)...)
	all = append(all, p.extractNumeric(cleaned)...)
	all = append(all, p.extractTextual(cleaned)...)
	all = append(all, p.extractAggressive(cleaned)...)
	if len(all) == 0 {
		all = append(all, p.extractFallback(cleaned)...)
	}

	return dedupAndRank(all)
}

// ---------------------------------------------------------------------------
// Preprocessing

// ocrDigits resolves letter-for-digit confusions common around date digits.
// Month tokens are re-corrected later by resolveMonth's inverse remap.
var ocrDigits = strings.NewReplacer(
	"O", "0", "o", "0", "Q", "0", "Ø", "0", "º", "0",
	"I", "1", "l", "1", "|", "1", "!", "1",
)

var (
	separatorRuns  = regexp.MustCompile(`([/\-._,])\1+`)
	whitespaceRuns = regexp.MustCompile(`\s+`)
	yearSlip       = regexp.MustCompile(`\b2[45](\d{2})\b`)
	dateLikeToken  = regexp.MustCompile(`\d{1,2}[/\-. ]\d{1,2}[/\-. ]\d{2,4}|\d{1,2}[A-Z0-9]{3}\d{2}|\d{6,8}`)
)

// preprocess cleans raw text ahead of the extraction strategies.
func preprocess(text string) string {
	text = strings.ToUpper(strings.TrimSpace(text))
	text = ocrDigits.Replace(text)
	text = separatorRuns.ReplaceAllString(text, "$1")
	text = whitespaceRuns.ReplaceAllString(text, " ")

	// Two-digit year OCR slips: a 25xx/24xx 4-digit token is a misread 20xx.
	text = yearSlip.ReplaceAllString(text, "20$1")

	// Trailing noise after the last date-like token is never useful.
	if locs := dateLikeToken.FindAllStringIndex(text, -1); len(locs) > 0 {
		text = text[:locs[len(locs)-1][1]]
	}
	return text
}

// ---------------------------------------------------------------------------
// Strategies

// The month group admits digits so tokens like "0CT" (misread OCT) still
// reach resolveMonth, which rejects anything that isn't a real month.
var abbrevMonthPattern = regexp.MustCompile(`\b(\d{1,2})?([A-Z0-9]{3})(\d{2})\b`)

// extractAbbrevMonth reads compact DD?MMMYY tokens like "01MAR26".
func (p *Parser) extractAbbrevMonth(text string) []Candidate {
	var out []Candidate
	for _, m := range abbrevMonthPattern.FindAllStringSubmatch(text, -1) {
		month := resolveMonth(m[2])
		if month == 0 {
			continue
		}
		day := 1
		if m[1] != "" {
			day, _ = strconv.Atoi(m[1])
		}
		year := expandYear(atoi(m[3]))
		out = p.appendValid(out, year, month, day, confAbbrevMonth, StrategyAbbrevMonth)
	}
	return out
}

var (
	numericDMY  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{2,4})\b`)
	numericYMD  = regexp.MustCompile(`\b(\d{4})/(\d{1,2})/(\d{1,2})\b`)
	numericMY   = regexp.MustCompile(`\b(\d{1,2})/(\d{4})\b`)
	numericBare = regexp.MustCompile(`\b(\d{6}|\d{8})\b`)
)

// extractNumeric reads slash-separated and bare digit-run dates.
func (p *Parser) extractNumeric(text string) []Candidate {
	var out []Candidate

	for _, m := range numericDMY.FindAllStringSubmatch(text, -1) {
		year := atoi(m[3])
		if len(m[3]) <= 2 {
			year = expandYear(year)
		}
		out = p.appendValid(out, year, atoi(m[2]), atoi(m[1]), confNumeric, StrategyNumeric)
	}
	for _, m := range numericYMD.FindAllStringSubmatch(text, -1) {
		out = p.appendValid(out, atoi(m[1]), atoi(m[2]), atoi(m[3]), confNumeric, StrategyNumeric)
	}
	for _, m := range numericMY.FindAllStringSubmatch(text, -1) {
		out = p.appendValid(out, atoi(m[2]), atoi(m[1]), 1, confNumeric, StrategyNumeric)
	}
	for _, m := range numericBare.FindAllStringSubmatch(text, -1) {
		digits := m[1]
		day := atoi(digits[0:2])
		month := atoi(digits[2:4])
		year := atoi(digits[4:])
		if len(digits) == 6 {
			year = expandYear(year)
		}
		out = p.appendValid(out, year, month, day, confNumeric, StrategyNumeric)
	}
	return out
}

var textualPattern = regexp.MustCompile(`\b(\d{1,2})\s*(?:DE\s+)?([A-ZÇ0-9]{3,9})\.?,?\s*(?:DE\s+)?(\d{2,4})\b`)

// extractTextual reads spelled-out months, Portuguese or English, with the
// "de" connective ("12 de marco de 2026").
func (p *Parser) extractTextual(text string) []Candidate {
	var out []Candidate
	for _, m := range textualPattern.FindAllStringSubmatch(text, -1) {
		month := resolveMonth(m[2])
		if month == 0 {
			continue
		}
		year := atoi(m[3])
		if len(m[3]) <= 2 {
			year = expandYear(year)
		}
		out = p.appendValid(out, year, month, atoi(m[1]), confTextual, StrategyTextual)
	}
	return out
}

var (
	aggressiveDMY = regexp.MustCompile(`\b(\d{1,2})[^A-Z0-9\s]?([A-Z0-9]{3})[^A-Z0-9\s]?(\d{2})\b`)
	aggressiveMDY = regexp.MustCompile(`\b([A-Z][A-Z0-9]{2})[^A-Z0-9\s]?(\d{1,2})[^A-Z0-9\s]?(\d{2})\b`)
)

// extractAggressive tolerates arbitrary single-character separators around an
// abbreviated month, trying both DD-MMM-YY and MMM-DD-YY orderings.
func (p *Parser) extractAggressive(text string) []Candidate {
	var out []Candidate
	for _, m := range aggressiveDMY.FindAllStringSubmatch(text, -1) {
		if month := resolveMonth(m[2]); month != 0 {
			out = p.appendValid(out, expandYear(atoi(m[3])), month, atoi(m[1]), confAggressive, StrategyAggressive)
		}
	}
	for _, m := range aggressiveMDY.FindAllStringSubmatch(text, -1) {
		if month := resolveMonth(m[1]); month != 0 {
			out = p.appendValid(out, expandYear(atoi(m[3])), month, atoi(m[2]), confAggressive, StrategyAggressive)
		}
	}
	return out
}

var fallbackPattern = regexp.MustCompile(`(\d{1,2}) ([A-Z]{3}) (\d{2})`)

// extractFallback is a last-ditch "DD MMM YY" scan, used only when every
// other strategy came up empty.
func (p *Parser) extractFallback(text string) []Candidate {
	var out []Candidate
	for _, m := range fallbackPattern.FindAllStringSubmatch(text, -1) {
		if month := resolveMonth(m[2]); month != 0 {
			out = p.appendValid(out, expandYear(atoi(m[3])), month, atoi(m[1]), confFallback, StrategyFallback)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Validation and ranking

// appendValid appends a candidate when it forms a real calendar date within
// the configured year bounds.
func (p *Parser) appendValid(out []Candidate, year, month, day int, conf float64, strategy Strategy) []Candidate {
	if year < p.cfg.MinYear || year > p.cfg.MaxYear {
		return out
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return out
	}
	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	// time.Date normalizes overflow (Feb 30 -> Mar 2); reject those.
	if date.Year() != year || date.Month() != time.Month(month) || date.Day() != day {
		return out
	}
	return append(out, Candidate{Date: date, Confidence: conf, Strategy: strategy})
}

// dedupAndRank keeps the highest confidence per distinct date and sorts by
// confidence descending, stably, to preserve strategy precedence.
func dedupAndRank(candidates []Candidate) []Candidate {
	best := make(map[time.Time]int, len(candidates))
	var unique []Candidate
	for _, c := range candidates {
		if idx, seen := best[c.Date]; seen {
			if c.Confidence > unique[idx].Confidence {
				unique[idx] = c
			}
			continue
		}
		best[c.Date] = len(unique)
		unique = append(unique, c)
	}

	// Insertion-order stable sort by descending confidence.
	for i := 1; i < len(unique); i++ {
		for j := i; j > 0 && unique[j].Confidence > unique[j-1].Confidence; j-- {
			unique[j], unique[j-1] = unique[j-1], unique[j]
		}
	}
	return unique
}

// expandYear widens a two-digit year: 00-30 map to 2000s, the rest to 1900s.
func expandYear(yy int) int {
	if yy >= 100 {
		return yy
	}
	if yy <= 30 {
		return 2000 + yy
	}
	return 1900 + yy
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}
