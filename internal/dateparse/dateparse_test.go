package dateparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
)

func newParser() *Parser {
	return New(config.Default().DateParser)
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestParseCompactAbbrevMonth(t *testing.T) {
	p := newParser()

	d, conf, ok := p.Parse("01MAR26")
	require.True(t, ok)
	assert.Equal(t, date(2026, 3, 1), d)
	assert.Equal(t, 0.95, conf)

	// month mangled by the digit remap still resolves
	d, conf, ok = p.Parse("01OCT26")
	require.True(t, ok)
	assert.Equal(t, date(2026, 10, 1), d)
	assert.Equal(t, 0.95, conf)
}

func TestParseNumeric(t *testing.T) {
	p := newParser()

	d, conf, ok := p.Parse("15/03/2026")
	require.True(t, ok)
	assert.Equal(t, date(2026, 3, 15), d)
	assert.Equal(t, 0.85, conf)

	// bare digit run, DDMMYY
	d, _, ok = p.Parse("251225")
	require.True(t, ok)
	assert.Equal(t, date(2025, 12, 25), d)

	// month/year only defaults the day to 1
	d, _, ok = p.Parse("03/2026")
	require.True(t, ok)
	assert.Equal(t, date(2026, 3, 1), d)
}

func TestParseTextualPortuguese(t *testing.T) {
	p := newParser()

	d, conf, ok := p.Parse("12 DE MARCO DE 2026")
	require.True(t, ok)
	assert.Equal(t, date(2026, 3, 12), d)
	assert.Equal(t, 0.90, conf)
}

func TestParseAggressiveSeparators(t *testing.T) {
	p := newParser()

	d, conf, ok := p.Parse("01-MAR-26")
	require.True(t, ok)
	assert.Equal(t, date(2026, 3, 1), d)
	assert.Equal(t, 0.75, conf)
}

func TestParseRejections(t *testing.T) {
	p := newParser()

	_, _, ok := p.Parse("garbage")
	assert.False(t, ok)

	// impossible calendar date
	_, _, ok = p.Parse("31/04/26")
	assert.False(t, ok)

	// outside the configured year bounds
	_, _, ok = p.Parse("01MAR99")
	assert.False(t, ok)
}

func TestParseYearSlip(t *testing.T) {
	p := newParser()

	d, _, ok := p.Parse("15/03/2526")
	require.True(t, ok)
	assert.Equal(t, date(2026, 3, 15), d)
}

func TestCandidatesDedupAndOrder(t *testing.T) {
	p := newParser()

	// "01MAR26" is found by several strategies; the dedup keeps one
	// candidate at the highest confidence.
	cands := p.Candidates("01MAR26")
	require.Len(t, cands, 1)
	assert.Equal(t, StrategyAbbrevMonth, cands[0].Strategy)
	assert.Equal(t, 0.95, cands[0].Confidence)

	cands = p.Candidates("01MAR26 15/04/2026")
	require.NotEmpty(t, cands)
	assert.Equal(t, date(2026, 3, 1), cands[0].Date)
	for i := 1; i < len(cands); i++ {
		assert.LessOrEqual(t, cands[i].Confidence, cands[i-1].Confidence)
	}
}

func TestPreprocess(t *testing.T) {
	got := preprocess("exp: 25//12--2025 junk")
	assert.Equal(t, "EXP: 25/12-2025", got)
}

func TestExpandYear(t *testing.T) {
	assert.Equal(t, 2026, expandYear(26))
	assert.Equal(t, 2030, expandYear(30))
	assert.Equal(t, 1931, expandYear(31))
	assert.Equal(t, 2026, expandYear(2026))
}

func TestResolveMonth(t *testing.T) {
	assert.Equal(t, 3, resolveMonth("MAR"))
	assert.Equal(t, 10, resolveMonth("0CT"))
	assert.Equal(t, 3, resolveMonth("MARC"))
	assert.Equal(t, 3, resolveMonth("MARÇO"))
	assert.Equal(t, 0, resolveMonth("XQW"))
	assert.Equal(t, 0, resolveMonth(""))
}
