// Package rerank selects the best recognition result among the ensemble of
// photometric variants of a line.
package rerank

import (
	"strings"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/recognize"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/textrepair"
)

// Candidate is one variant's recognition outcome.
type Candidate struct {
	VariantName string
	Recognition recognize.Result
}

// Reranker picks a winner among variant candidates.
// A configured Reranker is stateless and safe for concurrent use.
type Reranker struct {
	cfg      config.RerankerConfig
	repairer *textrepair.Repairer
	signals  []signal
}

// signal is one weighted term of the composite rerank score. Keeping the
// score as a table of named terms makes each one auditable in isolation.
type signal struct {
	name   string
	weight float64
	value  func(Candidate) float64
}

// New creates a Reranker. The repairer supplies the format and contextual
// confidence signals used by the "rerank" strategy.
func New(cfg config.RerankerConfig, repairer *textrepair.Repairer) *Reranker {
	r := &Reranker{cfg: cfg, repairer: repairer}
	r.signals = []signal{
		{"confidence", 0.5, func(c Candidate) float64 {
			return c.Recognition.Confidence
		}},
		{"format_match", 0.2, func(c Candidate) float64 {
			if repairer.ValidateFormat(c.Recognition.Text) != "" {
				return 1
			}
			return 0
		}},
		{"lot_keyword", 0.15, func(c Candidate) float64 {
			upper := strings.ToUpper(c.Recognition.Text)
			if strings.Contains(upper, "LOT") || strings.Contains(upper, "LOTE") {
				return 1
			}
			return 0
		}},
		{"separators", 0.05, func(c Candidate) float64 {
			if strings.ContainsAny(c.Recognition.Text, "/-.") {
				return 1
			}
			return 0
		}},
		{"contextual", 0.2, func(c Candidate) float64 {
			return repairer.ConfidenceScore(c.Recognition.Text)
		}},
		{"too_short", -0.3, func(c Candidate) float64 {
			if len(strings.TrimSpace(c.Recognition.Text)) < 3 {
				return 1
			}
			return 0
		}},
		{"garbage_runs", -0.2, func(c Candidate) float64 {
			text := c.Recognition.Text
			for _, run := range []string{"...", "---", "|||"} {
				if strings.Contains(text, run) {
					return 1
				}
			}
			return 0
		}},
		{"space_heavy", -0.15, func(c Candidate) float64 {
			text := c.Recognition.Text
			if len(text) == 0 {
				return 0
			}
			if float64(strings.Count(text, " "))/float64(len(text)) > 1.0/3.0 {
				return 1
			}
			return 0
		}},
	}
	return r
}

// Select returns the winning candidate under the configured strategy.
// Ties always keep the earliest candidate. ok is false for empty input.
func (r *Reranker) Select(candidates []Candidate) (winner Candidate, ok bool) {
	if len(candidates) == 0 {
		return Candidate{}, false
	}
	switch r.cfg.Strategy {
	case "confidence":
		return r.selectByConfidence(candidates), true
	case "voting":
		return r.selectByVoting(candidates), true
	default: // rerank
		return r.selectByScore(candidates), true
	}
}

// Score returns the composite rerank score for a candidate.
func (r *Reranker) Score(c Candidate) float64 {
	var total float64
	for _, s := range r.signals {
		total += s.weight * s.value(c)
	}
	return total
}

func (r *Reranker) selectByConfidence(candidates []Candidate) Candidate {
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Recognition.Confidence > best.Recognition.Confidence {
			best = c
		}
	}
	return best
}

// selectByVoting majority-votes on exact text equality; among candidates
// carrying a most-frequent text, the highest confidence wins.
func (r *Reranker) selectByVoting(candidates []Candidate) Candidate {
	counts := make(map[string]int)
	for _, c := range candidates {
		counts[c.Recognition.Text]++
	}
	maxCount := 0
	for _, n := range counts {
		if n > maxCount {
			maxCount = n
		}
	}

	best := Candidate{}
	found := false
	for _, c := range candidates {
		if counts[c.Recognition.Text] != maxCount {
			continue
		}
		if !found || c.Recognition.Confidence > best.Recognition.Confidence {
			best = c
			found = true
		}
	}
	return best
}

func (r *Reranker) selectByScore(candidates []Candidate) Candidate {
	best := candidates[0]
	bestScore := r.Score(best)
	for _, c := range candidates[1:] {
		if score := r.Score(c); score > bestScore {
			best = c
			bestScore = score
		}
	}
	return best
}

// CombineLines joins per-line winners into the final crop result: texts
// newline-joined in line order, confidence the arithmetic mean. Zero lines
// yield an empty result, not an error.
func CombineLines(winners []recognize.Result) recognize.Result {
	if len(winners) == 0 {
		return recognize.Result{}
	}
	texts := make([]string, len(winners))
	var confSum float64
	for i, w := range winners {
		texts[i] = w.Text
		confSum += w.Confidence
	}
	return recognize.Result{
		Text:       strings.Join(texts, "\n"),
		Confidence: confSum / float64(len(winners)),
	}
}
