package rerank

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/recognize"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/textrepair"
)

func newReranker(strategy string) *Reranker {
	cfg := config.Default()
	cfg.Reranker.Strategy = strategy
	return New(cfg.Reranker, textrepair.New(cfg.TextRepair))
}

func cand(variant, text string, conf float64) Candidate {
	return Candidate{
		VariantName: variant,
		Recognition: recognize.Result{Text: text, Confidence: conf},
	}
}

func TestSelectEmpty(t *testing.T) {
	_, ok := newReranker("rerank").Select(nil)
	assert.False(t, ok)
}

func TestSelectByConfidence(t *testing.T) {
	r := newReranker("confidence")

	winner, ok := r.Select([]Candidate{
		cand("baseline", "AAA", 0.4),
		cand("clahe", "BBB", 0.7),
		cand("sharp", "CCC", 0.5),
	})
	require.True(t, ok)
	assert.Equal(t, "clahe", winner.VariantName)

	// ties keep the earliest candidate
	winner, _ = r.Select([]Candidate{
		cand("a", "AAA", 0.5),
		cand("b", "BBB", 0.5),
	})
	assert.Equal(t, "a", winner.VariantName)
}

func TestSelectByVoting(t *testing.T) {
	r := newReranker("voting")

	// the majority text wins even against a higher-confidence outlier,
	// and among the majority the highest confidence is kept
	winner, ok := r.Select([]Candidate{
		cand("baseline", "LOT 123", 0.3),
		cand("clahe", "XYZ", 0.95),
		cand("threshold", "LOT 123", 0.9),
	})
	require.True(t, ok)
	assert.Equal(t, "LOT 123", winner.Recognition.Text)
	assert.Equal(t, 0.9, winner.Recognition.Confidence)
}

func TestSelectByScore(t *testing.T) {
	r := newReranker("rerank")

	// a plausible label reading beats raw recognizer confidence
	winner, ok := r.Select([]Candidate{
		cand("baseline", "random text", 0.9),
		cand("clahe", "LOTE123", 0.6),
	})
	require.True(t, ok)
	assert.Equal(t, "LOTE123", winner.Recognition.Text)
}

func TestScorePenalties(t *testing.T) {
	r := newReranker("rerank")

	clean := r.Score(cand("a", "ABC123", 1.0))
	garbage := r.Score(cand("b", "...", 1.0))
	spacey := r.Score(cand("c", "A B C D E", 1.0))

	assert.Greater(t, clean, garbage)
	assert.Greater(t, clean, spacey)
}

func TestCombineLines(t *testing.T) {
	assert.Equal(t, recognize.Result{}, CombineLines(nil))

	got := CombineLines([]recognize.Result{
		{Text: "LOT 202522", Confidence: 0.8},
		{Text: "25/12/2025", Confidence: 0.6},
	})
	assert.Equal(t, "LOT 202522\n25/12/2025", got.Text)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
}
