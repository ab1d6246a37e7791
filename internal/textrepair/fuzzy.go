package textrepair

import (
	"strings"

	"github.com/agext/levenshtein"
)

// maxNormalizedDistance rejects matches that would rewrite too much of the
// word even when the absolute edit distance is within the threshold. One
// edit in a three-letter token (L0T -> LOT) is the accepted limit.
const maxNormalizedDistance = 1.0/3.0 + 1e-9

// correctVocabulary replaces words that are a small edit away from a known
// vocabulary entry. Words shorter than 3 characters are left alone; they are
// too easy to "correct" into something unrelated.
func (r *Repairer) correctVocabulary(text string) string {
	if len(r.vocab) == 0 || r.cfg.FuzzyThreshold <= 0 {
		return text
	}

	words := strings.Fields(text)
	for i, word := range words {
		if len(word) < 3 {
			continue
		}
		if match, ok := r.closestKnownWord(word); ok {
			if r.cfg.Uppercase {
				match = strings.ToUpper(match)
			}
			words[i] = match
		}
	}
	return strings.Join(words, " ")
}

// closestKnownWord finds the vocabulary entry nearest to word, accepting it
// only within both the absolute and the normalized distance bounds.
func (r *Repairer) closestKnownWord(word string) (string, bool) {
	lower := strings.ToLower(word)

	best := ""
	bestDist := r.cfg.FuzzyThreshold + 1
	for _, known := range r.vocab {
		dist := levenshtein.Distance(lower, strings.ToLower(known), nil)
		if dist < bestDist {
			bestDist = dist
			best = known
		}
	}
	if best == "" || bestDist > r.cfg.FuzzyThreshold {
		return "", false
	}

	maxLen := len(word)
	if len(best) > maxLen {
		maxLen = len(best)
	}
	if float64(bestDist)/float64(maxLen) > maxNormalizedDistance {
		return "", false
	}
	return best, true
}
