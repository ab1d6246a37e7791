package textrepair

import (
	"strings"
	"unicode"
)

// strangeAllowed are the non-alphanumeric characters that occur legitimately
// on labels; anything else counts against the text.
const strangeAllowed = " /-.,:"

// ConfidenceScore estimates how label-like a piece of text is, in [0,1].
// It is independent of the recognizer's own confidence and feeds the
// reranker's contextual signal.
func (r *Repairer) ConfidenceScore(text string) float64 {
	score := 0.5

	if r.ValidateFormat(text) != "" {
		score += 0.3
	}

	// Up to +0.2 for the fraction of words found in the vocabulary.
	words := strings.Fields(text)
	if len(words) > 0 && len(r.vocab) > 0 {
		known := 0
		for _, w := range words {
			for _, v := range r.vocab {
				if strings.EqualFold(w, v) {
					known++
					break
				}
			}
		}
		score += 0.2 * float64(known) / float64(len(words))
	}

	// Up to -0.3 for characters that don't belong on a label.
	strange := 0
	for _, c := range text {
		if unicode.IsLetter(c) || unicode.IsDigit(c) {
			continue
		}
		if strings.ContainsRune(strangeAllowed, c) {
			continue
		}
		strange++
	}
	penalty := 0.05 * float64(strange)
	if penalty > 0.3 {
		penalty = 0.3
	}
	score -= penalty

	stripped := strings.TrimSpace(text)
	if len(stripped) < 3 {
		score -= 0.2
	}
	if len(text) > 100 {
		score -= 0.1
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
