// Package textrepair cleans up raw recognizer output using the known
// structure of lot code and date labels.
package textrepair

import (
	"regexp"
	"strings"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
)

// Repairer applies contextual postprocessing to recognizer text.
// A configured Repairer is stateless and safe for concurrent use.
type Repairer struct {
	cfg   config.TextRepairConfig
	vocab []string
}

// New creates a Repairer with the given configuration.
func New(cfg config.TextRepairConfig) *Repairer {
	vocab := append([]string(nil), cfg.KnownWords...)
	return &Repairer{cfg: cfg, vocab: vocab}
}

var allowedSymbols = regexp.MustCompile(`[^A-Za-z0-9\s/\-.:]+`)
var whitespaceRuns = regexp.MustCompile(`\s+`)

// Process runs the full repair pipeline over raw recognizer output.
// Every step can be toggled off independently.
func (r *Repairer) Process(raw string) string {
	text := raw

	if r.cfg.Uppercase {
		text = strings.ToUpper(text)
	}
	if r.cfg.StripSymbols {
		text = allowedSymbols.ReplaceAllString(text, "")
	}
	if r.cfg.AmbiguityMapping {
		text = mapAmbiguous(text)
	}
	if r.cfg.FormatRepair {
		text = repairFormats(text)
	}
	if r.cfg.FuzzyCorrection {
		text = r.correctVocabulary(text)
	}

	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
