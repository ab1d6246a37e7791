// Package pipeline composes segmentation, normalization, recognition,
// reranking and text repair into the label reading entry points.
package pipeline

import (
	"log"
	"strings"
	"sync"
	"time"

	"gocv.io/x/gocv"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/dateparse"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/geomnorm"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/photonorm"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/recognize"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/rerank"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/segment"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/textrepair"
)

// Extractor is the composed label reading pipeline. All stages are stateless
// after construction, so one Extractor may serve many crops concurrently
// (the recognizer adapter serializes itself if its backend requires it).
type Extractor struct {
	cfg         config.Config
	segmenter   *segment.Segmenter
	geometric   *geomnorm.Normalizer
	photometric *photonorm.Normalizer
	reranker    *rerank.Reranker
	repairer    *textrepair.Repairer
	dates       *dateparse.Parser
	recognizer  recognize.Recognizer
}

// New wires a pipeline from configuration and a recognizer backend.
func New(cfg config.Config, rec recognize.Recognizer) *Extractor {
	repairer := textrepair.New(cfg.TextRepair)
	return &Extractor{
		cfg:         cfg,
		segmenter:   segment.New(cfg.Segmenter),
		geometric:   geomnorm.New(cfg.Geometric),
		photometric: photonorm.New(cfg.Photometric),
		reranker:    rerank.New(cfg.Reranker, repairer),
		repairer:    repairer,
		dates:       dateparse.New(cfg.DateParser),
		recognizer:  rec,
	}
}

// ExtractText reads all text lines from a crop, top to bottom, newline
// joined, with the mean line confidence. It never fails: any internal
// problem degrades to ("", 0).
func (e *Extractor) ExtractText(img gocv.Mat) (text string, confidence float64) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: recovered from %v", r)
			text, confidence = "", 0
		}
	}()

	if img.Empty() || e.recognizer == nil {
		return "", 0
	}

	lines := e.segmenter.SplitLines(img)
	defer func() {
		for i := range lines {
			lines[i].Close()
		}
	}()

	// Lines are independent; fan out and collect by index so the final
	// join stays in top-to-bottom order no matter which finishes first.
	winners := make([]recognize.Result, len(lines))
	var wg sync.WaitGroup
	for i := range lines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			winners[idx] = e.readLine(lines[idx])
		}(i)
	}
	wg.Wait()

	for i := range winners {
		winners[i].Text = e.repairer.Process(winners[i].Text)
	}

	combined := rerank.CombineLines(winners)
	if strings.TrimSpace(combined.Text) == "" {
		return "", 0
	}
	return combined.Text, combined.Confidence
}

// readLine normalizes one line, recognizes every photometric variant
// concurrently, and reranks the ensemble.
func (e *Extractor) readLine(line gocv.Mat) recognize.Result {
	normalized := e.geometric.Normalize(line, 0)
	defer normalized.Close()

	variants := e.photometric.GenerateVariants(normalized)
	defer func() {
		for _, v := range variants {
			v.Close()
		}
	}()

	// Fixed name order keeps reranker tie-breaking deterministic.
	names := photonorm.VariantNames
	results := make([]recognize.Result, len(names))
	var wg sync.WaitGroup
	for i, name := range names {
		variant, ok := variants[name]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(idx int, v gocv.Mat) {
			defer wg.Done()
			res, err := e.recognizer.Recognize(v)
			if err != nil {
				// A failed variant contributes an empty result and the
				// ensemble carries on with the rest.
				if e.cfg.Debug {
					log.Printf("pipeline: variant %s failed: %v", names[idx], err)
				}
				return
			}
			results[idx] = res
		}(i, variant)
	}
	wg.Wait()

	candidates := make([]rerank.Candidate, len(names))
	for i, name := range names {
		candidates[i] = rerank.Candidate{VariantName: name, Recognition: results[i]}
	}

	winner, ok := e.reranker.Select(candidates)
	if !ok {
		return recognize.Result{}
	}
	return winner.Recognition
}

// ParseDate extracts a calendar date from already-recognized text.
func (e *Extractor) ParseDate(text string) (time.Time, float64, bool) {
	return e.dates.Parse(text)
}

// ExtractDate runs the full pipeline and then date extraction, line by line
// first and over the whole text as a fallback.
func (e *Extractor) ExtractDate(img gocv.Mat) (time.Time, float64, bool) {
	text, _ := e.ExtractText(img)
	if text == "" {
		return time.Time{}, 0, false
	}
	for _, line := range strings.Split(text, "\n") {
		if date, conf, ok := e.dates.Parse(line); ok {
			return date, conf, ok
		}
	}
	return e.dates.Parse(text)
}
