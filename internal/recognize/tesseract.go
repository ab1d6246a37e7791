package recognize

import (
	"fmt"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
	"gocv.io/x/gocv"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
)

// Engine is a Tesseract-backed Recognizer for short label lines.
type Engine struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewEngine creates a Tesseract recognizer.
func NewEngine(cfg config.RecognizerConfig) (*Engine, error) {
	client := gosseract.NewClient()

	lang := cfg.Language
	if lang == "" {
		lang = "eng"
	}
	if err := client.SetLanguage(lang); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set OCR language: %w", err)
	}

	// Disable dictionary-based word correction - lot codes aren't words
	// and Tesseract would otherwise "fix" them into something else.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")
	_ = client.SetVariable("language_model_penalty_non_dict_word", "0")
	_ = client.SetVariable("language_model_penalty_non_freq_dict_word", "0")

	if cfg.Whitelist != "" {
		if err := client.SetWhitelist(cfg.Whitelist); err != nil {
			client.Close()
			return nil, fmt.Errorf("failed to set whitelist: %w", err)
		}
	}

	return &Engine{client: client}, nil
}

// Close releases OCR resources.
func (e *Engine) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// Recognize runs Tesseract over a single line image.
// The gosseract client is not safe for concurrent use, so calls are
// serialized here; the pipeline may still fan variants out freely.
func (e *Engine) Recognize(img gocv.Mat) (Result, error) {
	if img.Empty() {
		return Result{}, fmt.Errorf("empty image")
	}

	buf, err := gocv.IMEncode(gocv.PNGFileExt, img)
	if err != nil {
		return Result{}, fmt.Errorf("failed to encode image: %w", err)
	}
	defer buf.Close()

	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.client.SetPageSegMode(gosseract.PSM_SINGLE_LINE); err != nil {
		return Result{}, fmt.Errorf("failed to set PSM: %w", err)
	}
	if err := e.client.SetImageFromBytes(buf.GetBytes()); err != nil {
		return Result{}, fmt.Errorf("failed to set image: %w", err)
	}

	boxes, err := e.client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return Result{}, fmt.Errorf("OCR failed: %w", err)
	}

	var words []string
	var confSum float64
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		if word == "" {
			continue
		}
		words = append(words, word)
		confSum += box.Confidence
	}

	if len(words) == 0 {
		return Result{}, nil
	}

	return Result{
		Text:       strings.Join(words, " "),
		Confidence: confSum / float64(len(words)) / 100,
	}, nil
}
