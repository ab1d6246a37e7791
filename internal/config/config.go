// Package config provides layered configuration for the label reading pipeline.
//
// Resolution order is fixed: built-in defaults, then a named preset, then
// explicit overrides from a YAML file or the caller. The result is a plain
// value struct; components copy the slice fields they keep at construction,
// so a resolved Config is effectively immutable afterwards.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// SegmenterConfig controls text line segmentation.
type SegmenterConfig struct {
	// Method selects the detection algorithm:
	// "projection", "clustering", "morphology" or "hybrid".
	Method            string  `yaml:"method"`
	MinLineHeight     int     `yaml:"min_line_height"`
	MinComponentWidth int     `yaml:"min_component_width"`
	ClusterAlgo       string  `yaml:"cluster_algo"` // "dbscan" or "agglomerative"
	DBSCANEps         float64 `yaml:"dbscan_eps"`
	MorphKernelWidth  int     `yaml:"morphology_kernel_width"`
	CorrectRotation   bool    `yaml:"correct_rotation"`
	MaxRotationAngle  float64 `yaml:"max_rotation_angle"`
}

// GeometricConfig controls deskew, perspective correction and rescaling.
type GeometricConfig struct {
	Deskew bool `yaml:"deskew"`
	// MaxAngle clamps the deskew rotation in degrees.
	MaxAngle float64 `yaml:"max_angle"`
	// PerspectiveCorrection is off by default; it is too aggressive on
	// busy crops and the sanity checks reject most real-world inputs.
	PerspectiveCorrection bool  `yaml:"perspective_correction"`
	TargetHeights         []int `yaml:"target_heights"`
	PreserveAspect        bool  `yaml:"preserve_aspect"`
	FixedWidth            int   `yaml:"fixed_width"`
}

// PhotometricConfig controls lighting and contrast normalization.
type PhotometricConfig struct {
	NormalizeBrightness bool    `yaml:"normalize_brightness"`
	Denoise             bool    `yaml:"denoise"`
	DenoiseMethod       string  `yaml:"denoise_method"` // "median" or "bilateral"
	RemoveShadows       bool    `yaml:"remove_shadows"`
	Equalize            bool    `yaml:"equalize"`
	CLAHEClipLimit      float64 `yaml:"clahe_clip_limit"`
	CLAHETileGrid       int     `yaml:"clahe_tile_grid"`
	Sharpen             bool    `yaml:"sharpen"`
	SharpenStrength     float64 `yaml:"sharpen_strength"`
}

// RerankerConfig selects the ensemble winner strategy.
type RerankerConfig struct {
	// Strategy is "confidence", "voting" or "rerank".
	Strategy string `yaml:"strategy"`
}

// TextRepairConfig controls the contextual postprocessor.
type TextRepairConfig struct {
	Uppercase        bool     `yaml:"uppercase"`
	StripSymbols     bool     `yaml:"strip_symbols"`
	AmbiguityMapping bool     `yaml:"ambiguity_mapping"`
	FormatRepair     bool     `yaml:"format_repair"`
	FuzzyCorrection  bool     `yaml:"fuzzy_correction"`
	FuzzyThreshold   int      `yaml:"fuzzy_threshold"`
	KnownWords       []string `yaml:"known_words"`
}

// DateParserConfig bounds accepted calendar years.
type DateParserConfig struct {
	MinYear int `yaml:"min_year"`
	MaxYear int `yaml:"max_year"`
}

// RecognizerConfig configures the external OCR backend adapter.
type RecognizerConfig struct {
	Language  string `yaml:"language"`
	Whitelist string `yaml:"whitelist"`
}

// Config aggregates all component configurations.
type Config struct {
	Preset      string            `yaml:"preset"`
	Segmenter   SegmenterConfig   `yaml:"segmenter"`
	Geometric   GeometricConfig   `yaml:"geometric"`
	Photometric PhotometricConfig `yaml:"photometric"`
	Reranker    RerankerConfig    `yaml:"reranker"`
	TextRepair  TextRepairConfig  `yaml:"text_repair"`
	DateParser  DateParserConfig  `yaml:"date_parser"`
	Recognizer  RecognizerConfig  `yaml:"recognizer"`
	Debug       bool              `yaml:"debug"`
}

// Default returns the built-in base configuration.
func Default() Config {
	return Config{
		Segmenter: SegmenterConfig{
			Method:            "hybrid",
			MinLineHeight:     8,
			MinComponentWidth: 4,
			ClusterAlgo:       "dbscan",
			DBSCANEps:         12,
			MorphKernelWidth:  25,
			CorrectRotation:   true,
			MaxRotationAngle:  15,
		},
		Geometric: GeometricConfig{
			Deskew:                true,
			MaxAngle:              10,
			PerspectiveCorrection: false,
			TargetHeights:         []int{48},
			PreserveAspect:        true,
			FixedWidth:            320,
		},
		Photometric: PhotometricConfig{
			NormalizeBrightness: true,
			Denoise:             true,
			DenoiseMethod:       "median",
			RemoveShadows:       true,
			Equalize:            true,
			CLAHEClipLimit:      2.0,
			CLAHETileGrid:       8,
			Sharpen:             false,
			SharpenStrength:     0.3,
		},
		Reranker: RerankerConfig{Strategy: "rerank"},
		TextRepair: TextRepairConfig{
			Uppercase:        true,
			StripSymbols:     true,
			AmbiguityMapping: true,
			FormatRepair:     true,
			FuzzyCorrection:  true,
			FuzzyThreshold:   2,
			KnownWords:       []string{"LOT", "LOTE", "VAL", "VENC", "FAB", "EXP"},
		},
		DateParser: DateParserConfig{MinYear: 2000, MaxYear: 2040},
		Recognizer: RecognizerConfig{
			Language:  "eng",
			Whitelist: "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ/-.: ",
		},
	}
}

// Preset returns the named preset layered over the defaults.
// Known presets: "default", "fast", "quality".
func Preset(name string) (Config, error) {
	cfg := Default()
	switch name {
	case "", "default":
	case "fast":
		cfg.Segmenter.Method = "projection"
		cfg.Segmenter.CorrectRotation = false
		cfg.Geometric.Deskew = false
		cfg.Photometric.Denoise = false
		cfg.Photometric.RemoveShadows = false
	case "quality":
		cfg.Photometric.DenoiseMethod = "bilateral"
		cfg.Photometric.Sharpen = true
		cfg.Geometric.TargetHeights = []int{32, 48, 64}
	default:
		return Config{}, fmt.Errorf("unknown preset %q", name)
	}
	cfg.Preset = name
	return cfg, nil
}

// LoadFile resolves a configuration from a YAML file. The file may name a
// preset; file values are applied on top of that preset, which is itself
// applied on top of the defaults. Unknown keys are ignored.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse resolves a configuration from raw YAML bytes.
func Parse(data []byte) (Config, error) {
	// First pass only to discover the preset name.
	var probe struct {
		Preset string `yaml:"preset"`
	}
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg, err := Preset(probe.Preset)
	if err != nil {
		return Config{}, err
	}

	// Second pass overlays the file's explicit values onto the preset.
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}
