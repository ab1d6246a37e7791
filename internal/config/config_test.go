package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "hybrid", cfg.Segmenter.Method)
	assert.Equal(t, 8, cfg.Segmenter.MinLineHeight)
	assert.True(t, cfg.Geometric.Deskew)
	assert.False(t, cfg.Geometric.PerspectiveCorrection)
	assert.Equal(t, []int{48}, cfg.Geometric.TargetHeights)
	assert.Equal(t, "rerank", cfg.Reranker.Strategy)
	assert.Equal(t, 2, cfg.TextRepair.FuzzyThreshold)
	assert.Equal(t, 2000, cfg.DateParser.MinYear)
	assert.Equal(t, 2040, cfg.DateParser.MaxYear)
}

func TestPresetFast(t *testing.T) {
	cfg, err := Preset("fast")
	require.NoError(t, err)

	assert.Equal(t, "projection", cfg.Segmenter.Method)
	assert.False(t, cfg.Segmenter.CorrectRotation)
	assert.False(t, cfg.Geometric.Deskew)
	assert.False(t, cfg.Photometric.Denoise)

	// untouched defaults survive the preset
	assert.Equal(t, 8, cfg.Segmenter.MinLineHeight)
	assert.True(t, cfg.TextRepair.Uppercase)
}

func TestPresetQuality(t *testing.T) {
	cfg, err := Preset("quality")
	require.NoError(t, err)

	assert.Equal(t, "bilateral", cfg.Photometric.DenoiseMethod)
	assert.True(t, cfg.Photometric.Sharpen)
	assert.Equal(t, []int{32, 48, 64}, cfg.Geometric.TargetHeights)
}

func TestPresetUnknown(t *testing.T) {
	_, err := Preset("turbo")
	assert.Error(t, err)
}

func TestParseOverlaysPreset(t *testing.T) {
	data := []byte(`
preset: quality
photometric:
  clahe_clip_limit: 3.5
segmenter:
  method: morphology
`)
	cfg, err := Parse(data)
	require.NoError(t, err)

	// file values win over the preset
	assert.Equal(t, 3.5, cfg.Photometric.CLAHEClipLimit)
	assert.Equal(t, "morphology", cfg.Segmenter.Method)

	// preset values win over the defaults
	assert.True(t, cfg.Photometric.Sharpen)
	assert.Equal(t, []int{32, 48, 64}, cfg.Geometric.TargetHeights)
}

func TestParseBadPreset(t *testing.T) {
	_, err := Parse([]byte("preset: nope\n"))
	assert.Error(t, err)
}
