package photonorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/imgutil"
)

// gradient returns a grayscale image with a horizontal intensity ramp, busy
// enough that thresholding has something to separate.
func gradient(rows, cols int) gocv.Mat {
	img := gocv.NewMatWithSize(rows, cols, gocv.MatTypeCV8UC1)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			img.SetUCharAt(y, x, uint8((x*256)/cols))
		}
	}
	return img
}

func flatGray(rows, cols int, value float64) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(value, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
}

func TestGenerateVariantsComplete(t *testing.T) {
	img := gradient(48, 160)
	defer img.Close()

	n := New(config.Default().Photometric)
	variants := n.GenerateVariants(img)
	require.Len(t, variants, len(VariantNames))

	for _, name := range VariantNames {
		v, ok := variants[name]
		require.True(t, ok, "missing variant %s", name)
		assert.False(t, v.Empty(), "variant %s", name)
		assert.Equal(t, img.Rows(), v.Rows(), "variant %s", name)
		assert.Equal(t, img.Cols(), v.Cols(), "variant %s", name)
		assert.Equal(t, 1, v.Channels(), "variant %s", name)
		v.Close()
	}
}

func TestGenerateVariantsIgnoresToggles(t *testing.T) {
	img := gradient(48, 160)
	defer img.Close()

	// the ensemble set is fixed even with every Normalize step disabled
	n := New(config.PhotometricConfig{})
	variants := n.GenerateVariants(img)
	assert.Len(t, variants, len(VariantNames))
	for _, v := range variants {
		v.Close()
	}
}

func TestInvertIsComplementOfThreshold(t *testing.T) {
	img := gradient(48, 160)
	defer img.Close()

	n := New(config.Default().Photometric)
	variants := n.GenerateVariants(img)
	defer func() {
		for _, v := range variants {
			v.Close()
		}
	}()

	sum := gocv.NewMat()
	defer sum.Close()
	gocv.Add(variants["threshold"], variants["invert"], &sum)

	// threshold + invert saturates every pixel at 255
	lo, hi, _, _ := gocv.MinMaxLoc(sum)
	assert.Equal(t, float32(255), lo)
	assert.Equal(t, float32(255), hi)
}

func TestNormalizeReturnsGray(t *testing.T) {
	color := gocv.NewMatWithSize(40, 120, gocv.MatTypeCV8UC3)
	defer color.Close()

	n := New(config.Default().Photometric)
	out := n.Normalize(color)
	defer out.Close()

	assert.Equal(t, 1, out.Channels())
	assert.Equal(t, 40, out.Rows())
	assert.Equal(t, 120, out.Cols())
}

func TestNormalizeBrightness(t *testing.T) {
	n := New(config.PhotometricConfig{NormalizeBrightness: true})

	dark := flatGray(40, 120, 40)
	defer dark.Close()
	out := n.normalizeBrightness(dark)
	defer out.Close()
	assert.InDelta(t, 130, imgutil.MeanBrightness(out), 2)

	// already close to the target passes through untouched
	ok := flatGray(40, 120, 128)
	defer ok.Close()
	out2 := n.normalizeBrightness(ok)
	defer out2.Close()
	assert.InDelta(t, 128, imgutil.MeanBrightness(out2), 0.01)
}
