// Package photonorm normalizes lighting and contrast of line images and
// generates the fixed variant set used for recognition ensembling.
package photonorm

import (
	"image"

	"gocv.io/x/gocv"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/imgutil"
)

// targetBrightness is the mean intensity the brightness step aims for.
const targetBrightness = 130.0

// VariantNames lists the ensemble variants in their canonical order.
var VariantNames = []string{
	"baseline", "clahe", "clahe_strong", "threshold",
	"invert", "adaptive_threshold", "sharp",
}

// Normalizer applies photometric normalization to a line image.
// A configured Normalizer is stateless and safe for concurrent use.
type Normalizer struct {
	cfg config.PhotometricConfig
}

// New creates a Normalizer with the given configuration.
func New(cfg config.PhotometricConfig) *Normalizer {
	if cfg.CLAHEClipLimit <= 0 {
		cfg.CLAHEClipLimit = 2.0
	}
	if cfg.CLAHETileGrid <= 0 {
		cfg.CLAHETileGrid = 8
	}
	if cfg.SharpenStrength <= 0 {
		cfg.SharpenStrength = 0.3
	}
	if cfg.DenoiseMethod == "" {
		cfg.DenoiseMethod = "median"
	}
	return &Normalizer{cfg: cfg}
}

// Normalize runs the configured steps and returns a grayscale image.
func (n *Normalizer) Normalize(img gocv.Mat) gocv.Mat {
	work := imgutil.ToGray(img)

	apply := func(f func(gocv.Mat) gocv.Mat) {
		next := f(work)
		work.Close()
		work = next
	}

	if n.cfg.NormalizeBrightness {
		apply(n.normalizeBrightness)
	}
	if n.cfg.Denoise {
		apply(n.denoise)
	}
	if n.cfg.RemoveShadows {
		apply(removeShadows)
	}
	if n.cfg.Equalize {
		apply(func(m gocv.Mat) gocv.Mat { return applyCLAHE(m, n.cfg.CLAHEClipLimit, n.cfg.CLAHETileGrid) })
	}
	if n.cfg.Sharpen {
		apply(func(m gocv.Mat) gocv.Mat { return sharpen(m, n.cfg.SharpenStrength) })
	}
	return work
}

// GenerateVariants returns the fixed set of 7 named variants used for
// ensembling, independent of which Normalize steps are enabled.
// The caller owns every returned Mat.
func (n *Normalizer) GenerateVariants(img gocv.Mat) map[string]gocv.Mat {
	gray := imgutil.ToGray(img)
	defer gray.Close()

	variants := make(map[string]gocv.Mat, len(VariantNames))

	variants["baseline"] = n.denoise(gray)

	shadowless := removeShadows(gray)
	defer shadowless.Close()
	clahe := applyCLAHE(shadowless, 2.0, 8)
	variants["clahe"] = clahe
	variants["clahe_strong"] = applyCLAHE(shadowless, 2.5, 8)

	threshold := gocv.NewMat()
	gocv.Threshold(clahe, &threshold, 0, 255, gocv.ThresholdBinary|gocv.ThresholdOtsu)
	variants["threshold"] = threshold

	inverted := gocv.NewMat()
	gocv.BitwiseNot(threshold, &inverted)
	variants["invert"] = inverted

	adaptive := gocv.NewMat()
	gocv.AdaptiveThreshold(gray, &adaptive, 255, gocv.AdaptiveThresholdMean, gocv.ThresholdBinary, 11, 2)
	variants["adaptive_threshold"] = adaptive

	strength := 0.3
	if n.cfg.Sharpen {
		strength = n.cfg.SharpenStrength
	}
	variants["sharp"] = sharpen(clahe, strength)

	return variants
}

// normalizeBrightness pushes the mean intensity toward targetBrightness with
// a linear scale and offset. Images already close to the target pass through.
func (n *Normalizer) normalizeBrightness(gray gocv.Mat) gocv.Mat {
	mean := imgutil.MeanBrightness(gray)
	if mean <= 0 {
		return gray.Clone()
	}
	deviation := targetBrightness - mean
	if deviation > -10 && deviation < 10 {
		return gray.Clone()
	}

	scale := targetBrightness / mean
	if scale < 0.5 {
		scale = 0.5
	} else if scale > 1.5 {
		scale = 1.5
	}
	// Offset covers whatever the clamped scale could not.
	offset := targetBrightness - mean*scale

	out := gocv.NewMat()
	gray.ConvertToWithParams(&out, gocv.MatTypeCV8U, float32(scale), float32(offset))
	return out
}

func (n *Normalizer) denoise(gray gocv.Mat) gocv.Mat {
	out := gocv.NewMat()
	if n.cfg.DenoiseMethod == "bilateral" {
		gocv.BilateralFilter(gray, &out, 7, 50, 50)
	} else {
		gocv.MedianBlur(gray, &out, 3)
	}
	return out
}

// removeShadows estimates the illumination field with a large Gaussian blur,
// subtracts it, and stretches the residual back to full dynamic range.
func removeShadows(gray gocv.Mat) gocv.Mat {
	illumination := gocv.NewMat()
	defer illumination.Close()
	gocv.GaussianBlur(gray, &illumination, image.Pt(51, 51), 0, 0, gocv.BorderDefault)

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.Subtract(gray, illumination, &diff)

	out := gocv.NewMat()
	gocv.Normalize(diff, &out, 0, 255, gocv.NormMinMax)
	return out
}

func applyCLAHE(gray gocv.Mat, clipLimit float64, tileGrid int) gocv.Mat {
	clahe := gocv.NewCLAHEWithParams(clipLimit, image.Pt(tileGrid, tileGrid))
	defer clahe.Close()

	out := gocv.NewMat()
	clahe.Apply(gray, &out)
	return out
}

// sharpen blends a 3x3 sharpening kernel response with the original.
func sharpen(gray gocv.Mat, strength float64) gocv.Mat {
	kernel := gocv.NewMatWithSize(3, 3, gocv.MatTypeCV32F)
	defer kernel.Close()
	weights := [3][3]float32{{0, -1, 0}, {-1, 5, -1}, {0, -1, 0}}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			kernel.SetFloatAt(y, x, weights[y][x])
		}
	}

	sharpened := gocv.NewMat()
	defer sharpened.Close()
	gocv.Filter2D(gray, &sharpened, -1, kernel, image.Pt(-1, -1), 0, gocv.BorderDefault)

	out := gocv.NewMat()
	gocv.AddWeighted(gray, 1-strength, sharpened, strength, 0, &out)
	return out
}
