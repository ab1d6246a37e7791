// Package geomnorm normalizes line image geometry: deskew, optional
// perspective correction, and rescaling to canonical heights.
package geomnorm

import (
	"image"
	"log"
	"math"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/imgutil"
)

// minRotation is the angle below which deskew is a no-op, keeping the
// operation idempotent on already-aligned input.
const minRotation = 0.5

// Normalizer applies geometric normalization to a single line image.
// A configured Normalizer is stateless and safe for concurrent use.
type Normalizer struct {
	cfg config.GeometricConfig
}

// New creates a Normalizer with the given configuration.
func New(cfg config.GeometricConfig) *Normalizer {
	if len(cfg.TargetHeights) == 0 {
		cfg.TargetHeights = []int{48}
	} else {
		cfg.TargetHeights = append([]int(nil), cfg.TargetHeights...)
	}
	if cfg.MaxAngle <= 0 {
		cfg.MaxAngle = 10
	}
	if cfg.FixedWidth <= 0 {
		cfg.FixedWidth = 320
	}
	return &Normalizer{cfg: cfg}
}

// Normalize deskews, optionally perspective-corrects, and rescales the image
// to targetHeight. A targetHeight of 0 selects the first configured height.
func (n *Normalizer) Normalize(img gocv.Mat, targetHeight int) gocv.Mat {
	if img.Empty() {
		return gocv.NewMat()
	}
	if targetHeight <= 0 {
		targetHeight = n.cfg.TargetHeights[0]
	}

	work := img.Clone()

	if n.cfg.Deskew {
		deskewed := n.deskew(work)
		work.Close()
		work = deskewed
	}

	if n.cfg.PerspectiveCorrection {
		corrected := n.correctPerspective(work)
		work.Close()
		work = corrected
	}

	resized := n.resize(work, targetHeight)
	work.Close()
	return resized
}

// GenerateVariants returns one normalized copy per configured target height.
func (n *Normalizer) GenerateVariants(img gocv.Mat) []gocv.Mat {
	variants := make([]gocv.Mat, 0, len(n.cfg.TargetHeights))
	for _, h := range n.cfg.TargetHeights {
		variants = append(variants, n.Normalize(img, h))
	}
	return variants
}

// deskew rotates the line upright using the median Hough line angle.
func (n *Normalizer) deskew(img gocv.Mat) gocv.Mat {
	angles := imgutil.LineAngles(img)
	if len(angles) == 0 {
		return img.Clone()
	}
	sort.Float64s(angles)
	angle := stat.Quantile(0.5, stat.Empirical, angles, nil)

	if angle > n.cfg.MaxAngle {
		angle = n.cfg.MaxAngle
	} else if angle < -n.cfg.MaxAngle {
		angle = -n.cfg.MaxAngle
	}
	if math.Abs(angle) < minRotation {
		return img.Clone()
	}
	return imgutil.RotateExpand(img, angle)
}

// correctPerspective warps the dominant text contour to an axis-aligned
// rectangle. Several sanity checks abort the transform; a noisy or partial
// contour would otherwise distort the line beyond recognition.
func (n *Normalizer) correctPerspective(img gocv.Mat) gocv.Mat {
	binary := imgutil.BinarizeOtsuInv(img)
	defer binary.Close()

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	bestIdx := -1
	bestArea := 0.0
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			bestArea = area
			bestIdx = i
		}
	}

	imgArea := float64(img.Rows() * img.Cols())
	if bestIdx < 0 || bestArea < 0.3*imgArea {
		log.Printf("geomnorm: perspective skipped, contour covers %.0f%% of image", 100*bestArea/imgArea)
		return img.Clone()
	}

	rect := gocv.MinAreaRect(contours.At(bestIdx))
	rw, rh := float64(rect.Width), float64(rect.Height)
	if rw <= 0 || rh <= 0 {
		return img.Clone()
	}

	aspect := rw / rh
	if aspect < 1 {
		aspect = 1 / aspect
	}
	if aspect > 20 {
		log.Printf("geomnorm: perspective skipped, aspect ratio %.1f", aspect)
		return img.Clone()
	}

	tilt := math.Abs(rect.Angle)
	if tilt > 45 {
		tilt = 90 - tilt
	}
	if tilt > 15 {
		log.Printf("geomnorm: perspective skipped, tilt %.1f degrees", tilt)
		return img.Clone()
	}

	// Output keeps the rectangle's own dimensions, swapped if needed so the
	// text stays horizontal.
	outW, outH := rw, rh
	if outH > outW {
		outW, outH = outH, outW
	}

	maxSide := float64(imgutil.MaxInt(img.Rows(), img.Cols()))
	if outW > 2*maxSide || outH > 2*maxSide {
		return img.Clone()
	}
	if outW < 10 || outH < 10 {
		return img.Clone()
	}

	tl, tr, br, bl := orderCorners(rect.Points)

	src := gocv.NewPointVectorFromPoints([]image.Point{tl, tr, br, bl})
	defer src.Close()
	dst := gocv.NewPointVectorFromPoints([]image.Point{
		{0, 0},
		{int(outW) - 1, 0},
		{int(outW) - 1, int(outH) - 1},
		{0, int(outH) - 1},
	})
	defer dst.Close()

	m := gocv.GetPerspectiveTransform(src, dst)
	defer m.Close()

	warped := gocv.NewMat()
	gocv.WarpPerspective(img, &warped, m, image.Pt(int(outW), int(outH)))
	return warped
}

// orderCorners identifies the four corners of a quad: top-left has the
// smallest x+y, bottom-right the largest, top-right the smallest x-y... the
// classic sum/diff ordering.
func orderCorners(pts []image.Point) (tl, tr, br, bl image.Point) {
	tl, tr, br, bl = pts[0], pts[0], pts[0], pts[0]
	for _, p := range pts {
		sum := p.X + p.Y
		diff := p.X - p.Y
		if sum < tl.X+tl.Y {
			tl = p
		}
		if sum > br.X+br.Y {
			br = p
		}
		if diff > tr.X-tr.Y {
			tr = p
		}
		if diff < bl.X-bl.Y {
			bl = p
		}
	}
	return tl, tr, br, bl
}

// resize scales the line to the target height. Width preserves aspect ratio
// unless disabled, and never drops below the target height.
func (n *Normalizer) resize(img gocv.Mat, targetHeight int) gocv.Mat {
	h, w := img.Rows(), img.Cols()
	if h <= 0 || w <= 0 {
		return img.Clone()
	}

	newW := n.cfg.FixedWidth
	if n.cfg.PreserveAspect {
		newW = int(float64(w) * float64(targetHeight) / float64(h))
	}
	if newW < targetHeight {
		newW = targetHeight
	}

	resized := gocv.NewMat()
	gocv.Resize(img, &resized, image.Pt(newW, targetHeight), 0, 0, gocv.InterpolationCubic)
	return resized
}
