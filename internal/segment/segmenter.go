// Package segment splits a label crop into individual text line images.
package segment

import (
	"image"
	"log"
	"math"
	"sort"

	"gocv.io/x/gocv"
	"gonum.org/v1/gonum/stat"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
	"github.com/dev-rafaelmachado/datalid-sub001/internal/imgutil"
	"github.com/dev-rafaelmachado/datalid-sub001/pkg/geometry"
)

// cropPad is the symmetric padding applied around each detected line box.
const cropPad = 2

// Segmenter detects and extracts text lines from a crop.
// A configured Segmenter is stateless and safe for concurrent use.
type Segmenter struct {
	cfg config.SegmenterConfig
}

// New creates a Segmenter with the given configuration.
func New(cfg config.SegmenterConfig) *Segmenter {
	if cfg.Method == "" {
		cfg.Method = "hybrid"
	}
	if cfg.MinLineHeight <= 0 {
		cfg.MinLineHeight = 8
	}
	if cfg.MinComponentWidth <= 0 {
		cfg.MinComponentWidth = 4
	}
	if cfg.DBSCANEps <= 0 {
		cfg.DBSCANEps = 12
	}
	if cfg.MorphKernelWidth <= 0 {
		cfg.MorphKernelWidth = 25
	}
	return &Segmenter{cfg: cfg}
}

// DetectLines returns line boxes ordered top-to-bottom. When rotation
// correction fires, boxes are in the coordinates of the corrected image
// (the same image SplitLines crops from).
func (s *Segmenter) DetectLines(img gocv.Mat) []geometry.RectInt {
	if img.Empty() {
		return nil
	}
	work, owned := s.correctRotation(img)
	if owned {
		defer work.Close()
	}
	return s.detect(work)
}

// SplitLines crops each detected line with a small symmetric pad, ordered
// top-to-bottom. If nothing is detected the whole image is returned as a
// single line; segmentation never fails outright.
func (s *Segmenter) SplitLines(img gocv.Mat) []gocv.Mat {
	if img.Empty() {
		return nil
	}
	work, owned := s.correctRotation(img)
	if owned {
		defer work.Close()
	}

	boxes := s.detect(work)
	if len(boxes) == 0 {
		return []gocv.Mat{work.Clone()}
	}

	lines := make([]gocv.Mat, 0, len(boxes))
	for _, box := range boxes {
		padded := box.Pad(cropPad).ClampTo(work.Cols(), work.Rows())
		if padded.Empty() {
			continue
		}
		region := work.Region(padded.ToImageRect())
		lines = append(lines, region.Clone())
		region.Close()
	}
	if len(lines) == 0 {
		return []gocv.Mat{work.Clone()}
	}
	return lines
}

// correctRotation estimates the dominant skew and rotates the crop upright
// when the angle is small but non-trivial. Returns the working image and
// whether the caller received a new Mat it must not use past this call.
func (s *Segmenter) correctRotation(img gocv.Mat) (gocv.Mat, bool) {
	if !s.cfg.CorrectRotation {
		return img, false
	}
	angle := estimateSkew(img)
	if math.Abs(angle) <= 0.5 || math.Abs(angle) > s.cfg.MaxRotationAngle {
		return img, false
	}
	log.Printf("segment: correcting rotation of %.2f degrees", angle)
	return imgutil.RotateExpand(img, angle), true
}

// estimateSkew returns the median deviation from horizontal of detected
// edge lines, in degrees. Zero when no usable lines are found.
func estimateSkew(img gocv.Mat) float64 {
	angles := imgutil.LineAngles(img)
	if len(angles) == 0 {
		return 0
	}
	sort.Float64s(angles)
	return stat.Quantile(0.5, stat.Empirical, angles, nil)
}

// detect dispatches to the configured detection method and post-filters.
func (s *Segmenter) detect(img gocv.Mat) []geometry.RectInt {
	var boxes []geometry.RectInt
	switch s.cfg.Method {
	case "projection":
		boxes = s.detectProjection(img)
	case "clustering":
		boxes = s.detectClustering(img)
	case "morphology":
		boxes = s.detectMorphology(img)
	default: // hybrid
		boxes = s.detectHybrid(img)
	}
	return s.filterAndSort(boxes)
}

// detectHybrid runs projection first and escalates to clustering when the
// profile was too flat to separate lines (one line found but clustering
// sees more) or found nothing at all.
func (s *Segmenter) detectHybrid(img gocv.Mat) []geometry.RectInt {
	boxes := s.detectProjection(img)
	switch len(boxes) {
	case 0:
		return s.detectClustering(img)
	case 1:
		clustered := s.detectClustering(img)
		if len(clustered) > 1 {
			return clustered
		}
	}
	return boxes
}

// detectProjection finds lines from the smoothed row-wise ink profile.
func (s *Segmenter) detectProjection(img gocv.Mat) []geometry.RectInt {
	binary := imgutil.BinarizeOtsuInv(img)
	defer binary.Close()

	rows, cols := binary.Rows(), binary.Cols()
	profile := make([]float64, rows)
	for y := 0; y < rows; y++ {
		row := binary.Region(image.Rect(0, y, cols, y+1))
		profile[y] = float64(gocv.CountNonZero(row))
		row.Close()
	}

	window := s.cfg.MinLineHeight / 3
	if window < 3 {
		window = 3
	}
	smoothed := movingAverage(profile, window)

	threshold := 0.3 * stat.Mean(smoothed, nil)

	var boxes []geometry.RectInt
	start := -1
	for y := 0; y <= rows; y++ {
		above := y < rows && smoothed[y] > threshold
		if above && start < 0 {
			start = y
		} else if !above && start >= 0 {
			if h := y - start; h >= s.cfg.MinLineHeight {
				boxes = append(boxes, geometry.RectInt{X: 0, Y: start, Width: cols, Height: h})
			}
			start = -1
		}
	}
	return boxes
}

// detectClustering groups connected ink components by centroid Y.
func (s *Segmenter) detectClustering(img gocv.Mat) []geometry.RectInt {
	comps := s.inkComponents(img)
	if len(comps) == 0 {
		return nil
	}

	ys := make([]float64, len(comps))
	for i, c := range comps {
		ys[i] = c.Center().Y
	}

	var labels []int
	if s.cfg.ClusterAlgo == "agglomerative" {
		k := len(comps) / 3
		if k < 1 {
			k = 1
		}
		labels = agglomerativeWard(ys, k)
	} else {
		labels = dbscan1D(ys, s.cfg.DBSCANEps)
	}

	groups := make(map[int]geometry.RectInt)
	for i, label := range labels {
		if label < 0 { // DBSCAN noise
			continue
		}
		if box, ok := groups[label]; ok {
			groups[label] = box.Union(comps[i])
		} else {
			groups[label] = comps[i]
		}
	}

	var boxes []geometry.RectInt
	for _, box := range groups {
		if box.Height >= s.cfg.MinLineHeight {
			boxes = append(boxes, box)
		}
	}
	return boxes
}

// detectMorphology fuses same-line characters with a wide horizontal dilation
// and takes external contours of the result as line candidates.
func (s *Segmenter) detectMorphology(img gocv.Mat) []geometry.RectInt {
	binary := imgutil.BinarizeOtsuInv(img)
	defer binary.Close()

	kernel := gocv.GetStructuringElement(gocv.MorphRect, image.Pt(s.cfg.MorphKernelWidth, 1))
	defer kernel.Close()

	dilated := gocv.NewMat()
	defer dilated.Close()
	gocv.Dilate(binary, &dilated, kernel)

	contours := gocv.FindContours(dilated, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var boxes []geometry.RectInt
	for i := 0; i < contours.Size(); i++ {
		rect := gocv.BoundingRect(contours.At(i))
		if rect.Dy() < s.cfg.MinLineHeight || rect.Dx() < 2*s.cfg.MinComponentWidth {
			continue
		}
		boxes = append(boxes, geometry.FromImageRect(rect))
	}
	return boxes
}

// inkComponents returns bounding boxes of connected ink components,
// discarding specks and narrow fragments.
func (s *Segmenter) inkComponents(img gocv.Mat) []geometry.RectInt {
	binary := imgutil.BinarizeOtsuInv(img)
	defer binary.Close()

	contours := gocv.FindContours(binary, gocv.RetrievalExternal, gocv.ChainApproxSimple)
	defer contours.Close()

	var comps []geometry.RectInt
	for i := 0; i < contours.Size(); i++ {
		contour := contours.At(i)
		if gocv.ContourArea(contour) <= 10 {
			continue
		}
		rect := gocv.BoundingRect(contour)
		if rect.Dx() < s.cfg.MinComponentWidth {
			continue
		}
		comps = append(comps, geometry.FromImageRect(rect))
	}
	return comps
}

// filterAndSort drops undersized boxes and orders the rest top-to-bottom.
func (s *Segmenter) filterAndSort(boxes []geometry.RectInt) []geometry.RectInt {
	filtered := boxes[:0]
	for _, box := range boxes {
		if box.Height < s.cfg.MinLineHeight || box.Width < s.cfg.MinComponentWidth {
			continue
		}
		filtered = append(filtered, box)
	}
	sort.Slice(filtered, func(i, j int) bool {
		return filtered[i].Y < filtered[j].Y
	})
	return filtered
}

// movingAverage smooths values with a centered window.
func movingAverage(values []float64, window int) []float64 {
	half := window / 2
	out := make([]float64, len(values))
	for i := range values {
		lo := i - half
		hi := i + half
		if lo < 0 {
			lo = 0
		}
		if hi >= len(values) {
			hi = len(values) - 1
		}
		var sum float64
		for j := lo; j <= hi; j++ {
			sum += values[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}
