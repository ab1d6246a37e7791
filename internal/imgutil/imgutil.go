// Package imgutil provides shared gocv.Mat helpers for the label pipeline.
package imgutil

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"os"

	"gocv.io/x/gocv"

	_ "golang.org/x/image/tiff"
)

// ToGray returns a single-channel grayscale copy of src.
// Already-gray inputs are cloned so the caller always owns the result.
func ToGray(src gocv.Mat) gocv.Mat {
	if src.Channels() == 1 {
		return src.Clone()
	}
	gray := gocv.NewMat()
	gocv.CvtColor(src, &gray, gocv.ColorBGRToGray)
	return gray
}

// BinarizeOtsuInv applies a global Otsu threshold with inversion,
// so ink becomes foreground (255) on a black background.
func BinarizeOtsuInv(src gocv.Mat) gocv.Mat {
	gray := ToGray(src)
	defer gray.Close()

	binary := gocv.NewMat()
	gocv.Threshold(gray, &binary, 0, 255, gocv.ThresholdBinaryInv|gocv.ThresholdOtsu)
	return binary
}

// RotateExpand rotates src by angle degrees around its center, expanding the
// canvas so no pixels are clipped. Border pixels are edge-replicated, which
// avoids introducing dark corners that would confuse later thresholding.
func RotateExpand(src gocv.Mat, angle float64) gocv.Mat {
	h, w := src.Rows(), src.Cols()
	center := image.Pt(w/2, h/2)

	m := gocv.GetRotationMatrix2D(center, angle, 1.0)
	defer m.Close()

	rad := angle * math.Pi / 180
	cos := math.Abs(math.Cos(rad))
	sin := math.Abs(math.Sin(rad))
	newW := int(float64(h)*sin + float64(w)*cos)
	newH := int(float64(h)*cos + float64(w)*sin)

	// Shift the rotation so the expanded canvas stays centered.
	m.SetDoubleAt(0, 2, m.GetDoubleAt(0, 2)+float64(newW)/2-float64(center.X))
	m.SetDoubleAt(1, 2, m.GetDoubleAt(1, 2)+float64(newH)/2-float64(center.Y))

	dst := gocv.NewMat()
	gocv.WarpAffineWithParams(src, &dst, m, image.Pt(newW, newH),
		gocv.InterpolationLinear, gocv.BorderReplicate, color.RGBA{})
	return dst
}

// LineAngles runs Canny edge detection and a probabilistic Hough transform,
// returning the angle of each detected line as its deviation from horizontal
// in degrees. Near-vertical structure (beyond +/-45 degrees) is discarded.
func LineAngles(src gocv.Mat) []float64 {
	gray := ToGray(src)
	defer gray.Close()

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	// Minimum line length scales with image size so short ink strokes
	// inside characters don't dominate the estimate.
	minLen := float32(gray.Cols()) / 3
	if minLen < 20 {
		minLen = 20
	}

	lines := gocv.NewMat()
	defer lines.Close()
	gocv.HoughLinesPWithParams(edges, &lines, 1, math.Pi/180, 50, minLen, 20)

	var angles []float64
	for i := 0; i < lines.Rows(); i++ {
		v := lines.GetVeciAt(i, 0)
		x1, y1, x2, y2 := float64(v[0]), float64(v[1]), float64(v[2]), float64(v[3])
		angle := math.Atan2(y2-y1, x2-x1) * 180 / math.Pi
		if angle > 90 {
			angle -= 180
		} else if angle < -90 {
			angle += 180
		}
		if math.Abs(angle) > 45 {
			continue
		}
		angles = append(angles, angle)
	}
	return angles
}

// LoadMat reads an image file into a BGR Mat. Formats the OpenCV build does
// not handle (notably some TIFF flavors) fall back to the Go decoders.
func LoadMat(path string) (gocv.Mat, error) {
	mat := gocv.IMRead(path, gocv.IMReadColor)
	if !mat.Empty() {
		return mat, nil
	}
	mat.Close()

	f, err := os.Open(path)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return gocv.NewMat(), fmt.Errorf("decode image %s: %w", path, err)
	}
	return MatFromImage(img), nil
}

// MatFromImage converts a Go image.Image to a BGR gocv.Mat.
func MatFromImage(img image.Image) gocv.Mat {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			mat.SetUCharAt(y, x*3+0, uint8(b>>8))
			mat.SetUCharAt(y, x*3+1, uint8(g>>8))
			mat.SetUCharAt(y, x*3+2, uint8(r>>8))
		}
	}
	return mat
}

// MeanBrightness returns the mean intensity of a grayscale image.
func MeanBrightness(gray gocv.Mat) float64 {
	return gray.Mean().Val1
}

// MaxInt returns the larger of two ints.
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
