package imgutil

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"gocv.io/x/gocv"
)

func TestToGray(t *testing.T) {
	bgr := gocv.NewMatWithSize(20, 30, gocv.MatTypeCV8UC3)
	defer bgr.Close()
	gray := ToGray(bgr)
	defer gray.Close()
	assert.Equal(t, 1, gray.Channels())
	assert.Equal(t, 20, gray.Rows())
	assert.Equal(t, 30, gray.Cols())

	// gray input comes back as an owned clone
	clone := ToGray(gray)
	defer clone.Close()
	assert.Equal(t, 1, clone.Channels())
}

func TestBinarizeOtsuInv(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 40, 100, gocv.MatTypeCV8UC1)
	defer img.Close()
	gocv.Rectangle(&img, image.Rect(10, 10, 90, 30), color.RGBA{}, -1)

	binary := BinarizeOtsuInv(img)
	defer binary.Close()

	// ink area becomes foreground
	assert.Equal(t, 80*20, gocv.CountNonZero(binary))
}

func TestRotateExpandGrowsCanvas(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 40, 100, gocv.MatTypeCV8UC1)
	defer img.Close()

	rotated := RotateExpand(img, 10)
	defer rotated.Close()

	assert.Greater(t, rotated.Cols(), img.Cols())
	assert.Greater(t, rotated.Rows(), img.Rows())
}

func TestLineAnglesHorizontal(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 60, 200, gocv.MatTypeCV8UC1)
	defer img.Close()
	gocv.Rectangle(&img, image.Rect(10, 25, 190, 35), color.RGBA{}, -1)

	angles := LineAngles(img)
	assert.NotEmpty(t, angles)
	for _, a := range angles {
		assert.InDelta(t, 0, a, 1)
	}
}

func TestLineAnglesBlank(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), 60, 200, gocv.MatTypeCV8UC1)
	defer img.Close()
	assert.Empty(t, LineAngles(img))
}

func TestMatFromImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 8, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 8; x++ {
			src.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	mat := MatFromImage(src)
	defer mat.Close()

	assert.Equal(t, 4, mat.Rows())
	assert.Equal(t, 8, mat.Cols())
	assert.Equal(t, uint8(50), mat.GetUCharAt(0, 0))  // B
	assert.Equal(t, uint8(100), mat.GetUCharAt(0, 1)) // G
	assert.Equal(t, uint8(200), mat.GetUCharAt(0, 2)) // R
}

func TestMeanBrightness(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(128, 0, 0, 0), 10, 10, gocv.MatTypeCV8UC1)
	defer img.Close()
	assert.InDelta(t, 128, MeanBrightness(img), 0.01)
}
