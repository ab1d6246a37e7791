package geomnorm

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"

	"github.com/dev-rafaelmachado/datalid-sub001/internal/config"
)

func whiteCanvas(rows, cols int) gocv.Mat {
	return gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), rows, cols, gocv.MatTypeCV8UC1)
}

func fillBlack(img *gocv.Mat, r image.Rectangle) {
	gocv.Rectangle(img, r, color.RGBA{}, -1)
}

func TestResizePreservesAspect(t *testing.T) {
	img := whiteCanvas(100, 300)
	defer img.Close()

	n := New(config.GeometricConfig{TargetHeights: []int{48}, PreserveAspect: true})
	out := n.Normalize(img, 0)
	defer out.Close()

	assert.Equal(t, 48, out.Rows())
	assert.Equal(t, 144, out.Cols())
}

func TestResizeWidthFloor(t *testing.T) {
	// Narrow crops never shrink below a square at the target height.
	img := whiteCanvas(100, 20)
	defer img.Close()

	n := New(config.GeometricConfig{TargetHeights: []int{48}, PreserveAspect: true})
	out := n.Normalize(img, 0)
	defer out.Close()

	assert.Equal(t, 48, out.Rows())
	assert.Equal(t, 48, out.Cols())
}

func TestResizeFixedWidth(t *testing.T) {
	img := whiteCanvas(100, 300)
	defer img.Close()

	n := New(config.GeometricConfig{TargetHeights: []int{48}, PreserveAspect: false, FixedWidth: 320})
	out := n.Normalize(img, 0)
	defer out.Close()

	assert.Equal(t, 48, out.Rows())
	assert.Equal(t, 320, out.Cols())
}

func TestDeskewAlignedIsNoop(t *testing.T) {
	img := whiteCanvas(100, 300)
	defer img.Close()
	fillBlack(&img, image.Rect(10, 20, 290, 40))
	fillBlack(&img, image.Rect(10, 60, 290, 80))

	// Resizing to the input height keeps the dimensions observable: a
	// rotation would have expanded the canvas and changed the aspect.
	n := New(config.GeometricConfig{Deskew: true, MaxAngle: 10, TargetHeights: []int{100}, PreserveAspect: true})
	out := n.Normalize(img, 100)
	defer out.Close()

	assert.Equal(t, 100, out.Rows())
	assert.Equal(t, 300, out.Cols())
}

func TestPerspectiveSkippedOnSmallContour(t *testing.T) {
	img := whiteCanvas(100, 300)
	defer img.Close()
	fillBlack(&img, image.Rect(50, 40, 70, 60))

	n := New(config.GeometricConfig{PerspectiveCorrection: true, TargetHeights: []int{100}, PreserveAspect: true})
	out := n.Normalize(img, 100)
	defer out.Close()

	assert.Equal(t, 100, out.Rows())
	assert.Equal(t, 300, out.Cols())
}

func TestGenerateVariants(t *testing.T) {
	img := whiteCanvas(100, 300)
	defer img.Close()

	n := New(config.GeometricConfig{TargetHeights: []int{32, 48}, PreserveAspect: true})
	variants := n.GenerateVariants(img)
	require.Len(t, variants, 2)
	assert.Equal(t, 32, variants[0].Rows())
	assert.Equal(t, 48, variants[1].Rows())
	for _, v := range variants {
		v.Close()
	}
}

func TestNormalizeEmpty(t *testing.T) {
	empty := gocv.NewMat()
	defer empty.Close()

	n := New(config.GeometricConfig{TargetHeights: []int{48}})
	out := n.Normalize(empty, 0)
	defer out.Close()

	assert.True(t, out.Empty())
}

func TestOrderCorners(t *testing.T) {
	tl, tr, br, bl := orderCorners([]image.Point{
		{90, 10}, {10, 5}, {15, 80}, {95, 85},
	})
	assert.Equal(t, image.Pt(10, 5), tl)
	assert.Equal(t, image.Pt(90, 10), tr)
	assert.Equal(t, image.Pt(95, 85), br)
	assert.Equal(t, image.Pt(15, 80), bl)
}
