package geometry

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPoint2DDistance(t *testing.T) {
	a := NewPoint2D(0, 0)
	b := NewPoint2D(3, 4)
	assert.Equal(t, 5.0, a.Distance(b))
	assert.Equal(t, 0.0, a.Distance(a))
}

func TestRectIntRoundTrip(t *testing.T) {
	r := FromImageRect(image.Rect(10, 20, 50, 60))
	assert.Equal(t, RectInt{X: 10, Y: 20, Width: 40, Height: 40}, r)
	assert.Equal(t, image.Rect(10, 20, 50, 60), r.ToImageRect())
}

func TestRectIntCenter(t *testing.T) {
	r := RectInt{X: 10, Y: 20, Width: 40, Height: 10}
	assert.Equal(t, Point2D{X: 30, Y: 25}, r.Center())
}

func TestRectIntPadClamp(t *testing.T) {
	r := RectInt{X: 0, Y: 5, Width: 100, Height: 20}
	padded := r.Pad(2).ClampTo(100, 30)
	assert.Equal(t, RectInt{X: 0, Y: 3, Width: 100, Height: 24}, padded)

	// fully outside clamps to an empty rect
	out := RectInt{X: 200, Y: 200, Width: 10, Height: 10}.ClampTo(100, 100)
	assert.True(t, out.Empty())
}

func TestRectIntUnion(t *testing.T) {
	a := RectInt{X: 0, Y: 0, Width: 10, Height: 10}
	b := RectInt{X: 20, Y: 5, Width: 10, Height: 10}
	assert.Equal(t, RectInt{X: 0, Y: 0, Width: 30, Height: 15}, a.Union(b))
}
