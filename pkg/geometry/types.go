// Package geometry provides basic geometric types used throughout the application.
package geometry

import (
	"image"
	"math"
)

// Point2D represents a 2D point with floating-point coordinates.
type Point2D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewPoint2D creates a new Point2D.
func NewPoint2D(x, y float64) Point2D {
	return Point2D{X: x, Y: y}
}

// Distance returns the Euclidean distance to another point.
func (p Point2D) Distance(other Point2D) float64 {
	dx := p.X - other.X
	dy := p.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// RectInt represents an axis-aligned rectangle with integer coordinates.
// Line boxes produced by segmentation are RectInts in source-image space.
type RectInt struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// FromImageRect converts a stdlib image.Rectangle to a RectInt.
func FromImageRect(r image.Rectangle) RectInt {
	return RectInt{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// ToImageRect converts to a stdlib image.Rectangle.
func (r RectInt) ToImageRect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Center returns the center of the rectangle.
func (r RectInt) Center() Point2D {
	return Point2D{X: float64(r.X) + float64(r.Width)/2, Y: float64(r.Y) + float64(r.Height)/2}
}

// Pad grows the rectangle by pad pixels on every side.
func (r RectInt) Pad(pad int) RectInt {
	return RectInt{X: r.X - pad, Y: r.Y - pad, Width: r.Width + 2*pad, Height: r.Height + 2*pad}
}

// ClampTo clips the rectangle to a width x height image, keeping it inside bounds.
func (r RectInt) ClampTo(width, height int) RectInt {
	x0 := max(0, r.X)
	y0 := max(0, r.Y)
	x1 := min(width, r.X+r.Width)
	y1 := min(height, r.Y+r.Height)
	if x1 < x0 {
		x1 = x0
	}
	if y1 < y0 {
		y1 = y0
	}
	return RectInt{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Union returns the smallest rectangle containing both rectangles.
func (r RectInt) Union(other RectInt) RectInt {
	x0 := min(r.X, other.X)
	y0 := min(r.Y, other.Y)
	x1 := max(r.X+r.Width, other.X+other.Width)
	y1 := max(r.Y+r.Height, other.Y+other.Height)
	return RectInt{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Empty reports whether the rectangle has no area.
func (r RectInt) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
