// Package recognize defines the OCR backend boundary for the label pipeline.
package recognize

import (
	"gocv.io/x/gocv"
)

// Result is a single recognition outcome. Confidence is in [0,1].
type Result struct {
	Text       string
	Confidence float64
}

// Recognizer converts a preprocessed line image into text.
// Implementations wrap an external OCR engine; the pipeline treats any
// returned error as an empty result and keeps going.
type Recognizer interface {
	Recognize(img gocv.Mat) (Result, error)
}

// Func adapts a plain function to the Recognizer interface.
type Func func(img gocv.Mat) (Result, error)

// Recognize implements Recognizer.
func (f Func) Recognize(img gocv.Mat) (Result, error) {
	return f(img)
}
