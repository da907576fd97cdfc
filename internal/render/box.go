package render

import (
	"image"

	"github.com/ayusman/handtracker/internal/detector"
	"gonum.org/v1/gonum/floats"
)

// DefaultBoxMargin is the padding, in pixels, added on every side of a hand box.
const DefaultBoxMargin = 20

// BoundingBox is an axis-aligned pixel rectangle around one hand.
// It is not clamped to the frame, so it can extend past the edges.
type BoundingBox struct {
	XMin, YMin, XMax, YMax int
}

// Rect converts the box to an image.Rectangle for drawing.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.XMin, b.YMin, b.XMax, b.YMax)
}

// Width returns the box width in pixels.
func (b BoundingBox) Width() int { return b.XMax - b.XMin }

// Height returns the box height in pixels.
func (b BoundingBox) Height() int { return b.YMax - b.YMin }

// BoundingBoxOf scales the hand's normalized landmarks to a width x height
// frame, takes the min/max over all points and pads by margin. Values are
// truncated toward zero after padding.
func BoundingBoxOf(hand *detector.HandLandmarks, width, height, margin int) BoundingBox {
	xs := make([]float64, detector.NumLandmarks)
	ys := make([]float64, detector.NumLandmarks)
	for i, p := range hand.Points {
		xs[i] = p.X * float64(width)
		ys[i] = p.Y * float64(height)
	}

	m := float64(margin)
	return BoundingBox{
		XMin: int(floats.Min(xs) - m),
		YMin: int(floats.Min(ys) - m),
		XMax: int(floats.Max(xs) + m),
		YMax: int(floats.Max(ys) + m),
	}
}
