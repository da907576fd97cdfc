// Package render draws hand overlays (bounding boxes, labels and skeletons)
// onto BGR frames with GoCV drawing primitives.
package render

import (
	"image/color"

	"github.com/ayusman/handtracker/internal/detector"
	"gocv.io/x/gocv"
)

// Palette used by the default hand styles. gocv takes RGB colors and maps
// them to the frame's BGR order itself.
var (
	Red    = color.RGBA{R: 255, G: 48, B: 48, A: 255}
	Green  = color.RGBA{R: 48, G: 255, B: 48, A: 255}
	Blue   = color.RGBA{R: 21, G: 101, B: 192, A: 255}
	Yellow = color.RGBA{R: 255, G: 204, B: 0, A: 255}
	Gray   = color.RGBA{R: 128, G: 128, B: 128, A: 255}
	Purple = color.RGBA{R: 128, G: 64, B: 128, A: 255}
	Peach  = color.RGBA{R: 255, G: 229, B: 180, A: 255}
	White  = color.RGBA{R: 224, G: 224, B: 224, A: 255}

	// BoxGreen is the pure green used for bounding boxes and labels.
	BoxGreen = color.RGBA{R: 0, G: 255, B: 0, A: 255}
)

// LandmarkStyle describes how a joint is drawn. A negative Thickness fills the circle.
type LandmarkStyle struct {
	Color     color.RGBA
	Thickness int
	Radius    int
}

// ConnectionStyle describes how a skeleton edge is drawn.
type ConnectionStyle struct {
	Color     color.RGBA
	Thickness int
}

// fingerColors maps each hand part to its color in the default styles.
var fingerColors = map[detector.Finger]color.RGBA{
	detector.Palm:   Red,
	detector.Thumb:  Peach,
	detector.Index:  Purple,
	detector.Middle: Yellow,
	detector.Ring:   Green,
	detector.Pinky:  Blue,
}

// DefaultLandmarkStyles returns one style per landmark: filled dots colored
// by hand part, red for the wrist and finger bases.
func DefaultLandmarkStyles() []LandmarkStyle {
	styles := make([]LandmarkStyle, detector.NumLandmarks)
	for i := range styles {
		styles[i] = LandmarkStyle{
			Color:     fingerColors[detector.FingerOf(i)],
			Thickness: -1,
			Radius:    5,
		}
	}
	return styles
}

// DefaultConnectionStyles returns a style for every edge of detector.Connections.
// Palm edges are gray; finger edges take the finger's color.
func DefaultConnectionStyles() map[detector.Connection]ConnectionStyle {
	styles := make(map[detector.Connection]ConnectionStyle, len(detector.Connections))
	for _, c := range detector.Connections {
		f := detector.FingerOfConnection(c)
		clr := fingerColors[f]
		if f == detector.Palm {
			clr = Gray
		}
		styles[c] = ConnectionStyle{Color: clr, Thickness: 2}
	}
	return styles
}

// Font defines the parameters for rendering text on an image using GoCV
type Font struct {
	Face      gocv.HersheyFont
	Scale     float64
	Color     color.RGBA
	Thickness int
}

// DefaultFont returns the label font: Hershey simplex at 0.6, green, 2px.
func DefaultFont() Font {
	return Font{
		Face:      gocv.FontHersheySimplex,
		Scale:     0.6,
		Color:     BoxGreen,
		Thickness: 2,
	}
}
