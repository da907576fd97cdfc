package render

import (
	"image"

	"github.com/ayusman/handtracker/internal/detector"
	"gocv.io/x/gocv"
)

// DrawLandmarks renders one hand's skeleton onto img: an edge for every
// connection, then a bordered dot per joint. Landmarks outside the frame
// are skipped together with the edges that touch them.
//
// landmarkStyles is indexed by landmark; connectionStyles is keyed by edge.
// Edges without a style are not drawn.
func DrawLandmarks(img *gocv.Mat, hand *detector.HandLandmarks, connections []detector.Connection,
	landmarkStyles []LandmarkStyle, connectionStyles map[detector.Connection]ConnectionStyle) {

	width, height := img.Cols(), img.Rows()

	points := make(map[int]image.Point, detector.NumLandmarks)
	for i := 0; i < detector.NumLandmarks; i++ {
		if pt, ok := toPixel(hand, i, width, height); ok {
			points[i] = pt
		}
	}

	// draw skeleton lines
	for _, c := range connections {
		style, ok := connectionStyles[c]
		if !ok {
			continue
		}
		from, okFrom := points[c.From]
		to, okTo := points[c.To]
		if !okFrom || !okTo {
			continue
		}
		gocv.Line(img, from, to, style.Color, style.Thickness)
	}

	// draw circles at skeleton joints
	for i := 0; i < detector.NumLandmarks && i < len(landmarkStyles); i++ {
		pt, ok := points[i]
		if !ok {
			continue
		}
		style := landmarkStyles[i]
		border := max(style.Radius+1, int(float64(style.Radius)*1.2))
		gocv.Circle(img, pt, border, White, style.Thickness)
		gocv.Circle(img, pt, style.Radius, style.Color, style.Thickness)
	}
}

// toPixel maps landmark i to a pixel inside the frame. Landmarks outside
// [0,1] have no pixel position; a coordinate of exactly 1 lands on the last
// row or column.
func toPixel(hand *detector.HandLandmarks, i, width, height int) (image.Point, bool) {
	if !hand.InFrame(i) {
		return image.Point{}, false
	}
	pt := hand.Pixel(i, width, height)
	return image.Pt(min(pt.X, width-1), min(pt.Y, height-1)), true
}
