package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/ayusman/handtracker/internal/detector"
	"gocv.io/x/gocv"
)

// DefaultLabel is the text drawn above every hand box.
const DefaultLabel = "Hand"

// labelOffset is the gap between the label baseline and the top of the box.
const labelOffset = 10

// Overlay draws the per-hand annotations for one frame.
type Overlay struct {
	// Margin pads each bounding box on all sides, in pixels.
	Margin int
	// BoxColor and BoxThickness style the bounding rectangle.
	BoxColor     color.RGBA
	BoxThickness int
	// Font styles the label drawn above each box.
	Font Font
	// LabelHandedness replaces the "Hand" label with handedness and score.
	LabelHandedness bool

	Connections      []detector.Connection
	LandmarkStyles   []LandmarkStyle
	ConnectionStyles map[detector.Connection]ConnectionStyle
}

// NewOverlay returns an Overlay with the default hand styles.
func NewOverlay() *Overlay {
	return &Overlay{
		Margin:           DefaultBoxMargin,
		BoxColor:         BoxGreen,
		BoxThickness:     2,
		Font:             DefaultFont(),
		Connections:      detector.Connections,
		LandmarkStyles:   DefaultLandmarkStyles(),
		ConnectionStyles: DefaultConnectionStyles(),
	}
}

// Draw annotates img in place with every hand in result. The landmarks must
// come from a frame with the same dimensions as img. It returns the boxes
// it drew, in the order of result.Hands.
func (o *Overlay) Draw(img *gocv.Mat, result detector.Result) []BoundingBox {
	if result.Empty() {
		return nil
	}

	boxes := make([]BoundingBox, 0, len(result.Hands))
	for i := range result.Hands {
		hand := &result.Hands[i]

		box := BoundingBoxOf(hand, img.Cols(), img.Rows(), o.Margin)
		gocv.Rectangle(img, box.Rect(), o.BoxColor, o.BoxThickness)
		gocv.PutText(img, o.Label(hand), image.Pt(box.XMin, box.YMin-labelOffset),
			o.Font.Face, o.Font.Scale, o.Font.Color, o.Font.Thickness)

		DrawLandmarks(img, hand, o.Connections, o.LandmarkStyles, o.ConnectionStyles)
		boxes = append(boxes, box)
	}
	return boxes
}

// Label returns the text drawn above a hand's box.
func (o *Overlay) Label(hand *detector.HandLandmarks) string {
	if !o.LabelHandedness || hand.Handedness == "" {
		return DefaultLabel
	}
	return fmt.Sprintf("%s %.2f", hand.Handedness, hand.Score)
}
