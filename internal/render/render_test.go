package render

import (
	"bytes"
	"image"
	"math"
	"math/rand"
	"testing"

	"github.com/ayusman/handtracker/internal/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocv.io/x/gocv"
)

func TestBoundingBoxOf_CenteredHand(t *testing.T) {
	hand := detector.CenteredLandmarks(0.5, 0.5)

	box := BoundingBoxOf(&hand, 640, 480, DefaultBoxMargin)

	assert.Equal(t, BoundingBox{XMin: 300, YMin: 220, XMax: 340, YMax: 260}, box)
	assert.Equal(t, 40, box.Width())
	assert.Equal(t, 40, box.Height())
	assert.Equal(t, image.Pt(320, 240), image.Pt((box.XMin+box.XMax)/2, (box.YMin+box.YMax)/2))
}

func TestBoundingBoxOf_MatchesMinMax(t *testing.T) {
	rng := rand.New(rand.NewSource(7))

	hands := []detector.HandLandmarks{
		detector.ThumbsUpLandmarks(),
		detector.OpenPalmLandmarks(),
	}
	for i := 0; i < 50; i++ {
		var h detector.HandLandmarks
		for j := range h.Points {
			h.Points[j] = detector.Point3D{X: rng.Float64(), Y: rng.Float64()}
		}
		hands = append(hands, h)
	}

	sizes := []image.Point{{640, 480}, {1280, 720}, {320, 240}}

	for _, hand := range hands {
		for _, size := range sizes {
			minX, minY := math.Inf(1), math.Inf(1)
			maxX, maxY := math.Inf(-1), math.Inf(-1)
			for _, p := range hand.Points {
				minX = math.Min(minX, p.X*float64(size.X))
				minY = math.Min(minY, p.Y*float64(size.Y))
				maxX = math.Max(maxX, p.X*float64(size.X))
				maxY = math.Max(maxY, p.Y*float64(size.Y))
			}

			box := BoundingBoxOf(&hand, size.X, size.Y, DefaultBoxMargin)

			require.LessOrEqual(t, box.XMin, box.XMax)
			require.LessOrEqual(t, box.YMin, box.YMax)
			require.Equal(t, int(minX-20), box.XMin)
			require.Equal(t, int(minY-20), box.YMin)
			require.Equal(t, int(maxX+20), box.XMax)
			require.Equal(t, int(maxY+20), box.YMax)
		}
	}
}

func TestBoundingBoxOf_NotClamped(t *testing.T) {
	hand := detector.CenteredLandmarks(0, 0)
	hand.Points[detector.IndexTip] = detector.Point3D{X: 1, Y: 1}

	box := BoundingBoxOf(&hand, 100, 100, DefaultBoxMargin)

	assert.Equal(t, BoundingBox{XMin: -20, YMin: -20, XMax: 120, YMax: 120}, box)
}

func TestBoundingBoxOf_TruncatesTowardZero(t *testing.T) {
	// 0.155 * 100 - 20 is about -4.5, truncated to -4 rather than floored to -5.
	hand := detector.CenteredLandmarks(0.155, 0.5)

	box := BoundingBoxOf(&hand, 100, 100, DefaultBoxMargin)

	assert.Equal(t, -4, box.XMin)
	assert.Equal(t, 35, box.XMax)
}

func TestBoundingBox_Rect(t *testing.T) {
	box := BoundingBox{XMin: -5, YMin: 10, XMax: 50, YMax: 60}
	assert.Equal(t, image.Rect(-5, 10, 50, 60), box.Rect())
}

func TestDefaultStyles(t *testing.T) {
	landmarks := DefaultLandmarkStyles()
	require.Len(t, landmarks, detector.NumLandmarks)
	assert.Equal(t, Red, landmarks[detector.Wrist].Color)
	assert.Equal(t, Red, landmarks[detector.MiddleMCP].Color)
	assert.Equal(t, Peach, landmarks[detector.ThumbTip].Color)
	assert.Equal(t, Blue, landmarks[detector.PinkyTip].Color)
	for _, s := range landmarks {
		assert.Equal(t, -1, s.Thickness)
		assert.Equal(t, 5, s.Radius)
	}

	connections := DefaultConnectionStyles()
	require.Len(t, connections, len(detector.Connections))
	assert.Equal(t, Gray, connections[detector.Connection{From: detector.Wrist, To: detector.ThumbCMC}].Color)
	assert.Equal(t, Yellow, connections[detector.Connection{From: detector.MiddleDIP, To: detector.MiddleTip}].Color)
}

func TestToPixel(t *testing.T) {
	tests := []struct {
		name   string
		p      detector.Point3D
		want   image.Point
		wantOK bool
	}{
		{name: "origin", p: detector.Point3D{X: 0, Y: 0}, want: image.Pt(0, 0), wantOK: true},
		{name: "far corner stays inside", p: detector.Point3D{X: 1, Y: 1}, want: image.Pt(639, 479), wantOK: true},
		{name: "centre", p: detector.Point3D{X: 0.5, Y: 0.5}, want: image.Pt(320, 240), wantOK: true},
		{name: "truncates", p: detector.Point3D{X: 0.0999, Y: 0.9999}, want: image.Pt(63, 479), wantOK: true},
		{name: "left of frame", p: detector.Point3D{X: -0.01, Y: 0.5}, wantOK: false},
		{name: "below frame", p: detector.Point3D{X: 0.5, Y: 1.2}, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hand detector.HandLandmarks
			hand.Points[detector.IndexTip] = tt.p

			got, ok := toPixel(&hand, detector.IndexTip, 640, 480)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestOverlay_Label(t *testing.T) {
	hand := detector.OpenPalmLandmarks()
	o := NewOverlay()

	assert.Equal(t, "Hand", o.Label(&hand))

	o.LabelHandedness = true
	assert.Equal(t, "Right 0.95", o.Label(&hand))

	hand.Handedness = ""
	assert.Equal(t, "Hand", o.Label(&hand))
}

func TestOverlay_Draw_NoHands(t *testing.T) {
	img := gocv.NewMatWithSize(120, 160, gocv.MatTypeCV8UC3)
	defer img.Close()
	before := img.ToBytes()

	boxes := NewOverlay().Draw(&img, detector.Result{})

	assert.Empty(t, boxes)
	assert.True(t, bytes.Equal(before, img.ToBytes()), "frame should be untouched")
}

func TestOverlay_Draw_Hand(t *testing.T) {
	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	hand := detector.OpenPalmLandmarks()
	boxes := NewOverlay().Draw(&img, detector.Result{Hands: []detector.HandLandmarks{hand}})

	require.Len(t, boxes, 1)
	assert.Equal(t, BoundingBoxOf(&hand, 640, 480, DefaultBoxMargin), boxes[0])

	// The box outline is pure green in BGR order.
	box := boxes[0]
	px := img.GetVecbAt(box.YMin+(box.YMax-box.YMin)/2, box.XMin)
	assert.Equal(t, []uint8{0, 255, 0}, []uint8{px[0], px[1], px[2]})

	// The wrist dot is drawn in the palm color.
	wrist := hand.Pixel(detector.Wrist, 640, 480)
	px = img.GetVecbAt(wrist.Y, wrist.X)
	assert.Equal(t, []uint8{Red.B, Red.G, Red.R}, []uint8{px[0], px[1], px[2]})
}

func TestOverlay_Draw_LabelAboveBox(t *testing.T) {
	img := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	hand := detector.OpenPalmLandmarks()
	o := NewOverlay()
	boxes := o.Draw(&img, detector.Result{Hands: []detector.HandLandmarks{hand}})
	require.Len(t, boxes, 1)
	box := boxes[0]

	size, baseline := gocv.GetTextSizeWithBaseline(DefaultLabel, o.Font.Face, o.Font.Scale, o.Font.Thickness)
	baselineY := box.YMin - labelOffset
	top := baselineY - size.Y
	require.Greater(t, top, 1, "label must fit inside the frame for this fixture")

	// Everything green above the box outline belongs to the label.
	found := false
	for y := 0; y < box.YMin-o.BoxThickness; y++ {
		for x := 0; x < img.Cols(); x++ {
			px := img.GetVecbAt(y, x)
			if px[0] != 0 || px[1] != 255 || px[2] != 0 {
				continue
			}
			found = true
			assert.GreaterOrEqual(t, y, top-o.Font.Thickness, "label pixel at (%d,%d) too high", x, y)
			assert.LessOrEqual(t, y, baselineY+baseline, "label pixel at (%d,%d) too low", x, y)
			assert.GreaterOrEqual(t, x, box.XMin-o.Font.Thickness, "label pixel at (%d,%d) left of the box", x, y)
			assert.LessOrEqual(t, x, box.XMin+size.X+o.Font.Thickness, "label pixel at (%d,%d) past the text", x, y)
		}
	}
	assert.True(t, found, "no label pixels in the band above the box")
}

func TestDrawLandmarks_SkipsOutOfFrame(t *testing.T) {
	img := gocv.NewMatWithSize(60, 80, gocv.MatTypeCV8UC3)
	defer img.Close()
	before := img.ToBytes()

	hand := detector.CenteredLandmarks(1.5, -0.5)
	DrawLandmarks(&img, &hand, detector.Connections, DefaultLandmarkStyles(), DefaultConnectionStyles())

	assert.True(t, bytes.Equal(before, img.ToBytes()), "nothing should be drawn for off-frame landmarks")
}

func TestDrawLandmarks_NoStylesDrawsNothing(t *testing.T) {
	img := gocv.NewMatWithSize(60, 80, gocv.MatTypeCV8UC3)
	defer img.Close()
	before := img.ToBytes()

	hand := detector.OpenPalmLandmarks()
	DrawLandmarks(&img, &hand, detector.Connections, nil, nil)

	assert.True(t, bytes.Equal(before, img.ToBytes()))
}
