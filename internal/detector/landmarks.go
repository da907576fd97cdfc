// Package detector provides hand-landmark detection backends and their result types.
package detector

import "image"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a single landmark. X and Y are normalized to [0,1] relative to
// the width and height of the frame the detector saw; Z is relative depth
// with the wrist as reference.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected for one hand.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Pixel scales landmark i to pixel coordinates of a width x height frame.
// Coordinates are truncated, not clamped.
func (h *HandLandmarks) Pixel(i, width, height int) image.Point {
	p := h.Points[i]
	return image.Pt(int(p.X*float64(width)), int(p.Y*float64(height)))
}

// InFrame reports whether landmark i lies inside the normalized [0,1] range.
func (h *HandLandmarks) InFrame(i int) bool {
	p := h.Points[i]
	return p.X >= 0 && p.X <= 1 && p.Y >= 0 && p.Y <= 1
}

// Result is the output of one Detect call.
// An empty Hands slice means no hand was found, which is not an error.
type Result struct {
	Hands []HandLandmarks `json:"hands"`
}

// Empty reports whether no hands were detected.
func (r Result) Empty() bool {
	return len(r.Hands) == 0
}
