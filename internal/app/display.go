package app

import (
	"time"

	"gocv.io/x/gocv"
)

// Display is the on-screen sink the tracker shows frames in.
type Display interface {
	// Show presents img. The display must not keep a reference to img.
	Show(img gocv.Mat)

	// PollKey waits up to timeout for a key press and returns its code,
	// or -1 when no key was pressed.
	PollKey(timeout time.Duration) int

	// Close tears the display down.
	Close() error
}

// DisplayFactory creates the display once the camera has been opened.
type DisplayFactory func(title string) Display

// WindowDisplay shows frames in an OpenCV HighGUI window.
type WindowDisplay struct {
	window *gocv.Window
}

// NewWindowDisplay opens a HighGUI window with the given title.
func NewWindowDisplay(title string) Display {
	return &WindowDisplay{window: gocv.NewWindow(title)}
}

// Show implements Display.
func (d *WindowDisplay) Show(img gocv.Mat) {
	d.window.IMShow(img)
}

// PollKey implements Display. HighGUI only waits in whole milliseconds, so
// the timeout is rounded up to at least 1ms.
func (d *WindowDisplay) PollKey(timeout time.Duration) int {
	ms := int((timeout + time.Millisecond - 1) / time.Millisecond)
	if ms < 1 {
		ms = 1
	}
	return d.window.WaitKey(ms)
}

// Close implements Display.
func (d *WindowDisplay) Close() error {
	return d.window.Close()
}
