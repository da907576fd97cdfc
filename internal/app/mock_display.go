package app

import (
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// MockDisplay records shown frames and replays scripted key presses for testing.
type MockDisplay struct {
	mu       sync.Mutex
	title    string
	frames   []gocv.Mat
	keys     []int
	timeouts []time.Duration
	closed   int
}

// NewMockDisplay creates a MockDisplay. Each PollKey call returns the next
// key from keys, then -1 once they run out.
func NewMockDisplay(keys ...int) *MockDisplay {
	return &MockDisplay{keys: keys}
}

// Factory returns a DisplayFactory that hands out this display.
func (d *MockDisplay) Factory() DisplayFactory {
	return func(title string) Display {
		d.mu.Lock()
		defer d.mu.Unlock()
		d.title = title
		return d
	}
}

// Show keeps a copy of img.
func (d *MockDisplay) Show(img gocv.Mat) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames = append(d.frames, img.Clone())
}

// PollKey returns the next scripted key.
func (d *MockDisplay) PollKey(timeout time.Duration) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.timeouts = append(d.timeouts, timeout)
	if len(d.keys) == 0 {
		return -1
	}
	key := d.keys[0]
	d.keys = d.keys[1:]
	return key
}

// Close counts calls; recorded frames stay available until Release.
func (d *MockDisplay) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

// Title returns the title the display was created with.
func (d *MockDisplay) Title() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.title
}

// Frames returns the frames shown so far.
func (d *MockDisplay) Frames() []gocv.Mat {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// Timeouts returns the timeout passed to every PollKey call.
func (d *MockDisplay) Timeouts() []time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timeouts
}

// CloseCalls returns how many times Close was called.
func (d *MockDisplay) CloseCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// Release frees the recorded frames.
func (d *MockDisplay) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.frames {
		d.frames[i].Close()
	}
	d.frames = nil
}
