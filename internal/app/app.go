// Package app runs the hand tracking loop: capture, mirror, detect, draw, display.
package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/ayusman/handtracker/internal/capture"
	"github.com/ayusman/handtracker/internal/detector"
	"github.com/ayusman/handtracker/internal/render"
)

// Loop defaults.
const (
	// DefaultWindowTitle is the title of the display window.
	DefaultWindowTitle = "Hand Tracker"
	// DefaultPollInterval bounds how long each iteration waits for a key press.
	DefaultPollInterval = time.Millisecond
	// KeyEscape is the key code reported for the Esc key.
	KeyEscape = 27
)

// Config holds configuration options for the tracking loop.
type Config struct {
	WindowTitle  string
	PollInterval time.Duration
	// QuitKeys are the key codes that stop the loop.
	QuitKeys []int
}

// DefaultConfig returns the loop configuration used by the command.
func DefaultConfig() Config {
	return Config{
		WindowTitle:  DefaultWindowTitle,
		PollInterval: DefaultPollInterval,
		QuitKeys:     []int{'q', KeyEscape},
	}
}

// StopReason records why the loop left the running state.
type StopReason int

const (
	// NotStopped means the loop is still running.
	NotStopped StopReason = iota
	// StopQuitKey means a quit key was pressed.
	StopQuitKey
	// StopReadFailure means the camera stopped delivering frames.
	StopReadFailure
	// StopDetectorError means hand detection failed.
	StopDetectorError
	// StopCanceled means the context was canceled.
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopQuitKey:
		return "quit key"
	case StopReadFailure:
		return "frame read failure"
	case StopDetectorError:
		return "detector error"
	case StopCanceled:
		return "canceled"
	}
	return "running"
}

// Stats summarizes one run of the loop.
type Stats struct {
	Frames  int
	Hands   int
	Reason  StopReason
	Elapsed time.Duration
}

// FPS returns the average processed frames per second.
func (s Stats) FPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Frames) / s.Elapsed.Seconds()
}

// Tracker owns the camera for the duration of Run and ties the pipeline together.
type Tracker struct {
	config     Config
	camera     capture.Camera
	detector   detector.Detector
	overlay    *render.Overlay
	newDisplay DisplayFactory
}

// New creates a Tracker. The camera is opened by Run, not here.
func New(config Config, camera capture.Camera, det detector.Detector, overlay *render.Overlay, newDisplay DisplayFactory) *Tracker {
	if config.WindowTitle == "" {
		config.WindowTitle = DefaultWindowTitle
	}
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if len(config.QuitKeys) == 0 {
		config.QuitKeys = DefaultConfig().QuitKeys
	}
	if overlay == nil {
		overlay = render.NewOverlay()
	}
	if newDisplay == nil {
		newDisplay = NewWindowDisplay
	}

	return &Tracker{
		config:     config,
		camera:     camera,
		detector:   det,
		overlay:    overlay,
		newDisplay: newDisplay,
	}
}

// Run opens the camera and processes frames until a quit key, a read
// failure, a detector error or ctx cancellation. The camera and display are
// released exactly once on every path. If the camera cannot be opened Run
// returns an error wrapping capture.ErrDeviceUnavailable without reading a
// frame or creating the display.
func (t *Tracker) Run(ctx context.Context) (Stats, error) {
	var stats Stats

	if err := t.camera.Open(); err != nil {
		return stats, fmt.Errorf("open camera: %w", err)
	}
	log.Printf("Camera opened (requested %d fps)", t.camera.FPS())
	defer func() {
		if err := t.camera.Close(); err != nil {
			log.Printf("Error closing camera: %v", err)
		}
	}()

	display := t.newDisplay(t.config.WindowTitle)
	defer func() {
		if err := display.Close(); err != nil {
			log.Printf("Error closing display: %v", err)
		}
	}()

	log.Println("Detection loop started")
	start := time.Now()

	err := t.runLoop(ctx, display, &stats)

	stats.Elapsed = time.Since(start)
	log.Printf("Detection loop stopped (%s): %d frames, %d hands, %.1f fps",
		stats.Reason, stats.Frames, stats.Hands, stats.FPS())

	return stats, err
}
