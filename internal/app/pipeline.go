package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/ayusman/handtracker/internal/capture"
	"gocv.io/x/gocv"
)

// runLoop is the RUNNING state. It returns when the loop stops, with
// stats.Reason set.
//
// Each iteration:
// 1. Read a frame (a failure stops the loop)
// 2. Mirror it so the view matches the user's movement
// 3. Convert the mirrored frame to RGB and run hand detection on it
// 4. Draw boxes, labels and skeletons on the mirrored BGR frame
// 5. Show it and poll for a quit key for at most PollInterval
func (t *Tracker) runLoop(ctx context.Context, display Display, stats *Stats) error {
	for {
		select {
		case <-ctx.Done():
			stats.Reason = StopCanceled
			return nil
		default:
		}

		frame, err := t.camera.ReadFrame()
		if err != nil {
			stats.Reason = StopReadFailure
			if !errors.Is(err, capture.ErrFrameRead) {
				err = fmt.Errorf("%w: %v", capture.ErrFrameRead, err)
			}
			return err
		}

		annotated, hands, err := t.processFrame(frame)
		frame.Close()
		if err != nil {
			stats.Reason = StopDetectorError
			return err
		}

		stats.Frames++
		stats.Hands += hands

		display.Show(annotated)
		annotated.Close()

		if t.isQuitKey(display.PollKey(t.config.PollInterval)) {
			stats.Reason = StopQuitKey
			return nil
		}
	}
}

// processFrame mirrors frame, detects hands on the RGB version of the
// mirrored image and draws the overlay onto the mirrored BGR copy. frame
// itself is left untouched. The caller closes the returned Mat.
func (t *Tracker) processFrame(frame *gocv.Mat) (gocv.Mat, int, error) {
	mirrored := capture.Mirror(*frame)

	rgb := capture.ToRGB(mirrored)
	result, err := t.detector.Detect(&rgb)
	rgb.Close()
	if err != nil {
		mirrored.Close()
		return gocv.Mat{}, 0, fmt.Errorf("detect hands: %w", err)
	}

	t.overlay.Draw(&mirrored, result)
	return mirrored, len(result.Hands), nil
}

// isQuitKey reports whether a polled key code is one of the quit keys.
// HighGUI may set modifier bits above the low byte.
func (t *Tracker) isQuitKey(key int) bool {
	if key < 0 {
		return false
	}
	return slices.Contains(t.config.QuitKeys, key&0xFF)
}
