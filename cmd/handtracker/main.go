package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ayusman/handtracker/internal/app"
	"github.com/ayusman/handtracker/internal/capture"
	"github.com/ayusman/handtracker/internal/config"
	"github.com/ayusman/handtracker/internal/detector"
	"github.com/ayusman/handtracker/internal/render"
	"github.com/google/uuid"
)

func main() {
	os.Exit(run())
}

func run() int {
	runID := uuid.New().String()[:8]
	log.SetPrefix(fmt.Sprintf("[%s] ", runID))

	app.PrintBanner(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Configuration error: %v", err)
		return 2
	}

	det, err := openDetector(cfg.Detector, openers(cfg))
	if err != nil {
		log.Printf("No hand detector available: %v", err)
		return 1
	}
	defer func() {
		if err := det.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}()

	overlay := render.NewOverlay()
	overlay.LabelHandedness = cfg.LabelHandedness

	cam := capture.NewCamera(cfg.CameraID, cfg.CameraOptions()...)
	tracker := app.New(cfg.TrackerConfig(), cam, det, overlay, func(title string) app.Display {
		app.PrintInstructions(os.Stdout)
		return app.NewWindowDisplay(title)
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if _, err := tracker.Run(ctx); err != nil {
		app.PrintError(os.Stdout, err)
		// A dropped camera ends the session normally.
		if !errors.Is(err, capture.ErrFrameRead) {
			return 1
		}
	}
	return 0
}

// opener constructs one detection backend.
type opener func() (detector.Detector, error)

// openers returns the backend constructors for cfg, keyed by kind.
func openers(cfg config.Config) map[config.DetectorKind]opener {
	return map[config.DetectorKind]opener{
		config.DetectorMediaPipe: func() (detector.Detector, error) {
			d, err := detector.NewMediaPipeDetector(cfg.Detection, cfg.MediaPipeOptions())
			if err != nil {
				return nil, err
			}
			if err := d.Probe(); err != nil {
				d.Close()
				return nil, err
			}
			log.Println("Using MediaPipe hand detection")
			return d, nil
		},
		config.DetectorONNX: func() (detector.Detector, error) {
			d, err := detector.NewONNXDetector(cfg.Detection, cfg.ONNXOptions())
			if err != nil {
				return nil, err
			}
			log.Println("Using ONNX hand landmark detection")
			return d, nil
		},
	}
}

// autoOrder is the order backends are tried in when the kind is auto.
var autoOrder = []config.DetectorKind{config.DetectorMediaPipe, config.DetectorONNX}

// openDetector opens the requested backend. For auto it falls back through
// autoOrder and reports every failure if none can be opened.
func openDetector(kind config.DetectorKind, available map[config.DetectorKind]opener) (detector.Detector, error) {
	if kind != config.DetectorAuto {
		open, ok := available[kind]
		if !ok {
			return nil, fmt.Errorf("unknown detector %q", kind)
		}
		return open()
	}

	var errs []error
	for _, k := range autoOrder {
		open, ok := available[k]
		if !ok {
			continue
		}
		d, err := open()
		if err == nil {
			return d, nil
		}
		log.Printf("%s detector unavailable: %v", k, err)
		errs = append(errs, fmt.Errorf("%s: %w", k, err))
	}
	if len(errs) == 0 {
		return nil, errors.New("no detector backends configured")
	}
	return nil, errors.Join(errs...)
}
