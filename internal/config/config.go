// Package config provides configuration for the handtracker command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ayusman/handtracker/internal/app"
	"github.com/ayusman/handtracker/internal/capture"
	"github.com/ayusman/handtracker/internal/detector"
)

// Environment variables read by Load.
const (
	EnvCamera          = "HANDTRACKER_CAMERA"
	EnvWidth           = "HANDTRACKER_WIDTH"
	EnvHeight          = "HANDTRACKER_HEIGHT"
	EnvFPS             = "HANDTRACKER_FPS"
	EnvDetector        = "HANDTRACKER_DETECTOR"
	EnvModel           = "HANDTRACKER_MODEL"
	EnvORTLib          = "HANDTRACKER_ORT_LIB"
	EnvPython          = "HANDTRACKER_PYTHON"
	EnvLabelHandedness = "HANDTRACKER_LABEL_HANDEDNESS"
)

// DetectorKind selects the hand detection backend.
type DetectorKind string

const (
	DetectorAuto      DetectorKind = "auto"
	DetectorMediaPipe DetectorKind = "mediapipe"
	DetectorONNX      DetectorKind = "onnx"
)

// ErrInvalid is wrapped by every error returned from Load and Validate.
var ErrInvalid = errors.New("invalid configuration")

// Config is the full runtime configuration.
type Config struct {
	CameraID        int
	Width           int
	Height          int
	FPS             int
	Detector        DetectorKind
	ModelPath       string
	ORTLibPath      string
	Python          string
	LabelHandedness bool
	PollInterval    time.Duration
	Detection       detector.Config
}

// Default returns the configuration used when no environment overrides are set.
func Default() Config {
	onnx := detector.DefaultONNXOptions()
	return Config{
		CameraID:     0,
		Width:        capture.DefaultWidth,
		Height:       capture.DefaultHeight,
		FPS:          capture.DefaultFPS,
		Detector:     DetectorAuto,
		ModelPath:    onnx.ModelPath,
		ORTLibPath:   onnx.SharedLibPath,
		PollInterval: app.DefaultPollInterval,
		Detection:    detector.DefaultConfig(),
	}
}

// Load returns Default overlaid with the HANDTRACKER_* environment variables.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv(EnvCamera); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil || id < 0 {
			return cfg, fmt.Errorf("%w: %s=%q is not a camera index", ErrInvalid, EnvCamera, v)
		}
		cfg.CameraID = id
	}

	for _, f := range []struct {
		key string
		dst *int
	}{
		{EnvWidth, &cfg.Width},
		{EnvHeight, &cfg.Height},
		{EnvFPS, &cfg.FPS},
	} {
		v := getenv(f.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("%w: %s=%q is not a positive integer", ErrInvalid, f.key, v)
		}
		*f.dst = n
	}

	if v := getenv(EnvDetector); v != "" {
		kind := DetectorKind(v)
		switch kind {
		case DetectorAuto, DetectorMediaPipe, DetectorONNX:
			cfg.Detector = kind
		default:
			return cfg, fmt.Errorf("%w: %s=%q, want auto, mediapipe or onnx", ErrInvalid, EnvDetector, v)
		}
	}

	if v := getenv(EnvModel); v != "" {
		cfg.ModelPath = v
	}
	if v := getenv(EnvORTLib); v != "" {
		cfg.ORTLibPath = v
	}
	if v := getenv(EnvPython); v != "" {
		cfg.Python = v
	}

	if v := getenv(EnvLabelHandedness); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return cfg, fmt.Errorf("%w: %s=%q is not a boolean", ErrInvalid, EnvLabelHandedness, v)
		}
		cfg.LabelHandedness = b
	}

	return cfg, cfg.Validate()
}

// Validate checks that the configuration can be used to start the tracker.
func (c Config) Validate() error {
	if c.CameraID < 0 {
		return fmt.Errorf("%w: camera index %d", ErrInvalid, c.CameraID)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: resolution %dx%d", ErrInvalid, c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps %d", ErrInvalid, c.FPS)
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("%w: poll interval must be positive, got %v", ErrInvalid, c.PollInterval)
	}
	if err := c.Detection.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// CameraOptions returns the capture settings requested from the device.
func (c Config) CameraOptions() []capture.Option {
	return []capture.Option{
		capture.WithResolution(c.Width, c.Height),
		capture.WithFPS(c.FPS),
	}
}

// ONNXOptions returns the ONNX backend options for this configuration.
func (c Config) ONNXOptions() detector.ONNXOptions {
	opts := detector.DefaultONNXOptions()
	opts.ModelPath = c.ModelPath
	opts.SharedLibPath = c.ORTLibPath
	return opts
}

// MediaPipeOptions returns the MediaPipe backend options for this configuration.
func (c Config) MediaPipeOptions() detector.MediaPipeOptions {
	return detector.MediaPipeOptions{Python: c.Python}
}

// TrackerConfig returns the loop configuration.
func (c Config) TrackerConfig() app.Config {
	cfg := app.DefaultConfig()
	cfg.PollInterval = c.PollInterval
	return cfg
}
