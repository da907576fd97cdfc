package detector

import (
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"gocv.io/x/gocv"
)

func near(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestDecodeHand(t *testing.T) {
	raw := make([]float32, NumLandmarks*3)
	for i := 0; i < NumLandmarks; i++ {
		raw[i*3] = 112  // centre x of a 224 input
		raw[i*3+1] = 56 // quarter height
		raw[i*3+2] = -22.4
	}

	t.Run("right hand", func(t *testing.T) {
		hand := decodeHand(raw, 0.8, 224)

		if hand.Handedness != "Right" {
			t.Errorf("Handedness = %q, want Right", hand.Handedness)
		}
		if !near(hand.Score, 0.8, 1e-6) {
			t.Errorf("Score = %v, want 0.8", hand.Score)
		}
		if !near(hand.Points[Wrist].X, 0.5, 1e-6) {
			t.Errorf("Wrist.X = %v, want 0.5", hand.Points[Wrist].X)
		}
		if !near(hand.Points[PinkyTip].Y, 0.25, 1e-6) {
			t.Errorf("PinkyTip.Y = %v, want 0.25", hand.Points[PinkyTip].Y)
		}
		if !near(hand.Points[IndexTip].Z, -0.1, 1e-6) {
			t.Errorf("IndexTip.Z = %v, want -0.1", hand.Points[IndexTip].Z)
		}
	})

	t.Run("left hand", func(t *testing.T) {
		hand := decodeHand(raw, 0.1, 224)

		if hand.Handedness != "Left" {
			t.Errorf("Handedness = %q, want Left", hand.Handedness)
		}
		if !near(hand.Score, 0.9, 1e-6) {
			t.Errorf("Score = %v, want 0.9", hand.Score)
		}
	})

	t.Run("short output leaves remaining points zero", func(t *testing.T) {
		hand := decodeHand(raw[:6], 0.9, 224)

		if !near(hand.Points[ThumbCMC].X, 0.5, 1e-6) {
			t.Errorf("ThumbCMC.X = %v, want 0.5", hand.Points[ThumbCMC].X)
		}
		if hand.Points[ThumbMCP] != (Point3D{}) {
			t.Errorf("ThumbMCP = %+v, want zero", hand.Points[ThumbMCP])
		}
	})
}

func TestONNXDetector_Accept(t *testing.T) {
	tests := []struct {
		name     string
		static   bool
		tracking bool
		presence float32
		want     bool
	}{
		{name: "detect above threshold", presence: 0.75, want: true},
		{name: "detect below threshold", presence: 0.6, want: false},
		{name: "tracking keeps weaker hand", tracking: true, presence: 0.6, want: true},
		{name: "tracking drops below tracking threshold", tracking: true, presence: 0.4, want: false},
		{name: "static mode ignores tracking", static: true, tracking: true, presence: 0.6, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.StaticImageMode = tt.static
			d := &ONNXDetector{config: cfg, tracking: tt.tracking}

			if got := d.accept(tt.presence); got != tt.want {
				t.Errorf("accept(%v) = %v, want %v", tt.presence, got, tt.want)
			}
		})
	}
}

func TestSigmoid(t *testing.T) {
	if got := sigmoid(0); !near(float64(got), 0.5, 1e-6) {
		t.Errorf("sigmoid(0) = %v, want 0.5", got)
	}
	if got := sigmoid(4); got <= 0.98 {
		t.Errorf("sigmoid(4) = %v, want > 0.98", got)
	}
	if got := sigmoid(-4); got >= 0.02 {
		t.Errorf("sigmoid(-4) = %v, want < 0.02", got)
	}
}

func TestRGBMatToImage(t *testing.T) {
	data := []byte{
		10, 20, 30, 40, 50, 60,
		70, 80, 90, 100, 110, 120,
	}
	mat, err := gocv.NewMatFromBytes(2, 2, gocv.MatTypeCV8UC3, data)
	if err != nil {
		t.Fatalf("NewMatFromBytes() error = %v", err)
	}
	defer mat.Close()

	img, err := rgbMatToImage(mat)
	if err != nil {
		t.Fatalf("rgbMatToImage() error = %v", err)
	}

	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Errorf("Bounds() = %v, want 2x2", img.Bounds())
	}
	if got, want := img.RGBAAt(0, 0), (color.RGBA{R: 10, G: 20, B: 30, A: 255}); got != want {
		t.Errorf("pixel (0,0) = %v, want %v", got, want)
	}
	if got, want := img.RGBAAt(1, 1), (color.RGBA{R: 100, G: 110, B: 120, A: 255}); got != want {
		t.Errorf("pixel (1,1) = %v, want %v", got, want)
	}
}

func TestRGBMatToImage_RejectsGray(t *testing.T) {
	mat := gocv.NewMatWithSize(2, 2, gocv.MatTypeCV8UC1)
	defer mat.Close()

	if _, err := rgbMatToImage(mat); err == nil {
		t.Error("expected error for single-channel Mat")
	}
}

func TestFillInput(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
		img.Pix[i+1] = 0
		img.Pix[i+2] = 51
		img.Pix[i+3] = 255
	}

	const size = 4
	dst := make([]float32, size*size*3)
	fillInput(dst, img, size)

	for p := 0; p < size*size; p++ {
		r, g, b := float64(dst[p*3]), float64(dst[p*3+1]), float64(dst[p*3+2])
		if !near(r, 1.0, 1e-3) || !near(g, 0.0, 1e-3) || !near(b, 0.2, 1e-3) {
			t.Fatalf("pixel %d = (%v, %v, %v), want (1, 0, 0.2)", p, r, g, b)
		}
	}
}

func TestNewONNXDetector_MissingModel(t *testing.T) {
	opts := DefaultONNXOptions()
	opts.ModelPath = filepath.Join(t.TempDir(), "missing.onnx")

	if _, err := NewONNXDetector(DefaultConfig(), opts); err == nil {
		t.Error("expected error for missing model")
	}
}

func TestNewONNXDetector_InvalidInputSize(t *testing.T) {
	opts := DefaultONNXOptions()
	opts.InputSize = 0

	if _, err := NewONNXDetector(DefaultConfig(), opts); err == nil {
		t.Error("expected error for zero input size")
	}
}

func TestONNXDetector_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping model integration test in short mode")
	}

	opts := DefaultONNXOptions()
	if p := os.Getenv("HANDTRACKER_MODEL"); p != "" {
		opts.ModelPath = p
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		t.Skipf("hand landmark model not available: %v", err)
	}
	if _, err := os.Stat(opts.SharedLibPath); err != nil {
		t.Skipf("onnxruntime library not available: %v", err)
	}

	d, err := NewONNXDetector(DefaultConfig(), opts)
	if err != nil {
		t.Fatalf("NewONNXDetector() error = %v", err)
	}
	defer d.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	// A black frame has no hand in it.
	result, err := d.Detect(&frame)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if !result.Empty() {
		t.Errorf("Detect() on black frame = %d hands, want 0", len(result.Hands))
	}
}
