package detector

import (
	"image"
	"log"
	"os"
	"sync"

	"github.com/chewxy/math32"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	ort "github.com/yalue/onnxruntime_go"
	"gocv.io/x/gocv"
)

// ONNXOptions describes the hand-landmark model run by ONNXDetector.
// The defaults match MediaPipe's hand_landmark model exported with tf2onnx.
type ONNXOptions struct {
	ModelPath     string
	SharedLibPath string

	// InputSize is the square input edge in pixels.
	InputSize int

	InputName        string
	LandmarksOutput  string
	PresenceOutput   string
	HandednessOutput string

	// ScoresAreLogits applies a sigmoid to presence and handedness outputs.
	ScoresAreLogits bool

	// Threads for intra-op parallelism; 0 lets onnxruntime decide.
	Threads int
}

// DefaultONNXOptions returns the tensor layout of the stock hand_landmark export.
func DefaultONNXOptions() ONNXOptions {
	return ONNXOptions{
		ModelPath:        "models/hand_landmark.onnx",
		SharedLibPath:    defaultSharedLibPath(),
		InputSize:        224,
		InputName:        "input_1",
		LandmarksOutput:  "Identity",
		PresenceOutput:   "Identity_1",
		HandednessOutput: "Identity_2",
	}
}

func defaultSharedLibPath() string {
	if p := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); p != "" {
		return p
	}
	return "/usr/local/lib/libonnxruntime.so"
}

// ONNXDetector implements Detector with an ONNX Runtime session running a
// hand-landmark model over the whole frame. There is no palm-detection
// stage, so it reports at most one hand per frame.
type ONNXDetector struct {
	config     Config
	opts       ONNXOptions
	session    *ort.AdvancedSession
	input      *ort.Tensor[float32]
	landmarks  *ort.Tensor[float32]
	presence   *ort.Tensor[float32]
	handedness *ort.Tensor[float32]
	tracking   bool
	mu         sync.Mutex
}

// NewONNXDetector loads the model and allocates its tensors.
func NewONNXDetector(config Config, opts ONNXOptions) (*ONNXDetector, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if opts.InputSize <= 0 {
		return nil, errors.Errorf("invalid model input size %d", opts.InputSize)
	}
	if _, err := os.Stat(opts.ModelPath); err != nil {
		return nil, errors.Wrap(err, "hand landmark model not found")
	}

	if !ort.IsInitialized() {
		if _, err := os.Stat(opts.SharedLibPath); err != nil {
			return nil, errors.Wrapf(err, "ONNX Runtime library not found at %s", opts.SharedLibPath)
		}
		ort.SetSharedLibraryPath(opts.SharedLibPath)
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, errors.Wrap(err, "initialize ONNX Runtime environment")
		}
	}

	d := &ONNXDetector{config: config, opts: opts}
	if err := d.allocate(); err != nil {
		d.release()
		return nil, err
	}

	log.Printf("Loaded ONNX hand landmark model %s", opts.ModelPath)
	return d, nil
}

func (d *ONNXDetector) allocate() error {
	var err error
	size := int64(d.opts.InputSize)

	if d.input, err = ort.NewEmptyTensor[float32](ort.NewShape(1, size, size, 3)); err != nil {
		return errors.Wrap(err, "create input tensor")
	}
	if d.landmarks, err = ort.NewEmptyTensor[float32](ort.NewShape(1, NumLandmarks*3)); err != nil {
		return errors.Wrap(err, "create landmarks tensor")
	}
	if d.presence, err = ort.NewEmptyTensor[float32](ort.NewShape(1, 1)); err != nil {
		return errors.Wrap(err, "create presence tensor")
	}
	if d.handedness, err = ort.NewEmptyTensor[float32](ort.NewShape(1, 1)); err != nil {
		return errors.Wrap(err, "create handedness tensor")
	}

	options, err := ort.NewSessionOptions()
	if err != nil {
		return errors.Wrap(err, "create session options")
	}
	defer options.Destroy()

	if d.opts.Threads > 0 {
		if err := options.SetIntraOpNumThreads(d.opts.Threads); err != nil {
			return errors.Wrap(err, "set intra-op threads")
		}
	}

	d.session, err = ort.NewAdvancedSession(
		d.opts.ModelPath,
		[]string{d.opts.InputName},
		[]string{d.opts.LandmarksOutput, d.opts.PresenceOutput, d.opts.HandednessOutput},
		[]ort.ArbitraryTensor{d.input},
		[]ort.ArbitraryTensor{d.landmarks, d.presence, d.handedness},
		options,
	)
	if err != nil {
		return errors.Wrap(err, "create ONNX session")
	}
	return nil
}

// Detect runs the landmark model on an RGB frame.
func (d *ONNXDetector) Detect(frame *gocv.Mat) (Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.session == nil {
		return Result{}, errors.New("detector is closed")
	}
	if frame == nil || frame.Empty() {
		return Result{}, errors.New("empty frame")
	}

	img, err := rgbMatToImage(*frame)
	if err != nil {
		return Result{}, err
	}
	fillInput(d.input.GetData(), img, d.opts.InputSize)

	if err := d.session.Run(); err != nil {
		return Result{}, errors.Wrap(err, "run hand landmark model")
	}

	presence := d.presence.GetData()[0]
	handedness := d.handedness.GetData()[0]
	if d.opts.ScoresAreLogits {
		presence = sigmoid(presence)
		handedness = sigmoid(handedness)
	}

	if !d.accept(presence) {
		d.tracking = false
		return Result{}, nil
	}
	d.tracking = !d.config.StaticImageMode

	hand := decodeHand(d.landmarks.GetData(), handedness, d.opts.InputSize)
	return Result{Hands: []HandLandmarks{hand}}, nil
}

// accept applies the detection threshold, or the lower tracking threshold
// while a hand from the previous frame is still being followed.
func (d *ONNXDetector) accept(presence float32) bool {
	threshold := d.config.MinConfidence
	if d.tracking && !d.config.StaticImageMode {
		threshold = d.config.MinTrackingConf
	}
	return float64(presence) >= threshold
}

// Close releases the session, its tensors and the runtime environment.
func (d *ONNXDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.release()
	if ort.IsInitialized() {
		return errors.Wrap(ort.DestroyEnvironment(), "destroy ONNX Runtime environment")
	}
	return nil
}

func (d *ONNXDetector) release() {
	if d.session != nil {
		d.session.Destroy()
		d.session = nil
	}
	for _, t := range []**ort.Tensor[float32]{&d.input, &d.landmarks, &d.presence, &d.handedness} {
		if *t != nil {
			(*t).Destroy()
			*t = nil
		}
	}
}

// decodeHand converts raw landmark output, given in model input pixels as
// x,y,z triplets, into normalized landmarks. handedness is the probability
// that the hand is a right hand.
func decodeHand(raw []float32, handedness float32, inputSize int) HandLandmarks {
	hand := HandLandmarks{Handedness: "Right", Score: float64(handedness)}
	if handedness < 0.5 {
		hand.Handedness = "Left"
		hand.Score = float64(1 - handedness)
	}

	size := float64(inputSize)
	for i := 0; i < NumLandmarks && i*3+2 < len(raw); i++ {
		hand.Points[i] = Point3D{
			X: float64(raw[i*3]) / size,
			Y: float64(raw[i*3+1]) / size,
			Z: float64(raw[i*3+2]) / size,
		}
	}
	return hand
}

// rgbMatToImage copies an 8-bit 3-channel RGB Mat into an image.RGBA.
// gocv's own ToImage assumes BGR, so the copy is done by hand.
func rgbMatToImage(m gocv.Mat) (*image.RGBA, error) {
	if m.Type() != gocv.MatTypeCV8UC3 {
		return nil, errors.Errorf("unsupported frame type %v", m.Type())
	}

	width, height := m.Cols(), m.Rows()
	data := m.ToBytes()
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for src, dst := 0, 0; src+2 < len(data); src, dst = src+3, dst+4 {
		img.Pix[dst] = data[src]
		img.Pix[dst+1] = data[src+1]
		img.Pix[dst+2] = data[src+2]
		img.Pix[dst+3] = 0xff
	}
	return img, nil
}

// fillInput resizes img to size x size and writes it as NHWC floats in [0,1].
func fillInput(dst []float32, img image.Image, size int) {
	scaled := resize.Resize(uint(size), uint(size), img, resize.Bilinear)

	i := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			r, g, b, _ := scaled.At(x, y).RGBA()
			dst[i] = float32(r>>8) / 255.0
			dst[i+1] = float32(g>>8) / 255.0
			dst[i+2] = float32(b>>8) / 255.0
			i += 3
		}
	}
}

func sigmoid(x float32) float32 {
	return 1 / (1 + math32.Exp(-x))
}
