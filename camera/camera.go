package camera

import (
	"errors"
	"github.com/allape/camsnap/camera/codec"
	"github.com/allape/camsnap/camera/devices"
	"github.com/allape/camsnap/camera/motion"
	"github.com/allape/gogger"
)

var l = gogger.New("camera")

const (
	DefaultSnapshotWidth  = 640
	DefaultSnapshotHeight = 480
	DefaultMotionWidth    = 320
	DefaultMotionHeight   = 240
	DefaultThreshold      = 10.0
)

type Options struct {
	Pattern        string
	SnapshotWidth  int
	SnapshotHeight int
	MotionWidth    int
	MotionHeight   int
	Threshold      float64
}

// Camera exposes list, snapshot and motion detection over explicit device
// paths. It carries configuration only, every call runs its own capture.
type Camera struct {
	Capturer motion.Capturer
	Codec    codec.Codec
	Options  Options
}

func (c *Camera) ListDevices() []string {
	return devices.Glob(c.Options.Pattern)
}

// Snapshot captures one still and returns it as JPEG. Zero width or height
// falls back to the configured snapshot size.
func (c *Camera) Snapshot(device string, width, height int) ([]byte, error) {
	if width <= 0 {
		width = c.Options.SnapshotWidth
	}
	if height <= 0 {
		height = c.Options.SnapshotHeight
	}

	f, err := c.Capturer.Capture(device, width, height)
	if err != nil {
		l.Error().Println("snapshot", device, ":", err)
		return nil, err
	}

	img, err := c.Codec.Encode(f)
	if err != nil {
		l.Error().Println("encode", device, ":", err)
		return nil, err
	}

	l.Verbose().Printf("snapshot %s %dx%d: %d bytes", device, width, height, len(img))

	return img, nil
}

// DetectMotion reports whether two successive stills differ by at least
// thresholdPercent. A negative threshold uses the configured default.
func (c *Camera) DetectMotion(device string, thresholdPercent float64, width, height int) (bool, error) {
	if thresholdPercent < 0 {
		thresholdPercent = c.Options.Threshold
	}
	if width <= 0 {
		width = c.Options.MotionWidth
	}
	if height <= 0 {
		height = c.Options.MotionHeight
	}

	estimator := &motion.Estimator{Capturer: c.Capturer, Codec: c.Codec}
	moved, err := estimator.Detect(device, thresholdPercent, width, height)
	if err != nil {
		l.Error().Println("detect motion", device, ":", err)
		return false, err
	}

	return moved, nil
}

// Score returns the raw motion score between two successive stills.
func (c *Camera) Score(device string, width, height int) (float64, error) {
	if width <= 0 {
		width = c.Options.MotionWidth
	}
	if height <= 0 {
		height = c.Options.MotionHeight
	}

	estimator := &motion.Estimator{Capturer: c.Capturer, Codec: c.Codec}
	return estimator.Estimate(device, width, height)
}

func New(capturer motion.Capturer, c codec.Codec, options Options) (*Camera, error) {
	if capturer == nil {
		return nil, errors.New("capturer is nil")
	}
	if c == nil {
		return nil, errors.New("codec is nil")
	}

	if options.Pattern == "" {
		options.Pattern = devices.DefaultPattern
	}
	if options.SnapshotWidth == 0 {
		options.SnapshotWidth = DefaultSnapshotWidth
	}
	if options.SnapshotHeight == 0 {
		options.SnapshotHeight = DefaultSnapshotHeight
	}
	if options.MotionWidth == 0 {
		options.MotionWidth = DefaultMotionWidth
	}
	if options.MotionHeight == 0 {
		options.MotionHeight = DefaultMotionHeight
	}
	if options.Threshold < 0 {
		options.Threshold = DefaultThreshold
	}

	return &Camera{
		Capturer: capturer,
		Codec:    c,
		Options:  options,
	}, nil
}
