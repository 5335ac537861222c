package motion

import (
	"github.com/allape/camsnap/camera/codec"
	"github.com/allape/camsnap/camera/frame"
	"github.com/allape/gogger"
)

var l = gogger.New("camera.motion")

type Capturer interface {
	Capture(device string, width, height int) (frame.Frame, error)
}

// Estimator compares two successive stills of the same device.
type Estimator struct {
	Capturer Capturer
	Codec    codec.Codec
}

// Score is the percentage of differing bytes between two compressed images.
// Positions past the shorter image all count as differences, the total is
// divided by the mean length. Score(a, b) == Score(b, a).
func Score(a, b []byte) float64 {
	minLen := min(len(a), len(b))

	diffs := 0
	for i := 0; i < minLen; i++ {
		if a[i] != b[i] {
			diffs++
		}
	}
	diffs += max(len(a), len(b)) - minLen

	mean := float64(len(a)+len(b)) / 2.0
	if mean == 0 {
		return 0
	}

	return float64(diffs) / mean * 100.0
}

func Exceeds(score, thresholdPercent float64) bool {
	return score >= thresholdPercent
}

// Estimate captures two frames back to back, then encodes both and scores them.
func (e *Estimator) Estimate(device string, width, height int) (float64, error) {
	f1, err := e.Capturer.Capture(device, width, height)
	if err != nil {
		return 0, err
	}
	f2, err := e.Capturer.Capture(device, width, height)
	if err != nil {
		return 0, err
	}

	first, err := e.Codec.Encode(f1)
	if err != nil {
		return 0, err
	}
	second, err := e.Codec.Encode(f2)
	if err != nil {
		return 0, err
	}

	score := Score(first, second)
	l.Verbose().Printf("%s: first %d bytes, second %d bytes, score %.2f%%", device, len(first), len(second), score)

	return score, nil
}

func (e *Estimator) Detect(device string, thresholdPercent float64, width, height int) (bool, error) {
	score, err := e.Estimate(device, width, height)
	if err != nil {
		return false, err
	}
	return Exceeds(score, thresholdPercent), nil
}
