package codec

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/allape/camsnap/camera/frame"
	"github.com/allape/gogger"
	"image/jpeg"
)

var l = gogger.New("camera.codec")

const (
	// DefaultQuality is used for frames converted from YUYV.
	DefaultQuality = 85

	DefaultMaxPixelBytes = 64 << 20
)

var ErrEncodeFailed = errors.New("encode failed")

type Codec interface {
	Encode(f frame.Frame) ([]byte, error)
}

type JPEGEncoder struct {
	Codec

	Quality int
	// MaxPixelBytes caps the intermediate RGB buffer, 0 means DefaultMaxPixelBytes.
	MaxPixelBytes int
}

// Encode returns a JPEG for f. MJPEG frames are copied through untouched,
// YUYV frames are converted to RGB and compressed.
func (e *JPEGEncoder) Encode(f frame.Frame) ([]byte, error) {
	switch f := f.(type) {
	case frame.MJPEG:
		return e.passthrough(f)
	case frame.YUYV:
		return e.compress(f)
	case nil:
		return nil, fmt.Errorf("%w: nil frame", ErrEncodeFailed)
	default:
		return nil, fmt.Errorf("%w: unsupported frame %T", ErrEncodeFailed, f)
	}
}

func (e *JPEGEncoder) passthrough(f frame.MJPEG) ([]byte, error) {
	if len(f.Data) == 0 {
		return nil, fmt.Errorf("%w: empty MJPEG frame", ErrEncodeFailed)
	}
	out := make([]byte, len(f.Data))
	copy(out, f.Data)
	return out, nil
}

func (e *JPEGEncoder) compress(f frame.YUYV) ([]byte, error) {
	maxBytes := e.MaxPixelBytes
	if maxBytes == 0 {
		maxBytes = DefaultMaxPixelBytes
	}
	if f.Width > 0 && f.Height > 0 && f.Width > maxBytes/3/f.Height {
		return nil, fmt.Errorf("%w: %dx%d RGB buffer exceeds %d bytes", frame.ErrOutOfMemory, f.Width, f.Height, maxBytes)
	}

	img, err := YUYVToRGB(f.Data, f.Width, f.Height, f.RowStride())
	if err != nil {
		return nil, err
	}

	quality := e.Quality
	if quality == 0 {
		quality = DefaultQuality
	}

	buffer := bytes.NewBuffer(nil)
	err = jpeg.Encode(buffer, img, &jpeg.Options{Quality: quality})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncodeFailed, err)
	}
	if buffer.Len() == 0 {
		return nil, fmt.Errorf("%w: encoder produced no output", ErrEncodeFailed)
	}

	l.Verbose().Printf("encoded %dx%d YUYV into %d bytes at quality %d", f.Width, f.Height, buffer.Len(), quality)

	return buffer.Bytes(), nil
}
