package frame

import (
	"errors"
	"image"
)

// ErrOutOfMemory is returned when a frame or image buffer cannot be allocated
// within the configured size cap.
var ErrOutOfMemory = errors.New("out of memory")

// Frame is one raw capture copied out of the driver's buffer ring.
// It is either MJPEG or YUYV.
type Frame interface {
	Bytes() []byte
	Size() image.Point
	sealed()
}

// MJPEG
// A frame that the device already compressed, the bytes are a complete JPEG.
type MJPEG struct {
	Data   []byte
	Width  int
	Height int
}

func (f MJPEG) Bytes() []byte {
	return f.Data
}

func (f MJPEG) Size() image.Point {
	return image.Point{X: f.Width, Y: f.Height}
}

func (MJPEG) sealed() {}

// YUYV
// Packed 4:2:2, every 4 bytes are Y0 U Y1 V and describe two pixels.
// Stride is the byte length of one row, 0 means Width*2.
type YUYV struct {
	Data   []byte
	Width  int
	Height int
	Stride int
}

func (f YUYV) Bytes() []byte {
	return f.Data
}

func (f YUYV) Size() image.Point {
	return image.Point{X: f.Width, Y: f.Height}
}

func (f YUYV) RowStride() int {
	if f.Stride > 0 {
		return f.Stride
	}
	return f.Width * 2
}

func (YUYV) sealed() {}
