package v4l2

import (
	"time"
)

// PixelFormat is a V4L2 fourcc code.
type PixelFormat uint32

func FourCC(a, b, c, d byte) PixelFormat {
	return PixelFormat(uint32(a) | uint32(b)<<8 | uint32(c)<<16 | uint32(d)<<24)
}

var (
	PixelFormatMJPEG = FourCC('M', 'J', 'P', 'G')
	PixelFormatYUYV  = FourCC('Y', 'U', 'Y', 'V')
)

func (f PixelFormat) String() string {
	return string([]byte{byte(f), byte(f >> 8), byte(f >> 16), byte(f >> 24)})
}

// Format is what gets requested from the driver and, after SetFormat returns,
// what the driver granted.
type Format struct {
	Width        int
	Height       int
	PixelFormat  PixelFormat
	BytesPerLine int
	SizeImage    int
}

// Kernel
// The device operations a capture session needs, one method per ioctl or syscall.
// System is the real implementation, tests substitute a fake.
type Kernel interface {
	Open(path string) (int, error)
	Close(fd int) error

	// SetFormat issues VIDIOC_S_FMT and overwrites f with the granted format.
	SetFormat(fd int, f *Format) error

	// RequestBuffers issues VIDIOC_REQBUFS for mmap buffers, count 0 releases the ring.
	RequestBuffers(fd int, count int) (int, error)
	QueryBuffer(fd int, index int) (offset int64, length int, err error)
	Map(fd int, offset int64, length int) ([]byte, error)
	Unmap(region []byte) error

	Queue(fd int, index int) error
	Dequeue(fd int) (index int, bytesUsed int, err error)
	StreamOn(fd int) error
	StreamOff(fd int) error

	// Wait blocks until the descriptor is readable, ErrNotReady on timeout.
	Wait(fd int, timeout time.Duration) error
}
