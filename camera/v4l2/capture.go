package v4l2

import (
	"fmt"
	"github.com/allape/camsnap/camera/frame"
	"github.com/allape/gogger"
	"time"
)

var l = gogger.New("camera.v4l2")

const (
	// ReadyTimeout bounds the wait for the first filled buffer.
	ReadyTimeout = 2 * time.Second

	DefaultMaxFrameBytes = 32 << 20
)

type Options struct {
	Timeout       time.Duration
	MaxFrameBytes int
}

// Capturer takes single stills. It holds no per-device state, every Capture
// opens, uses and fully tears down its own session.
type Capturer struct {
	kernel Kernel

	Timeout       time.Duration
	MaxFrameBytes int
}

func NewCapturer(kernel Kernel, options *Options) *Capturer {
	if kernel == nil {
		kernel = System
	}
	if options == nil {
		options = &Options{}
	}

	if options.Timeout == 0 {
		options.Timeout = ReadyTimeout
	}
	if options.MaxFrameBytes == 0 {
		options.MaxFrameBytes = DefaultMaxFrameBytes
	}

	return &Capturer{
		kernel:        kernel,
		Timeout:       options.Timeout,
		MaxFrameBytes: options.MaxFrameBytes,
	}
}

// Capture grabs exactly one frame from device. The returned frame is tagged
// with the format the driver granted, which may not be the one asked for.
func (c *Capturer) Capture(device string, width, height int) (frame.Frame, error) {
	s := &session{
		kernel: c.kernel,
		device: device,
		fd:     -1,
	}
	defer s.release()

	err := s.open()
	if err != nil {
		return nil, err
	}

	err = s.negotiate(width, height)
	if err != nil {
		return nil, err
	}

	err = s.allocate()
	if err != nil {
		return nil, err
	}

	err = s.start()
	if err != nil {
		return nil, err
	}

	return s.grab(c.Timeout, c.MaxFrameBytes)
}

type session struct {
	kernel Kernel
	device string

	fd        int
	format    Format
	ring      *ring
	requested bool
	streaming bool
}

func (s *session) open() error {
	fd, err := s.kernel.Open(s.device)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", ErrDeviceUnavailable, s.device, err)
	}
	s.fd = fd
	l.Verbose().Println("opened", s.device, "fd", fd)
	return nil
}

func (s *session) negotiate(width, height int) error {
	f := Format{Width: width, Height: height, PixelFormat: PixelFormatMJPEG}
	err := s.kernel.SetFormat(s.fd, &f)
	if err == nil && f.PixelFormat == PixelFormatMJPEG {
		s.format = f
		l.Verbose().Printf("%s granted %s %dx%d", s.device, f.PixelFormat, f.Width, f.Height)
		return nil
	}
	if err != nil {
		l.Verbose().Println(s.device, "rejected MJPG:", err)
	}

	f = Format{Width: width, Height: height, PixelFormat: PixelFormatYUYV}
	err = s.kernel.SetFormat(s.fd, &f)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFormatNegotiationFailed, s.device, err)
	}
	if f.PixelFormat != PixelFormatYUYV && f.PixelFormat != PixelFormatMJPEG {
		return fmt.Errorf("%w: %s granted unsupported format %s", ErrFormatNegotiationFailed, s.device, f.PixelFormat)
	}

	s.format = f
	l.Verbose().Printf("%s granted %s %dx%d", s.device, f.PixelFormat, f.Width, f.Height)
	return nil
}

func (s *session) allocate() error {
	count, err := s.kernel.RequestBuffers(s.fd, BufferCount)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrBufferAllocationFailed, s.device, err)
	}
	s.requested = true
	if count < 1 {
		return fmt.Errorf("%w: %s granted no buffers", ErrBufferAllocationFailed, s.device)
	}

	s.ring = newRing(count)
	err = s.ring.mapAll(s.kernel, s.fd)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrMappingFailed, s.device, err)
	}

	return nil
}

func (s *session) start() error {
	err := s.ring.queueAll(s.kernel, s.fd)
	if err != nil {
		return fmt.Errorf("%w: queue %s: %w", ErrStreamStartFailed, s.device, err)
	}

	err = s.kernel.StreamOn(s.fd)
	if err != nil {
		return fmt.Errorf("%w: stream on %s: %w", ErrStreamStartFailed, s.device, err)
	}
	s.streaming = true

	return nil
}

func (s *session) grab(timeout time.Duration, maxBytes int) (frame.Frame, error) {
	err := s.kernel.Wait(s.fd, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: %s after %s: %w", ErrCaptureTimeout, s.device, timeout, err)
	}

	index, used, err := s.kernel.Dequeue(s.fd)
	if err != nil {
		return nil, fmt.Errorf("%w: dequeue %s: %w", ErrCaptureTimeout, s.device, err)
	}

	reg := s.ring.get(index)
	if reg == nil || reg.state != regionQueued {
		return nil, fmt.Errorf("%w: %s dequeued unknown buffer %d", ErrCaptureTimeout, s.device, index)
	}
	reg.state = regionFilled

	if used > len(reg.data) || (maxBytes > 0 && used > maxBytes) {
		return nil, fmt.Errorf("%w: %s frame of %d bytes", frame.ErrOutOfMemory, s.device, used)
	}

	data := make([]byte, used)
	copy(data, reg.data[:used])

	l.Verbose().Printf("%s dequeued buffer %d with %d bytes", s.device, index, used)

	if s.format.PixelFormat == PixelFormatMJPEG {
		return frame.MJPEG{
			Data:   data,
			Width:  s.format.Width,
			Height: s.format.Height,
		}, nil
	}

	return frame.YUYV{
		Data:   data,
		Width:  s.format.Width,
		Height: s.format.Height,
		Stride: s.format.BytesPerLine,
	}, nil
}

// release undoes whatever the session acquired, in reverse order. It is the
// only teardown path and is safe to call at any stage.
func (s *session) release() {
	if s.fd < 0 {
		return
	}

	if s.ring != nil {
		if s.streaming {
			for i := 0; i < s.ring.count; i++ {
				if s.ring.regions[i].state != regionFilled {
					continue
				}
				err := s.ring.queue(s.kernel, s.fd, i)
				if err != nil {
					l.Warn().Println("requeue", s.device, "buffer", i, ":", err)
				}
			}

			err := s.kernel.StreamOff(s.fd)
			if err != nil {
				l.Warn().Println("stream off", s.device, ":", err)
			}
			s.streaming = false
		}
		s.ring.dropQueued()

		err := s.ring.unmapAll(s.kernel)
		if err != nil {
			l.Warn().Println("unmap", s.device, ":", err)
		}
	}

	if s.requested {
		_, err := s.kernel.RequestBuffers(s.fd, 0)
		if err != nil {
			l.Verbose().Println("release buffers", s.device, ":", err)
		}
		s.requested = false
	}

	err := s.kernel.Close(s.fd)
	if err != nil {
		l.Warn().Println("close", s.device, ":", err)
	}
	l.Verbose().Println("closed", s.device, "fd", s.fd)
	s.fd = -1
}
