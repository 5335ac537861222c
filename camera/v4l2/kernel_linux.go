package v4l2

import (
	"golang.org/x/sys/unix"
	"time"
	"unsafe"
)

type unixKernel struct{}

// System talks to the real V4L2 driver through ioctl, mmap and select.
var System Kernel = unixKernel{}

func xioctl(fd int, req uintptr, arg unsafe.Pointer) error {
	for {
		_, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), req, uintptr(arg))
		switch errno {
		case 0:
			return nil
		case unix.EINTR:
			continue
		default:
			return errno
		}
	}
}

func (unixKernel) Open(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR|unix.O_NONBLOCK|unix.O_CLOEXEC, 0)
}

func (unixKernel) Close(fd int) error {
	return unix.Close(fd)
}

func (unixKernel) SetFormat(fd int, f *Format) error {
	var vf format
	vf.typ = bufTypeVideoCapture
	pix := vf.pix()
	pix.width = uint32(f.Width)
	pix.height = uint32(f.Height)
	pix.pixelformat = uint32(f.PixelFormat)
	pix.field = fieldAny

	err := xioctl(fd, vidiocSFmt, unsafe.Pointer(&vf))
	if err != nil {
		return err
	}

	f.Width = int(pix.width)
	f.Height = int(pix.height)
	f.PixelFormat = PixelFormat(pix.pixelformat)
	f.BytesPerLine = int(pix.bytesperline)
	f.SizeImage = int(pix.sizeimage)

	return nil
}

func (unixKernel) RequestBuffers(fd int, count int) (int, error) {
	req := requestBuffers{
		count:  uint32(count),
		typ:    bufTypeVideoCapture,
		memory: memoryMMAP,
	}
	err := xioctl(fd, vidiocReqBufs, unsafe.Pointer(&req))
	if err != nil {
		return 0, err
	}
	return int(req.count), nil
}

func (unixKernel) QueryBuffer(fd int, index int) (int64, int, error) {
	buf := buffer{
		index:  uint32(index),
		typ:    bufTypeVideoCapture,
		memory: memoryMMAP,
	}
	err := xioctl(fd, vidiocQueryBuf, unsafe.Pointer(&buf))
	if err != nil {
		return 0, 0, err
	}
	return int64(buf.offset()), int(buf.length), nil
}

func (unixKernel) Map(fd int, offset int64, length int) ([]byte, error) {
	return unix.Mmap(fd, offset, length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func (unixKernel) Unmap(region []byte) error {
	return unix.Munmap(region)
}

func (unixKernel) Queue(fd int, index int) error {
	buf := buffer{
		index:  uint32(index),
		typ:    bufTypeVideoCapture,
		memory: memoryMMAP,
	}
	return xioctl(fd, vidiocQBuf, unsafe.Pointer(&buf))
}

func (unixKernel) Dequeue(fd int) (int, int, error) {
	buf := buffer{
		typ:    bufTypeVideoCapture,
		memory: memoryMMAP,
	}
	err := xioctl(fd, vidiocDQBuf, unsafe.Pointer(&buf))
	if err != nil {
		return 0, 0, err
	}
	return int(buf.index), int(buf.bytesused), nil
}

func (unixKernel) StreamOn(fd int) error {
	typ := int32(bufTypeVideoCapture)
	return xioctl(fd, vidiocStreamOn, unsafe.Pointer(&typ))
}

func (unixKernel) StreamOff(fd int) error {
	typ := int32(bufTypeVideoCapture)
	return xioctl(fd, vidiocStreamOff, unsafe.Pointer(&typ))
}

func (unixKernel) Wait(fd int, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for {
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return ErrNotReady
		}

		var fds unix.FdSet
		fds.Set(fd)
		tv := unix.NsecToTimeval(remaining.Nanoseconds())

		n, err := unix.Select(fd+1, &fds, nil, nil, &tv)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotReady
		}
		return nil
	}
}
