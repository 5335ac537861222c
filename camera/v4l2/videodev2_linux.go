package v4l2

import "unsafe"

// Layouts follow linux/videodev2.h. Field types are chosen so that Go's
// alignment rules reproduce the C layout on both 32-bit and 64-bit targets,
// the ioctl request codes are derived from the resulting struct sizes.

const (
	bufTypeVideoCapture = 1
	memoryMMAP          = 1
	fieldAny            = 0
)

type pixFormat struct { // size 48
	width        uint32
	height       uint32
	pixelformat  uint32
	field        uint32
	bytesperline uint32
	sizeimage    uint32
	colorspace   uint32
	priv         uint32
	flags        uint32
	ycbcrEnc     uint32
	quantization uint32
	xferFunc     uint32
}

type format struct { // size 204 (32-bit), 208 (64-bit)
	typ uint32
	fmt struct {
		_   [0]uintptr // union holds pointers (v4l2_window)
		raw [200]byte
	}
}

func (f *format) pix() *pixFormat {
	return (*pixFormat)(unsafe.Pointer(&f.fmt.raw[0]))
}

type requestBuffers struct { // size 20
	count        uint32
	typ          uint32
	memory       uint32
	capabilities uint32
	flags        uint8
	reserved     [3]uint8
}

type timeval struct {
	sec  int // C long
	usec int
}

type timecode struct { // size 16
	typ      uint32
	flags    uint32
	frames   uint8
	seconds  uint8
	minutes  uint8
	hours    uint8
	userbits [4]uint8
}

type buffer struct { // size 68 (32-bit), 88 (64-bit)
	index     uint32
	typ       uint32
	bytesused uint32
	flags     uint32
	field     uint32
	timestamp timeval
	timecode  timecode
	sequence  uint32
	memory    uint32
	m         uintptr // union: offset, userptr, planes, fd
	length    uint32
	reserved2 uint32
	requestFD uint32
}

func (b *buffer) offset() uint32 {
	return *(*uint32)(unsafe.Pointer(&b.m))
}

const (
	iocWrite = 1
	iocRead  = 2
)

func ioc(dir, nr, size uintptr) uintptr {
	return dir<<30 | size<<16 | uintptr('V')<<8 | nr
}

var (
	vidiocSFmt      = ioc(iocRead|iocWrite, 5, unsafe.Sizeof(format{}))
	vidiocReqBufs   = ioc(iocRead|iocWrite, 8, unsafe.Sizeof(requestBuffers{}))
	vidiocQueryBuf  = ioc(iocRead|iocWrite, 9, unsafe.Sizeof(buffer{}))
	vidiocQBuf      = ioc(iocRead|iocWrite, 15, unsafe.Sizeof(buffer{}))
	vidiocDQBuf     = ioc(iocRead|iocWrite, 17, unsafe.Sizeof(buffer{}))
	vidiocStreamOn  = ioc(iocWrite, 18, unsafe.Sizeof(int32(0)))
	vidiocStreamOff = ioc(iocWrite, 19, unsafe.Sizeof(int32(0)))
)
