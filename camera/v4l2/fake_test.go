package v4l2

import (
	"errors"
	"syscall"
	"time"
)

// fakeKernel emulates a V4L2 driver in memory and keeps count of every
// descriptor and mapping it hands out.
type fakeKernel struct {
	formats   []PixelFormat
	grant     *Format
	payload   []byte
	bufLen    int
	grantBufs int

	failOpen     bool
	failMapAt    int
	failQueue    bool
	failStreamOn bool
	waitErr      error
	waitDelay    time.Duration
	usedOverride int

	nextFD    int
	open      map[int]bool
	regions   map[int][]byte
	live      map[*byte]int
	queued    map[int]bool
	streaming bool
	requested int

	closedWhileMapped bool
	unmapUnknown      int
	calls             []string
}

func newFakeKernel(formats ...PixelFormat) *fakeKernel {
	return &fakeKernel{
		formats:   formats,
		bufLen:    4096,
		grantBufs: BufferCount,
		failMapAt: -1,
		nextFD:    3,
		open:      map[int]bool{},
		regions:   map[int][]byte{},
		live:      map[*byte]int{},
		queued:    map[int]bool{},
	}
}

func (k *fakeKernel) openCount() int {
	return len(k.open)
}

func (k *fakeKernel) liveMappings() int {
	return len(k.live)
}

func (k *fakeKernel) Open(path string) (int, error) {
	k.calls = append(k.calls, "open")
	if k.failOpen {
		return -1, syscall.ENOENT
	}
	fd := k.nextFD
	k.nextFD++
	k.open[fd] = true
	return fd, nil
}

func (k *fakeKernel) Close(fd int) error {
	k.calls = append(k.calls, "close")
	if !k.open[fd] {
		return syscall.EBADF
	}
	if len(k.live) > 0 {
		k.closedWhileMapped = true
	}
	delete(k.open, fd)
	return nil
}

func (k *fakeKernel) SetFormat(fd int, f *Format) error {
	k.calls = append(k.calls, "s_fmt "+f.PixelFormat.String())
	if k.grant != nil {
		f.Width = k.grant.Width
		f.Height = k.grant.Height
		f.PixelFormat = k.grant.PixelFormat
		f.BytesPerLine = k.grant.BytesPerLine
		return nil
	}
	for _, supported := range k.formats {
		if supported == f.PixelFormat {
			f.BytesPerLine = f.Width * 2
			return nil
		}
	}
	return syscall.EINVAL
}

func (k *fakeKernel) RequestBuffers(fd int, count int) (int, error) {
	k.calls = append(k.calls, "reqbufs")
	if count == 0 {
		k.requested = 0
		return 0, nil
	}
	if k.grantBufs < 0 {
		return 0, syscall.ENOMEM
	}
	k.requested = k.grantBufs
	return k.grantBufs, nil
}

func (k *fakeKernel) QueryBuffer(fd int, index int) (int64, int, error) {
	if index >= k.requested {
		return 0, 0, syscall.EINVAL
	}
	return int64(index * k.bufLen), k.bufLen, nil
}

func (k *fakeKernel) Map(fd int, offset int64, length int) ([]byte, error) {
	index := int(offset) / k.bufLen
	if index == k.failMapAt {
		return nil, syscall.ENOMEM
	}
	data := make([]byte, length)
	k.regions[index] = data
	k.live[&data[0]] = index
	return data, nil
}

func (k *fakeKernel) Unmap(region []byte) error {
	if len(region) == 0 {
		k.unmapUnknown++
		return syscall.EINVAL
	}
	if _, ok := k.live[&region[0]]; !ok {
		k.unmapUnknown++
		return syscall.EINVAL
	}
	delete(k.live, &region[0])
	return nil
}

func (k *fakeKernel) Queue(fd int, index int) error {
	k.calls = append(k.calls, "qbuf")
	if k.failQueue || k.queued[index] {
		return syscall.EINVAL
	}
	k.queued[index] = true
	return nil
}

func (k *fakeKernel) Dequeue(fd int) (int, int, error) {
	k.calls = append(k.calls, "dqbuf")
	if !k.streaming {
		return 0, 0, syscall.EINVAL
	}
	for i := 0; i < k.requested; i++ {
		if !k.queued[i] {
			continue
		}
		delete(k.queued, i)
		used := copy(k.regions[i], k.payload)
		if k.usedOverride > 0 {
			used = k.usedOverride
		}
		return i, used, nil
	}
	return 0, 0, syscall.EAGAIN
}

func (k *fakeKernel) StreamOn(fd int) error {
	k.calls = append(k.calls, "streamon")
	if k.failStreamOn {
		return syscall.EIO
	}
	k.streaming = true
	return nil
}

func (k *fakeKernel) StreamOff(fd int) error {
	k.calls = append(k.calls, "streamoff")
	k.streaming = false
	k.queued = map[int]bool{}
	return nil
}

func (k *fakeKernel) Wait(fd int, timeout time.Duration) error {
	if k.waitDelay > 0 {
		if k.waitDelay > timeout {
			time.Sleep(timeout)
			return ErrNotReady
		}
		time.Sleep(k.waitDelay)
	}
	if k.waitErr != nil {
		return k.waitErr
	}
	if !k.streaming {
		return errors.New("not streaming")
	}
	return nil
}
