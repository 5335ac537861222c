package v4l2

// BufferCount is the number of mmap regions requested per capture.
const BufferCount = 4

type regionState int

const (
	regionUnmapped regionState = iota
	regionIdle
	regionQueued
	regionFilled
)

func (s regionState) String() string {
	switch s {
	case regionIdle:
		return "idle"
	case regionQueued:
		return "queued"
	case regionFilled:
		return "filled"
	default:
		return "unmapped"
	}
}

type region struct {
	index int
	data  []byte
	state regionState
}

// ring owns the driver-shared regions of one session.
// A region is either queued (driver owns it) or idle/filled (process owns it), never both.
type ring struct {
	regions [BufferCount]region
	count   int
}

func newRing(count int) *ring {
	if count > BufferCount {
		count = BufferCount
	}
	r := &ring{count: count}
	for i := range r.regions {
		r.regions[i] = region{index: i}
	}
	return r
}

func (r *ring) get(index int) *region {
	if index < 0 || index >= r.count {
		return nil
	}
	return &r.regions[index]
}

func (r *ring) mapAll(kernel Kernel, fd int) error {
	for i := 0; i < r.count; i++ {
		offset, length, err := kernel.QueryBuffer(fd, i)
		if err != nil {
			return err
		}
		data, err := kernel.Map(fd, offset, length)
		if err != nil {
			return err
		}
		r.regions[i].data = data
		r.regions[i].state = regionIdle
	}
	return nil
}

func (r *ring) queue(kernel Kernel, fd int, index int) error {
	reg := r.get(index)
	if reg == nil || reg.state == regionUnmapped || reg.state == regionQueued {
		return nil
	}
	err := kernel.Queue(fd, index)
	if err != nil {
		return err
	}
	reg.state = regionQueued
	return nil
}

func (r *ring) queueAll(kernel Kernel, fd int) error {
	for i := 0; i < r.count; i++ {
		err := r.queue(kernel, fd, i)
		if err != nil {
			return err
		}
	}
	return nil
}

// dropQueued hands every queued region back to the process, STREAMOFF has
// already removed them from the driver's queue.
func (r *ring) dropQueued() {
	for i := 0; i < r.count; i++ {
		if r.regions[i].state == regionQueued {
			r.regions[i].state = regionIdle
		}
	}
}

// unmapAll unmaps every mapped region exactly once and returns the first error.
func (r *ring) unmapAll(kernel Kernel) error {
	var first error
	for i := 0; i < r.count; i++ {
		reg := &r.regions[i]
		if reg.state == regionUnmapped || reg.data == nil {
			continue
		}
		err := kernel.Unmap(reg.data)
		if err != nil && first == nil {
			first = err
		}
		reg.data = nil
		reg.state = regionUnmapped
	}
	return first
}

func (r *ring) mapped() int {
	n := 0
	for i := 0; i < r.count; i++ {
		if r.regions[i].state != regionUnmapped {
			n++
		}
	}
	return n
}
