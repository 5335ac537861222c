package indicator

import "io"

// Driver reflects the latest motion decision on some external output,
// an LED behind a serial port or a shell hook.
type Driver interface {
	io.Closer
	Open() error
	Signal(motion bool) error
}
