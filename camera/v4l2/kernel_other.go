//go:build !linux

package v4l2

import "time"

type unsupportedKernel struct{}

var System Kernel = unsupportedKernel{}

func (unsupportedKernel) Open(string) (int, error) { return -1, ErrUnsupported }
func (unsupportedKernel) Close(int) error { return ErrUnsupported }
func (unsupportedKernel) SetFormat(int, *Format) error { return ErrUnsupported }
func (unsupportedKernel) RequestBuffers(int, int) (int, error) { return 0, ErrUnsupported }
func (unsupportedKernel) QueryBuffer(int, int) (int64, int, error) { return 0, 0, ErrUnsupported }
func (unsupportedKernel) Map(int, int64, int) ([]byte, error) { return nil, ErrUnsupported }
func (unsupportedKernel) Unmap([]byte) error { return ErrUnsupported }
func (unsupportedKernel) Queue(int, int) error { return ErrUnsupported }
func (unsupportedKernel) Dequeue(int) (int, int, error) { return 0, 0, ErrUnsupported }
func (unsupportedKernel) StreamOn(int) error { return ErrUnsupported }
func (unsupportedKernel) StreamOff(int) error { return ErrUnsupported }
func (unsupportedKernel) Wait(int, time.Duration) error { return ErrUnsupported }
