package v4l2

import "errors"

var (
	ErrDeviceUnavailable       = errors.New("device unavailable")
	ErrFormatNegotiationFailed = errors.New("format negotiation failed")
	ErrBufferAllocationFailed  = errors.New("buffer allocation failed")
	ErrMappingFailed           = errors.New("mapping failed")
	ErrStreamStartFailed       = errors.New("stream start failed")
	ErrCaptureTimeout          = errors.New("capture timeout")

	// ErrNotReady is returned by Kernel.Wait when no buffer became ready in time.
	ErrNotReady = errors.New("no buffer ready")

	ErrUnsupported = errors.New("v4l2 is not supported on this platform")
)
