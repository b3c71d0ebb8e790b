package gpu

import "errors"

var (
	// ErrNoHALAccess is returned when the rendering context does not expose
	// a HAL device and queue.
	ErrNoHALAccess    = errors.New("gpu: provider does not expose a HAL device and queue")
	ErrNotInitialized = errors.New("gpu: resources are not initialized")
	// ErrShader is returned when the LUT shader fails to compile. It is fatal
	// to the session.
	ErrShader    = errors.New("gpu: failed to build the LUT shader")
	ErrFrameSize = errors.New("gpu: input and output frames differ in size")
	ErrTimeout   = errors.New("gpu: timed out waiting for the queue")
)
