package gpu

import "errors"

// Initialization errors.
var (
	ErrAdapterUnavailable = errors.New("gpu: no compatible adapter")
	ErrDeviceCreation     = errors.New("gpu: device creation failed")
	ErrTextureDecode      = errors.New("gpu: texture decode failed")
	ErrCursorPositioning  = errors.New("gpu: cursor positioning failed")
)

// Surface acquisition errors.
var (
	ErrSurfaceLost        = errors.New("gpu: surface lost")
	ErrSurfaceOutOfMemory = errors.New("gpu: surface out of memory")
	ErrSurfaceTimeout     = errors.New("gpu: surface acquire timeout")
	ErrSurfaceOutdated    = errors.New("gpu: surface outdated")
)

// IsRecoverable reports whether a render error is cured by reconfiguring the
// surface with its current size.
func IsRecoverable(err error) bool {
	return errors.Is(err, ErrSurfaceLost)
}

// IsSkippable reports whether the frame should simply be dropped.
func IsSkippable(err error) bool {
	return errors.Is(err, ErrSurfaceTimeout) || errors.Is(err, ErrSurfaceOutdated)
}

// IsFatal reports whether the render loop must stop.
func IsFatal(err error) bool {
	return errors.Is(err, ErrSurfaceOutOfMemory)
}
