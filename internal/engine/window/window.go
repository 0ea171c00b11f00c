// Package window opens the platform window and translates its events into
// input.Events.
//
// SDL provides an OpenGL 4.1 core context for the GL backend; GLFW provides a
// bare window whose native handle backs a WebGPU surface.
package window

import (
	"runtime"

	"github.com/Faultbox/town-links/internal/engine/input"
)

func init() {
	// Windowing and GPU calls must be made from the main thread
	runtime.LockOSThread()
}

// Config holds window configuration.
type Config struct {
	Title      string
	Width      int
	Height     int
	Fullscreen bool
	VSync      bool
}

// Window is the surface the application loop drives.
type Window interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	SetCursorPos(x, y float64) error
	// PollEvents drains pending platform events into q.
	PollEvents(q *input.Queue)
	Close()
}
