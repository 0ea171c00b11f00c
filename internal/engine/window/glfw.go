package window

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/input"
	"github.com/Faultbox/town-links/internal/logger"
)

// GLFW is a window without a client API; WebGPU renders into its surface.
type GLFW struct {
	config  Config
	glw     *glfw.Window
	pending []input.Event
	log     *zap.Logger
}

// NewGLFW initializes GLFW and creates the window.
func NewGLFW(cfg Config) (*GLFW, error) {
	w := &GLFW{
		config: cfg,
		log:    logger.Named("window"),
	}

	w.log.Info("initializing GLFW")
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init failed: %w", err)
	}

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)

	var monitor *glfw.Monitor
	width, height := cfg.Width, cfg.Height
	if cfg.Fullscreen {
		monitor = glfw.GetPrimaryMonitor()
		if mode := monitor.GetVideoMode(); mode != nil {
			width, height = mode.Width, mode.Height
		}
	}

	glw, err := glfw.CreateWindow(width, height, cfg.Title, monitor, nil)
	if err != nil {
		glfw.Terminate()
		return nil, fmt.Errorf("glfw create window failed: %w", err)
	}
	w.glw = glw

	glw.SetCloseCallback(func(*glfw.Window) {
		w.pending = append(w.pending, input.Event{Type: input.EventQuit})
	})
	glw.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.pending = append(w.pending, input.Event{Type: input.EventWindowResize, Width: width, Height: height})
	})
	glw.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if ev, ok := translateGLFWKey(key, action); ok {
			w.pending = append(w.pending, ev)
		}
	})
	glw.SetCursorPosCallback(func(_ *glfw.Window, x, y float64) {
		w.pending = append(w.pending, w.cursorEvent(x, y))
	})

	fw, fh := glw.GetFramebufferSize()
	w.log.Info("window created",
		zap.String("title", cfg.Title),
		zap.Int("width", width),
		zap.Int("height", height),
		zap.Int("framebuffer_width", fw),
		zap.Int("framebuffer_height", fh),
		zap.Bool("fullscreen", cfg.Fullscreen),
	)
	return w, nil
}

// SurfaceDescriptor returns the native handle description WebGPU needs to
// create a surface for this window.
func (w *GLFW) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.glw)
}

// Size returns the framebuffer size in pixels.
func (w *GLFW) Size() (int, int) {
	return w.glw.GetFramebufferSize()
}

// SetCursorPos moves the cursor to a framebuffer-pixel position. GLFW
// reports unsupported platforms (e.g. Wayland) by panicking, which is
// returned as an error.
func (w *GLFW) SetCursorPos(x, y float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("glfw set cursor: %v", r)
		}
	}()
	sx, sy := w.contentScale()
	w.glw.SetCursorPos(x/sx, y/sy)
	return nil
}

// PollEvents processes pending GLFW events.
func (w *GLFW) PollEvents(q *input.Queue) {
	glfw.PollEvents()
	for _, ev := range w.pending {
		q.Push(ev)
	}
	w.pending = w.pending[:0]
}

// Close destroys the window and terminates GLFW.
func (w *GLFW) Close() {
	w.log.Info("closing window")
	if w.glw != nil {
		w.glw.Destroy()
		w.glw = nil
	}
	glfw.Terminate()
}

// cursorEvent converts a cursor position from screen coordinates to
// framebuffer pixels.
func (w *GLFW) cursorEvent(x, y float64) input.Event {
	sx, sy := w.contentScale()
	return input.Event{Type: input.EventMouseMove, MouseX: x * sx, MouseY: y * sy}
}

func (w *GLFW) contentScale() (float64, float64) {
	ww, wh := w.glw.GetSize()
	fw, fh := w.glw.GetFramebufferSize()
	if ww == 0 || wh == 0 {
		return 1, 1
	}
	return float64(fw) / float64(ww), float64(fh) / float64(wh)
}

func translateGLFWKey(key glfw.Key, action glfw.Action) (input.Event, bool) {
	var typ input.EventType
	switch action {
	case glfw.Press:
		typ = input.EventKeyDown
	case glfw.Release:
		typ = input.EventKeyUp
	default:
		return input.Event{}, false
	}
	return input.Event{Type: typ, Key: glfwKey(key)}, true
}

func glfwKey(k glfw.Key) input.Key {
	switch k {
	case glfw.KeyEscape:
		return input.KeyEscape
	case glfw.KeySpace:
		return input.KeySpace
	case glfw.KeyW:
		return input.KeyW
	case glfw.KeyA:
		return input.KeyA
	case glfw.KeyS:
		return input.KeyS
	case glfw.KeyD:
		return input.KeyD
	case glfw.KeyUp:
		return input.KeyUp
	case glfw.KeyDown:
		return input.KeyDown
	case glfw.KeyLeft:
		return input.KeyLeft
	case glfw.KeyRight:
		return input.KeyRight
	default:
		return input.KeyUnknown
	}
}
