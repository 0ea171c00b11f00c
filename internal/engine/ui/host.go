// Package ui hosts the OpenGL engine inside a Dear ImGui window.
//
// The cimgui-go SDL backend owns the window, the GL context and the frame
// loop. The engine renders offscreen and Panel composites that frame behind
// the debug window.
package ui

import (
	"errors"
	"fmt"

	"github.com/AllenDang/cimgui-go/backend"
	"github.com/AllenDang/cimgui-go/backend/sdlbackend"
	"github.com/AllenDang/cimgui-go/imgui"
	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/input"
	"github.com/Faultbox/town-links/internal/engine/window"
	"github.com/Faultbox/town-links/internal/logger"
)

// Host wraps the ImGui SDL backend. It satisfies window.Window for the
// application loop and glbackend.Window for the offscreen GL surface.
type Host struct {
	backend backend.Backend[sdlbackend.SDLWindowFlags]
	tracker tracker
	log     *zap.Logger
}

// NewHost creates the backend and its window with a current GL context.
func NewHost(cfg window.Config) (*Host, error) {
	b, err := backend.CreateBackend(sdlbackend.NewSDLBackend())
	if err != nil {
		return nil, fmt.Errorf("create imgui backend: %w", err)
	}

	h := &Host{backend: b, log: logger.Named("ui")}
	b.SetBgColor(imgui.NewVec4(0, 0, 0, 1))
	b.CreateWindow(cfg.Title, cfg.Width, cfg.Height)

	h.log.Info("imgui host created",
		zap.String("title", cfg.Title),
		zap.Int("width", cfg.Width),
		zap.Int("height", cfg.Height),
	)
	return h, nil
}

// Run drives the backend loop, calling frame once per ImGui frame until it
// returns false or the window is closed.
func (h *Host) Run(frame func() bool) {
	h.backend.Run(func() {
		if !frame() {
			h.backend.SetShouldClose(true)
		}
	})
}

// OnTeardown registers fn to run while the GL context is still alive, just
// before the backend destroys it.
func (h *Host) OnTeardown(fn func()) {
	h.backend.SetBeforeDestroyContextHook(fn)
}

// Size returns the display size of the window.
func (h *Host) Size() (int, int) {
	w, ht := h.backend.DisplaySize()
	return int(w), int(ht)
}

// SetCursorPos is not available through the backend.
func (h *Host) SetCursorPos(_, _ float64) error {
	return errors.New("cursor warping is not supported by the imgui host")
}

// SwapBuffers is a no-op; the backend swaps after rendering ImGui.
func (h *Host) SwapBuffers() {}

// SetSwapInterval is a no-op; the backend owns the swap interval.
func (h *Host) SetSwapInterval(int) error { return nil }

// PollEvents converts the ImGui input state of this frame into events.
func (h *Host) PollEvents(q *input.Queue) {
	w, ht := h.Size()
	pos := imgui.MousePos()

	s := snapshot{
		width:  w,
		height: ht,
		mouseX: float64(pos.X),
		mouseY: float64(pos.Y),
	}
	for k, key := range imguiKeys {
		s.down[k] = imgui.IsKeyDown(key)
	}

	for _, ev := range h.tracker.update(s) {
		q.Push(ev)
	}
}

// Close is a no-op; the backend tears the window down when Run returns.
func (h *Host) Close() {}
