package renderer

import (
	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/rendermode"
)

// FrameInfo describes the frame an overlay draws into.
type FrameInfo struct {
	Index   uint64
	Width   uint32
	Height  uint32
	Mode    rendermode.Mode
	CursorX float64
	CursorY float64
}

// Overlay draws into the frame's render pass after the scene and before the
// pass ends. Returning an error drops the frame.
type Overlay interface {
	DrawOverlay(pass gpu.RenderPassEncoder, info FrameInfo) error
}

// OverlayFunc adapts a function to Overlay.
type OverlayFunc func(pass gpu.RenderPassEncoder, info FrameInfo) error

func (f OverlayFunc) DrawOverlay(pass gpu.RenderPassEncoder, info FrameInfo) error {
	return f(pass, info)
}
