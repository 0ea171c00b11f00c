package ui

import (
	"fmt"

	"github.com/AllenDang/cimgui-go/imgui"

	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/renderer"
)

// PanelTitle names the debug window.
const PanelTitle = "Town links"

// Panel is a renderer.Overlay that shows the offscreen engine frame as the
// window background and a debug window with the cursor position.
type Panel struct {
	scene func() uint32
	next  renderer.Overlay
}

// NewPanel returns a panel sampling the GL texture returned by scene. next,
// if not nil, is drawn first.
func NewPanel(scene func() uint32, next renderer.Overlay) *Panel {
	return &Panel{scene: scene, next: next}
}

func (p *Panel) DrawOverlay(pass gpu.RenderPassEncoder, info renderer.FrameInfo) error {
	if p.next != nil {
		if err := p.next.DrawOverlay(pass, info); err != nil {
			return err
		}
	}

	if tex := p.scene(); tex != 0 {
		drawScene(tex, float32(info.Width), float32(info.Height))
	}

	imgui.SetNextWindowPos(imgui.NewVec2(10, 10))
	imgui.SetNextWindowBgAlpha(0.7)
	flags := imgui.WindowFlagsNoResize | imgui.WindowFlagsNoMove |
		imgui.WindowFlagsNoFocusOnAppearing | imgui.WindowFlagsAlwaysAutoResize
	if imgui.BeginV(PanelTitle, nil, flags) {
		for _, line := range panelLines(info) {
			imgui.Text(line)
		}
	}
	imgui.End()
	return nil
}

// drawScene fills the viewport with the frame texture, flipped to GL's
// bottom-up origin.
func drawScene(tex uint32, w, h float32) {
	imgui.SetNextWindowPos(imgui.NewVec2(0, 0))
	imgui.SetNextWindowSize(imgui.NewVec2(w, h))

	flags := imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoResize |
		imgui.WindowFlagsNoMove | imgui.WindowFlagsNoScrollbar |
		imgui.WindowFlagsNoScrollWithMouse | imgui.WindowFlagsNoBringToFrontOnFocus |
		imgui.WindowFlagsNoInputs

	imgui.PushStyleVarVec2(imgui.StyleVarWindowPadding, imgui.NewVec2(0, 0))
	if imgui.BeginV("##Scene", nil, flags) {
		texRef := imgui.NewTextureRefTextureID(imgui.TextureID(tex))
		imgui.ImageV(*texRef,
			imgui.NewVec2(w, h),
			imgui.NewVec2(0, 1),
			imgui.NewVec2(1, 0))
	}
	imgui.End()
	imgui.PopStyleVar()
}

func panelLines(info renderer.FrameInfo) []string {
	return []string{
		fmt.Sprintf("Mouse position: (%.1f, %.1f)", info.CursorX, info.CursorY),
		fmt.Sprintf("Mode: %s", info.Mode),
		fmt.Sprintf("Surface: %dx%d", info.Width, info.Height),
		fmt.Sprintf("Frame: %d", info.Index),
	}
}
