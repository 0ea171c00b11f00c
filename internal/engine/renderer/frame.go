package renderer

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/pipeline"
	"github.com/Faultbox/town-links/internal/engine/rendermode"
)

// Render draws one frame and presents it.
//
// Surface acquisition errors are returned wrapped so callers can classify
// them with gpu.IsRecoverable, gpu.IsSkippable and gpu.IsFatal. When any step
// after acquisition fails the frame is released without being presented.
func (e *Engine) Render() error {
	frame, err := e.surface.AcquireTexture()
	if err != nil {
		return fmt.Errorf("acquire frame: %w", err)
	}
	defer frame.Release()

	view, err := frame.CreateView()
	if err != nil {
		return fmt.Errorf("frame view: %w", err)
	}
	defer view.Release()

	encoder, err := e.device.CreateCommandEncoder("Render Encoder")
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	pass, err := encoder.BeginRenderPass(gpu.RenderPassDescriptor{
		Label:      "Render Pass",
		View:       view,
		ClearValue: e.clearColor,
	})
	if err != nil {
		return fmt.Errorf("begin render pass: %w", err)
	}

	e.draw(pass, rendermode.Select(e.fsm.Mode()))

	if e.overlay != nil {
		info := FrameInfo{
			Index:   e.frames,
			Width:   e.config.Width,
			Height:  e.config.Height,
			Mode:    e.fsm.Mode(),
			CursorX: e.cursorX,
			CursorY: e.cursorY,
		}
		if err := e.overlay.DrawOverlay(pass, info); err != nil {
			return multierr.Append(fmt.Errorf("overlay: %w", err), pass.End())
		}
	}

	if err := pass.End(); err != nil {
		return fmt.Errorf("end render pass: %w", err)
	}

	cmd, err := encoder.Finish()
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	e.queue.Submit(cmd)
	cmd.Release()

	if err := frame.Present(); err != nil {
		return fmt.Errorf("present: %w", err)
	}
	e.frames++
	return nil
}

// draw records the scene for one selection.
func (e *Engine) draw(pass gpu.RenderPassEncoder, sel rendermode.Selection) {
	pass.SetPipeline(e.pipelines.Get(sel.Pipeline))

	if sel.BindsResources() {
		pass.SetBindGroup(pipeline.TextureGroup, e.textureGroup(sel.Texture))
		pass.SetBindGroup(pipeline.TransformGroup, e.transformGroup(sel.Transform))
	}

	if !sel.Indexed {
		pass.Draw(sel.VertexCount, 1, 0, 0)
		return
	}

	indices := e.geometry.Indices(sel.Indices)
	pass.SetVertexBuffer(0, e.geometry.Vertices)
	pass.SetIndexBuffer(indices.Buffer, indices.Format)
	pass.DrawIndexed(indices.Count, 1, 0, 0, 0)
}

func (e *Engine) textureGroup(t rendermode.Texture) gpu.BindGroup {
	if t == rendermode.Texture2 {
		return e.textureGroups[1]
	}
	return e.textureGroups[0]
}

func (e *Engine) transformGroup(t rendermode.Transform) gpu.BindGroup {
	if t == rendermode.ModelTransform {
		return e.modelGroup
	}
	return e.cameraGroup
}
