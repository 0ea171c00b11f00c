package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/multierr"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

type commandEncoder struct {
	label    string
	cmds     []func()
	open     *renderPass
	finished bool
}

func (e *commandEncoder) BeginRenderPass(desc gpu.RenderPassDescriptor) (gpu.RenderPassEncoder, error) {
	if e.finished {
		return nil, errors.New("encoder already finished")
	}
	if e.open != nil {
		return nil, errors.New("previous render pass not ended")
	}
	view, ok := desc.View.(*textureView)
	if !ok || view.frame == nil {
		return nil, fmt.Errorf("render pass %q: only the surface frame can be a color attachment", desc.Label)
	}

	cfg := view.frame.config
	fbo := view.frame.fbo
	clear := desc.ClearValue
	e.cmds = append(e.cmds, func() {
		gl.BindFramebuffer(gl.FRAMEBUFFER, fbo)
		gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
		if cfg.Format.IsSrgb() {
			gl.Enable(gl.FRAMEBUFFER_SRGB)
		} else {
			gl.Disable(gl.FRAMEBUFFER_SRGB)
		}
		gl.Disable(gl.DEPTH_TEST)
		gl.Disable(gl.BLEND)
		gl.ClearColor(float32(clear.R), float32(clear.G), float32(clear.B), float32(clear.A))
		gl.Clear(gl.COLOR_BUFFER_BIT)
	})

	p := &renderPass{encoder: e}
	e.open = p
	return p, nil
}

func (e *commandEncoder) Finish() (gpu.CommandBuffer, error) {
	if e.open != nil {
		return nil, errors.New("finish with open render pass")
	}
	if e.finished {
		return nil, errors.New("encoder finished twice")
	}
	e.finished = true
	cmds := append(e.cmds, func() {
		gl.BindVertexArray(0)
		gl.UseProgram(0)
		gl.Disable(gl.FRAMEBUFFER_SRGB)
		gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	})
	return &commandBuffer{label: e.label, cmds: cmds}, nil
}

func (e *commandEncoder) Release() { e.cmds = nil }

// renderPass validates commands while recording them onto its encoder.
type renderPass struct {
	encoder  *commandEncoder
	pipeline *renderPipeline
	groups   map[uint32]*bindGroup
	vertex   map[uint32]*buffer
	index    *buffer
	indexFmt gpu.IndexFormat
	err      error
	ended    bool
}

func (p *renderPass) record(cmd func()) {
	p.encoder.cmds = append(p.encoder.cmds, cmd)
}

func (p *renderPass) fail(format string, args ...any) {
	p.err = multierr.Append(p.err, fmt.Errorf(format, args...))
}

func (p *renderPass) SetPipeline(rp gpu.RenderPipeline) {
	pl, ok := rp.(*renderPipeline)
	if !ok {
		p.fail("SetPipeline with foreign pipeline")
		return
	}
	p.pipeline = pl
	p.record(pl.apply)
}

func (p *renderPass) SetBindGroup(index uint32, group gpu.BindGroup) {
	g, ok := group.(*bindGroup)
	if !ok {
		p.fail("SetBindGroup(%d) with foreign group", index)
		return
	}
	if p.groups == nil {
		p.groups = make(map[uint32]*bindGroup)
	}
	p.groups[index] = g
	p.record(func() { g.bind(index) })
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	b, ok := buf.(*buffer)
	if !ok {
		p.fail("SetVertexBuffer(%d) with foreign buffer", slot)
		return
	}
	if p.vertex == nil {
		p.vertex = make(map[uint32]*buffer)
	}
	p.vertex[slot] = b
}

func (p *renderPass) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat) {
	b, ok := buf.(*buffer)
	if !ok {
		p.fail("SetIndexBuffer with foreign buffer")
		return
	}
	p.index = b
	p.indexFmt = format
}

// prepare checks the bound state against the pipeline and records the
// attribute setup. Vertex attribute bindings are pipeline (VAO) state in
// GL 4.1, so they are applied at draw time.
func (p *renderPass) prepare() bool {
	if p.ended {
		p.fail("draw after End")
		return false
	}
	pl := p.pipeline
	if pl == nil {
		p.fail("draw without pipeline")
		return false
	}
	for i, want := range pl.layout.groups {
		got, ok := p.groups[uint32(i)]
		if !ok || got.layout != want {
			p.fail("pipeline %q: bind group %d missing or incompatible", pl.label, i)
			return false
		}
	}
	for slot := range pl.buffers {
		b, ok := p.vertex[uint32(slot)]
		if !ok {
			p.fail("pipeline %q: vertex buffer %d not set", pl.label, slot)
			return false
		}
		s := uint32(slot)
		p.record(func() { pl.attachVertexBuffer(s, b) })
	}
	return true
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	if firstInstance != 0 {
		p.fail("firstInstance is not supported")
		return
	}
	if !p.prepare() {
		return
	}
	p.record(func() {
		if instanceCount == 1 {
			gl.DrawArrays(gl.TRIANGLES, int32(firstVertex), int32(vertexCount))
			return
		}
		gl.DrawArraysInstanced(gl.TRIANGLES, int32(firstVertex), int32(vertexCount), int32(instanceCount))
	})
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	if instanceCount != 1 || baseVertex != 0 || firstInstance != 0 {
		p.fail("instanced or based indexed draws are not supported")
		return
	}
	if p.index == nil {
		p.fail("indexed draw without index buffer")
		return
	}
	if uint64(firstIndex+indexCount)*p.indexFmt.Size() > p.index.desc.Size {
		p.fail("index range %d+%d overruns buffer %q", firstIndex, indexCount, p.index.desc.Label)
		return
	}
	if !p.prepare() {
		return
	}

	index := p.index
	typ := uint32(gl.UNSIGNED_SHORT)
	if p.indexFmt == gpu.IndexUint32 {
		typ = gl.UNSIGNED_INT
	}
	offset := uintptr(uint64(firstIndex) * p.indexFmt.Size())
	p.record(func() {
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, index.id)
		gl.DrawElementsWithOffset(gl.TRIANGLES, int32(indexCount), typ, offset)
	})
}

func (p *renderPass) End() error {
	if p.ended {
		return errors.New("render pass ended twice")
	}
	p.ended = true
	p.encoder.open = nil
	return p.err
}
