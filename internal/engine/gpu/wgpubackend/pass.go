package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/multierr"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

type commandEncoder struct {
	encoder *wgpu.CommandEncoder
}

func (e *commandEncoder) BeginRenderPass(desc gpu.RenderPassDescriptor) (gpu.RenderPassEncoder, error) {
	view, ok := desc.View.(*textureView)
	if !ok {
		return nil, fmt.Errorf("render pass %q: foreign texture view", desc.Label)
	}
	c := desc.ClearValue
	pass := e.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: desc.Label,
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view.view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: c.R, G: c.G, B: c.B, A: c.A},
		}},
	})
	return &renderPass{pass: pass}, nil
}

func (e *commandEncoder) Finish() (gpu.CommandBuffer, error) {
	cb, err := e.encoder.Finish(nil)
	if err != nil {
		return nil, err
	}
	return &commandBuffer{buffer: cb}, nil
}

func (e *commandEncoder) Release() {
	if e.encoder != nil {
		e.encoder.Release()
		e.encoder = nil
	}
}

// renderPass forwards to wgpu; objects from another backend are collected
// as errors and returned from End.
type renderPass struct {
	pass *wgpu.RenderPassEncoder
	err  error
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
	p.pass.SetPipeline(pl.pipeline)
}

func (p *renderPass) SetBindGroup(index uint32, group gpu.BindGroup) {
	g, ok := group.(*bindGroup)
	if !ok {
		p.fail("SetBindGroup(%d) with foreign group", index)
		return
	}
	p.pass.SetBindGroup(index, g.group, nil)
}

func (p *renderPass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	b, ok := buf.(*buffer)
	if !ok {
		p.fail("SetVertexBuffer(%d) with foreign buffer", slot)
		return
	}
	p.pass.SetVertexBuffer(slot, b.buffer, 0, wgpu.WholeSize)
}

func (p *renderPass) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat) {
	b, ok := buf.(*buffer)
	if !ok {
		p.fail("SetIndexBuffer with foreign buffer")
		return
	}
	p.pass.SetIndexBuffer(b.buffer, toIndexFormat(format), 0, wgpu.WholeSize)
}

func (p *renderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.pass.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (p *renderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.pass.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (p *renderPass) End() error {
	err := p.pass.End()
	p.pass.Release()
	return multierr.Append(p.err, err)
}
