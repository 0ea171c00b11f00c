package wgpubackend

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

type buffer struct {
	buffer *wgpu.Buffer
	desc   gpu.BufferDescriptor
}

func (b *buffer) Size() uint64           { return b.desc.Size }
func (b *buffer) Usage() gpu.BufferUsage { return b.desc.Usage }

func (b *buffer) Release() {
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

type texture struct {
	texture *wgpu.Texture
	desc    gpu.TextureDescriptor
}

func (t *texture) CreateView() (gpu.TextureView, error) {
	v, err := t.texture.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return &textureView{view: v}, nil
}

func (t *texture) Width() uint32  { return t.desc.Size.Width }
func (t *texture) Height() uint32 { return t.desc.Size.Height }

func (t *texture) Release() {
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

type textureView struct{ view *wgpu.TextureView }

func (v *textureView) Release() {
	if v.view != nil {
		v.view.Release()
		v.view = nil
	}
}

type sampler struct{ sampler *wgpu.Sampler }

func (s *sampler) Release() {
	if s.sampler != nil {
		s.sampler.Release()
		s.sampler = nil
	}
}

type bindGroupLayout struct{ layout *wgpu.BindGroupLayout }

func (l *bindGroupLayout) Release() {
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
}

type bindGroup struct{ group *wgpu.BindGroup }

func (g *bindGroup) Release() {
	if g.group != nil {
		g.group.Release()
		g.group = nil
	}
}

type shaderModule struct{ module *wgpu.ShaderModule }

func (m *shaderModule) Release() {
	if m.module != nil {
		m.module.Release()
		m.module = nil
	}
}

type pipelineLayout struct{ layout *wgpu.PipelineLayout }

func (l *pipelineLayout) Release() {
	if l.layout != nil {
		l.layout.Release()
		l.layout = nil
	}
}

type renderPipeline struct{ pipeline *wgpu.RenderPipeline }

func (p *renderPipeline) Release() {
	if p.pipeline != nil {
		p.pipeline.Release()
		p.pipeline = nil
	}
}

type commandBuffer struct{ buffer *wgpu.CommandBuffer }

func (c *commandBuffer) Release() {
	if c.buffer != nil {
		c.buffer.Release()
		c.buffer = nil
	}
}
