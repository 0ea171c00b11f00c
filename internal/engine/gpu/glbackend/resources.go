package glbackend

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

type buffer struct {
	id   uint32
	desc gpu.BufferDescriptor
}

func (b *buffer) Size() uint64           { return b.desc.Size }
func (b *buffer) Usage() gpu.BufferUsage { return b.desc.Usage }

func (b *buffer) Release() {
	if b.id != 0 {
		gl.DeleteBuffers(1, &b.id)
		b.id = 0
	}
}

type texture struct {
	id     uint32
	desc   gpu.TextureDescriptor
	format uint32 // client pixel format
}

func (t *texture) CreateView() (gpu.TextureView, error) { return &textureView{texture: t}, nil }
func (t *texture) Width() uint32                        { return t.desc.Size.Width }
func (t *texture) Height() uint32                       { return t.desc.Size.Height }

func (t *texture) Release() {
	if t.id != 0 {
		gl.DeleteTextures(1, &t.id)
		t.id = 0
	}
}

// textureView refers to a texture, or to the default framebuffer when
// frame is set.
type textureView struct {
	texture *texture
	frame   *surfaceTexture
}

func (v *textureView) Release() {}

type sampler struct {
	id uint32
}

func (s *sampler) Release() {
	if s.id != 0 {
		gl.DeleteSamplers(1, &s.id)
		s.id = 0
	}
}

type bindGroupLayout struct {
	desc  gpu.BindGroupLayoutDescriptor
	slots map[uint32]uint32 // binding -> slot within the group
}

func (l *bindGroupLayout) Release() {}

type boundBuffer struct {
	slot uint32
	buf  *buffer
}

type boundTexture struct {
	slot uint32
	tex  *texture
}

type boundSampler struct {
	slot uint32
	s    *sampler
}

type bindGroup struct {
	layout   *bindGroupLayout
	buffers  []boundBuffer
	textures []boundTexture
	samplers []boundSampler
}

func (g *bindGroup) Release() {}

// bind attaches the group's resources at group index.
func (g *bindGroup) bind(index uint32) {
	base := index * maxBindingsPerGroup
	for _, b := range g.buffers {
		gl.BindBufferBase(gl.UNIFORM_BUFFER, base+b.slot, b.buf.id)
	}
	for _, t := range g.textures {
		gl.ActiveTexture(gl.TEXTURE0 + base + t.slot)
		gl.BindTexture(gl.TEXTURE_2D, t.tex.id)
	}
	for _, s := range g.samplers {
		gl.BindSampler(base+s.slot, s.s.id)
	}
}

type shaderModule struct {
	label  string
	stages map[string]string
}

func (m *shaderModule) Release() {}

type pipelineLayout struct {
	groups []*bindGroupLayout
}

func (l *pipelineLayout) Release() {}

type renderPipeline struct {
	label     string
	program   uint32
	vao       uint32
	layout    *pipelineLayout
	buffers   []gpu.VertexBufferLayout
	primitive gpu.PrimitiveState
}

func (p *renderPipeline) Release() {
	if p.vao != 0 {
		gl.DeleteVertexArrays(1, &p.vao)
		p.vao = 0
	}
	if p.program != 0 {
		gl.DeleteProgram(p.program)
		p.program = 0
	}
}

// apply makes the pipeline current together with its fixed-function state.
func (p *renderPipeline) apply() {
	gl.UseProgram(p.program)
	gl.BindVertexArray(p.vao)

	switch p.primitive.CullMode {
	case gpu.CullNone:
		gl.Disable(gl.CULL_FACE)
	case gpu.CullFront:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.FRONT)
	case gpu.CullBack:
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
	}
	if p.primitive.FrontFace == gpu.FrontFaceCW {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
	gl.PolygonMode(gl.FRONT_AND_BACK, gl.FILL)
}

// attachVertexBuffer points the pipeline's attributes for slot at buf.
func (p *renderPipeline) attachVertexBuffer(slot uint32, buf *buffer) {
	if int(slot) >= len(p.buffers) {
		return
	}
	layout := p.buffers[slot]
	gl.BindBuffer(gl.ARRAY_BUFFER, buf.id)
	for _, a := range layout.Attributes {
		gl.EnableVertexAttribArray(a.ShaderLocation)
		gl.VertexAttribPointerWithOffset(a.ShaderLocation, a.Format.Components(), gl.FLOAT, false,
			int32(layout.ArrayStride), uintptr(a.Offset))
	}
}

type commandBuffer struct {
	label string
	cmds  []func()
}

func (c *commandBuffer) Release() { c.cmds = nil }
