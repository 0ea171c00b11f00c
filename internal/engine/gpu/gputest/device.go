package gputest

import (
	"errors"
	"fmt"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// Device is a fake gpu.Device keeping every object it created.
type Device struct {
	Label string

	Buffers          []*Buffer
	Textures         []*Texture
	Samplers         []*Sampler
	BindGroupLayouts []*BindGroupLayout
	BindGroups       []*BindGroup
	ShaderModules    []*ShaderModule
	PipelineLayouts  []*PipelineLayout
	Pipelines        []*RenderPipeline
	Encoders         []*CommandEncoder

	queue    *Queue
	released bool
}

func (d *Device) Queue() gpu.Queue { return d.queue }

// FakeQueue returns the concrete queue for assertions.
func (d *Device) FakeQueue() *Queue { return d.queue }

// Released reports whether Release was called.
func (d *Device) Released() bool { return d.released }

func (d *Device) Release() { d.released = true }

func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 || desc.Size%4 != 0 {
		return nil, fmt.Errorf("gputest: buffer %q size %d is not a positive multiple of 4", desc.Label, desc.Size)
	}
	b := &Buffer{Desc: desc, Data: make([]byte, desc.Size)}
	d.Buffers = append(d.Buffers, b)
	return b, nil
}

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	if desc.Size.Width == 0 || desc.Size.Height == 0 {
		return nil, fmt.Errorf("gputest: texture %q has zero size", desc.Label)
	}
	t := &Texture{Desc: desc}
	d.Textures = append(d.Textures, t)
	return t, nil
}

func (d *Device) CreateSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	s := &Sampler{Desc: desc}
	d.Samplers = append(d.Samplers, s)
	return s, nil
}

func (d *Device) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	l := &BindGroupLayout{Desc: desc}
	d.BindGroupLayouts = append(d.BindGroupLayouts, l)
	return l, nil
}

func (d *Device) CreateBindGroup(desc gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*BindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("gputest: bind group %q has no layout", desc.Label)
	}
	if len(desc.Entries) != len(layout.Desc.Entries) {
		return nil, fmt.Errorf("gputest: bind group %q has %d entries, layout declares %d",
			desc.Label, len(desc.Entries), len(layout.Desc.Entries))
	}
	for i, e := range desc.Entries {
		want := layout.Desc.Entries[i]
		if e.Binding != want.Binding {
			return nil, fmt.Errorf("gputest: bind group %q entry %d binding %d, want %d", desc.Label, i, e.Binding, want.Binding)
		}
		var kindOK bool
		switch want.Type {
		case gpu.BindingUniformBuffer:
			buf, isBuf := e.Buffer.(*Buffer)
			kindOK = isBuf && buf.Desc.Usage&gpu.BufferUsageUniform != 0
		case gpu.BindingSampledTexture:
			kindOK = e.TextureView != nil
		case gpu.BindingFilteringSampler:
			kindOK = e.Sampler != nil
		}
		if !kindOK {
			return nil, fmt.Errorf("gputest: bind group %q entry %d does not match layout type", desc.Label, i)
		}
	}
	g := &BindGroup{Desc: desc}
	d.BindGroups = append(d.BindGroups, g)
	return g, nil
}

func (d *Device) CreateShaderModule(desc gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	if desc.WGSL == "" && len(desc.GLSL) == 0 {
		return nil, fmt.Errorf("gputest: shader module %q has no source", desc.Label)
	}
	m := &ShaderModule{Desc: desc}
	d.ShaderModules = append(d.ShaderModules, m)
	return m, nil
}

func (d *Device) CreatePipelineLayout(desc gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	l := &PipelineLayout{Desc: desc}
	d.PipelineLayouts = append(d.PipelineLayouts, l)
	return l, nil
}

func (d *Device) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	if desc.Vertex.Module == nil || desc.Fragment.Module == nil {
		return nil, fmt.Errorf("gputest: pipeline %q is missing a shader stage", desc.Label)
	}
	if desc.TargetFormat == gpu.FormatUndefined {
		return nil, fmt.Errorf("gputest: pipeline %q has no target format", desc.Label)
	}
	p := &RenderPipeline{Desc: desc}
	d.Pipelines = append(d.Pipelines, p)
	return p, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	if d.released {
		return nil, errors.New("gputest: device released")
	}
	e := &CommandEncoder{Label: label}
	d.Encoders = append(d.Encoders, e)
	return e, nil
}

// Write is one recorded Queue.WriteBuffer call.
type Write struct {
	Buffer *Buffer
	Offset uint64
	Data   []byte
}

// Queue is a fake gpu.Queue.
type Queue struct {
	Writes        []Write
	TextureWrites []*Texture
	Submitted     []*CommandBuffer

	device *Device
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*Buffer)
	if !ok {
		return errors.New("gputest: foreign buffer")
	}
	if b.Desc.Usage&gpu.BufferUsageCopyDst == 0 {
		return fmt.Errorf("gputest: buffer %q lacks CopyDst usage", b.Desc.Label)
	}
	if offset%4 != 0 || len(data)%4 != 0 {
		return fmt.Errorf("gputest: unaligned write to %q", b.Desc.Label)
	}
	if offset+uint64(len(data)) > b.Desc.Size {
		return fmt.Errorf("gputest: write past end of %q", b.Desc.Label)
	}
	copy(b.Data[offset:], data)
	q.Writes = append(q.Writes, Write{Buffer: b, Offset: offset, Data: append([]byte(nil), data...)})
	return nil
}

func (q *Queue) WriteTexture(dst gpu.Texture, data []byte, layout gpu.TextureDataLayout, size gpu.Extent3D) error {
	t, ok := dst.(*Texture)
	if !ok {
		return errors.New("gputest: foreign texture")
	}
	need := uint64(layout.BytesPerRow) * uint64(size.Height)
	if uint64(len(data)) < layout.Offset+need {
		return fmt.Errorf("gputest: texture %q upload has %d bytes, need %d", t.Desc.Label, len(data), need)
	}
	t.Data = append([]byte(nil), data...)
	t.Layout = layout
	q.TextureWrites = append(q.TextureWrites, t)
	return nil
}

func (q *Queue) Submit(cmds ...gpu.CommandBuffer) {
	for _, c := range cmds {
		if cb, ok := c.(*CommandBuffer); ok {
			q.Submitted = append(q.Submitted, cb)
		}
	}
}

// WritesTo returns the writes recorded for b, oldest first.
func (q *Queue) WritesTo(b gpu.Buffer) []Write {
	var out []Write
	for _, w := range q.Writes {
		if w.Buffer == b {
			out = append(out, w)
		}
	}
	return out
}

// LastPass returns the last pass of the last submitted command buffer.
func (q *Queue) LastPass() *RenderPass {
	if len(q.Submitted) == 0 {
		return nil
	}
	passes := q.Submitted[len(q.Submitted)-1].Passes
	if len(passes) == 0 {
		return nil
	}
	return passes[len(passes)-1]
}
