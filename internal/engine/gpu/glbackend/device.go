package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// Device creates GL objects.
type Device struct {
	label string
	queue *Queue
	log   *zap.Logger
}

func (d *Device) Queue() gpu.Queue { return d.queue }

func (d *Device) Release() {}

func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("buffer %q has zero size", desc.Label)
	}
	b := &buffer{desc: desc}
	gl.GenBuffers(1, &b.id)
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	gl.BufferData(gl.COPY_WRITE_BUFFER, int(desc.Size), nil, bufferHint(desc.Usage))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	if e := glError(); e != gl.NO_ERROR {
		b.Release()
		return nil, fmt.Errorf("create buffer %q: GL error 0x%x", desc.Label, e)
	}
	return b, nil
}

func bufferHint(usage gpu.BufferUsage) uint32 {
	if usage&gpu.BufferUsageUniform != 0 {
		return gl.DYNAMIC_DRAW
	}
	return gl.STATIC_DRAW
}

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	internal, format, err := textureFormat(desc.Format)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", desc.Label, err)
	}
	t := &texture{desc: desc, format: format}
	gl.GenTextures(1, &t.id)
	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, int32(desc.Size.Width), int32(desc.Size.Height),
		0, format, gl.UNSIGNED_BYTE, nil)
	// Single level, so mipmapped minification filters stay complete.
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if e := glError(); e != gl.NO_ERROR {
		t.Release()
		return nil, fmt.Errorf("create texture %q: GL error 0x%x", desc.Label, e)
	}
	return t, nil
}

func textureFormat(f gpu.TextureFormat) (internal int32, format uint32, err error) {
	switch f {
	case gpu.FormatRGBA8Unorm:
		return gl.RGBA8, gl.RGBA, nil
	case gpu.FormatRGBA8UnormSrgb:
		return gl.SRGB8_ALPHA8, gl.RGBA, nil
	case gpu.FormatBGRA8Unorm:
		return gl.RGBA8, gl.BGRA, nil
	case gpu.FormatBGRA8UnormSrgb:
		return gl.SRGB8_ALPHA8, gl.BGRA, nil
	default:
		return 0, 0, fmt.Errorf("unsupported texture format %v", f)
	}
}

func (d *Device) CreateSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	s := &sampler{}
	gl.GenSamplers(1, &s.id)
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_S, wrapMode(desc.AddressModeU))
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_T, wrapMode(desc.AddressModeV))
	gl.SamplerParameteri(s.id, gl.TEXTURE_WRAP_R, wrapMode(desc.AddressModeW))
	gl.SamplerParameteri(s.id, gl.TEXTURE_MAG_FILTER, filter(desc.MagFilter))
	gl.SamplerParameteri(s.id, gl.TEXTURE_MIN_FILTER, minFilter(desc.MinFilter, desc.MipmapFilter))
	return s, nil
}

func wrapMode(m gpu.AddressMode) int32 {
	if m == gpu.AddressRepeat {
		return gl.REPEAT
	}
	return gl.CLAMP_TO_EDGE
}

func filter(f gpu.FilterMode) int32 {
	if f == gpu.FilterLinear {
		return gl.LINEAR
	}
	return gl.NEAREST
}

func minFilter(minify, mip gpu.FilterMode) int32 {
	switch {
	case minify == gpu.FilterLinear && mip == gpu.FilterLinear:
		return gl.LINEAR_MIPMAP_LINEAR
	case minify == gpu.FilterLinear:
		return gl.LINEAR_MIPMAP_NEAREST
	case mip == gpu.FilterLinear:
		return gl.NEAREST_MIPMAP_LINEAR
	default:
		return gl.NEAREST_MIPMAP_NEAREST
	}
}

// CreateBindGroupLayout assigns each entry a slot inside its group: uniform
// blocks keep their binding number, textures take consecutive units and the
// k-th sampler shares the unit of the k-th texture.
func (d *Device) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	l := &bindGroupLayout{desc: desc, slots: make(map[uint32]uint32, len(desc.Entries))}

	var textures, samplers uint32
	for _, e := range desc.Entries {
		if e.Binding >= maxBindingsPerGroup {
			return nil, fmt.Errorf("bind group layout %q: binding %d exceeds %d", desc.Label, e.Binding, maxBindingsPerGroup)
		}
		switch e.Type {
		case gpu.BindingUniformBuffer:
			l.slots[e.Binding] = e.Binding
		case gpu.BindingSampledTexture:
			l.slots[e.Binding] = textures
			textures++
		case gpu.BindingFilteringSampler:
			l.slots[e.Binding] = samplers
			samplers++
		}
		if e.Name == "" && e.Type != gpu.BindingFilteringSampler {
			return nil, fmt.Errorf("bind group layout %q: binding %d needs a GLSL name", desc.Label, e.Binding)
		}
	}
	if samplers > textures {
		return nil, fmt.Errorf("bind group layout %q: %d samplers for %d textures", desc.Label, samplers, textures)
	}
	return l, nil
}

func (d *Device) CreateBindGroup(desc gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q: foreign layout", desc.Label)
	}

	g := &bindGroup{layout: layout}
	for _, e := range desc.Entries {
		slot, ok := layout.slots[e.Binding]
		if !ok {
			return nil, fmt.Errorf("bind group %q: binding %d not in layout", desc.Label, e.Binding)
		}
		switch {
		case e.Buffer != nil:
			b, ok := e.Buffer.(*buffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q: foreign buffer", desc.Label)
			}
			g.buffers = append(g.buffers, boundBuffer{slot: slot, buf: b})
		case e.TextureView != nil:
			v, ok := e.TextureView.(*textureView)
			if !ok || v.texture == nil {
				return nil, fmt.Errorf("bind group %q: binding %d needs a texture view", desc.Label, e.Binding)
			}
			g.textures = append(g.textures, boundTexture{slot: slot, tex: v.texture})
		case e.Sampler != nil:
			s, ok := e.Sampler.(*sampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q: foreign sampler", desc.Label)
			}
			g.samplers = append(g.samplers, boundSampler{slot: slot, s: s})
		default:
			return nil, fmt.Errorf("bind group %q: binding %d is empty", desc.Label, e.Binding)
		}
	}
	return g, nil
}

func (d *Device) CreateShaderModule(desc gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	if len(desc.GLSL) == 0 {
		return nil, fmt.Errorf("shader module %q has no GLSL stages", desc.Label)
	}
	return &shaderModule{label: desc.Label, stages: desc.GLSL}, nil
}

func (d *Device) CreatePipelineLayout(desc gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	l := &pipelineLayout{}
	for _, bgl := range desc.BindGroupLayouts {
		group, ok := bgl.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline layout %q: foreign bind group layout", desc.Label)
		}
		l.groups = append(l.groups, group)
	}
	return l, nil
}

func (d *Device) CreateRenderPipeline(desc gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	vs, ok := desc.Vertex.Module.(*shaderModule)
	if !ok {
		return nil, fmt.Errorf("pipeline %q: missing vertex module", desc.Label)
	}
	fs, ok := desc.Fragment.Module.(*shaderModule)
	if !ok {
		return nil, fmt.Errorf("pipeline %q: missing fragment module", desc.Label)
	}
	layout := &pipelineLayout{}
	if desc.Layout != nil {
		if layout, ok = desc.Layout.(*pipelineLayout); !ok {
			return nil, fmt.Errorf("pipeline %q: foreign layout", desc.Label)
		}
	}
	vsrc, ok := vs.stages[desc.Vertex.EntryPoint]
	if !ok {
		return nil, fmt.Errorf("pipeline %q: module %q has no stage %q", desc.Label, vs.label, desc.Vertex.EntryPoint)
	}
	fsrc, ok := fs.stages[desc.Fragment.EntryPoint]
	if !ok {
		return nil, fmt.Errorf("pipeline %q: module %q has no stage %q", desc.Label, fs.label, desc.Fragment.EntryPoint)
	}
	if desc.SampleCount > 1 {
		return nil, fmt.Errorf("pipeline %q: multisampling is not supported", desc.Label)
	}

	program, err := compileProgram(vsrc, fsrc)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}
	bindProgramResources(program, layout.groups)

	p := &renderPipeline{
		label:     desc.Label,
		program:   program,
		layout:    layout,
		buffers:   desc.VertexBuffers,
		primitive: desc.Primitive,
	}
	// Core profile requires a bound VAO even for attribute-less draws.
	gl.GenVertexArrays(1, &p.vao)

	d.log.Debug("pipeline created", zap.String("label", desc.Label), zap.Uint32("program", program))
	return p, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	return &commandEncoder{label: label}, nil
}

// Queue uploads immediately and runs recorded commands on Submit.
type Queue struct {
	log *zap.Logger
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return errors.New("write to foreign buffer")
	}
	if offset+uint64(len(data)) > b.desc.Size {
		return fmt.Errorf("write of %d bytes at %d overruns buffer %q", len(data), offset, b.desc.Label)
	}
	if len(data) == 0 {
		return nil
	}
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.id)
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, int(offset), len(data), gl.Ptr(data))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
	if e := glError(); e != gl.NO_ERROR {
		return fmt.Errorf("write buffer %q: GL error 0x%x", b.desc.Label, e)
	}
	return nil
}

func (q *Queue) WriteTexture(dst gpu.Texture, data []byte, layout gpu.TextureDataLayout, size gpu.Extent3D) error {
	t, ok := dst.(*texture)
	if !ok {
		return errors.New("write to foreign texture")
	}
	need := layout.Offset + uint64(layout.BytesPerRow)*uint64(size.Height)
	if uint64(len(data)) < need || len(data) == 0 {
		return fmt.Errorf("texture %q upload has %d bytes, need %d", t.desc.Label, len(data), need)
	}

	gl.BindTexture(gl.TEXTURE_2D, t.id)
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(layout.BytesPerRow/4))
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(size.Width), int32(size.Height),
		t.format, gl.UNSIGNED_BYTE, gl.Ptr(data[layout.Offset:]))
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	if e := glError(); e != gl.NO_ERROR {
		return fmt.Errorf("write texture %q: GL error 0x%x", t.desc.Label, e)
	}
	return nil
}

// Submit executes the recorded commands in order. GL reports failures
// asynchronously, so they are logged rather than returned.
func (q *Queue) Submit(cmds ...gpu.CommandBuffer) {
	for _, c := range cmds {
		cb, ok := c.(*commandBuffer)
		if !ok {
			q.log.Error("submit of foreign command buffer")
			continue
		}
		for _, cmd := range cb.cmds {
			cmd()
		}
		if e := glError(); e != gl.NO_ERROR {
			q.log.Error("command buffer failed", zap.String("label", cb.label), zap.Uint32("gl_error", e))
		}
	}
}
