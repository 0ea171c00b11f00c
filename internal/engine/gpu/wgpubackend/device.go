package wgpubackend

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// Device wraps a wgpu logical device.
type Device struct {
	device *wgpu.Device
	queue  *Queue
}

func (d *Device) Queue() gpu.Queue { return d.queue }

func (d *Device) Release() {
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
}

func (d *Device) CreateBuffer(desc gpu.BufferDescriptor) (gpu.Buffer, error) {
	b, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: desc.Label,
		Size:  desc.Size,
		Usage: toBufferUsage(desc.Usage),
	})
	if err != nil {
		return nil, err
	}
	return &buffer{buffer: b, desc: desc}, nil
}

func (d *Device) CreateTexture(desc gpu.TextureDescriptor) (gpu.Texture, error) {
	format, err := toTextureFormat(desc.Format)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", desc.Label, err)
	}
	layers := desc.Size.DepthOrArrayLayers
	if layers == 0 {
		layers = 1
	}
	t, err := d.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     desc.Label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              desc.Size.Width,
			Height:             desc.Size.Height,
			DepthOrArrayLayers: layers,
		},
		Format:        format,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	return &texture{texture: t, desc: desc}, nil
}

func (d *Device) CreateSampler(desc gpu.SamplerDescriptor) (gpu.Sampler, error) {
	s, err := d.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         desc.Label,
		AddressModeU:  toAddressMode(desc.AddressModeU),
		AddressModeV:  toAddressMode(desc.AddressModeV),
		AddressModeW:  toAddressMode(desc.AddressModeW),
		MagFilter:     toFilterMode(desc.MagFilter),
		MinFilter:     toFilterMode(desc.MinFilter),
		MipmapFilter:  toMipmapFilterMode(desc.MipmapFilter),
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}
	return &sampler{sampler: s}, nil
}

func (d *Device) CreateBindGroupLayout(desc gpu.BindGroupLayoutDescriptor) (gpu.BindGroupLayout, error) {
	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entries = append(entries, toLayoutEntry(e))
	}
	l, err := d.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &bindGroupLayout{layout: l}, nil
}

func (d *Device) CreateBindGroup(desc gpu.BindGroupDescriptor) (gpu.BindGroup, error) {
	layout, ok := desc.Layout.(*bindGroupLayout)
	if !ok {
		return nil, fmt.Errorf("bind group %q: foreign layout", desc.Label)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(desc.Entries))
	for _, e := range desc.Entries {
		entry := wgpu.BindGroupEntry{Binding: e.Binding}
		switch {
		case e.Buffer != nil:
			b, ok := e.Buffer.(*buffer)
			if !ok {
				return nil, fmt.Errorf("bind group %q: foreign buffer", desc.Label)
			}
			entry.Buffer = b.buffer
			entry.Size = wgpu.WholeSize
		case e.TextureView != nil:
			v, ok := e.TextureView.(*textureView)
			if !ok {
				return nil, fmt.Errorf("bind group %q: foreign texture view", desc.Label)
			}
			entry.TextureView = v.view
		case e.Sampler != nil:
			s, ok := e.Sampler.(*sampler)
			if !ok {
				return nil, fmt.Errorf("bind group %q: foreign sampler", desc.Label)
			}
			entry.Sampler = s.sampler
		default:
			return nil, fmt.Errorf("bind group %q: binding %d is empty", desc.Label, e.Binding)
		}
		entries = append(entries, entry)
	}

	g, err := d.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   desc.Label,
		Layout:  layout.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	return &bindGroup{group: g}, nil
}

func (d *Device) CreateShaderModule(desc gpu.ShaderModuleDescriptor) (gpu.ShaderModule, error) {
	if desc.WGSL == "" {
		return nil, fmt.Errorf("shader module %q has no WGSL source", desc.Label)
	}
	m, err := d.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          desc.Label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: desc.WGSL},
	})
	if err != nil {
		return nil, err
	}
	return &shaderModule{module: m}, nil
}

func (d *Device) CreatePipelineLayout(desc gpu.PipelineLayoutDescriptor) (gpu.PipelineLayout, error) {
	layouts := make([]*wgpu.BindGroupLayout, 0, len(desc.BindGroupLayouts))
	for _, bgl := range desc.BindGroupLayouts {
		l, ok := bgl.(*bindGroupLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline layout %q: foreign bind group layout", desc.Label)
		}
		layouts = append(layouts, l.layout)
	}
	l, err := d.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: layouts,
	})
	if err != nil {
		return nil, err
	}
	return &pipelineLayout{layout: l}, nil
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
	format, err := toTextureFormat(desc.TargetFormat)
	if err != nil {
		return nil, fmt.Errorf("pipeline %q: %w", desc.Label, err)
	}
	var layout *wgpu.PipelineLayout
	if desc.Layout != nil {
		l, ok := desc.Layout.(*pipelineLayout)
		if !ok {
			return nil, fmt.Errorf("pipeline %q: foreign layout", desc.Label)
		}
		layout = l.layout
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}

	p, err := d.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs.module,
			EntryPoint: desc.Vertex.EntryPoint,
			Buffers:    toVertexBufferLayouts(desc.VertexBuffers),
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: toFrontFace(desc.Primitive.FrontFace),
			CullMode:  toCullMode(desc.Primitive.CullMode),
		},
		Multisample: wgpu.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs.module,
			EntryPoint: desc.Fragment.EntryPoint,
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
	})
	if err != nil {
		return nil, err
	}
	return &renderPipeline{pipeline: p}, nil
}

func (d *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	e, err := d.device.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if err != nil {
		return nil, err
	}
	return &commandEncoder{encoder: e}, nil
}

// Queue wraps the device queue.
type Queue struct {
	queue *wgpu.Queue
}

func (q *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*buffer)
	if !ok {
		return errors.New("write to foreign buffer")
	}
	if offset+uint64(len(data)) > b.desc.Size {
		return fmt.Errorf("write of %d bytes at %d overruns buffer %q", len(data), offset, b.desc.Label)
	}
	return q.queue.WriteBuffer(b.buffer, offset, data)
}

func (q *Queue) WriteTexture(dst gpu.Texture, data []byte, layout gpu.TextureDataLayout, size gpu.Extent3D) error {
	t, ok := dst.(*texture)
	if !ok {
		return errors.New("write to foreign texture")
	}
	layers := size.DepthOrArrayLayers
	if layers == 0 {
		layers = 1
	}
	return q.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		data,
		&wgpu.TextureDataLayout{
			Offset:       layout.Offset,
			BytesPerRow:  layout.BytesPerRow,
			RowsPerImage: layout.RowsPerImage,
		},
		&wgpu.Extent3D{Width: size.Width, Height: size.Height, DepthOrArrayLayers: layers},
	)
}

func (q *Queue) Submit(cmds ...gpu.CommandBuffer) {
	bufs := make([]*wgpu.CommandBuffer, 0, len(cmds))
	for _, c := range cmds {
		if cb, ok := c.(*commandBuffer); ok && cb.buffer != nil {
			bufs = append(bufs, cb.buffer)
		}
	}
	q.queue.Submit(bufs...)
}
