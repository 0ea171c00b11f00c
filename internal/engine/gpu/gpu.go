// Package gpu defines the backend-neutral GPU interfaces the engine renders through.
//
// The shape follows WebGPU: an Instance yields an Adapter compatible with its
// Surface, the Adapter opens a Device, and all drawing is recorded into
// CommandEncoders and submitted on the device Queue. Backends live in
// subpackages (wgpubackend, glbackend) and a recording fake lives in gputest.
package gpu

import "context"

// Releaser is implemented by every GPU object with an explicit lifetime.
type Releaser interface {
	Release()
}

// Instance is the entry point of a backend, bound to one presentation surface.
type Instance interface {
	// Surface returns the presentation surface the instance was created for.
	Surface() Surface
	// RequestAdapter returns an adapter able to present to Surface.
	// It returns ErrAdapterUnavailable if none exists.
	RequestAdapter(ctx context.Context, opts AdapterOptions) (Adapter, error)
	Release()
}

// Adapter is a physical device.
type Adapter interface {
	Info() AdapterInfo
	// SurfaceFormats lists the surface formats supported for presentation,
	// preferred format first.
	SurfaceFormats(s Surface) []TextureFormat
	RequestDevice(ctx context.Context, desc DeviceDescriptor) (Device, error)
	Release()
}

// Device creates GPU resources.
type Device interface {
	Queue() Queue
	CreateBuffer(desc BufferDescriptor) (Buffer, error)
	CreateTexture(desc TextureDescriptor) (Texture, error)
	CreateSampler(desc SamplerDescriptor) (Sampler, error)
	CreateBindGroupLayout(desc BindGroupLayoutDescriptor) (BindGroupLayout, error)
	CreateBindGroup(desc BindGroupDescriptor) (BindGroup, error)
	CreateShaderModule(desc ShaderModuleDescriptor) (ShaderModule, error)
	CreatePipelineLayout(desc PipelineLayoutDescriptor) (PipelineLayout, error)
	CreateRenderPipeline(desc RenderPipelineDescriptor) (RenderPipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)
	Release()
}

// Queue executes command buffers and uploads data in submission order.
type Queue interface {
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	WriteTexture(dst Texture, data []byte, layout TextureDataLayout, size Extent3D) error
	Submit(cmds ...CommandBuffer)
}

// Surface is the presentable target frames are rendered into.
type Surface interface {
	Configure(adapter Adapter, device Device, cfg SurfaceConfiguration) error
	// AcquireTexture returns the next frame. Failures are one of
	// ErrSurfaceLost, ErrSurfaceOutOfMemory, ErrSurfaceTimeout or
	// ErrSurfaceOutdated, possibly wrapped.
	AcquireTexture() (SurfaceTexture, error)
	Release()
}

// SurfaceTexture is an acquired frame. Present or Release it exactly once.
type SurfaceTexture interface {
	CreateView() (TextureView, error)
	Present() error
	Release()
}

type Buffer interface {
	Releaser
	Size() uint64
	Usage() BufferUsage
}

type Texture interface {
	Releaser
	CreateView() (TextureView, error)
	Width() uint32
	Height() uint32
}

type TextureView interface{ Releaser }

type Sampler interface{ Releaser }

type BindGroupLayout interface{ Releaser }

type BindGroup interface{ Releaser }

type ShaderModule interface{ Releaser }

type PipelineLayout interface{ Releaser }

type RenderPipeline interface{ Releaser }

type CommandBuffer interface{ Releaser }

// CommandEncoder records one frame worth of passes.
type CommandEncoder interface {
	BeginRenderPass(desc RenderPassDescriptor) (RenderPassEncoder, error)
	Finish() (CommandBuffer, error)
	Release()
}

// RenderPassEncoder records draw commands for one render pass.
type RenderPassEncoder interface {
	SetPipeline(p RenderPipeline)
	SetBindGroup(index uint32, group BindGroup)
	SetVertexBuffer(slot uint32, buf Buffer)
	SetIndexBuffer(buf Buffer, format IndexFormat)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End() error
}
