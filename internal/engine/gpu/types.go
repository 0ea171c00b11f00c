package gpu

import "fmt"

// PowerPreference hints which adapter to pick on multi-GPU systems.
type PowerPreference uint8

const (
	PowerHighPerformance PowerPreference = iota
	PowerLow
)

// AdapterOptions selects an adapter.
type AdapterOptions struct {
	PowerPreference PowerPreference
	ForceFallback   bool
}

// AdapterInfo describes the selected adapter for logging.
type AdapterInfo struct {
	Name    string
	Vendor  string
	Backend string
}

// DeviceDescriptor describes the logical device to open.
type DeviceDescriptor struct {
	Label string
}

// TextureFormat is a pixel format.
type TextureFormat uint8

const (
	FormatUndefined TextureFormat = iota
	FormatRGBA8Unorm
	FormatRGBA8UnormSrgb
	FormatBGRA8Unorm
	FormatBGRA8UnormSrgb
)

func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA8Unorm:
		return "rgba8unorm"
	case FormatRGBA8UnormSrgb:
		return "rgba8unorm-srgb"
	case FormatBGRA8Unorm:
		return "bgra8unorm"
	case FormatBGRA8UnormSrgb:
		return "bgra8unorm-srgb"
	default:
		return fmt.Sprintf("format(%d)", uint8(f))
	}
}

// IsSrgb reports whether the format applies sRGB encoding on write.
func (f TextureFormat) IsSrgb() bool {
	return f == FormatRGBA8UnormSrgb || f == FormatBGRA8UnormSrgb
}

// PresentMode controls presentation synchronization.
type PresentMode uint8

const (
	PresentFifo PresentMode = iota // vsync
	PresentImmediate
)

// SurfaceConfiguration is applied by Surface.Configure.
type SurfaceConfiguration struct {
	Format      TextureFormat
	Width       uint32
	Height      uint32
	PresentMode PresentMode
}

// BufferUsage is a bit set.
type BufferUsage uint32

const (
	BufferUsageVertex BufferUsage = 1 << iota
	BufferUsageIndex
	BufferUsageUniform
	BufferUsageCopyDst
)

// BufferDescriptor describes a buffer. Size must be a multiple of 4.
type BufferDescriptor struct {
	Label string
	Size  uint64
	Usage BufferUsage
}

// Extent3D is a texture size.
type Extent3D struct {
	Width, Height, DepthOrArrayLayers uint32
}

// TextureDescriptor describes a 2D sampled texture.
type TextureDescriptor struct {
	Label  string
	Size   Extent3D
	Format TextureFormat
}

// TextureDataLayout describes pixel rows passed to Queue.WriteTexture.
type TextureDataLayout struct {
	Offset       uint64
	BytesPerRow  uint32
	RowsPerImage uint32
}

type AddressMode uint8

const (
	AddressClampToEdge AddressMode = iota
	AddressRepeat
)

type FilterMode uint8

const (
	FilterNearest FilterMode = iota
	FilterLinear
)

// SamplerDescriptor describes a sampler.
type SamplerDescriptor struct {
	Label        string
	AddressModeU AddressMode
	AddressModeV AddressMode
	AddressModeW AddressMode
	MagFilter    FilterMode
	MinFilter    FilterMode
	MipmapFilter FilterMode
}

// ShaderStage is a bit set of pipeline stages.
type ShaderStage uint8

const (
	StageVertex ShaderStage = 1 << iota
	StageFragment
)

// BindingType is the kind of resource a layout entry accepts.
type BindingType uint8

const (
	BindingUniformBuffer BindingType = iota
	BindingSampledTexture
	BindingFilteringSampler
)

// BindGroupLayoutEntry declares one binding slot.
//
// Name is the shader-side identifier (uniform block or sampler2D name). WebGPU
// ignores it; the OpenGL backend needs it because GLSL 4.1 has no binding
// qualifiers.
type BindGroupLayoutEntry struct {
	Binding    uint32
	Visibility ShaderStage
	Type       BindingType
	Name       string
}

type BindGroupLayoutDescriptor struct {
	Label   string
	Entries []BindGroupLayoutEntry
}

// BindGroupEntry binds exactly one of Buffer, TextureView or Sampler.
type BindGroupEntry struct {
	Binding     uint32
	Buffer      Buffer
	TextureView TextureView
	Sampler     Sampler
}

type BindGroupDescriptor struct {
	Label   string
	Layout  BindGroupLayout
	Entries []BindGroupEntry
}

// ShaderModuleDescriptor carries one program in every source language a
// backend may need. GLSL maps an entry point name to a complete GLSL stage.
type ShaderModuleDescriptor struct {
	Label string
	WGSL  string
	GLSL  map[string]string
}

type PipelineLayoutDescriptor struct {
	Label            string
	BindGroupLayouts []BindGroupLayout
}

type VertexFormat uint8

const (
	VertexFloat32x2 VertexFormat = iota
	VertexFloat32x3
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint64 {
	switch f {
	case VertexFloat32x2:
		return 8
	case VertexFloat32x3:
		return 12
	default:
		return 0
	}
}

// Components returns the number of float components.
func (f VertexFormat) Components() int32 {
	return int32(f.Size() / 4)
}

type VertexAttribute struct {
	Format         VertexFormat
	Offset         uint64
	ShaderLocation uint32
}

// VertexBufferLayout describes one per-vertex interleaved buffer.
type VertexBufferLayout struct {
	ArrayStride uint64
	Attributes  []VertexAttribute
}

type PrimitiveTopology uint8

const (
	TopologyTriangleList PrimitiveTopology = iota
)

type FrontFace uint8

const (
	FrontFaceCCW FrontFace = iota
	FrontFaceCW
)

type CullMode uint8

const (
	CullNone CullMode = iota
	CullFront
	CullBack
)

type PolygonMode uint8

const (
	PolygonFill PolygonMode = iota
)

// PrimitiveState is the fixed-function rasterizer state.
type PrimitiveState struct {
	Topology    PrimitiveTopology
	FrontFace   FrontFace
	CullMode    CullMode
	PolygonMode PolygonMode
}

// StageState binds a shader module entry point to a pipeline stage.
type StageState struct {
	Module     ShaderModule
	EntryPoint string
}

// RenderPipelineDescriptor describes a pipeline without depth/stencil.
// Layout may be nil only if the pipeline binds nothing.
type RenderPipelineDescriptor struct {
	Label         string
	Layout        PipelineLayout
	Vertex        StageState
	VertexBuffers []VertexBufferLayout
	Fragment      StageState
	TargetFormat  TextureFormat
	Primitive     PrimitiveState
	SampleCount   uint32
}

type IndexFormat uint8

const (
	IndexUint16 IndexFormat = iota
	IndexUint32
)

// Size returns the size of one index in bytes.
func (f IndexFormat) Size() uint64 {
	if f == IndexUint32 {
		return 4
	}
	return 2
}

// Color is a linear RGBA clear value.
type Color struct {
	R, G, B, A float64
}

// RenderPassDescriptor describes a pass with a single cleared color attachment.
type RenderPassDescriptor struct {
	Label      string
	View       TextureView
	ClearValue Color
}
