// Package pipeline builds the fixed set of render pipelines.
package pipeline

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/Faultbox/town-links/internal/engine/geometry"
	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/shader"
)

// Kind identifies a pipeline in the set.
type Kind int

const (
	// Primary draws the textured shape with the texture and transform groups.
	Primary Kind = iota
	// Alternate draws a procedural triangle with no bindings or vertex buffers.
	Alternate
	// Tertiary uses the primary shader through its own layout object.
	Tertiary

	kindCount
)

func (k Kind) String() string {
	switch k {
	case Primary:
		return "primary"
	case Alternate:
		return "alternate"
	case Tertiary:
		return "tertiary"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Bind group slots of the textured pipelines.
const (
	TextureGroup   = 0
	TransformGroup = 1
)

// Layouts are the bind group layouts shared by every textured pipeline.
// Bind groups created from them are compatible with Primary and Tertiary.
type Layouts struct {
	Texture   gpu.BindGroupLayout
	Transform gpu.BindGroupLayout
}

// TextureLayoutDescriptor declares a sampled texture at binding 0 and its
// sampler at binding 1.
func TextureLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "Texture Bind Group Layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.StageFragment, Type: gpu.BindingSampledTexture, Name: shader.DiffuseTexture},
			{Binding: 1, Visibility: gpu.StageFragment, Type: gpu.BindingFilteringSampler, Name: shader.DiffuseSampler},
		},
	}
}

// TransformLayoutDescriptor declares one uniform buffer at binding 0.
func TransformLayoutDescriptor() gpu.BindGroupLayoutDescriptor {
	return gpu.BindGroupLayoutDescriptor{
		Label: "Transform Bind Group Layout",
		Entries: []gpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gpu.StageVertex, Type: gpu.BindingUniformBuffer, Name: shader.TransformBlock},
		},
	}
}

// NewLayouts creates the texture and transform bind group layouts.
func NewLayouts(dev gpu.Device) (*Layouts, error) {
	tex, err := dev.CreateBindGroupLayout(TextureLayoutDescriptor())
	if err != nil {
		return nil, fmt.Errorf("texture bind group layout: %w", err)
	}
	transform, err := dev.CreateBindGroupLayout(TransformLayoutDescriptor())
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("transform bind group layout: %w", err)
	}
	return &Layouts{Texture: tex, Transform: transform}, nil
}

// Release frees both layouts.
func (l *Layouts) Release() {
	l.Texture.Release()
	l.Transform.Release()
}

// Set owns the pipelines, their layouts and shader modules.
type Set struct {
	Format gpu.TextureFormat

	pipelines [kindCount]gpu.RenderPipeline
	layouts   [kindCount]gpu.PipelineLayout
	modules   []gpu.ShaderModule
}

// Primitive is the rasterizer state shared by every pipeline.
func Primitive() gpu.PrimitiveState {
	return gpu.PrimitiveState{
		Topology:    gpu.TopologyTriangleList,
		FrontFace:   gpu.FrontFaceCCW,
		CullMode:    gpu.CullBack,
		PolygonMode: gpu.PolygonFill,
	}
}

// New compiles the shader programs and builds every pipeline for format.
func New(dev gpu.Device, layouts *Layouts, format gpu.TextureFormat) (*Set, error) {
	s := &Set{Format: format}

	textured, err := s.module(dev, shader.Textured)
	if err != nil {
		return nil, err
	}
	procedural, err := s.module(dev, shader.Procedural)
	if err != nil {
		s.Release()
		return nil, err
	}

	textureLayouts := []gpu.BindGroupLayout{layouts.Texture, layouts.Transform}
	vertexLayouts := []gpu.VertexBufferLayout{geometry.VertexLayout()}

	specs := [kindCount]struct {
		module  gpu.ShaderModule
		groups  []gpu.BindGroupLayout
		buffers []gpu.VertexBufferLayout
	}{
		Primary:   {textured, textureLayouts, vertexLayouts},
		Alternate: {procedural, nil, nil},
		Tertiary:  {textured, textureLayouts, vertexLayouts},
	}

	for k, spec := range specs {
		kind := Kind(k)
		layout, err := dev.CreatePipelineLayout(gpu.PipelineLayoutDescriptor{
			Label:            fmt.Sprintf("Render Pipeline Layout (%s)", kind),
			BindGroupLayouts: spec.groups,
		})
		if err != nil {
			s.Release()
			return nil, fmt.Errorf("%s pipeline layout: %w", kind, err)
		}
		s.layouts[kind] = layout

		p, err := dev.CreateRenderPipeline(gpu.RenderPipelineDescriptor{
			Label:         fmt.Sprintf("Render Pipeline (%s)", kind),
			Layout:        layout,
			Vertex:        gpu.StageState{Module: spec.module, EntryPoint: shader.VertexEntry},
			VertexBuffers: spec.buffers,
			Fragment:      gpu.StageState{Module: spec.module, EntryPoint: shader.FragmentEntry},
			TargetFormat:  format,
			Primitive:     Primitive(),
			SampleCount:   1,
		})
		if err != nil {
			s.Release()
			return nil, fmt.Errorf("%s pipeline: %w", kind, err)
		}
		s.pipelines[kind] = p
	}

	return s, nil
}

func (s *Set) module(dev gpu.Device, name string) (gpu.ShaderModule, error) {
	prog, err := shader.Load(name)
	if err != nil {
		return nil, err
	}
	m, err := dev.CreateShaderModule(prog.Descriptor())
	if err != nil {
		return nil, fmt.Errorf("shader module %q: %w", name, err)
	}
	s.modules = append(s.modules, m)
	return m, nil
}

// Get returns the pipeline of kind k.
func (s *Set) Get(k Kind) gpu.RenderPipeline {
	return s.pipelines[k]
}

// Release frees pipelines, then layouts, then modules.
func (s *Set) Release() {
	for i := range s.pipelines {
		if s.pipelines[i] != nil {
			s.pipelines[i].Release()
			s.pipelines[i] = nil
		}
	}
	for i := range s.layouts {
		if s.layouts[i] != nil {
			s.layouts[i].Release()
			s.layouts[i] = nil
		}
	}
	for _, m := range s.modules {
		m.Release()
	}
	s.modules = nil
}

// ValidateShaders compiles every embedded WGSL program and reports all failures.
func ValidateShaders() error {
	var errs error
	for _, name := range shader.Names() {
		p, err := shader.Load(name)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		errs = multierr.Append(errs, p.Validate())
	}
	return errs
}
