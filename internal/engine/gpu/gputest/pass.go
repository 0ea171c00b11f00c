package gputest

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/multierr"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

const maxBindGroups = 4

type releasable struct{ released bool }

func (r *releasable) Release() { r.released = true }

// Released reports whether Release was called.
func (r *releasable) Released() bool { return r.released }

type Buffer struct {
	releasable
	Desc gpu.BufferDescriptor
	Data []byte
}

func (b *Buffer) Size() uint64           { return b.Desc.Size }
func (b *Buffer) Usage() gpu.BufferUsage { return b.Desc.Usage }

type Texture struct {
	releasable
	Desc   gpu.TextureDescriptor
	Data   []byte
	Layout gpu.TextureDataLayout
}

func (t *Texture) CreateView() (gpu.TextureView, error) { return &TextureView{Texture: t}, nil }
func (t *Texture) Width() uint32                        { return t.Desc.Size.Width }
func (t *Texture) Height() uint32                       { return t.Desc.Size.Height }

// TextureView points at either a texture or an acquired frame.
type TextureView struct {
	releasable
	Texture *Texture
	Frame   *SurfaceTexture
}

type Sampler struct {
	releasable
	Desc gpu.SamplerDescriptor
}

type BindGroupLayout struct {
	releasable
	Desc gpu.BindGroupLayoutDescriptor
}

type BindGroup struct {
	releasable
	Desc gpu.BindGroupDescriptor
}

type ShaderModule struct {
	releasable
	Desc gpu.ShaderModuleDescriptor
}

type PipelineLayout struct {
	releasable
	Desc gpu.PipelineLayoutDescriptor
}

type RenderPipeline struct {
	releasable
	Desc gpu.RenderPipelineDescriptor
}

// Layouts returns the bind group layouts the pipeline declares.
func (p *RenderPipeline) Layouts() []gpu.BindGroupLayout {
	if l, ok := p.Desc.Layout.(*PipelineLayout); ok {
		return l.Desc.BindGroupLayouts
	}
	return nil
}

type CommandBuffer struct {
	releasable
	Label  string
	Passes []*RenderPass
}

// CommandEncoder records passes until Finish.
type CommandEncoder struct {
	releasable
	Label    string
	passes   []*RenderPass
	open     *RenderPass
	finished bool
}

func (e *CommandEncoder) BeginRenderPass(desc gpu.RenderPassDescriptor) (gpu.RenderPassEncoder, error) {
	if e.finished {
		return nil, errors.New("gputest: encoder already finished")
	}
	if e.open != nil {
		return nil, errors.New("gputest: previous pass not ended")
	}
	if desc.View == nil {
		return nil, errors.New("gputest: render pass without color attachment")
	}
	p := &RenderPass{
		Desc:    desc,
		groups:  make(map[uint32]*BindGroup),
		vertex:  make(map[uint32]*Buffer),
		encoder: e,
	}
	e.open = p
	e.passes = append(e.passes, p)
	return p, nil
}

func (e *CommandEncoder) Finish() (gpu.CommandBuffer, error) {
	if e.open != nil {
		return nil, errors.New("gputest: finish with open pass")
	}
	if e.finished {
		return nil, errors.New("gputest: encoder finished twice")
	}
	e.finished = true
	return &CommandBuffer{Label: e.Label, Passes: e.passes}, nil
}

// DrawCall is the state captured at one draw.
type DrawCall struct {
	Pipeline      *RenderPipeline
	BindGroups    []*BindGroup // ordered by slot
	BindSlots     []uint32
	VertexBuffers map[uint32]*Buffer
	IndexBuffer   *Buffer
	IndexFormat   gpu.IndexFormat
	Indexed       bool
	Count         uint32
	Instances     uint32
}

// RenderPass records commands and validates each draw.
type RenderPass struct {
	Desc  gpu.RenderPassDescriptor
	Draws []DrawCall
	Ended bool

	pipeline    *RenderPipeline
	groups      map[uint32]*BindGroup
	vertex      map[uint32]*Buffer
	index       *Buffer
	indexFormat gpu.IndexFormat
	err         error
	encoder     *CommandEncoder
}

func (p *RenderPass) fail(format string, args ...any) {
	p.err = multierr.Append(p.err, fmt.Errorf("gputest: "+format, args...))
}

func (p *RenderPass) SetPipeline(rp gpu.RenderPipeline) {
	pl, ok := rp.(*RenderPipeline)
	if !ok || pl == nil {
		p.fail("SetPipeline with foreign pipeline")
		return
	}
	p.pipeline = pl
}

func (p *RenderPass) SetBindGroup(index uint32, group gpu.BindGroup) {
	g, ok := group.(*BindGroup)
	if !ok || g == nil {
		p.fail("SetBindGroup(%d) with foreign group", index)
		return
	}
	if index >= maxBindGroups {
		p.fail("bind group index %d out of range", index)
		return
	}
	p.groups[index] = g
}

func (p *RenderPass) SetVertexBuffer(slot uint32, buf gpu.Buffer) {
	b, ok := buf.(*Buffer)
	if !ok || b.Desc.Usage&gpu.BufferUsageVertex == 0 {
		p.fail("vertex buffer in slot %d lacks Vertex usage", slot)
		return
	}
	p.vertex[slot] = b
}

func (p *RenderPass) SetIndexBuffer(buf gpu.Buffer, format gpu.IndexFormat) {
	b, ok := buf.(*Buffer)
	if !ok || b.Desc.Usage&gpu.BufferUsageIndex == 0 {
		p.fail("index buffer lacks Index usage")
		return
	}
	p.index = b
	p.indexFormat = format
}

func (p *RenderPass) validate(indexed bool, count uint32) bool {
	if p.Ended {
		p.fail("draw after End")
		return false
	}
	if p.pipeline == nil {
		p.fail("draw without pipeline")
		return false
	}
	ok := true
	layouts := p.pipeline.Layouts()
	for i, want := range layouts {
		got, bound := p.groups[uint32(i)]
		if !bound {
			p.fail("pipeline %q expects bind group %d", p.pipeline.Desc.Label, i)
			ok = false
			continue
		}
		if got.Desc.Layout != want {
			p.fail("bind group %q in slot %d does not match pipeline %q layout", got.Desc.Label, i, p.pipeline.Desc.Label)
			ok = false
		}
	}
	for slot := range p.pipeline.Desc.VertexBuffers {
		if _, bound := p.vertex[uint32(slot)]; !bound {
			p.fail("pipeline %q expects vertex buffer %d", p.pipeline.Desc.Label, slot)
			ok = false
		}
	}
	if indexed {
		if p.index == nil {
			p.fail("indexed draw without index buffer")
			return false
		}
		if uint64(count)*p.indexFormat.Size() > p.index.Desc.Size {
			p.fail("index count %d overruns buffer %q", count, p.index.Desc.Label)
			ok = false
		}
	}
	return ok
}

func (p *RenderPass) record(indexed bool, count, instances uint32) {
	if !p.validate(indexed, count) {
		return
	}
	dc := DrawCall{
		Pipeline:      p.pipeline,
		VertexBuffers: make(map[uint32]*Buffer, len(p.vertex)),
		Indexed:       indexed,
		Count:         count,
		Instances:     instances,
	}
	slots := make([]uint32, 0, len(p.groups))
	for s := range p.groups {
		slots = append(slots, s)
	}
	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	for _, s := range slots {
		dc.BindSlots = append(dc.BindSlots, s)
		dc.BindGroups = append(dc.BindGroups, p.groups[s])
	}
	for s, b := range p.vertex {
		dc.VertexBuffers[s] = b
	}
	if indexed {
		dc.IndexBuffer = p.index
		dc.IndexFormat = p.indexFormat
	}
	p.Draws = append(p.Draws, dc)
}

func (p *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	p.record(false, vertexCount, instanceCount)
}

func (p *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	p.record(true, indexCount, instanceCount)
}

func (p *RenderPass) End() error {
	if p.Ended {
		return errors.New("gputest: pass ended twice")
	}
	p.Ended = true
	if p.encoder != nil {
		p.encoder.open = nil
	}
	return p.err
}
