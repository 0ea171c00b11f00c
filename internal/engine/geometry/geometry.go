// Package geometry holds the static shape and its GPU buffers.
package geometry

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// Vertex is one interleaved vertex: position then texture coordinates.
type Vertex struct {
	Position  [3]float32
	TexCoords [2]float32
}

// VertexStride is the size of Vertex in the vertex buffer.
const VertexStride = 20

// Vertices outline a pentagon with two extra rim points.
// Texture coordinates are the XY positions shifted into [0, 1] with V flipped.
var Vertices = []Vertex{
	{Position: [3]float32{-0.0868241, 0.49240386, 0}, TexCoords: [2]float32{0.4131759, 0.00759614}},
	{Position: [3]float32{-0.49513406, 0.06958647, 0}, TexCoords: [2]float32{0.0048659444, 0.43041354}},
	{Position: [3]float32{-0.21918549, -0.44939706, 0}, TexCoords: [2]float32{0.28081453, 0.949397}},
	{Position: [3]float32{0.35966998, -0.3473291, 0}, TexCoords: [2]float32{0.85967, 0.84732914}},
	{Position: [3]float32{0.44147372, 0.2347359, 0}, TexCoords: [2]float32{0.9414737, 0.2652641}},
	{Position: [3]float32{0.17732481, 0.46356988, 0}, TexCoords: [2]float32{0.6773248, 0.03643012}},
	{Position: [3]float32{0.10024225, -0.42836308, 0}, TexCoords: [2]float32{0.60024225, 0.9283631}},
}

// PrimaryIndices triangulate the pentagon.
var PrimaryIndices = []uint16{
	0, 1, 4,
	1, 2, 4,
	2, 3, 4,
}

// AlternateIndices add the two rim triangles.
var AlternateIndices = []uint16{
	0, 1, 4,
	1, 2, 4,
	2, 3, 4,
	5, 0, 4,
	2, 6, 3,
}

// VertexLayout describes Vertex to a pipeline.
func VertexLayout() gpu.VertexBufferLayout {
	return gpu.VertexBufferLayout{
		ArrayStride: VertexStride,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gpu.VertexFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}
}

// VertexBytes encodes vertices as little-endian float32.
func VertexBytes(vs []Vertex) []byte {
	out := make([]byte, 0, len(vs)*VertexStride)
	for _, v := range vs {
		for _, f := range v.Position {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
		for _, f := range v.TexCoords {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
		}
	}
	return out
}

// IndexBytes encodes uint16 indices, zero-padded to a multiple of 4 bytes
// as required for buffer sizes and queue writes.
func IndexBytes(idx []uint16) []byte {
	out := make([]byte, 0, align4(len(idx)*2))
	for _, i := range idx {
		out = binary.LittleEndian.AppendUint16(out, i)
	}
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

func align4(n int) int {
	return (n + 3) &^ 3
}

// IndexSet selects one of the alternative triangulations.
type IndexSet int

const (
	IndexPrimary IndexSet = iota
	IndexAlternate
)

func (s IndexSet) String() string {
	if s == IndexAlternate {
		return "alternate"
	}
	return "primary"
}

// IndexBuffer is an uploaded index list and its logical count.
type IndexBuffer struct {
	Buffer gpu.Buffer
	Count  uint32
	Format gpu.IndexFormat
}

// Table owns the vertex buffer and both index buffers.
type Table struct {
	Vertices    gpu.Buffer
	VertexCount uint32

	indices [2]IndexBuffer
}

// New uploads the shape. Buffers are immutable afterwards.
func New(dev gpu.Device, q gpu.Queue) (*Table, error) {
	t := &Table{VertexCount: uint32(len(Vertices))}

	var err error
	t.Vertices, err = upload(dev, q, "Vertex Buffer", gpu.BufferUsageVertex, VertexBytes(Vertices))
	if err != nil {
		return nil, err
	}

	sets := [2][]uint16{IndexPrimary: PrimaryIndices, IndexAlternate: AlternateIndices}
	for set, idx := range sets {
		label := fmt.Sprintf("Index Buffer (%s)", IndexSet(set))
		buf, err := upload(dev, q, label, gpu.BufferUsageIndex, IndexBytes(idx))
		if err != nil {
			t.Release()
			return nil, err
		}
		t.indices[set] = IndexBuffer{Buffer: buf, Count: uint32(len(idx)), Format: gpu.IndexUint16}
	}

	return t, nil
}

func upload(dev gpu.Device, q gpu.Queue, label string, usage gpu.BufferUsage, data []byte) (gpu.Buffer, error) {
	buf, err := dev.CreateBuffer(gpu.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: usage | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	if err := q.WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, fmt.Errorf("upload %s: %w", label, err)
	}
	return buf, nil
}

// Indices returns the index buffer for set.
func (t *Table) Indices(set IndexSet) IndexBuffer {
	return t.indices[set]
}

// Release frees all buffers.
func (t *Table) Release() {
	for i := range t.indices {
		if t.indices[i].Buffer != nil {
			t.indices[i].Buffer.Release()
			t.indices[i].Buffer = nil
		}
	}
	if t.Vertices != nil {
		t.Vertices.Release()
		t.Vertices = nil
	}
}
