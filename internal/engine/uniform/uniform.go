// Package uniform mirrors transform matrices into GPU-uploadable bytes.
package uniform

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Size is the byte size of a Block.
const Size = 64

// Block is a 4x4 float32 matrix laid out as 16 little-endian floats in
// column-major order, which matches mat4x4<f32> in WGSL and mat4 in GLSL std140.
type Block struct {
	data [Size]byte
}

// Default returns a block holding the identity matrix.
func Default() Block {
	var b Block
	b.Update(mgl32.Ident4())
	return b
}

// Update copies m into the block.
func (b *Block) Update(m mgl32.Mat4) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(b.data[i*4:], math.Float32bits(v))
	}
}

// Bytes returns the upload payload. The slice aliases the block.
func (b *Block) Bytes() []byte {
	return b.data[:]
}

// Matrix decodes the block back into a matrix.
func (b *Block) Matrix() mgl32.Mat4 {
	m, _ := Decode(b.data[:])
	return m
}

// Decode reads a matrix from a 64-byte payload. ok is false if data is short.
func Decode(data []byte) (m mgl32.Mat4, ok bool) {
	if len(data) < Size {
		return m, false
	}
	for i := range m {
		m[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return m, true
}
