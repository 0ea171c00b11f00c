// Package rendermode implements the cyclic render mode state machine and the
// table mapping each mode to the resources a frame draws with.
package rendermode

import (
	"fmt"

	"github.com/Faultbox/town-links/internal/engine/geometry"
	"github.com/Faultbox/town-links/internal/engine/pipeline"
)

// Mode is the active render variant.
type Mode int

const (
	Off Mode = iota
	A
	B
	C
	D

	modeCount
)

func (m Mode) String() string {
	switch m {
	case Off:
		return "off"
	case A, B, C, D:
		return string(rune('A' + int(m-A)))
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Next returns the mode after m: Off, A, B, C, D, then back to Off.
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

// FSM holds the current mode.
type FSM struct {
	mode Mode
}

// Mode returns the current mode.
func (f *FSM) Mode() Mode { return f.mode }

// Rotate advances one step and returns the new mode.
func (f *FSM) Rotate() Mode {
	f.mode = f.mode.Next()
	return f.mode
}

// Reset returns to Off.
func (f *FSM) Reset() { f.mode = Off }

// Texture selects a diffuse texture.
type Texture int

const (
	NoTexture Texture = iota
	Texture1
	Texture2
)

// Transform selects which uniform buffer feeds the transform group.
type Transform int

const (
	NoTransform Transform = iota
	CameraTransform
	ModelTransform
)

// Selection is what one frame binds and draws.
type Selection struct {
	Pipeline  pipeline.Kind
	Texture   Texture
	Transform Transform
	Indexed   bool
	Indices   geometry.IndexSet
	// VertexCount is the non-indexed draw size.
	VertexCount uint32
}

// BindsResources reports whether the selection binds the texture and
// transform groups.
func (s Selection) BindsResources() bool {
	return s.Texture != NoTexture && s.Transform != NoTransform
}

var table = [modeCount]Selection{
	Off: {Pipeline: pipeline.Primary, Texture: Texture1, Transform: CameraTransform, Indexed: true, Indices: geometry.IndexPrimary},
	A:   {Pipeline: pipeline.Alternate, VertexCount: 3},
	B:   {Pipeline: pipeline.Primary, Texture: Texture1, Transform: CameraTransform, Indexed: true, Indices: geometry.IndexAlternate},
	C:   {Pipeline: pipeline.Primary, Texture: Texture2, Transform: CameraTransform, Indexed: true, Indices: geometry.IndexPrimary},
	D:   {Pipeline: pipeline.Tertiary, Texture: Texture2, Transform: ModelTransform, Indexed: true, Indices: geometry.IndexPrimary},
}

// Select returns the selection for m. It is total over valid modes.
func Select(m Mode) Selection {
	if m < 0 || m >= modeCount {
		return table[Off]
	}
	return table[m]
}
