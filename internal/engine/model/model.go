// Package model holds the object transform of the rendered shape.
package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Model rotates the shape about the X axis.
type Model struct {
	RotationDeg float32
}

// New creates a model rotated by deg degrees about X.
func New(deg float32) *Model {
	return &Model{RotationDeg: deg}
}

// Matrix returns the model transform.
func (m *Model) Matrix() mgl32.Mat4 {
	return mgl32.HomogRotate3DX(mgl32.DegToRad(m.RotationDeg))
}
