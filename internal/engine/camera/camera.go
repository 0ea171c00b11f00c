// Package camera provides the perspective camera and its keyboard controller.
package camera

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// ClipCorrection maps the [-1, 1] clip depth produced by mgl32.Perspective
// onto the [0, 1] range expected by WebGPU.
var ClipCorrection = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

// Camera is a right-handed perspective camera.
type Camera struct {
	Eye    mgl32.Vec3
	Target mgl32.Vec3
	Up     mgl32.Vec3

	Aspect float32
	FovY   float32 // degrees
	Near   float32
	Far    float32
}

// New creates a camera looking at the origin from slightly above and behind.
func New(aspect float32) *Camera {
	return &Camera{
		Eye:    mgl32.Vec3{0, 1, 2},
		Target: mgl32.Vec3{0, 0, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		Aspect: aspect,
		FovY:   45,
		Near:   0.1,
		Far:    100,
	}
}

// Validate checks far > near > 0, aspect > 0 and a usable view direction.
func (c *Camera) Validate() error {
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("invalid clip planes near=%v far=%v", c.Near, c.Far)
	}
	if c.Aspect <= 0 {
		return fmt.Errorf("invalid aspect %v", c.Aspect)
	}
	if c.FovY <= 0 || c.FovY >= 180 {
		return fmt.Errorf("invalid fov %v", c.FovY)
	}
	dir := c.Target.Sub(c.Eye)
	if dir.Len() == 0 {
		return fmt.Errorf("eye and target coincide at %v", c.Eye)
	}
	if dir.Cross(c.Up).Len() == 0 {
		return fmt.Errorf("up %v is parallel to view direction", c.Up)
	}
	return nil
}

// View returns the look-at view matrix.
func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Target, c.Up)
}

// Projection returns the OpenGL-convention perspective matrix.
func (c *Camera) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// ViewProjection returns ClipCorrection * Projection * View.
func (c *Camera) ViewProjection() mgl32.Mat4 {
	return ClipCorrection.Mul4(c.Projection()).Mul4(c.View())
}

// SetAspect updates the aspect ratio from a surface size.
// Zero dimensions are ignored.
func (c *Camera) SetAspect(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}
