package camera

import (
	"github.com/Faultbox/town-links/internal/engine/input"
)

// minDistance keeps the eye from reaching the target.
const minDistance = 1e-4

// Controller moves a Camera from held directional keys.
//
// Forward and backward move the eye along the view direction; left and right
// orbit the eye around the target at constant distance.
type Controller struct {
	Speed float32

	forward  bool
	backward bool
	left     bool
	right    bool
}

// NewController creates a controller moving speed units per update.
func NewController(speed float32) *Controller {
	return &Controller{Speed: speed}
}

// HandleEvent records key state. It returns true if the event was consumed.
func (c *Controller) HandleEvent(ev input.Event) bool {
	if ev.Type != input.EventKeyDown && ev.Type != input.EventKeyUp {
		return false
	}
	pressed := ev.Type == input.EventKeyDown

	switch ev.Key {
	case input.KeyW, input.KeyUp:
		c.forward = pressed
	case input.KeyS, input.KeyDown:
		c.backward = pressed
	case input.KeyA, input.KeyLeft:
		c.left = pressed
	case input.KeyD, input.KeyRight:
		c.right = pressed
	default:
		return false
	}
	return true
}

// Moving reports whether any direction is held.
func (c *Controller) Moving() bool {
	return c.forward || c.backward || c.left || c.right
}

// Apply moves cam one step according to the held keys.
func (c *Controller) Apply(cam *Camera) {
	forward := cam.Target.Sub(cam.Eye)
	dist := forward.Len()
	if dist < minDistance {
		return
	}
	dir := forward.Normalize()

	// Stop short of the target instead of passing through it.
	if c.forward && dist > c.Speed {
		cam.Eye = cam.Eye.Add(dir.Mul(c.Speed))
	}
	if c.backward {
		cam.Eye = cam.Eye.Sub(dir.Mul(c.Speed))
	}

	right := dir.Cross(cam.Up)

	forward = cam.Target.Sub(cam.Eye)
	dist = forward.Len()

	if c.right {
		cam.Eye = cam.Target.Sub(forward.Add(right.Mul(c.Speed)).Normalize().Mul(dist))
	}
	if c.left {
		cam.Eye = cam.Target.Sub(forward.Sub(right.Mul(c.Speed)).Normalize().Mul(dist))
	}
}
