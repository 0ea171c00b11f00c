package config

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var err error

	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		err = multierr.Append(err, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}

	switch c.Renderer.Backend {
	case BackendWebGPU, BackendOpenGL, BackendImGui:
	default:
		err = multierr.Append(err, fmt.Errorf("unknown renderer backend %q", c.Renderer.Backend))
	}
	switch c.Renderer.PowerPreference {
	case "high", "low":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown power preference %q", c.Renderer.PowerPreference))
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 {
			err = multierr.Append(err, fmt.Errorf("clear_color[%d] = %g is outside [0, 1]", i, v))
		}
	}

	s := c.Scene
	if s.FovY <= 0 || s.FovY >= 180 {
		err = multierr.Append(err, fmt.Errorf("fov_y %g must be in (0, 180)", s.FovY))
	}
	if s.Near <= 0 || s.Far <= s.Near {
		err = multierr.Append(err, fmt.Errorf("clip range near=%g far=%g requires 0 < near < far", s.Near, s.Far))
	}
	if s.Eye == s.Target {
		err = multierr.Append(err, fmt.Errorf("camera eye and target coincide at %v", s.Eye))
	}
	if s.CameraSpeed < 0 {
		err = multierr.Append(err, fmt.Errorf("camera_speed %g must not be negative", s.CameraSpeed))
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		err = multierr.Append(err, fmt.Errorf("unknown log level %q", c.Logging.Level))
	}

	return err
}
