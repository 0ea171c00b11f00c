package glbackend

import (
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// Surface is the default framebuffer of the window's context, or an
// offscreen framebuffer when a host UI composites the frame itself.
type Surface struct {
	win        Window
	config     gpu.SurfaceConfiguration
	configured bool
	log        *zap.Logger

	offscreen bool
	target    *framebuffer
}

// SceneTexture returns the GL texture holding the last offscreen frame, or 0
// when the surface renders to the default framebuffer.
func (s *Surface) SceneTexture() uint32 {
	if s.target == nil {
		return 0
	}
	return s.target.color
}

func (s *Surface) Configure(_ gpu.Adapter, _ gpu.Device, cfg gpu.SurfaceConfiguration) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("zero-area surface %dx%d", cfg.Width, cfg.Height)
	}
	if _, _, err := textureFormat(cfg.Format); err != nil {
		return err
	}

	interval := 1
	if cfg.PresentMode == gpu.PresentImmediate {
		interval = 0
	}
	if err := s.win.SetSwapInterval(interval); err != nil {
		s.log.Warn("failed to set swap interval", zap.Int("interval", interval), zap.Error(err))
	}

	if s.offscreen {
		if err := s.ensureTarget(int32(cfg.Width), int32(cfg.Height)); err != nil {
			return err
		}
	}

	s.config = cfg
	s.configured = true
	return nil
}

// AcquireTexture hands out the back buffer. A drawable size differing from
// the configuration reports ErrSurfaceOutdated.
func (s *Surface) AcquireTexture() (gpu.SurfaceTexture, error) {
	if !s.configured {
		return nil, errors.New("surface not configured")
	}
	if glError() == gl.OUT_OF_MEMORY {
		return nil, gpu.ErrSurfaceOutOfMemory
	}
	w, h := s.win.Size()
	if w <= 0 || h <= 0 || uint32(w) != s.config.Width || uint32(h) != s.config.Height {
		return nil, fmt.Errorf("%w: drawable %dx%d, configured %dx%d",
			gpu.ErrSurfaceOutdated, w, h, s.config.Width, s.config.Height)
	}
	frame := &surfaceTexture{surface: s, config: s.config}
	if s.target != nil {
		frame.fbo = s.target.fbo
	}
	return frame, nil
}

func (s *Surface) ensureTarget(width, height int32) error {
	if s.target != nil {
		s.target.resize(width, height)
		return nil
	}
	fb, err := newFramebuffer(width, height)
	if err != nil {
		return err
	}
	s.target = fb
	return nil
}

func (s *Surface) Release() {
	s.configured = false
	if s.target != nil {
		s.target.destroy()
		s.target = nil
	}
}

type surfaceTexture struct {
	surface   *Surface
	config    gpu.SurfaceConfiguration
	fbo       uint32
	presented bool
}

func (t *surfaceTexture) CreateView() (gpu.TextureView, error) {
	return &textureView{frame: t}, nil
}

func (t *surfaceTexture) Present() error {
	if t.presented {
		return errors.New("frame presented twice")
	}
	t.presented = true
	if t.surface.offscreen {
		// The host samples the target and swaps.
		return nil
	}
	t.surface.win.SwapBuffers()
	if glError() == gl.OUT_OF_MEMORY {
		return gpu.ErrSurfaceOutOfMemory
	}
	return nil
}

func (t *surfaceTexture) Release() {}
