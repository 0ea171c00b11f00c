// Package debug provides debug overlays for the frame engine.
package debug

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/renderer"
)

// FrameStats is an overlay that counts frames and logs the frame rate and
// mouse position once per interval. It records nothing into the pass.
type FrameStats struct {
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time

	frames  int
	started time.Time
	fps     float64
	last    renderer.FrameInfo
}

// NewFrameStats creates a stats overlay reporting every second.
func NewFrameStats(log *zap.Logger) *FrameStats {
	return &FrameStats{
		log:      log,
		interval: time.Second,
		now:      time.Now,
	}
}

// DrawOverlay implements renderer.Overlay.
func (s *FrameStats) DrawOverlay(_ gpu.RenderPassEncoder, info renderer.FrameInfo) error {
	now := s.now()
	if s.started.IsZero() {
		s.started = now
	}
	s.frames++
	s.last = info

	elapsed := now.Sub(s.started)
	if elapsed < s.interval {
		return nil
	}

	s.fps = float64(s.frames) / elapsed.Seconds()
	s.log.Info("frame stats",
		zap.Float64("fps", s.fps),
		zap.Float64("mouse_x", info.CursorX),
		zap.Float64("mouse_y", info.CursorY),
		zap.Stringer("mode", info.Mode),
		zap.Uint32("width", info.Width),
		zap.Uint32("height", info.Height),
	)
	s.frames = 0
	s.started = now
	return nil
}

// FPS returns the rate measured over the last completed interval.
func (s *FrameStats) FPS() float64 { return s.fps }

// Last returns the most recent frame seen.
func (s *FrameStats) Last() renderer.FrameInfo { return s.last }
