// Package app runs the window event loop around the frame engine.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/input"
	"github.com/Faultbox/town-links/internal/engine/renderer"
	"github.com/Faultbox/town-links/internal/engine/window"
	"github.com/Faultbox/town-links/internal/logger"
)

// App is the main application instance.
type App struct {
	window   window.Window
	instance gpu.Instance
	engine   *renderer.Engine
	events   *input.Queue
	running  bool
	log      *zap.Logger
}

// New creates the frame engine on inst, presenting to win. On success the
// app owns both and releases them in Close.
func New(ctx context.Context, win window.Window, inst gpu.Instance, opts renderer.Options) (*App, error) {
	log := logger.Named("app")

	engine, err := renderer.New(ctx, inst, win, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	log.Info("app initialized")
	return &App{
		window:   win,
		instance: inst,
		engine:   engine,
		events:   input.NewQueue(),
		log:      log,
	}, nil
}

// Engine returns the frame engine.
func (a *App) Engine() *renderer.Engine { return a.engine }

// Run drives the loop until the window closes, Escape is pressed or ctx is
// done. It returns an error only for fatal render failures.
func (a *App) Run(ctx context.Context) error {
	a.running = true

	lastTime := time.Now()
	frameCount := 0
	fpsTimer := time.Now()

	a.log.Info("starting main loop")
	for a.running {
		if ctx.Err() != nil {
			a.log.Info("context done, leaving main loop")
			break
		}

		now := time.Now()
		dt := now.Sub(lastTime)
		lastTime = now

		if err := a.Step(); err != nil {
			return err
		}

		frameCount++
		if time.Since(fpsTimer) >= time.Second {
			a.log.Debug("fps", zap.Int("count", frameCount), zap.Duration("dt", dt))
			frameCount = 0
			fpsTimer = time.Now()
		}
	}

	a.log.Info("main loop stopped", zap.Uint64("frames", a.engine.Frames()))
	return nil
}

// Driver owns a frame loop and calls frame until it returns false.
type Driver interface {
	Run(frame func() bool)
}

// Drive is Run for hosts that own the frame loop, such as the ImGui host.
func (a *App) Drive(ctx context.Context, d Driver) error {
	a.running = true

	var fatal error
	a.log.Info("handing main loop to driver")
	d.Run(func() bool {
		if !a.running {
			return false
		}
		if ctx.Err() != nil {
			a.log.Info("context done, leaving main loop")
			a.running = false
			return false
		}
		if err := a.Step(); err != nil {
			fatal = err
			return false
		}
		return a.running
	})

	if a.engine != nil {
		a.log.Info("main loop stopped", zap.Uint64("frames", a.engine.Frames()))
	}
	return fatal
}

// Step processes pending events, updates transforms and renders one frame.
func (a *App) Step() error {
	a.events.Reset()
	a.window.PollEvents(a.events)

	for _, ev := range a.events.Events() {
		switch {
		case ev.Type == input.EventQuit, ev.Pressed(input.KeyEscape):
			a.running = false
			return nil
		case ev.Type == input.EventWindowResize:
			if err := a.engine.Resize(ev.Width, ev.Height); err != nil {
				a.log.Error("resize failed", zap.Int("width", ev.Width), zap.Int("height", ev.Height), zap.Error(err))
			}
		case ev.Type == input.EventMouseMove:
			a.engine.SetCursor(ev.MouseX, ev.MouseY)
		default:
			a.engine.Input(ev)
		}
	}

	if err := a.engine.Update(); err != nil {
		a.log.Error("update failed", zap.Error(err))
	}
	if err := a.engine.Render(); err != nil {
		return a.handleRenderError(err)
	}
	return nil
}

// handleRenderError applies the frame error policy: lost surfaces are
// reconfigured, timeouts and outdated frames are dropped, out of memory stops
// the loop and anything else is logged.
func (a *App) handleRenderError(err error) error {
	switch {
	case gpu.IsRecoverable(err):
		a.log.Warn("surface lost, reconfiguring", zap.Error(err))
		if rerr := a.engine.Reconfigure(); rerr != nil {
			a.log.Error("reconfigure failed", zap.Error(rerr))
		}
	case gpu.IsFatal(err):
		a.log.Error("fatal render error", zap.Error(err))
		a.running = false
		return fmt.Errorf("render: %w", err)
	case gpu.IsSkippable(err):
		a.log.Debug("frame skipped", zap.Error(err))
	default:
		a.log.Error("render failed", zap.Error(err))
	}
	return nil
}

// Close releases the engine, the GPU instance and the window, in that order.
func (a *App) Close() {
	a.log.Info("closing app")
	if a.engine != nil {
		a.engine.Release()
		a.engine = nil
	}
	if a.instance != nil {
		a.instance.Release()
		a.instance = nil
	}
	if a.window != nil {
		a.window.Close()
		a.window = nil
	}
}
