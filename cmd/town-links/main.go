// Package main is the entry point for the Town links renderer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/app"
	"github.com/Faultbox/town-links/internal/assets"
	"github.com/Faultbox/town-links/internal/config"
	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/gpu/glbackend"
	"github.com/Faultbox/town-links/internal/engine/gpu/wgpubackend"
	"github.com/Faultbox/town-links/internal/engine/pipeline"
	"github.com/Faultbox/town-links/internal/engine/renderer"
	"github.com/Faultbox/town-links/internal/engine/ui"
	"github.com/Faultbox/town-links/internal/engine/window"
	"github.com/Faultbox/town-links/internal/logger"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Setup(cfg.Logging, true); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		logger.Error("town-links failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("closed normally")
	logger.Sync()
}

func run(cfg *config.Config) error {
	logger.Info("=== Town links ===", zap.String("backend", cfg.Renderer.Backend))
	logger.Sugar.Debugf("Config: %+v", cfg)

	if cfg.Renderer.ValidateShaders {
		if err := pipeline.ValidateShaders(); err != nil {
			return fmt.Errorf("shader validation: %w", err)
		}
		logger.Info("shaders validated")
	}

	manager := assets.NewManager()
	defer manager.Close()
	opts, err := app.EngineOptions(cfg, manager)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Renderer.Backend == config.BackendImGui {
		return runHosted(ctx, cfg, opts)
	}

	win, inst, err := openBackend(cfg)
	if err != nil {
		return err
	}

	a, err := app.New(ctx, win, inst, opts)
	if err != nil {
		inst.Release()
		win.Close()
		return err
	}
	defer a.Close()

	return a.Run(ctx)
}

// runHosted renders offscreen through OpenGL while the ImGui host owns the
// window and the frame loop.
func runHosted(ctx context.Context, cfg *config.Config, opts renderer.Options) error {
	host, err := ui.NewHost(windowConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	inst, err := glbackend.NewOffscreen(host)
	if err != nil {
		return err
	}
	opts.Overlay = ui.NewPanel(inst.SceneTexture, opts.Overlay)

	a, err := app.New(ctx, host, inst, opts)
	if err != nil {
		inst.Release()
		return err
	}
	// GL objects must go before the backend destroys the context.
	host.OnTeardown(a.Close)
	defer a.Close()

	return a.Drive(ctx, host)
}

func windowConfig(cfg *config.Config) window.Config {
	return window.Config{
		Title:      cfg.Window.Title,
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Fullscreen: cfg.Window.Fullscreen,
		VSync:      cfg.Renderer.VSync,
	}
}

// openBackend creates the window and the GPU instance presenting to it.
func openBackend(cfg *config.Config) (window.Window, gpu.Instance, error) {
	wcfg := windowConfig(cfg)

	switch cfg.Renderer.Backend {
	case config.BackendOpenGL:
		win, err := window.NewSDL(wcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create window: %w", err)
		}
		inst, err := glbackend.New(win)
		if err != nil {
			win.Close()
			return nil, nil, err
		}
		return win, inst, nil

	default:
		win, err := window.NewGLFW(wcfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create window: %w", err)
		}
		inst, err := wgpubackend.New(win.SurfaceDescriptor())
		if err != nil {
			win.Close()
			return nil, nil, err
		}
		return win, inst, nil
	}
}
