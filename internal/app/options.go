package app

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/town-links/internal/assets"
	"github.com/Faultbox/town-links/internal/config"
	"github.com/Faultbox/town-links/internal/engine/camera"
	"github.com/Faultbox/town-links/internal/engine/debug"
	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/renderer"
	"github.com/Faultbox/town-links/internal/engine/texture"
	"github.com/Faultbox/town-links/internal/logger"
)

// EngineOptions builds the renderer options described by cfg, loading the
// scene textures through m.
func EngineOptions(cfg *config.Config, m *assets.Manager) (renderer.Options, error) {
	opts := renderer.DefaultOptions()

	for i, path := range []string{assets.PrimaryTexture, assets.SecondaryTexture} {
		src, err := textureSource(m, path)
		if err != nil {
			return renderer.Options{}, err
		}
		opts.Textures[i] = src
	}

	r := cfg.Renderer
	opts.VSync = r.VSync
	if strings.EqualFold(r.PowerPreference, "low") {
		opts.PowerPreference = gpu.PowerLow
	}
	opts.ClearColor = gpu.Color{R: r.ClearColor[0], G: r.ClearColor[1], B: r.ClearColor[2], A: r.ClearColor[3]}
	if r.DebugOverlay {
		opts.Overlay = debug.NewFrameStats(logger.Named("stats"))
	}

	s := cfg.Scene
	cam := camera.New(1)
	cam.FovY = s.FovY
	cam.Near = s.Near
	cam.Far = s.Far
	cam.Eye = mgl32.Vec3(s.Eye)
	cam.Target = mgl32.Vec3(s.Target)
	opts.Camera = cam
	opts.CameraSpeed = s.CameraSpeed
	opts.ModelRotationDeg = s.ModelRotationDeg

	return opts, nil
}

func textureSource(m *assets.Manager, path string) (renderer.TextureSource, error) {
	format, err := texture.FormatFromPath(path)
	if err != nil {
		return renderer.TextureSource{}, err
	}
	data, err := m.Load(path)
	if err != nil {
		return renderer.TextureSource{}, fmt.Errorf("load texture: %w", err)
	}
	return renderer.TextureSource{Label: path, Data: data, Format: format}, nil
}
