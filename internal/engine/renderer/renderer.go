// Package renderer implements the frame engine: it owns the GPU device,
// surface and every resource a frame draws with.
package renderer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/camera"
	"github.com/Faultbox/town-links/internal/engine/geometry"
	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/input"
	"github.com/Faultbox/town-links/internal/engine/model"
	"github.com/Faultbox/town-links/internal/engine/pipeline"
	"github.com/Faultbox/town-links/internal/engine/rendermode"
	"github.com/Faultbox/town-links/internal/engine/texture"
	"github.com/Faultbox/town-links/internal/engine/uniform"
	"github.com/Faultbox/town-links/internal/logger"
)

// Window is the part of the platform window the engine uses.
type Window interface {
	// Size returns the drawable size in pixels. Either dimension may be 0
	// while the window is minimized.
	Size() (width, height int)
	SetCursorPos(x, y float64) error
}

// TextureSource is an encoded image embedded in the binary.
type TextureSource struct {
	Label  string
	Data   []byte
	Format texture.Format
}

// Options configures New.
type Options struct {
	Textures        [2]TextureSource
	PowerPreference gpu.PowerPreference
	// VSync selects FIFO presentation; otherwise Immediate.
	VSync      bool
	ClearColor gpu.Color
	// Camera overrides the default camera; its aspect is replaced by the
	// surface aspect.
	Camera           *camera.Camera
	CameraSpeed      float32
	ModelRotationDeg float32
	ToggleKey        input.Key
	Overlay          Overlay
	Logger           *zap.Logger
}

// DefaultClearColor is the background before the cursor moves.
var DefaultClearColor = gpu.Color{R: 0, G: 0.2, B: 0, A: 1}

// DefaultOptions returns options with vsync, the default camera and Space as
// the render mode toggle.
func DefaultOptions() Options {
	return Options{
		VSync:       true,
		ClearColor:  DefaultClearColor,
		CameraSpeed: 0.2,
		ToggleKey:   input.KeySpace,
	}
}

// Engine is the single owner of all GPU state.
type Engine struct {
	log *zap.Logger

	instance gpu.Instance
	adapter  gpu.Adapter
	device   gpu.Device
	queue    gpu.Queue
	surface  gpu.Surface
	config   gpu.SurfaceConfiguration

	camera     *camera.Camera
	controller *camera.Controller
	model      *model.Model

	cameraBlock  uniform.Block
	modelBlock   uniform.Block
	cameraBuffer gpu.Buffer
	modelBuffer  gpu.Buffer

	layouts   *pipeline.Layouts
	pipelines *pipeline.Set
	geometry  *geometry.Table
	textures  [2]*texture.Resource

	textureGroups [2]gpu.BindGroup
	cameraGroup   gpu.BindGroup
	modelGroup    gpu.BindGroup

	fsm        rendermode.FSM
	toggleKey  input.Key
	clearColor gpu.Color
	cursorX    float64
	cursorY    float64
	overlay    Overlay
	frames     uint64
}

// New initializes the engine on inst, presenting to win.
//
// It fails with gpu.ErrAdapterUnavailable if no adapter can present to the
// surface, gpu.ErrDeviceCreation if the device cannot be opened and
// gpu.ErrTextureDecode if an embedded texture is corrupt. A failure to center
// the cursor is logged and ignored.
func New(ctx context.Context, inst gpu.Instance, win Window, opts Options) (*Engine, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Named("renderer")
	}
	toggle := opts.ToggleKey
	if toggle == input.KeyUnknown {
		toggle = input.KeySpace
	}

	e := &Engine{
		log:        log,
		instance:   inst,
		surface:    inst.Surface(),
		toggleKey:  toggle,
		clearColor: opts.ClearColor,
		overlay:    opts.Overlay,
		model:      model.New(opts.ModelRotationDeg),
		controller: camera.NewController(opts.CameraSpeed),
	}

	if err := e.open(ctx, opts); err != nil {
		e.Release()
		return nil, err
	}

	width, height := clampSize(win.Size())
	if err := e.configure(width, height, opts.VSync); err != nil {
		e.Release()
		return nil, err
	}

	e.camera = camera.New(1)
	if opts.Camera != nil {
		c := *opts.Camera
		e.camera = &c
	}
	e.camera.SetAspect(width, height)
	if err := e.camera.Validate(); err != nil {
		e.Release()
		return nil, fmt.Errorf("camera: %w", err)
	}

	if err := e.build(opts.Textures); err != nil {
		e.Release()
		return nil, err
	}
	e.fsm.Reset()

	// Center the cursor; its position drives the clear color.
	cx, cy := float64(width)/2, float64(height)/2
	e.SetCursor(cx, cy)
	if err := win.SetCursorPos(cx, cy); err != nil {
		e.log.Warn("failed to center cursor",
			zap.Error(fmt.Errorf("%w: %w", gpu.ErrCursorPositioning, err)))
	}

	e.log.Info("engine initialized",
		zap.String("format", e.config.Format.String()),
		zap.Uint32("width", width),
		zap.Uint32("height", height),
	)
	return e, nil
}

func (e *Engine) open(ctx context.Context, opts Options) error {
	adapter, err := e.instance.RequestAdapter(ctx, gpu.AdapterOptions{PowerPreference: opts.PowerPreference})
	if err != nil {
		if errors.Is(err, gpu.ErrAdapterUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %w", gpu.ErrAdapterUnavailable, err)
	}
	if adapter == nil {
		return gpu.ErrAdapterUnavailable
	}
	e.adapter = adapter

	info := adapter.Info()
	e.log.Info("adapter selected",
		zap.String("name", info.Name),
		zap.String("vendor", info.Vendor),
		zap.String("backend", info.Backend),
	)

	device, err := adapter.RequestDevice(ctx, gpu.DeviceDescriptor{Label: "Engine Device"})
	if err != nil {
		return fmt.Errorf("%w: %w", gpu.ErrDeviceCreation, err)
	}
	e.device = device
	e.queue = device.Queue()
	return nil
}

func (e *Engine) configure(width, height uint32, vsync bool) error {
	formats := e.adapter.SurfaceFormats(e.surface)
	if len(formats) == 0 {
		return fmt.Errorf("%w: surface has no supported formats", gpu.ErrAdapterUnavailable)
	}

	mode := gpu.PresentFifo
	if !vsync {
		mode = gpu.PresentImmediate
	}
	cfg := gpu.SurfaceConfiguration{
		Format:      formats[0],
		Width:       width,
		Height:      height,
		PresentMode: mode,
	}
	if err := e.surface.Configure(e.adapter, e.device, cfg); err != nil {
		return fmt.Errorf("configure surface: %w", err)
	}
	e.config = cfg
	return nil
}

func (e *Engine) build(sources [2]TextureSource) error {
	var err error
	if e.layouts, err = pipeline.NewLayouts(e.device); err != nil {
		return err
	}
	if e.pipelines, err = pipeline.New(e.device, e.layouts, e.config.Format); err != nil {
		return err
	}
	if e.geometry, err = geometry.New(e.device, e.queue); err != nil {
		return err
	}

	for i, src := range sources {
		res, err := texture.FromBytes(e.device, e.queue, src.Data, src.Format, src.Label)
		if err != nil {
			return err
		}
		e.textures[i] = res

		e.textureGroups[i], err = e.device.CreateBindGroup(gpu.BindGroupDescriptor{
			Label:  src.Label + " Bind Group",
			Layout: e.layouts.Texture,
			Entries: []gpu.BindGroupEntry{
				{Binding: 0, TextureView: res.View},
				{Binding: 1, Sampler: res.Sampler},
			},
		})
		if err != nil {
			return fmt.Errorf("bind group for %q: %w", src.Label, err)
		}
	}

	e.cameraBlock = uniform.Default()
	e.modelBlock = uniform.Default()
	if e.cameraBuffer, e.cameraGroup, err = e.transformBinding("Camera"); err != nil {
		return err
	}
	if e.modelBuffer, e.modelGroup, err = e.transformBinding("Model"); err != nil {
		return err
	}

	if err := e.uploadCamera(); err != nil {
		return err
	}
	return e.uploadModel()
}

// transformBinding creates a uniform buffer and its bind group.
func (e *Engine) transformBinding(label string) (gpu.Buffer, gpu.BindGroup, error) {
	buf, err := e.device.CreateBuffer(gpu.BufferDescriptor{
		Label: label + " Buffer",
		Size:  uniform.Size,
		Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s uniform buffer: %w", label, err)
	}
	group, err := e.device.CreateBindGroup(gpu.BindGroupDescriptor{
		Label:   label + " Bind Group",
		Layout:  e.layouts.Transform,
		Entries: []gpu.BindGroupEntry{{Binding: 0, Buffer: buf}},
	})
	if err != nil {
		buf.Release()
		return nil, nil, fmt.Errorf("%s bind group: %w", label, err)
	}
	return buf, group, nil
}

func (e *Engine) uploadCamera() error {
	e.cameraBlock.Update(e.camera.ViewProjection())
	if err := e.queue.WriteBuffer(e.cameraBuffer, 0, e.cameraBlock.Bytes()); err != nil {
		return fmt.Errorf("upload camera uniform: %w", err)
	}
	return nil
}

func (e *Engine) uploadModel() error {
	e.modelBlock.Update(e.model.Matrix())
	if err := e.queue.WriteBuffer(e.modelBuffer, 0, e.modelBlock.Bytes()); err != nil {
		return fmt.Errorf("upload model uniform: %w", err)
	}
	return nil
}

// Resize reconfigures the surface. A zero dimension is ignored, and a failed
// configure leaves the size and camera untouched.
func (e *Engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	w, h := uint32(width), uint32(height)

	cfg := e.config
	cfg.Width, cfg.Height = w, h
	if err := e.surface.Configure(e.adapter, e.device, cfg); err != nil {
		return fmt.Errorf("reconfigure surface: %w", err)
	}
	e.config = cfg

	e.camera.SetAspect(w, h)
	if err := e.uploadCamera(); err != nil {
		return err
	}

	e.log.Debug("surface resized", zap.Uint32("width", w), zap.Uint32("height", h))
	return nil
}

// Reconfigure applies the current configuration again, e.g. after the
// surface was lost.
func (e *Engine) Reconfigure() error {
	return e.Resize(int(e.config.Width), int(e.config.Height))
}

// Input handles one window event. The toggle key advances the render mode;
// directional keys go to the camera controller. It reports whether the event
// was consumed.
func (e *Engine) Input(ev input.Event) bool {
	if ev.Pressed(e.toggleKey) {
		mode := e.fsm.Rotate()
		e.log.Info("render mode changed", zap.Stringer("mode", mode))
		return true
	}
	return e.controller.HandleEvent(ev)
}

// Update advances the camera controller and uploads the camera transform.
func (e *Engine) Update() error {
	e.controller.Apply(e.camera)
	return e.uploadCamera()
}

// SetCursor maps the cursor position onto the red and blue clear channels.
func (e *Engine) SetCursor(x, y float64) {
	e.cursorX, e.cursorY = x, y
	e.clearColor.R = clamp01(x / float64(e.config.Width))
	e.clearColor.B = clamp01(y / float64(e.config.Height))
}

// Mode returns the active render mode.
func (e *Engine) Mode() rendermode.Mode { return e.fsm.Mode() }

// Size returns the configured surface size.
func (e *Engine) Size() (width, height uint32) { return e.config.Width, e.config.Height }

// SurfaceConfig returns the active surface configuration.
func (e *Engine) SurfaceConfig() gpu.SurfaceConfiguration { return e.config }

// Camera returns the camera. Changes take effect on the next Update.
func (e *Engine) Camera() *camera.Camera { return e.camera }

// ClearColor returns the current background color.
func (e *Engine) ClearColor() gpu.Color { return e.clearColor }

// Frames returns the number of presented frames.
func (e *Engine) Frames() uint64 { return e.frames }

// Release frees every resource in reverse creation order.
func (e *Engine) Release() {
	for _, g := range []gpu.BindGroup{e.modelGroup, e.cameraGroup, e.textureGroups[1], e.textureGroups[0]} {
		if g != nil {
			g.Release()
		}
	}
	e.modelGroup, e.cameraGroup, e.textureGroups = nil, nil, [2]gpu.BindGroup{}

	for _, b := range []gpu.Buffer{e.modelBuffer, e.cameraBuffer} {
		if b != nil {
			b.Release()
		}
	}
	e.modelBuffer, e.cameraBuffer = nil, nil

	for i := len(e.textures) - 1; i >= 0; i-- {
		if e.textures[i] != nil {
			e.textures[i].Release()
			e.textures[i] = nil
		}
	}
	if e.geometry != nil {
		e.geometry.Release()
		e.geometry = nil
	}
	if e.pipelines != nil {
		e.pipelines.Release()
		e.pipelines = nil
	}
	if e.layouts != nil {
		e.layouts.Release()
		e.layouts = nil
	}
	if e.device != nil {
		e.device.Release()
		e.device = nil
	}
	if e.adapter != nil {
		e.adapter.Release()
		e.adapter = nil
	}
}

func clampSize(width, height int) (uint32, uint32) {
	return uint32(max(width, 1)), uint32(max(height, 1))
}

func clamp01(v float64) float64 {
	return min(max(v, 0), 1)
}
