// Package wgpubackend implements the gpu interfaces on wgpu-native through
// github.com/cogentcore/webgpu.
package wgpubackend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/logger"
)

// Instance owns the wgpu instance and the window surface.
type Instance struct {
	instance *wgpu.Instance
	surface  *Surface
	log      *zap.Logger
}

// New creates an instance and a surface for the window described by desc.
func New(desc *wgpu.SurfaceDescriptor) (*Instance, error) {
	if desc == nil {
		return nil, errors.New("nil surface descriptor")
	}
	log := logger.Named("wgpu")

	inst := wgpu.CreateInstance(nil)
	if inst == nil {
		return nil, fmt.Errorf("%w: cannot create wgpu instance", gpu.ErrAdapterUnavailable)
	}
	s := inst.CreateSurface(desc)
	if s == nil {
		inst.Release()
		return nil, fmt.Errorf("%w: cannot create surface", gpu.ErrAdapterUnavailable)
	}

	return &Instance{
		instance: inst,
		surface:  &Surface{surface: s, log: log},
		log:      log,
	}, nil
}

func (i *Instance) Surface() gpu.Surface { return i.surface }

func (i *Instance) RequestAdapter(ctx context.Context, opts gpu.AdapterOptions) (gpu.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pref := wgpu.PowerPreferenceHighPerformance
	if opts.PowerPreference == gpu.PowerLow {
		pref = wgpu.PowerPreferenceLowPower
	}

	a, err := i.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface:    i.surface.surface,
		PowerPreference:      pref,
		ForceFallbackAdapter: opts.ForceFallback,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", gpu.ErrAdapterUnavailable, err)
	}
	if a == nil {
		return nil, gpu.ErrAdapterUnavailable
	}
	return &Adapter{adapter: a, log: i.log}, nil
}

func (i *Instance) Release() {
	if i.surface != nil {
		i.surface.release()
		i.surface = nil
	}
	if i.instance != nil {
		i.instance.Release()
		i.instance = nil
	}
}

// Adapter wraps a physical device.
type Adapter struct {
	adapter *wgpu.Adapter
	log     *zap.Logger
}

func (a *Adapter) Info() gpu.AdapterInfo {
	info := a.adapter.GetInfo()
	return gpu.AdapterInfo{
		Name:    info.Name,
		Vendor:  info.VendorName,
		Backend: fmt.Sprint(info.BackendType),
	}
}

// SurfaceFormats lists the formats of s known to the engine, in the order
// the adapter prefers them.
func (a *Adapter) SurfaceFormats(s gpu.Surface) []gpu.TextureFormat {
	ws, ok := s.(*Surface)
	if !ok {
		return nil
	}
	caps := ws.surface.GetCapabilities(a.adapter)
	formats := make([]gpu.TextureFormat, 0, len(caps.Formats))
	for _, f := range caps.Formats {
		if tf := fromTextureFormat(f); tf != gpu.FormatUndefined {
			formats = append(formats, tf)
		}
	}
	return formats
}

func (a *Adapter) RequestDevice(ctx context.Context, desc gpu.DeviceDescriptor) (gpu.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d, err := a.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: desc.Label})
	if err != nil {
		return nil, err
	}
	a.log.Debug("device opened", zap.String("label", desc.Label))
	return &Device{
		device: d,
		queue:  &Queue{queue: d.GetQueue()},
	}, nil
}

func (a *Adapter) Release() {
	if a.adapter != nil {
		a.adapter.Release()
		a.adapter = nil
	}
}

// Surface is the window surface.
type Surface struct {
	surface *wgpu.Surface
	log     *zap.Logger

	// missed counts consecutive acquires that returned no texture.
	missed int
}

// maxMissedFrames is how many empty acquires in a row are reported as
// Outdated before the surface is treated as lost.
const maxMissedFrames = 3

func (s *Surface) Configure(adapter gpu.Adapter, device gpu.Device, cfg gpu.SurfaceConfiguration) error {
	a, ok := adapter.(*Adapter)
	if !ok {
		return errors.New("configure with foreign adapter")
	}
	d, ok := device.(*Device)
	if !ok {
		return errors.New("configure with foreign device")
	}
	format, err := toTextureFormat(cfg.Format)
	if err != nil {
		return err
	}

	caps := s.surface.GetCapabilities(a.adapter)
	alpha := wgpu.CompositeAlphaModeAuto
	if len(caps.AlphaModes) > 0 {
		alpha = caps.AlphaModes[0]
	}
	s.missed = 0
	s.surface.Configure(a.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		PresentMode: toPresentMode(cfg.PresentMode),
		AlphaMode:   alpha,
	})
	s.log.Debug("surface configured",
		zap.Uint32("width", cfg.Width),
		zap.Uint32("height", cfg.Height),
		zap.Stringer("format", cfg.Format),
	)
	return nil
}

func (s *Surface) AcquireTexture() (gpu.SurfaceTexture, error) {
	tex, err := s.next(s.surface.GetCurrentTexture)
	if err != nil {
		return nil, err
	}
	return &surfaceTexture{surface: s, texture: tex}, nil
}

// next runs one acquire. wgpu only reports validation errors here; a timed
// out, outdated or lost surface yields a texture without a handle.
func (s *Surface) next(acquire func() (*wgpu.Texture, error)) (*wgpu.Texture, error) {
	tex, err := acquire()
	if err != nil {
		return nil, classifySurfaceError(err)
	}
	if !missingTexture(tex) {
		s.missed = 0
		return tex, nil
	}

	s.missed++
	if s.missed > maxMissedFrames {
		s.missed = 0
		return nil, fmt.Errorf("%w: no surface texture for %d frames", gpu.ErrSurfaceLost, maxMissedFrames+1)
	}
	return nil, fmt.Errorf("%w: no surface texture", gpu.ErrSurfaceOutdated)
}

// missingTexture reports whether tex carries no native handle.
func missingTexture(tex *wgpu.Texture) bool {
	if tex == nil {
		return true
	}
	ref := reflect.ValueOf(tex).Elem().FieldByName("ref")
	switch ref.Kind() {
	case reflect.Pointer, reflect.UnsafePointer:
		return ref.IsNil()
	case reflect.Uintptr:
		return ref.Uint() == 0
	default:
		return false
	}
}

// Release is a no-op; the surface lives as long as the instance.
func (s *Surface) Release() {}

func (s *Surface) release() {
	if s.surface != nil {
		s.surface.Release()
		s.surface = nil
	}
}

// classifySurfaceError maps an acquire error onto the gpu sentinel errors by
// its text.
func classifySurfaceError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout"):
		return fmt.Errorf("%w: %w", gpu.ErrSurfaceTimeout, err)
	case strings.Contains(msg, "outdated"):
		return fmt.Errorf("%w: %w", gpu.ErrSurfaceOutdated, err)
	case strings.Contains(msg, "lost"):
		return fmt.Errorf("%w: %w", gpu.ErrSurfaceLost, err)
	case strings.Contains(msg, "memory"):
		return fmt.Errorf("%w: %w", gpu.ErrSurfaceOutOfMemory, err)
	default:
		return err
	}
}

type surfaceTexture struct {
	surface *Surface
	texture *wgpu.Texture
}

func (t *surfaceTexture) CreateView() (gpu.TextureView, error) {
	if missingTexture(t.texture) {
		return nil, fmt.Errorf("%w: surface texture released", gpu.ErrSurfaceOutdated)
	}
	v, err := t.texture.CreateView(nil)
	if err != nil {
		return nil, err
	}
	return &textureView{view: v}, nil
}

func (t *surfaceTexture) Present() error {
	t.surface.surface.Present()
	return nil
}

func (t *surfaceTexture) Release() {
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}
