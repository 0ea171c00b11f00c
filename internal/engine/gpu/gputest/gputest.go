// Package gputest provides an in-memory gpu backend that records every call.
//
// It validates pipeline/bind group compatibility the way a WebGPU
// implementation would, so engine tests can assert both what was drawn and
// that every draw was legal.
package gputest

import (
	"context"
	"errors"
	"fmt"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// Instance is a fake gpu.Instance. Set the exported fields before use.
type Instance struct {
	// NoAdapter makes RequestAdapter fail with gpu.ErrAdapterUnavailable.
	NoAdapter bool
	// DeviceErr is returned by Adapter.RequestDevice when set.
	DeviceErr error
	// Formats is the surface format list; defaults to BGRA8UnormSrgb, RGBA8Unorm.
	Formats []gpu.TextureFormat

	surface *Surface
	adapter *Adapter
	device  *Device
}

// NewInstance creates a fake instance with a working adapter.
func NewInstance() *Instance {
	return &Instance{
		Formats: []gpu.TextureFormat{gpu.FormatBGRA8UnormSrgb, gpu.FormatRGBA8Unorm},
		surface: &Surface{},
	}
}

func (i *Instance) Surface() gpu.Surface { return i.surface }

// FakeSurface returns the concrete surface for assertions.
func (i *Instance) FakeSurface() *Surface { return i.surface }

// FakeDevice returns the device opened by the last RequestDevice.
func (i *Instance) FakeDevice() *Device { return i.device }

func (i *Instance) RequestAdapter(ctx context.Context, opts gpu.AdapterOptions) (gpu.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if i.NoAdapter {
		return nil, gpu.ErrAdapterUnavailable
	}
	i.adapter = &Adapter{instance: i}
	return i.adapter, nil
}

func (i *Instance) Release() {}

// Adapter is a fake gpu.Adapter.
type Adapter struct {
	instance *Instance
	released bool
}

func (a *Adapter) Info() gpu.AdapterInfo {
	return gpu.AdapterInfo{Name: "fake", Vendor: "gputest", Backend: "null"}
}

func (a *Adapter) SurfaceFormats(gpu.Surface) []gpu.TextureFormat {
	return a.instance.Formats
}

func (a *Adapter) RequestDevice(ctx context.Context, desc gpu.DeviceDescriptor) (gpu.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a.instance.DeviceErr != nil {
		return nil, a.instance.DeviceErr
	}
	d := &Device{Label: desc.Label}
	d.queue = &Queue{device: d}
	a.instance.device = d
	return d, nil
}

func (a *Adapter) Release() { a.released = true }

// Surface is a fake gpu.Surface.
type Surface struct {
	// Configs holds every configuration applied, in order.
	Configs []gpu.SurfaceConfiguration
	// AcquireErrs are returned by successive AcquireTexture calls before
	// frames are handed out again.
	AcquireErrs []error
	// ConfigureErrs are returned by successive Configure calls before
	// configurations are accepted again.
	ConfigureErrs []error
	// Presented counts presented frames.
	Presented int
	// Acquired counts successfully acquired frames.
	Acquired int
}

// Current returns the active configuration.
func (s *Surface) Current() (gpu.SurfaceConfiguration, bool) {
	if len(s.Configs) == 0 {
		return gpu.SurfaceConfiguration{}, false
	}
	return s.Configs[len(s.Configs)-1], true
}

func (s *Surface) Configure(adapter gpu.Adapter, device gpu.Device, cfg gpu.SurfaceConfiguration) error {
	if len(s.ConfigureErrs) > 0 {
		err := s.ConfigureErrs[0]
		s.ConfigureErrs = s.ConfigureErrs[1:]
		return err
	}
	if cfg.Width == 0 || cfg.Height == 0 {
		return fmt.Errorf("gputest: zero-area surface %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.Format == gpu.FormatUndefined {
		return errors.New("gputest: undefined surface format")
	}
	s.Configs = append(s.Configs, cfg)
	return nil
}

func (s *Surface) AcquireTexture() (gpu.SurfaceTexture, error) {
	if len(s.AcquireErrs) > 0 {
		err := s.AcquireErrs[0]
		s.AcquireErrs = s.AcquireErrs[1:]
		return nil, err
	}
	cfg, ok := s.Current()
	if !ok {
		return nil, errors.New("gputest: surface not configured")
	}
	s.Acquired++
	return &SurfaceTexture{surface: s, Config: cfg}, nil
}

func (s *Surface) Release() {}

// SurfaceTexture is an acquired fake frame.
type SurfaceTexture struct {
	Config    gpu.SurfaceConfiguration
	surface   *Surface
	presented bool
}

func (t *SurfaceTexture) CreateView() (gpu.TextureView, error) {
	return &TextureView{Frame: t}, nil
}

func (t *SurfaceTexture) Present() error {
	if t.presented {
		return errors.New("gputest: frame presented twice")
	}
	t.presented = true
	t.surface.Presented++
	return nil
}

func (t *SurfaceTexture) Release() {}
