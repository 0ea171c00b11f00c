// Package glbackend implements the gpu interfaces on OpenGL 4.1 core.
//
// Command encoders record closures that run on Queue.Submit; buffer and
// texture uploads run immediately. Bind groups map onto uniform block
// binding points and texture units by resource name, since GLSL 4.1 has no
// binding qualifiers. All calls must come from the thread owning the context.
package glbackend

import (
	"context"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/logger"
)

// Window is the GL context owner presenting frames.
type Window interface {
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	SwapBuffers()
	SetSwapInterval(interval int) error
}

// Instance is a gpu.Instance over the current GL context.
type Instance struct {
	surface *Surface
	log     *zap.Logger
}

// New loads the GL function pointers for the context current on this thread.
// Frames render to the default framebuffer and are presented with
// win.SwapBuffers.
func New(win Window) (*Instance, error) {
	return newInstance(win, false)
}

// NewOffscreen is like New but renders every frame into an offscreen texture,
// exposed through SceneTexture, for a host that draws and swaps the window
// itself.
func NewOffscreen(win Window) (*Instance, error) {
	return newInstance(win, true)
}

func newInstance(win Window, offscreen bool) (*Instance, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: OpenGL init failed: %w", gpu.ErrAdapterUnavailable, err)
	}

	log := logger.Named("gl")
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
		zap.Bool("offscreen", offscreen),
	)
	return &Instance{
		surface: &Surface{win: win, log: log, offscreen: offscreen},
		log:     log,
	}, nil
}

func (i *Instance) Surface() gpu.Surface { return i.surface }

// SceneTexture returns the offscreen frame texture; see Surface.SceneTexture.
func (i *Instance) SceneTexture() uint32 { return i.surface.SceneTexture() }

// RequestAdapter returns the adapter behind the context. There is exactly
// one and power preference is ignored.
func (i *Instance) RequestAdapter(ctx context.Context, _ gpu.AdapterOptions) (gpu.Adapter, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Adapter{log: i.log, offscreen: i.surface.offscreen}, nil
}

func (i *Instance) Release() {}

// Adapter describes the GL implementation.
type Adapter struct {
	log       *zap.Logger
	offscreen bool
}

func (a *Adapter) Info() gpu.AdapterInfo {
	return gpu.AdapterInfo{
		Name:    gl.GoStr(gl.GetString(gl.RENDERER)),
		Vendor:  gl.GoStr(gl.GetString(gl.VENDOR)),
		Backend: "OpenGL " + gl.GoStr(gl.GetString(gl.VERSION)),
	}
}

// SurfaceFormats reports an sRGB format first when the default framebuffer
// has sRGB encoding. Offscreen targets are linear RGBA8.
func (a *Adapter) SurfaceFormats(gpu.Surface) []gpu.TextureFormat {
	if a.offscreen {
		return []gpu.TextureFormat{gpu.FormatRGBA8Unorm}
	}
	var encoding int32
	gl.GetFramebufferAttachmentParameteriv(gl.FRAMEBUFFER, gl.BACK_LEFT,
		gl.FRAMEBUFFER_ATTACHMENT_COLOR_ENCODING, &encoding)
	if encoding == gl.SRGB {
		return []gpu.TextureFormat{gpu.FormatRGBA8UnormSrgb, gpu.FormatRGBA8Unorm}
	}
	return []gpu.TextureFormat{gpu.FormatRGBA8Unorm}
}

func (a *Adapter) RequestDevice(ctx context.Context, desc gpu.DeviceDescriptor) (gpu.Device, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d := &Device{label: desc.Label, log: a.log}
	d.queue = &Queue{log: a.log}
	return d, nil
}

func (a *Adapter) Release() {}

// glError drains the GL error flags and returns the first one.
func glError() uint32 {
	first := uint32(gl.NO_ERROR)
	for e := gl.GetError(); e != gl.NO_ERROR; e = gl.GetError() {
		if first == gl.NO_ERROR {
			first = e
		}
	}
	return first
}
