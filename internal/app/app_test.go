package app

import (
	"context"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/town-links/internal/assets"
	"github.com/Faultbox/town-links/internal/config"
	"github.com/Faultbox/town-links/internal/engine/debug"
	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/gpu/gputest"
	"github.com/Faultbox/town-links/internal/engine/input"
	"github.com/Faultbox/town-links/internal/engine/rendermode"
)

// scriptedWindow delivers one batch of events per poll and a quit event once
// the script runs out.
type scriptedWindow struct {
	width, height int
	batches       [][]input.Event
	polls         int
	closed        bool
}

func (w *scriptedWindow) Size() (int, int)                { return w.width, w.height }
func (w *scriptedWindow) SetCursorPos(_, _ float64) error { return nil }
func (w *scriptedWindow) Close()                          { w.closed = true }

func (w *scriptedWindow) PollEvents(q *input.Queue) {
	w.polls++
	if len(w.batches) == 0 {
		q.Push(input.Event{Type: input.EventQuit})
		return
	}
	for _, ev := range w.batches[0] {
		q.Push(ev)
	}
	w.batches = w.batches[1:]
}

func newApp(t *testing.T, batches ...[]input.Event) (*App, *gputest.Instance, *scriptedWindow) {
	t.Helper()
	opts, err := EngineOptions(config.Default(), assets.NewManager())
	require.NoError(t, err)

	inst := gputest.NewInstance()
	win := &scriptedWindow{width: 1024, height: 768, batches: batches}
	a, err := New(context.Background(), win, inst, opts)
	require.NoError(t, err)
	t.Cleanup(a.Close)
	return a, inst, win
}

func TestRunUntilQuit(t *testing.T) {
	a, inst, win := newApp(t, nil, nil, nil)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 4, win.polls)
	assert.Equal(t, 3, inst.FakeSurface().Presented)
	assert.Equal(t, uint64(3), a.Engine().Frames())
}

func TestEscapeStopsLoop(t *testing.T) {
	a, inst, win := newApp(t,
		nil,
		[]input.Event{{Type: input.EventKeyDown, Key: input.KeyEscape}},
		nil,
	)

	require.NoError(t, a.Run(context.Background()))
	assert.Equal(t, 2, win.polls)
	assert.Equal(t, 1, inst.FakeSurface().Presented)
}

func TestCancelledContextStopsLoop(t *testing.T) {
	a, _, win := newApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, a.Run(ctx))
	assert.Zero(t, win.polls)
}

func TestEventsReachEngine(t *testing.T) {
	a, inst, _ := newApp(t)

	a.window.(*scriptedWindow).batches = [][]input.Event{{
		{Type: input.EventWindowResize, Width: 800, Height: 600},
		{Type: input.EventMouseMove, MouseX: 400, MouseY: 150},
		{Type: input.EventKeyDown, Key: input.KeySpace},
	}}
	require.NoError(t, a.Step())

	cfg, _ := inst.FakeSurface().Current()
	assert.Equal(t, uint32(800), cfg.Width)
	assert.Equal(t, uint32(600), cfg.Height)

	clear := a.Engine().ClearColor()
	assert.InDelta(t, 0.5, clear.R, 1e-9)
	assert.InDelta(t, 0.25, clear.B, 1e-9)
	assert.Equal(t, rendermode.A, a.Engine().Mode())
}

func TestMinimizeDoesNotStopLoop(t *testing.T) {
	a, inst, _ := newApp(t,
		[]input.Event{{Type: input.EventWindowResize, Width: 0, Height: 0}},
		[]input.Event{{Type: input.EventWindowResize, Width: 640, Height: 480}},
	)
	require.NoError(t, a.Run(context.Background()))

	for _, cfg := range inst.FakeSurface().Configs {
		assert.NotZero(t, cfg.Width)
		assert.NotZero(t, cfg.Height)
	}
	assert.Equal(t, 2, inst.FakeSurface().Presented)
}

func TestRenderErrorPolicy(t *testing.T) {
	t.Run("lost surface is reconfigured", func(t *testing.T) {
		a, inst, _ := newApp(t)
		surface := inst.FakeSurface()
		surface.AcquireErrs = []error{gpu.ErrSurfaceLost}
		before := len(surface.Configs)

		require.NoError(t, a.Step())
		assert.Len(t, surface.Configs, before+1)
		assert.Zero(t, surface.Presented)

		require.NoError(t, a.Step())
		assert.Equal(t, 1, surface.Presented)
	})

	t.Run("timeout skips the frame", func(t *testing.T) {
		a, inst, _ := newApp(t)
		surface := inst.FakeSurface()
		surface.AcquireErrs = []error{gpu.ErrSurfaceTimeout, gpu.ErrSurfaceOutdated}
		before := len(surface.Configs)

		require.NoError(t, a.Step())
		require.NoError(t, a.Step())
		require.NoError(t, a.Step())
		assert.Len(t, surface.Configs, before)
		assert.Equal(t, 1, surface.Presented)
	})

	t.Run("out of memory is fatal", func(t *testing.T) {
		a, inst, _ := newApp(t, nil, nil)
		inst.FakeSurface().AcquireErrs = []error{gpu.ErrSurfaceOutOfMemory}

		err := a.Run(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, gpu.ErrSurfaceOutOfMemory)
	})
}

// loopDriver calls frame until it returns false or limit frames ran.
type loopDriver struct {
	limit  int
	frames int
}

func (d *loopDriver) Run(frame func() bool) {
	for d.frames < d.limit {
		d.frames++
		if !frame() {
			return
		}
	}
}

func TestDriveUntilQuit(t *testing.T) {
	a, inst, win := newApp(t, nil, nil)
	d := &loopDriver{limit: 10}

	require.NoError(t, a.Drive(context.Background(), d))
	assert.Equal(t, 3, d.frames)
	assert.Equal(t, 3, win.polls)
	assert.Equal(t, 2, inst.FakeSurface().Presented)
}

func TestDriveStopsOnCancelledContext(t *testing.T) {
	a, _, win := newApp(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d := &loopDriver{limit: 10}

	require.NoError(t, a.Drive(ctx, d))
	assert.Equal(t, 1, d.frames)
	assert.Zero(t, win.polls)
}

func TestDriveReturnsFatalError(t *testing.T) {
	a, inst, _ := newApp(t, nil, nil)
	inst.FakeSurface().AcquireErrs = []error{gpu.ErrSurfaceOutOfMemory}
	d := &loopDriver{limit: 10}

	err := a.Drive(context.Background(), d)
	require.Error(t, err)
	assert.ErrorIs(t, err, gpu.ErrSurfaceOutOfMemory)
	assert.Equal(t, 1, d.frames)
}

func TestCloseReleasesEverything(t *testing.T) {
	a, inst, win := newApp(t)
	a.Close()

	assert.True(t, win.closed)
	assert.True(t, inst.FakeDevice().Released())
	a.Close()
}

func TestEngineOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Renderer.VSync = false
	cfg.Renderer.PowerPreference = "low"
	cfg.Renderer.ClearColor = [4]float64{0.1, 0.2, 0.3, 1}
	cfg.Renderer.DebugOverlay = true
	cfg.Scene.FovY = 60
	cfg.Scene.Eye = [3]float32{0, 2, 4}
	cfg.Scene.CameraSpeed = 0.5
	cfg.Scene.ModelRotationDeg = 30

	opts, err := EngineOptions(cfg, assets.NewManager())
	require.NoError(t, err)

	assert.False(t, opts.VSync)
	assert.Equal(t, gpu.PowerLow, opts.PowerPreference)
	assert.Equal(t, gpu.Color{R: 0.1, G: 0.2, B: 0.3, A: 1}, opts.ClearColor)
	assert.IsType(t, &debug.FrameStats{}, opts.Overlay)
	require.NotNil(t, opts.Camera)
	assert.Equal(t, float32(60), opts.Camera.FovY)
	assert.Equal(t, mgl32.Vec3{0, 2, 4}, opts.Camera.Eye)
	assert.Equal(t, float32(0.5), opts.CameraSpeed)
	assert.Equal(t, float32(30), opts.ModelRotationDeg)
	for _, src := range opts.Textures {
		assert.NotEmpty(t, src.Data)
	}
}

func TestEngineOptionsDefaults(t *testing.T) {
	opts, err := EngineOptions(config.Default(), assets.NewManager())
	require.NoError(t, err)

	assert.True(t, opts.VSync)
	assert.Equal(t, gpu.PowerHighPerformance, opts.PowerPreference)
	assert.Nil(t, opts.Overlay)
	assert.Equal(t, input.KeySpace, opts.ToggleKey)
}
