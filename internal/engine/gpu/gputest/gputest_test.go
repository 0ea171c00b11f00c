package gputest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

func openDevice(t *testing.T) (*Instance, gpu.Adapter, *Device) {
	t.Helper()
	inst := NewInstance()
	adapter, err := inst.RequestAdapter(context.Background(), gpu.AdapterOptions{})
	require.NoError(t, err)
	dev, err := adapter.RequestDevice(context.Background(), gpu.DeviceDescriptor{Label: "test"})
	require.NoError(t, err)
	return inst, adapter, dev.(*Device)
}

func TestNoAdapter(t *testing.T) {
	inst := NewInstance()
	inst.NoAdapter = true

	_, err := inst.RequestAdapter(context.Background(), gpu.AdapterOptions{})
	assert.ErrorIs(t, err, gpu.ErrAdapterUnavailable)
}

func TestSurfaceRejectsZeroArea(t *testing.T) {
	inst, adapter, dev := openDevice(t)

	err := inst.Surface().Configure(adapter, dev, gpu.SurfaceConfiguration{Format: gpu.FormatRGBA8Unorm, Width: 0, Height: 10})
	assert.Error(t, err)
	assert.Empty(t, inst.FakeSurface().Configs)
}

func TestAcquireErrorsAreConsumedInOrder(t *testing.T) {
	inst, adapter, dev := openDevice(t)
	s := inst.FakeSurface()
	require.NoError(t, s.Configure(adapter, dev, gpu.SurfaceConfiguration{Format: gpu.FormatRGBA8Unorm, Width: 4, Height: 4}))

	s.AcquireErrs = []error{gpu.ErrSurfaceLost, gpu.ErrSurfaceTimeout}

	_, err := s.AcquireTexture()
	assert.ErrorIs(t, err, gpu.ErrSurfaceLost)
	_, err = s.AcquireTexture()
	assert.ErrorIs(t, err, gpu.ErrSurfaceTimeout)

	frame, err := s.AcquireTexture()
	require.NoError(t, err)
	require.NoError(t, frame.Present())
	assert.Error(t, frame.Present())
	assert.Equal(t, 1, s.Presented)
}

func TestPassValidatesBindGroups(t *testing.T) {
	_, _, dev := openDevice(t)

	layout, err := dev.CreateBindGroupLayout(gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{{Binding: 0, Type: gpu.BindingUniformBuffer}},
	})
	require.NoError(t, err)
	other, err := dev.CreateBindGroupLayout(gpu.BindGroupLayoutDescriptor{
		Entries: []gpu.BindGroupLayoutEntry{{Binding: 0, Type: gpu.BindingUniformBuffer}},
	})
	require.NoError(t, err)

	buf, err := dev.CreateBuffer(gpu.BufferDescriptor{Size: 64, Usage: gpu.BufferUsageUniform | gpu.BufferUsageCopyDst})
	require.NoError(t, err)
	wrong, err := dev.CreateBindGroup(gpu.BindGroupDescriptor{Layout: other, Entries: []gpu.BindGroupEntry{{Binding: 0, Buffer: buf}}})
	require.NoError(t, err)

	pl, err := dev.CreatePipelineLayout(gpu.PipelineLayoutDescriptor{BindGroupLayouts: []gpu.BindGroupLayout{layout}})
	require.NoError(t, err)
	mod, err := dev.CreateShaderModule(gpu.ShaderModuleDescriptor{WGSL: "x"})
	require.NoError(t, err)
	pipe, err := dev.CreateRenderPipeline(gpu.RenderPipelineDescriptor{
		Layout:       pl,
		Vertex:       gpu.StageState{Module: mod, EntryPoint: "vs_main"},
		Fragment:     gpu.StageState{Module: mod, EntryPoint: "fs_main"},
		TargetFormat: gpu.FormatRGBA8Unorm,
	})
	require.NoError(t, err)

	enc, err := dev.CreateCommandEncoder("test")
	require.NoError(t, err)
	tex, err := dev.CreateTexture(gpu.TextureDescriptor{Size: gpu.Extent3D{Width: 1, Height: 1, DepthOrArrayLayers: 1}})
	require.NoError(t, err)
	view, err := tex.CreateView()
	require.NoError(t, err)

	pass, err := enc.BeginRenderPass(gpu.RenderPassDescriptor{View: view})
	require.NoError(t, err)
	pass.SetPipeline(pipe)
	pass.SetBindGroup(0, wrong)
	pass.Draw(3, 1, 0, 0)

	assert.Error(t, pass.End())
	assert.Empty(t, pass.(*RenderPass).Draws)
}

func TestWriteBufferRequiresCopyDst(t *testing.T) {
	_, _, dev := openDevice(t)

	buf, err := dev.CreateBuffer(gpu.BufferDescriptor{Size: 8, Usage: gpu.BufferUsageVertex})
	require.NoError(t, err)
	assert.Error(t, dev.Queue().WriteBuffer(buf, 0, make([]byte, 8)))

	_, err = dev.CreateBuffer(gpu.BufferDescriptor{Size: 6, Usage: gpu.BufferUsageVertex})
	assert.Error(t, err, "size must be a multiple of 4")
}
