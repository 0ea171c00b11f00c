package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/gpu/gputest"
	"github.com/Faultbox/town-links/internal/engine/shader"
)

func newDevice(t *testing.T) *gputest.Device {
	t.Helper()
	inst := gputest.NewInstance()
	adapter, err := inst.RequestAdapter(context.Background(), gpu.AdapterOptions{})
	require.NoError(t, err)
	dev, err := adapter.RequestDevice(context.Background(), gpu.DeviceDescriptor{})
	require.NoError(t, err)
	return dev.(*gputest.Device)
}

func TestNewBuildsThreePipelines(t *testing.T) {
	dev := newDevice(t)

	layouts, err := NewLayouts(dev)
	require.NoError(t, err)
	set, err := New(dev, layouts, gpu.FormatBGRA8UnormSrgb)
	require.NoError(t, err)

	require.Len(t, dev.Pipelines, 3)
	primary := set.Get(Primary).(*gputest.RenderPipeline)
	alternate := set.Get(Alternate).(*gputest.RenderPipeline)
	tertiary := set.Get(Tertiary).(*gputest.RenderPipeline)

	for _, p := range []*gputest.RenderPipeline{primary, alternate, tertiary} {
		assert.Equal(t, Primitive(), p.Desc.Primitive, p.Desc.Label)
		assert.Equal(t, uint32(1), p.Desc.SampleCount, p.Desc.Label)
		assert.Equal(t, gpu.FormatBGRA8UnormSrgb, p.Desc.TargetFormat, p.Desc.Label)
		assert.Equal(t, shader.VertexEntry, p.Desc.Vertex.EntryPoint)
		assert.Equal(t, shader.FragmentEntry, p.Desc.Fragment.EntryPoint)
	}

	assert.Equal(t, []gpu.BindGroupLayout{layouts.Texture, layouts.Transform}, primary.Layouts())
	assert.Len(t, primary.Desc.VertexBuffers, 1)

	assert.Empty(t, alternate.Layouts())
	assert.Empty(t, alternate.Desc.VertexBuffers)
	assert.NotSame(t, primary.Desc.Vertex.Module, alternate.Desc.Vertex.Module)

	// Same shader and group layouts as primary, separate pipeline layout object.
	assert.Same(t, primary.Desc.Vertex.Module, tertiary.Desc.Vertex.Module)
	assert.Equal(t, primary.Layouts(), tertiary.Layouts())
	assert.NotSame(t, primary.Desc.Layout, tertiary.Desc.Layout)
}

func TestLayoutDescriptors(t *testing.T) {
	tex := TextureLayoutDescriptor()
	require.Len(t, tex.Entries, 2)
	assert.Equal(t, gpu.BindingSampledTexture, tex.Entries[0].Type)
	assert.Equal(t, gpu.BindingFilteringSampler, tex.Entries[1].Type)

	transform := TransformLayoutDescriptor()
	require.Len(t, transform.Entries, 1)
	assert.Equal(t, gpu.BindingUniformBuffer, transform.Entries[0].Type)
	assert.Equal(t, shader.TransformBlock, transform.Entries[0].Name)
}

func TestRelease(t *testing.T) {
	dev := newDevice(t)

	layouts, err := NewLayouts(dev)
	require.NoError(t, err)
	set, err := New(dev, layouts, gpu.FormatRGBA8Unorm)
	require.NoError(t, err)

	set.Release()
	layouts.Release()

	for _, p := range dev.Pipelines {
		assert.True(t, p.Released())
	}
	for _, l := range dev.PipelineLayouts {
		assert.True(t, l.Released())
	}
	for _, m := range dev.ShaderModules {
		assert.True(t, m.Released())
	}
	for _, l := range dev.BindGroupLayouts {
		assert.True(t, l.Released())
	}
}
