package wgpubackend

import (
	"errors"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

func TestClassifySurfaceError(t *testing.T) {
	tests := []struct {
		msg  string
		want error
	}{
		{"wgpu.(*Surface).GetCurrentTexture(): got status=Timeout", gpu.ErrSurfaceTimeout},
		{"surface status Outdated", gpu.ErrSurfaceOutdated},
		{"Lost", gpu.ErrSurfaceLost},
		{"OutOfMemory", gpu.ErrSurfaceOutOfMemory},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			err := classifySurfaceError(errors.New(tt.msg))
			assert.ErrorIs(t, err, tt.want)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}

	other := errors.New("device destroyed")
	assert.Same(t, other, classifySurfaceError(other))
}

func TestTextureFormatRoundTrip(t *testing.T) {
	for _, f := range []gpu.TextureFormat{
		gpu.FormatRGBA8Unorm, gpu.FormatRGBA8UnormSrgb,
		gpu.FormatBGRA8Unorm, gpu.FormatBGRA8UnormSrgb,
	} {
		wf, err := toTextureFormat(f)
		require.NoError(t, err)
		assert.Equal(t, f, fromTextureFormat(wf))
	}

	_, err := toTextureFormat(gpu.FormatUndefined)
	assert.Error(t, err)
	assert.Equal(t, gpu.FormatUndefined, fromTextureFormat(wgpu.TextureFormatRGBA16Float))
}

func TestBufferUsage(t *testing.T) {
	got := toBufferUsage(gpu.BufferUsageUniform | gpu.BufferUsageCopyDst)
	assert.Equal(t, wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst, got)
}

func TestLayoutEntry(t *testing.T) {
	e := toLayoutEntry(gpu.BindGroupLayoutEntry{
		Binding:    1,
		Visibility: gpu.StageFragment,
		Type:       gpu.BindingFilteringSampler,
	})
	assert.Equal(t, uint32(1), e.Binding)
	assert.Equal(t, wgpu.ShaderStageFragment, e.Visibility)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, e.Sampler.Type)

	e = toLayoutEntry(gpu.BindGroupLayoutEntry{Type: gpu.BindingUniformBuffer, Visibility: gpu.StageVertex})
	assert.Equal(t, wgpu.BufferBindingTypeUniform, e.Buffer.Type)
}

func TestVertexBufferLayouts(t *testing.T) {
	out := toVertexBufferLayouts([]gpu.VertexBufferLayout{{
		ArrayStride: 20,
		Attributes: []gpu.VertexAttribute{
			{Format: gpu.VertexFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gpu.VertexFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}})
	require.Len(t, out, 1)
	assert.Equal(t, uint64(20), out[0].ArrayStride)
	assert.Equal(t, wgpu.VertexFormatFloat32x2, out[0].Attributes[1].Format)
	assert.Equal(t, uint64(12), out[0].Attributes[1].Offset)
}

func TestMissingTexture(t *testing.T) {
	assert.True(t, missingTexture(nil))
	assert.True(t, missingTexture(&wgpu.Texture{}))
}

func TestAcquireWithoutTexture(t *testing.T) {
	s := &Surface{}
	empty := func() (*wgpu.Texture, error) { return &wgpu.Texture{}, nil }

	for i := 0; i < maxMissedFrames; i++ {
		tex, err := s.next(empty)
		assert.Nil(t, tex)
		require.ErrorIs(t, err, gpu.ErrSurfaceOutdated)
		assert.True(t, gpu.IsSkippable(err))
	}

	_, err := s.next(empty)
	require.ErrorIs(t, err, gpu.ErrSurfaceLost)
	assert.True(t, gpu.IsRecoverable(err))
	assert.Zero(t, s.missed)

	_, err = s.next(empty)
	assert.ErrorIs(t, err, gpu.ErrSurfaceOutdated)
}

func TestAcquireClassifiesErrors(t *testing.T) {
	s := &Surface{missed: 2}
	_, err := s.next(func() (*wgpu.Texture, error) {
		return nil, errors.New("surface status Timeout")
	})
	assert.ErrorIs(t, err, gpu.ErrSurfaceTimeout)
	assert.Equal(t, 2, s.missed)
}
