package texture

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/Faultbox/town-links/internal/engine/gpu"
	"github.com/Faultbox/town-links/internal/engine/gpu/gputest"
)

func checker() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	return img
}

func TestDecodePNG(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker()))

	img, err := Decode(buf.Bytes(), FormatPNG)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), img.Width)
	assert.Equal(t, uint32(2), img.Height)
	assert.Equal(t, checker().Pix, img.Pix)
}

func TestDecodeBMP(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 1))
	src.SetRGBA(2, 0, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	var buf bytes.Buffer
	require.NoError(t, bmp.Encode(&buf, src))

	img, err := Decode(buf.Bytes(), FormatBMP)
	require.NoError(t, err)
	assert.Len(t, img.Pix, 3*4)
	assert.Equal(t, []byte{1, 2, 3, 255}, img.Pix[8:12])
}

func TestDecodeTGA(t *testing.T) {
	// 2x1 uncompressed, 24 bpp, top-to-bottom; pixels are BGR.
	data := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 1, 0, 24, 0x20,
		3, 2, 1,
		30, 20, 10,
	}
	img, err := Decode(data, FormatTGA)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 255, 10, 20, 30, 255}, img.Pix)
}

func TestDecodeTGARLE(t *testing.T) {
	// 3x1 RLE, 32 bpp, bottom-up: one run packet of 3 pixels.
	data := []byte{0, 0, 10, 0, 0, 0, 0, 0, 0, 0, 0, 0, 3, 0, 1, 0, 32, 0,
		0x82, 9, 8, 7, 200,
	}
	img, err := Decode(data, FormatTGA)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		assert.Equal(t, []byte{7, 8, 9, 200}, img.Pix[i*4:i*4+4])
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name   string
		data   []byte
		format Format
	}{
		{"garbage png", []byte("not a png"), FormatPNG},
		{"short tga", []byte{0, 0, 2}, FormatTGA},
		{"truncated tga", []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 2, 0, 24, 0, 1, 2, 3}, FormatTGA},
		{"unknown format", []byte{1}, Format("gif")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.data, tt.format)
			assert.ErrorIs(t, err, gpu.ErrTextureDecode)
		})
	}
}

func TestDecodeKeepsDecoderError(t *testing.T) {
	_, err := Decode([]byte("not a png"), FormatPNG)
	require.ErrorIs(t, err, gpu.ErrTextureDecode)

	var formatErr png.FormatError
	assert.ErrorAs(t, err, &formatErr)
}

func TestFormatFromPath(t *testing.T) {
	f, err := FormatFromPath("textures/Tree.PNG")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	_, err = FormatFromPath("tree.gif")
	assert.ErrorIs(t, err, gpu.ErrTextureDecode)
}

func TestFromBytesUploads(t *testing.T) {
	inst := gputest.NewInstance()
	adapter, err := inst.RequestAdapter(context.Background(), gpu.AdapterOptions{})
	require.NoError(t, err)
	dev, err := adapter.RequestDevice(context.Background(), gpu.DeviceDescriptor{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, checker()))

	res, err := FromBytes(dev, dev.Queue(), buf.Bytes(), FormatPNG, "checker")
	require.NoError(t, err)

	fake := dev.(*gputest.Device)
	require.Len(t, fake.Textures, 1)
	tex := fake.Textures[0]
	assert.Equal(t, gpu.FormatRGBA8UnormSrgb, tex.Desc.Format)
	assert.Equal(t, uint32(8), tex.Layout.BytesPerRow)
	assert.Equal(t, checker().Pix, tex.Data)

	require.Len(t, fake.Samplers, 1)
	s := fake.Samplers[0].Desc
	assert.Equal(t, gpu.FilterLinear, s.MagFilter)
	assert.Equal(t, gpu.FilterNearest, s.MinFilter)
	assert.Equal(t, gpu.AddressClampToEdge, s.AddressModeU)

	res.Release()
	assert.True(t, tex.Released())
	assert.True(t, fake.Samplers[0].Released())
}

func TestFromBytesPropagatesDecodeError(t *testing.T) {
	inst := gputest.NewInstance()
	adapter, _ := inst.RequestAdapter(context.Background(), gpu.AdapterOptions{})
	dev, _ := adapter.RequestDevice(context.Background(), gpu.DeviceDescriptor{})

	_, err := FromBytes(dev, dev.Queue(), []byte("nope"), FormatPNG, "broken")
	assert.ErrorIs(t, err, gpu.ErrTextureDecode)
	assert.Empty(t, dev.(*gputest.Device).Textures)
}
