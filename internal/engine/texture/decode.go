// Package texture decodes images and uploads them as sampled GPU textures.
package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/webp"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// Format tags the encoding of embedded image bytes.
type Format string

const (
	FormatPNG  Format = "png"
	FormatBMP  Format = "bmp"
	FormatWebP Format = "webp"
	FormatTGA  Format = "tga"
)

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG, nil
	case ".bmp":
		return FormatBMP, nil
	case ".webp":
		return FormatWebP, nil
	case ".tga":
		return FormatTGA, nil
	default:
		return "", fmt.Errorf("%w: unknown image extension %q", gpu.ErrTextureDecode, filepath.Ext(path))
	}
}

// Image is a tightly packed, non-premultiplied RGBA8 pixel buffer.
type Image struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

// Decode decodes data as format. Errors wrap gpu.ErrTextureDecode.
func Decode(data []byte, format Format) (*Image, error) {
	var (
		src image.Image
		err error
	)
	switch format {
	case FormatPNG:
		src, err = png.Decode(bytes.NewReader(data))
	case FormatBMP:
		src, err = bmp.Decode(bytes.NewReader(data))
	case FormatWebP:
		src, err = webp.Decode(bytes.NewReader(data))
	case FormatTGA:
		src, err = DecodeTGA(data)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", gpu.ErrTextureDecode, format, err)
	}

	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%w: %s: empty image", gpu.ErrTextureDecode, format)
	}

	return &Image{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Pix:    toNRGBA(src).Pix,
	}, nil
}

// toNRGBA returns src as an NRGBA image with a zero origin and stride 4*width.
func toNRGBA(src image.Image) *image.NRGBA {
	b := src.Bounds()
	if n, ok := src.(*image.NRGBA); ok && b.Min == (image.Point{}) && n.Stride == 4*b.Dx() {
		return n
	}
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}
