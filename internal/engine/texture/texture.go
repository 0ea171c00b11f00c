package texture

import (
	"fmt"

	"github.com/Faultbox/town-links/internal/engine/gpu"
)

// Resource is a texture with its sampled view and sampler.
// The view and sampler are owned by the resource and never outlive the texture.
type Resource struct {
	Label   string
	Texture gpu.Texture
	View    gpu.TextureView
	Sampler gpu.Sampler
}

// SamplerDescriptor returns the sampler used for diffuse textures:
// clamp to edge, linear magnification, nearest minification and mip selection.
func SamplerDescriptor(label string) gpu.SamplerDescriptor {
	return gpu.SamplerDescriptor{
		Label:        label,
		AddressModeU: gpu.AddressClampToEdge,
		AddressModeV: gpu.AddressClampToEdge,
		AddressModeW: gpu.AddressClampToEdge,
		MagFilter:    gpu.FilterLinear,
		MinFilter:    gpu.FilterNearest,
		MipmapFilter: gpu.FilterNearest,
	}
}

// FromBytes decodes data and uploads it.
func FromBytes(dev gpu.Device, q gpu.Queue, data []byte, format Format, label string) (*Resource, error) {
	img, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", label, err)
	}
	return New(dev, q, img, label)
}

// New uploads img as an sRGB texture.
func New(dev gpu.Device, q gpu.Queue, img *Image, label string) (*Resource, error) {
	size := gpu.Extent3D{Width: img.Width, Height: img.Height, DepthOrArrayLayers: 1}

	tex, err := dev.CreateTexture(gpu.TextureDescriptor{
		Label:  label,
		Size:   size,
		Format: gpu.FormatRGBA8UnormSrgb,
	})
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", label, err)
	}

	r := &Resource{Label: label, Texture: tex}

	err = q.WriteTexture(tex, img.Pix, gpu.TextureDataLayout{
		BytesPerRow:  4 * img.Width,
		RowsPerImage: img.Height,
	}, size)
	if err != nil {
		r.Release()
		return nil, fmt.Errorf("upload texture %q: %w", label, err)
	}

	if r.View, err = tex.CreateView(); err != nil {
		r.Release()
		return nil, fmt.Errorf("view of texture %q: %w", label, err)
	}
	if r.Sampler, err = dev.CreateSampler(SamplerDescriptor(label + " Sampler")); err != nil {
		r.Release()
		return nil, fmt.Errorf("sampler for texture %q: %w", label, err)
	}

	return r, nil
}

// Release frees the sampler and view before the texture.
func (r *Resource) Release() {
	if r.Sampler != nil {
		r.Sampler.Release()
		r.Sampler = nil
	}
	if r.View != nil {
		r.View.Release()
		r.View = nil
	}
	if r.Texture != nil {
		r.Texture.Release()
		r.Texture = nil
	}
}
