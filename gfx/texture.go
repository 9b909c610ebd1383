// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/deferred"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Texture formats of uploaded source textures.
const (
	DiffuseTextureFormat    = gputypes.TextureFormatRGBA8UnormSrgb
	FullbrightTextureFormat = gputypes.TextureFormatR8Unorm
	LightmapTextureFormat   = gputypes.TextureFormatR8Unorm
)

// TextureKind tags the content of a [TextureData].
type TextureKind uint8

const (
	// TextureDiffuse is RGBA color data, 4 bytes per pixel.
	TextureDiffuse TextureKind = iota
	// TextureFullbright is a single-channel fullbright mask.
	TextureFullbright
	// TextureLightmap is a single-channel lightmap.
	TextureLightmap
)

func (k TextureKind) String() string {
	switch k {
	case TextureDiffuse:
		return "diffuse"
	case TextureFullbright:
		return "fullbright"
	case TextureLightmap:
		return "lightmap"
	default:
		return fmt.Sprintf("TextureKind(%d)", uint8(k))
	}
}

// TextureData is pixel data ready for upload.
type TextureData struct {
	Kind TextureKind
	Data []byte
}

// DiffuseData wraps RGBA pixels.
func DiffuseData(rgba []byte) TextureData { return TextureData{Kind: TextureDiffuse, Data: rgba} }

// FullbrightData wraps a fullbright mask.
func FullbrightData(mask []byte) TextureData {
	return TextureData{Kind: TextureFullbright, Data: mask}
}

// LightmapData wraps lightmap luminance values.
func LightmapData(lum []byte) TextureData { return TextureData{Kind: TextureLightmap, Data: lum} }

// Format returns the GPU format the data is uploaded as.
func (d TextureData) Format() gputypes.TextureFormat {
	switch d.Kind {
	case TextureFullbright:
		return FullbrightTextureFormat
	case TextureLightmap:
		return LightmapTextureFormat
	default:
		return DiffuseTextureFormat
	}
}

// Stride returns the byte size of one pixel of d.
func (d TextureData) Stride() uint32 {
	s, _ := FormatStride(d.Format())
	return s
}

// FormatStride returns the byte size of one pixel of an uncompressed
// color format. ok is false for formats that cannot be uploaded directly.
func FormatStride(format gputypes.TextureFormat) (stride uint32, ok bool) {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1, true
	case gputypes.TextureFormatRG8Unorm, gputypes.TextureFormatR16Float:
		return 2, true
	case gputypes.TextureFormatRGBA8Unorm, gputypes.TextureFormatRGBA8UnormSrgb,
		gputypes.TextureFormatBGRA8Unorm, gputypes.TextureFormatBGRA8UnormSrgb,
		gputypes.TextureFormatRG16Float, gputypes.TextureFormatR32Float:
		return 4, true
	case gputypes.TextureFormatRGBA16Float, gputypes.TextureFormatRG32Float:
		return 8, true
	case gputypes.TextureFormatRGBA32Float:
		return 16, true
	default:
		return 0, false
	}
}

// TextureDescriptor returns the descriptor used for sampled source
// textures: one mip level, one sample, copy destination and binding usage.
func TextureDescriptor(label string, width, height uint32, format gputypes.TextureFormat) *hal.TextureDescriptor {
	return &hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: width, Height: height, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageCopyDst | gputypes.TextureUsageTextureBinding,
	}
}

// Texture is an uploaded sampled texture and its default view.
type Texture struct {
	Texture hal.Texture
	View    hal.TextureView
	Format  gputypes.TextureFormat

	// Size is the allocated size. Zero source dimensions are raised to 1.
	Size Extent2D
}

// Destroy releases the texture and its view.
func (t *Texture) Destroy(device hal.Device) {
	if t == nil {
		return
	}
	if t.View != nil {
		device.DestroyTextureView(t.View)
		t.View = nil
	}
	if t.Texture != nil {
		device.DestroyTexture(t.Texture)
		t.Texture = nil
	}
}

// UploadLayout returns the copy layout and copy extent for a width x height
// upload of data. The copy keeps the unclamped dimensions, so a zero-area
// source produces a zero-area copy.
func UploadLayout(width, height uint32, data TextureData) (hal.ImageDataLayout, hal.Extent3D) {
	layout := hal.ImageDataLayout{
		Offset:       0,
		BytesPerRow:  width * data.Stride(),
		RowsPerImage: height,
	}
	return layout, Extent2D{Width: width, Height: height}.Extent3D()
}

// CreateTexture allocates a texture for data and uploads it. Zero
// dimensions are clamped to 1 for the allocation only.
func CreateTexture(device hal.Device, queue hal.Queue, label string, width, height uint32, data TextureData) (*Texture, error) {
	format := data.Format()
	alloc := Extent2D{Width: width, Height: height}.Clamped()

	deferred.Logger().Debug("gfx: create texture",
		"label", label, "kind", data.Kind.String(), "width", width, "height", height)

	tex, err := device.CreateTexture(TextureDescriptor(label, alloc.Width, alloc.Height, format))
	if err != nil {
		return nil, fmt.Errorf("create texture %q: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        format,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		device.DestroyTexture(tex)
		return nil, fmt.Errorf("create texture view %q: %w", label, err)
	}

	layout, size := UploadLayout(width, height, data)
	if size.Width > 0 && size.Height > 0 && len(data.Data) > 0 {
		queue.WriteTexture(&hal.ImageCopyTexture{Texture: tex, MipLevel: 0}, data.Data, &layout, &size)
	}

	return &Texture{Texture: tex, View: view, Format: format, Size: alloc}, nil
}
