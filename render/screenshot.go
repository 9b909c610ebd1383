// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"fmt"
	"image"
	"io"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"golang.org/x/image/bmp"
)

// copyPitchAlignment is the row alignment texture-to-buffer copies need.
const copyPitchAlignment = 256

// Screenshot reads the final target of the last frame back to the CPU.
func Screenshot(state *GraphicsState) (*image.RGBA, error) {
	device, queue := state.Device(), state.Queue()
	target := state.FinalTarget()
	size := target.AllocatedSize()
	w, h := size.Width, size.Height

	bytesPerRow := w * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(h)

	staging, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: "screenshot_staging",
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer device.DestroyBuffer(staging)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "screenshot_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("screenshot"); err != nil {
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	tex := target.Texture()
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageRenderAttachment,
			NewUsage: gputypes.TextureUsageCopySrc,
		},
	}})
	encoder.CopyTextureToBuffer(tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: h},
		TextureBase:  hal.ImageCopyTexture{Texture: tex, MipLevel: 0},
		Size:         size.Extent3D(),
	}})
	encoder.TransitionTextures([]hal.TextureBarrier{{
		Texture: tex,
		Usage: hal.TextureUsageTransition{
			OldUsage: gputypes.TextureUsageCopySrc,
			NewUsage: gputypes.TextureUsageRenderAttachment,
		},
	}})

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	if err := submitAndWait(device, queue, cmdBuf); err != nil {
		return nil, err
	}

	readback := make([]byte, stagingSize)
	if err := queue.ReadBuffer(staging, 0, readback); err != nil {
		return nil, fmt.Errorf("readback: %w", err)
	}
	return unpadRows(readback, w, h, alignedBytesPerRow), nil
}

// unpadRows strips the per-row copy padding of an RGBA readback.
func unpadRows(data []byte, w, h, pitch uint32) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	row := int(w) * 4
	for y := 0; y < int(h); y++ {
		src := y * int(pitch)
		copy(img.Pix[y*img.Stride:y*img.Stride+row], data[src:src+row])
	}
	return img
}

// WriteBMP encodes img as an uncompressed BMP.
func WriteBMP(w io.Writer, img image.Image) error {
	return bmp.Encode(w, img)
}
