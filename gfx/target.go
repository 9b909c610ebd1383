// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/deferred"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Attachment formats of the pass targets.
const (
	DiffuseAttachmentFormat  = gputypes.TextureFormatRGBA8UnormSrgb
	NormalAttachmentFormat   = gputypes.TextureFormatRGBA8Unorm
	LightAttachmentFormat    = gputypes.TextureFormatRGBA8Unorm
	DepthAttachmentFormat    = gputypes.TextureFormatDepth32Float
	DeferredAttachmentFormat = gputypes.TextureFormatRGBA16Float
	FinalAttachmentFormat    = gputypes.TextureFormatRGBA8UnormSrgb
)

// attachment is one texture plus its full view.
type attachment struct {
	tex  hal.Texture
	view hal.TextureView
}

func createAttachment(device hal.Device, label string, size Extent2D, sampleCount uint32,
	format gputypes.TextureFormat, usage gputypes.TextureUsage) (attachment, error) {
	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          size.Extent3D(),
		MipLevelCount: 1,
		SampleCount:   sampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return attachment{}, fmt.Errorf("create %s texture: %w", label, err)
	}
	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: label + "_view",
	})
	if err != nil {
		device.DestroyTexture(tex)
		return attachment{}, fmt.Errorf("create %s view: %w", label, err)
	}
	return attachment{tex: tex, view: view}, nil
}

func (a *attachment) destroy(device hal.Device) {
	if a.view != nil {
		device.DestroyTextureView(a.view)
		a.view = nil
	}
	if a.tex != nil {
		device.DestroyTexture(a.tex)
		a.tex = nil
	}
}

// targetBase holds what every pass target shares: its device, the logical
// extent requested by the caller and the sample count of its attachments.
type targetBase struct {
	device      hal.Device
	size        Extent2D
	sampleCount uint32
}

// Size returns the requested extent. It may contain zero dimensions even
// though the attachments were allocated at least 1x1.
func (b *targetBase) Size() Extent2D { return b.size }

// AllocatedSize returns the extent the attachments were allocated with.
func (b *targetBase) AllocatedSize() Extent2D { return b.size.Clamped() }

// SampleCount returns the sample count shared by all attachments.
func (b *targetBase) SampleCount() uint32 { return b.sampleCount }

// attachmentUsage is the usage of every render target attachment that a
// later pass samples.
const attachmentUsage = gputypes.TextureUsageRenderAttachment | gputypes.TextureUsageTextureBinding

// InitialPassTarget is the G-buffer written by the geometry pass.
type InitialPassTarget struct {
	targetBase
	diffuse attachment
	normal  attachment
	light   attachment
	depth   attachment
}

// NewInitialPassTarget allocates the diffuse, normal, light and depth
// attachments at the given extent and sample count.
func NewInitialPassTarget(device hal.Device, size Extent2D, sampleCount uint32) (*InitialPassTarget, error) {
	t := &InitialPassTarget{targetBase: targetBase{device: device, size: size, sampleCount: sampleCount}}
	alloc := size.Clamped()

	specs := []struct {
		dst    *attachment
		label  string
		format gputypes.TextureFormat
	}{
		{&t.diffuse, "initial_diffuse", DiffuseAttachmentFormat},
		{&t.normal, "initial_normal", NormalAttachmentFormat},
		{&t.light, "initial_light", LightAttachmentFormat},
		{&t.depth, "initial_depth", DepthAttachmentFormat},
	}
	for _, s := range specs {
		a, err := createAttachment(device, s.label, alloc, sampleCount, s.format, attachmentUsage)
		if err != nil {
			t.Destroy()
			return nil, err
		}
		*s.dst = a
	}

	deferred.Logger().Debug("gfx: initial pass target created",
		"width", size.Width, "height", size.Height, "samples", sampleCount)
	return t, nil
}

// DiffuseView returns the albedo attachment view.
func (t *InitialPassTarget) DiffuseView() hal.TextureView { return t.diffuse.view }

// NormalView returns the normal attachment view.
func (t *InitialPassTarget) NormalView() hal.TextureView { return t.normal.view }

// LightView returns the light accumulation attachment view.
func (t *InitialPassTarget) LightView() hal.TextureView { return t.light.view }

// DepthView returns the depth attachment view.
func (t *InitialPassTarget) DepthView() hal.TextureView { return t.depth.view }

// RenderPassDescriptor clears every G-buffer color to transparent black and
// depth to 1.
func (t *InitialPassTarget) RenderPassDescriptor() *hal.RenderPassDescriptor {
	clearColor := gputypes.Color{R: 0, G: 0, B: 0, A: 0}
	colors := make([]hal.RenderPassColorAttachment, 0, 3)
	for _, v := range []hal.TextureView{t.diffuse.view, t.normal.view, t.light.view} {
		colors = append(colors, hal.RenderPassColorAttachment{
			View:       v,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: clearColor,
		})
	}
	return &hal.RenderPassDescriptor{
		Label:            "initial_pass",
		ColorAttachments: colors,
		DepthStencilAttachment: &hal.RenderPassDepthStencilAttachment{
			View:            t.depth.view,
			DepthLoadOp:     gputypes.LoadOpClear,
			DepthStoreOp:    gputypes.StoreOpStore,
			DepthClearValue: 1.0,
		},
	}
}

// Destroy releases all attachments.
func (t *InitialPassTarget) Destroy() {
	if t == nil || t.device == nil {
		return
	}
	t.depth.destroy(t.device)
	t.light.destroy(t.device)
	t.normal.destroy(t.device)
	t.diffuse.destroy(t.device)
}

// DeferredPassTarget is the lighting target. With more than one sample it
// carries a single-sample resolve attachment that later passes sample.
type DeferredPassTarget struct {
	targetBase
	color   attachment
	resolve attachment
}

// NewDeferredPassTarget allocates the lighting color attachment.
func NewDeferredPassTarget(device hal.Device, size Extent2D, sampleCount uint32) (*DeferredPassTarget, error) {
	t := &DeferredPassTarget{targetBase: targetBase{device: device, size: size, sampleCount: sampleCount}}
	alloc := size.Clamped()

	usage := attachmentUsage
	if sampleCount > 1 {
		usage = gputypes.TextureUsageRenderAttachment
	}
	color, err := createAttachment(device, "deferred_color", alloc, sampleCount, DeferredAttachmentFormat, usage)
	if err != nil {
		return nil, err
	}
	t.color = color

	if sampleCount > 1 {
		resolve, err := createAttachment(device, "deferred_resolve", alloc, 1, DeferredAttachmentFormat, attachmentUsage)
		if err != nil {
			t.Destroy()
			return nil, err
		}
		t.resolve = resolve
	}

	deferred.Logger().Debug("gfx: deferred pass target created",
		"width", size.Width, "height", size.Height, "samples", sampleCount)
	return t, nil
}

// Format returns the lighting color format.
func (t *DeferredPassTarget) Format() gputypes.TextureFormat { return DeferredAttachmentFormat }

// ColorView returns the (possibly multisampled) color attachment view.
func (t *DeferredPassTarget) ColorView() hal.TextureView { return t.color.view }

// ResolveView returns the single-sample view of the lit image.
func (t *DeferredPassTarget) ResolveView() hal.TextureView {
	if t.resolve.view != nil {
		return t.resolve.view
	}
	return t.color.view
}

// RenderPassDescriptor clears the lit color to opaque black and resolves it
// when multisampled.
func (t *DeferredPassTarget) RenderPassDescriptor() *hal.RenderPassDescriptor {
	return &hal.RenderPassDescriptor{
		Label: "deferred_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:          t.color.view,
			ResolveTarget: t.resolve.view,
			LoadOp:        gputypes.LoadOpClear,
			StoreOp:       gputypes.StoreOpStore,
			ClearValue:    gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	}
}

// Destroy releases all attachments.
func (t *DeferredPassTarget) Destroy() {
	if t == nil || t.device == nil {
		return
	}
	t.resolve.destroy(t.device)
	t.color.destroy(t.device)
}

// FinalPassTarget is the single-sample composite of the lit world and the
// UI. It is read back by screenshots and sampled by the blit pass.
type FinalPassTarget struct {
	targetBase
	color attachment
}

// NewFinalPassTarget allocates the final color attachment at sample count 1.
func NewFinalPassTarget(device hal.Device, size Extent2D) (*FinalPassTarget, error) {
	t := &FinalPassTarget{targetBase: targetBase{device: device, size: size, sampleCount: 1}}
	color, err := createAttachment(device, "final_color", size.Clamped(), 1, FinalAttachmentFormat,
		attachmentUsage|gputypes.TextureUsageCopySrc)
	if err != nil {
		return nil, err
	}
	t.color = color
	return t, nil
}

// Format returns the final color format.
func (t *FinalPassTarget) Format() gputypes.TextureFormat { return FinalAttachmentFormat }

// Texture returns the final color texture.
func (t *FinalPassTarget) Texture() hal.Texture { return t.color.tex }

// ColorView returns the final color attachment view.
func (t *FinalPassTarget) ColorView() hal.TextureView { return t.color.view }

// ResolveView returns the view sampled by the blit pass.
func (t *FinalPassTarget) ResolveView() hal.TextureView { return t.color.view }

// RenderPassDescriptor clears the final color to opaque black.
func (t *FinalPassTarget) RenderPassDescriptor() *hal.RenderPassDescriptor {
	return &hal.RenderPassDescriptor{
		Label: "final_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       t.color.view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	}
}

// Destroy releases the color attachment.
func (t *FinalPassTarget) Destroy() {
	if t == nil || t.device == nil {
		return
	}
	t.color.destroy(t.device)
}

// SurfacePassDescriptor returns the descriptor for a pass that renders into
// a presentation surface view.
func SurfacePassDescriptor(view hal.TextureView) *hal.RenderPassDescriptor {
	return &hal.RenderPassDescriptor{
		Label: "blit_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	}
}
