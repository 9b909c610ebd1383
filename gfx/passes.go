// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/deferred"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// MaxLights is the number of point lights the deferred pass evaluates per
// frame.
const MaxLights = 32

// DeferredUniformsSize is the encoded size of the deferred uniform block:
// inverse projection, light count with padding, then MaxLights lights.
const DeferredUniformsSize = 64 + 16 + 16*MaxLights

// PostProcessUniformsSize is the encoded size of the color shift block.
const PostProcessUniformsSize = 16

// DeferredPipeline evaluates point lights over the G-buffer. Multisampled
// G-buffers use a separate shader variant reading multisampled textures.
//
//	binding 0: DeferredUniforms
//	binding 1: diffuse, 2: normal, 3: light, 4: depth
type DeferredPipeline struct{ renderPipeline }

// NewDeferredPipeline builds the lighting pipeline at sampleCount.
func NewDeferredPipeline(device hal.Device, sampleCount uint32) (*DeferredPipeline, error) {
	rp, err := newRenderPipeline(device, pipelineSpec{
		label:  "deferred",
		source: deferredShader,
		variant: func(s uint32) int {
			if s > 1 {
				return 1
			}
			return 0
		},
		layouts: func(s uint32) []hal.BindGroupLayoutDescriptor {
			ms := s > 1
			return []hal.BindGroupLayoutDescriptor{{Entries: []gputypes.BindGroupLayoutEntry{
				uniformEntry(0, DeferredUniformsSize),
				textureEntry(1, gputypes.TextureSampleTypeUnfilterableFloat, ms),
				textureEntry(2, gputypes.TextureSampleTypeUnfilterableFloat, ms),
				textureEntry(3, gputypes.TextureSampleTypeUnfilterableFloat, ms),
				textureEntry(4, gputypes.TextureSampleTypeDepth, ms),
			}}}
		},
		targets: fullscreenTargets(DeferredAttachmentFormat),
	}, sampleCount)
	if err != nil {
		return nil, err
	}
	return &DeferredPipeline{rp}, nil
}

// PostProcessPipeline composites the lit image into the final target and
// applies the color shift.
//
//	binding 0: color shift, 1: lit color, 2: sampler
type PostProcessPipeline struct{ renderPipeline }

// NewPostProcessPipeline builds the post-process pipeline. It always renders
// single-sampled into the final target.
func NewPostProcessPipeline(device hal.Device) (*PostProcessPipeline, error) {
	rp, err := newRenderPipeline(device, pipelineSpec{
		label:  "postprocess",
		source: constSource(fullscreenShader(postprocessBody)),
		layouts: func(uint32) []hal.BindGroupLayoutDescriptor {
			return []hal.BindGroupLayoutDescriptor{{Entries: []gputypes.BindGroupLayoutEntry{
				uniformEntry(0, PostProcessUniformsSize),
				textureEntry(1, gputypes.TextureSampleTypeFloat, false),
				samplerEntry(2),
			}}}
		},
		targets:      fullscreenTargets(FinalAttachmentFormat),
		fixedSamples: 1,
	}, 1)
	if err != nil {
		return nil, err
	}
	return &PostProcessPipeline{rp}, nil
}

// uiLayouts is the layout shared by the quad and glyph pipelines.
//
//	binding 0: texture, 1: sampler, 2: per-instance storage
func uiLayouts(uint32) []hal.BindGroupLayoutDescriptor {
	return []hal.BindGroupLayoutDescriptor{{Entries: []gputypes.BindGroupLayoutEntry{
		textureEntry(0, gputypes.TextureSampleTypeFloat, false),
		samplerEntry(1),
		storageEntry(2),
	}}}
}

// QuadInstanceSize is the stride of one quad instance: transform and UV rect.
const QuadInstanceSize = 80

// QuadPipeline draws textured UI quads, one instance per quad.
type QuadPipeline struct{ renderPipeline }

// NewQuadPipeline builds the UI quad pipeline for the final target.
func NewQuadPipeline(device hal.Device) (*QuadPipeline, error) {
	rp, err := newRenderPipeline(device, pipelineSpec{
		label:        "quad",
		source:       constSource(quadShaderSource),
		layouts:      uiLayouts,
		targets:      blendedTargets(FinalAttachmentFormat),
		fixedSamples: 1,
	}, 1)
	if err != nil {
		return nil, err
	}
	return &QuadPipeline{rp}, nil
}

// GlyphInstanceSize is the stride of one glyph instance.
const GlyphInstanceSize = 32

// GlyphPipeline draws conchars glyphs, one instance per glyph.
type GlyphPipeline struct{ renderPipeline }

// NewGlyphPipeline builds the UI glyph pipeline for the final target.
func NewGlyphPipeline(device hal.Device) (*GlyphPipeline, error) {
	rp, err := newRenderPipeline(device, pipelineSpec{
		label:        "glyph",
		source:       constSource(glyphShaderSource),
		layouts:      uiLayouts,
		targets:      blendedTargets(FinalAttachmentFormat),
		fixedSamples: 1,
	}, 1)
	if err != nil {
		return nil, err
	}
	return &GlyphPipeline{rp}, nil
}

// BlitPipeline copies the final target onto the presentation surface. Its
// color format follows the surface.
type BlitPipeline struct {
	renderPipeline
	format    gputypes.TextureFormat
	bindGroup hal.BindGroup
}

// NewBlitPipeline builds the blit pipeline for a surface of format.
func NewBlitPipeline(device hal.Device, format gputypes.TextureFormat) (*BlitPipeline, error) {
	p := &BlitPipeline{format: format}
	rp, err := newRenderPipeline(device, pipelineSpec{
		label:  "blit",
		source: constSource(fullscreenShader(blitBody)),
		layouts: func(uint32) []hal.BindGroupLayoutDescriptor {
			return []hal.BindGroupLayoutDescriptor{{Entries: []gputypes.BindGroupLayoutEntry{
				textureEntry(0, gputypes.TextureSampleTypeFloat, false),
				samplerEntry(1),
			}}}
		},
		targets: func() []gputypes.ColorTargetState {
			return fullscreenTargets(p.format)()
		},
		fixedSamples: 1,
	}, 1)
	if err != nil {
		return nil, err
	}
	p.renderPipeline = rp
	return p, nil
}

// Format returns the presentation format the pipeline targets.
func (p *BlitPipeline) Format() gputypes.TextureFormat { return p.format }

// SetFormat records a new presentation format. The pipeline keeps drawing
// with the old format until Rebuild is called.
func (p *BlitPipeline) SetFormat(format gputypes.TextureFormat) {
	deferred.Logger().Info("gfx: presentation format changed", "from", p.format, "to", format)
	p.format = format
}

// SetSource binds the view the blit samples from.
func (p *BlitPipeline) SetSource(view hal.TextureView, sampler hal.Sampler) error {
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "blit_bind",
		Layout:  p.Layout(0),
		Entries: []gputypes.BindGroupEntry{TextureEntry(0, view), SamplerEntry(1, sampler)},
	})
	if err != nil {
		return fmt.Errorf("create blit bind group: %w", err)
	}
	p.bindGroup = bg
	return nil
}

// Blit records the single full-screen draw into pass.
func (p *BlitPipeline) Blit(pass PassEncoder) {
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
}

// Destroy releases the bind group and the pipeline.
func (p *BlitPipeline) Destroy() {
	if p == nil || p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	p.renderPipeline.Destroy()
}
