// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// World bind group slots. Slot 2 holds per-texture bindings owned by each
// world pipeline.
const (
	PerFrameGroup   = 0
	PerEntityGroup  = 1
	PerTextureGroup = 2
)

// WorldLayouts are the bind group layouts shared by every world pipeline.
type WorldLayouts struct {
	device    hal.Device
	PerFrame  hal.BindGroupLayout
	PerEntity hal.BindGroupLayout
}

// NewWorldLayouts creates the per-frame and per-entity layouts.
//
//	per-frame:  binding 0 FrameUniforms
//	per-entity: binding 0 EntityUniforms (dynamic offset)
//	            binding 1 diffuse sampler
//	            binding 2 lightmap sampler
func NewWorldLayouts(device hal.Device) (*WorldLayouts, error) {
	l := &WorldLayouts{device: device}
	perFrame, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "world_per_frame_layout",
		Entries: []gputypes.BindGroupLayoutEntry{uniformEntry(0, FrameUniformsSize)},
	})
	if err != nil {
		return nil, fmt.Errorf("create per-frame layout: %w", err)
	}
	l.PerFrame = perFrame

	entity := uniformEntry(0, EntityUniformsSize)
	entity.Buffer.HasDynamicOffset = true
	perEntity, err := device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "world_per_entity_layout",
		Entries: []gputypes.BindGroupLayoutEntry{entity, samplerEntry(1), samplerEntry(2)},
	})
	if err != nil {
		l.Destroy()
		return nil, fmt.Errorf("create per-entity layout: %w", err)
	}
	l.PerEntity = perEntity
	return l, nil
}

// Destroy releases both layouts.
func (l *WorldLayouts) Destroy() {
	if l == nil || l.device == nil {
		return
	}
	if l.PerEntity != nil {
		l.device.DestroyBindGroupLayout(l.PerEntity)
		l.PerEntity = nil
	}
	if l.PerFrame != nil {
		l.device.DestroyBindGroupLayout(l.PerFrame)
		l.PerFrame = nil
	}
}

// gbufferTargets are the color targets of every world pipeline.
func gbufferTargets() []gputypes.ColorTargetState {
	return []gputypes.ColorTargetState{
		{Format: DiffuseAttachmentFormat, WriteMask: gputypes.ColorWriteMaskAll},
		{Format: NormalAttachmentFormat, WriteMask: gputypes.ColorWriteMaskAll},
		{Format: LightAttachmentFormat, WriteMask: gputypes.ColorWriteMaskAll},
	}
}

func worldDepthStencil() *hal.DepthStencilState {
	keep := hal.StencilFaceState{
		Compare:     gputypes.CompareFunctionAlways,
		FailOp:      hal.StencilOperationKeep,
		DepthFailOp: hal.StencilOperationKeep,
		PassOp:      hal.StencilOperationKeep,
	}
	return &hal.DepthStencilState{
		Format:            DepthAttachmentFormat,
		DepthWriteEnabled: true,
		DepthCompare:      gputypes.CompareFunctionLess,
		StencilFront:      keep,
		StencilBack:       keep,
	}
}

// worldTextures returns a layout with n float textures at bindings 0..n-1.
func worldTextures(n int) func(uint32) []hal.BindGroupLayoutDescriptor {
	return func(uint32) []hal.BindGroupLayoutDescriptor {
		entries := make([]gputypes.BindGroupLayoutEntry, n)
		for i := range entries {
			entries[i] = textureEntry(uint32(i), gputypes.TextureSampleTypeFloat, false) //nolint:gosec // n is tiny
		}
		return []hal.BindGroupLayoutDescriptor{{Entries: entries}}
	}
}

func worldSpec(label, body string, textures int, buffers []gputypes.VertexBufferLayout, layouts *WorldLayouts) pipelineSpec {
	return pipelineSpec{
		label:         label,
		source:        constSource(worldShader(body)),
		shared:        []hal.BindGroupLayout{layouts.PerFrame, layouts.PerEntity},
		layouts:       worldTextures(textures),
		vertexBuffers: buffers,
		targets:       gbufferTargets,
		depthStencil:  worldDepthStencil(),
	}
}

// BrushVertexSize is the stride of a brush vertex: position, diffuse and
// lightmap texcoords, normal.
const BrushVertexSize = 40

// BrushPipeline draws BSP brush surfaces into the G-buffer. Its texture
// group binds the diffuse, fullbright and lightmap textures.
type BrushPipeline struct{ renderPipeline }

// NewBrushPipeline builds the brush pipeline at sampleCount.
func NewBrushPipeline(device hal.Device, layouts *WorldLayouts, sampleCount uint32) (*BrushPipeline, error) {
	rp, err := newRenderPipeline(device, worldSpec("brush", brushBody, 3, []gputypes.VertexBufferLayout{{
		ArrayStride: BrushVertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 20, ShaderLocation: 2},
			{Format: gputypes.VertexFormatFloat32x3, Offset: 28, ShaderLocation: 3},
		},
	}}, layouts), sampleCount)
	if err != nil {
		return nil, err
	}
	return &BrushPipeline{rp}, nil
}

// AliasVertexSize is the stride of an alias model vertex.
const AliasVertexSize = 32

// AliasPipeline draws animated alias models into the G-buffer.
type AliasPipeline struct{ renderPipeline }

// NewAliasPipeline builds the alias model pipeline at sampleCount.
func NewAliasPipeline(device hal.Device, layouts *WorldLayouts, sampleCount uint32) (*AliasPipeline, error) {
	rp, err := newRenderPipeline(device, worldSpec("alias", aliasBody, 2, []gputypes.VertexBufferLayout{{
		ArrayStride: AliasVertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 24, ShaderLocation: 2},
		},
	}}, layouts), sampleCount)
	if err != nil {
		return nil, err
	}
	return &AliasPipeline{rp}, nil
}

// SpriteVertexSize is the stride of a sprite vertex.
const SpriteVertexSize = 20

// SpritePipeline draws camera-facing sprites into the G-buffer.
type SpritePipeline struct{ renderPipeline }

// NewSpritePipeline builds the sprite pipeline at sampleCount.
func NewSpritePipeline(device hal.Device, layouts *WorldLayouts, sampleCount uint32) (*SpritePipeline, error) {
	rp, err := newRenderPipeline(device, worldSpec("sprite", spriteBody, 1, []gputypes.VertexBufferLayout{{
		ArrayStride: SpriteVertexSize,
		StepMode:    gputypes.VertexStepModeVertex,
		Attributes: []gputypes.VertexAttribute{
			{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
			{Format: gputypes.VertexFormatFloat32x2, Offset: 12, ShaderLocation: 1},
		},
	}}, layouts), sampleCount)
	if err != nil {
		return nil, err
	}
	return &SpritePipeline{rp}, nil
}

// ParticleInstanceSize is the stride of one particle instance: center and
// size, then the palette index of its color.
const ParticleInstanceSize = 20

// ParticlePipeline draws palette-colored particles into the G-buffer. It
// owns a 256x1 texture holding the palette.
type ParticlePipeline struct {
	renderPipeline
	palette   *Texture
	bindGroup hal.BindGroup
}

// NewParticlePipeline builds the particle pipeline and uploads paletteRGBA,
// 256 RGBA entries.
func NewParticlePipeline(device hal.Device, queue hal.Queue, layouts *WorldLayouts, sampleCount uint32, paletteRGBA []byte) (*ParticlePipeline, error) {
	if len(paletteRGBA) != 256*4 {
		return nil, fmt.Errorf("gfx: particle palette has %d bytes, want %d", len(paletteRGBA), 256*4)
	}
	rp, err := newRenderPipeline(device, worldSpec("particle", particleBody, 1, []gputypes.VertexBufferLayout{
		{
			ArrayStride: 8,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
			},
		},
		{
			ArrayStride: ParticleInstanceSize,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: 1},
				{Format: gputypes.VertexFormatFloat32, Offset: 16, ShaderLocation: 2},
			},
		},
	}, layouts), sampleCount)
	if err != nil {
		return nil, err
	}
	p := &ParticlePipeline{renderPipeline: rp}

	p.palette, err = CreateTexture(device, queue, "particle_palette", 256, 1, DiffuseData(paletteRGBA))
	if err != nil {
		p.Destroy()
		return nil, err
	}
	if err := p.bindPalette(); err != nil {
		p.Destroy()
		return nil, err
	}
	return p, nil
}

func (p *ParticlePipeline) bindPalette() error {
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	bg, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "particle_palette_bind",
		Layout:  p.Layout(0),
		Entries: []gputypes.BindGroupEntry{TextureEntry(0, p.palette.View)},
	})
	if err != nil {
		return fmt.Errorf("create particle palette bind group: %w", err)
	}
	p.bindGroup = bg
	return nil
}

// Rebuild rebuilds the pipeline and rebinds the palette when the texture
// layout was recreated.
func (p *ParticlePipeline) Rebuild(sampleCount uint32) error {
	layout := p.Layout(0)
	if err := p.renderPipeline.Rebuild(sampleCount); err != nil {
		return err
	}
	if p.palette != nil && p.Layout(0) != layout {
		return p.bindPalette()
	}
	return nil
}

// PaletteBindGroup returns the per-texture bind group holding the palette.
func (p *ParticlePipeline) PaletteBindGroup() hal.BindGroup { return p.bindGroup }

// Destroy releases the palette and the pipeline.
func (p *ParticlePipeline) Destroy() {
	if p == nil || p.device == nil {
		return
	}
	if p.bindGroup != nil {
		p.device.DestroyBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	p.palette.Destroy(p.device)
	p.palette = nil
	p.renderPipeline.Destroy()
}
