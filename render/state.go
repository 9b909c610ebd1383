// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"fmt"
	"sort"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/asset"
	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/deferred/render/ui"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/google/uuid"
)

// GraphicsState owns every GPU object the frame draws with: the three pass
// targets, samplers, uniform buffers, world bind groups, all pipelines and
// the static palette and UI archive.
//
// Consumers must not cache objects obtained from a GraphicsState across a
// call to Update, SetFormat, RecreatePipelines or a reconstruction. Compare
// Generation to detect that a refetch is needed.
//
// GraphicsState is not safe for concurrent use. Rebuilds are synchronous
// and no frame may be encoded while one is in progress.
type GraphicsState struct {
	device hal.Device
	queue  hal.Queue
	opts   options

	generation  uuid.UUID
	extent      gfx.Extent2D
	sampleCount uint32
	// stale is set while pipelines do not match sampleCount after a failed
	// rebuild.
	stale bool

	initial *gfx.InitialPassTarget
	lit     *gfx.DeferredPassTarget
	final   *gfx.FinalPassTarget

	frameUniforms  hal.Buffer
	entityUniforms *gfx.DynamicUniformBuffer
	samplers       *gfx.Samplers
	layouts        *gfx.WorldLayouts
	perFrameBind   hal.BindGroup
	perEntityBind  hal.BindGroup
	perEntityGen   uint64

	brush    *gfx.BrushPipeline
	alias    *gfx.AliasPipeline
	sprite   *gfx.SpritePipeline
	particle *gfx.ParticlePipeline
	lighting *gfx.DeferredPipeline
	post     *gfx.PostProcessPipeline
	quad     *gfx.QuadPipeline
	glyph    *gfx.GlyphPipeline
	blit     *gfx.BlitPipeline

	defaultLightmap *gfx.Texture

	palette  *asset.Palette
	archive  *asset.Archive
	atlas    *gfx.Atlas
	atlasTex *gfx.Texture
	conchars *gfx.Texture
}

// New builds a GraphicsState rendering at extent with sampleCount samples
// per pixel. The palette and UI archive are read from assets.
//
// Errors are returned as *StateError wrapping ErrSampleCount, ErrAsset or
// ErrAllocation. Objects created before a failure are released.
func New(device hal.Device, queue hal.Queue, extent gfx.Extent2D, sampleCount uint32,
	assets asset.Source, opts ...Option) (*GraphicsState, error) {
	if !gfx.ValidSampleCount(sampleCount) {
		return nil, &StateError{Op: "new", Err: fmt.Errorf("%w: %d", ErrSampleCount, sampleCount)}
	}

	s := &GraphicsState{
		device:      device,
		queue:       queue,
		opts:        applyOptions(opts),
		generation:  uuid.New(),
		extent:      extent,
		sampleCount: sampleCount,
	}

	if err := s.loadAssets(assets); err != nil {
		return nil, &StateError{Op: "load assets", Err: fmt.Errorf("%w: %w", ErrAsset, err)}
	}
	if err := s.allocate(); err != nil {
		s.Destroy()
		return nil, &StateError{Op: "allocate", Err: err}
	}

	deferred.Logger().Info("render: graphics state created",
		"width", extent.Width, "height", extent.Height, "samples", sampleCount,
		"format", s.blit.Format(), "generation", s.generation)
	return s, nil
}

func (s *GraphicsState) loadAssets(src asset.Source) error {
	if src == nil {
		return errors.New("no asset source")
	}
	pal, err := asset.LoadPalette(src, asset.PaletteName)
	if err != nil {
		return err
	}
	archive, err := asset.LoadArchive(src, asset.ArchiveName)
	if err != nil {
		return err
	}
	if _, err := archive.Conchars(); err != nil {
		return err
	}
	s.palette = pal
	s.archive = archive
	return nil
}

// allocation tags a device failure with ErrAllocation.
func allocation(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrAllocation, err)
}

func (s *GraphicsState) allocate() error {
	var err error
	if err = s.createTargets(true, true); err != nil {
		return err
	}

	if s.frameUniforms, err = gfx.CreateUniformBuffer(s.device, "frame_uniforms", gfx.FrameUniformsSize); err != nil {
		return allocation(err)
	}
	if s.entityUniforms, err = gfx.NewDynamicUniformBuffer(s.device, "entity_uniforms", gfx.EntityUniformsSize); err != nil {
		return allocation(err)
	}
	if s.samplers, err = gfx.NewSamplers(s.device); err != nil {
		return allocation(err)
	}
	if s.layouts, err = gfx.NewWorldLayouts(s.device); err != nil {
		return allocation(err)
	}
	if err = s.bindWorld(); err != nil {
		return err
	}
	if err = s.createPipelines(); err != nil {
		return err
	}

	if s.defaultLightmap, err = gfx.CreateTexture(s.device, s.queue, "default_lightmap", 1, 1,
		gfx.LightmapData([]byte{0xFF})); err != nil {
		return allocation(err)
	}
	if err = s.createUITextures(); err != nil {
		return err
	}
	return allocation(s.blit.SetSource(s.final.ResolveView(), s.samplers.Lightmap))
}

func (s *GraphicsState) bindWorld() error {
	bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   "world_per_frame_bind",
		Layout:  s.layouts.PerFrame,
		Entries: []gputypes.BindGroupEntry{gfx.BufferEntry(0, s.frameUniforms, 0, gfx.FrameUniformsSize)},
	})
	if err != nil {
		return allocation(fmt.Errorf("create per-frame bind group: %w", err))
	}
	s.perFrameBind = bg
	return s.bindEntities()
}

// bindEntities recreates the per-entity bind group against the current
// allocator buffer.
func (s *GraphicsState) bindEntities() error {
	if s.perEntityBind != nil {
		s.device.DestroyBindGroup(s.perEntityBind)
		s.perEntityBind = nil
	}
	bg, err := s.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "world_per_entity_bind",
		Layout: s.layouts.PerEntity,
		Entries: []gputypes.BindGroupEntry{
			gfx.BufferEntry(0, s.entityUniforms.Buffer(), 0, gfx.EntityUniformsSize),
			gfx.SamplerEntry(1, s.samplers.Diffuse),
			gfx.SamplerEntry(2, s.samplers.Lightmap),
		},
	})
	if err != nil {
		return allocation(fmt.Errorf("create per-entity bind group: %w", err))
	}
	s.perEntityBind = bg
	s.perEntityGen = s.entityUniforms.Generation()
	return nil
}

func (s *GraphicsState) createPipelines() error {
	var err error
	if s.brush, err = gfx.NewBrushPipeline(s.device, s.layouts, s.sampleCount); err != nil {
		return allocation(err)
	}
	if s.alias, err = gfx.NewAliasPipeline(s.device, s.layouts, s.sampleCount); err != nil {
		return allocation(err)
	}
	if s.sprite, err = gfx.NewSpritePipeline(s.device, s.layouts, s.sampleCount); err != nil {
		return allocation(err)
	}
	if s.particle, err = gfx.NewParticlePipeline(s.device, s.queue, s.layouts, s.sampleCount, s.palette.Table()); err != nil {
		return allocation(err)
	}
	if s.lighting, err = gfx.NewDeferredPipeline(s.device, s.sampleCount); err != nil {
		return allocation(err)
	}
	if s.post, err = gfx.NewPostProcessPipeline(s.device); err != nil {
		return allocation(err)
	}
	if s.quad, err = gfx.NewQuadPipeline(s.device); err != nil {
		return allocation(err)
	}
	if s.glyph, err = gfx.NewGlyphPipeline(s.device); err != nil {
		return allocation(err)
	}
	if s.blit, err = gfx.NewBlitPipeline(s.device, s.opts.presentationFormat); err != nil {
		return allocation(err)
	}
	return nil
}

// createUITextures packs every archive picture into the UI atlas and
// uploads the conchars sheet. Glyph index 0 of conchars is transparent.
func (s *GraphicsState) createUITextures() error {
	pics := s.archive.Pics()
	names := make([]string, 0, len(pics))
	for name := range pics {
		names = append(names, name)
	}
	sort.Strings(names)

	s.atlas = gfx.NewAtlas(gfx.DefaultAtlasSize)
	for _, name := range names {
		pic := pics[name]
		rgba, _ := s.palette.Translate(pic.Indices)
		if _, err := s.atlas.Insert(name, pic.Width, pic.Height, rgba); err != nil {
			if errors.Is(err, gfx.ErrAtlasFull) {
				deferred.Logger().Warn("render: UI pic skipped", "name", name, "err", err)
				continue
			}
			return fmt.Errorf("%w: %w", ErrAsset, err)
		}
	}

	var err error
	if s.atlasTex, err = s.atlas.Upload(s.device, s.queue, "ui_atlas"); err != nil {
		return allocation(err)
	}

	conchars, err := s.archive.Conchars()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAsset, err)
	}
	indices := make([]byte, len(conchars.Indices))
	for i, idx := range conchars.Indices {
		if idx == 0 {
			idx = asset.Transparent
		}
		indices[i] = idx
	}
	rgba, _ := s.palette.Translate(indices)
	if s.conchars, err = gfx.CreateTexture(s.device, s.queue, "conchars", conchars.Width, conchars.Height,
		gfx.DiffuseData(rgba)); err != nil {
		return allocation(err)
	}
	return nil
}

// createTargets allocates the requested targets first and swaps them in
// only when all succeeded, so a failed Update leaves the old ones usable.
func (s *GraphicsState) createTargets(world, final bool) error {
	var (
		initial *gfx.InitialPassTarget
		lit     *gfx.DeferredPassTarget
		fin     *gfx.FinalPassTarget
		err     error
	)
	release := func() {
		initial.Destroy()
		lit.Destroy()
		fin.Destroy()
	}

	if world {
		if initial, err = gfx.NewInitialPassTarget(s.device, s.extent, s.sampleCount); err != nil {
			return allocation(err)
		}
		if lit, err = gfx.NewDeferredPassTarget(s.device, s.extent, s.sampleCount); err != nil {
			release()
			return allocation(err)
		}
	}
	if final {
		if fin, err = gfx.NewFinalPassTarget(s.device, s.extent); err != nil {
			release()
			return allocation(err)
		}
	}

	if world {
		s.initial.Destroy()
		s.lit.Destroy()
		s.initial, s.lit = initial, lit
	}
	if final {
		s.final.Destroy()
		s.final = fin
	}
	return nil
}

// Update brings the state to extent and sampleCount. A sample count change
// rebuilds every pipeline in place. The G-buffer and lighting targets are
// replaced when either parameter changed, the final target only when the
// extent changed. Calling Update with the current parameters does nothing
// unless an earlier pipeline rebuild failed, in which case it is retried.
//
// The generation changes whenever targets or pipelines were replaced, even
// when Update then fails. Renderers bound to the old targets must be
// rebuilt afterwards, see RebuildRenderers.
func (s *GraphicsState) Update(extent gfx.Extent2D, sampleCount uint32) error {
	if !gfx.ValidSampleCount(sampleCount) {
		return &StateError{Op: "update", Err: fmt.Errorf("%w: %d", ErrSampleCount, sampleCount)}
	}
	resized := extent != s.extent
	resampled := sampleCount != s.sampleCount
	if !resized && !resampled && !s.stale {
		return nil
	}

	if resized || resampled {
		prevExtent, prevSamples := s.extent, s.sampleCount
		s.extent, s.sampleCount = extent, sampleCount
		if err := s.createTargets(true, resized); err != nil {
			s.extent, s.sampleCount = prevExtent, prevSamples
			return &StateError{Op: "update", Err: err}
		}
		s.generation = uuid.New()
	}
	if resized {
		if err := s.blit.SetSource(s.final.ResolveView(), s.samplers.Lightmap); err != nil {
			return &StateError{Op: "update", Err: allocation(err)}
		}
	}
	if resampled || s.stale {
		s.generation = uuid.New()
		if err := s.rebuildPipelines(); err != nil {
			return &StateError{Op: "update", Err: err}
		}
	}

	deferred.Logger().Info("render: graphics state updated",
		"width", extent.Width, "height", extent.Height, "samples", sampleCount,
		"resized", resized, "resampled", resampled, "generation", s.generation)
	return nil
}

// rebuildPipelines rebuilds every pipeline at the current sample count.
// The rebuilds are independent of each other.
func (s *GraphicsState) rebuildPipelines() error {
	rebuilds := []struct {
		name    string
		rebuild func(uint32) error
	}{
		{"brush", s.brush.Rebuild},
		{"alias", s.alias.Rebuild},
		{"sprite", s.sprite.Rebuild},
		{"particle", s.particle.Rebuild},
		{"deferred", s.lighting.Rebuild},
		{"postprocess", s.post.Rebuild},
		{"quad", s.quad.Rebuild},
		{"glyph", s.glyph.Rebuild},
		{"blit", s.blit.Rebuild},
	}
	for _, r := range rebuilds {
		if err := r.rebuild(s.sampleCount); err != nil {
			s.stale = true
			return allocation(fmt.Errorf("rebuild %s pipeline: %w", r.name, err))
		}
	}
	s.stale = false
	return nil
}

// SetFormat records the presentation surface format. It must be followed
// by RecreatePipelines before the next draw.
func (s *GraphicsState) SetFormat(format gputypes.TextureFormat) {
	s.blit.SetFormat(format)
}

// Format returns the presentation format the blit pipeline targets.
func (s *GraphicsState) Format() gputypes.TextureFormat { return s.blit.Format() }

// RecreatePipelines rebuilds every pipeline at sampleCount without touching
// the targets.
func (s *GraphicsState) RecreatePipelines(sampleCount uint32) error {
	if !gfx.ValidSampleCount(sampleCount) {
		return &StateError{Op: "recreate pipelines", Err: fmt.Errorf("%w: %d", ErrSampleCount, sampleCount)}
	}
	s.sampleCount = sampleCount
	s.generation = uuid.New()
	if err := s.rebuildPipelines(); err != nil {
		return &StateError{Op: "recreate pipelines", Err: err}
	}
	return nil
}

// BeginFrame resets the per-entity uniform allocator. Call it before the
// geometry pass writes entity blocks.
func (s *GraphicsState) BeginFrame() { s.entityUniforms.Reset() }

// WriteEntity stages the uniforms of entity slot.
func (s *GraphicsState) WriteEntity(slot uint32, u *gfx.EntityUniforms) error {
	return s.entityUniforms.Write(slot, u.Bytes())
}

// EntityOffset returns the dynamic offset of entity slot in the per-entity
// bind group.
func (s *GraphicsState) EntityOffset(slot uint32) uint32 { return s.entityUniforms.Offset(slot) }

// FlushEntityUniforms uploads the staged entity blocks and rebinds the
// per-entity group if the allocator grew this frame.
func (s *GraphicsState) FlushEntityUniforms() error {
	s.entityUniforms.Flush(s.queue)
	if s.entityUniforms.Generation() != s.perEntityGen {
		return s.bindEntities()
	}
	return nil
}

// WriteFrameUniforms uploads the per-frame block.
func (s *GraphicsState) WriteFrameUniforms(u *gfx.FrameUniforms) {
	s.queue.WriteBuffer(s.frameUniforms, 0, u.Bytes())
}

// ClearGeometry records an empty geometry pass: the entity allocator is
// reset and flushed, and the G-buffer is cleared to its initial values.
// Hosts without a world renderer call it so the lighting pass reads a
// defined G-buffer.
func (s *GraphicsState) ClearGeometry() error {
	s.BeginFrame()
	if err := s.FlushEntityUniforms(); err != nil {
		return err
	}
	encoder, err := s.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "geometry_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("geometry"); err != nil {
		return fmt.Errorf("begin encoding: %w", err)
	}
	encoder.BeginRenderPass(s.initial.RenderPassDescriptor()).End()
	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("end encoding: %w", err)
	}
	defer s.device.FreeCommandBuffer(cmdBuf)
	return submitAndWait(s.device, s.queue, cmdBuf)
}

// Device returns the device the state was built on.
func (s *GraphicsState) Device() hal.Device { return s.device }

// Queue returns the queue the state uploads through.
func (s *GraphicsState) Queue() hal.Queue { return s.queue }

// Generation changes on every rebuild.
func (s *GraphicsState) Generation() uuid.UUID { return s.generation }

// Extent returns the render resolution.
func (s *GraphicsState) Extent() gfx.Extent2D { return s.extent }

// SampleCount returns the working sample count.
func (s *GraphicsState) SampleCount() uint32 { return s.sampleCount }

// InitialTarget returns the G-buffer target.
func (s *GraphicsState) InitialTarget() *gfx.InitialPassTarget { return s.initial }

// DeferredTarget returns the lighting target.
func (s *GraphicsState) DeferredTarget() *gfx.DeferredPassTarget { return s.lit }

// FinalTarget returns the final target.
func (s *GraphicsState) FinalTarget() *gfx.FinalPassTarget { return s.final }

// Samplers returns the shared samplers.
func (s *GraphicsState) Samplers() *gfx.Samplers { return s.samplers }

// WorldLayouts returns the per-frame and per-entity layouts.
func (s *GraphicsState) WorldLayouts() *gfx.WorldLayouts { return s.layouts }

// PerFrameBindGroup returns the group bound at gfx.PerFrameGroup.
func (s *GraphicsState) PerFrameBindGroup() hal.BindGroup { return s.perFrameBind }

// PerEntityBindGroup returns the group bound at gfx.PerEntityGroup.
func (s *GraphicsState) PerEntityBindGroup() hal.BindGroup { return s.perEntityBind }

// EntityUniforms returns the per-entity allocator.
func (s *GraphicsState) EntityUniforms() *gfx.DynamicUniformBuffer { return s.entityUniforms }

func (s *GraphicsState) BrushPipeline() *gfx.BrushPipeline             { return s.brush }
func (s *GraphicsState) AliasPipeline() *gfx.AliasPipeline             { return s.alias }
func (s *GraphicsState) SpritePipeline() *gfx.SpritePipeline           { return s.sprite }
func (s *GraphicsState) ParticlePipeline() *gfx.ParticlePipeline       { return s.particle }
func (s *GraphicsState) DeferredPipeline() *gfx.DeferredPipeline       { return s.lighting }
func (s *GraphicsState) PostProcessPipeline() *gfx.PostProcessPipeline { return s.post }
func (s *GraphicsState) QuadPipeline() *gfx.QuadPipeline               { return s.quad }
func (s *GraphicsState) GlyphPipeline() *gfx.GlyphPipeline             { return s.glyph }
func (s *GraphicsState) BlitPipeline() *gfx.BlitPipeline               { return s.blit }

// DefaultLightmap is a 1x1 full-bright lightmap for surfaces without one.
func (s *GraphicsState) DefaultLightmap() *gfx.Texture { return s.defaultLightmap }

// Palette returns the game palette.
func (s *GraphicsState) Palette() *asset.Palette { return s.palette }

// Archive returns the UI picture archive.
func (s *GraphicsState) Archive() *asset.Archive { return s.archive }

// Atlas returns the CPU side of the UI atlas.
func (s *GraphicsState) Atlas() *gfx.Atlas { return s.atlas }

// AtlasTexture returns the uploaded UI atlas.
func (s *GraphicsState) AtlasTexture() *gfx.Texture { return s.atlasTex }

// ConcharsTexture returns the console character sheet.
func (s *GraphicsState) ConcharsTexture() *gfx.Texture { return s.conchars }

var _ ui.Resources = (*GraphicsState)(nil)

// Destroy releases every GPU object in reverse creation order. It is safe
// on a partially constructed state.
func (s *GraphicsState) Destroy() {
	if s == nil || s.device == nil {
		return
	}
	s.conchars.Destroy(s.device)
	s.atlasTex.Destroy(s.device)
	s.defaultLightmap.Destroy(s.device)
	s.conchars, s.atlasTex, s.defaultLightmap = nil, nil, nil

	if s.blit != nil {
		s.blit.Destroy()
	}
	if s.glyph != nil {
		s.glyph.Destroy()
	}
	if s.quad != nil {
		s.quad.Destroy()
	}
	if s.post != nil {
		s.post.Destroy()
	}
	if s.lighting != nil {
		s.lighting.Destroy()
	}
	if s.particle != nil {
		s.particle.Destroy()
	}
	if s.sprite != nil {
		s.sprite.Destroy()
	}
	if s.alias != nil {
		s.alias.Destroy()
	}
	if s.brush != nil {
		s.brush.Destroy()
	}
	s.blit, s.glyph, s.quad, s.post, s.lighting = nil, nil, nil, nil, nil
	s.particle, s.sprite, s.alias, s.brush = nil, nil, nil, nil

	for _, bg := range []*hal.BindGroup{&s.perEntityBind, &s.perFrameBind} {
		if *bg != nil {
			s.device.DestroyBindGroup(*bg)
			*bg = nil
		}
	}
	s.layouts.Destroy()
	s.samplers.Destroy()
	s.entityUniforms.Destroy()
	if s.frameUniforms != nil {
		s.device.DestroyBuffer(s.frameUniforms)
		s.frameUniforms = nil
	}
	s.layouts, s.samplers, s.entityUniforms = nil, nil, nil

	s.final.Destroy()
	s.lit.Destroy()
	s.initial.Destroy()
	s.final, s.lit, s.initial = nil, nil, nil
}
