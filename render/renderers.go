// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// MaxLights is the number of point lights evaluated per frame.
const MaxLights = gfx.MaxLights

// PointLight is a light in view space.
type PointLight struct {
	Origin [3]float32
	Radius float32
}

// DeferredUniforms is the per-frame block of the lighting pass.
type DeferredUniforms struct {
	InvProjection [16]float32
	LightCount    uint32
	Lights        [MaxLights]PointLight
}

// Bytes encodes u in little-endian std140 layout: the matrix, the count
// padded to 16 bytes, then one vec4 per light.
func (u *DeferredUniforms) Bytes() []byte {
	out := make([]byte, gfx.DeferredUniformsSize)
	for i, v := range u.InvProjection {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(out[64:], u.LightCount)
	for i, l := range u.Lights {
		off := 80 + i*16
		binary.LittleEndian.PutUint32(out[off:], math.Float32bits(l.Origin[0]))
		binary.LittleEndian.PutUint32(out[off+4:], math.Float32bits(l.Origin[1]))
		binary.LittleEndian.PutUint32(out[off+8:], math.Float32bits(l.Origin[2]))
		binary.LittleEndian.PutUint32(out[off+12:], math.Float32bits(l.Radius))
	}
	return out
}

// GBuffer is the set of views the lighting pass reads.
type GBuffer struct {
	Diffuse, Normal, Light, Depth hal.TextureView
}

// GBufferOf returns the views of the state's initial target.
func GBufferOf(s *GraphicsState) GBuffer {
	t := s.InitialTarget()
	return GBuffer{Diffuse: t.DiffuseView(), Normal: t.NormalView(), Light: t.LightView(), Depth: t.DepthView()}
}

// DeferredRenderer draws the lighting pass over a G-buffer. It is bound to
// one set of views and must be rebuilt when they are replaced.
type DeferredRenderer struct {
	device    hal.Device
	uniforms  hal.Buffer
	bindGroup hal.BindGroup
}

// NewDeferredRenderer creates the uniform buffer and binds gbuf.
func NewDeferredRenderer(state *GraphicsState, gbuf GBuffer) (*DeferredRenderer, error) {
	buf, err := gfx.CreateUniformBuffer(state.Device(), "deferred_uniforms", gfx.DeferredUniformsSize)
	if err != nil {
		return nil, err
	}
	r := &DeferredRenderer{device: state.Device(), uniforms: buf}
	if err := r.Rebuild(state, gbuf); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// Rebuild binds a new set of G-buffer views.
func (r *DeferredRenderer) Rebuild(state *GraphicsState, gbuf GBuffer) error {
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "deferred_bind",
		Layout: state.DeferredPipeline().Layout(0),
		Entries: []gputypes.BindGroupEntry{
			gfx.BufferEntry(0, r.uniforms, 0, gfx.DeferredUniformsSize),
			gfx.TextureEntry(1, gbuf.Diffuse),
			gfx.TextureEntry(2, gbuf.Normal),
			gfx.TextureEntry(3, gbuf.Light),
			gfx.TextureEntry(4, gbuf.Depth),
		},
	})
	if err != nil {
		return fmt.Errorf("create deferred bind group: %w", err)
	}
	r.bindGroup = bg
	return nil
}

// RecordDraw uploads u and records the full-screen lighting draw.
func (r *DeferredRenderer) RecordDraw(state *GraphicsState, queue hal.Queue, pass gfx.PassEncoder, u *DeferredUniforms) {
	p := state.DeferredPipeline()
	gfx.MustMatchSampleCount("deferred", p.SampleCount(), state.DeferredTarget().SampleCount())

	queue.WriteBuffer(r.uniforms, 0, u.Bytes())
	pass.SetPipeline(p.Pipeline())
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
}

// Destroy releases the bind group and the uniform buffer.
func (r *DeferredRenderer) Destroy() {
	if r == nil {
		return
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	if r.uniforms != nil {
		r.device.DestroyBuffer(r.uniforms)
		r.uniforms = nil
	}
}

// PostProcessRenderer composites the lit image into the final pass.
type PostProcessRenderer struct {
	device    hal.Device
	uniforms  hal.Buffer
	bindGroup hal.BindGroup
}

// NewPostProcessRenderer creates the color shift buffer and binds lit, the
// single-sample view of the lighting output.
func NewPostProcessRenderer(state *GraphicsState, lit hal.TextureView) (*PostProcessRenderer, error) {
	buf, err := gfx.CreateUniformBuffer(state.Device(), "postprocess_uniforms", gfx.PostProcessUniformsSize)
	if err != nil {
		return nil, err
	}
	r := &PostProcessRenderer{device: state.Device(), uniforms: buf}
	if err := r.Rebuild(state, lit); err != nil {
		r.Destroy()
		return nil, err
	}
	return r, nil
}

// Rebuild binds a new lighting view.
func (r *PostProcessRenderer) Rebuild(state *GraphicsState, lit hal.TextureView) error {
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "postprocess_bind",
		Layout: state.PostProcessPipeline().Layout(0),
		Entries: []gputypes.BindGroupEntry{
			gfx.BufferEntry(0, r.uniforms, 0, gfx.PostProcessUniformsSize),
			gfx.TextureEntry(1, lit),
			gfx.SamplerEntry(2, state.Samplers().Lightmap),
		},
	})
	if err != nil {
		return fmt.Errorf("create postprocess bind group: %w", err)
	}
	r.bindGroup = bg
	return nil
}

// RecordDraw uploads colorShift (RGB tint and its blend factor) and records
// the full-screen composite.
func (r *PostProcessRenderer) RecordDraw(state *GraphicsState, queue hal.Queue, pass gfx.PassEncoder, colorShift [4]float32) {
	buf := make([]byte, gfx.PostProcessUniformsSize)
	for i, v := range colorShift {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	queue.WriteBuffer(r.uniforms, 0, buf)
	pass.SetPipeline(state.PostProcessPipeline().Pipeline())
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
}

// Destroy releases the bind group and the uniform buffer.
func (r *PostProcessRenderer) Destroy() {
	if r == nil {
		return
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	if r.uniforms != nil {
		r.device.DestroyBuffer(r.uniforms)
		r.uniforms = nil
	}
}

// RebuildRenderers rebinds both renderers to the state's current targets.
// Frame.Run does this itself when the state generation changed; call it
// for renderers used outside a Frame.
func RebuildRenderers(state *GraphicsState, d *DeferredRenderer, p *PostProcessRenderer) error {
	if err := d.Rebuild(state, GBufferOf(state)); err != nil {
		return err
	}
	if err := p.Rebuild(state, state.DeferredTarget().ResolveView()); err != nil {
		return err
	}
	deferred.Logger().Debug("render: renderers rebuilt", "generation", state.Generation())
	return nil
}
