// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import (
	"encoding/binary"
	"fmt"

	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/google/uuid"
)

// GlyphInstance is the per-instance data of one glyph.
type GlyphInstance struct {
	Position [2]float32
	Size     [2]float32
	Index    uint32
}

// GlyphInstances expands cmds into one instance per glyph for a display of
// extent. Text advances by the glyph width per byte.
func GlyphInstances(extent gfx.Extent2D, cmds []GlyphCommand, dst []GlyphInstance) []GlyphInstance {
	out := dst[:0]
	dw, dh := extent.Width, extent.Height
	for _, cmd := range cmds {
		gw := pixels(GlyphSize * cmd.Scale)
		gh := gw
		sx, sy := ScreenSpaceVertexScale(dw, dh, gw, gh)
		px, py := cmd.Position.Point(dw, dh)

		if cmd.Text == "" {
			ax, ay := cmd.Anchor.Point(gw, gh)
			tx, ty := ScreenSpaceVertexTranslate(dw, dh, px-ax, py-ay)
			out = append(out, GlyphInstance{Position: [2]float32{tx, ty}, Size: [2]float32{sx, sy}, Index: uint32(cmd.Glyph)})
			continue
		}

		ax, ay := cmd.Anchor.Point(gw*uint32(len(cmd.Text)), gh) //nolint:gosec // text lines are short
		x, y := px-ax, py-ay
		for i := 0; i < len(cmd.Text); i++ {
			tx, ty := ScreenSpaceVertexTranslate(dw, dh, x+int32(gw)*int32(i), y) //nolint:gosec // text lines are short
			out = append(out, GlyphInstance{Position: [2]float32{tx, ty}, Size: [2]float32{sx, sy}, Index: uint32(cmd.Text[i])})
		}
	}
	return out
}

// GlyphRenderer batches glyph commands into one instanced draw.
type GlyphRenderer struct {
	device    hal.Device
	instances *gfx.GrowableBuffer
	scratch   []GlyphInstance
	staging   []byte
	count     uint32

	bindGroup  hal.BindGroup
	boundState uuid.UUID
	boundBuf   uint64
}

// NewGlyphRenderer allocates the instance storage buffer.
func NewGlyphRenderer(device hal.Device) (*GlyphRenderer, error) {
	buf, err := gfx.NewGrowableBuffer(device, "ui_glyph_instances", gputypes.BufferUsageStorage, 256*gfx.GlyphInstanceSize)
	if err != nil {
		return nil, err
	}
	return &GlyphRenderer{device: device, instances: buf}, nil
}

// Prepare computes and uploads the instances of cmds.
func (r *GlyphRenderer) Prepare(res Resources, queue hal.Queue, extent gfx.Extent2D, cmds []GlyphCommand) error {
	r.scratch = GlyphInstances(extent, cmds, r.scratch)
	r.count = uint32(len(r.scratch)) //nolint:gosec // command lists are small
	if r.count == 0 {
		return nil
	}
	r.staging = r.staging[:0]
	for _, g := range r.scratch {
		r.staging = appendFloats(r.staging, g.Position[0], g.Position[1], g.Size[0], g.Size[1])
		r.staging = binary.LittleEndian.AppendUint32(r.staging, g.Index)
		r.staging = append(r.staging, make([]byte, 12)...)
	}
	if _, err := r.instances.Upload(queue, r.staging); err != nil {
		return fmt.Errorf("upload glyph instances: %w", err)
	}
	return r.bind(res)
}

func (r *GlyphRenderer) bind(res Resources) error {
	gen := res.Generation()
	if r.bindGroup != nil && r.boundState == gen && r.boundBuf == r.instances.Generation() {
		return nil
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ui_glyph_bind",
		Layout: res.GlyphPipeline().Layout(0),
		Entries: []gputypes.BindGroupEntry{
			gfx.TextureEntry(0, res.ConcharsTexture().View),
			gfx.SamplerEntry(1, res.Samplers().Nearest),
			gfx.BufferEntry(2, r.instances.Buffer(), 0, r.instances.Size()),
		},
	})
	if err != nil {
		return fmt.Errorf("create glyph bind group: %w", err)
	}
	r.bindGroup = bg
	r.boundState = gen
	r.boundBuf = r.instances.Generation()
	return nil
}

// Count returns the number of glyphs prepared for this frame.
func (r *GlyphRenderer) Count() uint32 { return r.count }

// RecordDraw draws every prepared glyph.
func (r *GlyphRenderer) RecordDraw(res Resources, pass gfx.PassEncoder) {
	if r.count == 0 {
		return
	}
	pass.SetPipeline(res.GlyphPipeline().Pipeline())
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.Draw(6, r.count, 0, 0)
}

// Destroy releases the bind group and the instance buffer.
func (r *GlyphRenderer) Destroy() {
	if r == nil {
		return
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	r.instances.Destroy()
}
