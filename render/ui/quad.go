// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/deferred"
	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/google/uuid"
)

// QuadInstance is the per-instance data of one UI quad.
type QuadInstance struct {
	Transform [16]float32
	// UV is the (u0, v0, u1, v1) atlas rectangle.
	UV [4]float32
}

// PicLookup finds pictures on the UI atlas.
type PicLookup interface {
	Lookup(name string) (gfx.Region, bool)
	UV(r gfx.Region) [4]float32
}

// QuadInstances resolves cmds against atlas for a display of extent.
// Commands naming unknown pictures are skipped and reported in missing.
func QuadInstances(atlas PicLookup, extent gfx.Extent2D, cmds []QuadCommand, dst []QuadInstance) (instances []QuadInstance, missing []string) {
	instances = dst[:0]
	for _, cmd := range cmds {
		region, ok := atlas.Lookup(cmd.Pic)
		if !ok {
			missing = append(missing, cmd.Pic)
			continue
		}
		x, y, w, h := cmd.Layout.ScreenRect(extent.Width, extent.Height, region.W, region.H)
		instances = append(instances, QuadInstance{
			Transform: ScreenSpaceVertexTransform(extent.Width, extent.Height, w, h, x, y),
			UV:        atlas.UV(region),
		})
	}
	return instances, missing
}

func appendFloats(dst []byte, vs ...float32) []byte {
	for _, v := range vs {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// QuadRenderer batches quad commands into one instanced draw.
type QuadRenderer struct {
	device    hal.Device
	instances *gfx.GrowableBuffer
	scratch   []QuadInstance
	staging   []byte
	count     uint32

	bindGroup  hal.BindGroup
	boundState uuid.UUID
	boundBuf   uint64

	missing map[string]struct{}
}

// NewQuadRenderer allocates the instance storage buffer.
func NewQuadRenderer(device hal.Device) (*QuadRenderer, error) {
	buf, err := gfx.NewGrowableBuffer(device, "ui_quad_instances", gputypes.BufferUsageStorage, 64*gfx.QuadInstanceSize)
	if err != nil {
		return nil, err
	}
	return &QuadRenderer{device: device, instances: buf, missing: make(map[string]struct{})}, nil
}

// Prepare computes and uploads the instances of cmds.
func (r *QuadRenderer) Prepare(res Resources, queue hal.Queue, extent gfx.Extent2D, cmds []QuadCommand) error {
	var missing []string
	r.scratch, missing = QuadInstances(res.Atlas(), extent, cmds, r.scratch)
	for _, name := range missing {
		if _, seen := r.missing[name]; !seen {
			r.missing[name] = struct{}{}
			deferred.Logger().Debug("ui: picture not found", "pic", name)
		}
	}

	r.count = uint32(len(r.scratch)) //nolint:gosec // command lists are small
	if r.count == 0 {
		return nil
	}
	r.staging = r.staging[:0]
	for i := range r.scratch {
		r.staging = appendFloats(r.staging, r.scratch[i].Transform[:]...)
		r.staging = appendFloats(r.staging, r.scratch[i].UV[:]...)
	}
	if _, err := r.instances.Upload(queue, r.staging); err != nil {
		return fmt.Errorf("upload quad instances: %w", err)
	}
	return r.bind(res)
}

func (r *QuadRenderer) bind(res Resources) error {
	gen := res.Generation()
	if r.bindGroup != nil && r.boundState == gen && r.boundBuf == r.instances.Generation() {
		return nil
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	bg, err := r.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "ui_quad_bind",
		Layout: res.QuadPipeline().Layout(0),
		Entries: []gputypes.BindGroupEntry{
			gfx.TextureEntry(0, res.AtlasTexture().View),
			gfx.SamplerEntry(1, res.Samplers().Nearest),
			gfx.BufferEntry(2, r.instances.Buffer(), 0, r.instances.Size()),
		},
	})
	if err != nil {
		return fmt.Errorf("create quad bind group: %w", err)
	}
	r.bindGroup = bg
	r.boundState = gen
	r.boundBuf = r.instances.Generation()
	return nil
}

// Count returns the number of quads prepared for this frame.
func (r *QuadRenderer) Count() uint32 { return r.count }

// RecordDraw draws every prepared quad. Nothing is recorded when there are
// none.
func (r *QuadRenderer) RecordDraw(res Resources, pass gfx.PassEncoder) {
	if r.count == 0 {
		return
	}
	pass.SetPipeline(res.QuadPipeline().Pipeline())
	pass.SetBindGroup(0, r.bindGroup, nil)
	pass.Draw(6, r.count, 0, 0)
}

// Destroy releases the bind group and the instance buffer.
func (r *QuadRenderer) Destroy() {
	if r == nil {
		return
	}
	if r.bindGroup != nil {
		r.device.DestroyBindGroup(r.bindGroup)
		r.bindGroup = nil
	}
	r.instances.Destroy()
}
