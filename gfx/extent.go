// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import "github.com/gogpu/wgpu/hal"

// Extent2D is a logical render resolution in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// Clamped returns the extent with both dimensions raised to at least 1.
// GPU allocations always use the clamped extent.
func (e Extent2D) Clamped() Extent2D {
	return Extent2D{Width: max(e.Width, 1), Height: max(e.Height, 1)}
}

// Extent3D converts e to a single-layer hal.Extent3D without clamping.
func (e Extent2D) Extent3D() hal.Extent3D {
	return hal.Extent3D{Width: e.Width, Height: e.Height, DepthOrArrayLayers: 1}
}

// Aspect returns width/height of the clamped extent.
func (e Extent2D) Aspect() float32 {
	c := e.Clamped()
	return float32(c.Width) / float32(c.Height)
}
