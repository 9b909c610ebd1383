// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import (
	"github.com/gogpu/deferred/gfx"
	"github.com/google/uuid"
)

// Resources are the GPU objects the UI draws with. They are owned by the
// graphics state, which replaces them on rebuild and reports that through
// Generation.
type Resources interface {
	QuadPipeline() *gfx.QuadPipeline
	GlyphPipeline() *gfx.GlyphPipeline
	Atlas() *gfx.Atlas
	AtlasTexture() *gfx.Texture
	ConcharsTexture() *gfx.Texture
	Samplers() *gfx.Samplers
	Generation() uuid.UUID
}
