// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import (
	"time"

	"github.com/gogpu/deferred/gfx"
)

// Console glyph indices.
const (
	consoleCursorGlyph = 11
	consolePrompt      = "]"
)

// ConsoleRenderer draws the console background, scrollback and input line.
type ConsoleRenderer struct {
	// Scale multiplies the 8x8 glyph size.
	Scale float32
}

// Generate appends the console commands. proportion is the fraction of the
// display height the console covers, measured from the top.
func (r *ConsoleRenderer) Generate(c *Console, elapsed time.Duration, extent gfx.Extent2D, proportion float32, arena *Arena) {
	scale := r.Scale
	if scale <= 0 {
		scale = 2
	}
	glyph := int32(GlyphSize * scale)

	arena.Quad(QuadCommand{
		Pic: "conback",
		Layout: Layout{
			Position: At(AnchorTopLeft),
			Anchor:   AnchorTopLeft,
			Size:     SizeDisplay(1, proportion),
		},
	})

	bottom := int32(float32(extent.Height) * (1 - proportion))
	inputY := bottom + glyph/2
	arena.Glyph(Text(consolePrompt+c.Input, Offset(AnchorBottomLeft, glyph, inputY), AnchorBottomLeft, scale))

	// the cursor blinks at 4 Hz
	if (elapsed.Milliseconds()/250)%2 == 0 {
		cursor := min(max(c.Cursor, 0), len(c.Input))
		x := glyph * int32(1+len(consolePrompt)+cursor) //nolint:gosec // input lines are short
		arena.Glyph(Glyph(consoleCursorGlyph, Offset(AnchorBottomLeft, x, inputY), AnchorBottomLeft, scale))
	}

	top := int32(extent.Height) //nolint:gosec // display sizes fit in int32
	y := inputY + glyph
	for i := len(c.Output) - 1; i >= 0 && y < top; i-- {
		arena.Glyph(Text(c.Output[i], Offset(AnchorBottomLeft, glyph, y), AnchorBottomLeft, scale))
		y += glyph
	}
}
