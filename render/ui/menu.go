// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import "time"

// Menus are laid out on a 320x200 canvas centered on the display.
const (
	menuCanvasW = 320
	menuCanvasH = 200

	menuItemX       = 72
	menuCursorX     = 56
	menuItemTop     = 32
	menuItemSpacing = 12
	menuPlaqueX     = 16
	menuTitleTop    = 4

	menuCursorGlyph = 12
)

// MenuRenderer draws the active menu.
type MenuRenderer struct {
	Scale float32
}

// canvas converts canvas coordinates (origin top-left, y down) to an offset
// from the display center.
func (r *MenuRenderer) canvas(x, y int32, scale float32) ScreenPosition {
	return Offset(AnchorCenter,
		int32(float32(x-menuCanvasW/2)*scale),
		int32(float32(menuCanvasH/2-y)*scale))
}

// Generate appends the menu commands.
func (r *MenuRenderer) Generate(m *Menu, elapsed time.Duration, arena *Arena) {
	scale := r.Scale
	if scale <= 0 {
		scale = 2
	}

	if m.Plaque != "" {
		arena.Quad(QuadCommand{Pic: m.Plaque, Layout: Layout{
			Position: r.canvas(menuPlaqueX, menuTitleTop, scale),
			Anchor:   AnchorTopLeft,
			Size:     SizeScale(scale),
		}})
	}
	if m.Title != "" {
		arena.Quad(QuadCommand{Pic: m.Title, Layout: Layout{
			Position: r.canvas(menuCanvasW/2, menuTitleTop, scale),
			Anchor:   AnchorTopCenter,
			Size:     SizeScale(scale),
		}})
	}

	for i, item := range m.Items {
		y := int32(menuItemTop + i*menuItemSpacing) //nolint:gosec // menus are short
		arena.Glyph(Text(item, r.canvas(menuItemX, y, scale), AnchorTopLeft, scale))
		if i == m.Selected {
			spin := byte(int(elapsed.Seconds()*4) & 1)
			arena.Glyph(Glyph(menuCursorGlyph+spin, r.canvas(menuCursorX, y, scale), AnchorTopLeft, scale))
		}
	}
}
