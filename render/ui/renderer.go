// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import (
	"time"

	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/wgpu/hal"
)

// DefaultConsoleProportion is the display fraction the console covers over
// the HUD.
const DefaultConsoleProportion = 0.33

// Renderer composes the HUD, console and menu renderers with the quad and
// glyph batchers.
type Renderer struct {
	Console ConsoleRenderer
	Menu    MenuRenderer
	Hud     HudRenderer

	quads  *QuadRenderer
	glyphs *GlyphRenderer

	consoleProportion float32
}

// NewRenderer creates a renderer with its instance buffers.
func NewRenderer(device hal.Device) (*Renderer, error) {
	quads, err := NewQuadRenderer(device)
	if err != nil {
		return nil, err
	}
	glyphs, err := NewGlyphRenderer(device)
	if err != nil {
		quads.Destroy()
		return nil, err
	}
	return &Renderer{quads: quads, glyphs: glyphs, consoleProportion: DefaultConsoleProportion}, nil
}

// SetConsoleProportion sets the in-game console height as a display
// fraction in (0, 1]. Out-of-range values are ignored.
func (r *Renderer) SetConsoleProportion(p float32) {
	if p > 0 && p <= 1 {
		r.consoleProportion = p
	}
}

// ConsoleProportion returns the console height for state: the whole
// display on the title screen, the configured fraction in game.
func (r *Renderer) ConsoleProportion(state State) float32 {
	if _, ok := state.(*InGame); ok {
		return r.consoleProportion
	}
	return 1
}

// Generate appends the commands of every active surface to arena: the HUD
// first, then the overlay.
func (r *Renderer) Generate(state State, elapsed time.Duration, extent gfx.Extent2D, arena *Arena) {
	var overlay Overlay
	switch s := state.(type) {
	case *Title:
		overlay = s.Overlay
	case *InGame:
		if s.Hud != nil {
			r.Hud.Generate(s.Hud, elapsed, arena)
		}
		overlay = s.Overlay
	}

	switch o := overlay.(type) {
	case *MenuOverlay:
		r.Menu.Generate(o.Menu, elapsed, arena)
	case *ConsoleOverlay:
		r.Console.Generate(o.Console, elapsed, extent, r.ConsoleProportion(state), arena)
	}
}

// Render generates the commands for state, uploads the instance data and
// records the quad draw followed by the glyph draw into pass.
func (r *Renderer) Render(res Resources, queue hal.Queue, state State, elapsed time.Duration,
	extent gfx.Extent2D, pass gfx.PassEncoder, arena *Arena) error {
	r.Generate(state, elapsed, extent, arena)

	if err := r.quads.Prepare(res, queue, extent, arena.Quads); err != nil {
		return err
	}
	if err := r.glyphs.Prepare(res, queue, extent, arena.Glyphs); err != nil {
		return err
	}
	r.quads.RecordDraw(res, pass)
	r.glyphs.RecordDraw(res, pass)
	return nil
}

// Destroy releases the instance buffers.
func (r *Renderer) Destroy() {
	if r == nil {
		return
	}
	r.glyphs.Destroy()
	r.quads.Destroy()
}
