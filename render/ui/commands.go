// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

// GlyphSize is the edge length of a conchars glyph in pixels.
const GlyphSize = 8

// QuadCommand draws the atlas picture Pic.
type QuadCommand struct {
	Pic    string
	Layout Layout
}

// GlyphCommand draws a single glyph or a line of text. Text takes
// precedence when non-empty.
type GlyphCommand struct {
	Glyph    byte
	Text     string
	Position ScreenPosition
	// Anchor is the point of the glyph or text box pinned to Position.
	Anchor Anchor
	Scale  float32
}

// Glyph draws glyph index id.
func Glyph(id byte, pos ScreenPosition, anchor Anchor, scale float32) GlyphCommand {
	return GlyphCommand{Glyph: id, Position: pos, Anchor: anchor, Scale: scale}
}

// Text draws s one glyph per byte.
func Text(s string, pos ScreenPosition, anchor Anchor, scale float32) GlyphCommand {
	return GlyphCommand{Text: s, Position: pos, Anchor: anchor, Scale: scale}
}

// Arena holds the command lists of one frame. Reset keeps the backing
// arrays so steady-state frames do not allocate. An Arena must not be
// shared between concurrently rendered frames.
type Arena struct {
	Quads  []QuadCommand
	Glyphs []GlyphCommand
}

// Reset empties both lists.
func (a *Arena) Reset() {
	clear(a.Quads)
	clear(a.Glyphs)
	a.Quads = a.Quads[:0]
	a.Glyphs = a.Glyphs[:0]
}

// Quad appends a quad command.
func (a *Arena) Quad(cmd QuadCommand) { a.Quads = append(a.Quads, cmd) }

// Glyph appends a glyph command.
func (a *Arena) Glyph(cmd GlyphCommand) { a.Glyphs = append(a.Glyphs, cmd) }
