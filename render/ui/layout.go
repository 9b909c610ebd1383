// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

type coordMode uint8

const (
	coordZero coordMode = iota
	coordCenter
	coordMax
	coordAbsolute
)

// AnchorCoord selects a point along one axis of a box.
type AnchorCoord struct {
	mode  coordMode
	value int32
}

// Anchor coordinates.
var (
	CoordZero   = AnchorCoord{mode: coordZero}
	CoordCenter = AnchorCoord{mode: coordCenter}
	CoordMax    = AnchorCoord{mode: coordMax}
)

// CoordAbsolute is a fixed pixel offset from the box origin.
func CoordAbsolute(v int32) AnchorCoord { return AnchorCoord{mode: coordAbsolute, value: v} }

// Value resolves c along an axis of length size.
func (c AnchorCoord) Value(size uint32) int32 {
	switch c.mode {
	case coordCenter:
		return int32(size / 2) //nolint:gosec // sizes fit in int32
	case coordMax:
		return int32(size) //nolint:gosec // sizes fit in int32
	case coordAbsolute:
		return c.value
	default:
		return 0
	}
}

// Anchor is a point on a box.
type Anchor struct {
	X, Y AnchorCoord
}

// The nine standard anchors.
var (
	AnchorBottomLeft   = Anchor{CoordZero, CoordZero}
	AnchorBottomCenter = Anchor{CoordCenter, CoordZero}
	AnchorBottomRight  = Anchor{CoordMax, CoordZero}
	AnchorCenterLeft   = Anchor{CoordZero, CoordCenter}
	AnchorCenter       = Anchor{CoordCenter, CoordCenter}
	AnchorCenterRight  = Anchor{CoordMax, CoordCenter}
	AnchorTopLeft      = Anchor{CoordZero, CoordMax}
	AnchorTopCenter    = Anchor{CoordCenter, CoordMax}
	AnchorTopRight     = Anchor{CoordMax, CoordMax}
)

// Point resolves a on a w x h box.
func (a Anchor) Point(w, h uint32) (int32, int32) {
	return a.X.Value(w), a.Y.Value(h)
}

// ScreenPosition is an anchor on the display plus a pixel offset.
type ScreenPosition struct {
	Anchor Anchor
	X, Y   int32
}

// At is the display point a.
func At(a Anchor) ScreenPosition { return ScreenPosition{Anchor: a} }

// Offset is the display point a moved by (x, y) pixels.
func Offset(a Anchor, x, y int32) ScreenPosition { return ScreenPosition{Anchor: a, X: x, Y: y} }

// Point resolves p on a displayW x displayH display.
func (p ScreenPosition) Point(displayW, displayH uint32) (int32, int32) {
	x, y := p.Anchor.Point(displayW, displayH)
	return x + p.X, y + p.Y
}

type sizeMode uint8

const (
	sizeScale sizeMode = iota
	sizeAbsolute
	sizeDisplay
)

// Size is the on-screen size of a quad.
type Size struct {
	mode   sizeMode
	sx, sy float32
	w, h   uint32
}

// SizeScale scales the picture size by factor.
func SizeScale(factor float32) Size { return Size{mode: sizeScale, sx: factor, sy: factor} }

// SizeAbsolute is a fixed pixel size.
func SizeAbsolute(w, h uint32) Size { return Size{mode: sizeAbsolute, w: w, h: h} }

// SizeDisplay is a fraction of the display along each axis.
func SizeDisplay(rx, ry float32) Size { return Size{mode: sizeDisplay, sx: rx, sy: ry} }

// Resolve returns the pixel size of a texW x texH picture on a
// displayW x displayH display.
func (s Size) Resolve(texW, texH, displayW, displayH uint32) (uint32, uint32) {
	switch s.mode {
	case sizeAbsolute:
		return s.w, s.h
	case sizeDisplay:
		return pixels(float32(displayW) * s.sx), pixels(float32(displayH) * s.sy)
	default:
		return pixels(float32(texW) * s.sx), pixels(float32(texH) * s.sy)
	}
}

// pixels truncates a scaled size to whole pixels. Negative and NaN sizes
// are empty.
func pixels(v float32) uint32 {
	if !(v > 0) {
		return 0
	}
	return uint32(v)
}

// Layout places a quad: Anchor on the quad is pinned to Position on the
// display.
type Layout struct {
	Position ScreenPosition
	Anchor   Anchor
	Size     Size
}

// ScreenRect returns the bottom-left pixel origin and pixel size of a
// texW x texH picture.
func (l Layout) ScreenRect(displayW, displayH, texW, texH uint32) (x, y int32, w, h uint32) {
	w, h = l.Size.Resolve(texW, texH, displayW, displayH)
	px, py := l.Position.Point(displayW, displayH)
	ax, ay := l.Anchor.Point(w, h)
	return px - ax, py - ay, w, h
}
