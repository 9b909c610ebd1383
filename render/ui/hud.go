// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

import (
	"fmt"
	"strconv"
	"time"
)

// Status bar positions on the 320 pixel wide bar.
const (
	sbarWidth  = 320
	sbarHeight = 24
	numWidth   = 24

	armorIconX  = 0
	armorNumX   = 24
	faceX       = 112
	healthNumX  = 136
	ammoIconX   = 224
	ammoNumX    = 248
	itemIconX   = 192
	itemIconW   = 16
	itemFlashHz = 10

	itemFlashTime = time.Second
)

// hudItems are the inventory icons drawn on the item bar, in order.
var hudItems = []struct {
	item Item
	pic  string
}{
	{ItemKey1, "sb_key1"},
	{ItemKey2, "sb_key2"},
	{ItemInvisibility, "sb_invis"},
	{ItemInvulnerability, "sb_invuln"},
	{ItemSuit, "sb_suit"},
	{ItemQuad, "sb_quad"},
}

// HudRenderer draws the status bar and the intermission screen.
type HudRenderer struct {
	Scale float32
}

func (r *HudRenderer) scale() float32 {
	if r.Scale <= 0 {
		return 2
	}
	return r.Scale
}

// bar returns the display position of bar pixel x at row y (0 is the
// bottom of the status bar).
func (r *HudRenderer) bar(x, y int32) ScreenPosition {
	s := r.scale()
	return Offset(AnchorBottomCenter, int32(float32(x-sbarWidth/2)*s), int32(float32(y)*s))
}

func (r *HudRenderer) pic(arena *Arena, name string, pos ScreenPosition, anchor Anchor) {
	arena.Quad(QuadCommand{Pic: name, Layout: Layout{Position: pos, Anchor: anchor, Size: SizeScale(r.scale())}})
}

// Generate appends the commands for state.
func (r *HudRenderer) Generate(state HudState, elapsed time.Duration, arena *Arena) {
	switch s := state.(type) {
	case *HudActive:
		r.active(s, elapsed, arena)
	case *HudIntermission:
		r.intermission(s, arena)
	}
}

func (r *HudRenderer) active(s *HudActive, elapsed time.Duration, arena *Arena) {
	r.pic(arena, "ibar", r.bar(0, sbarHeight), AnchorBottomLeft)
	r.pic(arena, "sbar", r.bar(0, 0), AnchorBottomLeft)

	for i, it := range hudItems {
		if s.Items&it.item == 0 || !itemVisible(s, it.item, elapsed) {
			continue
		}
		r.pic(arena, it.pic, r.bar(int32(itemIconX+i*itemIconW), sbarHeight), AnchorBottomLeft) //nolint:gosec // fixed table
	}

	if s.Stats.Armor > 0 || s.Items&ItemArmor1 != 0 {
		r.pic(arena, "sb_armor1", r.bar(armorIconX, 0), AnchorBottomLeft)
	}
	r.number(arena, s.Stats.Armor, armorNumX)

	r.pic(arena, FacePic(s.Stats.Health, s.FaceAnimTime > elapsed), r.bar(faceX, 0), AnchorBottomLeft)
	r.number(arena, s.Stats.Health, healthNumX)

	if s.Items&ItemShells != 0 {
		r.pic(arena, "sb_shells", r.bar(ammoIconX, 0), AnchorBottomLeft)
	}
	r.number(arena, s.Stats.Ammo, ammoNumX)
}

// itemVisible flashes an item icon during the first second after pickup.
func itemVisible(s *HudActive, item Item, elapsed time.Duration) bool {
	bit := 0
	for item > 1 {
		item >>= 1
		bit++
	}
	since := elapsed - s.PickupTimes[bit]
	if since < 0 || since >= itemFlashTime {
		return true
	}
	return int(since.Seconds()*itemFlashHz)%2 == 0
}

// number draws n right-aligned in a three digit field starting at bar x.
func (r *HudRenderer) number(arena *Arena, n int32, x int32) {
	digits := NumberPics(n)
	x += int32(3-len(digits)) * numWidth //nolint:gosec // at most 3 digits
	for i, pic := range digits {
		r.pic(arena, pic, r.bar(x+int32(i)*numWidth, 0), AnchorBottomLeft) //nolint:gosec // at most 3 digits
	}
}

// NumberPics returns the big-number pictures spelling n, clamped to three
// characters.
func NumberPics(n int32) []string {
	n = min(max(n, -99), 999)
	s := strconv.Itoa(int(n))
	pics := make([]string, len(s))
	for i, c := range s {
		if c == '-' {
			pics[i] = "num_minus"
			continue
		}
		pics[i] = "num_" + string(c)
	}
	return pics
}

// FacePic returns the status bar face for health, using the pain frame
// when pain is set.
func FacePic(health int32, pain bool) string {
	level := min(max(health/20, 0), 4)
	if pain {
		return fmt.Sprintf("face_p%d", 5-level)
	}
	return fmt.Sprintf("face%d", 5-level)
}

// Intermission layout on a 320x200 canvas centered on the display.
func (r *HudRenderer) canvas(x, y int32) ScreenPosition {
	s := r.scale()
	return Offset(AnchorCenter, int32(float32(x-160)*s), int32(float32(100-y)*s))
}

func (r *HudRenderer) intermission(s *HudIntermission, arena *Arena) {
	if s.Kind != IntermissionLevel {
		return
	}
	scale := r.scale()
	r.pic(arena, "complete", r.canvas(64, 24), AnchorTopLeft)
	r.pic(arena, "inter", r.canvas(0, 56), AnchorTopLeft)

	arena.Glyph(Text(CompletionText(s.Completion), r.canvas(160, 64), AnchorTopLeft, scale))
	arena.Glyph(Text(fmt.Sprintf("%3d/%3d", s.Stats.Secrets, s.Stats.TotalSecrets), r.canvas(160, 104), AnchorTopLeft, scale))
	arena.Glyph(Text(fmt.Sprintf("%3d/%3d", s.Stats.Kills, s.Stats.TotalKills), r.canvas(160, 144), AnchorTopLeft, scale))
}

// CompletionText formats a level time as m:ss.
func CompletionText(d time.Duration) string {
	secs := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
