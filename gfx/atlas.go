// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"errors"
	"fmt"

	"github.com/gogpu/wgpu/hal"
)

// DefaultAtlasSize is the edge length of a UI atlas page.
const DefaultAtlasSize = 1024

// atlasPadding separates neighbouring entries so linear sampling never
// bleeds across them.
const atlasPadding = 1

var (
	// ErrAtlasFull is returned when an image does not fit on the page.
	ErrAtlasFull = errors.New("gfx: atlas is full")

	// ErrAtlasImage is returned for images whose pixel data does not match
	// their size.
	ErrAtlasImage = errors.New("gfx: invalid atlas image")
)

// Region is a rectangle on an atlas page in pixels.
type Region struct {
	X, Y, W, H uint32
}

// Atlas packs RGBA images onto a single page with a shelf allocator.
// Images are packed left to right on shelves that grow downward.
type Atlas struct {
	size    uint32
	pixels  []byte
	regions map[string]Region

	shelfY, shelfH, cursorX uint32
}

// NewAtlas creates an empty size x size atlas page.
func NewAtlas(size uint32) *Atlas {
	return &Atlas{
		size:    size,
		pixels:  make([]byte, int(size)*int(size)*4),
		regions: make(map[string]Region),
	}
}

// Size returns the page edge length.
func (a *Atlas) Size() uint32 { return a.size }

// Len returns the number of packed images.
func (a *Atlas) Len() int { return len(a.regions) }

// Insert packs a w x h RGBA image under name. Inserting a name twice
// returns the existing region.
func (a *Atlas) Insert(name string, w, h uint32, rgba []byte) (Region, error) {
	if r, ok := a.regions[name]; ok {
		return r, nil
	}
	if uint64(len(rgba)) != uint64(w)*uint64(h)*4 {
		return Region{}, fmt.Errorf("%w: %q has %d bytes for %dx%d", ErrAtlasImage, name, len(rgba), w, h)
	}
	if w > a.size || h > a.size {
		return Region{}, fmt.Errorf("%w: %q is %dx%d", ErrAtlasFull, name, w, h)
	}

	if a.cursorX+w > a.size {
		a.shelfY += a.shelfH + atlasPadding
		a.shelfH = 0
		a.cursorX = 0
	}
	if a.shelfY+h > a.size {
		return Region{}, fmt.Errorf("%w: no room for %q (%dx%d)", ErrAtlasFull, name, w, h)
	}

	r := Region{X: a.cursorX, Y: a.shelfY, W: w, H: h}
	for row := uint32(0); row < h; row++ {
		dst := (int(r.Y+row)*int(a.size) + int(r.X)) * 4
		src := int(row) * int(w) * 4
		copy(a.pixels[dst:dst+int(w)*4], rgba[src:src+int(w)*4])
	}

	a.cursorX += w + atlasPadding
	a.shelfH = max(a.shelfH, h)
	a.regions[name] = r
	return r, nil
}

// Lookup returns the region of a packed image.
func (a *Atlas) Lookup(name string) (Region, bool) {
	r, ok := a.regions[name]
	return r, ok
}

// UV returns the normalized (u0, v0, u1, v1) rectangle of r.
func (a *Atlas) UV(r Region) [4]float32 {
	s := float32(a.size)
	return [4]float32{
		float32(r.X) / s,
		float32(r.Y) / s,
		float32(r.X+r.W) / s,
		float32(r.Y+r.H) / s,
	}
}

// Pixels returns the page contents.
func (a *Atlas) Pixels() []byte { return a.pixels }

// Upload creates a diffuse texture holding the page.
func (a *Atlas) Upload(device hal.Device, queue hal.Queue, label string) (*Texture, error) {
	return CreateTexture(device, queue, label, a.size, a.size, DiffuseData(a.pixels))
}
