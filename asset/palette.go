// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package asset

import "fmt"

// PaletteFileSize is the size of a palette file: 256 RGB triples.
const PaletteFileSize = 256 * 3

// FullbrightStart is the first palette index drawn without lighting.
const FullbrightStart = 224

// Transparent is the palette index of transparent pixels in pictures.
const Transparent = 0xFF

// Palette is the 256-entry color table every indexed texture refers to.
type Palette struct {
	rgb [256][3]byte
}

// LoadPalette reads the palette file name from src.
func LoadPalette(src Source, name string) (*Palette, error) {
	data, err := ReadFile(src, name)
	if err != nil {
		return nil, err
	}
	p, err := ParsePalette(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return p, nil
}

// ParsePalette decodes a 768-byte palette.
func ParsePalette(data []byte) (*Palette, error) {
	if len(data) != PaletteFileSize {
		return nil, fmt.Errorf("%w: palette has %d bytes, want %d", ErrFormat, len(data), PaletteFileSize)
	}
	p := &Palette{}
	for i := range p.rgb {
		copy(p.rgb[i][:], data[i*3:i*3+3])
	}
	return p, nil
}

// RGB returns the color of index.
func (p *Palette) RGB(index byte) (r, g, b byte) {
	c := p.rgb[index]
	return c[0], c[1], c[2]
}

// IsFullbright reports whether index is drawn without lighting.
func IsFullbright(index byte) bool { return index >= FullbrightStart }

// Translate expands indexed pixels into RGBA diffuse data and a one byte
// per pixel fullbright mask. Transparent pixels become zero in both.
func (p *Palette) Translate(indices []byte) (diffuse, fullbright []byte) {
	diffuse = make([]byte, len(indices)*4)
	fullbright = make([]byte, len(indices))
	for i, index := range indices {
		if index == Transparent {
			continue
		}
		c := p.rgb[index]
		diffuse[i*4+0] = c[0]
		diffuse[i*4+1] = c[1]
		diffuse[i*4+2] = c[2]
		diffuse[i*4+3] = 0xFF
		if IsFullbright(index) {
			fullbright[i] = 0xFF
		}
	}
	return diffuse, fullbright
}

// Table returns the palette as 256 opaque RGBA entries.
func (p *Palette) Table() []byte {
	out := make([]byte, 256*4)
	for i, c := range p.rgb {
		out[i*4+0] = c[0]
		out[i*4+1] = c[1]
		out[i*4+2] = c[2]
		out[i*4+3] = 0xFF
	}
	return out
}
