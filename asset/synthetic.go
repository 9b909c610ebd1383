// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package asset

import "fmt"

// Default asset names.
const (
	PaletteName = "gfx/palette.lmp"
	ArchiveName = "gfx.wad"
)

// syntheticPics are the pictures of a synthetic archive with their sizes.
var syntheticPics = map[string][2]uint32{
	"conback":   {64, 40},
	"sbar":      {320, 24},
	"ibar":      {320, 24},
	"complete":  {192, 24},
	"inter":     {160, 144},
	"qplaque":   {32, 144},
	"ttl_main":  {96, 24},
	"sb_armor1": {24, 24},
	"sb_shells": {24, 24},
	"sb_quad":   {24, 24},
	"sb_invis":  {24, 24},
	"sb_invuln": {24, 24},
	"sb_suit":   {24, 24},
	"sb_key1":   {16, 16},
	"sb_key2":   {16, 16},
	"num_minus": {24, 24},
}

func init() {
	for i := 0; i < 10; i++ {
		syntheticPics[fmt.Sprintf("num_%d", i)] = [2]uint32{24, 24}
	}
	for i := 1; i <= 5; i++ {
		syntheticPics[fmt.Sprintf("face%d", i)] = [2]uint32{24, 24}
		syntheticPics[fmt.Sprintf("face_p%d", i)] = [2]uint32{24, 24}
	}
}

// Synthetic returns a source holding a generated palette and archive with
// the standard UI pictures and a conchars lump. It lets the renderer run
// without game data.
func Synthetic() MemorySource {
	pal := make([]byte, PaletteFileSize)
	for i := 0; i < 256; i++ {
		pal[i*3+0] = byte(i)
		pal[i*3+1] = byte(255 - i)
		pal[i*3+2] = byte(i * 7)
	}

	lumps := make([]Lump, 0, len(syntheticPics)+1)
	conchars := make([]byte, ConcharsSize*ConcharsSize)
	for y := 0; y < ConcharsSize; y++ {
		for x := 0; x < ConcharsSize; x++ {
			if (x/2+y/2)%2 == 0 {
				conchars[y*ConcharsSize+x] = 15
			}
		}
	}
	lumps = append(lumps, Lump{Name: ConcharsName, Type: LumpMipTex, Data: conchars})

	for name, size := range syntheticPics {
		pic := &QPic{Width: size[0], Height: size[1], Indices: make([]byte, size[0]*size[1])}
		for i := range pic.Indices {
			pic.Indices[i] = byte(len(name) * (i%7 + 1))
		}
		lumps = append(lumps, Lump{Name: name, Type: LumpQPic, Data: EncodeQPic(pic)})
	}

	return MemorySource{
		PaletteName: pal,
		ArchiveName: EncodeArchive(lumps),
	}
}
