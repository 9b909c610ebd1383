// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package asset

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// Lump types found in WAD2 archives.
const (
	LumpPalette = 0x40
	LumpQTex    = 0x41
	LumpQPic    = 0x42
	LumpSound   = 0x43
	LumpMipTex  = 0x44
)

// ConcharsName is the lump holding the console character set.
const ConcharsName = "conchars"

// ConcharsSize is the edge length of the conchars image: 16x16 glyphs of
// 8x8 pixels.
const ConcharsSize = 128

const (
	wadMagic       = "WAD2"
	wadHeaderSize  = 12
	wadEntrySize   = 32
	wadNameSize    = 16
	qpicHeaderSize = 8
)

// QPic is an indexed picture.
type QPic struct {
	Width, Height uint32
	Indices       []byte
}

// Lump is one directory entry of an archive.
type Lump struct {
	Name string
	Type byte
	Data []byte
}

// Archive is a parsed WAD2 file.
type Archive struct {
	lumps map[string]Lump
}

// LoadArchive reads and parses the WAD2 file name from src.
func LoadArchive(src Source, name string) (*Archive, error) {
	data, err := ReadFile(src, name)
	if err != nil {
		return nil, err
	}
	a, err := ParseArchive(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return a, nil
}

type wadEntry struct {
	FilePos     int32
	DiskSize    int32
	Size        int32
	Type        byte
	Compression byte
	Pad         uint16
	Name        [wadNameSize]byte
}

// ParseArchive decodes a WAD2 archive held in memory.
func ParseArchive(data []byte) (*Archive, error) {
	if len(data) < wadHeaderSize || string(data[:4]) != wadMagic {
		return nil, fmt.Errorf("%w: missing %s header", ErrFormat, wadMagic)
	}
	count := int32(binary.LittleEndian.Uint32(data[4:8]))   //nolint:gosec // validated below
	offset := int32(binary.LittleEndian.Uint32(data[8:12])) //nolint:gosec // validated below
	if count < 0 || offset < wadHeaderSize || int64(offset)+int64(count)*wadEntrySize > int64(len(data)) {
		return nil, fmt.Errorf("%w: directory (%d entries at %d) out of bounds", ErrFormat, count, offset)
	}

	entries := make([]wadEntry, count)
	if err := binary.Read(bytes.NewReader(data[offset:]), binary.LittleEndian, entries); err != nil {
		return nil, fmt.Errorf("%w: directory: %v", ErrFormat, err)
	}

	a := &Archive{lumps: make(map[string]Lump, count)}
	for _, e := range entries {
		name := lumpName(e.Name)
		if e.Compression != 0 {
			return nil, fmt.Errorf("%w: lump %q is compressed", ErrFormat, name)
		}
		if e.FilePos < 0 || e.Size < 0 || int64(e.FilePos)+int64(e.Size) > int64(len(data)) {
			return nil, fmt.Errorf("%w: lump %q out of bounds", ErrFormat, name)
		}
		a.lumps[name] = Lump{
			Name: name,
			Type: e.Type,
			Data: data[e.FilePos : e.FilePos+e.Size],
		}
	}
	return a, nil
}

func lumpName(raw [wadNameSize]byte) string {
	n := bytes.IndexByte(raw[:], 0)
	if n < 0 {
		n = len(raw)
	}
	return strings.ToLower(string(raw[:n]))
}

// Names returns the lump names in sorted order.
func (a *Archive) Names() []string {
	names := make([]string, 0, len(a.lumps))
	for name := range a.lumps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lump returns the raw lump called name. Names are case-insensitive.
func (a *Archive) Lump(name string) (Lump, bool) {
	l, ok := a.lumps[strings.ToLower(name)]
	return l, ok
}

// Pic returns the picture lump called name.
func (a *Archive) Pic(name string) (*QPic, bool) {
	l, ok := a.Lump(name)
	if !ok || l.Type != LumpQPic {
		return nil, false
	}
	pic, err := parseQPic(l.Data)
	if err != nil {
		return nil, false
	}
	return pic, true
}

// Pics returns every picture lump keyed by name.
func (a *Archive) Pics() map[string]*QPic {
	pics := make(map[string]*QPic)
	for name, l := range a.lumps {
		if l.Type != LumpQPic {
			continue
		}
		if pic, err := parseQPic(l.Data); err == nil {
			pics[name] = pic
		}
	}
	return pics
}

// Conchars returns the console character set.
func (a *Archive) Conchars() (*QPic, error) {
	l, ok := a.Lump(ConcharsName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ConcharsName)
	}
	if len(l.Data) < ConcharsSize*ConcharsSize {
		return nil, fmt.Errorf("%w: %s has %d bytes, want %d", ErrFormat, ConcharsName, len(l.Data), ConcharsSize*ConcharsSize)
	}
	return &QPic{
		Width:   ConcharsSize,
		Height:  ConcharsSize,
		Indices: l.Data[:ConcharsSize*ConcharsSize],
	}, nil
}

func parseQPic(data []byte) (*QPic, error) {
	if len(data) < qpicHeaderSize {
		return nil, fmt.Errorf("%w: picture header truncated", ErrFormat)
	}
	w := binary.LittleEndian.Uint32(data[0:4])
	h := binary.LittleEndian.Uint32(data[4:8])
	if uint64(len(data)-qpicHeaderSize) < uint64(w)*uint64(h) {
		return nil, fmt.Errorf("%w: picture %dx%d truncated", ErrFormat, w, h)
	}
	return &QPic{Width: w, Height: h, Indices: data[qpicHeaderSize : qpicHeaderSize+int(w*h)]}, nil
}
