// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package asset

import (
	"bytes"
	"encoding/binary"
	"io"
	"sort"
)

// EncodeQPic returns the lump data of an indexed picture.
func EncodeQPic(pic *QPic) []byte {
	out := make([]byte, qpicHeaderSize+len(pic.Indices))
	binary.LittleEndian.PutUint32(out[0:4], pic.Width)
	binary.LittleEndian.PutUint32(out[4:8], pic.Height)
	copy(out[qpicHeaderSize:], pic.Indices)
	return out
}

// EncodeArchive writes lumps as a WAD2 archive. Names longer than 15 bytes
// are truncated.
func EncodeArchive(lumps []Lump) []byte {
	var body bytes.Buffer
	entries := make([]wadEntry, len(lumps))
	pos := int32(wadHeaderSize)
	for i, l := range lumps {
		body.Write(l.Data)
		e := wadEntry{
			FilePos:  pos,
			DiskSize: int32(len(l.Data)), //nolint:gosec // lumps are small
			Size:     int32(len(l.Data)), //nolint:gosec // lumps are small
			Type:     l.Type,
		}
		copy(e.Name[:wadNameSize-1], l.Name)
		entries[i] = e
		pos += e.Size
	}

	var out bytes.Buffer
	out.WriteString(wadMagic)
	_ = binary.Write(&out, binary.LittleEndian, int32(len(lumps))) //nolint:gosec // lumps are few
	_ = binary.Write(&out, binary.LittleEndian, pos)
	out.Write(body.Bytes())
	_ = binary.Write(&out, binary.LittleEndian, entries)
	return out.Bytes()
}

// MemorySource serves assets from memory.
type MemorySource map[string][]byte

// Open returns a reader over the named file.
func (m MemorySource) Open(name string) (io.ReadCloser, error) {
	clean, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	data, ok := m[clean]
	if !ok {
		return nil, notFound(name)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Names returns the stored file names in sorted order.
func (m MemorySource) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
