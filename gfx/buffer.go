// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/deferred"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// GrowableBuffer is a GPU buffer that is reallocated with doubled size when
// an upload does not fit. It never shrinks.
type GrowableBuffer struct {
	device     hal.Device
	label      string
	usage      gputypes.BufferUsage
	buf        hal.Buffer
	size       uint64
	generation uint64
}

// NewGrowableBuffer creates a buffer of at least minSize bytes.
func NewGrowableBuffer(device hal.Device, label string, usage gputypes.BufferUsage, minSize uint64) (*GrowableBuffer, error) {
	b := &GrowableBuffer{device: device, label: label, usage: usage | gputypes.BufferUsageCopyDst}
	if err := b.reserve(max(minSize, 256)); err != nil {
		return nil, err
	}
	return b, nil
}

func (b *GrowableBuffer) reserve(size uint64) error {
	if size <= b.size && b.buf != nil {
		return nil
	}
	newSize := max(b.size, 256)
	for newSize < size {
		newSize *= 2
	}
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  newSize,
		Usage: b.usage,
	})
	if err != nil {
		return fmt.Errorf("create %s (%d bytes): %w", b.label, newSize, err)
	}
	if b.buf != nil {
		b.device.DestroyBuffer(b.buf)
	}
	b.buf = buf
	b.size = newSize
	b.generation++
	deferred.Logger().Debug("gfx: buffer grown", "label", b.label, "size", newSize)
	return nil
}

// Upload writes data at offset 0, growing the buffer first when needed.
// It reports whether the underlying buffer was replaced.
func (b *GrowableBuffer) Upload(queue hal.Queue, data []byte) (grown bool, err error) {
	gen := b.generation
	if err := b.reserve(uint64(len(data))); err != nil {
		return false, err
	}
	if len(data) > 0 {
		queue.WriteBuffer(b.buf, 0, data)
	}
	return gen != b.generation, nil
}

// Buffer returns the current GPU buffer.
func (b *GrowableBuffer) Buffer() hal.Buffer { return b.buf }

// Size returns the allocated size in bytes.
func (b *GrowableBuffer) Size() uint64 { return b.size }

// Generation changes every time the buffer is reallocated.
func (b *GrowableBuffer) Generation() uint64 { return b.generation }

// Destroy releases the buffer.
func (b *GrowableBuffer) Destroy() {
	if b == nil || b.buf == nil {
		return
	}
	b.device.DestroyBuffer(b.buf)
	b.buf = nil
	b.size = 0
}

// CreateUniformBuffer creates a uniform buffer of size bytes.
func CreateUniformBuffer(device hal.Device, label string, size uint64) (hal.Buffer, error) {
	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	return buf, nil
}
