// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/gogpu/deferred"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// UniformAlignment is the dynamic offset alignment of uniform bindings
// (minUniformBufferOffsetAlignment of the default limits).
const UniformAlignment = 256

// initialUniformSlots is the slot capacity of a new DynamicUniformBuffer.
const initialUniformSlots = 64

var (
	// ErrBlockSize is returned when a block does not match the allocator's block size.
	ErrBlockSize = errors.New("gfx: uniform block size mismatch")

	// ErrUniformCapacity is returned when a slot lies past the largest buffer
	// the allocator may create.
	ErrUniformCapacity = errors.New("gfx: uniform slot out of range")
)

// DynamicUniformBuffer packs many fixed-size uniform blocks into one GPU
// buffer bound with a dynamic offset. Slots are chosen by the caller.
//
// The content of a slot is valid only for the frame in which it was
// written: [DynamicUniformBuffer.Reset] is called at the start of every
// frame. Writing past the capacity doubles the capacity, reallocates the
// GPU buffer and discards every staged slot. [DynamicUniformBuffer.Generation]
// changes whenever that happens so bind groups referencing the old buffer
// can be rebuilt.
//
// All methods are safe for concurrent use.
type DynamicUniformBuffer struct {
	mu sync.RWMutex

	device    hal.Device
	label     string
	blockSize uint64
	stride    uint64

	maxSlots uint32

	buf        hal.Buffer
	capacity   uint32
	staging    []byte
	used       uint32 // highest written slot + 1
	generation uint64
}

// NewDynamicUniformBuffer creates an allocator for blocks of blockSize bytes.
// The buffer never grows past the MaxBufferSize of the default limits.
func NewDynamicUniformBuffer(device hal.Device, label string, blockSize uint64) (*DynamicUniformBuffer, error) {
	return NewDynamicUniformBufferLimit(device, label, blockSize, gputypes.DefaultLimits().MaxBufferSize)
}

// NewDynamicUniformBufferLimit is NewDynamicUniformBuffer with an explicit
// upper bound on the buffer size in bytes.
func NewDynamicUniformBufferLimit(device hal.Device, label string, blockSize, maxSize uint64) (*DynamicUniformBuffer, error) {
	if blockSize == 0 {
		return nil, fmt.Errorf("%w: zero block size", ErrBlockSize)
	}
	b := &DynamicUniformBuffer{
		device:    device,
		label:     label,
		blockSize: blockSize,
		stride:    alignUp(blockSize, UniformAlignment),
	}
	b.maxSlots = slotLimit(b.stride, maxSize)
	if b.maxSlots == 0 {
		return nil, fmt.Errorf("%w: %d bytes hold no %d-byte slot", ErrUniformCapacity, maxSize, b.stride)
	}
	if err := b.allocate(min(initialUniformSlots, b.maxSlots)); err != nil {
		return nil, err
	}
	return b, nil
}

func alignUp(n, align uint64) uint64 {
	return (n + align - 1) &^ (align - 1)
}

// slotLimit is the number of stride-sized slots that fit in maxSize bytes
// while every slot offset still fits a uint32 dynamic offset.
func slotLimit(stride, maxSize uint64) uint32 {
	slots := maxSize / stride
	if byOffset := uint64(math.MaxUint32)/stride + 1; slots > byOffset {
		slots = byOffset
	}
	if slots > math.MaxUint32 {
		slots = math.MaxUint32
	}
	return uint32(slots)
}

// allocate replaces the GPU buffer with one holding capacity slots.
// Must be called with mu held for writing (or before b is shared).
func (b *DynamicUniformBuffer) allocate(capacity uint32) error {
	size := b.stride * uint64(capacity)
	buf, err := b.device.CreateBuffer(&hal.BufferDescriptor{
		Label: b.label,
		Size:  size,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create %s buffer (%d bytes): %w", b.label, size, err)
	}
	if b.buf != nil {
		b.device.DestroyBuffer(b.buf)
	}
	b.buf = buf
	b.capacity = capacity
	b.staging = make([]byte, size)
	b.used = 0
	b.generation++
	deferred.Logger().Debug("gfx: uniform buffer allocated",
		"label", b.label, "slots", capacity, "stride", b.stride)
	return nil
}

// Write stages block at slot. A slot beyond the capacity grows the buffer,
// which invalidates every previously written slot of this frame.
func (b *DynamicUniformBuffer) Write(slot uint32, block []byte) error {
	if uint64(len(block)) != b.blockSize {
		return fmt.Errorf("%w: got %d bytes, want %d", ErrBlockSize, len(block), b.blockSize)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if slot >= b.maxSlots {
		return fmt.Errorf("%w: slot %d, %s holds at most %d", ErrUniformCapacity, slot, b.label, b.maxSlots)
	}
	if slot >= b.capacity {
		capacity := uint64(b.capacity)
		for uint64(slot) >= capacity {
			capacity *= 2
		}
		if err := b.allocate(uint32(min(capacity, uint64(b.maxSlots)))); err != nil {
			return err
		}
	}

	off := uint64(slot) * b.stride
	copy(b.staging[off:off+b.blockSize], block)
	if slot+1 > b.used {
		b.used = slot + 1
	}
	return nil
}

// Reset logically empties the allocator. Capacity is kept.
func (b *DynamicUniformBuffer) Reset() {
	b.mu.Lock()
	b.used = 0
	b.mu.Unlock()
}

// Flush uploads every staged slot to the GPU buffer.
func (b *DynamicUniformBuffer) Flush(queue hal.Queue) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.used == 0 || b.buf == nil {
		return
	}
	queue.WriteBuffer(b.buf, 0, b.staging[:uint64(b.used)*b.stride])
}

// Offset returns the dynamic offset of slot. Write rejects every slot whose
// offset would not fit.
func (b *DynamicUniformBuffer) Offset(slot uint32) uint32 {
	return uint32(uint64(slot) * b.stride) //nolint:gosec // slots below maxSlots have offsets within uint32
}

// MaxSlots returns the number of slots the buffer may grow to.
func (b *DynamicUniformBuffer) MaxSlots() uint32 { return b.maxSlots }

// Buffer returns the current GPU buffer. It changes when the allocator grows.
func (b *DynamicUniformBuffer) Buffer() hal.Buffer {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.buf
}

// BlockSize returns the size of one block in bytes.
func (b *DynamicUniformBuffer) BlockSize() uint64 { return b.blockSize }

// Stride returns the distance between slots in bytes.
func (b *DynamicUniformBuffer) Stride() uint64 { return b.stride }

// Capacity returns the number of slots the buffer holds.
func (b *DynamicUniformBuffer) Capacity() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.capacity
}

// Len returns the number of slots written since the last Reset or growth.
func (b *DynamicUniformBuffer) Len() uint32 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.used
}

// Generation identifies the current GPU buffer.
func (b *DynamicUniformBuffer) Generation() uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.generation
}

// Destroy releases the GPU buffer.
func (b *DynamicUniformBuffer) Destroy() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buf != nil {
		b.device.DestroyBuffer(b.buf)
		b.buf = nil
	}
	b.staging = nil
	b.capacity = 0
	b.used = 0
}

// EntityUniformsSize is the encoded size of [EntityUniforms].
const EntityUniformsSize = 128

// EntityUniforms is the per-entity block: the full transform and the model
// matrix, both column-major.
type EntityUniforms struct {
	Transform [16]float32
	Model     [16]float32
}

// Bytes encodes u in little-endian std140 layout.
func (u *EntityUniforms) Bytes() []byte {
	out := make([]byte, EntityUniformsSize)
	putMat4(out[0:64], &u.Transform)
	putMat4(out[64:128], &u.Model)
	return out
}

// FrameUniformsSize is the encoded size of [FrameUniforms].
const FrameUniformsSize = 96

// FrameUniforms is the per-frame block shared by every world pipeline.
type FrameUniforms struct {
	LightmapAnimScales [16]float32
	CameraPos          [4]float32
	Time               float32
	RFullbright        uint32
}

// Bytes encodes u in little-endian std140 layout.
func (u *FrameUniforms) Bytes() []byte {
	out := make([]byte, FrameUniformsSize)
	putMat4(out[0:64], &u.LightmapAnimScales)
	for i, v := range u.CameraPos {
		binary.LittleEndian.PutUint32(out[64+i*4:], math.Float32bits(v))
	}
	binary.LittleEndian.PutUint32(out[80:], math.Float32bits(u.Time))
	binary.LittleEndian.PutUint32(out[84:], u.RFullbright)
	return out
}

func putMat4(dst []byte, m *[16]float32) {
	for i, v := range m {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
