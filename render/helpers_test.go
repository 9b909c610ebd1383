// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/deferred/asset"
	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

var errInjected = errors.New("injected failure")

// countingDevice records texture, pipeline and encoder creation.
type countingDevice struct {
	hal.Device

	textures  int
	pipelines []uint32 // multisample count per created pipeline
	encoders  int
	binds     []string // labels of created bind groups

	// failTexture makes the n-th CreateTexture call (1-based) fail.
	failTexture int
	// failPipeline makes the n-th CreateRenderPipeline call (1-based) fail.
	failPipeline int
}

func (d *countingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.textures++
	if d.failTexture > 0 && d.textures == d.failTexture {
		return nil, errInjected
	}
	return d.Device.CreateTexture(desc)
}

func (d *countingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.pipelines = append(d.pipelines, desc.Multisample.Count)
	if d.failPipeline > 0 && len(d.pipelines) == d.failPipeline {
		return nil, errInjected
	}
	return d.Device.CreateRenderPipeline(desc)
}

func (d *countingDevice) CreateBindGroup(desc *hal.BindGroupDescriptor) (hal.BindGroup, error) {
	d.binds = append(d.binds, desc.Label)
	return d.Device.CreateBindGroup(desc)
}

// bindCount returns how many bind groups labeled label were created.
func (d *countingDevice) bindCount(label string) int {
	n := 0
	for _, l := range d.binds {
		if l == label {
			n++
		}
	}
	return n
}

func (d *countingDevice) CreateCommandEncoder(desc *hal.CommandEncoderDescriptor) (hal.CommandEncoder, error) {
	d.encoders++
	return d.Device.CreateCommandEncoder(desc)
}

var testExtent = gfx.Extent2D{Width: 320, Height: 240}

// newTestState builds a state from the synthetic assets on a counting noop
// device.
func newTestState(t *testing.T, sampleCount uint32, opts ...Option) (*GraphicsState, *countingDevice) {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	counting := &countingDevice{Device: device}
	s, err := New(counting, queue, testExtent, sampleCount, asset.Synthetic(), opts...)
	if err != nil {
		cleanup()
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		s.Destroy()
		cleanup()
	})
	return s, counting
}
