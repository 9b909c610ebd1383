// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop device and queue for tests.
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

// countingDevice wraps a device and records the objects created through it.
type countingDevice struct {
	hal.Device

	textures  []hal.TextureDescriptor
	shaders   []string
	pipelines []uint32 // multisample count per created pipeline
	buffers   []uint64

	pipeLayouts     int
	shadersAlive    int
	layoutsAlive    int
	nilLayoutBuilds int

	// failTexture makes the n-th CreateTexture call (1-based) fail.
	failTexture int
	// failPipeLayout makes the n-th CreatePipelineLayout call (1-based) fail.
	failPipeLayout int
}

func (d *countingDevice) CreateTexture(desc *hal.TextureDescriptor) (hal.Texture, error) {
	d.textures = append(d.textures, *desc)
	if d.failTexture > 0 && len(d.textures) == d.failTexture {
		return nil, errInjected
	}
	return d.Device.CreateTexture(desc)
}

// labeledView tags a view with the label it was created under. Noop views
// are indistinguishable otherwise.
type labeledView struct {
	hal.TextureView
	label string
}

func (d *countingDevice) CreateTextureView(tex hal.Texture, desc *hal.TextureViewDescriptor) (hal.TextureView, error) {
	view, err := d.Device.CreateTextureView(tex, desc)
	if err != nil {
		return nil, err
	}
	return &labeledView{TextureView: view, label: desc.Label}, nil
}

func (d *countingDevice) DestroyTextureView(view hal.TextureView) {
	if lv, ok := view.(*labeledView); ok {
		view = lv.TextureView
	}
	d.Device.DestroyTextureView(view)
}

// viewLabel returns the label a view was created under by a countingDevice.
func viewLabel(view hal.TextureView) string {
	if lv, ok := view.(*labeledView); ok {
		return lv.label
	}
	return ""
}

func (d *countingDevice) CreateShaderModule(desc *hal.ShaderModuleDescriptor) (hal.ShaderModule, error) {
	d.shaders = append(d.shaders, desc.Source.WGSL)
	d.shadersAlive++
	return d.Device.CreateShaderModule(desc)
}

func (d *countingDevice) DestroyShaderModule(m hal.ShaderModule) {
	d.shadersAlive--
	d.Device.DestroyShaderModule(m)
}

func (d *countingDevice) CreateBindGroupLayout(desc *hal.BindGroupLayoutDescriptor) (hal.BindGroupLayout, error) {
	d.layoutsAlive++
	return d.Device.CreateBindGroupLayout(desc)
}

func (d *countingDevice) DestroyBindGroupLayout(l hal.BindGroupLayout) {
	d.layoutsAlive--
	d.Device.DestroyBindGroupLayout(l)
}

func (d *countingDevice) CreatePipelineLayout(desc *hal.PipelineLayoutDescriptor) (hal.PipelineLayout, error) {
	d.pipeLayouts++
	if d.failPipeLayout > 0 && d.pipeLayouts == d.failPipeLayout {
		return nil, errInjected
	}
	return d.Device.CreatePipelineLayout(desc)
}

func (d *countingDevice) CreateRenderPipeline(desc *hal.RenderPipelineDescriptor) (hal.RenderPipeline, error) {
	d.pipelines = append(d.pipelines, desc.Multisample.Count)
	if desc.Layout == nil || desc.Vertex.Module == nil {
		d.nilLayoutBuilds++
	}
	return d.Device.CreateRenderPipeline(desc)
}

func (d *countingDevice) CreateBuffer(desc *hal.BufferDescriptor) (hal.Buffer, error) {
	d.buffers = append(d.buffers, desc.Size)
	return d.Device.CreateBuffer(desc)
}

// recordingPass captures draw calls recorded into it.
type recordingPass struct {
	calls []string
}

func (p *recordingPass) SetPipeline(hal.RenderPipeline) { p.calls = append(p.calls, "pipeline") }

func (p *recordingPass) SetBindGroup(uint32, hal.BindGroup, []uint32) {
	p.calls = append(p.calls, "bind")
}

func (p *recordingPass) Draw(vertexCount, instanceCount, _, _ uint32) {
	p.calls = append(p.calls, "draw")
}
