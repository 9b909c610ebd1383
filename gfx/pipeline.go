// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/deferred"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// PassEncoder is the part of hal.RenderPassEncoder that renderers record
// into. Every hal.RenderPassEncoder satisfies it.
type PassEncoder interface {
	SetPipeline(pipeline hal.RenderPipeline)
	SetBindGroup(index uint32, group hal.BindGroup, offsets []uint32)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
}

// ValidSampleCount reports whether n is a multisample count a pipeline can
// be built with.
func ValidSampleCount(n uint32) bool {
	switch n {
	case 1, 2, 4, 8:
		return true
	}
	return false
}

// MustMatchSampleCount panics when a pipeline built for pipelineSamples is
// about to render into a target with targetSamples.
func MustMatchSampleCount(what string, pipelineSamples, targetSamples uint32) {
	if pipelineSamples != targetSamples {
		panic(fmt.Sprintf("gfx: %s pipeline has sample count %d but its target has %d",
			what, pipelineSamples, targetSamples))
	}
}

// pipelineSpec describes everything a renderPipeline needs to (re)build
// itself for a given sample count.
type pipelineSpec struct {
	label string

	// source returns the WGSL for a sample count.
	source func(sampleCount uint32) string

	// variant groups sample counts that share a shader and layouts.
	// Nil means a single variant.
	variant func(sampleCount uint32) int

	// shared layouts occupy the first bind group slots and are not owned.
	shared []hal.BindGroupLayout

	// layouts returns the owned bind group layouts for a sample count.
	layouts func(sampleCount uint32) []hal.BindGroupLayoutDescriptor

	vertexBuffers []gputypes.VertexBufferLayout
	targets       func() []gputypes.ColorTargetState
	depthStencil  *hal.DepthStencilState

	// fixedSamples pins the effective sample count. Zero follows Rebuild.
	fixedSamples uint32
}

// renderPipeline owns the shader module, bind group layouts, pipeline
// layout and render pipeline described by a pipelineSpec.
type renderPipeline struct {
	device hal.Device
	spec   pipelineSpec

	shader      hal.ShaderModule
	owned       []hal.BindGroupLayout
	pipeLayout  hal.PipelineLayout
	pipeline    hal.RenderPipeline
	sampleCount uint32
	variant     int
}

func newRenderPipeline(device hal.Device, spec pipelineSpec, sampleCount uint32) (renderPipeline, error) {
	p := renderPipeline{device: device, spec: spec}
	if err := p.Rebuild(sampleCount); err != nil {
		p.Destroy()
		return renderPipeline{}, err
	}
	return p, nil
}

func (p *renderPipeline) effectiveSamples(requested uint32) uint32 {
	if p.spec.fixedSamples != 0 {
		return p.spec.fixedSamples
	}
	return requested
}

func (p *renderPipeline) variantOf(sampleCount uint32) int {
	if p.spec.variant == nil {
		return 0
	}
	return p.spec.variant(sampleCount)
}

// Rebuild recreates the render pipeline for sampleCount. The shader and
// layouts are kept unless sampleCount selects a different shader variant.
// An unsupported sample count is a programming error and panics.
func (p *renderPipeline) Rebuild(sampleCount uint32) error {
	if !ValidSampleCount(sampleCount) {
		panic(fmt.Sprintf("gfx: %s: unsupported sample count %d", p.spec.label, sampleCount))
	}
	samples := p.effectiveSamples(sampleCount)

	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.shader != nil && p.variantOf(samples) != p.variant {
		p.destroyProgram()
	}
	if p.shader == nil {
		if err := p.createProgram(samples); err != nil {
			return err
		}
	}

	var fragment *hal.FragmentState
	if p.spec.targets != nil {
		fragment = &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets:    p.spec.targets(),
		}
	}
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  p.spec.label + "_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    p.spec.vertexBuffers,
		},
		Fragment:     fragment,
		DepthStencil: p.spec.depthStencil,
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: samples,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create %s pipeline: %w", p.spec.label, err)
	}
	p.pipeline = pipeline
	p.sampleCount = samples

	deferred.Logger().Debug("gfx: pipeline built", "pipeline", p.spec.label, "samples", samples)
	return nil
}

// createProgram compiles the shader and creates the owned layouts and the
// pipeline layout for samples. Nothing is kept on failure, so a later
// Rebuild starts over.
func (p *renderPipeline) createProgram(samples uint32) (err error) {
	src := p.spec.source(samples)
	if src == "" {
		return fmt.Errorf("%s shader source is empty", p.spec.label)
	}
	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  p.spec.label + "_shader",
		Source: hal.ShaderSource{WGSL: src},
	})
	if err != nil {
		return fmt.Errorf("compile %s shader: %w", p.spec.label, err)
	}

	var owned []hal.BindGroupLayout
	defer func() {
		if err == nil {
			return
		}
		for i := len(owned) - 1; i >= 0; i-- {
			p.device.DestroyBindGroupLayout(owned[i])
		}
		p.device.DestroyShaderModule(shader)
	}()

	all := append([]hal.BindGroupLayout(nil), p.spec.shared...)
	if p.spec.layouts != nil {
		for i, desc := range p.spec.layouts(samples) {
			desc.Label = fmt.Sprintf("%s_layout_%d", p.spec.label, i)
			layout, err := p.device.CreateBindGroupLayout(&desc)
			if err != nil {
				return fmt.Errorf("create %s bind group layout %d: %w", p.spec.label, i, err)
			}
			owned = append(owned, layout)
			all = append(all, layout)
		}
	}

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            p.spec.label + "_pipe_layout",
		BindGroupLayouts: all,
	})
	if err != nil {
		return fmt.Errorf("create %s pipeline layout: %w", p.spec.label, err)
	}
	p.shader, p.owned, p.pipeLayout = shader, owned, pipeLayout
	p.variant = p.variantOf(samples)
	return nil
}

// destroyProgram releases the pipeline layout, owned layouts and shader in
// reverse creation order.
func (p *renderPipeline) destroyProgram() {
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	for i := len(p.owned) - 1; i >= 0; i-- {
		p.device.DestroyBindGroupLayout(p.owned[i])
	}
	p.owned = nil
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// Destroy releases every GPU object of the pipeline. Safe to call multiple
// times.
func (p *renderPipeline) Destroy() {
	if p == nil || p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	p.destroyProgram()
}

// SampleCount returns the sample count the pipeline was last built with.
func (p *renderPipeline) SampleCount() uint32 { return p.sampleCount }

// Pipeline returns the render pipeline.
func (p *renderPipeline) Pipeline() hal.RenderPipeline { return p.pipeline }

// Layout returns the owned bind group layout at index i, counted after the
// shared layouts.
func (p *renderPipeline) Layout(i int) hal.BindGroupLayout {
	if i < 0 || i >= len(p.owned) {
		return nil
	}
	return p.owned[i]
}

// Label returns the debug label of the pipeline.
func (p *renderPipeline) Label() string { return p.spec.label }

// Common binding layout entries.

func uniformEntry(binding uint32, size uint64) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer: &gputypes.BufferBindingLayout{
			Type:           gputypes.BufferBindingTypeUniform,
			MinBindingSize: size,
		},
	}
}

func storageEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageVertex | gputypes.ShaderStageFragment,
		Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage},
	}
}

func textureEntry(binding uint32, sampleType gputypes.TextureSampleType, multisampled bool) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageFragment,
		Texture: &gputypes.TextureBindingLayout{
			SampleType:    sampleType,
			ViewDimension: gputypes.TextureViewDimension2D,
			Multisampled:  multisampled,
		},
	}
}

func samplerEntry(binding uint32) gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: gputypes.ShaderStageFragment,
		Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
	}
}

// Bind group entry helpers.

// BufferEntry binds size bytes of buf at offset.
func BufferEntry(binding uint32, buf hal.Buffer, offset, size uint64) gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{Binding: binding, Resource: gputypes.BufferBinding{
		Buffer: buf.NativeHandle(), Offset: offset, Size: size,
	}}
}

// TextureEntry binds a texture view.
func TextureEntry(binding uint32, view hal.TextureView) gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{Binding: binding, Resource: gputypes.TextureViewBinding{
		TextureView: view.NativeHandle(),
	}}
}

// SamplerEntry binds a sampler.
func SamplerEntry(binding uint32, sampler hal.Sampler) gputypes.BindGroupEntry {
	return gputypes.BindGroupEntry{Binding: binding, Resource: gputypes.SamplerBinding{
		Sampler: sampler.NativeHandle(),
	}}
}

// fullscreenTargets returns a single opaque color target of format.
func fullscreenTargets(format gputypes.TextureFormat) func() []gputypes.ColorTargetState {
	return func() []gputypes.ColorTargetState {
		return []gputypes.ColorTargetState{{Format: format, WriteMask: gputypes.ColorWriteMaskAll}}
	}
}

// blendedTargets returns a single premultiplied-alpha color target.
func blendedTargets(format gputypes.TextureFormat) func() []gputypes.ColorTargetState {
	return func() []gputypes.ColorTargetState {
		blend := gputypes.BlendStatePremultiplied()
		return []gputypes.ColorTargetState{{Format: format, Blend: &blend, WriteMask: gputypes.ColorWriteMaskAll}}
	}
}

func constSource(src string) func(uint32) string {
	return func(uint32) string { return src }
}
