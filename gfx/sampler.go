// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gfx

import (
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// Samplers holds the global samplers shared by every pipeline.
type Samplers struct {
	device   hal.Device
	Diffuse  hal.Sampler // linear filtering, repeat addressing
	Nearest  hal.Sampler // nearest filtering, repeat addressing
	Lightmap hal.Sampler // linear filtering, clamped addressing
}

func samplerDescriptor(label string, mode gputypes.AddressMode, filter gputypes.FilterMode) *hal.SamplerDescriptor {
	return &hal.SamplerDescriptor{
		Label:        label,
		AddressModeU: mode,
		AddressModeV: mode,
		AddressModeW: mode,
		MagFilter:    filter,
		MinFilter:    filter,
		MipmapFilter: filter,
	}
}

// NewSamplers creates the diffuse, nearest and lightmap samplers.
func NewSamplers(device hal.Device) (*Samplers, error) {
	s := &Samplers{device: device}
	var err error
	if s.Diffuse, err = device.CreateSampler(samplerDescriptor("diffuse_sampler",
		gputypes.AddressModeRepeat, gputypes.FilterModeLinear)); err != nil {
		return nil, fmt.Errorf("create diffuse sampler: %w", err)
	}
	if s.Nearest, err = device.CreateSampler(samplerDescriptor("nearest_sampler",
		gputypes.AddressModeRepeat, gputypes.FilterModeNearest)); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create nearest sampler: %w", err)
	}
	if s.Lightmap, err = device.CreateSampler(samplerDescriptor("lightmap_sampler",
		gputypes.AddressModeClampToEdge, gputypes.FilterModeLinear)); err != nil {
		s.Destroy()
		return nil, fmt.Errorf("create lightmap sampler: %w", err)
	}
	return s, nil
}

// Destroy releases all samplers.
func (s *Samplers) Destroy() {
	if s == nil || s.device == nil {
		return
	}
	for _, p := range []*hal.Sampler{&s.Lightmap, &s.Nearest, &s.Diffuse} {
		if *p != nil {
			s.device.DestroySampler(*p)
			*p = nil
		}
	}
}
