// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host application.
//
// The renderer receives its device from the host, it does not create one.
// This lets the graphics state share the device and queue the host uses to
// present, so the blit pass can render straight into the host's surface.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider.
type DeviceHandle = gpucontext.DeviceProvider

// ErrNoHALDevice is returned by DeviceFromProvider when the provider does
// not expose HAL objects.
var ErrNoHALDevice = errors.New("render: provider does not expose a HAL device")

// DeviceFromProvider extracts the HAL device and queue from a host
// provider. The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func DeviceFromProvider(provider any) (hal.Device, hal.Queue, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, nil, ErrNoHALDevice
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, nil, errors.Join(ErrNoHALDevice, errors.New("HalDevice is not hal.Device"))
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, nil, errors.Join(ErrNoHALDevice, errors.New("HalQueue is not hal.Queue"))
	}
	return device, queue, nil
}

// SurfaceFormatOf returns the presentation format the host reports, or
// fallback when the host has none.
func SurfaceFormatOf(h DeviceHandle, fallback gputypes.TextureFormat) gputypes.TextureFormat {
	if h == nil {
		return fallback
	}
	if f := h.SurfaceFormat(); f != gputypes.TextureFormatUndefined {
		return f
	}
	return fallback
}

// NullDeviceHandle is a DeviceHandle without a device, for hosts that run
// the renderer headless.
type NullDeviceHandle struct{}

// Device returns nil.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat returns TextureFormatUndefined.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

var _ DeviceHandle = NullDeviceHandle{}
