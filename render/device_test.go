// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

type halProvider struct {
	device, queue any
}

func (p halProvider) HalDevice() any { return p.device }
func (p halProvider) HalQueue() any  { return p.queue }

func TestDeviceFromProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	gotDevice, gotQueue, err := DeviceFromProvider(halProvider{device, queue})
	if err != nil {
		t.Fatalf("DeviceFromProvider: %v", err)
	}
	if gotDevice != device || gotQueue != queue {
		t.Error("provider objects not returned")
	}

	bad := []struct {
		name     string
		provider any
	}{
		{"not a provider", struct{}{}},
		{"nil", nil},
		{"wrong device type", halProvider{"device", queue}},
		{"wrong queue type", halProvider{device, 42}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := DeviceFromProvider(tt.provider); !errors.Is(err, ErrNoHALDevice) {
				t.Errorf("err = %v, want ErrNoHALDevice", err)
			}
		})
	}
}

func TestNullDeviceHandle(t *testing.T) {
	var handle DeviceHandle = NullDeviceHandle{}

	if handle.Device() != nil || handle.Queue() != nil || handle.Adapter() != nil {
		t.Error("NullDeviceHandle returned a device object")
	}
	if handle.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("NullDeviceHandle.SurfaceFormat() should return Undefined")
	}
	if got := SurfaceFormatOf(handle, gputypes.TextureFormatBGRA8Unorm); got != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("SurfaceFormatOf(null) = %v, want fallback", got)
	}
	if got := SurfaceFormatOf(nil, gputypes.TextureFormatRGBA8Unorm); got != gputypes.TextureFormatRGBA8Unorm {
		t.Errorf("SurfaceFormatOf(nil) = %v, want fallback", got)
	}
}
