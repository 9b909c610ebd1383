// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"time"

	"github.com/gogpu/deferred/gfx"
	"github.com/gogpu/deferred/render/ui"
	"github.com/gogpu/gputypes"
)

// Option configures a GraphicsState or a Frame.
//
// Example:
//
//	state, err := render.New(device, queue, extent, 4, assets,
//		render.WithPresentationFormat(gputypes.TextureFormatBGRA8Unorm))
type Option func(*options)

type options struct {
	clock              func() time.Time
	consoleProportion  float32
	maxLights          int
	presentationFormat gputypes.TextureFormat
}

func defaultOptions() options {
	return options{
		clock:              time.Now,
		consoleProportion:  ui.DefaultConsoleProportion,
		maxLights:          gfx.MaxLights,
		presentationFormat: gputypes.TextureFormatBGRA8UnormSrgb,
	}
}

func applyOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithClock replaces the wall clock used for elapsed time when no snapshot
// is present.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}

// WithConsoleProportion sets the display fraction the console covers in
// game. Values outside (0, 1] are ignored.
func WithConsoleProportion(p float32) Option {
	return func(o *options) {
		if p > 0 && p <= 1 {
			o.consoleProportion = p
		}
	}
}

// WithMaxLights lowers the per-frame light cap. It is clamped to
// [0, gfx.MaxLights].
func WithMaxLights(n int) Option {
	return func(o *options) {
		o.maxLights = min(max(n, 0), gfx.MaxLights)
	}
}

// WithPresentationFormat sets the initial surface format the blit
// pipeline targets.
func WithPresentationFormat(format gputypes.TextureFormat) Option {
	return func(o *options) {
		o.presentationFormat = format
	}
}
