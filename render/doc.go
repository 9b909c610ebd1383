// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package render owns the GPU-resident state of the deferred pipeline and
// records one frame at a time.
//
// # Device integration
//
// The package RECEIVES a device and queue from the host. It never opens
// an adapter itself. Hosts exposing [gpucontext.DeviceProvider] are
// unwrapped with [DeviceFromProvider]. Tests open the noop HAL backend.
//
// # Graphics state
//
// [GraphicsState] is the single owner of the pass targets, samplers, bind
// groups, uniform buffers, every pipeline and the static asset data. It is
// interchangeable: after [New] or [GraphicsState.Update] any consumer that
// cached a view or bind group must fetch it again. The [DeferredRenderer]
// and [PostProcessRenderer] cache bind groups over target views, so callers
// run [RebuildRenderers] after every update.
//
// # Frames
//
// [Frame] is the per-frame node. [Frame.Run] validates the presentation
// format, resets the UI arena, then records
//
//	deferred lighting (connected and world ready)
//	final: post-process (same condition) + UI quads + UI glyphs
//	blit onto the surface
//
// into one command buffer and submits it. A missing surface aborts the
// frame before anything is encoded.
//
// # Usage
//
//	state, err := render.New(device, queue, extent, 4, asset.Dir(root))
//	if err != nil {
//	    return err
//	}
//	defer state.Destroy()
//
//	uiRenderer, err := ui.NewRenderer(device)
//	...
//	frame := render.NewFrame(state, lighting, post, uiRenderer)
//	for {
//	    err := frame.Run(input, render.Surface{View: view, Format: format, Extent: extent})
//	    if errors.Is(err, render.ErrSurfaceUnavailable) {
//	        continue
//	    }
//	    ...
//	}
package render
