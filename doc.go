// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package deferred is the frame-rendering core of a first-person game client
// built on gogpu/wgpu.
//
// # Overview
//
// A frame moves through a fixed sequence of GPU passes:
//
//	geometry (host) -> deferred lighting -> final (post-process + UI) -> blit
//
// The geometry pass is recorded by the host into the G-buffer owned by
// [github.com/gogpu/deferred/render.GraphicsState]. This module records the
// rest.
//
// # Packages
//
//   - gfx: GPU objects. Pass targets, the dynamic uniform allocator,
//     samplers, every render pipeline and the embedded WGSL shaders.
//   - render: GraphicsState, the deferred and post-process renderers,
//     camera and light math, and the per-frame Frame node.
//   - render/ui: screen-space layout, the UI state model and the batched
//     quad/glyph renderers used for the HUD, menu and console.
//   - asset: palette and WAD2 archive loading from a virtual file system.
//   - config: TOML configuration for resolution, multisampling and paths.
//
// # Logging
//
// Every package logs through [Logger]. Nothing is printed until
// [SetLogger] is called.
package deferred
