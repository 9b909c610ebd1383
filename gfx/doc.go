// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gfx owns the GPU objects of the frame renderer: pass targets,
// the dynamic uniform allocator, samplers, the UI atlas and every render
// pipeline, together with their embedded WGSL shaders.
//
// All objects are created on a [hal.Device] and must be released with
// their Destroy method. Destroy is nil-safe and may be called more than
// once.
//
// Pipelines expose Rebuild(sampleCount), which replaces the render pipeline
// in place when the multisample count changes. Pass targets are never
// mutated. A resize replaces them wholesale.
package gfx
