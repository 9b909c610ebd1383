// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ui turns the per-frame UI state into batched draws in the final
// pass.
//
// Each active surface (HUD, then the console or menu overlay) appends quad
// and glyph commands to a frame [Arena]. After every surface has
// contributed, quads are drawn with one instanced draw and glyphs with a
// second, so text always lands above pictures in the same pass.
//
// Screen coordinates are pixels with the origin at the bottom-left corner
// and y pointing up.
package ui
