// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package asset reads the static data the renderer needs at construction:
// the 256-entry color palette and the WAD2 archive holding UI pictures and
// the console character set.
//
// Assets are opened through a [Source], which is either a directory on disk
// ([Dir]) or any [io/fs.FS] ([FS]). Names use forward slashes, e.g.
// "gfx/palette.lmp".
package asset
