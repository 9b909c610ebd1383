// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ui

// ScreenSpaceVertexTranslate maps the pixel position (x, y) on a display of
// w x h pixels to normalized device coordinates.
func ScreenSpaceVertexTranslate(displayW, displayH uint32, x, y int32) (float32, float32) {
	w := int32(displayW) //nolint:gosec // display sizes fit in int32
	h := int32(displayH) //nolint:gosec // display sizes fit in int32
	return float32(x*2-w) / float32(displayW),
		float32(y*2-h) / float32(displayH)
}

// ScreenSpaceVertexScale returns the NDC size of a quadW x quadH pixel quad.
func ScreenSpaceVertexScale(displayW, displayH, quadW, quadH uint32) (float32, float32) {
	return float32(quadW*2) / float32(displayW),
		float32(quadH*2) / float32(displayH)
}

// ScreenSpaceVertexTransform returns the column-major matrix placing a unit
// quad at pixel origin (x, y) with size quadW x quadH: translation applied
// after scale.
func ScreenSpaceVertexTransform(displayW, displayH, quadW, quadH uint32, x, y int32) [16]float32 {
	tx, ty := ScreenSpaceVertexTranslate(displayW, displayH, x, y)
	sx, sy := ScreenSpaceVertexScale(displayW, displayH, quadW, quadH)
	return [16]float32{
		sx, 0, 0, 0,
		0, sy, 0, 0,
		0, 0, 1, 0,
		tx, ty, 0, 1,
	}
}
