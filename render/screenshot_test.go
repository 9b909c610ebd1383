// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import (
	"bytes"
	"image"
	"testing"

	"golang.org/x/image/bmp"
)

func TestUnpadRows(t *testing.T) {
	// 2x2 image with rows padded to 16 bytes.
	data := make([]byte, 32)
	copy(data[0:8], []byte{1, 2, 3, 4, 5, 6, 7, 8})
	copy(data[16:24], []byte{9, 10, 11, 12, 13, 14, 15, 16})

	img := unpadRows(data, 2, 2, 16)
	if img.Bounds() != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	if !bytes.Equal(img.Pix, want) {
		t.Errorf("Pix = %v, want %v", img.Pix, want)
	}
}

func TestScreenshot(t *testing.T) {
	f, _ := newTestFrame(t, 1)
	if err := f.Run(FrameInput{}, testSurface(t, f)); err != nil {
		t.Fatalf("Run: %v", err)
	}

	img, err := Screenshot(f.State())
	if err != nil {
		t.Fatalf("Screenshot: %v", err)
	}
	if img.Bounds().Dx() != int(testExtent.Width) || img.Bounds().Dy() != int(testExtent.Height) {
		t.Errorf("bounds = %v, want %dx%d", img.Bounds(), testExtent.Width, testExtent.Height)
	}

	var buf bytes.Buffer
	if err := WriteBMP(&buf, img); err != nil {
		t.Fatalf("WriteBMP: %v", err)
	}
	cfg, err := bmp.DecodeConfig(&buf)
	if err != nil {
		t.Fatalf("DecodeConfig: %v", err)
	}
	if cfg.Width != int(testExtent.Width) || cfg.Height != int(testExtent.Height) {
		t.Errorf("BMP is %dx%d", cfg.Width, cfg.Height)
	}
}
