// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package render

import "errors"

var (
	// ErrAsset is wrapped by construction errors caused by a missing or
	// corrupt asset.
	ErrAsset = errors.New("render: asset unavailable")

	// ErrAllocation is wrapped by construction errors caused by the device
	// rejecting an allocation.
	ErrAllocation = errors.New("render: GPU allocation failed")

	// ErrSampleCount is returned for an unsupported multisample count.
	ErrSampleCount = errors.New("render: unsupported sample count")

	// ErrSurfaceUnavailable aborts a frame whose presentation surface has no
	// view this tick. Nothing is submitted.
	ErrSurfaceUnavailable = errors.New("render: presentation surface unavailable")
)

// StateError reports a failed GraphicsState construction or rebuild.
// Use errors.Is with ErrAsset, ErrAllocation or ErrSampleCount to classify it.
type StateError struct {
	Op  string
	Err error
}

func (e *StateError) Error() string {
	return "render: " + e.Op + ": " + e.Err.Error()
}

func (e *StateError) Unwrap() error { return e.Err }
