// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "errors"

var (
	// ErrNilTarget is returned when a renderer is given no target.
	ErrNilTarget = errors.New("render: nil target")

	// ErrNotMappable is returned for targets or buffers without CPU access.
	ErrNotMappable = errors.New("render: target does not support CPU rendering")

	// ErrUnsupportedFormat is returned for pixel formats the operation
	// cannot handle.
	ErrUnsupportedFormat = errors.New("render: unsupported pixel format")

	// ErrNoHAL is returned when a device provider does not expose HAL types.
	ErrNoHAL = errors.New("render: provider does not expose HAL types")
)
