// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import "errors"

var (
	// ErrNotRendering is returned by EndRendering without a frame in
	// progress.
	ErrNotRendering = errors.New("surface: no frame in progress")

	// ErrAlreadyRendering is returned by BeginRendering while a frame is
	// in progress.
	ErrAlreadyRendering = errors.New("surface: frame already in progress")
)
