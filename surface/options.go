// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/render"
)

// Option configures a Surface.
type Option func(*Surface)

// WithDepth sets the ring depth, clamped to
// [scanout.MinBufferDepth, scanout.MaxBufferDepth]. Zero selects
// scanout.DefaultBufferDepth.
func WithDepth(n int) Option {
	return func(s *Surface) {
		if n == 0 {
			n = scanout.DefaultBufferDepth
		}
		s.depth = min(max(n, scanout.MinBufferDepth), scanout.MaxBufferDepth)
	}
}

// WithScanoutDevice sets the GPU that scans the rendered buffers out. If it
// differs from the rendering GPU, every finished buffer is imported on it.
func WithScanoutDevice(d *render.Device) Option {
	return func(s *Surface) {
		s.scanout = d
	}
}
