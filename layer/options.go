// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import "github.com/gogpu/scanout/render"

// Option configures a DisplayControllerLayer.
type Option func(*DisplayControllerLayer)

// WithPlatform sets the GPU registry consulted for the GPU count. Without
// it the layer assumes the pipeline's device is the only GPU.
func WithPlatform(p *render.Platform) Option {
	return func(l *DisplayControllerLayer) {
		l.platform = p
	}
}

// WithRenderDevice composites on d instead of the pipeline's device.
// Finished frames are imported on the pipeline's device for scanout.
func WithRenderDevice(d *render.Device) Option {
	return func(l *DisplayControllerLayer) {
		l.renderDevice = d
	}
}
