// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

// Renderer prepares render targets for drawing and finishes frames.
//
// The compositor's scene renderer draws between Begin and Finish. A render
// surface uses the Renderer to bracket each frame so that the buffer is
// complete before it is handed to the display pipeline.
//
// Renderers are NOT thread-safe. Each renderer should be used from a single
// goroutine.
type Renderer interface {
	// Begin makes target current for drawing.
	Begin(target RenderTarget) error

	// Finish completes all drawing into target. An error means the frame
	// content is undefined, e.g. after the GPU context was lost.
	Finish(target RenderTarget) error
}
