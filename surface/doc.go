// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the render surface of an output: a small ring of
// buffer objects that the compositor renders into and hands to the display
// pipeline, one per frame.
//
// # Ring
//
// A Surface owns up to Depth buffer allocations. Each frame BeginRendering
// hands out a buffer the display pipeline no longer holds, EndRendering
// finishes it and transfers a reference to the caller. When the last
// reference is dropped the allocation returns to the ring. A buffer still
// referenced by the display pipeline is never handed back to the renderer;
// if every buffer is in flight BeginRendering fails with
// buffer.ErrResourceExhausted.
//
// Buffers are allocated lazily. If the requested size or formats no longer
// fit, the whole ring is recreated; buffers of the old ring that are still
// in flight are destroyed once released.
//
// # Allocation Fallback
//
// Creating a ring tries the preferred formats in order, and for each format
// degrades usage step by step:
//
//  1. explicit modifiers advertised by the display pipeline
//  2. implicit modifier
//  3. implicit modifier with linear layout
//
// # Buffer Age
//
// Every frame reports the buffer's age and the region that must be
// repainted because it changed since the buffer was last rendered:
//
//	info, err := s.BeginRendering(size, render.Rotate0, render.Rotate0, formats)
//	if err != nil {
//	    return err
//	}
//	draw(info.Target, info.Repaint.Union(frameDamage))
//	buf, damaged, err := s.EndRendering(render.Rotate0, frameDamage)
//
// # Multiple GPUs
//
// WithScanoutDevice makes the surface render on one GPU and scan out on
// another: finished buffers are exported and imported on the scanout device.
//
// Surfaces are NOT thread-safe. They belong to the rendering goroutine.
package surface
