// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package render provides the GPU-side collaborators of buffer management:
// devices, the platform's GPU registry, render targets, plane
// transformations and buffer-to-texture import.
//
// # Key Principle
//
// This module RECEIVES GPU contexts from the host compositor, it does NOT
// create its own. A Device pairs a buffer.Allocator with an optional host
// DeviceHandle (a gpucontext.DeviceProvider). If the provider exposes HAL
// types, buffers on that device can be imported as textures.
//
// # Core Types
//
//   - Device: one GPU, its allocator, host context and texture importer
//   - Platform: registry of GPUs, GPUCount drives multi-GPU decisions
//   - RenderTarget / BufferTarget: where a frame is drawn
//   - Renderer / SoftwareRenderer: bracket and fill frames
//   - Transform / PlaneTransformation: output transforms and plane rotation
//   - TextureImporter / HALTextureImporter: buffer to sampleable texture
//
// # Usage
//
//	dev := render.NewDevice(allocator, render.WithDeviceHandle(provider))
//	platform := render.NewPlatform(dev)
//
//	target := render.NewBufferTarget(buf, render.Rotate0)
//	r := render.NewSoftwareRenderer()
//	if err := r.Begin(target); err == nil {
//	    r.Clear(target, color.Black)
//	    _ = r.Finish(target)
//	}
//
// # Thread Safety
//
// Platform is safe for concurrent use. Renderers and targets belong to the
// rendering goroutine.
package render
