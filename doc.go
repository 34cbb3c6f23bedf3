// Package scanout manages GPU buffers on their way to a display and decides,
// frame by frame, whether a client's buffer can be scanned out directly or
// must be composited first.
//
// # Overview
//
// A compositor normally renders every frame into a buffer it owns and hands
// that buffer to the display controller. When a fullscreen client already
// produced a buffer that the display hardware can read as-is, the copy can
// be skipped entirely. Getting this right means negotiating pixel formats and
// layout modifiers between producer and consumer, tracking ownership of
// multi-plane buffers shared across processes and GPUs, and never recycling
// memory the display is still reading.
//
// # Architecture
//
// The module is organized leaf-first:
//   - buffer: reference-counted buffer objects and the import/export bridge
//     to client dmabuf descriptors
//   - damage: repaint regions and buffer-age damage history
//   - render: GPU devices, the platform registry, render targets, the
//     software renderer and texture import
//   - surface: the render surface swap-chain
//   - layer: the per-output scanout decision layer and its offscreen variant
//   - alloc: a memfd-backed linear allocator for headless GPUs and tests
//
// This package holds what they share: Config and the logger.
//
// # Threading
//
// Buffers, surfaces and layers belong to the compositor's render thread.
// Only buffer reference counts and the logger may be touched from other
// goroutines.
//
// # Configuration
//
//	cfg := scanout.ConfigFromEnv() // honors SCANOUT_NO_DIRECT_SCANOUT=1
//	l := layer.NewDisplayControllerLayer(pipeline, renderer, feedback, cfg)
package scanout

// Version is the current version of the module.
const Version = "0.1.0"
