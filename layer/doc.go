// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package layer decides, once per frame and output layer, whether a
// client's buffer is handed to the display as-is or the frame is
// composited into a buffer from the layer's render surface.
//
// # Direct scanout
//
// DisplayControllerLayer.Scanout adopts a client buffer only if every
// check passes, in order:
//
//  1. direct scanout is not disabled by configuration
//  2. the client's buffer transform, inverted, equals the plane orientation
//  3. the buffer has planes and exactly the pipeline's buffer size
//  4. the pipeline supports the buffer's format
//  5. an implicit modifier is only accepted on a single-GPU system
//  6. the pipeline supports the modifier for that format
//  7. the buffer imports on the pipeline's device
//  8. a test commit with the buffer succeeds
//
// Any failure leaves the layer compositing. Failures of checks 2 to 8 are
// reported to the client through Feedback so it can pick a different
// format or modifier for its next buffers.
//
// # Buffers
//
// A layer keeps two slots: the composited buffer from the last EndFrame and
// the directly scanned out client buffer. The composited buffer survives a
// direct scanout frame so the layer can fall back without a gap.
//
// # Variants
//
// Both DisplayControllerLayer and OffscreenLayer implement OutputLayer. The
// offscreen variant serves virtual outputs: it always repaints fully, never
// scans out and can dump every frame as PNG.
package layer
