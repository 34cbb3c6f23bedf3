// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package buffer provides reference-counted GPU buffer objects and the bridge
// between them and client dmabuf descriptors.
//
// # Buffer Objects
//
// A Buffer wraps a native Allocation made by an Allocator (one per GPU).
// It carries up to four planes, each described by a handle, stride and
// offset, together with the size, the fourcc Format and the layout Modifier.
// Plane entries beyond PlaneCount are always zero.
//
// Buffers are shared between the render surface that produced them, the
// display pipeline and the protocol layer through an atomic reference count.
// What happens to the backing allocation when the count drops to zero is
// fixed at construction by a Release strategy:
//
//   - ReleaseDestroy: the buffer owns its allocation and destroys it
//   - ReleaseToSurface: the allocation goes back to the producing surface
//   - ReleaseExternal: the imported client buffer is unreferenced and the
//     local import is destroyed
//
// # Import and Export
//
//	b, err := buffer.ImportClient(dev, clientBuffer)
//	if errors.Is(err, buffer.ErrImport) {
//	    // fall back to composition
//	}
//
//	fds, ok := b.ExportDescriptors() // all planes or none
//	peer, err := buffer.ImportFromPeer(otherGPU, b, buffer.UsageScanout)
//
// Buffers are not safe for concurrent use apart from Ref and Unref.
package buffer
