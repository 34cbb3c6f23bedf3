// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package alloc provides a buffer.Allocator backed by anonymous shared
// memory (memfd). It stands in for a GPU's buffer manager on headless and
// virtual outputs and in tests: allocations are linear, exportable as file
// descriptors, importable from descriptors and mappable for CPU access.
//
// Allocations are charged to a Budget. Only linear layouts are supported;
// requests for explicit vendor modifiers fail the way a real driver rejects
// an unsupported modifier, so callers exercise their fallback paths.
//
//	dev := alloc.NewDevice("virtual0", alloc.WithBudget(64<<20))
//	b, err := buffer.NewFromAllocation(dev, image.Pt(1920, 1080),
//	    buffer.FormatXRGB8888, nil, buffer.UsageRendering)
//
// The package is available on Linux only.
package alloc
