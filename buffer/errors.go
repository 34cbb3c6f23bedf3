// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import "errors"

// Buffer errors. None of them is fatal: every failure leaves the compositing
// path available.
var (
	// ErrAllocation means the device could not satisfy the requested size,
	// format, modifiers or usage. Callers may retry with degraded usage.
	ErrAllocation = errors.New("buffer: allocation failed")

	// ErrImport means a descriptor or a peer buffer could not be imported
	// into a device's address space. Callers fall back to composition.
	ErrImport = errors.New("buffer: import failed")

	// ErrMapping means the buffer cannot be mapped for CPU access.
	ErrMapping = errors.New("buffer: mapping unavailable")

	// ErrTestCommit means the display hardware rejected a prospective
	// configuration during a dry run.
	ErrTestCommit = errors.New("buffer: test commit rejected")

	// ErrResourceExhausted means every buffer in a ring is still held by the
	// display pipeline. Retry once the pipeline releases a buffer.
	ErrResourceExhausted = errors.New("buffer: no free buffer in ring")

	// ErrInvalidDescriptor means a client buffer descriptor is malformed.
	ErrInvalidDescriptor = errors.New("buffer: invalid descriptor")
)
