// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !unix

package buffer

// Exported descriptors only exist on unix systems.
var closeFD = func(int) {}
