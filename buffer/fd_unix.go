// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build unix

package buffer

import "golang.org/x/sys/unix"

// closeFD closes an exported descriptor. Replaced in tests.
var closeFD = func(fd int) {
	if fd < 0 {
		return
	}
	_ = unix.Close(fd)
}
