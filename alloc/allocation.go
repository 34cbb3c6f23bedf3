// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package alloc

import (
	"fmt"
	"image"

	"golang.org/x/sys/unix"

	"github.com/gogpu/scanout/buffer"
)

// allocation is a memfd-backed buffer.Allocation. Allocated buffers keep
// every plane in one file; imports keep one duplicated fd per plane.
type allocation struct {
	dev      *Device
	fds      []int
	size     image.Point
	format   buffer.Format
	modifier buffer.Modifier
	planes   []buffer.Plane

	// length is the mapped size of the first file.
	length  int
	charged uint64

	data      []byte
	destroyed bool
}

func (a *allocation) Size() image.Point         { return a.size }
func (a *allocation) Format() buffer.Format     { return a.format }
func (a *allocation) Modifier() buffer.Modifier { return a.modifier }
func (a *allocation) PlaneCount() int           { return len(a.planes) }
func (a *allocation) Plane(i int) buffer.Plane  { return a.planes[i] }

// fd returns the file backing plane i.
func (a *allocation) fd(i int) int {
	return a.fds[min(i, len(a.fds)-1)]
}

// ExportPlane duplicates the file descriptor of plane i.
func (a *allocation) ExportPlane(i int) (int, error) {
	if a.destroyed {
		return -1, fmt.Errorf("alloc: export of destroyed allocation")
	}
	if i < 0 || i >= len(a.planes) {
		return -1, fmt.Errorf("alloc: plane %d out of range", i)
	}
	return dupFD(a.fd(i))
}

// Map maps the first file. Shared memory is always mapped read-write so a
// cached mapping serves any later request. Plane offsets index into the
// returned slice when all planes share one file.
func (a *allocation) Map(buffer.MapFlags) ([]byte, error) {
	if a.destroyed {
		return nil, fmt.Errorf("%w: destroyed", buffer.ErrMapping)
	}
	if a.data != nil {
		return a.data, nil
	}
	data, err := unix.Mmap(a.fds[0], 0, a.length, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: mmap: %w", buffer.ErrMapping, err)
	}
	a.data = data
	return data, nil
}

// Unmap releases the mapping.
func (a *allocation) Unmap() {
	if a.data == nil {
		return
	}
	_ = unix.Munmap(a.data)
	a.data = nil
}

// Destroy unmaps, closes the files and returns the memory to the budget.
func (a *allocation) Destroy() {
	if a.destroyed {
		return
	}
	a.destroyed = true
	a.Unmap()
	for _, fd := range a.fds {
		_ = unix.Close(fd)
	}
	a.fds = nil
	if a.charged > 0 {
		a.dev.budget.Release(a.charged)
	}
	a.dev.live.Add(-1)
}
