// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"image"
	"testing"

	"github.com/gogpu/scanout/buffer"
)

// memAllocation is a single-plane heap allocation.
type memAllocation struct {
	size     image.Point
	format   buffer.Format
	data     []byte
	mappable bool
}

func (a *memAllocation) Size() image.Point         { return a.size }
func (a *memAllocation) Format() buffer.Format     { return a.format }
func (a *memAllocation) Modifier() buffer.Modifier { return buffer.ModifierLinear }
func (a *memAllocation) PlaneCount() int           { return 1 }
func (a *memAllocation) Plane(int) buffer.Plane {
	return buffer.Plane{Handle: 1, Stride: uint32(a.size.X * 4)}
}
func (a *memAllocation) ExportPlane(int) (int, error) { return -1, errors.New("not exportable") }
func (a *memAllocation) Unmap()                       {}
func (a *memAllocation) Destroy()                     {}

func (a *memAllocation) Map(buffer.MapFlags) ([]byte, error) {
	if !a.mappable {
		return nil, buffer.ErrMapping
	}
	return a.data, nil
}

type memAllocator struct{ name string }

func (m memAllocator) Name() string { return m.name }

func (m memAllocator) Allocate(size image.Point, format buffer.Format, _ []buffer.Modifier, _ buffer.Usage) (buffer.Allocation, error) {
	return &memAllocation{size: size, format: format, data: make([]byte, size.X*size.Y*4), mappable: true}, nil
}

func (m memAllocator) ImportSinglePlane(buffer.SinglePlaneImport, buffer.Usage) (buffer.Allocation, error) {
	return nil, buffer.ErrImport
}

func (m memAllocator) ImportPlanes(buffer.Descriptor, buffer.Usage) (buffer.Allocation, error) {
	return nil, buffer.ErrImport
}

func newTestBuffer(t *testing.T, w, h int, format buffer.Format, mappable bool) *buffer.Buffer {
	t.Helper()
	a := &memAllocation{size: image.Pt(w, h), format: format, data: make([]byte, w*h*4), mappable: mappable}
	b, err := buffer.New(memAllocator{name: "mem"}, a)
	if err != nil {
		t.Fatalf("buffer.New() error = %v", err)
	}
	t.Cleanup(b.Unref)
	return b
}
