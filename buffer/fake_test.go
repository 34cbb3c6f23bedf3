// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"errors"
	"image"
	"testing"
)

var errFake = errors.New("fake failure")

// fakeAllocation records what the buffer does to it.
type fakeAllocation struct {
	size     image.Point
	format   Format
	modifier Modifier
	planes   []Plane

	failExportAt int // plane index whose export fails; -1 for none
	failMap      bool
	nextFD       *int

	exportedFDs []int
	mapCalls    int
	unmapCalls  int
	destroyed   int
}

func newFakeAllocation(size image.Point, format Format, modifier Modifier, planes int) *fakeAllocation {
	fd := 100
	a := &fakeAllocation{
		size:         size,
		format:       format,
		modifier:     modifier,
		failExportAt: -1,
		nextFD:       &fd,
	}
	for i := range planes {
		a.planes = append(a.planes, Plane{
			Handle: uint32(i + 1),
			Stride: uint32(size.X * 4),
			Offset: uint32(i * size.X * size.Y * 4),
		})
	}
	return a
}

func (a *fakeAllocation) Size() image.Point  { return a.size }
func (a *fakeAllocation) Format() Format     { return a.format }
func (a *fakeAllocation) Modifier() Modifier { return a.modifier }
func (a *fakeAllocation) PlaneCount() int    { return len(a.planes) }
func (a *fakeAllocation) Plane(i int) Plane  { return a.planes[i] }

func (a *fakeAllocation) ExportPlane(i int) (int, error) {
	if i == a.failExportAt {
		return -1, errFake
	}
	*a.nextFD++
	a.exportedFDs = append(a.exportedFDs, *a.nextFD)
	return *a.nextFD, nil
}

func (a *fakeAllocation) Map(MapFlags) ([]byte, error) {
	a.mapCalls++
	if a.failMap {
		return nil, errFake
	}
	return make([]byte, a.size.X*a.size.Y*4), nil
}

func (a *fakeAllocation) Unmap()   { a.unmapCalls++ }
func (a *fakeAllocation) Destroy() { a.destroyed++ }

// fakeAllocator hands out fakeAllocations and records import requests.
type fakeAllocator struct {
	name string

	failAllocate bool
	failImport   bool

	allocated     []*fakeAllocation
	singleImports []SinglePlaneImport
	planeImports  []Descriptor
}

func (d *fakeAllocator) Name() string { return d.name }

func (d *fakeAllocator) Allocate(size image.Point, format Format, modifiers []Modifier, _ Usage) (Allocation, error) {
	if d.failAllocate {
		return nil, errFake
	}
	mod := ModifierInvalid
	if len(modifiers) > 0 {
		mod = modifiers[0]
	}
	a := newFakeAllocation(size, format, mod, max(format.PlaneCount(), 1))
	d.allocated = append(d.allocated, a)
	return a, nil
}

func (d *fakeAllocator) ImportSinglePlane(req SinglePlaneImport, _ Usage) (Allocation, error) {
	d.singleImports = append(d.singleImports, req)
	if d.failImport {
		return nil, errFake
	}
	return newFakeAllocation(req.Size, req.Format, ModifierInvalid, 1), nil
}

func (d *fakeAllocator) ImportPlanes(desc Descriptor, _ Usage) (Allocation, error) {
	d.planeImports = append(d.planeImports, desc)
	if d.failImport {
		return nil, errFake
	}
	return newFakeAllocation(desc.Size, desc.Format, desc.Modifier, len(desc.Planes)), nil
}

// fakeClient is a client dmabuf with a visible reference count.
type fakeClient struct {
	desc Descriptor
	refs int
}

func (c *fakeClient) Ref()                   { c.refs++ }
func (c *fakeClient) Unref()                 { c.refs-- }
func (c *fakeClient) Size() image.Point      { return c.desc.Size }
func (c *fakeClient) Descriptor() Descriptor { return c.desc }

type fakeRecycler struct {
	recycled []*Buffer
}

func (r *fakeRecycler) Recycle(b *Buffer) { r.recycled = append(r.recycled, b) }

// trackCloses replaces closeFD for the duration of the test.
func trackCloses(t *testing.T) *[]int {
	t.Helper()
	var closed []int
	orig := closeFD
	closeFD = func(fd int) { closed = append(closed, fd) }
	t.Cleanup(func() { closeFD = orig })
	return &closed
}
