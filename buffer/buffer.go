// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"fmt"
	"image"
	"slices"
	"sync/atomic"

	"github.com/gogpu/scanout"
)

// Allocation is a native GPU memory object made by an Allocator.
type Allocation interface {
	// Size returns the allocation size in pixels.
	Size() image.Point

	// Format returns the pixel format.
	Format() Format

	// Modifier returns the layout modifier, ModifierInvalid if implicit.
	Modifier() Modifier

	// PlaneCount returns the number of planes, in [1, MaxPlanes].
	PlaneCount() int

	// Plane returns the handle, stride and offset of plane i.
	Plane(i int) Plane

	// ExportPlane returns a new file descriptor for plane i. The caller
	// owns the returned descriptor.
	ExportPlane(i int) (int, error)

	// Map maps the allocation for CPU access.
	Map(flags MapFlags) ([]byte, error)

	// Unmap releases a mapping obtained with Map.
	Unmap()

	// Destroy frees the allocation.
	Destroy()
}

// Allocator creates and imports allocations on one GPU device.
type Allocator interface {
	// Name identifies the device in logs.
	Name() string

	// Allocate creates an allocation. An empty modifiers list requests an
	// implicit layout. Failures wrap ErrAllocation.
	Allocate(size image.Point, format Format, modifiers []Modifier, usage Usage) (Allocation, error)

	// ImportSinglePlane imports a single fd with an implicit layout.
	// Failures wrap ErrImport. The fd stays owned by the caller.
	ImportSinglePlane(req SinglePlaneImport, usage Usage) (Allocation, error)

	// ImportPlanes imports a multi-plane descriptor with an explicit
	// modifier. Failures wrap ErrImport. The fds stay owned by the caller.
	ImportPlanes(desc Descriptor, usage Usage) (Allocation, error)
}

// Recycler takes back the allocation of a ReleaseToSurface buffer when its
// last reference is dropped.
type Recycler interface {
	Recycle(b *Buffer)
}

// Release selects what happens to a buffer's backing allocation when its
// reference count reaches zero.
type Release uint8

const (
	// ReleaseDestroy destroys the allocation.
	ReleaseDestroy Release = iota

	// ReleaseToSurface returns the allocation to the producing surface.
	ReleaseToSurface

	// ReleaseExternal unreferences the imported client buffer and destroys
	// the local import.
	ReleaseExternal
)

// String returns the strategy name.
func (r Release) String() string {
	switch r {
	case ReleaseDestroy:
		return "destroy"
	case ReleaseToSurface:
		return "surface"
	case ReleaseExternal:
		return "external"
	default:
		return fmt.Sprintf("Release(%d)", uint8(r))
	}
}

var nextID atomic.Uint64

// Buffer is a reference-counted GPU buffer object.
//
// A new Buffer starts with one reference owned by its creator.
type Buffer struct {
	id     uint64
	device Allocator
	alloc  Allocation

	size       image.Point
	format     Format
	modifier   Modifier
	planeCount int
	handles    [MaxPlanes]uint32
	strides    [MaxPlanes]uint32
	offsets    [MaxPlanes]uint32

	// fds holds exported descriptors; -1 when not exported.
	fds      [MaxPlanes]int
	exported bool

	data   []byte
	mapped bool

	refs      atomic.Int32
	destroyed atomic.Bool

	release  Release
	recycler Recycler
	client   ClientBuffer

	// peer is the source buffer of a peer import, kept alive because its
	// memory backs this one.
	peer *Buffer
}

// New wraps a pre-existing allocation. The buffer owns the allocation and
// destroys it on release.
func New(dev Allocator, alloc Allocation) (*Buffer, error) {
	return newBuffer(dev, alloc, ReleaseDestroy)
}

// NewPooled wraps an allocation that belongs to a surface pool. When the
// last reference is dropped the allocation goes back to r.
func NewPooled(dev Allocator, alloc Allocation, r Recycler) (*Buffer, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil recycler", ErrAllocation)
	}
	b, err := newBuffer(dev, alloc, ReleaseToSurface)
	if err != nil {
		return nil, err
	}
	b.recycler = r
	return b, nil
}

func newBuffer(dev Allocator, alloc Allocation, release Release) (*Buffer, error) {
	if alloc == nil {
		return nil, fmt.Errorf("%w: nil allocation", ErrAllocation)
	}
	n := alloc.PlaneCount()
	if n < 1 || n > MaxPlanes {
		return nil, fmt.Errorf("%w: plane count %d", ErrInvalidDescriptor, n)
	}
	b := &Buffer{
		id:         nextID.Add(1),
		device:     dev,
		alloc:      alloc,
		size:       alloc.Size(),
		format:     alloc.Format(),
		modifier:   alloc.Modifier(),
		planeCount: n,
		release:    release,
		fds:        [MaxPlanes]int{-1, -1, -1, -1},
	}
	for i := range n {
		p := alloc.Plane(i)
		b.handles[i] = p.Handle
		b.strides[i] = p.Stride
		b.offsets[i] = p.Offset
	}
	b.refs.Store(1)
	return b, nil
}

// ID returns a process-unique identifier.
func (b *Buffer) ID() uint64 { return b.id }

// Device returns the allocator the buffer lives on.
func (b *Buffer) Device() Allocator { return b.device }

// Allocation returns the backing allocation.
func (b *Buffer) Allocation() Allocation { return b.alloc }

// Size returns the size in pixels.
func (b *Buffer) Size() image.Point { return b.size }

// Format returns the pixel format.
func (b *Buffer) Format() Format { return b.format }

// Modifier returns the layout modifier.
func (b *Buffer) Modifier() Modifier { return b.modifier }

// PlaneCount returns the number of planes.
func (b *Buffer) PlaneCount() int { return b.planeCount }

// Handles returns the per-plane handles. Entries past PlaneCount are zero.
func (b *Buffer) Handles() [MaxPlanes]uint32 { return b.handles }

// Strides returns the per-plane strides. Entries past PlaneCount are zero.
func (b *Buffer) Strides() [MaxPlanes]uint32 { return b.strides }

// Offsets returns the per-plane offsets. Entries past PlaneCount are zero.
func (b *Buffer) Offsets() [MaxPlanes]uint32 { return b.offsets }

// Release returns the release strategy chosen at construction.
func (b *Buffer) Release() Release { return b.release }

// ClientBuffer returns the imported client buffer, or nil.
func (b *Buffer) ClientBuffer() ClientBuffer { return b.client }

// Refs returns the current reference count.
func (b *Buffer) Refs() int { return int(b.refs.Load()) }

// Ref adds a reference and returns b.
func (b *Buffer) Ref() *Buffer {
	if b.refs.Add(1) <= 1 {
		panic("buffer: Ref on released buffer")
	}
	return b
}

// Unref drops a reference. Dropping the last one destroys the buffer:
// the client buffer is unreferenced, the mapping and exported descriptors
// are released, and the allocation is recycled or destroyed according to
// the release strategy.
func (b *Buffer) Unref() {
	n := b.refs.Add(-1)
	switch {
	case n > 0:
		return
	case n < 0:
		panic("buffer: Unref of released buffer")
	}
	if !b.destroyed.CompareAndSwap(false, true) {
		return
	}
	b.destroy()
}

func (b *Buffer) destroy() {
	if b.client != nil {
		b.client.Unref()
		b.client = nil
	}
	if b.mapped {
		b.alloc.Unmap()
		b.data = nil
		b.mapped = false
	}
	b.CloseDescriptors()

	switch b.release {
	case ReleaseToSurface:
		b.recycler.Recycle(b)
	default:
		b.alloc.Destroy()
	}

	if b.peer != nil {
		peer := b.peer
		b.peer = nil
		peer.Unref()
	}
}

// Map maps the buffer for CPU access. Once mapped, further calls return the
// cached mapping without remapping. The boolean is false if the buffer
// cannot be mapped.
func (b *Buffer) Map(flags MapFlags) ([]byte, bool) {
	if b.mapped {
		return b.data, true
	}
	data, err := b.alloc.Map(flags)
	if err != nil {
		scanout.Logger().Debug("buffer: map failed", "id", b.id, "format", b.format, "err", err)
		return nil, false
	}
	b.data = data
	b.mapped = true
	return data, true
}

// MappedData returns the cached mapping, or nil if the buffer is not mapped.
func (b *Buffer) MappedData() []byte { return b.data }

// ExportDescriptors exports one file descriptor per plane. The result is
// cached; the descriptors are owned by the buffer and stay valid until
// CloseDescriptors or destruction. If any plane fails to export, every
// descriptor obtained by this call is closed and false is returned.
func (b *Buffer) ExportDescriptors() ([]int, bool) {
	if b.exported {
		return slices.Clone(b.fds[:b.planeCount]), true
	}
	fds := [MaxPlanes]int{-1, -1, -1, -1}
	for i := range b.planeCount {
		fd, err := b.alloc.ExportPlane(i)
		if err != nil {
			for j := range i {
				closeFD(fds[j])
			}
			scanout.Logger().Warn("buffer: plane export failed",
				"id", b.id, "plane", i, "device", deviceName(b.device), "err", err)
			return nil, false
		}
		fds[i] = fd
	}
	b.fds = fds
	b.exported = true
	return slices.Clone(b.fds[:b.planeCount]), true
}

// Descriptors returns the already exported descriptors without exporting.
func (b *Buffer) Descriptors() ([]int, bool) {
	if !b.exported {
		return nil, false
	}
	return slices.Clone(b.fds[:b.planeCount]), true
}

// CloseDescriptors closes exported descriptors. It is safe to call more
// than once.
func (b *Buffer) CloseDescriptors() {
	if !b.exported {
		return
	}
	for i := range b.planeCount {
		closeFD(b.fds[i])
		b.fds[i] = -1
	}
	b.exported = false
}

// Descriptor returns the external descriptor of the exported planes, or
// false if the buffer has not been exported. The fds remain owned by b.
func (b *Buffer) Descriptor() (Descriptor, bool) {
	if !b.exported {
		return Descriptor{}, false
	}
	d := Descriptor{
		Size:     b.size,
		Format:   b.format,
		Modifier: b.modifier,
		Planes:   make([]DescriptorPlane, b.planeCount),
	}
	for i := range b.planeCount {
		d.Planes[i] = DescriptorPlane{FD: b.fds[i], Stride: b.strides[i], Offset: b.offsets[i]}
	}
	return d, true
}

// String returns a short description for logs.
func (b *Buffer) String() string {
	return fmt.Sprintf("buffer#%d(%dx%d %v %v planes=%d)",
		b.id, b.size.X, b.size.Y, b.format, b.modifier, b.planeCount)
}

func deviceName(a Allocator) string {
	if a == nil {
		return ""
	}
	return a.Name()
}
