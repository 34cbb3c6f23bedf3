// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"fmt"
	"image"
)

// MaxPlanes is the largest plane count display hardware formats use.
const MaxPlanes = 4

// Plane describes one memory plane of an allocation.
type Plane struct {
	// Handle is the device-local handle of the memory object.
	Handle uint32

	// Stride is the number of bytes per row.
	Stride uint32

	// Offset is the byte offset of the plane within the memory object.
	Offset uint32
}

// DescriptorPlane is one plane of an external descriptor.
type DescriptorPlane struct {
	FD     int
	Stride uint32
	Offset uint32
}

// Descriptor is the external, cross-process form of a buffer: one file
// descriptor per plane plus a single format and modifier shared by all
// planes. File descriptors in a Descriptor are borrowed; importing never
// takes ownership of them.
type Descriptor struct {
	Size     image.Point
	Format   Format
	Modifier Modifier
	Planes   []DescriptorPlane
}

// Validate checks the descriptor's shape. A descriptor with no planes, more
// than MaxPlanes planes, a negative fd, or a non-positive size is invalid.
// For linear and implicit layouts the plane count must match the format;
// explicit vendor modifiers may add auxiliary planes.
func (d Descriptor) Validate() error {
	n := len(d.Planes)
	switch {
	case n == 0:
		return fmt.Errorf("%w: no planes", ErrInvalidDescriptor)
	case n > MaxPlanes:
		return fmt.Errorf("%w: %d planes", ErrInvalidDescriptor, n)
	case d.Size.X <= 0 || d.Size.Y <= 0:
		return fmt.Errorf("%w: size %v", ErrInvalidDescriptor, d.Size)
	}
	for i, p := range d.Planes {
		if p.FD < 0 {
			return fmt.Errorf("%w: plane %d has no fd", ErrInvalidDescriptor, i)
		}
	}
	want := d.Format.PlaneCount()
	if want == 0 {
		return nil
	}
	if d.Modifier == ModifierLinear || d.Modifier == ModifierInvalid {
		if n != want {
			return fmt.Errorf("%w: format %v needs %d planes, got %d", ErrInvalidDescriptor, d.Format, want, n)
		}
	} else if n < want {
		return fmt.Errorf("%w: format %v needs at least %d planes, got %d", ErrInvalidDescriptor, d.Format, want, n)
	}
	return nil
}

// needsModifierImport reports whether the descriptor must go through the
// multi-plane-with-modifier import path. Only a single plane at offset zero
// with an implicit modifier can use the plain single-fd path.
func (d Descriptor) needsModifierImport() bool {
	return d.Modifier != ModifierInvalid || len(d.Planes) > 1 || d.Planes[0].Offset > 0
}

// SinglePlaneImport is the simplified import request: one fd, implicit
// modifier, zero offset.
type SinglePlaneImport struct {
	FD     int
	Size   image.Point
	Stride uint32
	Format Format
}

// ClientBuffer is a buffer attached to a client surface by the protocol
// layer. Shared-memory buffers implement only this interface.
type ClientBuffer interface {
	// Ref keeps the client buffer alive.
	Ref()

	// Unref releases a reference taken with Ref.
	Unref()

	// Size returns the buffer size in pixels.
	Size() image.Point
}

// DmaBufBuffer is a client buffer backed by GPU memory planes that can be
// imported into a device.
type DmaBufBuffer interface {
	ClientBuffer

	// Descriptor returns the planes, format and modifier. The fds remain
	// owned by the client buffer.
	Descriptor() Descriptor
}
