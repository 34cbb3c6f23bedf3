// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build linux

package alloc

import (
	"fmt"
	"image"
	"slices"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/buffer"
)

// strideAlign is the row alignment of allocated planes in bytes.
const strideAlign = 64

// Device allocates buffers in memfd shared memory.
type Device struct {
	name    string
	budget  *Budget
	handles atomic.Uint32
	live    atomic.Int64
}

// Option configures a Device.
type Option func(*Device)

// WithBudget limits the memory of allocated buffers to bytes.
func WithBudget(bytes uint64) Option {
	return func(d *Device) {
		d.budget = NewBudget(bytes)
	}
}

// WithSharedBudget charges allocations to an existing budget, so several
// devices can share one limit.
func WithSharedBudget(b *Budget) Option {
	return func(d *Device) {
		if b != nil {
			d.budget = b
		}
	}
}

// NewDevice creates a device named name.
func NewDevice(name string, opts ...Option) *Device {
	d := &Device{name: name}
	for _, opt := range opts {
		opt(d)
	}
	if d.budget == nil {
		d.budget = NewBudget(DefaultBudgetMB << 20)
	}
	return d
}

// Name returns the device name.
func (d *Device) Name() string { return d.name }

// Budget returns the memory budget allocations are charged to.
func (d *Device) Budget() *Budget { return d.budget }

// Live returns the number of allocations and imports not yet destroyed.
func (d *Device) Live() int { return int(d.live.Load()) }

// Allocate creates a linear buffer. An explicit modifier list must include
// buffer.ModifierLinear. Without modifiers the layout is implicit, unless
// usage contains buffer.UsageLinear.
func (d *Device) Allocate(size image.Point, format buffer.Format, modifiers []buffer.Modifier, usage buffer.Usage) (buffer.Allocation, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: size %v", buffer.ErrAllocation, size)
	}
	nplanes := format.PlaneCount()
	if nplanes == 0 {
		return nil, fmt.Errorf("%w: format %v not supported by %s", buffer.ErrAllocation, format, d.name)
	}

	modifier := buffer.ModifierInvalid
	switch {
	case len(modifiers) > 0:
		if !slices.Contains(modifiers, buffer.ModifierLinear) {
			return nil, fmt.Errorf("%w: %s supports only linear layout, asked for %v",
				buffer.ErrAllocation, d.name, modifiers)
		}
		modifier = buffer.ModifierLinear
	case usage&buffer.UsageLinear != 0:
		modifier = buffer.ModifierLinear
	}

	planes := make([]buffer.Plane, nplanes)
	var total uint32
	for i := range planes {
		rowBytes, rows := format.PlaneLayout(i, size.X, size.Y)
		stride := alignUp(uint32(rowBytes), strideAlign) //nolint:gosec // G115: bounded by size
		planes[i] = buffer.Plane{
			Handle: d.handles.Add(1),
			Stride: stride,
			Offset: total,
		}
		total += stride * uint32(rows) //nolint:gosec // G115: bounded by size
	}

	if err := d.budget.Reserve(uint64(total)); err != nil {
		return nil, fmt.Errorf("%w: %w", buffer.ErrAllocation, err)
	}
	fd, err := unix.MemfdCreate(fmt.Sprintf("%s-%v", d.name, format), unix.MFD_CLOEXEC)
	if err != nil {
		d.budget.Release(uint64(total))
		return nil, fmt.Errorf("%w: memfd: %w", buffer.ErrAllocation, err)
	}
	if err := unix.Ftruncate(fd, int64(total)); err != nil {
		_ = unix.Close(fd)
		d.budget.Release(uint64(total))
		return nil, fmt.Errorf("%w: ftruncate: %w", buffer.ErrAllocation, err)
	}

	d.live.Add(1)
	scanout.Logger().Debug("alloc: allocated",
		"device", d.name, "size", size, "format", format, "modifier", modifier, "bytes", total)
	return &allocation{
		dev:      d,
		fds:      []int{fd},
		size:     size,
		format:   format,
		modifier: modifier,
		planes:   planes,
		length:   int(total),
		charged:  uint64(total),
	}, nil
}

// ImportSinglePlane imports one fd with an implicit layout. The fd is
// duplicated; the caller keeps ownership of req.FD.
func (d *Device) ImportSinglePlane(req buffer.SinglePlaneImport, _ buffer.Usage) (buffer.Allocation, error) {
	return d.importPlanes(buffer.Descriptor{
		Size:     req.Size,
		Format:   req.Format,
		Modifier: buffer.ModifierInvalid,
		Planes:   []buffer.DescriptorPlane{{FD: req.FD, Stride: req.Stride}},
	})
}

// ImportPlanes imports a multi-plane descriptor. Only linear and implicit
// layouts are accepted. The fds are duplicated; the caller keeps ownership.
func (d *Device) ImportPlanes(desc buffer.Descriptor, _ buffer.Usage) (buffer.Allocation, error) {
	if desc.Modifier != buffer.ModifierLinear && desc.Modifier != buffer.ModifierInvalid {
		return nil, fmt.Errorf("%w: %s cannot import modifier %v", buffer.ErrImport, d.name, desc.Modifier)
	}
	return d.importPlanes(desc)
}

func (d *Device) importPlanes(desc buffer.Descriptor) (buffer.Allocation, error) {
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", buffer.ErrImport, err)
	}

	fds := make([]int, 0, len(desc.Planes))
	closeAll := func() {
		for _, fd := range fds {
			_ = unix.Close(fd)
		}
	}
	planes := make([]buffer.Plane, len(desc.Planes))
	length := 0
	for i, p := range desc.Planes {
		var st unix.Stat_t
		if err := unix.Fstat(p.FD, &st); err != nil {
			closeAll()
			return nil, fmt.Errorf("%w: plane %d: %w", buffer.ErrImport, i, err)
		}
		rowBytes, rows := desc.Format.PlaneLayout(i, desc.Size.X, desc.Size.Y)
		if int(p.Stride) < rowBytes {
			closeAll()
			return nil, fmt.Errorf("%w: plane %d stride %d below %d", buffer.ErrImport, i, p.Stride, rowBytes)
		}
		need := int64(p.Offset) + int64(p.Stride)*int64(rows)
		if st.Size < need {
			closeAll()
			return nil, fmt.Errorf("%w: plane %d needs %d bytes, fd has %d", buffer.ErrImport, i, need, st.Size)
		}
		if i == 0 {
			length = int(st.Size)
		}
		fd, err := dupFD(p.FD)
		if err != nil {
			closeAll()
			return nil, fmt.Errorf("%w: plane %d: %w", buffer.ErrImport, i, err)
		}
		fds = append(fds, fd)
		planes[i] = buffer.Plane{Handle: d.handles.Add(1), Stride: p.Stride, Offset: p.Offset}
	}

	d.live.Add(1)
	return &allocation{
		dev:      d,
		fds:      fds,
		size:     desc.Size,
		format:   desc.Format,
		modifier: desc.Modifier,
		planes:   planes,
		length:   length,
	}, nil
}

func dupFD(fd int) (int, error) {
	return unix.FcntlInt(uintptr(fd), unix.F_DUPFD_CLOEXEC, 0) //nolint:gosec // G115: fd is non-negative
}

func alignUp(n, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}

// Ensure Device implements buffer.Allocator.
var _ buffer.Allocator = (*Device)(nil)
