// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package buffer

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/scanout"
)

// NewFromAllocation allocates a buffer on dev. An empty modifiers list
// requests an implicit layout. The buffer owns its allocation.
func NewFromAllocation(dev Allocator, size image.Point, format Format, modifiers []Modifier, usage Usage) (*Buffer, error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: nil device", ErrAllocation)
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: size %v", ErrAllocation, size)
	}
	a, err := dev.Allocate(size, format, modifiers, usage)
	if err != nil {
		return nil, wrapAs(ErrAllocation, err)
	}
	b, err := New(dev, a)
	if err != nil {
		a.Destroy()
		return nil, err
	}
	return b, nil
}

// ImportClient imports a client dmabuf into dev. Descriptors with an
// explicit modifier, more than one plane, or a non-zero first plane offset
// use the multi-plane import; everything else uses the single fd import.
//
// On success the returned buffer holds a reference on client until it is
// destroyed.
func ImportClient(dev Allocator, client DmaBufBuffer) (*Buffer, error) {
	if dev == nil || client == nil {
		return nil, fmt.Errorf("%w: nil device or client", ErrImport)
	}
	desc := client.Descriptor()
	if err := desc.Validate(); err != nil {
		return nil, wrapAs(ErrImport, err)
	}

	var (
		a   Allocation
		err error
	)
	if desc.needsModifierImport() {
		a, err = dev.ImportPlanes(desc, UsageScanout)
	} else {
		a, err = dev.ImportSinglePlane(SinglePlaneImport{
			FD:     desc.Planes[0].FD,
			Size:   desc.Size,
			Stride: desc.Planes[0].Stride,
			Format: desc.Format,
		}, UsageScanout)
	}
	if err != nil {
		scanout.Logger().Debug("buffer: client import failed",
			"device", dev.Name(), "format", desc.Format, "modifier", desc.Modifier,
			"planes", len(desc.Planes), "err", err)
		return nil, wrapAs(ErrImport, err)
	}

	b, err := newBuffer(dev, a, ReleaseExternal)
	if err != nil {
		a.Destroy()
		return nil, err
	}
	client.Ref()
	b.client = client
	return b, nil
}

// ImportFromPeer imports src, allocated on another GPU, into dev using the
// descriptors src has already exported. It fails with ErrImport if src has
// not been exported. The returned buffer keeps src alive until destroyed.
func ImportFromPeer(dev Allocator, src *Buffer, usage Usage) (*Buffer, error) {
	if dev == nil || src == nil {
		return nil, fmt.Errorf("%w: nil device or source", ErrImport)
	}
	desc, ok := src.Descriptor()
	if !ok {
		return nil, fmt.Errorf("%w: %v has no exported descriptors", ErrImport, src)
	}
	a, err := dev.ImportPlanes(desc, usage)
	if err != nil {
		scanout.Logger().Debug("buffer: peer import failed",
			"from", deviceName(src.device), "to", dev.Name(), "buffer", src.id, "err", err)
		return nil, wrapAs(ErrImport, err)
	}
	b, err := newBuffer(dev, a, ReleaseDestroy)
	if err != nil {
		a.Destroy()
		return nil, err
	}
	b.peer = src.Ref()
	return b, nil
}

// wrapAs makes sure err matches sentinel under errors.Is.
func wrapAs(sentinel, err error) error {
	if errors.Is(err, sentinel) {
		return err
	}
	return fmt.Errorf("%w: %w", sentinel, err)
}
