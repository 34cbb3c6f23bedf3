// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"errors"
	"image"

	"github.com/gogpu/scanout/buffer"
	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/render"
)

type fakeAllocation struct {
	size      image.Point
	format    buffer.Format
	modifier  buffer.Modifier
	data      []byte
	destroyed int
}

func (a *fakeAllocation) Size() image.Point         { return a.size }
func (a *fakeAllocation) Format() buffer.Format     { return a.format }
func (a *fakeAllocation) Modifier() buffer.Modifier { return a.modifier }
func (a *fakeAllocation) PlaneCount() int           { return 1 }
func (a *fakeAllocation) Plane(int) buffer.Plane {
	return buffer.Plane{Handle: 1, Stride: uint32(a.size.X * 4)}
}
func (a *fakeAllocation) ExportPlane(int) (int, error) { return -1, errors.New("not exportable") }
func (a *fakeAllocation) Map(buffer.MapFlags) ([]byte, error) {
	if a.data == nil {
		a.data = make([]byte, a.size.X*a.size.Y*4)
	}
	return a.data, nil
}
func (a *fakeAllocation) Unmap()   {}
func (a *fakeAllocation) Destroy() { a.destroyed++ }

type fakeAllocator struct {
	name       string
	failImport bool
	imports    int
	allocated  []*fakeAllocation
}

func (f *fakeAllocator) Name() string { return f.name }

func (f *fakeAllocator) Allocate(size image.Point, format buffer.Format, modifiers []buffer.Modifier, usage buffer.Usage) (buffer.Allocation, error) {
	mod := buffer.ModifierInvalid
	switch {
	case len(modifiers) > 0:
		mod = modifiers[0]
	case usage&buffer.UsageLinear != 0:
		mod = buffer.ModifierLinear
	}
	return f.track(&fakeAllocation{size: size, format: format, modifier: mod}), nil
}

func (f *fakeAllocator) ImportSinglePlane(req buffer.SinglePlaneImport, _ buffer.Usage) (buffer.Allocation, error) {
	f.imports++
	if f.failImport {
		return nil, errors.New("rejected")
	}
	return f.track(&fakeAllocation{size: req.Size, format: req.Format, modifier: buffer.ModifierInvalid}), nil
}

func (f *fakeAllocator) ImportPlanes(desc buffer.Descriptor, _ buffer.Usage) (buffer.Allocation, error) {
	f.imports++
	if f.failImport {
		return nil, errors.New("rejected")
	}
	return f.track(&fakeAllocation{size: desc.Size, format: desc.Format, modifier: desc.Modifier}), nil
}

func (f *fakeAllocator) track(a *fakeAllocation) *fakeAllocation {
	f.allocated = append(f.allocated, a)
	return a
}

func (f *fakeAllocator) live() int {
	n := 0
	for _, a := range f.allocated {
		if a.destroyed == 0 {
			n++
		}
	}
	return n
}

type fakePipeline struct {
	device            *render.Device
	size              image.Point
	renderOrientation render.PlaneTransformation
	bufferOrientation render.PlaneTransformation
	formats           buffer.FormatTable
	testErr           error
	tested            []*buffer.Buffer
}

func (p *fakePipeline) Device() *render.Device                        { return p.device }
func (p *fakePipeline) BufferSize() image.Point                       { return p.size }
func (p *fakePipeline) RenderOrientation() render.PlaneTransformation { return p.renderOrientation }
func (p *fakePipeline) BufferOrientation() render.PlaneTransformation { return p.bufferOrientation }
func (p *fakePipeline) Formats() buffer.FormatTable                   { return p.formats }
func (p *fakePipeline) TestScanout(b *buffer.Buffer) error {
	p.tested = append(p.tested, b)
	return p.testErr
}

type fakeDmaBuf struct {
	desc buffer.Descriptor
	refs int
}

func (c *fakeDmaBuf) Ref()                          { c.refs++ }
func (c *fakeDmaBuf) Unref()                        { c.refs-- }
func (c *fakeDmaBuf) Size() image.Point             { return c.desc.Size }
func (c *fakeDmaBuf) Descriptor() buffer.Descriptor { return c.desc }

type fakeShm struct{ size image.Point }

func (c *fakeShm) Ref()              {}
func (c *fakeShm) Unref()            {}
func (c *fakeShm) Size() image.Point { return c.size }

type fakeSurface struct {
	transform render.Transform
	buf       buffer.ClientBuffer
}

func (s *fakeSurface) BufferTransform() render.Transform { return s.transform }
func (s *fakeSurface) Buffer() buffer.ClientBuffer       { return s.buf }

type fakeItem struct {
	surface ClientSurface
	damage  damage.Region
	resets  int
}

func (i *fakeItem) Surface() ClientSurface { return i.surface }
func (i *fakeItem) Damage() damage.Region  { return i.damage }
func (i *fakeItem) ResetDamage() {
	i.damage = nil
	i.resets++
}

type recordingFeedback struct {
	successes []ClientSurface
	failures  []buffer.FormatTable
	rendering int
}

func (f *recordingFeedback) ScanoutSuccessful(s ClientSurface) {
	f.successes = append(f.successes, s)
}

func (f *recordingFeedback) ScanoutFailed(_ ClientSurface, formats buffer.FormatTable) {
	f.failures = append(f.failures, formats)
}

func (f *recordingFeedback) RenderingSurface() { f.rendering++ }
