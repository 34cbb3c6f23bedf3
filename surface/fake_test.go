// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"image"
	"image/color"
	"slices"
	"testing"

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
	return a.data, nil
}
func (a *fakeAllocation) Unmap()   {}
func (a *fakeAllocation) Destroy() { a.destroyed++ }

type allocRequest struct {
	modifiers []buffer.Modifier
	usage     buffer.Usage
}

// fakeAllocator allocates heap memory. reject decides which requests fail.
type fakeAllocator struct {
	name      string
	reject    func(req allocRequest) bool
	requests  []allocRequest
	allocated []*fakeAllocation
}

func (f *fakeAllocator) Name() string { return f.name }

func (f *fakeAllocator) Allocate(size image.Point, format buffer.Format, modifiers []buffer.Modifier, usage buffer.Usage) (buffer.Allocation, error) {
	req := allocRequest{modifiers: slices.Clone(modifiers), usage: usage}
	f.requests = append(f.requests, req)
	if f.reject != nil && f.reject(req) {
		return nil, errors.New("unsupported")
	}
	mod := buffer.ModifierInvalid
	switch {
	case len(modifiers) > 0:
		mod = modifiers[0]
	case usage&buffer.UsageLinear != 0:
		mod = buffer.ModifierLinear
	}
	a := &fakeAllocation{size: size, format: format, modifier: mod, data: make([]byte, size.X*size.Y*4)}
	f.allocated = append(f.allocated, a)
	return a, nil
}

func (f *fakeAllocator) ImportSinglePlane(buffer.SinglePlaneImport, buffer.Usage) (buffer.Allocation, error) {
	return nil, buffer.ErrImport
}

func (f *fakeAllocator) ImportPlanes(buffer.Descriptor, buffer.Usage) (buffer.Allocation, error) {
	return nil, buffer.ErrImport
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

// recordingRenderer wraps the software renderer and can fail on demand.
type recordingRenderer struct {
	*render.SoftwareRenderer
	failBegin  bool
	failFinish bool
}

func newRecordingRenderer() *recordingRenderer {
	return &recordingRenderer{SoftwareRenderer: render.NewSoftwareRenderer()}
}

func (r *recordingRenderer) Begin(t render.RenderTarget) error {
	if r.failBegin {
		return errors.New("context lost")
	}
	return r.SoftwareRenderer.Begin(t)
}

func (r *recordingRenderer) Finish(t render.RenderTarget) error {
	if r.failFinish {
		return errors.New("context lost")
	}
	return r.SoftwareRenderer.Finish(t)
}

var xrgb = buffer.FormatTable{
	buffer.FormatXRGB8888: {buffer.ModifierLinear, buffer.ModifierInvalid},
}

// renderFrame runs one full frame with the given damage.
func renderFrame(t *testing.T, s *Surface, size image.Point, dmg damage.Region) (*buffer.Buffer, BeginFrameInfo) {
	t.Helper()
	return renderFrameWith(t, s, size, xrgb, dmg)
}

func renderFrameWith(t *testing.T, s *Surface, size image.Point, formats buffer.FormatTable, dmg damage.Region) (*buffer.Buffer, BeginFrameInfo) {
	t.Helper()
	info, err := s.BeginRendering(size, render.Rotate0, render.Rotate0, formats)
	if err != nil {
		t.Fatalf("BeginRendering() error = %v", err)
	}
	if r, ok := s.renderer.(*recordingRenderer); ok {
		r.Clear(info.Target, color.White)
	}
	b, _, err := s.EndRendering(render.Rotate0, dmg)
	if err != nil {
		t.Fatalf("EndRendering() error = %v", err)
	}
	return b, info
}
