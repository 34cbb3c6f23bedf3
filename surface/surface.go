// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/buffer"
	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/internal/cache"
	"github.com/gogpu/scanout/render"
)

// preferredFormats lists the formats a ring is created with, best first.
var preferredFormats = []buffer.Format{
	buffer.FormatXRGB8888,
	buffer.FormatARGB8888,
	buffer.FormatXBGR8888,
	buffer.FormatABGR8888,
}

// BeginFrameInfo describes the buffer handed out for a frame.
type BeginFrameInfo struct {
	// Target is the render target of the frame.
	Target *render.BufferTarget

	// Repaint is the region, in render coordinates, that changed since
	// this buffer was last rendered. The renderer must repaint it in
	// addition to the frame's own damage.
	Repaint damage.Region

	// Age is the number of frames since the buffer was last rendered,
	// counting the frame about to be rendered. 0 means its content is
	// undefined.
	Age int

	// BufferOrientation is the transformation the display plane applies.
	BufferOrientation render.PlaneTransformation
}

// Surface is the render surface of one output.
type Surface struct {
	device   *render.Device
	scanout  *render.Device
	renderer render.Renderer
	depth    int

	// Ring parameters, fixed until the ring is recreated.
	size      image.Point
	format    buffer.Format
	modifiers []buffer.Modifier
	modifier  buffer.Modifier
	usage     buffer.Usage

	ring    ring
	history *damage.History

	current *slot
	target  *render.BufferTarget
	last    *slot

	textures *cache.Cache[uint64, *render.Texture]
}

// New creates a surface rendering with r on dev. The ring is created by the
// first BeginRendering.
func New(dev *render.Device, r render.Renderer, opts ...Option) *Surface {
	s := &Surface{
		device:   dev,
		renderer: r,
		depth:    scanout.DefaultBufferDepth,
		modifier: buffer.ModifierInvalid,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.history = damage.NewHistory(s.depth)
	s.textures = cache.New[uint64, *render.Texture](s.depth, func(_ uint64, t *render.Texture) {
		t.Destroy()
	})
	return s
}

// Device returns the rendering GPU.
func (s *Surface) Device() *render.Device { return s.device }

// Depth returns the maximum number of buffers in the ring.
func (s *Surface) Depth() int { return s.depth }

// Size returns the size of the current ring, zero if there is none.
func (s *Surface) Size() image.Point { return s.size }

// Format returns the format and modifier of the current ring.
func (s *Surface) Format() (buffer.Format, buffer.Modifier) { return s.format, s.modifier }

// Len returns the number of allocated buffers in the ring.
func (s *Surface) Len() int { return len(s.ring.slots) }

// InFlight returns the number of ring buffers still referenced outside the
// surface.
func (s *Surface) InFlight() int { return s.ring.inFlight() }

// multiGPU reports whether rendered buffers must be imported on another GPU.
func (s *Surface) multiGPU() bool {
	return s.scanout != nil && s.scanout != s.device
}

// Fits reports whether the current ring can serve frames of the given size
// with the given formats.
func (s *Surface) Fits(size image.Point, formats buffer.FormatTable) bool {
	if len(s.ring.slots) == 0 || size != s.size {
		return false
	}
	if s.multiGPU() {
		// The scanout GPU re-imports the buffer; only the format matters
		// to the display, the render-side layout is linear.
		return formats.Has(s.format)
	}
	return formats.Fits(s.format, s.modifier)
}

// BeginRendering hands out a buffer for the next frame. If the ring does
// not fit size and formats it is recreated first.
//
// It fails with an error wrapping buffer.ErrAllocation if no buffer could
// be allocated with any format and usage, and with
// buffer.ErrResourceExhausted if every buffer is still held by the display
// pipeline.
func (s *Surface) BeginRendering(size image.Point, renderOrientation, bufferOrientation render.PlaneTransformation, formats buffer.FormatTable) (BeginFrameInfo, error) {
	if s.current != nil {
		return BeginFrameInfo{}, ErrAlreadyRendering
	}
	if !s.Fits(size, formats) {
		if err := s.recreate(size, formats); err != nil {
			return BeginFrameInfo{}, err
		}
	}

	sl := s.ring.pick()
	if sl == nil {
		if len(s.ring.slots) >= s.depth {
			scanout.Logger().Debug("surface: all buffers in flight", "depth", s.depth)
			return BeginFrameInfo{}, fmt.Errorf("%w: %d of %d in flight",
				buffer.ErrResourceExhausted, s.ring.inFlight(), s.depth)
		}
		var err error
		if sl, err = s.grow(); err != nil {
			return BeginFrameInfo{}, err
		}
	}

	b, err := buffer.NewPooled(s.device.Allocator(), sl.alloc, sl)
	if err != nil {
		return BeginFrameInfo{}, err
	}
	sl.buf = b

	target := render.NewBufferTarget(b, renderOrientation)
	if err := s.renderer.Begin(target); err != nil {
		sl.frame = 0
		b.Unref()
		return BeginFrameInfo{}, fmt.Errorf("surface: begin frame: %w", err)
	}

	age := 0
	if sl.frame > 0 {
		age = int(s.history.Frame()-sl.frame) + 1
	}
	info := BeginFrameInfo{
		Target:            target,
		Repaint:           s.repaint(age),
		Age:               age,
		BufferOrientation: bufferOrientation,
	}
	s.current = sl
	s.target = target

	scanout.Logger().Debug("surface: begin frame", "slot", sl.index, "age", age, "buffer", b.ID())
	return info, nil
}

// repaint returns the stale region of a buffer of the given age.
func (s *Surface) repaint(age int) damage.Region {
	switch age {
	case 0:
		return damage.Infinite()
	case 1:
		return nil
	default:
		return s.history.Accumulate(age-1, damage.Infinite())
	}
}

// EndRendering finishes the frame begun by BeginRendering. On success the
// caller receives a reference to the finished buffer and the frame damage
// mapped into buffer coordinates.
//
// If the renderer cannot finish the frame the buffer returns to the ring
// with undefined content and the error is returned.
func (s *Surface) EndRendering(renderOrientation render.PlaneTransformation, damaged damage.Region) (*buffer.Buffer, damage.Region, error) {
	sl := s.current
	if sl == nil {
		return nil, nil, ErrNotRendering
	}
	target := s.target
	s.current, s.target = nil, nil
	b := sl.buf

	if err := s.renderer.Finish(target); err != nil {
		sl.frame = 0
		b.Unref()
		scanout.Logger().Warn("surface: frame not finished", "buffer", b.ID(), "err", err)
		return nil, nil, fmt.Errorf("surface: end frame: %w", err)
	}

	s.history.Add(damaged)
	sl.frame = s.history.Frame()
	s.last = sl
	mapped := renderOrientation.MapRegion(damaged, renderOrientation.MapSize(s.size))

	if !s.multiGPU() {
		return b, mapped, nil
	}

	imported, err := s.importOnScanoutDevice(b)
	b.Unref()
	if err != nil {
		return nil, nil, err
	}
	return imported, mapped, nil
}

func (s *Surface) importOnScanoutDevice(b *buffer.Buffer) (*buffer.Buffer, error) {
	if _, ok := b.ExportDescriptors(); !ok {
		return nil, fmt.Errorf("%w: cannot export %v for %s", buffer.ErrImport, b, s.scanout.Name())
	}
	imported, err := buffer.ImportFromPeer(s.scanout.Allocator(), b, buffer.UsageScanout)
	if err != nil {
		scanout.Logger().Warn("surface: import on scanout gpu failed",
			"from", s.device.Name(), "to", s.scanout.Name(), "err", err)
		return nil, err
	}
	return imported, nil
}

// RenderTestBuffer allocates and renders one buffer of the given size in a
// private ring, leaving the surface's own ring untouched. It is used to
// check that an output configuration can be driven before committing it.
func (s *Surface) RenderTestBuffer(size image.Point, formats buffer.FormatTable) (*buffer.Buffer, error) {
	test := New(s.device, s.renderer, WithDepth(scanout.MinBufferDepth), WithScanoutDevice(s.scanout))
	defer test.DestroyResources()

	info, err := test.BeginRendering(size, render.Rotate0, render.Rotate0, formats)
	if err != nil {
		return nil, err
	}
	if c, ok := s.renderer.(interface {
		Clear(render.RenderTarget, color.Color)
	}); ok {
		c.Clear(info.Target, color.Black)
	}
	b, _, err := test.EndRendering(render.Rotate0, damage.Infinite())
	if err != nil {
		return nil, err
	}
	return b, nil
}

// LastBuffer returns a new reference to the most recently rendered buffer,
// or nil if there is none or its content has since been lost.
func (s *Surface) LastBuffer() *buffer.Buffer {
	sl := s.last
	if sl == nil || sl.alloc == nil || sl.orphaned || sl.frame == 0 {
		return nil
	}
	if sl.buf != nil {
		return sl.buf.Ref()
	}
	b, err := buffer.NewPooled(s.device.Allocator(), sl.alloc, sl)
	if err != nil {
		return nil
	}
	sl.buf = b
	return b
}

// Texture returns a sampleable texture of the most recently rendered
// frame. The texture is owned by the surface and stays valid until Depth
// more frames have been imported or the resources are destroyed.
func (s *Surface) Texture() (*render.Texture, error) {
	ti := s.device.Textures()
	if ti == nil {
		return nil, errors.New("surface: device cannot import textures")
	}
	b := s.LastBuffer()
	if b == nil {
		return nil, errors.New("surface: nothing rendered")
	}
	defer b.Unref()

	return s.textures.GetOrCreate(s.last.frame, func() (*render.Texture, error) {
		return ti.ImportTexture(b)
	})
}

// DestroyResources tears down the ring. Buffers still held by the display
// pipeline are destroyed when released. A frame in progress is abandoned.
func (s *Surface) DestroyResources() {
	if s.current != nil {
		sl := s.current
		s.current, s.target = nil, nil
		sl.buf.Unref()
	}
	s.textures.Clear()
	s.ring.teardown()
	s.history.Reset()
	s.last = nil
	s.size = image.Point{}
	s.format = 0
	s.modifiers = nil
	s.modifier = buffer.ModifierInvalid
}

// recreate replaces the ring with one for size and formats, allocating its
// first buffer.
func (s *Surface) recreate(size image.Point, formats buffer.FormatTable) error {
	s.DestroyResources()

	var errs []error
	for _, f := range preferredFormats {
		if !formats.Has(f) {
			continue
		}
		alloc, mods, usage, err := s.allocateDegrading(size, f, formats)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s.size = size
		s.format = f
		s.modifiers = mods
		s.usage = usage
		s.modifier = alloc.Modifier()
		s.ring.slots = []*slot{{index: 0, alloc: alloc}}
		scanout.Logger().Info("surface: ring created",
			"device", s.device.Name(), "size", size, "format", f, "modifier", s.modifier, "depth", s.depth)
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("%w: no supported format among %v", buffer.ErrAllocation, formats.Formats())
	}
	return errors.Join(errs...)
}

// allocateDegrading allocates with explicit modifiers, then with an
// implicit modifier, then with an implicit modifier and linear layout. It
// returns the modifiers and usage that succeeded so the ring can grow with
// the same parameters.
func (s *Surface) allocateDegrading(size image.Point, f buffer.Format, formats buffer.FormatTable) (buffer.Allocation, []buffer.Modifier, buffer.Usage, error) {
	usage := buffer.UsageRendering | buffer.UsageScanout
	explicit := formats.ExplicitModifiers(f)
	if s.multiGPU() {
		usage = buffer.UsageRendering | buffer.UsageLinear
		explicit = []buffer.Modifier{buffer.ModifierLinear}
	}

	type attempt struct {
		modifiers []buffer.Modifier
		usage     buffer.Usage
	}
	attempts := []attempt{
		{nil, usage},
		{nil, usage | buffer.UsageLinear},
	}
	if len(explicit) > 0 {
		attempts = append([]attempt{{explicit, usage}}, attempts...)
	}

	var lastErr error
	for i, a := range attempts {
		if i > 0 && a.usage == attempts[i-1].usage && len(a.modifiers) == 0 && len(attempts[i-1].modifiers) == 0 {
			continue
		}
		alloc, err := s.device.Allocator().Allocate(size, f, a.modifiers, a.usage)
		if err == nil {
			return alloc, a.modifiers, a.usage, nil
		}
		lastErr = err
		scanout.Logger().Warn("surface: allocation failed, degrading usage",
			"device", s.device.Name(), "format", f, "modifiers", len(a.modifiers), "usage", a.usage, "err", err)
	}
	return nil, nil, 0, fmt.Errorf("%w: %v on %s: %w", buffer.ErrAllocation, f, s.device.Name(), lastErr)
}

// grow allocates one more ring buffer with the ring's parameters.
func (s *Surface) grow() (*slot, error) {
	alloc, err := s.device.Allocator().Allocate(s.size, s.format, s.modifiers, s.usage)
	if err != nil {
		return nil, fmt.Errorf("%w: growing ring: %w", buffer.ErrAllocation, err)
	}
	sl := &slot{index: len(s.ring.slots), alloc: alloc}
	s.ring.slots = append(s.ring.slots, sl)
	scanout.Logger().Debug("surface: ring grown", "len", len(s.ring.slots), "depth", s.depth)
	return sl, nil
}
