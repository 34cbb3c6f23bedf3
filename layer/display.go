// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"errors"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/buffer"
	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/internal/cache"
	"github.com/gogpu/scanout/render"
	"github.com/gogpu/scanout/surface"
)

// DisplayControllerLayer is a hardware plane of a display controller.
type DisplayControllerLayer struct {
	pipeline     Pipeline
	feedback     Feedback
	cfg          scanout.Config
	platform     *render.Platform
	renderDevice *render.Device
	surface      *surface.Surface

	state      State
	composited *buffer.Buffer
	direct     *buffer.Buffer
	damage     damage.Region

	// textures of directly scanned out buffers, by buffer ID.
	textures *cache.Cache[uint64, *render.Texture]
}

// NewDisplayControllerLayer creates a layer feeding p. Composited frames are
// rendered with r. fb may be nil.
func NewDisplayControllerLayer(p Pipeline, r render.Renderer, fb Feedback, cfg scanout.Config, opts ...Option) *DisplayControllerLayer {
	l := &DisplayControllerLayer{
		pipeline: p,
		feedback: fb,
		cfg:      cfg,
	}
	if l.feedback == nil {
		l.feedback = nopFeedback{}
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.platform == nil {
		l.platform = render.NewPlatform(p.Device(), l.renderDevice)
	}

	surfOpts := []surface.Option{surface.WithDepth(cfg.BufferDepth)}
	dev := p.Device()
	if l.renderDevice != nil && l.renderDevice != dev {
		surfOpts = append(surfOpts, surface.WithScanoutDevice(dev))
		dev = l.renderDevice
	}
	l.surface = surface.New(dev, r, surfOpts...)
	l.textures = cache.New[uint64, *render.Texture](1, func(_ uint64, t *render.Texture) {
		t.Destroy()
	})
	return l
}

// Surface returns the layer's render surface.
func (l *DisplayControllerLayer) Surface() *surface.Surface { return l.surface }

// State returns where the current buffer comes from.
func (l *DisplayControllerLayer) State() State { return l.state }

// BeginFrame leaves direct scanout and starts compositing a frame.
func (l *DisplayControllerLayer) BeginFrame() (surface.BeginFrameInfo, error) {
	l.dropDirect()
	l.feedback.RenderingSurface()
	p := l.pipeline
	return l.surface.BeginRendering(p.BufferSize(), p.RenderOrientation(), p.BufferOrientation(), p.Formats())
}

// EndFrame finishes compositing. On success the rendered buffer becomes the
// current buffer; on failure the previous composited buffer stays.
func (l *DisplayControllerLayer) EndFrame(_, damaged damage.Region) error {
	b, dmg, err := l.surface.EndRendering(l.pipeline.RenderOrientation(), damaged)
	if err != nil {
		return err
	}
	l.setComposited(b)
	l.damage = dmg
	return nil
}

// Scanout tries to adopt item's client buffer for direct scanout.
func (l *DisplayControllerLayer) Scanout(item SurfaceItem) bool {
	if l.cfg.DisableDirectScanout {
		return false
	}
	l.dropDirect()
	if item == nil || item.Surface() == nil {
		return false
	}
	cs := item.Surface()
	client, ok := cs.Buffer().(buffer.DmaBufBuffer)
	if !ok {
		// Shared memory and missing buffers are no candidates.
		return false
	}
	formats := l.pipeline.Formats()
	reject := func(reason string, args ...any) bool {
		scanout.Logger().Debug("layer: direct scanout rejected", append([]any{"reason", reason}, args...)...)
		l.feedback.ScanoutFailed(cs, formats)
		return false
	}

	want := l.pipeline.BufferOrientation()
	if got := cs.BufferTransform().InvertAndConvert(); got != want {
		return reject("orientation", "buffer", got, "plane", want)
	}
	desc := client.Descriptor()
	size := l.pipeline.BufferSize()
	if len(desc.Planes) == 0 || desc.Size != size {
		return reject("size", "buffer", desc.Size, "plane", size, "planes", len(desc.Planes))
	}
	if !formats.Has(desc.Format) {
		return reject("format", "format", desc.Format)
	}
	if !desc.Modifier.IsExplicit() && l.platform.GPUCount() > 1 {
		// An implicit layout can be interpreted differently on another GPU.
		return reject("implicit modifier on multi-gpu system", "gpus", l.platform.GPUCount())
	}
	if !formats.Supports(desc.Format, desc.Modifier) {
		return reject("modifier", "format", desc.Format, "modifier", desc.Modifier)
	}
	b, err := buffer.ImportClient(l.pipeline.Device().Allocator(), client)
	if err != nil {
		return reject("import", "err", err)
	}
	if err := l.pipeline.TestScanout(b); err != nil {
		b.Unref()
		scanout.Logger().Warn("layer: scanout test commit failed", "buffer", b.ID(), "err", err)
		return reject("test commit", "err", err)
	}

	l.direct = b
	l.state = StateDirectScanout
	l.damage = item.Damage()
	item.ResetDamage()
	l.feedback.ScanoutSuccessful(cs)
	scanout.Logger().Debug("layer: direct scanout", "buffer", b.ID(), "format", desc.Format, "modifier", desc.Modifier)
	return true
}

// CurrentBuffer returns the client buffer during direct scanout and the
// last composited buffer otherwise.
func (l *DisplayControllerLayer) CurrentBuffer() *buffer.Buffer {
	if l.state == StateDirectScanout {
		return l.direct
	}
	return l.composited
}

// CurrentDamage returns the damage of the current buffer.
func (l *DisplayControllerLayer) CurrentDamage() damage.Region { return l.damage }

// HasDirectScanoutBuffer reports whether a client buffer is current.
func (l *DisplayControllerLayer) HasDirectScanoutBuffer() bool {
	return l.state == StateDirectScanout
}

// CheckTestBuffer makes sure a buffer matching the pipeline exists before a
// test commit of a new configuration. If the surface does not fit the
// pipeline's size and formats, a test buffer is rendered and becomes the
// composited buffer.
func (l *DisplayControllerLayer) CheckTestBuffer() error {
	p := l.pipeline
	if l.surface.Fits(p.BufferSize(), p.Formats()) {
		return nil
	}
	b, err := l.surface.RenderTestBuffer(p.BufferSize(), p.Formats())
	if err != nil {
		return err
	}
	l.setComposited(b)
	return nil
}

// Texture returns a sampleable texture of what the layer shows: the
// client buffer during direct scanout, else the last composited frame.
func (l *DisplayControllerLayer) Texture() (*render.Texture, error) {
	if l.state != StateDirectScanout {
		return l.surface.Texture()
	}
	ti := l.pipeline.Device().Textures()
	if ti == nil {
		return nil, errors.New("layer: device cannot import textures")
	}
	b := l.direct
	return l.textures.GetOrCreate(b.ID(), func() (*render.Texture, error) {
		return ti.ImportTexture(b)
	})
}

// ReleaseBuffers drops both buffers and the surface's resources. The
// display pipeline must no longer reference the current buffer.
func (l *DisplayControllerLayer) ReleaseBuffers() {
	l.dropDirect()
	l.setComposited(nil)
	l.damage = nil
	l.surface.DestroyResources()
}

// dropDirect leaves direct scanout. The composited buffer that becomes
// current again differs from the scanned out one, so all of it is damaged.
func (l *DisplayControllerLayer) dropDirect() {
	l.textures.Clear()
	if l.direct != nil {
		l.direct.Unref()
		l.direct = nil
		l.damage = damage.Infinite()
	}
	l.state = StateCompositing
}

func (l *DisplayControllerLayer) setComposited(b *buffer.Buffer) {
	if l.composited != nil {
		l.composited.Unref()
	}
	l.composited = b
}
