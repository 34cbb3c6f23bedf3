// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"fmt"
	"image"
	"path/filepath"
	"strconv"

	"github.com/gogpu/scanout"
	"github.com/gogpu/scanout/buffer"
	"github.com/gogpu/scanout/damage"
	"github.com/gogpu/scanout/render"
	"github.com/gogpu/scanout/surface"
)

// OffscreenLayer is the layer of a virtual output. It renders into a single
// linear buffer, repaints everything each frame and never scans out client
// buffers.
type OffscreenLayer struct {
	device   *render.Device
	renderer render.Renderer
	size     image.Point
	format   buffer.Format
	dumpDir  string

	back   *buffer.Buffer
	target *render.BufferTarget
	frames int
}

// NewOffscreenLayer creates a layer rendering frames of the given size on
// dev. If cfg.DumpDir is set, every finished frame is written there as
// <n>.png.
func NewOffscreenLayer(dev *render.Device, r render.Renderer, size image.Point, cfg scanout.Config) *OffscreenLayer {
	return &OffscreenLayer{
		device:   dev,
		renderer: r,
		size:     size,
		format:   buffer.FormatXRGB8888,
		dumpDir:  cfg.DumpDir,
	}
}

// Size returns the frame size.
func (l *OffscreenLayer) Size() image.Point { return l.size }

// Frames returns the number of finished frames.
func (l *OffscreenLayer) Frames() int { return l.frames }

// Resize changes the frame size. The back buffer is reallocated on the
// next frame.
func (l *OffscreenLayer) Resize(size image.Point) {
	if size == l.size {
		return
	}
	l.ReleaseBuffers()
	l.size = size
}

// BeginFrame starts a frame. The repaint region is always infinite since
// nothing tracks the age of the back buffer.
func (l *OffscreenLayer) BeginFrame() (surface.BeginFrameInfo, error) {
	if l.target != nil {
		return surface.BeginFrameInfo{}, surface.ErrAlreadyRendering
	}
	if l.back == nil {
		b, err := buffer.NewFromAllocation(l.device.Allocator(), l.size, l.format, nil,
			buffer.UsageRendering|buffer.UsageLinear)
		if err != nil {
			return surface.BeginFrameInfo{}, err
		}
		l.back = b
	}
	target := render.NewBufferTarget(l.back, render.Rotate0)
	if err := l.renderer.Begin(target); err != nil {
		return surface.BeginFrameInfo{}, fmt.Errorf("layer: begin offscreen frame: %w", err)
	}
	l.target = target
	return surface.BeginFrameInfo{
		Target:            target,
		Repaint:           damage.Infinite(),
		BufferOrientation: render.Rotate0,
	}, nil
}

// EndFrame finishes the frame and dumps it if configured. A failed dump is
// logged and does not fail the frame.
func (l *OffscreenLayer) EndFrame(_, _ damage.Region) error {
	target := l.target
	if target == nil {
		return surface.ErrNotRendering
	}
	l.target = nil
	if err := l.renderer.Finish(target); err != nil {
		return fmt.Errorf("layer: end offscreen frame: %w", err)
	}
	n := l.frames
	l.frames++
	if l.dumpDir == "" {
		return nil
	}
	path := filepath.Join(l.dumpDir, strconv.Itoa(n)+".png")
	if err := SavePNG(l.back, path); err != nil {
		scanout.Logger().Warn("layer: frame dump failed", "path", path, "err", err)
		return nil
	}
	scanout.Logger().Debug("layer: frame dumped", "path", path)
	return nil
}

// Scanout always refuses; virtual outputs have no planes.
func (l *OffscreenLayer) Scanout(SurfaceItem) bool { return false }

// CurrentBuffer returns the back buffer.
func (l *OffscreenLayer) CurrentBuffer() *buffer.Buffer { return l.back }

// CurrentDamage is always infinite.
func (l *OffscreenLayer) CurrentDamage() damage.Region { return damage.Infinite() }

// HasDirectScanoutBuffer always reports false.
func (l *OffscreenLayer) HasDirectScanoutBuffer() bool { return false }

// ReleaseBuffers drops the back buffer.
func (l *OffscreenLayer) ReleaseBuffers() {
	l.target = nil
	if l.back != nil {
		l.back.Unref()
		l.back = nil
	}
}
