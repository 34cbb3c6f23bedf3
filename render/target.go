// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/scanout/buffer"
)

// RenderTarget defines where rendering output goes.
//
// Targets backed by CPU-mappable memory expose Pixels; GPU-only targets
// return nil and are drawn to by the host's GPU renderer.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// Pixels returns direct access to pixel data.
	// Returns nil for GPU-only targets.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// BufferTarget renders into a buffer object.
//
// The buffer is mapped for CPU access on creation if possible. The target
// does not hold a reference; its owner keeps the buffer alive.
type BufferTarget struct {
	buf         *buffer.Buffer
	pixels      []byte
	orientation PlaneTransformation
}

// NewBufferTarget creates a target drawing into b with the given render
// orientation.
func NewBufferTarget(b *buffer.Buffer, orientation PlaneTransformation) *BufferTarget {
	t := &BufferTarget{buf: b, orientation: orientation}
	if data, ok := b.Map(buffer.MapRead | buffer.MapWrite); ok {
		t.pixels = data
	}
	return t
}

// Width returns the buffer width in pixels.
func (t *BufferTarget) Width() int { return t.buf.Size().X }

// Height returns the buffer height in pixels.
func (t *BufferTarget) Height() int { return t.buf.Size().Y }

// Size returns the buffer size.
func (t *BufferTarget) Size() image.Point { return t.buf.Size() }

// Format returns the texture format matching the buffer's pixel format.
func (t *BufferTarget) Format() gputypes.TextureFormat {
	return t.buf.Format().TextureFormat()
}

// Pixels returns the CPU mapping of plane 0, or nil if the buffer is not
// mappable.
func (t *BufferTarget) Pixels() []byte { return t.pixels }

// Stride returns plane 0's stride.
func (t *BufferTarget) Stride() int { return int(t.buf.Strides()[0]) }

// Buffer returns the backing buffer.
func (t *BufferTarget) Buffer() *buffer.Buffer { return t.buf }

// Orientation returns the transform the renderer must apply so the image
// appears upright once the plane transformation is applied.
func (t *BufferTarget) Orientation() PlaneTransformation { return t.orientation }

// Ensure BufferTarget implements RenderTarget.
var _ RenderTarget = (*BufferTarget)(nil)
