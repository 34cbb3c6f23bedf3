// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
)

// SoftwareRenderer fills CPU-mapped render targets. It serves headless
// outputs, test buffers and tools; it is not a compositor.
//
// Example:
//
//	r := render.NewSoftwareRenderer()
//	if err := r.Begin(target); err != nil {
//	    return err
//	}
//	r.Clear(target, color.Black)
//	r.FillRect(target, image.Rect(10, 10, 50, 50), color.White)
//	err := r.Finish(target)
type SoftwareRenderer struct {
	frames uint64
}

// NewSoftwareRenderer creates a new CPU-based software renderer.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{}
}

// Begin checks that target can be drawn on the CPU.
func (r *SoftwareRenderer) Begin(target RenderTarget) error {
	if target == nil {
		return ErrNilTarget
	}
	if target.Pixels() == nil {
		return ErrNotMappable
	}
	if _, ok := channelOrder(target.Format()); !ok {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, target.Format())
	}
	return nil
}

// Finish completes the frame. CPU drawing is synchronous, so this only
// counts frames.
func (r *SoftwareRenderer) Finish(target RenderTarget) error {
	if target == nil {
		return ErrNilTarget
	}
	r.frames++
	return nil
}

// Frames returns the number of finished frames.
func (r *SoftwareRenderer) Frames() uint64 { return r.frames }

// Clear fills the entire target with c.
func (r *SoftwareRenderer) Clear(target RenderTarget, c color.Color) {
	r.FillRect(target, image.Rect(0, 0, target.Width(), target.Height()), c)
}

// FillRect fills rect, clipped to the target, with c. Targets without CPU
// access are left untouched.
func (r *SoftwareRenderer) FillRect(target RenderTarget, rect image.Rectangle, c color.Color) {
	pixels := target.Pixels()
	order, ok := channelOrder(target.Format())
	if pixels == nil || !ok {
		return
	}
	rect = rect.Intersect(image.Rect(0, 0, target.Width(), target.Height()))
	if rect.Empty() {
		return
	}

	px := packPixel(c, order)
	stride := target.Stride()
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		row := pixels[y*stride+rect.Min.X*4 : y*stride+rect.Max.X*4]
		for x := 0; x < len(row); x += 4 {
			copy(row[x:x+4], px[:])
		}
	}
}

// channelOrder returns the byte index of R, G, B and A in a pixel.
func channelOrder(f gputypes.TextureFormat) ([4]int, bool) {
	switch f {
	case gputypes.TextureFormatRGBA8Unorm:
		return [4]int{0, 1, 2, 3}, true
	case gputypes.TextureFormatBGRA8Unorm:
		return [4]int{2, 1, 0, 3}, true
	default:
		return [4]int{}, false
	}
}

func packPixel(c color.Color, order [4]int) [4]byte {
	cr, cg, cb, ca := c.RGBA()
	var px [4]byte
	//nolint:gosec // G115: shift leaves 8 bits
	px[order[0]] = uint8(cr >> 8)
	//nolint:gosec // G115: shift leaves 8 bits
	px[order[1]] = uint8(cg >> 8)
	//nolint:gosec // G115: shift leaves 8 bits
	px[order[2]] = uint8(cb >> 8)
	//nolint:gosec // G115: shift leaves 8 bits
	px[order[3]] = uint8(ca >> 8)
	return px
}

// Ensure SoftwareRenderer implements Renderer.
var _ Renderer = (*SoftwareRenderer)(nil)
