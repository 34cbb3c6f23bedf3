// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package damage

import (
	"image"
	"math"
)

// maxRects is the rectangle count past which a region collapses to its
// bounding box. Beyond it a single large repaint is cheaper.
const maxRects = 16

// Region is a set of damaged rectangles in buffer pixels. Rectangles may
// overlap. The zero value is an empty region.
type Region []image.Rectangle

// Rect returns a region holding r, or an empty region if r is empty.
func Rect(r image.Rectangle) Region {
	if r.Empty() {
		return nil
	}
	return Region{r.Canon()}
}

// Infinite returns a region covering every representable pixel. It is the
// repaint region of outputs that never reuse buffer content.
func Infinite() Region {
	return Region{image.Rect(math.MinInt32/2, math.MinInt32/2, math.MaxInt32/2, math.MaxInt32/2)}
}

// IsInfinite reports whether the region is the Infinite region.
func (r Region) IsInfinite() bool {
	return len(r) == 1 && r[0] == Infinite()[0]
}

// IsEmpty reports whether the region covers no pixels.
func (r Region) IsEmpty() bool {
	for _, rect := range r {
		if !rect.Empty() {
			return false
		}
	}
	return true
}

// Bounds returns the smallest rectangle containing the region.
func (r Region) Bounds() image.Rectangle {
	var b image.Rectangle
	for _, rect := range r {
		b = b.Union(rect)
	}
	return b
}

// Union returns a new region covering r and o. Empty rectangles are dropped,
// rectangles contained in another are skipped, and a result with more than
// maxRects rectangles collapses to its bounds.
func (r Region) Union(o Region) Region {
	if r.IsInfinite() || o.IsInfinite() {
		return Infinite()
	}
	out := make(Region, 0, len(r)+len(o))
	for _, rect := range append(r[:len(r):len(r)], o...) {
		out = out.add(rect)
	}
	if len(out) > maxRects {
		return Region{out.Bounds()}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (r Region) add(rect image.Rectangle) Region {
	rect = rect.Canon()
	if rect.Empty() {
		return r
	}
	for _, existing := range r {
		if rect.In(existing) {
			return r
		}
	}
	return append(r, rect)
}

// Contains reports whether pixel p lies in the region.
func (r Region) Contains(p image.Point) bool {
	for _, rect := range r {
		if p.In(rect) {
			return true
		}
	}
	return false
}

// Intersect clips every rectangle of the region to clip.
func (r Region) Intersect(clip image.Rectangle) Region {
	var out Region
	for _, rect := range r {
		out = out.add(rect.Intersect(clip))
	}
	return out
}

// Translate returns the region moved by d.
func (r Region) Translate(d image.Point) Region {
	if r.IsInfinite() {
		return r
	}
	out := make(Region, len(r))
	for i, rect := range r {
		out[i] = rect.Add(d)
	}
	return out
}
