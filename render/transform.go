// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"fmt"
	"image"
	"strings"

	"github.com/gogpu/scanout/damage"
)

// Transform is the transform a client applied to its buffer content, or an
// output applies to its image, as seen by the user.
type Transform uint8

// Output transforms. Rotations are counter-clockwise; flipped variants
// mirror around the vertical axis before rotating.
const (
	TransformNormal Transform = iota
	TransformRotated90
	TransformRotated180
	TransformRotated270
	TransformFlipped
	TransformFlipped90
	TransformFlipped180
	TransformFlipped270
)

var transformNames = [...]string{
	"normal", "rotated-90", "rotated-180", "rotated-270",
	"flipped", "flipped-90", "flipped-180", "flipped-270",
}

// String returns the transform name.
func (t Transform) String() string {
	if int(t) < len(transformNames) {
		return transformNames[t]
	}
	return fmt.Sprintf("Transform(%d)", uint8(t))
}

// PlaneTransformation is a set of display plane rotation and reflection
// bits, as programmed into the display controller.
type PlaneTransformation uint8

const (
	Rotate0 PlaneTransformation = 1 << iota
	Rotate90
	Rotate180
	Rotate270
	ReflectX
	ReflectY
)

// String lists the set bits, e.g. "rotate-90|reflect-y".
func (p PlaneTransformation) String() string {
	names := []string{"rotate-0", "rotate-90", "rotate-180", "rotate-270", "reflect-x", "reflect-y"}
	var parts []string
	for i, n := range names {
		if p&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// InvertAndConvert returns the plane transformation that undoes t. A buffer
// whose content was transformed by t can be scanned out directly only by a
// plane whose orientation equals this value.
func (t Transform) InvertAndConvert() PlaneTransformation {
	var p PlaneTransformation
	switch t {
	case TransformNormal, TransformFlipped:
		p = Rotate0
	case TransformRotated90, TransformFlipped90:
		p = Rotate270
	case TransformRotated180, TransformFlipped180:
		p = Rotate180
	case TransformRotated270, TransformFlipped270:
		p = Rotate90
	}
	switch t {
	case TransformFlipped, TransformFlipped180:
		p |= ReflectX
	case TransformFlipped90, TransformFlipped270:
		p |= ReflectY
	}
	return p
}

// rotation returns the rotation bits, Rotate0 if none is set.
func (p PlaneTransformation) rotation() PlaneTransformation {
	switch {
	case p&Rotate90 != 0:
		return Rotate90
	case p&Rotate180 != 0:
		return Rotate180
	case p&Rotate270 != 0:
		return Rotate270
	default:
		return Rotate0
	}
}

// SwapsAxes reports whether p exchanges width and height.
func (p PlaneTransformation) SwapsAxes() bool {
	r := p.rotation()
	return r == Rotate90 || r == Rotate270
}

// MapSize returns the size of a size-sized image after applying p.
func (p PlaneTransformation) MapSize(size image.Point) image.Point {
	if p.SwapsAxes() {
		return image.Pt(size.Y, size.X)
	}
	return size
}

// MapRect maps r within a size-sized image through p. Rotation is
// counter-clockwise and applied first; reflections apply to the rotated
// image.
func (p PlaneTransformation) MapRect(r image.Rectangle, size image.Point) image.Rectangle {
	w, h := size.X, size.Y
	var out image.Rectangle
	switch p.rotation() {
	case Rotate90:
		out = image.Rect(r.Min.Y, w-r.Max.X, r.Max.Y, w-r.Min.X)
	case Rotate180:
		out = image.Rect(w-r.Max.X, h-r.Max.Y, w-r.Min.X, h-r.Min.Y)
	case Rotate270:
		out = image.Rect(h-r.Max.Y, r.Min.X, h-r.Min.Y, r.Max.X)
	default:
		out = r
	}
	dst := p.MapSize(size)
	if p&ReflectX != 0 {
		out.Min.X, out.Max.X = dst.X-out.Max.X, dst.X-out.Min.X
	}
	if p&ReflectY != 0 {
		out.Min.Y, out.Max.Y = dst.Y-out.Max.Y, dst.Y-out.Min.Y
	}
	return out
}

// MapRegion maps every rectangle of r through p. The infinite region maps
// to itself.
func (p PlaneTransformation) MapRegion(r damage.Region, size image.Point) damage.Region {
	if r.IsInfinite() || p.rotation() == Rotate0 && p&(ReflectX|ReflectY) == 0 {
		return r
	}
	out := make(damage.Region, len(r))
	for i, rect := range r {
		out[i] = p.MapRect(rect, size)
	}
	return out
}
