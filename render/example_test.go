// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render_test

import (
	"fmt"
	"image"

	"github.com/gogpu/scanout/render"
)

// ExampleTransform_InvertAndConvert shows which plane orientation a client
// buffer needs for direct scanout.
func ExampleTransform_InvertAndConvert() {
	for _, t := range []render.Transform{render.TransformNormal, render.TransformRotated90, render.TransformFlipped90} {
		fmt.Printf("%v -> %v\n", t, t.InvertAndConvert())
	}
	// Output:
	// normal -> rotate-0
	// rotated-90 -> rotate-270
	// flipped-90 -> rotate-270|reflect-y
}

// ExamplePlaneTransformation_MapRect maps damage into a rotated buffer.
func ExamplePlaneTransformation_MapRect() {
	r := render.Rotate90.MapRect(image.Rect(0, 0, 10, 20), image.Pt(100, 50))
	fmt.Println(r)
	// Output: (0,90)-(20,100)
}
