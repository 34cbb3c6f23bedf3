// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package layer

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/gogpu/scanout/buffer"
)

// Snapshot copies the content of a 32-bit RGB buffer into an image. Formats
// without alpha come out opaque.
func Snapshot(b *buffer.Buffer) (*image.RGBA, error) {
	data, ok := b.Map(buffer.MapRead)
	if !ok {
		return nil, buffer.ErrMapping
	}
	src := &wordImage{
		pix:    data[b.Offsets()[0]:],
		stride: int(b.Strides()[0]),
		rect:   image.Rectangle{Max: b.Size()},
		opaque: !b.Format().HasAlpha(),
	}
	switch b.Format() {
	case buffer.FormatXRGB8888, buffer.FormatARGB8888:
		src.order = [4]int{2, 1, 0, 3}
	case buffer.FormatXBGR8888, buffer.FormatABGR8888:
		src.order = [4]int{0, 1, 2, 3}
	default:
		return nil, fmt.Errorf("layer: cannot snapshot %v", b.Format())
	}
	if len(src.pix) < src.stride*(src.rect.Dy()-1)+src.rect.Dx()*4 {
		return nil, fmt.Errorf("layer: mapping of %v too short", b)
	}
	dst := image.NewRGBA(src.rect)
	draw.Copy(dst, image.Point{}, src, src.rect, draw.Src, nil)
	return dst, nil
}

// SavePNG writes the content of b to a PNG file.
func SavePNG(b *buffer.Buffer, path string) error {
	img, err := Snapshot(b)
	if err != nil {
		return err
	}
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// wordImage reads 32-bit pixels whose byte positions for R, G, B and A are
// given by order.
type wordImage struct {
	pix    []byte
	stride int
	rect   image.Rectangle
	order  [4]int
	opaque bool
}

func (w *wordImage) ColorModel() color.Model { return color.RGBAModel }

func (w *wordImage) Bounds() image.Rectangle { return w.rect }

func (w *wordImage) At(x, y int) color.Color {
	if !image.Pt(x, y).In(w.rect) {
		return color.RGBA{}
	}
	p := w.pix[y*w.stride+x*4:]
	c := color.RGBA{R: p[w.order[0]], G: p[w.order[1]], B: p[w.order[2]], A: p[w.order[3]]}
	if w.opaque {
		c.A = 0xff
	}
	return c
}
