// seehuhn.de/go/xtc - convert page images to XTC/XTCH e-book containers
// Copyright (C) 2026  Jochen Voss <voss@seehuhn.de>
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package raster holds page pixel buffers on their way into the encoder.
//
// A [Buffer] is a plain RGBA raster with the top-left corner at (0, 0).
// It implements [draw.Image], so the standard library and
// golang.org/x/image drawing routines work on it directly.
package raster

import (
	"image"
	"image/color"
	"image/draw"

	xdraw "golang.org/x/image/draw"
)

// compile-time interface checks
var (
	_ image.Image = (*Buffer)(nil)
	_ draw.Image  = (*Buffer)(nil)
)

// Buffer is a width x height RGBA pixel buffer, one byte per channel,
// row-major with the origin in the top-left corner.
//
// The pixel at (x, y) starts at Pix[y*Stride + x*4].
// len(Pix) is always width*height*4.
type Buffer struct {
	Pix    []uint8
	Stride int
	Width  int
	Height int
}

// New creates a buffer of the given size, filled with opaque white.
func New(width, height int) *Buffer {
	pix := make([]uint8, width*height*4)
	for i := range pix {
		pix[i] = 255
	}
	return &Buffer{
		Pix:    pix,
		Stride: width * 4,
		Width:  width,
		Height: height,
	}
}

// FromImage scales src to fit into a width x height page and returns the
// result as a new buffer.  The aspect ratio is preserved; uncovered areas
// stay white.  Scaling uses Catmull-Rom interpolation.
func FromImage(src image.Image, width, height int) *Buffer {
	buf := New(width, height)

	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw <= 0 || sh <= 0 {
		return buf
	}

	// fit the source into the page, never upscaling
	dw, dh := sw, sh
	if dw > width {
		dh = dh * width / dw
		dw = width
	}
	if dh > height {
		dw = dw * height / dh
		dh = height
	}
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}
	x0 := (width - dw) / 2
	y0 := (height - dh) / 2

	dst := buf.asRGBA()
	xdraw.CatmullRom.Scale(dst, image.Rect(x0, y0, x0+dw, y0+dh),
		src, b, xdraw.Over, nil)
	return buf
}

// asRGBA returns an image.RGBA view sharing the buffer's pixel memory.
func (b *Buffer) asRGBA() *image.RGBA {
	return &image.RGBA{
		Pix:    b.Pix,
		Stride: b.Stride,
		Rect:   image.Rect(0, 0, b.Width, b.Height),
	}
}

// ColorModel returns [color.RGBAModel].
func (b *Buffer) ColorModel() color.Model {
	return color.RGBAModel
}

// Bounds returns the buffer extent.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At returns the color of the pixel at (x, y).
func (b *Buffer) At(x, y int) color.Color {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return color.RGBA{}
	}
	i := y*b.Stride + x*4
	return color.RGBA{b.Pix[i], b.Pix[i+1], b.Pix[i+2], b.Pix[i+3]}
}

// Set sets the pixel at (x, y).  Out-of-bounds calls are ignored.
func (b *Buffer) Set(x, y int, c color.Color) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	i := y*b.Stride + x*4
	r, g, bl, a := c.RGBA()
	b.Pix[i] = uint8(r >> 8)
	b.Pix[i+1] = uint8(g >> 8)
	b.Pix[i+2] = uint8(bl >> 8)
	b.Pix[i+3] = uint8(a >> 8)
}

// SetGray sets the pixel at (x, y) to an opaque gray value.
func (b *Buffer) SetGray(x, y int, v uint8) {
	if x < 0 || x >= b.Width || y < 0 || y >= b.Height {
		return
	}
	i := y*b.Stride + x*4
	b.Pix[i] = v
	b.Pix[i+1] = v
	b.Pix[i+2] = v
	b.Pix[i+3] = 255
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = make([]uint8, len(b.Pix))
	copy(c.Pix, b.Pix)
	return &c
}

// Luma returns the BT.601 luma of the pixel at (x, y), rounded to the
// nearest integer: (299 R + 587 G + 114 B + 500) / 1000.
func (b *Buffer) Luma(x, y int) uint8 {
	i := y*b.Stride + x*4
	return Luma(b.Pix[i], b.Pix[i+1], b.Pix[i+2])
}

// Luma converts one RGB triple to its BT.601 luma.
func Luma(r, g, b uint8) uint8 {
	return uint8((299*int(r) + 587*int(g) + 114*int(b) + 500) / 1000)
}

// Invert replaces every pixel's R, G and B values by 255-v, leaving the
// alpha channel alone.  This is the display's "negative" reading mode.
func (b *Buffer) Invert() {
	for y := 0; y < b.Height; y++ {
		row := b.Pix[y*b.Stride : y*b.Stride+b.Width*4]
		for x := 0; x < len(row); x += 4 {
			row[x] = 255 - row[x]
			row[x+1] = 255 - row[x+1]
			row[x+2] = 255 - row[x+2]
		}
	}
}

// Gray extracts the buffer into a single-channel image using BT.601
// luma.  For buffers that already hold gray values (R=G=B) this is a
// plain channel copy.
func (b *Buffer) Gray() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		src := b.Pix[y*b.Stride:]
		dst := img.Pix[y*img.Stride:]
		for x := 0; x < b.Width; x++ {
			dst[x] = Luma(src[x*4], src[x*4+1], src[x*4+2])
		}
	}
	return img
}
