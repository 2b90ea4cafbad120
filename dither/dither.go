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

// Package dither reduces RGBA page buffers to the 1-bit or 2-bit gray
// levels of the target display, using Floyd-Steinberg error diffusion.
//
// The quantization thresholds are fixed properties of the device
// firmware and are not configurable: changing them would make the
// dithered pixels disagree with the thresholds the page encoder applies
// to undithered pages.
package dither

import (
	"errors"

	"seehuhn.de/go/xtc/raster"
)

// ErrBitDepth is returned for bit depths other than 1 and 2.
var ErrBitDepth = errors.New("bit depth must be 1 or 2")

// Quantize maps v to the nearest representable gray level.
//
// At depth 1 the result is 0 or 255, with the cut at 128.  At depth 2
// the result is one of 0, 85, 170, 255, with cuts above 42, 127 and 212.
// Quantize is idempotent: applying it to its own output is a no-op.
func Quantize(v uint8, depth int) uint8 {
	return quantize(float32(v), depth)
}

func quantize(v float32, depth int) uint8 {
	if depth == 1 {
		if v >= 128 {
			return 255
		}
		return 0
	}
	switch {
	case v > 212:
		return 255
	case v > 127:
		return 170
	case v > 42:
		return 85
	default:
		return 0
	}
}

// Dither converts src to a new buffer holding only quantized gray
// values (R=G=B), preserving the alpha channel.  depth selects the
// 2-level or 4-level palette; strength in [0, 1] scales the diffused
// error and is clamped to that range.
//
// The algorithm walks the image in raster order.  Each pixel's BT.601
// luma, plus any error diffused into it, is quantized; the difference
// between the accumulated value and the quantized value is scaled by
// strength and distributed to the unvisited neighbors with the
// Floyd-Steinberg weights 7/16 (east), 3/16 (south-west), 5/16 (south)
// and 1/16 (south-east).  Neighbors outside the image are skipped, so
// error leaving the right and bottom edges is lost.
//
// Accumulated values are not clamped before quantization;
// a pixel can carry a value outside [0, 255] into the threshold
// comparison.  Only the quantized result is written back, so the output
// is always in range.
func Dither(src *raster.Buffer, depth int, strength float64) (*raster.Buffer, error) {
	if depth != 1 && depth != 2 {
		return nil, ErrBitDepth
	}
	if strength < 0 {
		strength = 0
	} else if strength > 1 {
		strength = 1
	}
	s := float32(strength)

	w, h := src.Width, src.Height
	vals := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			vals[y*w+x] = float32(src.Luma(x, y))
		}
	}

	out := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			old := vals[y*w+x]
			q := quantize(old, depth)
			diff := (old - float32(q)) * s

			if x+1 < w {
				vals[y*w+x+1] += diff * 7 / 16
			}
			if y+1 < h {
				if x > 0 {
					vals[(y+1)*w+x-1] += diff * 3 / 16
				}
				vals[(y+1)*w+x] += diff * 5 / 16
				if x+1 < w {
					vals[(y+1)*w+x+1] += diff * 1 / 16
				}
			}

			i := y*out.Stride + x*4
			out.Pix[i] = q
			out.Pix[i+1] = q
			out.Pix[i+2] = q
			out.Pix[i+3] = src.Pix[y*src.Stride+x*4+3]
		}
	}
	return out, nil
}

// Threshold quantizes src without error diffusion.  The result is the
// same as Dither with strength 0.
func Threshold(src *raster.Buffer, depth int) (*raster.Buffer, error) {
	return Dither(src, depth, 0)
}
