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

package dither

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/xtc/raster"
)

// uniform returns a w x h buffer with every pixel set to the gray value v.
func uniform(w, h int, v uint8) *raster.Buffer {
	buf := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.SetGray(x, y, v)
		}
	}
	return buf
}

func TestQuantizeIdempotent(t *testing.T) {
	for _, depth := range []int{1, 2} {
		for v := 0; v < 256; v++ {
			once := Quantize(uint8(v), depth)
			twice := Quantize(once, depth)
			if once != twice {
				t.Fatalf("depth %d: Quantize(Quantize(%d)) = %d, want %d",
					depth, v, twice, once)
			}
		}
	}
}

func TestQuantizeLevels(t *testing.T) {
	for _, tc := range []struct {
		v     uint8
		depth int
		want  uint8
	}{
		{0, 1, 0}, {127, 1, 0}, {128, 1, 255}, {255, 1, 255},
		{0, 2, 0}, {42, 2, 0},
		{43, 2, 85}, {127, 2, 85},
		{128, 2, 170}, {212, 2, 170},
		{213, 2, 255}, {255, 2, 255},
	} {
		if got := Quantize(tc.v, tc.depth); got != tc.want {
			t.Errorf("Quantize(%d, %d) = %d, want %d",
				tc.v, tc.depth, got, tc.want)
		}
	}
}

func TestDitherExtremes(t *testing.T) {
	for _, depth := range []int{1, 2} {
		for _, strength := range []float64{0, 0.5, 1} {
			for _, v := range []uint8{0, 255} {
				out, err := Dither(uniform(8, 8, v), depth, strength)
				if err != nil {
					t.Fatal(err)
				}
				for i := 0; i < len(out.Pix); i += 4 {
					if out.Pix[i] != v {
						t.Fatalf("depth=%d strength=%g: uniform %d dithered to %d",
							depth, strength, v, out.Pix[i])
					}
				}
			}
		}
	}
}

func TestDitherOutputLevels(t *testing.T) {
	src := raster.New(16, 16)
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			src.SetGray(x, y, uint8(x*16+y))
		}
	}

	allowed := map[int]map[uint8]bool{
		1: {0: true, 255: true},
		2: {0: true, 85: true, 170: true, 255: true},
	}
	for _, depth := range []int{1, 2} {
		out, err := Dither(src, depth, 1)
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < len(out.Pix); i += 4 {
			v := out.Pix[i]
			if !allowed[depth][v] {
				t.Fatalf("depth %d: output value %d not in palette", depth, v)
			}
			if out.Pix[i+1] != v || out.Pix[i+2] != v {
				t.Fatalf("depth %d: output is not gray at byte %d", depth, i)
			}
		}
	}
}

func TestDitherPreservesMean(t *testing.T) {
	// error diffusion keeps the average brightness close to the input
	out, err := Dither(uniform(32, 32, 128), 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	sum := 0
	for i := 0; i < len(out.Pix); i += 4 {
		sum += int(out.Pix[i])
	}
	mean := sum / (32 * 32)
	if mean < 112 || mean > 144 {
		t.Errorf("mean %d after dithering uniform 128, want 128 +/- 16", mean)
	}

	// without diffusion the same input collapses to all-white
	out, err = Dither(uniform(32, 32, 128), 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] != 255 {
			t.Fatal("strength 0 must reduce to plain thresholding")
		}
	}
}

func TestDitherStrengthClamped(t *testing.T) {
	src := uniform(8, 8, 77)
	over, err := Dither(src, 2, 1.7)
	if err != nil {
		t.Fatal(err)
	}
	one, err := Dither(src, 2, 1)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(one.Pix, over.Pix); d != "" {
		t.Errorf("strength 1.7 differs from strength 1 (-want +got):\n%s", d)
	}

	under, err := Dither(src, 2, -3)
	if err != nil {
		t.Fatal(err)
	}
	zero, err := Threshold(src, 2)
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(zero.Pix, under.Pix); d != "" {
		t.Errorf("strength -3 differs from strength 0 (-want +got):\n%s", d)
	}
}

func TestDitherAlphaPreserved(t *testing.T) {
	src := uniform(4, 1, 200)
	src.Pix[3] = 17
	src.Pix[11] = 99

	out, err := Dither(src, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	want := []uint8{17, 255, 99, 255}
	for i, a := range want {
		if out.Pix[i*4+3] != a {
			t.Errorf("pixel %d: alpha %d, want %d", i, out.Pix[i*4+3], a)
		}
	}
}

func TestDitherBadDepth(t *testing.T) {
	for _, depth := range []int{0, 3, 8, -1} {
		_, err := Dither(uniform(2, 2, 0), depth, 1)
		if err != ErrBitDepth {
			t.Errorf("depth %d: got error %v, want ErrBitDepth", depth, err)
		}
	}
}

func TestDitherErrorDiffusion(t *testing.T) {
	// Uniform light gray rounds up everywhere under plain thresholding,
	// but with full-strength diffusion the accumulated negative error
	// must force some pixels to black.
	src := uniform(16, 16, 200)

	out, err := Dither(src, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if out.Pix[0] != 255 {
		t.Errorf("pixel (0,0) = %d, want 255", out.Pix[0])
	}
	black := 0
	for i := 0; i < len(out.Pix); i += 4 {
		if out.Pix[i] == 0 {
			black++
		}
	}
	if black == 0 {
		t.Error("no pixel received enough accumulated error to turn black")
	}
	// roughly one pixel in five should be black for an input of 200
	if black > 16*16/2 {
		t.Errorf("%d of %d pixels are black, too dark for input 200", black, 16*16)
	}
}
