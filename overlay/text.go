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

package overlay

import (
	"fmt"
	"image"
	"image/draw"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"seehuhn.de/go/xtc/raster"
)

var (
	fontOnce   sync.Once
	fontParsed *opentype.Font
	fontErr    error
)

// newFace creates a fresh font face for the given pixel size.  Faces
// are not safe for concurrent use, so each Draw call gets its own.
func newFace(size int) (font.Face, error) {
	fontOnce.Do(func() {
		fontParsed, fontErr = opentype.Parse(goregular.TTF)
	})
	if fontErr != nil {
		return nil, fontErr
	}
	return opentype.NewFace(fontParsed, &opentype.FaceOptions{
		Size:    float64(size),
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawText composes the left- and right-aligned status text into a
// raster of the band width and blits it into buf at (x0, y0).
func drawText(buf *raster.Buffer, x0, y0, w int, currentPage, totalPages int, prog Progress, cfg *Config) error {
	face, err := newFace(cfg.fontSize())
	if err != nil {
		return err
	}
	defer face.Close()

	var left, right []string
	if cfg.ShowPageXY {
		left = append(left, fmt.Sprintf("%d/%d", currentPage+1, totalPages))
	}
	if cfg.ShowBookPercent {
		pct := int(math.Round(100 * float64(currentPage+1) / float64(totalPages)))
		left = append(left, fmt.Sprintf("%d%%", pct))
	}
	if cfg.ShowChapterXY {
		right = append(right, fmt.Sprintf("%d/%d", prog.PageInChapter, prog.PagesInChapter))
	}
	if cfg.ShowChapterPercent {
		right = append(right, fmt.Sprintf("%d%%", prog.Percent()))
	}

	h := cfg.fontSize()
	text := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(text, text.Bounds(), image.White, image.Point{}, draw.Src)

	baseline := face.Metrics().Ascent.Ceil()
	if baseline > h {
		baseline = h
	}

	d := &font.Drawer{
		Dst:  text,
		Src:  image.Black,
		Face: face,
	}
	if len(left) > 0 {
		d.Dot = fixed.P(0, baseline)
		d.DrawString(strings.Join(left, "  "))
	}
	if len(right) > 0 {
		s := strings.Join(right, "  ")
		x := w - font.MeasureString(face, s).Ceil()
		if x < 0 {
			x = 0
		}
		d.Dot = fixed.P(x, baseline)
		d.DrawString(s)
	}

	// blit into the page, fully opaque
	for y := 0; y < h; y++ {
		row := text.Pix[y*text.Stride:]
		for x := 0; x < w; x++ {
			buf.SetGray(x0+x, y0+y, row[x])
		}
	}
	return nil
}
