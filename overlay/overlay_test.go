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
	"testing"

	"github.com/google/go-cmp/cmp"
	"seehuhn.de/go/xtc"
	"seehuhn.de/go/xtc/raster"
)

func TestResolve(t *testing.T) {
	toc := []xtc.Chapter{
		{Title: "One", StartPage: 0},
		{Title: "Two", StartPage: 50},
		{Title: "Three", StartPage: 120},
	}

	for _, tc := range []struct {
		name        string
		chapters    []xtc.Chapter
		currentPage int
		totalPages  int
		want        Progress
	}{
		{
			name:     "middle_chapter",
			chapters: toc, currentPage: 75, totalPages: 200,
			want: Progress{ChapterIndex: 1, PageInChapter: 26, PagesInChapter: 70},
		},
		{
			name:     "first_page",
			chapters: toc, currentPage: 0, totalPages: 200,
			want: Progress{ChapterIndex: 0, PageInChapter: 1, PagesInChapter: 50},
		},
		{
			name:     "chapter_start",
			chapters: toc, currentPage: 120, totalPages: 200,
			want: Progress{ChapterIndex: 2, PageInChapter: 1, PagesInChapter: 80},
		},
		{
			name:     "last_page",
			chapters: toc, currentPage: 199, totalPages: 200,
			want: Progress{ChapterIndex: 2, PageInChapter: 80, PagesInChapter: 80},
		},
		{
			name:        "empty_toc",
			chapters:    nil,
			currentPage: 7, totalPages: 30,
			want: Progress{ChapterIndex: 0, PageInChapter: 8, PagesInChapter: 30},
		},
		{
			name: "before_first_chapter",
			chapters: []xtc.Chapter{
				{Title: "One", StartPage: 10},
				{Title: "Two", StartPage: 20},
			},
			currentPage: 3, totalPages: 30,
			want: Progress{ChapterIndex: 0, PageInChapter: 1, PagesInChapter: 10},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := Resolve(tc.chapters, tc.currentPage, tc.totalPages)
			if d := cmp.Diff(tc.want, got); d != "" {
				t.Errorf("Resolve mismatch (-want +got):\n%s", d)
			}
		})
	}
}

func TestPercent(t *testing.T) {
	for _, tc := range []struct {
		prog Progress
		want int
	}{
		{Progress{PageInChapter: 26, PagesInChapter: 70}, 37},
		{Progress{PageInChapter: 1, PagesInChapter: 200}, 1},
		{Progress{PageInChapter: 200, PagesInChapter: 200}, 100},
		{Progress{PageInChapter: 1, PagesInChapter: 3}, 33},
		{Progress{PageInChapter: 2, PagesInChapter: 3}, 67},
		{Progress{PageInChapter: 1, PagesInChapter: 0}, 0},
	} {
		if got := tc.prog.Percent(); got != tc.want {
			t.Errorf("Percent(%d/%d) = %d, want %d",
				tc.prog.PageInChapter, tc.prog.PagesInChapter, got, tc.want)
		}
	}
}

// black returns a buffer filled with opaque black, so that the cleared
// band is easy to spot.
func black(w, h int) *raster.Buffer {
	buf := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			buf.SetGray(x, y, 0)
		}
	}
	return buf
}

func TestDrawBookBar(t *testing.T) {
	buf := black(100, 50)
	cfg := &Config{
		Position:         Bottom,
		ShowBookProgress: true,
		FullWidth:        true,
		EdgeMargin:       4,
	}
	// page 25 of 100: the leftmost quarter of the bar is filled
	if err := Draw(buf, 24, 100, nil, cfg); err != nil {
		t.Fatal(err)
	}

	y0 := 50 - 4 - bookBarHeight
	if got := buf.Luma(10, y0+2); got != 0 {
		t.Errorf("fill pixel luma %d, want 0", got)
	}
	if got := buf.Luma(60, y0+2); got != trackGray {
		t.Errorf("track pixel luma %d, want %d", got, trackGray)
	}
	// the row above the band is untouched
	if got := buf.Luma(60, y0-1); got != 0 {
		t.Errorf("pixel above band has luma %d, want 0", got)
	}
	// the edge margin below the band is untouched
	if got := buf.Luma(60, 48); got != 0 {
		t.Errorf("pixel in edge margin has luma %d, want 0", got)
	}
	// all band pixels are opaque
	for x := 0; x < 100; x++ {
		for y := y0; y < y0+bookBarHeight; y++ {
			if buf.Pix[y*buf.Stride+x*4+3] != 255 {
				t.Fatalf("pixel (%d,%d) is not opaque", x, y)
			}
		}
	}
}

func TestDrawTop(t *testing.T) {
	buf := black(100, 50)
	cfg := &Config{
		Position:         Top,
		ShowBookProgress: true,
		FullWidth:        true,
		EdgeMargin:       3,
	}
	if err := Draw(buf, 0, 10, nil, cfg); err != nil {
		t.Fatal(err)
	}
	if got := buf.Luma(50, 3+2); got != trackGray {
		t.Errorf("track pixel luma %d, want %d", got, trackGray)
	}
	if got := buf.Luma(50, 2); got != 0 {
		t.Errorf("pixel above band has luma %d, want 0", got)
	}
}

func TestDrawChapterMarks(t *testing.T) {
	buf := black(100, 20)
	cfg := &Config{
		Position:         Top,
		ShowBookProgress: true,
		ShowChapterMarks: true,
		FullWidth:        true,
	}
	chapters := []xtc.Chapter{
		{StartPage: 0},
		{StartPage: 50},
	}
	if err := Draw(buf, 0, 100, chapters, cfg); err != nil {
		t.Fatal(err)
	}
	// the tick at page 50 sits on the gray track and is inverted
	if got := buf.Luma(50, 2); got != 255-trackGray {
		t.Errorf("tick pixel luma %d, want %d", got, 255-trackGray)
	}
	// the tick at page 0 sits on the black fill and reads white
	if got := buf.Luma(0, 2); got != 255 {
		t.Errorf("tick pixel luma %d, want 255", got)
	}
}

func TestDrawChapterBar(t *testing.T) {
	buf := black(100, 30)
	cfg := &Config{
		Position:            Top,
		ShowBookProgress:    true,
		ShowChapterProgress: true,
		FullWidth:           true,
	}
	chapters := []xtc.Chapter{{StartPage: 0}, {StartPage: 50}}
	// page 25 of 100: half way through chapter 0
	if err := Draw(buf, 24, 100, chapters, cfg); err != nil {
		t.Fatal(err)
	}
	y := bookBarHeight + barGap + 1
	if got := buf.Luma(10, y); got != 0 {
		t.Errorf("chapter fill pixel luma %d, want 0", got)
	}
	if got := buf.Luma(90, y); got != trackGray {
		t.Errorf("chapter track pixel luma %d, want %d", got, trackGray)
	}
}

func TestDrawText(t *testing.T) {
	buf := black(480, 800)
	cfg := &Config{
		Position:           Bottom,
		ShowPageXY:         true,
		ShowBookPercent:    true,
		ShowChapterXY:      true,
		ShowChapterPercent: true,
		FullWidth:          true,
		EdgeMargin:         8,
	}
	if err := Draw(buf, 41, 100, nil, cfg); err != nil {
		t.Fatal(err)
	}

	bandH := cfg.bandHeight()
	y0 := 800 - 8 - bandH

	// the text raster must contain both white background and black glyphs
	white, blackPx := 0, 0
	for y := y0; y < y0+bandH; y++ {
		for x := 0; x < 480; x++ {
			switch buf.Luma(x, y) {
			case 255:
				white++
			case 0:
				blackPx++
			}
		}
	}
	if white == 0 {
		t.Error("band has no white background pixels")
	}
	if blackPx == 0 {
		t.Error("band has no black text pixels")
	}
}

func TestDrawSideMargin(t *testing.T) {
	buf := black(100, 20)
	cfg := &Config{
		Position:         Top,
		ShowBookProgress: true,
		SideMargin:       10,
	}
	if err := Draw(buf, 99, 100, nil, cfg); err != nil {
		t.Fatal(err)
	}
	// band cleared across full width, bar only between the margins
	if got := buf.Luma(5, 2); got != 255 {
		t.Errorf("margin pixel luma %d, want 255 (cleared)", got)
	}
	if got := buf.Luma(50, 2); got != 0 {
		t.Errorf("bar pixel luma %d, want 0 (full book read)", got)
	}
	if got := buf.Luma(95, 2); got != 255 {
		t.Errorf("margin pixel luma %d, want 255 (cleared)", got)
	}
}

func TestDrawNothing(t *testing.T) {
	buf := black(10, 10)
	before := buf.Clone()
	if err := Draw(buf, 0, 10, nil, &Config{}); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(before.Pix, buf.Pix); d != "" {
		t.Errorf("empty config changed pixels (-want +got):\n%s", d)
	}
}
