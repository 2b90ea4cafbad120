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

// Package overlay draws the reading progress band onto page pixels.
//
// The band combines a book progress bar with optional chapter tick
// marks, an optional chapter progress bar, and up to four text items:
// page numbers and book percentage on the left, chapter position and
// chapter percentage on the right.  The same drawing code serves both
// the interactive preview and the export pipeline, so the two always
// agree pixel for pixel.
package overlay

import (
	"math"

	"seehuhn.de/go/xtc"
	"seehuhn.de/go/xtc/raster"
)

// Position selects the display edge the band is anchored to.
type Position int

const (
	Bottom Position = iota
	Top
)

// Config controls which parts of the band are drawn and where.
// The zero value draws nothing; set at least one Show flag.
type Config struct {
	Position Position

	// ShowBookProgress draws the book progress bar.
	ShowBookProgress bool

	// ShowChapterMarks adds a tick mark on the book progress bar at
	// each chapter start, drawn in inverted color.
	ShowChapterMarks bool

	// ShowChapterProgress draws a thinner chapter progress bar below
	// the book progress bar.
	ShowChapterProgress bool

	// FullWidth stretches the bars across the whole display width,
	// ignoring SideMargin.
	FullWidth bool

	// Text items: "page/total" and book percentage are left-aligned,
	// chapter position and chapter percentage right-aligned.
	ShowPageXY         bool
	ShowBookPercent    bool
	ShowChapterXY      bool
	ShowChapterPercent bool

	// FontSize is the text height in pixels.  Zero means 18.
	FontSize int

	// EdgeMargin is the gap between the band and the display edge.
	EdgeMargin int

	// SideMargin is the left and right inset of the bars and text.
	SideMargin int
}

// Progress locates a page within its chapter.
type Progress struct {
	// ChapterIndex is the 0-based index into the chapter list.
	ChapterIndex int

	// PageInChapter is the 1-based position of the current page
	// within the chapter.
	PageInChapter int

	// PagesInChapter is the total number of pages of the chapter.
	PagesInChapter int
}

// Resolve determines the chapter containing currentPage (0-based).
//
// The chapter list must be sorted by ascending start page.  The active
// chapter is the last one whose start page is not after the current
// page; if the current page comes before the first chapter, the first
// chapter is used.  An empty list treats the whole book as a single
// chapter.
func Resolve(chapters []xtc.Chapter, currentPage, totalPages int) Progress {
	if len(chapters) == 0 {
		return Progress{
			ChapterIndex:   0,
			PageInChapter:  currentPage + 1,
			PagesInChapter: totalPages,
		}
	}

	idx := 0
	for i := len(chapters) - 1; i >= 0; i-- {
		if chapters[i].StartPage <= currentPage {
			idx = i
			break
		}
	}

	start := chapters[idx].StartPage
	end := totalPages - 1
	if idx+1 < len(chapters) {
		end = chapters[idx+1].StartPage - 1
	}

	pageInChapter := currentPage - start + 1
	if pageInChapter < 1 {
		pageInChapter = 1
	}
	return Progress{
		ChapterIndex:   idx,
		PageInChapter:  pageInChapter,
		PagesInChapter: end - start + 1,
	}
}

// Percent returns the chapter progress as a percentage, rounded to the
// nearest integer.
func (p Progress) Percent() int {
	if p.PagesInChapter <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(p.PageInChapter) / float64(p.PagesInChapter)))
}

// bar geometry in pixels
const (
	bookBarHeight    = 6
	chapterBarHeight = 3
	barGap           = 2
	textGap          = 2

	trackGray = 170
)

// bandHeight returns the total height of the band for the given
// configuration.
func (cfg *Config) bandHeight() int {
	h := 0
	if cfg.ShowBookProgress {
		h += bookBarHeight
	}
	if cfg.ShowChapterProgress {
		if h > 0 {
			h += barGap
		}
		h += chapterBarHeight
	}
	if cfg.hasText() {
		if h > 0 {
			h += textGap
		}
		h += cfg.fontSize()
	}
	return h
}

func (cfg *Config) hasText() bool {
	return cfg.ShowPageXY || cfg.ShowBookPercent ||
		cfg.ShowChapterXY || cfg.ShowChapterPercent
}

func (cfg *Config) fontSize() int {
	if cfg.FontSize > 0 {
		return cfg.FontSize
	}
	return 18
}

// Draw renders the band onto buf.  currentPage is 0-based; chapters may
// be empty.  All pixels written are fully opaque.
func Draw(buf *raster.Buffer, currentPage, totalPages int, chapters []xtc.Chapter, cfg *Config) error {
	bandH := cfg.bandHeight()
	if bandH == 0 || totalPages <= 0 {
		return nil
	}

	y0 := cfg.EdgeMargin
	if cfg.Position == Bottom {
		y0 = buf.Height - cfg.EdgeMargin - bandH
	}

	// clear the band to opaque white across the full display width
	for y := y0; y < y0+bandH; y++ {
		for x := 0; x < buf.Width; x++ {
			buf.SetGray(x, y, 255)
		}
	}

	x0 := cfg.SideMargin
	x1 := buf.Width - cfg.SideMargin
	if cfg.FullWidth {
		x0, x1 = 0, buf.Width
	}
	if x1 <= x0 {
		return nil
	}
	barW := x1 - x0

	prog := Resolve(chapters, currentPage, totalPages)

	y := y0
	if cfg.ShowBookProgress {
		fill := barW * (currentPage + 1) / totalPages
		drawBar(buf, x0, y, barW, bookBarHeight, fill)
		if cfg.ShowChapterMarks {
			for _, ch := range chapters {
				tick := x0 + ch.StartPage*barW/totalPages
				invertColumn(buf, tick, y, bookBarHeight)
			}
		}
		y += bookBarHeight
	}
	if cfg.ShowChapterProgress {
		if y > y0 {
			y += barGap
		}
		fill := 0
		if prog.PagesInChapter > 0 {
			fill = barW * prog.PageInChapter / prog.PagesInChapter
		}
		drawBar(buf, x0, y, barW, chapterBarHeight, fill)
		y += chapterBarHeight
	}
	if cfg.hasText() {
		if y > y0 {
			y += textGap
		}
		if err := drawText(buf, x0, y, barW, currentPage, totalPages, prog, cfg); err != nil {
			return err
		}
	}
	return nil
}

// drawBar paints a gray track of the given size with the leftmost fill
// pixels black.
func drawBar(buf *raster.Buffer, x0, y0, w, h, fill int) {
	if fill > w {
		fill = w
	}
	for y := y0; y < y0+h; y++ {
		for x := x0; x < x0+w; x++ {
			v := uint8(trackGray)
			if x-x0 < fill {
				v = 0
			}
			buf.SetGray(x, y, v)
		}
	}
}

// invertColumn flips the color of one pixel column, marking a chapter
// start on the progress bar.
func invertColumn(buf *raster.Buffer, x, y0, h int) {
	if x < 0 || x >= buf.Width {
		return
	}
	for y := y0; y < y0+h; y++ {
		if y < 0 || y >= buf.Height {
			continue
		}
		i := y*buf.Stride + x*4
		v := 255 - buf.Pix[i]
		buf.Pix[i] = v
		buf.Pix[i+1] = v
		buf.Pix[i+2] = v
		buf.Pix[i+3] = 255
	}
}
