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

package export

import (
	"errors"
	"image"
	"io"
	"sync"
	"sync/atomic"

	"seehuhn.de/go/xtc"
	"seehuhn.de/go/xtc/dither"
	"seehuhn.de/go/xtc/overlay"
	"seehuhn.de/go/xtc/raster"
)

// Convert pulls every page from src, applies the configured
// transforms and returns the assembled book.  The page order in the
// result always matches the source order, independent of how many
// workers ran.
//
// On error no book is returned: a [SourceError] or [EncodingError]
// for any single page aborts the whole conversion.
func Convert(src PageSource, meta xtc.Metadata, chapters []xtc.Chapter, opt *Options) (*xtc.Book, error) {
	if opt == nil {
		opt = &Options{}
	}

	depth := opt.BitDepth
	if depth == 0 {
		depth = 1
	}
	if depth != 1 && depth != 2 {
		return nil, &ConfigurationError{
			Reason: "bit depth must be 1 or 2",
		}
	}

	width := opt.Width
	height := opt.Height
	if width == 0 {
		width = DisplayWidth
	}
	if height == 0 {
		height = DisplayHeight
	}
	if width < 1 || height < 1 {
		return nil, &ConfigurationError{
			Reason: "page size must be positive",
		}
	}

	numPages := src.PageCount()
	if numPages < 1 {
		return nil, &ConfigurationError{
			Reason: "document has no pages",
		}
	}

	for i, c := range chapters {
		if c.StartPage < 0 || c.StartPage >= numPages {
			return nil, &ConfigurationError{
				Reason: "chapter start page out of range",
			}
		}
		if i > 0 && c.StartPage < chapters[i-1].StartPage {
			return nil, &ConfigurationError{
				Reason: "chapter start pages must be ascending",
			}
		}
	}

	q := opt.Quantizer
	if q == nil {
		q = dither.Direct{}
	}

	pages := make([]xtc.Page, numPages)
	var numDone atomic.Int64

	process := func(pageNo int) error {
		buf, err := src.Page(pageNo)
		if err != nil {
			return &SourceError{Page: pageNo, Err: err}
		}
		if buf == nil || buf.Width != width || buf.Height != height {
			return &SourceError{
				Page: pageNo,
				Err:  errors.New("wrong buffer dimensions"),
			}
		}
		if len(buf.Pix) < 4*width*height {
			return &SourceError{
				Page: pageNo,
				Err:  errors.New("short pixel buffer"),
			}
		}

		if opt.DitherEnabled {
			buf, err = q.Quantize(buf, depth, opt.DitherStrength)
			if err != nil {
				return &EncodingError{Page: pageNo, Err: err}
			}
		}
		if opt.NegativeEnabled {
			buf.Invert()
		}
		if opt.Overlay != nil {
			err := overlay.Draw(buf, pageNo, numPages, chapters, opt.Overlay)
			if err != nil {
				return &EncodingError{Page: pageNo, Err: err}
			}
		}

		gray := buf.Gray()
		var data []byte
		if depth == 1 {
			data, err = xtc.EncodeXTG(gray)
		} else {
			data, err = xtc.EncodeXTH(gray)
		}
		if err != nil {
			return &EncodingError{Page: pageNo, Err: err}
		}
		pages[pageNo] = xtc.Page{
			Data:   data,
			Width:  width,
			Height: height,
		}

		if opt.Progress != nil {
			opt.Progress(int(numDone.Add(1)), numPages)
		}
		return nil
	}

	numWorkers := opt.Workers
	if numWorkers < 1 {
		numWorkers = 1
	}
	if numWorkers > numPages {
		numWorkers = numPages
	}

	var firstErr error
	if numWorkers == 1 {
		for pageNo := 0; pageNo < numPages; pageNo++ {
			firstErr = process(pageNo)
			if firstErr != nil {
				break
			}
		}
	} else {
		var mu sync.Mutex
		var failed atomic.Bool
		jobs := make(chan int)

		var wg sync.WaitGroup
		for i := 0; i < numWorkers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for pageNo := range jobs {
					if failed.Load() {
						continue
					}
					if err := process(pageNo); err != nil {
						failed.Store(true)
						mu.Lock()
						if firstErr == nil || isEarlier(err, firstErr) {
							firstErr = err
						}
						mu.Unlock()
					}
				}
			}()
		}
		for pageNo := 0; pageNo < numPages; pageNo++ {
			jobs <- pageNo
		}
		close(jobs)
		wg.Wait()
	}
	if firstErr != nil {
		return nil, firstErr
	}

	return &xtc.Book{
		Meta:      meta,
		Chapters:  chapters,
		Pages:     pages,
		Grayscale: depth == 2,
	}, nil
}

// isEarlier reports whether a concerns an earlier page than b, so
// that parallel runs report a deterministic error.
func isEarlier(a, b error) bool {
	return errPage(a) < errPage(b)
}

func errPage(err error) int {
	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		return srcErr.Page
	}
	var encErr *EncodingError
	if errors.As(err, &encErr) {
		return encErr.Page
	}
	return 0
}

// Write converts src and writes the finished container to w.
func Write(w io.Writer, src PageSource, meta xtc.Metadata, chapters []xtc.Chapter, opt *Options) error {
	book, err := Convert(src, meta, chapters, opt)
	if err != nil {
		return err
	}
	return xtc.Write(w, book)
}

// BufferSource serves pages from a slice of pre-rendered buffers.
type BufferSource []*raster.Buffer

// PageCount implements the [PageSource] interface.
func (s BufferSource) PageCount() int {
	return len(s)
}

// Page implements the [PageSource] interface.  The stored buffer is
// cloned, so that repeated conversions from the same source see
// unmodified pixels.
func (s BufferSource) Page(i int) (*raster.Buffer, error) {
	return s[i].Clone(), nil
}

// ImageSource serves pages from pre-rendered images, scaling each one
// to the given page size.  Zero Width and Height default to the
// display size.
type ImageSource struct {
	Images []image.Image
	Width  int
	Height int
}

// PageCount implements the [PageSource] interface.
func (s *ImageSource) PageCount() int {
	return len(s.Images)
}

// Page implements the [PageSource] interface.
func (s *ImageSource) Page(i int) (*raster.Buffer, error) {
	width := s.Width
	height := s.Height
	if width == 0 {
		width = DisplayWidth
	}
	if height == 0 {
		height = DisplayHeight
	}
	return raster.FromImage(s.Images[i], width, height), nil
}
