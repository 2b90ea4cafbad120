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

// Package export converts a rendered book into one container file.
//
// The pipeline pulls RGBA page buffers from a [PageSource], reduces
// them to device gray levels, optionally inverts them and draws the
// progress band, encodes each page, and finally assembles the
// container.  Pages are independent of each other, so they can be
// processed in parallel; container assembly starts only after every
// page payload exists.
package export

import (
	"fmt"

	"seehuhn.de/go/xtc/dither"
	"seehuhn.de/go/xtc/overlay"
	"seehuhn.de/go/xtc/raster"
)

// Dimensions and resolution of the target display.
const (
	DisplayWidth  = 480
	DisplayHeight = 800
	DisplayPPI    = 220
)

// A PageSource provides the rendered pages of one document.  The
// methods must be safe for concurrent use; the pipeline may request
// several pages at the same time.
type PageSource interface {
	// PageCount returns the number of pages of the document.
	PageCount() int

	// Page renders page number i (0-based).  The returned buffer is
	// owned by the pipeline afterwards and may be modified.
	Page(i int) (*raster.Buffer, error)
}

// Options is the immutable configuration of one export run.
type Options struct {
	// BitDepth is 1 for XTC output and 2 for XTCH output.
	// Zero means 1.
	BitDepth int

	// Width and Height give the page size every source buffer must
	// have.  Zero values default to the display size.
	Width  int
	Height int

	// DitherEnabled turns on Floyd-Steinberg dithering.  When false,
	// pages are reduced by plain thresholding in the encoder.
	DitherEnabled  bool
	DitherStrength float64

	// NegativeEnabled inverts the page tones for white-on-black
	// reading.
	NegativeEnabled bool

	// Overlay configures the progress band; nil disables it.
	Overlay *overlay.Config

	// Quantizer performs the dithering.  Nil means [dither.Direct];
	// pass a [dither.Pool] to spread the work over background
	// workers.
	Quantizer dither.Quantizer

	// Workers is the number of pages processed concurrently.
	// Values below 1 mean sequential processing.
	Workers int

	// Progress, if not nil, is called once per finished page with the
	// number of pages done so far and the total page count.  When
	// pages are processed in parallel the calls can arrive in any
	// page order.
	Progress func(done, total int)
}

// ConfigurationError reports an invalid export configuration.  It is
// returned before any page has been processed.
type ConfigurationError struct {
	Reason string
}

func (err *ConfigurationError) Error() string {
	return "invalid export configuration: " + err.Reason
}

// SourceError reports a page the [PageSource] failed to deliver.  The
// conversion is aborted and no container is produced.
type SourceError struct {
	Page int
	Err  error
}

func (err *SourceError) Error() string {
	return fmt.Sprintf("source page %d: %v", err.Page, err.Err)
}

func (err *SourceError) Unwrap() error {
	return err.Err
}

// EncodingError reports an internal invariant violation while encoding
// a page.  It is fatal and never retried.
type EncodingError struct {
	Page int
	Err  error
}

func (err *EncodingError) Error() string {
	return fmt.Sprintf("encoding page %d: %v", err.Page, err.Err)
}

func (err *EncodingError) Unwrap() error {
	return err.Err
}
