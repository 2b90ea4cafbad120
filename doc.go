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

// Package xtc implements the XTC and XTCH book container formats.
//
// A container holds a sequence of pre-rendered book pages as raw bitmap
// payloads, together with book metadata, an optional chapter table, and a
// page index for random access.  The target device's firmware reads the
// file directly, so the layout is byte-exact: all multi-byte integers are
// little-endian, and every region starts at the offset recorded in the
// 56-byte file header.
//
// Two page payload formats exist.  XTG stores one bit per pixel in
// row-major order; XTH stores four gray levels as two separate bit planes
// in column-major order.  A container of XTG pages carries the "XTC\0"
// magic, a container of XTH pages the "XTCH" magic.
//
// Use [EncodeXTG] or [EncodeXTH] to encode individual pages, and
// [Book.Encode] or [Write] to assemble the container:
//
//	page, err := xtc.EncodeXTG(img)
//	...
//	book := &xtc.Book{
//	    Meta:  xtc.Metadata{Title: "Moby-Dick", Author: "Herman Melville"},
//	    Pages: []xtc.Page{{Data: page, Width: 480, Height: 800}},
//	}
//	err = xtc.Write(f, book)
//
// [ReadInfo] parses an existing container and [DecodePage] unpacks a page
// payload back into gray pixel values.
//
// The sub-packages build on this:
//   - [seehuhn.de/go/xtc/raster] holds RGBA page buffers.
//   - [seehuhn.de/go/xtc/dither] reduces pages to 1 or 2 bits.
//   - [seehuhn.de/go/xtc/overlay] draws the reading progress band.
//   - [seehuhn.de/go/xtc/export] runs the whole conversion pipeline.
package xtc
