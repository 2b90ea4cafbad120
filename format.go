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

package xtc

import "time"

// Magic numbers, the little-endian reading of the four tag bytes.
const (
	MagicXTG  uint32 = 0x00475458 // "XTG\0", 1-bit page payload
	MagicXTH  uint32 = 0x00485458 // "XTH\0", 2-bit page payload
	MagicXTC  uint32 = 0x00435458 // "XTC\0", container of XTG pages
	MagicXTCH uint32 = 0x48435458 // "XTCH", container of XTH pages
)

// Version is the container format version this library writes.
const Version = 1

// Fixed region sizes of the container layout.  The regions follow each
// other without padding: header, metadata, chapter table, page index,
// page data.
const (
	HeaderSize       = 56
	MetadataSize     = 256
	ChapterEntrySize = 96
	IndexEntrySize   = 16
	PageHeaderSize   = 22
)

// String field widths inside the fixed-size regions.  Each field holds
// UTF-8 text followed by NUL padding; the text is limited to two bytes
// less than the field.
const (
	titleFieldSize        = 128
	authorFieldSize       = 64
	chapterTitleFieldSize = 80
)

// Metadata describes the book stored in a container.
type Metadata struct {
	// Title is the book title.  On the wire it is truncated to 126
	// bytes of UTF-8.
	Title string

	// Author is the book author, truncated to 62 bytes on the wire.
	Author string

	// BuildTime is recorded in the container as a Unix timestamp.
	// The zero value means "now".
	BuildTime time.Time
}

// Chapter is one entry of the table of contents.
type Chapter struct {
	// Title is the chapter heading, truncated to 78 bytes on the wire.
	Title string

	// StartPage is the 0-based index of the chapter's first page.
	// The wire format stores page numbers 1-based.
	StartPage int
}

// Page is one encoded page payload, as produced by [EncodeXTG] or
// [EncodeXTH], together with its pixel dimensions for the page index.
type Page struct {
	Data   []byte
	Width  int
	Height int
}

// truncateUTF8 shortens s to at most max bytes without splitting a
// multi-byte sequence.
func truncateUTF8(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && s[max]&0xC0 == 0x80 {
		max--
	}
	return s[:max]
}

// putCString copies s into the field dst.  The last two bytes of the
// field always stay NUL.  The caller guarantees that dst is zero-filled.
func putCString(dst []byte, s string) {
	copy(dst, truncateUTF8(s, len(dst)-2))
}

// cString reads a NUL-terminated string from the field buf.
func cString(buf []byte) string {
	for i, c := range buf {
		if c == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}
