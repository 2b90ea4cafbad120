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

import (
	"encoding/binary"
	"errors"
	"io"
	"os"
	"time"
)

// Book collects everything that goes into one container file.  The page
// list must be complete before the container is encoded; there is no
// incremental writer.
type Book struct {
	Meta     Metadata
	Chapters []Chapter
	Pages    []Page

	// Grayscale selects the XTCH container magic for books of XTH
	// pages.  When false the XTC magic is written.
	Grayscale bool

	// CurrentPage is the 1-based reading position stored in the
	// header.  Values below 1 are written as 1.
	CurrentPage int
}

// Encode serializes the book into a single container blob.
//
// The file layout is fixed: a 56-byte header, a 256-byte metadata region,
// one 96-byte chapter table entry per chapter, one 16-byte page index
// entry per page, and finally the page payloads back to back.  All
// offsets in the header are absolute file positions.
func (b *Book) Encode() ([]byte, error) {
	numPages := len(b.Pages)
	numChapters := len(b.Chapters)
	if numPages > 0xFFFF {
		return nil, ErrTooManyPages
	}
	if numChapters > 0xFFFF {
		return nil, ErrTooManyChapters
	}

	metadataOffset := HeaderSize
	chapterTableOffset := metadataOffset + MetadataSize
	indexOffset := chapterTableOffset + numChapters*ChapterEntrySize
	pageDataOffset := indexOffset + numPages*IndexEntrySize

	total := pageDataOffset
	for _, p := range b.Pages {
		if p.Width < 0 || p.Width > 0xFFFF || p.Height < 0 || p.Height > 0xFFFF {
			return nil, errors.New("page dimensions exceed 16 bits")
		}
		total += len(p.Data)
	}
	buf := make([]byte, total)

	// header
	magic := MagicXTC
	if b.Grayscale {
		magic = MagicXTCH
	}
	binary.LittleEndian.PutUint32(buf[0:], magic)
	binary.LittleEndian.PutUint16(buf[4:], Version)
	binary.LittleEndian.PutUint16(buf[6:], uint16(numPages))
	buf[8] = 0  // read direction
	buf[9] = 1  // has metadata
	buf[10] = 0 // has thumbnails
	if numChapters > 0 {
		buf[11] = 1
	}
	currentPage := b.CurrentPage
	if currentPage < 1 {
		currentPage = 1
	}
	binary.LittleEndian.PutUint32(buf[12:], uint32(currentPage))
	binary.LittleEndian.PutUint64(buf[16:], uint64(metadataOffset))
	binary.LittleEndian.PutUint64(buf[24:], uint64(indexOffset))
	binary.LittleEndian.PutUint64(buf[32:], uint64(pageDataOffset))
	// bytes 40-47 reserved
	binary.LittleEndian.PutUint64(buf[48:], uint64(chapterTableOffset))

	// metadata
	meta := buf[metadataOffset : metadataOffset+MetadataSize]
	putCString(meta[0:titleFieldSize], b.Meta.Title)
	putCString(meta[titleFieldSize:titleFieldSize+authorFieldSize], b.Meta.Author)
	buildTime := b.Meta.BuildTime
	if buildTime.IsZero() {
		buildTime = time.Now()
	}
	binary.LittleEndian.PutUint32(meta[192:], uint32(buildTime.Unix()))
	binary.LittleEndian.PutUint16(meta[196:], uint16(numChapters))

	// chapter table
	for i, ch := range b.Chapters {
		entry := buf[chapterTableOffset+i*ChapterEntrySize:]
		putCString(entry[0:chapterTitleFieldSize], ch.Title)
		start := uint16(ch.StartPage + 1)
		binary.LittleEndian.PutUint16(entry[80:], start)
		// The device firmware stores the end page equal to the
		// start page; no known reader consumes a larger range.
		binary.LittleEndian.PutUint16(entry[82:], start)
	}

	// page index and page data
	offset := pageDataOffset
	for i, p := range b.Pages {
		entry := buf[indexOffset+i*IndexEntrySize:]
		binary.LittleEndian.PutUint64(entry[0:], uint64(offset))
		binary.LittleEndian.PutUint32(entry[8:], uint32(len(p.Data)))
		binary.LittleEndian.PutUint16(entry[12:], uint16(p.Width))
		binary.LittleEndian.PutUint16(entry[14:], uint16(p.Height))
		copy(buf[offset:], p.Data)
		offset += len(p.Data)
	}

	return buf, nil
}

// Write encodes the book and writes the container to w.
func Write(w io.Writer, b *Book) error {
	buf, err := b.Encode()
	if err != nil {
		return err
	}
	_, err = w.Write(buf)
	return err
}

// Create encodes the book and writes the container to the named file.
func Create(name string, b *Book) error {
	f, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := Write(f, b); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
