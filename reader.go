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
	"image"
	"os"
	"time"
)

// Info summarizes the contents of a container file.
type Info struct {
	// Format is "XTC" for 1-bit books and "XTCH" for 2-bit books.
	Format string

	Version     uint16
	Meta        Metadata
	Chapters    []Chapter
	CurrentPage int

	// PageIndex holds one entry per page, in page order.
	PageIndex []PageInfo
}

// PageInfo is one entry of the container's page index.
type PageInfo struct {
	Offset int64
	Size   int
	Width  int
	Height int
}

// ReadInfo parses a container and checks its layout.
//
// Beyond the header fields, this verifies the structural invariant of the
// page index: the pages are stored back to back, so each entry's offset
// plus size must equal the next entry's offset, and the last page must
// end at the end of the file.
func ReadInfo(data []byte) (*Info, error) {
	if len(data) < HeaderSize {
		return nil, &MalformedContainerError{Err: errors.New("file too short")}
	}

	info := &Info{}
	switch binary.LittleEndian.Uint32(data[0:]) {
	case MagicXTC:
		info.Format = "XTC"
	case MagicXTCH:
		info.Format = "XTCH"
	default:
		return nil, &MalformedContainerError{Err: errors.New("wrong magic number")}
	}

	info.Version = binary.LittleEndian.Uint16(data[4:])
	if info.Version != Version {
		return nil, &VersionError{Version: info.Version}
	}

	numPages := int(binary.LittleEndian.Uint16(data[6:]))
	hasChapters := data[11] != 0
	info.CurrentPage = int(binary.LittleEndian.Uint32(data[12:]))
	metadataOffset := binary.LittleEndian.Uint64(data[16:])
	indexOffset := binary.LittleEndian.Uint64(data[24:])
	pageDataOffset := binary.LittleEndian.Uint64(data[32:])
	chapterTableOffset := binary.LittleEndian.Uint64(data[48:])

	// All offsets come from the file and can be arbitrary 64-bit
	// values, so the bounds checks must not add to them.
	fileSize := uint64(len(data))
	if metadataOffset > fileSize || fileSize-metadataOffset < MetadataSize {
		return nil, &MalformedContainerError{
			Pos: int64(metadataOffset),
			Err: errors.New("metadata region out of range"),
		}
	}
	meta := data[metadataOffset : metadataOffset+MetadataSize]
	info.Meta.Title = cString(meta[0:titleFieldSize])
	info.Meta.Author = cString(meta[titleFieldSize : titleFieldSize+authorFieldSize])
	info.Meta.BuildTime = time.Unix(int64(binary.LittleEndian.Uint32(meta[192:])), 0)
	numChapters := int(binary.LittleEndian.Uint16(meta[196:]))

	if hasChapters != (numChapters > 0) {
		return nil, &MalformedContainerError{
			Err: errors.New("chapter flag disagrees with chapter count"),
		}
	}
	if numChapters > 0 {
		tableSize := uint64(numChapters) * ChapterEntrySize
		if chapterTableOffset > fileSize || fileSize-chapterTableOffset < tableSize {
			return nil, &MalformedContainerError{
				Pos: int64(chapterTableOffset),
				Err: errors.New("chapter table out of range"),
			}
		}
		for i := 0; i < numChapters; i++ {
			entry := data[chapterTableOffset+uint64(i)*ChapterEntrySize:]
			info.Chapters = append(info.Chapters, Chapter{
				Title:     cString(entry[0:chapterTitleFieldSize]),
				StartPage: int(binary.LittleEndian.Uint16(entry[80:])) - 1,
			})
		}
	}

	indexSize := uint64(numPages) * IndexEntrySize
	if indexOffset > fileSize || fileSize-indexOffset < indexSize {
		return nil, &MalformedContainerError{
			Pos: int64(indexOffset),
			Err: errors.New("page index out of range"),
		}
	}
	next := pageDataOffset
	for i := 0; i < numPages; i++ {
		entry := data[indexOffset+uint64(i)*IndexEntrySize:]
		offset := binary.LittleEndian.Uint64(entry[0:])
		size := binary.LittleEndian.Uint32(entry[8:])
		if offset != next {
			return nil, &MalformedContainerError{
				Pos: int64(offset),
				Err: errors.New("page data has gaps or overlaps"),
			}
		}
		next = offset + uint64(size)
		info.PageIndex = append(info.PageIndex, PageInfo{
			Offset: int64(offset),
			Size:   int(size),
			Width:  int(binary.LittleEndian.Uint16(entry[12:])),
			Height: int(binary.LittleEndian.Uint16(entry[14:])),
		})
	}
	if next != uint64(len(data)) {
		return nil, &MalformedContainerError{
			Pos: int64(next),
			Err: errors.New("trailing data after last page"),
		}
	}

	return info, nil
}

// ReadPage extracts and decodes page number i (0-based) from a container
// previously parsed with [ReadInfo].
func ReadPage(data []byte, info *Info, i int) (*image.Gray, error) {
	if i < 0 || i >= len(info.PageIndex) {
		return nil, errors.New("page number out of range")
	}
	entry := info.PageIndex[i]
	return DecodePage(data[entry.Offset : entry.Offset+int64(entry.Size)])
}

// Open reads and parses the named container file.
func Open(name string) ([]byte, *Info, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, nil, err
	}
	info, err := ReadInfo(data)
	if err != nil {
		return nil, nil, err
	}
	return data, info, nil
}
