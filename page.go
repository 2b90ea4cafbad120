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
)

// Every page payload starts with a 22-byte header:
//
//	magic      u32 @ 0
//	width      u16 @ 4
//	height     u16 @ 6
//	color mode u8  @ 8   (always 0)
//	compressed u8  @ 9   (always 0)
//	data size  u32 @ 10
//	reserved       @ 14  (8 zero bytes)
func putPageHeader(buf []byte, magic uint32, width, height, dataSize int) {
	binary.LittleEndian.PutUint32(buf[0:], magic)
	binary.LittleEndian.PutUint16(buf[4:], uint16(width))
	binary.LittleEndian.PutUint16(buf[6:], uint16(height))
	binary.LittleEndian.PutUint32(buf[10:], uint32(dataSize))
}

// grayLevel maps an 8-bit gray value to one of the device's four levels:
// 0 is white, 3 is black.  The thresholds match the 2-bit quantization
// policy in [seehuhn.de/go/xtc/dither].
func grayLevel(g uint8) uint8 {
	switch {
	case g > 212:
		return 0
	case g > 127:
		return 1
	case g > 42:
		return 2
	default:
		return 3
	}
}

// levelGray is the inverse of [grayLevel] on quantized values.
var levelGray = [4]uint8{255, 170, 85, 0}

// EncodeXTG packs img into an XTG page payload: one bit per pixel in
// row-major order, eight pixels per byte with the most significant bit
// leftmost.  A set bit is a white pixel (gray value >= 128).  Each row is
// padded to a whole number of bytes; padding bits are zero.
func EncodeXTG(img *image.Gray) ([]byte, error) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyPage
	}
	if w > 0xFFFF || h > 0xFFFF {
		return nil, errors.New("page dimensions exceed 16 bits")
	}

	stride := (w + 7) / 8
	dataSize := stride * h
	buf := make([]byte, PageHeaderSize+dataSize)
	putPageHeader(buf, MagicXTG, w, h, dataSize)

	data := buf[PageHeaderSize:]
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w]
		base := y * stride
		for x, g := range row {
			if g >= 128 {
				data[base+x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
	return buf, nil
}

// EncodeXTH packs img into an XTH page payload: two bit planes holding a
// 4-level gray image in column-major order.
//
// The device scans columns right to left, so source column x is written
// to destination column w-1-x.  Within a column, rows run top to bottom,
// eight rows per byte with the most significant bit first.  The low-order
// plane (plane 0) precedes the high-order plane (plane 1); for each pixel
// the plane bits are (0,0) white, (0,1) light gray, (1,0) dark gray and
// (1,1) black.
func EncodeXTH(img *image.Gray) ([]byte, error) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	if w <= 0 || h <= 0 {
		return nil, ErrEmptyPage
	}
	if w > 0xFFFF || h > 0xFFFF {
		return nil, errors.New("page dimensions exceed 16 bits")
	}

	colStride := (h + 7) / 8
	planeSize := colStride * w
	buf := make([]byte, PageHeaderSize+2*planeSize)
	putPageHeader(buf, MagicXTH, w, h, 2*planeSize)

	plane0 := buf[PageHeaderSize : PageHeaderSize+planeSize]
	plane1 := buf[PageHeaderSize+planeSize:]
	for x := w - 1; x >= 0; x-- {
		base := (w - 1 - x) * colStride
		for y := 0; y < h; y++ {
			level := grayLevel(img.Pix[y*img.Stride+x])
			if level == 0 {
				continue
			}
			idx := base + y>>3
			mask := byte(0x80) >> (y & 7)
			if level&2 != 0 {
				plane0[idx] |= mask
			}
			if level&1 != 0 {
				plane1[idx] |= mask
			}
		}
	}
	return buf, nil
}

// DecodePage unpacks an XTG or XTH page payload into gray pixel values.
// XTG pages decode to the values 0 and 255, XTH pages to 0, 85, 170 and
// 255.  This is the firmware's view of the page and is mainly useful for
// testing and inspection tools.
func DecodePage(payload []byte) (*image.Gray, error) {
	if len(payload) < PageHeaderSize {
		return nil, &MalformedContainerError{Err: errors.New("page payload too short")}
	}
	magic := binary.LittleEndian.Uint32(payload[0:])
	w := int(binary.LittleEndian.Uint16(payload[4:]))
	h := int(binary.LittleEndian.Uint16(payload[6:]))
	dataSize := int(binary.LittleEndian.Uint32(payload[10:]))
	if len(payload) != PageHeaderSize+dataSize {
		return nil, &MalformedContainerError{Err: errors.New("page data size mismatch")}
	}
	data := payload[PageHeaderSize:]

	img := image.NewGray(image.Rect(0, 0, w, h))
	switch magic {
	case MagicXTG:
		stride := (w + 7) / 8
		if dataSize != stride*h {
			return nil, &MalformedContainerError{Err: errors.New("XTG payload size mismatch")}
		}
		for y := 0; y < h; y++ {
			base := y * stride
			for x := 0; x < w; x++ {
				if data[base+x>>3]&(0x80>>(x&7)) != 0 {
					img.Pix[y*img.Stride+x] = 255
				}
			}
		}
	case MagicXTH:
		colStride := (h + 7) / 8
		planeSize := colStride * w
		if dataSize != 2*planeSize {
			return nil, &MalformedContainerError{Err: errors.New("XTH payload size mismatch")}
		}
		plane0 := data[:planeSize]
		plane1 := data[planeSize:]
		for x := 0; x < w; x++ {
			base := (w - 1 - x) * colStride
			for y := 0; y < h; y++ {
				idx := base + y>>3
				mask := byte(0x80) >> (y & 7)
				var level uint8
				if plane0[idx]&mask != 0 {
					level |= 2
				}
				if plane1[idx]&mask != 0 {
					level |= 1
				}
				img.Pix[y*img.Stride+x] = levelGray[level]
			}
		}
	default:
		return nil, &MalformedContainerError{Err: errors.New("unknown page magic")}
	}
	return img, nil
}
