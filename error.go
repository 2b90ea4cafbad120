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
	"errors"
	"strconv"
)

var (
	// ErrEmptyPage is returned when a page encoder is given an image
	// with zero width or height.
	ErrEmptyPage = errors.New("page has zero area")

	// ErrTooManyPages is returned when a book does not fit the 16-bit
	// page count field.
	ErrTooManyPages = errors.New("too many pages for one container")

	// ErrTooManyChapters is returned when a book does not fit the
	// 16-bit chapter count field.
	ErrTooManyChapters = errors.New("too many chapters for one container")
)

// MalformedContainerError indicates that a container file could not be
// parsed.
type MalformedContainerError struct {
	Pos int64
	Err error
}

func (err *MalformedContainerError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	tail := ""
	if err.Pos > 0 {
		tail = " (at byte " + strconv.FormatInt(err.Pos, 10) + ")"
	}
	return "not a valid XTC container" + middle + tail
}

func (err *MalformedContainerError) Unwrap() error {
	return err.Err
}

// VersionError indicates that a container declares a format version this
// library does not understand.
type VersionError struct {
	Version uint16
}

func (err *VersionError) Error() string {
	return "unsupported container version " + strconv.Itoa(int(err.Version))
}
