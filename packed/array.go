// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package packed

import (
	"fmt"
	"io"

	"github.com/pluess/monobit/support/failure"

	"github.com/pkg/errors"
)

// ArrayLayout is a layout of a fixed number of contiguous records.
type ArrayLayout struct {
	elem *Layout
	n    int
}

// Elem returns the layout of a single element.
func (a *ArrayLayout) Elem() *Layout { return a.elem }

// Len returns the number of elements.
func (a *ArrayLayout) Len() int { return a.n }

// Size returns the size of the encoded array, in bytes.
func (a *ArrayLayout) Size() int { return a.n * a.elem.size }

// Unpack reads exactly Size bytes from r and decodes them.
func (a *ArrayLayout) Unpack(r io.Reader) ([]Record, error) {
	buf := make([]byte, a.Size())
	if err := readRecord(r, buf, a.elem.name); err != nil {
		return nil, err
	}
	return a.decode(buf), nil
}

// UnpackBytes decodes the array from buf at offset, without side effects.
func (a *ArrayLayout) UnpackBytes(buf []byte, offset int) ([]Record, error) {
	b, err := sliceRecord(buf, offset, a.Size(), a.elem.name)
	if err != nil {
		return nil, err
	}
	return a.decode(b), nil
}

// Pack encodes recs and writes them to w.
func (a *ArrayLayout) Pack(w io.Writer, recs []Record) error {
	b, err := a.PackBytes(recs)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// PackBytes encodes recs. The number of records must equal Len.
func (a *ArrayLayout) PackBytes(recs []Record) ([]byte, error) {
	b := make([]byte, a.Size())
	if err := a.encode(b, recs); err != nil {
		return nil, err
	}
	return b, nil
}

func (a *ArrayLayout) decode(b []byte) []Record {
	recs := make([]Record, a.n)
	for i := range recs {
		off := i * a.elem.size
		recs[i] = a.elem.decode(b[off : off+a.elem.size])
	}
	return recs
}

func (a *ArrayLayout) encode(b []byte, recs []Record) error {
	if len(recs) != a.n {
		return &failure.FormatError{
			Format:  a.elem.name,
			Message: fmt.Sprintf("array of %d records holds %d", a.n, len(recs)),
		}
	}
	for i, rec := range recs {
		if rec.layout != a.elem {
			return errors.Errorf("%s: element #%d has layout %q", a.elem.name, i, rec.layout.Name())
		}
		off := i * a.elem.size
		if err := a.elem.encode(b[off:off+a.elem.size], rec.values); err != nil {
			return err
		}
	}
	return nil
}
