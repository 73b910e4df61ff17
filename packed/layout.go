// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package packed

import (
	"bytes"
	"fmt"
	"io"

	"github.com/pluess/monobit/support/dataio"
	"github.com/pluess/monobit/support/failure"

	"github.com/pkg/errors"
)

// Layout is a fixed-size packed record layout.
//
// A Layout is immutable and safe for concurrent use.
type Layout struct {
	name   string
	order  Order
	fields []Field
	slots  []slot
	index  map[string]int
	size   int
}

// slot is the resolved position of a field within a record.
type slot struct {
	// offset is the byte offset of the field, or of its storage unit.
	offset int
	// shift is the bit offset of a bit-field within its storage unit, counting
	// from the least significant bit.
	shift uint
}

func newLayout(name string, order Order, fields []Field) (*Layout, error) {
	l := Layout{
		name:   name,
		order:  order,
		fields: append([]Field(nil), fields...),
		slots:  make([]slot, len(fields)),
		index:  make(map[string]int, len(fields)),
	}

	// The bit-field storage unit currently being filled, if any.
	var (
		unitOpen   bool
		unitSize   int
		unitOffset int
		unitUsed   int
	)

	for i, f := range l.fields {
		if f.name == "" {
			return nil, errors.Errorf("%s: field #%d has no name", name, i)
		}
		if _, ok := l.index[f.name]; ok {
			return nil, errors.Errorf("%s: duplicate field %q", name, f.name)
		}
		l.index[f.name] = i

		if err := f.validate(); err != nil {
			return nil, errors.Wrapf(err, "%s: field %q", name, f.name)
		}

		if !f.isBits() {
			unitOpen = false
			l.slots[i] = slot{offset: l.size}
			l.size += f.size()
			continue
		}

		unitBits := f.t.size * 8
		if !unitOpen || unitSize != f.t.size || unitUsed+f.width > unitBits {
			// Start a new storage unit.
			unitOpen, unitSize, unitOffset, unitUsed = true, f.t.size, l.size, 0
			l.size += f.t.size
		}

		s := slot{offset: unitOffset}
		if order.msbFirst {
			s.shift = uint(unitBits - unitUsed - f.width)
		} else {
			s.shift = uint(unitUsed)
		}
		l.slots[i] = s
		unitUsed += f.width
	}

	return &l, nil
}

func (f Field) validate() error {
	switch f.kind {
	case intField, intsField:
		switch f.t.size {
		case 1, 2, 4:
		default:
			return errors.Errorf("unsupported integer size %d", f.t.size)
		}
		if f.count < 0 {
			return errors.New("negative count")
		}
	case bitsField, flagField:
		switch f.t.size {
		case 1, 2, 4:
		default:
			return errors.Errorf("unsupported storage unit of %d bits", f.t.size*8)
		}
		if f.width < 1 || f.width > f.t.size*8 {
			return errors.Errorf("bit width %d does not fit storage unit of %d bits", f.width, f.t.size*8)
		}
	case bytesField, charsField:
		if f.count < 0 {
			return errors.New("negative length")
		}
	case nestedField, repeatedField:
		if f.sub == nil {
			return errors.New("missing sub-layout")
		}
		if f.count < 0 {
			return errors.New("negative count")
		}
	}
	return nil
}

// Name returns the layout's name.
func (l *Layout) Name() string {
	if l == nil {
		return ""
	}
	return l.name
}

// Order returns the layout's byte order family.
func (l *Layout) Order() Order { return l.order }

// Size returns the size of an encoded record, in bytes.
func (l *Layout) Size() int { return l.size }

// Names returns the layout's field names, in declaration order.
func (l *Layout) Names() []string {
	names := make([]string, len(l.fields))
	for i, f := range l.fields {
		names[i] = f.name
	}
	return names
}

// Has returns true if the layout declares a field called name.
func (l *Layout) Has(name string) bool {
	_, ok := l.index[name]
	return ok
}

// Array returns a layout of n contiguous records of l.
func (l *Layout) Array(n int) *ArrayLayout {
	if n < 0 {
		panic("negative array length")
	}
	return &ArrayLayout{elem: l, n: n}
}

// Unpack reads exactly Size bytes from r and decodes them.
//
// If r holds fewer than Size bytes, Unpack returns a failure.FormatError.
func (l *Layout) Unpack(r io.Reader) (Record, error) {
	buf := make([]byte, l.size)
	if err := readRecord(r, buf, l.name); err != nil {
		return Record{}, err
	}
	return l.decode(buf), nil
}

// UnpackBytes decodes a record from buf at offset, without side effects.
//
// If buf does not hold Size bytes at offset, UnpackBytes returns a
// failure.FormatError.
func (l *Layout) UnpackBytes(buf []byte, offset int) (Record, error) {
	b, err := sliceRecord(buf, offset, l.size, l.name)
	if err != nil {
		return Record{}, err
	}
	return l.decode(b), nil
}

// Pack encodes rec and writes it to w.
func (l *Layout) Pack(w io.Writer, rec Record) error {
	b, err := l.PackBytes(rec)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// PackBytes encodes rec.
func (l *Layout) PackBytes(rec Record) ([]byte, error) {
	if rec.layout != l {
		return nil, errors.Errorf("%s: cannot encode record of layout %q", l.name, rec.layout.Name())
	}
	b := make([]byte, l.size)
	if err := l.encode(b, rec.values); err != nil {
		return nil, err
	}
	return b, nil
}

func (l *Layout) decode(b []byte) Record {
	values := make([]interface{}, len(l.fields))
	for i, f := range l.fields {
		s := l.slots[i]
		switch f.kind {
		case intField:
			values[i] = f.t.decode(l.order.getUint(b[s.offset:], f.t.size))

		case bitsField, flagField:
			unit := l.order.getUint(b[s.offset:], f.t.size)
			v := signExtend(unit>>s.shift, f.width, f.t.signed)
			if f.kind == flagField {
				values[i] = v != 0
			} else {
				values[i] = v
			}

		case bytesField:
			values[i] = append([]byte(nil), b[s.offset:s.offset+f.count]...)

		case charsField:
			raw := b[s.offset : s.offset+f.count]
			if nul := bytes.IndexByte(raw, 0); nul >= 0 {
				raw = raw[:nul]
			}
			values[i] = string(raw)

		case nestedField:
			values[i] = f.sub.decode(b[s.offset : s.offset+f.sub.size])

		case repeatedField:
			values[i] = f.sub.Array(f.count).decode(b[s.offset : s.offset+f.size()])

		case intsField:
			ints := make([]int64, f.count)
			for j := range ints {
				ints[j] = f.t.decode(l.order.getUint(b[s.offset+j*f.t.size:], f.t.size))
			}
			values[i] = ints
		}
	}
	return Record{layout: l, values: values}
}

func (l *Layout) encode(b []byte, values []interface{}) error {
	for i, f := range l.fields {
		s := l.slots[i]
		if err := l.encodeField(b, f, s, values[i]); err != nil {
			return &failure.FormatError{
				Format:  l.name,
				Message: "cannot encode field " + f.name,
				Err:     err,
			}
		}
	}
	return nil
}

func (l *Layout) encodeField(b []byte, f Field, s slot, v interface{}) error {
	switch f.kind {
	case intField:
		n, err := checkInt(v.(int64), f.t.size*8, f.t.signed)
		if err != nil {
			return err
		}
		l.order.putUint(b[s.offset:], f.t.size, n)

	case bitsField, flagField:
		var raw int64
		if f.kind == flagField {
			if v.(bool) {
				raw = 1
			}
		} else {
			raw = v.(int64)
		}
		n, err := checkInt(raw, f.width, f.t.signed)
		if err != nil {
			return err
		}
		mask := uint64(1)<<uint(f.width) - 1
		unit := l.order.getUint(b[s.offset:], f.t.size)
		unit = (unit &^ (mask << s.shift)) | (n << s.shift)
		l.order.putUint(b[s.offset:], f.t.size, unit)

	case bytesField:
		data := v.([]byte)
		if len(data) > f.count {
			return errors.Errorf("%d bytes do not fit in %d", len(data), f.count)
		}
		copy(b[s.offset:s.offset+f.count], data)

	case charsField:
		data := v.(string)
		if len(data) > f.count {
			return errors.Errorf("%d characters do not fit in %d", len(data), f.count)
		}
		copy(b[s.offset:s.offset+f.count], data)

	case nestedField:
		rec := v.(Record)
		if rec.layout != f.sub {
			return errors.Errorf("record of layout %q where %q is expected", rec.layout.Name(), f.sub.name)
		}
		return f.sub.encode(b[s.offset:s.offset+f.sub.size], rec.values)

	case repeatedField:
		return f.sub.Array(f.count).encode(b[s.offset:s.offset+f.size()], v.([]Record))

	case intsField:
		ints := v.([]int64)
		if len(ints) > f.count {
			return errors.Errorf("%d integers do not fit in %d", len(ints), f.count)
		}
		for j, iv := range ints {
			n, err := checkInt(iv, f.t.size*8, f.t.signed)
			if err != nil {
				return errors.Wrapf(err, "element #%d", j)
			}
			l.order.putUint(b[s.offset+j*f.t.size:], f.t.size, n)
		}
	}
	return nil
}

// checkInt range-checks v for a field of the given width and returns its
// two's complement bit pattern.
func checkInt(v int64, bits int, signed bool) (uint64, error) {
	min, max := bitBounds(bits, signed)
	if v < min || v > max {
		return 0, errors.Errorf("value %d out of range [%d, %d]", v, min, max)
	}
	return uint64(v) & (uint64(1)<<uint(bits) - 1), nil
}

func readRecord(r io.Reader, buf []byte, name string) error {
	switch amt, err := dataio.ReadFull(r, buf); err {
	case nil:
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		return &failure.FormatError{
			Format:  name,
			Message: fmt.Sprintf("record needs %d bytes, only %d available", len(buf), amt),
			Err:     io.ErrUnexpectedEOF,
		}
	default:
		return err
	}
}

func sliceRecord(buf []byte, offset, size int, name string) ([]byte, error) {
	if offset < 0 || offset+size > len(buf) {
		return nil, &failure.FormatError{
			Format: name,
			Message: fmt.Sprintf("record of %d bytes at offset %d exceeds buffer of %d bytes",
				size, offset, len(buf)),
			Err: io.ErrUnexpectedEOF,
		}
	}
	return buf[offset : offset+size], nil
}
