// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package packed

import (
	"io"
)

// Scalar is a codec for a single integer in a byte order family.
type Scalar struct {
	order Order
	t     IntType
}

// Size returns the encoded size, in bytes.
func (s *Scalar) Size() int { return s.t.size }

// Unpack reads one integer from r.
func (s *Scalar) Unpack(r io.Reader) (int64, error) {
	buf := make([]byte, s.t.size)
	if err := readRecord(r, buf, s.t.String()); err != nil {
		return 0, err
	}
	return s.t.decode(s.order.getUint(buf, s.t.size)), nil
}

// UnpackBytes decodes one integer from buf at offset.
func (s *Scalar) UnpackBytes(buf []byte, offset int) (int64, error) {
	b, err := sliceRecord(buf, offset, s.t.size, s.t.String())
	if err != nil {
		return 0, err
	}
	return s.t.decode(s.order.getUint(b, s.t.size)), nil
}

// PackBytes encodes v.
func (s *Scalar) PackBytes(v int64) ([]byte, error) {
	n, err := checkInt(v, s.t.size*8, s.t.signed)
	if err != nil {
		return nil, err
	}
	b := make([]byte, s.t.size)
	s.order.putUint(b, s.t.size, n)
	return b, nil
}

// Pack encodes v and writes it to w.
func (s *Scalar) Pack(w io.Writer, v int64) error {
	b, err := s.PackBytes(v)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Array returns a codec for n contiguous integers.
func (s *Scalar) Array(n int) *ScalarArray {
	if n < 0 {
		panic("negative array length")
	}
	return &ScalarArray{Scalar: s, n: n}
}

// ScalarArray is a codec for a fixed number of contiguous integers.
type ScalarArray struct {
	*Scalar
	n int
}

// Len returns the number of elements.
func (a *ScalarArray) Len() int { return a.n }

// Size returns the encoded size, in bytes.
func (a *ScalarArray) Size() int { return a.n * a.t.size }

// Unpack reads the array from r.
func (a *ScalarArray) Unpack(r io.Reader) ([]int64, error) {
	buf := make([]byte, a.Size())
	if err := readRecord(r, buf, a.t.String()); err != nil {
		return nil, err
	}
	return a.decode(buf), nil
}

// UnpackBytes decodes the array from buf at offset.
func (a *ScalarArray) UnpackBytes(buf []byte, offset int) ([]int64, error) {
	b, err := sliceRecord(buf, offset, a.Size(), a.t.String())
	if err != nil {
		return nil, err
	}
	return a.decode(b), nil
}

// PackBytes encodes vs. Fewer than Len values are zero-padded.
func (a *ScalarArray) PackBytes(vs []int64) ([]byte, error) {
	f := Ints("array", a.t, a.n)
	b := make([]byte, a.Size())
	l := Layout{order: a.order}
	if err := l.encodeField(b, f, slot{}, vs); err != nil {
		return nil, err
	}
	return b, nil
}

// Pack encodes vs and writes them to w.
func (a *ScalarArray) Pack(w io.Writer, vs []int64) error {
	b, err := a.PackBytes(vs)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func (a *ScalarArray) decode(b []byte) []int64 {
	vs := make([]int64, a.n)
	for i := range vs {
		vs[i] = a.t.decode(a.order.getUint(b[i*a.t.size:], a.t.size))
	}
	return vs
}
