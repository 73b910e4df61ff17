// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package byteslicereader offers R, a reader over bytes held in memory, such as
// an archive member, that can hand out its data without copying it.
//
// Peek and Next return slices of R's Buffer. Callers that keep these slices
// must not modify them while the Buffer is shared, or set AlwaysCopy.
package byteslicereader

import (
	"io"

	"github.com/pkg/errors"
)

// R reads from Buffer.
//
// A copy of R is a snapshot of its position.
type R struct {
	// Buffer is the data being read.
	Buffer []byte

	// AlwaysCopy, if true, causes Peek and Next to return copies of Buffer.
	AlwaysCopy bool

	pos int64
}

var _ interface {
	io.Reader
	io.ByteReader
	io.Seeker
} = (*R)(nil)

func (r *R) rest() []byte {
	if r.pos >= int64(len(r.Buffer)) {
		return nil
	}
	return r.Buffer[r.pos:]
}

// Size returns the length of Buffer.
func (r *R) Size() int64 { return int64(len(r.Buffer)) }

// Remaining returns the number of unread bytes.
func (r *R) Remaining() int { return len(r.rest()) }

// Read implements io.Reader.
func (r *R) Read(b []byte) (int, error) {
	if len(b) == 0 {
		return 0, nil
	}
	rest := r.rest()
	if len(rest) == 0 {
		return 0, io.EOF
	}
	n := copy(b, rest)
	r.pos += int64(n)
	return n, nil
}

// ReadByte implements io.ByteReader.
func (r *R) ReadByte() (byte, error) {
	rest := r.rest()
	if len(rest) == 0 {
		return 0, io.EOF
	}
	r.pos++
	return rest[0], nil
}

// Seek implements io.Seeker. Positions past the end are allowed, and read as
// end of file.
func (r *R) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = r.pos + offset
	case io.SeekEnd:
		pos = int64(len(r.Buffer)) + offset
	default:
		return r.pos, errors.Errorf("invalid whence %d", whence)
	}
	if pos < 0 {
		return r.pos, errors.Errorf("seek to negative position %d", pos)
	}
	r.pos = pos
	return pos, nil
}

// Peek returns up to n unread bytes without advancing r.
func (r *R) Peek(n int) []byte {
	v := r.rest()
	if n < len(v) {
		v = v[:n]
	}
	if r.AlwaysCopy {
		v = append([]byte(nil), v...)
	}
	return v
}

// Next returns the next n bytes and advances r past them. If fewer than n
// bytes remain, Next returns what remains along with io.ErrUnexpectedEOF.
func (r *R) Next(n int) ([]byte, error) {
	v := r.Peek(n)
	r.pos += int64(len(v))
	if len(v) < n {
		return v, io.ErrUnexpectedEOF
	}
	return v, nil
}
