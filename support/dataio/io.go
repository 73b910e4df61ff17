// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package dataio contains exact-size read helpers for fixed binary records.
package dataio

import (
	"io"
)

// ReadFull reads from r until buf is full, or until an error is encountered.
//
// This accommodates the fact that io.Reader is allowed to return less than the
// full buffer size without erroring. ReadFull returns the number of bytes read.
// If r ends before buf is full, the error is io.ErrUnexpectedEOF, or io.EOF if
// nothing at all could be read.
func ReadFull(r io.Reader, buf []byte) (int, error) {
	total := 0
	for remaining := buf; len(remaining) > 0; {
		amt, err := r.Read(remaining)
		remaining = remaining[amt:]
		total += amt
		if err != nil {
			switch {
			case len(remaining) == 0:
				// Finished read, an EOF (or any error) here is not our concern.
				return total, nil
			case err == io.EOF && total == 0:
				return 0, io.EOF
			case err == io.EOF:
				return total, io.ErrUnexpectedEOF
			default:
				return total, err
			}
		}
	}
	return total, nil
}

// Skip discards exactly n bytes from r.
func Skip(r io.Reader, n int64) error {
	switch amt, err := io.CopyN(io.Discard, r, n); {
	case err == io.EOF && amt < n:
		return io.ErrUnexpectedEOF
	default:
		return err
	}
}
