// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fmtutil contains formatting helpers.
package fmtutil

import (
	"strings"
	"unicode"
)

// HexSlice is a byte slice that renders as a sequence of hex bytes, followed
// by its printable ASCII rendering, as in `48 65 6C 6C 6F ("Hello")`.
//
// It is meant for lazily formatted log and error messages about magic
// sequences.
type HexSlice []byte

func (hs HexSlice) String() string {
	const digits = "0123456789ABCDEF"

	var sb strings.Builder
	sb.Grow(4*len(hs) + 4)
	for i, b := range hs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteByte(digits[b>>4])
		sb.WriteByte(digits[b&0x0F])
	}

	sb.WriteString(` ("`)
	for _, b := range hs {
		if b < unicode.MaxASCII && unicode.IsPrint(rune(b)) {
			sb.WriteByte(b)
		} else {
			sb.WriteByte('.')
		}
	}
	sb.WriteString(`")`)
	return sb.String()
}
