// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package packed

import (
	"fmt"
)

// IntType is a fixed-width integer type.
type IntType struct {
	size   int
	signed bool
}

var (
	// U8 is an unsigned 8-bit integer.
	U8 = IntType{1, false}
	// I8 is a signed 8-bit integer.
	I8 = IntType{1, true}
	// U16 is an unsigned 16-bit integer.
	U16 = IntType{2, false}
	// I16 is a signed 16-bit integer.
	I16 = IntType{2, true}
	// U32 is an unsigned 32-bit integer.
	U32 = IntType{4, false}
	// I32 is a signed 32-bit integer.
	I32 = IntType{4, true}
)

// Size returns the size of t, in bytes.
func (t IntType) Size() int { return t.size }

// Signed returns true if t is signed.
func (t IntType) Signed() bool { return t.signed }

func (t IntType) String() string {
	if t.signed {
		return fmt.Sprintf("int%d", t.size*8)
	}
	return fmt.Sprintf("uint%d", t.size*8)
}

// decode interprets the low t.size bytes of raw.
func (t IntType) decode(raw uint64) int64 { return signExtend(raw, t.size*8, t.signed) }

func bitBounds(bits int, signed bool) (min, max int64) {
	if signed {
		return -(1 << uint(bits-1)), (1 << uint(bits-1)) - 1
	}
	return 0, (1 << uint(bits)) - 1
}

func signExtend(raw uint64, bits int, signed bool) int64 {
	raw &= (1 << uint(bits)) - 1
	if signed && raw&(1<<uint(bits-1)) != 0 {
		return int64(raw) - (1 << uint(bits))
	}
	return int64(raw)
}

type fieldKind int

const (
	intField fieldKind = iota
	bitsField
	flagField
	bytesField
	charsField
	nestedField
	repeatedField
	intsField
)

// Field is a single named field in a Layout.
//
// Fields are created using the constructor functions in this package.
type Field struct {
	name string
	kind fieldKind

	// t is the integer type of int and ints fields, and the storage unit type
	// of bit-fields.
	t IntType
	// width is the width of a bit-field, in bits.
	width int
	// count is the length of bytes and chars fields, and the repetition count
	// of repeated and ints fields.
	count int
	// sub is the layout of nested and repeated fields.
	sub *Layout
}

// Name returns the field's name.
func (f Field) Name() string { return f.name }

// size returns the number of bytes that f occupies on its own. Bit-fields
// return the size of their storage unit.
func (f Field) size() int {
	switch f.kind {
	case intField, bitsField, flagField:
		return f.t.size
	case bytesField, charsField:
		return f.count
	case nestedField:
		return f.sub.Size()
	case repeatedField:
		return f.count * f.sub.Size()
	case intsField:
		return f.count * f.t.size
	default:
		panic("unknown field kind")
	}
}

func (f Field) isBits() bool { return f.kind == bitsField || f.kind == flagField }

// Int returns an integer field of type t.
func Int(name string, t IntType) Field { return Field{name: name, kind: intField, t: t} }

// Uint8 returns an unsigned 8-bit field.
func Uint8(name string) Field { return Int(name, U8) }

// Int8 returns a signed 8-bit field.
func Int8(name string) Field { return Int(name, I8) }

// Uint16 returns an unsigned 16-bit field.
func Uint16(name string) Field { return Int(name, U16) }

// Int16 returns a signed 16-bit field.
func Int16(name string) Field { return Int(name, I16) }

// Uint32 returns an unsigned 32-bit field.
func Uint32(name string) Field { return Int(name, U32) }

// Int32 returns a signed 32-bit field.
func Int32(name string) Field { return Int(name, I32) }

// Bits returns an unsigned bit-field of width bits, packed into a storage
// unit of storage bits (8, 16 or 32).
//
// Consecutive bit-fields with the same storage size share a storage unit for
// as long as they fit.
func Bits(name string, storage, width int) Field {
	return Field{name: name, kind: bitsField, t: IntType{storage / 8, false}, width: width}
}

// SignedBits is like Bits, but the field holds a two's complement value.
func SignedBits(name string, storage, width int) Field {
	return Field{name: name, kind: bitsField, t: IntType{storage / 8, true}, width: width}
}

// Flag returns a single-bit boolean field in an 8-bit storage unit.
func Flag(name string) Field {
	return Field{name: name, kind: flagField, t: U8, width: 1}
}

// Bytes returns a raw byte block of n bytes.
func Bytes(name string, n int) Field { return Field{name: name, kind: bytesField, count: n} }

// Chars returns a character block of n bytes. Its value is decoded up to the
// first NUL byte, and zero-padded when encoded. Bytes following the first NUL
// are not preserved; use Bytes for blocks that must round-trip exactly.
func Chars(name string, n int) Field { return Field{name: name, kind: charsField, count: n} }

// Nested returns a field holding a sub-record of layout l.
func Nested(name string, l *Layout) Field { return Field{name: name, kind: nestedField, sub: l} }

// Repeated returns a field holding n contiguous sub-records of layout l.
func Repeated(name string, l *Layout, n int) Field {
	return Field{name: name, kind: repeatedField, sub: l, count: n}
}

// Ints returns a field holding n contiguous integers of type t.
func Ints(name string, t IntType, n int) Field {
	return Field{name: name, kind: intsField, t: t, count: n}
}
