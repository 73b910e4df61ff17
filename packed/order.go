// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package packed

import (
	"encoding/binary"
)

// Order is a byte order family.
type Order struct {
	name string
	bo   binary.ByteOrder

	// msbFirst is true if the first declared bit-field of a storage unit takes
	// its most significant bits.
	msbFirst bool
}

var (
	// BigEndian is the big-endian (Motorola) family: most significant byte
	// first, first bit-field in the most significant bits.
	BigEndian = Order{name: "big-endian", bo: binary.BigEndian, msbFirst: true}

	// LittleEndian is the little-endian (Intel) family: least significant byte
	// first, first bit-field in the least significant bits.
	LittleEndian = Order{name: "little-endian", bo: binary.LittleEndian, msbFirst: false}
)

func (o Order) String() string { return o.name }

// Struct creates a Layout in this byte order family from fields.
//
// Struct panics if the field list is invalid, e.g. if a field name is
// duplicated. Layouts are declared once at package initialization, so an
// invalid declaration is a programming error.
func (o Order) Struct(name string, fields ...Field) *Layout {
	l, err := newLayout(name, o, fields)
	if err != nil {
		panic(err)
	}
	return l
}

// Scalar returns a codec for a single integer of type t.
func (o Order) Scalar(t IntType) *Scalar {
	return &Scalar{order: o, t: t}
}

func (o Order) getUint(b []byte, size int) uint64 {
	switch size {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(o.bo.Uint16(b))
	case 4:
		return uint64(o.bo.Uint32(b))
	default:
		panic("unsupported integer size")
	}
}

func (o Order) putUint(b []byte, size int, v uint64) {
	switch size {
	case 1:
		b[0] = byte(v)
	case 2:
		o.bo.PutUint16(b, uint16(v))
	case 4:
		o.bo.PutUint32(b, uint32(v))
	default:
		panic("unsupported integer size")
	}
}
