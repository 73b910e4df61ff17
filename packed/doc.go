// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package packed describes fixed-size packed binary records declaratively and
// decodes and encodes them.
//
// Legacy bitmap font formats store their headers, character tables and
// kerning tables as C structures laid out without padding. A Layout lists the
// fields of such a record in order. Each Layout belongs to a byte order
// family, which governs two things at once:
//
//	- how multi-byte integers are assembled from bytes, and
//	- which end of a storage unit holds the first declared bit-field.
//
// In the LittleEndian family, the first bit-field occupies the least
// significant bits of its storage unit. In the BigEndian family it occupies
// the most significant bits. This matches the way C compilers lay out
// bit-fields on the respective platforms, and so the way the formats were
// written.
//
// For example, the FZX character table entry is declared as
//
//	var charEntry = packed.LittleEndian.Struct("fzx char",
//		packed.Bits("offset", 16, 14),
//		packed.Bits("kern", 16, 2),
//		packed.Bits("width", 8, 4),
//		packed.Bits("shift", 8, 4),
//	)
//
// and occupies three bytes: one little-endian 16-bit word holding offset and
// kern, followed by one byte holding width and shift.
//
// Decoded values are returned as immutable Records. A Layout encodes a Record
// back to exactly the bytes it was decoded from.
package packed
