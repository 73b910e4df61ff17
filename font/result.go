// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package font

// Pack is an ordered, possibly empty collection of fonts.
type Pack []*Font

// Result is the outcome of a load: either a single font or a collection.
//
// The zero Result is an empty collection.
type Result struct {
	single *Font
	pack   Pack
}

// Single returns a Result holding one font.
func Single(f *Font) Result { return Result{single: f} }

// Collection returns a Result holding a collection of fonts.
func Collection(p Pack) Result { return Result{pack: append(Pack(nil), p...)} }

// IsCollection returns true if r holds a collection.
func (r Result) IsCollection() bool { return r.single == nil }

// Font returns the single font held by r, or nil if r is a collection.
func (r Result) Font() *Font { return r.single }

// Pack returns the fonts held by r. A single font is returned as a one-font
// Pack.
func (r Result) Pack() Pack {
	if r.single != nil {
		return Pack{r.single}
	}
	return append(Pack(nil), r.pack...)
}

// Len returns the number of fonts held by r.
func (r Result) Len() int {
	if r.single != nil {
		return 1
	}
	return len(r.pack)
}

// Map returns a Result of the same kind with fn applied to every font.
func (r Result) Map(fn func(*Font) *Font) Result {
	if r.single != nil {
		return Single(fn(r.single))
	}
	pack := make(Pack, len(r.pack))
	for i, f := range r.pack {
		pack[i] = fn(f)
	}
	return Result{pack: pack}
}
