// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package font is the bitmap font model exchanged between the format
// dispatcher and format plugins.
//
// Fonts and glyphs are immutable: every modification returns a new value.
package font

import (
	"strconv"
)

// Font is an immutable set of glyphs with properties.
type Font struct {
	glyphs []Glyph
	props  Properties
}

// New returns a font holding glyphs and props.
func New(glyphs []Glyph, props Properties) *Font {
	return &Font{
		glyphs: append([]Glyph(nil), glyphs...),
		props:  props,
	}
}

// Glyphs returns the font's glyphs, in order.
func (f *Font) Glyphs() []Glyph { return append([]Glyph(nil), f.glyphs...) }

// Len returns the number of glyphs.
func (f *Font) Len() int { return len(f.glyphs) }

// GlyphAt returns the glyph with codepoint cp.
func (f *Font) GlyphAt(cp int) (Glyph, bool) {
	for _, g := range f.glyphs {
		if c, ok := g.Codepoint(); ok && c == cp {
			return g, true
		}
	}
	return Glyph{}, false
}

// Properties returns the font's properties.
func (f *Font) Properties() Properties { return f.props }

// Property returns the value of property key, or an empty string.
func (f *Font) Property(key string) string {
	v, _ := f.props.Get(key)
	return v
}

// HasProperty returns true if property key is set.
func (f *Font) HasProperty(key string) bool { return f.props.Has(key) }

// Name returns the font's name property.
func (f *Font) Name() string { return f.Property("name") }

// SetProperties returns a copy of f with the given properties set, in the
// order they are listed as alternating keys and values.
func (f *Font) SetProperties(kv ...string) *Font {
	props := f.props
	for i := 0; i+1 < len(kv); i += 2 {
		props = props.With(kv[i], kv[i+1])
	}
	return &Font{glyphs: f.glyphs, props: props}
}

// SetDefaults is like SetProperties, but only sets properties that are not
// already set.
func (f *Font) SetDefaults(kv ...string) *Font {
	props := f.props
	for i := 0; i+1 < len(kv); i += 2 {
		if !props.Has(kv[i]) {
			props = props.With(kv[i], kv[i+1])
		}
	}
	return &Font{glyphs: f.glyphs, props: props}
}

// WithGlyphs returns a copy of f holding glyphs instead of its own.
func (f *Font) WithGlyphs(glyphs []Glyph) *Font {
	return &Font{glyphs: append([]Glyph(nil), glyphs...), props: f.props}
}

// Ascent returns the height of the font above the baseline: the "ascent"
// property, or else the highest ink extent of any glyph.
func (f *Font) Ascent() int {
	if f.props.Has("ascent") {
		return f.props.Int("ascent", 0)
	}
	ascent := 0
	for _, g := range f.glyphs {
		if top := g.Offset().Y + g.Height(); top > ascent {
			ascent = top
		}
	}
	return ascent
}

// Descent returns the depth of the font below the baseline: the "descent"
// property, or else the lowest extent of any glyph.
func (f *Font) Descent() int {
	if f.props.Has("descent") {
		return f.props.Int("descent", 0)
	}
	descent := 0
	for _, g := range f.glyphs {
		if d := -g.Offset().Y; d > descent {
			descent = d
		}
	}
	return descent
}

// LineHeight returns the distance between baselines: the "line-height"
// property, or else ascent, descent and "leading" combined.
func (f *Font) LineHeight() int {
	if f.props.Has("line-height") {
		return f.props.Int("line-height", 0)
	}
	return f.Ascent() + f.Descent() + f.props.Int("leading", 0)
}

// Tracking returns the font-wide "tracking" property.
func (f *Font) Tracking() int { return f.props.Int("tracking", 0) }

// MaxWidth returns the width of the widest glyph raster.
func (f *Font) MaxWidth() int {
	width := 0
	for _, g := range f.glyphs {
		if w := g.Width(); w > width {
			width = w
		}
	}
	return width
}

// PixelSize returns the font's nominal pixel size: the "pixel-size"
// property, or else ascent plus descent.
func (f *Font) PixelSize() int {
	if f.props.Has("pixel-size") {
		return f.props.Int("pixel-size", 0)
	}
	return f.Ascent() + f.Descent()
}

// Itoa is a shorthand for strconv.Itoa, for building property values.
func Itoa(v int) string { return strconv.Itoa(v) }
