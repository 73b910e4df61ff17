// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package font

import (
	"strings"
)

// NoCodepoint is the codepoint of a glyph that has none.
const NoCodepoint = -1

// Coord is a pixel offset.
type Coord struct {
	X int
	Y int
}

// Glyph is an immutable monochrome glyph.
//
// The raster is a grid of rows, top row first. A glyph's metrics place the
// raster relative to the pen position: Offset is the position of the raster's
// bottom left corner relative to the origin on the baseline, and Tracking is
// the distance from the raster's right edge to the next origin.
type Glyph struct {
	pixels    [][]bool
	codepoint int
	tags      []string
	offset    Coord
	tracking  int
}

// NewGlyph returns a glyph with a copy of pixels. All rows must have the same
// length.
func NewGlyph(pixels [][]bool) Glyph {
	g := Glyph{codepoint: NoCodepoint}
	if len(pixels) > 0 {
		g.pixels = make([][]bool, len(pixels))
		for i, row := range pixels {
			g.pixels[i] = append([]bool(nil), row...)
		}
	}
	return g
}

// Blank returns an all-paper glyph of the given size.
func Blank(width, height int) Glyph {
	pixels := make([][]bool, height)
	for i := range pixels {
		pixels[i] = make([]bool, width)
	}
	return Glyph{pixels: pixels, codepoint: NoCodepoint}
}

// FromBytes builds a glyph of the given width from packed rows. Each row
// occupies a whole number of bytes, most significant bit leftmost. Trailing
// bytes that do not make up a full row are ignored.
func FromBytes(data []byte, width int) Glyph {
	if width <= 0 {
		return Glyph{codepoint: NoCodepoint}
	}
	stride := (width + 7) / 8
	height := len(data) / stride

	pixels := make([][]bool, height)
	for y := range pixels {
		rowBytes := data[y*stride : (y+1)*stride]
		row := make([]bool, width)
		for x := range row {
			row[x] = rowBytes[x/8]&(0x80>>uint(x%8)) != 0
		}
		pixels[y] = row
	}
	return Glyph{pixels: pixels, codepoint: NoCodepoint}
}

// FromText builds a glyph from rows of text, in which '#' and '@' are ink and
// any other character is paper.
func FromText(rows ...string) Glyph {
	pixels := make([][]bool, len(rows))
	for y, r := range rows {
		row := make([]bool, len(r))
		for x, c := range []byte(r) {
			row[x] = c == '#' || c == '@'
		}
		pixels[y] = row
	}
	return Glyph{pixels: pixels, codepoint: NoCodepoint}
}

// Width returns the width of the raster.
func (g Glyph) Width() int {
	if len(g.pixels) == 0 {
		return 0
	}
	return len(g.pixels[0])
}

// Height returns the height of the raster.
func (g Glyph) Height() int { return len(g.pixels) }

// Pixel returns true if the pixel at column x of row y is ink. Coordinates
// outside the raster are paper.
func (g Glyph) Pixel(x, y int) bool {
	if y < 0 || y >= len(g.pixels) || x < 0 || x >= len(g.pixels[y]) {
		return false
	}
	return g.pixels[y][x]
}

// Pixels returns a copy of the raster.
func (g Glyph) Pixels() [][]bool { return NewGlyph(g.pixels).pixels }

// IsBlank returns true if the glyph has no ink.
func (g Glyph) IsBlank() bool {
	for _, row := range g.pixels {
		for _, p := range row {
			if p {
				return false
			}
		}
	}
	return true
}

// AsBytes packs the raster into rows of whole bytes, most significant bit
// leftmost.
func (g Glyph) AsBytes() []byte {
	stride := (g.Width() + 7) / 8
	out := make([]byte, stride*g.Height())
	for y, row := range g.pixels {
		for x, p := range row {
			if p {
				out[y*stride+x/8] |= 0x80 >> uint(x%8)
			}
		}
	}
	return out
}

// AsText renders the raster as rows of ink and paper characters.
func (g Glyph) AsText(ink, paper byte) []string {
	rows := make([]string, len(g.pixels))
	for y, row := range g.pixels {
		var sb strings.Builder
		sb.Grow(len(row))
		for _, p := range row {
			if p {
				sb.WriteByte(ink)
			} else {
				sb.WriteByte(paper)
			}
		}
		rows[y] = sb.String()
	}
	return rows
}

// Codepoint returns the glyph's codepoint, if it has one.
func (g Glyph) Codepoint() (int, bool) { return g.codepoint, g.codepoint != NoCodepoint }

// WithCodepoint returns a copy of g with codepoint cp. NoCodepoint removes it.
func (g Glyph) WithCodepoint(cp int) Glyph {
	g.codepoint = cp
	return g
}

// Tags returns the glyph's tags.
func (g Glyph) Tags() []string { return append([]string(nil), g.tags...) }

// HasTag returns true if g carries tag.
func (g Glyph) HasTag(tag string) bool {
	for _, t := range g.tags {
		if t == tag {
			return true
		}
	}
	return false
}

// WithTags returns a copy of g with the given tags, replacing any others.
func (g Glyph) WithTags(tags ...string) Glyph {
	g.tags = append([]string(nil), tags...)
	return g
}

// Offset returns the position of the raster's bottom left corner relative to
// the origin.
func (g Glyph) Offset() Coord { return g.offset }

// Tracking returns the distance from the raster's right edge to the next
// origin.
func (g Glyph) Tracking() int { return g.tracking }

// Advance returns the distance from this glyph's origin to the next.
func (g Glyph) Advance() int { return g.offset.X + g.Width() + g.tracking }

// WithMetrics returns a copy of g with the given offset and tracking.
func (g Glyph) WithMetrics(offset Coord, tracking int) Glyph {
	g.offset, g.tracking = offset, tracking
	return g
}

// Reduce returns a copy of g with blank rows and columns removed from the
// edges of the raster. Metrics are adjusted so that ink stays in place. A
// blank glyph reduces to an empty raster with the same advance.
func (g Glyph) Reduce() Glyph {
	width, height := g.Width(), g.Height()
	top, bottom, left, right := height, -1, width, -1
	for y, row := range g.pixels {
		for x, p := range row {
			if !p {
				continue
			}
			if y < top {
				top = y
			}
			if y > bottom {
				bottom = y
			}
			if x < left {
				left = x
			}
			if x > right {
				right = x
			}
		}
	}

	if bottom < 0 {
		advance := g.Advance()
		g.pixels = nil
		g.offset = Coord{X: g.offset.X, Y: 0}
		g.tracking = advance - g.offset.X
		return g
	}

	pixels := make([][]bool, bottom-top+1)
	for i := range pixels {
		pixels[i] = append([]bool(nil), g.pixels[top+i][left:right+1]...)
	}
	g.offset = Coord{X: g.offset.X + left, Y: g.offset.Y + (height - 1 - bottom)}
	g.tracking += width - 1 - right
	g.pixels = pixels
	return g
}

// Expand returns a copy of g with blank pixels added to the edges of the
// raster. Metrics are adjusted so that ink stays in place.
func (g Glyph) Expand(left, bottom, right, top int) Glyph {
	width := g.Width() + left + right
	pixels := make([][]bool, 0, g.Height()+top+bottom)
	for i := 0; i < top; i++ {
		pixels = append(pixels, make([]bool, width))
	}
	for _, r := range g.pixels {
		row := make([]bool, width)
		copy(row[left:], r)
		pixels = append(pixels, row)
	}
	for i := 0; i < bottom; i++ {
		pixels = append(pixels, make([]bool, width))
	}

	g.pixels = pixels
	g.offset = Coord{X: g.offset.X - left, Y: g.offset.Y - bottom}
	g.tracking -= right
	return g
}
