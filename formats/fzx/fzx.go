// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package fzx loads and saves ZX Spectrum FZX proportional fonts.
//
// An FZX file holds a three-byte header, a table of three-byte character
// entries for codepoints 32 up to the last character, a final offset word,
// and the glyph bitmaps. Entry offsets are relative to the entry itself.
package fzx

import (
	"io/ioutil"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/packed"
	"github.com/pluess/monobit/support/failure"

	"github.com/pkg/errors"
)

// Encoding is the encoding property of loaded fonts. Beyond ASCII, several
// encodings are in use.
const Encoding = "zx-spectrum"

const (
	firstChar = 32
	lastChar  = 255

	maxWidth = 16
	maxKern  = 3
	maxShift = 15
)

var (
	header = packed.LittleEndian.Struct("fzx header",
		packed.Uint8("height"),
		packed.Int8("tracking"),
		packed.Uint8("lastchar"),
	)

	// charEntry's kern and shift take the high bits of their storage units.
	charEntry = packed.LittleEndian.Struct("fzx char",
		packed.Bits("offset", 16, 14),
		packed.Bits("kern", 16, 2),
		packed.Bits("width", 8, 4),
		packed.Bits("shift", 8, 4),
	)

	finalWord = packed.LittleEndian.Scalar(packed.U16)
)

// Register registers the FZX loader and saver with reg.
func Register(reg *formats.Registry) error {
	if err := reg.RegisterLoader(formats.LoaderSpec{
		Name:    "FZX",
		Formats: []string{"fzx"},
		Binary:  true,
		Params:  []string{},
		Load:    load,
	}); err != nil {
		return err
	}
	return reg.RegisterSaver(formats.SaverSpec{
		Name:    "FZX",
		Formats: []string{"fzx"},
		Binary:  true,
		Params:  []string{},
		Save:    save,
	})
}

// char is a glyph with its FZX character entry.
type char struct {
	glyph font.Glyph
	entry packed.Record
}

func load(in formats.Input, opts formats.Options) (font.Result, error) {
	data, err := ioutil.ReadAll(in.Stream)
	if err != nil {
		return font.Result{}, errors.Wrap(err, "reading FZX file")
	}

	hdr, chars, err := decode(data)
	if err != nil {
		return font.Result{}, err
	}
	in.Logger.Debugf("FZX properties:\n%s", hdr.Dump())
	return font.Single(convertFrom(hdr, chars)), nil
}

func decode(data []byte) (packed.Record, []char, error) {
	hdr, err := header.UnpackBytes(data, 0)
	if err != nil {
		return packed.Record{}, nil, err
	}
	n := hdr.Int("lastchar") - firstChar + 1
	if n <= 0 {
		return packed.Record{}, nil, failure.Format("fzx", "last character %d precedes first character %d",
			hdr.Int("lastchar"), firstChar)
	}

	entries, err := charEntry.Array(n).UnpackBytes(data, header.Size())
	if err != nil {
		return packed.Record{}, nil, err
	}

	offsets := make([]int, n+1)
	for i, e := range entries {
		offsets[i] = header.Size() + charEntry.Size()*i + e.Int("offset")
	}
	offsets[n] = len(data)

	chars := make([]char, n)
	for i, e := range entries {
		start, end := offsets[i], offsets[i+1]
		if start > len(data) || end < start {
			return packed.Record{}, nil, failure.Format("fzx", "bad offset %d for character %d",
				e.Int("offset"), firstChar+i)
		}
		chars[i] = char{
			glyph: font.FromBytes(data[start:end], e.Int("width")+1),
			entry: e,
		}
	}
	return hdr, chars, nil
}

func convertFrom(hdr packed.Record, chars []char) *font.Font {
	height := hdr.Int("height")

	leading := maxShift
	glyphs := make([]font.Glyph, 0, len(chars))
	for i, c := range chars {
		kern, shift, fzxWidth := c.entry.Int("kern"), c.entry.Int("shift"), c.entry.Int("width")+1
		if shift < leading {
			leading = shift
		}

		g := c.glyph
		// Zero-advance empty entries are undefined characters.
		if (g.Width() == 0 || g.Height() == 0) && fzxWidth-kern == 0 {
			continue
		}
		glyphs = append(glyphs, g.
			WithCodepoint(firstChar+i).
			WithMetrics(font.Coord{X: -kern, Y: height - g.Height() - shift}, fzxWidth-g.Width()))
	}

	// Blank rows common to all glyphs are leading rather than ascent.
	return font.New(glyphs, font.NewProperties(
		"leading", font.Itoa(leading),
		"ascent", font.Itoa(height-leading),
		"descent", "0",
		"tracking", font.Itoa(hdr.Int("tracking")),
		"encoding", Encoding,
	))
}

func save(pack font.Pack, out formats.Output, opts formats.Options) error {
	if len(pack) != 1 {
		return failure.Format("fzx", "can only save one font to an FZX file")
	}
	f := pack[0]

	hdr, chars, err := convertTo(f, out)
	if err != nil {
		return err
	}
	out.Logger.Debugf("FZX properties:\n%s", hdr.Dump())

	data, err := encode(hdr, chars)
	if err != nil {
		return err
	}
	_, err = out.Stream.Write(data)
	return err
}

func convertTo(f *font.Font, out formats.Output) (packed.Record, []char, error) {
	dropped := 0
	for _, g := range f.Glyphs() {
		if cp, ok := g.Codepoint(); !ok || cp < firstChar || cp > lastChar {
			dropped++
		}
	}
	if dropped > 0 {
		out.Logger.Warnf("FZX format can only store codepoints %d--%d; dropping %d glyph(s).",
			firstChar, lastChar, dropped)
	}

	// Fill gaps in the contiguous range, and drop empties at its end.
	glyphs := make([]font.Glyph, 0, lastChar-firstChar+1)
	for cp := firstChar; cp <= lastChar; cp++ {
		g, ok := f.GlyphAt(cp)
		if !ok {
			g = font.Blank(0, 0)
		}
		glyphs = append(glyphs, g)
	}
	for len(glyphs) > 0 && glyphs[len(glyphs)-1].Width() == 0 && glyphs[len(glyphs)-1].Advance() == 0 {
		glyphs = glyphs[:len(glyphs)-1]
	}
	if len(glyphs) == 0 {
		return packed.Record{}, nil, failure.Format("fzx", "no glyphs in storable codepoint range %d--%d",
			firstChar, lastChar)
	}

	commonTracking := glyphs[0].Tracking()
	for _, g := range glyphs {
		if t := g.Tracking(); t < commonTracking {
			commonTracking = t
		}
	}

	lineHeight := f.LineHeight()
	chars := make([]char, len(glyphs))
	for i, g := range glyphs {
		var kern, shift, fzxWidth int
		switch advance := g.Advance() - commonTracking; {
		case g.Width() == 0 && advance <= 0:
			// Zero width cannot be stored: use one pixel and step back.
			g = font.Blank(0, 0)
			kern, shift, fzxWidth = 1, minInt(lineHeight, maxShift), 1
		case g.Width() == 0:
			shift, fzxWidth = minInt(lineHeight-g.Offset().Y, maxShift), advance
			g = font.Blank(0, 0)
		default:
			// Per-glyph tracking widens the character.
			g = g.Expand(0, 0, g.Tracking()-commonTracking, 0)
			kern = -g.Offset().X
			shift = lineHeight - g.Offset().Y - g.Height()
			fzxWidth = g.Width()
		}

		switch {
		case fzxWidth < 1 || fzxWidth > maxWidth:
			return packed.Record{}, nil, failure.Format("fzx", "glyphs must be from 1 to %d pixels wide", maxWidth)
		case kern < 0 || kern > maxKern:
			return packed.Record{}, nil, failure.Format("fzx", "glyph offset must be in range -%d--0", maxKern)
		case shift < 0 || shift > maxShift:
			return packed.Record{}, nil, failure.Format("fzx",
				"distance between raster top and line height must be in range 0--%d", maxShift)
		}

		entry, err := charEntry.Make(packed.Values{
			"kern":  kern,
			"shift": shift,
			"width": fzxWidth - 1,
		})
		if err != nil {
			return packed.Record{}, nil, err
		}
		chars[i] = char{glyph: g, entry: entry}
	}

	tracking := f.Tracking() + commonTracking
	if tracking < -128 || tracking > 127 {
		return packed.Record{}, nil, failure.Format("fzx", "tracking must be in range -128--127")
	}
	if lineHeight < 0 || lineHeight > 255 {
		return packed.Record{}, nil, failure.Format("fzx", "line height must be in range 0--255")
	}

	hdr, err := header.Make(packed.Values{
		"height":   lineHeight,
		"tracking": tracking,
		"lastchar": firstChar + len(chars) - 1,
	})
	return hdr, chars, err
}

func encode(hdr packed.Record, chars []char) ([]byte, error) {
	n := len(chars)
	bitmaps := make([][]byte, n)
	for i, c := range chars {
		bitmaps[i] = c.glyph.AsBytes()
	}

	// Offsets are relative to each entry. The final word sits between the
	// table and the bitmaps.
	entries := make([]packed.Record, n)
	pos := 0
	for i, c := range chars {
		e, err := c.entry.With("offset", pos+charEntry.Size()*(n-i)+finalWord.Size())
		if err != nil {
			return nil, err
		}
		entries[i] = e
		pos += len(bitmaps[i])
	}

	hdrBytes, err := header.PackBytes(hdr)
	if err != nil {
		return nil, err
	}
	table, err := charEntry.Array(n).PackBytes(entries)
	if err != nil {
		return nil, errors.Wrap(err, "FZX character table")
	}
	final, err := finalWord.PackBytes(int64(pos + finalWord.Size()))
	if err != nil {
		return nil, errors.Wrap(err, "FZX bitmaps too large")
	}

	data := make([]byte, 0, len(hdrBytes)+len(table)+len(final)+pos)
	data = append(data, hdrBytes...)
	data = append(data, table...)
	data = append(data, final...)
	for _, b := range bitmaps {
		data = append(data, b...)
	}
	return data, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
