// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bdf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/support/failure"
	"github.com/pluess/monobit/support/logging"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var title = cases.Title(language.Und)

func save(pack font.Pack, out formats.Output, opts formats.Options) error {
	if len(pack) != 1 {
		return failure.Format("bdf", "can only save one font to a BDF file")
	}
	data, err := encode(pack[0], out.Logger)
	if err != nil {
		return err
	}
	_, err = out.Stream.Write(data)
	return err
}

// metrics are the font-wide values a BDF file is written with.
type metrics struct {
	pointSize int
	dpiX      int
	dpiY      int
	spacing   string
}

func fontMetrics(f *font.Font) (metrics, error) {
	m := metrics{
		pointSize: f.Properties().Int("point-size", f.PixelSize()),
		dpiX:      72,
		dpiY:      72,
		spacing:   f.Property("spacing"),
	}
	if m.pointSize <= 0 {
		return m, failure.Format("bdf", "font has no size")
	}

	if dpi := strings.Fields(f.Property("dpi")); len(dpi) > 0 {
		vals := make([]int, len(dpi))
		for i, d := range dpi {
			var err error
			if vals[i], err = strconv.Atoi(d); err != nil || vals[i] <= 0 {
				return m, failure.Format("bdf", "bad dpi property %q", f.Property("dpi"))
			}
		}
		m.dpiX, m.dpiY = vals[0], vals[len(vals)-1]
	}

	if m.spacing == "" {
		m.spacing = "monospace"
		glyphs := f.Glyphs()
		for _, g := range glyphs {
			if g.Advance() != glyphs[0].Advance() {
				m.spacing = "proportional"
				break
			}
		}
	}
	return m, nil
}

func encode(f *font.Font, log logging.L) ([]byte, error) {
	m, err := fontMetrics(f)
	if err != nil {
		return nil, err
	}

	var (
		chars    bytes.Buffer
		bbox     box
		advances int
	)
	glyphs := f.Glyphs()
	for i, g := range glyphs {
		enc := -1
		cp, hasCP := g.Codepoint()
		if hasCP {
			enc = cp
		}

		// Every character needs a name.
		var name string
		switch tags := g.Tags(); {
		case len(tags) > 0:
			name = tags[0]
		case hasCP:
			name = fmt.Sprintf("char%02X", cp)
		default:
			log.Warnf("Glyph %d has neither a name nor a codepoint.", i)
			name = fmt.Sprintf("glyph%d", i)
		}

		dwidth := g.Advance() + f.Tracking()
		swidth := int(math.Round(float64(dwidth) * 72000 / float64(m.pointSize*m.dpiY)))
		advances += dwidth

		// Glyphs are stored at their ink bounds, except in cell fonts.
		if m.spacing != "character-cell" && m.spacing != "multi-cell" {
			g = g.Reduce()
		}
		bbox.add(g)

		fmt.Fprintf(&chars, "STARTCHAR %s\n", name)
		fmt.Fprintf(&chars, "ENCODING %d\n", enc)
		fmt.Fprintf(&chars, "SWIDTH %d 0\n", swidth)
		fmt.Fprintf(&chars, "DWIDTH %d 0\n", dwidth)
		fmt.Fprintf(&chars, "BBX %d %d %d %d\n", g.Width(), g.Height(), g.Offset().X, g.Offset().Y)
		chars.WriteString("BITMAP\n")
		if g.Width() > 0 {
			data, stride := g.AsBytes(), (g.Width()+7)/8
			for y := 0; y < g.Height(); y++ {
				chars.WriteString(strings.ToUpper(hex.EncodeToString(data[y*stride : (y+1)*stride])))
				chars.WriteByte('\n')
			}
		}
		chars.WriteString("ENDCHAR\n")
	}

	average := 0.0
	if len(glyphs) > 0 {
		average = float64(advances) / float64(len(glyphs))
	}
	xProps := xlfdProperties(f, m, average)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "STARTFONT %s\n", Version)
	if c := f.Property("comment"); c != "" {
		for _, line := range strings.Split(c, "\n") {
			fmt.Fprintf(&buf, "COMMENT %s\n", line)
		}
	}
	fmt.Fprintf(&buf, "FONT %s\n", xlfdName(xProps))
	fmt.Fprintf(&buf, "SIZE %d %d %d\n", m.pointSize, m.dpiX, m.dpiY)
	fmt.Fprintf(&buf, "FONTBOUNDINGBOX %d %d %d %d\n", bbox.right-bbox.left, bbox.top-bbox.bottom, bbox.left, bbox.bottom)
	if len(xProps) > 0 {
		fmt.Fprintf(&buf, "STARTPROPERTIES %d\n", len(xProps))
		for _, kv := range xProps {
			fmt.Fprintf(&buf, "%s %s\n", kv.key, kv.value)
		}
		buf.WriteString("ENDPROPERTIES\n")
	}
	fmt.Fprintf(&buf, "CHARS %d\n", len(glyphs))
	buf.Write(chars.Bytes())
	buf.WriteString("ENDFONT\n")
	return buf.Bytes(), nil
}

// box is the union of glyph rasters, relative to the origin.
type box struct {
	left, bottom, right, top int
	set                      bool
}

func (b *box) add(g font.Glyph) {
	if g.Width() == 0 || g.Height() == 0 {
		return
	}
	l, bo := g.Offset().X, g.Offset().Y
	r, t := l+g.Width(), bo+g.Height()
	if !b.set {
		*b = box{l, bo, r, t, true}
		return
	}
	if l < b.left {
		b.left = l
	}
	if bo < b.bottom {
		b.bottom = bo
	}
	if r > b.right {
		b.right = r
	}
	if t > b.top {
		b.top = t
	}
}

// xlfdProperties builds the X property table of f.
func xlfdProperties(f *font.Font, m metrics, average float64) table {
	var x table
	add := func(key, value string) {
		if value != "" {
			x.set(key, value)
		}
	}

	add("FONT_ASCENT", strconv.Itoa(f.Ascent()))
	add("FONT_DESCENT", strconv.Itoa(f.Descent()))
	add("PIXEL_SIZE", strconv.Itoa(f.PixelSize()))
	add("X_HEIGHT", f.Property("x-height"))
	add("CAP_HEIGHT", f.Property("cap-height"))
	add("RESOLUTION_X", strconv.Itoa(m.dpiX))
	add("RESOLUTION_Y", strconv.Itoa(m.dpiY))
	add("POINT_SIZE", strconv.Itoa(m.pointSize*10))
	add("FACE_NAME", quote(f.Name()))
	add("FONT_VERSION", quote(f.Property("revision")))
	add("COPYRIGHT", quote(f.Property("copyright")))
	add("NOTICE", quote(f.Property("notice")))
	add("FOUNDRY", quote(f.Property("foundry")))
	add("FAMILY_NAME", quote(f.Property("family")))

	weight := f.Property("weight")
	if weight == "" {
		weight = "regular"
	}
	add("WEIGHT_NAME", quote(title.String(weight)))
	add("RELATIVE_WEIGHT", weightCodes[weight])

	slant := slantCodes[f.Property("slant")]
	if slant == "" {
		slant = "R"
	}
	add("SLANT", quote(slant))
	add("SPACING", quote(spacingCodes[m.spacing]))

	setwidth := f.Property("setwidth")
	if setwidth == "" {
		setwidth = "medium"
	}
	add("SETWIDTH_NAME", quote(title.String(setwidth)))
	add("RELATIVE_SETWIDTH", setwidthCodes[setwidth])
	add("ADD_STYLE_NAME", quote(title.String(f.Property("style"))))
	add("AVERAGE_WIDTH", strings.Replace(strconv.Itoa(int(math.Round(average*10))), "-", "~", 1))

	if f.HasProperty("default-char") {
		add("DEFAULT_CHAR", f.Property("default-char"))
	}

	encoding := f.Property("encoding")
	if isUnicode(encoding) {
		add("CHARSET_REGISTRY", `"ISO10646"`)
		add("CHARSET_ENCODING", `"1"`)
	} else {
		name, ok := unixEncodings[encoding]
		if !ok {
			name = encoding
		}
		parts := strings.SplitN(name, "-", 2)
		add("CHARSET_REGISTRY", quote(strings.ToUpper(parts[0])))
		if len(parts) == 2 {
			add("CHARSET_ENCODING", quote(strings.ToUpper(parts[1])))
		} else {
			add("CHARSET_ENCODING", `"0"`)
		}
	}

	// Unparsed properties from a loaded BDF file go back as they were.
	for _, p := range f.Properties().All() {
		if strings.HasPrefix(p.Key, "bdf.") {
			key := strings.ToUpper(strings.Replace(strings.TrimPrefix(p.Key, "bdf."), "-", "_", -1))
			x.set(key, p.Value)
		}
	}
	return x
}
