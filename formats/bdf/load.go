// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bdf

import (
	"bufio"
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/support/failure"
	"github.com/pluess/monobit/support/logging"
)

// global is the global section of a BDF file.
type global struct {
	comments []string
	bdf      table
	x        table
	nchars   int
}

// char is a glyph with its BDF keywords.
type char struct {
	glyph font.Glyph
	meta  table
}

func load(in formats.Input, opts formats.Options) (font.Result, error) {
	sc := bufio.NewScanner(in.Stream)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	r := reader{sc: sc}

	g, err := readGlobal(&r)
	if err != nil {
		return font.Result{}, err
	}
	chars, err := readChars(&r)
	if err != nil {
		return font.Result{}, err
	}
	if g.nchars != len(chars) {
		in.Logger.Warnf("Number of characters found (%d) does not match CHARS declaration (%d).",
			len(chars), g.nchars)
	}

	f, err := convertFrom(g, chars, in.Logger)
	if err != nil {
		return font.Result{}, err
	}
	return font.Single(f), nil
}

func readGlobal(r *reader) (global, error) {
	var g global
	inProps := false
	for {
		line, err := r.expect("CHARS")
		if err != nil {
			return g, failure.WrapFormat(err, "bdf", "no character information found")
		}

		key, value := splitKeyword(line)
		switch {
		case key == "COMMENT":
			g.comments = append(g.comments, strings.TrimPrefix(line[len(key):], " "))
		case key == "STARTPROPERTIES":
			inProps = true
		case key == "ENDPROPERTIES":
			inProps = false
		case key == "CHARS":
			n, err := strconv.Atoi(value)
			if err != nil {
				return g, failure.Format("bdf", "bad CHARS value %q", value)
			}
			g.nchars = n
			return g, nil
		case inProps:
			g.x.set(key, value)
		default:
			g.bdf.set(key, value)
		}
	}
}

func readChars(r *reader) ([]char, error) {
	var chars []char
	for {
		line, ok := r.next()
		if !ok {
			// A missing ENDFONT is tolerated.
			return chars, r.sc.Err()
		}
		key, label := splitKeyword(line)
		switch key {
		case "ENDFONT":
			return chars, nil
		case "STARTCHAR":
		default:
			return nil, failure.Format("bdf", "line %d: expected STARTCHAR, found %q", r.line, key)
		}

		c, err := readChar(r, label)
		if err != nil {
			return nil, err
		}
		chars = append(chars, c)
	}
}

func readChar(r *reader, label string) (char, error) {
	meta := table{{"STARTCHAR", label}}
	for {
		line, err := r.expect("BITMAP")
		if err != nil {
			return char{}, err
		}
		key, value := splitKeyword(line)
		if key == "BITMAP" {
			break
		}
		meta.set(key, value)
	}

	bbx, ok := meta.get("BBX")
	if !ok {
		return char{}, failure.Format("bdf", "character %q has no BBX", label)
	}
	dims, err := ints(bbx, 4, "BBX")
	if err != nil {
		return char{}, err
	}
	width, height := dims[0], dims[1]

	stride := (width + 7) / 8
	data := make([]byte, 0, stride*height)
	for y := 0; y < height; y++ {
		line, err := r.expect("bitmap row")
		if err != nil {
			return char{}, err
		}
		row, err := hex.DecodeString(strings.TrimSpace(line))
		if err != nil {
			return char{}, failure.WrapFormat(err, "bdf", "bad bitmap row in character "+strconv.Quote(label))
		}
		// Rows are padded to whole bytes; tolerate over- and underlong ones.
		if len(row) < stride {
			row = append(row, make([]byte, stride-len(row))...)
		}
		data = append(data, row[:stride]...)
	}
	glyph := font.FromBytes(data, width)

	// Numeric labels are ordinals rather than names.
	if _, err := strconv.Atoi(label); err != nil && label != "" {
		glyph = glyph.WithTags(label)
	}

	// ENCODING is a single integer, or -1 followed by an integer.
	enc, ok := meta.get("ENCODING")
	fields := strings.Fields(enc)
	if !ok || len(fields) == 0 {
		return char{}, failure.Format("bdf", "character %q has no ENCODING", label)
	}
	cp, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return char{}, failure.Format("bdf", "bad ENCODING value %q", enc)
	}
	if cp != -1 {
		glyph = glyph.WithCodepoint(cp)
	}

	line, err := r.expect("ENDCHAR")
	if err != nil {
		return char{}, err
	}
	if !strings.HasPrefix(line, "ENDCHAR") {
		return char{}, failure.Format("bdf", "line %d: expected ENDCHAR", r.line)
	}
	return char{glyph: glyph, meta: meta}, nil
}

func convertFrom(g global, chars []char, log logging.L) (*font.Font, error) {
	log.Debugf("BDF properties: %v", g.bdf)
	log.Debugf("X properties: %v", g.x)

	props, glyphs, xlfd, err := parseBDFProperties(g.bdf, chars, log)
	if err != nil {
		return nil, err
	}
	if len(g.comments) > 0 {
		props.set("comment", strings.Join(g.comments, "\n"))
	}

	// BDF properties take precedence over XLFD ones.
	for _, kv := range parseXLFDProperties(g.x, xlfd, log) {
		if v, ok := props.get(kv.key); ok && v != kv.value {
			log.Warnf("Inconsistency between BDF and XLFD properties: %s=%s (XLFD) but %s=%s (BDF). Taking BDF property.",
				kv.key, kv.value, kv.key, v)
			continue
		}
		props.set(kv.key, kv.value)
	}

	kv := make([]string, 0, 2*len(props))
	for _, p := range props {
		kv = append(kv, p.key, p.value)
	}
	return font.New(glyphs, font.NewProperties(kv...)), nil
}

// parseBDFProperties converts the global keywords and per-glyph geometry.
// It returns the XLFD font name.
func parseBDFProperties(bdf table, chars []char, log logging.L) (table, []font.Glyph, string, error) {
	var props table

	size := strings.Fields(bdf.popDefault("SIZE", ""))
	switch {
	case len(size) == 4 && size[3] != "1":
		return nil, nil, "", failure.Format("bdf", "anti-aliasing and colour not supported")
	case len(size) == 4:
		size = size[:3]
	case len(size) != 3:
		return nil, nil, "", failure.Format("bdf", "missing or bad SIZE")
	}
	props.set(font.PropSourceFormat, "BDF v"+bdf.popDefault("STARTFONT", Version))
	props.set("point-size", size[0])
	props.set("dpi", size[1]+" "+size[2])
	if rev := bdf.popDefault("CONTENTVERSION", ""); rev != "" {
		props.set("revision", rev)
	}

	switch bdf.popDefault("METRICSSET", "0") {
	case "1":
		return nil, nil, "", failure.Format("bdf", "top-to-bottom fonts not supported")
	case "2":
		log.Warn("Top-to-bottom fonts not supported. Preserving horizontal metrics only.")
	}

	globalBBX, ok := bdf.pop("FONTBOUNDINGBOX")
	if !ok {
		return nil, nil, "", failure.Format("bdf", "missing FONTBOUNDINGBOX")
	}
	globalDWidth, ok := bdf.pop("DWIDTH")
	if f := strings.Fields(globalBBX); !ok && len(f) >= 2 {
		globalDWidth = f[0] + " " + f[1]
	}
	bdf.pop("SWIDTH")

	glyphs := make([]font.Glyph, len(chars))
	for i, c := range chars {
		bbx, _ := c.meta.get("BBX")
		dims, err := ints(bbx, 4, "BBX")
		if err != nil {
			return nil, nil, "", err
		}
		dwidth, ok := c.meta.get("DWIDTH")
		if !ok {
			dwidth = globalDWidth
		}
		dw, err := ints(dwidth, 2, "DWIDTH")
		if err != nil {
			return nil, nil, "", err
		}
		if dw[1] != 0 {
			return nil, nil, "", failure.Format("bdf", "top-to-bottom fonts not supported")
		}
		offset := font.Coord{X: dims[2], Y: dims[3]}
		glyphs[i] = c.glyph.WithMetrics(offset, dw[0]-c.glyph.Width()-offset.X)
	}

	xlfd, _ := bdf.pop("FONT")
	for _, kv := range bdf {
		props.set("bdf."+kv.key, kv.value)
	}
	return props, glyphs, xlfd, nil
}

// parseXLFDProperties converts the X property table and the fields of the
// XLFD font name. Unknown properties are kept with a "bdf." prefix.
func parseXLFDProperties(x table, xlfd string, log logging.L) table {
	nameProps, parsed := parseXLFDName(xlfd)
	if !parsed {
		log.Warnf("Could not parse X font name string `%s`", xlfd)
	}
	for _, kv := range x {
		nameProps.set(kv.key, kv.value)
	}
	x = nameProps

	var props table
	add := func(key, value string) {
		if value != "" {
			props.set(key, value)
		}
	}

	// FULL_NAME is deprecated.
	add("name", unquote(x.popDefault("FACE_NAME", x.popDefault("FULL_NAME", ""))))
	add("revision", unquote(x.popDefault("FONT_VERSION", "")))
	add("foundry", unquote(x.popDefault("FOUNDRY", "")))
	add("copyright", unquote(x.popDefault("COPYRIGHT", "")))
	add("notice", unquote(x.popDefault("NOTICE", "")))
	add("family", unquote(x.popDefault("FAMILY_NAME", "")))
	add("style", strings.ToLower(unquote(x.popDefault("ADD_STYLE_NAME", ""))))
	add("ascent", x.popDefault("FONT_ASCENT", ""))
	add("descent", x.popDefault("FONT_DESCENT", ""))
	add("x-height", x.popDefault("X_HEIGHT", ""))
	add("cap-height", x.popDefault("CAP_HEIGHT", ""))
	add("pixel-size", x.popDefault("PIXEL_SIZE", ""))
	add("slant", slantNames[unquote(x.popDefault("SLANT", ""))])
	add("spacing", spacingNames[unquote(x.popDefault("SPACING", ""))])

	if v, ok := x.pop("POINT_SIZE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			add("point-size", strconv.Itoa(int(math.Round(float64(n)/10))))
		}
	}
	// AVERAGE_WIDTH may use a tilde for a minus, as in the font name.
	if v, ok := x.pop("AVERAGE_WIDTH"); ok {
		if n, err := strconv.Atoi(strings.Replace(v, "~", "-", 1)); err == nil {
			add("average-advance", strconv.FormatFloat(float64(n)/10, 'f', -1, 64))
		}
	}

	// Relative weight and setwidth are more precise than their names.
	setwidth := setwidthNames[x.popDefault("RELATIVE_SETWIDTH", "")]
	if name := strings.ToLower(unquote(x.popDefault("SETWIDTH_NAME", ""))); setwidth == "" {
		setwidth = name
	}
	add("setwidth", setwidth)
	weight := weightNames[x.popDefault("RELATIVE_WEIGHT", "")]
	if name := strings.ToLower(unquote(x.popDefault("WEIGHT_NAME", ""))); weight == "" {
		weight = name
	}
	add("weight", weight)

	resX, hasX := x.pop("RESOLUTION_X")
	resY, hasY := x.pop("RESOLUTION_Y")
	res, hasRes := x.pop("RESOLUTION")
	switch {
	case hasX && hasY:
		add("dpi", resX+" "+resY)
	case hasRes:
		// Deprecated.
		add("dpi", res+" "+res)
	}

	registry := strings.ToLower(unquote(x.popDefault("CHARSET_REGISTRY", "")))
	encoding := strings.ToLower(unquote(x.popDefault("CHARSET_ENCODING", "")))
	var charset string
	switch {
	case registry != "" && encoding != "" && encoding != "0":
		charset = registry + "-" + encoding
	case registry != "":
		charset = registry
	case encoding != "0":
		charset = encoding
	}
	for _, undefined := range undefinedEncodings {
		if charset == undefined || registry+"-"+encoding == undefined {
			charset = ""
		}
	}
	if name, ok := encodingNames[charset]; ok {
		charset = name
	}
	add("encoding", charset)

	if v, ok := x.pop("DEFAULT_CHAR"); ok {
		add("default-char", v)
	}

	if !parsed && xlfd != "" {
		props.set("bdf.font-name", xlfd)
	}
	for _, kv := range x {
		props.set("bdf."+kv.key, kv.value)
	}
	return props
}
