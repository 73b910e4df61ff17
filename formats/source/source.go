// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package source extracts character-cell fonts from byte arrays embedded in
// program source code, and writes fonts as such arrays.
//
// The loader finds the line that starts with an identifier and reads the
// comma-separated integers between the delimiters that follow it. The bytes
// are cut into glyphs of a fixed cell size.
package source

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/support/failure"

	"github.com/pkg/errors"
)

// Language describes how a byte array is written in a source language.
type Language struct {
	// Name is the language's format name.
	Name string
	// Formats are the format tokens of the language.
	Formats []string
	// Delimiters open and close the array.
	Delimiters [2]string
	// Comment starts a comment that runs to the end of the line.
	Comment string
	// Declare returns the array declaration that precedes the opening
	// delimiter, for a font called ident holding size bytes.
	Declare func(ident string, size int) string
}

// Languages with a fixed syntax.
var (
	C = Language{
		Name:       "C source",
		Formats:    []string{"c", "cc", "cpp", "h"},
		Delimiters: [2]string{"{", "}"},
		Comment:    "//",
		Declare: func(ident string, size int) string {
			return fmt.Sprintf("char font_%s[%d] = ", ident, size)
		},
	}

	JavaScript = Language{
		Name:       "JavaScript source",
		Formats:    []string{"js", "json"},
		Delimiters: [2]string{"[", "]"},
		Comment:    "//",
	}

	Python = Language{
		Name:       "Python source",
		Formats:    []string{"py"},
		Delimiters: [2]string{"[", "]"},
		Comment:    "#",
		Declare: func(ident string, size int) string {
			return fmt.Sprintf("font_%s = ", ident)
		},
	}
)

// Options shared by all source loaders.
var loadParams = []string{"identifier", "cell", "count", "offset", "padding", "first-codepoint"}

// Register registers the source code loaders, and the C and Python savers,
// with reg.
func Register(reg *formats.Registry) error {
	for _, lang := range []Language{C, JavaScript, Python} {
		if err := reg.RegisterLoader(formats.LoaderSpec{
			Name:    lang.Name,
			Formats: lang.Formats,
			Params:  loadParams,
			Load:    lang.load,
		}); err != nil {
			return err
		}
	}

	// The generic loader takes the syntax as options.
	if err := reg.RegisterLoader(formats.LoaderSpec{
		Name:    "source",
		Formats: []string{"source"},
		Params:  append([]string{"delimiters", "comment"}, loadParams...),
		Load: func(in formats.Input, opts formats.Options) (font.Result, error) {
			lang := Language{Name: "source", Comment: opts.String("comment", C.Comment)}
			delims := opts.String("delimiters", C.Delimiters[0]+C.Delimiters[1])
			if len(delims) != 2 {
				return font.Result{}, errors.Errorf("option %q: need an opening and a closing delimiter, got %q",
					"delimiters", delims)
			}
			lang.Delimiters = [2]string{delims[:1], delims[1:]}
			return lang.load(in, opts)
		},
	}); err != nil {
		return err
	}

	for _, lang := range []Language{C, Python} {
		if err := reg.RegisterSaver(formats.SaverSpec{
			Name:    lang.Name,
			Formats: lang.Formats[:1],
			Params:  []string{},
			Save:    lang.save,
		}); err != nil {
			return err
		}
	}
	return nil
}

// layout is how glyphs are laid out in the extracted bytes.
type layout struct {
	width, height int
	count         int
	offset        int
	padding       int
	first         int
}

func parseLayout(opts formats.Options) (layout, error) {
	var l layout
	cell, err := opts.Pair("cell", [2]int{8, 8})
	if err != nil {
		return l, err
	}
	l.width, l.height = cell[0], cell[1]
	if l.width <= 0 || l.height <= 0 {
		return l, errors.Errorf("option %q: cell size must be positive, got %dx%d", "cell", l.width, l.height)
	}
	if l.count, err = opts.Int("count", 0); err != nil {
		return l, err
	}
	if l.offset, err = opts.Int("offset", 0); err != nil {
		return l, err
	}
	if l.padding, err = opts.Int("padding", 0); err != nil {
		return l, err
	}
	if l.first, err = opts.Int("first-codepoint", 0); err != nil {
		return l, err
	}
	return l, nil
}

func (lang Language) load(in formats.Input, opts formats.Options) (font.Result, error) {
	l, err := parseLayout(opts)
	if err != nil {
		return font.Result{}, err
	}
	ident := opts.String("identifier", "")

	payload, err := lang.payload(in.Stream, ident)
	if err != nil {
		return font.Result{}, err
	}
	data, err := parseBytes(payload)
	if err != nil {
		return font.Result{}, err
	}
	in.Logger.Debugf("Extracted %d bytes from %s array.", len(data), lang.Name)

	glyphs := l.glyphs(data)
	if len(glyphs) == 0 {
		return font.Result{}, failure.Format("source", "no glyphs found in %d bytes", len(data))
	}
	return font.Single(font.New(glyphs, font.NewProperties(
		"spacing", "character-cell",
	))), nil
}

// payload returns the text between the delimiters that follow the first
// line starting with ident, with comments removed. An empty ident matches
// the first line holding an opening delimiter.
func (lang Language) payload(r io.Reader, ident string) (string, error) {
	start, end := lang.Delimiters[0], lang.Delimiters[1]
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)

	next := func() (string, bool) {
		if !sc.Scan() {
			return "", false
		}
		line := sc.Text()
		if i := strings.Index(line, lang.Comment); lang.Comment != "" && i >= 0 {
			line = line[:i]
		}
		return strings.Trim(line, " \t\r"), true
	}

	var line string
	for {
		var ok bool
		if line, ok = next(); !ok {
			if err := sc.Err(); err != nil {
				return "", errors.Wrap(err, "reading source file")
			}
			if ident == "" {
				return "", failure.Format("source", "no array found")
			}
			return "", failure.Format("source", "identifier `%s` not found", ident)
		}
		if ident == "" && strings.Contains(line, start) {
			break
		}
		if ident != "" && strings.HasPrefix(line, ident) {
			line = line[len(ident):]
			break
		}
	}

	// The array may start and end on the identifier's line.
	var payload []string
	if i := strings.Index(line, start); i >= 0 {
		line = line[i+len(start):]
		if j := strings.Index(line, end); j >= 0 {
			return line[:j], nil
		}
		payload = append(payload, line)
	}

	for {
		line, ok := next()
		if !ok {
			return "", failure.Format("source", "array is not closed by `%s`", end)
		}
		if i := strings.Index(line, start); i >= 0 {
			line = line[i+len(start):]
		}
		if j := strings.Index(line, end); j >= 0 {
			payload = append(payload, line[:j])
			return strings.Join(payload, ""), nil
		}
		if line != "" {
			payload = append(payload, line)
		}
	}
}

// parseBytes parses comma-separated integer literals. Hexadecimal, binary
// and octal literals are accepted, as are C integer suffixes.
func parseBytes(payload string) ([]byte, error) {
	var data []byte
	for _, v := range strings.Split(payload, ",") {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		lit := strings.TrimRight(v, "uUlL")
		n, err := strconv.ParseInt(lit, 0, 64)
		if err != nil {
			return nil, failure.Format("source", "bad integer literal %q", v)
		}
		data = append(data, byte(n))
	}
	return data, nil
}

// glyphs cuts data into glyphs.
func (l layout) glyphs(data []byte) []font.Glyph {
	size := (l.width + 7) / 8 * l.height
	var glyphs []font.Glyph
	for pos := l.offset; pos >= 0 && pos+size <= len(data); pos += size + l.padding {
		if l.count > 0 && len(glyphs) == l.count {
			break
		}
		g := font.FromBytes(data[pos:pos+size], l.width)
		glyphs = append(glyphs, g.WithCodepoint(l.first+len(glyphs)))
	}
	return glyphs
}

func (lang Language) save(pack font.Pack, out formats.Output, opts formats.Options) error {
	if len(pack) != 1 {
		return failure.Format("source", "can only save one font to a source file")
	}
	f := pack[0]

	glyphs := f.Glyphs()
	if len(glyphs) == 0 {
		return failure.Format("source", "font has no glyphs")
	}
	width, height := glyphs[0].Width(), glyphs[0].Height()
	for _, g := range glyphs {
		if g.Width() != width || g.Height() != height || width == 0 {
			return failure.Format("source", "this format only supports character-cell fonts")
		}
	}

	size := (width + 7) / 8 * height * len(glyphs)
	w := bufio.NewWriter(out.Stream)
	fmt.Fprintf(w, "%s%s\n", lang.Declare(Identifier(f.Name()), size), lang.Delimiters[0])
	for _, g := range glyphs {
		w.WriteString("  ")
		for _, b := range g.AsBytes() {
			fmt.Fprintf(w, "0x%02x, ", b)
		}
		w.WriteString("\n")
	}
	fmt.Fprintf(w, "%s\n", lang.Delimiters[1])
	return w.Flush()
}

// Identifier converts name to an identifier: non-ASCII characters are
// dropped, and other non-alphanumeric characters become underscores.
func Identifier(name string) string {
	var sb strings.Builder
	for _, c := range name {
		switch {
		case c >= 0x80:
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			sb.WriteRune(c)
		default:
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
