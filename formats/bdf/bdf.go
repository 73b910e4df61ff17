// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package bdf loads and saves X11 Glyph Bitmap Distribution Format fonts.
//
// A BDF file is a line-oriented text file: a global section of keywords and
// an XLFD property table, followed by one STARTCHAR...ENDCHAR block per glyph
// holding its metrics and a hexadecimal bitmap.
package bdf

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/support/failure"

	"github.com/pkg/errors"
)

// Version is the BDF version written by the saver.
const Version = "2.1"

// Magic is the leading byte sequence of a BDF file.
var Magic = []byte("STARTFONT ")

// Register registers the BDF loader and saver with reg.
func Register(reg *formats.Registry) error {
	if err := reg.RegisterLoader(formats.LoaderSpec{
		Name:    "BDF",
		Formats: []string{"bdf"},
		Magic:   [][]byte{Magic},
		Params:  []string{},
		Load:    load,
	}); err != nil {
		return err
	}
	return reg.RegisterSaver(formats.SaverSpec{
		Name:    "BDF",
		Formats: []string{"bdf"},
		Params:  []string{},
		Save:    save,
	})
}

// table is an ordered set of keyword values.
type table []keyValue

type keyValue struct {
	key   string
	value string
}

func (t table) get(key string) (string, bool) {
	for _, kv := range t {
		if kv.key == key {
			return kv.value, true
		}
	}
	return "", false
}

func (t *table) set(key, value string) {
	for i := range *t {
		if (*t)[i].key == key {
			(*t)[i].value = value
			return
		}
	}
	*t = append(*t, keyValue{key, value})
}

// pop removes key from t and returns its value.
func (t *table) pop(key string) (string, bool) {
	for i, kv := range *t {
		if kv.key == key {
			*t = append((*t)[:i:i], (*t)[i+1:]...)
			return kv.value, true
		}
	}
	return "", false
}

func (t *table) popDefault(key, def string) string {
	if v, ok := t.pop(key); ok {
		return v
	}
	return def
}

// reader yields the non-blank lines of a BDF file.
type reader struct {
	sc   *bufio.Scanner
	line int
}

func (r *reader) next() (string, bool) {
	for r.sc.Scan() {
		r.line++
		line := strings.TrimRight(r.sc.Text(), "\r")
		if strings.TrimSpace(line) != "" {
			return line, true
		}
	}
	return "", false
}

// expect returns the next line, failing if the file has ended.
func (r *reader) expect(what string) (string, error) {
	if line, ok := r.next(); ok {
		return line, nil
	}
	if err := r.sc.Err(); err != nil {
		return "", errors.Wrap(err, "reading BDF file")
	}
	return "", failure.Format("bdf", "unexpected end of file, expected %s", what)
}

func splitKeyword(line string) (string, string) {
	i := strings.IndexByte(line, ' ')
	if i < 0 {
		return strings.TrimSpace(line), ""
	}
	return line[:i], strings.TrimSpace(line[i+1:])
}

// ints parses exactly n space-separated integers.
func ints(v string, n int, what string) ([]int, error) {
	fields := strings.Fields(v)
	if len(fields) != n {
		return nil, failure.Format("bdf", "%s needs %d values, found %q", what, n, v)
	}
	out := make([]int, n)
	for i, f := range fields {
		var err error
		if out[i], err = strconv.Atoi(f); err != nil {
			return nil, failure.Format("bdf", "bad %s value %q", what, v)
		}
	}
	return out, nil
}

// quote returns the BDF string literal of s, or an empty string.
func quote(s string) string {
	if s == "" {
		return ""
	}
	return `"` + strings.Replace(s, `"`, `""`, -1) + `"`
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	return strings.Replace(s, `""`, `"`, -1)
}
