// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package formats

import (
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Options are string-valued format options, keyed by option name.
//
// Option names are matched after normalization: lower case, with underscores
// replaced by dashes.
type Options map[string]string

func normalizeOption(name string) string {
	return strings.Replace(strings.ToLower(strings.TrimSpace(name)), "_", "-", -1)
}

func (o Options) get(name string) (string, bool) {
	name = normalizeOption(name)
	for k, v := range o {
		if normalizeOption(k) == name {
			return v, true
		}
	}
	return "", false
}

// String returns the value of option name, or def if it is unset.
func (o Options) String(name, def string) string {
	if v, ok := o.get(name); ok {
		return v
	}
	return def
}

// Int returns the integer value of option name, or def if it is unset.
func (o Options) Int(name string, def int) (int, error) {
	v, ok := o.get(name)
	if !ok {
		return def, nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 0, 0)
	if err != nil {
		return 0, errors.Wrapf(err, "option %q", name)
	}
	return int(n), nil
}

// Bool returns the boolean value of option name, or def if it is unset. An
// option that is set to an empty string is true.
func (o Options) Bool(name string, def bool) (bool, error) {
	v, ok := o.get(name)
	switch {
	case !ok:
		return def, nil
	case strings.TrimSpace(v) == "":
		return true, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return false, errors.Wrapf(err, "option %q", name)
	}
	return b, nil
}

// Pair returns the value of option name as a pair of integers, or def if it
// is unset. The integers may be separated by a comma, an "x", or spaces. A
// single integer is used for both elements.
func (o Options) Pair(name string, def [2]int) ([2]int, error) {
	v, ok := o.get(name)
	if !ok {
		return def, nil
	}
	fields := strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
		return r == ',' || r == 'x' || r == ' ' || r == '\t'
	})

	var pair [2]int
	switch len(fields) {
	case 1:
		fields = append(fields, fields[0])
	case 2:
	default:
		return pair, errors.Errorf("option %q: %q is not a pair of integers", name, v)
	}
	for i, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			return pair, errors.Wrapf(err, "option %q", name)
		}
		pair[i] = n
	}
	return pair, nil
}

// check returns an error if o holds an option not listed in params. A nil
// params list accepts any option.
func (o Options) check(format string, params []string) error {
	if params == nil {
		return nil
	}
	accepted := make(map[string]struct{}, len(params))
	for _, p := range params {
		accepted[normalizeOption(p)] = struct{}{}
	}

	var unknown []string
	for k := range o {
		if _, ok := accepted[normalizeOption(k)]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return errors.Errorf("format `%s` does not accept option(s) %s", format, strings.Join(unknown, ", "))
	}
	return nil
}
