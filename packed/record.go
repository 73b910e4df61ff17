// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package packed

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

// Values maps field names to values, for building a Record.
//
// Integer and bit-fields accept any Go integer type, flags accept bool, bytes
// fields accept []byte, chars fields accept string or []byte, nested fields
// accept Record or Values, repeated fields accept []Record, and ints fields
// accept []int64 or []int.
type Values map[string]interface{}

// Record is an immutable decoded record.
//
// Field values can be accessed positionally, using Field, or by name, using
// Get and the typed accessors. The typed accessors panic if the field does not
// exist or has a different type; field names are fixed by the Layout, so this
// is a programming error.
type Record struct {
	layout *Layout
	values []interface{}
}

// Make builds a record of layout l from values. Fields missing from values
// are zero.
func (l *Layout) Make(values Values) (Record, error) {
	for name := range values {
		if !l.Has(name) {
			return Record{}, errors.Errorf("%s: no field %q", l.name, name)
		}
	}

	// Start from an all-zero record, then fill in values.
	rec := l.decode(make([]byte, l.size))
	for i, f := range l.fields {
		v, ok := values[f.name]
		if !ok {
			continue
		}
		nv, err := normalize(f, v)
		if err != nil {
			return Record{}, errors.Wrapf(err, "%s: field %q", l.name, f.name)
		}
		rec.values[i] = nv
	}
	return rec, nil
}

// MustMake is like Make, but panics on error.
func (l *Layout) MustMake(values Values) Record {
	rec, err := l.Make(values)
	if err != nil {
		panic(err)
	}
	return rec
}

func normalize(f Field, v interface{}) (interface{}, error) {
	switch f.kind {
	case intField, bitsField:
		return toInt64(v)

	case flagField:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		n, err := toInt64(v)
		if err != nil {
			return nil, err
		}
		return n != 0, nil

	case bytesField:
		if b, ok := v.([]byte); ok {
			return append([]byte(nil), b...), nil
		}

	case charsField:
		switch t := v.(type) {
		case string:
			return t, nil
		case []byte:
			return string(t), nil
		}

	case nestedField:
		switch t := v.(type) {
		case Record:
			return t, nil
		case Values:
			return f.sub.Make(t)
		}

	case repeatedField:
		if recs, ok := v.([]Record); ok {
			return append([]Record(nil), recs...), nil
		}

	case intsField:
		switch t := v.(type) {
		case []int64:
			return append([]int64(nil), t...), nil
		case []int:
			ints := make([]int64, len(t))
			for i, n := range t {
				ints[i] = int64(n)
			}
			return ints, nil
		}
	}
	return nil, errors.Errorf("unsupported value type %T", v)
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > 1<<63-1 {
			return 0, errors.Errorf("value %d out of range", n)
		}
		return int64(n), nil
	default:
		return 0, errors.Errorf("unsupported integer type %T", v)
	}
}

// Layout returns the record's layout.
func (r Record) Layout() *Layout { return r.layout }

// Len returns the number of fields in the record.
func (r Record) Len() int { return len(r.values) }

// Field returns the value of the i'th field.
func (r Record) Field(i int) interface{} { return r.values[i] }

// Get returns the value of the named field.
func (r Record) Get(name string) (interface{}, bool) {
	if r.layout == nil {
		return nil, false
	}
	i, ok := r.layout.index[name]
	if !ok {
		return nil, false
	}
	return r.values[i], true
}

// Values returns the record's fields as a Values map. Nested records remain
// Records.
func (r Record) Values() Values {
	vs := make(Values, len(r.values))
	for i, f := range r.layout.fields {
		vs[f.name] = r.values[i]
	}
	return vs
}

// With returns a copy of r with the named field set to v.
func (r Record) With(name string, v interface{}) (Record, error) {
	i, ok := r.layout.index[name]
	if !ok {
		return Record{}, errors.Errorf("%s: no field %q", r.layout.name, name)
	}
	nv, err := normalize(r.layout.fields[i], v)
	if err != nil {
		return Record{}, errors.Wrapf(err, "%s: field %q", r.layout.name, name)
	}
	values := append([]interface{}(nil), r.values...)
	values[i] = nv
	return Record{layout: r.layout, values: values}, nil
}

func (r Record) must(name string) interface{} {
	v, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("%s: no field %q", r.layout.Name(), name))
	}
	return v
}

// Int64 returns the value of an integer or bit-field.
func (r Record) Int64(name string) int64 { return r.must(name).(int64) }

// Int returns the value of an integer or bit-field as an int.
func (r Record) Int(name string) int { return int(r.Int64(name)) }

// Uint returns the value of an integer or bit-field as a uint. Negative
// values panic.
func (r Record) Uint(name string) uint {
	v := r.Int64(name)
	if v < 0 {
		panic(fmt.Sprintf("%s: field %q is negative", r.layout.Name(), name))
	}
	return uint(v)
}

// Names returns the record's field names, in declaration order.
func (r Record) Names() []string {
	if r.layout == nil {
		return nil
	}
	return r.layout.Names()
}

// Bool returns the value of a flag.
func (r Record) Bool(name string) bool { return r.must(name).(bool) }

// Bytes returns the value of a bytes field. The returned slice must not be
// modified.
func (r Record) Bytes(name string) []byte { return r.must(name).([]byte) }

// String returns the value of a chars field.
func (r Record) String(name string) string { return r.must(name).(string) }

// Record returns the value of a nested field.
func (r Record) Record(name string) Record { return r.must(name).(Record) }

// Records returns the value of a repeated field.
func (r Record) Records(name string) []Record { return r.must(name).([]Record) }

// Ints returns the value of an ints field.
func (r Record) Ints(name string) []int64 { return r.must(name).([]int64) }

// Dump renders the record as "name: value" lines, sorted by field name, for
// logging.
func (r Record) Dump() string {
	if r.layout == nil {
		return ""
	}
	names := r.layout.Names()
	sort.Strings(names)

	var buf bytes.Buffer
	for _, name := range names {
		v, _ := r.Get(name)
		if rec, ok := v.(Record); ok {
			fmt.Fprintf(&buf, "%s: {%s}\n", name, bytes.Replace(bytes.TrimSpace([]byte(rec.Dump())), []byte("\n"), []byte(", "), -1))
			continue
		}
		fmt.Fprintf(&buf, "%s: %v\n", name, v)
	}
	return buf.String()
}
