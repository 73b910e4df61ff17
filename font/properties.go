// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package font

import (
	"strconv"
	"strings"
)

// Provenance property keys, set on loaded fonts by the format dispatcher.
const (
	// PropConverter identifies the software that produced the font object.
	PropConverter = "converter"
	// PropSourceFormat is the format token the font was loaded from.
	PropSourceFormat = "source-format"
	// PropSourceName is the file or member name the font was loaded from.
	PropSourceName = "source-name"
)

// Property is a single key/value property.
type Property struct {
	Key   string
	Value string
}

// Properties is an immutable, ordered set of string properties.
//
// Keys are normalized: lower case, with underscores replaced by dashes.
type Properties struct {
	entries []Property
}

// NormalizeKey returns the normalized form of a property key.
func NormalizeKey(key string) string {
	return strings.Replace(strings.ToLower(strings.TrimSpace(key)), "_", "-", -1)
}

// NewProperties builds Properties from alternating keys and values. Later
// values override earlier ones. An odd trailing key is ignored.
func NewProperties(kv ...string) Properties {
	var p Properties
	for i := 0; i+1 < len(kv); i += 2 {
		p = p.With(kv[i], kv[i+1])
	}
	return p
}

// Len returns the number of properties.
func (p Properties) Len() int { return len(p.entries) }

// All returns all properties, in order.
func (p Properties) All() []Property { return append([]Property(nil), p.entries...) }

// Keys returns all keys, in order.
func (p Properties) Keys() []string {
	keys := make([]string, len(p.entries))
	for i, e := range p.entries {
		keys[i] = e.Key
	}
	return keys
}

func (p Properties) index(key string) int {
	key = NormalizeKey(key)
	for i, e := range p.entries {
		if e.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value of key.
func (p Properties) Get(key string) (string, bool) {
	if i := p.index(key); i >= 0 {
		return p.entries[i].Value, true
	}
	return "", false
}

// Has returns true if key is set.
func (p Properties) Has(key string) bool { return p.index(key) >= 0 }

// Int returns the integer value of key, or def if it is unset or not an
// integer.
func (p Properties) Int(key string, def int) int {
	v, ok := p.Get(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// With returns a copy of p with key set to value. An existing key keeps its
// position.
func (p Properties) With(key, value string) Properties {
	entries := append([]Property(nil), p.entries...)
	if i := p.index(key); i >= 0 {
		entries[i].Value = value
	} else {
		entries = append(entries, Property{Key: NormalizeKey(key), Value: value})
	}
	return Properties{entries: entries}
}

// Without returns a copy of p with key removed.
func (p Properties) Without(key string) Properties {
	i := p.index(key)
	if i < 0 {
		return p
	}
	entries := make([]Property, 0, len(p.entries)-1)
	entries = append(entries, p.entries[:i]...)
	entries = append(entries, p.entries[i+1:]...)
	return Properties{entries: entries}
}
