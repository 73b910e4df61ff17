// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package storage

import (
	"sort"
	"strings"

	"github.com/spf13/pflag"
)

// CompressionFlag is a pflag.Value implementation that stores a compression
// value.
type CompressionFlag Compression

var _ pflag.Value = (*CompressionFlag)(nil)

func (cf *CompressionFlag) String() string { return Compression(*cf).String() }

// Set implements pflag.Value.
func (cf *CompressionFlag) Set(v string) error {
	c, err := ParseCompression(v)
	if err != nil {
		return err
	}
	*cf = CompressionFlag(c)
	return nil
}

// Type implements pflag.Value.
func (cf *CompressionFlag) Type() string { return "storage.Compression" }

// Value returns the compression value held by this flag.
func (cf CompressionFlag) Value() Compression { return Compression(cf) }

// CompressionFlagValues returns the list of possible values for a
// CompressionFlag.
func CompressionFlagValues() string {
	comps := make([]Compression, 0, len(compressionNames))
	for c := range compressionNames {
		comps = append(comps, c)
	}
	sort.Slice(comps, func(i, j int) bool { return comps[i] < comps[j] })

	opts := make([]string, len(comps))
	for i, c := range comps {
		opts[i] = c.String()
	}
	return strings.Join(opts, ", ")
}

// CompressionSuffix returns the file name suffix, without the leading dot,
// that denotes comp. NoCompression has an empty suffix.
func CompressionSuffix(comp Compression) string {
	for suffix, c := range Compressors {
		if c == comp {
			return suffix
		}
	}
	return ""
}
