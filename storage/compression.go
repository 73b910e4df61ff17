// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package storage

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"
	"strings"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
)

// Compression is a stream compression encoding.
type Compression int

const (
	// NoCompression is an uncompressed stream.
	NoCompression Compression = iota
	// Gzip is a gzip stream.
	Gzip
	// XZ is an xz stream.
	XZ
	// Snappy is a snappy framed stream.
	Snappy
	// Zstd is a Zstandard stream.
	Zstd
	// Bzip2 is a bzip2 stream. It can be read, but not written.
	Bzip2
)

var compressionNames = map[Compression]string{
	NoCompression: "none",
	Gzip:          "gzip",
	XZ:            "xz",
	Snappy:        "snappy",
	Zstd:          "zstd",
	Bzip2:         "bzip2",
}

func (c Compression) String() string {
	if name, ok := compressionNames[c]; ok {
		return name
	}
	return "unknown"
}

// ParseCompression returns the Compression called name.
func ParseCompression(name string) (Compression, error) {
	for c, n := range compressionNames {
		if n == name {
			return c, nil
		}
	}
	return NoCompression, errors.Errorf("unknown compression: %q", name)
}

// Compressors maps file name suffixes, without the leading dot, to the
// compression they denote.
var Compressors = map[string]Compression{
	"gz":  Gzip,
	"xz":  XZ,
	"sz":  Snappy,
	"zst": Zstd,
	"bz2": Bzip2,
}

// compressionMagic lists the leading bytes of each compressed encoding.
var compressionMagic = []struct {
	magic []byte
	comp  Compression
}{
	{[]byte{0x1f, 0x8b}, Gzip},
	{[]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, XZ},
	{[]byte{0xff, 0x06, 0x00, 0x00, 's', 'N', 'a', 'P', 'p', 'Y'}, Snappy},
	{[]byte{0x28, 0xb5, 0x2f, 0xfd}, Zstd},
	{[]byte("BZh"), Bzip2},
}

// SuffixCompression returns the compression implied by the final suffix of
// name.
func SuffixCompression(name string) Compression {
	idx := strings.LastIndexByte(name, '.')
	if idx < 0 {
		return NoCompression
	}
	return Compressors[strings.ToLower(name[idx+1:])]
}

// detectCompression identifies the compression of the data buffered in br
// without consuming it.
func detectCompression(br *bufio.Reader) Compression {
	for _, e := range compressionMagic {
		head, _ := br.Peek(len(e.magic))
		if bytes.Equal(head, e.magic) {
			return e.comp
		}
	}
	return NoCompression
}

// decompressor wraps r in a reader for comp. The returned closer, if not nil,
// must be closed when reading is finished.
func decompressor(r io.Reader, comp Compression) (io.Reader, io.Closer, error) {
	switch comp {
	case Gzip:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "creating gzip reader")
		}
		return gz, gz, nil

	case XZ:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "creating xz reader")
		}
		return xr, nil, nil

	case Snappy:
		return snappy.NewReader(r), nil, nil

	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, errors.Wrap(err, "creating zstd reader")
		}
		rc := zr.IOReadCloser()
		return rc, rc, nil

	case Bzip2:
		return bzip2.NewReader(r), nil, nil

	case NoCompression:
		return r, nil, nil

	default:
		return nil, nil, errors.Errorf("unknown compression: %s", comp)
	}
}

// compressor wraps w in a writer for comp. The returned writer must be closed
// to flush the compressed stream; closing it does not close w.
func compressor(w io.Writer, comp Compression) (io.WriteCloser, error) {
	switch comp {
	case Gzip:
		return gzip.NewWriter(w), nil

	case XZ:
		xw, err := xz.NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, "creating xz writer")
		}
		return xw, nil

	case Snappy:
		return snappy.NewBufferedWriter(w), nil

	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd writer")
		}
		return zw, nil

	case Bzip2:
		return nil, errors.New("bzip2 compression is not supported for writing")

	default:
		return nil, errors.Errorf("unknown compression: %s", comp)
	}
}
