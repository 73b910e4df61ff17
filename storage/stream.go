// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package storage opens font sources and destinations as typed streams and
// containers.
//
// A source or destination is described by a Location: a path, an open
// Stream, or a member of a Container. Open turns a Location into a Stream,
// decompressing on read and compressing on write according to content magic
// and name suffix. OpenContainer turns a Location into a Container: a
// directory, a zip archive or a tar archive.
package storage

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const streamBufferSize = 64 * 1024

// Mode is the direction of a Stream or Container.
type Mode int

const (
	// Read opens for reading.
	Read Mode = iota
	// Write opens for writing.
	Write
)

func (m Mode) String() string {
	if m == Write {
		return "w"
	}
	return "r"
}

// Stream is a named, buffered, one-directional byte stream.
//
// A read Stream delivers decompressed data and supports Peek without
// consuming input. A write Stream compresses its output if its name ends in a
// compressor suffix.
//
// Close releases the layers the Stream created itself. Readers and writers
// supplied by the caller are never closed.
type Stream struct {
	name   string
	mode   Mode
	binary bool

	br *bufio.Reader
	bw *bufio.Writer

	// closers are closed in order by Close.
	closers []io.Closer
	closed  bool
}

// NewReader returns a binary read Stream over r called name, decompressing r
// if its content is compressed.
//
// r is not closed when the Stream is closed.
func NewReader(r io.Reader, name string) (*Stream, error) {
	s := Stream{
		name:   name,
		mode:   Read,
		binary: true,
	}

	br := bufio.NewReaderSize(r, streamBufferSize)
	comp := detectCompression(br)
	if comp == NoCompression {
		s.br = br
		return &s, nil
	}

	dr, closer, err := decompressor(br, comp)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %q", name)
	}
	if closer != nil {
		s.closers = append(s.closers, closer)
	}
	s.br = bufio.NewReaderSize(dr, streamBufferSize)
	return &s, nil
}

// NewWriter returns a binary write Stream over w called name. If name ends in
// a compressor suffix, the written data is compressed.
//
// w is not closed when the Stream is closed.
func NewWriter(w io.Writer, name string) (*Stream, error) {
	s := Stream{
		name:   name,
		mode:   Write,
		binary: true,
	}

	if comp := SuffixCompression(name); comp != NoCompression {
		cw, err := compressor(w, comp)
		if err != nil {
			return nil, errors.Wrapf(err, "opening %q", name)
		}
		s.closers = append(s.closers, cw)
		w = cw
	}
	s.bw = bufio.NewWriterSize(w, streamBufferSize)
	return &s, nil
}

// Name returns the stream's name.
func (s *Stream) Name() string { return s.name }

// Mode returns the stream's direction.
func (s *Stream) Mode() Mode { return s.mode }

// Binary returns true if the stream is binary, false if it is text.
func (s *Stream) Binary() bool { return s.binary }

// Read implements io.Reader.
func (s *Stream) Read(p []byte) (int, error) {
	if s.br == nil {
		return 0, errors.Errorf("%s: stream is not readable", s.name)
	}
	return s.br.Read(p)
}

// Peek returns the next n bytes of the stream without advancing it. If fewer
// than n bytes remain, Peek returns them along with an error.
func (s *Stream) Peek(n int) ([]byte, error) {
	if s.br == nil {
		return nil, errors.Errorf("%s: stream is not readable", s.name)
	}
	return s.br.Peek(n)
}

// Write implements io.Writer.
func (s *Stream) Write(p []byte) (int, error) {
	if s.bw == nil {
		return 0, errors.Errorf("%s: stream is not writable", s.name)
	}
	return s.bw.Write(p)
}

// Flush writes any buffered data to the underlying writer.
func (s *Stream) Flush() error {
	if s.bw == nil {
		return nil
	}
	return s.bw.Flush()
}

// Close flushes the stream and releases the layers it owns. Close is
// idempotent.
func (s *Stream) Close() (err error) {
	if s.closed {
		return nil
	}
	s.closed = true

	defer func() {
		for _, c := range s.closers {
			if closeErr := c.Close(); err == nil {
				err = closeErr
			}
		}
	}()
	return s.Flush()
}

// own makes s responsible for closing c.
func (s *Stream) own(c io.Closer) { s.closers = append(s.closers, c) }

// borrow returns a view of s whose Close flushes but releases nothing.
func (s *Stream) borrow() *Stream {
	return &Stream{
		name:   s.name,
		mode:   s.mode,
		binary: s.binary,
		br:     s.br,
		bw:     s.bw,
	}
}

// text returns a text view of s, which it takes ownership of.
//
// Reads decode UTF-8 or, if a byte order mark says so, UTF-16 and deliver
// UTF-8. Writes are passed through as UTF-8.
func (s *Stream) text() *Stream {
	t := Stream{
		name:    s.name,
		mode:    s.mode,
		binary:  false,
		closers: []io.Closer{s},
	}
	if s.br != nil {
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		t.br = bufio.NewReaderSize(transform.NewReader(s.br, dec), streamBufferSize)
	}
	if s.bw != nil {
		t.bw = s.bw
	}
	return &t
}
