// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package storage

import (
	"archive/tar"
	"bytes"
	"io"
	"io/ioutil"
	"os"
	"sort"
	"time"

	"github.com/pluess/monobit/support/byteslicereader"
	"github.com/pluess/monobit/support/failure"

	"github.com/klauspost/compress/zip"
	"github.com/pkg/errors"
)

// memArchive is a read-only Container holding archive members in memory.
type memArchive struct {
	name    string
	members map[string][]byte
}

func (a *memArchive) add(name string, data []byte) {
	if a.members == nil {
		a.members = make(map[string][]byte)
	}
	a.members[name] = data
}

func (a *memArchive) Name() string { return a.name }

func (a *memArchive) Mode() Mode { return Read }

func (a *memArchive) Members() ([]string, error) {
	names := make([]string, 0, len(a.members))
	for name := range a.members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (a *memArchive) Contains(name string) bool {
	_, ok := a.members[name]
	return ok
}

func (a *memArchive) Open(name string, mode Mode) (*Stream, error) {
	if mode != Read {
		return nil, errors.Errorf("%s: archive is not writable", a.name)
	}
	data, ok := a.members[name]
	if !ok {
		return nil, failure.NotFound(name, nil)
	}
	return NewReader(&byteslicereader.R{Buffer: data}, name)
}

func (a *memArchive) Close() error { return nil }

func readZip(s *Stream) (Container, error) {
	data, err := ioutil.ReadAll(s)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %q", s.Name())
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, failure.WrapFormat(err, "zip", "cannot read archive "+s.Name())
	}

	a := memArchive{name: s.Name()}
	for _, f := range zr.File {
		if !f.Mode().IsRegular() {
			continue
		}
		member, err := readZipMember(f)
		if err != nil {
			return nil, failure.WrapFormat(err, "zip", "cannot read member "+f.Name)
		}
		a.add(f.Name, member)
	}
	return &a, nil
}

func readZipMember(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = rc.Close()
	}()
	return ioutil.ReadAll(rc)
}

func readTar(s *Stream) (Container, error) {
	a := memArchive{name: s.Name()}
	tr := tar.NewReader(s)
	for {
		hdr, err := tr.Next()
		switch {
		case err == io.EOF:
			return &a, nil
		case err != nil:
			return nil, failure.WrapFormat(err, "tar", "cannot read archive "+s.Name())
		}

		if !hdr.FileInfo().Mode().IsRegular() {
			continue
		}
		data, err := ioutil.ReadAll(tr)
		if err != nil {
			return nil, failure.WrapFormat(err, "tar", "cannot read member "+hdr.Name)
		}
		a.add(hdr.Name, data)
	}
}

// archiveWriter appends complete members to an archive.
type archiveWriter interface {
	add(name string, data []byte) error
	io.Closer
}

// archive is a write-only Container that buffers each member in memory and
// appends it to the archive when the member is closed.
type archive struct {
	name string
	out  *Stream
	w    archiveWriter

	written map[string]struct{}
}

func createArchive(p string, gen func(io.Writer) archiveWriter) (*archive, error) {
	out, err := openPath(p, Write)
	if err != nil {
		return nil, err
	}
	return &archive{
		name:    p,
		out:     out,
		w:       gen(out),
		written: make(map[string]struct{}),
	}, nil
}

func (a *archive) Name() string { return a.name }

func (a *archive) Mode() Mode { return Write }

func (a *archive) Members() ([]string, error) {
	names := make([]string, 0, len(a.written))
	for name := range a.written {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (a *archive) Contains(name string) bool {
	_, ok := a.written[name]
	return ok
}

func (a *archive) Open(name string, mode Mode) (*Stream, error) {
	if mode != Write {
		return nil, errors.Errorf("%s: archive is not readable", a.name)
	}
	name, err := CleanMemberName(name)
	if err != nil {
		return nil, err
	}
	a.written[name] = struct{}{}

	m := archiveMember{a: a, name: name}
	s, err := NewWriter(&m.buf, name)
	if err != nil {
		return nil, err
	}
	s.own(&m)
	return s, nil
}

func (a *archive) Close() (err error) {
	defer func() {
		if closeErr := a.out.Close(); err == nil {
			err = closeErr
		}
	}()
	return a.w.Close()
}

// archiveMember collects a member's data and appends it on Close.
type archiveMember struct {
	a    *archive
	name string
	buf  bytes.Buffer
}

func (m *archiveMember) Close() error {
	if err := m.a.w.add(m.name, m.buf.Bytes()); err != nil {
		return errors.Wrapf(err, "adding %q to %q", m.name, m.a.name)
	}
	return nil
}

type zipArchive struct{ zw *zip.Writer }

func newZipArchive(w io.Writer) archiveWriter { return &zipArchive{zw: zip.NewWriter(w)} }

func (z *zipArchive) add(name string, data []byte) error {
	fw, err := z.zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = fw.Write(data)
	return err
}

func (z *zipArchive) Close() error { return z.zw.Close() }

type tarArchive struct{ tw *tar.Writer }

func newTarArchive(w io.Writer) archiveWriter { return &tarArchive{tw: tar.NewWriter(w)} }

func (t *tarArchive) add(name string, data []byte) error {
	err := t.tw.WriteHeader(&tar.Header{
		Typeflag: tar.TypeReg,
		Name:     name,
		Mode:     int64(os.FileMode(0644)),
		Size:     int64(len(data)),
		ModTime:  time.Now(),
	})
	if err != nil {
		return err
	}
	_, err = t.tw.Write(data)
	return err
}

func (t *tarArchive) Close() error { return t.tw.Close() }
