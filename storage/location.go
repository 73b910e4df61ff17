// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package storage

import (
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/pluess/monobit/support/failure"

	"github.com/pkg/errors"
)

var (
	// ErrIsDirectory is returned when a directory is opened as a stream.
	ErrIsDirectory = errors.New("is a directory")

	// ErrNotContainer is returned when a target that is not a directory or
	// archive is opened as a container.
	ErrNotContainer = errors.New("not a container")
	// ErrBadMemberName is returned when a member name is empty, absolute, or
	// resolves outside of its container.
	ErrBadMemberName = errors.New("bad member name")
)

// Location identifies a font source or destination: a path, an open Stream,
// or a member of a Container.
//
// The zero Location is invalid.
type Location struct {
	path      string
	stream    *Stream
	container Container
	member    string
}

// AtPath returns the Location of a path in the file system.
func AtPath(p string) Location { return Location{path: p} }

// OnStream returns the Location of an open stream. Streams opened at this
// Location borrow s, and do not close it.
func OnStream(s *Stream) Location { return Location{stream: s} }

// InContainer returns the Location of the member name of c.
func InContainer(c Container, name string) Location {
	return Location{container: c, member: name}
}

// Name returns the name of the location: its path, its stream's name, or its
// member name.
func (l Location) Name() string {
	switch {
	case l.stream != nil:
		return l.stream.Name()
	case l.container != nil:
		return l.member
	default:
		return l.path
	}
}

// BaseName returns the final element of Name.
func (l Location) BaseName() string {
	name := l.Name()
	if l.container != nil {
		return path.Base(name)
	}
	return filepath.Base(name)
}

// Path returns the location's path, or an empty string if it is not a path.
func (l Location) Path() string { return l.path }

// Stream returns the location's stream, or nil if it is not a stream.
func (l Location) Stream() *Stream { return l.stream }

// Container returns the container of a member location, or nil.
func (l Location) Container() Container { return l.container }

// IsPath returns true if the location is a path.
func (l Location) IsPath() bool { return l.stream == nil && l.container == nil }

// IsDir returns true if the location is a path naming an existing directory.
func (l Location) IsDir() bool {
	if !l.IsPath() {
		return false
	}
	st, err := os.Stat(l.path)
	return err == nil && st.IsDir()
}

func (l Location) String() string {
	if l.container != nil {
		return l.container.Name() + ":" + l.member
	}
	return l.Name()
}

// Open opens the location as a stream.
//
// In Read mode, compressed content is decompressed. In Write mode, output is
// compressed if the name ends in a compressor suffix, and container members
// are created as needed. If binary is false, the stream is a text stream.
//
// Opening a directory fails with an error wrapping ErrIsDirectory. Opening a
// missing path or member fails with a failure.NotFoundError.
//
// The caller must Close the returned Stream.
func Open(loc Location, mode Mode, binary bool) (*Stream, error) {
	var (
		s   *Stream
		err error
	)
	switch {
	case loc.stream != nil:
		if loc.stream.mode != mode {
			return nil, errors.Errorf("%s: stream is not open for mode %q", loc.stream.name, mode)
		}
		s = loc.stream.borrow()

	case loc.container != nil:
		if s, err = loc.container.Open(loc.member, mode); err != nil {
			return nil, err
		}

	case loc.path != "":
		if s, err = openPath(loc.path, mode); err != nil {
			return nil, err
		}

	default:
		return nil, errors.New("invalid location")
	}

	if !binary {
		s = s.text()
	}
	return s, nil
}

func openPath(p string, mode Mode) (*Stream, error) {
	if st, err := os.Stat(p); err == nil && st.IsDir() {
		return nil, errors.Wrapf(ErrIsDirectory, "cannot open %q as a stream", p)
	}

	if mode == Write {
		fd, err := os.Create(p)
		if err != nil {
			return nil, errors.Wrapf(err, "creating %q", p)
		}
		s, err := NewWriter(fd, p)
		if err != nil {
			_ = fd.Close()
			return nil, err
		}
		s.own(fd)
		return s, nil
	}

	fd, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, failure.NotFound(p, err)
		}
		return nil, errors.Wrapf(err, "opening %q", p)
	}
	s, err := NewReader(fd, p)
	if err != nil {
		_ = fd.Close()
		return nil, err
	}
	s.own(fd)
	return s, nil
}

// Suffixes returns the dot-separated suffixes of the final element of name,
// lower-cased and without dots. A leading dot does not start a suffix.
func Suffixes(name string) []string {
	base := name
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	base = strings.TrimLeft(base, ".")

	parts := strings.Split(base, ".")
	if len(parts) < 2 {
		return nil
	}
	suffixes := parts[1:]
	for i, s := range suffixes {
		suffixes[i] = strings.ToLower(s)
	}
	return suffixes
}

// Stem returns the final element of name with all suffixes removed.
func Stem(name string) string {
	base := name
	if idx := strings.LastIndexAny(base, `/\`); idx >= 0 {
		base = base[idx+1:]
	}
	lead := len(base) - len(strings.TrimLeft(base, "."))
	if idx := strings.IndexByte(base[lead:], '.'); idx >= 0 {
		return base[:lead+idx]
	}
	return base
}
