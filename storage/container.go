// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package storage

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/pluess/monobit/support/failure"

	"github.com/pkg/errors"
)

// Container is a store of named member streams: a directory or an archive.
//
// Member names use forward slashes, regardless of platform.
type Container interface {
	// Name returns the container's name.
	Name() string
	// Mode returns the direction the container was opened in.
	Mode() Mode
	// Members returns the names of all regular members, sorted. In Write mode,
	// these are the members written so far.
	Members() ([]string, error)
	// Contains returns true if a member called name exists.
	Contains(name string) bool
	// Open opens the member called name as a binary stream.
	Open(name string, mode Mode) (*Stream, error)
	// Close releases the container. For containers opened in Write mode, Close
	// finalizes the written archive or directory.
	Close() error
}

// ContainerSuffixes lists file name suffixes, without the leading dot, that
// denote containers.
var ContainerSuffixes = map[string]bool{
	"zip": true,
	"tar": true,
}

var (
	zipMagic      = []byte("PK\x03\x04")
	emptyZipMagic = []byte("PK\x05\x06")
	tarMagic      = []byte("ustar")
)

const tarMagicOffset = 257

// OpenContainer opens the location as a container.
//
// In Read mode, a directory path opens as a directory container, and zip
// and tar content (possibly compressed) opens as an archive. In Write mode,
// an existing directory or a path without suffix opens as a directory, and
// paths ending in .zip or .tar (optionally followed by a compressor suffix)
// create an archive.
//
// Any other target fails with an error wrapping ErrNotContainer, without
// consuming input.
func OpenContainer(loc Location, mode Mode) (Container, error) {
	switch {
	case loc.stream != nil:
		if mode != Read || loc.stream.mode != Read {
			return nil, errors.Wrapf(ErrNotContainer, "cannot write container to stream %q", loc.Name())
		}
		return readArchive(loc.stream.borrow())

	case loc.container != nil:
		return nil, errors.Wrapf(ErrNotContainer, "cannot open member %q as a container", loc)

	case loc.path != "":
		if mode == Write {
			return createContainer(loc.path)
		}
		return openContainerPath(loc.path)

	default:
		return nil, errors.New("invalid location")
	}
}

func openContainerPath(p string) (Container, error) {
	st, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, failure.NotFound(p, err)
		}
		return nil, errors.Wrapf(err, "opening container %q", p)
	}
	if st.IsDir() {
		return openDirectory(p), nil
	}

	s, err := openPath(p, Read)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = s.Close()
	}()
	return readArchive(s)
}

func createContainer(p string) (Container, error) {
	if st, err := os.Stat(p); err == nil && st.IsDir() {
		return createDirectory(p)
	}

	suffixes := Suffixes(p)
	switch n := len(suffixes); {
	case n == 0:
		return createDirectory(p)
	case suffixes[n-1] == "zip":
		return createArchive(p, newZipArchive)
	case suffixes[n-1] == "tar":
		return createArchive(p, newTarArchive)
	case n >= 2 && suffixes[n-2] == "tar" && Compressors[suffixes[n-1]] != NoCompression:
		return createArchive(p, newTarArchive)
	default:
		return nil, errors.Wrapf(ErrNotContainer, "cannot create container %q", p)
	}
}

// readArchive reads a zip or tar archive from s into memory. If s does not
// hold an archive, nothing is consumed.
func readArchive(s *Stream) (Container, error) {
	head, _ := s.Peek(tarMagicOffset + len(tarMagic))
	switch {
	case bytes.HasPrefix(head, zipMagic), bytes.HasPrefix(head, emptyZipMagic):
		return readZip(s)
	case len(head) == tarMagicOffset+len(tarMagic) && bytes.Equal(head[tarMagicOffset:], tarMagic):
		return readTar(s)
	default:
		return nil, errors.Wrapf(ErrNotContainer, "%q is not an archive", s.Name())
	}
}

// CleanMemberName returns name in canonical form: forward slashes, no "."
// or redundant separators. It fails with ErrBadMemberName if name is empty,
// absolute, or climbs out of the container through "..".
func CleanMemberName(name string) (string, error) {
	clean := path.Clean(strings.Replace(name, "\\", "/", -1))
	switch {
	case name == "", clean == ".":
		return "", errors.Wrap(ErrBadMemberName, "empty member name")
	case path.IsAbs(clean), clean == "..", strings.HasPrefix(clean, "../"):
		return "", errors.Wrapf(ErrBadMemberName, "member %q is outside of the container", name)
	case len(clean) >= 2 && clean[1] == ':':
		return "", errors.Wrapf(ErrBadMemberName, "member %q has a drive letter", name)
	}
	return clean, nil
}

// UniqueName returns a member name built from base and ext that does not
// exist in c: "base.ext", or else "base.1.ext", "base.2.ext", and so on.
//
// If ext is empty, no extension is appended.
func UniqueName(c Container, base, ext string) string {
	build := func(i int) string {
		name := base
		if i > 0 {
			name = fmt.Sprintf("%s.%d", base, i)
		}
		if ext != "" {
			name += "." + ext
		}
		return name
	}

	name := build(0)
	for i := 1; c.Contains(name); i++ {
		name = build(i)
	}
	return name
}
