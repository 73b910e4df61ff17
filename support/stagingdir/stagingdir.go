// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package stagingdir builds a directory in a temporary location and moves it
// into place once complete.
package stagingdir

import (
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// D is a staging directory.
//
// Files are written underneath Path until D is either committed, which
// renames it to its destination, or destroyed.
type D struct {
	// parent holds the staging directory. Commit renames within it, so it
	// must be on the same file system as the destination.
	parent string

	// path is the staging directory, empty once committed or destroyed.
	path string
}

// New creates a staging directory named with prefix underneath parent.
func New(parent, prefix string) (*D, error) {
	p, err := ioutil.TempDir(parent, prefix)
	if err != nil {
		return nil, err
	}
	return &D{parent: parent, path: p}, nil
}

// Path joins components onto the staging directory.
func (sd *D) Path(first string, components ...string) string {
	if sd.path == "" {
		panic("staging directory is no longer active")
	}
	return filepath.Join(append([]string{sd.path, first}, components...)...)
}

// Active returns true until sd is committed or destroyed.
func (sd *D) Active() bool { return sd.path != "" }

// Destroy deletes the staging directory and its contents. It does nothing
// once sd is committed.
func (sd *D) Destroy() error {
	if sd.path == "" {
		return nil
	}
	if err := os.RemoveAll(sd.path); err != nil {
		return err
	}
	sd.path = ""
	return nil
}

// Commit renames the staging directory to dest.
//
// Anything already at dest is first moved aside and deleted.
func (sd *D) Commit(dest string) error {
	if sd.path == "" {
		return errors.New("staging directory is no longer active")
	}

	if _, err := os.Stat(dest); err == nil {
		aside, err := ioutil.TempDir(sd.parent, "overwrite")
		if err != nil {
			return errors.Wrap(err, "create overwrite directory")
		}
		defer os.RemoveAll(aside)

		if err := os.Rename(dest, filepath.Join(aside, filepath.Base(dest))); err != nil {
			return errors.Wrapf(err, "moving %q aside", dest)
		}
	}

	if err := os.Rename(sd.path, dest); err != nil {
		return errors.Wrapf(err, "moving staging directory into place (%q => %q)", sd.path, dest)
	}
	sd.path = ""
	return nil
}
