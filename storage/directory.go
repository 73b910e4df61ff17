// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package storage

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/pluess/monobit/support/stagingdir"

	"github.com/pkg/errors"
)

// directory is a Container backed by a file system directory.
//
// A directory created for writing that did not exist beforehand is staged in
// a temporary directory next to it, and moved into place on Close.
type directory struct {
	root string
	mode Mode

	// stage, if not nil, holds members until Close.
	stage *stagingdir.D
	// written is the set of members written through this container.
	written map[string]struct{}
}

func openDirectory(root string) *directory {
	return &directory{root: root, mode: Read}
}

func createDirectory(root string) (*directory, error) {
	d := directory{
		root:    root,
		mode:    Write,
		written: make(map[string]struct{}),
	}
	if st, err := os.Stat(root); err == nil {
		if !st.IsDir() {
			return nil, errors.Wrapf(ErrNotContainer, "%q is not a directory", root)
		}
		return &d, nil
	}

	parent := filepath.Dir(root)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, errors.Wrapf(err, "creating parent of %q", root)
	}
	stage, err := stagingdir.New(parent, ".monobit-staging")
	if err != nil {
		return nil, errors.Wrapf(err, "staging %q", root)
	}
	d.stage = stage
	return &d, nil
}

func (d *directory) Name() string { return d.root }

func (d *directory) Mode() Mode { return d.mode }

func (d *directory) base() string {
	if d.stage != nil {
		return d.stage.Path(".")
	}
	return d.root
}

func (d *directory) memberPath(name string) (string, error) {
	clean, err := CleanMemberName(name)
	if err != nil {
		return "", err
	}
	return filepath.Join(d.base(), filepath.FromSlash(clean)), nil
}

func (d *directory) Members() ([]string, error) {
	if d.mode == Write {
		names := make([]string, 0, len(d.written))
		for name := range d.written {
			names = append(names, name)
		}
		sort.Strings(names)
		return names, nil
	}

	var names []string
	base := d.base()
	err := filepath.Walk(base, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listing %q", d.root)
	}
	sort.Strings(names)
	return names, nil
}

func (d *directory) Contains(name string) bool {
	if _, ok := d.written[name]; ok {
		return true
	}
	p, err := d.memberPath(name)
	if err != nil {
		return false
	}
	_, err = os.Stat(p)
	return err == nil
}

func (d *directory) Open(name string, mode Mode) (*Stream, error) {
	if mode == Write && d.mode != Write {
		return nil, errors.Errorf("%s: container is not writable", d.root)
	}

	clean, err := CleanMemberName(name)
	if err != nil {
		return nil, err
	}
	p := filepath.Join(d.base(), filepath.FromSlash(clean))
	if mode == Write {
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, errors.Wrapf(err, "creating directory for %q", name)
		}
		d.written[clean] = struct{}{}
	}
	return openPath(p, mode)
}

func (d *directory) Close() error {
	stage := d.stage
	if stage == nil {
		return nil
	}
	// Destroy is a no-op once committed.
	defer func() {
		_ = stage.Destroy()
	}()
	if err := stage.Commit(d.root); err != nil {
		return errors.Wrapf(err, "committing %q", d.root)
	}
	d.stage = nil
	return nil
}
