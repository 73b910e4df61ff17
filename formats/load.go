// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package formats

import (
	"path/filepath"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/storage"

	"github.com/pkg/errors"
)

// Loader is a registered loader plugin.
type Loader struct {
	reg     *Registry
	spec    LoaderSpec
	formats []string
}

// Name returns the loader's format name.
func (l *Loader) Name() string {
	if l.spec.Name != "" {
		return l.spec.Name
	}
	return l.formats[0]
}

// Format returns the loader's primary format token.
func (l *Loader) Format() string { return l.formats[0] }

// Formats returns all format tokens of the loader.
func (l *Loader) Formats() []string { return append([]string(nil), l.formats...) }

// Magic returns the loader's magic sequences.
func (l *Loader) Magic() [][]byte { return l.spec.Magic }

// Binary returns true if the loader reads binary streams.
func (l *Loader) Binary() bool { return l.spec.Binary }

// Multi returns true if the loader can return several fonts from one stream.
func (l *Loader) Multi() bool { return l.spec.Multi }

// Container returns true if the loader reads whole containers.
func (l *Loader) Container() bool { return l.spec.Container }

// Params returns the options the loader accepts, or nil if it accepts any.
func (l *Loader) Params() []string { return l.spec.Params }

// Load loads fonts from loc.
//
// A container loader is handed loc opened as a container. A single-font
// stream loader is handed every member of loc if loc opens as a container,
// and loc itself as a stream otherwise. A multi-font stream loader is handed
// loc as a stream.
//
// Fonts are tagged with their converter, source format and source name,
// wherever the plugin did not set these itself.
func (l *Loader) Load(loc storage.Location, opts Options) (res font.Result, err error) {
	defer func() {
		if err != nil {
			countError("load", l.Format())
			return
		}
		countLoad(l.Format(), res.Len())
	}()

	if err = opts.check(l.Format(), l.spec.Params); err != nil {
		return
	}

	l.reg.logger.Debugf("Loading %q as format `%s`.", loc, l.Format())
	switch {
	case l.spec.Container:
		return l.loadContainer(loc, opts)
	case l.spec.Multi:
		return l.loadStream(loc, opts)
	}

	c, err := storage.OpenContainer(loc, storage.Read)
	switch {
	case errors.Is(err, storage.ErrNotContainer):
		return l.loadStream(loc, opts)
	case err != nil:
		return
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %q", c.Name())
		}
	}()
	return l.loadMembers(c, opts)
}

func (l *Loader) loadContainer(loc storage.Location, opts Options) (res font.Result, err error) {
	c, err := storage.OpenContainer(loc, storage.Read)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %q", c.Name())
		}
	}()

	if res, err = l.spec.Load(Input{Container: c, Logger: l.reg.logger}, opts); err != nil {
		return
	}
	return l.reg.tag(res, loc.BaseName(), l.Name()), nil
}

func (l *Loader) loadStream(loc storage.Location, opts Options) (res font.Result, err error) {
	s, err := storage.Open(loc, storage.Read, l.spec.Binary)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %q", s.Name())
		}
	}()

	where := l.where(loc)
	if where != nil && where != loc.Container() {
		defer func() {
			_ = where.Close()
		}()
	}

	if res, err = l.spec.Load(Input{Stream: s, Where: where, Logger: l.reg.logger}, opts); err != nil {
		return
	}
	return l.reg.tag(res, filepath.Base(s.Name()), l.Name()), nil
}

// loadMembers loads every member of c as one stream each, and flattens the
// results into one collection.
func (l *Loader) loadMembers(c storage.Container, opts Options) (font.Result, error) {
	members, err := c.Members()
	if err != nil {
		return font.Result{}, err
	}

	var pack font.Pack
	for _, name := range members {
		res, err := l.loadMember(c, name, opts)
		if err != nil {
			return font.Result{}, err
		}
		pack = append(pack, res.Pack()...)
	}
	return font.Collection(pack), nil
}

func (l *Loader) loadMember(c storage.Container, name string, opts Options) (res font.Result, err error) {
	s, err := storage.Open(storage.InContainer(c, name), storage.Read, l.spec.Binary)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %q", name)
		}
	}()

	if res, err = l.spec.Load(Input{Stream: s, Where: c, Logger: l.reg.logger}, opts); err != nil {
		return
	}
	return l.reg.tag(res, name, l.Name()), nil
}

// where returns the container that holds loc: the directory of a path, or the
// container of a member. It returns nil for a stream, or if the directory
// cannot be opened.
func (l *Loader) where(loc storage.Location) storage.Container {
	switch {
	case loc.Container() != nil:
		return loc.Container()
	case loc.IsPath():
		c, err := storage.OpenContainer(storage.AtPath(filepath.Dir(loc.Path())), storage.Read)
		if err != nil {
			l.reg.logger.Debugf("No container for %q: %s", loc, err)
			return nil
		}
		return c
	default:
		return nil
	}
}
