// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package formats

import (
	"strings"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/storage"
	"github.com/pluess/monobit/support/failure"

	"github.com/pkg/errors"
)

// Saver is a registered saver plugin.
type Saver struct {
	reg     *Registry
	spec    SaverSpec
	formats []string
}

// Name returns the saver's format name.
func (s *Saver) Name() string {
	if s.spec.Name != "" {
		return s.spec.Name
	}
	return s.formats[0]
}

// Format returns the saver's primary format token.
func (s *Saver) Format() string { return s.formats[0] }

// Formats returns all format tokens of the saver.
func (s *Saver) Formats() []string { return append([]string(nil), s.formats...) }

// Binary returns true if the saver writes binary streams.
func (s *Saver) Binary() bool { return s.spec.Binary }

// Multi returns true if the saver can write several fonts to one stream.
func (s *Saver) Multi() bool { return s.spec.Multi }

// Container returns true if the saver writes whole containers.
func (s *Saver) Container() bool { return s.spec.Container }

// Params returns the options the saver accepts, or nil if it accepts any.
func (s *Saver) Params() []string { return s.spec.Params }

// Save saves pack to loc.
//
// A container saver is handed loc opened as a container, and a multi-font
// stream saver is handed loc as a stream. A single-font saver is handed loc as
// a stream if pack holds one font. Otherwise loc is opened as a container,
// and the saver is called once per font, each on its own member.
func (s *Saver) Save(pack font.Pack, loc storage.Location, opts Options) (err error) {
	defer func() {
		if err != nil {
			countError("save", s.Format())
			return
		}
		countSave(s.Format(), len(pack))
	}()

	if err = opts.check(s.Format(), s.spec.Params); err != nil {
		return
	}

	s.reg.logger.Debugf("Saving %d font(s) to %q as format `%s`.", len(pack), loc, s.Format())
	switch {
	case s.spec.Container:
		return s.saveContainer(pack, loc, opts)
	case s.spec.Multi, len(pack) == 1:
		return s.saveStream(pack, loc, opts)
	default:
		return s.saveMembers(pack, loc, opts)
	}
}

func (s *Saver) saveContainer(pack font.Pack, loc storage.Location, opts Options) (err error) {
	c, err := storage.OpenContainer(loc, storage.Write)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %q", c.Name())
		}
	}()
	return s.spec.Save(pack, Output{Container: c, Logger: s.reg.logger}, opts)
}

func (s *Saver) saveStream(pack font.Pack, loc storage.Location, opts Options) (err error) {
	out, err := storage.Open(loc, storage.Write, s.spec.Binary)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %q", out.Name())
		}
	}()
	return s.spec.Save(pack, Output{Stream: out, Logger: s.reg.logger}, opts)
}

// saveMembers saves each font of pack to its own, uniquely named member of
// loc opened as a container.
//
// A member whose consumer has gone away is skipped. Any other failure ends
// the batch.
func (s *Saver) saveMembers(pack font.Pack, loc storage.Location, opts Options) (err error) {
	c, err := storage.OpenContainer(loc, storage.Write)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %q", c.Name())
		}
	}()

	for _, f := range pack {
		name := storage.UniqueName(c, memberBase(f.Name()), s.Format())

		err = s.saveMember(f, c, name, opts)
		switch {
		case err == nil:
		case failure.IsTransportClosed(err):
			s.reg.logger.Debugf("Output closed while saving %s: %s", name, err)
			err = nil
		default:
			s.reg.logger.Errorf("Could not save %s: %s", name, err)
			return
		}
	}
	return
}

// memberBase reduces a font name to a member name stem without directory
// parts: separators, spaces and control characters become underscores, and
// leading dots are dropped.
func memberBase(name string) string {
	base := strings.Map(func(r rune) rune {
		switch {
		case r == '/', r == '\\', r == ':', r == ' ', r < 0x20:
			return '_'
		default:
			return r
		}
	}, name)
	if base = strings.TrimLeft(base, "."); base == "" {
		return "font"
	}
	return base
}

func (s *Saver) saveMember(f *font.Font, c storage.Container, name string, opts Options) (err error) {
	out, err := storage.Open(storage.InContainer(c, name), storage.Write, s.spec.Binary)
	if err != nil {
		return
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = errors.Wrapf(closeErr, "closing %q", name)
		}
	}()
	return s.spec.Save(font.Pack{f}, Output{Stream: out, Logger: s.reg.logger}, opts)
}
