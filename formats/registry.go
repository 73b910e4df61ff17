// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package formats maps font files, streams and containers to format plugins.
//
// A Registry holds two tables: loaders and savers, each keyed by format token.
// Loaders may also claim magic byte sequences. Plugins are registered
// explicitly, once, before any load or save, and the Registry is read-only
// afterwards.
//
// Each plugin declares how it wants its input or output delivered: as a
// binary or text stream, one font or many at a time, or as a whole container.
// The Registry opens targets accordingly, so a plugin only ever sees an
// already-classified stream or container. It also tags loaded fonts with
// their provenance.
package formats

import (
	"bytes"
	"strings"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/storage"
	"github.com/pluess/monobit/support/failure"
	"github.com/pluess/monobit/support/fmtutil"
	"github.com/pluess/monobit/support/logging"

	"github.com/pkg/errors"
)

// Version is the version of this software, recorded in the converter
// property of loaded fonts.
const Version = "0.1.0"

// Input is what a loader plugin reads from.
type Input struct {
	// Stream is the input stream, for stream loaders.
	Stream *storage.Stream
	// Container is the input container, for container loaders.
	Container storage.Container
	// Where is the container that holds Stream, if known: the directory of a
	// file, or the archive of a member. Loaders that follow references to
	// sibling files open them here. Where may be nil.
	Where storage.Container
	// Logger is the registry's logger. It is never nil.
	Logger logging.L
}

// Output is what a saver plugin writes to.
type Output struct {
	// Stream is the output stream, for stream savers.
	Stream *storage.Stream
	// Container is the output container, for container savers.
	Container storage.Container
	// Logger is the registry's logger. It is never nil.
	Logger logging.L
}

// LoadFunc is a loader plugin.
type LoadFunc func(in Input, opts Options) (font.Result, error)

// SaveFunc is a saver plugin. Single-font savers are always called with a
// one-font Pack.
type SaveFunc func(pack font.Pack, out Output, opts Options) error

// LoaderSpec describes a loader plugin.
type LoaderSpec struct {
	// Name is the format name recorded as the source format of loaded fonts.
	// If empty, the first format token is used.
	Name string
	// Formats are the format tokens the loader handles. The first is primary.
	Formats []string
	// Magic are the leading byte sequences that identify the format.
	Magic [][]byte

	// Binary is true if the loader reads binary streams rather than text.
	Binary bool
	// Multi is true if the loader can return several fonts from one stream.
	Multi bool
	// Container is true if the loader reads a whole container.
	Container bool

	// Params lists the options the loader accepts. If nil, any option is
	// accepted.
	Params []string

	// Load is the plugin.
	Load LoadFunc
}

// SaverSpec describes a saver plugin.
type SaverSpec struct {
	// Name is the format name used in logs. If empty, the first format token
	// is used.
	Name string
	// Formats are the format tokens the saver handles. The first is primary,
	// and is used as the extension of container members.
	Formats []string

	// Binary is true if the saver writes binary streams rather than text.
	Binary bool
	// Multi is true if the saver can write several fonts to one stream.
	Multi bool
	// Container is true if the saver writes a whole container.
	Container bool

	// Params lists the options the saver accepts. If nil, any option is
	// accepted.
	Params []string

	// Save is the plugin.
	Save SaveFunc
}

// Config configures a Registry.
type Config struct {
	// DefaultFormat is the format used for names without suffix. If empty,
	// "yaff" is used.
	DefaultFormat string

	// CompressorSuffixes and ContainerSuffixes are the suffixes, without dot,
	// that may follow a format suffix in a name, as in "font.bdf.gz". If nil,
	// the suffixes known to the storage package are used.
	CompressorSuffixes []string
	ContainerSuffixes  []string

	// Converter is recorded as the converter property of loaded fonts. If
	// empty, "monobit v" followed by Version is used.
	Converter string

	// Logger is used for logging. If nil, nothing is logged.
	Logger logging.L
}

// DefaultFormat is the format used for names without suffix, unless
// configured otherwise.
const DefaultFormat = "yaff"

type magicEntry struct {
	magic  []byte
	loader *Loader
}

// Registry holds format plugins and dispatches loads and saves to them.
//
// Registration is not synchronized. Once all plugins are registered, a
// Registry is safe for concurrent use.
type Registry struct {
	defaultFormat string
	compressors   map[string]struct{}
	containers    map[string]struct{}
	converter     string
	logger        logging.L

	loaders     map[string]*Loader
	loaderOrder []*Loader
	magic       []magicEntry

	savers     map[string]*Saver
	saverOrder []*Saver
}

// NewRegistry returns an empty Registry configured by cfg.
func NewRegistry(cfg Config) *Registry {
	r := Registry{
		defaultFormat: NormalizeFormat(cfg.DefaultFormat),
		compressors:   make(map[string]struct{}),
		containers:    make(map[string]struct{}),
		converter:     cfg.Converter,
		logger:        logging.Must(cfg.Logger),
		loaders:       make(map[string]*Loader),
		savers:        make(map[string]*Saver),
	}
	if r.defaultFormat == "" {
		r.defaultFormat = DefaultFormat
	}
	if r.converter == "" {
		r.converter = "monobit v" + Version
	}

	compressors := cfg.CompressorSuffixes
	if compressors == nil {
		for suffix := range storage.Compressors {
			compressors = append(compressors, suffix)
		}
	}
	for _, suffix := range compressors {
		r.compressors[NormalizeFormat(suffix)] = struct{}{}
	}

	containers := cfg.ContainerSuffixes
	if containers == nil {
		for suffix := range storage.ContainerSuffixes {
			containers = append(containers, suffix)
		}
	}
	for _, suffix := range containers {
		r.containers[NormalizeFormat(suffix)] = struct{}{}
	}
	return &r
}

// NormalizeFormat returns the normalized form of a format token: lower case,
// without a leading dot.
func NormalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
}

// RegisterLoader adds a loader plugin to the registry.
//
// Registration fails if there are no format tokens or no plugin, or if one
// of its tokens or magic sequences is already registered.
func (r *Registry) RegisterLoader(spec LoaderSpec) error {
	if len(spec.Formats) == 0 {
		return errors.New("loader has no format tokens")
	}
	if spec.Load == nil {
		return errors.Errorf("loader %q has no load function", spec.Formats[0])
	}

	l := Loader{
		reg:     r,
		spec:    spec,
		formats: make([]string, len(spec.Formats)),
	}
	for i, f := range spec.Formats {
		token := NormalizeFormat(f)
		if _, ok := r.loaders[token]; ok {
			return errors.Errorf("duplicate loader for format `%s`", token)
		}
		l.formats[i] = token
	}
	for _, m := range spec.Magic {
		if len(m) == 0 {
			return errors.Errorf("loader %q has an empty magic sequence", l.formats[0])
		}
		for _, e := range r.magic {
			if bytes.Equal(e.magic, m) {
				return errors.Errorf("duplicate loader for magic %s", fmtutil.HexSlice(m))
			}
		}
	}

	for _, token := range l.formats {
		r.loaders[token] = &l
	}
	for _, m := range spec.Magic {
		r.magic = append(r.magic, magicEntry{magic: append([]byte(nil), m...), loader: &l})
	}
	r.loaderOrder = append(r.loaderOrder, &l)
	return nil
}

// RegisterSaver adds a saver plugin to the registry.
//
// Registration fails if there are no format tokens or no plugin, or if one
// of its tokens is already registered.
func (r *Registry) RegisterSaver(spec SaverSpec) error {
	if len(spec.Formats) == 0 {
		return errors.New("saver has no format tokens")
	}
	if spec.Save == nil {
		return errors.Errorf("saver %q has no save function", spec.Formats[0])
	}

	s := Saver{
		reg:     r,
		spec:    spec,
		formats: make([]string, len(spec.Formats)),
	}
	for i, f := range spec.Formats {
		token := NormalizeFormat(f)
		if _, ok := r.savers[token]; ok {
			return errors.Errorf("duplicate saver for format `%s`", token)
		}
		s.formats[i] = token
	}

	for _, token := range s.formats {
		r.savers[token] = &s
	}
	r.saverOrder = append(r.saverOrder, &s)
	return nil
}

// Loaders returns all registered loaders, in registration order.
func (r *Registry) Loaders() []*Loader { return append([]*Loader(nil), r.loaderOrder...) }

// Savers returns all registered savers, in registration order.
func (r *Registry) Savers() []*Saver { return append([]*Saver(nil), r.saverOrder...) }

// Format returns the format token for loc.
//
// If explicit is not empty, it is normalized and returned. Otherwise the
// format is inferred from the suffixes of loc's name: the last suffix, or the
// second-to-last if the last is a compressor or container suffix, as in
// "font.bdf.gz". Only the last two suffixes are ever inspected. A name
// without suffix has the default format.
func (r *Registry) Format(loc storage.Location, explicit string) string {
	if format := NormalizeFormat(explicit); format != "" {
		return format
	}

	suffixes := storage.Suffixes(loc.Name())
	switch n := len(suffixes); {
	case n == 0:
		return r.defaultFormat
	case n >= 2 && r.isWrapperSuffix(suffixes[n-1]):
		return NormalizeFormat(suffixes[n-2])
	default:
		return NormalizeFormat(suffixes[n-1])
	}
}

func (r *Registry) isWrapperSuffix(suffix string) bool {
	if _, ok := r.compressors[suffix]; ok {
		return true
	}
	_, ok := r.containers[suffix]
	return ok
}

// GetLoader resolves the loader for loc.
//
// If loc can be read as a binary stream, its leading bytes are matched
// against the registered magic sequences, in registration order, without
// consuming them. A match wins even over an explicit format. If nothing
// matches, the loader is looked up by the format token from Format. A
// directory skips the magic probe.
//
// If no loader is registered for the token, GetLoader returns a
// failure.LookupError.
func (r *Registry) GetLoader(loc storage.Location, format string) (*Loader, error) {
	l, err := r.probe(loc)
	if err != nil {
		return nil, err
	}
	if l != nil {
		return l, nil
	}

	token := r.Format(loc, format)
	if l, ok := r.loaders[token]; ok {
		return l, nil
	}
	return nil, &failure.LookupError{Operation: "load", Format: token}
}

// probe matches loc against the magic table. It returns nil if loc cannot be
// probed or nothing matches.
func (r *Registry) probe(loc storage.Location) (*Loader, error) {
	if len(r.magic) == 0 {
		return nil, nil
	}

	switch {
	case loc.IsPath():
		s, err := storage.Open(loc, storage.Read, true)
		switch {
		case errors.Is(err, storage.ErrIsDirectory):
			return nil, nil
		case err != nil:
			return nil, err
		}
		defer func() {
			_ = s.Close()
		}()
		return r.matchMagic(s), nil

	case loc.Stream() != nil:
		if loc.Stream().Mode() != storage.Read {
			return nil, nil
		}
		return r.matchMagic(loc.Stream()), nil

	default:
		s, err := storage.Open(loc, storage.Read, true)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = s.Close()
		}()
		return r.matchMagic(s), nil
	}
}

func (r *Registry) matchMagic(s *storage.Stream) *Loader {
	for _, e := range r.magic {
		head, _ := s.Peek(len(e.magic))
		if bytes.Equal(head, e.magic) {
			r.logger.Debugf("Matched magic %s of format `%s` in %q.",
				fmtutil.HexSlice(e.magic), e.loader.Format(), s.Name())
			return e.loader
		}
	}
	return nil
}

// GetSaver resolves the saver for loc by the format token from Format.
//
// If no saver is registered for the token, GetSaver returns a
// failure.LookupError.
func (r *Registry) GetSaver(loc storage.Location, format string) (*Saver, error) {
	token := r.Format(loc, format)
	if s, ok := r.savers[token]; ok {
		return s, nil
	}
	return nil, &failure.LookupError{Operation: "save", Format: token}
}

// Load loads fonts from loc, using the loader resolved by GetLoader.
func (r *Registry) Load(loc storage.Location, format string, opts Options) (font.Result, error) {
	l, err := r.GetLoader(loc, format)
	if err != nil {
		countError("load", r.Format(loc, format))
		return font.Result{}, err
	}
	return l.Load(loc, opts)
}

// Save saves pack to loc, using the saver for format, or the saver resolved
// by GetSaver if format is empty.
func (r *Registry) Save(pack font.Pack, loc storage.Location, format string, opts Options) error {
	s, err := r.GetSaver(loc, format)
	if err != nil {
		countError("save", r.Format(loc, format))
		return err
	}
	return s.Save(pack, loc, opts)
}

// tag sets provenance properties on every font of res, where they are unset.
func (r *Registry) tag(res font.Result, name, format string) font.Result {
	return res.Map(func(f *font.Font) *font.Font {
		return f.SetDefaults(
			font.PropConverter, r.converter,
			font.PropSourceFormat, format,
			font.PropSourceName, name,
		)
	})
}
