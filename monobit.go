// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package monobit loads and saves bitmap fonts in any of the built-in formats.
//
// Load and Save use a process-wide Registry holding every built-in format
// plugin. It is built on first use, and can be configured beforehand with
// Configure. Programs that need several differently configured registries
// build their own with the builtin package.
package monobit

import (
	"sync"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/formats/builtin"
	"github.com/pluess/monobit/storage"

	"github.com/pkg/errors"
)

var defaultRegistry struct {
	sync.Mutex

	cfg formats.Config
	reg *formats.Registry
	err error
}

// Configure sets the configuration of the process-wide Registry. It fails
// once the Registry has been built.
func Configure(cfg formats.Config) error {
	defaultRegistry.Lock()
	defer defaultRegistry.Unlock()

	if defaultRegistry.reg != nil || defaultRegistry.err != nil {
		return errors.New("registry is already in use")
	}
	defaultRegistry.cfg = cfg
	return nil
}

// Registry returns the process-wide Registry, building it on first use.
func Registry() (*formats.Registry, error) {
	defaultRegistry.Lock()
	defer defaultRegistry.Unlock()

	if defaultRegistry.reg == nil && defaultRegistry.err == nil {
		defaultRegistry.reg, defaultRegistry.err = builtin.NewRegistry(defaultRegistry.cfg)
	}
	return defaultRegistry.reg, defaultRegistry.err
}

// Load loads fonts from loc. If format is empty, it is inferred from the
// content and name of loc.
func Load(loc storage.Location, format string, opts formats.Options) (font.Result, error) {
	reg, err := Registry()
	if err != nil {
		return font.Result{}, err
	}
	return reg.Load(loc, format, opts)
}

// Save saves pack to loc. If format is empty, it is inferred from the name of
// loc.
func Save(pack font.Pack, loc storage.Location, format string, opts formats.Options) error {
	reg, err := Registry()
	if err != nil {
		return err
	}
	return reg.Save(pack, loc, format, opts)
}

// LoadFile loads fonts from the file or directory at path.
func LoadFile(path, format string, opts formats.Options) (font.Result, error) {
	return Load(storage.AtPath(path), format, opts)
}

// SaveFile saves pack to the file, directory or archive at path.
func SaveFile(pack font.Pack, path, format string, opts formats.Options) error {
	return Save(pack, storage.AtPath(path), format, opts)
}
