// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package builtin registers all format plugins of this module.
package builtin

import (
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/formats/amiga"
	"github.com/pluess/monobit/formats/bdf"
	"github.com/pluess/monobit/formats/fzx"
	"github.com/pluess/monobit/formats/source"

	"github.com/pkg/errors"
)

var plugins = []struct {
	name     string
	register func(*formats.Registry) error
}{
	{"amiga", amiga.Register},
	{"bdf", bdf.Register},
	{"fzx", fzx.Register},
	{"source", source.Register},
}

// Register registers every built-in format plugin with reg.
func Register(reg *formats.Registry) error {
	for _, p := range plugins {
		if err := p.register(reg); err != nil {
			return errors.Wrapf(err, "registering %s plugin", p.name)
		}
	}
	return nil
}

// NewRegistry returns a Registry configured by cfg, holding every built-in
// format plugin.
func NewRegistry(cfg formats.Config) (*formats.Registry, error) {
	reg := formats.NewRegistry(cfg)
	if err := Register(reg); err != nil {
		return nil, err
	}
	return reg, nil
}
