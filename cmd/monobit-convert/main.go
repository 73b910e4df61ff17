// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Command monobit-convert converts bitmap fonts between formats.
//
//	monobit-convert [flags] INFILE [OUTFILE]
//
// INFILE and OUTFILE may be "-" for standard input and output. If OUTFILE is
// omitted, the fonts are written to standard output.
package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/formats/builtin"
	"github.com/pluess/monobit/storage"
	"github.com/pluess/monobit/support/failure"
	"github.com/pluess/monobit/support/logging"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

const stdio = "-"

type app struct {
	from, to     string
	loadOpts     []string
	saveOpts     []string
	compression  storage.CompressionFlag
	debug        bool
	list         bool
	showCounters bool

	logger  logging.L
	metrics *prometheus.Registry
}

func (a *app) addFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&a.from, "from", "f", "", "Input format. Inferred from the input if empty.")
	fs.StringVarP(&a.to, "to", "t", "", "Output format. Inferred from the output name if empty.")
	fs.StringArrayVarP(&a.loadOpts, "load-option", "l", nil, "Loader option, as KEY=VALUE. May be repeated.")
	fs.StringArrayVarP(&a.saveOpts, "save-option", "s", nil, "Saver option, as KEY=VALUE. May be repeated.")
	fs.VarP(&a.compression, "compress", "z",
		fmt.Sprintf("Compress the output file. Options are: %s.", storage.CompressionFlagValues()))
	fs.BoolVarP(&a.debug, "debug", "d", false, "Emit debug logs.")
	fs.BoolVar(&a.list, "list", false, "List the available formats and exit.")
	fs.BoolVar(&a.showCounters, "counters", false, "Log the load and save counters on exit.")
}

// parseOptions parses KEY=VALUE pairs. A bare KEY is a true boolean option.
func parseOptions(kvs []string) (formats.Options, error) {
	opts := make(formats.Options, len(kvs))
	for _, kv := range kvs {
		parts := strings.SplitN(kv, "=", 2)
		key := strings.TrimSpace(parts[0])
		if key == "" {
			return nil, errors.Errorf("option %q has no name", kv)
		}
		if len(parts) == 1 {
			opts[key] = "true"
		} else {
			opts[key] = parts[1]
		}
	}
	return opts, nil
}

func (a *app) listFormats(w io.Writer, reg *formats.Registry) {
	fmt.Fprintln(w, "Loaders:")
	for _, l := range reg.Loaders() {
		fmt.Fprintf(w, "  %-20s %s\n", l.Name(), strings.Join(l.Formats(), ", "))
	}
	fmt.Fprintln(w, "Savers:")
	for _, s := range reg.Savers() {
		fmt.Fprintf(w, "  %-20s %s\n", s.Name(), strings.Join(s.Formats(), ", "))
	}
}

func (a *app) input(path string) (storage.Location, func() error, error) {
	if path != stdio {
		return storage.AtPath(path), func() error { return nil }, nil
	}
	s, err := storage.NewReader(os.Stdin, "stdin")
	if err != nil {
		return storage.Location{}, nil, err
	}
	return storage.OnStream(s), s.Close, nil
}

func (a *app) output(path string) (storage.Location, func() error, error) {
	suffix := storage.CompressionSuffix(a.compression.Value())
	if path != stdio {
		if suffix != "" && !strings.HasSuffix(path, "."+suffix) {
			path += "." + suffix
		}
		return storage.AtPath(path), func() error { return nil }, nil
	}

	name := "stdout"
	if a.to != "" {
		name += "." + a.to
	}
	if suffix != "" {
		name += "." + suffix
	}
	s, err := storage.NewWriter(os.Stdout, name)
	if err != nil {
		return storage.Location{}, nil, err
	}
	return storage.OnStream(s), s.Close, nil
}

func (a *app) convert(reg *formats.Registry, in, out string) (err error) {
	loadOpts, err := parseOptions(a.loadOpts)
	if err != nil {
		return err
	}
	saveOpts, err := parseOptions(a.saveOpts)
	if err != nil {
		return err
	}

	src, closeSrc, err := a.input(in)
	if err != nil {
		return err
	}
	res, err := reg.Load(src, a.from, loadOpts)
	if closeErr := closeSrc(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, "loading %q", in)
	}
	a.logger.Infof("Loaded %d font(s) from %q.", res.Len(), in)
	if !loaded(res.Pack()) {
		a.logger.Warnf("No glyphs found in %q.", in)
	}

	dst, closeDst, err := a.output(out)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeDst(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	if err = reg.Save(res.Pack(), dst, a.to, saveOpts); err != nil {
		return errors.Wrapf(err, "saving %q", out)
	}
	a.logger.Infof("Saved %d font(s) to %q.", res.Len(), dst)
	return nil
}

// logCounters logs the non-zero counters of the registered metrics.
func (a *app) logCounters() {
	mfs, err := a.metrics.Gather()
	if err != nil {
		a.logger.Warnf("Could not gather counters: %s", err)
		return
	}
	var lines []string
	for _, mf := range mfs {
		for _, m := range mf.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				labels = append(labels, lp.GetName()+"="+lp.GetValue())
			}
			lines = append(lines, fmt.Sprintf("%s{%s} %v", mf.GetName(), strings.Join(labels, ","),
				m.GetCounter().GetValue()))
		}
	}
	sort.Strings(lines)
	a.logger.Infof("Counters:\n%s", strings.Join(lines, "\n"))
}

func (a *app) run(args []string) int {
	fs := pflag.NewFlagSet(args[0], pflag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] INFILE [OUTFILE]\n", args[0])
		fs.PrintDefaults()
	}
	a.addFlags(fs)

	// A closed standard output surfaces as EPIPE instead of killing the
	// process.
	signal.Ignore(syscall.SIGPIPE)

	if err := fs.Parse(args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		return 2
	}

	zl, err := logging.NewZap(a.debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not create logger: %s\n", err)
		return 1
	}
	defer func() { _ = zl.Sync() }()
	a.logger = zl

	a.metrics = prometheus.NewRegistry()
	formats.RegisterMonitoring(a.metrics)

	reg, err := builtin.NewRegistry(formats.Config{Logger: a.logger})
	if err != nil {
		a.logger.Errorf("Could not register formats: %s", err)
		return 1
	}

	if a.list {
		a.listFormats(os.Stdout, reg)
		return 0
	}

	in, out := stdio, stdio
	switch fs.NArg() {
	case 2:
		out = fs.Arg(1)
		fallthrough
	case 1:
		in = fs.Arg(0)
	default:
		fs.Usage()
		return 2
	}

	err = a.convert(reg, in, out)
	if a.showCounters {
		a.logCounters()
	}
	switch {
	case err == nil:
		return 0
	case failure.IsTransportClosed(err):
		a.logger.Debugf("Output closed: %s", err)
		return 0
	default:
		a.logger.Errorf("Conversion failed: %s", err)
		return 1
	}
}

// loaded reports whether pack holds any glyphs at all.
func loaded(pack font.Pack) bool {
	for _, f := range pack {
		if f.Len() > 0 {
			return true
		}
	}
	return false
}

func main() {
	var a app
	os.Exit(a.run(os.Args))
}
