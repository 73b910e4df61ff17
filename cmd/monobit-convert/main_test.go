// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package main

import (
	"io/ioutil"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/formats/builtin"
	"github.com/pluess/monobit/storage"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

var _ = Describe("monobit-convert", func() {
	var tdir, src string

	BeforeEach(func() {
		var err error
		tdir, err = ioutil.TempDir("", "monobit_convert_test")
		Expect(err).ToNot(HaveOccurred())

		reg, err := builtin.NewRegistry(formats.Config{})
		Expect(err).ToNot(HaveOccurred())

		src = filepath.Join(tdir, "in.bdf")
		f := font.New([]font.Glyph{
			font.FromText("#.", ".#").WithCodepoint('A'),
			font.FromText(".#", "#.").WithCodepoint('B'),
		}, font.NewProperties("name", "Tiny", "spacing", "character-cell"))
		Expect(reg.Save(font.Pack{f}, storage.AtPath(src), "", nil)).To(Succeed())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(tdir)).To(Succeed())
	})

	run := func(args ...string) int {
		var a app
		return a.run(append([]string{"monobit-convert"}, args...))
	}

	It("converts between formats by file name", func() {
		out := filepath.Join(tdir, "out.py")
		Expect(run(src, out)).To(Equal(0))

		data, err := ioutil.ReadFile(out)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(data)).To(HavePrefix("font_Tiny = [\n"))
	})

	It("compresses the output", func() {
		Expect(run("--compress", "gzip", "--counters", src, filepath.Join(tdir, "out.bdf"))).To(Equal(0))
		Expect(filepath.Join(tdir, "out.bdf.gz")).To(BeAnExistingFile())
	})

	It("passes options to the loader", func() {
		py := filepath.Join(tdir, "font.py")
		Expect(ioutil.WriteFile(py, []byte("font = [0x80, 0x40]\n"), 0644)).To(Succeed())

		Expect(run("-l", "cell=8x1", "-l", "identifier=font", py, filepath.Join(tdir, "out.bdf"))).To(Equal(0))
		Expect(filepath.Join(tdir, "out.bdf")).To(BeAnExistingFile())
	})

	DescribeTable("fails on bad invocations",
		func(code int, args ...string) {
			Expect(run(args...)).To(Equal(code))
		},
		Entry("too many arguments", 2, "a", "b", "c"),
		Entry("unknown flag", 2, "--bogus"),
		Entry("unknown compression", 2, "--compress", "lzma", "a"),
		Entry("missing input", 1, "/nonexistent/in.bdf", "out.bdf"),
		Entry("unknown option", 1, "-l", "bogus=1", "/nonexistent/in.bdf", "out.bdf"),
	)

	It("treats a closed standard output as success", func() {
		r, w, err := os.Pipe()
		Expect(err).ToNot(HaveOccurred())
		Expect(r.Close()).To(Succeed())

		stdout := os.Stdout
		os.Stdout = w
		defer func() {
			os.Stdout = stdout
			_ = w.Close()
		}()

		Expect(run("--to", "bdf", src, "-")).To(Equal(0))
		Expect(signal.Ignored(syscall.SIGPIPE)).To(BeTrue())
	})

	It("lists formats", func() {
		Expect(run("--list")).To(Equal(0))
	})
})

var _ = Describe("parseOptions", func() {
	It("parses KEY=VALUE pairs and bare flags", func() {
		opts, err := parseOptions([]string{"cell=8x8", "strict", "comment=a=b"})
		Expect(err).ToNot(HaveOccurred())
		Expect(opts).To(Equal(formats.Options{"cell": "8x8", "strict": "true", "comment": "a=b"}))

		_, err = parseOptions([]string{"=x"})
		Expect(err).To(HaveOccurred())
	})
})

func TestMonobitConvert(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test monobit-convert")
}
