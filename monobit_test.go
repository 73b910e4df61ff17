// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package monobit

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/support/failure"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("monobit", func() {
	var tdir string

	BeforeEach(func() {
		var err error
		tdir, err = ioutil.TempDir("", "monobit_test")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		if tdir != "" {
			Expect(os.RemoveAll(tdir)).To(Succeed())
		}
	})

	testFont := func(name string) *font.Font {
		return font.New([]font.Glyph{
			font.FromText(".#.", "#.#", "###").WithCodepoint('A'),
			font.FromText("##.", "###", "##.").WithCodepoint('B'),
		}, font.NewProperties("name", name, "encoding", "latin-1"))
	}

	It("rejects configuration once the registry is in use", func() {
		_, err := Registry()
		Expect(err).ToNot(HaveOccurred())
		Expect(Configure(formats.Config{DefaultFormat: "bdf"})).ToNot(Succeed())
	})

	It("saves and loads a compressed file", func() {
		p := filepath.Join(tdir, "test.bdf.gz")
		Expect(SaveFile(font.Pack{testFont("Test")}, p, "", nil)).To(Succeed())

		res, err := LoadFile(p, "", nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.IsCollection()).To(BeFalse())

		f := res.Font()
		Expect(f.Name()).To(Equal("Test"))
		Expect(f.Property("encoding")).To(Equal("latin-1"))
		Expect(f.Property(font.PropSourceName)).To(Equal("test.bdf.gz"))
		Expect(f.Property(font.PropConverter)).To(HavePrefix("monobit v"))

		g, ok := f.GlyphAt('B')
		Expect(ok).To(BeTrue())
		Expect(g.AsText('#', '.')).To(Equal([]string{"##.", "###", "##."}))
	})

	It("saves several fonts to a zip archive", func() {
		p := filepath.Join(tdir, "fonts.bdf.zip")
		Expect(SaveFile(font.Pack{testFont("One"), testFont("Two")}, p, "", nil)).To(Succeed())

		res, err := LoadFile(p, "", nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(res.IsCollection()).To(BeTrue())

		var names []string
		for _, f := range res.Pack() {
			names = append(names, f.Name())
		}
		Expect(names).To(ConsistOf("One", "Two"))
	})

	It("reports unknown formats", func() {
		_, err := LoadFile(filepath.Join(tdir, "missing.xyz"), "", nil)
		Expect(failure.IsLookup(err) || failure.IsNotFound(err)).To(BeTrue())

		err = SaveFile(font.Pack{testFont("Test")}, filepath.Join(tdir, "out.xyz"), "", nil)
		Expect(failure.IsLookup(err)).To(BeTrue())
	})
})

func TestMonobit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test monobit")
}
