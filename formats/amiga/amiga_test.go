// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package amiga

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/packed"
	"github.com/pluess/monobit/storage"
	"github.com/pluess/monobit/support/failure"

	"github.com/lunixbochs/struc"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

// buildFont returns an Amiga font file with glyphs for 'A' and 'B' and a
// default glyph, two pixels high.
func buildFont(name []byte, style packed.Values) []byte {
	var buf bytes.Buffer
	put := func(v int64) {
		Expect(ulong.Pack(&buf, v)).To(Succeed())
	}

	put(hunkHeader)
	put(0) // no library names
	Expect(struc.Pack(&buf, &hunkFileHeader{TableSize: 1, FirstHunk: 0, LastHunk: 0})).To(Succeed())
	put(35) // hunk size in longs
	put(hunkCode)

	dfhName := make([]byte, maxFontName)
	copy(dfhName, name)

	// Tables follow the header; offsets count from tableBase.
	locAt := fontHeader.Size()
	spaceAt := locAt + 3*charLoc.Size()
	kernAt := spaceAt + 3*charWord.Size()
	dataAt := kernAt + 3*charWord.Size()

	hdr := fontHeader.MustMake(packed.Values{
		"hunk_size":    35,
		"dfh_FileID":   0x0f80,
		"dfh_Revision": 3,
		"dfh_Name":     dfhName,
		"tf_YSize":     2,
		"tf_Style":     style,
		"tf_Flags": packed.Values{
			"FPF_PROPORTIONAL": true,
			"FPF_DISKFONT":     true,
		},
		"tf_XSize":     3,
		"tf_Baseline":  1,
		"tf_BoldSmear": 1,
		"tf_LoChar":    'A',
		"tf_HiChar":    'B',
		"tf_CharData":  dataAt - tableBase,
		"tf_Modulo":    1,
		"tf_CharLoc":   locAt - tableBase,
		"tf_CharSpace": spaceAt - tableBase,
		"tf_CharKern":  kernAt - tableBase,
	})
	Expect(fontHeader.Pack(&buf, hdr)).To(Succeed())

	locs := []packed.Record{
		charLoc.MustMake(packed.Values{"offset": 0, "width": 2}),
		charLoc.MustMake(packed.Values{"offset": 2, "width": 3}),
		charLoc.MustMake(packed.Values{"offset": 5, "width": 2}),
	}
	Expect(charLoc.Array(3).Pack(&buf, locs)).To(Succeed())
	Expect(charWord.Array(3).Pack(&buf, []int64{3, 4, 2})).To(Succeed())
	Expect(charWord.Array(3).Pack(&buf, []int64{0, 1, -1})).To(Succeed())

	// Strike rows: A = "#." ".#", B = "###" "#.#", default = "##" "##".
	buf.Write([]byte{0xbe, 0x6e})
	put(0x3f2) // end of hunk
	return buf.Bytes()
}

func buildContents(id int, names ...string) []byte {
	var buf bytes.Buffer
	Expect(contentsHeader.Pack(&buf, contentsHeader.MustMake(packed.Values{
		"fch_FileID":     id,
		"fch_NumEntries": len(names),
	}))).To(Succeed())
	for _, name := range names {
		Expect(contentsEntry.Pack(&buf, contentsEntry.MustMake(packed.Values{
			"fc_FileName": []byte(name),
			"fc_YSize":    2,
		}))).To(Succeed())
	}
	return buf.Bytes()
}

var _ = Describe("Amiga", func() {
	var (
		tdir string
		reg  *formats.Registry
	)

	BeforeEach(func() {
		var err error
		tdir, err = ioutil.TempDir("", "monobit_amiga_test")
		Expect(err).ToNot(HaveOccurred())

		reg = formats.NewRegistry(formats.Config{})
		Expect(Register(reg)).To(Succeed())
	})

	AfterEach(func() {
		if tdir != "" {
			Expect(os.RemoveAll(tdir)).To(Succeed())
		}
	})

	writeFile := func(name string, data []byte) string {
		p := filepath.Join(tdir, filepath.FromSlash(name))
		Expect(os.MkdirAll(filepath.Dir(p), 0755)).To(Succeed())
		Expect(ioutil.WriteFile(p, data, 0644)).To(Succeed())
		return p
	}

	It("loads a font file by its magic", func() {
		p := writeFile("test/2", buildFont([]byte("T\xe9st\x00narrow"), packed.Values{"FSF_BOLD": true}))

		res, err := reg.Load(storage.AtPath(p), "", nil)
		Expect(err).ToNot(HaveOccurred())
		f := res.Font()
		Expect(f).ToNot(BeNil())

		Expect(f.Name()).To(Equal("Tést"))
		Expect(f.Property("family")).To(Equal("Tést"))
		Expect(f.Property("amiga.dfh-name")).To(Equal(`"Tést" narrow`))
		Expect(f.Property("revision")).To(Equal("3"))
		Expect(f.Property("weight")).To(Equal("bold"))
		Expect(f.Property("slant")).To(Equal("roman"))
		Expect(f.Property("spacing")).To(Equal("proportional"))
		Expect(f.Property("encoding")).To(Equal(Encoding))
		Expect(f.HasProperty("amiga.tf-boldsmear")).To(BeFalse())
		Expect(f.Property(font.PropSourceFormat)).To(Equal("Amiga Font"))
		Expect(f.Property(font.PropSourceName)).To(Equal("2"))

		a, ok := f.GlyphAt('A')
		Expect(ok).To(BeTrue())
		Expect(a.AsText('#', '.')).To(Equal([]string{"#.", ".#"}))
		Expect(a.Offset()).To(Equal(font.Coord{X: 0, Y: 0}))
		Expect(a.Advance()).To(Equal(3))

		b, ok := f.GlyphAt('B')
		Expect(ok).To(BeTrue())
		Expect(b.AsText('#', '.')).To(Equal([]string{"###", "#.#"}))
		Expect(b.Offset().X).To(Equal(1))
		Expect(b.Advance()).To(Equal(5))

		glyphs := f.Glyphs()
		Expect(glyphs).To(HaveLen(3))
		def := glyphs[2]
		Expect(def.HasTag("default")).To(BeTrue())
		_, ok = def.Codepoint()
		Expect(ok).To(BeFalse())
		Expect(def.AsText('#', '.')).To(Equal([]string{"##", "##"}))
	})

	It("rejects color fonts", func() {
		p := writeFile("color/2", buildFont([]byte("Color"), packed.Values{"FSF_COLORFONT": true}))
		_, err := reg.Load(storage.AtPath(p), "", nil)
		Expect(err).To(MatchError(ContainSubstring("ColorFont not supported")))
		Expect(failure.IsFormat(err)).To(BeTrue())
	})

	It("rejects files without a code hunk", func() {
		data := buildFont([]byte("Test"), nil)
		// Replace the code hunk ID, which follows six header longs.
		copy(data[24:28], []byte{0, 0, 0x03, 0xea})
		_, err := reg.Load(storage.AtPath(writeFile("bad/2", data)), "amiga", nil)
		Expect(err).To(MatchError(ContainSubstring("no code hunk found")))
	})

	It("rejects truncated files", func() {
		data := buildFont([]byte("Test"), nil)
		_, err := reg.Load(storage.AtPath(writeFile("short/2", data[:60])), "", nil)
		Expect(failure.IsFormat(err)).To(BeTrue())
	})

	for _, id := range []int{fontContentsID, tFontContentsID} {
		id := id

		It(fmt.Sprintf("loads the fonts listed in a contents file with ID 0x%04X", id), func() {
			writeFile("test/2", buildFont([]byte("Test"), nil))
			writeFile("test/9", buildFont([]byte("Unlisted"), nil))
			p := writeFile("test.font", buildContents(id, "TEST/2", "test/missing"))

			res, err := reg.Load(storage.AtPath(p), "", nil)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.IsCollection()).To(BeTrue())
			Expect(res.Len()).To(Equal(1))

			f := res.Pack()[0]
			Expect(f.Name()).To(Equal("Test"))
			Expect(f.Property(font.PropSourceFormat)).To(Equal("Amiga Font Contents"))
			Expect(f.Property(font.PropSourceName)).To(Equal("test.font"))
		})
	}

	It("needs a directory to resolve a contents file", func() {
		s, err := storage.NewReader(bytes.NewReader(buildContents(fontContentsID, "test/2")), "test.font")
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		_, err = reg.Load(storage.OnStream(s), "", nil)
		Expect(err).To(MatchError(ContainSubstring("without a containing directory")))
	})
})

func TestAmiga(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test amiga")
}
