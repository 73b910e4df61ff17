// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bdf

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/storage"
	"github.com/pluess/monobit/support/failure"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/ginkgo/extensions/table"
	. "github.com/onsi/gomega"
)

const sample = `STARTFONT 2.1
COMMENT test font
COMMENT second line
FONT -Test-Sample-Medium-R-Normal--4-40-75-75-C-40-ISO10646-1
SIZE 4 75 75
FONTBOUNDINGBOX 4 4 0 -1
STARTPROPERTIES 6
FONT_ASCENT 3
FONT_DESCENT 1
FACE_NAME "Sample ""Test"""
COPYRIGHT "Public domain"
DEFAULT_CHAR 65
MY_PROP 7
ENDPROPERTIES
CHARS 3
STARTCHAR A
ENCODING 65
SWIDTH 720 0
DWIDTH 4 0
BBX 3 3 0 0
BITMAP
40
A0
E0
ENDCHAR
STARTCHAR space
ENCODING 32
SWIDTH 720 0
DWIDTH 4 0
BBX 0 0 0 0
BITMAP
ENDCHAR
STARTCHAR 66
ENCODING 66
SWIDTH 540 0
DWIDTH 3 0
BBX 2 3 0 -1
BITMAP
40
40
80
ENDCHAR
ENDFONT
`

var _ = Describe("BDF", func() {
	var reg *formats.Registry

	BeforeEach(func() {
		reg = formats.NewRegistry(formats.Config{})
		Expect(Register(reg)).To(Succeed())
	})

	load := func(text string) (*font.Font, error) {
		s, err := storage.NewReader(strings.NewReader(text), "sample.bdf")
		Expect(err).ToNot(HaveOccurred())
		defer s.Close()

		res, err := reg.Load(storage.OnStream(s), "", nil)
		if err != nil {
			return nil, err
		}
		return res.Font(), nil
	}

	save := func(pack ...*font.Font) (string, error) {
		var buf bytes.Buffer
		s, err := storage.NewWriter(&buf, "out.bdf")
		Expect(err).ToNot(HaveOccurred())
		if err := reg.Save(font.Pack(pack), storage.OnStream(s), "", nil); err != nil {
			return "", err
		}
		Expect(s.Close()).To(Succeed())
		return buf.String(), nil
	}

	It("loads glyphs and metrics", func() {
		f, err := load(sample)
		Expect(err).ToNot(HaveOccurred())
		Expect(f.Len()).To(Equal(3))

		a, ok := f.GlyphAt('A')
		Expect(ok).To(BeTrue())
		Expect(a.Tags()).To(Equal([]string{"A"}))
		Expect(a.AsText('#', '.')).To(Equal([]string{".#.", "#.#", "###"}))
		Expect(a.Offset()).To(Equal(font.Coord{X: 0, Y: 0}))
		Expect(a.Advance()).To(Equal(4))

		space, ok := f.GlyphAt(' ')
		Expect(ok).To(BeTrue())
		Expect(space.Width()).To(Equal(0))
		Expect(space.Advance()).To(Equal(4))

		b, ok := f.GlyphAt('B')
		Expect(ok).To(BeTrue())
		Expect(b.Tags()).To(BeEmpty())
		Expect(b.AsText('#', '.')).To(Equal([]string{".#", ".#", "#."}))
		Expect(b.Offset()).To(Equal(font.Coord{X: 0, Y: -1}))
		Expect(b.Advance()).To(Equal(3))
	})

	It("loads BDF and XLFD properties", func() {
		f, err := load(sample)
		Expect(err).ToNot(HaveOccurred())

		for key, value := range map[string]string{
			font.PropSourceFormat: "BDF v2.1",
			font.PropSourceName:   "sample.bdf",
			"name":                `Sample "Test"`,
			"foundry":             "Test",
			"family":              "Sample",
			"weight":              "medium",
			"slant":               "roman",
			"setwidth":            "normal",
			"spacing":             "character-cell",
			"point-size":          "4",
			"pixel-size":          "4",
			"dpi":                 "75 75",
			"average-advance":     "4",
			"encoding":            "unicode",
			"ascent":              "3",
			"descent":             "1",
			"default-char":        "65",
			"copyright":           "Public domain",
			"comment":             "test font\nsecond line",
			"bdf.my-prop":         "7",
		} {
			Expect(f.Property(key)).To(Equal(value), "property %s", key)
		}
	})

	It("saves what it loads", func() {
		orig, err := load(sample)
		Expect(err).ToNot(HaveOccurred())

		text, err := save(orig)
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(HavePrefix("STARTFONT 2.1\nCOMMENT test font\nCOMMENT second line\n"))
		Expect(text).To(ContainSubstring("\nSIZE 4 75 75\n"))
		Expect(text).To(ContainSubstring("\nFONTBOUNDINGBOX 3 4 0 -1\n"))
		Expect(text).To(ContainSubstring("\nCHARSET_REGISTRY \"ISO10646\"\n"))
		Expect(text).To(ContainSubstring("\nMY_PROP 7\n"))
		Expect(text).To(ContainSubstring("\nSTARTCHAR char42\n"))
		Expect(text).To(HaveSuffix("ENDCHAR\nENDFONT\n"))

		reloaded, err := load(text)
		Expect(err).ToNot(HaveOccurred())
		for _, key := range []string{
			"name", "foundry", "family", "weight", "slant", "setwidth", "spacing",
			"point-size", "pixel-size", "dpi", "encoding", "ascent", "descent",
			"default-char", "copyright", "comment", "bdf.my-prop",
		} {
			Expect(reloaded.Property(key)).To(Equal(orig.Property(key)), "property %s", key)
		}

		want, got := orig.Glyphs(), reloaded.Glyphs()
		Expect(got).To(HaveLen(len(want)))
		for i := range want {
			Expect(got[i].AsText('#', '.')).To(Equal(want[i].AsText('#', '.')))
			Expect(got[i].Offset()).To(Equal(want[i].Offset()))
			Expect(got[i].Advance()).To(Equal(want[i].Advance()))
			wantCP, _ := want[i].Codepoint()
			gotCP, _ := got[i].Codepoint()
			Expect(gotCP).To(Equal(wantCP))
		}
	})

	It("stores glyphs of proportional fonts at their ink bounds", func() {
		f := font.New([]font.Glyph{
			font.FromText("...", ".#.", "...").WithCodepoint('A'),
		}, font.NewProperties("name", "Dot"))

		text, err := save(f)
		Expect(err).ToNot(HaveOccurred())
		Expect(text).To(ContainSubstring("\nSTARTCHAR char41\nENCODING 65\nSWIDTH 1000 0\nDWIDTH 3 0\nBBX 1 1 1 1\nBITMAP\n80\nENDCHAR\n"))
		Expect(text).To(ContainSubstring("\nCHARSET_REGISTRY \"FONTSPECIFIC\"\nCHARSET_ENCODING \"0\"\n"))

		reloaded, err := load(text)
		Expect(err).ToNot(HaveOccurred())
		Expect(reloaded.Name()).To(Equal("Dot"))
		Expect(reloaded.HasProperty("encoding")).To(BeFalse())

		g, ok := reloaded.GlyphAt('A')
		Expect(ok).To(BeTrue())
		Expect(g.AsText('#', '.')).To(Equal([]string{"#"}))
		Expect(g.Advance()).To(Equal(3))
	})

	It("tolerates a wrong character count", func() {
		f, err := load(strings.Replace(sample, "CHARS 3", "CHARS 5", 1))
		Expect(err).ToNot(HaveOccurred())
		Expect(f.Len()).To(Equal(3))
	})

	DescribeTable("rejects malformed files",
		func(old, new, msg string) {
			_, err := load(strings.Replace(sample, old, new, 1))
			Expect(err).To(MatchError(ContainSubstring(msg)))
			Expect(failure.IsFormat(err)).To(BeTrue())
		},
		Entry("no characters", "CHARS 3\n", "", "no character information found"),
		Entry("no SIZE", "SIZE 4 75 75\n", "", "missing or bad SIZE"),
		Entry("grey levels", "SIZE 4 75 75", "SIZE 4 75 75 2", "anti-aliasing"),
		Entry("vertical metrics", "DWIDTH 3 0", "DWIDTH 3 1", "top-to-bottom"),
		Entry("bad bitmap", "A0\n", "AZ\n", "bad bitmap row"),
		Entry("missing ENDCHAR", "80\nENDCHAR", "80\nSTARTCHAR", "expected ENDCHAR"),
		Entry("stray keyword", "STARTCHAR space", "SPACE space", "expected STARTCHAR"),
	)

	It("saves only one font per file", func() {
		f, err := load(sample)
		Expect(err).ToNot(HaveOccurred())

		_, err = save(f, f)
		Expect(err).To(HaveOccurred())
	})
})

func TestBDF(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test bdf")
}
