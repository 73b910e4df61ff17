// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package font

import (
	"testing"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
)

var _ = Describe("Glyph", func() {
	It("round-trips packed rows", func() {
		data := []byte{0x80, 0x40, 0xff, 0xc0}
		g := FromBytes(data, 10)

		Expect(g.Width()).To(Equal(10))
		Expect(g.Height()).To(Equal(2))
		Expect(g.Pixel(0, 0)).To(BeTrue())
		Expect(g.Pixel(1, 0)).To(BeFalse())
		Expect(g.Pixel(9, 0)).To(BeTrue())
		Expect(g.AsBytes()).To(Equal(data))
	})

	It("renders as text", func() {
		g := FromText(".#.", "#.#")
		Expect(g.AsText('@', '-')).To(Equal([]string{"-@-", "@-@"}))
	})

	It("is immutable", func() {
		g := FromText("#")
		h := g.WithCodepoint(65).WithTags("A").WithMetrics(Coord{1, 2}, 3)

		_, ok := g.Codepoint()
		Expect(ok).To(BeFalse())
		Expect(g.Tags()).To(BeEmpty())

		cp, ok := h.Codepoint()
		Expect(ok).To(BeTrue())
		Expect(cp).To(Equal(65))
		Expect(h.HasTag("A")).To(BeTrue())
		Expect(h.Advance()).To(Equal(1 + 1 + 3))
	})

	It("reduces to its ink bounds, keeping ink in place", func() {
		g := FromText(
			"....",
			".##.",
			".#..",
			"....",
		).WithMetrics(Coord{0, -1}, 1)

		r := g.Reduce()
		Expect(r.AsText('#', '.')).To(Equal([]string{"##", "#."}))
		Expect(r.Offset()).To(Equal(Coord{1, 0}))
		Expect(r.Advance()).To(Equal(g.Advance()))

		Expect(r.Expand(1, 1, 1, 1).AsText('#', '.')).To(Equal(g.AsText('#', '.')))
		Expect(r.Expand(1, 1, 1, 1).Offset()).To(Equal(g.Offset()))
	})

	It("reduces a blank glyph to an empty raster", func() {
		g := Blank(3, 2).WithMetrics(Coord{0, 0}, 1)
		r := g.Reduce()
		Expect(r.Width()).To(Equal(0))
		Expect(r.Advance()).To(Equal(4))
	})
})

var _ = Describe("Font", func() {
	var f *Font

	BeforeEach(func() {
		f = New([]Glyph{
			FromText("#", "#").WithCodepoint(65),
			FromText("##").WithCodepoint(66).WithMetrics(Coord{0, -1}, 0),
		}, NewProperties("name", "Test", "Source_Format", "bdf"))
	})

	It("normalizes property keys", func() {
		Expect(f.Property("source-format")).To(Equal("bdf"))
		Expect(f.Properties().Keys()).To(Equal([]string{"name", "source-format"}))
	})

	It("sets defaults only where unset", func() {
		g := f.SetDefaults(PropSourceFormat, "fzx", PropSourceName, "test.fzx")
		Expect(g.Property(PropSourceFormat)).To(Equal("bdf"))
		Expect(g.Property(PropSourceName)).To(Equal("test.fzx"))
		Expect(f.HasProperty(PropSourceName)).To(BeFalse())
	})

	It("overrides properties, keeping their order", func() {
		g := f.SetProperties("name", "Other", "family", "Test")
		Expect(g.Properties().Keys()).To(Equal([]string{"name", "source-format", "family"}))
		Expect(g.Name()).To(Equal("Other"))
	})

	It("finds glyphs by codepoint", func() {
		g, ok := f.GlyphAt(66)
		Expect(ok).To(BeTrue())
		Expect(g.Width()).To(Equal(2))

		_, ok = f.GlyphAt(67)
		Expect(ok).To(BeFalse())
	})

	It("derives metrics from glyphs", func() {
		Expect(f.Ascent()).To(Equal(2))
		Expect(f.Descent()).To(Equal(1))
		Expect(f.LineHeight()).To(Equal(3))
		Expect(f.SetProperties("line-height", "8").LineHeight()).To(Equal(8))
	})
})

var _ = Describe("Result", func() {
	f := New(nil, NewProperties("name", "a"))
	g := New(nil, NewProperties("name", "b"))

	It("distinguishes a single font from a collection", func() {
		s := Single(f)
		Expect(s.IsCollection()).To(BeFalse())
		Expect(s.Font()).To(Equal(f))
		Expect(s.Pack()).To(Equal(Pack{f}))

		c := Collection(Pack{f, g})
		Expect(c.IsCollection()).To(BeTrue())
		Expect(c.Font()).To(BeNil())
		Expect(c.Len()).To(Equal(2))
	})

	It("treats the zero value as an empty collection", func() {
		var r Result
		Expect(r.IsCollection()).To(BeTrue())
		Expect(r.Pack()).To(BeEmpty())
	})

	It("maps over every font", func() {
		c := Collection(Pack{f, g}).Map(func(f *Font) *Font {
			return f.SetProperties("tagged", "yes")
		})
		for _, f := range c.Pack() {
			Expect(f.Property("tagged")).To(Equal("yes"))
		}
		Expect(f.HasProperty("tagged")).To(BeFalse())
	})
})

func TestFont(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Test font")
}
