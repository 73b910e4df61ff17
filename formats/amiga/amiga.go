// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package amiga loads AmigaOS disk fonts.
//
// An Amiga font is a font contents file (name.font), which lists the sizes of
// the font, and one hunk file per size (name/8, name/11, ...) that holds a
// DiskFontHeader, a TextFont structure and the font strike. Both can be loaded;
// the contents file loads all sizes it lists from the containing directory.
package amiga

import (
	"bytes"
	"io"
	"io/ioutil"
	"strings"

	"github.com/pluess/monobit/font"
	"github.com/pluess/monobit/formats"
	"github.com/pluess/monobit/packed"
	"github.com/pluess/monobit/storage"
	"github.com/pluess/monobit/support/dataio"
	"github.com/pluess/monobit/support/failure"
	"github.com/pluess/monobit/support/logging"

	"github.com/lunixbochs/struc"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

// Encoding is the encoding of Amiga strings and fonts.
const Encoding = "latin-1"

const (
	fontContentsID  = 0x0f00
	tFontContentsID = 0x0f02

	hunkHeader = 0x3f3
	hunkCode   = 0x3e9

	maxFontPath = 256
	maxFontName = 32

	// maxHunks bounds the hunk size table of a font file.
	maxHunks = 1024
)

var (
	fontContentsMagic  = []byte{0x0f, 0x00}
	tFontContentsMagic = []byte{0x0f, 0x02}
	hunkMagic          = []byte{0x00, 0x00, 0x03, 0xf3}
)

// hunkFileHeader follows the library name table of a hunk file.
type hunkFileHeader struct {
	TableSize uint32 `struc:",big"`
	FirstHunk uint32 `struc:",big"`
	LastHunk  uint32 `struc:",big"`
}

var (
	be    = packed.BigEndian
	ulong = be.Scalar(packed.U32)

	// textFlags is tf_Flags.
	textFlags = be.Struct("tf_Flags",
		packed.Flag("FPF_REMOVED"),
		packed.Flag("FPF_DESIGNED"),
		packed.Flag("FPF_PROPORTIONAL"),
		packed.Flag("FPF_WIDEDOT"),
		packed.Flag("FPF_TALLDOT"),
		packed.Flag("FPF_REVPATH"),
		packed.Flag("FPF_DISKFONT"),
		packed.Flag("FPF_ROMFONT"),
	)

	// textStyle is tf_Style.
	textStyle = be.Struct("tf_Style",
		packed.Flag("FSF_TAGGED"),
		packed.Flag("FSF_COLORFONT"),
		packed.Bits("unused", 8, 2),
		packed.Flag("FSF_EXTENDED"),
		packed.Flag("FSF_ITALIC"),
		packed.Flag("FSF_BOLD"),
		packed.Flag("FSF_UNDERLINED"),
	)

	// fontHeader is the start of the code hunk: its size, the DiskFontHeader
	// and the TextFont. Table offsets are relative to the end of hunk_size.
	fontHeader = be.Struct("amiga font header",
		packed.Uint32("hunk_size"),
		packed.Uint32("return_code"),
		packed.Uint32("dfh_ln_Succ"),
		packed.Uint32("dfh_ln_Pred"),
		packed.Uint8("dfh_ln_Type"),
		packed.Int8("dfh_ln_Pri"),
		packed.Uint32("dfh_ln_Name"),
		packed.Uint16("dfh_FileID"),
		packed.Uint16("dfh_Revision"),
		packed.Int32("dfh_Segment"),
		// Bytes rather than chars, to keep tags after the NUL.
		packed.Bytes("dfh_Name", maxFontName),
		packed.Uint32("tf_ln_Succ"),
		packed.Uint32("tf_ln_Pred"),
		packed.Uint8("tf_ln_Type"),
		packed.Int8("tf_ln_Pri"),
		packed.Uint32("tf_ln_Name"),
		packed.Uint32("tf_mn_ReplyPort"),
		packed.Uint16("tf_mn_Length"),
		packed.Uint16("tf_YSize"),
		packed.Nested("tf_Style", textStyle),
		packed.Nested("tf_Flags", textFlags),
		packed.Uint16("tf_XSize"),
		packed.Uint16("tf_Baseline"),
		packed.Uint16("tf_BoldSmear"),
		packed.Uint16("tf_Accessors"),
		packed.Uint8("tf_LoChar"),
		packed.Uint8("tf_HiChar"),
		packed.Uint32("tf_CharData"),
		packed.Uint16("tf_Modulo"),
		packed.Uint32("tf_CharLoc"),
		packed.Uint32("tf_CharSpace"),
		packed.Uint32("tf_CharKern"),
	)

	// tableBase is where offsets in the code hunk count from.
	tableBase = 4

	charLoc = be.Struct("charloc",
		packed.Uint16("offset"),
		packed.Uint16("width"),
	)
	charWord = be.Scalar(packed.I16)

	contentsHeader = be.Struct("FontContentsHeader",
		packed.Uint16("fch_FileID"),
		packed.Uint16("fch_NumEntries"),
	)

	// contentsEntry covers both FontContents and TFontContents. The latter
	// keeps tags and their count at the end of the file name.
	contentsEntry = be.Struct("FontContents",
		packed.Bytes("fc_FileName", maxFontPath),
		packed.Uint16("fc_YSize"),
		packed.Uint8("fc_Style"),
		packed.Uint8("fc_Flags"),
	)
)

// Register registers the Amiga loaders with reg.
func Register(reg *formats.Registry) error {
	if err := reg.RegisterLoader(formats.LoaderSpec{
		Name:    "Amiga Font Contents",
		Formats: []string{"font"},
		Magic:   [][]byte{fontContentsMagic, tFontContentsMagic},
		Binary:  true,
		Multi:   true,
		Params:  []string{},
		Load:    loadContents,
	}); err != nil {
		return err
	}
	return reg.RegisterLoader(formats.LoaderSpec{
		Name:    "Amiga Font",
		Formats: []string{"amiga"},
		Magic:   [][]byte{hunkMagic},
		Binary:  true,
		Params:  []string{},
		Load: func(in formats.Input, opts formats.Options) (font.Result, error) {
			f, err := loadFont(in.Stream, in.Logger)
			if err != nil {
				return font.Result{}, err
			}
			return font.Single(f), nil
		},
	})
}

func latin1(b []byte) string {
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		// Every byte is valid Latin-1.
		panic(err)
	}
	return string(s)
}

func cutNUL(b []byte) []byte {
	if idx := bytes.IndexByte(b, 0); idx >= 0 {
		return b[:idx]
	}
	return b
}

// loadContents loads every font listed in a font contents file from the
// container that holds it.
func loadContents(in formats.Input, opts formats.Options) (font.Result, error) {
	fch, err := contentsHeader.Unpack(in.Stream)
	if err != nil {
		return font.Result{}, err
	}
	switch id := fch.Int("fch_FileID"); id {
	case fontContentsID:
		in.Logger.Debugf("Amiga font contents file %q uses FontContents.", in.Stream.Name())
	case tFontContentsID:
		in.Logger.Debugf("Amiga font contents file %q uses TFontContents.", in.Stream.Name())
	default:
		return font.Result{}, failure.Format("amiga", "not an Amiga font contents file: file ID 0x%04X not in (0x%04X, 0x%04X)",
			id, fontContentsID, tFontContentsID)
	}

	entries, err := contentsEntry.Array(fch.Int("fch_NumEntries")).Unpack(in.Stream)
	if err != nil {
		return font.Result{}, err
	}
	if in.Where == nil {
		return font.Result{}, errors.Errorf("%s: cannot locate font files without a containing directory", in.Stream.Name())
	}
	members, err := in.Where.Members()
	if err != nil {
		return font.Result{}, err
	}

	var pack font.Pack
	for _, e := range entries {
		// The Amiga file system is case-insensitive.
		name := latin1(cutNUL(e.Bytes("fc_FileName")))
		found := false
		for _, m := range members {
			if !strings.EqualFold(m, name) {
				continue
			}
			f, err := loadMember(in.Where, m, in.Logger)
			if err != nil {
				return font.Result{}, err
			}
			pack = append(pack, f)
			found = true
		}
		if !found {
			in.Logger.Warnf("Font file %q listed in %q not found.", name, in.Stream.Name())
		}
	}
	return font.Collection(pack), nil
}

func loadMember(c storage.Container, name string, logger logging.L) (f *font.Font, err error) {
	s, err := storage.Open(storage.InContainer(c, name), storage.Read, true)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := s.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return loadFont(s, logger)
}

// loadFont loads a font from an Amiga hunk file.
func loadFont(r io.Reader, logger logging.L) (*font.Font, error) {
	if err := readHunkHeader(r); err != nil {
		return nil, err
	}

	switch id, err := ulong.Unpack(r); {
	case err != nil:
		return nil, err
	case id != hunkCode:
		return nil, failure.Format("amiga", "not an Amiga font data file: no code hunk found, ID 0x%03X != 0x%03X",
			id, hunkCode)
	}

	hunk, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading code hunk")
	}
	hdr, err := fontHeader.UnpackBytes(hunk, 0)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Amiga properties:\n%s", hdr.Dump())

	glyphs, err := readStrike(hunk, hdr)
	if err != nil {
		return nil, err
	}
	props, err := convertProperties(hdr)
	if err != nil {
		return nil, err
	}
	return font.New(glyphs, props), nil
}

func readHunkHeader(r io.Reader) error {
	switch id, err := ulong.Unpack(r); {
	case err != nil:
		return err
	case id != hunkHeader:
		return failure.Format("amiga", "not an Amiga font data file: magic 0x%03X != 0x%03X", id, hunkHeader)
	}

	// Resident library names, each a count of longs followed by the name.
	for {
		n, err := ulong.Unpack(r)
		if err != nil {
			return err
		}
		if n == 0 {
			break
		}
		if err := dataio.Skip(r, n*4); err != nil {
			return failure.WrapFormat(err, "amiga", "library name table")
		}
	}

	var hfh hunkFileHeader
	if err := struc.Unpack(r, &hfh); err != nil {
		return failure.WrapFormat(err, "amiga", "hunk file header")
	}
	if hfh.LastHunk < hfh.FirstHunk || hfh.LastHunk-hfh.FirstHunk >= maxHunks {
		return failure.Format("amiga", "bad hunk range %d--%d", hfh.FirstHunk, hfh.LastHunk)
	}
	// Hunk sizes exclude overhead, so they do not give sizes on disk.
	_, err := ulong.Array(int(hfh.LastHunk-hfh.FirstHunk+1)).Unpack(r)
	return err
}

// readStrike extracts glyphs from the font strike. A default glyph follows
// the glyphs for tf_LoChar through tf_HiChar.
func readStrike(hunk []byte, hdr packed.Record) ([]font.Glyph, error) {
	lo, hi := hdr.Int("tf_LoChar"), hdr.Int("tf_HiChar")
	if hi < lo {
		return nil, failure.Format("amiga", "last character %d precedes first character %d", hi, lo)
	}
	n := hi - lo + 2

	locs, err := charLoc.Array(n).UnpackBytes(hunk, tableBase+hdr.Int("tf_CharLoc"))
	if err != nil {
		return nil, err
	}

	flags := hdr.Record("tf_Flags")
	spacing := make([]int64, n)
	if flags.Bool("FPF_PROPORTIONAL") && hdr.Int("tf_CharSpace") != 0 {
		if spacing, err = charWord.Array(n).UnpackBytes(hunk, tableBase+hdr.Int("tf_CharSpace")); err != nil {
			return nil, err
		}
	} else {
		for i := range spacing {
			spacing[i] = hdr.Int64("tf_XSize")
		}
	}

	// Amiga kerning is a horizontal offset, either way.
	kerning := make([]int64, n)
	if hdr.Int("tf_CharKern") != 0 {
		if kerning, err = charWord.Array(n).UnpackBytes(hunk, tableBase+hdr.Int("tf_CharKern")); err != nil {
			return nil, err
		}
	}

	height, modulo := hdr.Int("tf_YSize"), hdr.Int("tf_Modulo")
	start := tableBase + hdr.Int("tf_CharData")
	if start+height*modulo > len(hunk) {
		return nil, failure.Format("amiga", "font strike of %d bytes at offset %d exceeds hunk of %d bytes",
			height*modulo, start, len(hunk))
	}
	strike := font.FromBytes(hunk[start:start+height*modulo], modulo*8)

	// Rows below the baseline are descent.
	descent := height - 1 - hdr.Int("tf_Baseline")
	glyphs := make([]font.Glyph, n)
	for i, loc := range locs {
		offset, width := loc.Int("offset"), loc.Int("width")
		if offset+width > modulo*8 {
			return nil, failure.Format("amiga", "glyph %d at %d+%d exceeds strike width %d", i, offset, width, modulo*8)
		}

		pixels := make([][]bool, height)
		for y := range pixels {
			row := make([]bool, width)
			for x := range row {
				row[x] = strike.Pixel(offset+x, y)
			}
			pixels[y] = row
		}
		kern, space := int(kerning[i]), int(spacing[i])
		g := font.NewGlyph(pixels).WithMetrics(font.Coord{X: kern, Y: -descent}, space-width)
		if i == n-1 {
			g = g.WithTags("default")
		} else {
			g = g.WithCodepoint(lo + i)
		}
		glyphs[i] = g
	}
	return glyphs, nil
}

func convertProperties(hdr packed.Record) (font.Properties, error) {
	style, flags := hdr.Record("tf_Style"), hdr.Record("tf_Flags")
	if style.Bool("FSF_COLORFONT") {
		return font.Properties{}, failure.Format("amiga", "Amiga ColorFont not supported")
	}

	var kv []string
	set := func(k, v string) { kv = append(kv, k, v) }

	// Tags may follow the name after a NUL.
	parts := strings.Split(latin1(hdr.Bytes("dfh_Name")), "\x00")
	name := strings.TrimSpace(parts[0])
	if name != "" {
		set("name", name)
		set("family", strings.SplitN(strings.SplitN(name, "/", 2)[0], " ", 2)[0])
	}
	var tags []string
	for _, t := range parts[1:] {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	if len(tags) > 0 {
		set("amiga.dfh-name", `"`+name+`" `+strings.Join(tags, " "))
	}
	set("revision", font.Itoa(hdr.Int("dfh_Revision")))

	set("weight", pick(style.Bool("FSF_BOLD"), "bold", "regular"))
	set("slant", pick(style.Bool("FSF_ITALIC"), "italic", "roman"))
	set("setwidth", pick(style.Bool("FSF_EXTENDED"), "expanded", "normal"))
	if style.Bool("FSF_UNDERLINED") {
		set("decoration", "underline")
	}

	set("spacing", pick(flags.Bool("FPF_PROPORTIONAL"), "proportional", "monospace"))
	if flags.Bool("FPF_REVPATH") {
		set("direction", "right-to-left")
	}
	switch tall, wide := flags.Bool("FPF_TALLDOT"), flags.Bool("FPF_WIDEDOT"); {
	case tall && !wide:
		set("pixel-aspect", "1 2")
	case wide && !tall:
		set("pixel-aspect", "2 1")
	}
	set("encoding", Encoding)
	set("default-char", "default")

	// Bold smear is usually 1.
	if smear := hdr.Int("tf_BoldSmear"); smear != 1 {
		set("amiga.tf-boldsmear", font.Itoa(smear))
	}
	return font.NewProperties(kv...), nil
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
