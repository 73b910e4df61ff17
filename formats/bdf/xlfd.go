// Copyright 2018 Dan Jacques. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package bdf

import (
	"strings"
)

// xlfdNameFields are the fields of an XLFD font name, in order. The name
// starts with a dash, so the first field is always empty.
var xlfdNameFields = []string{
	"",
	"FOUNDRY",
	"FAMILY_NAME",
	"WEIGHT_NAME",
	"SLANT",
	"SETWIDTH_NAME",
	"ADD_STYLE_NAME",
	"PIXEL_SIZE",
	"POINT_SIZE",
	"RESOLUTION_X",
	"RESOLUTION_Y",
	"SPACING",
	"AVERAGE_WIDTH",
	"CHARSET_REGISTRY",
	"CHARSET_ENCODING",
}

var slantNames = map[string]string{
	"R":  "roman",
	"I":  "italic",
	"O":  "oblique",
	"RO": "reverse-oblique",
	"RI": "reverse-italic",
	"OT": "",
}

var spacingNames = map[string]string{
	"P": "proportional",
	"M": "monospace",
	"C": "character-cell",
}

var setwidthNames = map[string]string{
	"0":  "",
	"10": "ultra-condensed",
	"20": "extra-condensed",
	"30": "condensed",
	"40": "semi-condensed",
	"50": "medium",
	"60": "semi-expanded",
	"70": "expanded",
	"80": "extra-expanded",
	"90": "ultra-expanded",
}

var weightNames = map[string]string{
	"0":  "",
	"10": "thin",
	"20": "extra-light",
	"30": "light",
	"40": "semi-light",
	"50": "regular",
	"60": "semi-bold",
	"70": "bold",
	"80": "extra-bold",
	"90": "heavy",
}

// undefinedEncodings mean the font has no known encoding. The first is
// written for fonts without one.
var undefinedEncodings = []string{
	"fontspecific-0",
	"adobe-fontspecific",
}

// unixEncodings maps encoding names to their X11 registry names.
var unixEncodings = map[string]string{
	"":        "fontspecific-0",
	"unicode": "ISO10646-1",
	"ascii":   "ascii-0",

	"latin-1":    "ISO8859-1",
	"latin-2":    "ISO8859-2",
	"latin-3":    "ISO8859-3",
	"latin-4":    "ISO8859-4",
	"iso8859-5":  "ISO8859-5",
	"iso8859-6":  "ISO8859-6",
	"iso8859-7":  "ISO8859-7",
	"iso8859-8":  "ISO8859-8",
	"iso8859-9":  "ISO8859-9",
	"iso8859-10": "ISO8859-10",
	"iso8859-11": "ISO8859-11",
	"iso8859-13": "ISO8859-13",
	"iso8859-14": "ISO8859-14",
	"iso8859-15": "ISO8859-15",
	"iso8859-16": "ISO8859-16",

	"koi8-r":       "KOI8-R",
	"koi8-u":       "KOI8-U",
	"koi8-ru":      "KOI8-RU",
	"koi8-e":       "KOI8-E",
	"koi8-unified": "KOI8-UNI",

	"mac-symbol": "microsoft-symbol",
	"mac-roman":  "apple-roman",
	"cp437":      "ibm-cp437",
	"cp850":      "ibm-cp850",
	"cp852":      "ibm-cp852",
	"cp866":      "ibm-cp866",

	"windows-1250": "microsoft-cp1250",
	"windows-1251": "microsoft-cp1251",
	"windows-1252": "microsoft-cp1252",
	"windows-1253": "microsoft-cp1253",
	"windows-1254": "microsoft-cp1254",
	"windows-1255": "microsoft-cp1255",
	"windows-1256": "microsoft-cp1256",
	"windows-1257": "microsoft-cp1257",
	"windows-1258": "microsoft-cp1258",
	"windows-3.1":  "microsoft-win3.1",

	"hp-roman8":   "HP-Roman8",
	"hp-greek8":   "HP-Greek8",
	"hp-thai8":    "HP-Thai8",
	"hp-turkish8": "HP-Turkish8",

	"jis-x0201":    "jisx0201.1976-0",
	"big5-hkscs":   "big5hkscs-0",
	"windows-936":  "gbk-0",
	"windows-1361": "ksc5601.1992-3",
	"tis-620":      "tis620-0",
	"viscii":       "viscii1.1-1",
}

// Reverse lookups, built from the tables above.
var (
	slantCodes    = reverse(slantNames)
	spacingCodes  = reverse(spacingNames)
	setwidthCodes = reverse(setwidthNames)
	weightCodes   = reverse(weightNames)

	encodingNames = func() map[string]string {
		m := make(map[string]string, len(unixEncodings))
		for name, unix := range unixEncodings {
			if name != "" {
				m[strings.ToLower(unix)] = name
			}
		}
		return m
	}()
)

func reverse(m map[string]string) map[string]string {
	r := make(map[string]string, len(m))
	for k, v := range m {
		if v != "" {
			r[v] = k
		}
	}
	return r
}

func isUnicode(encoding string) bool {
	switch strings.ToLower(encoding) {
	case "unicode", "ucs", "iso10646", "iso10646-1":
		return true
	default:
		return false
	}
}

// parseXLFDName splits an XLFD font name into its fields. It returns false
// if name is not a well-formed XLFD name.
func parseXLFDName(name string) (table, bool) {
	fields := strings.Split(name, "-")
	if len(fields) != len(xlfdNameFields) {
		return nil, false
	}
	var t table
	for i, key := range xlfdNameFields {
		if key != "" && fields[i] != "" {
			t.set(key, fields[i])
		}
	}
	return t, true
}

// xlfdName builds an XLFD font name from an XLFD property table.
func xlfdName(props table) string {
	fields := make([]string, len(xlfdNameFields))
	for i, key := range xlfdNameFields {
		if key == "" {
			continue
		}
		v, _ := props.get(key)
		fields[i] = strings.Trim(v, `"`)
	}
	return strings.Join(fields, "-")
}
