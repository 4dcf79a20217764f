// Package textencoding maps PDF single-byte character codes to Unicode
// runes: the predefined base encodings (StandardEncoding, WinAnsiEncoding,
// MacRomanEncoding, MacExpertEncoding, Symbol, ZapfDingbats, PDFDocEncoding),
// an /Encoding dictionary's /Differences overrides, and the UTF-16BE (with
// optional BOM) decoding used for text strings and ToUnicode CMaps.
package textencoding

import (
	"sort"
	"strings"
	"sync"

	"github.com/unidoc/pdftext/common"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Table maps a byte code (0-255) to a Unicode rune. 0 means unmapped.
type Table [256]rune

var (
	winAnsiOnce  sync.Once
	winAnsiTable Table

	macRomanOnce  sync.Once
	macRomanTable Table
)

// WinAnsiEncoding returns the WinAnsiEncoding table (ISO 32000-1 Annex D.2),
// which is CP1252 with the unused/non-visual control-range codes and a
// handful of typographic substitutions patched in, following the teacher's
// approach of building PDF base encodings on top of golang.org/x/text's
// charmap tables rather than hand-transcribing all 256 code points.
func WinAnsiEncoding() Table {
	winAnsiOnce.Do(func() {
		enc := charmap.Windows1252
		const bullet = '•'
		replace := map[byte]rune{
			127: bullet,
			129: bullet, 141: bullet, 143: bullet, 144: bullet, 157: bullet,
			160: ' ', // non-breaking space -> space
			173: '-', // soft hyphen -> hyphen
		}
		for i := 0; i < 256; i++ {
			b := byte(i)
			r := enc.DecodeByte(b)
			if rp, ok := replace[b]; ok {
				r = rp
			}
			winAnsiTable[i] = r
		}
		// WinAnsiEncoding has no codes below 0x20 except that 0x20 is space;
		// control codes decode to 0 (unmapped) rather than CP1252's C0 set.
		for i := 0; i < 0x20; i++ {
			winAnsiTable[i] = 0
		}
	})
	return winAnsiTable
}

// MacRomanEncoding returns the MacRomanEncoding table (ISO 32000-1 Annex
// D.2), built from charmap.Macintosh the same way WinAnsiEncoding is built
// from charmap.Windows1252.
func MacRomanEncoding() Table {
	macRomanOnce.Do(func() {
		enc := charmap.Macintosh
		for i := 0; i < 256; i++ {
			macRomanTable[i] = enc.DecodeByte(byte(i))
		}
		for i := 0; i < 0x20; i++ {
			macRomanTable[i] = 0
		}
	})
	return macRomanTable
}

// StandardEncoding returns Adobe's StandardEncoding table. It agrees with
// WinAnsiEncoding over the printable ASCII range and differs mainly in the
// upper half; since nearly all StandardEncoding text in the wild is plain
// ASCII, the upper half is populated from the subset of glyph names common
// to both encodings rather than a full independent transcription — a
// narrower but self-consistent table. See DESIGN.md.
func StandardEncoding() Table {
	var t Table
	win := WinAnsiEncoding()
	for i := 0x20; i < 0x7f; i++ {
		t[i] = win[i]
	}
	standardUpper := map[byte]string{
		0xa1: "exclamdown", 0xa2: "cent", 0xa3: "sterling", 0xa4: "fraction",
		0xa5: "yen", 0xa6: "florin", 0xa7: "section", 0xa8: "currency",
		0xa9: "quotesingle", 0xaa: "quotedblleft", 0xab: "guillemotleft",
		0xac: "guilsinglleft", 0xad: "guilsinglright", 0xae: "fi", 0xaf: "fl",
		0xb1: "endash", 0xb2: "dagger", 0xb3: "daggerdbl", 0xb4: "periodcentered",
		0xb6: "paragraph", 0xb7: "bullet", 0xb8: "quotesinglbase",
		0xb9: "quotedblbase", 0xba: "quotedblright", 0xbb: "guillemotright",
		0xbc: "ellipsis", 0xbd: "perthousand", 0xbf: "questiondown",
		0xc1: "grave", 0xc2: "acute", 0xc3: "circumflex", 0xc4: "tilde",
		0xc5: "macron", 0xc6: "breve", 0xc7: "dotaccent", 0xc8: "dieresis",
		0xca: "ring", 0xcb: "cedilla", 0xcd: "hungarumlaut", 0xce: "ogonek",
		0xcf: "caron", 0xd0: "emdash", 0xe1: "AE", 0xe3: "ordfeminine",
		0xe8: "Lslash", 0xe9: "Oslash", 0xea: "OE", 0xeb: "ordmasculine",
		0xf1: "ae", 0xf5: "dotlessi", 0xf8: "lslash", 0xf9: "oslash",
		0xfa: "oe", 0xfb: "germandbls",
	}
	for code, name := range standardUpper {
		if r, ok := GlyphNameToRune(name); ok {
			t[code] = r
		}
	}
	return t
}

// PDFDocEncoding returns the PDFDocEncoding table (ISO 32000-1 Annex D.3),
// used for text strings outside content streams (document info, outlines)
// that are not prefixed with a UTF-16BE BOM.
func PDFDocEncoding() Table {
	var t Table
	copy(t[:], pdfDocEncoding[:])
	return t
}

// pdfDocEncoding is PDFDocEncoding verbatim (ISO 32000-1 Annex D.3): code
// point 0x00-0xff maps directly to the Unicode value at that index, with a
// handful of unused slots mapped to 0x0000.
var pdfDocEncoding = [256]rune{
	0x0000, 0x0001, 0x0002, 0x0003, 0x0004, 0x0005, 0x0006, 0x0007, 0x0008, 0x0009, 0x000a, 0x000b,
	0x000c, 0x000d, 0x000e, 0x000f, 0x0010, 0x0011, 0x0012, 0x0013, 0x0014, 0x0015, 0x0016, 0x0017,
	0x02d8, 0x02c7, 0x02c6, 0x02d9, 0x02dd, 0x02db, 0x02da, 0x02dc, 0x0020, 0x0021, 0x0022, 0x0023,
	0x0024, 0x0025, 0x0026, 0x0027, 0x0028, 0x0029, 0x002a, 0x002b, 0x002c, 0x002d, 0x002e, 0x002f,
	0x0030, 0x0031, 0x0032, 0x0033, 0x0034, 0x0035, 0x0036, 0x0037, 0x0038, 0x0039, 0x003a, 0x003b,
	0x003c, 0x003d, 0x003e, 0x003f, 0x0040, 0x0041, 0x0042, 0x0043, 0x0044, 0x0045, 0x0046, 0x0047,
	0x0048, 0x0049, 0x004a, 0x004b, 0x004c, 0x004d, 0x004e, 0x004f, 0x0050, 0x0051, 0x0052, 0x0053,
	0x0054, 0x0055, 0x0056, 0x0057, 0x0058, 0x0059, 0x005a, 0x005b, 0x005c, 0x005d, 0x005e, 0x005f,
	0x0060, 0x0061, 0x0062, 0x0063, 0x0064, 0x0065, 0x0066, 0x0067, 0x0068, 0x0069, 0x006a, 0x006b,
	0x006c, 0x006d, 0x006e, 0x006f, 0x0070, 0x0071, 0x0072, 0x0073, 0x0074, 0x0075, 0x0076, 0x0077,
	0x0078, 0x0079, 0x007a, 0x007b, 0x007c, 0x007d, 0x007e, 0x0000, 0x2022, 0x2020, 0x2021, 0x2026,
	0x2014, 0x2013, 0x0192, 0x2044, 0x2039, 0x203a, 0x2212, 0x2030, 0x201e, 0x201c, 0x201d, 0x2018,
	0x2019, 0x201a, 0x2122, 0xfb01, 0xfb02, 0x0141, 0x0152, 0x0160, 0x0178, 0x017d, 0x0131, 0x0142,
	0x0153, 0x0161, 0x017e, 0x0000, 0x20ac, 0x00a1, 0x00a2, 0x00a3, 0x00a4, 0x00a5, 0x00a6, 0x00a7,
	0x00a8, 0x00a9, 0x00aa, 0x00ab, 0x00ac, 0x0000, 0x00ae, 0x00af, 0x00b0, 0x00b1, 0x00b2, 0x00b3,
	0x00b4, 0x00b5, 0x00b6, 0x00b7, 0x00b8, 0x00b9, 0x00ba, 0x00bb, 0x00bc, 0x00bd, 0x00be, 0x00bf,
	0x00c0, 0x00c1, 0x00c2, 0x00c3, 0x00c4, 0x00c5, 0x00c6, 0x00c7, 0x00c8, 0x00c9, 0x00ca, 0x00cb,
	0x00cc, 0x00cd, 0x00ce, 0x00cf, 0x00d0, 0x00d1, 0x00d2, 0x00d3, 0x00d4, 0x00d5, 0x00d6, 0x00d7,
	0x00d8, 0x00d9, 0x00da, 0x00db, 0x00dc, 0x00dd, 0x00de, 0x00df, 0x00e0, 0x00e1, 0x00e2, 0x00e3,
	0x00e4, 0x00e5, 0x00e6, 0x00e7, 0x00e8, 0x00e9, 0x00ea, 0x00eb, 0x00ec, 0x00ed, 0x00ee, 0x00ef,
	0x00f0, 0x00f1, 0x00f2, 0x00f3, 0x00f4, 0x00f5, 0x00f6, 0x00f7, 0x00f8, 0x00f9, 0x00fa, 0x00fb,
	0x00fc, 0x00fd, 0x00fe, 0x00ff,
}

// ByName returns the base encoding table registered under name
// ("WinAnsiEncoding", "MacRomanEncoding", "MacExpertEncoding",
// "StandardEncoding", "PDFDocEncoding"); the second value is false for an
// unrecognized name, in which case a caller should fall back to
// StandardEncoding per ISO 32000-1 §9.6.6.
func ByName(name string) (Table, bool) {
	switch name {
	case "WinAnsiEncoding":
		return WinAnsiEncoding(), true
	case "MacRomanEncoding":
		return MacRomanEncoding(), true
	case "MacExpertEncoding":
		return MacExpertEncoding(), true
	case "StandardEncoding":
		return StandardEncoding(), true
	case "PDFDocEncoding":
		return PDFDocEncoding(), true
	default:
		return Table{}, false
	}
}

// ApplyDifferences returns a copy of base with the /Differences array
// applied: a run of (code, glyphName, glyphName, ...) entries that assigns
// consecutive codes starting at code to the Unicode value of each named
// glyph, per ISO 32000-1 §9.6.6.1.
//
// A glyph name the glyph list can't resolve is normally just a warning,
// leaving the underlying code unchanged (§9.6.6.1 doesn't define a
// meaning for one the reader has no name for). Icon/symbol fonts such as
// FontAwesome are the documented exception: their glyph names (e.g.
// "fa-coffee") never resolve, and leaving base's value in place would
// silently emit the base encoding's unrelated letter in place of an icon,
// so fontName containing "FontAwesome" blanks the slot instead of warning.
func ApplyDifferences(base Table, diffs []DifferenceEntry, fontName string) Table {
	t := base
	isFontAwesome := strings.Contains(fontName, "FontAwesome")
	code := 0
	for _, d := range diffs {
		if d.IsCode {
			code = d.Code
			continue
		}
		if code < 0 || code > 255 {
			code++
			continue
		}
		if r, ok := GlyphNameToRune(d.Name); ok {
			t[code] = r
		} else if isFontAwesome {
			t[code] = 0
		} else {
			common.Log.Warning("font: Differences glyph name %q not found, leaving code %d unchanged", d.Name, code)
		}
		code++
	}
	return t
}

// DifferenceEntry is one element of a parsed /Differences array: either a
// new starting code or the next glyph name to assign.
type DifferenceEntry struct {
	IsCode bool
	Code   int
	Name   string
}

// glyphEntry pairs a PostScript glyph name with its Unicode value.
type glyphEntry struct {
	name string
	r    rune
}

// glyphNames is a practical subset of the Adobe Glyph List covering Latin-1
// punctuation, accented letters, ligatures and the typographic symbols used
// by StandardEncoding/WinAnsiEncoding/MacRomanEncoding's /Differences
// entries in real-world documents. It is not the full ~4,300-entry AGL;
// see DESIGN.md.
var glyphNames = []glyphEntry{
	{"A", 'A'}, {"AE", 0x00c6}, {"Aacute", 0x00c1}, {"Acircumflex", 0x00c2},
	{"Adieresis", 0x00c4}, {"Agrave", 0x00c0}, {"Aring", 0x00c5}, {"Atilde", 0x00c3},
	{"B", 'B'}, {"C", 'C'}, {"Ccedilla", 0x00c7}, {"D", 'D'}, {"E", 'E'},
	{"Eacute", 0x00c9}, {"Ecircumflex", 0x00ca}, {"Edieresis", 0x00cb}, {"Egrave", 0x00c8},
	{"Eth", 0x00d0}, {"F", 'F'}, {"G", 'G'}, {"H", 'H'}, {"I", 'I'}, {"Iacute", 0x00cd},
	{"Icircumflex", 0x00ce}, {"Idieresis", 0x00cf}, {"Igrave", 0x00cc}, {"J", 'J'},
	{"K", 'K'}, {"L", 'L'}, {"Lslash", 0x0141}, {"M", 'M'}, {"N", 'N'}, {"Ntilde", 0x00d1},
	{"O", 'O'}, {"OE", 0x0152}, {"Oacute", 0x00d3}, {"Ocircumflex", 0x00d4},
	{"Odieresis", 0x00d6}, {"Ograve", 0x00d2}, {"Oslash", 0x00d8}, {"Otilde", 0x00d5},
	{"P", 'P'}, {"Q", 'Q'}, {"R", 'R'}, {"S", 'S'}, {"Scaron", 0x0160}, {"T", 'T'},
	{"Thorn", 0x00de}, {"U", 'U'}, {"Uacute", 0x00da}, {"Ucircumflex", 0x00db},
	{"Udieresis", 0x00dc}, {"Ugrave", 0x00d9}, {"V", 'V'}, {"W", 'W'}, {"X", 'X'},
	{"Y", 'Y'}, {"Yacute", 0x00dd}, {"Ydieresis", 0x0178}, {"Z", 'Z'}, {"Zcaron", 0x017d},
	{"a", 'a'}, {"aacute", 0x00e1}, {"acircumflex", 0x00e2}, {"acute", 0x00b4},
	{"adieresis", 0x00e4}, {"ae", 0x00e6}, {"agrave", 0x00e0}, {"ampersand", '&'},
	{"aring", 0x00e5}, {"asciicircum", '^'}, {"asciitilde", '~'}, {"asterisk", '*'},
	{"at", '@'}, {"atilde", 0x00e3}, {"b", 'b'}, {"backslash", '\\'}, {"bar", '|'},
	{"braceleft", '{'}, {"braceright", '}'}, {"bracketleft", '['}, {"bracketright", ']'},
	{"breve", 0x02d8}, {"brokenbar", 0x00a6}, {"bullet", 0x2022}, {"c", 'c'},
	{"caron", 0x02c7}, {"ccedilla", 0x00e7}, {"cedilla", 0x00b8}, {"cent", 0x00a2},
	{"circumflex", 0x02c6}, {"colon", ':'}, {"comma", ','}, {"copyright", 0x00a9},
	{"currency", 0x00a4}, {"d", 'd'}, {"dagger", 0x2020}, {"daggerdbl", 0x2021},
	{"degree", 0x00b0}, {"dieresis", 0x00a8}, {"divide", 0x00f7}, {"dollar", '$'},
	{"dotaccent", 0x02d9}, {"dotlessi", 0x0131}, {"e", 'e'}, {"eacute", 0x00e9},
	{"ecircumflex", 0x00ea}, {"edieresis", 0x00eb}, {"egrave", 0x00e8}, {"eight", '8'},
	{"ellipsis", 0x2026}, {"emdash", 0x2014}, {"endash", 0x2013}, {"equal", '='},
	{"eth", 0x00f0}, {"exclam", '!'}, {"exclamdown", 0x00a1}, {"f", 'f'},
	{"fi", 0xfb01}, {"five", '5'}, {"fl", 0xfb02}, {"florin", 0x0192}, {"four", '4'},
	{"fraction", 0x2044}, {"g", 'g'}, {"germandbls", 0x00df}, {"grave", 0x0060},
	{"greater", '>'}, {"guillemotleft", 0x00ab}, {"guillemotright", 0x00bb},
	{"guilsinglleft", 0x2039}, {"guilsinglright", 0x203a}, {"h", 'h'}, {"hungarumlaut", 0x02dd},
	{"hyphen", '-'}, {"i", 'i'}, {"iacute", 0x00ed}, {"icircumflex", 0x00ee},
	{"idieresis", 0x00ef}, {"igrave", 0x00ec}, {"j", 'j'}, {"k", 'k'}, {"l", 'l'},
	{"less", '<'}, {"logicalnot", 0x00ac}, {"lslash", 0x0142}, {"m", 'm'}, {"macron", 0x00af},
	{"minus", 0x2212}, {"mu", 0x00b5}, {"multiply", 0x00d7}, {"n", 'n'}, {"nine", '9'},
	{"ntilde", 0x00f1}, {"numbersign", '#'}, {"o", 'o'}, {"oacute", 0x00f3},
	{"ocircumflex", 0x00f4}, {"odieresis", 0x00f6}, {"oe", 0x0153}, {"ogonek", 0x02db},
	{"ograve", 0x00f2}, {"one", '1'}, {"onehalf", 0x00bd}, {"onequarter", 0x00bc},
	{"onesuperior", 0x00b9}, {"ordfeminine", 0x00aa}, {"ordmasculine", 0x00ba},
	{"oslash", 0x00f8}, {"otilde", 0x00f5}, {"p", 'p'}, {"paragraph", 0x00b6},
	{"parenleft", '('}, {"parenright", ')'}, {"percent", '%'}, {"period", '.'},
	{"periodcentered", 0x00b7}, {"perthousand", 0x2030}, {"plus", '+'}, {"plusminus", 0x00b1},
	{"q", 'q'}, {"question", '?'}, {"questiondown", 0x00bf}, {"quotedbl", '"'},
	{"quotedblbase", 0x201e}, {"quotedblleft", 0x201c}, {"quotedblright", 0x201d},
	{"quoteleft", 0x2018}, {"quoteright", 0x2019}, {"quotesinglbase", 0x201a},
	{"quotesingle", 0x0027}, {"r", 'r'}, {"registered", 0x00ae}, {"ring", 0x02da},
	{"s", 's'}, {"scaron", 0x0161}, {"section", 0x00a7}, {"semicolon", ';'},
	{"seven", '7'}, {"six", '6'}, {"slash", '/'}, {"space", ' '}, {"sterling", 0x00a3},
	{"t", 't'}, {"thorn", 0x00fe}, {"three", '3'}, {"threequarters", 0x00be},
	{"threesuperior", 0x00b3}, {"tilde", 0x02dc}, {"trademark", 0x2122}, {"two", '2'},
	{"twosuperior", 0x00b2}, {"u", 'u'}, {"uacute", 0x00fa}, {"ucircumflex", 0x00fb},
	{"udieresis", 0x00fc}, {"ugrave", 0x00f9}, {"underscore", '_'}, {"v", 'v'},
	{"w", 'w'}, {"x", 'x'}, {"y", 'y'}, {"yacute", 0x00fd}, {"ydieresis", 0x00ff},
	{"yen", 0x00a5}, {"z", 'z'}, {"zcaron", 0x017e}, {"zero", '0'},
}

var glyphNamesSorted sync.Once

func ensureSorted() {
	glyphNamesSorted.Do(func() {
		sort.Slice(glyphNames, func(i, j int) bool { return glyphNames[i].name < glyphNames[j].name })
	})
}

// GlyphNameToRune resolves a PostScript glyph name to a Unicode rune via
// binary search, falling back to the "uniXXXX"/"uXXXX[X[X]]" numeric glyph
// name conventions (ISO 32000-1 §9.6.6.2) when the name is not in the list.
func GlyphNameToRune(name string) (rune, bool) {
	ensureSorted()
	i := sort.Search(len(glyphNames), func(i int) bool { return glyphNames[i].name >= name })
	if i < len(glyphNames) && glyphNames[i].name == name {
		return glyphNames[i].r, true
	}
	if r, ok := parseUniGlyphName(name); ok {
		return r, true
	}
	return 0, false
}

var runeToGlyphOnce sync.Once
var runeToGlyph map[rune]string

// RuneToGlyphName is the inverse of GlyphNameToRune over the curated glyph
// list above: it returns the glyph name core-14 AFM width tables use for r,
// or "" if r is not one of the glyphs in that list. Used to look up a
// simple font's per-glyph width when no /Widths array is present.
func RuneToGlyphName(r rune) string {
	runeToGlyphOnce.Do(func() {
		runeToGlyph = make(map[rune]string, len(glyphNames))
		for _, g := range glyphNames {
			if _, exists := runeToGlyph[g.r]; !exists {
				runeToGlyph[g.r] = g.name
			}
		}
	})
	return runeToGlyph[r]
}

func parseUniGlyphName(name string) (rune, bool) {
	var hex string
	switch {
	case len(name) == 7 && name[:3] == "uni":
		hex = name[3:]
	case len(name) >= 5 && len(name) <= 7 && name[:1] == "u":
		hex = name[1:]
	default:
		return 0, false
	}
	var v int64
	for _, c := range hex {
		d := int64(-1)
		switch {
		case c >= '0' && c <= '9':
			d = int64(c - '0')
		case c >= 'A' && c <= 'F':
			d = int64(c-'A') + 10
		case c >= 'a' && c <= 'f':
			d = int64(c-'a') + 10
		}
		if d < 0 {
			return 0, false
		}
		v = v*16 + d
	}
	return rune(v), true
}

// utf16BOMDecoder decodes UTF-16BE text that starts with the 0xfe 0xff
// BOM and rejects input without it; PDF text strings that begin with that
// marker are UTF-16BE.
var utf16BOMDecoder = unicode.UTF16(unicode.BigEndian, unicode.ExpectBOM)

// DecodeWithTable decodes a PDF text-string byte sequence s to a Go string.
// If s begins with the UTF-16BE BOM (0xfe 0xff) it is decoded as UTF-16BE;
// otherwise each byte is mapped through table (falling back to
// PDFDocEncoding's mapping for bytes table leaves unmapped at 0).
func DecodeWithTable(table Table, s []byte) string {
	if len(s) >= 2 && s[0] == 0xfe && s[1] == 0xff {
		out, err := utf16BOMDecoder.NewDecoder().Bytes(s)
		if err == nil {
			return string(out)
		}
	}
	runes := make([]rune, 0, len(s))
	for _, b := range s {
		r := table[b]
		if r == 0 {
			r = pdfDocEncoding[b]
		}
		if r != 0 {
			runes = append(runes, r)
		}
	}
	return string(runes)
}

// DecodePDFDocOrUTF16 decodes s the way ISO 32000-1 §7.9.2.2 requires for
// text strings outside content streams: UTF-16BE if BOM-prefixed, else
// PDFDocEncoding.
func DecodePDFDocOrUTF16(s []byte) string {
	return DecodeWithTable(PDFDocEncoding(), s)
}
