package textencoding

// MacExpertEncoding, SymbolEncoding and ZapfDingbatsEncoding back the rare
// small-caps/expert-set and symbol fonts. Unlike WinAnsi/MacRoman/Standard,
// there is no Unicode code page that models them, so rather than
// transcribing all 256 slots of each (a few hundred PUA/legacy glyph
// mappings with little payoff for a text extractor) only the ranges that
// carry meaningful Unicode equivalents are populated; everything else
// decodes as unmapped. See DESIGN.md.

// MacExpertEncoding returns a reduced-fidelity MacExpertEncoding table:
// the whole 0x20-0x7e range is copied from StandardEncoding, so the
// small-cap positions decode as plain ASCII letters; the expert-set glyphs
// of the upper half (superscript figures, fractions, ligatures) are left
// unmapped since they have no single corresponding Unicode code point
// under simple text extraction.
func MacExpertEncoding() Table {
	var t Table
	for i := 0x20; i < 0x7f; i++ {
		t[i] = StandardEncoding()[i]
	}
	return t
}

// SymbolEncoding returns the Adobe Symbol font's encoding for the Greek
// letters and common mathematical operators it carries in the 0x20-0x7e
// range, plus a few upper-half operators (degree, plus-minus, multiply,
// divide, infinity, the inequalities, ellipsis, radical); the other codes
// above 0x7e (technical/dingbat glyphs) are left unmapped.
func SymbolEncoding() Table {
	var t Table
	for code, r := range symbolTable {
		t[code] = r
	}
	return t
}

var symbolTable = map[byte]rune{
	0x20: ' ', 0x21: '!', 0x22: 0x2200, 0x23: '#', 0x24: 0x2203, 0x25: '%', 0x26: '&',
	0x27: 0x220b, 0x28: '(', 0x29: ')', 0x2a: 0x2217, 0x2b: '+', 0x2c: ',', 0x2d: 0x2212,
	0x2e: '.', 0x2f: '/', 0x30: '0', 0x31: '1', 0x32: '2', 0x33: '3', 0x34: '4', 0x35: '5',
	0x36: '6', 0x37: '7', 0x38: '8', 0x39: '9', 0x3a: ':', 0x3b: ';', 0x3c: '<', 0x3d: '=',
	0x3e: '>', 0x3f: '?', 0x40: 0x2245,
	0x41: 0x0391, 0x42: 0x0392, 0x43: 0x03a7, 0x44: 0x0394, 0x45: 0x0395, 0x46: 0x03a6,
	0x47: 0x0393, 0x48: 0x0397, 0x49: 0x0399, 0x4a: 0x03d1, 0x4b: 0x039a, 0x4c: 0x039b,
	0x4d: 0x039c, 0x4e: 0x039d, 0x4f: 0x039f, 0x50: 0x03a0, 0x51: 0x0398, 0x52: 0x03a1,
	0x53: 0x03a3, 0x54: 0x03a4, 0x55: 0x03a5, 0x56: 0x03c2, 0x57: 0x03a9, 0x58: 0x039e,
	0x59: 0x03a8, 0x5a: 0x0396,
	0x5b: '[', 0x5c: 0x2234, 0x5d: ']', 0x5e: 0x22a5, 0x5f: '_', 0x60: 0xf8e5,
	0x61: 0x03b1, 0x62: 0x03b2, 0x63: 0x03c7, 0x64: 0x03b4, 0x65: 0x03b5, 0x66: 0x03c6,
	0x67: 0x03b3, 0x68: 0x03b7, 0x69: 0x03b9, 0x6a: 0x03d5, 0x6b: 0x03ba, 0x6c: 0x03bb,
	0x6d: 0x03bc, 0x6e: 0x03bd, 0x6f: 0x03bf, 0x70: 0x03c0, 0x71: 0x03b8, 0x72: 0x03c1,
	0x73: 0x03c3, 0x74: 0x03c4, 0x75: 0x03c5, 0x76: 0x03d6, 0x77: 0x03c9, 0x78: 0x03be,
	0x79: 0x03c8, 0x7a: 0x03b6,
	0x7b: '{', 0x7c: '|', 0x7d: '}', 0x7e: 0x223c,
	0xb0: 0x00b0, 0xb1: 0x00b1, 0xd7: 0x00d7, 0xf7: 0x00f7, 0xa5: 0x221e, 0xa3: 0x2264,
	0xb3: 0x2265, 0xb9: 0x2260, 0xc5: 0x2026, 0xd6: 0x221a,
}

// ZapfDingbatsEncoding returns a table for the non-overlapping ASCII range
// that maps straight through (space only); the dingbat glyphs proper have
// no useful Unicode equivalents for text extraction and are left unmapped.
func ZapfDingbatsEncoding() Table {
	var t Table
	t[0x20] = ' '
	return t
}
