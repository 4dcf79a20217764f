package model

import (
	"github.com/unidoc/pdftext/common"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// SystemFontProvider resolves a PDF font's BaseFont name to the bytes of a
// similarly named font installed on the host, mirroring
// original_source's load_system_font absolute-path search list
// (/System/Library/Fonts, /usr/share/fonts, $HOME/.local/share/fonts, and
// so on). Consulting the filesystem makes the resulting fallback
// inherently non-deterministic across environments (spec §9 open
// question 2), so it is a package variable behind this interface rather
// than baked into loadCIDFont: tests and CI run against
// noopSystemFontProvider, and a caller that wants the real behavior can
// swap DefaultSystemFontProvider for one that walks the host's font
// directories.
type SystemFontProvider interface {
	// LoadFont returns the raw bytes of a TrueType/OpenType font file
	// matching baseName (a PDF BaseFont name, e.g. "Inter-SemiBold"), or
	// false if none can be found.
	LoadFont(baseName string) ([]byte, bool)
}

// noopSystemFontProvider never finds a system font. It is the default so
// that running in a sandboxed or CI environment never touches the
// filesystem and never depends on what happens to be installed there.
type noopSystemFontProvider struct{}

func (noopSystemFontProvider) LoadFont(string) ([]byte, bool) { return nil, false }

// DefaultSystemFontProvider is consulted by loadCIDFont to build the
// width-based fallback tier (decode_char's third tier, the last one tried
// before giving up). Replace it to enable real system-font matching.
var DefaultSystemFontProvider SystemFontProvider = noopSystemFontProvider{}

// widthFallbackTolerancePercent bounds how far a CID's PDF-declared width
// may drift from a system-font glyph's own advance width and still count
// as a match, expressed as a percentage of the PDF width.
const widthFallbackTolerancePercent = 2.0

// widthFallback is decode_char's third fallback tier: for a CID font
// whose /ToUnicode is absent or incomplete and whose embedded program has
// no usable cmap, match each CID's declared glyph width against the
// advance widths of a same-named system font and borrow whichever
// Unicode character has (approximately) that width. It produces plausible
// text for the common case of a narrow symbol/dingbat substitution, not a
// correct transcription — a width collision between two unrelated glyphs
// is entirely possible — which is why it is the last tier tried.
// Grounded on original_source's get_width_fallback_from_system_font.
type widthFallback struct {
	byCID map[uint32]string
}

func (w *widthFallback) runeForCID(cid uint32) (string, bool) {
	if w == nil {
		return "", false
	}
	s, ok := w.byCID[cid]
	return s, ok
}

// widthFallbackCandidateRunes enumerates the same fixed rune ranges as the
// embedded-cmap fallback tier (Basic Latin, Latin-1 Supplement, General
// Punctuation): golang.org/x/image/font/sfnt exposes forward rune->glyph
// lookup but not a reverse cmap-subtable walk, so a system font's width
// table is built by probing this candidate set rather than enumerating
// every code point the font actually supports.
var widthFallbackCandidateRunes = candidateRuneRanges

// buildWidthFallback loads a system font resembling baseName through
// provider, builds a normalized-width -> candidate-rune table from it,
// and matches each CID in widths (its PDF glyph-space width, 1/1000 em)
// against that table within tolerance. Returns nil if no font is found,
// it fails to parse, or no CID matches anything.
func buildWidthFallback(provider SystemFontProvider, baseName string, widths map[uint32]float64) *widthFallback {
	if provider == nil || baseName == "" || len(widths) == 0 {
		return nil
	}
	data, ok := provider.LoadFont(baseName)
	if !ok {
		return nil
	}
	face, err := sfnt.Parse(data)
	if err != nil {
		common.Log.Debug("font %s: system font did not parse as sfnt: %v", baseName, err)
		return nil
	}
	unitsPerEm, err := face.UnitsPerEm()
	if err != nil || unitsPerEm <= 0 {
		return nil
	}
	ppem := fixed.Int26_6(unitsPerEm << 6)

	var buf sfnt.Buffer
	widthToRunes := map[int][]rune{}
	for _, rng := range widthFallbackCandidateRunes {
		for r := rng[0]; r <= rng[1]; r++ {
			gi, err := face.GlyphIndex(&buf, r)
			if err != nil || gi == 0 {
				continue
			}
			adv, err := face.GlyphAdvance(&buf, gi, ppem, font.HintingNone)
			if err != nil {
				continue
			}
			normalized := int(float64(adv) / 64.0 / float64(unitsPerEm) * 1000)
			widthToRunes[normalized] = append(widthToRunes[normalized], r)
		}
	}
	if len(widthToRunes) == 0 {
		return nil
	}

	byCID := map[uint32]string{}
	for cid, pdfWidth := range widths {
		pdfWidthInt := int(pdfWidth)
		tolerance := int(pdfWidth * widthFallbackTolerancePercent / 100)
		if tolerance < 1 {
			tolerance = 1
		}
		if r, ok := matchWidth(widthToRunes, pdfWidthInt, tolerance); ok {
			byCID[cid] = string(r)
		}
	}
	if len(byCID) == 0 {
		return nil
	}
	common.Log.Debug("font %s: built width fallback map with %d entries", baseName, len(byCID))
	return &widthFallback{byCID: byCID}
}

// matchWidth searches widthToRunes for a width within tolerance of target,
// expanding outward symmetrically (target, target+1, target-1, target+2,
// ...), and returns the preferred candidate rune at the first width that
// has any: space, hyphen-minus, an ASCII digit, or ASCII punctuation
// before any other candidate, since those are by far the most common
// glyphs a PDF's incomplete ToUnicode table drops.
func matchWidth(widthToRunes map[int][]rune, target, tolerance int) (rune, bool) {
	for offset := 0; offset <= tolerance; offset++ {
		for _, sign := range [2]int{1, -1} {
			test := target + sign*offset
			runes, ok := widthToRunes[test]
			if !ok {
				continue
			}
			if r, ok := preferredRune(runes); ok {
				return r, true
			}
			if offset == 0 {
				break // sign doesn't matter at offset 0
			}
		}
	}
	return 0, false
}

func preferredRune(runes []rune) (rune, bool) {
	if len(runes) == 0 {
		return 0, false
	}
	for _, r := range runes {
		if r == ' ' || r == '-' || isASCIIDigit(r) || isASCIIPunct(r) {
			return r, true
		}
	}
	return runes[0], true
}

func isASCIIDigit(r rune) bool { return r >= '0' && r <= '9' }

func isASCIIPunct(r rune) bool {
	return (r >= '!' && r <= '/') ||
		(r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') ||
		(r >= '{' && r <= '~')
}
