package model

import (
	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/core"
	"golang.org/x/image/font/sfnt"
)

// embeddedCmapFallback is the second tier of decode_char's fallback chain:
// when a CID font has no /ToUnicode entry, derive a GID->rune map from the
// embedded font program's own cmap table and use that instead.
//
// golang.org/x/image/font/sfnt exposes rune->GlyphIndex lookup but not a
// reverse enumeration of a cmap subtable, so the map is built by probing a
// fixed candidate range (Basic Latin, Latin-1 Supplement, General
// Punctuation) rather than reading the subtable directly; this covers the
// common case (embedded subset fonts for Western text) at a fraction of
// the complexity of a full cmap-subtable parser. See DESIGN.md.
type embeddedCmapFallback struct {
	gidToRune map[uint32]rune
}

func (e *embeddedCmapFallback) runeForGID(gid uint32) (string, bool) {
	if e == nil {
		return "", false
	}
	r, ok := e.gidToRune[gid]
	if !ok {
		return "", false
	}
	return string(r), true
}

var candidateRuneRanges = [][2]rune{
	{0x0020, 0x007e}, // Basic Latin
	{0x00a0, 0x00ff}, // Latin-1 Supplement
	{0x2010, 0x2027}, // General Punctuation (dashes, quotes, bullet)
}

func buildEmbeddedCmapFallback(doc *core.Document, descriptor *core.PdfObjectDictionary) *embeddedCmapFallback {
	if descriptor == nil {
		return nil
	}
	data, ok := embeddedFontProgram(doc, descriptor)
	if !ok {
		return nil
	}
	face, err := sfnt.Parse(data)
	if err != nil {
		common.Log.Debug("font: embedded font program did not parse as sfnt: %v", err)
		return nil
	}
	var buf sfnt.Buffer
	m := map[uint32]rune{}
	for _, rng := range candidateRuneRanges {
		for r := rng[0]; r <= rng[1]; r++ {
			gi, err := face.GlyphIndex(&buf, r)
			if err != nil || gi == 0 {
				continue
			}
			if _, exists := m[uint32(gi)]; !exists {
				m[uint32(gi)] = r
			}
		}
	}
	if len(m) == 0 {
		return nil
	}
	return &embeddedCmapFallback{gidToRune: m}
}

// embeddedFontProgram returns the raw bytes of whichever font program the
// descriptor embeds: FontFile2 (TrueType) and FontFile3 (CFF/OpenType) are
// both sfnt.Parse-able; FontFile (Type1, PFB-wrapped PostScript) is not and
// is skipped.
func embeddedFontProgram(doc *core.Document, descriptor *core.PdfObjectDictionary) ([]byte, bool) {
	for _, key := range []core.PdfObjectName{"FontFile2", "FontFile3"} {
		stream, ok := core.GetStream(doc, descriptor.Get(key))
		if !ok {
			continue
		}
		data, err := core.DecodeStream(doc, stream)
		if err != nil {
			continue
		}
		return data, true
	}
	return nil, false
}
