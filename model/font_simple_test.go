package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unidoc/pdftext/core"
)

func dict(pairs ...interface{}) *core.PdfObjectDictionary {
	d := core.MakeDict()
	for i := 0; i+1 < len(pairs); i += 2 {
		d.Set(core.PdfObjectName(pairs[i].(string)), pairs[i+1].(core.PdfObject))
	}
	return d
}

func TestLoadSimpleFontWidthsAndEncoding(t *testing.T) {
	fontDict := dict(
		"Subtype", core.MakeName("Type1"),
		"BaseFont", core.MakeName("Helvetica"),
		"FirstChar", core.MakeInteger(65),
		"Widths", core.MakeArray(core.MakeInteger(722), core.MakeInteger(667)),
	)

	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)
	assert.Equal(t, "Helvetica", font.Name())

	w, ok := font.Width(65) // 'A'
	assert.True(t, ok)
	assert.Equal(t, 722.0, w)

	w, ok = font.Width(66) // 'B'
	assert.True(t, ok)
	assert.Equal(t, 667.0, w)

	text := font.Decode(65)
	assert.Equal(t, "A", text)

	code, n, ok := font.NextCode([]byte{65, 66})
	assert.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Equal(t, uint32(65), code)
}

func TestLoadSimpleFontFallsBackToCore14Width(t *testing.T) {
	fontDict := dict(
		"Subtype", core.MakeName("Type1"),
		"BaseFont", core.MakeName("Helvetica"),
	)
	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)

	w, ok := font.Width(uint32('A'))
	assert.True(t, ok)
	assert.Greater(t, w, 0.0)
}

func TestLoadSimpleFontEncodingDifferences(t *testing.T) {
	diffs := core.MakeArray(
		core.MakeInteger(65),
		core.MakeName("bullet"),
	)
	fontDict := dict(
		"Subtype", core.MakeName("Type1"),
		"BaseFont", core.MakeName("Helvetica"),
		"Encoding", dict(
			"BaseEncoding", core.MakeName("WinAnsiEncoding"),
			"Differences", diffs,
		),
	)
	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)
	assert.Equal(t, "•", font.Decode(65))
}

// TestLoadSimpleFontTrueTypeDefaultsToWinAnsi pins down spec §4.C(iv): a
// TrueType font with no /Encoding entry at all defaults to WinAnsiEncoding,
// not StandardEncoding (the default for every other simple-font subtype).
func TestLoadSimpleFontTrueTypeDefaultsToWinAnsi(t *testing.T) {
	fontDict := dict(
		"Subtype", core.MakeName("TrueType"),
		"BaseFont", core.MakeName("Arial"),
	)
	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)
	// 0x92 is a right single quotation mark in WinAnsiEncoding but an
	// unrelated/unmapped position in StandardEncoding.
	assert.Equal(t, "’", font.Decode(0x92))
}

func TestLoadSimpleFontType1DefaultsToStandardEncoding(t *testing.T) {
	fontDict := dict(
		"Subtype", core.MakeName("Type1"),
		"BaseFont", core.MakeName("Helvetica"),
	)
	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)
	assert.Equal(t, "A", font.Decode('A'))
}

// TestLoadSimpleFontFontAwesomeUnknownGlyphEmitsEmpty pins down spec §4.C:
// an icon font's Differences entries routinely name glyphs the Adobe
// Glyph List has never heard of ("fa-coffee"); for a font whose BaseFont
// contains "FontAwesome" that must decode to "", not silently fall back
// to whatever base encoding says code 65 means.
func TestLoadSimpleFontFontAwesomeUnknownGlyphEmitsEmpty(t *testing.T) {
	diffs := core.MakeArray(
		core.MakeInteger(65),
		core.MakeName("fa-coffee"),
	)
	fontDict := dict(
		"Subtype", core.MakeName("Type1"),
		"BaseFont", core.MakeName("FontAwesome5Free-Solid"),
		"Encoding", dict(
			"BaseEncoding", core.MakeName("WinAnsiEncoding"),
			"Differences", diffs,
		),
	)
	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)
	assert.Equal(t, "", font.Decode(65))
}

// TestLoadFontMissingCodeFallsBackToMissingWidth: a code outside a font's
// /Widths range takes the descriptor's MissingWidth, which is 0 when the
// font has no descriptor.
func TestLoadFontMissingCodeFallsBackToMissingWidth(t *testing.T) {
	fontDict := dict(
		"Subtype", core.MakeName("Type1"),
		"BaseFont", core.MakeName("Helvetica"),
		"FirstChar", core.MakeInteger(65),
		"Widths", core.MakeArray(core.MakeInteger(0)),
	)
	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)
	w, ok := font.Width(200)
	assert.True(t, ok)
	assert.Equal(t, 0.0, w)
}
