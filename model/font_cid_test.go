package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unidoc/pdftext/core"
	"github.com/unidoc/pdftext/internal/cmap"
)

func TestLoadCIDFontIdentityEncodingAndWidths(t *testing.T) {
	descFont := dict(
		"DW", core.MakeInteger(1000),
		"W", core.MakeArray(
			core.MakeInteger(3),
			core.MakeArray(core.MakeInteger(500), core.MakeInteger(600)),
		),
	)
	fontDict := dict(
		"Subtype", core.MakeName("Type0"),
		"BaseFont", core.MakeName("MyCIDFont"),
		"Encoding", core.MakeName("Identity-H"),
		"DescendantFonts", core.MakeArray(descFont),
	)

	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)

	code, n, ok := font.NextCode([]byte{0x00, 0x03})
	assert.True(t, ok)
	assert.Equal(t, 2, n)
	assert.Equal(t, uint32(3), code)

	w, ok := font.Width(3)
	assert.True(t, ok)
	assert.Equal(t, 500.0, w)

	w, ok = font.Width(4)
	assert.True(t, ok)
	assert.Equal(t, 600.0, w)

	w, ok = font.Width(999) // no /W entry, falls back to /DW
	assert.True(t, ok)
	assert.Equal(t, 1000.0, w)
}

func TestLoadCIDFontWRangeForm(t *testing.T) {
	descFont := dict(
		"W", core.MakeArray(
			core.MakeInteger(10), core.MakeInteger(12), core.MakeInteger(250),
		),
	)
	fontDict := dict(
		"Subtype", core.MakeName("Type0"),
		"BaseFont", core.MakeName("MyCIDFont"),
		"Encoding", core.MakeName("Identity-H"),
		"DescendantFonts", core.MakeArray(descFont),
	)
	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)

	for _, cid := range []uint32{10, 11, 12} {
		w, ok := font.Width(cid)
		assert.True(t, ok)
		assert.Equal(t, 250.0, w)
	}
}

func TestLoadType3FontScalesWidthByFontMatrix(t *testing.T) {
	fontDict := dict(
		"Subtype", core.MakeName("Type3"),
		"BaseFont", core.MakeName("MyType3"),
		"FirstChar", core.MakeInteger(65),
		"Widths", core.MakeArray(core.MakeInteger(1000)),
		"FontMatrix", core.MakeArray(
			core.MakeFloat(0.002), core.MakeFloat(0), core.MakeFloat(0),
			core.MakeFloat(0.002), core.MakeFloat(0), core.MakeFloat(0),
		),
	)
	font, err := LoadFont(nil, fontDict)
	assert.NoError(t, err)

	w, ok := font.Width(65)
	assert.True(t, ok)
	assert.Equal(t, 2000.0, w) // 1000 * 0.002 * 1000

	_, ok = font.Width(66)
	assert.False(t, ok)
}

// TestDecodeToUnicodeRejectsNULAndEmpty pins down spec §3-iv/§4.C: a
// ToUnicode entry that is empty, or contains U+0000, must be treated as
// "missing" so the rest of decode_char's fallback chain is tried, rather
// than handed back to the caller as if it were a real decoded string.
func TestDecodeToUnicodeRejectsNULAndEmpty(t *testing.T) {
	f := fontCommon{
		hasToUni: true,
		toUnicode: cmap.ToUnicode{
			1: "\x00",
			2: "",
			3: "-",
		},
	}

	_, ok := f.decodeToUnicode(1)
	assert.False(t, ok, "U+0000 entry must not be trusted")

	_, ok = f.decodeToUnicode(2)
	assert.False(t, ok, "empty entry must not be trusted")

	s, ok := f.decodeToUnicode(3)
	assert.True(t, ok)
	assert.Equal(t, "-", s)

	_, ok = f.decodeToUnicode(4)
	assert.False(t, ok, "absent entry must not be trusted")
}

// TestCIDFontDecodeFallsThroughNULToWidthFallback exercises the full
// four-tier decode_char chain: ToUnicode maps the CID to U+0000 (treated
// as missing), there is no embedded-font fallback, and the width-based
// fallback resolves it instead.
func TestCIDFontDecodeFallsThroughNULToWidthFallback(t *testing.T) {
	f := &cidFont{
		fontCommon: fontCommon{
			hasToUni:  true,
			toUnicode: cmap.ToUnicode{7: "\x00"},
		},
		widthFb: &widthFallback{byCID: map[uint32]string{7: "-"}},
	}
	assert.Equal(t, "-", f.Decode(7))
}

type stubSystemFontProvider struct {
	data []byte
	ok   bool
}

func (s stubSystemFontProvider) LoadFont(string) ([]byte, bool) { return s.data, s.ok }

func TestBuildWidthFallbackNoProviderMatch(t *testing.T) {
	// No system font available (the CI/sandbox default): the width
	// fallback tier must degrade to nil rather than erroring.
	fb := buildWidthFallback(noopSystemFontProvider{}, "Inter-SemiBold", map[uint32]float64{1: 500})
	assert.Nil(t, fb)

	fb = buildWidthFallback(stubSystemFontProvider{ok: false}, "Inter-SemiBold", map[uint32]float64{1: 500})
	assert.Nil(t, fb)

	fb = buildWidthFallback(stubSystemFontProvider{data: []byte("not a font"), ok: true}, "Inter-SemiBold", map[uint32]float64{1: 500})
	assert.Nil(t, fb)
}
