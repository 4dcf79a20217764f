package model

import (
	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/core"
	"github.com/unidoc/pdftext/internal/textencoding"
)

// simpleFont implements PdfFont for Type1/TrueType/MMType1 subtypes: one
// byte per character code, an /Encoding table (base encoding plus an
// optional /Differences override) mapping code to glyph name, and a
// /Widths array (FirstChar..LastChar) with core-14 metrics as the
// fallback when Widths is absent, grounded on original_source's
// PdfSimpleFont.
type simpleFont struct {
	fontCommon
	encoding  textencoding.Table
	firstChar int
	widths    []float64 // indexed by code - firstChar
	missing   float64   // /FontDescriptor /MissingWidth, defaults to 0
}

func (f *simpleFont) NextCode(data []byte) (uint32, int, bool) {
	if len(data) == 0 {
		return 0, 0, false
	}
	return uint32(data[0]), 1, true
}

func (f *simpleFont) Width(code uint32) (float64, bool) {
	idx := int(code) - f.firstChar
	if idx >= 0 && idx < len(f.widths) {
		if w := f.widths[idx]; w != 0 {
			return w, true
		}
	}
	if glyph := f.glyphName(code); glyph != "" && len(f.widths) == 0 {
		if w, ok := textencoding.Core14Width(f.name, glyph); ok {
			return w, true
		}
	}
	if len(f.widths) > 0 {
		return f.missing, true
	}
	return 0, false
}

func (f *simpleFont) Decode(code uint32) string {
	if s, ok := f.decodeToUnicode(code); ok {
		return s
	}
	if code > 255 {
		return ""
	}
	if r := f.encoding[code]; r != 0 {
		return string(r)
	}
	return ""
}

func (f *simpleFont) glyphName(code uint32) string {
	if code > 255 {
		return ""
	}
	r := f.encoding[code]
	if r == 0 {
		return ""
	}
	return textencoding.RuneToGlyphName(r)
}

func loadSimpleFont(doc *core.Document, dict *core.PdfObjectDictionary, base fontCommon, subtype string) (PdfFont, error) {
	f := &simpleFont{fontCommon: base}
	f.encoding = resolveSimpleEncoding(doc, dict, subtype, base.name)

	if fc, ok := core.GetInt(doc, dict.Get("FirstChar")); ok {
		f.firstChar = int(fc)
	}
	if arr, ok := core.GetArray(doc, dict.Get("Widths")); ok {
		f.widths = make([]float64, arr.Len())
		for i := 0; i < arr.Len(); i++ {
			if w, ok := core.GetNumberAsFloat(doc, arr.Get(i)); ok {
				f.widths[i] = w
			}
		}
	}
	if f.descriptor != nil {
		if mw, ok := core.GetNumberAsFloat(doc, f.descriptor.Get("MissingWidth")); ok {
			f.missing = mw
		}
	}
	return f, nil
}

// resolveSimpleEncoding builds the code->rune table for a simple font's
// /Encoding entry, which per ISO 32000-1 §9.6.6 is either a bare base
// encoding Name, a Dictionary naming a /BaseEncoding plus a /Differences
// override array, or absent. An absent /Encoding defaults to
// WinAnsiEncoding for TrueType fonts (most TrueType fonts in the wild
// carry a (3,1) Windows cmap, which WinAnsiEncoding matches far more often
// than StandardEncoding) and to StandardEncoding for every other simple
// font subtype.
func resolveSimpleEncoding(doc *core.Document, dict *core.PdfObjectDictionary, subtype, fontName string) textencoding.Table {
	defaultBase := textencoding.StandardEncoding()
	if subtype == "TrueType" {
		defaultBase = textencoding.WinAnsiEncoding()
	}

	enc := dict.Get("Encoding")
	if name, ok := core.GetName(doc, enc); ok {
		if t, ok := textencoding.ByName(name); ok {
			return t
		}
		common.Log.Debug("font: unrecognized base encoding %q, using StandardEncoding", name)
		return textencoding.StandardEncoding()
	}

	base := defaultBase
	encDict, ok := core.GetDict(doc, enc)
	if !ok {
		return base
	}
	if bn, ok := core.GetName(doc, encDict.Get("BaseEncoding")); ok {
		if t, ok := textencoding.ByName(bn); ok {
			base = t
		}
	}
	diffs, ok := core.GetArray(doc, encDict.Get("Differences"))
	if !ok {
		return base
	}
	var entries []textencoding.DifferenceEntry
	for i := 0; i < diffs.Len(); i++ {
		item := diffs.Get(i)
		if n, ok := core.GetInt(doc, item); ok {
			entries = append(entries, textencoding.DifferenceEntry{IsCode: true, Code: int(n)})
			continue
		}
		if name, ok := core.GetName(doc, item); ok {
			entries = append(entries, textencoding.DifferenceEntry{Name: name})
		}
	}
	return textencoding.ApplyDifferences(base, entries, fontName)
}
