package model

import (
	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/core"
	"github.com/unidoc/pdftext/internal/textencoding"
)

// type3Font implements PdfFont for Type3 fonts: glyphs are content streams
// in /CharProcs rather than outlines, so the only well-defined width is
// whatever /Widths says — there is no core-14/embedded-font fallback to
// reach for. original_source panics when a Type3 code has no width; a
// library has no caller to hand that panic to, so missing widths are
// reported as a miss instead (see DESIGN.md's Open Question decision).
type type3Font struct {
	fontCommon
	encoding  textencoding.Table
	firstChar int
	widths    []float64
	matrix    [6]float64 // /FontMatrix, glyph space -> text space
}

func (f *type3Font) NextCode(data []byte) (uint32, int, bool) {
	if len(data) == 0 {
		return 0, 0, false
	}
	return uint32(data[0]), 1, true
}

func (f *type3Font) Width(code uint32) (float64, bool) {
	idx := int(code) - f.firstChar
	if idx < 0 || idx >= len(f.widths) {
		common.Log.Debug("type3 font %s: no width for code 0x%x", f.name, code)
		return 0, false
	}
	// Widths in a Type3 font are in glyph space, scaled by FontMatrix
	// rather than assumed 1/1000 em; a scale-free a/d diagonal (the
	// overwhelmingly common case, e.g. 0.001 0 0 0.001 0 0) reduces to a
	// flat multiply.
	return f.widths[idx] * f.matrix[0] * 1000, true
}

func (f *type3Font) Decode(code uint32) string {
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

func loadType3Font(doc *core.Document, dict *core.PdfObjectDictionary, base fontCommon) (PdfFont, error) {
	f := &type3Font{fontCommon: base, matrix: [6]float64{0.001, 0, 0, 0.001, 0, 0}}
	f.encoding = resolveSimpleEncoding(doc, dict, "Type3", base.name)

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
	if arr, ok := core.GetArray(doc, dict.Get("FontMatrix")); ok && arr.Len() == 6 {
		for i := 0; i < 6; i++ {
			if v, ok := core.GetNumberAsFloat(doc, arr.Get(i)); ok {
				f.matrix[i] = v
			}
		}
	}
	return f, nil
}
