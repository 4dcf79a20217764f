package model

import (
	"strings"

	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/core"
	"github.com/unidoc/pdftext/internal/cmap"
	"golang.org/x/xerrors"
)

// PdfFont is the common surface every font object in a page's /Resources
// /Font dictionary exposes to the content-stream interpreter: how many
// bytes of a Tj/TJ string one character occupies, how wide that character
// is (in glyph-space units, 1/1000 em), and what Unicode text it decodes
// to. Three concrete kinds satisfy it: simple fonts (Type1/TrueType/MMType1),
// Type3 fonts, and Type0/CID composite fonts.
type PdfFont interface {
	// NextCode consumes the next character code from data, returning the
	// code, how many bytes it occupied, and whether any bytes were
	// consumed at all (false only when data is empty).
	NextCode(data []byte) (code uint32, nbytes int, ok bool)
	// Width returns the glyph-space advance width of code in 1/1000 text
	// space units, or false if the font has no width for it.
	Width(code uint32) (float64, bool)
	// Decode returns the Unicode text code represents.
	Decode(code uint32) string
	// Name returns the font's BaseFont name, for diagnostics.
	Name() string
}

// fontCommon holds the fields every PDF font dictionary carries regardless
// of subtype, mirroring the teacher's fontCommon/baseFields split so each
// concrete font type only has to parse what is specific to it.
type fontCommon struct {
	name       string
	toUnicode  cmap.ToUnicode
	hasToUni   bool
	descriptor *core.PdfObjectDictionary
}

func (f fontCommon) Name() string { return f.name }

// LoadFont inspects a /Font dictionary's Subtype and builds the matching
// PdfFont implementation, following original_source's PdfFont::new dispatch
// over Type1/TrueType/MMType1/Type3/Type0.
func LoadFont(doc *core.Document, dict *core.PdfObjectDictionary) (PdfFont, error) {
	if dict == nil {
		return nil, xerrors.New("pdftext: nil font dictionary")
	}
	subtype, _ := core.GetName(doc, dict.Get("Subtype"))
	base := fontCommon{name: "Unknown"}
	if name, ok := core.GetName(doc, dict.Get("BaseFont")); ok {
		base.name = name
	}
	if desc, ok := core.GetDict(doc, dict.Get("FontDescriptor")); ok {
		base.descriptor = desc
	}
	if stream, ok := core.GetStream(doc, dict.Get("ToUnicode")); ok {
		if content, err := core.DecodeStream(doc, stream); err == nil {
			base.toUnicode = cmap.ParseToUnicode(content)
			base.hasToUni = true
		} else {
			common.Log.Debug("font %s: failed to decode ToUnicode stream: %v", base.name, err)
		}
	}

	switch subtype {
	case "Type0":
		return loadCIDFont(doc, dict, base)
	case "Type3":
		return loadType3Font(doc, dict, base)
	default:
		// Type1, MMType1, TrueType all share simple-font semantics:
		// single-byte codes, an /Encoding table, /Widths array.
		return loadSimpleFont(doc, dict, base, subtype)
	}
}

// decodeToUnicode looks up code in the font's /ToUnicode CMap. A result is
// only trusted if it is non-empty and contains no U+0000: a NUL-containing
// or empty entry is a ToUnicode table lying about having mapped this code,
// and must fall through to the rest of decode_char's fallback chain rather
// than being returned as-is.
func (f fontCommon) decodeToUnicode(code uint32) (string, bool) {
	if !f.hasToUni {
		return "", false
	}
	s, ok := f.toUnicode[uint32(code)]
	if !ok {
		return "", false
	}
	if s == "" || strings.ContainsRune(s, 0) {
		return "", false
	}
	return s, true
}

func logMissingWidth(font string, code uint32) {
	common.Log.Debug("font %s: no width for code 0x%x, treating as 0", font, code)
}
