package model

import (
	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/core"
	"github.com/unidoc/pdftext/internal/cmap"
)

// cidFont implements PdfFont for Type0 (composite/CID) fonts: a variable
// number of bytes per character code, split by the /Encoding CMap's
// codespace ranges into CIDs, widths taken from the descendant font's /W
// array (falling back to /DW), and Unicode decoded through a four-tier
// fallback: the font's /ToUnicode CMap, then the embedded font program's
// own cmap (composed through /CIDToGIDMap), then a width-matched system
// font, then nothing — grounded on original_source's
// PdfCIDFont::decode_char.
type cidFont struct {
	fontCommon
	byteMapping cmap.ByteMapping
	widths      map[uint32]float64 // by CID
	defaultW    float64
	cidToGID    map[uint32]uint32 // nil means CID == GID (Identity)
	fallback    *embeddedCmapFallback
	widthFb     *widthFallback
}

func (f *cidFont) NextCode(data []byte) (uint32, int, bool) {
	cid, n, ok := f.byteMapping.NextCode(data)
	if n == 0 {
		return 0, 0, false
	}
	return cid, n, true
}

func (f *cidFont) Width(cid uint32) (float64, bool) {
	if w, ok := f.widths[cid]; ok {
		return w, true
	}
	return f.defaultW, true
}

func (f *cidFont) Decode(cid uint32) string {
	if s, ok := f.decodeToUnicode(cid); ok {
		return s
	}
	common.Log.Debug("font %s: CID 0x%x not in ToUnicode, trying embedded-cmap fallback", f.name, cid)

	if f.fallback != nil {
		gid := cid
		if f.cidToGID != nil {
			if g, ok := f.cidToGID[cid]; ok {
				gid = g
			} else {
				gid = 0
			}
		}
		if s, ok := f.fallback.runeForGID(gid); ok {
			return s
		}
	}
	common.Log.Debug("font %s: CID 0x%x not in embedded-cmap fallback, trying width fallback", f.name, cid)

	if s, ok := f.widthFb.runeForCID(cid); ok {
		return s
	}
	common.Log.Debug("font %s: CID 0x%x unresolved by every fallback tier", f.name, cid)
	return ""
}

func loadCIDFont(doc *core.Document, dict *core.PdfObjectDictionary, base fontCommon) (PdfFont, error) {
	f := &cidFont{fontCommon: base, widths: map[uint32]float64{}, defaultW: 1000}

	f.byteMapping = resolveEncodingCMap(doc, dict)

	descFonts, ok := core.GetArray(doc, dict.Get("DescendantFonts"))
	if !ok || descFonts.Len() == 0 {
		return f, nil
	}
	desc, ok := core.GetDict(doc, descFonts.Get(0))
	if !ok {
		return f, nil
	}
	if desc2, ok := core.GetDict(doc, desc.Get("FontDescriptor")); ok {
		f.descriptor = desc2
	}
	if dw, ok := core.GetNumberAsFloat(doc, desc.Get("DW")); ok {
		f.defaultW = dw
	}
	if arr, ok := core.GetArray(doc, desc.Get("W")); ok {
		parseCIDWidths(doc, arr, f.widths)
	}
	f.cidToGID = resolveCIDToGIDMap(doc, desc)
	f.fallback = buildEmbeddedCmapFallback(doc, f.descriptor)
	f.widthFb = buildWidthFallback(DefaultSystemFontProvider, f.name, f.widths)
	return f, nil
}

// resolveEncodingCMap builds the byte->CID mapping from a Type0 font's
// /Encoding entry: either the predefined Identity-H/Identity-V name, or an
// embedded CMap stream (ISO 32000-1 §9.7.5.2). A named non-Identity
// predefined CMap (e.g. "UniGB-UCS2-H") cannot be resolved without
// bundling Adobe's registry resources, so it falls back to Identity —
// still usually enough to drive width/NextCode while ToUnicode carries
// the actual text.
func resolveEncodingCMap(doc *core.Document, dict *core.PdfObjectDictionary) cmap.ByteMapping {
	enc := dict.Get("Encoding")
	if name, ok := core.GetName(doc, enc); ok {
		if name != "Identity-H" && name != "Identity-V" {
			common.Log.Debug("font: predefined CMap %q not bundled, using Identity", name)
		}
		return cmap.IdentityByteMapping()
	}
	if stream, ok := core.GetStream(doc, enc); ok {
		if content, err := core.DecodeStream(doc, stream); err == nil {
			m := cmap.ParseByteMapping(content)
			if len(m.Codespace) > 0 {
				return m
			}
		}
	}
	return cmap.IdentityByteMapping()
}

// parseCIDWidths parses a /W array's two run forms (ISO 32000-1 Table 115):
//
//	cFirst [w1 w2 w3 ...]   one width per consecutive code starting at cFirst
//	cFirst cLast w          every code in [cFirst, cLast] gets width w
func parseCIDWidths(doc *core.Document, arr *core.PdfObjectArray, widths map[uint32]float64) {
	i := 0
	for i < arr.Len() {
		first, ok := core.GetNumberAsFloat(doc, arr.Get(i))
		if !ok {
			i++
			continue
		}
		if i+1 >= arr.Len() {
			break
		}
		if sub, ok := core.GetArray(doc, arr.Get(i+1)); ok {
			for j := 0; j < sub.Len(); j++ {
				if w, ok := core.GetNumberAsFloat(doc, sub.Get(j)); ok {
					widths[uint32(first)+uint32(j)] = w
				}
			}
			i += 2
			continue
		}
		if i+2 >= arr.Len() {
			break
		}
		last, lok := core.GetNumberAsFloat(doc, arr.Get(i+1))
		w, wok := core.GetNumberAsFloat(doc, arr.Get(i+2))
		if lok && wok {
			for c := uint32(first); c <= uint32(last); c++ {
				widths[c] = w
			}
		}
		i += 3
	}
}

// resolveCIDToGIDMap parses /CIDToGIDMap: either the Name "Identity"
// (CID==GID, returns nil) or a stream of big-endian uint16 GIDs indexed by
// CID. A GID of 0 (.notdef) is skipped rather than recorded, matching
// original_source: a glyph explicitly mapped to .notdef carries no usable
// outline, so leaving it absent lets the fallback chain try other tiers.
func resolveCIDToGIDMap(doc *core.Document, desc *core.PdfObjectDictionary) map[uint32]uint32 {
	obj := desc.Get("CIDToGIDMap")
	if name, ok := core.GetName(doc, obj); ok && name == "Identity" {
		return nil
	}
	stream, ok := core.GetStream(doc, obj)
	if !ok {
		return nil
	}
	data, err := core.DecodeStream(doc, stream)
	if err != nil {
		return nil
	}
	m := make(map[uint32]uint32, len(data)/2)
	for cid := 0; cid*2+1 < len(data); cid++ {
		gid := uint32(data[cid*2])<<8 | uint32(data[cid*2+1])
		if gid != 0 {
			m[uint32(cid)] = gid
		}
	}
	return m
}
