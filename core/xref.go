package core

import (
	"bytes"
	"regexp"
	"sort"
	"strconv"

	"github.com/unidoc/pdftext/common"
	"golang.org/x/xerrors"
)

var (
	reStartXref     = regexp.MustCompile(`startx?ref\s*(\d+)`)
	reIndirectObj   = regexp.MustCompile(`(\d+)\s+(\d+)\s+obj`)
	reXrefSubsecHdr = regexp.MustCompile(`^\s*(\d+)\s+(\d+)\s*\r?\n?`)
	reXrefEntryLine = regexp.MustCompile(`(\d{10})\s+(\d{5})\s+([nf])`)
)

// xrefEntry locates one object: either directly at a byte offset, or
// inside an object stream (compressed cross-reference, PDF 1.5+).
type xrefEntry struct {
	offset       int64
	inStream     bool
	streamObjNum int64
	indexInStrm  int
}

// Document is a parsed PDF object graph: the set of indirect objects
// reachable from the trailer, plus decryption state. It implements
// core.Resolver.
type Document struct {
	buf     []byte
	xrefs   map[int64]xrefEntry
	trailer *PdfObjectDictionary
	cache   map[int64]PdfObject
	crypt   *Decryptor

	objStmCache map[int64]*objStm
}

type objStm struct {
	offsets []int64 // offset within decoded stream, indexed by position
	objNums []int64
	data    []byte
}

// LoadDocument parses buf into a Document.
func LoadDocument(buf []byte) (*Document, error) {
	doc := &Document{
		buf:         buf,
		xrefs:       map[int64]xrefEntry{},
		cache:       map[int64]PdfObject{},
		objStmCache: map[int64]*objStm{},
	}
	if err := doc.loadXrefChain(); err != nil {
		common.Log.Warning("xref chain parse failed (%v), falling back to linear object scan", err)
		doc.rebuildXrefByScanning()
	}
	if doc.trailer == nil || doc.trailer.Get("Root") == nil {
		doc.rebuildXrefByScanning()
		doc.recoverTrailer()
	}
	return doc, nil
}

// loadXrefChain follows startxref -> xref section -> /Prev (and hybrid
// /XRefStm) links, merging trailers and entries (earlier-seen entries win,
// matching the PDF spec's "most recent section takes precedence" rule
// since we walk newest-to-oldest).
func (doc *Document) loadXrefChain() error {
	m := reStartXref.FindSubmatch(lastBytes(doc.buf, 2048))
	if m == nil {
		return xerrors.New("no startxref found")
	}
	offset, _ := strconv.ParseInt(string(m[1]), 10, 64)

	seen := map[int64]bool{}
	for offset != 0 && !seen[offset] {
		seen[offset] = true
		if offset < 0 || offset >= int64(len(doc.buf)) {
			return xerrors.Errorf("xref offset %d out of range", offset)
		}
		trailer, prev, xrefStm, err := doc.parseXrefSectionAt(offset)
		if err != nil {
			return err
		}
		if doc.trailer == nil {
			doc.trailer = trailer
		} else {
			mergeTrailer(doc.trailer, trailer)
		}
		if xrefStm != 0 && !seen[xrefStm] {
			seen[xrefStm] = true
			if _, _, _, err := doc.parseXrefSectionAt(xrefStm); err != nil {
				common.Log.Warning("hybrid XRefStm parse failed: %v", err)
			}
		}
		offset = prev
	}
	return nil
}

func mergeTrailer(dst, src *PdfObjectDictionary) {
	for _, k := range src.Keys() {
		if dst.Get(k) == nil {
			dst.Set(k, src.Get(k))
		}
	}
}

// parseXrefSectionAt parses either a classic "xref" table + trailer, or a
// cross-reference stream object, at offset. Returns the section's
// trailer, the /Prev offset (0 if absent), and the /XRefStm offset for
// hybrid-reference files (0 if absent).
func (doc *Document) parseXrefSectionAt(offset int64) (*PdfObjectDictionary, int64, int64, error) {
	l := newLexer(doc.buf)
	l.pos = int(offset)
	l.skipWhitespaceAndComments()

	save := l.pos
	if l.matchKeyword("xref") {
		return doc.parseClassicXref(l)
	}
	l.pos = save

	// Cross-reference stream: "N G obj << ... >> stream ... endstream".
	if !reIndirectObj.Match(doc.buf[l.pos:min(l.pos+64, len(doc.buf))]) {
		return nil, 0, 0, xerrors.New("expected xref table or xref stream")
	}
	l.readRegularToken() // object number
	l.skipWhitespaceAndComments()
	l.readRegularToken() // generation
	l.skipWhitespaceAndComments()
	l.matchKeyword("obj")
	obj, err := l.parseObject(doc)
	if err != nil {
		return nil, 0, 0, err
	}
	stream, ok := obj.(*PdfObjectStream)
	if !ok {
		return nil, 0, 0, xerrors.New("xref stream object is not a stream")
	}
	return doc.parseXrefStream(stream)
}

func (doc *Document) parseClassicXref(l *lexer) (*PdfObjectDictionary, int64, int64, error) {
	for {
		l.skipWhitespaceAndComments()
		save := l.pos
		if l.matchKeyword("trailer") {
			l.skipWhitespaceAndComments()
			obj, err := l.parseObject(doc)
			if err != nil {
				return nil, 0, 0, err
			}
			trailer, ok := obj.(*PdfObjectDictionary)
			if !ok {
				return nil, 0, 0, xerrors.New("trailer is not a dictionary")
			}
			prev := int64(0)
			if n, ok := GetInt(doc, trailer.Get("Prev")); ok {
				prev = n
			}
			xrefStm := int64(0)
			if n, ok := GetInt(doc, trailer.Get("XRefStm")); ok {
				xrefStm = n
			}
			return trailer, prev, xrefStm, nil
		}
		l.pos = save
		hdr := reXrefSubsecHdr.FindSubmatch(doc.buf[l.pos:min(l.pos+40, len(doc.buf))])
		if hdr == nil {
			return nil, 0, 0, xerrors.New("expected xref subsection header or trailer")
		}
		l.pos += len(hdr[0])
		first, _ := strconv.ParseInt(string(hdr[1]), 10, 64)
		count, _ := strconv.ParseInt(string(hdr[2]), 10, 64)
		for i := int64(0); i < count; i++ {
			line := doc.buf[l.pos:min(l.pos+20, len(doc.buf))]
			em := reXrefEntryLine.FindSubmatch(line)
			l.pos += 20
			if em == nil {
				continue
			}
			off, _ := strconv.ParseInt(string(em[1]), 10, 64)
			if string(em[3]) == "n" {
				objNum := first + i
				if _, exists := doc.xrefs[objNum]; !exists {
					doc.xrefs[objNum] = xrefEntry{offset: off}
				}
			}
		}
	}
}

func (doc *Document) parseXrefStream(stream *PdfObjectStream) (*PdfObjectDictionary, int64, int64, error) {
	dict := stream.PdfObjectDictionary
	data, err := DecodeStream(doc, stream)
	if err != nil {
		return nil, 0, 0, err
	}
	wArr, ok := GetArray(doc, dict.Get("W"))
	if !ok || wArr.Len() != 3 {
		return nil, 0, 0, xerrors.New("xref stream missing /W")
	}
	w := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, _ := GetInt(doc, wArr.Get(i))
		w[i] = int(n)
	}
	recLen := w[0] + w[1] + w[2]

	var index []int64
	if idxArr, ok := GetArray(doc, dict.Get("Index")); ok {
		for i := 0; i < idxArr.Len(); i++ {
			n, _ := GetInt(doc, idxArr.Get(i))
			index = append(index, n)
		}
	} else {
		size, _ := GetInt(doc, dict.Get("Size"))
		index = []int64{0, size}
	}

	pos := 0
	for s := 0; s+1 < len(index); s += 2 {
		first, count := index[s], index[s+1]
		for i := int64(0); i < count; i++ {
			if pos+recLen > len(data) {
				break
			}
			rec := data[pos : pos+recLen]
			pos += recLen
			objNum := first + i
			if _, exists := doc.xrefs[objNum]; exists {
				continue
			}
			typ := int64(1)
			if w[0] > 0 {
				typ = beInt(rec[:w[0]])
			}
			f2 := beInt(rec[w[0] : w[0]+w[1]])
			f3 := beInt(rec[w[0]+w[1] : w[0]+w[1]+w[2]])
			switch typ {
			case 0:
				// free entry
			case 1:
				doc.xrefs[objNum] = xrefEntry{offset: f2}
			case 2:
				doc.xrefs[objNum] = xrefEntry{inStream: true, streamObjNum: f2, indexInStrm: int(f3)}
			}
		}
	}

	prev := int64(0)
	if n, ok := GetInt(doc, dict.Get("Prev")); ok {
		prev = n
	}
	return dict, prev, 0, nil
}

func beInt(b []byte) int64 {
	var v int64
	for _, c := range b {
		v = v<<8 | int64(c)
	}
	return v
}

// rebuildXrefByScanning linearly scans the whole buffer for "N G obj"
// markers, the classic repair strategy for a broken or missing xref
// table (spec §13's "linear object-scan fallback").
func (doc *Document) rebuildXrefByScanning() {
	doc.xrefs = map[int64]xrefEntry{}
	for _, loc := range reIndirectObj.FindAllSubmatchIndex(doc.buf, -1) {
		objNum, _ := strconv.ParseInt(string(doc.buf[loc[2]:loc[3]]), 10, 64)
		doc.xrefs[objNum] = xrefEntry{offset: int64(loc[0])}
	}
}

// recoverTrailer is used when the trailer (or its /Root) could not be
// found via startxref: scan for a "trailer" keyword, or, failing that,
// for an object whose dictionary has /Type /Catalog.
func (doc *Document) recoverTrailer() {
	if idx := bytes.LastIndex(doc.buf, []byte("trailer")); idx >= 0 {
		l := newLexer(doc.buf)
		l.pos = idx + len("trailer")
		l.skipWhitespaceAndComments()
		if obj, err := l.parseObject(doc); err == nil {
			if d, ok := obj.(*PdfObjectDictionary); ok {
				if doc.trailer == nil {
					doc.trailer = d
				} else {
					mergeTrailer(doc.trailer, d)
				}
			}
		}
	}
	if doc.trailer != nil && doc.trailer.Get("Root") != nil {
		return
	}
	var objNums []int64
	for n := range doc.xrefs {
		objNums = append(objNums, n)
	}
	sort.Slice(objNums, func(i, j int) bool { return objNums[i] < objNums[j] })
	for _, n := range objNums {
		obj := doc.getObject(n)
		d, ok := obj.(*PdfObjectDictionary)
		if !ok {
			continue
		}
		if t, ok := GetName(doc, d.Get("Type")); ok && t == "Catalog" {
			if doc.trailer == nil {
				doc.trailer = MakeDict()
			}
			doc.trailer.Set("Root", &PdfObjectReference{ObjectNumber: n})
			return
		}
	}
}

func lastBytes(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[len(b)-n:]
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
