package core

import (
	"io"
	"os"

	"github.com/unidoc/pdftext/common"
)

// LoadFromBytes parses a complete in-memory PDF byte stream.
func LoadFromBytes(data []byte) (*Document, error) {
	doc, err := LoadDocument(data)
	if err != nil {
		return nil, NewLoadError("load document", err)
	}
	return doc, nil
}

// LoadFromPath reads and parses the PDF file at path.
func LoadFromPath(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, NewLoadError("read file", err)
	}
	return LoadFromBytes(data)
}

// LoadFromReader reads all of r and parses the result — matching
// original_source's PdfExtractor::from_reader, which has no streaming
// fast path either since xref tables live at the end of the file.
func LoadFromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, NewLoadError("read stream", err)
	}
	return LoadFromBytes(data)
}

// GetTrailer returns the document's trailer dictionary.
func (doc *Document) GetTrailer() *PdfObjectDictionary { return doc.trailer }

// Resolve implements Resolver: returns the object referenced by ref, or
// nil if it cannot be found (a dangling reference).
func (doc *Document) Resolve(ref *PdfObjectReference) PdfObject {
	return doc.getObject(ref.ObjectNumber)
}

func (doc *Document) getObject(objNum int64) PdfObject {
	if obj, ok := doc.cache[objNum]; ok {
		return obj
	}
	entry, ok := doc.xrefs[objNum]
	if !ok {
		return nil
	}
	var obj PdfObject
	if entry.inStream {
		obj = doc.getObjectFromStream(entry.streamObjNum, entry.indexInStrm)
	} else {
		obj = doc.parseObjectAt(entry.offset)
	}
	if obj == nil {
		obj = &PdfObjectNull{}
	}
	doc.cache[objNum] = doc.decryptIfNeeded(objNum, obj)
	return doc.cache[objNum]
}

func (doc *Document) parseObjectAt(offset int64) PdfObject {
	l := newLexer(doc.buf)
	l.pos = int(offset)
	l.skipWhitespaceAndComments()
	l.readRegularToken() // object number
	l.skipWhitespaceAndComments()
	l.readRegularToken() // generation
	l.skipWhitespaceAndComments()
	if !l.matchKeyword("obj") {
		common.Log.Warning("object at offset %d missing 'obj' keyword", offset)
	}
	obj, err := l.parseObject(doc)
	if err != nil {
		common.Log.Warning("failed to parse object at offset %d: %v", offset, err)
		return nil
	}
	return obj
}

func (doc *Document) getObjectFromStream(streamObjNum int64, index int) PdfObject {
	stm, ok := doc.objStmCache[streamObjNum]
	if !ok {
		raw := doc.getObject(streamObjNum)
		streamObj, isStream := raw.(*PdfObjectStream)
		if !isStream {
			return nil
		}
		data, err := DecodeStream(doc, streamObj)
		if err != nil {
			common.Log.Warning("failed to decode object stream %d: %v", streamObjNum, err)
			return nil
		}
		n, _ := GetInt(doc, streamObj.Get("N"))
		first, _ := GetInt(doc, streamObj.Get("First"))
		l := newLexer(data)
		stm = &objStm{data: data}
		for i := int64(0); i < n; i++ {
			l.skipWhitespaceAndComments()
			objNumTok := l.readRegularToken()
			l.skipWhitespaceAndComments()
			offTok := l.readRegularToken()
			objNum := parseInt64(objNumTok)
			off := parseInt64(offTok)
			stm.objNums = append(stm.objNums, objNum)
			stm.offsets = append(stm.offsets, first+off)
		}
		doc.objStmCache[streamObjNum] = stm
	}
	if index < 0 || index >= len(stm.offsets) {
		return nil
	}
	l := newLexer(stm.data)
	l.pos = int(stm.offsets[index])
	obj, err := l.parseObject(doc)
	if err != nil {
		common.Log.Warning("failed to parse compressed object %d in stream %d: %v", index, streamObjNum, err)
		return nil
	}
	return obj
}

func parseInt64(s string) int64 {
	var v int64
	neg := false
	for i, c := range s {
		if i == 0 && c == '-' {
			neg = true
			continue
		}
		if c < '0' || c > '9' {
			break
		}
		v = v*10 + int64(c-'0')
	}
	if neg {
		v = -v
	}
	return v
}
