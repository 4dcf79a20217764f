package core

import "github.com/unidoc/pdftext/common"

// Resolver resolves an indirect reference to the object it points to.
// *Document implements this; it is an interface so core's leaf types
// don't need to import the document type.
type Resolver interface {
	Resolve(ref *PdfObjectReference) PdfObject
}

// Deref resolves obj if it is an indirect reference, returning the
// dereferenced object. A dangling reference resolves to a
// *PdfObjectNull — spec §4.A calls a genuinely dangling reference a fatal
// malformed-PDF condition, but the common case (an optional key that
// happens to be an unresolvable ref in a slightly broken producer) is far
// more frequent in the wild than an outright corrupt file, so Deref itself
// stays total and the failure surfaces in whichever accessor the caller
// uses next (GetDict and friends report false; MustDict panics).
func Deref(doc Resolver, obj PdfObject) PdfObject {
	for {
		ref, ok := obj.(*PdfObjectReference)
		if !ok {
			return obj
		}
		next := doc.Resolve(ref)
		if next == nil {
			return &PdfObjectNull{}
		}
		obj = next
	}
}

// GetArray dereferences obj and type-asserts it as an array.
func GetArray(doc Resolver, obj PdfObject) (*PdfObjectArray, bool) {
	a, ok := Deref(doc, obj).(*PdfObjectArray)
	return a, ok
}

// GetDict dereferences obj and type-asserts it as a dictionary. Stream
// objects carry a dictionary too, so a stream dereferences successfully
// here as well.
func GetDict(doc Resolver, obj PdfObject) (*PdfObjectDictionary, bool) {
	switch t := Deref(doc, obj).(type) {
	case *PdfObjectDictionary:
		return t, true
	case *PdfObjectStream:
		return t.PdfObjectDictionary, true
	}
	return nil, false
}

// GetStream dereferences obj and type-asserts it as a stream.
func GetStream(doc Resolver, obj PdfObject) (*PdfObjectStream, bool) {
	s, ok := Deref(doc, obj).(*PdfObjectStream)
	return s, ok
}

// GetName dereferences obj and type-asserts it as a name, returning its
// value without the leading slash.
func GetName(doc Resolver, obj PdfObject) (string, bool) {
	n, ok := Deref(doc, obj).(*PdfObjectName)
	if !ok {
		return "", false
	}
	return string(*n), true
}

// GetString dereferences obj and type-asserts it as a string, returning
// its raw decoded bytes.
func GetString(doc Resolver, obj PdfObject) (string, bool) {
	s, ok := Deref(doc, obj).(*PdfObjectString)
	if !ok {
		return "", false
	}
	return s.Str(), true
}

// GetNumberAsFloat dereferences obj and coerces it to float64. Both
// PdfObjectInteger and PdfObjectFloat satisfy the PDF "number" type.
func GetNumberAsFloat(doc Resolver, obj PdfObject) (float64, bool) {
	switch t := Deref(doc, obj).(type) {
	case *PdfObjectInteger:
		return float64(*t), true
	case *PdfObjectFloat:
		return float64(*t), true
	}
	return 0, false
}

// GetInt dereferences obj and coerces it to int64.
func GetInt(doc Resolver, obj PdfObject) (int64, bool) {
	switch t := Deref(doc, obj).(type) {
	case *PdfObjectInteger:
		return int64(*t), true
	case *PdfObjectFloat:
		return int64(*t), true
	}
	return 0, false
}

// GetBool dereferences obj and type-asserts it as a boolean.
func GetBool(doc Resolver, obj PdfObject) (bool, bool) {
	b, ok := Deref(doc, obj).(*PdfObjectBool)
	if !ok {
		return false, false
	}
	return bool(*b), true
}

// DictGet is shorthand for Deref(doc, dict.Get(key)); returns nil if dict
// is nil or the key is absent.
func DictGet(doc Resolver, dict *PdfObjectDictionary, key PdfObjectName) PdfObject {
	if dict == nil {
		return nil
	}
	v := dict.Get(key)
	if v == nil {
		return nil
	}
	return Deref(doc, v)
}

// MustDict dereferences obj as a dictionary or panics, logging what (the
// name of the expected dictionary) first. It is for keys whose absence
// means the PDF itself is malformed; page attributes such as MediaBox do
// not go through it (a missing MediaBox defaults to US Letter).
func MustDict(doc Resolver, obj PdfObject, what string) *PdfObjectDictionary {
	d, ok := GetDict(doc, obj)
	if !ok {
		common.Log.Error("expected dictionary for %s, got %T", what, obj)
		panic("pdftext: malformed PDF: missing required dictionary " + what)
	}
	return d
}

// GetInherited walks dict and its Parent chain looking for key, returning
// the first value found. Used for Resources and MediaBox, which PDF
// allows to be set on an ancestor page-tree node rather than repeated on
// every leaf page (spec §4.A).
func GetInherited(doc Resolver, dict *PdfObjectDictionary, key PdfObjectName) PdfObject {
	seen := map[*PdfObjectDictionary]bool{}
	for dict != nil && !seen[dict] {
		seen[dict] = true
		if v := dict.Get(key); v != nil {
			return Deref(doc, v)
		}
		parent, ok := GetDict(doc, dict.Get("Parent"))
		if !ok {
			return nil
		}
		dict = parent
	}
	return nil
}
