// Package core implements the PDF object model this module reads: the
// primitive object types, a lexer/parser that builds them from bytes, the
// cross-reference table, stream filters, and the standard security
// handler. spec.md treats this as "an external PDF object library"; here
// it is vendored in because this module has no external PDF dependency to
// delegate to.
package core

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
)

// PdfObject is implemented by every primitive PDF object type.
type PdfObject interface {
	// String returns a human-readable representation (for debugging/logging).
	String() string
	// WriteString returns the PDF syntax representation of the object.
	WriteString() string
}

// PdfObjectBool is the PDF boolean primitive.
type PdfObjectBool bool

// PdfObjectInteger is the PDF integer numeric primitive.
type PdfObjectInteger int64

// PdfObjectFloat is the PDF real numeric primitive.
type PdfObjectFloat float64

// PdfObjectString is the PDF string primitive — either a literal `(...)`
// string or a hex `<...>` string; both decode to a raw byte sequence.
type PdfObjectString struct {
	val   string
	isHex bool
}

// PdfObjectName is the PDF name primitive, e.g. `/Helvetica`.
type PdfObjectName string

// PdfObjectArray is the PDF array primitive.
type PdfObjectArray struct {
	vec []PdfObject
}

// PdfObjectDictionary is the PDF dictionary primitive. Key order is
// preserved because some PDF producers rely on encountering Differences
// arrays, CMap ranges etc. in file order for debugging, though this
// module does not depend on it for correctness.
type PdfObjectDictionary struct {
	dict map[PdfObjectName]PdfObject
	keys []PdfObjectName
}

// PdfObjectNull is the PDF null primitive.
type PdfObjectNull struct{}

// PdfObjectReference is an indirect reference `n g R`.
type PdfObjectReference struct {
	ObjectNumber     int64
	GenerationNumber int64
}

// PdfIndirectObject wraps an object that was defined with `n g obj ... endobj`.
type PdfIndirectObject struct {
	PdfObjectReference
	PdfObject
}

// PdfObjectStream is a stream object: a dictionary plus raw (still
// filter-encoded) bytes. Use DecodeStream to get the decoded content.
type PdfObjectStream struct {
	PdfObjectReference
	*PdfObjectDictionary
	Stream []byte
}

// MakeDict creates an empty dictionary.
func MakeDict() *PdfObjectDictionary {
	return &PdfObjectDictionary{dict: map[PdfObjectName]PdfObject{}}
}

// MakeName creates a PdfObjectName.
func MakeName(s string) *PdfObjectName {
	n := PdfObjectName(s)
	return &n
}

// MakeInteger creates a PdfObjectInteger.
func MakeInteger(val int64) *PdfObjectInteger {
	n := PdfObjectInteger(val)
	return &n
}

// MakeFloat creates a PdfObjectFloat.
func MakeFloat(val float64) *PdfObjectFloat {
	n := PdfObjectFloat(val)
	return &n
}

// MakeString creates a literal PdfObjectString.
func MakeString(s string) *PdfObjectString {
	return &PdfObjectString{val: s}
}

// MakeArray creates a PdfObjectArray from the given objects.
func MakeArray(objects ...PdfObject) *PdfObjectArray {
	return &PdfObjectArray{vec: append([]PdfObject{}, objects...)}
}

func (bo *PdfObjectBool) String() string { return fmt.Sprintf("%v", bool(*bo)) }
func (bo *PdfObjectBool) WriteString() string {
	if bool(*bo) {
		return "true"
	}
	return "false"
}

func (io_ *PdfObjectInteger) String() string      { return strconv.FormatInt(int64(*io_), 10) }
func (io_ *PdfObjectInteger) WriteString() string { return io_.String() }

func (fo *PdfObjectFloat) String() string      { return strconv.FormatFloat(float64(*fo), 'f', -1, 64) }
func (fo *PdfObjectFloat) WriteString() string { return fo.String() }

// Str returns the decoded byte sequence of the string object.
func (so *PdfObjectString) Str() string { return so.val }

// Bytes returns the raw bytes of the string object.
func (so *PdfObjectString) Bytes() []byte { return []byte(so.val) }

func (so *PdfObjectString) String() string { return so.val }
func (so *PdfObjectString) WriteString() string {
	if so.isHex {
		return "<" + hex.EncodeToString([]byte(so.val)) + ">"
	}
	var b strings.Builder
	b.WriteByte('(')
	for i := 0; i < len(so.val); i++ {
		c := so.val[i]
		switch c {
		case '(', ')', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte(')')
	return b.String()
}

func (name *PdfObjectName) String() string      { return string(*name) }
func (name *PdfObjectName) WriteString() string { return "/" + string(*name) }

func (array *PdfObjectArray) String() string {
	var parts []string
	for _, o := range array.vec {
		if o == nil {
			parts = append(parts, "<nil>")
			continue
		}
		parts = append(parts, o.String())
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (array *PdfObjectArray) WriteString() string {
	var parts []string
	for _, o := range array.vec {
		parts = append(parts, o.WriteString())
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// Elements returns the array's elements.
func (array *PdfObjectArray) Elements() []PdfObject { return array.vec }

// Len returns the number of elements in the array.
func (array *PdfObjectArray) Len() int { return len(array.vec) }

// Get returns the i'th element, or nil if out of range.
func (array *PdfObjectArray) Get(i int) PdfObject {
	if i < 0 || i >= len(array.vec) {
		return nil
	}
	return array.vec[i]
}

// Append adds an object to the array.
func (array *PdfObjectArray) Append(obj PdfObject) { array.vec = append(array.vec, obj) }

func (d *PdfObjectDictionary) String() string {
	var parts []string
	for _, k := range d.keys {
		parts = append(parts, string(k)+": "+d.dict[k].String())
	}
	return "Dict(" + strings.Join(parts, ", ") + ")"
}

func (d *PdfObjectDictionary) WriteString() string {
	var b strings.Builder
	b.WriteString("<<")
	for _, k := range d.keys {
		b.WriteString("/" + string(k) + " ")
		b.WriteString(d.dict[k].WriteString())
		b.WriteByte(' ')
	}
	b.WriteString(">>")
	return b.String()
}

// Set sets key to obj, preserving first-seen key order.
func (d *PdfObjectDictionary) Set(key PdfObjectName, obj PdfObject) {
	if d.dict == nil {
		d.dict = map[PdfObjectName]PdfObject{}
	}
	if _, ok := d.dict[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.dict[key] = obj
}

// Get returns the raw (possibly indirect-reference) value for key, or nil.
func (d *PdfObjectDictionary) Get(key PdfObjectName) PdfObject {
	if d == nil || d.dict == nil {
		return nil
	}
	return d.dict[key]
}

// Keys returns the dictionary's keys in file order.
func (d *PdfObjectDictionary) Keys() []PdfObjectName { return d.keys }

func (n *PdfObjectNull) String() string      { return "null" }
func (n *PdfObjectNull) WriteString() string { return "null" }

func (ref *PdfObjectReference) String() string {
	return fmt.Sprintf("Ref(%d %d)", ref.ObjectNumber, ref.GenerationNumber)
}
func (ref *PdfObjectReference) WriteString() string {
	return fmt.Sprintf("%d %d R", ref.ObjectNumber, ref.GenerationNumber)
}

func (stream *PdfObjectStream) String() string {
	return fmt.Sprintf("Stream(%d bytes)", len(stream.Stream))
}
func (stream *PdfObjectStream) WriteString() string { return stream.PdfObjectDictionary.WriteString() }
