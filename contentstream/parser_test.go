package contentstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unidoc/pdftext/core"
)

func TestParseSimpleOperation(t *testing.T) {
	ops := NewParser([]byte(`12 0 0 12 72 720 Tm`)).Parse()
	if assert.Len(t, ops, 1) {
		assert.Equal(t, "Tm", ops[0].Operator)
		assert.Len(t, ops[0].Operands, 6)
		n, ok := core.GetNumberAsFloat(nil, ops[0].Operands[4])
		assert.True(t, ok)
		assert.Equal(t, 72.0, n)
	}
}

func TestParseMultipleOperations(t *testing.T) {
	ops := NewParser([]byte(`q 1 0 0 1 0 0 cm BT /F1 12 Tf (Hello) Tj ET Q`)).Parse()
	var names []string
	for _, op := range ops {
		names = append(names, op.Operator)
	}
	assert.Equal(t, []string{"q", "cm", "BT", "Tf", "Tj", "ET", "Q"}, names)
}

func TestParseLiteralStringEscapes(t *testing.T) {
	ops := NewParser([]byte(`(Line1\nLine2\)paren\(s\\) Tj`)).Parse()
	if assert.Len(t, ops, 1) {
		s, ok := core.GetString(nil, ops[0].Operands[0])
		assert.True(t, ok)
		assert.Equal(t, "Line1\nLine2)paren(s\\", s)
	}
}

func TestParseLiteralStringBalancedParens(t *testing.T) {
	ops := NewParser([]byte(`(nested (parens) work) Tj`)).Parse()
	if assert.Len(t, ops, 1) {
		s, _ := core.GetString(nil, ops[0].Operands[0])
		assert.Equal(t, "nested (parens) work", s)
	}
}

func TestParseHexString(t *testing.T) {
	ops := NewParser([]byte(`<48656C6C6F> Tj`)).Parse()
	if assert.Len(t, ops, 1) {
		s, ok := core.GetString(nil, ops[0].Operands[0])
		assert.True(t, ok)
		assert.Equal(t, "Hello", s)
	}
}

func TestParseHexStringOddDigitsPadded(t *testing.T) {
	ops := NewParser([]byte(`<48656C6C6F1> Tj`)).Parse()
	if assert.Len(t, ops, 1) {
		s, _ := core.GetString(nil, ops[0].Operands[0])
		assert.Equal(t, []byte("Hello\x10"), []byte(s))
	}
}

func TestParseArrayForTJ(t *testing.T) {
	ops := NewParser([]byte(`[(A) -120 (B)] TJ`)).Parse()
	if assert.Len(t, ops, 1) {
		arr, ok := ops[0].Operands[0].(*core.PdfObjectArray)
		assert.True(t, ok)
		assert.Equal(t, 3, arr.Len())
	}
}

func TestParseNameWithHexEscape(t *testing.T) {
	ops := NewParser([]byte(`/Name#20With#20Spaces 1 Tf`)).Parse()
	if assert.Len(t, ops, 1) {
		name, ok := core.GetName(nil, ops[0].Operands[0])
		assert.True(t, ok)
		assert.Equal(t, "Name With Spaces", name)
	}
}

func TestParseSkipsInlineImage(t *testing.T) {
	content := append([]byte("BI /W 1 /H 1 /BPC 8 ID "), append([]byte{0x01, 0x02, 0x03}, []byte(" EI\nq Q")...)...)
	ops := NewParser(content).Parse()
	var names []string
	for _, op := range ops {
		names = append(names, op.Operator)
	}
	assert.Equal(t, []string{"q", "Q"}, names)
}

func TestParseBDCWithPropertiesDict(t *testing.T) {
	ops := NewParser([]byte(`/OC /MC0 BDC q Q EMC`)).Parse()
	var names []string
	for _, op := range ops {
		names = append(names, op.Operator)
	}
	assert.Equal(t, []string{"BDC", "q", "Q", "EMC"}, names)
}

func TestParseNumberIntVsFloat(t *testing.T) {
	ops := NewParser([]byte(`1 2.5 -3 Tm`)).Parse()
	if assert.Len(t, ops, 1) {
		_, isInt := ops[0].Operands[0].(*core.PdfObjectInteger)
		assert.True(t, isInt)
		_, isFloat := ops[0].Operands[1].(*core.PdfObjectFloat)
		assert.True(t, isFloat)
	}
}
