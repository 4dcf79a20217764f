// Package contentstream parses and interprets PDF content streams: the
// operator/operand sequences that paint a page. Parser turns the raw bytes
// into a list of Operations; Processor walks that list maintaining the
// graphics/text state machine ISO 32000-1 §9.4 defines and reports each
// shown glyph to a Sink.
package contentstream

import (
	"bufio"
	"bytes"
	"io"
	"strconv"

	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/core"
)

// Operation is one operator together with the operands that preceded it,
// e.g. "12 0 0 12 72 720 Tm" parses to Operator "Tm", Operands
// [12 0 0 12 72 720].
type Operation struct {
	Operator string
	Operands []core.PdfObject
}

// Parser tokenizes a content stream into a list of Operations, following
// the teacher's ContentStreamParser (contentstream/parser.go): operands
// accumulate until a bare keyword token is hit, which becomes the
// operator closing out that Operation.
type Parser struct {
	r *bufio.Reader
}

// NewParser returns a Parser over content.
func NewParser(content []byte) *Parser {
	return &Parser{r: bufio.NewReader(bytes.NewReader(append(append([]byte{}, content...), '\n')))}
}

// Parse reads every operation in the stream. A trailing malformed operand
// run is dropped with a logged warning rather than failing the whole
// parse, consistent with spec §7's page-level error isolation: a broken
// tail should not lose the text already parsed before it.
func (p *Parser) Parse() []Operation {
	var ops []Operation
	var operands []core.PdfObject
	for {
		obj, operator, err := p.parseObject()
		if err == io.EOF {
			return ops
		}
		if err != nil {
			common.Log.Debug("contentstream: %v, discarding %d pending operand(s)", err, len(operands))
			return ops
		}
		if operator != "" {
			if operator == "BI" {
				p.skipInlineImage()
				operands = nil
				continue
			}
			ops = append(ops, Operation{Operator: operator, Operands: operands})
			operands = nil
			continue
		}
		operands = append(operands, obj)
	}
}

func isWS(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\f' || b == 0
}

func isDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	default:
		return false
	}
}

func (p *Parser) skipSpacesAndComments() error {
	for {
		b, err := p.r.ReadByte()
		if err != nil {
			return err
		}
		if b == '%' {
			for {
				c, err := p.r.ReadByte()
				if err != nil {
					return err
				}
				if c == '\n' || c == '\r' {
					break
				}
			}
			continue
		}
		if !isWS(b) {
			p.r.UnreadByte()
			return nil
		}
	}
}

// parseObject reads the next operand object, or the next bare operator
// keyword (returned via the second result with obj nil).
func (p *Parser) parseObject() (core.PdfObject, string, error) {
	if err := p.skipSpacesAndComments(); err != nil {
		return nil, "", err
	}
	b, err := p.r.ReadByte()
	if err != nil {
		return nil, "", err
	}
	switch {
	case b == '/':
		return p.parseName()
	case b == '(':
		return p.parseLiteralString()
	case b == '<':
		next, _ := p.r.Peek(1)
		if len(next) > 0 && next[0] == '<' {
			p.r.ReadByte()
			return p.parseDict()
		}
		return p.parseHexString()
	case b == '[':
		return p.parseArray()
	case b == '-' || b == '+' || b == '.' || (b >= '0' && b <= '9'):
		p.r.UnreadByte()
		return p.parseNumber()
	default:
		p.r.UnreadByte()
		return p.parseKeyword()
	}
}

func (p *Parser) parseName() (core.PdfObject, string, error) {
	var buf bytes.Buffer
	for {
		bs, err := p.r.Peek(1)
		if err != nil || isWS(bs[0]) || isDelim(bs[0]) {
			break
		}
		b, _ := p.r.ReadByte()
		if b == '#' {
			hex, err := p.r.Peek(2)
			if err == nil && len(hex) == 2 {
				if v, err := strconv.ParseUint(string(hex), 16, 8); err == nil {
					p.r.Discard(2)
					buf.WriteByte(byte(v))
					continue
				}
			}
		}
		buf.WriteByte(b)
	}
	name := core.PdfObjectName(buf.String())
	return &name, "", nil
}

func (p *Parser) parseLiteralString() (core.PdfObject, string, error) {
	var buf bytes.Buffer
	depth := 1
	for depth > 0 {
		b, err := p.r.ReadByte()
		if err != nil {
			return core.MakeString(buf.String()), "", nil
		}
		switch b {
		case '(':
			depth++
			buf.WriteByte(b)
		case ')':
			depth--
			if depth > 0 {
				buf.WriteByte(b)
			}
		case '\\':
			esc, err := p.r.ReadByte()
			if err != nil {
				depth = 0
				continue
			}
			switch esc {
			case 'n':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case '(', ')', '\\':
				buf.WriteByte(esc)
			case '\r':
				if n, _ := p.r.Peek(1); len(n) > 0 && n[0] == '\n' {
					p.r.ReadByte()
				}
			case '\n':
			default:
				if esc >= '0' && esc <= '7' {
					v := int(esc - '0')
					for i := 0; i < 2; i++ {
						n, err := p.r.Peek(1)
						if err != nil || n[0] < '0' || n[0] > '7' {
							break
						}
						p.r.ReadByte()
						v = v*8 + int(n[0]-'0')
					}
					buf.WriteByte(byte(v))
				} else {
					buf.WriteByte(esc)
				}
			}
		default:
			buf.WriteByte(b)
		}
	}
	return core.MakeString(buf.String()), "", nil
}

func (p *Parser) parseHexString() (core.PdfObject, string, error) {
	var hexDigits bytes.Buffer
	for {
		b, err := p.r.ReadByte()
		if err != nil || b == '>' {
			break
		}
		if isWS(b) {
			continue
		}
		hexDigits.WriteByte(b)
	}
	digits := hexDigits.String()
	if len(digits)%2 != 0 {
		digits += "0"
	}
	out := make([]byte, 0, len(digits)/2)
	for i := 0; i+1 < len(digits); i += 2 {
		v, err := strconv.ParseUint(digits[i:i+2], 16, 8)
		if err != nil {
			continue
		}
		out = append(out, byte(v))
	}
	return core.MakeString(string(out)), "", nil
}

func (p *Parser) parseArray() (core.PdfObject, string, error) {
	arr := core.MakeArray()
	for {
		if err := p.skipSpacesAndComments(); err != nil {
			return arr, "", nil
		}
		n, err := p.r.Peek(1)
		if err != nil {
			return arr, "", nil
		}
		if n[0] == ']' {
			p.r.ReadByte()
			return arr, "", nil
		}
		obj, _, err := p.parseObject()
		if err != nil {
			return arr, "", nil
		}
		arr.Append(obj)
	}
}

// parseDict parses a content-stream `<< ... >>` dictionary (used by the
// BDC/DP marked-content operators' properties operand and by inline-image
// headers); values that resolve to operators rather than objects cannot
// occur inside a dict, so any parse failure just truncates the dict.
func (p *Parser) parseDict() (core.PdfObject, string, error) {
	dict := core.MakeDict()
	for {
		if err := p.skipSpacesAndComments(); err != nil {
			return dict, "", nil
		}
		b, err := p.r.ReadByte()
		if err != nil {
			return dict, "", nil
		}
		if b == '>' {
			p.r.ReadByte() // second '>'
			return dict, "", nil
		}
		if b != '/' {
			continue
		}
		keyObj, _, _ := p.parseName()
		key := *keyObj.(*core.PdfObjectName)
		if err := p.skipSpacesAndComments(); err != nil {
			return dict, "", nil
		}
		val, _, err := p.parseObject()
		if err != nil {
			return dict, "", nil
		}
		dict.Set(key, val)
	}
}

func (p *Parser) parseNumber() (core.PdfObject, string, error) {
	var buf bytes.Buffer
	isFloat := false
	for {
		bs, err := p.r.Peek(1)
		if err != nil {
			break
		}
		b := bs[0]
		if b == '.' {
			isFloat = true
		} else if b != '-' && b != '+' && (b < '0' || b > '9') {
			break
		}
		p.r.ReadByte()
		buf.WriteByte(b)
	}
	s := buf.String()
	if isFloat {
		v, _ := strconv.ParseFloat(s, 64)
		return core.MakeFloat(v), "", nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		fv, _ := strconv.ParseFloat(s, 64)
		return core.MakeFloat(fv), "", nil
	}
	return core.MakeInteger(v), "", nil
}

func (p *Parser) parseKeyword() (core.PdfObject, string, error) {
	var buf bytes.Buffer
	for {
		bs, err := p.r.Peek(1)
		if err != nil || isWS(bs[0]) || isDelim(bs[0]) {
			break
		}
		b, _ := p.r.ReadByte()
		buf.WriteByte(b)
	}
	kw := buf.String()
	switch kw {
	case "true":
		b := core.PdfObjectBool(true)
		return &b, "", nil
	case "false":
		b := core.PdfObjectBool(false)
		return &b, "", nil
	case "null":
		return &core.PdfObjectNull{}, "", nil
	case "":
		return nil, "", io.EOF
	default:
		return nil, kw, nil
	}
}

// skipInlineImage discards an inline image's dictionary and binary data
// (BI ... ID ... EI). Image extraction is out of scope, so the data is
// thrown away rather than decoded.
func (p *Parser) skipInlineImage() {
	for {
		_, operator, err := p.parseObject()
		if err != nil || operator == "ID" {
			break
		}
	}
	// One whitespace byte follows ID before the raw data per spec; scan
	// for "EI" bounded by whitespace, the same heuristic real-world
	// content streams rely on since image data has no other delimiter.
	prev, _ := p.r.ReadByte()
	for {
		data, _ := p.r.Peek(3)
		if len(data) < 2 {
			return
		}
		if isWS(prev) && data[0] == 'E' && data[1] == 'I' &&
			(len(data) < 3 || isWS(data[2]) || isDelim(data[2])) {
			p.r.Discard(2)
			return
		}
		prev, _ = p.r.ReadByte()
	}
}
