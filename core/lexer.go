package core

import (
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// lexer is a minimal recursive-descent reader for PDF's object syntax
// (ISO 32000-1 §7.3). It operates directly on an in-memory byte slice —
// PDF files are parsed as a whole as spec §5 notes there are no I/O yield
// points once bytes are in memory.
type lexer struct {
	buf []byte
	pos int
}

func newLexer(buf []byte) *lexer { return &lexer{buf: buf} }

func isWhitespace(b byte) bool {
	switch b {
	case 0x00, 0x09, 0x0A, 0x0C, 0x0D, 0x20:
		return true
	}
	return false
}

func isDelimiter(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (l *lexer) eof() bool { return l.pos >= len(l.buf) }

func (l *lexer) peekByte() byte {
	if l.eof() {
		return 0
	}
	return l.buf[l.pos]
}

func (l *lexer) skipWhitespaceAndComments() {
	for !l.eof() {
		b := l.buf[l.pos]
		if isWhitespace(b) {
			l.pos++
			continue
		}
		if b == '%' {
			for !l.eof() && l.buf[l.pos] != '\n' && l.buf[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		break
	}
}

// readRegularToken reads a run of regular (non-whitespace, non-delimiter)
// characters, e.g. a keyword or the digits of a number.
func (l *lexer) readRegularToken() string {
	start := l.pos
	for !l.eof() && !isWhitespace(l.buf[l.pos]) && !isDelimiter(l.buf[l.pos]) {
		l.pos++
	}
	return string(l.buf[start:l.pos])
}

// parseObject parses one PDF object starting at the current position.
func (l *lexer) parseObject(doc *Document) (PdfObject, error) {
	l.skipWhitespaceAndComments()
	if l.eof() {
		return nil, xerrors.New("unexpected EOF parsing object")
	}
	b := l.peekByte()
	switch {
	case b == '/':
		return l.parseName(), nil
	case b == '(':
		return l.parseLiteralString(), nil
	case b == '[':
		return l.parseArray(doc)
	case b == '<':
		if l.pos+1 < len(l.buf) && l.buf[l.pos+1] == '<' {
			return l.parseDictOrStream(doc)
		}
		return l.parseHexString(), nil
	case b == '+' || b == '-' || b == '.' || (b >= '0' && b <= '9'):
		return l.parseNumberOrReference(doc)
	default:
		tok := l.readRegularToken()
		switch tok {
		case "true":
			v := PdfObjectBool(true)
			return &v, nil
		case "false":
			v := PdfObjectBool(false)
			return &v, nil
		case "null":
			return &PdfObjectNull{}, nil
		default:
			return nil, xerrors.Errorf("unexpected token %q", tok)
		}
	}
}

func (l *lexer) parseName() PdfObject {
	l.pos++ // skip '/'
	var sb strings.Builder
	for !l.eof() {
		b := l.buf[l.pos]
		if isWhitespace(b) || isDelimiter(b) {
			break
		}
		if b == '#' && l.pos+2 < len(l.buf) && isHexDigit(l.buf[l.pos+1]) && isHexDigit(l.buf[l.pos+2]) {
			sb.WriteByte(hexVal(l.buf[l.pos+1])<<4 | hexVal(l.buf[l.pos+2]))
			l.pos += 3
			continue
		}
		sb.WriteByte(b)
		l.pos++
	}
	n := PdfObjectName(sb.String())
	return &n
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}

func (l *lexer) parseLiteralString() PdfObject {
	l.pos++ // skip '('
	var sb strings.Builder
	depth := 1
	for !l.eof() && depth > 0 {
		b := l.buf[l.pos]
		switch b {
		case '\\':
			l.pos++
			if l.eof() {
				break
			}
			e := l.buf[l.pos]
			switch e {
			case 'n':
				sb.WriteByte('\n')
				l.pos++
			case 'r':
				sb.WriteByte('\r')
				l.pos++
			case 't':
				sb.WriteByte('\t')
				l.pos++
			case 'b':
				sb.WriteByte('\b')
				l.pos++
			case 'f':
				sb.WriteByte('\f')
				l.pos++
			case '(', ')', '\\':
				sb.WriteByte(e)
				l.pos++
			case '\r':
				l.pos++
				if !l.eof() && l.buf[l.pos] == '\n' {
					l.pos++
				}
			case '\n':
				l.pos++
			default:
				if e >= '0' && e <= '7' {
					val := 0
					for i := 0; i < 3 && !l.eof() && l.buf[l.pos] >= '0' && l.buf[l.pos] <= '7'; i++ {
						val = val*8 + int(l.buf[l.pos]-'0')
						l.pos++
					}
					sb.WriteByte(byte(val))
				} else {
					sb.WriteByte(e)
					l.pos++
				}
			}
		case '(':
			depth++
			sb.WriteByte(b)
			l.pos++
		case ')':
			depth--
			l.pos++
			if depth > 0 {
				sb.WriteByte(b)
			}
		default:
			sb.WriteByte(b)
			l.pos++
		}
	}
	return &PdfObjectString{val: sb.String()}
}

func (l *lexer) parseHexString() PdfObject {
	l.pos++ // skip '<'
	var hexDigits []byte
	for !l.eof() && l.buf[l.pos] != '>' {
		b := l.buf[l.pos]
		if isHexDigit(b) {
			hexDigits = append(hexDigits, b)
		}
		l.pos++
	}
	if !l.eof() {
		l.pos++ // skip '>'
	}
	if len(hexDigits)%2 == 1 {
		hexDigits = append(hexDigits, '0')
	}
	out := make([]byte, len(hexDigits)/2)
	for i := range out {
		out[i] = hexVal(hexDigits[2*i])<<4 | hexVal(hexDigits[2*i+1])
	}
	return &PdfObjectString{val: string(out), isHex: true}
}

func (l *lexer) parseArray(doc *Document) (PdfObject, error) {
	l.pos++ // skip '['
	arr := MakeArray()
	for {
		l.skipWhitespaceAndComments()
		if l.eof() {
			return nil, xerrors.New("unexpected EOF in array")
		}
		if l.buf[l.pos] == ']' {
			l.pos++
			return arr, nil
		}
		obj, err := l.parseObject(doc)
		if err != nil {
			return nil, err
		}
		arr.Append(obj)
	}
}

func (l *lexer) parseDictOrStream(doc *Document) (PdfObject, error) {
	l.pos += 2 // skip '<<'
	dict := MakeDict()
	for {
		l.skipWhitespaceAndComments()
		if l.eof() {
			return nil, xerrors.New("unexpected EOF in dictionary")
		}
		if l.buf[l.pos] == '>' {
			l.pos++
			if !l.eof() && l.buf[l.pos] == '>' {
				l.pos++
			}
			break
		}
		if l.buf[l.pos] != '/' {
			return nil, xerrors.Errorf("expected name key in dictionary, got %q", l.buf[l.pos])
		}
		key := l.parseName().(*PdfObjectName)
		val, err := l.parseObject(doc)
		if err != nil {
			return nil, err
		}
		dict.Set(*key, val)
	}

	l.skipWhitespaceAndComments()
	if !l.matchKeyword("stream") {
		return dict, nil
	}
	// Per spec, "stream" is followed by CRLF or LF (not bare CR).
	if !l.eof() && l.buf[l.pos] == '\r' {
		l.pos++
	}
	if !l.eof() && l.buf[l.pos] == '\n' {
		l.pos++
	}
	length := l.resolveStreamLength(doc, dict)
	if length < 0 || l.pos+length > len(l.buf) {
		length = l.scanForEndstream()
	}
	data := append([]byte{}, l.buf[l.pos:l.pos+length]...)
	l.pos += length
	l.skipWhitespaceAndComments()
	l.matchKeyword("endstream")
	return &PdfObjectStream{PdfObjectDictionary: dict, Stream: data}, nil
}

func (l *lexer) resolveStreamLength(doc *Document, dict *PdfObjectDictionary) int {
	lenObj := dict.Get("Length")
	if lenObj == nil {
		return -1
	}
	if ref, ok := lenObj.(*PdfObjectReference); ok {
		if doc == nil {
			return -1
		}
		resolved := doc.Resolve(ref)
		if n, ok := resolved.(*PdfObjectInteger); ok {
			return int(*n)
		}
		return -1
	}
	if n, ok := lenObj.(*PdfObjectInteger); ok {
		return int(*n)
	}
	return -1
}

// scanForEndstream is the fallback used when Length is missing, wrong, or
// an unresolved forward reference — scan for the next "endstream" keyword.
func (l *lexer) scanForEndstream() int {
	idx := indexOf(l.buf[l.pos:], []byte("endstream"))
	if idx < 0 {
		return len(l.buf) - l.pos
	}
	end := idx
	// Trim a single trailing EOL that precedes the keyword.
	if end > 0 && l.buf[l.pos+end-1] == '\n' {
		end--
		if end > 0 && l.buf[l.pos+end-1] == '\r' {
			end--
		}
	}
	return end
}

func indexOf(haystack, needle []byte) int {
	n := len(needle)
	for i := 0; i+n <= len(haystack); i++ {
		if string(haystack[i:i+n]) == string(needle) {
			return i
		}
	}
	return -1
}

func (l *lexer) matchKeyword(kw string) bool {
	save := l.pos
	tok := l.readRegularToken()
	if tok == kw {
		return true
	}
	l.pos = save
	return false
}

// parseNumberOrReference disambiguates a bare number from the start of an
// indirect reference `N G R` by speculatively parsing ahead.
func (l *lexer) parseNumberOrReference(doc *Document) (PdfObject, error) {
	start := l.pos
	tok := l.readRegularToken()
	isInt := isIntegerToken(tok)

	if isInt {
		save := l.pos
		l.skipWhitespaceAndComments()
		genStart := l.pos
		genTok := l.readRegularToken()
		if isIntegerToken(genTok) {
			l.skipWhitespaceAndComments()
			if !l.eof() && l.buf[l.pos] == 'R' && (l.pos+1 >= len(l.buf) || isWhitespace(l.buf[l.pos+1]) || isDelimiter(l.buf[l.pos+1])) {
				l.pos++
				objNum, _ := strconv.ParseInt(tok, 10, 64)
				gen, _ := strconv.ParseInt(genTok, 10, 64)
				return &PdfObjectReference{ObjectNumber: objNum, GenerationNumber: gen}, nil
			}
		}
		l.pos = save
		_ = genStart
	}

	n, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		l.pos = start
		return nil, xerrors.Errorf("invalid number %q: %w", tok, err)
	}
	if isInt {
		v := PdfObjectInteger(int64(n))
		return &v, nil
	}
	v := PdfObjectFloat(n)
	return &v, nil
}

func isIntegerToken(tok string) bool {
	if tok == "" {
		return false
	}
	for i, c := range tok {
		if c == '+' || c == '-' {
			if i != 0 {
				return false
			}
			continue
		}
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
