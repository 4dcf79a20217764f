package core

import (
	"bytes"
	"compress/zlib"
	"encoding/ascii85"
	"encoding/hex"
	"io"

	"github.com/unidoc/pdftext/common"
	"golang.org/x/xerrors"
)

// DecodeStream returns stream's decoded content, applying each filter
// named in /Filter (a single name or an array, applied in order) with
// its corresponding /DecodeParms. If decompression fails, the raw
// (still-encoded) bytes are returned instead of an error — matching
// original_source's utils.rs::get_contents, which treats a broken filter
// chain as "best effort" rather than fatal; the caller (normally
// contentstream processing a page) will then typically fail to tokenize
// meaningfully and spec §7 has that page skipped, not the whole document.
func DecodeStream(doc Resolver, stream *PdfObjectStream) ([]byte, error) {
	data := stream.Stream

	filters, parms, err := filterChain(doc, stream.PdfObjectDictionary)
	if err != nil {
		return data, nil
	}
	for i, name := range filters {
		var p *PdfObjectDictionary
		if i < len(parms) {
			p = parms[i]
		}
		decoded, err := applyFilter(name, data, doc, p)
		if err != nil {
			common.Log.Warning("stream filter %s failed: %v; returning raw bytes", name, err)
			return data, nil
		}
		data = decoded
	}
	return data, nil
}

func filterChain(doc Resolver, dict *PdfObjectDictionary) ([]string, []*PdfObjectDictionary, error) {
	filterObj := dict.Get("Filter")
	if filterObj == nil {
		return nil, nil, nil
	}
	var names []string
	switch f := Deref(doc, filterObj).(type) {
	case *PdfObjectName:
		names = []string{string(*f)}
	case *PdfObjectArray:
		for i := 0; i < f.Len(); i++ {
			if n, ok := GetName(doc, f.Get(i)); ok {
				names = append(names, n)
			}
		}
	default:
		return nil, nil, xerrors.New("malformed /Filter")
	}

	var parms []*PdfObjectDictionary
	if parmsObj := dict.Get("DecodeParms"); parmsObj != nil {
		switch p := Deref(doc, parmsObj).(type) {
		case *PdfObjectDictionary:
			parms = []*PdfObjectDictionary{p}
		case *PdfObjectArray:
			for i := 0; i < p.Len(); i++ {
				d, _ := GetDict(doc, p.Get(i))
				parms = append(parms, d)
			}
		}
	}
	return names, parms, nil
}

func applyFilter(name string, data []byte, doc Resolver, parms *PdfObjectDictionary) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		out, err := inflate(data)
		if err != nil {
			return nil, err
		}
		return applyPredictor(doc, out, parms)
	case "LZWDecode", "LZW":
		out, err := lzwDecode(data, parms, doc)
		if err != nil {
			return nil, err
		}
		return applyPredictor(doc, out, parms)
	case "ASCII85Decode", "A85":
		return ascii85Decode(data)
	case "ASCIIHexDecode", "AHx":
		return asciiHexDecode(data)
	case "RunLengthDecode", "RL":
		return runLengthDecode(data)
	case "Identity", "Crypt":
		return data, nil
	default:
		return nil, xerrors.Errorf("unsupported filter %s", name)
	}
}

func inflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func ascii85Decode(data []byte) ([]byte, error) {
	data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("~>"))
	dec := ascii85.NewDecoder(bytes.NewReader(data))
	return io.ReadAll(dec)
}

func asciiHexDecode(data []byte) ([]byte, error) {
	data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte(">"))
	var cleaned []byte
	for _, b := range data {
		if isHexDigit(b) {
			cleaned = append(cleaned, b)
		}
	}
	if len(cleaned)%2 == 1 {
		cleaned = append(cleaned, '0')
	}
	out := make([]byte, hex.DecodedLen(len(cleaned)))
	if _, err := hex.Decode(out, cleaned); err != nil {
		return nil, err
	}
	return out, nil
}

func runLengthDecode(data []byte) ([]byte, error) {
	var out bytes.Buffer
	i := 0
	for i < len(data) {
		length := data[i]
		i++
		switch {
		case length == 128:
			return out.Bytes(), nil
		case length < 128:
			n := int(length) + 1
			if i+n > len(data) {
				n = len(data) - i
			}
			out.Write(data[i : i+n])
			i += n
		default:
			if i >= len(data) {
				break
			}
			n := 257 - int(length)
			for j := 0; j < n; j++ {
				out.WriteByte(data[i])
			}
			i++
		}
	}
	return out.Bytes(), nil
}

func applyPredictor(doc Resolver, data []byte, parms *PdfObjectDictionary) ([]byte, error) {
	if parms == nil {
		return data, nil
	}
	predictor, _ := GetInt(doc, parms.Get("Predictor"))
	if predictor <= 1 {
		return data, nil
	}
	columns, ok := GetInt(doc, parms.Get("Columns"))
	if !ok {
		columns = 1
	}
	colors, ok := GetInt(doc, parms.Get("Colors"))
	if !ok {
		colors = 1
	}
	bpc, ok := GetInt(doc, parms.Get("BitsPerComponent"))
	if !ok {
		bpc = 8
	}
	bytesPerPixel := int((colors*bpc + 7) / 8)
	rowBytes := int((columns*colors*bpc + 7) / 8)

	if predictor == 2 {
		return applyTIFFPredictor(data, rowBytes, bytesPerPixel), nil
	}
	// PNG predictors (>=10): each row prefixed by a filter-type byte.
	return applyPNGPredictor(data, rowBytes, bytesPerPixel)
}

func applyTIFFPredictor(data []byte, rowBytes, bpp int) []byte {
	out := append([]byte{}, data...)
	for rowStart := 0; rowStart+rowBytes <= len(out); rowStart += rowBytes {
		for i := bpp; i < rowBytes; i++ {
			out[rowStart+i] += out[rowStart+i-bpp]
		}
	}
	return out
}

func applyPNGPredictor(data []byte, rowBytes, bpp int) ([]byte, error) {
	var out bytes.Buffer
	prev := make([]byte, rowBytes)
	pos := 0
	for pos+1+rowBytes <= len(data) {
		filterType := data[pos]
		pos++
		row := append([]byte{}, data[pos:pos+rowBytes]...)
		pos += rowBytes
		for i := range row {
			var a, b, c byte
			if i >= bpp {
				a = row[i-bpp]
				c = prev[i-bpp]
			}
			b = prev[i]
			switch filterType {
			case 0: // None
			case 1: // Sub
				row[i] += a
			case 2: // Up
				row[i] += b
			case 3: // Average
				row[i] += byte((int(a) + int(b)) / 2)
			case 4: // Paeth
				row[i] += paeth(a, b, c)
			}
		}
		out.Write(row)
		prev = row
	}
	return out.Bytes(), nil
}

func paeth(a, b, c byte) byte {
	p := int(a) + int(b) - int(c)
	pa, pb, pc := abs(p-int(a)), abs(p-int(b)), abs(p-int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
