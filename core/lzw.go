package core

import (
	"bytes"
	"compress/lzw"
	"io"

	"golang.org/x/xerrors"
)

// lzwDecode decodes PDF's LZWDecode filter. PDF's LZW is the TIFF/GIF
// variant with MSB bit order, 8-bit initial code width, and EarlyChange=1
// (the default); that is exactly what Go's compress/lzw implements with
// lzw.MSB. EarlyChange=0 is rare in practice and not supported here.
func lzwDecode(data []byte, parms *PdfObjectDictionary, doc Resolver) ([]byte, error) {
	if parms != nil {
		if ec, ok := GetInt(doc, parms.Get("EarlyChange")); ok && ec == 0 {
			return nil, xerrors.New("LZWDecode EarlyChange=0 not supported")
		}
	}
	r := lzw.NewReader(bytes.NewReader(data), lzw.MSB, 8)
	defer r.Close()
	return io.ReadAll(r)
}
