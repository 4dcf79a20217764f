package core

import (
	"github.com/unidoc/pdftext/core/security"
	"golang.org/x/xerrors"
)

// Decryptor decrypts strings and streams belonging to a document's
// indirect objects once authenticated. It wraps core/security.Handler.
type Decryptor struct {
	handler   *security.Handler
	encryptRef int64 // object number of the /Encrypt dictionary itself, never decrypted
}

// IsEncrypted reports whether the document's trailer declares an
// /Encrypt dictionary.
func (doc *Document) IsEncrypted() bool {
	return doc.trailer != nil && doc.trailer.Get("Encrypt") != nil
}

// Decrypt authenticates password against the document's security handler
// and, on success, installs it so subsequent object access transparently
// decrypts strings and streams. Per spec §7/§4.H, a caller should retry
// with the empty password before treating encryption as a hard failure.
func (doc *Document) Decrypt(password string) error {
	if !doc.IsEncrypted() {
		return nil
	}
	encObj := doc.trailer.Get("Encrypt")
	var encryptRef int64 = -1
	if ref, ok := encObj.(*PdfObjectReference); ok {
		encryptRef = ref.ObjectNumber
	}
	encDict, ok := GetDict(doc, encObj)
	if !ok {
		return NewLoadError("decrypt", xerrors.New("malformed /Encrypt dictionary"))
	}

	params, err := buildSecurityParams(doc, encDict)
	if err != nil {
		return NewLoadError("decrypt", err)
	}

	handler, ok := security.NewHandler(params, password)
	if !ok {
		return ErrEncryptedNoPassword
	}
	doc.crypt = &Decryptor{handler: handler, encryptRef: encryptRef}
	// Strings/streams already pulled into the cache before authentication
	// (e.g. while reading the trailer) are still ciphertext; drop them so
	// they get re-read and decrypted on next access.
	doc.cache = map[int64]PdfObject{}
	return nil
}

func buildSecurityParams(doc *Document, enc *PdfObjectDictionary) (security.Params, error) {
	var p security.Params
	v, _ := GetInt(doc, enc.Get("V"))
	r, _ := GetInt(doc, enc.Get("R"))
	p.V, p.R = int(v), int(r)
	if p.R == 0 {
		p.R = 2
	}

	if o, ok := GetString(doc, enc.Get("O")); ok {
		p.O = []byte(o)
	}
	if u, ok := GetString(doc, enc.Get("U")); ok {
		p.U = []byte(u)
	}
	if oe, ok := GetString(doc, enc.Get("OE")); ok {
		p.OE = []byte(oe)
	}
	if ue, ok := GetString(doc, enc.Get("UE")); ok {
		p.UE = []byte(ue)
	}
	if perm, ok := GetInt(doc, enc.Get("P")); ok {
		p.P = int32(perm)
	}
	length, ok := GetInt(doc, enc.Get("Length"))
	if !ok {
		length = 40
	}
	p.KeyLenBits = int(length)

	p.EncryptMetadata = true
	if em, ok := GetBool(doc, enc.Get("EncryptMetadata")); ok {
		p.EncryptMetadata = em
	}

	if idArr, ok := GetArray(doc, doc.trailer.Get("ID")); ok && idArr.Len() > 0 {
		if s, ok := GetString(doc, idArr.Get(0)); ok {
			p.IDFirst = []byte(s)
		}
	}

	p.Cipher = security.CipherRC4
	switch {
	case p.V >= 5:
		p.Cipher = security.CipherAESV3
	case p.V == 4:
		p.Cipher = resolveCryptFilterCipher(doc, enc)
	}
	return p, nil
}

// resolveCryptFilterCipher resolves the cipher named by /StmF's entry in
// /CF for V4 crypt-filter security — AESV2, RC4 (V2), or Identity.
func resolveCryptFilterCipher(doc *Document, enc *PdfObjectDictionary) security.StreamCipher {
	stmF, _ := GetName(doc, enc.Get("StmF"))
	if stmF == "" || stmF == "Identity" {
		return security.CipherIdentity
	}
	cf, ok := GetDict(doc, enc.Get("CF"))
	if !ok {
		return security.CipherRC4
	}
	filterDict, ok := GetDict(doc, cf.Get(PdfObjectName(stmF)))
	if !ok {
		return security.CipherRC4
	}
	cfm, _ := GetName(doc, filterDict.Get("CFM"))
	switch cfm {
	case "AESV2":
		return security.CipherAESV2
	case "AESV3":
		return security.CipherAESV3
	case "None":
		return security.CipherIdentity
	default:
		return security.CipherRC4
	}
}

// decryptIfNeeded decrypts every string in obj and, if obj is a stream,
// its raw bytes, using the per-object key for objNum. The /Encrypt
// dictionary itself and cross-reference streams are never encrypted.
func (doc *Document) decryptIfNeeded(objNum int64, obj PdfObject) PdfObject {
	if doc.crypt == nil || objNum == doc.crypt.encryptRef {
		return obj
	}
	return doc.decryptObject(objNum, 0, obj)
}

func (doc *Document) decryptObject(objNum, gen int64, obj PdfObject) PdfObject {
	switch t := obj.(type) {
	case *PdfObjectString:
		plain := doc.crypt.handler.DecryptBytes(objNum, gen, []byte(t.val))
		return &PdfObjectString{val: string(plain), isHex: t.isHex}
	case *PdfObjectArray:
		for i, e := range t.vec {
			t.vec[i] = doc.decryptObject(objNum, gen, e)
		}
		return t
	case *PdfObjectDictionary:
		for _, k := range t.keys {
			t.dict[k] = doc.decryptObject(objNum, gen, t.dict[k])
		}
		return t
	case *PdfObjectStream:
		if typ, _ := GetName(doc, t.Get("Type")); typ == "XRef" {
			return t
		}
		for _, k := range t.keys {
			t.dict[k] = doc.decryptObject(objNum, gen, t.dict[k])
		}
		t.Stream = doc.crypt.handler.DecryptBytes(objNum, gen, t.Stream)
		return t
	default:
		return obj
	}
}
