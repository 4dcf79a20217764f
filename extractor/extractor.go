package extractor

import (
	"bytes"
	"io"
	"os"

	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/contentstream"
	"github.com/unidoc/pdftext/core"
	"github.com/unidoc/pdftext/model"
	"golang.org/x/xerrors"
)

// Extractor drives the per-page content-stream processing of one loaded
// document and assembles its text. Build one with NewExtractorBuilder, or
// use the FromPath/FromBytes/FromReader convenience functions directly.
type Extractor struct {
	doc *model.Document
}

// ExtractorBuilder configures optional extraction parameters before
// loading a document, mirroring the builder original_source exposes for
// the one option extraction needs: an owner/user password for encrypted
// input.
type ExtractorBuilder struct {
	password string
}

// NewExtractorBuilder returns a builder with no password set.
func NewExtractorBuilder() *ExtractorBuilder {
	return &ExtractorBuilder{}
}

// Password sets the password to try when the document turns out to be
// encrypted.
func (b *ExtractorBuilder) Password(password string) *ExtractorBuilder {
	b.password = password
	return b
}

// FromPath loads the PDF at path and returns an Extractor for it.
func (b *ExtractorBuilder) FromPath(path string) (*Extractor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("pdftext: reading %s: %w", path, err)
	}
	return b.FromBytes(data)
}

// FromBytes loads a PDF already in memory and returns an Extractor for
// it.
func (b *ExtractorBuilder) FromBytes(data []byte) (*Extractor, error) {
	doc, err := model.LoadFromBytes(data)
	if err != nil {
		return nil, xerrors.Errorf("pdftext: parsing document: %w", err)
	}
	if err := unlock(doc, b.password); err != nil {
		return nil, err
	}
	return &Extractor{doc: doc}, nil
}

// FromReader reads all of r and loads it as a PDF.
func (b *ExtractorBuilder) FromReader(r io.Reader) (*Extractor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, xerrors.Errorf("pdftext: reading input: %w", err)
	}
	return b.FromBytes(data)
}

// unlock decrypts doc if needed. Encrypted documents frequently use an
// empty owner password for the "open but don't let an untrusted reader
// change permissions" pattern, so an empty user-supplied password is
// always tried; only a genuine authentication failure is an error.
func unlock(doc *model.Document, password string) error {
	if !doc.IsEncrypted() {
		return nil
	}
	if err := doc.Decrypt(password); err != nil {
		if password == "" {
			return xerrors.Errorf("pdftext: document is encrypted and requires a password: %w", err)
		}
		return xerrors.Errorf("pdftext: incorrect password: %w", err)
	}
	return nil
}

// FromPath is shorthand for NewExtractorBuilder().FromPath(path).
func FromPath(path string) (*Extractor, error) { return NewExtractorBuilder().FromPath(path) }

// FromBytes is shorthand for NewExtractorBuilder().FromBytes(data).
func FromBytes(data []byte) (*Extractor, error) { return NewExtractorBuilder().FromBytes(data) }

// FromReader is shorthand for NewExtractorBuilder().FromReader(r).
func FromReader(r io.Reader) (*Extractor, error) { return NewExtractorBuilder().FromReader(r) }

// Extract walks every page of the document, interprets its content
// stream, and returns the assembled, line-grouped text.
func (e *Extractor) Extract() (*TextOutput, error) {
	pages, err := e.doc.Pages()
	if err != nil {
		return nil, xerrors.Errorf("pdftext: reading page tree: %w", err)
	}

	assembler := newSpanAssembler()

	for _, page := range pages {
		content, err := pageContent(e.doc.Document, page.Dict)
		if err != nil {
			common.Log.Warning("page %d: %v, skipping", page.Number, err)
			continue
		}
		// A fresh Processor per page, not one shared across the whole
		// document: its font cache is keyed by resource name alone, and
		// two pages are free to point the same name (e.g. /F1) at
		// different font dictionaries.
		proc := contentstream.NewProcessor(e.doc.Document)
		assembler.BeginPage(page.Number, page.MediaBox)
		if err := proc.ProcessPage(content, page.Resources, assembler); err != nil {
			common.Log.Debug("page %d: %v", page.Number, err)
		}
		assembler.EndPage()
	}

	return &TextOutput{lines: assembler.intoLines()}, nil
}

// pageContent resolves a page's /Contents, which may be a single stream
// or an array of streams (spec §4.A requires these be concatenated with
// whitespace, since an operator or operand spanning a stream boundary is
// otherwise silently corrupted).
func pageContent(doc core.Resolver, page *core.PdfObjectDictionary) ([]byte, error) {
	contents := page.Get("Contents")
	if stream, ok := core.GetStream(doc, contents); ok {
		return core.DecodeStream(doc, stream)
	}
	arr, ok := core.GetArray(doc, contents)
	if !ok {
		return nil, xerrors.New("missing or malformed /Contents")
	}
	var buf bytes.Buffer
	for i := 0; i < arr.Len(); i++ {
		stream, ok := core.GetStream(doc, arr.Get(i))
		if !ok {
			continue
		}
		data, err := core.DecodeStream(doc, stream)
		if err != nil {
			common.Log.Debug("content stream segment %d: %v, skipping", i, err)
			continue
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}
