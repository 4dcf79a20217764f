// Package model provides page-tree traversal, the MediaBox/Resources
// inheritance rules, and the font object model (Simple/Type3/CID fonts
// with the font fallback chain) built on top of package core.
package model

import (
	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/core"
	"golang.org/x/xerrors"
)

// Rectangle is a PDF rectangle (llx, lly, urx, ury) in user-space points.
type Rectangle struct {
	LLX, LLY, URX, URY float64
}

// Page is one leaf of the page tree, with its inherited attributes
// already resolved.
type Page struct {
	Dict      *core.PdfObjectDictionary
	Number    int // 1-based
	Resources *core.PdfObjectDictionary
	MediaBox  Rectangle
	ArtBox    *Rectangle
}

// Document wraps a core.Document with page-tree access.
type Document struct {
	*core.Document
}

// LoadFromBytes parses buf and returns a Document.
func LoadFromBytes(buf []byte) (*Document, error) {
	doc, err := core.LoadFromBytes(buf)
	if err != nil {
		return nil, err
	}
	return &Document{Document: doc}, nil
}

// LoadFromPath parses the PDF file at path.
func LoadFromPath(path string) (*Document, error) {
	doc, err := core.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return &Document{Document: doc}, nil
}

// LoadFromReader parses data; it is the same as LoadFromBytes.
func LoadFromReader(data []byte) (*Document, error) { return LoadFromBytes(data) }

// Pages walks the page tree rooted at the document's Catalog and returns
// its leaves in document order.
func (doc *Document) Pages() ([]*Page, error) {
	root := doc.GetTrailer().Get("Root")
	catalog, ok := core.GetDict(doc, root)
	if !ok {
		return nil, xerrors.New("pdftext: document catalog (/Root) not found")
	}
	pagesRoot, ok := core.GetDict(doc, catalog.Get("Pages"))
	if !ok {
		return nil, xerrors.New("pdftext: document page tree (/Pages) not found")
	}

	var pages []*Page
	visited := map[*core.PdfObjectDictionary]bool{}
	var walk func(node *core.PdfObjectDictionary) error
	walk = func(node *core.PdfObjectDictionary) error {
		if node == nil || visited[node] {
			return nil
		}
		visited[node] = true
		typ, _ := core.GetName(doc, node.Get("Type"))
		if typ == "Pages" || node.Get("Kids") != nil {
			kids, ok := core.GetArray(doc, node.Get("Kids"))
			if !ok {
				return nil
			}
			for i := 0; i < kids.Len(); i++ {
				child, ok := core.GetDict(doc, kids.Get(i))
				if !ok {
					common.Log.Warning("skipping malformed page-tree kid")
					continue
				}
				if err := walk(child); err != nil {
					return err
				}
			}
			return nil
		}
		pages = append(pages, doc.buildPage(node, len(pages)+1))
		return nil
	}
	if err := walk(pagesRoot); err != nil {
		return nil, err
	}
	return pages, nil
}

func (doc *Document) buildPage(dict *core.PdfObjectDictionary, number int) *Page {
	p := &Page{Dict: dict, Number: number}

	if res, ok := core.GetDict(doc, core.GetInherited(doc, dict, "Resources")); ok {
		p.Resources = res
	} else {
		p.Resources = core.MakeDict()
	}

	mb := core.GetInherited(doc, dict, "MediaBox")
	if rect, ok := rectangleFrom(doc, mb); ok {
		p.MediaBox = rect
	} else {
		common.Log.Warning("page %d has no inheritable MediaBox; defaulting to US Letter", number)
		p.MediaBox = Rectangle{0, 0, 612, 792}
	}

	// ArtBox is fetched directly, not via the inheritance walk: it is a
	// page-specific crop refinement, never meant to be inherited from an
	// ancestor that describes a different physical page.
	if ab, ok := core.GetArray(doc, dict.Get("ArtBox")); ok {
		if rect, ok := rectangleFromArray(doc, ab); ok {
			p.ArtBox = &rect
		}
	}

	return p
}

func rectangleFrom(doc core.Resolver, obj core.PdfObject) (Rectangle, bool) {
	arr, ok := core.GetArray(doc, obj)
	if !ok {
		return Rectangle{}, false
	}
	return rectangleFromArray(doc, arr)
}

func rectangleFromArray(doc core.Resolver, arr *core.PdfObjectArray) (Rectangle, bool) {
	if arr.Len() != 4 {
		return Rectangle{}, false
	}
	vals := make([]float64, 4)
	for i := 0; i < 4; i++ {
		v, ok := core.GetNumberAsFloat(doc, arr.Get(i))
		if !ok {
			return Rectangle{}, false
		}
		vals[i] = v
	}
	r := Rectangle{LLX: vals[0], LLY: vals[1], URX: vals[2], URY: vals[3]}
	if r.LLX > r.URX {
		r.LLX, r.URX = r.URX, r.LLX
	}
	if r.LLY > r.URY {
		r.LLY, r.URY = r.URY, r.LLY
	}
	return r, true
}

// XObjectStream looks up a named XObject in resources, returning its stream and
// its own Resources dictionary (falling back to the caller's resources
// when the XObject has none of its own, as §4.E's Do handler requires).
func XObjectStream(doc core.Resolver, resources *core.PdfObjectDictionary, name string) (*core.PdfObjectStream, *core.PdfObjectDictionary, bool) {
	if resources == nil {
		return nil, nil, false
	}
	xobjDict, ok := core.GetDict(doc, resources.Get("XObject"))
	if !ok {
		return nil, nil, false
	}
	stream, ok := core.GetStream(doc, xobjDict.Get(core.PdfObjectName(name)))
	if !ok {
		return nil, nil, false
	}
	xres, ok := core.GetDict(doc, stream.Get("Resources"))
	if !ok {
		xres = resources
	}
	return stream, xres, true
}
