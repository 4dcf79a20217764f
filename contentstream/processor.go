package contentstream

import (
	"math"

	"github.com/unidoc/pdftext/common"
	"github.com/unidoc/pdftext/core"
	"github.com/unidoc/pdftext/internal/transform"
	"github.com/unidoc/pdftext/model"
)

// Sink receives each glyph the Processor shows, already positioned by the
// text rendering matrix (Trm = Tsm x Tm x CTM, ISO 32000-1 §9.4.4). It
// mirrors original_source's BoundingBoxOutput surface so the span
// assembler in package extractor can stay a direct, unclouded port of
// that algorithm.
type Sink interface {
	BeginPage(pageNum int, mediaBox model.Rectangle)
	EndPage()
	BeginWord()
	OutputCharacter(trm transform.Matrix, width, spacing, fontSize float64, text string)
	EndWord()
	EndLine()
}

// textState holds the Tf/Tc/Tw/Tz/TL/Ts/Tm parameters ISO 32000-1 §9.3
// defines, scoped to the current q/Q graphics-state level.
type textState struct {
	font             model.PdfFont
	fontSize         float64
	characterSpacing float64
	wordSpacing      float64
	horizontalScale  float64
	leading          float64
	rise             float64
	tm               transform.Matrix
}

type graphicsState struct {
	ctm   transform.Matrix
	ts    textState
	line  float64
	smask *core.PdfObjectDictionary // non-nil iff an SMask dict is in effect
}

// Processor walks a page's content stream(s), maintaining the graphics
// state machine and reporting each shown glyph to a Sink. Grounded on
// original_source's Processor::process_stream and on the teacher's
// contentstream.ContentStreamProcessor operator-dispatch shape.
type Processor struct {
	doc     *core.Document
	fonts   map[string]model.PdfFont
	depth   int
	maxDepm int
}

// NewProcessor returns a Processor bound to doc for resolving font/XObject
// resources as operators reference them.
func NewProcessor(doc *core.Document) *Processor {
	return &Processor{doc: doc, fonts: map[string]model.PdfFont{}, maxDepm: 16}
}

// ProcessPage runs every content stream on page against resources,
// reporting glyphs to sink. The page's MediaBox is not needed here: it
// only matters for flipping to top-down coordinates, which is the Sink's
// job, not the interpreter's.
func (p *Processor) ProcessPage(content []byte, resources *core.PdfObjectDictionary, sink Sink) error {
	gs := graphicsState{
		ctm: transform.IdentityMatrix(),
		ts: textState{
			fontSize:        math.NaN(),
			horizontalScale: 1,
			tm:              transform.IdentityMatrix(),
		},
		line: 1,
	}
	return p.run(content, resources, gs, sink)
}

// run interprets one content stream's operators against gs, the
// graphics/text state in effect when it started (the page's initial
// state, or the state at the point of a Do that invoked a Form XObject).
// Glyph positions are reported to sink in raw, bottom-up PDF user space;
// flipping to a top-down coordinate system is the Sink's responsibility
// (package extractor's spanAssembler does it per page from the MediaBox),
// since a content stream itself has no notion of "up".
func (p *Processor) run(content []byte, resources *core.PdfObjectDictionary, gs graphicsState, sink Sink) error {
	ops := NewParser(content).Parse()
	var gsStack []graphicsState
	var mcStack []string
	tlm := transform.IdentityMatrix()

	for _, op := range ops {
		switch op.Operator {
		case "BT", "ET":
			tlm = transform.IdentityMatrix()
			gs.ts.tm = tlm

		case "cm":
			if m, ok := matrixOperand(op.Operands); ok {
				gs.ctm = gs.ctm.Mult(m)
			}

		case "Tf":
			if len(op.Operands) >= 2 {
				if name, ok := asName(op.Operands[0]); ok {
					gs.ts.font = p.resolveFont(resources, name)
				}
				if sz, ok := asFloat(op.Operands[1]); ok {
					gs.ts.fontSize = sz
				}
			}

		case "Tc":
			if v, ok := asFloat0(op.Operands); ok {
				gs.ts.characterSpacing = v
			}
		case "Tw":
			if v, ok := asFloat0(op.Operands); ok {
				gs.ts.wordSpacing = v
			}
		case "Tz":
			if v, ok := asFloat0(op.Operands); ok {
				gs.ts.horizontalScale = v / 100
			}
		case "TL":
			if v, ok := asFloat0(op.Operands); ok {
				gs.ts.leading = v
			}
		case "Ts":
			if v, ok := asFloat0(op.Operands); ok {
				gs.ts.rise = v
			}

		case "Tm":
			if m, ok := matrixOperand(op.Operands); ok {
				tlm = m
				gs.ts.tm = tlm
				sink.EndLine()
			}

		case "Td":
			if len(op.Operands) >= 2 {
				tx, _ := asFloat(op.Operands[0])
				ty, _ := asFloat(op.Operands[1])
				tlm = tlm.Mult(transform.TranslationMatrix(tx, ty))
				gs.ts.tm = tlm
				sink.EndLine()
			}

		case "TD":
			if len(op.Operands) >= 2 {
				tx, _ := asFloat(op.Operands[0])
				ty, _ := asFloat(op.Operands[1])
				gs.ts.leading = -ty
				tlm = tlm.Mult(transform.TranslationMatrix(tx, ty))
				gs.ts.tm = tlm
				sink.EndLine()
			}

		case "T*":
			tlm = tlm.Mult(transform.TranslationMatrix(0, -gs.ts.leading))
			gs.ts.tm = tlm
			sink.EndLine()

		case "Tj":
			if len(op.Operands) == 1 {
				if s, ok := asString(op.Operands[0]); ok {
					p.showText(&gs, s, sink)
				}
			}

		case "'":
			tlm = tlm.Mult(transform.TranslationMatrix(0, -gs.ts.leading))
			gs.ts.tm = tlm
			sink.EndLine()
			if len(op.Operands) == 1 {
				if s, ok := asString(op.Operands[0]); ok {
					p.showText(&gs, s, sink)
				}
			}

		case "\"":
			if len(op.Operands) == 3 {
				if v, ok := asFloat(op.Operands[0]); ok {
					gs.ts.wordSpacing = v
				}
				if v, ok := asFloat(op.Operands[1]); ok {
					gs.ts.characterSpacing = v
				}
				tlm = tlm.Mult(transform.TranslationMatrix(0, -gs.ts.leading))
				gs.ts.tm = tlm
				sink.EndLine()
				if s, ok := asString(op.Operands[2]); ok {
					p.showText(&gs, s, sink)
				}
			}

		case "TJ":
			if len(op.Operands) == 1 {
				if arr, ok := op.Operands[0].(*core.PdfObjectArray); ok {
					for i := 0; i < arr.Len(); i++ {
						switch e := arr.Get(i).(type) {
						case *core.PdfObjectString:
							p.showText(&gs, e.Str(), sink)
						case *core.PdfObjectInteger:
							p.adjustText(&gs, float64(*e))
						case *core.PdfObjectFloat:
							p.adjustText(&gs, float64(*e))
						}
					}
				}
			}

		case "q":
			gsStack = append(gsStack, gs)

		case "Q":
			if n := len(gsStack); n > 0 {
				gs = gsStack[n-1]
				gsStack = gsStack[:n-1]
			} else {
				common.Log.Debug("contentstream: Q with no matching q")
			}

		case "gs":
			if len(op.Operands) == 1 {
				if name, ok := asName(op.Operands[0]); ok {
					p.applyExtGState(resources, name, &gs)
				}
			}

		case "BMC", "BDC":
			mcStack = append(mcStack, op.Operator)
		case "EMC":
			if n := len(mcStack); n > 0 {
				mcStack = mcStack[:n-1]
			}

		case "Do":
			if len(op.Operands) == 1 {
				if name, ok := asName(op.Operands[0]); ok {
					p.doXObject(name, resources, gs, sink)
				}
			}

		case "w", "J", "j", "M", "d", "ri", "i", "m", "l", "c", "v", "y", "h",
			"re", "s", "f", "F", "f*", "B", "B*", "b", "b*", "S", "n", "W", "W*":
			// Path construction/painting and clipping operators carry no
			// text; skipped since this module extracts text, not vector art.

		default:
			common.Log.Debug("contentstream: unhandled operator %q", op.Operator)
		}
	}
	return nil
}

func (p *Processor) resolveFont(resources *core.PdfObjectDictionary, name string) model.PdfFont {
	if f, ok := p.fonts[name]; ok {
		return f
	}
	if resources == nil {
		return nil
	}
	fontsDict, ok := core.GetDict(p.doc, resources.Get("Font"))
	if !ok {
		return nil
	}
	dict, ok := core.GetDict(p.doc, fontsDict.Get(core.PdfObjectName(name)))
	if !ok {
		return nil
	}
	font, err := model.LoadFont(p.doc, dict)
	if err != nil {
		common.Log.Debug("contentstream: failed to load font %q: %v", name, err)
		return nil
	}
	p.fonts[name] = font
	return font
}

// applyExtGState applies the named ExtGState dictionary's entries to gs,
// following original_source's apply_state: SMask is the only key that
// feeds back into graphics state (soft-mask group, or "None" to clear
// it), Type is sanity-checked, and every other key is merely logged. An
// SMask value that is neither the name "None" nor a dictionary is not a
// form ExtGState can legally take, so it panics rather than silently
// producing wrong output.
func (p *Processor) applyExtGState(resources *core.PdfObjectDictionary, name string, gs *graphicsState) {
	if resources == nil {
		return
	}
	extGState, ok := core.GetDict(p.doc, resources.Get("ExtGState"))
	if !ok {
		return
	}
	state, ok := core.GetDict(p.doc, extGState.Get(core.PdfObjectName(name)))
	if !ok {
		common.Log.Trace("contentstream: ExtGState %q not found", name)
		return
	}

	for _, key := range state.Keys() {
		v := state.Get(key)
		switch key {
		case "SMask":
			if smaskName, ok := core.GetName(p.doc, v); ok {
				if smaskName != "None" {
					panic("contentstream: unexpected SMask name: " + smaskName)
				}
				gs.smask = nil
				continue
			}
			if dict, ok := core.GetDict(p.doc, v); ok {
				gs.smask = dict
				continue
			}
			panic("contentstream: unexpected SMask value type")

		case "Type":
			if n, ok := core.GetName(p.doc, v); ok && n != "ExtGState" {
				panic("contentstream: unexpected ExtGState /Type: " + n)
			}

		default:
			common.Log.Debug("contentstream: unapplied ExtGState key %q", key)
		}
	}
}

func (p *Processor) doXObject(name string, resources *core.PdfObjectDictionary, gs graphicsState, sink Sink) {
	if p.depth >= p.maxDepm {
		common.Log.Debug("contentstream: XObject recursion depth exceeded, skipping %q", name)
		return
	}
	stream, xres, ok := model.XObjectStream(p.doc, resources, name)
	if !ok {
		return
	}
	subtype, _ := core.GetName(p.doc, stream.Get("Subtype"))
	if subtype != "Form" {
		return // image/PostScript XObjects carry no text
	}
	content, err := core.DecodeStream(p.doc, stream)
	if err != nil {
		common.Log.Debug("contentstream: failed to decode form XObject %q: %v", name, err)
		return
	}
	if m, ok := formMatrix(p.doc, stream); ok {
		gs.ctm = gs.ctm.Mult(m)
	}
	p.depth++
	p.run(content, xres, gs, sink)
	p.depth--
}

func formMatrix(doc *core.Document, stream *core.PdfObjectStream) (transform.Matrix, bool) {
	arr, ok := core.GetArray(doc, stream.Get("Matrix"))
	if !ok || arr.Len() != 6 {
		return transform.Matrix{}, false
	}
	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, ok := core.GetNumberAsFloat(doc, arr.Get(i))
		if !ok {
			return transform.Matrix{}, false
		}
		vals[i] = v
	}
	return transform.NewMatrix(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]), true
}

// showText renders s as a Tj/'/" operand: it is split into character codes
// by the current font and each glyph placed via the text rendering
// matrix, following original_source's show_text.
func (p *Processor) showText(gs *graphicsState, s string, sink Sink) {
	ts := &gs.ts
	if ts.font == nil {
		return
	}
	data := []byte(s)
	sink.BeginWord()
	for len(data) > 0 {
		code, n, ok := ts.font.NextCode(data)
		if !ok {
			break
		}
		data = data[n:]

		tsm := transform.NewMatrix(ts.horizontalScale, 0, 0, 1, 0, ts.rise)
		trm := gs.ctm.Mult(ts.tm).Mult(tsm)

		w0 := 0.0
		if w, ok := ts.font.Width(code); ok {
			w0 = w / 1000
		}

		spacing := ts.characterSpacing
		isSpace := code == 32 && n == 1
		if isSpace {
			spacing += ts.wordSpacing
		}

		text := ts.font.Decode(code)
		sink.OutputCharacter(trm, w0, spacing, ts.fontSize, text)

		tx := ts.horizontalScale * (w0*ts.fontSize + spacing)
		ts.tm = ts.tm.Mult(transform.TranslationMatrix(tx, 0))
	}
	sink.EndWord()
}

// adjustText applies a TJ array's numeric kerning adjustment (expressed in
// thousandths of text space units, opposing the writing direction).
func (p *Processor) adjustText(gs *graphicsState, amount float64) {
	ts := &gs.ts
	tx := ts.horizontalScale * (-amount / 1000 * ts.fontSize)
	ts.tm = ts.tm.Mult(transform.TranslationMatrix(tx, 0))
}

func matrixOperand(operands []core.PdfObject) (transform.Matrix, bool) {
	if len(operands) != 6 {
		return transform.Matrix{}, false
	}
	vals := make([]float64, 6)
	for i, o := range operands {
		v, ok := asFloat(o)
		if !ok {
			return transform.Matrix{}, false
		}
		vals[i] = v
	}
	return transform.NewMatrix(vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]), true
}

func asFloat(obj core.PdfObject) (float64, bool) {
	switch t := obj.(type) {
	case *core.PdfObjectInteger:
		return float64(*t), true
	case *core.PdfObjectFloat:
		return float64(*t), true
	}
	return 0, false
}

func asFloat0(operands []core.PdfObject) (float64, bool) {
	if len(operands) == 0 {
		return 0, false
	}
	return asFloat(operands[0])
}

func asName(obj core.PdfObject) (string, bool) {
	n, ok := obj.(*core.PdfObjectName)
	if !ok {
		return "", false
	}
	return string(*n), true
}

func asString(obj core.PdfObject) (string, bool) {
	s, ok := obj.(*core.PdfObjectString)
	if !ok {
		return "", false
	}
	return s.Str(), true
}
