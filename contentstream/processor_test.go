package contentstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/unidoc/pdftext/core"
	"github.com/unidoc/pdftext/internal/transform"
	"github.com/unidoc/pdftext/model"
)

type recordedChar struct {
	text     string
	width    float64
	fontSize float64
	x, y     float64
}

type recordingSink struct {
	chars    []recordedChar
	lineEnds int
	pagesBeg []int
	pagesEnd int
}

func (s *recordingSink) BeginPage(pageNum int, mediaBox model.Rectangle) {
	s.pagesBeg = append(s.pagesBeg, pageNum)
}
func (s *recordingSink) EndPage()   { s.pagesEnd++ }
func (s *recordingSink) BeginWord() {}
func (s *recordingSink) EndWord()   {}
func (s *recordingSink) EndLine()   { s.lineEnds++ }
func (s *recordingSink) OutputCharacter(trm transform.Matrix, width, spacing, fontSize float64, text string) {
	x, y := trm.Translation()
	s.chars = append(s.chars, recordedChar{text: text, width: width, fontSize: fontSize, x: x, y: y})
}

func testDict(pairs ...interface{}) *core.PdfObjectDictionary {
	d := core.MakeDict()
	for i := 0; i+1 < len(pairs); i += 2 {
		d.Set(core.PdfObjectName(pairs[i].(string)), pairs[i+1].(core.PdfObject))
	}
	return d
}

func helveticaFontResources() *core.PdfObjectDictionary {
	fontDict := testDict(
		"Subtype", core.MakeName("Type1"),
		"BaseFont", core.MakeName("Helvetica"),
	)
	fonts := core.MakeDict()
	fonts.Set("F1", fontDict)
	resources := core.MakeDict()
	resources.Set("Font", fonts)
	return resources
}

func TestProcessorShowsTextAndTracksPosition(t *testing.T) {
	resources := helveticaFontResources()
	content := []byte(`BT /F1 12 Tf 72 700 Td (AB) Tj ET`)

	proc := NewProcessor(nil)
	sink := &recordingSink{}
	err := proc.ProcessPage(content, resources, sink)
	assert.NoError(t, err)

	if assert.Len(t, sink.chars, 2) {
		assert.Equal(t, "A", sink.chars[0].text)
		assert.Equal(t, "B", sink.chars[1].text)
		assert.InDelta(t, 72.0, sink.chars[0].x, 0.01)
		// second glyph should have advanced to the right of the first
		assert.Greater(t, sink.chars[1].x, sink.chars[0].x)
	}
}

func TestProcessorTJArrayAppliesKerning(t *testing.T) {
	resources := helveticaFontResources()
	content := []byte(`BT /F1 12 Tf 72 700 Td [(A) -1000 (B)] TJ ET`)

	proc := NewProcessor(nil)
	sink := &recordingSink{}
	err := proc.ProcessPage(content, resources, sink)
	assert.NoError(t, err)

	if assert.Len(t, sink.chars, 2) {
		// -1000/1000 * fontSize(12) = 12pt extra advance beyond the glyph
		// width itself, so B should land noticeably further right than a
		// plain concatenation would put it.
		gap := sink.chars[1].x - sink.chars[0].x
		assert.Greater(t, gap, 12.0)
	}
}

func TestProcessorQQRestoresGraphicsState(t *testing.T) {
	resources := helveticaFontResources()
	content := []byte(`q 1 0 0 1 100 0 cm BT /F1 12 Tf 0 700 Td (A) Tj ET Q BT /F1 12 Tf 0 700 Td (B) Tj ET`)

	proc := NewProcessor(nil)
	sink := &recordingSink{}
	err := proc.ProcessPage(content, resources, sink)
	assert.NoError(t, err)

	if assert.Len(t, sink.chars, 2) {
		assert.InDelta(t, 100.0, sink.chars[0].x, 0.01)
		assert.InDelta(t, 0.0, sink.chars[1].x, 0.01)
	}
}

func courierFontResources() *core.PdfObjectDictionary {
	fontDict := testDict(
		"Subtype", core.MakeName("Type1"),
		"BaseFont", core.MakeName("Courier"),
	)
	fonts := core.MakeDict()
	fonts.Set("F1", fontDict)
	resources := core.MakeDict()
	resources.Set("Font", fonts)
	return resources
}

// TestFontCacheScopedPerProcessorInstance documents why extractor.Extract
// must build a fresh Processor per page: reusing one Processor (and its
// resolveFont cache) across two "pages" whose /Font dictionaries both
// define /F1, but pointing at different fonts, must not let the first
// page's /F1 leak into the second merely because the resource name
// matches.
func TestFontCacheScopedPerProcessorInstance(t *testing.T) {
	content := []byte(`BT /F1 12 Tf 72 700 Td (A) Tj ET`)

	helvetica := NewProcessor(nil)
	sinkHelvetica := &recordingSink{}
	assert.NoError(t, helvetica.ProcessPage(content, helveticaFontResources(), sinkHelvetica))

	courier := NewProcessor(nil)
	sinkCourier := &recordingSink{}
	assert.NoError(t, courier.ProcessPage(content, courierFontResources(), sinkCourier))

	if assert.Len(t, sinkHelvetica.chars, 1) && assert.Len(t, sinkCourier.chars, 1) {
		// Courier is monospace with a wider 'A' than Helvetica's
		// proportional metrics; a leaked cache would make these equal.
		assert.NotEqual(t, sinkHelvetica.chars[0].width, sinkCourier.chars[0].width)
	}
}

func TestApplyExtGStateSMaskDictAndNoneDoNotPanic(t *testing.T) {
	smaskDict := testDict("Type", core.MakeName("Mask"), "S", core.MakeName("Alpha"))
	extGState := core.MakeDict()
	extGState.Set("GS1", testDict("Type", core.MakeName("ExtGState"), "SMask", smaskDict))
	extGState.Set("GS2", testDict("Type", core.MakeName("ExtGState"), "SMask", core.MakeName("None")))
	resources := core.MakeDict()
	resources.Set("ExtGState", extGState)

	content := []byte(`/GS1 gs /GS2 gs`)
	proc := NewProcessor(nil)
	sink := &recordingSink{}
	assert.NotPanics(t, func() {
		assert.NoError(t, proc.ProcessPage(content, resources, sink))
	})
}

// TestApplyExtGStateUnknownSMaskNamePanics pins down spec §7's "Unknown
// SMask name: panic" rule: an SMask value that is a Name other than
// "None" is not a legal ExtGState per ISO 32000-1 §11.6.4.3, and the
// interpreter refuses to guess at what it might mean.
func TestApplyExtGStateUnknownSMaskNamePanics(t *testing.T) {
	extGState := core.MakeDict()
	extGState.Set("GS1", testDict("Type", core.MakeName("ExtGState"), "SMask", core.MakeName("Bogus")))
	resources := core.MakeDict()
	resources.Set("ExtGState", extGState)

	content := []byte(`/GS1 gs`)
	proc := NewProcessor(nil)
	sink := &recordingSink{}
	assert.Panics(t, func() {
		_ = proc.ProcessPage(content, resources, sink)
	})
}

func TestProcessorUnknownOperatorsIgnored(t *testing.T) {
	resources := helveticaFontResources()
	content := []byte(`1 0 0 RG 72 700 100 50 re S BT /F1 12 Tf 72 700 Td (X) Tj ET`)

	proc := NewProcessor(nil)
	sink := &recordingSink{}
	err := proc.ProcessPage(content, resources, sink)
	assert.NoError(t, err)
	assert.Len(t, sink.chars, 1)
}
