// Package extractor assembles the glyphs a contentstream.Processor reports
// into positioned text spans, groups spans into lines, detects
// right-aligned columns, and renders the result as plain or
// spatially-reflowed ("pretty") text.
package extractor

import (
	"math"
	"sort"

	"github.com/unidoc/pdftext/contentstream"
	"github.com/unidoc/pdftext/internal/transform"
	"github.com/unidoc/pdftext/model"
)

// BoundingBox is a span's extent in flipped (top-down) page coordinates:
// t(op)/r(ight)/b(ottom)/l(eft), all in PDF points.
type BoundingBox struct {
	T, R, B, L float64
}

// Span is a run of text the content-stream interpreter decided belongs
// together (no large gap, same line), with its bounding box and the font
// size it was set at.
type Span struct {
	Text     string
	BBox     BoundingBox
	FontSize float64
	PageNum  int
}

// Line is the spans the line-grouping pass decided belong to one visual
// line, left-to-right ordered. An empty Line is a deliberate blank-line
// marker (a page break or a large vertical gap).
type Line []Span

// spanAssembler implements contentstream.Sink, grounded directly on
// original_source's BoundingBoxOutput: it buffers consecutive glyphs into
// one Span until a gap, a line change, or a leftward jump signals the
// start of a new one.
type spanAssembler struct {
	flipCTM transform.Matrix

	bufStartX, bufStartY float64
	bufEndX              float64
	lastX, lastY         float64
	bufFontSize          float64
	bufCTM               transform.Matrix
	buf                  []rune
	firstChar            bool

	currentPage int
	spans       []Span
}

// Gap thresholds as a ratio of the transformed font size, and the
// vertical-gap/blank-line constants for into_lines, verbatim from
// original_source/src/output.rs.
const (
	charFlushThresholdRatio = 1.2
	charSpaceThresholdRatio = 0.15
	blankLineThresholdPts   = 24.0
	pointsPerLine           = 10.0
	lineBreakThreshold      = 5.0
)

func newSpanAssembler() *spanAssembler {
	return &spanAssembler{flipCTM: transform.IdentityMatrix()}
}

func (s *spanAssembler) BeginPage(pageNum int, mediaBox model.Rectangle) {
	s.currentPage = pageNum
	s.flipCTM = transform.NewMatrix(1, 0, 0, -1, 0, mediaBox.URY-mediaBox.LLY)
}

func (s *spanAssembler) EndPage() {
	s.flush()
}

func (s *spanAssembler) BeginWord() {
	s.firstChar = true
}

func (s *spanAssembler) EndWord() {}

func (s *spanAssembler) EndLine() {}

func (s *spanAssembler) OutputCharacter(trm transform.Matrix, width, _spacing, fontSize float64, text string) {
	position := s.flipCTM.Mult(trm)
	fsx, fsy := trm.TransformVector(fontSize, fontSize)
	transformedFontSize := math.Sqrt(fsx * fsy)
	x, y := position.Translation()

	normalized := text
	if text == "\t" {
		normalized = " "
	}

	if len(s.buf) == 0 {
		s.bufStartX, s.bufStartY = x, y
		s.bufFontSize = fontSize
		s.bufCTM = trm
		s.buf = []rune(normalized)
	} else {
		if s.bufEndX == s.lastX && math.Abs(y-s.lastY) < transformedFontSize*0.5 {
			s.bufEndX = x
		}

		gap := x - s.bufEndX
		gapRatio := gap / transformedFontSize
		yGap := math.Abs(y - s.lastY)
		shouldFlush := yGap > transformedFontSize*1.5 ||
			(x < s.bufEndX && yGap > transformedFontSize*0.5) ||
			math.Abs(gapRatio) > charFlushThresholdRatio

		if shouldFlush {
			s.flush()
			s.bufStartX, s.bufStartY = x, y
			s.bufFontSize = fontSize
			s.bufCTM = trm
			s.buf = []rune(normalized)
		} else {
			prevIsSpace := len(s.buf) > 0 && isSpaceRune(s.buf[len(s.buf)-1])
			if !prevIsSpace && gapRatio > charSpaceThresholdRatio {
				s.buf = append(s.buf, ' ')
			}
			s.buf = append(s.buf, []rune(normalized)...)
		}
	}

	s.firstChar = false
	s.lastX, s.lastY = x, y
	s.bufEndX = x + width*transformedFontSize
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func (s *spanAssembler) flush() {
	if len(s.buf) == 0 {
		return
	}
	left, right := s.bufStartX, s.bufEndX
	if left > right {
		left, right = right, left
	}
	fsx, fsy := s.bufCTM.TransformVector(s.bufFontSize, s.bufFontSize)
	transformedFontSize := math.Sqrt(fsx * fsy)

	s.spans = append(s.spans, Span{
		Text:     string(s.buf),
		BBox:     BoundingBox{T: s.bufStartY + transformedFontSize, R: right, B: s.bufStartY, L: left},
		FontSize: s.bufFontSize,
		PageNum:  s.currentPage,
	})
	s.buf = s.buf[:0]
}

// intoLines sorts the assembled spans into pages-then-top-to-bottom order
// and groups them into Lines, inserting blank Lines at page breaks and at
// large vertical gaps, following original_source's into_lines exactly.
func (s *spanAssembler) intoLines() []Line {
	if len(s.spans) == 0 {
		return nil
	}
	spans := append([]Span(nil), s.spans...)
	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].PageNum != spans[j].PageNum {
			return spans[i].PageNum < spans[j].PageNum
		}
		return spans[i].BBox.B < spans[j].BBox.B
	})

	var lines []Line
	var current Line
	var lastY float64
	haveLastY := false
	var lastPage int
	havePage := false

	flushCurrent := func() {
		if len(current) == 0 {
			return
		}
		sort.SliceStable(current, func(i, j int) bool { return current[i].BBox.L < current[j].BBox.L })
		lines = append(lines, current)
		current = nil
	}

	for _, span := range spans {
		spanY := span.BBox.B
		if havePage && span.PageNum != lastPage {
			flushCurrent()
			lines = append(lines, Line{})
			haveLastY = false
		}

		if haveLastY {
			yGap := math.Abs(spanY - lastY)
			if yGap > lineBreakThreshold {
				flushCurrent()
				if yGap > blankLineThresholdPts {
					blankLines := int(math.Round((yGap - pointsPerLine) / pointsPerLine))
					if blankLines < 1 {
						blankLines = 1
					}
					for i := 0; i < blankLines; i++ {
						lines = append(lines, Line{})
					}
				}
			}
		}

		current = append(current, span)
		lastY = spanY
		haveLastY = true
		lastPage = span.PageNum
		havePage = true
	}
	flushCurrent()
	return lines
}

var _ contentstream.Sink = (*spanAssembler)(nil)
