package extractor

import (
	"math"
	"strings"
)

// Pretty-print layout constants, transcribed from original_source's
// to_string_pretty: text is laid out on a fixed-width character grid as if
// every glyph were monospaceCharWidthPoints wide, regardless of its actual
// font metrics, trading typographic accuracy for stable column alignment.
const (
	monospaceCharWidthPoints = 4.0
	alignmentThreshold       = 16.0
)

// TextOutput is the fully reflowed result of extracting one document:
// pages broken into lines, lines broken into left-to-right spans, with
// enough geometry kept to detect and preserve right-aligned columns when
// rendering "pretty".
type TextOutput struct {
	lines []Line
}

// Lines returns the page's lines in document order. An empty Line marks a
// blank line (a page break or a large vertical gap).
func (t *TextOutput) Lines() []Line {
	return t.lines
}

// String renders the extracted text as plain text: one line per Line,
// spans on a line joined by a single space, blank Lines becoming blank
// lines. This is the fast path with no column-alignment analysis.
func (t *TextOutput) String() string {
	var b strings.Builder
	for i, line := range t.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, span := range line {
			if j > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(span.Text)
		}
	}
	return b.String()
}

// ToStringPretty renders the extracted text reflowed onto a fixed-width
// character grid, matching original_source's to_string_pretty: spans whose
// right edge lines up with a detected right-aligned column are
// right-justified to that column; everything else is left-justified at
// its natural x position. This recovers the visual shape of tables and
// invoices that plain text collapses.
func (t *TextOutput) ToStringPretty() string {
	positions := detectRightAlignedColumns(t.lines)

	var b strings.Builder
	for i, line := range t.lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(renderLinePretty(line, positions))
	}
	return b.String()
}

func xToCol(x float64) int {
	if x <= 0 {
		return 0
	}
	return int(math.Round(x / monospaceCharWidthPoints))
}

func renderLinePretty(line Line, positions []float64) string {
	if len(line) == 0 {
		return ""
	}

	var cells []rune
	cursorCol := 0

	place := func(col int, text []rune) {
		for len(cells) < col {
			cells = append(cells, ' ')
		}
		for i, r := range text {
			at := col + i
			if at < len(cells) {
				cells[at] = r
			} else {
				cells = append(cells, r)
			}
		}
	}

	for _, span := range line {
		text := []rune(span.Text)
		textLen := len(text)

		var targetStartCol int
		if pos, ok := span.matchRightAlignedColumn(positions, alignmentThreshold); ok {
			// Target the shared cluster position, not this span's own right
			// edge: spans in the same column can disagree on their right
			// edge by up to the aligner's own tolerance.
			targetStartCol = saturatingSub(xToCol(pos), textLen)
		} else {
			targetStartCol = xToCol(span.BBox.L)
		}

		if cursorCol > 0 && targetStartCol <= cursorCol {
			targetStartCol = cursorCol + 1
		}

		place(targetStartCol, text)
		cursorCol = targetStartCol + textLen
	}

	return strings.TrimRight(string(cells), " ")
}

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}
