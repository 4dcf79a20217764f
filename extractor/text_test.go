package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextOutputStringJoinsSpansWithSpace(t *testing.T) {
	out := &TextOutput{lines: []Line{
		{Span{Text: "Hello"}, Span{Text: "world"}},
		{},
		{Span{Text: "Page"}, Span{Text: "2"}},
	}}
	assert.Equal(t, "Hello world\n\nPage 2", out.String())
}

func TestTextOutputStringEmpty(t *testing.T) {
	out := &TextOutput{}
	assert.Equal(t, "", out.String())
}

// TestToStringPrettyPreservesColumnAlignment checks that a line with a
// label at the left margin and an amount far to the right (recognized as
// a right-aligned column from other lines in the document) renders with
// the amount's text ending near its natural right edge rather than
// collapsing against the label.
func TestToStringPrettyPreservesColumnAlignment(t *testing.T) {
	out := &TextOutput{lines: []Line{
		{Span{Text: "Subtotal", BBox: BoundingBox{L: 72, R: 140}}, Span{Text: "10.00", BBox: BoundingBox{L: 439, R: 459}}},
		{Span{Text: "Tax", BBox: BoundingBox{L: 72, R: 96}}, Span{Text: "1.00", BBox: BoundingBox{L: 445, R: 460.5}}},
		{Span{Text: "Total", BBox: BoundingBox{L: 72, R: 108}}, Span{Text: "11.00", BBox: BoundingBox{L: 439, R: 462}}},
	}}
	pretty := out.ToStringPretty()
	assert.Contains(t, pretty, "Subtotal")
	assert.Contains(t, pretty, "10.00")
	// The amount should land near column 115 (460/4), well to the right
	// of the label, not immediately adjacent to it.
	lines := splitLines(pretty)
	if assert.Len(t, lines, 3) {
		idx := indexOf(lines[0], "10.00")
		assert.Greater(t, idx, len("Subtotal")+5)

		// All three right edges (459, 460.5, 462) fall within the
		// detector's own tolerance of one another, so every amount must
		// end at the same shared cluster column — not its own,
		// individually rounded, right edge — or this column would drift
		// line to line. "1.00" is one rune shorter than "10.00"/"11.00",
		// so its start column is one greater to share the same end column.
		idxTax := indexOf(lines[1], "1.00")
		idxTotal := indexOf(lines[2], "11.00")
		assert.Equal(t, idx+1, idxTax)
		assert.Equal(t, idx, idxTotal)
	}
}

func TestXToCol(t *testing.T) {
	assert.Equal(t, 0, xToCol(0))
	assert.Equal(t, 0, xToCol(-5))
	assert.Equal(t, 10, xToCol(40))
	// 38/4 = 9.5: rounds to 10, where truncation would wrongly give 9.
	assert.Equal(t, 10, xToCol(38))
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
