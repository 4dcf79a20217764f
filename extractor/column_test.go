package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func spanAt(left, right float64) Span {
	return Span{BBox: BoundingBox{L: left, R: right}}
}

// TestDetectRightAlignedColumnsFindsInvoiceTotals pins down the classic
// case this detector targets: a column of dollar amounts whose right
// edges line up but whose left edges (driven by differing digit counts)
// vary widely, far enough across the page to be a real column.
func TestDetectRightAlignedColumnsFindsInvoiceTotals(t *testing.T) {
	lines := []Line{
		{spanAt(400, 460)},
		{spanAt(350, 460)},
		{spanAt(420, 461)},
		{spanAt(410, 459)},
	}
	positions := detectRightAlignedColumns(lines)
	if assert.Len(t, positions, 1) {
		assert.InDelta(t, 460, positions[0], 1.0)
	}
}

// TestDetectRightAlignedColumnsIgnoresLeftAlignedBlock ensures a block of
// text that merely happens to end near the same column (left edges all
// equal, meaning right-edge alignment is incidental to left alignment, not
// a distinct right-aligned column) is not reported.
func TestDetectRightAlignedColumnsIgnoresLeftAlignedBlock(t *testing.T) {
	lines := []Line{
		{spanAt(72, 300)},
		{spanAt(72, 301)},
		{spanAt(72, 299)},
	}
	positions := detectRightAlignedColumns(lines)
	assert.Empty(t, positions)
}

// TestDetectRightAlignedColumnsIgnoresSmallCluster requires at least
// minSpansForColumn members before trusting a cluster is a real column,
// not coincidence.
func TestDetectRightAlignedColumnsIgnoresSmallCluster(t *testing.T) {
	lines := []Line{
		{spanAt(400, 460)},
		{spanAt(350, 461)},
	}
	positions := detectRightAlignedColumns(lines)
	assert.Empty(t, positions)
}

// TestDetectRightAlignedColumnsIgnoresNearLeftMargin checks the
// minColumnPosition floor: a tight, left-varying cluster positioned near
// the left margin isn't a right-aligned column worth preserving.
func TestDetectRightAlignedColumnsIgnoresNearLeftMargin(t *testing.T) {
	lines := []Line{
		{spanAt(5, 100)},
		{spanAt(60, 101)},
		{spanAt(90, 99)},
	}
	positions := detectRightAlignedColumns(lines)
	assert.Empty(t, positions)
}

func TestIsRightAligned(t *testing.T) {
	s := spanAt(400, 460)
	assert.True(t, s.isRightAligned([]float64{462}, alignmentThreshold))
	assert.False(t, s.isRightAligned([]float64{500}, alignmentThreshold))
	assert.False(t, s.isRightAligned(nil, alignmentThreshold))
}
