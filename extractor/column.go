package extractor

import "math"

// Right-aligned column detection thresholds, transcribed verbatim from
// original_source's detect_right_aligned_columns: empirically tuned
// against real invoice/table layouts rather than derived from any formula,
// so they are kept as named constants (not configuration) — see
// DESIGN.md's Open Question decision on this.
const (
	clusterThreshold         = 8.0
	minSpansForColumn        = 3
	minLeftVariation         = 50.0
	minColumnPosition        = 200.0
	maxRightVariation        = 3.7
	farRightPosition         = 450.0
	minLeftVariationFarRight = 5.0
)

type spanEdges struct {
	leftX, rightX float64
}

// detectRightAlignedColumns clusters every span's right edge across all
// lines and reports the average right-edge position of each cluster that
// looks like a genuine right-aligned column: enough members, left edges
// that vary (ruling out a left-aligned block that merely happens to end
// near the same column), right edges that stay tight, and positioned far
// enough across the page to not be an accidental coincidence near the
// left margin.
func detectRightAlignedColumns(lines []Line) []float64 {
	var allEdges []spanEdges
	for _, line := range lines {
		for _, span := range line {
			allEdges = append(allEdges, spanEdges{leftX: span.BBox.L, rightX: span.BBox.R})
		}
	}
	if len(allEdges) == 0 {
		return nil
	}

	var clusters [][]spanEdges
	for _, edges := range allEdges {
		best := -1
		minDistance := math.MaxFloat64
		for i, cluster := range clusters {
			var sum float64
			for _, e := range cluster {
				sum += e.rightX
			}
			center := sum / float64(len(cluster))
			distance := math.Abs(edges.rightX - center)
			if distance < clusterThreshold && distance < minDistance {
				best = i
				minDistance = distance
			}
		}
		if best >= 0 {
			clusters[best] = append(clusters[best], edges)
		} else {
			clusters = append(clusters, []spanEdges{edges})
		}
	}

	var positions []float64
	for _, cluster := range clusters {
		if len(cluster) < minSpansForColumn {
			continue
		}
		minLeft, maxLeft := math.Inf(1), math.Inf(-1)
		minRight, maxRight := math.Inf(1), math.Inf(-1)
		var sumRight float64
		for _, e := range cluster {
			minLeft = math.Min(minLeft, e.leftX)
			maxLeft = math.Max(maxLeft, e.leftX)
			minRight = math.Min(minRight, e.rightX)
			maxRight = math.Max(maxRight, e.rightX)
			sumRight += e.rightX
		}
		leftVariation := maxLeft - minLeft
		rightVariation := maxRight - minRight
		avgRightX := sumRight / float64(len(cluster))

		leftVariationThreshold := minLeftVariation
		if avgRightX >= farRightPosition {
			leftVariationThreshold = minLeftVariationFarRight
		}

		if leftVariation >= leftVariationThreshold &&
			rightVariation < maxRightVariation &&
			avgRightX >= minColumnPosition {
			positions = append(positions, avgRightX)
		}
	}
	return positions
}

// isRightAligned reports whether span's right edge is within threshold of
// any detected right-aligned column position.
func (s Span) isRightAligned(positions []float64, threshold float64) bool {
	_, ok := s.matchRightAlignedColumn(positions, threshold)
	return ok
}

// matchRightAlignedColumn returns the detected column position span's right
// edge falls within threshold of. Rendering must target this shared
// position rather than the span's own right edge: spans in the same
// detected column can differ from it, and from each other, by up to
// maxRightVariation and still belong to the column.
func (s Span) matchRightAlignedColumn(positions []float64, threshold float64) (float64, bool) {
	for _, pos := range positions {
		if math.Abs(s.BBox.R-pos) < threshold {
			return pos, true
		}
	}
	return 0, false
}
