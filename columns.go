package drawsheet

import (
	"math"
	"sort"
)

// clusterColumns groups one page's classified tokens into vertical
// columns by X coordinate. Noise tokens are excluded before clustering.
//
// The clustering radius is adaptive: fixed epsilons fail because column
// spacing varies with bulletin format and font size, so the radius is
// derived from the median gap between distinct X positions and clamped
// to the configured floor/ceiling.
func clusterColumns(tokens []PositionedToken, h LayoutHeuristics) []Column {
	var kept []PositionedToken
	for _, t := range tokens {
		if t.Kind != KindNoise {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	// Distinct rounded X positions, ascending.
	seen := make(map[float64]bool)
	var xs []float64
	for _, t := range kept {
		x := math.Round(t.X)
		if !seen[x] {
			seen[x] = true
			xs = append(xs, x)
		}
	}
	sort.Float64s(xs)

	epsilon := clusterEpsilon(xs, h)

	// Single greedy left-to-right pass: a new group starts whenever the
	// next X is more than epsilon from the last member of the current
	// group. Each group's center is its mean X.
	var centers []float64
	group := []float64{xs[0]}
	for _, x := range xs[1:] {
		if x-group[len(group)-1] > epsilon {
			centers = append(centers, meanOf(group))
			group = group[:0]
		}
		group = append(group, x)
	}
	centers = append(centers, meanOf(group))

	// Nearest-center assignment rather than range membership: tokens
	// drift slightly within a column due to kerning.
	columns := make([]Column, len(centers))
	for i, c := range centers {
		columns[i].CenterX = c
	}
	for _, t := range kept {
		best := 0
		bestDist := math.Abs(t.X - centers[0])
		for i := 1; i < len(centers); i++ {
			if d := math.Abs(t.X - centers[i]); d < bestDist {
				best = i
				bestDist = d
			}
		}
		columns[best].Items = append(columns[best].Items, t)
	}

	out := columns[:0]
	for _, col := range columns {
		if len(col.Items) == 0 {
			continue
		}
		sort.Slice(col.Items, func(i, j int) bool {
			return col.Items[i].Y > col.Items[j].Y
		})
		col.Kind = dominantKind(col.Items)
		out = append(out, col)
	}
	return out
}

// clusterEpsilon derives the clustering radius from the median gap
// between consecutive distinct X positions.
func clusterEpsilon(sortedXs []float64, h LayoutHeuristics) float64 {
	var gaps []float64
	for i := 1; i < len(sortedXs); i++ {
		gaps = append(gaps, sortedXs[i]-sortedXs[i-1])
	}
	if len(gaps) == 0 {
		return h.EpsilonMin
	}
	return clamp(calculateMedian(gaps)*h.MedianGapFraction, h.EpsilonMin, h.EpsilonMax)
}

// dominantKind is the most frequent kind among a column's members. Ties
// favor the higher-ordered kind (date > session > tag > value): losing
// an anchor column to a value vote breaks every row in the pane, while
// the reverse costs at most one column.
func dominantKind(items []PositionedToken) TokenKind {
	counts := make(map[TokenKind]int)
	for _, t := range items {
		counts[t.Kind]++
	}
	best := KindNoise
	bestCount := -1
	for kind, count := range counts {
		if count > bestCount || (count == bestCount && kind > best) {
			best = kind
			bestCount = count
		}
	}
	return best
}
