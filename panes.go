package drawsheet

import "math"

// splitPanes partitions a page's columns into independent sub-tables.
// Bulletins sometimes print two tables side by side to save space
// (typically the primary draw next to its double-play variant); left
// unsplit, the two would merge into one garbled table.
//
// This is a greedy single-split heuristic: it divides at the single
// largest gap between value columns and never produces more than two
// panes, matching every bulletin format observed.
func splitPanes(columns []Column, game GameConfig, h LayoutHeuristics) []Pane {
	var valueCols, otherCols []Column
	for _, col := range columns {
		if col.Kind == KindValue {
			valueCols = append(valueCols, col)
		} else {
			otherCols = append(otherCols, col)
		}
	}

	if len(valueCols) < h.PaneSplitMinValueColumns {
		return []Pane{buildPane(valueCols, otherCols, game)}
	}

	// Value columns arrive sorted left to right; find the widest gap.
	splitAt := 0
	widest := 0.0
	for i := 1; i < len(valueCols); i++ {
		gap := valueCols[i].CenterX - valueCols[i-1].CenterX
		if gap > widest {
			widest = gap
			splitAt = i
		}
	}
	if widest < h.PaneSplitMinGap {
		return []Pane{buildPane(valueCols, otherCols, game)}
	}

	leftValues := valueCols[:splitAt]
	rightValues := valueCols[splitAt:]
	leftMean := meanCenterX(leftValues)
	rightMean := meanCenterX(rightValues)

	// Anchor, session, and tag columns follow whichever pane's value
	// block they sit closest to.
	var leftOthers, rightOthers []Column
	for _, col := range otherCols {
		if math.Abs(col.CenterX-leftMean) <= math.Abs(col.CenterX-rightMean) {
			leftOthers = append(leftOthers, col)
		} else {
			rightOthers = append(rightOthers, col)
		}
	}

	return []Pane{
		buildPane(leftValues, leftOthers, game),
		buildPane(rightValues, rightOthers, game),
	}
}

// buildPane assembles a pane from its value columns and supporting
// columns. Value columns are capped to the game's arity from the left:
// bulletins append multiplier and extra columns on the right, and those
// are not drawn values.
func buildPane(valueCols []Column, otherCols []Column, game GameConfig) Pane {
	pane := Pane{ValueColumns: valueCols}
	if len(pane.ValueColumns) > game.Arity {
		pane.ValueColumns = pane.ValueColumns[:game.Arity]
	}
	for i := range otherCols {
		col := &otherCols[i]
		switch col.Kind {
		case KindDate:
			pane.DateColumn = pickRicher(pane.DateColumn, col)
		case KindSession:
			pane.SessionColumn = pickRicher(pane.SessionColumn, col)
		case KindTag:
			pane.TagColumn = pickRicher(pane.TagColumn, col)
		}
	}
	return pane
}

// pickRicher keeps the column with more members when a pane clusters two
// columns of the same kind; the leftmost wins ties.
func pickRicher(current, candidate *Column) *Column {
	if current == nil || len(candidate.Items) > len(current.Items) {
		return candidate
	}
	return current
}

func meanCenterX(cols []Column) float64 {
	var sum float64
	for _, c := range cols {
		sum += c.CenterX
	}
	return sum / float64(len(cols))
}
