package drawsheet

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// assembleRows reconstructs candidate draw records from one pane. Every
// anchor token (a date, or a session label within a date's row for
// session-bearing games) seeds one candidate; companion values are the
// vertically closest token in each value column within the pane's
// tolerance. A row is emitted only when every value column matches and
// the assembled count equals the game's arity. A partially-matched row
// is more likely a heuristic misfire than a real but incomplete draw,
// so partial rows are dropped silently.
func assembleRows(pane Pane, cal rowCalibration, game GameConfig) []DrawRecord {
	if pane.DateColumn == nil {
		return nil
	}

	if game.HasSessions() && pane.SessionColumn != nil {
		return assembleSessionRows(pane, cal, game)
	}

	var records []DrawRecord
	for _, anchor := range pane.DateColumn.Items {
		if anchor.Kind != KindDate {
			continue
		}
		date, ok := parseDate(anchor.Text)
		if !ok {
			continue
		}
		values, ok := matchValues(pane, anchor.Y, cal.tolerance, game)
		if !ok {
			continue
		}
		records = append(records, DrawRecord{
			Date:   date,
			Values: values,
			Tag:    matchTag(pane, anchor.Y, cal.tolerance),
		})
	}
	return records
}

// assembleSessionRows anchors on session labels instead of dates: a
// bulletin prints the date once per row with one draw per session beside
// it, so each session token is its own logical row. The owning date is
// the nearest date token at or above the session label within one row
// pitch.
func assembleSessionRows(pane Pane, cal rowCalibration, game GameConfig) []DrawRecord {
	var records []DrawRecord
	for _, anchor := range pane.SessionColumn.Items {
		if anchor.Kind != KindSession {
			continue
		}
		date, ok := owningDate(pane.DateColumn, anchor, cal.pitch)
		if !ok {
			continue
		}
		values, ok := matchValues(pane, anchor.Y, cal.tolerance, game)
		if !ok {
			continue
		}
		records = append(records, DrawRecord{
			Date:    date,
			Session: strings.ToUpper(anchor.Text),
			Values:  values,
			Tag:     matchTag(pane, anchor.Y, cal.tolerance),
		})
	}
	return records
}

// owningDate finds the date a session label belongs to. Session labels
// sit to the right of their date, at the same Y or slightly below when
// several sessions share one printed date; a date below the label or
// more than a pitch above it belongs to a different row.
func owningDate(dateCol *Column, session PositionedToken, pitch float64) (time.Time, bool) {
	var (
		best     PositionedToken
		bestDist = math.MaxFloat64
		found    bool
	)
	for _, t := range dateCol.Items {
		if t.Kind != KindDate || t.X >= session.X {
			continue
		}
		dy := t.Y - session.Y
		if dy < -pitch/2 || dy > pitch {
			continue
		}
		if d := math.Abs(dy); d < bestDist {
			best = t
			bestDist = d
			found = true
		}
	}
	if !found {
		return time.Time{}, false
	}
	return parseDate(best.Text)
}

// matchValues picks, for each value column left to right, the value
// token vertically closest to the anchor within tolerance. Closest
// match wins, not first found: a neighboring row's token can also fall
// inside a generous tolerance, and the nearer one is the right one.
// Returns false unless every column matched and the row reached the
// game's arity.
func matchValues(pane Pane, anchorY, tolerance float64, game GameConfig) ([]int, bool) {
	if len(pane.ValueColumns) < game.Arity {
		return nil, false
	}
	values := make([]int, 0, game.Arity)
	for _, col := range pane.ValueColumns {
		tok, ok := nearestInColumn(col, anchorY, tolerance, KindValue)
		if !ok {
			return nil, false
		}
		n, err := strconv.Atoi(tok.Text)
		if err != nil {
			return nil, false
		}
		values = append(values, n)
	}
	if len(values) != game.Arity {
		return nil, false
	}
	return values, true
}

// matchTag attaches the nearest tag token within the same tolerance, if
// the pane has a tag column. A missing tag never drops the row.
func matchTag(pane Pane, anchorY, tolerance float64) string {
	if pane.TagColumn == nil {
		return ""
	}
	tok, ok := nearestInColumn(*pane.TagColumn, anchorY, tolerance, KindTag)
	if !ok {
		return ""
	}
	return strings.ToUpper(tok.Text)
}

// nearestInColumn returns the column member of the wanted kind that
// minimizes |y - anchorY|, provided it falls within tolerance.
func nearestInColumn(col Column, anchorY, tolerance float64, want TokenKind) (PositionedToken, bool) {
	var (
		best     PositionedToken
		bestDist = math.MaxFloat64
		found    bool
	)
	for _, t := range col.Items {
		if t.Kind != want {
			continue
		}
		if d := math.Abs(t.Y - anchorY); d < bestDist {
			best = t
			bestDist = d
			found = true
		}
	}
	if !found || bestDist > tolerance {
		return PositionedToken{}, false
	}
	return best, true
}
