package drawsheet

// fallbackPitchFactor sizes the stand-in pitch, in tolerance ceilings,
// for panes too short to measure a real one.
const fallbackPitchFactor = 4

// rowCalibration is a pane's estimated row pitch and the Y matching
// tolerance derived from it.
type rowCalibration struct {
	pitch     float64
	tolerance float64
}

// calibratePane derives the pane's Y matching tolerance from its row
// pitch. The pitch is the median spacing between consecutive anchor
// tokens; a fixed fraction of it, clamped, keeps row matching robust to
// both tightly-leaded and loosely-leaded tables without per-bulletin
// tuning.
func calibratePane(pane Pane, h LayoutHeuristics) rowCalibration {
	anchor := pane.SessionColumn
	if anchor == nil {
		anchor = pane.DateColumn
	}

	// Items are sorted Y descending (top of page first); consecutive
	// differences are the candidate row pitches. Sub-character jitter
	// below the noise floor is not row spacing.
	var gaps []float64
	if anchor != nil {
		for i := 1; i < len(anchor.Items); i++ {
			gap := anchor.Items[i-1].Y - anchor.Items[i].Y
			if gap > h.PitchNoiseFloor {
				gaps = append(gaps, gap)
			}
		}
	}
	if len(gaps) == 0 {
		// A single-row pane gives nothing to calibrate against; stay
		// permissive and let all-or-nothing row assembly filter misses.
		// The stand-in pitch depends only on the tolerance ceiling so
		// widening ToleranceFraction never shrinks the date-search
		// window.
		return rowCalibration{
			pitch:     h.ToleranceMax * fallbackPitchFactor,
			tolerance: h.ToleranceMax,
		}
	}

	pitch := calculateMedian(gaps)
	return rowCalibration{
		pitch:     pitch,
		tolerance: clamp(pitch*h.ToleranceFraction, h.ToleranceMin, h.ToleranceMax),
	}
}
