package drawsheet

import (
	"fmt"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSinglePaneBulletin(t *testing.T) {
	parser := NewParser(Cash5())

	result, err := parser.Parse(fiveValueBulletin(10))
	require.NoError(t, err)
	require.Len(t, result.Records, 10)

	for i, rec := range result.Records {
		assert.Len(t, rec.Values, 5, "arity invariant")
		assert.Equal(t, []int{3, 8, 14, 22, 31}, rec.Values)
		if i > 0 {
			assert.True(t, result.Records[i-1].Date.Before(rec.Date), "records sorted by date ascending")
		}
	}

	assert.Equal(t, 1, result.Metrics.Pages)
	assert.Equal(t, 60, result.Metrics.Tokens)
	assert.Equal(t, 10, result.Metrics.Records)
}

func TestParseTwoPanePage(t *testing.T) {
	game := Cash5()

	// Left pane: the primary draw table. Right pane: the double-play
	// table for the same dates, with its tag column.
	var tokens []RawToken
	leftXs := []float64{100, 120, 140, 160, 180}
	rightXs := []float64{400, 420, 440, 460, 480}
	for i := 0; i < 5; i++ {
		y := 700 - float64(i)*18
		date := time.Date(2024, 6, 1+i, 0, 0, 0, 0, time.UTC).Format("01/02/2006")
		tokens = append(tokens, bulletinRow(1, y, 50, date, leftXs, []int{3, 8, 14, 22, 31})...)
		tokens = append(tokens, bulletinRow(1, y, 350, date, rightXs, []int{5, 9, 17, 20, 33})...)
		tokens = append(tokens, tok(1, 520, y, "DOUBLE PLAY"))
	}

	result, err := NewParser(game).Parse(tokens)
	require.NoError(t, err)
	require.Len(t, result.Records, 10, "both panes contribute records")

	var primary, variant int
	for _, rec := range result.Records {
		switch rec.Tag {
		case "":
			primary++
			assert.Equal(t, []int{3, 8, 14, 22, 31}, rec.Values, "no cross-pane value mixing")
		case "DOUBLE PLAY":
			variant++
			assert.Equal(t, []int{5, 9, 17, 20, 33}, rec.Values)
		default:
			t.Fatalf("unexpected tag %q", rec.Tag)
		}
	}
	assert.Equal(t, 5, primary)
	assert.Equal(t, 5, variant)
}

func TestParseSessionBulletin(t *testing.T) {
	game := Daily3()

	tokens := []RawToken{
		tok(1, 50, 700, "06/15/2024"),
		tok(1, 90, 700, "MORNING"),
		tok(1, 130, 700, "3"), tok(1, 160, 700, "7"), tok(1, 190, 700, "11"),
		tok(1, 90, 694, "EVENING"),
		tok(1, 130, 694, "4"), tok(1, 160, 694, "8"), tok(1, 190, 694, "12"),
		tok(1, 50, 664, "06/16/2024"),
		tok(1, 90, 664, "MORNING"),
		tok(1, 130, 664, "5"), tok(1, 160, 664, "9"), tok(1, 190, 664, "13"),
		tok(1, 90, 658, "EVENING"),
		tok(1, 130, 658, "6"), tok(1, 160, 658, "10"), tok(1, 190, 658, "14"),
	}

	result, err := NewParser(game).Parse(tokens)
	require.NoError(t, err)
	require.Len(t, result.Records, 4, "one record per date and session")

	assert.Equal(t, mustDate("2024-06-15"), result.Records[0].Date)
	assert.Equal(t, "MORNING", result.Records[0].Session)
	assert.Equal(t, []int{3, 7, 11}, result.Records[0].Values)
	assert.Equal(t, mustDate("2024-06-15"), result.Records[1].Date)
	assert.Equal(t, "EVENING", result.Records[1].Session)
	assert.Equal(t, []int{4, 8, 12}, result.Records[1].Values)
	assert.Equal(t, mustDate("2024-06-16"), result.Records[2].Date)
	assert.Equal(t, mustDate("2024-06-16"), result.Records[3].Date)
}

func TestParseMetricsKeptCountsDropListSurvivors(t *testing.T) {
	// Kept counts everything surviving the boilerplate drop-list: a
	// noise token stays in it for the trace, a dropped header does not.
	tokens := fiveValueBulletin(3)
	tokens = append(tokens,
		tok(1, 300, 700, "VOID"),
		tok(1, 300, 640, "Winning Numbers"),
	)

	result, err := NewParser(Cash5()).Parse(tokens)
	require.NoError(t, err)
	assert.Equal(t, 20, result.Metrics.Tokens)
	assert.Equal(t, 19, result.Metrics.Kept, "noise kept, boilerplate dropped")
}

func TestParseMultiPageDeduplication(t *testing.T) {
	game := Cash5()

	// Page 2 reprints page 1's rows as part of a running total.
	var tokens []RawToken
	tokens = append(tokens, fiveValueBulletin(6)...)
	for _, tk := range fiveValueBulletin(6) {
		tk.Page = 2
		tokens = append(tokens, tk)
	}

	result, err := NewParser(game).Parse(tokens)
	require.NoError(t, err)
	assert.Len(t, result.Records, 6)
	assert.Equal(t, 2, result.Metrics.Pages)

	seen := make(map[MergeKey]bool)
	for _, rec := range result.Records {
		key := rec.Key(game)
		require.False(t, seen[key], "duplicate merge key in output")
		seen[key] = true
	}
}

func TestParseIsIdempotent(t *testing.T) {
	parser := NewParser(Cash5())
	tokens := fiveValueBulletin(8)

	first, err := parser.Parse(tokens)
	require.NoError(t, err)
	second, err := parser.Parse(tokens)
	require.NoError(t, err)

	assert.Equal(t, first.Records, second.Records, "no randomness anywhere in the pipeline")
}

func TestParseToleranceMonotonicity(t *testing.T) {
	game := Cash5()

	// Rows pitched 18, with one value jittered 5 below its row: matched
	// only under the wider tolerance.
	tokens := fiveValueBulletin(6)
	for i := range tokens {
		if tokens[i].Y == 682 && tokens[i].X == 180 {
			tokens[i].Y = 677
		}
	}

	counts := make([]int, 0, 3)
	for _, fraction := range []float64{0.1, 0.3, 0.45} {
		config := DefaultConfig()
		config.Heuristics.ToleranceFraction = fraction
		result, _ := NewParserWithConfig(game, config).Parse(tokens)
		counts = append(counts, len(result.Records))
	}

	for i := 1; i < len(counts); i++ {
		assert.GreaterOrEqual(t, counts[i], counts[i-1],
			"a more permissive tolerance can only add or preserve matches")
	}
	assert.Equal(t, 5, counts[0], "jittered row unmatched at tight tolerance")
	assert.Equal(t, 6, counts[2], "jittered row matched at wide tolerance")
}

func TestParseToleranceMonotonicitySingleSessionRow(t *testing.T) {
	game := Daily3()

	// A one-row pane has no pitch to measure and takes the permissive
	// stand-in, and the date printed 20 above its session label must
	// stay inside the date-search window however wide the tolerance
	// fraction is set.
	tokens := []RawToken{
		tok(1, 50, 700, "06/15/2024"),
		tok(1, 90, 680, "MORNING"),
		tok(1, 130, 680, "3"), tok(1, 160, 680, "7"), tok(1, 190, 680, "11"),
	}

	counts := make([]int, 0, 2)
	for _, fraction := range []float64{0.3, 0.45} {
		config := DefaultConfig()
		config.Heuristics.ToleranceFraction = fraction
		result, err := NewParserWithConfig(game, config).Parse(tokens)
		require.NoError(t, err)
		counts = append(counts, len(result.Records))
	}

	assert.GreaterOrEqual(t, counts[1], counts[0],
		"a more permissive tolerance can only add or preserve matches")
	assert.Equal(t, []int{1, 1}, counts)
}

func TestParseZeroRowsIsFatal(t *testing.T) {
	parser := NewParserWithConfig(Cash5(), Config{
		Heuristics:   DefaultHeuristics(),
		CollectTrace: true,
	})

	// Prose-only page: nothing classifiable as a date or value row.
	result, err := parser.Parse([]RawToken{
		tok(1, 50, 700, "No draws were held this period."),
		tok(1, 50, 682, "See next bulletin."),
	})

	require.Error(t, err, "an empty document is a layout failure, not an empty success")
	assert.True(t, errors.Is(err, ErrNoRows))
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Trace, "the dump accompanies the failure for offline inspection")
}

func TestParseEmptyTokenStream(t *testing.T) {
	_, err := NewParser(Classic6()).Parse(nil)
	assert.True(t, errors.Is(err, ErrNoRows))
}

func TestParseTraceDumpOrdering(t *testing.T) {
	config := DefaultConfig()
	config.CollectTrace = true
	parser := NewParserWithConfig(Cash5(), config)

	tokens := fiveValueBulletin(3)
	for _, tk := range fiveValueBulletin(3) {
		tk.Page = 2
		tokens = append(tokens, tk)
	}

	result, err := parser.Parse(tokens)
	require.NoError(t, err)
	require.Len(t, result.Trace, 36)

	for i := 1; i < len(result.Trace); i++ {
		prev, cur := result.Trace[i-1], result.Trace[i]
		if prev.Page != cur.Page {
			assert.Less(t, prev.Page, cur.Page)
			continue
		}
		if prev.Y != cur.Y {
			assert.Greater(t, prev.Y, cur.Y, "top of page first within a page")
			continue
		}
		assert.Less(t, prev.X, cur.X, "left to right within a row")
	}
}

func TestParseManyPagesParallel(t *testing.T) {
	game := Classic6()
	valueXs := []float64{120, 145, 170, 195, 220, 245}

	var tokens []RawToken
	for page := 1; page <= 16; page++ {
		for row := 0; row < 8; row++ {
			date := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC).
				AddDate(0, 0, (page-1)*8+row).Format("01/02/2006")
			values := []int{2, 11, 19, 27, 38, 53}
			tokens = append(tokens, bulletinRow(page, 700-float64(row)*18, 50, date, valueXs, values)...)
		}
	}

	result, err := NewParser(game).Parse(tokens)
	require.NoError(t, err)
	assert.Len(t, result.Records, 128)
	assert.Equal(t, 16, result.Metrics.Pages)

	for i := 1; i < len(result.Records); i++ {
		assert.True(t, result.Records[i-1].Date.Before(result.Records[i].Date),
			fmt.Sprintf("output order must be deterministic at record %d", i))
	}
}
