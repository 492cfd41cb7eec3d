package drawsheet

import (
	"fmt"
	"time"
)

// tok builds one raw token at a page position.
func tok(page int, x, y float64, text string) RawToken {
	return RawToken{Text: text, X: x, Y: y, Page: page}
}

// bulletinRow lays out one draw row: a date at dateX and one value per
// entry of valueXs, all on the same baseline.
func bulletinRow(page int, y float64, dateX float64, date string, valueXs []float64, values []int) []RawToken {
	row := []RawToken{tok(page, dateX, y, date)}
	for i, x := range valueXs {
		row = append(row, tok(page, x, y, fmt.Sprintf("%d", values[i])))
	}
	return row
}

// fiveValueXs places the standard single-pane fixture's value columns:
// a date column at x=50 and five value columns, rows pitched 18 units
// apart from y=700 downward.
var fiveValueXs = []float64{120, 150, 180, 210, 240}

func fiveValueBulletin(rows int) []RawToken {
	var tokens []RawToken
	for i := 0; i < rows; i++ {
		date := time.Date(2024, 6, 1+i, 0, 0, 0, 0, time.UTC).Format("01/02/2006")
		values := []int{3, 8, 14, 22, 31}
		tokens = append(tokens, bulletinRow(1, 700-float64(i)*18, 50, date, fiveValueXs, values)...)
	}
	return tokens
}

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
