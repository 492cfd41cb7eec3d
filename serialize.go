package drawsheet

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
)

// WriteCSV writes records with the fixed column contract downstream
// consumers depend on: a date column, the game's value columns in
// left-to-right reading order, then a session column for session games
// and a trailing tag column for games with tag vocabularies. Value
// ordering is positional, never sorted.
//
// The header is arity-dependent, so rows are emitted through the plain
// csv writer rather than struct tags.
func WriteCSV(w io.Writer, records []DrawRecord, game GameConfig) error {
	cw := csv.NewWriter(w)

	header := []string{"date"}
	for i := 1; i <= game.Arity; i++ {
		header = append(header, "n"+strconv.Itoa(i))
	}
	if game.HasSessions() {
		header = append(header, "session")
	}
	if game.hasTags() {
		header = append(header, "tag")
	}
	if err := cw.Write(header); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}

	for _, rec := range records {
		row := []string{rec.Date.Format(time.DateOnly)}
		for _, v := range rec.Values {
			row = append(row, strconv.Itoa(v))
		}
		if game.HasSessions() {
			row = append(row, rec.Session)
		}
		if game.hasTags() {
			row = append(row, rec.Tag)
		}
		if err := cw.Write(row); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}

	cw.Flush()
	return errors.Wrap(cw.Error(), "failed to flush CSV")
}

func (g GameConfig) hasTags() bool {
	return len(g.TagPriority) > 0 || len(g.VariantTags) > 0
}

// jsonRecord is the wire shape of one draw record.
type jsonRecord struct {
	Date    string `json:"date"`
	Session string `json:"session,omitempty"`
	Values  []int  `json:"values"`
	Tag     string `json:"tag,omitempty"`
}

// WriteJSON writes records as a JSON array.
func WriteJSON(w io.Writer, records []DrawRecord) error {
	out := make([]jsonRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, jsonRecord{
			Date:    rec.Date.Format(time.DateOnly),
			Session: rec.Session,
			Values:  rec.Values,
			Tag:     rec.Tag,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(out), "failed to encode JSON")
}

// traceRow is one line of the diagnostic token dump.
type traceRow struct {
	Page int     `csv:"page"`
	X    float64 `csv:"x"`
	Y    float64 `csv:"y"`
	Kind string  `csv:"kind"`
	Text string  `csv:"text"`
}

// WriteTraceCSV writes the diagnostic token dump for offline inspection
// of a bulletin whose layout resists the heuristics.
func WriteTraceCSV(w io.Writer, trace []PositionedToken) error {
	rows := make([]traceRow, 0, len(trace))
	for _, t := range trace {
		rows = append(rows, traceRow{
			Page: t.Page,
			X:    t.X,
			Y:    t.Y,
			Kind: t.Kind.String(),
			Text: t.Text,
		})
	}
	return errors.Wrap(gocsv.Marshal(&rows, w), "failed to write trace CSV")
}
