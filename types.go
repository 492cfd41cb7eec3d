package drawsheet

import (
	"strings"
	"time"
)

// TokenKind classifies a positioned token. The ordering is significant:
// higher kinds win majority-vote ties when a column's kind is decided,
// since a mis-typed anchor damages row assembly far more than a
// mis-typed value.
type TokenKind int

const (
	KindNoise TokenKind = iota
	KindValue
	KindTag
	KindSession
	KindDate
)

// String returns a short label for diagnostics output.
func (k TokenKind) String() string {
	switch k {
	case KindDate:
		return "date"
	case KindSession:
		return "session"
	case KindValue:
		return "value"
	case KindTag:
		return "tag"
	default:
		return "noise"
	}
}

// RawToken is a single text run extracted from a PDF page, positioned in
// PDF page space (origin bottom-left, Y increases toward the top of the
// page). This is the parser's input unit; it carries no classification.
type RawToken struct {
	Text string
	X    float64
	Y    float64
	Page int
}

// PositionedToken is a RawToken after classification. Immutable once
// classified.
type PositionedToken struct {
	Text string
	X    float64
	Y    float64
	Page int
	Kind TokenKind
}

// Column is a vertical run of tokens sharing an X position. Columns are
// ephemeral: rebuilt for every page, never persisted.
type Column struct {
	CenterX float64
	Kind    TokenKind
	Items   []PositionedToken // sorted by Y descending (top of page first)
}

// Pane is an independently laid-out sub-table. Single-table pages have
// exactly one pane spanning every column on the page.
type Pane struct {
	ValueColumns  []Column // left to right, capped to the game's arity
	DateColumn    *Column
	SessionColumn *Column
	TagColumn     *Column
}

// DrawRecord is one reconstructed draw. Values preserve left-to-right
// reading order; downstream consumers rely on positional ordering.
type DrawRecord struct {
	Date    time.Time
	Session string
	Values  []int
	Tag     string
}

// MergeKey is the logical identity of a draw, used to deduplicate
// records picked up from more than one page or pane.
type MergeKey struct {
	Date    string // ISO-8601 calendar date
	Session string // empty for games without sessions
	Variant string // variant tag for games with a parallel drawing
}

// Key derives the record's merge key. Session participates only when the
// game draws multiple times per day. A tag participates only when the
// game declares it a variant (a separate drawing for the same date);
// any other tag is a relabeling of the primary draw and collapses to
// the primary key, where merge priority picks the canonical copy.
func (r DrawRecord) Key(game GameConfig) MergeKey {
	k := MergeKey{Date: r.Date.Format(time.DateOnly)}
	if game.HasSessions() {
		k.Session = r.Session
	}
	if game.IsVariantTag(r.Tag) {
		k.Variant = r.Tag
	}
	return k
}

// GameConfig carries the per-game parameters the caller must supply: the
// draw arity, the legal numeric domain, and the session and tag
// vocabularies (both optional).
type GameConfig struct {
	// Name identifies the game in CLI output and serialized headers.
	Name string

	// Arity is the number of values drawn per record. Rows that do not
	// assemble exactly this many values are discarded.
	Arity int

	// MinValue and MaxValue bound the game's numeric domain. Numeric
	// tokens outside the range classify as noise, which keeps page
	// numbers and multipliers out of the value columns.
	MinValue int
	MaxValue int

	// Sessions enumerates time-of-day draw labels, e.g. {"M", "E"} or
	// {"MORNING", "DAY", "EVENING"}. Empty for single-draw games.
	Sessions []string

	// TagPriority maps tags to merge ranks. When two records share a
	// merge key, the higher-ranked tag wins. Unlisted tags rank 0,
	// below everything.
	TagPriority map[string]int

	// UntaggedPriority is the merge rank of a record with no tag.
	UntaggedPriority int

	// VariantTags are tags that mark a separate drawing for the same
	// date (e.g. a double-play draw) rather than a relabeling of the
	// primary; they get their own merge key instead of competing with
	// the primary record.
	VariantTags []string
}

// HasSessions reports whether the game draws more than once per day.
func (g GameConfig) HasSessions() bool {
	return len(g.Sessions) > 0
}

// IsVariantTag reports whether tag identifies a parallel drawing.
// Matching is case-insensitive, same as tag classification.
func (g GameConfig) IsVariantTag(tag string) bool {
	for _, v := range g.VariantTags {
		if strings.EqualFold(tag, v) {
			return true
		}
	}
	return false
}

// LayoutHeuristics holds every threshold the layout-reconstruction
// stages calibrate against. Bulletins vary in font size, leading, and
// column spacing between games and printings, so each stage derives its
// working tolerance from the page itself; these parameters only bound
// that self-calibration.
type LayoutHeuristics struct {
	// MedianGapFraction scales the median X gap into the column
	// clustering radius.
	MedianGapFraction float64

	// EpsilonMin and EpsilonMax clamp the clustering radius.
	EpsilonMin float64
	EpsilonMax float64

	// ToleranceFraction scales the estimated row pitch into the Y
	// matching tolerance used during row assembly.
	ToleranceFraction float64

	// ToleranceMin and ToleranceMax clamp the matching tolerance.
	ToleranceMin float64
	ToleranceMax float64

	// PitchNoiseFloor discards sub-character Y jitter when estimating
	// the row pitch.
	PitchNoiseFloor float64

	// PaneSplitMinGap is the smallest horizontal gap between value
	// columns that indicates two side-by-side tables.
	PaneSplitMinGap float64

	// PaneSplitMinValueColumns is the fewest value columns a page must
	// have before a pane split is considered at all.
	PaneSplitMinValueColumns int
}

// DefaultHeuristics returns thresholds that handle every bulletin
// format observed so far without per-game tuning.
func DefaultHeuristics() LayoutHeuristics {
	return LayoutHeuristics{
		MedianGapFraction:        0.5,
		EpsilonMin:               6.0,
		EpsilonMax:               14.0,
		ToleranceFraction:        0.3,
		ToleranceMin:             2.0,
		ToleranceMax:             8.0,
		PitchNoiseFloor:          1.5,
		PaneSplitMinGap:          60.0,
		PaneSplitMinValueColumns: 4,
	}
}

// Config controls parser behavior beyond the per-game parameters.
type Config struct {
	// Heuristics bounds the self-calibrating layout thresholds
	// (default: DefaultHeuristics()).
	Heuristics LayoutHeuristics

	// CollectTrace retains every classified token in the result for
	// offline inspection (default: false).
	CollectTrace bool

	// EnableMetricsLogging logs run statistics after each parse
	// (default: false).
	EnableMetricsLogging bool
}

// DefaultConfig returns the default parser configuration.
func DefaultConfig() Config {
	return Config{
		Heuristics: DefaultHeuristics(),
	}
}

// Result is a completed parse: the merged record sequence plus the
// optional diagnostic token dump.
type Result struct {
	Records []DrawRecord

	// Trace is the flat dump of every classified token, populated only
	// when Config.CollectTrace is set. Ordered by page, then top to
	// bottom, then left to right.
	Trace []PositionedToken

	// Metrics holds run statistics for the parse that produced this
	// result.
	Metrics ParseMetrics
}

// ParseMetrics contains statistics for one parser run.
type ParseMetrics struct {
	Pages      int
	Tokens     int
	Kept       int // tokens remaining after the boilerplate drop-list, noise included
	Candidates int // rows assembled before deduplication
	Records    int
	Duration   time.Duration
}
