package drawsheet

import (
	"log"
	"sort"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// ErrNoRows is returned when an entire document yields zero draw
// records. Every other irregularity in this domain is routine noise the
// heuristics absorb, but a document-wide empty result signals the
// bulletin's layout changed under us and must not pass as success.
var ErrNoRows = errors.New("no draw rows recovered from document")

// Parser reconstructs draw records from a positioned-token stream. It is
// a pure function of (tokens, config): no state survives a Parse call,
// so one Parser may serve many documents.
type Parser struct {
	game   GameConfig
	config Config
}

// NewParser creates a parser for one game with default configuration.
func NewParser(game GameConfig) *Parser {
	return &Parser{game: game, config: DefaultConfig()}
}

// NewParserWithConfig creates a parser with custom configuration.
func NewParserWithConfig(game GameConfig, config Config) *Parser {
	return &Parser{game: game, config: config}
}

// Parse runs the full layout-reconstruction pipeline: classification,
// then per-page column clustering, pane splitting, pitch calibration,
// and row assembly, then a document-wide merge. Pages are independent,
// so they run in parallel; the merge is an order-independent fold, and
// candidates are collected in page order first, so output is
// deterministic for a given token stream.
func (p *Parser) Parse(tokens []RawToken) (*Result, error) {
	start := time.Now()

	classified := classifyTokens(tokens, p.game)
	pages := groupByPage(classified)

	perPage := make([][]DrawRecord, len(pages))
	var g errgroup.Group
	for i, pageTokens := range pages {
		g.Go(func() error {
			perPage[i] = p.parsePage(pageTokens)
			return nil
		})
	}
	// Workers never fail; Wait is only the collection barrier.
	_ = g.Wait()

	var candidates []DrawRecord
	for _, recs := range perPage {
		candidates = append(candidates, recs...)
	}

	result := &Result{Records: mergeRecords(candidates, p.game)}
	if p.config.CollectTrace {
		result.Trace = traceDump(classified)
	}

	result.Metrics = ParseMetrics{
		Pages:      len(pages),
		Tokens:     len(tokens),
		Kept:       len(classified),
		Candidates: len(candidates),
		Records:    len(result.Records),
		Duration:   time.Since(start),
	}
	if p.config.EnableMetricsLogging {
		logMetrics(result.Metrics)
	}

	if len(result.Records) == 0 {
		return result, errors.Wrapf(ErrNoRows,
			"%d tokens on %d pages classified, %d kept", len(tokens), len(pages), len(classified))
	}
	return result, nil
}

// parsePage runs the per-page stages over one page's classified tokens.
func (p *Parser) parsePage(tokens []PositionedToken) []DrawRecord {
	columns := clusterColumns(tokens, p.config.Heuristics)
	if len(columns) == 0 {
		return nil
	}

	var records []DrawRecord
	for _, pane := range splitPanes(columns, p.game, p.config.Heuristics) {
		cal := calibratePane(pane, p.config.Heuristics)
		records = append(records, assembleRows(pane, cal, p.game)...)
	}
	return records
}

// groupByPage partitions tokens into per-page slices ordered by page
// number.
func groupByPage(tokens []PositionedToken) [][]PositionedToken {
	byPage := make(map[int][]PositionedToken)
	for _, t := range tokens {
		byPage[t.Page] = append(byPage[t.Page], t)
	}

	numbers := make([]int, 0, len(byPage))
	for n := range byPage {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	pages := make([][]PositionedToken, 0, len(byPage))
	for _, n := range numbers {
		pages = append(pages, byPage[n])
	}
	return pages
}

// traceDump orders the classified tokens for the diagnostic side
// channel: by page, then top of page to bottom, then left to right.
func traceDump(tokens []PositionedToken) []PositionedToken {
	dump := make([]PositionedToken, len(tokens))
	copy(dump, tokens)
	sort.Slice(dump, func(i, j int) bool {
		if dump[i].Page != dump[j].Page {
			return dump[i].Page < dump[j].Page
		}
		if dump[i].Y != dump[j].Y {
			return dump[i].Y > dump[j].Y
		}
		return dump[i].X < dump[j].X
	})
	return dump
}

func logMetrics(m ParseMetrics) {
	log.Printf("parse: %d pages, %d/%d tokens kept, %d candidates, %d records in %v",
		m.Pages, m.Kept, m.Tokens, m.Candidates, m.Records, m.Duration)
}
