package drawsheet

import (
	"math"

	"github.com/klippa-app/go-pdfium"
	"github.com/klippa-app/go-pdfium/references"
	"github.com/klippa-app/go-pdfium/requests"
	"github.com/pkg/errors"
)

// ExtractTokens reads every page of an open PDF document and returns the
// positioned text runs the parser consumes. Coordinates stay in native
// PDF page space (origin bottom-left).
//
// Bulletins are machine-generated but far from clean: fonts may ship
// without metrics, and some printings embed garbled namespaced strings.
// Extraction degrades instead of failing: characters without usable
// boxes fall back to a nominal width, zero-text pages yield zero tokens,
// and garbage strings pass through to classification, which discards
// them as noise.
func ExtractTokens(instance pdfium.Pdfium, document references.FPDF_DOCUMENT) ([]RawToken, error) {
	pageCount, err := instance.FPDF_GetPageCount(&requests.FPDF_GetPageCount{
		Document: document,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get page count")
	}

	var tokens []RawToken
	for i := 0; i < pageCount.PageCount; i++ {
		pageTokens, err := extractPageTokens(instance, document, i)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to extract page %d", i+1)
		}
		tokens = append(tokens, pageTokens...)
	}
	return tokens, nil
}

// positionedChar is one character with its box in PDF page space.
type positionedChar struct {
	text                     rune
	left, right, top, bottom float64
	hasBox                   bool
}

// extractPageTokens pulls the characters off one page and groups them
// into tokens.
func extractPageTokens(instance pdfium.Pdfium, document references.FPDF_DOCUMENT, pageIndex int) ([]RawToken, error) {
	pageResp, err := instance.FPDF_LoadPage(&requests.FPDF_LoadPage{
		Document: document,
		Index:    pageIndex,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load page")
	}
	defer instance.FPDF_ClosePage(&requests.FPDF_ClosePage{
		Page: pageResp.Page,
	})

	textPage, err := instance.FPDFText_LoadPage(&requests.FPDFText_LoadPage{
		Page: requests.Page{
			ByReference: &pageResp.Page,
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load text page")
	}
	defer instance.FPDFText_ClosePage(&requests.FPDFText_ClosePage{
		TextPage: textPage.TextPage,
	})

	charCount, err := instance.FPDFText_CountChars(&requests.FPDFText_CountChars{
		TextPage: textPage.TextPage,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to count characters")
	}
	if charCount.Count == 0 {
		return nil, nil
	}

	chars := make([]positionedChar, 0, charCount.Count)
	for i := 0; i < charCount.Count; i++ {
		unicodeRes, err := instance.FPDFText_GetUnicode(&requests.FPDFText_GetUnicode{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err != nil || unicodeRes.Unicode == 0 {
			continue
		}

		c := positionedChar{text: rune(unicodeRes.Unicode)}
		charBox, err := instance.FPDFText_GetCharBox(&requests.FPDFText_GetCharBox{
			TextPage: textPage.TextPage,
			Index:    i,
		})
		if err == nil {
			c.left = charBox.Left
			c.right = charBox.Right
			c.top = charBox.Top
			c.bottom = charBox.Bottom
			c.hasBox = c.right > c.left
		}
		chars = append(chars, c)
	}

	return groupCharsIntoTokens(chars, pageIndex+1), nil
}

// groupCharsIntoTokens joins a page's character sequence into positioned
// tokens. A single space inside a run (as in "Jan 5, 2024") does not end
// the token; a horizontal gap wider than the page's intra-token limit,
// or a jump to another baseline, does. This keeps multi-word date
// literals whole while still splitting at column boundaries.
func groupCharsIntoTokens(chars []positionedChar, page int) []RawToken {
	if len(chars) == 0 {
		return nil
	}

	maxGap := intraTokenGap(chars)

	var (
		tokens   []RawToken
		current  []rune
		tokX     float64
		tokY     float64
		lastChar positionedChar
		started  bool
	)

	flush := func() {
		text := trimSpaces(current)
		if len(text) > 0 {
			tokens = append(tokens, RawToken{Text: string(text), X: tokX, Y: tokY, Page: page})
		}
		current = current[:0]
		started = false
	}

	for _, c := range chars {
		isSpace := c.text == ' ' || c.text == '\t' || c.text == '\n' || c.text == '\r'

		if started && c.hasBox && lastChar.hasBox {
			gap := c.left - lastChar.right
			sameLine := math.Abs(c.bottom-lastChar.bottom) <= lineJitter
			if !sameLine || gap > maxGap {
				flush()
			}
		}

		if isSpace {
			if started {
				current = append(current, ' ')
			}
			if c.hasBox {
				lastChar = c
			}
			continue
		}

		if !started && c.hasBox {
			tokX = c.left
			tokY = c.bottom
		}
		started = true
		current = append(current, c.text)
		if c.hasBox {
			lastChar = c
		}
	}
	flush()

	return tokens
}

// lineJitter is the baseline wobble allowed before two characters count
// as different lines.
const lineJitter = 2.0

// nominalCharWidth stands in when a font ships no usable metrics.
const nominalCharWidth = 5.0

// intraTokenGap derives the widest horizontal gap still considered part
// of one token from the page's median character width.
func intraTokenGap(chars []positionedChar) float64 {
	var widths []float64
	for _, c := range chars {
		if c.hasBox {
			widths = append(widths, c.right-c.left)
		}
	}
	width := nominalCharWidth
	if len(widths) > 0 {
		width = calculateMedian(widths)
	}
	return math.Max(width*2.0, 6.0)
}

func trimSpaces(runes []rune) []rune {
	start := 0
	end := len(runes)
	for start < end && runes[start] == ' ' {
		start++
	}
	for end > start && runes[end-1] == ' ' {
		end--
	}
	return runes[start:end]
}
