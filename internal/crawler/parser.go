// Package crawler fetches the violation registry page and extracts its table rows.
package crawler

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"apdados/internal/models"
	"apdados/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// DefaultTableSelector matches the registry's data table.
const DefaultTableSelector = "table.table"

// Parser errors.
var (
	ErrTableNotFound = errors.New("table not found")
	ErrNoRows        = errors.New("table has no data rows")
)

// Parser extracts RawRecords from the registry HTML.
type Parser struct {
	selector string
	columns  []Column
	strings  *utils.StringHelper
	links    *utils.HTTPHelper
}

// NewParser creates a parser for the default selector and legacy layout.
func NewParser() *Parser {
	p, _ := NewParserWithColumns(DefaultTableSelector, LegacyColumns)

	return p
}

// NewParserWithColumns creates a parser for a custom table selector and column mapping.
func NewParserWithColumns(selector string, columns []Column) (*Parser, error) {
	if err := ValidateColumns(columns); err != nil {
		return nil, err
	}

	if strings.TrimSpace(selector) == "" {
		selector = DefaultTableSelector
	}

	return &Parser{
		selector: selector,
		columns:  append([]Column(nil), columns...),
		strings:  utils.NewStringHelper(),
		links:    utils.NewHTTPHelper(""),
	}, nil
}

// Columns returns the column mapping in use.
func (p *Parser) Columns() []Column {
	return append([]Column(nil), p.columns...)
}

// ParseTable returns one RawRecord per data row of the selected table, in page order.
// Header rows (no td cells) are skipped; missing cells leave the field blank.
// pageURL, when set, is used to resolve relative link attributes.
func (p *Parser) ParseTable(body []byte, pageURL string) ([]models.RawRecord, error) {
	doc, err := loadHTML(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	table := doc.Find(p.selector).First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, p.selector)
	}

	var records []models.RawRecord

	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.ChildrenFiltered("td")
		if cells.Length() == 0 {
			return
		}

		var rec models.RawRecord

		for _, col := range p.columns {
			cell := cells.Eq(col.Index)
			if cell.Length() == 0 {
				continue
			}

			// Columns are validated in the constructor.
			_ = rec.Set(col.Field, p.cellValue(cell, col, pageURL))
		}

		records = append(records, rec)
	})

	if len(records) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoRows, p.selector)
	}

	return records, nil
}

func (p *Parser) cellValue(cell *goquery.Selection, col Column, pageURL string) string {
	if col.Attr == "" {
		return p.strings.NormalizeWhitespace(cell.Text())
	}

	value, ok := cell.Find("a").First().Attr(col.Attr)
	if !ok {
		return ""
	}

	value = strings.TrimSpace(value)
	if col.Attr == "href" {
		value = p.links.ResolveReference(pageURL, value)
	}

	return value
}

// loadHTML parses body after converting it to UTF-8. Valid UTF-8 is taken as is.
// Otherwise the declared charset is used, falling back to statistical detection
// when the page declares none.
func loadHTML(body []byte) (*goquery.Document, error) {
	if utf8.Valid(body) {
		return goquery.NewDocumentFromReader(bytes.NewReader(body))
	}

	_, name, _ := charset.DetermineEncoding(body, "text/html")
	if !declaresCharset(body) {
		if result, err := chardet.NewHtmlDetector().DetectBest(body); err == nil && result.Charset != "" {
			name = strings.ToLower(result.Charset)
		}
	}

	reader, err := charset.NewReader(bytes.NewReader(body), "text/html; charset="+name)
	if err != nil {
		return goquery.NewDocumentFromReader(bytes.NewReader(body))
	}

	return goquery.NewDocumentFromReader(reader)
}

// declaresCharset reports whether the first KiB of body carries a charset declaration.
func declaresCharset(body []byte) bool {
	head := body
	if len(head) > 1024 {
		head = head[:1024]
	}

	return bytes.Contains(bytes.ToLower(head), []byte("charset"))
}
