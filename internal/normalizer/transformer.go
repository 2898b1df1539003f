package normalizer

import (
	"strings"
	"unicode"

	"apdados/internal/models"
	"apdados/pkg/utils"

	"github.com/shopspring/decimal"
)

// CurrencyPrefix is stripped from fine values before parsing.
const CurrencyPrefix = "R$"

// Transformer projects raw rows onto NormalizedRecords.
type Transformer struct {
	strings *utils.StringHelper
}

// NewTransformer creates a new transformer instance.
func NewTransformer() *Transformer {
	return &Transformer{
		strings: utils.NewStringHelper(),
	}
}

// Transform converts one raw row. It never fails: blank text becomes
// models.Unknown, a malformed date becomes models.UnknownDate and an
// unparseable value is left nil.
func (t *Transformer) Transform(raw models.RawRecord) models.NormalizedRecord {
	return models.NormalizedRecord{
		Date:        ParseDate(raw.Date),
		Value:       ParseCurrency(raw.Value),
		Region:      t.text(raw.State),
		Sanctions:   t.text(raw.Sanctions),
		Issuer:      t.text(raw.Issuer),
		Status:      t.text(raw.Status),
		Penalty:     t.text(raw.Penalty),
		Convictions: t.text(raw.Convictions),
		Sector:      t.text(raw.Segment),
		Law:         t.text(raw.Law),
		Article:     t.text(raw.Article),
		Description: t.text(raw.Description),
		Notes:       t.text(raw.Notes),
		Link:        t.text(raw.Link),
		Described:   !t.strings.IsBlank(raw.Description),
	}
}

func (t *Transformer) text(s string) string {
	s = t.strings.NormalizeWhitespace(s)
	if s == "" {
		return models.Unknown
	}

	return s
}

// ParseDate splits a day/month/year date. The tokens are kept as written,
// so "05/03/2022" keeps its zero padding. Anything other than three
// digit-only tokens yields models.UnknownDate.
func ParseDate(s string) models.Date {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return models.UnknownDate
	}

	for i, part := range parts {
		part = strings.TrimSpace(part)
		if !isDigits(part) {
			return models.UnknownDate
		}

		parts[i] = part
	}

	return models.Date{
		Day:   parts[0],
		Month: parts[1],
		Year:  parts[2],
		Valid: true,
	}
}

// ParseAmount parses a Brazilian formatted amount such as "R$ 1.234,56".
// The prefix is optional, "." groups thousands and "," marks decimals.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, CurrencyPrefix)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '.' {
			return -1
		}

		return r
	}, s)
	s = strings.ReplaceAll(s, ",", ".")

	if s == "" {
		return decimal.Zero, false
	}

	amount, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}

	return amount, true
}

// ParseCurrency is ParseAmount as an optional float. Nil means absent.
func ParseCurrency(s string) *float64 {
	amount, ok := ParseAmount(s)
	if !ok {
		return nil
	}

	f := amount.InexactFloat64()

	return &f
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
