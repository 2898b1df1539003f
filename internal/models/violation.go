// Package models defines the records flowing through the scrape and report pipeline.
package models

import (
	"errors"
	"fmt"
	"strconv"
)

// Unknown is the category used for blank or unparseable text fields.
const Unknown = "Desconhecido"

// Field names of a scraped row. They are also the JSON keys of the persisted array.
const (
	FieldDate        = "date"
	FieldState       = "state"
	FieldSanctions   = "sanctions"
	FieldIssuer      = "issuer"
	FieldStatus      = "status"
	FieldPenalty     = "penalty"
	FieldValue       = "value"
	FieldConvictions = "convictions"
	FieldSegment     = "segment"
	FieldLaw         = "law"
	FieldArticle     = "article"
	FieldDescription = "description"
	FieldNotes       = "notes"
	FieldLink        = "link"
)

// ErrUnknownField is returned when a field name is not part of RawRecord.
var ErrUnknownField = errors.New("unknown record field")

// FieldNames lists every RawRecord field in table order.
var FieldNames = []string{
	FieldDate,
	FieldState,
	FieldSanctions,
	FieldIssuer,
	FieldStatus,
	FieldPenalty,
	FieldValue,
	FieldConvictions,
	FieldSegment,
	FieldLaw,
	FieldArticle,
	FieldDescription,
	FieldNotes,
	FieldLink,
}

// RawRecord is one scraped table row. Every field is text; blank means absent.
type RawRecord struct {
	Date        string `json:"date"`
	State       string `json:"state"`
	Sanctions   string `json:"sanctions"`
	Issuer      string `json:"issuer"`
	Status      string `json:"status"`
	Penalty     string `json:"penalty"`
	Value       string `json:"value"`
	Convictions string `json:"convictions"`
	Segment     string `json:"segment"`
	Law         string `json:"law"`
	Article     string `json:"article"`
	Description string `json:"description"`
	Notes       string `json:"notes"`
	Link        string `json:"link"`
}

// FieldPair is a single named field of a RawRecord.
type FieldPair struct {
	Name  string
	Value string
}

// IsField reports whether name is a RawRecord field.
func IsField(name string) bool {
	for _, f := range FieldNames {
		if f == name {
			return true
		}
	}

	return false
}

// Fields returns the record as ordered (name, value) pairs.
func (r *RawRecord) Fields() []FieldPair {
	out := make([]FieldPair, 0, len(FieldNames))
	for _, name := range FieldNames {
		value, _ := r.Get(name)
		out = append(out, FieldPair{Name: name, Value: value})
	}

	return out
}

// Get returns the value of the named field.
func (r *RawRecord) Get(name string) (string, error) {
	ptr := r.field(name)
	if ptr == nil {
		return "", fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	return *ptr, nil
}

// Set assigns the named field.
func (r *RawRecord) Set(name, value string) error {
	ptr := r.field(name)
	if ptr == nil {
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}

	*ptr = value

	return nil
}

func (r *RawRecord) field(name string) *string {
	switch name {
	case FieldDate:
		return &r.Date
	case FieldState:
		return &r.State
	case FieldSanctions:
		return &r.Sanctions
	case FieldIssuer:
		return &r.Issuer
	case FieldStatus:
		return &r.Status
	case FieldPenalty:
		return &r.Penalty
	case FieldValue:
		return &r.Value
	case FieldConvictions:
		return &r.Convictions
	case FieldSegment:
		return &r.Segment
	case FieldLaw:
		return &r.Law
	case FieldArticle:
		return &r.Article
	case FieldDescription:
		return &r.Description
	case FieldNotes:
		return &r.Notes
	case FieldLink:
		return &r.Link
	}

	return nil
}

// Date holds the day/month/year tokens of a registry date exactly as written.
// Grouping keys use the canonical form, so "5/3/2022" and "05/03/2022" share a month.
type Date struct {
	Day   string `json:"day"`
	Month string `json:"month"`
	Year  string `json:"year"`
	Valid bool   `json:"valid"`
}

// UnknownDate is the value used for blank or malformed dates.
var UnknownDate = Date{Day: Unknown, Month: Unknown, Year: Unknown}

// YearKey returns the grouping key for per-year aggregates.
func (d Date) YearKey() string {
	if !d.Valid {
		return Unknown
	}

	return canonical(d.Year, 4)
}

// MonthKey returns the "year-month" grouping key.
func (d Date) MonthKey() string {
	if !d.Valid {
		return Unknown
	}

	return canonical(d.Year, 4) + "-" + canonical(d.Month, 2)
}

// canonical renders a digit token without redundant leading zeros, padded to width.
func canonical(token string, width int) string {
	n, err := strconv.Atoi(token)
	if err != nil || n < 0 {
		return token
	}

	return fmt.Sprintf("%0*d", width, n)
}

// NormalizedRecord is the typed projection of a RawRecord.
// Text fields are never blank: missing data is recorded as Unknown.
type NormalizedRecord struct {
	Date        Date     `json:"date"`
	Value       *float64 `json:"value,omitempty"`
	Region      string   `json:"region"`
	Sanctions   string   `json:"sanctions"`
	Issuer      string   `json:"issuer"`
	Status      string   `json:"status"`
	Penalty     string   `json:"penalty"`
	Convictions string   `json:"convictions"`
	Sector      string   `json:"sector"`
	Law         string   `json:"law"`
	Article     string   `json:"article"`
	Description string   `json:"description"`
	Notes       string   `json:"notes"`
	Link        string   `json:"link"`

	// Described is set when the scraped description was not blank.
	Described bool `json:"-"`
}

// HasValue reports whether the fine value was parsed.
func (n NormalizedRecord) HasValue() bool {
	return n.Value != nil
}

// HasDescription reports whether the record carries free text to tokenize.
func (n NormalizedRecord) HasDescription() bool {
	return n.Described
}
