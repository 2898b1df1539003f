package crawler

import (
	"errors"
	"fmt"
	"strings"

	"apdados/internal/models"
)

// Column layout names.
const (
	LayoutLegacy  = "legacy"
	LayoutCompact = "compact"
)

// Column mapping errors.
var (
	ErrNoColumns       = errors.New("column mapping is empty")
	ErrNegativeColumn  = errors.New("column index must be non-negative")
	ErrDuplicateField  = errors.New("field mapped more than once")
	ErrUnknownLayout   = errors.New("unknown column layout")
	ErrUnsupportedAttr = errors.New("only href and title attributes can be extracted")
)

// Column maps the table cell at Index to a RawRecord field.
// When Attr is set the value is taken from that attribute of the first link in the cell.
type Column struct {
	Index int
	Field string
	Attr  string
}

// LegacyColumns is the fourteen column layout of the registry table.
var LegacyColumns = []Column{
	{Index: 0, Field: models.FieldDate},
	{Index: 1, Field: models.FieldState},
	{Index: 2, Field: models.FieldSanctions},
	{Index: 3, Field: models.FieldIssuer},
	{Index: 4, Field: models.FieldStatus},
	{Index: 5, Field: models.FieldPenalty},
	{Index: 6, Field: models.FieldValue},
	{Index: 7, Field: models.FieldConvictions},
	{Index: 8, Field: models.FieldSegment},
	{Index: 9, Field: models.FieldLaw},
	{Index: 10, Field: models.FieldArticle},
	{Index: 11, Field: models.FieldDescription},
	{Index: 12, Field: models.FieldNotes},
	{Index: 13, Field: models.FieldLink, Attr: "href"},
}

// CompactColumns is the five column layout (date, organization, violation type, description, fine).
var CompactColumns = []Column{
	{Index: 0, Field: models.FieldDate},
	{Index: 1, Field: models.FieldIssuer},
	{Index: 2, Field: models.FieldSanctions},
	{Index: 3, Field: models.FieldDescription},
	{Index: 4, Field: models.FieldValue},
}

// Layout returns a copy of the named column layout. An empty name selects the legacy layout.
func Layout(name string) ([]Column, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", LayoutLegacy:
		return append([]Column(nil), LegacyColumns...), nil
	case LayoutCompact:
		return append([]Column(nil), CompactColumns...), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnknownLayout, name)
}

// ValidateColumns checks that a mapping is usable by the parser.
func ValidateColumns(columns []Column) error {
	if len(columns) == 0 {
		return ErrNoColumns
	}

	seen := make(map[string]bool, len(columns))

	for i, col := range columns {
		if col.Index < 0 {
			return fmt.Errorf("%w: columns[%d]", ErrNegativeColumn, i)
		}

		if !models.IsField(col.Field) {
			return fmt.Errorf("columns[%d]: %w: %s", i, models.ErrUnknownField, col.Field)
		}

		if seen[col.Field] {
			return fmt.Errorf("%w: %s", ErrDuplicateField, col.Field)
		}

		seen[col.Field] = true

		switch col.Attr {
		case "", "href", "title":
		default:
			return fmt.Errorf("%w: columns[%d] uses %q", ErrUnsupportedAttr, i, col.Attr)
		}
	}

	return nil
}
