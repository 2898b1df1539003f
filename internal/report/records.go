package report

import (
	"encoding/csv"
	"io"
	"strings"

	"apdados/internal/aggregate"
	"apdados/internal/models"
)

// Record export file names.
const (
	DefaultRawCSV        = "raw_violations.csv"
	DefaultNormalizedCSV = "cleaned_violations.csv"
)

// NormalizedCSVHeader is the header row of the normalized records export.
var NormalizedCSVHeader = []string{
	"date", "value", "region", "sanctions", "issuer", "status", "penalty",
	"convictions", "sector", "law", "article", "description", "notes", "link",
}

// Records carries the rows behind a Set, exported as-is next to the report.
type Records struct {
	Raw        []models.RawRecord
	Normalized []models.NormalizedRecord
}

// WriteRawCSV writes one row per scraped record, header models.FieldNames.
func WriteRawCSV(w io.Writer, records []models.RawRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(models.FieldNames); err != nil {
		return err
	}

	for i := range records {
		fields := records[i].Fields()

		row := make([]string, len(fields))
		for j, f := range fields {
			row[j] = f.Value
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}

// WriteNormalizedCSV writes one row per normalized record. Invalid dates are
// written as models.Unknown and absent values as an empty cell.
func WriteNormalizedCSV(w io.Writer, records []models.NormalizedRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(NormalizedCSVHeader); err != nil {
		return err
	}

	for _, r := range records {
		date := models.Unknown
		if r.Date.Valid {
			date = strings.Join([]string{r.Date.Day, r.Date.Month, r.Date.Year}, "/")
		}

		value := ""
		if r.HasValue() {
			value = FormatValue(aggregate.Amount, *r.Value)
		}

		row := []string{
			date, value, r.Region, r.Sanctions, r.Issuer, r.Status, r.Penalty,
			r.Convictions, r.Sector, r.Law, r.Article, r.Description, r.Notes, r.Link,
		}

		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()

	return cw.Error()
}
