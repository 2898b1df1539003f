// Package normalizer turns scraped rows into typed, sentinel-defaulted records.
package normalizer

import (
	"apdados/internal/models"
)

// Report counts the soft issues seen while normalizing, per raw field name.
type Report struct {
	Records   int
	Missing   map[string]int
	Malformed map[string]int
}

// Issues returns the total number of soft issues.
func (r Report) Issues() int {
	total := 0

	for _, n := range r.Missing {
		total += n
	}

	for _, n := range r.Malformed {
		total += n
	}

	return total
}

// Processor runs the validator and transformer over a batch of rows.
type Processor struct {
	validator   *Validator
	transformer *Transformer
}

// NewProcessor creates a new processor instance.
func NewProcessor() *Processor {
	return &Processor{
		validator:   NewValidator(),
		transformer: NewTransformer(),
	}
}

// Process normalizes every row, in order. Soft issues are counted in the
// report and never drop a row.
func (p *Processor) Process(raws []models.RawRecord) ([]models.NormalizedRecord, Report) {
	report := Report{
		Records:   len(raws),
		Missing:   make(map[string]int),
		Malformed: make(map[string]int),
	}

	records := make([]models.NormalizedRecord, 0, len(raws))

	for _, raw := range raws {
		for _, issue := range p.validator.Inspect(raw) {
			switch issue.Reason {
			case ReasonBlank:
				report.Missing[issue.Field]++
			case ReasonMalformed:
				report.Malformed[issue.Field]++
			}
		}

		records = append(records, p.transformer.Transform(raw))
	}

	return records, report
}
