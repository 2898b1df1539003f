package report

import (
	"errors"
	"fmt"

	"apdados/internal/aggregate"
)

// ErrUnknownDimension is returned for a section or chart naming no aggregate.
var ErrUnknownDimension = errors.New("unknown dimension")

// Section describes how one dimension appears in the outputs.
type Section struct {
	Dimension string
	Title     string
	CSVFile   string
	Options   Options
}

// DefaultSections returns the report sections in report order.
func DefaultSections() []Section {
	sorted := func(top int) Options { return Options{SortDesc: true, Top: top} }

	return []Section{
		{Dimension: aggregate.Month, Title: "Violações por mês", CSVFile: "violations_per_month.csv", Options: sorted(0)},
		{Dimension: aggregate.Year, Title: "Violações por ano", CSVFile: "violations_per_year.csv", Options: sorted(0)},
		{Dimension: aggregate.State, Title: "Violações por estado", CSVFile: "violations_per_state.csv", Options: sorted(0)},
		{Dimension: aggregate.Article, Title: "Artigos mais violados", CSVFile: "violations_per_article.csv", Options: sorted(10)},
		{Dimension: aggregate.ValuePerYear, Title: "Total de multas por ano (R$)", CSVFile: "violations_value_per_year.csv", Options: sorted(0)},
		{Dimension: aggregate.Segment, Title: "Segmentos mais afetados", CSVFile: "violations_per_segment.csv", Options: sorted(10)},
		{Dimension: aggregate.Keyword, Title: "🧠 Palavras mais frequentes nas descrições", CSVFile: "violations_keywords.csv", Options: sorted(15)},
		{Dimension: aggregate.Status, Title: "⚖️ Status das sanções", CSVFile: "violations_status.csv", Options: sorted(0)},
		{Dimension: aggregate.Sanctions, Title: "Tipos de sanção", CSVFile: "violations_per_sanction.csv", Options: sorted(10)},
		{Dimension: aggregate.Issuer, Title: "Órgãos sancionadores", CSVFile: "violations_per_issuer.csv", Options: sorted(10)},
		{Dimension: aggregate.AverageValuePerYear, Title: "Multa média por ano (R$)", CSVFile: "violations_average_value_per_year.csv", Options: sorted(0)},
	}
}

// Table is a section resolved against computed aggregates.
type Table struct {
	Section Section
	Kind    aggregate.Kind
	// Rows is what the console and Markdown show: sorted and truncated.
	Rows []aggregate.Entry
	// All is what the CSV holds: sorted, never truncated.
	All []aggregate.Entry
}

// BuildTables resolves sections against set, in section order.
func BuildTables(set *aggregate.Set, sections []Section) ([]Table, error) {
	tables := make([]Table, 0, len(sections))

	for _, s := range sections {
		agg, ok := set.Get(s.Dimension)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownDimension, s.Dimension)
		}

		untruncated := s.Options
		untruncated.Top = 0

		tables = append(tables, Table{
			Section: s,
			Kind:    agg.Kind(),
			Rows:    Apply(agg, s.Options),
			All:     Apply(agg, untruncated),
		})
	}

	return tables, nil
}
