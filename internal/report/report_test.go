package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apdados/internal/aggregate"
	"apdados/internal/models"
	"apdados/internal/normalizer"
	"apdados/pkg/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

var sampleRaws = []models.RawRecord{
	{Date: "10/01/2022", State: "SP", Issuer: "ANPD", Sanctions: "Multa", Value: "R$ 100,00", Article: "Art. 46", Description: "Vazamento de dados pessoais"},
	{Date: "20/05/2022", State: "RJ", Issuer: "PROCON", Sanctions: "Advertência", Value: "R$ 200,00", Article: "Art. 46", Description: "Dados pessoais expostos"},
	{Date: "03/02/2023", State: "SP", Issuer: "ANPD", Sanctions: "Multa", Article: "Art. 7 | Art. 11"},
}

func sampleRecords() Records {
	records, _ := normalizer.NewProcessor().Process(sampleRaws)

	return Records{Raw: sampleRaws, Normalized: records}
}

func sampleSet(t *testing.T) *aggregate.Set {
	t.Helper()

	return aggregate.NewAggregator().Compute(sampleRecords().Normalized)
}

func TestBuildTables(t *testing.T) {
	set := sampleSet(t)

	tables, err := BuildTables(set, DefaultSections())
	require.NoError(t, err)
	require.Len(t, tables, len(aggregate.Dimensions))

	for i, table := range tables {
		assert.Equal(t, aggregate.Dimensions[i], table.Section.Dimension)
	}

	_, err = BuildTables(set, []Section{{Dimension: "planeta"}})
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestBuildTables_CSVUntruncated(t *testing.T) {
	tables, err := BuildTables(sampleSet(t), []Section{
		{Dimension: aggregate.State, Title: "Estados", CSVFile: "s.csv", Options: Options{SortDesc: true, Top: 1}},
	})
	require.NoError(t, err)

	assert.Equal(t, []aggregate.Entry{{Key: "SP", Value: 2}}, tables[0].Rows)
	assert.Equal(t, []aggregate.Entry{{Key: "SP", Value: 2}, {Key: "RJ", Value: 1}}, tables[0].All)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, tables[0]))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Item", "Quantidade"}, {"SP", "2"}, {"RJ", "1"}}, rows)
}

func TestRenderMarkdown(t *testing.T) {
	tables, err := BuildTables(sampleSet(t), DefaultSections())
	require.NoError(t, err)

	out := RenderMarkdown(DefaultTitle, DefaultSubtitle, tables, metadata.Metadata{RunID: "run-1", Records: 3})

	assert.True(t, strings.HasPrefix(out, "# 📊 Relatório de Violações à LGPD\n\n_Dados analisados"))

	last := -1
	for _, s := range DefaultSections() {
		idx := strings.Index(out, "## "+s.Title+"\n")
		require.NotEqual(t, -1, idx, "missing section %s", s.Title)
		assert.Greater(t, idx, last, "section %s out of order", s.Title)
		last = idx
	}

	assert.Contains(t, out, "| 2022 | 2          |")
	assert.Contains(t, out, "| 2022 | 300.00     |")
	assert.Contains(t, out, `Art. 7 \| Art. 11`)

	ok, err := metadata.Verify(out)
	require.NoError(t, err)
	assert.True(t, ok)

	meta, _ := metadata.Extract(out)
	assert.Equal(t, "run-1", meta.RunID)
	assert.Equal(t, 3, meta.Records)
}

func TestRenderConsole(t *testing.T) {
	tables, err := BuildTables(sampleSet(t), []Section{
		{Dimension: aggregate.Year, Title: "Violações por ano", Options: Options{SortDesc: true}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderConsole(&buf, tables))

	want := "\nViolações por ano:\n" +
		"┌──────┬────────────┐\n" +
		"│ Item │ Quantidade │\n" +
		"├──────┼────────────┤\n" +
		"│ 2022 │ 2          │\n" +
		"│ 2023 │ 1          │\n" +
		"└──────┴────────────┘\n"
	assert.Equal(t, want, buf.String())
}

func TestRenderChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plots", "year.png")

	err := RenderChart(path, "Violações por ano", []aggregate.Entry{{Key: "2022", Value: 2}, {Key: "2023", Value: 1}}, chartPalette[0])
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")), "chart must be a PNG")

	assert.ErrorIs(t, RenderChart(path, "vazio", nil, chartPalette[0]), ErrNoData)
}

func TestWriter_WriteAll(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Dir = dir
	cfg.Charts = true

	var console bytes.Buffer

	written, err := NewWriter(cfg, nil, &console).WriteAll(sampleSet(t), sampleRecords(), metadata.Metadata{RunID: "run"})
	require.NoError(t, err)

	assert.Len(t, written, 1+len(cfg.Sections)+2+len(cfg.ChartSpecs))
	assert.FileExists(t, filepath.Join(dir, DefaultRawCSV))
	assert.FileExists(t, filepath.Join(dir, DefaultNormalizedCSV))
	assert.FileExists(t, filepath.Join(dir, DefaultReportFile))
	assert.FileExists(t, filepath.Join(dir, "violations_per_month.csv"))
	assert.FileExists(t, filepath.Join(dir, "violations_average_value_per_year.csv"))
	assert.FileExists(t, filepath.Join(dir, DefaultChartDir, "violations_per_year.png"))
	assert.FileExists(t, filepath.Join(dir, DefaultChartDir, "top_organizations.png"))
	assert.FileExists(t, filepath.Join(dir, DefaultChartDir, "violation_types.png"))
	assert.Contains(t, console.String(), "Violações por estado:")
}

func TestWriter_WriteAll_CollectsFailures(t *testing.T) {
	// A regular file where the output directory should be makes every write fail.
	blocker := filepath.Join(t.TempDir(), "not-a-dir")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	cfg := DefaultConfig()
	cfg.Dir = blocker
	cfg.Console = false

	written, err := NewWriter(cfg, nil, nil).WriteAll(sampleSet(t), sampleRecords(), metadata.Metadata{})
	require.Error(t, err)
	assert.Empty(t, written)

	errs := multierr.Errors(err)
	assert.Len(t, errs, 1+len(cfg.Sections)+2, "every file must be attempted")

	var writeErr *WriteError
	require.True(t, errors.As(errs[0], &writeErr))
	assert.Equal(t, filepath.Join(blocker, DefaultReportFile), writeErr.Path)
}

func TestWriter_WriteAll_SkipsDisabledExports(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.Dir = dir
	cfg.Console = false
	cfg.RawCSV = ""
	cfg.NormalizedCSV = ""

	written, err := NewWriter(cfg, nil, nil).WriteAll(sampleSet(t), sampleRecords(), metadata.Metadata{})
	require.NoError(t, err)

	assert.Len(t, written, 1+len(cfg.Sections))
	assert.NoFileExists(t, filepath.Join(dir, DefaultRawCSV))
}

func TestWriteRawCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRawCSV(&buf, sampleRaws))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+len(sampleRaws))

	assert.Equal(t, models.FieldNames, rows[0])
	assert.Equal(t, "10/01/2022", rows[1][0])
	assert.Equal(t, "R$ 100,00", rows[1][6])
	assert.Equal(t, "Art. 7 | Art. 11", rows[3][10])
}

func TestWriteNormalizedCSV(t *testing.T) {
	records := sampleRecords().Normalized
	records = append(records, models.NormalizedRecord{Date: models.UnknownDate, Region: models.Unknown})

	var buf bytes.Buffer
	require.NoError(t, WriteNormalizedCSV(&buf, records))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 1+len(records))

	assert.Equal(t, NormalizedCSVHeader, rows[0])
	assert.Equal(t, []string{"10/01/2022", "100.00", "SP"}, rows[1][:3])
	assert.Equal(t, "", rows[3][1], "absent value is an empty cell")
	assert.Equal(t, models.Unknown, rows[4][0])
}
