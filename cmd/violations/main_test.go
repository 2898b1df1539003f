package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"apdados/internal/crawler"
	"apdados/internal/report"
	"apdados/pkg/metadata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const registryPage = `<html><head><meta charset="utf-8"></head><body>
<table class="table">
<tr><th>Data</th><th>UF</th><th>Sanções</th><th>Órgão</th><th>Status</th><th>Pena</th><th>Valor</th><th>Condenações</th><th>Segmento</th><th>Lei</th><th>Artigo</th><th>Descrição</th><th>Obs.</th><th>Link</th></tr>
<tr><td>10/01/2022</td><td>SP</td><td>Multa</td><td>ANPD</td><td>Concluído</td><td>-</td><td>R$ 100,00</td><td>1</td><td>Saúde</td><td>LGPD</td><td>Art. 46</td><td>Empresa não cumpriu prazo de resposta.</td><td></td><td><a href="/violacoes/1">ver</a></td></tr>
<tr><td>20/05/2022</td><td>RJ</td><td>Advertência</td><td>PROCON</td><td>Em andamento</td><td>-</td><td>R$ 200,00</td><td>0</td><td>Varejo</td><td>LGPD</td><td>Art. 48</td><td>Vazamento de dados</td><td></td><td></td></tr>
<tr><td>03/02/2023</td><td></td><td>Multa</td><td>ANPD</td><td>Concluído</td><td>-</td><td>—</td><td>1</td><td>Saúde</td><td>LGPD</td><td>Art. 46</td><td></td><td></td><td></td></tr>
</table></body></html>`

func newRegistry(t *testing.T, status int) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(registryPage))
	}))
	t.Cleanup(server.Close)

	return server
}

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags(flag.NewFlagSet("violations", flag.ContinueOnError), []string{
		"-mode", "analyze", "-input", "raw.json", "-out", "reports", "-charts", "-quiet",
	})
	require.NoError(t, err)

	assert.Equal(t, modeAnalyze, opts.mode)
	assert.Equal(t, "raw.json", opts.input)
	assert.Equal(t, "reports", opts.out)
	assert.True(t, opts.charts)
	assert.True(t, opts.chartsSet)
	assert.True(t, opts.quiet)

	defaults, err := parseFlags(flag.NewFlagSet("violations", flag.ContinueOnError), nil)
	require.NoError(t, err)
	assert.Equal(t, modeAll, defaults.mode)
	assert.False(t, defaults.chartsSet)

	_, err = parseFlags(flag.NewFlagSet("violations", flag.ContinueOnError), []string{"-mode", "serve"})
	assert.ErrorIs(t, err, errUnknownMode)
}

func TestRun_All(t *testing.T) {
	server := newRegistry(t, http.StatusOK)
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), options{
		mode:      modeAll,
		url:       server.URL + "/violacoes",
		input:     filepath.Join(dir, "raw", "violations.json"),
		out:       filepath.Join(dir, "out"),
		charts:    true,
		chartsSet: true,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	raws, err := crawler.LoadRecordsJSON(filepath.Join(dir, "raw", "violations.json"))
	require.NoError(t, err)
	assert.Len(t, raws, 3)

	reportBytes, err := os.ReadFile(filepath.Join(dir, "out", "relatorio_lgpd.md"))
	require.NoError(t, err)

	content := string(reportBytes)
	assert.Contains(t, content, "## Violações por ano")
	assert.Contains(t, content, "| 2022 | 2          |")
	assert.Contains(t, content, "| 2022 | 300.00     |")
	assert.Contains(t, content, "| Desconhecido | 1          |")

	ok, err := metadata.Verify(content)
	require.NoError(t, err)
	assert.True(t, ok)

	meta, _ := metadata.Extract(content)
	assert.Equal(t, 3, meta.Records)
	assert.Equal(t, server.URL+"/violacoes", meta.Source)

	csvBytes, err := os.ReadFile(filepath.Join(dir, "out", "violations_value_per_year.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Item,Quantidade\n2022,300.00\n", string(csvBytes))

	rawCSV, err := os.ReadFile(filepath.Join(dir, "out", "raw_violations.csv"))
	require.NoError(t, err)
	assert.Equal(t, 4, strings.Count(string(rawCSV), "\n"), "header plus one row per record")
	assert.FileExists(t, filepath.Join(dir, "out", "cleaned_violations.csv"))

	assert.FileExists(t, filepath.Join(dir, "out", "plots", "violations_per_year.png"))
	assert.Contains(t, stdout.String(), "Violações por estado:")
	assert.Contains(t, stderr.String(), "Fetched registry")
}

func TestRun_ScrapeThenAnalyze(t *testing.T) {
	server := newRegistry(t, http.StatusOK)
	dir := t.TempDir()
	raw := filepath.Join(dir, "violations.json.gz")

	var stdout, stderr bytes.Buffer

	require.NoError(t, run(context.Background(), options{mode: modeScrape, url: server.URL, input: raw}, &stdout, &stderr))
	assert.NoFileExists(t, filepath.Join(dir, "relatorio_lgpd.md"))

	stdout.Reset()

	require.NoError(t, run(context.Background(), options{mode: modeAnalyze, input: raw, out: dir, quiet: true}, &stdout, &stderr))
	assert.FileExists(t, filepath.Join(dir, "relatorio_lgpd.md"))
	assert.FileExists(t, filepath.Join(dir, "violations_keywords.csv"))
	assert.NotContains(t, stdout.String(), "┌", "quiet must suppress console tables")
}

func TestRun_FetchFailure(t *testing.T) {
	server := newRegistry(t, http.StatusServiceUnavailable)
	dir := t.TempDir()

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), options{
		mode:  modeAll,
		url:   server.URL,
		input: filepath.Join(dir, "violations.json"),
		out:   dir,
	}, &stdout, &stderr)

	var fetchErr *crawler.FetchError
	require.True(t, errors.As(err, &fetchErr), "error = %v, want *crawler.FetchError", err)
	assert.ErrorIs(t, err, crawler.ErrUnexpectedStatusCode)
	assert.NoFileExists(t, filepath.Join(dir, "violations.json"))
}

func TestRun_All_RawSaveFailure(t *testing.T) {
	server := newRegistry(t, http.StatusOK)
	dir := t.TempDir()

	// A regular file where the raw directory should be.
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	rawPath := filepath.Join(blocker, "raw.json")
	out := filepath.Join(dir, "out")

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), options{
		mode:  modeAll,
		url:   server.URL,
		input: rawPath,
		out:   out,
		quiet: true,
	}, &stdout, &stderr)
	require.Error(t, err)

	var writeErr *report.WriteError
	require.True(t, errors.As(err, &writeErr), "error = %v, want *report.WriteError", err)
	assert.Equal(t, rawPath, writeErr.Path)

	assert.FileExists(t, filepath.Join(out, "relatorio_lgpd.md"))
	assert.FileExists(t, filepath.Join(out, "violations_per_year.csv"))
	assert.FileExists(t, filepath.Join(out, "raw_violations.csv"))
}

func TestRun_AnalyzeMissingInput(t *testing.T) {
	var stdout, stderr bytes.Buffer

	err := run(context.Background(), options{
		mode:  modeAnalyze,
		input: filepath.Join(t.TempDir(), "missing.json"),
	}, &stdout, &stderr)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_InvalidConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))

	var stdout, stderr bytes.Buffer

	err := run(context.Background(), options{mode: modeAnalyze, configFile: path}, &stdout, &stderr)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "logging.level"))
}
