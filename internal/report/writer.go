package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"apdados/internal/aggregate"
	"apdados/internal/logger"
	"apdados/pkg/metadata"

	"go.uber.org/multierr"
)

// DefaultReportFile is the Markdown report name.
const DefaultReportFile = "relatorio_lgpd.md"

// WriteError reports one output file that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Config selects what the Writer produces and where.
type Config struct {
	Title      string
	Subtitle   string
	Dir        string
	ReportFile string
	Sections   []Section
	Console    bool
	Charts     bool
	ChartDir   string
	ChartSpecs []ChartSpec

	// RawCSV and NormalizedCSV name the record exports; empty skips them.
	RawCSV        string
	NormalizedCSV string
}

// DefaultConfig returns the full report into the current directory, charts off.
func DefaultConfig() Config {
	return Config{
		Title:         DefaultTitle,
		Subtitle:      DefaultSubtitle,
		Dir:           ".",
		ReportFile:    DefaultReportFile,
		Sections:      DefaultSections(),
		Console:       true,
		ChartDir:      DefaultChartDir,
		ChartSpecs:    DefaultCharts(),
		RawCSV:        DefaultRawCSV,
		NormalizedCSV: DefaultNormalizedCSV,
	}
}

// Writer renders a computed Set to every configured output.
type Writer struct {
	cfg     Config
	logger  *logger.Logger
	console io.Writer
}

// NewWriter creates a writer. console receives the box tables when cfg.Console is set.
func NewWriter(cfg Config, log *logger.Logger, console io.Writer) *Writer {
	if log == nil {
		log = logger.NewNop()
	}

	if console == nil {
		console = io.Discard
	}

	return &Writer{cfg: cfg, logger: log, console: console}
}

// WriteAll prints the console tables and writes the report, one CSV per
// section, the record exports and the charts. Every file is attempted; failures are returned
// together as *WriteError values combined with multierr. The paths written
// successfully are returned in order.
func (w *Writer) WriteAll(set *aggregate.Set, records Records, meta metadata.Metadata) ([]string, error) {
	tables, err := BuildTables(set, w.cfg.Sections)
	if err != nil {
		return nil, err
	}

	if w.cfg.Console {
		if err := RenderConsole(w.console, tables); err != nil {
			w.logger.Warn("Failed to print console tables", "error", err)
		}
	}

	var (
		written []string
		errs    error
	)

	record := func(path string, err error) {
		if err != nil {
			errs = multierr.Append(errs, &WriteError{Path: path, Err: err})
			w.logger.Error("Failed to write output", "path", path, "error", err)

			return
		}

		written = append(written, path)
		w.logger.Debug("Wrote output", "path", path)
	}

	reportPath := filepath.Join(w.cfg.Dir, w.cfg.ReportFile)
	record(reportPath, writeFile(reportPath, []byte(RenderMarkdown(w.cfg.Title, w.cfg.Subtitle, tables, meta))))

	for _, t := range tables {
		path := filepath.Join(w.cfg.Dir, t.Section.CSVFile)

		var buf bytes.Buffer
		if err := WriteCSV(&buf, t); err != nil {
			record(path, err)
			continue
		}

		record(path, writeFile(path, buf.Bytes()))
	}

	if w.cfg.RawCSV != "" {
		path := filepath.Join(w.cfg.Dir, w.cfg.RawCSV)

		var buf bytes.Buffer
		if err := WriteRawCSV(&buf, records.Raw); err != nil {
			record(path, err)
		} else {
			record(path, writeFile(path, buf.Bytes()))
		}
	}

	if w.cfg.NormalizedCSV != "" {
		path := filepath.Join(w.cfg.Dir, w.cfg.NormalizedCSV)

		var buf bytes.Buffer
		if err := WriteNormalizedCSV(&buf, records.Normalized); err != nil {
			record(path, err)
		} else {
			record(path, writeFile(path, buf.Bytes()))
		}
	}

	if w.cfg.Charts {
		for i, spec := range w.cfg.ChartSpecs {
			path := filepath.Join(w.chartDir(), spec.File)

			agg, ok := set.Get(spec.Dimension)
			if !ok {
				record(path, fmt.Errorf("%w: %s", ErrUnknownDimension, spec.Dimension))
				continue
			}

			err := RenderChart(path, spec.Title, Apply(agg, spec.Options), chartPalette[i%len(chartPalette)])
			if errors.Is(err, ErrNoData) {
				w.logger.Info("Skipping empty chart", "path", path)
				continue
			}

			record(path, err)
		}
	}

	return written, errs
}

func (w *Writer) chartDir() string {
	dir := w.cfg.ChartDir
	if dir == "" {
		dir = DefaultChartDir
	}

	if filepath.IsAbs(dir) {
		return dir
	}

	return filepath.Join(w.cfg.Dir, dir)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	return os.WriteFile(path, data, 0644)
}
