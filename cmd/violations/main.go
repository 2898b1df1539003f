// Package main provides the violations command: it scrapes the LGPD violation
// registry and writes the statistics report.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"apdados/internal/aggregate"
	"apdados/internal/config"
	"apdados/internal/crawler"
	"apdados/internal/logger"
	"apdados/internal/models"
	"apdados/internal/normalizer"
	"apdados/internal/report"
	"apdados/pkg/metadata"

	"github.com/google/uuid"
	"go.uber.org/multierr"
)

// Run modes.
const (
	modeScrape  = "scrape"
	modeAnalyze = "analyze"
	modeAll     = "all"
)

var errUnknownMode = errors.New("mode must be one of: scrape, analyze, all")

type options struct {
	mode       string
	configFile string
	url        string
	input      string
	out        string
	logLevel   string
	charts     bool
	chartsSet  bool
	quiet      bool
}

func main() {
	opts, err := parseFlags(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, opts, os.Stdout, os.Stderr)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(fs *flag.FlagSet, args []string) (options, error) {
	var opts options

	fs.StringVar(&opts.mode, "mode", modeAll, "Run mode: scrape, analyze or all")
	fs.StringVar(&opts.configFile, "config", "", "Path to YAML configuration file")
	fs.StringVar(&opts.url, "url", "", "Registry URL to scrape (overrides config)")
	fs.StringVar(&opts.input, "input", "", "Raw JSON path: written by scrape, read by analyze (overrides config)")
	fs.StringVar(&opts.out, "out", "", "Report output directory (overrides config)")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	fs.BoolVar(&opts.charts, "charts", false, "Render PNG bar charts")
	fs.BoolVar(&opts.quiet, "quiet", false, "Do not print the console tables")

	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "charts" {
			opts.chartsSet = true
		}
	})

	switch opts.mode {
	case modeScrape, modeAnalyze, modeAll:
	default:
		return opts, fmt.Errorf("%w: %q", errUnknownMode, opts.mode)
	}

	return opts, nil
}

// loadConfig layers defaults, the config file, the environment and the flags, in that order.
func loadConfig(opts options) (*config.Config, error) {
	cfg := config.Default()

	if opts.configFile != "" {
		loaded, err := config.LoadConfig(opts.configFile)
		if err != nil {
			return nil, err
		}

		cfg = loaded
	}

	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if opts.url != "" {
		cfg.Source.URL = opts.url
	}

	if opts.input != "" {
		cfg.Output.RawPath = opts.input
	}

	if opts.out != "" {
		cfg.Output.Dir = opts.out
	}

	if opts.logLevel != "" {
		cfg.Logging.Level = opts.logLevel
	}

	if opts.chartsSet {
		cfg.Charts.Enabled = opts.charts
	}

	if opts.quiet {
		cfg.Report.Console = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func run(ctx context.Context, opts options, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	runID := uuid.NewString()

	log := logger.NewLoggerWithWriter(cfg.Logging.Level, stderr).With("run", runID)
	defer func() { _ = log.Sync() }()

	log.Info("Starting", "mode", opts.mode, "url", cfg.Source.URL, "raw_path", cfg.Output.RawPath)

	var (
		raws    []models.RawRecord
		source  string
		saveErr error
	)

	if opts.mode == modeScrape || opts.mode == modeAll {
		raws, err = scrape(ctx, cfg, log)

		// A failed raw save is reported after the report is written.
		var writeErr *report.WriteError
		if err != nil && !errors.As(err, &writeErr) {
			return err
		}

		if err == nil {
			fmt.Fprintf(stdout, "✅ %d registros salvos em %s\n", len(raws), cfg.Output.RawPath)
		}

		saveErr = err
		source = cfg.Source.URL
	}

	if opts.mode == modeScrape {
		return saveErr
	}

	if opts.mode == modeAnalyze {
		raws, err = crawler.LoadRecordsJSON(cfg.Output.RawPath)
		if err != nil {
			return err
		}

		log.Info("Loaded raw records", "path", cfg.Output.RawPath, "records", len(raws))

		source = cfg.Output.RawPath
	}

	err = analyze(cfg, raws, metadata.Metadata{
		RunID:       runID,
		Source:      source,
		Records:     len(raws),
		GeneratedAt: time.Now(),
	}, log, stdout)

	return multierr.Append(saveErr, err)
}

// scrape fetches and saves the raw records. When only the save fails the
// records are returned along with a *report.WriteError.
func scrape(ctx context.Context, cfg *config.Config, log *logger.Logger) ([]models.RawRecord, error) {
	columns, err := cfg.Columns()
	if err != nil {
		return nil, err
	}

	parser, err := crawler.NewParserWithColumns(cfg.Source.TableSelector, columns)
	if err != nil {
		return nil, err
	}

	client := crawler.NewClientWithDeps(
		crawler.NewScraperWithConfig(cfg.Source.UserAgent, cfg.Timeout()),
		parser,
	)

	start := time.Now()

	raws, err := client.Crawl(ctx, cfg.Source.URL)
	if err != nil {
		log.Error("Fetch failed", "url", cfg.Source.URL, "error", err)
		return nil, err
	}

	log.Info("Fetched registry", "records", len(raws), "duration", time.Since(start).Round(time.Millisecond))

	if err := crawler.SaveRecordsJSON(raws, cfg.Output.RawPath); err != nil {
		log.Error("Failed to save raw records", "path", cfg.Output.RawPath, "error", err)
		return raws, &report.WriteError{Path: cfg.Output.RawPath, Err: err}
	}

	return raws, nil
}

func analyze(cfg *config.Config, raws []models.RawRecord, meta metadata.Metadata, log *logger.Logger, stdout io.Writer) error {
	records, quality := normalizer.NewProcessor().Process(raws)

	log.Info("Normalized records", "records", quality.Records, "issues", quality.Issues())

	for _, field := range models.FieldNames {
		if n := quality.Malformed[field]; n > 0 {
			log.Warn("Malformed values degraded to Unknown", "field", field, "count", n)
		}

		if n := quality.Missing[field]; n > 0 {
			log.Debug("Blank values", "field", field, "count", n)
		}
	}

	set := aggregate.NewAggregator(aggregate.WithMinKeywordLength(cfg.Report.MinKeywordLength)).Compute(records)

	written, err := report.NewWriter(cfg.WriterConfig(), log, stdout).WriteAll(set, report.Records{Raw: raws, Normalized: records}, meta)

	for _, path := range written {
		fmt.Fprintf(stdout, "✅ Gerado: %s\n", path)
	}

	return err
}
