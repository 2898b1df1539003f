// Package config loads the scraper and report settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"apdados/internal/aggregate"
	"apdados/internal/crawler"
	"apdados/internal/report"
	"apdados/pkg/utils"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. APDADOS_URL.
const EnvPrefix = "APDADOS"

// DefaultURL is the public LGPD violation registry.
const DefaultURL = "https://apdados.org/violacoes"

// DefaultRawPath is where scraped rows are stored between runs.
const DefaultRawPath = "data/lgpd_violations.json"

// Configuration validation errors.
var (
	ErrInvalidURL              = errors.New("source.url must be an absolute http(s) URL")
	ErrInvalidTimeout          = errors.New("source.timeout_sec must be non-negative")
	ErrMissingRawPath          = errors.New("output.raw_path is required")
	ErrMissingOutputDir        = errors.New("output.dir is required")
	ErrMissingReportFile       = errors.New("output.report_file is required")
	ErrInvalidMinKeywordLength = errors.New("report.min_keyword_length must be non-negative")
	ErrUnknownDimension        = errors.New("unknown dimension")
	ErrInvalidTop              = errors.New("top must be non-negative")
	ErrMissingChartFile        = errors.New("charts entry requires a file")
	ErrInvalidLogLevel         = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config represents the complete tool configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Output  OutputConfig  `yaml:"output"`
	Report  ReportConfig  `yaml:"report"`
	Charts  ChartsConfig  `yaml:"charts"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig describes the registry page and its table.
type SourceConfig struct {
	URL           string         `yaml:"url"`
	TableSelector string         `yaml:"table_selector"`
	Layout        string         `yaml:"layout"`
	Columns       []ColumnConfig `yaml:"columns"`
	TimeoutSec    int            `yaml:"timeout_sec"`
	UserAgent     string         `yaml:"user_agent"`
}

// ColumnConfig maps one table column to a record field.
type ColumnConfig struct {
	Index int    `yaml:"index"`
	Field string `yaml:"field"`
	Attr  string `yaml:"attr"`
}

// OutputConfig defines where artifacts go.
type OutputConfig struct {
	RawPath       string `yaml:"raw_path"`
	Dir           string `yaml:"dir"`
	ReportFile    string `yaml:"report_file"`
	RawCSV        string `yaml:"raw_csv"`
	NormalizedCSV string `yaml:"normalized_csv"`
}

// ReportConfig tunes the report content.
type ReportConfig struct {
	Title            string          `yaml:"title"`
	Subtitle         string          `yaml:"subtitle"`
	MinKeywordLength int             `yaml:"min_keyword_length"`
	Console          bool            `yaml:"console"`
	Sections         []SectionConfig `yaml:"sections"`
}

// SectionConfig overrides the defaults of one report section.
type SectionConfig struct {
	Dimension string `yaml:"dimension"`
	Title     string `yaml:"title"`
	CSVFile   string `yaml:"csv_file"`
	Top       *int   `yaml:"top"`
	Sort      *bool  `yaml:"sort"`
}

// ChartsConfig controls chart rendering. A non-empty Charts list replaces the default set.
type ChartsConfig struct {
	Enabled bool          `yaml:"enabled"`
	Dir     string        `yaml:"dir"`
	Charts  []ChartConfig `yaml:"charts"`
}

// ChartConfig describes one bar chart.
type ChartConfig struct {
	Dimension   string `yaml:"dimension"`
	File        string `yaml:"file"`
	Title       string `yaml:"title"`
	Top         int    `yaml:"top"`
	SortByValue bool   `yaml:"sort_by_value"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Env holds the environment overrides.
type Env struct {
	URL       string `envconfig:"URL"`
	LogLevel  string `envconfig:"LOG_LEVEL"`
	OutputDir string `envconfig:"OUTPUT_DIR"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Source: SourceConfig{
			URL:           DefaultURL,
			TableSelector: crawler.DefaultTableSelector,
			Layout:        crawler.LayoutLegacy,
		},
		Output: OutputConfig{
			RawPath:       DefaultRawPath,
			Dir:           ".",
			ReportFile:    report.DefaultReportFile,
			RawCSV:        report.DefaultRawCSV,
			NormalizedCSV: report.DefaultNormalizedCSV,
		},
		Report: ReportConfig{
			Title:            report.DefaultTitle,
			Subtitle:         report.DefaultSubtitle,
			MinKeywordLength: aggregate.MinKeywordLength,
			Console:          true,
		},
		Charts: ChartsConfig{
			Dir: report.DefaultChartDir,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// LoadConfig loads configuration from a YAML file on top of Default.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to YAML file.
func (c *Config) SaveConfig(filepath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filepath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides file values with APDADOS_* environment variables.
func (c *Config) ApplyEnv() error {
	var env Env
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("failed to read environment: %w", err)
	}

	if env.URL != "" {
		c.Source.URL = env.URL
	}

	if env.LogLevel != "" {
		c.Logging.Level = env.LogLevel
	}

	if env.OutputDir != "" {
		c.Output.Dir = env.OutputDir
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !utils.NewHTTPHelper("").IsValidURL(c.Source.URL) {
		return fmt.Errorf("%w: %q", ErrInvalidURL, c.Source.URL)
	}

	if c.Source.TimeoutSec < 0 {
		return ErrInvalidTimeout
	}

	if _, err := c.Columns(); err != nil {
		return fmt.Errorf("source: %w", err)
	}

	if strings.TrimSpace(c.Output.RawPath) == "" {
		return ErrMissingRawPath
	}

	if strings.TrimSpace(c.Output.Dir) == "" {
		return ErrMissingOutputDir
	}

	if strings.TrimSpace(c.Output.ReportFile) == "" {
		return ErrMissingReportFile
	}

	if c.Report.MinKeywordLength < 0 {
		return ErrInvalidMinKeywordLength
	}

	for i, s := range c.Report.Sections {
		if !aggregate.IsDimension(s.Dimension) {
			return fmt.Errorf("%w: report.sections[%d] %q", ErrUnknownDimension, i, s.Dimension)
		}

		if s.Top != nil && *s.Top < 0 {
			return fmt.Errorf("%w: report.sections[%d]", ErrInvalidTop, i)
		}
	}

	for i, ch := range c.Charts.Charts {
		if !aggregate.IsDimension(ch.Dimension) {
			return fmt.Errorf("%w: charts.charts[%d] %q", ErrUnknownDimension, i, ch.Dimension)
		}

		if strings.TrimSpace(ch.File) == "" {
			return fmt.Errorf("%w: charts.charts[%d]", ErrMissingChartFile, i)
		}

		if ch.Top < 0 {
			return fmt.Errorf("%w: charts.charts[%d]", ErrInvalidTop, i)
		}
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return ErrInvalidLogLevel
	}

	return nil
}

// Columns returns the column mapping: the explicit list when given, otherwise the named layout.
func (c *Config) Columns() ([]crawler.Column, error) {
	if len(c.Source.Columns) == 0 {
		return crawler.Layout(c.Source.Layout)
	}

	columns := make([]crawler.Column, 0, len(c.Source.Columns))
	for _, col := range c.Source.Columns {
		columns = append(columns, crawler.Column{Index: col.Index, Field: col.Field, Attr: col.Attr})
	}

	if err := crawler.ValidateColumns(columns); err != nil {
		return nil, err
	}

	return columns, nil
}

// Timeout returns the fetch timeout. Zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Source.TimeoutSec) * time.Second
}

// Sections returns the default report sections with the configured overrides applied.
func (c *Config) Sections() []report.Section {
	sections := report.DefaultSections()

	for _, override := range c.Report.Sections {
		for i := range sections {
			if sections[i].Dimension != override.Dimension {
				continue
			}

			if override.Title != "" {
				sections[i].Title = override.Title
			}

			if override.CSVFile != "" {
				sections[i].CSVFile = override.CSVFile
			}

			if override.Top != nil {
				sections[i].Options.Top = *override.Top
			}

			if override.Sort != nil {
				sections[i].Options.SortDesc = *override.Sort
			}
		}
	}

	return sections
}

// ChartSpecs returns the configured charts, or the default set.
func (c *Config) ChartSpecs() []report.ChartSpec {
	if len(c.Charts.Charts) == 0 {
		return report.DefaultCharts()
	}

	specs := make([]report.ChartSpec, 0, len(c.Charts.Charts))
	for _, ch := range c.Charts.Charts {
		specs = append(specs, report.ChartSpec{
			Dimension: ch.Dimension,
			File:      ch.File,
			Title:     ch.Title,
			Options: report.Options{
				SortDesc: ch.SortByValue,
				SortKeys: !ch.SortByValue,
				Top:      ch.Top,
			},
		})
	}

	return specs
}

// WriterConfig builds the report writer settings.
func (c *Config) WriterConfig() report.Config {
	return report.Config{
		Title:         c.Report.Title,
		Subtitle:      c.Report.Subtitle,
		Dir:           c.Output.Dir,
		ReportFile:    c.Output.ReportFile,
		Sections:      c.Sections(),
		Console:       c.Report.Console,
		Charts:        c.Charts.Enabled,
		ChartDir:      c.Charts.Dir,
		ChartSpecs:    c.ChartSpecs(),
		RawCSV:        c.Output.RawCSV,
		NormalizedCSV: c.Output.NormalizedCSV,
	}
}
