package report

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"apdados/internal/aggregate"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// DefaultChartDir is where charts are written unless configured otherwise.
const DefaultChartDir = "plots"

// Chart canvas size in points; at the 96 DPI PNG default this is 800x400 px.
const (
	chartWidth  = vg.Length(600)
	chartHeight = vg.Length(300)
)

// ErrNoData is returned when a chart has nothing to draw.
var ErrNoData = errors.New("no data to chart")

var chartPalette = []color.Color{
	color.NRGBA{R: 54, G: 162, B: 235, A: 128},
	color.NRGBA{R: 255, G: 99, B: 132, A: 128},
	color.NRGBA{R: 75, G: 192, B: 192, A: 128},
}

// ChartSpec describes one bar chart.
type ChartSpec struct {
	Dimension string
	File      string
	Title     string
	Options   Options
}

// DefaultCharts returns the chart set: yearly volume, top issuers and sanction types.
func DefaultCharts() []ChartSpec {
	return []ChartSpec{
		{Dimension: aggregate.Year, File: "violations_per_year.png", Title: "Violações por ano", Options: Options{SortKeys: true}},
		{Dimension: aggregate.Issuer, File: "top_organizations.png", Title: "Top 10 órgãos sancionadores", Options: Options{SortDesc: true, Top: 10}},
		{Dimension: aggregate.Sanctions, File: "violation_types.png", Title: "Tipos de sanção", Options: Options{SortDesc: true}},
	}
}

// RenderChart draws entries as a bar chart, labels on the X axis and values
// from zero on the Y axis, and saves it as an image at path. The format
// follows the file extension.
func RenderChart(path, title string, entries []aggregate.Entry, fill color.Color) error {
	if len(entries) == 0 {
		return ErrNoData
	}

	labels := make([]string, len(entries))
	values := make(plotter.Values, len(entries))

	for i, e := range entries {
		labels[i] = e.Key
		values[i] = e.Value
	}

	p := plot.New()
	p.Title.Text = title

	bars, err := plotter.NewBarChart(values, vg.Points(20))
	if err != nil {
		return fmt.Errorf("failed to build bar chart: %w", err)
	}

	bars.Color = fill
	bars.LineStyle.Width = 0

	p.Add(bars)
	p.NominalX(labels...)
	p.Y.Min = 0

	p.X.Tick.Label.Rotation = math.Pi / 6
	p.X.Tick.Label.XAlign = draw.XRight
	p.X.Tick.Label.YAlign = draw.YCenter

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	return p.Save(chartWidth, chartHeight, path)
}
