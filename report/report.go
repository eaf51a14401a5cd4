// Package report reads back a run's statistics table for display.
package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"gonum.org/v1/gonum/stat"
)

var ErrEmptySummary = errors.New("report: summary table has no samples")

const sampleCol = "Sample"

// Summary is a loaded stats-summary.csv, sorted by sample.
type Summary struct {
	df dataframe.DataFrame
}

// Load reads a summary table. A table holding only its header returns ErrEmptySummary.
func Load(path string) (*Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	header, _, _ := strings.Cut(string(data), "\n")
	if !strings.HasPrefix(header, sampleCol+",") {
		return nil, fmt.Errorf("report: %s is not a summary table", path)
	}

	df := dataframe.ReadCSV(bytes.NewReader(data), dataframe.WithTypes(map[string]series.Type{sampleCol: series.String}))
	if df.Err != nil {
		if strings.Contains(df.Err.Error(), "empty DataFrame") {
			return nil, ErrEmptySummary
		}
		return nil, df.Err
	}
	df = df.Arrange(dataframe.Sort(sampleCol))
	if df.Err != nil {
		return nil, df.Err
	}
	return &Summary{df: df}, nil
}

func (s *Summary) Samples() []string {
	return s.df.Col(sampleCol).Records()
}

// Columns returns the statistics columns, without the sample column.
func (s *Summary) Columns() []string {
	return s.df.Names()[1:]
}

func (s *Summary) Values(col string) []float64 {
	return s.df.Col(col).Float()
}

// Mean returns the mean of col over all samples.
func (s *Summary) Mean(col string) float64 {
	return stat.Mean(s.Values(col), nil)
}

// WriteTable writes the table followed by a row of column means.
func (s *Summary) WriteTable(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range s.df.Records() {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	means := []string{"Mean"}
	for _, c := range s.Columns() {
		means = append(means, fmt.Sprintf("%.2f", s.Mean(c)))
	}
	fmt.Fprintln(tw, strings.Join(means, "\t"))
	return tw.Flush()
}

func (s *Summary) barChart(title, ylabel string, cols []string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithYAxisOpts(opts.YAxis{Name: ylabel}),
		charts.WithXAxisOpts(opts.XAxis{Name: sampleCol}),
	)
	bar.SetXAxis(s.Samples())
	for _, c := range cols {
		values := s.Values(c)
		data := make([]opts.BarData, len(values))
		for i, v := range values {
			data[i] = opts.BarData{Value: v}
		}
		bar.AddSeries(c, data)
	}
	return bar
}

// RenderHTML writes a page with bar charts of the counts and average lengths
// at every stage.
func (s *Summary) RenderHTML(w io.Writer) error {
	var counts, lengths, contigs []string
	for _, c := range s.Columns() {
		switch {
		case strings.HasPrefix(c, "Average"):
			lengths = append(lengths, c)
		case strings.HasSuffix(c, "Contigs"):
			contigs = append(contigs, c)
		default:
			counts = append(counts, c)
		}
	}

	page := components.NewPage()
	page.SetPageTitle("Assembly statistics")
	page.AddCharts(
		s.barChart("Reads per sample", "Reads", counts),
		s.barChart("Contigs per sample", "Contigs", contigs),
		s.barChart("Average length", "Length (bp)", lengths),
	)
	return page.Render(w)
}
