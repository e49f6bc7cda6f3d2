package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/renewsim/internal/projection"
)

// Series is one named line of a chart.
type Series struct {
	Label  string
	Color  string
	Values []float64
}

type ChartOptions struct {
	Height  int
	Width   int
	Caption string
	// Target draws a flat reference line when positive.
	Target float64
}

func DefaultChartOptions() ChartOptions {
	return ChartOptions{Height: 12, Width: 72}
}

// ShareSeries extracts the renewable share of each result. Labels come
// from names when present, else the scenario id.
func ShareSeries(results []*projection.Result, names, colors map[string]string) []Series {
	out := make([]Series, 0, len(results))
	for _, res := range results {
		vals, _ := res.Column("renewable_share")
		label := res.Scenario
		if n, ok := names[res.Scenario]; ok && n != "" {
			label = n
		}
		out = append(out, Series{Label: label, Color: colors[res.Scenario], Values: vals})
	}
	return out
}

// Plot draws the series on one asciigraph canvas. Non-finite values leave a
// gap in their line.
func Plot(series []Series, opts ChartOptions) (string, error) {
	if len(series) == 0 {
		return "", fmt.Errorf("viz: nothing to plot")
	}

	data := make([][]float64, 0, len(series)+1)
	colors := make([]asciigraph.AnsiColor, 0, len(series)+1)
	legends := make([]string, 0, len(series)+1)
	n := 0
	for _, s := range series {
		if len(s.Values) == 0 {
			return "", fmt.Errorf("viz: series %q is empty", s.Label)
		}
		data = append(data, gapped(s.Values))
		colors = append(colors, ansiColor(s.Color))
		legends = append(legends, s.Label)
		n = max(n, len(s.Values))
	}

	if opts.Target > 0 {
		line := make([]float64, n)
		for i := range line {
			line[i] = opts.Target
		}
		data = append(data, line)
		colors = append(colors, asciigraph.Gray)
		legends = append(legends, fmt.Sprintf("target %.0f%%", opts.Target))
	}

	graphOpts := []asciigraph.Option{
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Precision(1),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(legends...),
	}
	if opts.Caption != "" {
		graphOpts = append(graphOpts, asciigraph.Caption(opts.Caption))
	}

	if !anyFinite(data) {
		return "", fmt.Errorf("viz: no finite values to plot")
	}
	return asciigraph.PlotMany(data, graphOpts...), nil
}

func ansiColor(name string) asciigraph.AnsiColor {
	if c, ok := asciigraph.ColorNames[strings.ToLower(name)]; ok {
		return c
	}
	return asciigraph.Default
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteRange(values []float64) (lo, hi float64, ok bool) {
	for _, v := range values {
		if !finite(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo, hi = min(lo, v), max(hi, v)
	}
	return lo, hi, ok
}

// gapped copies values with ±Inf replaced by NaN, which asciigraph skips.
func gapped(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}

func anyFinite(data [][]float64) bool {
	for _, s := range data {
		if _, _, ok := finiteRange(s); ok {
			return true
		}
	}
	return false
}
