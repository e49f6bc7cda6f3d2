package export

import (
	"fmt"
	"html"
	"io"
	"math"
	"strings"

	"github.com/san-kum/renewsim/internal/viz"
)

// SVGOptions sizes the chart. Target draws a dashed reference line when
// positive.
type SVGOptions struct {
	Width, Height int
	Title         string
	StartYear     int
	Target        float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 450}
}

const (
	marginLeft   = 56.0
	marginRight  = 160.0
	marginTop    = 36.0
	marginBottom = 36.0
)

// SeriesToSVG writes the series as a line chart with one x step per year.
// Non-finite values break the line.
func SeriesToSVG(w io.Writer, series []viz.Series, opts SVGOptions) error {
	if len(series) == 0 {
		return fmt.Errorf("export: nothing to draw")
	}

	n := 0
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		n = max(n, len(s.Values))
		for _, v := range s.Values {
			if finite(v) {
				minY, maxY = math.Min(minY, v), math.Max(maxY, v)
			}
		}
	}
	if math.IsInf(minY, 1) {
		return fmt.Errorf("export: no finite values to draw")
	}
	if opts.Target > 0 {
		minY, maxY = math.Min(minY, opts.Target), math.Max(maxY, opts.Target)
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	plotW := float64(opts.Width) - marginLeft - marginRight
	plotH := float64(opts.Height) - marginTop - marginBottom
	x := func(i int) float64 {
		if n <= 1 {
			return marginLeft
		}
		return marginLeft + float64(i)/float64(n-1)*plotW
	}
	y := func(v float64) float64 {
		return marginTop + plotH - (v-minY)/rangeY*plotH
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif" font-size="12">
<rect width="100%%" height="100%%" fill="#ffffff"/>
`, opts.Width, opts.Height, opts.Width, opts.Height)

	if opts.Title != "" {
		fmt.Fprintf(&sb, `<text x="%.1f" y="20" font-size="14" font-weight="bold">%s</text>`+"\n",
			marginLeft, html.EscapeString(opts.Title))
	}

	// axes
	fmt.Fprintf(&sb, `<path fill="none" stroke="#444444" d="M%.1f,%.1f V%.1f H%.1f"/>`+"\n",
		marginLeft, marginTop, marginTop+plotH, marginLeft+plotW)
	for _, v := range []float64{minY, (minY + maxY) / 2, maxY} {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="end">%.1f</text>`+"\n", marginLeft-6, y(v)+4, v)
	}
	if opts.StartYear != 0 && n > 0 {
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle">%d</text>`+"\n",
			x(0), marginTop+plotH+18, opts.StartYear)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" text-anchor="middle">%d</text>`+"\n",
			x(n-1), marginTop+plotH+18, opts.StartYear+n-1)
	}

	if opts.Target > 0 {
		fmt.Fprintf(&sb, `<path fill="none" stroke="#2ca02c" stroke-dasharray="6,4" d="M%.1f,%.1f H%.1f"/>`+"\n",
			marginLeft, y(opts.Target), marginLeft+plotW)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f" fill="#2ca02c">target %.0f%%</text>`+"\n",
			marginLeft+plotW+8, y(opts.Target)+4, opts.Target)
	}

	for si, s := range series {
		color := string(viz.ScenarioColor(s.Color))
		if !strings.HasPrefix(color, "#") {
			color = "#333333"
		}

		var d strings.Builder
		pen := false
		for i, v := range s.Values {
			if !finite(v) {
				pen = false
				continue
			}
			cmd := "L"
			if !pen {
				cmd = "M"
			}
			fmt.Fprintf(&d, "%s%.1f,%.1f ", cmd, x(i), y(v))
			pen = true
		}
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="2" d="%s"/>`+"\n",
			color, strings.TrimSpace(d.String()))

		ly := marginTop + float64(si)*18
		fmt.Fprintf(&sb, `<rect x="%.1f" y="%.1f" width="12" height="3" fill="%s"/>`+"\n",
			marginLeft+plotW+8, ly+16, color)
		fmt.Fprintf(&sb, `<text x="%.1f" y="%.1f">%s</text>`+"\n",
			marginLeft+plotW+24, ly+20, html.EscapeString(s.Label))
	}

	sb.WriteString("</svg>\n")
	_, err := io.WriteString(w, sb.String())
	return err
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
