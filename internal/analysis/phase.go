package analysis

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/renewsim/internal/projection"
)

type Point struct{ X, Y float64 }

// PhasePortrait is the path of one projection through the plane of two of
// its columns.
type PhasePortrait struct {
	XName, YName string
	Points       []Point
}

// NewPhasePortrait pairs two columns of res year by year, skipping years
// where either value is not finite.
func NewPhasePortrait(res *projection.Result, xName, yName string) (*PhasePortrait, error) {
	xs, err := res.Column(xName)
	if err != nil {
		return nil, err
	}
	ys, err := res.Column(yName)
	if err != nil {
		return nil, err
	}

	p := &PhasePortrait{XName: xName, YName: yName, Points: make([]Point, 0, len(xs))}
	for i := range xs {
		if projection.Float(xs[i]).Valid() && projection.Float(ys[i]).Valid() {
			p.Points = append(p.Points, Point{X: xs[i], Y: ys[i]})
		}
	}
	if len(p.Points) == 0 {
		return nil, fmt.Errorf("analysis: no finite %s/%s pairs", xName, yName)
	}
	return p, nil
}

func (p *PhasePortrait) bounds() (minX, maxX, minY, maxY float64) {
	xs := make([]float64, len(p.Points))
	ys := make([]float64, len(p.Points))
	for i, pt := range p.Points {
		xs[i], ys[i] = pt.X, pt.Y
	}
	return floats.Min(xs), floats.Max(xs), floats.Min(ys), floats.Max(ys)
}

// ToASCII draws the path on a width×height grid. The first point is
// marked 'o' and the last '*'.
func (p *PhasePortrait) ToASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.bounds()

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(pt Point) (row, col int) {
		col = int((pt.X - minX) / rangeX * float64(width-1))
		row = height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		return row, col
	}

	for _, pt := range p.Points {
		row, col := cell(pt)
		canvas[row][col] = '•'
	}
	row, col := cell(p.Points[0])
	canvas[row][col] = 'o'
	row, col = cell(p.Points[len(p.Points)-1])
	canvas[row][col] = '*'

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s ↑ [%.4g, %.4g]\n", p.YName, minY, maxY)
	for _, r := range canvas {
		sb.WriteRune('│')
		sb.WriteString(string(r))
		sb.WriteRune('\n')
	}
	sb.WriteString("└" + strings.Repeat("─", width) + "\n")
	fmt.Fprintf(&sb, "%s → [%.4g, %.4g]\n", p.XName, minX, maxX)
	return sb.String()
}
