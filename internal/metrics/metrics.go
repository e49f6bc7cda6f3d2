package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/renewsim/internal/projection"
)

// Metric folds the rows of a projection, in year order, into one number.
// A metric that cannot be evaluated reports NaN.
type Metric interface {
	Name() string
	Observe(row projection.Row)
	Value() float64
	Reset()
}

// Eval resets m, feeds it every row of res and returns its value.
func Eval(m Metric, res *projection.Result) float64 {
	m.Reset()
	for _, row := range res.Rows {
		m.Observe(row)
	}
	return m.Value()
}

type ShareAt struct {
	year  int
	value float64
}

func NewShareAt(year int) *ShareAt {
	return &ShareAt{year: year, value: math.NaN()}
}

func (s *ShareAt) Name() string { return "share_at_year" }

func (s *ShareAt) Observe(row projection.Row) {
	if row.Year == s.year {
		s.value = float64(row.RenewableShare)
	}
}

func (s *ShareAt) Value() float64 { return s.value }

func (s *ShareAt) Reset() { s.value = math.NaN() }

type PeakShare struct {
	shares []float64
}

func NewPeakShare() *PeakShare { return &PeakShare{} }

func (p *PeakShare) Name() string { return "peak_share" }

func (p *PeakShare) Observe(row projection.Row) {
	if row.RenewableShare.Valid() {
		p.shares = append(p.shares, float64(row.RenewableShare))
	}
}

func (p *PeakShare) Value() float64 {
	if len(p.shares) == 0 {
		return math.NaN()
	}
	return floats.Max(p.shares)
}

func (p *PeakShare) Reset() { p.shares = p.shares[:0] }

// FirstYearReaching reports the first year whose share is at least the
// target, or NaN when the target is never reached.
type FirstYearReaching struct {
	target float64
	year   float64
}

func NewFirstYearReaching(target float64) *FirstYearReaching {
	return &FirstYearReaching{target: target, year: math.NaN()}
}

func (f *FirstYearReaching) Name() string { return "first_year_reaching_target" }

func (f *FirstYearReaching) Observe(row projection.Row) {
	if math.IsNaN(f.year) && float64(row.RenewableShare) >= f.target {
		f.year = float64(row.Year)
	}
}

func (f *FirstYearReaching) Value() float64 { return f.year }

func (f *FirstYearReaching) Reset() { f.year = math.NaN() }

// CapacityCAGR is the compound annual growth rate of renewable capacity
// between the first and last observed rows, in percent.
type CapacityCAGR struct {
	samples         int
	first, last     float64
	firstYr, lastYr int
}

func NewCapacityCAGR() *CapacityCAGR { return &CapacityCAGR{} }

func (c *CapacityCAGR) Name() string { return "capacity_cagr" }

func (c *CapacityCAGR) Observe(row projection.Row) {
	if c.samples == 0 {
		c.first, c.firstYr = float64(row.RenewableCapacity), row.Year
	}
	c.last, c.lastYr = float64(row.RenewableCapacity), row.Year
	c.samples++
}

func (c *CapacityCAGR) Value() float64 {
	years := c.lastYr - c.firstYr
	if c.samples < 2 || years <= 0 || c.first <= 0 || c.last < 0 {
		return math.NaN()
	}
	return (math.Pow(c.last/c.first, 1/float64(years)) - 1) * 100
}

func (c *CapacityCAGR) Reset() { *c = CapacityCAGR{} }
