package projection

import (
	"errors"
	"fmt"

	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/models"
)

var ErrLengthMismatch = errors.New("projection: trajectory and denominator lengths differ")

// Row is one projected year of one scenario.
type Row struct {
	Year              int    `json:"year"`
	RenewableCapacity Float  `json:"renewable_capacity"`
	Investment        Float  `json:"investment"`
	Infrastructure    Float  `json:"infrastructure"`
	TotalCapacity     Float  `json:"total_capacity"`
	RenewableShare    Float  `json:"renewable_share"`
	Scenario          string `json:"scenario"`
}

// Result is the year-ordered projection of a single scenario.
type Result struct {
	Scenario string `json:"scenario"`
	Rows     []Row  `json:"rows"`
}

// Assemble joins a state trajectory with the denominator series. Row i is
// calendar year startYear+i. Share is capacity/total·100, unclamped.
func Assemble(startYear int, states []dynamo.State, totals []float64, scenarioID string) (*Result, error) {
	if len(states) != len(totals) {
		return nil, fmt.Errorf("%w: %d states, %d totals", ErrLengthMismatch, len(states), len(totals))
	}

	rows := make([]Row, len(states))
	for i, x := range states {
		if len(x) != 3 {
			return nil, fmt.Errorf("%w: row %d has %d components", dynamo.ErrDimensionMismatch, i, len(x))
		}
		rows[i] = Row{
			Year:              startYear + i,
			RenewableCapacity: Float(x[models.Capacity]),
			Investment:        Float(x[models.Investment]),
			Infrastructure:    Float(x[models.Infrastructure]),
			TotalCapacity:     Float(totals[i]),
			RenewableShare:    Float(x[models.Capacity] / totals[i] * 100),
			Scenario:          scenarioID,
		}
	}

	return &Result{Scenario: scenarioID, Rows: rows}, nil
}

func (r *Result) Len() int { return len(r.Rows) }

func (r *Result) Years() []int {
	years := make([]int, len(r.Rows))
	for i, row := range r.Rows {
		years[i] = row.Year
	}
	return years
}

// At returns the row for a calendar year.
func (r *Result) At(year int) (Row, bool) {
	if len(r.Rows) == 0 {
		return Row{}, false
	}
	i := year - r.Rows[0].Year
	if i < 0 || i >= len(r.Rows) {
		return Row{}, false
	}
	return r.Rows[i], true
}

func (r *Result) First() Row { return r.Rows[0] }

func (r *Result) Last() Row { return r.Rows[len(r.Rows)-1] }

// Column extracts one numeric series by its JSON name.
func (r *Result) Column(name string) ([]float64, error) {
	pick, ok := columns[name]
	if !ok {
		return nil, fmt.Errorf("projection: unknown column %q", name)
	}
	out := make([]float64, len(r.Rows))
	for i := range r.Rows {
		out[i] = float64(pick(&r.Rows[i]))
	}
	return out, nil
}

var columns = map[string]func(*Row) Float{
	"renewable_capacity": func(r *Row) Float { return r.RenewableCapacity },
	"investment":         func(r *Row) Float { return r.Investment },
	"infrastructure":     func(r *Row) Float { return r.Infrastructure },
	"total_capacity":     func(r *Row) Float { return r.TotalCapacity },
	"renewable_share":    func(r *Row) Float { return r.RenewableShare },
}

// ColumnNames lists the numeric columns in table order.
func ColumnNames() []string {
	return []string{"renewable_capacity", "investment", "infrastructure", "total_capacity", "renewable_share"}
}

// Concat flattens results into one row set, preserving order.
func Concat(results ...*Result) []Row {
	n := 0
	for _, r := range results {
		n += len(r.Rows)
	}
	rows := make([]Row, 0, n)
	for _, r := range results {
		rows = append(rows, r.Rows...)
	}
	return rows
}

// Split regroups a flat row set by scenario, in order of first appearance.
func Split(rows []Row) []*Result {
	var out []*Result
	index := make(map[string]*Result)
	for _, row := range rows {
		res, ok := index[row.Scenario]
		if !ok {
			res = &Result{Scenario: row.Scenario}
			index[row.Scenario] = res
			out = append(out, res)
		}
		res.Rows = append(res.Rows, row)
	}
	return out
}
