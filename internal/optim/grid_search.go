package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/projection"
	"github.com/san-kum/renewsim/internal/scenario"
)

var ErrNoFeasiblePoint = errors.New("optim: no grid point could be evaluated")

// Objective scores a projection. Higher is better.
type Objective func(res *projection.Result) float64

// FinalShare scores a projection by its last renewable share.
func FinalShare(res *projection.Result) float64 {
	return float64(res.Last().RenewableShare)
}

// Point is one evaluated combination of parameters.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) == 0 || len(params) != len(ranges) {
		return nil, fmt.Errorf("optim: %d parameters for %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("optim: empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	if n <= 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point and returns them sorted best first.
// Points whose evaluation fails or is NaN sort last and keep their error.
func (g *GridSearch) Search(
	ctx context.Context,
	evaluate func(ctx context.Context, params map[string]float64) (float64, error),
) ([]Point, error) {
	points := make([]Point, 0, g.Size())
	if err := g.searchRecursive(ctx, 0, make(map[string]float64), evaluate, &points); err != nil {
		return nil, err
	}

	sort.SliceStable(points, func(i, j int) bool {
		a, b := points[i], points[j]
		if a.ok() != b.ok() {
			return a.ok()
		}
		return a.Value > b.Value
	})

	if len(points) == 0 || !points[0].ok() {
		return points, ErrNoFeasiblePoint
	}
	return points, nil
}

func (p Point) ok() bool { return p.Err == nil && !math.IsNaN(p.Value) }

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	evaluate func(context.Context, map[string]float64) (float64, error),
	points *[]Point,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		params := make(map[string]float64, len(current))
		for k, v := range current {
			params[k] = v
		}
		val, err := evaluate(ctx, params)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		*points = append(*points, Point{Params: params, Value: val, Err: err})
		return nil
	}

	name := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[name] = val
		if err := g.searchRecursive(ctx, depth+1, current, evaluate, points); err != nil {
			return err
		}
	}
	delete(current, name)
	return nil
}

var setters = map[string]func(*scenario.Scenario, float64){
	"investment_growth":    func(s *scenario.Scenario, v float64) { s.InvestmentGrowth = v },
	"tech_improvement":     func(s *scenario.Scenario, v float64) { s.TechImprovement = v },
	"infrastructure_coeff": func(s *scenario.Scenario, v float64) { s.InfrastructureCoeff = v },
	"depreciation":         func(s *scenario.Scenario, v float64) { s.Depreciation = v },
	"policy_effectiveness": func(s *scenario.Scenario, v float64) { s.PolicyEffectiveness = v },
	"max_capacity":         func(s *scenario.Scenario, v float64) { s.MaxCapacity = v },
}

// Coefficients lists the scenario coefficients a sweep can vary.
func Coefficients() []string {
	names := make([]string, 0, len(setters))
	for name := range setters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ScenarioEvaluator returns an evaluation function that projects scenario id
// of reg with the swept coefficients substituted.
func ScenarioEvaluator(
	reg *scenario.Registry,
	id string,
	startYear int,
	ic experiment.InitialConditions,
	endYear int,
	objective Objective,
	opts ...experiment.Option,
) (func(context.Context, map[string]float64) (float64, error), error) {
	if _, err := reg.Get(id); err != nil {
		return nil, err
	}

	return func(ctx context.Context, params map[string]float64) (float64, error) {
		for name := range params {
			if _, ok := setters[name]; !ok {
				return math.NaN(), fmt.Errorf("optim: unknown coefficient %q (available: %v)", name, Coefficients())
			}
		}
		swept, err := reg.Override(id, func(s *scenario.Scenario) {
			for name, v := range params {
				setters[name](s, v)
			}
		})
		if err != nil {
			return math.NaN(), err
		}

		runner, err := experiment.NewRunner(swept, startYear, opts...)
		if err != nil {
			return math.NaN(), err
		}
		res, err := runner.RunOne(ctx, id, ic, endYear)
		if err != nil {
			return math.NaN(), err
		}
		return objective(res), nil
	}, nil
}
