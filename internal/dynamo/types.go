package dynamo

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	if len(s) == 0 {
		return 0
	}
	return floats.Norm(s, 2)
}

// AddScaled returns s + alpha*other. Components beyond len(other) are copied.
func (s State) AddScaled(alpha float64, other State) State {
	result := s.Clone()
	n := min(len(s), len(other))
	floats.AddScaled(result[:n], alpha, other[:n])
	return result
}

func (s State) Sub(other State) State {
	return s.AddScaled(-1, other)
}

// System is an autonomous or time-dependent ODE dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Integrator interface {
	Step(sys System, x State, t, dt float64) State
}

// AdaptiveIntegrator estimates its own local error. StepAdaptive returns the
// proposed state, the suggested next step size, and ErrStepRejected when the
// error estimate exceeds tol (the caller retries with the suggested step).
type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(sys System, x State, t, dt, tol float64) (State, float64, error)
}

type Config struct {
	// Dt is the initial step for adaptive runs.
	Dt float64
	// Substeps is the number of fixed steps per unit time between two output points.
	Substeps  int
	Tolerance float64
	MaxDt     float64
	MinDt     float64
	Adaptive  bool
	// MaxSteps bounds the accepted steps per output interval; zero means unbounded.
	MaxSteps      int
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:        0.1,
		Substeps:  16,
		Tolerance: 1e-8,
		MaxDt:     1.0,
		MinDt:     1e-10,
		Adaptive:  true,
		MaxSteps:  100000,
	}
}

type Result struct {
	States     []State
	Times      []float64
	StepsTaken int
	Rejected   int
}

// Final returns the last recorded state, or nil for an empty result.
func (r *Result) Final() State {
	if r == nil || len(r.States) == 0 {
		return nil
	}
	return r.States[len(r.States)-1]
}
