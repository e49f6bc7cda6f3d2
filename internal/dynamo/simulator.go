package dynamo

import (
	"context"
	"errors"
	"fmt"
	"math"
)

type Simulator struct {
	sys        System
	integrator Integrator
}

func New(sys System, integrator Integrator) *Simulator {
	return &Simulator{sys: sys, integrator: integrator}
}

// Run integrates from x0 at times[0] and records the state at every element of
// times. The internal step size is chosen by the solver, never by the caller's
// time grid: fixed-step runs take cfg.Substeps steps per unit time, adaptive
// runs control the local error against cfg.Tolerance.
func (s *Simulator) Run(ctx context.Context, x0 State, times []float64, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}
	if err := validateTimes(times); err != nil {
		return nil, err
	}
	if len(x0) != s.sys.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system wants %d",
			ErrDimensionMismatch, len(x0), s.sys.StateDim())
	}

	result := &Result{
		States: make([]State, 0, len(times)),
		Times:  make([]float64, 0, len(times)),
	}

	x := x0.Clone()
	dt := cfg.Dt
	result.States = append(result.States, x.Clone())
	result.Times = append(result.Times, times[0])

	for i := 1; i < len(times); i++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		var err error
		if cfg.Adaptive {
			x, dt, err = s.advanceAdaptive(x, times[i-1], times[i], dt, cfg, result)
		} else {
			x, err = s.advanceFixed(x, times[i-1], times[i], cfg, result)
		}
		if err != nil {
			return result, &SimulationError{Step: result.StepsTaken, Time: times[i-1], State: x, Wrapped: err}
		}

		if cfg.ValidateState && !x.IsValid() {
			return result, &SimulationError{Step: result.StepsTaken, Time: times[i], State: x, Wrapped: ErrInvalidState}
		}

		result.States = append(result.States, x.Clone())
		result.Times = append(result.Times, times[i])
	}

	return result, nil
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Adaptive {
		if cfg.Tolerance <= 0 {
			return fmt.Errorf("%w: tolerance must be positive for adaptive stepping", ErrInvalidConfig)
		}
		if cfg.Dt <= 0 {
			return fmt.Errorf("%w: initial dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
		}
		return nil
	}
	if cfg.Substeps <= 0 {
		return fmt.Errorf("%w: substeps must be positive, got %d", ErrInvalidConfig, cfg.Substeps)
	}
	return nil
}

func validateTimes(times []float64) error {
	if len(times) == 0 {
		return ErrInvalidTimes
	}
	for i, t := range times {
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return fmt.Errorf("%w: times[%d] is not finite", ErrInvalidTimes, i)
		}
		if i > 0 && t <= times[i-1] {
			return fmt.Errorf("%w: times[%d]=%g after %g", ErrInvalidTimes, i, t, times[i-1])
		}
	}
	return nil
}

func (s *Simulator) advanceFixed(x State, t0, t1 float64, cfg Config, result *Result) (State, error) {
	span := t1 - t0
	n := int(math.Ceil(span * float64(cfg.Substeps)))
	if n < 1 {
		n = 1
	}
	h := span / float64(n)

	for k := 0; k < n; k++ {
		x = s.integrator.Step(s.sys, x, t0+float64(k)*h, h)
		result.StepsTaken++
	}
	return x, nil
}

func (s *Simulator) advanceAdaptive(x State, t0, t1, dt float64, cfg Config, result *Result) (State, float64, error) {
	t := t0
	steps := 0

	for t < t1 {
		if cfg.MaxSteps > 0 && steps >= cfg.MaxSteps {
			return x, dt, ErrTooManySteps
		}

		h := dt
		if cfg.MaxDt > 0 && h > cfg.MaxDt {
			h = cfg.MaxDt
		}
		remaining := t1 - t
		last := h >= remaining
		if last {
			h = remaining
		}

		newX, next, err := s.adaptiveStep(x, t, h, cfg)
		if errors.Is(err, ErrStepRejected) {
			result.Rejected++
			if next < cfg.MinDt {
				return x, dt, ErrStepTooSmall
			}
			dt = next
			continue
		}
		if err != nil {
			return x, dt, err
		}

		x = newX
		if last {
			t = t1
		} else {
			t += h
		}
		// A step shortened to land on t1 says nothing about the next one.
		if !last || next > dt {
			dt = next
		}

		steps++
		result.StepsTaken++
	}

	return x, dt, nil
}

func (s *Simulator) adaptiveStep(x State, t, dt float64, cfg Config) (State, float64, error) {
	if adaptive, ok := s.integrator.(AdaptiveIntegrator); ok {
		return adaptive.StepAdaptive(s.sys, x, t, dt, cfg.Tolerance)
	}

	// Step doubling: compare one full step against two half steps.
	x1 := s.integrator.Step(s.sys, x, t, dt)
	xHalf := s.integrator.Step(s.sys, x, t, dt/2)
	x2 := s.integrator.Step(s.sys, xHalf, t+dt/2, dt/2)

	err := x1.Sub(x2).Norm() / (x2.Norm() + 1e-10)
	if math.IsNaN(err) {
		return x2, dt, nil
	}

	if err > cfg.Tolerance {
		return x, dt / 2, ErrStepRejected
	}

	if err < cfg.Tolerance/10 {
		return x2, dt * 2, nil
	}

	return x2, dt, nil
}
