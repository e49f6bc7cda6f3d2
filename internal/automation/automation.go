package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/projection"
	"github.com/san-kum/renewsim/internal/scenario"
)

// AllScenarios as a step's scenario projects every registered scenario.
const AllScenarios = "all"

var ErrInvalidPlan = errors.New("automation: invalid plan")

// Plan is a scripted sequence of projections.
type Plan struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one projection. Unset fields fall back to the executor defaults.
type Step struct {
	Scenario       string   `yaml:"scenario"`
	EndYear        int      `yaml:"end_year"`
	Integrator     string   `yaml:"integrator,omitempty"`
	Investment     *float64 `yaml:"investment,omitempty"`
	Infrastructure *float64 `yaml:"infrastructure,omitempty"`
	SaveAs         string   `yaml:"save_as,omitempty"`
}

func LoadPlan(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParsePlan(data)
}

// ParsePlan decodes a plan, rejecting unknown keys.
func ParsePlan(data []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var plan Plan
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return &plan, nil
}

func (p *Plan) Validate() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps", ErrInvalidPlan)
	}
	for i, s := range p.Steps {
		if s.Scenario == "" {
			return fmt.Errorf("%w: step %d has no scenario", ErrInvalidPlan, i+1)
		}
		if s.EndYear == 0 {
			return fmt.Errorf("%w: step %d has no end_year", ErrInvalidPlan, i+1)
		}
	}
	return nil
}

// StepResult holds what one step produced.
type StepResult struct {
	Step     Step
	Results  []*projection.Result
	Failures []experiment.Outcome
}

// Rows flattens the step's successful projections.
func (r StepResult) Rows() []projection.Row {
	return projection.Concat(r.Results...)
}

// Executor runs plans against a fixed registry and starting point.
type Executor struct {
	Registry   *scenario.Registry
	StartYear  int
	Initial    experiment.InitialConditions
	Integrator string
	Solver     dynamo.Config
	Workers    int
	Log        zerolog.Logger
	// OnStep, when set, sees each completed step before the next one starts.
	// An error from it stops the plan.
	OnStep func(index int, res StepResult) error
}

// Run executes the steps in order and stops at the first failing step,
// returning the results gathered so far. Steps that completed before the
// failure have already been passed to OnStep.
func (e *Executor) Run(ctx context.Context, plan *Plan) ([]StepResult, error) {
	results := make([]StepResult, 0, len(plan.Steps))

	for i, step := range plan.Steps {
		e.Log.Info().
			Int("step", i+1).
			Int("of", len(plan.Steps)).
			Str("scenario", step.Scenario).
			Int("end_year", step.EndYear).
			Msg("running plan step")

		res, err := e.runStep(ctx, step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		results = append(results, res)

		if e.OnStep != nil {
			if err := e.OnStep(i, res); err != nil {
				return results, fmt.Errorf("step %d: %w", i+1, err)
			}
		}
	}
	return results, nil
}

func (e *Executor) runStep(ctx context.Context, step Step) (StepResult, error) {
	integ := step.Integrator
	if integ == "" {
		integ = e.Integrator
	}
	opts := []experiment.Option{experiment.WithLogger(e.Log), experiment.WithSolverConfig(e.Solver)}
	if integ != "" {
		opts = append(opts, experiment.WithIntegrator(integ))
	}
	if e.Workers > 0 {
		opts = append(opts, experiment.WithWorkers(e.Workers))
	}

	runner, err := experiment.NewRunner(e.Registry, e.StartYear, opts...)
	if err != nil {
		return StepResult{}, err
	}

	ic := e.Initial
	if step.Investment != nil {
		ic.Investment = *step.Investment
	}
	if step.Infrastructure != nil {
		ic.Infrastructure = *step.Infrastructure
	}

	out := StepResult{Step: step}
	if step.Scenario == AllScenarios {
		batch, err := runner.RunAll(ctx, ic, step.EndYear)
		if err != nil {
			return out, err
		}
		out.Results = batch.Results()
		out.Failures = batch.Failures()
		return out, nil
	}

	res, err := runner.RunOne(ctx, step.Scenario, ic, step.EndYear)
	if err != nil {
		return out, err
	}
	out.Results = []*projection.Result{res}
	return out, nil
}
