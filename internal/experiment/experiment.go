package experiment

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/models"
	"github.com/san-kum/renewsim/internal/projection"
	"github.com/san-kum/renewsim/internal/scenario"
)

var (
	ErrInvalidHorizon      = errors.New("experiment: end year must be after the start year")
	ErrNoScenarioSucceeded = errors.New("experiment: no scenario succeeded")
)

// Runner projects scenarios from a fixed start year. It holds no mutable
// state and may be shared between goroutines.
type Runner struct {
	registry   *scenario.Registry
	startYear  int
	integrator string
	solver     dynamo.Config
	workers    int
	log        zerolog.Logger
}

type Option func(*Runner)

func WithLogger(l zerolog.Logger) Option {
	return func(r *Runner) { r.log = l }
}

func WithIntegrator(name string) Option {
	return func(r *Runner) { r.integrator = name }
}

// WithSolverConfig sets tolerances and substeps. The Adaptive flag is
// decided by the integrator.
func WithSolverConfig(cfg dynamo.Config) Option {
	return func(r *Runner) { r.solver = cfg }
}

// WithWorkers bounds how many scenarios RunAll integrates at once.
func WithWorkers(n int) Option {
	return func(r *Runner) { r.workers = n }
}

func NewRunner(registry *scenario.Registry, startYear int, opts ...Option) (*Runner, error) {
	r := &Runner{
		registry:   registry,
		startYear:  startYear,
		integrator: DefaultIntegrator,
		solver:     dynamo.DefaultConfig(),
		workers:    runtime.GOMAXPROCS(0),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}

	if registry == nil {
		return nil, errors.New("experiment: nil scenario registry")
	}
	if _, _, err := NewIntegrator(r.integrator); err != nil {
		return nil, err
	}
	if r.workers < 1 {
		r.workers = 1
	}
	return r, nil
}

func (r *Runner) StartYear() int { return r.startYear }

func (r *Runner) Registry() *scenario.Registry { return r.registry }

// RunOne projects one scenario from the start year through endYear inclusive.
func (r *Runner) RunOne(ctx context.Context, id string, ic InitialConditions, endYear int) (*projection.Result, error) {
	sc, err := r.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if err := r.checkHorizon(endYear); err != nil {
		return nil, err
	}
	return r.run(ctx, sc, ic, endYear)
}

func (r *Runner) checkHorizon(endYear int) error {
	if endYear <= r.startYear {
		return fmt.Errorf("%w: start %d, end %d", ErrInvalidHorizon, r.startYear, endYear)
	}
	return nil
}

func (r *Runner) run(ctx context.Context, sc scenario.Scenario, ic InitialConditions, endYear int) (*projection.Result, error) {
	model, err := models.NewEnergyTransition(sc)
	if err != nil {
		return nil, err
	}

	integ, adaptive, err := NewIntegrator(r.integrator)
	if err != nil {
		return nil, err
	}
	cfg := r.solver
	cfg.Adaptive = adaptive

	offsets := projection.Offsets(endYear - r.startYear + 1)

	start := time.Now()
	traj, err := dynamo.New(model, integ).Run(ctx, ic.State(), offsets, cfg)
	if err != nil {
		return nil, fmt.Errorf("integrate %s: %w", sc.ID, err)
	}

	totals := projection.TotalCapacity(ic.TotalCapacity, offsets)
	result, err := projection.Assemble(r.startYear, traj.States, totals, sc.ID)
	if err != nil {
		return nil, err
	}

	r.log.Debug().
		Str("scenario", sc.ID).
		Str("integrator", r.integrator).
		Int("years", len(offsets)).
		Int("steps", traj.StepsTaken).
		Int("rejected", traj.Rejected).
		Dur("elapsed", time.Since(start)).
		Msg("scenario projected")

	return result, nil
}
