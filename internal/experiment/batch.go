package experiment

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/renewsim/internal/projection"
)

// Outcome is the result of one scenario within a batch: either Result or Err
// is set.
type Outcome struct {
	Scenario string
	Result   *projection.Result
	Err      error
}

func (o Outcome) OK() bool { return o.Err == nil }

// Batch holds one outcome per registered scenario, in registry order.
type Batch struct {
	Outcomes []Outcome
}

// Results returns the successful projections in registry order.
func (b *Batch) Results() []*projection.Result {
	out := make([]*projection.Result, 0, len(b.Outcomes))
	for _, o := range b.Outcomes {
		if o.OK() {
			out = append(out, o.Result)
		}
	}
	return out
}

func (b *Batch) Failures() []Outcome {
	var out []Outcome
	for _, o := range b.Outcomes {
		if !o.OK() {
			out = append(out, o)
		}
	}
	return out
}

func (b *Batch) Get(id string) (*projection.Result, bool) {
	for _, o := range b.Outcomes {
		if o.Scenario == id && o.OK() {
			return o.Result, true
		}
	}
	return nil, false
}

// Rows concatenates the rows of every successful scenario.
func (b *Batch) Rows() []projection.Row {
	return projection.Concat(b.Results()...)
}

// RunAll projects every registered scenario. Scenarios run concurrently; a
// scenario that fails is logged and recorded in its Outcome instead of
// aborting the batch. RunAll fails only when the horizon is invalid, the
// context ends, or every scenario failed.
func (r *Runner) RunAll(ctx context.Context, ic InitialConditions, endYear int) (*Batch, error) {
	if err := r.checkHorizon(endYear); err != nil {
		return nil, err
	}

	all := r.registry.All()
	batch := &Batch{Outcomes: make([]Outcome, len(all))}

	var g errgroup.Group
	g.SetLimit(r.workers)

	for i, sc := range all {
		g.Go(func() (err error) {
			out := Outcome{Scenario: sc.ID}
			defer func() {
				if p := recover(); p != nil {
					out.Result, out.Err = nil, fmt.Errorf("experiment: scenario %s panicked: %v", sc.ID, p)
				}
				if out.Err != nil {
					r.log.Warn().Err(out.Err).Str("scenario", sc.ID).Msg("scenario skipped")
				}
				batch.Outcomes[i] = out
			}()
			out.Result, out.Err = r.run(ctx, sc, ic, endYear)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return batch, err
	}

	if len(batch.Outcomes) == 0 {
		return batch, ErrNoScenarioSucceeded
	}
	if failures := batch.Failures(); len(failures) == len(batch.Outcomes) {
		errs := make([]error, len(failures))
		for i, f := range failures {
			errs[i] = f.Err
		}
		return batch, fmt.Errorf("%w: %w", ErrNoScenarioSucceeded, errors.Join(errs...))
	}

	return batch, nil
}
