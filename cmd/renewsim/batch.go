package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/renewsim/internal/automation"
	"github.com/san-kum/renewsim/internal/metrics"
	"github.com/san-kum/renewsim/internal/storage"
)

func runPlan(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	plan, err := automation.LoadPlan(args[0])
	if err != nil {
		return err
	}
	for i, step := range plan.Steps {
		if err := e.cfg.CheckHorizon(e.dataset.StartYear(), step.EndYear); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exec := &automation.Executor{
		Registry:   e.runner.Registry(),
		StartYear:  e.dataset.StartYear(),
		Initial:    e.ic,
		Integrator: e.cfg.Integrator,
		Solver:     e.cfg.SolverConfig(),
		Workers:    e.cfg.Workers,
		Log:        e.log,
		OnStep: func(i int, res automation.StepResult) error {
			return reportStep(e, i, res)
		},
	}
	_, err = exec.Run(ctx, plan)
	return err
}

// reportStep prints a completed plan step and archives it when the step
// has save_as, so earlier steps survive a later failure.
func reportStep(e *env, i int, res automation.StepResult) error {
	step := res.Step
	fmt.Printf("step %d: %s to %d\n", i+1, step.Scenario, step.EndYear)

	names, _ := scenarioLabels(e)
	summaries := metrics.Compare(res.Results, e.target())
	printSummaries(summaries, names, e.target())
	for _, f := range res.Failures {
		fmt.Printf("skipped %s: %v\n", f.Scenario, f.Err)
	}

	if step.SaveAs == "" {
		fmt.Println()
		return nil
	}
	meta := storage.RunMetadata{
		Label:      step.SaveAs,
		StartYear:  e.dataset.StartYear(),
		EndYear:    step.EndYear,
		Integrator: step.Integrator,
		Summaries:  summaries,
	}
	if meta.Integrator == "" {
		meta.Integrator = e.cfg.Integrator
	}
	for _, r := range res.Results {
		meta.Scenarios = append(meta.Scenarios, r.Scenario)
	}
	runID, err := saveRun(e, meta, res.Rows())
	if err != nil {
		return err
	}
	fmt.Printf("run id: %s\n\n", runID)
	return nil
}
