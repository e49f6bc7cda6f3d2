package automation

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/scenario"
)

const planYAML = `
name: outlook
description: near and long horizon
steps:
  - scenario: all
    end_year: 2030
    save_as: near
  - scenario: business_as_usual
    end_year: 2040
    integrator: rk4
    investment: 600
`

func executor() *Executor {
	return &Executor{
		Registry:  scenario.Default(),
		StartYear: 2023,
		Initial: experiment.InitialConditions{
			RenewableCapacity: 26200, Investment: 2.9, Infrastructure: 50, TotalCapacity: 95400,
		},
		Solver: dynamo.DefaultConfig(),
		Log:    zerolog.Nop(),
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(planYAML), 0644))

	plan, err := LoadPlan(path)
	require.NoError(t, err)

	assert.Equal(t, "outlook", plan.Name)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, AllScenarios, plan.Steps[0].Scenario)
	assert.Equal(t, "near", plan.Steps[0].SaveAs)
	assert.Nil(t, plan.Steps[0].Investment)
	require.NotNil(t, plan.Steps[1].Investment)
	assert.Equal(t, 600.0, *plan.Steps[1].Investment)
}

func TestParsePlanRejects(t *testing.T) {
	tests := map[string]string{
		"no steps":      "name: empty\n",
		"no scenario":   "steps:\n  - end_year: 2030\n",
		"no end year":   "steps:\n  - scenario: all\n",
		"unknown field": "steps:\n  - scenario: all\n    end_year: 2030\n    controller: pid\n",
		"bad yaml":      "steps: [",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParsePlan([]byte(body))
			assert.ErrorIs(t, err, ErrInvalidPlan)
		})
	}
}

func TestExecutorRun(t *testing.T) {
	plan, err := ParsePlan([]byte(planYAML))
	require.NoError(t, err)

	results, err := executor().Run(context.Background(), plan)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Len(t, results[0].Results, 4)
	assert.Empty(t, results[0].Failures)
	assert.Len(t, results[0].Rows(), 4*8)

	require.Len(t, results[1].Results, 1)
	baseline := results[1].Results[0]
	assert.Equal(t, scenario.BusinessAsUsual, baseline.Scenario)
	assert.Equal(t, 2040, baseline.Last().Year)
	assert.Equal(t, 600.0, float64(baseline.First().Investment))
	assert.Greater(t, float64(baseline.Last().RenewableCapacity), 26200.0)
}

func TestExecutorStopsAtFailingStep(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Scenario: scenario.BusinessAsUsual, EndYear: 2030},
		{Scenario: "carbon_tax", EndYear: 2030},
		{Scenario: scenario.CombinedPolicy, EndYear: 2030},
	}}

	results, err := executor().Run(context.Background(), plan)
	assert.True(t, errors.Is(err, scenario.ErrNotFound), "err = %v", err)
	assert.ErrorContains(t, err, "step 2")
	assert.Len(t, results, 1)
}

func TestExecutorHandsOffCompletedStepsBeforeFailure(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Scenario: scenario.BusinessAsUsual, EndYear: 2030, SaveAs: "first"},
		{Scenario: AllScenarios, EndYear: 2028, SaveAs: "second"},
		{Scenario: "carbon_tax", EndYear: 2030, SaveAs: "third"},
	}}

	var saved []string
	exec := executor()
	exec.OnStep = func(i int, res StepResult) error {
		assert.Equal(t, plan.Steps[i], res.Step)
		saved = append(saved, res.Step.SaveAs)
		return nil
	}

	results, err := exec.Run(context.Background(), plan)
	assert.ErrorIs(t, err, scenario.ErrNotFound)
	assert.ErrorContains(t, err, "step 3")
	assert.Len(t, results, 2)
	assert.Equal(t, []string{"first", "second"}, saved)
}

func TestExecutorOnStepErrorStops(t *testing.T) {
	plan := &Plan{Steps: []Step{
		{Scenario: scenario.BusinessAsUsual, EndYear: 2026},
		{Scenario: scenario.CombinedPolicy, EndYear: 2026},
	}}
	diskFull := errors.New("disk full")

	calls := 0
	exec := executor()
	exec.OnStep = func(int, StepResult) error {
		calls++
		return diskFull
	}

	results, err := exec.Run(context.Background(), plan)
	assert.ErrorIs(t, err, diskFull)
	assert.ErrorContains(t, err, "step 1")
	assert.Len(t, results, 1)
	assert.Equal(t, 1, calls)
}

func TestExecutorInvalidHorizon(t *testing.T) {
	plan := &Plan{Steps: []Step{{Scenario: AllScenarios, EndYear: 2020}}}
	_, err := executor().Run(context.Background(), plan)
	assert.ErrorIs(t, err, experiment.ErrInvalidHorizon)
}
