package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/renewsim/internal/dynamo"
	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/tui"
	"github.com/san-kum/renewsim/internal/viz"
)

// convergenceTolerance is the largest relative change in final capacity
// accepted when the step is refined.
const convergenceTolerance = 0.005

func listScenarios(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tα\tβ\tγ\tδ\tPOLICY\tMAX MW")
	for _, sc := range e.runner.Registry().All() {
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.2f\t%.0f\n",
			sc.ID, sc.DisplayName(),
			sc.InvestmentGrowth, sc.TechImprovement, sc.InfrastructureCoeff,
			sc.Depreciation, sc.PolicyEffectiveness, sc.MaxCapacity)
	}
	return w.Flush()
}

func showHistory(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	records := e.dataset.Records()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "YEAR\tRENEWABLE MW\tTOTAL MW\tSHARE %\t")
	for _, r := range records {
		fmt.Fprintf(w, "%d\t%.0f\t%.0f\t%.2f\t\n", r.Year, r.RenewableCapacity, r.TotalCapacity, r.Share())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(records) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(e.dataset.Shares(),
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("historical renewable share (%)"),
		))
	}

	fmt.Printf("\nprojections start from %d: %s\n", e.dataset.StartYear(),
		viz.Sparkline(e.dataset.Shares(), 24))
	return nil
}

type convergenceCase struct {
	name         string
	integrator   string
	coarse, fine dynamo.Config
}

func checkConvergence(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := e.checkHorizon(); err != nil {
		return err
	}
	id := args[0]

	base := e.cfg.SolverConfig()
	n := base.Substeps
	if substeps > 0 {
		n = substeps
	}

	rk4Coarse, rk4Fine := base, base
	rk4Coarse.Substeps, rk4Fine.Substeps = n, 2*n
	rk45Coarse, rk45Fine := base, base
	rk45Fine.Tolerance = base.Tolerance / 10

	cases := []convergenceCase{
		{fmt.Sprintf("rk4 %d vs %d substeps", n, 2*n), "rk4", rk4Coarse, rk4Fine},
		{fmt.Sprintf("rk45 tol %.0e vs %.0e", base.Tolerance, rk45Fine.Tolerance), "rk45", rk45Coarse, rk45Fine},
	}

	ctx := context.Background()
	finals := make(map[string]float64)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CHECK\tCOARSE MW\tFINE MW\tREL DIFF\tOK")
	failed := false
	for _, c := range cases {
		a, err := finalCapacity(ctx, e, id, c.integrator, c.coarse)
		if err != nil {
			return err
		}
		b, err := finalCapacity(ctx, e, id, c.integrator, c.fine)
		if err != nil {
			return err
		}
		finals[c.integrator] = b

		rel := relDiff(a, b)
		ok := rel < convergenceTolerance
		failed = failed || !ok
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.2e\t%s\n", c.name, a, b, rel, yesNo(ok))
	}
	rel := relDiff(finals["rk4"], finals["rk45"])
	ok := rel < convergenceTolerance
	failed = failed || !ok
	fmt.Fprintf(w, "rk4 vs rk45\t%.3f\t%.3f\t%.2e\t%s\n", finals["rk4"], finals["rk45"], rel, yesNo(ok))
	if err := w.Flush(); err != nil {
		return err
	}

	if failed {
		return fmt.Errorf("%s: final capacity changed by more than %.1f%% under refinement", id, convergenceTolerance*100)
	}
	return nil
}

func finalCapacity(ctx context.Context, e *env, id, integ string, cfg dynamo.Config) (float64, error) {
	r, err := experiment.NewRunner(e.runner.Registry(), e.dataset.StartYear(),
		experiment.WithIntegrator(integ),
		experiment.WithSolverConfig(cfg),
		experiment.WithLogger(e.log),
	)
	if err != nil {
		return 0, err
	}
	res, err := r.RunOne(ctx, id, e.ic, e.cfg.EndYear)
	if err != nil {
		return 0, err
	}
	return float64(res.Last().RenewableCapacity), nil
}

func relDiff(a, b float64) float64 {
	if a == b {
		return 0
	}
	return math.Abs(a-b) / math.Max(math.Abs(a), math.Abs(b))
}

func runTUI(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	app := tui.NewApp(e.runner, e.ic, e.cfg.EndYear, e.cfg.MaxHorizon, e.target())
	return tui.Run(app)
}
