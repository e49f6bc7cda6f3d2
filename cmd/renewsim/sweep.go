package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/optim"
)

func sweepScenario(cmd *cobra.Command, args []string) error {
	if sweepTop < 1 {
		return fmt.Errorf("--top must be at least 1, got %d", sweepTop)
	}

	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := e.checkHorizon(); err != nil {
		return err
	}
	if len(sweepParams) == 0 {
		return fmt.Errorf("at least one --param is required (coefficients: %v)", optim.Coefficients())
	}

	names := make([]string, 0, len(sweepParams))
	ranges := make([][]float64, 0, len(sweepParams))
	for _, raw := range sweepParams {
		name, values, err := parseRange(raw)
		if err != nil {
			return err
		}
		if !slices.Contains(optim.Coefficients(), name) {
			return fmt.Errorf("unknown coefficient %q (available: %v)", name, optim.Coefficients())
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	grid, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}

	id := args[0]
	eval, err := optim.ScenarioEvaluator(e.runner.Registry(), id, e.dataset.StartYear(), e.ic, e.cfg.EndYear,
		optim.FinalShare,
		experiment.WithIntegrator(e.cfg.Integrator),
		experiment.WithSolverConfig(e.cfg.SolverConfig()),
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	e.log.Info().Str("scenario", id).Int("points", grid.Size()).Msg("sweep started")
	points, err := grid.Search(ctx, eval)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\tFINAL SHARE")
	for _, p := range best(points, sweepTop) {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", p.Params[name])
		}
		if p.Err != nil {
			fmt.Fprintf(w, "error: %v\n", p.Err)
			continue
		}
		fmt.Fprintf(w, "%.2f%%\n", p.Value)
	}
	return w.Flush()
}

// best returns the first n points, or all of them when there are fewer.
func best(points []optim.Point, n int) []optim.Point {
	return points[:max(0, min(n, len(points)))]
}

// parseRange reads name=lo:hi:n, or name=v for a single value.
func parseRange(raw string) (string, []float64, error) {
	name, rng, ok := strings.Cut(raw, "=")
	if !ok || name == "" {
		return "", nil, fmt.Errorf("bad --param %q: want name=lo:hi:n", raw)
	}

	parts := strings.Split(rng, ":")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return "", nil, fmt.Errorf("bad --param %q: %w", raw, err)
		}
		return name, []float64{v}, nil
	case 3:
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		n, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil || n < 1 {
			return "", nil, fmt.Errorf("bad --param %q: want name=lo:hi:n with n >= 1", raw)
		}
		return name, optim.Linspace(lo, hi, n), nil
	}
	return "", nil, fmt.Errorf("bad --param %q: want name=lo:hi:n", raw)
}
