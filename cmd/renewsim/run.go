package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/san-kum/renewsim/internal/metrics"
	"github.com/san-kum/renewsim/internal/projection"
	"github.com/san-kum/renewsim/internal/storage"
	"github.com/san-kum/renewsim/internal/viz"
)

func runScenario(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := e.checkHorizon(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	id := args[0]
	start := time.Now()
	res, err := e.runner.RunOne(ctx, id, e.ic, e.cfg.EndYear)
	if err != nil {
		return err
	}
	e.log.Info().Str("scenario", id).Dur("elapsed", time.Since(start)).Msg("projection complete")

	summary := metrics.Summarize(res, e.target())
	meta := storage.RunMetadata{
		Label:      runLabel(id),
		StartYear:  e.dataset.StartYear(),
		EndYear:    e.cfg.EndYear,
		Integrator: e.cfg.Integrator,
		Scenarios:  []string{id},
		Summaries:  []metrics.Summary{summary},
	}

	if save {
		runID, err := saveRun(e, meta, res.Rows)
		if err != nil {
			return err
		}
		meta.ID = runID
	}

	if asJSON {
		return storage.WriteJSON(os.Stdout, &meta, res.Rows)
	}

	sc, _ := e.runner.Registry().Get(id)
	fmt.Printf("%s (%s)\n", viz.ScenarioStyle(sc.Color).Render(sc.DisplayName()), id)
	fmt.Printf("%d-%d, %s\n\n", e.dataset.StartYear(), e.cfg.EndYear, e.cfg.Integrator)

	if err := printRows(res.Rows); err != nil {
		return err
	}
	fmt.Println()
	printSummaries([]metrics.Summary{summary}, map[string]string{id: sc.DisplayName()}, e.target())

	if meta.ID != "" {
		fmt.Printf("\nrun id: %s\n", meta.ID)
	}
	return nil
}

func compareScenarios(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	if err := e.checkHorizon(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	start := time.Now()
	batch, err := e.runner.RunAll(ctx, e.ic, e.cfg.EndYear)
	if err != nil {
		return err
	}
	e.log.Info().
		Int("succeeded", len(batch.Results())).
		Int("failed", len(batch.Failures())).
		Dur("elapsed", time.Since(start)).
		Msg("comparison complete")

	results := batch.Results()
	summaries := metrics.Compare(results, e.target())

	meta := storage.RunMetadata{
		Label:      runLabel("compare"),
		StartYear:  e.dataset.StartYear(),
		EndYear:    e.cfg.EndYear,
		Integrator: e.cfg.Integrator,
		Summaries:  summaries,
	}
	for _, res := range results {
		meta.Scenarios = append(meta.Scenarios, res.Scenario)
	}
	if failures := batch.Failures(); len(failures) > 0 {
		meta.Failed = make(map[string]string, len(failures))
		for _, f := range failures {
			meta.Failed[f.Scenario] = f.Err.Error()
		}
	}

	rows := batch.Rows()
	if save {
		runID, err := saveRun(e, meta, rows)
		if err != nil {
			return err
		}
		meta.ID = runID
	}

	if asJSON {
		return storage.WriteJSON(os.Stdout, &meta, rows)
	}

	names, colors := scenarioLabels(e)
	opts := viz.DefaultChartOptions()
	opts.Caption = "renewable share (%)"
	opts.Target = e.cfg.Target.Share
	chart, err := viz.Plot(viz.ShareSeries(results, names, colors), opts)
	if err != nil {
		return err
	}
	fmt.Println(chart)
	fmt.Println()

	printSummaries(summaries, names, e.target())
	for _, f := range batch.Failures() {
		fmt.Printf("%s %s: %v\n", viz.Bad.Render("skipped"), f.Scenario, f.Err)
	}

	if meta.ID != "" {
		fmt.Printf("\nrun id: %s\n", meta.ID)
	}
	return nil
}

func runLabel(fallback string) string {
	if label != "" {
		return label
	}
	return fallback
}

func saveRun(e *env, meta storage.RunMetadata, rows []projection.Row) (string, error) {
	if err := e.store.Init(); err != nil {
		return "", err
	}
	runID, err := e.store.Save(meta, rows)
	if err != nil {
		return "", fmt.Errorf("save run: %w", err)
	}
	e.log.Info().Str("run_id", runID).Str("dir", e.cfg.DataDir).Msg("run saved")
	return runID, nil
}

func scenarioLabels(e *env) (names, colors map[string]string) {
	names = make(map[string]string)
	colors = make(map[string]string)
	for _, sc := range e.runner.Registry().All() {
		names[sc.ID] = sc.DisplayName()
		colors[sc.ID] = sc.Color
	}
	return names, colors
}

func printRows(rows []projection.Row) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "YEAR\tCAPACITY MW\tINVESTMENT\tINFRA\tTOTAL MW\tSHARE %\t")
	for _, r := range rows {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			r.Year,
			cell(r.RenewableCapacity, 1),
			cell(r.Investment, 3),
			cell(r.Infrastructure, 3),
			cell(r.TotalCapacity, 1),
			cell(r.RenewableShare, 2),
		)
	}
	return w.Flush()
}

func printSummaries(summaries []metrics.Summary, names map[string]string, target metrics.Target) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "SCENARIO\tSHARE %d\tFINAL\tPEAK\tCAPACITY\tCAGR\t%d\tFINAL\tFIRST YEAR\n",
		target.MilestoneYear, target.MilestoneYear)
	for _, s := range summaries {
		name := s.Scenario
		if n, ok := names[s.Scenario]; ok {
			name = n
		}
		first := "-"
		if s.FirstYearReaching.Valid() {
			first = fmt.Sprintf("%.0f", float64(s.FirstYearReaching))
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			name,
			pct(s.ShareAtMilestone),
			pct(s.FinalShare),
			pct(s.PeakShare),
			cell(s.FinalCapacity, 0),
			pct(s.CapacityCAGR),
			yesNo(s.TargetReachedMilestone),
			yesNo(s.TargetReachedFinal),
			first,
		)
	}
	w.Flush()
	fmt.Printf("\ntarget: %.0f%% renewable share\n", target.Share)
}

func cell(f projection.Float, prec int) string {
	if !f.Valid() {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", prec, float64(f))
}

func pct(f projection.Float) string {
	if !f.Valid() {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", float64(f))
}

// yesNo stays uncoloured so tabwriter can align the column.
func yesNo(ok bool) string {
	if ok {
		return "yes"
	}
	return "no"
}
