package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/renewsim/internal/analysis"
	"github.com/san-kum/renewsim/internal/export"
	"github.com/san-kum/renewsim/internal/projection"
	"github.com/san-kum/renewsim/internal/storage"
	"github.com/san-kum/renewsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	runs, err := e.store.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tYEARS\tINTEG\tSCENARIOS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%d-%d\t%s\t%s\n",
			run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.StartYear, run.EndYear,
			run.Integrator,
			strings.Join(run.Scenarios, ","),
		)
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	runID := args[0]
	meta, err := e.store.Load(runID)
	if err != nil {
		return err
	}
	rows, err := e.store.LoadRows(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	results := projection.Split(rows)
	names, colors := scenarioLabels(e)

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("years: %d-%d (%s)\n\n", meta.StartYear, meta.EndYear, meta.Integrator)

	opts := viz.DefaultChartOptions()
	opts.Caption = "renewable share (%)"
	opts.Target = e.cfg.Target.Share
	chart, err := viz.Plot(viz.ShareSeries(results, names, colors), opts)
	if err != nil {
		return err
	}
	fmt.Println(chart)

	if svgPath != "" {
		if err := writeSVG(svgPath, results, names, colors, meta.StartYear, e.cfg.Target.Share); err != nil {
			return err
		}
		fmt.Printf("\nwrote %s\n", svgPath)
	}

	capacity := make([]viz.Series, 0, len(results))
	for _, res := range results {
		vals, _ := res.Column("renewable_capacity")
		capacity = append(capacity, viz.Series{Label: names[res.Scenario], Color: colors[res.Scenario], Values: vals})
	}
	opts.Caption = "renewable capacity (MW)"
	opts.Target = 0
	chart, err = viz.Plot(capacity, opts)
	if err != nil {
		return err
	}
	fmt.Println()
	fmt.Println(chart)
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	rows, err := e.store.LoadRows(args[0])
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	names, colors := scenarioLabels(e)
	for _, res := range projection.Split(rows) {
		portrait, err := analysis.NewPhasePortrait(res, xAxis, yAxis)
		if err != nil {
			return fmt.Errorf("%s: %w (columns: %v)", res.Scenario, err, projection.ColumnNames())
		}
		fmt.Println(viz.ScenarioStyle(colors[res.Scenario]).Render(names[res.Scenario]))
		fmt.Println(portrait.ToASCII(60, 16))
	}
	return nil
}

func writeSVG(path string, results []*projection.Result, names, colors map[string]string, startYear int, target float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	opts := export.DefaultSVGOptions()
	opts.Title = "Renewable share (%)"
	opts.StartYear = startYear
	opts.Target = target
	if err := export.SeriesToSVG(f, viz.ShareSeries(results, names, colors), opts); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	runID := args[0]
	meta, err := e.store.Load(runID)
	if err != nil {
		return err
	}
	rows, err := e.store.LoadRows(runID)
	if err != nil {
		return err
	}
	return storage.WriteJSON(os.Stdout, meta, rows)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}

	rows, err := e.store.LoadRows(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, rows)
}
