package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/san-kum/renewsim/internal/config"
	"github.com/san-kum/renewsim/internal/experiment"
	"github.com/san-kum/renewsim/internal/history"
	"github.com/san-kum/renewsim/internal/logging"
	"github.com/san-kum/renewsim/internal/metrics"
	"github.com/san-kum/renewsim/internal/scenario"
	"github.com/san-kum/renewsim/internal/storage"
)

var (
	configFile string
	dataDir    string
	logLevel   string
	preset     string

	endYear    int
	integrator string
	save       bool
	asJSON     bool
	label      string

	substeps int

	svgPath string

	xAxis string
	yAxis string

	sweepParams []string
	sweepTop    int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "renewsim",
		Short:         "renewable energy policy scenario projections",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&dataDir, "data", "", "run archive directory (default from config)")
	pf.StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&preset, "preset", "", "horizon preset (see presets)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "project one scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	addProjectionFlags(runCmd)

	compareCmd := &cobra.Command{
		Use:   "compare",
		Short: "project every scenario and compare them",
		Args:  cobra.NoArgs,
		RunE:  compareScenarios,
	}
	addProjectionFlags(compareCmd)

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios and coefficients",
		Args:  cobra.NoArgs,
		RunE:  listScenarios,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "show the historical series the projections start from",
		Args:  cobra.NoArgs,
		RunE:  showHistory,
	}

	convergenceCmd := &cobra.Command{
		Use:   "convergence [scenario]",
		Short: "check that the final capacity is stable under step refinement",
		Args:  cobra.ExactArgs(1),
		RunE:  checkConvergence,
	}
	convergenceCmd.Flags().IntVar(&endYear, "end-year", 0, "last projected year")
	convergenceCmd.Flags().IntVar(&substeps, "substeps", 0, "base substeps per year for rk4")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&svgPath, "svg", "", "also write the share chart to an SVG file")

	batchCmd := &cobra.Command{
		Use:   "batch [plan.yaml]",
		Short: "run a scripted plan of projections",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlan,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "grid-search scenario coefficients for the highest final share",
		Args:  cobra.ExactArgs(1),
		RunE:  sweepScenario,
	}
	sweepCmd.Flags().StringArrayVar(&sweepParams, "param", nil, "coefficient range as name=lo:hi:n (repeatable)")
	sweepCmd.Flags().IntVar(&sweepTop, "top", 5, "number of best points to print")
	sweepCmd.Flags().IntVar(&endYear, "end-year", 0, "last projected year")
	sweepCmd.Flags().StringVar(&integrator, "integrator", "", "integrator: rk45, rk4 or euler")

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "state-space path of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}
	phaseCmd.Flags().StringVar(&xAxis, "x-axis", "renewable_capacity", "column for the x axis")
	phaseCmd.Flags().StringVar(&yAxis, "y-axis", "infrastructure", "column for the y axis")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a saved run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a saved run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive scenario browser",
		Args:  cobra.NoArgs,
		RunE:  runTUI,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list horizon presets",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p, _ := config.GetPreset(name)
				fmt.Printf("  %-8s end year %d", name, p.EndYear)
				if p.Integrator != "" {
					fmt.Printf(", %s", p.Integrator)
				}
				fmt.Println()
			}
		},
	}

	rootCmd.AddCommand(runCmd, compareCmd, scenariosCmd, historyCmd, convergenceCmd,
		sweepCmd, batchCmd, listCmd, plotCmd, phaseCmd, exportJSONCmd, exportCSVCmd, tuiCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addProjectionFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&endYear, "end-year", 0, "last projected year (default from config)")
	cmd.Flags().StringVar(&integrator, "integrator", "", "integrator: rk45, rk4 or euler")
	cmd.Flags().BoolVar(&save, "save", false, "archive the run under the data directory")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print rows as JSON")
	cmd.Flags().StringVar(&label, "label", "", "label for a saved run")
}

// env is everything a command needs, resolved from config file, preset and
// flags in that order of precedence.
type env struct {
	cfg     *config.Config
	log     zerolog.Logger
	dataset *history.Dataset
	ic      experiment.InitialConditions
	runner  *experiment.Runner
	store   *storage.Store
}

func setup(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	if preset != "" {
		p, ok := config.GetPreset(preset)
		if !ok {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		p.Apply(cfg)
	}
	if f := cmd.Flags().Lookup("end-year"); f != nil && f.Changed {
		cfg.EndYear = endYear
	}
	if f := cmd.Flags().Lookup("integrator"); f != nil && f.Changed {
		cfg.Integrator = integrator
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format, "renewsim")
	if err != nil {
		return nil, err
	}

	dataset, err := cfg.Dataset()
	if err != nil {
		return nil, err
	}

	reg, err := cfg.Registry(scenario.Default())
	if err != nil {
		return nil, err
	}

	runner, err := experiment.NewRunner(reg, dataset.StartYear(),
		experiment.WithIntegrator(cfg.Integrator),
		experiment.WithSolverConfig(cfg.SolverConfig()),
		experiment.WithWorkers(cfg.Workers),
		experiment.WithLogger(log),
	)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("config", configFile).
		Int("start_year", dataset.StartYear()).
		Int("end_year", cfg.EndYear).
		Str("integrator", cfg.Integrator).
		Msg("configured")

	return &env{
		cfg:     cfg,
		log:     log,
		dataset: dataset,
		ic:      cfg.InitialConditions(dataset),
		runner:  runner,
		store:   storage.New(cfg.DataDir),
	}, nil
}

func (e *env) target() metrics.Target {
	return metrics.Target{Share: e.cfg.Target.Share, MilestoneYear: e.cfg.Target.MilestoneYear}
}

func (e *env) checkHorizon() error {
	return e.cfg.CheckHorizon(e.dataset.StartYear(), e.cfg.EndYear)
}
