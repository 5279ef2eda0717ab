package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/springs/internal/analysis"
	"github.com/san-kum/springs/internal/automation"
	"github.com/san-kum/springs/internal/backend"
	"github.com/san-kum/springs/internal/config"
	"github.com/san-kum/springs/internal/experiment"
	"github.com/san-kum/springs/internal/optim"
	"github.com/san-kum/springs/internal/sim"
	"github.com/san-kum/springs/internal/storage"
	"github.com/san-kum/springs/internal/viz"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string

	dt         float64
	duration   float64
	seed       uint64
	engine     string
	integrator string
	controller string
	amplitude  float64
	runs       int
	parallel   int

	tuneAmplitudes []float64
	tuneSpeeds     []float64
	tuneMetric     string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	plotSignals   int
	drawWidth     int
	benchDuration float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "springs",
		Short:         "soft-body creature simulation lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setupLogging(logLevel)
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".springs", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [creature]",
		Short: "run a simulation and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addConfigFlags(runCmd)
	runCmd.Flags().IntVar(&runs, "runs", 1, "number of runs with consecutive seeds")
	runCmd.Flags().IntVar(&parallel, "parallel", 0, "concurrent runs (0 = unlimited)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the center trajectory of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotSignals, "signals", 0, "also plot the first n control signals")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the trace of a run to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "gait speed and stride frequency",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [creature]",
		Short: "benchmark the physics engines",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchEngines,
	}
	benchCmd.Flags().Float64Var(&benchDuration, "time", 1.0, "simulated seconds per run")

	presetsCmd := &cobra.Command{
		Use:   "presets [creature]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	describeCmd := &cobra.Command{
		Use:   "describe [creature]",
		Short: "build a creature and show its structure",
		Args:  cobra.MaximumNArgs(1),
		RunE:  describeCreature,
	}
	addConfigFlags(describeCmd)
	describeCmd.Flags().IntVar(&drawWidth, "width", 60, "drawing width in cells")

	tuneCmd := &cobra.Command{
		Use:   "tune [creature]",
		Short: "grid search controller parameters",
		Args:  cobra.MaximumNArgs(1),
		RunE:  tuneController,
	}
	addConfigFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&tuneAmplitudes, "amplitudes", []float64{0.05, 0.1, 0.2}, "amplitudes to try")
	tuneCmd.Flags().Float64SliceVar(&tuneSpeeds, "speeds", []float64{0.5, 1, 2}, "speed scales to try")
	tuneCmd.Flags().StringVar(&tuneMetric, "metric", "displacement", "metric to maximise")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario and store every step",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [creature]",
		Short: "sweep one controller parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "amplitude", "controller parameter")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.5, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 6, "number of values")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, analyzeCmd, benchCmd, presetsCmd,
		describeCmd, tuneCmd, scenarioCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, viz.ErrorStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("log level %q: %w", level, err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
	return nil
}

func addConfigFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 = from clock)")
	cmd.Flags().StringVar(&engine, "engine", backend.Impulse, "physics engine")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator for the integrated engine")
	cmd.Flags().StringVar(&controller, "controller", "sine", "controller")
	cmd.Flags().Float64Var(&amplitude, "amplitude", config.DefaultAmplitude, "controller amplitude")
}

// loadConfig resolves defaults, then the preset, then the config file, then
// the flags the user set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	creature := ""
	if len(args) > 0 {
		creature = args[0]
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		group := creature
		if group == "" {
			group = cfg.Creature
		}
		cfg = config.GetPreset(group, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(group))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if creature != "" {
		cfg.Creature = creature
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Duration = duration
	}
	if flags.Changed("engine") {
		cfg.Engine = engine
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("controller") {
		cfg.Controller = controller
	}
	if flags.Changed("amplitude") {
		cfg.ControllerParams.Amplitude = amplitude
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = uint64(time.Now().UnixNano())
	}
	return cfg, nil
}

func metadataFor(cfg *config.Config) storage.RunMetadata {
	meta := storage.RunMetadata{
		Creature:   cfg.Creature,
		Preset:     preset,
		Engine:     cfg.Engine,
		Controller: cfg.Controller,
		Seed:       cfg.Seed,
		Dt:         cfg.Dt,
		Duration:   cfg.Duration,
	}
	if cfg.Engine == backend.Integrated {
		meta.Integrator = cfg.Integrator
	}
	return meta
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	registry := experiment.NewRegistry()
	fmt.Printf("running %s simulation...\n", cfg.Creature)
	start := time.Now()

	var results []*sim.Result
	if runs > 1 {
		results, err = experiment.RunEnsemble(ctx, registry, cfg, runs, parallel)
		if err != nil {
			return err
		}
	} else {
		exp := experiment.New(cfg, registry)
		if err := exp.Setup(); err != nil {
			return err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return err
		}
		results = []*sim.Result{result}
	}
	elapsed := time.Since(start)
	fmt.Printf("completed in %v\n\n", elapsed)

	for i, result := range results {
		meta := metadataFor(cfg)
		meta.Seed = cfg.Seed + uint64(i)
		runID, err := st.Save(meta, result)
		if err != nil {
			return err
		}
		slog.Info("run saved", "id", runID, "steps", result.StepsTaken)

		rows := append([]viz.Row{
			viz.Rowf("seed", "%d", meta.Seed),
			viz.Rowf("steps", "%d", result.StepsTaken),
			viz.Rowf("samples", "%d", len(result.Samples)),
		}, viz.MetricRows(result.Metrics)...)
		fmt.Println(viz.Panel(runID, rows))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATURE\tTIME\tDURATION\tDT\tENGINE\tCTRL\tDISPLACEMENT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2fs\t%.4fs\t%s\t%s\t%.3f\n",
			run.ID,
			run.Creature,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Engine,
			run.Controller,
			run.Metrics["displacement"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("creature: %s\n", meta.Creature)
	fmt.Printf("samples: %d\n\n", len(result.Samples))

	xs, ys := result.Centers()
	for _, series := range []struct {
		data    []float64
		caption string
	}{
		{xs, "center x"},
		{ys, "center y"},
	} {
		fmt.Println(asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		))
		fmt.Println()
	}

	for i := 0; i < plotSignals; i++ {
		data := make([]float64, len(result.Samples))
		for j, smp := range result.Samples {
			if i < len(smp.Control) {
				data[j] = smp.Control[i]
			}
		}
		fmt.Println(asciigraph.Plot(data,
			asciigraph.Height(6),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("u%d", i)),
		))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSON(os.Stdout, *meta, result)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	_, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	if len(result.Samples) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteTraceCSV(os.Stdout, result)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	gait, err := analysis.AnalyzeGait(result)
	if err != nil {
		return err
	}

	_, ys := result.Centers()
	ps := analysis.PowerSpectrum(ys)
	if len(ps) > 4 {
		fmt.Println(asciigraph.Plot(ps[1:len(ps)/2],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (center y)"),
		))
		fmt.Println()
	}

	rows := []viz.Row{
		viz.Rowf("creature", "%s", meta.Creature),
		viz.Rowf("duration", "%.2fs", gait.Duration),
		viz.Rowf("displacement", "%.3f", gait.Displacement),
		viz.Rowf("speed", "%.3f /s", gait.Speed),
		viz.Rowf("stride frequency", "%.3f hz", gait.Frequency),
	}
	if gait.Frequency > 0 {
		rows = append(rows, viz.Rowf("stride period", "%.3f s", 1/gait.Frequency))
	}
	fmt.Println(viz.Panel("gait: "+meta.ID, rows))
	return nil
}

func benchEngines(cmd *cobra.Command, args []string) error {
	creature := "starfish"
	if len(args) > 0 {
		creature = args[0]
	}
	registry := experiment.NewRegistry()

	type benchCase struct {
		engine, integrator string
		dt                 float64
	}
	cases := []benchCase{
		{backend.Impulse, "", 0.005},
		{backend.Impulse, "", 0.001},
		{backend.Integrated, "euler", 0.0005},
		{backend.Integrated, "rk4", 0.001},
		{backend.Integrated, "verlet", 0.001},
	}

	fmt.Printf("benchmarking %s (%.1fs simulated)\n\n", creature, benchDuration)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ENGINE\tINTEG\tDT\tSTEPS\tTIME\tSTEPS/SEC\tSTATUS")

	for _, c := range cases {
		cfg := config.DefaultConfig()
		cfg.Creature = creature
		cfg.Engine = c.engine
		if c.integrator != "" {
			cfg.Integrator = c.integrator
		}
		cfg.Dt = c.dt
		cfg.Duration = benchDuration
		cfg.Seed = 42

		exp := experiment.New(cfg, registry)
		if err := exp.Setup(); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(cmd.Context())
		elapsed := time.Since(start)

		status := "ok"
		steps := 0
		if result != nil {
			steps = result.StepsTaken
		}
		if err != nil {
			status = err.Error()
		}
		fmt.Fprintf(w, "%s\t%s\t%.4fs\t%d\t%v\t%.0f\t%s\n",
			c.engine, c.integrator, c.dt, steps, elapsed.Round(time.Millisecond),
			float64(steps)/elapsed.Seconds(), status)
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	creatures := config.ListCreatures()
	if len(args) > 0 {
		creatures = args
	}
	for _, c := range creatures {
		presets := config.ListPresets(c)
		if len(presets) == 0 {
			fmt.Printf("no presets for creature: %s\n", c)
			continue
		}
		fmt.Printf("presets for %s:\n", c)
		for _, p := range presets {
			fmt.Printf("  %s\n", p)
		}
	}
	return nil
}

func describeCreature(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	world, err := registry.Build(cfg)
	if err != nil {
		return err
	}

	space := world.Space
	muscles := 0
	for _, l := range space.Links() {
		if l.Actuated() {
			muscles++
		}
	}
	actuators := 0
	if a := world.Body.Actuator(); a != nil {
		actuators = a.Len()
	}
	cx, cy := world.Body.CenterXY()

	rows := []viz.Row{
		viz.Rowf("engine", "%s", cfg.Engine),
		viz.Rowf("nodes", "%d", len(world.Body.Nodes())),
		viz.Rowf("links", "%d", len(space.Links())),
		viz.Rowf("muscles", "%d", muscles),
		viz.Rowf("actuator inputs", "%d", actuators),
		viz.Rowf("sensors", "%d", len(space.SensorValues())),
		viz.Rowf("center", "(%.1f, %.1f)", cx, cy),
		viz.Rowf("controller", "%s", cfg.Controller),
	}
	if s := world.Body.Starfish; s != nil {
		rows = append(rows,
			viz.Rowf("arms", "%d", len(s.Tentacles())),
			viz.Rowf("section", "%s", cfg.Body.Section),
		)
	}
	if fs := world.Body.Squares; fs != nil {
		r, c := fs.Shape()
		rows = append(rows, viz.Rowf("grid", "%dx%d", r, c))
	}

	fmt.Println(viz.Panel(strings.ToUpper(cfg.Creature), rows))
	fmt.Print(viz.DrawBody(space.Links(), drawWidth, drawWidth/3).String())
	return nil
}

func tuneController(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	g, err := optim.NewGridSearch(
		[]string{"amplitude", "speed_scale"},
		[][]float64{tuneAmplitudes, tuneSpeeds},
	)
	if err != nil {
		return err
	}

	fmt.Printf("tuning %s/%s on %s (%d points)...\n\n", cfg.Creature, cfg.Controller, tuneMetric,
		len(tuneAmplitudes)*len(tuneSpeeds))
	best, trials, err := g.Search(cmd.Context(), experiment.NewRegistry(), cfg, tuneMetric)
	if err != nil {
		return err
	}

	values := make([]float64, len(trials))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "AMPLITUDE\tSPEED\t%s\n", strings.ToUpper(tuneMetric))
	for i, tr := range trials {
		values[i] = tr.Value
		fmt.Fprintf(w, "%.3f\t%.3f\t%.4f\n", tr.Params["amplitude"], tr.Params["speed_scale"], tr.Value)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(viz.Sparkline(values, len(values)))
	fmt.Println(viz.Panel("best", []viz.Row{
		viz.Rowf("amplitude", "%.3f", best.Params["amplitude"]),
		viz.Rowf("speed_scale", "%.3f", best.Params["speed_scale"]),
		viz.Rowf(tuneMetric, "%.4f", best.Value),
	}))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Printf("scenario %s: %s\n\n", scenario.Name, scenario.Description)
	results, err := automation.RunScenario(cmd.Context(), scenario, experiment.NewRegistry())
	for _, r := range results {
		meta := metadataFor(r.Config)
		meta.Preset = ""
		runID, saveErr := st.Save(meta, r.Result)
		if saveErr != nil {
			return saveErr
		}
		fmt.Println(viz.Panel(r.Name+": "+runID, viz.MetricRows(r.Result.Metrics)))
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tDISPLACEMENT\tPATH\tSTABLE\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%v\n", r.ParamValue, r.Metrics["displacement"], r.Metrics["path_length"], r.Stable)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	stable, unstable := automation.SweepStats(results)
	fmt.Printf("\nstable: %d, unstable: %d\n", stable, unstable)
	return nil
}
