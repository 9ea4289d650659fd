package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/liftsim/internal/config"
	"github.com/san-kum/liftsim/internal/physics"
	"github.com/san-kum/liftsim/internal/pipeline"
	"github.com/san-kum/liftsim/internal/storage"
	"github.com/san-kum/liftsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	themeName  string
	seed       int64
	verbose    bool

	// Input overrides
	altitude       float64
	altitudeErr    float64
	temperature    float64
	temperatureErr float64
	deltaP         float64
	deltaPErr      float64
	humidity       float64
	humidityErr    float64
	liftCoeff      float64
	wingArea       float64
	exact          bool

	// Monte Carlo
	trials  int
	workers int
	bins    int
	noSave  bool

	// Live view
	limit int
	batch int

	// show / plot
	withTrials bool
	outFile    string
	quantity   string
	scatterBy  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the liftsim command tree. Run without a subcommand it
// estimates lift once from the default readings.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "liftsim",
		Short:        "airfoil lift estimation with measurement uncertainty",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runSingle,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".liftsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&themeName, "theme", viz.ThemeInstrument.Name,
		"color theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		viz.SetTheme(themeName)
	}
	addInputFlags(rootCmd)
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: clock, or the preset/config seed)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "estimate lift from one sample of the readings",
		Args:  cobra.NoArgs,
		RunE:  runSingle,
	}
	addInputFlags(runCmd)
	runCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: clock, or the preset/config seed)")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print inputs and the drawn sample")

	mcCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run many independent trials and summarize the spread",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addInputFlags(mcCmd)
	mcCmd.Flags().Int64Var(&seed, "seed", 0, fmt.Sprintf("seed of the first trial (default %d, or the preset/config seed)", config.DefaultSeed))
	mcCmd.Flags().IntVar(&trials, "trials", config.DefaultTrials, "number of trials")
	mcCmd.Flags().IntVar(&workers, "workers", config.DefaultWorkers, "worker goroutines")
	mcCmd.Flags().IntVar(&bins, "bins", config.DefaultBins, "histogram bins")
	mcCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "stream Monte Carlo trials with live statistics",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addInputFlags(liveCmd)
	liveCmd.Flags().Int64Var(&seed, "seed", 0, fmt.Sprintf("seed of the first trial (default %d, or the preset/config seed)", config.DefaultSeed))
	liveCmd.Flags().IntVar(&bins, "bins", config.DefaultBins, "histogram bins")
	liveCmd.Flags().IntVar(&limit, "limit", 0, "stop after this many trials (0 runs until quit)")
	liveCmd.Flags().IntVar(&batch, "batch", 20, "trials per frame")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print a stored run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().BoolVar(&withTrials, "trials", false, "include every trial")
	showCmd.Flags().StringVarP(&outFile, "output", "o", "", "write to file instead of stdout")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the distribution of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&quantity, "quantity", pipeline.KeyLiftForce,
		"quantity to plot ("+strings.Join(pipeline.QuantityKeys, ", ")+")")
	plotCmd.Flags().StringVar(&scatterBy, "scatter", "",
		"also plot the quantity against an input ("+strings.Join(sampleFields, ", ")+")")
	plotCmd.Flags().IntVar(&bins, "bins", config.DefaultBins, "histogram bins")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "presets:")
			for _, name := range config.ListPresets() {
				in := config.GetPreset(name).Inputs
				fmt.Fprintf(out, "  %-14s alt %g m, %g °C, dp %g Pa, rh %g\n",
					name, in.Altitude.Nominal, in.Temperature.Nominal,
					in.DeltaPressure.Nominal, in.RelativeHumidity.Nominal)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "liftsim.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			cfg := config.DefaultConfig()
			if preset != "" {
				if cfg = config.GetPreset(preset); cfg == nil {
					return unknownPreset(preset)
				}
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from a preset")

	rootCmd.AddCommand(runCmd, mcCmd, liveCmd, listCmd, showCmd, plotCmd, presetsCmd, initCmd)
	return rootCmd
}

func addInputFlags(cmd *cobra.Command) {
	def := pipeline.DefaultInputs()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&altitude, "altitude", def.Altitude.Nominal, "altitude (m)")
	f.Float64Var(&altitudeErr, "altitude-err", def.Altitude.RelErr, "altitude relative error")
	f.Float64Var(&temperature, "temperature", def.Temperature.Nominal, "air temperature (°C)")
	f.Float64Var(&temperatureErr, "temperature-err", def.Temperature.RelErr, "temperature relative error")
	f.Float64Var(&deltaP, "dp", def.DeltaPressure.Nominal, "pitot differential pressure (Pa)")
	f.Float64Var(&deltaPErr, "dp-err", def.DeltaPressure.RelErr, "differential pressure relative error")
	f.Float64Var(&humidity, "rh", def.RelativeHumidity.Nominal, "relative humidity (0..1)")
	f.Float64Var(&humidityErr, "rh-err", def.RelativeHumidity.RelErr, "relative humidity relative error")
	f.Float64Var(&liftCoeff, "cl", def.LiftCoefficient, "lift coefficient")
	f.Float64Var(&wingArea, "area", def.WingArea, "wing area (m²)")
	f.BoolVar(&exact, "exact", false, "ignore all measurement errors")
}

func unknownPreset(name string) error {
	return fmt.Errorf("unknown preset: %s (available: %v)", name, config.ListPresets())
}

// resolveConfig layers defaults, preset, config file and explicitly set
// flags, in that order.
func resolveConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		if cfg = config.GetPreset(preset); cfg == nil {
			return nil, unknownPreset(preset)
		}
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	in := &cfg.Inputs
	if flags.Changed("altitude") {
		in.Altitude.Nominal = altitude
	}
	if flags.Changed("altitude-err") {
		in.Altitude.Error = altitudeErr
	}
	if flags.Changed("temperature") {
		in.Temperature.Nominal = temperature
	}
	if flags.Changed("temperature-err") {
		in.Temperature.Error = temperatureErr
	}
	if flags.Changed("dp") {
		in.DeltaPressure.Nominal = deltaP
	}
	if flags.Changed("dp-err") {
		in.DeltaPressure.Error = deltaPErr
	}
	if flags.Changed("rh") {
		in.RelativeHumidity.Nominal = humidity
	}
	if flags.Changed("rh-err") {
		in.RelativeHumidity.Error = humidityErr
	}
	if flags.Changed("cl") {
		in.LiftCoefficient = liftCoeff
	}
	if flags.Changed("area") {
		in.WingArea = wingArea
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("trials") {
		cfg.Trials = trials
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("bins") {
		cfg.Bins = bins
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func inputsFor(cfg *config.Config) pipeline.Inputs {
	in := cfg.PipelineInputs()
	if exact {
		in = in.Exact()
	}
	return in
}

func printWarnings(cmd *cobra.Command, in pipeline.Inputs, s viz.Styles) {
	if ws := in.Warnings(); len(ws) > 0 {
		fmt.Fprint(cmd.ErrOrStderr(), viz.RenderWarnings(ws, s))
	}
}

func runSingle(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	runSeed := singleRunSeed(cmd, cfg)

	in := inputsFor(cfg)
	s := viz.NewStyles(viz.CurrentTheme)
	printWarnings(cmd, in, s)

	res, err := pipeline.RunSeeded(in, runSeed)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if verbose {
		fmt.Fprintln(out, viz.RenderInputs(in, s))
		fmt.Fprintln(out, viz.RenderSample(res.Sample, s))
		fmt.Fprintf(out, "seed: %d\n\n", runSeed)
	}
	fmt.Fprint(out, viz.RenderResult(res, s))
	return nil
}

// singleRunSeed draws from the clock unless the seed is pinned by --seed,
// a preset or a config file.
func singleRunSeed(cmd *cobra.Command, cfg *config.Config) int64 {
	switch {
	case cmd.Flags().Changed("seed"):
		return seed
	case preset != "" || configFile != "":
		return cfg.Seed
	}
	return clockSeed()
}

var clockSeed = func() int64 { return time.Now().UnixNano() }

// progress prints a bar to w each time another tenth of the trials
// completes. Observers are called from several workers at once.
type progress struct {
	mu    sync.Mutex
	done  int
	total int
	w     io.Writer
	s     viz.Styles
}

func (p *progress) OnTrial(trial int, res *pipeline.Result, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	step := p.total / 10
	if step == 0 || p.done%step != 0 {
		return
	}
	fmt.Fprintf(p.w, "\r%s %d/%d", viz.ProgressBar(float64(p.done)/float64(p.total), 30, p.s), p.done, p.total)
	if p.done == p.total {
		fmt.Fprintln(p.w)
	}
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	in := inputsFor(cfg)
	s := viz.NewStyles(viz.CurrentTheme)
	out := cmd.OutOrStdout()
	printWarnings(cmd, in, s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	ens := pipeline.NewEnsemble(in, cfg.EnsembleConfig())
	ens.AddObserver(&progress{total: cfg.Trials, w: cmd.ErrOrStderr(), s: s})

	fmt.Fprintln(out, viz.RenderInputs(in, s))
	start := time.Now()
	res, err := ens.Run(ctx)
	if err != nil {
		if res != nil {
			printFailureCauses(cmd, res)
		}
		return err
	}
	elapsed := time.Since(start)

	fmt.Fprintln(out, viz.RenderSummary(res.Summary, cfg.Trials, len(res.Failures), s))
	printFailureCauses(cmd, res)
	fmt.Fprintln(out, viz.RenderHistogram(res.Values(pipeline.KeyLiftForce), cfg.Bins, "lift force (N)"))
	fmt.Fprintf(out, "\ncompleted in %v\n", elapsed.Round(time.Millisecond))

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(preset, in, res)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "run id: %s\n", runID)
	return nil
}

func printFailureCauses(cmd *cobra.Command, res *pipeline.EnsembleResult) {
	if len(res.Failures) == 0 {
		return
	}
	causes := res.FailureCauses(physics.ErrDomain, physics.ErrSingularity, physics.ErrNonFinite)
	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "%d trials failed:\n", len(res.Failures))
	for _, sentinel := range []error{physics.ErrDomain, physics.ErrSingularity, physics.ErrNonFinite} {
		if n := causes[sentinel]; n > 0 {
			fmt.Fprintf(w, "  %-28s %d\n", sentinel, n)
		}
	}
	fmt.Fprintf(w, "  first: %v\n", res.Failures[0])
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	in := inputsFor(cfg)

	model := viz.NewLiveModel(in, cfg.Seed, limit, batch, cfg.Bins)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err = p.Run()
	return err
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "no runs found")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tTRIALS\tFAILED\tLIFT MEAN\tLIFT SD")
	for _, run := range runs {
		name := run.Preset
		if name == "" {
			name = "-"
		}
		lift := run.Summary[pipeline.KeyLiftForce]
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.4E\t%.2E\n",
			run.ID,
			name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Trials,
			run.Failures,
			lift.Mean,
			lift.StdDev,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var results []*pipeline.Result
	if withTrials {
		if results, err = st.LoadTrials(args[0]); err != nil {
			return err
		}
	}

	if outFile != "" {
		if err := storage.ExportJSONFile(outFile, meta, results); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "exported to %s\n", outFile)
		return nil
	}
	return storage.ExportJSON(cmd.OutOrStdout(), meta, results)
}

var sampleFields = []string{"altitude", "temperature", "delta_pressure", "relative_humidity"}

func sampleField(smp pipeline.Sample, name string) (float64, error) {
	switch name {
	case "altitude":
		return smp.Altitude, nil
	case "temperature":
		return smp.Temperature, nil
	case "delta_pressure":
		return smp.DeltaPressure, nil
	case "relative_humidity":
		return smp.RelativeHumidity, nil
	}
	return 0, fmt.Errorf("unknown input %q (available: %v)", name, sampleFields)
}

func plotRun(cmd *cobra.Command, args []string) error {
	label, unit, ok := pipeline.Describe(quantity)
	if !ok {
		return fmt.Errorf("unknown quantity %q (available: %v)", quantity, pipeline.QuantityKeys)
	}

	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	results, err := st.LoadTrials(args[0])
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return errors.New("no data to plot")
	}

	values := make([]float64, len(results))
	for i, r := range results {
		values[i] = r.Value(quantity)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run: %s\n", meta.ID)
	fmt.Fprintf(out, "trials: %d (%d failed)\n\n", len(results), meta.Failures)
	fmt.Fprintln(out, viz.RenderHistogram(values, bins, fmt.Sprintf("%s (%s)", label, unit)))

	if scatterBy == "" {
		return nil
	}
	xs := make([]float64, len(results))
	for i, r := range results {
		if xs[i], err = sampleField(r.Sample, scatterBy); err != nil {
			return err
		}
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, viz.Scatter(xs, values, 60, 16, scatterBy, label))
	return nil
}
