package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/analysis"
	"github.com/san-kum/hyperlab/internal/automation"
	"github.com/san-kum/hyperlab/internal/config"
	"github.com/san-kum/hyperlab/internal/draw"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/integrators"
	"github.com/san-kum/hyperlab/internal/kuramoto"
	"github.com/san-kum/hyperlab/internal/store"
	"github.com/san-kum/hyperlab/internal/viz"
)

// kuramotoFlags override the Kuramoto section of the resolved config.
type kuramotoFlags struct {
	k2, k3     float64
	dt         float64
	timesteps  int
	integrator string
	adaptive   bool
	tolerance  float64
}

func addKuramotoFlags(cmd *cobra.Command) *kuramotoFlags {
	kf := &kuramotoFlags{}
	d := kuramoto.DefaultParams()
	f := cmd.Flags()
	f.Float64Var(&kf.k2, "k2", d.K2, "pairwise coupling")
	f.Float64Var(&kf.k3, "k3", d.K3, "triadic coupling")
	f.Float64Var(&kf.dt, "dt", d.Dt, "timestep")
	f.IntVarP(&kf.timesteps, "timesteps", "T", d.Timesteps, "recorded states, the initial one included")
	f.StringVar(&kf.integrator, "integrator", d.Integrator, "integrator: "+strings.Join(integrators.Names(), ", "))
	f.BoolVar(&kf.adaptive, "adaptive", false, "let the step size adapt; recorded times become uneven")
	f.Float64Var(&kf.tolerance, "tol", 1e-6, "local error tolerance for --adaptive")
	return kf
}

func (kf *kuramotoFlags) apply(cmd *cobra.Command, cfg *config.Config) error {
	f := cmd.Flags()
	p := &cfg.Kuramoto
	if f.Changed("k2") {
		p.K2 = kf.k2
	}
	if f.Changed("k3") {
		p.K3 = kf.k3
	}
	if f.Changed("dt") {
		p.Dt = kf.dt
	}
	if f.Changed("timesteps") {
		p.Timesteps = kf.timesteps
	}
	if f.Changed("integrator") {
		p.Integrator = kf.integrator
	}
	if f.Changed("adaptive") {
		p.Adaptive = kf.adaptive
	}
	if p.Adaptive && (f.Changed("tol") || p.Tolerance == 0) {
		p.Tolerance = kf.tolerance
	}
	if p.Seed == 0 {
		p.Seed = cfg.Seed
	}
	return cfg.Validate()
}

func drawCmd() *cobra.Command {
	var (
		layoutName string
		output     string
		ascii      bool
		cols, rows int
		maxOrder   int
		sizeBy     string
		labels     bool
	)
	cmd := &cobra.Command{
		Use:   "draw",
		Short: "lay out and draw a hypergraph as SVG or in the terminal",
	}
	sf := addSourceFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		h, cfg, err := sf.load(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("layout") {
			cfg.Layout.Name = layoutName
		}
		exp, done, err := newExperiment(cfg)
		if err != nil {
			return err
		}
		defer done()
		pos, err := exp.Layout(h)
		if err != nil {
			return err
		}

		if ascii {
			out, err := draw.ASCII(h, pos, cols, rows, maxOrder)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}

		style := cfg.Draw
		style.MaxOrder = maxOrder
		style.NodeLabels = style.NodeLabels || labels
		if sizeBy != "" {
			s, err := statByName(h, sizeBy, kindOf(sizeBy))
			if err != nil {
				return err
			}
			style.NodeSizeBy = make(map[string]float64, s.Len())
			for id, v := range s.AsMap() {
				if x, ok := toFloat(v); ok {
					style.NodeSizeBy[id] = x
				}
			}
		}

		w := os.Stdout
		if output != "" {
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		if err := draw.SVG(w, h, pos, style); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(os.Stderr, "wrote %s\n", output)
		}
		return nil
	}
	cmd.Flags().StringVar(&layoutName, "layout", config.DefaultLayout, "layout: random, circular, spring, barycenter_spring, weighted_barycenter_spring")
	cmd.Flags().StringVarP(&output, "output", "o", "", "SVG output file, stdout when empty")
	cmd.Flags().BoolVar(&ascii, "ascii", false, "draw in the terminal instead")
	cmd.Flags().IntVar(&cols, "cols", 60, "terminal columns for --ascii")
	cmd.Flags().IntVar(&rows, "rows", 24, "terminal rows for --ascii")
	cmd.Flags().IntVar(&maxOrder, "max-edge-order", -1, "hide edges above this order")
	cmd.Flags().StringVar(&sizeBy, "size-by", "", "scale nodes by a node stat, e.g. degree")
	cmd.Flags().BoolVar(&labels, "labels", false, "draw node labels")
	return cmd
}

func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case int:
		return float64(x), true
	case float64:
		return x, true
	}
	return 0, false
}

func simulateCmd() *cobra.Command {
	var (
		save      bool
		plot      bool
		orderSVG  string
		trials    int
		threshold float64
		lyapunov  bool
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "run the higher-order kuramoto model",
	}
	sf := addSourceFlags(cmd)
	kf := addKuramotoFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		h, cfg, err := sf.load(ctx, cmd)
		if err != nil {
			return err
		}
		if err := kf.apply(cmd, cfg); err != nil {
			return err
		}
		source := cfg.Source.Describe()

		if trials > 1 {
			return runEnsemble(ctx, h, cfg.Kuramoto, trials, threshold)
		}

		exp, done, err := newExperiment(cfg)
		if err != nil {
			return err
		}
		defer done()

		fmt.Printf("simulating %d oscillators on %s (k2=%g, k3=%g, dt=%g, T=%d)...\n",
			h.NumNodes(), source, cfg.Kuramoto.K2, cfg.Kuramoto.K3, cfg.Kuramoto.Dt, cfg.Kuramoto.Timesteps)
		start := time.Now()
		traj, err := exp.Simulate(ctx, h)
		elapsed := time.Since(start)
		if err != nil {
			telem.ObserveRun(source, nil, elapsed, err)
			return err
		}
		telem.ObserveRun(source, traj.Metrics, elapsed, nil)

		fmt.Printf("completed in %v\n", elapsed)
		if save {
			st := runStore()
			if err := st.Init(); err != nil {
				return err
			}
			runID, err := st.Save(store.NewMetadata(source, cfg.Kuramoto, h, traj), traj)
			if err != nil {
				return err
			}
			fmt.Printf("run id: %s\n", runID)
		}
		fmt.Printf("states: %d\n", len(traj.Theta))
		printMetrics(traj.Metrics)

		order := traj.OrderParameter()
		if plot && len(order) > 1 {
			fmt.Println()
			fmt.Println(plotOrder(order))
		}
		if lyapunov {
			if err := printLyapunov(h, cfg.Kuramoto); err != nil {
				return err
			}
		}
		if orderSVG != "" {
			return writeOrderSVG(orderSVG, traj, source)
		}
		return nil
	}
	cmd.Flags().BoolVar(&save, "save", true, "store the run")
	cmd.Flags().BoolVar(&plot, "plot", true, "chart r(t) in the terminal")
	cmd.Flags().StringVar(&orderSVG, "order-svg", "", "write r(t) to this SVG file")
	cmd.Flags().IntVar(&trials, "trials", 1, "run an ensemble of this many seeds instead")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.9, "final r counted as synchronised in an ensemble")
	cmd.Flags().BoolVar(&lyapunov, "lyapunov", false, "also estimate the largest lyapunov exponent")
	return cmd
}

func printLyapunov(h *hypergraph.Hypergraph, p kuramoto.Params) error {
	sys, theta0, err := kuramoto.New(h, p)
	if err != nil {
		return err
	}
	integ, err := integrators.New(p.Integrator)
	if err != nil {
		return err
	}
	lambda := analysis.LyapunovExponent(sys, integ, theta0, p.Dt, p.Timesteps-1, 1e-8)
	fmt.Printf("\nlargest lyapunov exponent: %.4f\n", lambda)
	return nil
}

func printMetrics(m map[string]float64) {
	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(m) {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, m[name])
	}
	w.Flush()
}

func plotOrder(order []float64) string {
	return asciigraph.Plot(downsample(order, 80),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.Caption("order parameter r(t)"))
}

// downsample keeps at most n evenly spaced samples.
func downsample(xs []float64, n int) []float64 {
	if len(xs) <= n {
		return xs
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = xs[i*(len(xs)-1)/(n-1)]
	}
	return out
}

func writeOrderSVG(path string, traj *kuramoto.Trajectory, title string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	style := draw.DefaultSeriesStyle()
	style.Title, style.XLabel, style.YLabel = title, "t", "r"
	style.YMin, style.YMax = 0, 1
	series := []draw.Series{{Name: "r", X: traj.Times, Y: traj.OrderParameter()}}
	if err := draw.SeriesSVG(f, series, style); err != nil {
		return err
	}
	return f.Close()
}

func runEnsemble(ctx context.Context, h *hypergraph.Hypergraph, p kuramoto.Params, trials int, threshold float64) error {
	start := time.Now()
	results, err := automation.RunEnsemble(ctx, h, p, trials, threshold)
	if err != nil {
		return err
	}
	fmt.Printf("%d trials in %v\n\n", trials, time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tMEAN R\tFINAL R\tSYNCED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.4f\t%.4f\t%v\n", r.Seed, r.MeanR, r.FinalR, r.Synced)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	synced, unsynced := automation.EnsembleStats(results)
	fmt.Printf("\nsynchronised: %d, not: %d (threshold %.2f)\n", synced, unsynced, threshold)
	return nil
}

func liveCmd() *cobra.Command {
	var gifPath string
	cmd := &cobra.Command{
		Use:   "live",
		Short: "watch the phases evolve in the terminal",
		Long:  "Without a source flag the preset picker opens.",
	}
	sf := addSourceFlags(cmd)
	kf := addKuramotoFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		if !f.Changed("dataset") && !f.Changed("file") && !f.Changed("generator") &&
			!f.Changed("preset") && !f.Changed("experiment") {
			return runPicker(cmd.Context())
		}
		_, cfg, err := sf.load(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		if err := kf.apply(cmd, cfg); err != nil {
			return err
		}
		m, err := liveModel(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		return viz.RunLive(m.WithGIFPath(gifPath))
	}
	cmd.Flags().StringVar(&gifPath, "gif", "kuramoto.gif", "where the G key saves recordings")
	return cmd
}

func liveModel(ctx context.Context, cfg *config.Config) (viz.Model, error) {
	exp, done, err := newExperiment(cfg)
	if err != nil {
		return viz.Model{}, err
	}
	defer done()
	h, err := exp.Build(ctx)
	if err != nil {
		return viz.Model{}, err
	}
	p := cfg.Kuramoto
	if p.Seed == 0 {
		p.Seed = cfg.Seed
	}
	model, theta0, err := kuramoto.New(h, p)
	if err != nil {
		return viz.Model{}, err
	}
	integ, err := integrators.New(p.Integrator)
	if err != nil {
		return viz.Model{}, err
	}
	logger.Debug("live view", zap.String("source", cfg.Source.Describe()), zap.Int("nodes", h.NumNodes()))
	return viz.NewModel(model, integ, theta0, p.Dt, cfg.Source.Describe()), nil
}

var regimeInfo = map[string]string{
	"incoherent": "weak pairwise coupling",
	"sync":       "strong pairwise coupling",
	"explosive":  "triadic coupling dominates",
}

var pickerFields = []string{"k2", "k3", "dt", "seed", "n"}

func presetValues(cfg *config.Config) map[string]float64 {
	return map[string]float64{
		"k2":   cfg.Kuramoto.K2,
		"k3":   cfg.Kuramoto.K3,
		"dt":   cfg.Kuramoto.Dt,
		"seed": float64(cfg.Seed),
		"n":    cfg.Source.Params["n"],
	}
}

func applyValues(cfg *config.Config, v map[string]float64) {
	cfg.Kuramoto.K2, cfg.Kuramoto.K3, cfg.Kuramoto.Dt = v["k2"], v["k3"], v["dt"]
	cfg.Seed = int64(v["seed"])
	if n := int(v["n"]); n > 0 {
		cfg.Source.Params["n"] = float64(n)
	}
}

func runPicker(ctx context.Context) error {
	var presets []viz.Preset
	for _, gen := range config.ListGenerators() {
		for _, regime := range config.ListPresets(gen) {
			cfg := config.GetPreset(gen, regime)
			presets = append(presets, viz.Preset{
				Name:        gen + "/" + regime,
				Description: regimeInfo[regime],
				Source:      cfg.Source.Describe(),
				Fields:      pickerFields,
				Values:      presetValues(cfg),
			})
		}
	}
	launch := func(name string, values map[string]float64) (viz.Model, error) {
		gen, regime, _ := strings.Cut(name, "/")
		cfg := config.GetPreset(gen, regime)
		applyValues(cfg, values)
		if err := cfg.Validate(); err != nil {
			return viz.Model{}, err
		}
		return liveModel(ctx, cfg)
	}
	return viz.RunPicker(presets, launch)
}

func sweepCmd() *cobra.Command {
	var (
		param      string
		lo, hi     float64
		steps      int
		hysteresis bool
		transient  float64
		grid       []string
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "order parameter across a range of coupling values",
		Long: `Runs the model once per coupling value and charts mean r. With --grid
every combination of the listed values is tried and the one with the
largest mean r is reported, e.g. --grid k2=0,1,2 --grid k3=0,2,4.`,
	}
	sf := addSourceFlags(cmd)
	kf := addKuramotoFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		h, cfg, err := sf.load(ctx, cmd)
		if err != nil {
			return err
		}
		if err := kf.apply(cmd, cfg); err != nil {
			return err
		}

		if len(grid) > 0 {
			names, ranges, err := parseGrid(grid)
			if err != nil {
				return err
			}
			res, err := analysis.NewGridSearch(names, ranges, cfg.Kuramoto).Search(ctx, h)
			if err != nil {
				return err
			}
			fmt.Printf("best of %d runs: mean r = %.4f at", res.Runs, res.Value)
			for _, k := range sortedKeys(res.Best) {
				fmt.Printf(" %s=%g", k, res.Best[k])
			}
			fmt.Println()
			return nil
		}

		sweep := analysis.CouplingSweep{
			Param: param, Min: lo, Max: hi, Steps: steps,
			Hysteresis: hysteresis, Transient: transient, Base: cfg.Kuramoto,
		}
		start := time.Now()
		points, err := sweep.Run(ctx, h)
		if err != nil {
			return err
		}
		logger.Info("sweep finished", zap.Int("points", len(points)), zap.Duration("elapsed", time.Since(start)))

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "%s\tBRANCH\tMEAN R\tFINAL R\n", strings.ToUpper(param))
		for _, p := range points {
			branch := "forward"
			if p.Backward {
				branch = "backward"
			}
			fmt.Fprintf(w, "%.4g\t%s\t%.4f\t%.4f\n", p.Value, branch, p.MeanR, p.FinalR)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println()
		fmt.Println(analysis.PlotSweep(points, 70, 12))
		return nil
	}
	cmd.Flags().StringVar(&param, "param", "k2", "coupling to sweep: k2 or k3")
	cmd.Flags().Float64Var(&lo, "min", 0, "first coupling value")
	cmd.Flags().Float64Var(&hi, "max", 5, "last coupling value")
	cmd.Flags().IntVar(&steps, "steps", 11, "number of values")
	cmd.Flags().BoolVar(&hysteresis, "hysteresis", false, "sweep back down from the last phases")
	cmd.Flags().Float64Var(&transient, "transient", 0.5, "fraction of each run left out of mean r")
	cmd.Flags().StringArrayVar(&grid, "grid", nil, "grid search values, NAME=v1,v2,...")
	return cmd
}

func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, s := range specs {
		name, list, ok := strings.Cut(s, "=")
		if !ok {
			return nil, nil, fmt.Errorf("grid %q: want NAME=v1,v2", s)
		}
		var values []float64
		for _, v := range strings.Split(list, ",") {
			x, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %s: %w", name, err)
			}
			values = append(values, x)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}
