package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/san-kum/hyperlab/internal/config"
	"github.com/san-kum/hyperlab/internal/experiment"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/readwrite"
)

var errNoOutput = errors.New("refusing to write a hypergraph to a terminal, use -o or redirect stdout")

// sourceFlags pick the hypergraph a command works on: a dataset, an xgi
// JSON file, a generator, a preset, or an experiment file.
type sourceFlags struct {
	dataset    string
	file       string
	generator  string
	params     map[string]string
	maxOrder   int
	seed       int64
	cleanup    bool
	preset     string
	experiment string
}

func addSourceFlags(cmd *cobra.Command) *sourceFlags {
	sf := &sourceFlags{}
	f := cmd.Flags()
	f.StringVar(&sf.dataset, "dataset", "", "dataset name in the xgi-data index")
	f.StringVar(&sf.file, "file", "", "hypergraph JSON file")
	f.StringVar(&sf.generator, "generator", "", "generator name (see `hyperlab presets`)")
	f.StringToStringVar(&sf.params, "param", nil, "generator parameter, e.g. --param n=50 --param p1=0.1")
	f.IntVar(&sf.maxOrder, "max-order", -1, "drop edges of higher order when loading")
	f.Int64Var(&sf.seed, "seed", 0, "random seed")
	f.BoolVar(&sf.cleanup, "cleanup", false, "remove multiedges, singletons and isolates and relabel")
	f.StringVar(&sf.preset, "preset", "", "start from a preset, e.g. chung_lu/sync")
	f.StringVar(&sf.experiment, "experiment", "", "experiment YAML file")
	cmd.MarkFlagsMutuallyExclusive("dataset", "file", "generator")
	cmd.MarkFlagsMutuallyExclusive("preset", "experiment")
	return sf
}

// resolve layers preset or experiment file, then explicit flags.
func (sf *sourceFlags) resolve(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	switch {
	case sf.preset != "":
		gen, regime, _ := strings.Cut(sf.preset, "/")
		if cfg = config.GetPreset(gen, regime); cfg == nil {
			return nil, fmt.Errorf("unknown preset %q (generators: %v)", sf.preset, config.ListGenerators())
		}
	case sf.experiment != "":
		var err error
		if cfg, err = config.Load(sf.experiment); err != nil {
			return nil, fmt.Errorf("loading experiment: %w", err)
		}
	}

	f := cmd.Flags()
	if sf.dataset != "" || sf.file != "" || sf.generator != "" {
		cfg.Source = config.Source{Dataset: sf.dataset, File: sf.file, Generator: sf.generator, MaxOrder: sf.maxOrder}
	} else if f.Changed("max-order") {
		cfg.Source.MaxOrder = sf.maxOrder
	}
	if len(sf.params) > 0 {
		params, err := parseParams(sf.params)
		if err != nil {
			return nil, err
		}
		if cfg.Source.Params == nil || f.Changed("generator") {
			cfg.Source.Params = params
		} else {
			for k, v := range params {
				cfg.Source.Params[k] = v
			}
		}
	}
	if f.Changed("seed") {
		cfg.Seed = sf.seed
	}
	if f.Changed("cleanup") {
		cfg.Cleanup.Enabled = sf.cleanup
	}
	return cfg, cfg.Validate()
}

func parseParams(raw map[string]string) (map[string]float64, error) {
	out := make(map[string]float64, len(raw))
	for k, v := range raw {
		x, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: %w", k, err)
		}
		out[k] = x
	}
	return out, nil
}

// newExperiment wires the dataset client, logger and data dirs.
func newExperiment(cfg *config.Config, opts ...experiment.Option) (*experiment.Experiment, func(), error) {
	client, cat, err := dataClient()
	if err != nil {
		return nil, nil, err
	}
	opts = append([]experiment.Option{
		experiment.WithDataClient(client),
		experiment.WithDataDir(cacheDir()),
		experiment.WithLogger(logger),
	}, opts...)
	return experiment.New(cfg, opts...), func() { cat.Close() }, nil
}

func (sf *sourceFlags) load(ctx context.Context, cmd *cobra.Command) (*hypergraph.Hypergraph, *config.Config, error) {
	cfg, err := sf.resolve(cmd)
	if err != nil {
		return nil, nil, err
	}
	exp, done, err := newExperiment(cfg)
	if err != nil {
		return nil, nil, err
	}
	defer done()

	h, err := exp.Build(ctx)
	if err != nil {
		return nil, nil, err
	}
	telem.ObserveShape(cfg.Source.Describe(), h.NumNodes(), h.NumEdges(), h.MaxEdgeOrder())
	return h, cfg, nil
}

// writeHypergraph writes xgi JSON to path, or to stdout when path is empty
// and stdout is not a terminal.
func writeHypergraph(path string, h *hypergraph.Hypergraph) error {
	if path != "" {
		return readwrite.WriteJSONFile(path, h)
	}
	if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
		return errNoOutput
	}
	return readwrite.WriteJSON(os.Stdout, h)
}
