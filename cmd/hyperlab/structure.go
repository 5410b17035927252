package main

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/san-kum/hyperlab/internal/algorithms"
	"github.com/san-kum/hyperlab/internal/config"
	"github.com/san-kum/hyperlab/internal/experiment"
	"github.com/san-kum/hyperlab/internal/generators"
	"github.com/san-kum/hyperlab/internal/hypergraph"
	"github.com/san-kum/hyperlab/internal/stats"
)

// statByName resolves stat names. attr:NAME reads a node or edge attribute.
func statByName(h *hypergraph.Hypergraph, name string, kind stats.Kind) (*stats.Stat, error) {
	if attr, ok := strings.CutPrefix(name, "attr:"); ok {
		if kind == stats.EdgeKind {
			return stats.EdgeAttr(h, attr, nil), nil
		}
		return stats.NodeAttr(h, attr, nil), nil
	}
	switch name {
	case "degree":
		return stats.Degree(h), nil
	case "average_neighbor_degree":
		return stats.AverageNeighborDegree(h), nil
	case "clustering":
		return stats.LocalClustering(h), nil
	case "size":
		return stats.Size(h), nil
	case "order":
		return stats.Order(h), nil
	}
	return nil, fmt.Errorf("unknown stat %q", name)
}

func kindOf(name string) stats.Kind {
	switch name {
	case "size", "order":
		return stats.EdgeKind
	}
	return stats.NodeKind
}

func statsCmd() *cobra.Command {
	var (
		nodeStats []string
		edgeStats []string
		limit     int
		csvOut    bool
		dist      string
		filter    string
	)
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "node and edge statistics",
		Long: `Computes statistics as a table. Node stats: degree, average_neighbor_degree,
clustering, attr:NAME. Edge stats: size, order, attr:NAME.

--filter STAT:MODE:VALUE[:VALUE] keeps the rows whose value passes, e.g.
--filter degree:gt:3 or --filter size:between:2:4.`,
	}
	sf := addSourceFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		h, _, err := sf.load(cmd.Context(), cmd)
		if err != nil {
			return err
		}

		if filter != "" {
			if h, err = applyFilter(h, filter); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "filter kept %d nodes and %d edges\n", h.NumNodes(), h.NumEdges())
		}

		names, kind := nodeStats, stats.NodeKind
		if len(edgeStats) > 0 {
			names, kind = edgeStats, stats.EdgeKind
		}
		columns := make([]*stats.Stat, 0, len(names))
		for _, name := range names {
			s, err := statByName(h, name, kind)
			if err != nil {
				return err
			}
			columns = append(columns, s)
		}
		table, err := stats.NewTable(columns...)
		if err != nil {
			return err
		}
		if csvOut {
			return table.WriteCSV(os.Stdout)
		}
		fmt.Println(table.Render(limit))
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "STAT\tMEAN\tSTD\tMIN\tMEDIAN\tMAX")
		for _, s := range columns {
			if !numeric(s) {
				continue
			}
			mean, _ := s.Mean()
			std, _ := s.Std()
			low, _ := s.Min()
			med, _ := s.Median()
			high, _ := s.Max()
			fmt.Fprintf(w, "%s\t%.4g\t%.4g\t%.4g\t%.4g\t%.4g\n", s.Name, mean, std, low, med, high)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if dist != "" {
			s, err := statByName(h, dist, kindOf(dist))
			if err != nil {
				return err
			}
			return plotDist(s)
		}
		return nil
	}
	cmd.Flags().StringSliceVar(&nodeStats, "node", []string{"degree", "clustering"}, "node stats to show")
	cmd.Flags().StringSliceVar(&edgeStats, "edge", nil, "edge stats to show instead of node stats")
	cmd.Flags().IntVar(&limit, "limit", 20, "rows to show, 0 for all")
	cmd.Flags().BoolVar(&csvOut, "csv", false, "write the table as CSV")
	cmd.Flags().StringVar(&dist, "dist", "", "plot the distribution of this stat")
	cmd.Flags().StringVar(&filter, "filter", "", "keep rows by stat, STAT:MODE:VALUE")
	return cmd
}

func numeric(s *stats.Stat) bool {
	_, err := s.AsArray()
	return err == nil && s.Len() > 0
}

// applyFilter keeps the nodes or edges passing the filter and returns the
// induced hypergraph.
func applyFilter(h *hypergraph.Hypergraph, expr string) (*hypergraph.Hypergraph, error) {
	parts := strings.Split(expr, ":")
	if len(parts) < 3 {
		return nil, fmt.Errorf("filter %q: want STAT:MODE:VALUE", expr)
	}
	mode, err := stats.ParseMode(parts[1])
	if err != nil {
		return nil, err
	}
	s, err := statByName(h, parts[0], kindOf(parts[0]))
	if err != nil {
		return nil, err
	}
	values := lo.Map(parts[2:], func(v string, _ int) any {
		if x, err := strconv.ParseFloat(v, 64); err == nil {
			return x
		}
		return v
	})
	ids, err := s.Filter(mode, values...)
	if err != nil {
		return nil, err
	}
	return stats.Induce(h, s.Kind, ids), nil
}

func plotDist(s *stats.Stat) error {
	bins, err := s.Dist()
	if err != nil {
		return err
	}
	if len(bins) == 0 {
		return nil
	}
	counts := lo.Map(bins, func(b stats.Bin, _ int) float64 { return float64(b.Count) })
	fmt.Println()
	fmt.Println(asciigraph.Plot(counts,
		asciigraph.Height(10),
		asciigraph.Width(min(80, max(len(counts)*2, 20))),
		asciigraph.LowerBound(0),
		asciigraph.Caption(fmt.Sprintf("%s distribution, %g..%g", s.Name, bins[0].Value, bins[len(bins)-1].Value))))
	return nil
}

func cleanupCmd() *cobra.Command {
	var (
		keepMulti, keepSingletons, keepIsolates, noRelabel bool
		output                                             string
	)
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "remove multiedges, singletons and isolates",
	}
	sf := addSourceFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		h, _, err := sf.load(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		before := experiment.Summarize(h)
		clean := h.Cleanup(hypergraph.CleanupOptions{
			Multiedges: keepMulti,
			Singletons: keepSingletons,
			Isolates:   keepIsolates,
			Relabel:    !noRelabel,
		})
		after := experiment.Summarize(clean)
		fmt.Fprintf(os.Stderr, "nodes %d -> %d, edges %d -> %d\n", before.Nodes, after.Nodes, before.Edges, after.Edges)
		return writeHypergraph(output, clean)
	}
	cmd.Flags().BoolVar(&keepMulti, "keep-multiedges", false, "keep duplicate edges")
	cmd.Flags().BoolVar(&keepSingletons, "keep-singletons", false, "keep single-node edges")
	cmd.Flags().BoolVar(&keepIsolates, "keep-isolates", false, "keep nodes in no edge")
	cmd.Flags().BoolVar(&noRelabel, "no-relabel", false, "keep the original IDs")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file")
	return cmd
}

func dualCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "dual",
		Short: "swap the roles of nodes and edges",
	}
	sf := addSourceFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		h, _, err := sf.load(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		d := h.Dual()
		fmt.Fprintf(os.Stderr, "dual has %d nodes and %d edges\n", d.NumNodes(), d.NumEdges())
		return writeHypergraph(output, d)
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file")
	return cmd
}

func generateCmd() *cobra.Command {
	var (
		params map[string]string
		seed   int64
		output string
	)
	registry := experiment.NewRegistry()
	cmd := &cobra.Command{
		Use:   "generate [model]",
		Short: "generate a random or deterministic hypergraph",
		Long:  "Models: " + strings.Join(registry.ListGenerators(), ", "),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gen, err := registry.GetGenerator(args[0])
			if err != nil {
				return err
			}
			p, err := parseParams(params)
			if err != nil {
				return err
			}
			h, err := gen(p, generators.WithSeed(seed), generators.WithLogger(logger), generators.WithName(args[0]))
			if err != nil {
				return err
			}
			telem.ObserveShape("generator:"+args[0], h.NumNodes(), h.NumEdges(), h.MaxEdgeOrder())
			if output == "" {
				if fi, err := os.Stdout.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
					return printInfo(h)
				}
			}
			return writeHypergraph(output, h)
		},
	}
	cmd.Flags().StringToStringVar(&params, "param", nil, "model parameter, e.g. --param n=50")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output JSON file")
	return cmd
}

func nullModelCmd() *cobra.Command {
	var (
		kind   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "nullmodel",
		Short: "fit a random null model to a hypergraph",
	}
	sf := addSourceFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		h, cfg, err := sf.load(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		null, err := generators.NullModel(h, generators.NullKind(kind),
			generators.WithSeed(cfg.Seed), generators.WithLogger(logger))
		if err != nil {
			return err
		}
		printComparison(experiment.Summarize(h), experiment.Summarize(null), nil)
		if output == "" {
			return nil
		}
		return writeHypergraph(output, null)
	}
	cmd.Flags().StringVar(&kind, "kind", config.DefaultNullModel, "null model: chung-lu or shuffle")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the null model to this JSON file")
	return cmd
}

func assortativityCmd() *cobra.Command {
	var (
		pairs     string
		exact     bool
		samples   int
		dynamical bool
		null      string
	)
	cmd := &cobra.Command{
		Use:   "assortativity",
		Short: "degree assortativity, optionally against a null model",
	}
	sf := addSourceFlags(cmd)
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		h, cfg, err := sf.load(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		if dynamical {
			a, err := algorithms.DynamicalAssortativity(h)
			if err != nil {
				return err
			}
			fmt.Printf("dynamical assortativity: %.4f\n", a)
			return nil
		}

		cfg.NullModel = config.NullModel{Kind: null, Pairs: pairs, Exact: exact, Samples: samples}
		if null == "" {
			kind, err := algorithms.ParsePairKind(pairs)
			if err != nil {
				return err
			}
			a, err := algorithms.DegreeAssortativity(h, kind, exact, samples, rand.New(rand.NewSource(cfg.Seed)))
			if err != nil {
				return err
			}
			fmt.Printf("degree assortativity (%s): %.4f\n", kind, a)
			return nil
		}

		exp, done, err := newExperiment(cfg)
		if err != nil {
			return err
		}
		defer done()
		c, err := exp.Compare(h)
		if err != nil {
			return err
		}
		printComparison(c.Observed, c.Null, c)
		return nil
	}
	cmd.Flags().StringVar(&pairs, "pairs", "top-2", "member pair: uniform, top-2 or top-bottom")
	cmd.Flags().BoolVar(&exact, "exact", false, "use every edge instead of sampling")
	cmd.Flags().IntVar(&samples, "samples", config.DefaultSamples, "sampled edges when not exact")
	cmd.Flags().BoolVar(&dynamical, "dynamical", false, "dynamical assortativity of a uniform hypergraph")
	cmd.Flags().StringVar(&null, "null", "", "also compute it for a null model: chung-lu or shuffle")
	return cmd
}

func printComparison(observed, null experiment.Summary, c *experiment.Comparison) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "\tOBSERVED\tNULL")
	fmt.Fprintf(w, "nodes\t%d\t%d\n", observed.Nodes, null.Nodes)
	fmt.Fprintf(w, "edges\t%d\t%d\n", observed.Edges, null.Edges)
	fmt.Fprintf(w, "max order\t%d\t%d\n", observed.MaxOrder, null.MaxOrder)
	fmt.Fprintf(w, "mean degree\t%.3f\t%.3f\n", observed.MeanDegree, null.MeanDegree)
	fmt.Fprintf(w, "max degree\t%d\t%d\n", observed.MaxDegree, null.MaxDegree)
	fmt.Fprintf(w, "mean size\t%.3f\t%.3f\n", observed.MeanSize, null.MeanSize)
	fmt.Fprintf(w, "components\t%d\t%d\n", observed.Components, null.Components)
	if c != nil {
		fmt.Fprintf(w, "assortativity\t%.4f\t%.4f\n", c.Assortativity, c.NullAssortativity)
	}
	w.Flush()
}
