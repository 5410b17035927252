package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/hyperlab/internal/algorithms"
	"github.com/san-kum/hyperlab/internal/config"
	"github.com/san-kum/hyperlab/internal/experiment"
	"github.com/san-kum/hyperlab/internal/hypergraph"
)

func infoCmd() *cobra.Command {
	var maxOrder int
	cmd := &cobra.Command{
		Use:   "info [dataset|file]",
		Short: "summarise a dataset or hypergraph file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()
			cfg.Cleanup.Enabled = false
			cfg.Source = config.Source{Dataset: args[0], MaxOrder: maxOrder}
			if _, err := os.Stat(args[0]); err == nil {
				cfg.Source = config.Source{File: args[0], MaxOrder: maxOrder}
			}

			exp, done, err := newExperiment(cfg)
			if err != nil {
				return err
			}
			defer done()
			h, err := exp.Build(cmd.Context())
			if err != nil {
				return err
			}
			telem.ObserveShape(cfg.Source.Describe(), h.NumNodes(), h.NumEdges(), h.MaxEdgeOrder())
			return printInfo(h)
		},
	}
	cmd.Flags().IntVar(&maxOrder, "max-order", -1, "drop edges of higher order")
	return cmd
}

func printInfo(h *hypergraph.Hypergraph) error {
	s := experiment.Summarize(h)
	fmt.Println(h)
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "nodes\t%d\n", s.Nodes)
	fmt.Fprintf(w, "edges\t%d\n", s.Edges)
	fmt.Fprintf(w, "max order\t%d\n", s.MaxOrder)
	fmt.Fprintf(w, "mean degree\t%.3f\n", s.MeanDegree)
	fmt.Fprintf(w, "max degree\t%d\n", s.MaxDegree)
	fmt.Fprintf(w, "mean edge size\t%.3f\n", s.MeanSize)
	fmt.Fprintf(w, "components\t%d\n", s.Components)
	fmt.Fprintf(w, "isolates\t%d\n", s.Isolates)
	fmt.Fprintf(w, "singletons\t%d\n", len(h.Singletons()))
	fmt.Fprintf(w, "duplicate groups\t%d\n", len(h.Duplicates()))
	if k, ok := h.IsUniform(); ok {
		fmt.Fprintf(w, "uniform\t%d-uniform\n", k)
	}
	fmt.Fprintf(w, "largest component\t%d nodes\n", algorithms.LargestComponentSize(h))
	return w.Flush()
}

func dataCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "data",
		Short: "manage downloaded datasets",
	}

	download := &cobra.Command{
		Use:   "download [dataset...]",
		Short: "download datasets into the cache directory",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cat, err := dataClient()
			if err != nil {
				return err
			}
			defer cat.Close()
			for _, name := range args {
				path, err := client.Download(cmd.Context(), name, cacheDir())
				if err != nil {
					return err
				}
				fmt.Printf("%s -> %s\n", name, path)
			}
			return nil
		},
	}

	var remote bool
	list := &cobra.Command{
		Use:   "list",
		Short: "list downloaded datasets, or the remote index with --remote",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, cat, err := dataClient()
			if err != nil {
				return err
			}
			defer cat.Close()

			if remote {
				names, err := client.Names(cmd.Context())
				if err != nil {
					return err
				}
				for _, n := range names {
					fmt.Println(n)
				}
				return nil
			}

			entries, err := cat.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Println("no datasets downloaded")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tNODES\tEDGES\tMAX ORDER\tFETCHED\tPATH")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%s\n",
					e.Name, e.NumNodes, e.NumEdges, e.MaxOrder, e.FetchedAt.Format("2006-01-02 15:04"), e.Path)
			}
			return w.Flush()
		},
	}
	list.Flags().BoolVar(&remote, "remote", false, "list the datasets in the remote index")

	remove := &cobra.Command{
		Use:   "remove [dataset...]",
		Short: "delete downloaded datasets and their catalog entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cat, err := dataClient()
			if err != nil {
				return err
			}
			defer cat.Close()
			for _, name := range args {
				e, err := cat.Get(cmd.Context(), name)
				if err != nil {
					return err
				}
				if err := os.Remove(e.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
					return err
				}
				if err := cat.Remove(cmd.Context(), name); err != nil {
					return err
				}
				logger.Info("dataset removed", zap.String("dataset", name), zap.String("path", e.Path))
				fmt.Printf("removed %s\n", name)
			}
			return nil
		},
	}

	cmd.AddCommand(download, list, remove)
	return cmd
}
