package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/hyperlab/internal/automation"
	"github.com/san-kum/hyperlab/internal/config"
	"github.com/san-kum/hyperlab/internal/experiment"
)

func scenarioCmd() *cobra.Command {
	var keepGoing bool
	cmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of pipeline steps",
		Long: `Each step builds or loads a hypergraph, cleans it, optionally compares it
with a null model, draws it and simulates it. Steps marked save are
stored as runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sc, err := automation.LoadScenario(args[0])
			if err != nil {
				return err
			}
			client, cat, err := dataClient()
			if err != nil {
				return err
			}
			defer cat.Close()

			st := runStore()
			if err := st.Init(); err != nil {
				return err
			}
			opts := []automation.Option{
				automation.WithStore(st),
				automation.WithLogger(logger),
				automation.WithExperimentOptions(
					experiment.WithDataClient(client),
					experiment.WithDataDir(cacheDir()),
				),
			}
			if keepGoing {
				opts = append(opts, automation.KeepGoing())
			}

			if sc.Name != "" {
				fmt.Printf("scenario: %s\n", sc.Name)
			}
			if sc.Description != "" {
				fmt.Printf("%s\n", sc.Description)
			}
			fmt.Println()

			reports, runErr := automation.RunScenario(cmd.Context(), sc, opts...)
			for _, rep := range reports {
				if rep.Err == nil {
					telem.ObserveShape(rep.Source, rep.Summary.Nodes, rep.Summary.Edges, rep.Summary.MaxOrder)
				}
				telem.ObserveRun(rep.Source, rep.Metrics, rep.Elapsed, rep.Err)
			}
			printReports(reports)
			if runErr != nil {
				logger.Error("scenario failed", zap.Error(runErr))
			}
			return runErr
		},
	}
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "run the remaining steps after a failure")
	return cmd
}

func printReports(reports []automation.StepReport) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tSTEP\tSOURCE\tNODES\tEDGES\tMEAN R\tFINAL R\tASSORT\tNULL ASSORT\tRUN\tTIME")
	for _, rep := range reports {
		if rep.Err != nil {
			fmt.Fprintf(w, "%d\t%s\t%s\terror: %v\n", rep.Index, rep.Name, rep.Source, rep.Err)
			continue
		}
		assort, nullAssort := "-", "-"
		if rep.Null != nil {
			assort = fmt.Sprintf("%.3f", rep.Null.Assortativity)
			nullAssort = fmt.Sprintf("%.3f", rep.Null.NullAssortativity)
		}
		meanR, finalR := "-", "-"
		if rep.Metrics != nil {
			meanR = fmt.Sprintf("%.3f", rep.Metrics["mean_order"])
			finalR = fmt.Sprintf("%.3f", rep.Metrics["final_order"])
		}
		runID := rep.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%d\t%s\t%s\t%s\t%s\t%s\t%v\n",
			rep.Index, rep.Name, rep.Source, rep.Summary.Nodes, rep.Summary.Edges,
			meanR, finalR, assort, nullAssort, runID, rep.Elapsed.Round(time.Millisecond))
	}
	w.Flush()
}

func presetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets [generator/regime]",
		Short: "list presets, or print one as an experiment file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				gen, regime, _ := strings.Cut(args[0], "/")
				cfg := config.GetPreset(gen, regime)
				if cfg == nil {
					return fmt.Errorf("unknown preset %q (available for %s: %v)", args[0], gen, config.ListPresets(gen))
				}
				enc := yaml.NewEncoder(os.Stdout)
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(cfg)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PRESET\tSOURCE\tK2\tK3\tDT\tT")
			for _, gen := range config.ListGenerators() {
				for _, regime := range config.ListPresets(gen) {
					cfg := config.GetPreset(gen, regime)
					p := cfg.Kuramoto
					fmt.Fprintf(w, "%s/%s\t%s\t%g\t%g\t%g\t%d\n", gen, regime, cfg.Source.Describe(), p.K2, p.K3, p.Dt, p.Timesteps)
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Printf("\ngenerators: %s\n", strings.Join(experiment.NewRegistry().ListGenerators(), ", "))
			return nil
		},
	}
	return cmd
}
