package main

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/samber/lo"
	"github.com/spf13/cobra"

	"github.com/san-kum/hyperlab/internal/analysis"
	"github.com/san-kum/hyperlab/internal/store"
)

func sortedKeys[V any](m map[string]V) []string {
	keys := lo.Keys(m)
	slices.Sort(keys)
	return keys
}

func runsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "inspect stored simulation runs",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "list runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			runs, err := runStore().List()
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Println("no runs found")
				return nil
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tSOURCE\tTIME\tN\tK2\tK3\tDT\tSTEPS\tINTEG\tFINAL R")
			for _, run := range runs {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g\t%g\t%g\t%d\t%s\t%.3f\n",
					run.ID,
					run.Source,
					run.Timestamp.Format("2006-01-02 15:04:05"),
					run.Nodes,
					run.K2,
					run.K3,
					run.Dt,
					run.Steps,
					run.Integrator,
					run.Metrics["final_order"],
				)
			}
			return w.Flush()
		},
	}

	show := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			meta, err := runStore().Load(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(meta)
		},
	}

	var (
		phases   int
		orderSVG string
	)
	plot := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart r(t) and a few phases of a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runStore()
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			traj, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}
			if len(traj.Theta) < 2 {
				return fmt.Errorf("run %s has %d states, nothing to plot", meta.ID, len(traj.Theta))
			}

			fmt.Printf("run: %s\n", meta.ID)
			fmt.Printf("source: %s\n", meta.Source)
			fmt.Printf("states: %d\n\n", len(traj.Theta))
			fmt.Println(plotOrder(traj.OrderParameter()))
			fmt.Println()

			for i := 0; i < min(phases, len(traj.Nodes)); i++ {
				series := make([]float64, len(traj.Theta))
				for t, row := range traj.Theta {
					series[t] = row[i]
				}
				fmt.Println(asciigraph.Plot(downsample(series, 80),
					asciigraph.Height(6),
					asciigraph.Width(80),
					asciigraph.Caption(fmt.Sprintf("theta of node %s", traj.Nodes[i]))))
				fmt.Println()
			}
			if orderSVG != "" {
				return writeOrderSVG(orderSVG, traj, meta.Source)
			}
			return nil
		},
	}
	plot.Flags().IntVar(&phases, "phases", 0, "also chart the phases of the first N nodes")
	plot.Flags().StringVar(&orderSVG, "order-svg", "", "write r(t) to this SVG file")

	exportCSV := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the phases of a run as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traj, err := runStore().LoadTrajectory(args[0])
			if err != nil {
				return err
			}
			return store.WriteCSV(os.Stdout, traj)
		},
	}

	exportJSON := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "write a run with its phases and r(t) as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runStore()
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			traj, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}
			return store.ExportJSON(os.Stdout, meta, traj)
		},
	}

	analyze := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "power spectrum of r(t)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runStore()
			meta, err := st.Load(args[0])
			if err != nil {
				return err
			}
			traj, err := st.LoadTrajectory(args[0])
			if err != nil {
				return err
			}
			order := traj.OrderParameter()
			if len(order) < 4 {
				return fmt.Errorf("run %s is too short to analyse", meta.ID)
			}

			ps := analysis.PowerSpectrum(order)
			fmt.Printf("frequency analysis: %s\n\n", meta.ID)
			fmt.Println(asciigraph.Plot(downsample(ps[1:max(len(ps)/4, 2)], 80),
				asciigraph.Height(12),
				asciigraph.Width(80),
				asciigraph.Caption("power spectrum of r(t)")))
			fmt.Println()

			freq := analysis.DominantFrequency(order, meta.Dt)
			fmt.Printf("dominant frequency: %.4f\n", freq)
			if freq > 0 {
				fmt.Printf("period: %.4f\n", 1/freq)
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove [run_id...]",
		Short: "delete runs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := runStore()
			for _, id := range args {
				if err := st.Remove(id); err != nil {
					return err
				}
				fmt.Printf("removed %s\n", id)
			}
			return nil
		},
	}

	cmd.AddCommand(list, show, plot, exportCSV, exportJSON, analyze, remove)
	return cmd
}
