package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/san-kum/seekbot/internal/viz"
	"github.com/spf13/cobra"
)

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := openStore().List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCLASS\tSOURCE\tTIME\tTICKS\tSTATUS\tMESSAGE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			run.ID,
			run.Class,
			run.Source,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Ticks,
			run.Status,
			run.Message,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := openStore()
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	rows, err := st.LoadTicks(runID)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("class: %s (%d)\n", meta.Class, meta.ClassID)
	fmt.Printf("result: %s %s\n", meta.Status, meta.Message)
	fmt.Printf("ticks: %d\n\n", len(rows))

	plotted := viz.AllSeries
	if series != "" {
		plotted = []viz.Series{viz.Series(series)}
	}
	for _, s := range plotted {
		graph, err := viz.Plot(rows, s, 80, 10)
		if err != nil {
			return err
		}
		fmt.Println(graph)
		fmt.Println()
	}

	if len(meta.Metrics) > 0 {
		keys := make([]string, 0, len(meta.Metrics))
		for k := range meta.Metrics {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Printf("  %-20s %.3f\n", k, meta.Metrics[k])
		}
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	if err := openStore().Export(args[0], outPath); err != nil {
		return err
	}
	if outPath != "-" {
		fmt.Printf("exported %s to %s\n", args[0], outPath)
	}
	return nil
}
