package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/config"
	"github.com/san-kum/arbor/internal/export"
	"github.com/san-kum/arbor/internal/metrics"
	"github.com/san-kum/arbor/internal/storage"
	"github.com/san-kum/arbor/internal/viz"
	"github.com/spf13/cobra"
)

var plotSVG string

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list journaled runs",
		RunE:  listRuns,
	}
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the root's attributes over a run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().StringVar(&plotSVG, "svg", "", "also write the chart as SVG")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export the root of every generation as CSV",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportCSV,
	}
}

func newExportJSONCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
}

func newPresetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "list attribute presets",
		RunE:  listPresets,
	}
}

// runRef is the run named on the command line, or the newest run.
func runRef(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "latest"
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCREATED\tTREES\tGENERATIONS\tROOT\tPRESET")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			run.ID[:8],
			run.Name,
			run.Created.Format("2006-01-02 15:04:05"),
			run.Trees,
			run.Generations,
			run.Root,
			run.Preset,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runRef(args))
	if err != nil {
		return err
	}

	records, err := st.LoadRecords(meta.ID)
	if err != nil {
		return err
	}

	if len(records) < 2 {
		return fmt.Errorf("run %s has %d generations, need at least 2 to plot", meta.ID[:8], len(records))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("generations: %d\n\n", len(records))

	scenes := make([][]attr.Values, len(records))
	roots := make([]int, len(records))
	for i, r := range records {
		scenes[i], roots[i] = r.Trees, r.Root
	}

	series := make(map[string][]float64)
	for _, name := range attr.Names() {
		data := metrics.RootSeries(scenes, roots, name)
		series[name.String()] = data
		if flat(data) {
			fmt.Printf("%s: constant %v\n\n", name, data[0])
			continue
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("root %s per generation", name)),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	keys := make([]string, 0, len(meta.Metrics))
	for k := range meta.Metrics {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("%-24s %10.3f\n", k, meta.Metrics[k])
	}

	if plotSVG != "" {
		svg := export.SeriesToSVG(series, 800, 400, viz.GetTheme(cfg.Theme))
		if err := os.WriteFile(plotSVG, []byte(svg), 0644); err != nil {
			return err
		}
		loggerFromContext(cmd.Context()).Info("wrote chart", "path", plotSVG)
	}

	return nil
}

func flat(data []float64) bool {
	for _, x := range data {
		if x != data[0] {
			return false
		}
	}
	return len(data) > 0
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	records, err := st.LoadRecords(runRef(args))
	if err != nil {
		return err
	}
	return storage.ExportCSV(os.Stdout, records)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runRef(args))
	if err != nil {
		return err
	}

	records, err := st.LoadRecords(meta.ID)
	if err != nil {
		return err
	}

	return storage.ExportJSON(os.Stdout, *meta, records)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	header := []string{"NAME"}
	for _, n := range attr.Names() {
		header = append(header, strings.ToUpper(n.String()))
	}
	header = append(header, "DESCRIPTION")
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for _, name := range config.ListPresets() {
		p, _ := config.GetPreset(name)
		row := []string{name}
		for _, s := range p.Table {
			row = append(row, fmt.Sprintf("%v±%v", s.Initial, s.VaryBy))
		}
		row = append(row, p.Description)
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}
