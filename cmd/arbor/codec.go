package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/export"
	"github.com/san-kum/arbor/internal/fragment"
	"github.com/san-kum/arbor/internal/server"
	"github.com/san-kum/arbor/internal/viz"
	"github.com/spf13/cobra"
)

var (
	renderOut  string
	renderRoot int
	renderCell float64
	serveAddr  string
)

func newRenderCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [state]",
		Short: "render a state string as SVG or PNG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runRender,
	}
	cmd.Flags().StringVarP(&renderOut, "out", "o", "", "output file (.svg or .png); svg on stdout when empty")
	cmd.Flags().IntVar(&renderRoot, "root", -1, "tree to outline as root")
	cmd.Flags().Float64Var(&renderCell, "cell", 200, "cell size in pixels")
	return cmd
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [state]",
		Short: "print the attributes held in a state string",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runDecode,
	}
}

func newEncodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "encode [tree]...",
		Short: "build a state string from name=value lists",
		Long: `Each argument is one tree, written as name=value pairs separated by
commas. Attributes left out take their initial value.`,
		Example: `  arbor encode length=80,branchings=3 divergence=20`,
		Args:    cobra.MinimumNArgs(1),
		RunE:    runEncode,
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "render shared state strings over HTTP",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	return cmd
}

// stateArg returns the state from args, or from the state file when no
// argument is given.
func stateArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if cfg.StateFile == "" {
		return "", errors.New("no state given and no state file configured")
	}
	data, err := os.ReadFile(cfg.StateFile)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func runRender(cmd *cobra.Command, args []string) error {
	state, err := stateArg(args)
	if err != nil {
		return err
	}
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	trees, err := fragment.DecodeAll(state)
	if err != nil {
		return err
	}
	for i, v := range trees {
		trees[i] = table.Clamp(v)
	}

	opts := export.DefaultOptions()
	opts.Columns = cfg.Columns
	opts.CellW, opts.CellH = renderCell, renderCell
	opts.Margin = cfg.Margin
	opts.Theme = viz.GetTheme(cfg.Theme)
	opts.Root = renderRoot

	if renderOut == "" {
		svg, err := export.SceneSVG(trees, opts)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), svg)
		return err
	}
	return writeScene(cmd.Context(), renderOut, trees, opts)
}

func writeScene(ctx context.Context, path string, trees []attr.Values, opts export.Options) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if isPNG(path) {
		err = export.WritePNG(ctx, f, trees, opts)
	} else {
		var svg string
		if svg, err = export.SceneSVG(trees, opts); err == nil {
			_, err = io.WriteString(f, svg)
		}
	}
	if err != nil {
		return err
	}
	loggerFromContext(ctx).Info("wrote scene", "path", path, "trees", len(trees))
	return nil
}

func runDecode(cmd *cobra.Command, args []string) error {
	state, err := stateArg(args)
	if err != nil {
		return err
	}
	n := strings.Count(state, fragment.TreeSep) + 1
	slots, _, err := fragment.Decode(state, n)
	if errors.Is(err, fragment.ErrEmpty) {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	header := []string{"TREE"}
	for _, name := range attr.Names() {
		header = append(header, strings.ToUpper(name.String()))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))

	for i, slot := range slots {
		row := []string{strconv.Itoa(i)}
		if !slot.OK {
			row = append(row, "invalid")
		} else {
			for _, x := range slot.Values {
				row = append(row, fragment.FormatValue(x))
			}
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	var errs fragment.Errors
	if errors.As(err, &errs) {
		for _, e := range errs {
			fmt.Fprintf(cmd.ErrOrStderr(), "tree %d: %v\n", e.Index, e.Wrapped)
		}
		return fmt.Errorf("%d of %d trees invalid", len(errs), n)
	}
	return nil
}

func runEncode(cmd *cobra.Command, args []string) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}

	trees := make([]attr.Values, len(args))
	for i, arg := range args {
		v := table.Defaults()
		for _, pair := range strings.Split(arg, ",") {
			key, raw, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("tree %d: %q is not name=value", i, pair)
			}
			name, err := attr.ParseName(strings.TrimSpace(key))
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			x, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return fmt.Errorf("tree %d: %s: %w", i, name, err)
			}
			v[name] = x
		}
		if err := v.Validate(); err != nil {
			return fmt.Errorf("tree %d: %w", i, err)
		}
		trees[i] = table.Clamp(v)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), fragment.Encode(trees))
	return err
}

func runServe(cmd *cobra.Command, args []string) error {
	table, err := cfg.Table()
	if err != nil {
		return err
	}
	layout := export.DefaultOptions()
	layout.Columns = cfg.Columns
	layout.Margin = cfg.Margin
	layout.Theme = viz.GetTheme(cfg.Theme)

	srv := server.New(server.Options{
		Table:  table,
		Layout: layout,
		Logger: loggerFromContext(cmd.Context()),
	})
	return srv.ListenAndServe(cmd.Context(), serveAddr)
}
