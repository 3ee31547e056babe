package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/san-kum/arbor/internal/automation"
	"github.com/san-kum/arbor/internal/export"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/viz"
	"github.com/spf13/cobra"
)

var (
	growPromote []int
	growScript  string
	growInitial string
	growOut     string
	growSaveDir string
)

func newGrowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grow",
		Short: "apply promotions or a script headlessly and print the state",
		Example: `  arbor grow --promote 3,1
  arbor grow --script walk.yaml --out scene.png`,
		RunE: runGrow,
	}
	cmd.Flags().IntSliceVar(&growPromote, "promote", nil, "tree indices to promote, in order")
	cmd.Flags().StringVar(&growScript, "script", "", "yaml script of steps")
	cmd.Flags().StringVar(&growInitial, "initial", "", "state to start from")
	cmd.Flags().StringVarP(&growOut, "out", "o", "", "also render the final scene (.svg or .png)")
	cmd.Flags().StringVar(&growSaveDir, "save-dir", ".", "directory for states saved by save_as steps")
	cmd.MarkFlagsMutuallyExclusive("promote", "script")
	return cmd
}

func runGrow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	script := automation.Promotions(growPromote)
	if growScript != "" {
		s, err := automation.LoadScript(growScript)
		if err != nil {
			return err
		}
		script = s
		if script.Seed == 0 {
			script.Seed = cfg.Seed
		}
	}

	_, surfaces := recorders(cfg.Trees, float64(cfg.Width), float64(cfg.Height))
	sess, err := openSession(ctx, cfg, surfaces, render.Immediate{}, growInitial)
	if err != nil {
		return err
	}
	defer sess.Close()

	prog := newProgress(logger)
	res, err := automation.RunScript(ctx, script, sess.scene, logger)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("applied %d steps", len(res.Steps)))

	for _, name := range sortedNames(res.Saved) {
		path := filepath.Join(growSaveDir, name+".state")
		if err := os.WriteFile(path, []byte(res.Saved[name]+"\n"), 0644); err != nil {
			return err
		}
		logger.Info("saved state", "name", name, "path", path)
	}

	if growOut != "" {
		opts := export.DefaultOptions()
		opts.Columns = cfg.Columns
		opts.Theme = viz.GetTheme(cfg.Theme)
		opts.Root = sess.scene.Root()
		if err := writeScene(ctx, growOut, sess.scene.Snapshot().Trees, opts); err != nil {
			return err
		}
	}

	fmt.Fprintln(cmd.OutOrStdout(), sess.scene.Encode())
	return nil
}

func sortedNames(m map[string]string) []string {
	names := make([]string, 0, len(m))
	for n := range m {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func isPNG(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".png")
}
