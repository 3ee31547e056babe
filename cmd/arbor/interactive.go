package main

import (
	"github.com/san-kum/arbor/internal/gui"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/viz"
	"github.com/spf13/cobra"
)

// tile size in terminal cells
const (
	tileCols = 28
	tileRows = 9
)

func runTUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	tiles := make([]*viz.Tile, cfg.Trees)
	surfaces := make([]render.Surface, cfg.Trees)
	for i := range tiles {
		tiles[i] = viz.NewTile(tileCols, tileRows, float64(cfg.Width), float64(cfg.Height))
		surfaces[i] = tiles[i]
	}

	sess, err := openSession(ctx, cfg, surfaces, render.Clock{}, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	return viz.Run(ctx, sess.scene, tiles, viz.Options{
		Columns: cfg.Columns,
		Theme:   cfg.Theme,
		Logger:  loggerFromContext(ctx),
	})
}

func runGUI(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	recs, surfaces := recorders(cfg.Trees, float64(cfg.Width), float64(cfg.Height))
	sess, err := openSession(ctx, cfg, surfaces, render.Clock{}, "")
	if err != nil {
		return err
	}
	defer sess.Close()

	app := gui.NewApp(sess.scene, recs, gui.Options{
		Columns: cfg.Columns,
		CellW:   cfg.Width,
		CellH:   cfg.Height,
		Theme:   cfg.Theme,
	}, loggerFromContext(ctx))
	return app.Run(ctx)
}
