//go:build cgo

package gui

import (
	"context"
	"fmt"
	"image/color"

	"github.com/charmbracelet/log"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/scene"
	"github.com/san-kum/arbor/internal/viz"
)

// App draws a scene in a raylib window. Strokes arrive on recorder
// surfaces from any goroutine; raylib itself is only called from Run.
type App struct {
	scene     *scene.Scene
	recorders []*render.Recorder
	layout    Layout
	theme     viz.Theme
	title     string
	status    string
	logger    *log.Logger
}

// NewApp prepares a window over s. recorders[i] must be the surface tree i
// draws on, sized to the layout's cells.
func NewApp(s *scene.Scene, recorders []*render.Recorder, opts Options, logger *log.Logger) *App {
	if opts.Title == "" {
		opts.Title = "arbor"
	}
	if logger == nil {
		logger = log.Default()
	}
	return &App{
		scene:     s,
		recorders: recorders,
		layout:    NewLayout(opts, len(recorders)),
		theme:     viz.GetTheme(opts.Theme),
		title:     opts.Title,
		logger:    logger,
	}
}

func col(c color.RGBA) rl.Color { return rl.NewColor(c.R, c.G, c.B, c.A) }

// Run opens the window and blocks until it is closed or ctx ends.
func (a *App) Run(ctx context.Context) error {
	w, h := a.layout.Window()
	rl.InitWindow(int32(w), int32(h), a.title)
	defer rl.CloseWindow()
	if !rl.IsWindowReady() {
		return ErrWindow
	}
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)

	for !rl.WindowShouldClose() {
		if ctx.Err() != nil {
			return nil
		}
		if quit := a.update(ctx); quit {
			return nil
		}
		a.draw()
	}
	return nil
}

func (a *App) update(ctx context.Context) bool {
	if rl.IsKeyPressed(rl.KeyQ) || rl.IsKeyPressed(rl.KeyEscape) {
		return true
	}
	if rl.IsMouseButtonPressed(rl.MouseButtonLeft) {
		pos := rl.GetMousePosition()
		if i, ok := a.layout.Hit(int(pos.X), int(pos.Y)); ok {
			a.report(fmt.Sprintf("promoted tree %d", i+1), a.scene.Promote(ctx, i))
		}
	}
	for k := int32(rl.KeyOne); k <= rl.KeyNine; k++ {
		i := int(k - rl.KeyOne)
		if rl.IsKeyPressed(k) && i < a.scene.Len() {
			a.report(fmt.Sprintf("promoted tree %d", i+1), a.scene.Promote(ctx, i))
		}
	}
	if rl.IsKeyPressed(rl.KeyR) {
		root := a.scene.Root()
		a.report(fmt.Sprintf("randomized tree %d", root+1), a.scene.Randomize(ctx, root))
	}
	if rl.IsKeyPressed(rl.KeyT) {
		a.theme = viz.NextTheme(a.theme.Name)
		a.status = "theme " + a.theme.Name
	}
	return false
}

func (a *App) report(what string, err error) {
	if err != nil {
		a.logger.Warn(what, "err", err)
		a.status = err.Error()
		return
	}
	a.status = what
}

func (a *App) draw() {
	rl.BeginDrawing()
	defer rl.EndDrawing()

	rl.ClearBackground(col(RGBA(a.theme.Background)))
	rl.DrawText("ARBOR", 12, 10, 20, col(RGBA(a.theme.Leaf)))
	rl.DrawText(a.status, 100, 14, 14, col(RGBA(a.theme.Muted)))

	root := a.scene.Root()
	for i, rec := range a.recorders {
		r := a.layout.Rect(i)
		frame := RGBA(a.theme.Frame)
		thick := float32(1)
		if i == root {
			frame, thick = RGBA(a.theme.Root), 3
		}
		rl.DrawRectangleLinesEx(rl.NewRectangle(float32(r.X), float32(r.Y), float32(r.W), float32(r.H)), thick, col(frame))
		a.drawTree(rec, r)
	}
}

func (a *App) drawTree(rec *render.Recorder, r Rect) {
	sw, sh := rec.Size()
	fx, fy := float32(r.W)/float32(sw), float32(r.H)/float32(sh)
	mature, leaf := col(RGBA(a.theme.Mature)), col(RGBA(a.theme.Leaf))

	for _, s := range rec.Strokes() {
		c := mature
		if s.Tone == render.Leaf {
			c = leaf
		}
		width := float32(s.Width) * fx
		if width < 1 {
			width = 1
		}
		for _, seg := range s.Segments {
			from := rl.NewVector2(float32(r.X)+float32(seg.From.X)*fx, float32(r.Y)+float32(seg.From.Y)*fy)
			to := rl.NewVector2(float32(r.X)+float32(seg.To.X)*fx, float32(r.Y)+float32(seg.To.Y)*fy)
			rl.DrawLineEx(from, to, width, c)
		}
	}
}
