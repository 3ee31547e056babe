package export

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"runtime"

	"github.com/fogleman/gg"
	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/render"
	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"
)

// Supersample is the oversampling factor used before the final downscale.
const Supersample = 4

// SceneImage rasterizes every tree fully grown. Cells are drawn
// concurrently at Supersample times their size, composed, then scaled down
// with Catmull-Rom filtering.
func SceneImage(ctx context.Context, trees []attr.Values, opts Options) (image.Image, error) {
	if len(trees) == 0 {
		return nil, ErrNoTrees
	}
	opts = opts.normalize(len(trees))
	for i, v := range trees {
		if err := v.Validate(); err != nil {
			return nil, fmt.Errorf("export: tree %d: %w", i, err)
		}
	}

	cellW, cellH := int(opts.CellW)*Supersample, int(opts.CellH)*Supersample
	tiles := make([]image.Image, len(trees))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, v := range trees {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tiles[i] = drawCell(v, cellW, cellH, opts, i == opts.Root)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	w, h := opts.size(len(trees))
	large := image.NewRGBA(image.Rect(0, 0, int(w)*Supersample, int(h)*Supersample))
	for i, tile := range tiles {
		x, y := opts.origin(i)
		at := image.Pt(int(x)*Supersample, int(y)*Supersample)
		draw.Draw(large, tile.Bounds().Add(at), tile, image.Point{}, draw.Src)
	}

	final := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	draw.CatmullRom.Scale(final, final.Bounds(), large, large.Bounds(), draw.Over, nil)
	return final, nil
}

func drawCell(v attr.Values, w, h int, opts Options, root bool) image.Image {
	dc := gg.NewContext(w, h)
	dc.SetColor(rgba(opts.Theme.Background))
	dc.Clear()

	scale := float64(Supersample)
	if root {
		dc.SetColor(rgba(opts.Theme.Root))
		dc.SetLineWidth(2 * scale)
		dc.DrawRectangle(scale, scale, float64(w)-2*scale, float64(h)-2*scale)
		dc.Stroke()
	}

	dc.SetLineCapRound()
	for _, s := range render.Plan(v, opts.CellW, opts.CellH, opts.Margin) {
		dc.SetColor(toneColor(opts.Theme, s.Tone))
		dc.SetLineWidth(max(s.Width, 0.5) * scale)
		for _, seg := range s.Segments {
			dc.DrawLine(seg.From.X*scale, seg.From.Y*scale, seg.To.X*scale, seg.To.Y*scale)
		}
		dc.Stroke()
	}
	return dc.Image()
}

// WritePNG encodes the scene to w.
func WritePNG(ctx context.Context, w io.Writer, trees []attr.Values, opts Options) error {
	img, err := SceneImage(ctx, trees, opts)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("export: encode png: %w", err)
	}
	return nil
}
