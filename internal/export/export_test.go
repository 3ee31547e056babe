package export

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"strings"
	"testing"

	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/viz"
)

var sample = []attr.Values{
	{65, 35, 0.625, 6, 0},
	{70, 40, 0.6, 6, 1},
	{80, 20, 0.7, 4, 3},
}

func TestSceneSVG(t *testing.T) {
	opts := DefaultOptions()
	opts.Root = 1
	svg, err := SceneSVG(sample, opts)
	if err != nil {
		t.Fatal(err)
	}

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Error("not a complete SVG document")
	}
	if got := strings.Count(svg, "<g "); got != 3 {
		t.Errorf("%d cells, want 3", got)
	}
	// one path per stroke: 1 + 2 + 4 generations
	if got := strings.Count(svg, "<path"); got != 1+2+4 {
		t.Errorf("%d paths, want 7", got)
	}
	if got := strings.Count(svg, "M"); got < render.SegmentCount(0)+render.SegmentCount(1)+render.SegmentCount(3) {
		t.Errorf("only %d move-to commands", got)
	}
	if !strings.Contains(svg, string(viz.ThemeForest.Root)) {
		t.Error("root outline missing")
	}
}

func TestSceneSVG_Errors(t *testing.T) {
	if _, err := SceneSVG(nil, DefaultOptions()); !errors.Is(err, ErrNoTrees) {
		t.Errorf("empty scene: %v", err)
	}
	bad := []attr.Values{{65, 35, 0.6, 6, -1}}
	if _, err := SceneSVG(bad, DefaultOptions()); !errors.Is(err, attr.ErrNegativeBranchings) {
		t.Errorf("bad tree: %v", err)
	}
}

func TestWritePNG(t *testing.T) {
	var buf bytes.Buffer
	opts := Options{Columns: 2, CellW: 60, CellH: 50}
	if err := WritePNG(context.Background(), &buf, sample, opts); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if b := img.Bounds(); b.Dx() != 120 || b.Dy() != 100 {
		t.Errorf("image is %dx%d, want 120x100", b.Dx(), b.Dy())
	}
}

func TestSceneImage_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := SceneImage(ctx, sample, DefaultOptions()); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestCanvasToSVG(t *testing.T) {
	c := viz.NewCanvas(2, 1)
	c.SetTone(render.Leaf)
	c.DrawLine(0, 0, 3, 0)
	svg := CanvasToSVG(c, 2, viz.ThemeForest)
	if got := strings.Count(svg, "<circle"); got != 4 {
		t.Errorf("%d dots, want 4", got)
	}
	if !strings.Contains(svg, string(viz.ThemeForest.Leaf)) {
		t.Error("leaf colour missing")
	}
	if CanvasToSVG(nil, 1, viz.ThemeForest) != "" {
		t.Error("nil canvas should give empty output")
	}
}

func TestSeriesToSVG(t *testing.T) {
	svg := SeriesToSVG(map[string][]float64{
		"length":     {65, 70, 68},
		"divergence": {35, 30, 40},
	}, 200, 100, viz.ThemeForest)
	if got := strings.Count(svg, "<path"); got != 2 {
		t.Errorf("%d paths, want 2", got)
	}
	if SeriesToSVG(map[string][]float64{"x": {1}}, 10, 10, viz.ThemeForest) != "" {
		t.Error("single point should give empty output")
	}
}
