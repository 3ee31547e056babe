package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/arbor/internal/attr"
	"github.com/san-kum/arbor/internal/render"
	"github.com/san-kum/arbor/internal/viz"
)

// SceneSVG renders every tree fully grown, one cell each.
func SceneSVG(trees []attr.Values, opts Options) (string, error) {
	if len(trees) == 0 {
		return "", ErrNoTrees
	}
	opts = opts.normalize(len(trees))
	width, height := opts.size(len(trees))

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, string(opts.Theme.Background)))

	for i, v := range trees {
		if err := v.Validate(); err != nil {
			return "", fmt.Errorf("export: tree %d: %w", i, err)
		}
		x, y := opts.origin(i)
		sb.WriteString(fmt.Sprintf(`<g transform="translate(%.1f,%.1f)">
`, x, y))
		if i == opts.Root {
			sb.WriteString(fmt.Sprintf(`<rect x="1" y="1" width="%.1f" height="%.1f" fill="none" stroke="%s" stroke-width="2"/>
`, opts.CellW-2, opts.CellH-2, string(opts.Theme.Root)))
		}
		for _, s := range render.Plan(v, opts.CellW, opts.CellH, opts.Margin) {
			writeStroke(&sb, s, hex(toneColor(opts.Theme, s.Tone)))
		}
		sb.WriteString("</g>\n")
	}

	sb.WriteString("</svg>")
	return sb.String(), nil
}

func writeStroke(sb *strings.Builder, s render.Stroke, color string) {
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="%.2f" stroke-linecap="round" d="`, color, s.Width))
	for i, seg := range s.Segments {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(fmt.Sprintf("M%.1f,%.1f L%.1f,%.1f", seg.From.X, seg.From.Y, seg.To.X, seg.To.Y))
	}
	sb.WriteString(`"/>
`)
}

// CanvasToSVG converts a braille canvas to SVG dots, coloured by tone.
func CanvasToSVG(canvas *viz.Canvas, scale float64, theme viz.Theme) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.Width) * scale * 2   // 2 sub-pixels per char
	height := float64(canvas.Height) * scale * 4 // 4 sub-pixels per char

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, string(theme.Background)))

	dotRadius := scale * 0.4
	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			tone := canvas.Tones[row][col]
			fill := hex(toneColor(theme, tone))
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					x, y := col*2+dx, row*4+dy
					if !canvas.IsSet(x, y) {
						continue
					}
					sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, float64(x)*scale+scale/2, float64(y)*scale+scale/2, dotRadius, fill))
				}
			}
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws one polyline per series, scaled to a shared range.
// The journal's drift plots use it.
func SeriesToSVG(series map[string][]float64, width, height int, theme viz.Theme) string {
	minY, maxY, longest := 0.0, 0.0, 0
	first := true
	for _, ys := range series {
		if len(ys) > longest {
			longest = len(ys)
		}
		for _, y := range ys {
			if first || y < minY {
				minY = y
			}
			if first || y > maxY {
				maxY = y
			}
			first = false
		}
	}
	if longest < 2 {
		return ""
	}

	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, string(theme.Background)))

	palette := []string{string(theme.Leaf), string(theme.Mature), string(theme.Root), string(theme.Accent), string(theme.Text)}
	for k, name := range sortedKeys(series) {
		ys := series[name]
		if len(ys) < 2 {
			continue
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" data-series="%s" d="M`, palette[k%len(palette)], name))
		for i, y := range ys {
			px := float64(i) / float64(longest-1) * float64(width)
			py := float64(height) - (y-minY)/rangeY*float64(height)
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", px, py))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px, py))
			}
		}
		sb.WriteString(`"/>
`)
	}

	sb.WriteString("</svg>")
	return sb.String()
}
