package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/san-kum/arbor/internal/render"
)

const (
	charW = 8
	charH = 16
)

// palette indices used by CanvasImage.
const (
	bgIndex = iota
	matureIndex
	leafIndex
)

func themePalette(theme Theme) color.Palette {
	br, bg, bb := RGB(theme.Background)
	mr, mg, mb := RGB(theme.Mature)
	lr, lg, lb := RGB(theme.Leaf)
	return color.Palette{
		color.RGBA{br, bg, bb, 255},
		color.RGBA{mr, mg, mb, 255},
		color.RGBA{lr, lg, lb, 255},
	}
}

// CanvasImage rasterizes a braille canvas, one charW x charH block per cell.
func CanvasImage(c *Canvas, theme Theme) *image.Paletted {
	imgW, imgH := c.Width*charW, c.Height*charH
	img := image.NewPaletted(image.Rect(0, 0, imgW, imgH), themePalette(theme))

	dotW, dotH := charW/2, charH/4
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			r := c.Grid[row][col]
			if r <= blank {
				continue
			}
			idx := uint8(matureIndex)
			if c.Tones[row][col] == render.Leaf {
				idx = leafIndex
			}
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if int(r-blank)&pixelMap[dy][dx] == 0 {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, idx)
						}
					}
				}
			}
		}
	}
	return img
}

// SaveGIF writes frames as a looping animation, delay in 100ths of a second.
func SaveGIF(path string, frames []*image.Paletted, delay int) error {
	if len(frames) == 0 {
		return fmt.Errorf("viz: no frames to save")
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, delay)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := gif.EncodeAll(f, &anim); err != nil {
		return fmt.Errorf("viz: encode gif: %w", err)
	}
	return nil
}
