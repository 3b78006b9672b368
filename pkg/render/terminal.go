package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/tinyraster/pkg/tga"
)

// Preview draws an image on a terminal screen with half-block cells, two
// image rows per terminal row.
type Preview struct {
	img *tga.Image
	// BottomUp marks images whose row 0 is the bottom of the picture, as
	// the rasterizer produces them.
	BottomUp bool
}

// NewPreview wraps img for terminal display.
func NewPreview(img *tga.Image, bottomUp bool) *Preview {
	return &Preview{img: img, BottomUp: bottomUp}
}

// Draw implements uv.Drawable. Each cell shows "▀" with the upper pixel as
// foreground and the lower pixel as background.
func (p *Preview) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < p.img.Width(); col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: p.pixel(x, topY),
					Bg: p.pixel(x, botY),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// pixel returns the screen-oriented color at (x, y), or nil outside the
// image.
func (p *Preview) pixel(x, y int) color.Color {
	if p.BottomUp {
		y = p.img.Height() - 1 - y
	}
	c, ok := p.img.Get(x, y)
	if !ok {
		return nil
	}
	return toColor(c)
}

func toColor(c tga.Color) color.Color {
	if c.Bpp == 1 {
		v := c.BGRA[0]
		return color.RGBA{v, v, v, 255}
	}
	return color.RGBA{c.R(), c.G(), c.B(), 255}
}
