package render

import (
	"fmt"

	"github.com/taigrr/tinyraster/pkg/models"
	"github.com/taigrr/tinyraster/pkg/tga"
)

// Line draws a segment from (x0, y0) to (x1, y1) with Bresenham's
// algorithm. Both endpoints are drawn; pixels outside the image are
// dropped.
func Line(img *tga.Image, x0, y0, x1, y1 int, c tga.Color) {
	c = c.Convert(img.Bpp())
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		_ = img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// DrawWireframe outlines every face of m, whatever its corner count. Edges
// ignore the depth buffer.
func (r *Rasterizer) DrawWireframe(m *models.Model, c tga.Color) error {
	for i := range m.FaceCount() {
		f, err := m.Face(i)
		if err != nil {
			return err
		}
		pts := make([]Vertex, len(f))
		for j, corner := range f {
			v, err := m.Vertex(corner.Vertex)
			if err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
			if pts[j], err = r.Project(v); err != nil {
				return fmt.Errorf("face %d: %w", i, err)
			}
		}
		for j := range pts {
			a, b := pts[j], pts[(j+1)%len(pts)]
			Line(r.img, int(a.Pos.X), int(a.Pos.Y), int(b.Pos.X), int(b.Pos.Y), c)
		}
	}
	return nil
}
