package render

import (
	"math"

	"github.com/taigrr/tinyraster/pkg/math3d"
	"github.com/taigrr/tinyraster/pkg/tga"
)

// degenerateArea bounds the doubled signed area below which a triangle is
// treated as a line.
const degenerateArea = 1e-2

// barycentric returns the weights of (px, py) with respect to the triangle
// (x0,y0) (x1,y1) (x2,y2). Degenerate triangles yield (-1, 1, 1) so that
// every pixel is rejected.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3f {
	u := math3d.V3(x2-x0, x1-x0, x0-px).Cross(math3d.V3(y2-y0, y1-y0, y0-py))
	if math.Abs(u.Z) <= degenerateArea {
		return math3d.V3(-1, 1, 1)
	}
	return math3d.V3(1-(u.X+u.Y)/u.Z, u.Y/u.Z, u.X/u.Z)
}

// fillBarycentric tests every pixel of the triangle's bounding box, clipped
// to the image and band.
func fillBarycentric(img *tga.Image, depth *DepthBuffer, tri [3]Vertex, p Paint, band rowSpan) int {
	var xs, ys [3]float64
	for i, v := range tri {
		xs[i] = float64(int(v.Pos.X))
		ys[i] = float64(int(v.Pos.Y))
	}

	minX := max(0, int(min(xs[0], xs[1], xs[2])))
	maxX := min(img.Width()-1, int(max(xs[0], xs[1], xs[2])))
	minY := max(band.lo, int(min(ys[0], ys[1], ys[2])))
	maxY := min(band.hi-1, int(max(ys[0], ys[1], ys[2])))

	bpp := img.Bpp()
	textured := p.Texture != nil
	var flat tga.Color
	if !textured {
		flat = p.flat(bpp)
	}

	written := 0
	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			bc := barycentric(xs[0], ys[0], xs[1], ys[1], xs[2], ys[2], float64(x), float64(y))
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*tri[0].Pos.Z + bc.Y*tri[1].Pos.Z + bc.Z*tri[2].Pos.Z
			if !depth.TestAndSet(x, y, z) {
				continue
			}

			c := flat
			if textured {
				// Weight each corner by 1/w, then renormalize.
				w0, w1, w2 := bc.X*tri[0].InvW, bc.Y*tri[1].InvW, bc.Z*tri[2].InvW
				var uv math3d.Vec2f
				if sum := w0 + w1 + w2; sum != 0 {
					uv = math3d.V2(
						(w0*tri[0].UV.X+w1*tri[1].UV.X+w2*tri[2].UV.X)/sum,
						(w0*tri[0].UV.Y+w1*tri[1].UV.Y+w2*tri[2].UV.Y)/sum,
					)
				}
				c = p.shade(uv, bpp)
			}
			if img.Set(x, y, c) == nil {
				written++
			}
		}
	}
	return written
}
