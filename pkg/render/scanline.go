package render

import (
	"github.com/taigrr/tinyraster/pkg/math3d"
	"github.com/taigrr/tinyraster/pkg/tga"
)

// Vertex is a triangle corner in screen space: Pos.X and Pos.Y in pixels,
// Pos.Z the depth. InvW is the reciprocal homogeneous w used to interpolate
// UV perspective-correctly; 1 gives plain screen-space interpolation.
type Vertex struct {
	Pos  math3d.Vec3f
	UV   math3d.Vec2f
	InvW float64
}

// edgePoint carries the attributes interpolated along an edge. u and v are
// premultiplied by invW.
type edgePoint struct {
	x, z, invW, u, v float64
}

func (a edgePoint) lerp(b edgePoint, t float64) edgePoint {
	return edgePoint{
		x:    a.x + (b.x-a.x)*t,
		z:    a.z + (b.z-a.z)*t,
		invW: a.invW + (b.invW-a.invW)*t,
		u:    a.u + (b.u-a.u)*t,
		v:    a.v + (b.v-a.v)*t,
	}
}

func (a edgePoint) uv() math3d.Vec2f {
	if a.invW == 0 {
		return math3d.Vec2f{}
	}
	return math3d.V2(a.u/a.invW, a.v/a.invW)
}

// fillScanline sorts the corners by y and fills each row between the long
// edge (t0 to t2) and the short edge of the current half. A triangle whose
// corners share one row writes nothing.
func fillScanline(img *tga.Image, depth *DepthBuffer, tri [3]Vertex, p Paint, band rowSpan) int {
	type corner struct {
		y int
		e edgePoint
	}
	var t [3]corner
	for i, v := range tri {
		t[i] = corner{
			y: int(v.Pos.Y),
			e: edgePoint{
				x:    float64(int(v.Pos.X)),
				z:    v.Pos.Z,
				invW: v.InvW,
				u:    v.UV.X * v.InvW,
				v:    v.UV.Y * v.InvW,
			},
		}
	}
	if t[0].y == t[1].y && t[0].y == t[2].y {
		return 0
	}
	if t[0].y > t[1].y {
		t[0], t[1] = t[1], t[0]
	}
	if t[0].y > t[2].y {
		t[0], t[2] = t[2], t[0]
	}
	if t[1].y > t[2].y {
		t[1], t[2] = t[2], t[1]
	}

	bpp := img.Bpp()
	textured := p.Texture != nil
	var flat tga.Color
	if !textured {
		flat = p.flat(bpp)
	}

	total := t[2].y - t[0].y
	upper := t[1].y - t[0].y
	first := max(0, band.lo-t[0].y)
	last := min(total, band.hi-t[0].y)
	width := img.Width()
	written := 0

	for i := first; i < last; i++ {
		second := i > upper || t[1].y == t[0].y
		alpha := float64(i) / float64(total)
		a := t[0].e.lerp(t[2].e, alpha)
		var b edgePoint
		if second {
			beta := float64(i-upper) / float64(t[2].y-t[1].y)
			b = t[1].e.lerp(t[2].e, beta)
		} else {
			beta := float64(i) / float64(upper)
			b = t[0].e.lerp(t[1].e, beta)
		}

		ax, bx := int(a.x), int(b.x)
		if ax > bx {
			a, b = b, a
			ax, bx = bx, ax
		}
		y := t[0].y + i
		for x := max(ax, 0); x <= min(bx, width-1); x++ {
			phi := 1.0
			if bx != ax {
				phi = float64(x-ax) / float64(bx-ax)
			}
			pt := a.lerp(b, phi)
			if !depth.TestAndSet(x, y, pt.z) {
				continue
			}
			c := flat
			if textured {
				c = p.shade(pt.uv(), bpp)
			}
			if img.Set(x, y, c) == nil {
				written++
			}
		}
	}
	return written
}
