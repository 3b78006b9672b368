package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/taigrr/tinyraster/pkg/math3d"
	"github.com/taigrr/tinyraster/pkg/models"
	"github.com/taigrr/tinyraster/pkg/tga"
)

// Filter selects how textures are sampled.
type Filter int

const (
	// FilterNearest picks the texel containing the coordinate.
	FilterNearest Filter = iota
	// FilterBilinear blends the four nearest texels.
	FilterBilinear
)

func (f Filter) String() string {
	switch f {
	case FilterNearest:
		return "nearest"
	case FilterBilinear:
		return "bilinear"
	}
	return fmt.Sprintf("Filter(%d)", int(f))
}

// ParseFilter parses "nearest" or "bilinear".
func ParseFilter(s string) (Filter, error) {
	switch strings.ToLower(s) {
	case "nearest", "":
		return FilterNearest, nil
	case "bilinear":
		return FilterBilinear, nil
	}
	return 0, fmt.Errorf("unknown filter %q", s)
}

// Sampler returns the texel color at a normalized texture coordinate.
type Sampler interface {
	Sample(uv math3d.Vec2f) tga.Color
}

// NewSampler samples the diffuse texture of m.
func NewSampler(m *models.Model, f Filter) Sampler {
	if f == FilterBilinear && m.HasTexture() {
		return bilinear{m.Diffuse()}
	}
	return nearest{m}
}

type nearest struct {
	m *models.Model
}

func (s nearest) Sample(uv math3d.Vec2f) tga.Color {
	return s.m.SampleDiffuse(s.m.TexelOf(uv))
}

type bilinear struct {
	img *tga.Image
}

func (s bilinear) Sample(uv math3d.Vec2f) tga.Color {
	w, h := s.img.Width(), s.img.Height()
	x := uv.X*float64(w) - 0.5
	y := uv.Y*float64(h) - 0.5
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0

	texel := func(x, y int) tga.Color {
		c, _ := s.img.Get(max(0, min(w-1, x)), max(0, min(h-1, y)))
		return c
	}
	ix, iy := int(x0), int(y0)
	top := lerpColor(texel(ix, iy), texel(ix+1, iy), fx)
	bot := lerpColor(texel(ix, iy+1), texel(ix+1, iy+1), fx)
	return lerpColor(top, bot, fy)
}

func lerpColor(a, b tga.Color, t float64) tga.Color {
	out := a
	for i := range out.BGRA {
		out.BGRA[i] = uint8(float64(a.BGRA[i]) + (float64(b.BGRA[i])-float64(a.BGRA[i]))*t + 0.5)
	}
	return out
}

var white = tga.RGB(255, 255, 255)

// Paint decides the color of covered pixels: a texel when Texture is set,
// otherwise Color (white when unset), scaled by Intensity.
type Paint struct {
	Intensity float64
	Color     tga.Color
	Texture   Sampler
}

// flat returns the fixed pixel color for an untextured paint at depth bpp.
func (p Paint) flat(bpp int) tga.Color {
	c := p.Color
	if c.Bpp == 0 {
		c = white
	}
	return c.Scale(p.Intensity).Convert(bpp)
}

func (p Paint) shade(uv math3d.Vec2f, bpp int) tga.Color {
	return p.Texture.Sample(uv).Scale(p.Intensity).Convert(bpp)
}
