// Package render rasterizes triangle meshes into tga images with a depth
// buffer, flat per-face lighting and optional texturing.
package render

import (
	"context"
	"errors"
	"fmt"
	"image"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/taigrr/tinyraster/pkg/math3d"
	"github.com/taigrr/tinyraster/pkg/models"
	"github.com/taigrr/tinyraster/pkg/tga"
)

// ErrMalformedFace is returned for faces that are not triangles.
var ErrMalformedFace = errors.New("render: face is not a triangle")

// Strategy selects the scan-conversion algorithm.
type Strategy int

const (
	// StrategyScanline fills rows between the two active edges. Rows are
	// half-open [ymin, ymax), spans are closed [xa, xb].
	StrategyScanline Strategy = iota
	// StrategyBarycentric tests every pixel of the bounding box. Pixels on
	// an edge (zero weight) are covered.
	StrategyBarycentric
)

// Projection selects how object space maps onto the screen.
type Projection int

const (
	// ProjectionFlat maps x and y in [-1,1] straight onto the image and
	// uses z as depth.
	ProjectionFlat Projection = iota
	// ProjectionPerspective applies viewport * projection * view.
	ProjectionPerspective
)

func (s Strategy) String() string {
	switch s {
	case StrategyScanline:
		return "scanline"
	case StrategyBarycentric:
		return "barycentric"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

func (p Projection) String() string {
	switch p {
	case ProjectionFlat:
		return "flat"
	case ProjectionPerspective:
		return "perspective"
	}
	return fmt.Sprintf("Projection(%d)", int(p))
}

// ParseStrategy parses "scanline" or "barycentric".
func ParseStrategy(s string) (Strategy, error) {
	switch strings.ToLower(s) {
	case "scanline", "":
		return StrategyScanline, nil
	case "barycentric":
		return StrategyBarycentric, nil
	}
	return 0, fmt.Errorf("unknown strategy %q", s)
}

// ParseProjection parses "flat" or "perspective".
func ParseProjection(s string) (Projection, error) {
	switch strings.ToLower(s) {
	case "perspective", "":
		return ProjectionPerspective, nil
	case "flat":
		return ProjectionFlat, nil
	}
	return 0, fmt.Errorf("unknown projection %q", s)
}

// Config describes one frame. It replaces the fixed light, camera and
// viewport constants a renderer would otherwise carry.
type Config struct {
	// Light is the direction light travels; faces whose normal has a
	// non-positive dot product with it are skipped.
	Light      math3d.Vec3f
	Camera     Camera
	Projection Projection
	Strategy   Strategy
	// Textured samples the model's diffuse texture when one is bound.
	Textured bool
	Filter   Filter
	// Viewport is the pixel rectangle the perspective view maps onto. The
	// zero value leaves a one-eighth margin on each side.
	Viewport image.Rectangle
	// Workers splits the image into horizontal bands rendered
	// concurrently. Values below 2 render on the calling goroutine.
	Workers int
	// Progress, if set, is called as faces are rasterized.
	Progress func(done, total int)
}

// DefaultConfig returns a textured perspective scanline setup lit from the
// viewer.
func DefaultConfig() Config {
	return Config{
		Light:      math3d.V3(0, 0, -1),
		Camera:     NewCamera(),
		Projection: ProjectionPerspective,
		Strategy:   StrategyScanline,
		Textured:   true,
		Workers:    1,
	}
}

// Stats counts what the rasterizer did since the last Reset.
type Stats struct {
	Faces      int // triangles rasterized
	Culled     int // skipped because they face away from the light
	Degenerate int // skipped because their normal has zero length
	Pixels     int // pixels that passed the depth test
}

// Rasterizer draws models into an image, sharing one depth buffer across
// all draw calls of a frame.
type Rasterizer struct {
	cfg       Config
	img       *tga.Image
	depth     *DepthBuffer
	light     math3d.Vec3f
	transform math3d.Matrix
	stats     Stats
}

// New creates a rasterizer targeting img.
func New(img *tga.Image, cfg Config) (*Rasterizer, error) {
	light, err := cfg.Light.Normalize()
	if err != nil {
		return nil, fmt.Errorf("light direction: %w", err)
	}
	r := &Rasterizer{
		cfg:   cfg,
		img:   img,
		depth: NewDepthBuffer(img.Width(), img.Height()),
		light: light,
	}
	if err := r.SetCamera(cfg.Camera); err != nil {
		return nil, err
	}
	return r, nil
}

// SetCamera rebuilds the view transform. The depth buffer is not reset.
func (r *Rasterizer) SetCamera(c Camera) error {
	r.cfg.Camera = c
	if r.cfg.Projection != ProjectionPerspective {
		return nil
	}
	view, err := c.ViewMatrix()
	if err != nil {
		return fmt.Errorf("camera: %w", err)
	}
	vp := r.cfg.Viewport
	if vp.Empty() {
		w, h := r.img.Width(), r.img.Height()
		vp = image.Rect(w/8, h/8, w/8+w*3/4, h/8+h*3/4)
	}
	r.transform = math3d.Viewport(vp.Min.X, vp.Min.Y, vp.Dx(), vp.Dy()).
		Mul(c.ProjectionMatrix()).
		Mul(view)
	return nil
}

// Image returns the target image.
func (r *Rasterizer) Image() *tga.Image { return r.img }

// Depth returns the shared depth buffer.
func (r *Rasterizer) Depth() *DepthBuffer { return r.depth }

// Stats returns the counters accumulated since the last Reset.
func (r *Rasterizer) Stats() Stats { return r.stats }

// Reset clears the depth buffer and counters for a new frame. The image is
// left alone.
func (r *Rasterizer) Reset() {
	r.depth.Reset()
	r.stats = Stats{}
}

// Project maps an object-space point to screen space.
func (r *Rasterizer) Project(v math3d.Vec3f) (Vertex, error) {
	if r.cfg.Projection != ProjectionPerspective {
		w, h := float64(r.img.Width()), float64(r.img.Height())
		return Vertex{
			Pos:  math3d.V3((v.X+1)*w/2, (v.Y+1)*h/2, v.Z),
			InvW: 1,
		}, nil
	}
	clip := r.transform.Mul(math3d.FromVec3(v))
	p, err := clip.ToVec3()
	if err != nil {
		return Vertex{}, fmt.Errorf("project %v: %w", v, err)
	}
	return Vertex{Pos: p, InvW: 1 / clip.At(3, 0)}, nil
}

// triangle is a face ready for scan conversion.
type triangle struct {
	v     [3]Vertex
	paint Paint
}

// prepare projects and lights face i. It reports false for faces that are
// culled or degenerate.
func (r *Rasterizer) prepare(m *models.Model, i int) (triangle, bool, error) {
	f, err := m.Face(i)
	if err != nil {
		return triangle{}, false, err
	}
	if len(f) != 3 {
		return triangle{}, false, fmt.Errorf("%w: %d corners", ErrMalformedFace, len(f))
	}

	textured := r.cfg.Textured && m.HasTexture()
	var world [3]math3d.Vec3f
	var t triangle
	for j, c := range f {
		if world[j], err = m.Vertex(c.Vertex); err != nil {
			return triangle{}, false, err
		}
		if t.v[j], err = r.Project(world[j]); err != nil {
			return triangle{}, false, err
		}
		if textured {
			if t.v[j].UV, err = m.UVOf(i, j); err != nil {
				return triangle{}, false, err
			}
		}
	}

	n, err := world[2].Sub(world[0]).Cross(world[1].Sub(world[0])).Normalize()
	if err != nil {
		r.stats.Degenerate++
		return triangle{}, false, nil
	}
	intensity := n.Dot(r.light)
	if intensity <= 0 {
		r.stats.Culled++
		return triangle{}, false, nil
	}

	t.paint = Paint{Intensity: intensity}
	if textured {
		t.paint.Texture = NewSampler(m, r.cfg.Filter)
	}
	return t, true, nil
}

// DrawFace rasterizes face i of m. Culled and degenerate faces write
// nothing and are not errors.
func (r *Rasterizer) DrawFace(m *models.Model, i int) error {
	t, ok, err := r.prepare(m, i)
	if err != nil {
		return fmt.Errorf("face %d: %w", i, err)
	}
	if ok {
		r.stats.Faces++
		r.stats.Pixels += rasterize(r.img, r.depth, t.v, t.paint, r.cfg.Strategy, r.fullBand())
	}
	return nil
}

// DrawTriangle rasterizes a screen-space triangle with the configured
// strategy and returns the number of pixels written.
func (r *Rasterizer) DrawTriangle(v [3]Vertex, p Paint) int {
	n := rasterize(r.img, r.depth, v, p, r.cfg.Strategy, r.fullBand())
	r.stats.Faces++
	r.stats.Pixels += n
	return n
}

// DrawModel rasterizes every face of m in order. With more than one
// worker the image is split into row bands; each band walks the faces in
// the same order, so the result matches a sequential draw.
func (r *Rasterizer) DrawModel(ctx context.Context, m *models.Model) error {
	tris := make([]triangle, 0, m.FaceCount())
	for i := range m.FaceCount() {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		t, ok, err := r.prepare(m, i)
		if err != nil {
			return fmt.Errorf("face %d: %w", i, err)
		}
		if ok {
			tris = append(tris, t)
		}
	}
	r.stats.Faces += len(tris)

	bands := r.bands()
	pixels := make([]int, len(bands))

	if len(bands) == 1 {
		n, err := r.drawBand(ctx, tris, bands[0], r.cfg.Progress)
		r.stats.Pixels += n
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for b, band := range bands {
		var progress func(int, int)
		if b == 0 {
			progress = r.cfg.Progress
		}
		g.Go(func() error {
			n, err := r.drawBand(ctx, tris, band, progress)
			pixels[b] = n
			return err
		})
	}
	err := g.Wait()
	for _, n := range pixels {
		r.stats.Pixels += n
	}
	return err
}

func (r *Rasterizer) drawBand(ctx context.Context, tris []triangle, band rowSpan, progress func(int, int)) (int, error) {
	n := 0
	for i, t := range tris {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return n, err
			}
		}
		n += rasterize(r.img, r.depth, t.v, t.paint, r.cfg.Strategy, band)
		if progress != nil {
			progress(i+1, len(tris))
		}
	}
	return n, nil
}

// rowSpan is a half-open range of image rows.
type rowSpan struct {
	lo, hi int
}

func (r *Rasterizer) fullBand() rowSpan {
	return rowSpan{0, r.img.Height()}
}

func (r *Rasterizer) bands() []rowSpan {
	h := r.img.Height()
	n := max(1, min(r.cfg.Workers, h))
	out := make([]rowSpan, n)
	for i := range n {
		out[i] = rowSpan{i * h / n, (i + 1) * h / n}
	}
	return out
}

// DrawTriangle rasterizes a screen-space triangle into img, testing and
// updating depth. It returns the number of pixels written.
func DrawTriangle(img *tga.Image, depth *DepthBuffer, v [3]Vertex, p Paint, s Strategy) int {
	return rasterize(img, depth, v, p, s, rowSpan{0, img.Height()})
}

func rasterize(img *tga.Image, depth *DepthBuffer, v [3]Vertex, p Paint, s Strategy, band rowSpan) int {
	band.lo = max(band.lo, 0)
	band.hi = min(band.hi, img.Height())
	if band.lo >= band.hi || img.Width() == 0 {
		return 0
	}
	if s == StrategyBarycentric {
		return fillBarycentric(img, depth, v, p, band)
	}
	return fillScanline(img, depth, v, p, band)
}
