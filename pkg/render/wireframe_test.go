package render

import (
	"context"
	"image/color"
	"testing"

	uv "github.com/charmbracelet/ultraviolet"

	"github.com/taigrr/tinyraster/pkg/tga"
)

func TestLine(t *testing.T) {
	tests := []struct {
		name           string
		x0, y0, x1, y1 int
		count          int
	}{
		{"horizontal", 2, 5, 12, 5, 11},
		{"vertical", 3, 1, 3, 8, 8},
		{"diagonal", 0, 0, 9, 9, 10},
		{"reversed", 12, 5, 2, 5, 11},
		{"steep", 1, 1, 4, 13, 13},
		{"point", 7, 7, 7, 7, 1},
	}
	red := tga.RGB(255, 0, 0)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			img, _ := tga.New(16, 16, tga.RGB24)
			Line(img, tc.x0, tc.y0, tc.x1, tc.y1, red)
			for _, p := range [][2]int{{tc.x0, tc.y0}, {tc.x1, tc.y1}} {
				if c, _ := img.Get(p[0], p[1]); c.R() != 255 {
					t.Errorf("endpoint %v not drawn", p)
				}
			}
			if n := countSet(img); n != tc.count {
				t.Errorf("drew %d pixels, want %d", n, tc.count)
			}
		})
	}
}

func TestLineClipsOutsideImage(t *testing.T) {
	img, _ := tga.New(8, 8, tga.Grayscale)
	Line(img, -5, 3, 20, 3, tga.Gray(200))
	if n := countSet(img); n != 8 {
		t.Errorf("drew %d pixels, want 8", n)
	}
	if c, _ := img.Get(0, 3); c.BGRA[0] != 200 {
		t.Errorf("pixel = %v", c)
	}
}

func TestDrawWireframe(t *testing.T) {
	r, img := createTestRasterizer(t, 32, 32, nil)
	m := parseModel(t, "v -0.5 -0.5 0\nv 0.5 -0.5 0\nv 0.5 0.5 0\nv -0.5 0.5 0\nf 1 2 3 4\n")
	if err := r.DrawWireframe(m, tga.RGB(0, 255, 0)); err != nil {
		t.Fatal(err)
	}
	// Quad outline from (8,8) to (24,24).
	for _, p := range [][2]int{{8, 8}, {24, 8}, {24, 24}, {8, 24}, {16, 8}, {8, 16}} {
		if c, _ := img.Get(p[0], p[1]); c.G() != 255 {
			t.Errorf("outline pixel %v = %v", p, c)
		}
	}
	if c, _ := img.Get(16, 16); c != tga.ZeroColor(3) {
		t.Error("wireframe filled the interior")
	}

	// The same quad is rejected by the filled path.
	if err := r.DrawModel(context.Background(), m); err == nil {
		t.Error("DrawModel accepted a quad")
	}
}

func TestPreviewPixel(t *testing.T) {
	img, _ := tga.New(2, 2, tga.RGB24)
	_ = img.Set(0, 0, tga.RGB(10, 20, 30))
	_ = img.Set(0, 1, tga.RGB(40, 50, 60))

	p := NewPreview(img, false)
	if got := p.pixel(0, 0); got != (color.RGBA{10, 20, 30, 255}) {
		t.Errorf("top-down pixel = %v", got)
	}
	p.BottomUp = true
	if got := p.pixel(0, 0); got != (color.RGBA{40, 50, 60, 255}) {
		t.Errorf("bottom-up pixel = %v", got)
	}
	if got := p.pixel(5, 0); got != nil {
		t.Errorf("outside pixel = %v, want nil", got)
	}

	if got := toColor(tga.Gray(9)); got != (color.RGBA{9, 9, 9, 255}) {
		t.Errorf("gray toColor = %v", got)
	}
}

func TestPreviewDraw(t *testing.T) {
	img, _ := tga.New(3, 4, tga.RGB24)
	_ = img.Set(1, 3, tga.RGB(255, 0, 0)) // top row once flipped
	_ = img.Set(1, 2, tga.RGB(0, 0, 255))

	scr := uv.NewScreenBuffer(5, 3)
	NewPreview(img, true).Draw(scr, scr.Bounds())

	cell := scr.CellAt(1, 0)
	if cell == nil || cell.Content != "▀" {
		t.Fatalf("cell = %+v", cell)
	}
	if cell.Style.Fg != (color.RGBA{255, 0, 0, 255}) || cell.Style.Bg != (color.RGBA{0, 0, 255, 255}) {
		t.Errorf("fg %v bg %v", cell.Style.Fg, cell.Style.Bg)
	}
	// Columns past the image width are left alone.
	if c := scr.CellAt(4, 0); c != nil && c.Content == "▀" {
		t.Error("drew past the image width")
	}
}

func countSet(img *tga.Image) int {
	n := 0
	for y := range img.Height() {
		for x := range img.Width() {
			if c, _ := img.Get(x, y); c != tga.ZeroColor(img.Bpp()) {
				n++
			}
		}
	}
	return n
}

func BenchmarkLine(b *testing.B) {
	img, _ := tga.New(800, 800, tga.RGB24)
	c := tga.RGB(255, 255, 255)
	for b.Loop() {
		Line(img, 13, 20, 780, 640, c)
	}
}
