package models

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/taigrr/tinyraster/pkg/math3d"
	"github.com/taigrr/tinyraster/pkg/tga"
)

func mustParse(t *testing.T, src string) *Model {
	t.Helper()
	m, err := ParseOBJ(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func texture(t *testing.T, w, h int) *tga.Image {
	t.Helper()
	img, err := tga.New(w, h, tga.RGB24)
	if err != nil {
		t.Fatal(err)
	}
	for y := range h {
		for x := range w {
			_ = img.Set(x, y, tga.RGB(uint8(x), uint8(y), 7))
		}
	}
	return img
}

func TestIndexOutOfBounds(t *testing.T) {
	m := mustParse(t, "v 0 0 0\nvt 0 0\nf 1/1 2/1 5/3\n")

	if _, err := m.Vertex(1); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("Vertex(1) error = %v", err)
	}
	if _, err := m.Vertex(-1); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("Vertex(-1) error = %v", err)
	}
	if _, err := m.Face(1); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("Face(1) error = %v", err)
	}
	if _, err := m.UVOf(0, 2); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("UVOf on a missing texcoord error = %v", err)
	}
	if _, err := m.TexCoordOf(0, 3); !errors.Is(err, ErrIndexOutOfBounds) {
		t.Errorf("TexCoordOf on a missing corner error = %v", err)
	}
	if n, err := m.NormalOf(0, 0); err != nil || n != (math3d.Vec3f{}) {
		t.Errorf("NormalOf without normals = %v, %v", n, err)
	}
}

func TestTexCoordOf(t *testing.T) {
	m := mustParse(t, "v 0 0 0\nvt 0.5 0.25\nvt 1 1\nf 1/1 1/2 1/1\n")

	got, err := m.TexCoordOf(0, 0)
	if err != nil {
		t.Fatal(err)
	}
	if got != (math3d.Vec2i{}) {
		t.Errorf("unbound TexCoordOf = %v, want (0, 0)", got)
	}

	m.BindTextureImage(texture(t, 64, 32))
	if got, _ := m.TexCoordOf(0, 0); got != math3d.V2i(32, 8) {
		t.Errorf("TexCoordOf = %v, want (32, 8)", got)
	}
	// u = 1 lands on the last column, not past it.
	if got, _ := m.TexCoordOf(0, 1); got != math3d.V2i(63, 31) {
		t.Errorf("TexCoordOf(1,1) = %v, want (63, 31)", got)
	}
}

func TestSampleDiffuse(t *testing.T) {
	m := mustParse(t, "v 0 0 0\n")

	if c := m.SampleDiffuse(math3d.V2i(3, 4)); c != tga.ZeroColor(3) {
		t.Errorf("unbound sample = %v", c)
	}

	m.BindTextureImage(texture(t, 8, 8))
	c := m.SampleDiffuse(math3d.V2i(3, 4))
	if c.R() != 3 || c.G() != 4 || c.B() != 7 || c.Bpp != 3 {
		t.Errorf("sample = %v", c)
	}
	if c := m.SampleDiffuse(math3d.V2i(8, 0)); c != tga.ZeroColor(3) {
		t.Errorf("outside sample = %v", c)
	}

	m.BindTextureImage(nil)
	if m.HasTexture() {
		t.Error("nil binding should unbind")
	}
}

func TestTriangulate(t *testing.T) {
	m := mustParse(t, quadOBJ+"f 1 2\nf 1 2 3\n")
	tri := m.Triangulate()

	if tri.FaceCount() != 3 {
		t.Fatalf("FaceCount = %d, want 3", tri.FaceCount())
	}
	want := [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 1, 2}}
	for i, w := range want {
		f, _ := tri.Face(i)
		if len(f) != 3 || f[0].Vertex != w[0] || f[1].Vertex != w[1] || f[2].Vertex != w[2] {
			t.Errorf("face %d = %+v, want vertices %v", i, f, w)
		}
	}
	if m.FaceCount() != 3 {
		t.Error("Triangulate should not modify the receiver")
	}
}

func TestBoundsAndFit(t *testing.T) {
	m := mustParse(t, "v 1 2 3\nv 5 4 3\nv 3 3 7\n")

	lo, hi := m.Bounds()
	if lo != math3d.V3(1, 2, 3) || hi != math3d.V3(5, 4, 7) {
		t.Errorf("Bounds = %v %v", lo, hi)
	}
	if c := m.Center(); c != math3d.V3(3, 3, 5) {
		t.Errorf("Center = %v", c)
	}

	fit := m.Fit()
	lo, hi = fit.Bounds()
	if lo.X != -1 || hi.X != 1 || lo.Z != -1 || hi.Z != 1 {
		t.Errorf("Fit bounds = %v %v", lo, hi)
	}
	if math.Abs(hi.Y-0.5) > 1e-12 {
		t.Errorf("Fit should scale uniformly, got Y max %v", hi.Y)
	}
	if v, _ := m.Vertex(0); v != math3d.V3(1, 2, 3) {
		t.Error("Fit should not modify the receiver")
	}

	var empty Model
	if lo, hi := empty.Bounds(); lo != (math3d.Vec3f{}) || hi != (math3d.Vec3f{}) {
		t.Errorf("empty Bounds = %v %v", lo, hi)
	}
}

func TestGenerateNormals(t *testing.T) {
	m := mustParse(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	m.GenerateNormals()

	for c := range 3 {
		n, err := m.NormalOf(0, c)
		if err != nil {
			t.Fatal(err)
		}
		if n != math3d.V3(0, 0, 1) {
			t.Errorf("corner %d normal = %v, want (0, 0, 1)", c, n)
		}
	}
}

func TestGenerateNormalsOnFitCopy(t *testing.T) {
	m := mustParse(t, "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n")
	fit := m.Fit()
	fit.GenerateNormals()

	if m.NormalCount() != 0 {
		t.Errorf("original NormalCount = %d, want 0", m.NormalCount())
	}
	f, err := m.Face(0)
	if err != nil {
		t.Fatal(err)
	}
	for c := range 3 {
		if f[c].Normal != -1 {
			t.Errorf("original corner %d = %+v, want no normal", c, f[c])
		}
		if n, err := m.NormalOf(0, c); err != nil || n != (math3d.Vec3f{}) {
			t.Errorf("original NormalOf(0, %d) = %v, %v", c, n, err)
		}
		if n, err := fit.NormalOf(0, c); err != nil || n != math3d.V3(0, 0, 1) {
			t.Errorf("fit NormalOf(0, %d) = %v, %v", c, n, err)
		}
	}
}

func TestDefaultTexturePath(t *testing.T) {
	tests := map[string]string{
		"obj/african_head.obj": "obj/african_head_diffuse.tga",
		"head":                 "head_diffuse.tga",
		"a.b/model.glb":        "a.b/model_diffuse.tga",
	}
	for in, want := range tests {
		if got := DefaultTexturePath(in); got != want {
			t.Errorf("DefaultTexturePath(%q) = %q, want %q", in, got, want)
		}
	}
}
