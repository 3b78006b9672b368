package math3d

import (
	"errors"
	"math"
	"strings"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestIdentity(t *testing.T) {
	m := Identity(3)
	for row := range 3 {
		for col := range 3 {
			want := 0.0
			if row == col {
				want = 1
			}
			if m.At(row, col) != want {
				t.Errorf("Identity[%d][%d] = %v, want %v", row, col, m.At(row, col), want)
			}
		}
	}
}

func TestMatrixMul(t *testing.T) {
	a := NewMatrix(2, 3)
	b := NewMatrix(3, 2)
	// a = |1 2 3|   b = | 7  8|
	//     |4 5 6|       | 9 10|
	//                   |11 12|
	for i, v := range []float64{1, 2, 3, 4, 5, 6} {
		a.Set(i/3, i%3, v)
	}
	for i, v := range []float64{7, 8, 9, 10, 11, 12} {
		b.Set(i/2, i%2, v)
	}

	c := a.Mul(b)
	if c.Rows() != 2 || c.Cols() != 2 {
		t.Fatalf("shape = %dx%d, want 2x2", c.Rows(), c.Cols())
	}
	want := [][]float64{{58, 64}, {139, 154}}
	for row := range 2 {
		for col := range 2 {
			if c.At(row, col) != want[row][col] {
				t.Errorf("c[%d][%d] = %v, want %v", row, col, c.At(row, col), want[row][col])
			}
		}
	}
}

func TestMatrixMulShapeMismatch(t *testing.T) {
	a := NewMatrix(2, 3)
	b := NewMatrix(2, 3)

	if _, err := a.TryMul(b); !errors.Is(err, ErrShape) {
		t.Errorf("TryMul error = %v, want ErrShape", err)
	}

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrShape) {
			t.Errorf("Mul panic = %v, want ErrShape", r)
		}
	}()
	_ = a.Mul(b)
}

func TestMatrixIdentityMulIsNoop(t *testing.T) {
	v := Viewport(10, 20, 300, 400)
	got := Identity(4).Mul(v)
	for row := range 4 {
		for col := range 4 {
			if got.At(row, col) != v.At(row, col) {
				t.Fatalf("I*V differs at (%d,%d)", row, col)
			}
		}
	}
}

func TestViewport(t *testing.T) {
	m := Viewport(10, 20, 200, 100)

	checks := []struct {
		row, col int
		want     float64
	}{
		{0, 3, 110}, // x + w/2
		{1, 3, 70},  // y + h/2
		{2, 3, 127.5},
		{0, 0, 100},
		{1, 1, 50},
		{2, 2, 127.5},
		{3, 3, 1},
	}
	for _, c := range checks {
		if got := m.At(c.row, c.col); got != c.want {
			t.Errorf("Viewport[%d][%d] = %v, want %v", c.row, c.col, got, c.want)
		}
	}

	// The corners of the NDC cube land on the rectangle corners.
	lo, err := m.MulVec3(V3(-1, -1, -1))
	if err != nil {
		t.Fatal(err)
	}
	hi, err := m.MulVec3(V3(1, 1, 1))
	if err != nil {
		t.Fatal(err)
	}
	if lo != V3(10, 20, 0) || hi != V3(210, 120, 255) {
		t.Errorf("cube corners map to %v and %v", lo, hi)
	}
}

func TestHomogeneousRoundTrip(t *testing.T) {
	v := V3(1.5, -2, 7)
	got, err := FromVec3(v).ToVec3()
	if err != nil {
		t.Fatal(err)
	}
	if got != v {
		t.Errorf("round trip = %v, want %v", got, v)
	}

	col := FromVec3(v)
	col.Set(3, 0, 2)
	got, _ = col.ToVec3()
	if got != V3(0.75, -1, 3.5) {
		t.Errorf("divide by w=2 gives %v", got)
	}

	col.Set(3, 0, 0)
	if _, err := col.ToVec3(); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("w=0 error = %v, want ErrDivideByZero", err)
	}

	if _, err := Identity(4).ToVec3(); !errors.Is(err, ErrShape) {
		t.Errorf("4x4 ToVec3 error = %v, want ErrShape", err)
	}
}

func TestProjection(t *testing.T) {
	p := Projection(4)
	if p.At(3, 2) != -0.25 {
		t.Errorf("Projection[3][2] = %v, want -0.25", p.At(3, 2))
	}

	// A point at z=0 is unaffected; points nearer the camera grow.
	got, _ := p.MulVec3(V3(1, 1, 0))
	if got != V3(1, 1, 0) {
		t.Errorf("z=0 projects to %v", got)
	}
	near, _ := p.MulVec3(V3(1, 1, 2))
	if !almostEqual(near.X, 2) || !almostEqual(near.Y, 2) {
		t.Errorf("z=2 projects to %v, want x=y=2", near)
	}

	// A point on the camera plane produces w=0.
	if _, err := p.MulVec3(V3(1, 1, 4)); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("camera plane error = %v, want ErrDivideByZero", err)
	}

	if Projection(0).At(3, 2) != 0 {
		t.Error("Projection(0) should be the identity")
	}
}

func TestZoom(t *testing.T) {
	got, err := Zoom(2).MulVec3(V3(1, -2, 3))
	if err != nil {
		t.Fatal(err)
	}
	if got != V3(2, -4, 6) {
		t.Errorf("Zoom(2) = %v", got)
	}
}

func TestLookAt(t *testing.T) {
	// Looking down -Z from +Z is the identity rotation.
	m, err := LookAt(V3(0, 0, 3), V3(0, 0, 0), V3(0, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	p, _ := m.MulVec3(V3(1, 2, 3))
	if !almostEqual(p.X, 1) || !almostEqual(p.Y, 2) || !almostEqual(p.Z, 3) {
		t.Errorf("LookAt identity case maps to %v", p)
	}

	// The center moves to the origin.
	m, err = LookAt(V3(1, 1, 3), V3(0.5, 0, 0), V3(0, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	c, _ := m.MulVec3(V3(0.5, 0, 0))
	if !almostEqual(c.Norm(), 0) {
		t.Errorf("center maps to %v, want origin", c)
	}

	if _, err := LookAt(V3(1, 1, 1), V3(1, 1, 1), V3(0, 1, 0)); !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("eye == center error = %v", err)
	}
	if _, err := LookAt(V3(0, 5, 0), V3(0, 0, 0), V3(0, 1, 0)); !errors.Is(err, ErrDegenerateVector) {
		t.Errorf("up parallel to view axis error = %v", err)
	}
}

func TestRotateYAndTranslate(t *testing.T) {
	got, _ := RotateY(math.Pi / 2).MulVec3(V3(1, 0, 0))
	if !almostEqual(got.X, 0) || !almostEqual(got.Z, -1) {
		t.Errorf("RotateY(90) of +X = %v, want (0, 0, -1)", got)
	}

	got, _ = Translate(V3(1, 2, 3)).Mul(Scale(V3(2, 2, 2))).MulVec3(V3(1, 1, 1))
	if got != V3(3, 4, 5) {
		t.Errorf("T*S = %v, want (3, 4, 5)", got)
	}
}

func TestTranspose(t *testing.T) {
	m := NewMatrix(2, 3)
	m.Set(0, 2, 5)
	tr := m.Transpose()
	if tr.Rows() != 3 || tr.Cols() != 2 || tr.At(2, 0) != 5 {
		t.Errorf("Transpose = %v", tr)
	}
}

func TestMatrixString(t *testing.T) {
	s := Identity(2).String()
	want := "| 1.000 0.000 |\n| 0.000 1.000 |\n"
	if s != want {
		t.Errorf("String = %q, want %q", s, want)
	}
	if !strings.Contains(Viewport(0, 0, 10, 10).String(), "127.500") {
		t.Error("Viewport string should show the depth scale")
	}
}
