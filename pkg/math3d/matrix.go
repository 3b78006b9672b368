package math3d

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrShape is the panic value (and TryMul error) for incompatible matrix shapes.
	ErrShape = errors.New("math3d: matrix dimension mismatch")
	// ErrDivideByZero is returned by ToVec3 when the homogeneous w component is zero.
	ErrDivideByZero = errors.New("math3d: homogeneous divide by zero")
)

// DepthRange is the depth interval the viewport transform maps [-1,1] onto.
const DepthRange = 255.0

// Matrix is a rows x cols matrix stored in row-major order.
//
// Memory layout for a 4x4 matrix (indices):
// | 0  1  2  3  |
// | 4  5  6  7  |
// | 8  9  10 11 |
// | 12 13 14 15 |
type Matrix struct {
	rows, cols int
	m          []float64
}

// NewMatrix returns a zero-filled rows x cols matrix.
func NewMatrix(rows, cols int) Matrix {
	if rows <= 0 || cols <= 0 {
		panic(fmt.Errorf("%w: %dx%d", ErrShape, rows, cols))
	}
	return Matrix{rows: rows, cols: cols, m: make([]float64, rows*cols)}
}

// Identity returns the n x n identity matrix.
func Identity(n int) Matrix {
	m := NewMatrix(n, n)
	for i := range n {
		m.m[i*n+i] = 1
	}
	return m
}

// FromVec3 builds the 4x1 homogeneous column for point v (w=1).
func FromVec3(v Vec3f) Matrix {
	m := NewMatrix(4, 1)
	m.m[0], m.m[1], m.m[2], m.m[3] = v.X, v.Y, v.Z, 1
	return m
}

// Viewport maps the [-1,1] cube onto the pixel rectangle (x, y, w, h) and
// the depth interval [0, DepthRange].
func Viewport(x, y, w, h int) Matrix {
	m := Identity(4)
	m.Set(0, 3, float64(x)+float64(w)/2)
	m.Set(1, 3, float64(y)+float64(h)/2)
	m.Set(2, 3, DepthRange/2)

	m.Set(0, 0, float64(w)/2)
	m.Set(1, 1, float64(h)/2)
	m.Set(2, 2, DepthRange/2)
	return m
}

// Zoom returns a uniform scale of the x, y and z axes by factor.
func Zoom(factor float64) Matrix {
	m := Identity(4)
	m.Set(0, 0, factor)
	m.Set(1, 1, factor)
	m.Set(2, 2, factor)
	return m
}

// Projection returns the simple central projection for a camera placed
// distance units from the origin along the view axis. A zero distance
// yields the identity (orthographic).
func Projection(distance float64) Matrix {
	m := Identity(4)
	if distance != 0 {
		m.Set(3, 2, -1/distance)
	}
	return m
}

// Translate creates a translation matrix.
func Translate(v Vec3f) Matrix {
	m := Identity(4)
	m.Set(0, 3, v.X)
	m.Set(1, 3, v.Y)
	m.Set(2, 3, v.Z)
	return m
}

// Scale creates a scaling matrix.
func Scale(v Vec3f) Matrix {
	m := Identity(4)
	m.Set(0, 0, v.X)
	m.Set(1, 1, v.Y)
	m.Set(2, 2, v.Z)
	return m
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Matrix {
	c, s := math.Cos(angle), math.Sin(angle)
	m := Identity(4)
	m.Set(0, 0, c)
	m.Set(0, 2, s)
	m.Set(2, 0, -s)
	m.Set(2, 2, c)
	return m
}

// LookAt creates a model-view matrix looking from eye towards center.
// Degenerate inputs (eye == center, or up parallel to the view axis)
// are reported as ErrDegenerateVector.
func LookAt(eye, center, up Vec3f) (Matrix, error) {
	z, err := eye.Sub(center).Normalize()
	if err != nil {
		return Matrix{}, fmt.Errorf("view axis: %w", err)
	}
	x, err := up.Cross(z).Normalize()
	if err != nil {
		return Matrix{}, fmt.Errorf("up vector: %w", err)
	}
	y, err := z.Cross(x).Normalize()
	if err != nil {
		return Matrix{}, fmt.Errorf("up vector: %w", err)
	}

	minv := Identity(4)
	tr := Identity(4)
	for i := range 3 {
		minv.Set(0, i, x.Get(i))
		minv.Set(1, i, y.Get(i))
		minv.Set(2, i, z.Get(i))
		tr.Set(i, 3, -center.Get(i))
	}
	return minv.Mul(tr), nil
}

// Rows returns the number of rows.
func (a Matrix) Rows() int { return a.rows }

// Cols returns the number of columns.
func (a Matrix) Cols() int { return a.cols }

// At returns the element at (row, col).
func (a Matrix) At(row, col int) float64 {
	a.check(row, col)
	return a.m[row*a.cols+col]
}

// Set sets the element at (row, col).
func (a Matrix) Set(row, col int, val float64) {
	a.check(row, col)
	a.m[row*a.cols+col] = val
}

func (a Matrix) check(row, col int) {
	if row < 0 || row >= a.rows || col < 0 || col >= a.cols {
		panic(fmt.Sprintf("math3d: index (%d,%d) out of range for %dx%d matrix", row, col, a.rows, a.cols))
	}
}

// Mul multiplies two matrices: a * b. It panics with ErrShape when
// a.Cols() != b.Rows().
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Matrix) Mul(b Matrix) Matrix {
	m, err := a.TryMul(b)
	if err != nil {
		panic(err)
	}
	return m
}

// TryMul is Mul returning the shape mismatch as an error instead of panicking.
func (a Matrix) TryMul(b Matrix) (Matrix, error) {
	if a.cols != b.rows || a.rows == 0 || b.cols == 0 {
		return Matrix{}, fmt.Errorf("%w: %dx%d * %dx%d", ErrShape, a.rows, a.cols, b.rows, b.cols)
	}
	m := NewMatrix(a.rows, b.cols)
	for row := range a.rows {
		for col := range b.cols {
			var sum float64
			for k := range a.cols {
				sum += a.m[row*a.cols+k] * b.m[k*b.cols+col]
			}
			m.m[row*m.cols+col] = sum
		}
	}
	return m, nil
}

// MulVec3 transforms point v through a 4x4 matrix and performs the
// homogeneous divide.
func (a Matrix) MulVec3(v Vec3f) (Vec3f, error) {
	return a.Mul(FromVec3(v)).ToVec3()
}

// ToVec3 converts a 4x1 homogeneous column to a point by dividing the
// first three rows by the fourth.
func (a Matrix) ToVec3() (Vec3f, error) {
	if a.rows != 4 || a.cols != 1 {
		return Vec3f{}, fmt.Errorf("%w: want 4x1, have %dx%d", ErrShape, a.rows, a.cols)
	}
	w := a.m[3]
	if w == 0 {
		return Vec3f{}, ErrDivideByZero
	}
	return Vec3f{a.m[0] / w, a.m[1] / w, a.m[2] / w}, nil
}

// Transpose returns the transposed matrix.
func (a Matrix) Transpose() Matrix {
	t := NewMatrix(a.cols, a.rows)
	for row := range a.rows {
		for col := range a.cols {
			t.m[col*t.cols+row] = a.m[row*a.cols+col]
		}
	}
	return t
}

// String formats the matrix as aligned rows with three decimals.
func (a Matrix) String() string {
	cells := make([]string, len(a.m))
	width := 0
	for i, v := range a.m {
		cells[i] = fmt.Sprintf("%.3f", v)
		width = max(width, len(cells[i]))
	}

	var sb strings.Builder
	for row := range a.rows {
		sb.WriteString("|")
		for col := range a.cols {
			fmt.Fprintf(&sb, " %*s", width, cells[row*a.cols+col])
		}
		sb.WriteString(" |\n")
	}
	return sb.String()
}
