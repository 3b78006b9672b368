// Package math3d provides the vector and matrix primitives used by the rasterizer.
package math3d

import (
	"errors"
	"fmt"
	"math"
)

// ErrDegenerateVector is returned when normalizing a zero-length vector.
var ErrDegenerateVector = errors.New("math3d: degenerate (zero-length) vector")

// Number is the set of element types a vector can hold.
type Number interface {
	~int | ~int32 | ~int64 | ~float32 | ~float64
}

// Vec3 is a three component vector.
type Vec3[T Number] struct {
	X, Y, Z T
}

// Common instantiations.
type (
	Vec3f = Vec3[float64]
	Vec3i = Vec3[int]
)

// V3 creates a new floating point Vec3.
func V3(x, y, z float64) Vec3f {
	return Vec3f{x, y, z}
}

// V3i creates a new integer Vec3.
func V3i(x, y, z int) Vec3i {
	return Vec3i{x, y, z}
}

// Get returns the component at index i (0=X, 1=Y, 2=Z).
func (a Vec3[T]) Get(i int) T {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	case 2:
		return a.Z
	}
	panic(fmt.Sprintf("math3d: Vec3 index %d out of range", i))
}

// Set sets the component at index i.
func (a *Vec3[T]) Set(i int, v T) {
	switch i {
	case 0:
		a.X = v
	case 1:
		a.Y = v
	case 2:
		a.Z = v
	default:
		panic(fmt.Sprintf("math3d: Vec3 index %d out of range", i))
	}
}

// Add returns the vector sum a + b.
func (a Vec3[T]) Add(b Vec3[T]) Vec3[T] {
	return Vec3[T]{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Sub returns the vector difference a - b.
func (a Vec3[T]) Sub(b Vec3[T]) Vec3[T] {
	return Vec3[T]{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// Scale returns the scalar product a * s.
func (a Vec3[T]) Scale(s T) Vec3[T] {
	return Vec3[T]{a.X * s, a.Y * s, a.Z * s}
}

// ScaleF multiplies by a floating point factor and converts back to T.
// For integer vectors the result is truncated toward zero.
func (a Vec3[T]) ScaleF(s float64) Vec3[T] {
	return Vec3[T]{
		T(float64(a.X) * s),
		T(float64(a.Y) * s),
		T(float64(a.Z) * s),
	}
}

// Dot returns the dot product a · b.
func (a Vec3[T]) Dot(b Vec3[T]) T {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the right-handed cross product a × b.
func (a Vec3[T]) Cross(b Vec3[T]) Vec3[T] {
	return Vec3[T]{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// Norm returns the Euclidean length, computed in float64 whatever T is.
func (a Vec3[T]) Norm() float64 {
	x, y, z := float64(a.X), float64(a.Y), float64(a.Z)
	return math.Sqrt(x*x + y*y + z*z)
}

// Normalize returns the unit vector in the same direction.
// It fails with ErrDegenerateVector on the zero vector.
func (a Vec3[T]) Normalize() (Vec3f, error) {
	l := a.Norm()
	if l == 0 {
		return Vec3f{}, ErrDegenerateVector
	}
	return Vec3f{float64(a.X) / l, float64(a.Y) / l, float64(a.Z) / l}, nil
}

// Float converts the vector to float64 components.
func (a Vec3[T]) Float() Vec3f {
	return Vec3f{float64(a.X), float64(a.Y), float64(a.Z)}
}

// Int converts the vector to int components, truncating toward zero.
func (a Vec3[T]) Int() Vec3i {
	return Vec3i{int(a.X), int(a.Y), int(a.Z)}
}

// Lerp returns the linear interpolation between a and b by t.
func (a Vec3[T]) Lerp(b Vec3[T], t float64) Vec3[T] {
	return Vec3[T]{
		a.X + T(float64(b.X-a.X)*t),
		a.Y + T(float64(b.Y-a.Y)*t),
		a.Z + T(float64(b.Z-a.Z)*t),
	}
}

// Min returns the component-wise minimum.
func (a Vec3[T]) Min(b Vec3[T]) Vec3[T] {
	return Vec3[T]{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
}

// Max returns the component-wise maximum.
func (a Vec3[T]) Max(b Vec3[T]) Vec3[T] {
	return Vec3[T]{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
}

func (a Vec3[T]) String() string {
	return fmt.Sprintf("(%v, %v, %v)", a.X, a.Y, a.Z)
}
