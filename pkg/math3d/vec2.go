package math3d

import "fmt"

// Vec2 is a two component vector, used for screen positions and texture coordinates.
type Vec2[T Number] struct {
	X, Y T
}

type (
	Vec2f = Vec2[float64]
	Vec2i = Vec2[int]
)

// V2 creates a new floating point Vec2.
func V2(x, y float64) Vec2f {
	return Vec2f{x, y}
}

// V2i creates a new integer Vec2.
func V2i(x, y int) Vec2i {
	return Vec2i{x, y}
}

// Get returns the component at index i (0=X, 1=Y).
func (a Vec2[T]) Get(i int) T {
	switch i {
	case 0:
		return a.X
	case 1:
		return a.Y
	}
	panic(fmt.Sprintf("math3d: Vec2 index %d out of range", i))
}

// Set sets the component at index i.
func (a *Vec2[T]) Set(i int, v T) {
	switch i {
	case 0:
		a.X = v
	case 1:
		a.Y = v
	default:
		panic(fmt.Sprintf("math3d: Vec2 index %d out of range", i))
	}
}

// Add returns the vector sum.
//
//nolint:st1016 // a+b naming convention is clearer for vector operations
func (a Vec2[T]) Add(b Vec2[T]) Vec2[T] {
	return Vec2[T]{a.X + b.X, a.Y + b.Y}
}

// Sub returns the vector difference.
//
//nolint:st1016 // a-b naming convention is clearer for vector operations
func (a Vec2[T]) Sub(b Vec2[T]) Vec2[T] {
	return Vec2[T]{a.X - b.X, a.Y - b.Y}
}

// Scale returns the scalar product.
func (a Vec2[T]) Scale(s T) Vec2[T] {
	return Vec2[T]{a.X * s, a.Y * s}
}

// ScaleF multiplies by a floating point factor, truncating for integer vectors.
func (a Vec2[T]) ScaleF(s float64) Vec2[T] {
	return Vec2[T]{T(float64(a.X) * s), T(float64(a.Y) * s)}
}

// Float converts the vector to float64 components.
func (a Vec2[T]) Float() Vec2f {
	return Vec2f{float64(a.X), float64(a.Y)}
}

// Int converts the vector to int components, truncating toward zero.
func (a Vec2[T]) Int() Vec2i {
	return Vec2i{int(a.X), int(a.Y)}
}

func (a Vec2[T]) String() string {
	return fmt.Sprintf("(%v, %v)", a.X, a.Y)
}
