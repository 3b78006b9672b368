package render

import (
	"math"

	"github.com/taigrr/tinyraster/pkg/math3d"
)

// Camera looks from Eye toward Center with Up as the vertical hint.
type Camera struct {
	Eye    math3d.Vec3f
	Center math3d.Vec3f
	Up     math3d.Vec3f
}

// NewCamera returns a camera looking at the origin from (1, 1, 3).
func NewCamera() Camera {
	return Camera{
		Eye:    math3d.V3(1, 1, 3),
		Center: math3d.V3(0, 0, 0),
		Up:     math3d.V3(0, 1, 0),
	}
}

// Distance returns the distance from eye to center.
func (c Camera) Distance() float64 {
	return c.Eye.Sub(c.Center).Norm()
}

// ViewMatrix returns the model-view matrix. It fails when the eye sits on
// the center or the up vector is parallel to the view direction.
func (c Camera) ViewMatrix() (math3d.Matrix, error) {
	return math3d.LookAt(c.Eye, c.Center, c.Up)
}

// ProjectionMatrix returns the perspective matrix for the camera distance.
func (c Camera) ProjectionMatrix() math3d.Matrix {
	return math3d.Projection(c.Distance())
}

// Orbit returns the camera rotated around the vertical axis through Center
// by angle radians. Height and distance are kept.
func (c Camera) Orbit(angle float64) Camera {
	offset := c.Eye.Sub(c.Center)
	sin, cos := math.Sin(angle), math.Cos(angle)
	offset = math3d.V3(
		offset.X*cos+offset.Z*sin,
		offset.Y,
		-offset.X*sin+offset.Z*cos,
	)
	c.Eye = c.Center.Add(offset)
	return c
}

// Azimuth returns the angle of the eye around the vertical axis, measured
// from +Z toward +X.
func (c Camera) Azimuth() float64 {
	offset := c.Eye.Sub(c.Center)
	return math.Atan2(offset.X, offset.Z)
}
