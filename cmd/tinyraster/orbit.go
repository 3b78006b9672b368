package main

import (
	"math"

	"github.com/charmbracelet/harmonica"
)

// orbitAxis tracks an angle and its velocity. A critically damped spring
// pulls the velocity back to zero so spins coast to a stop.
type orbitAxis struct {
	Position  float64
	Velocity  float64
	velSpring harmonica.Spring
	velAccel  float64
}

func newOrbitAxis(fps int) orbitAxis {
	return orbitAxis{
		velSpring: harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0),
	}
}

// Update advances one frame.
func (a *orbitAxis) Update() {
	a.Position += a.Velocity
	a.Velocity, a.velAccel = a.velSpring.Update(a.Velocity, a.velAccel, 0)
}

// Impulse adds to the current velocity.
func (a *orbitAxis) Impulse(v float64) {
	a.Velocity += v
}

// turntable returns the camera angle of each frame of a full revolution.
// The angle follows a spring released toward the last step before 2π, so
// the motion eases in and a looped sequence never repeats frame 0.
func turntable(frames int) []float64 {
	if frames <= 1 {
		return []float64{0}
	}
	turn := 2 * math.Pi * float64(frames-1) / float64(frames)
	spring := harmonica.NewSpring(harmonica.FPS(frames-1), 7.0, 1.0)
	angles := make([]float64, frames)
	pos, vel := 0.0, 0.0
	for i := 1; i < frames; i++ {
		pos, vel = spring.Update(pos, vel, turn)
		angles[i] = pos
	}
	return angles
}
