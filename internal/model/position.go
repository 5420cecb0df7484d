package model

import "math"

// Position is a point in world space. RotZ is the facing angle in degrees.
// Value type, passed by value.
type Position struct {
	X    float32
	Y    float32
	Z    float32
	RotZ float32
}

// NewPosition creates a Position with the given coordinates and rotation.
func NewPosition(x, y, z, rotZ float32) Position {
	return Position{X: x, Y: y, Z: z, RotZ: rotZ}
}

// WithRotation returns a copy with an updated facing angle.
func (p Position) WithRotation(rotZ float32) Position {
	p.RotZ = rotZ
	return p
}

// PlanarDistance returns the distance to other in the XY plane.
// Z is ignored: wander and separation checks operate on the ground layer.
func (p Position) PlanarDistance(other Position) float64 {
	dx := float64(other.X - p.X)
	dy := float64(other.Y - p.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// HeadingTo returns the angle from p toward other in degrees, normalized to [0, 360).
func (p Position) HeadingTo(other Position) float64 {
	deg := math.Atan2(float64(other.Y-p.Y), float64(other.X-p.X)) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}
