package vector_math

import "math"

// RotationZ builds the rotation about the z-axis by theta radians. In column-major order:
//
//	column 0 = [ cos, sin, 0, 0]
//	column 1 = [-sin, cos, 0, 0]
//	column 2 = [   0,   0, 1, 0]
//	column 3 = [   0,   0, 0, 1]
//
// The result only depends on theta.
func RotationZ(theta float64) Mat4 {
	s, c := math.Sincos(theta)
	m := NewIdentity()
	m[0][0] = float32(c)
	m[0][1] = float32(s)
	m[1][0] = float32(-s)
	m[1][1] = float32(c)
	return m
}

// Angle is a rotation in radians, kept inside [0, 2π).
type Angle float64

// Step advances the angle by delta and wraps the result back into [0, 2π).
func (a Angle) Step(delta float64) Angle {
	return Angle(WrapAngle(float64(a) + delta))
}

func (a Angle) Radians() float64 {
	return float64(a)
}

func (a Angle) Transform() Mat4 {
	return RotationZ(float64(a))
}
