package vector_math

import "math"

const TwoPi = 2 * math.Pi

// ToRad is a helper function to turn degree to radians
func ToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// ToDeg is a helper function to turn radians to degree
func ToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// WrapAngle maps any finite angle into [0, 2π).
func WrapAngle(rad float64) float64 {
	w := math.Mod(rad, TwoPi)
	if w < 0 {
		w += TwoPi
	}
	// math.Mod of a tiny negative value plus 2π can round up to exactly 2π
	if w >= TwoPi {
		w = 0
	}
	return w
}
