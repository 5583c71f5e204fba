package vector_math

import (
	"math"
	"testing"
)

const eps = 1e-6

var sampleAngles = []float64{0, 0.002, 0.5, 1, math.Pi / 2, math.Pi, 3.9, 3 * math.Pi / 2, TwoPi - 0.001}

// TestRotationZIdentity calls RotationZ(0) and confirms the identity matrix is returned
func TestRotationZIdentity(t *testing.T) {
	m := RotationZ(0)
	id := NewIdentity()
	if !m.ApproxEquals(&id, eps) {
		t.Errorf("RotationZ(0) should be identity, got:\n%s", m.ToString())
	}
}

// TestRotationZQuarterTurn confirms the sign placement of the 2x2 block at θ = π/2
func TestRotationZQuarterTurn(t *testing.T) {
	m := RotationZ(math.Pi / 2)
	// column 0 = [cos, sin], column 1 = [-sin, cos]
	expected := [2][2]float32{{0, 1}, {-1, 0}}
	for c := 0; c < 2; c++ {
		for r := 0; r < 2; r++ {
			if math.Abs(float64(m[c][r]-expected[c][r])) > eps {
				t.Errorf("m[%d][%d] = %v, expected %v\n%s", c, r, m[c][r], expected[c][r], m.ToString())
			}
		}
	}
	// a point on the x-axis goes to the y-axis
	x := m[0][0]*1 + m[1][0]*0
	y := m[0][1]*1 + m[1][1]*0
	if math.Abs(float64(x)) > eps || math.Abs(float64(y-1)) > eps {
		t.Errorf("(1,0) rotated by π/2 should be (0,1), got (%v,%v)", x, y)
	}
}

// TestRotationZOrthogonal confirms MᵗM = I and det = 1 for a range of angles
func TestRotationZOrthogonal(t *testing.T) {
	id := NewIdentity()
	for _, theta := range sampleAngles {
		m := RotationZ(theta)
		mT := m.Transpose()
		p := mT.Mult(&m)
		if !p.ApproxEquals(&id, eps) {
			t.Errorf("MᵗM != I for θ=%v:\n%s", theta, p.ToString())
		}
		if d := m.Det2(); math.Abs(d-1) > eps {
			t.Errorf("det should be 1 for θ=%v, got %v", theta, d)
		}
	}
}

// TestRotationZFixedBlock confirms the z and w rows and columns never change
func TestRotationZFixedBlock(t *testing.T) {
	for _, theta := range sampleAngles {
		m := RotationZ(theta)
		for i := 0; i < 4; i++ {
			for _, j := range []int{2, 3} {
				want := float32(0)
				if i == j {
					want = 1
				}
				if m.At(i, j) != want || m.At(j, i) != want {
					t.Errorf("θ=%v: row/column %d should be identity, got:\n%s", theta, j, m.ToString())
				}
			}
		}
	}
}

// TestRotationZPeriodic confirms M(θ) ≈ M(θ-2π)
func TestRotationZPeriodic(t *testing.T) {
	for _, theta := range sampleAngles {
		a := RotationZ(theta + TwoPi)
		b := RotationZ(theta)
		if !a.ApproxEquals(&b, 1e-5) {
			t.Errorf("θ=%v: rotation is not 2π periodic", theta)
		}
	}
}

// TestRotationZIdempotent calls RotationZ twice with the same input and expects identical output
func TestRotationZIdempotent(t *testing.T) {
	for _, theta := range sampleAngles {
		if RotationZ(theta) != RotationZ(theta) {
			t.Errorf("θ=%v: RotationZ is not deterministic", theta)
		}
	}
}

// TestAngleStepWraps steps past 2π and expects the result to land back in [0, 2π)
func TestAngleStepWraps(t *testing.T) {
	a := Angle(TwoPi - 0.001)
	a = a.Step(0.002)
	if a.Radians() < 0 || a.Radians() >= TwoPi {
		t.Fatalf("angle out of range: %v", a)
	}
	if math.Abs(a.Radians()-0.001) > 1e-9 {
		t.Errorf("expected ≈0.001 after wrap, got %v", a.Radians())
	}

	// the wrapped transform matches the unwrapped one
	unwrapped := RotationZ(TwoPi + 0.001)
	wrapped := a.Transform()
	if !wrapped.ApproxEquals(&unwrapped, 1e-5) {
		t.Errorf("wrapped transform differs:\n%s\n%s", wrapped.ToString(), unwrapped.ToString())
	}
}

// TestAngleStepAccumulates steps many frames and checks the range invariant holds throughout
func TestAngleStepAccumulates(t *testing.T) {
	var a Angle
	for i := 0; i < 10000; i++ {
		a = a.Step(0.002)
		if a < 0 || float64(a) >= TwoPi {
			t.Fatalf("frame %d: angle out of range: %v", i, a)
		}
	}
	want := WrapAngle(10000 * 0.002)
	if math.Abs(a.Radians()-want) > 1e-6 {
		t.Errorf("expected %v after 10000 steps, got %v", want, a.Radians())
	}
}

func TestWrapAngle(t *testing.T) {
	cases := map[float64]float64{
		0:              0,
		TwoPi:          0,
		-math.Pi / 2:   3 * math.Pi / 2,
		5 * math.Pi:    math.Pi,
		-4 * math.Pi:   0,
		math.Pi + 0.25: math.Pi + 0.25,
	}
	for in, want := range cases {
		if got := WrapAngle(in); math.Abs(got-want) > 1e-9 {
			t.Errorf("WrapAngle(%v) = %v, expected %v", in, got, want)
		}
	}
}
