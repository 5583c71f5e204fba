package vector_math

import (
	"encoding/binary"
	"math"
	"testing"
)

// TestBytesColumnMajor confirms Bytes lays out the matrix column after column
func TestBytesColumnMajor(t *testing.T) {
	m := RotationZ(ToRad(30))
	b := m.Bytes()
	if len(b) != Mat4ByteSize {
		t.Fatalf("expected %d bytes, got %d", Mat4ByteSize, len(b))
	}
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			off := (c*4 + r) * 4
			f := math.Float32frombits(binary.LittleEndian.Uint32(b[off : off+4]))
			if f != m[c][r] {
				t.Errorf("byte offset %d: expected m[%d][%d]=%v, got %v", off, c, r, m[c][r], f)
			}
		}
	}
}

// TestMultComposesRotations confirms R(a)R(b) = R(a+b)
func TestMultComposesRotations(t *testing.T) {
	a := RotationZ(0.4)
	b := RotationZ(1.1)
	ab := a.Mult(&b)
	sum := RotationZ(1.5)
	if !ab.ApproxEquals(&sum, eps) {
		t.Errorf("R(0.4)R(1.1) != R(1.5):\n%s\n%s", ab.ToString(), sum.ToString())
	}
}

func TestTransposeIsInverseRotation(t *testing.T) {
	m := RotationZ(0.7)
	mT := m.Transpose()
	inv := RotationZ(-0.7)
	if !mT.ApproxEquals(&inv, eps) {
		t.Errorf("transpose should equal the inverse rotation:\n%s\n%s", mT.ToString(), inv.ToString())
	}
}

func TestToRadToDeg(t *testing.T) {
	if math.Abs(ToRad(180)-math.Pi) > 1e-12 {
		t.Errorf("ToRad(180) = %v", ToRad(180))
	}
	if math.Abs(ToDeg(math.Pi/2)-90) > 1e-12 {
		t.Errorf("ToDeg(π/2) = %v", ToDeg(math.Pi/2))
	}
}
