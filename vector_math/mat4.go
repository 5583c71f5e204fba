package vector_math

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	lin "github.com/xlab/linmath"
)

// Mat4 is a 4x4 float32 matrix stored column-major, m[col][row], which is the memory order GLSL expects for a
// mat4 inside a std140 uniform block. The storage is shared with linmath so its routines can operate on it.
type Mat4 lin.Mat4x4

const Mat4ByteSize = 4 * 4 * 4

func NewIdentity() Mat4 {
	var m lin.Mat4x4
	m.Identity()
	return Mat4(m)
}

// At returns the element in the given row and column.
func (m *Mat4) At(row, col int) float32 {
	return m[col][row]
}

// Mult returns m*b.
func (m *Mat4) Mult(b *Mat4) Mat4 {
	var res lin.Mat4x4
	a := lin.Mat4x4(*m)
	bb := lin.Mat4x4(*b)
	res.Mult(&a, &bb)
	return Mat4(res)
}

func (m *Mat4) Transpose() Mat4 {
	var mT Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			mT[r][c] = m[c][r]
		}
	}
	return mT
}

// ApproxEquals compares element-wise with an absolute tolerance.
func (m *Mat4) ApproxEquals(b *Mat4, eps float64) bool {
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			if math.Abs(float64(m[c][r]-b[c][r])) > eps {
				return false
			}
		}
	}
	return true
}

// Det2 is the determinant of the upper left 2x2 block.
func (m *Mat4) Det2() float64 {
	return float64(m[0][0])*float64(m[1][1]) - float64(m[1][0])*float64(m[0][1])
}

// Bytes returns the column-major little endian representation used for uniform uploads.
func (m *Mat4) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, Mat4ByteSize))
	// writing a fixed size float32 array into a bytes.Buffer cannot fail
	_ = binary.Write(buf, binary.LittleEndian, lin.Mat4x4(*m))
	return buf.Bytes()
}

// ToString prints the matrix row by row.
func (m *Mat4) ToString() string {
	mStr := strings.Builder{}
	for r := 0; r < 4; r++ {
		if r > 0 {
			mStr.WriteString("\n")
		}
		mStr.WriteString(fmt.Sprintf("[%v %v %v %v]", m[0][r], m[1][r], m[2][r], m[3][r]))
	}
	return mStr.String()
}
