package model

import (
	vm "shuriken/vector_math"
)

// TransformUBO mirrors the uniform block bound at binding 0 of the vertex shader:
//
//	layout(binding = 0) uniform UBO { mat4 transform; };
type TransformUBO struct {
	Transform vm.Mat4
}

// SizeOfTransformUBO returns the std140 size of the block. A single mat4 needs no padding.
func SizeOfTransformUBO() uint64 {
	return vm.Mat4ByteSize
}

func (u *TransformUBO) Bytes() []byte {
	return u.Transform.Bytes()
}
