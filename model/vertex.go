package model

import (
	vm "shuriken/vector_math"
)

// Vertex is the CPU side representation of one interleaved vertex record. Depending on the Layout only a prefix
// of the fields ends up in device memory.
type Vertex struct {
	Pos      vm.Vec3 // location = 0
	Color    vm.Vec3 // location = 1
	TexCoord vm.Vec2 // location = 2, textured layout only
}

// Layout selects which vertex attributes are uploaded.
type Layout int

const (
	// LayoutColor is position:3 followed by color:3.
	LayoutColor Layout = iota
	// LayoutTextured is position:3, color:3 followed by texcoord:2.
	LayoutTextured
)

// Attribute describes where one shader input lives inside a vertex record.
type Attribute struct {
	Location   uint32
	Components uint32
	Offset     uint32
}

const floatSize = 4

// Stride is the size of one vertex record in bytes.
func (l Layout) Stride() uint32 {
	if l == LayoutTextured {
		return 8 * floatSize
	}
	return 6 * floatSize
}

func (l Layout) Attributes() []Attribute {
	attrs := []Attribute{
		{Location: 0, Components: 3, Offset: 0},
		{Location: 1, Components: 3, Offset: 3 * floatSize},
	}
	if l == LayoutTextured {
		attrs = append(attrs, Attribute{Location: 2, Components: 2, Offset: 6 * floatSize})
	}
	return attrs
}

func (l Layout) String() string {
	if l == LayoutTextured {
		return "position+color+texcoord"
	}
	return "position+color"
}

func (l Layout) floats(v Vertex) []float32 {
	f := []float32{v.Pos.X, v.Pos.Y, v.Pos.Z, v.Color.X, v.Color.Y, v.Color.Z}
	if l == LayoutTextured {
		f = append(f, v.TexCoord.X, v.TexCoord.Y)
	}
	return f
}
