package model

import (
	vm "shuriken/vector_math"
)

const (
	ShurikenHalfSize    = 0.3
	ShurikenBladeLength = 0.5
	// ShurikenVertexCount is one square (2 triangles) plus four blades.
	ShurikenVertexCount = 18
)

var (
	SquareColor    = vm.Vec3{X: 1.0, Y: 0.4, Z: 0.7}
	BladeBaseColor = vm.Vec3{X: 1.0, Y: 0.5, Z: 0.75}
	BladeTipColor  = vm.Vec3{X: 1.0, Y: 0.95, Z: 0.98}
)

// NewShuriken builds the four-pointed star: a centered square and one triangular blade on each of its edges.
// Texture coordinates span [0,1] over the square and reach half a unit past it at the blade tips.
func NewShuriken(layout Layout) *Mesh {
	s := float32(ShurikenHalfSize)

	bl := vm.Vec3{X: -s, Y: -s}
	br := vm.Vec3{X: s, Y: -s}
	tl := vm.Vec3{X: -s, Y: s}
	tr := vm.Vec3{X: s, Y: s}

	square := func(p vm.Vec3) Vertex {
		return Vertex{Pos: p, Color: SquareColor, TexCoord: cornerUV(p)}
	}
	v := []Vertex{
		square(bl), square(br), square(tl),
		square(br), square(tr), square(tl),
	}

	// top, bottom, right, left
	edges := [][2]vm.Vec3{{tl, tr}, {bl, br}, {br, tr}, {bl, tl}}
	for _, e := range edges {
		a, b := e[0], e[1]
		v = append(v,
			Vertex{Pos: a, Color: BladeBaseColor, TexCoord: cornerUV(a)},
			Vertex{Pos: b, Color: BladeBaseColor, TexCoord: cornerUV(b)},
			bladeTip(a, b),
		)
	}
	return NewMesh("shuriken", layout, v)
}

// bladeTip extends the midpoint of the square edge a-b outward by the blade length. The edge midpoint lies at
// distance ShurikenHalfSize from the center, so scaling it gives the outward direction.
func bladeTip(a, b vm.Vec3) Vertex {
	mid := a.Add(b.Sub(a).ScalarMul(0.5))
	out := mid.ScalarMul(1 / float32(ShurikenHalfSize))
	midUV := cornerUV(a).Add(cornerUV(b)).ScalarMul(0.5)
	return Vertex{
		Pos:      mid.Add(out.ScalarMul(ShurikenBladeLength)),
		Color:    BladeTipColor,
		TexCoord: midUV.Add(out.XY().ScalarMul(0.5)),
	}
}

// cornerUV maps a square corner to the matching texture corner.
func cornerUV(p vm.Vec3) vm.Vec2 {
	uv := vm.Vec2{}
	if p.X > 0 {
		uv.X = 1
	}
	if p.Y > 0 {
		uv.Y = 1
	}
	return uv
}
