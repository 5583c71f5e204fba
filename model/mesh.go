package model

import (
	"bytes"
	"encoding/binary"
)

// Mesh is a fixed, non-indexed triangle list. It is built once and never modified afterward.
type Mesh struct {
	Name     string
	Layout   Layout
	vertices []Vertex
}

func NewMesh(name string, layout Layout, vertices []Vertex) *Mesh {
	v := make([]Vertex, len(vertices))
	copy(v, vertices)
	return &Mesh{Name: name, Layout: layout, vertices: v}
}

func (m *Mesh) VertexCount() uint32 {
	return uint32(len(m.vertices))
}

func (m *Mesh) TriangleCount() uint32 {
	return m.VertexCount() / 3
}

// Vertices returns a copy of the vertex data.
func (m *Mesh) Vertices() []Vertex {
	v := make([]Vertex, len(m.vertices))
	copy(v, m.vertices)
	return v
}

// ByteSize returns the size required for keeping this mesh in device memory.
func (m *Mesh) ByteSize() int {
	return int(m.Layout.Stride()) * len(m.vertices)
}

// Bytes returns the interleaved little endian vertex records as they are copied into the vertex buffer.
func (m *Mesh) Bytes() []byte {
	buf := bytes.NewBuffer(make([]byte, 0, m.ByteSize()))
	for _, v := range m.vertices {
		// writes into a bytes.Buffer only fail on unsupported types
		_ = binary.Write(buf, binary.LittleEndian, m.Layout.floats(v))
	}
	return buf.Bytes()
}
