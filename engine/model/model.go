package model

import (
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
)

// model is the implementation of the Model interface.
type model struct {
	name     string
	vertices []GPUVertex
	indices  []uint32
	bounds   common.BoundingSphere
}

// Model is an indexed triangle mesh in model space.
// Models are immutable once built and may be shared by many geometry nodes.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Vertices returns the vertex list.
	//
	// Returns:
	//   - []GPUVertex: the vertices (shared, do not modify)
	Vertices() []GPUVertex

	// Indices returns the triangle list indices.
	//
	// Returns:
	//   - []uint32: the indices (shared, do not modify)
	Indices() []uint32

	// IndexCount returns the number of indices.
	IndexCount() int

	// Bounds returns the model-space bounding sphere.
	//
	// Returns:
	//   - common.BoundingSphere: the sphere enclosing every vertex
	Bounds() common.BoundingSphere

	// VertexData returns the vertices serialized for GPU upload.
	//
	// Returns:
	//   - []byte: packed vertex bytes
	VertexData() []byte

	// IndexData returns the indices serialized for GPU upload.
	//
	// Returns:
	//   - []byte: packed little-endian uint32 indices
	IndexData() []byte
}

var _ Model = &model{}

// NewModel creates a Model from the given options. The bounding sphere is computed from the vertices.
//
// Parameters:
//   - name: the model identifier
//   - options: functional options supplying geometry
//
// Returns:
//   - Model: the model
func NewModel(name string, options ...ModelBuilderOption) Model {
	m := &model{name: name}
	for _, opt := range options {
		opt(m)
	}

	positions := make([]float32, 0, len(m.vertices)*3)
	for _, v := range m.vertices {
		positions = append(positions, v.Position[0], v.Position[1], v.Position[2])
	}
	m.bounds = common.BoundingSphereFromPoints(positions)
	return m
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Vertices() []GPUVertex {
	return m.vertices
}

func (m *model) Indices() []uint32 {
	return m.indices
}

func (m *model) IndexCount() int {
	return len(m.indices)
}

func (m *model) Bounds() common.BoundingSphere {
	return m.bounds
}

func (m *model) VertexData() []byte {
	out := make([]byte, 0, len(m.vertices)*32)
	for i := range m.vertices {
		out = append(out, m.vertices[i].Marshal()...)
	}
	return out
}

func (m *model) IndexData() []byte {
	return append([]byte(nil), common.SliceToBytes(m.indices)...)
}

// NewCube builds an axis-aligned cube centered on the origin with per-face normals.
//
// Parameters:
//   - name: the model identifier
//   - size: edge length
//
// Returns:
//   - Model: the cube
func NewCube(name string, size float32) Model {
	h := size / 2
	faces := []struct {
		normal [3]float32
		corner [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{h, -h, -h}, {-h, -h, -h}, {-h, h, -h}, {h, h, -h}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{h, -h, h}, {h, -h, -h}, {h, h, -h}, {h, h, h}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-h, -h, -h}, {-h, -h, h}, {-h, h, h}, {-h, h, -h}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-h, h, h}, {h, h, h}, {h, h, -h}, {-h, h, -h}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-h, -h, -h}, {h, -h, -h}, {h, -h, h}, {-h, -h, h}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	vertices := make([]GPUVertex, 0, 24)
	indices := make([]uint32, 0, 36)
	for _, f := range faces {
		base := uint32(len(vertices))
		for i, c := range f.corner {
			vertices = append(vertices, GPUVertex{Position: c, Normal: f.normal, TexCoord: uvs[i]})
		}
		indices = append(indices, base, base+1, base+2, base, base+2, base+3)
	}
	return NewModel(name, WithVertices(vertices), WithIndices(indices))
}
