package model

// ModelBuilderOption is a function that configures a model during construction.
type ModelBuilderOption func(*model)

// WithVertices sets the model's vertex list.
//
// Parameters:
//   - vertices: the vertices
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertices to a model
func WithVertices(vertices []GPUVertex) ModelBuilderOption {
	return func(m *model) {
		m.vertices = vertices
	}
}

// WithIndices sets the model's triangle list indices.
//
// Parameters:
//   - indices: the indices
//
// Returns:
//   - ModelBuilderOption: a function that applies the indices to a model
func WithIndices(indices []uint32) ModelBuilderOption {
	return func(m *model) {
		m.indices = indices
	}
}

// WithPositions builds vertices from a flat xyz position list, leaving normals and UVs zero.
//
// Parameters:
//   - positions: flat xyz coordinates
//
// Returns:
//   - ModelBuilderOption: a function that applies the vertices to a model
func WithPositions(positions []float32) ModelBuilderOption {
	return func(m *model) {
		m.vertices = make([]GPUVertex, 0, len(positions)/3)
		for i := 0; i+2 < len(positions); i += 3 {
			m.vertices = append(m.vertices, GPUVertex{Position: [3]float32{positions[i], positions[i+1], positions[i+2]}})
		}
	}
}
