package scene

// TransformationBuilderOption is a functional option for configuring a TransformationNode.
type TransformationBuilderOption func(*TransformationNode)

// WithPosition sets the initial translation.
//
// Parameters:
//   - x, y, z: translation components
//
// Returns:
//   - TransformationBuilderOption: option function to apply
func WithPosition(x, y, z float32) TransformationBuilderOption {
	return func(n *TransformationNode) {
		n.position = [3]float32{x, y, z}
	}
}

// WithRotation sets the initial Euler angles in radians.
//
// Parameters:
//   - x, y, z: rotation around each axis
//
// Returns:
//   - TransformationBuilderOption: option function to apply
func WithRotation(x, y, z float32) TransformationBuilderOption {
	return func(n *TransformationNode) {
		n.rotation = [3]float32{x, y, z}
	}
}

// WithScale sets the initial per-axis scale.
//
// Parameters:
//   - x, y, z: scale factors
//
// Returns:
//   - TransformationBuilderOption: option function to apply
func WithScale(x, y, z float32) TransformationBuilderOption {
	return func(n *TransformationNode) {
		n.scale = [3]float32{x, y, z}
	}
}
