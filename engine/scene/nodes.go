package scene

import (
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/light"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/model"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
)

// TransformationNode places its subtree with a translation, an Euler rotation and a scale.
type TransformationNode struct {
	nodeBase
	position [3]float32
	rotation [3]float32
	scale    [3]float32
}

var _ Node = &TransformationNode{}

// NewTransformationNode creates an identity transform.
//
// Parameters:
//   - name: the node label
//   - options: functional options for the initial transform
//
// Returns:
//   - *TransformationNode: the node
func NewTransformationNode(name string, options ...TransformationBuilderOption) *TransformationNode {
	n := &TransformationNode{scale: [3]float32{1, 1, 1}}
	n.self = n
	n.name = name
	for _, opt := range options {
		opt(n)
	}
	return n
}

func (n *TransformationNode) Kind() string {
	return "TransformationNode"
}

// Position returns the translation.
func (n *TransformationNode) Position() [3]float32 {
	return n.position
}

// Rotation returns the Euler angles in radians.
func (n *TransformationNode) Rotation() [3]float32 {
	return n.rotation
}

// Scale returns the per-axis scale.
func (n *TransformationNode) Scale() [3]float32 {
	return n.scale
}

// SetPosition sets the translation.
func (n *TransformationNode) SetPosition(x, y, z float32) {
	n.position = [3]float32{x, y, z}
}

// SetRotation sets the Euler angles in radians.
func (n *TransformationNode) SetRotation(x, y, z float32) {
	n.rotation = [3]float32{x, y, z}
}

// SetScale sets the per-axis scale.
func (n *TransformationNode) SetScale(x, y, z float32) {
	n.scale = [3]float32{x, y, z}
}

// LocalMatrix returns the node's transform relative to its parent.
//
// Returns:
//   - common.Mat4: the local model matrix
func (n *TransformationNode) LocalMatrix() common.Mat4 {
	var m common.Mat4
	common.BuildModelMatrix(m[:], n.position, n.rotation, n.scale)
	return m
}

// DirectionalLightNode carries a directional light. The light's direction is rotated by the
// transforms above the node.
type DirectionalLightNode struct {
	nodeBase
	light light.Light
}

var _ Node = &DirectionalLightNode{}

// NewDirectionalLightNode creates a white light pointing down -Y unless options say otherwise.
//
// Parameters:
//   - options: light options
//
// Returns:
//   - *DirectionalLightNode: the node
func NewDirectionalLightNode(options ...light.LightBuilderOption) *DirectionalLightNode {
	n := &DirectionalLightNode{light: light.NewLight(options...)}
	n.self = n
	n.name = "DirectionalLight"
	return n
}

func (n *DirectionalLightNode) Kind() string {
	return "DirectionalLightNode"
}

// Light returns the carried light in node space.
func (n *DirectionalLightNode) Light() light.Light {
	return n.light
}

// Material describes how geometry is shaded. Texture and Shader are optional.
type Material struct {
	Color   [4]float32
	Texture resource.Texture
	Shader  resource.Shader
}

// DefaultMaterial returns opaque white with no texture or shader.
//
// Returns:
//   - *Material: the material
func DefaultMaterial() *Material {
	return &Material{Color: [4]float32{1, 1, 1, 1}}
}

// GeometryNode draws a model with a material.
type GeometryNode struct {
	nodeBase
	model    model.Model
	material *Material
}

var _ Node = &GeometryNode{}

// NewGeometryNode creates a node drawing mdl. A nil material uses DefaultMaterial.
//
// Parameters:
//   - name: the node label
//   - mdl: the mesh
//   - material: the shading
//
// Returns:
//   - *GeometryNode: the node
func NewGeometryNode(name string, mdl model.Model, material *Material) *GeometryNode {
	if material == nil {
		material = DefaultMaterial()
	}
	n := &GeometryNode{model: mdl, material: material}
	n.self = n
	n.name = name
	return n
}

func (n *GeometryNode) Kind() string {
	return "GeometryNode"
}

// Model returns the mesh.
func (n *GeometryNode) Model() model.Model {
	return n.model
}

// Material returns the shading.
func (n *GeometryNode) Material() *Material {
	return n.material
}

// Bounds returns the model-space bounding sphere of the mesh.
func (n *GeometryNode) Bounds() common.BoundingSphere {
	if n.model == nil {
		return common.BoundingSphere{}
	}
	return n.model.Bounds()
}

// Line is a segment in node space.
type Line struct {
	From [3]float32
	To   [3]float32
}

// LineNode draws unlit line segments, used for debug geometry.
type LineNode struct {
	nodeBase
	lines []Line
	color [4]float32
}

var _ Node = &LineNode{}

// NewLineNode creates an empty, white line node.
//
// Parameters:
//   - name: the node label
//
// Returns:
//   - *LineNode: the node
func NewLineNode(name string) *LineNode {
	n := &LineNode{color: [4]float32{1, 1, 1, 1}}
	n.self = n
	n.name = name
	return n
}

func (n *LineNode) Kind() string {
	return "LineNode"
}

// Lines returns the segments.
func (n *LineNode) Lines() []Line {
	out := make([]Line, len(n.lines))
	copy(out, n.lines)
	return out
}

// SetLines replaces the segments.
func (n *LineNode) SetLines(lines []Line) {
	n.lines = append(n.lines[:0], lines...)
}

// AddLine appends one segment.
func (n *LineNode) AddLine(from, to [3]float32) {
	n.lines = append(n.lines, Line{From: from, To: to})
}

// Color returns the line color.
func (n *LineNode) Color() [4]float32 {
	return n.color
}

// SetColor sets the line color.
func (n *LineNode) SetColor(r, g, b, a float32) {
	n.color = [4]float32{r, g, b, a}
}

// Bounds returns the sphere around every segment end point.
func (n *LineNode) Bounds() common.BoundingSphere {
	positions := make([]float32, 0, len(n.lines)*6)
	for _, l := range n.lines {
		positions = append(positions, l.From[0], l.From[1], l.From[2], l.To[0], l.To[1], l.To[2])
	}
	return common.BoundingSphereFromPoints(positions)
}
