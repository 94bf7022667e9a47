package scene

import (
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/light"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
)

// WalkFunc is called for every visited node with the world matrix that applies to it.
// Returning false skips the node's children.
type WalkFunc func(n Node, model common.Mat4) bool

// Walk visits root and its descendants depth-first in pre-order, accumulating the transforms of
// TransformationNodes. A TransformationNode is visited with its own transform already applied.
//
// Parameters:
//   - root: the subtree to walk; nil is a no-op
//   - fn: the visitor
func Walk(root Node, fn WalkFunc) {
	if root == nil {
		return
	}
	walk(root, common.IdentityMat4(), fn)
}

func walk(n Node, parent common.Mat4, fn WalkFunc) {
	m := parent
	if t, ok := n.(*TransformationNode); ok {
		m = common.MulMat4(parent, t.LocalMatrix())
	}
	if !fn(n, m) {
		return
	}
	for _, c := range n.base().children {
		walk(c, m, fn)
	}
}

// Textures collects the distinct textures reachable from root in walk order: material textures
// first, then the textures sampled by the material's shader.
//
// Parameters:
//   - root: the subtree to search
//
// Returns:
//   - []resource.Texture: the textures
func Textures(root Node) []resource.Texture {
	seen := make(map[resource.Texture]struct{})
	var out []resource.Texture
	add := func(t resource.Texture) {
		if t == nil {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	Walk(root, func(n Node, _ common.Mat4) bool {
		g, ok := n.(*GeometryNode)
		if !ok {
			return true
		}
		add(g.material.Texture)
		if g.material.Shader != nil {
			for _, t := range g.material.Shader.Textures() {
				add(t)
			}
		}
		return true
	})
	return out
}

// Shaders collects the distinct material shaders reachable from root in walk order.
//
// Parameters:
//   - root: the subtree to search
//
// Returns:
//   - []resource.Shader: the shaders
func Shaders(root Node) []resource.Shader {
	seen := make(map[resource.Shader]struct{})
	var out []resource.Shader
	Walk(root, func(n Node, _ common.Mat4) bool {
		g, ok := n.(*GeometryNode)
		if !ok || g.material.Shader == nil {
			return true
		}
		if _, dup := seen[g.material.Shader]; !dup {
			seen[g.material.Shader] = struct{}{}
			out = append(out, g.material.Shader)
		}
		return true
	})
	return out
}

// Lights returns the world-space copies of every directional light under root.
//
// Parameters:
//   - root: the subtree to search
//
// Returns:
//   - []light.Light: the lights in walk order
func Lights(root Node) []light.Light {
	var out []light.Light
	Walk(root, func(n Node, m common.Mat4) bool {
		if l, ok := n.(*DirectionalLightNode); ok {
			out = append(out, l.light.Transformed(m))
		}
		return true
	})
	return out
}

// WorldBounds returns the world-space sphere enclosing all geometry and lines under n,
// given the world matrix of n's parent.
//
// Parameters:
//   - n: the subtree
//   - parent: world matrix of n's parent
//
// Returns:
//   - common.BoundingSphere: the enclosing sphere
//   - bool: false when the subtree holds no geometry
func WorldBounds(n Node, parent common.Mat4) (common.BoundingSphere, bool) {
	m := parent
	if t, ok := n.(*TransformationNode); ok {
		m = common.MulMat4(parent, t.LocalMatrix())
	}

	var (
		bounds common.BoundingSphere
		found  bool
	)
	merge := func(b common.BoundingSphere) {
		if !found {
			bounds, found = b, true
			return
		}
		bounds = bounds.Union(b)
	}

	switch v := n.(type) {
	case *GeometryNode:
		if v.model != nil {
			merge(v.Bounds().Transform(m))
		}
	case *LineNode:
		if len(v.lines) > 0 {
			merge(v.Bounds().Transform(m))
		}
	}
	for _, c := range n.base().children {
		if b, ok := WorldBounds(c, m); ok {
			merge(b)
		}
	}
	return bounds, found
}
