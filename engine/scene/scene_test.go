package scene

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/model"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func texture(name string) resource.Texture {
	return resource.NewTextureImage(name, image.NewRGBA(image.Rect(0, 0, 1, 1)))
}

func TestAddNodeKeepsDuplicates(t *testing.T) {
	root := NewSceneNode("root")
	child := NewLineNode("lines")
	root.AddNode(child)
	root.AddNode(child)
	root.AddNode(nil)

	assert.Len(t, root.Children(), 2)
	assert.Same(t, root, child.Parent())

	assert.True(t, root.RemoveNode(child))
	assert.Len(t, root.Children(), 1)
	assert.Same(t, root, child.Parent())

	assert.True(t, root.RemoveNode(child))
	assert.Nil(t, child.Parent())
	assert.False(t, root.RemoveNode(child))
}

func TestWalkAccumulatesTransforms(t *testing.T) {
	root := NewSceneNode("root")
	outer := NewTransformationNode("outer", WithPosition(1, 0, 0))
	inner := NewTransformationNode("inner", WithPosition(0, 2, 0), WithScale(2, 2, 2))
	geom := NewGeometryNode("cube", model.NewCube("cube", 1), nil)
	root.AddNode(outer)
	outer.AddNode(inner)
	inner.AddNode(geom)

	var names []string
	var geomModel common.Mat4
	Walk(root, func(n Node, m common.Mat4) bool {
		names = append(names, n.Name())
		if n == Node(geom) {
			geomModel = m
		}
		return true
	})

	assert.Equal(t, []string{"root", "outer", "inner", "cube"}, names)
	assert.Equal(t, [3]float32{1, 2, 0}, common.TransformPoint(geomModel, [3]float32{0, 0, 0}))
	assert.Equal(t, [3]float32{3, 2, 0}, common.TransformPoint(geomModel, [3]float32{1, 0, 0}))
}

func TestWalkSkipsChildrenWhenVisitorDeclines(t *testing.T) {
	root := NewSceneNode("root")
	group := NewSceneNode("group")
	group.AddNode(NewSceneNode("hidden"))
	root.AddNode(group)

	var names []string
	Walk(root, func(n Node, _ common.Mat4) bool {
		names = append(names, n.Name())
		return n.Name() != "group"
	})
	assert.Equal(t, []string{"root", "group"}, names)
}

func TestTexturesAndShadersAreDistinctInWalkOrder(t *testing.T) {
	a, b, c := texture("a"), texture("b"), texture("c")
	shader := resource.NewShaderSource("s", "fn vs_main fn fs_main", resource.WithShaderTextures(c, a))

	root := NewSceneNode("root")
	cube := model.NewCube("cube", 1)
	root.AddNode(NewGeometryNode("g1", cube, &Material{Texture: a}))
	root.AddNode(NewGeometryNode("g2", cube, &Material{Texture: b, Shader: shader}))
	root.AddNode(NewGeometryNode("g3", cube, &Material{Texture: a, Shader: shader}))

	assert.Equal(t, []resource.Texture{a, b, c}, Textures(root))
	assert.Equal(t, []resource.Shader{shader}, Shaders(root))
	assert.Empty(t, Textures(nil))
}

func TestLightsAreTransformedToWorld(t *testing.T) {
	root := NewSceneNode("root")
	rot := NewTransformationNode("rot", WithRotation(0, 0, 1.5707964))
	root.AddNode(rot)
	rot.AddNode(NewDirectionalLightNode())

	lights := Lights(root)
	require.Len(t, lights, 1)
	d := lights[0].Direction()
	assert.InDelta(t, 1, d[0], 1e-5)
	assert.InDelta(t, 0, d[1], 1e-5)
}

func TestWorldBoundsMergesChildren(t *testing.T) {
	root := NewSceneNode("root")
	left := NewTransformationNode("left", WithPosition(-2, 0, 0))
	right := NewTransformationNode("right", WithPosition(2, 0, 0))
	cube := model.NewCube("cube", 2)
	left.AddNode(NewGeometryNode("l", cube, nil))
	right.AddNode(NewGeometryNode("r", cube, nil))
	root.AddNode(left)
	root.AddNode(right)
	root.AddNode(NewDirectionalLightNode())

	b, ok := WorldBounds(root, common.IdentityMat4())
	require.True(t, ok)
	assert.InDelta(t, 0, b.Center[0], 1e-5)
	assert.InDelta(t, 2+cube.Bounds().Radius, b.Radius, 1e-5)

	_, ok = WorldBounds(NewDirectionalLightNode(), common.IdentityMat4())
	assert.False(t, ok)
}

func TestWriteDot(t *testing.T) {
	root := NewSceneNode("root")
	lines := NewLineNode("frustum")
	lines.AddLine([3]float32{0, 0, 0}, [3]float32{1, 0, 0})
	root.AddNode(NewDirectionalLightNode())
	root.AddNode(lines)
	root.AddNode(lines)

	var buf bytes.Buffer
	require.NoError(t, WriteDot(root, &buf))
	out := buf.String()

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "digraph"))
	assert.Contains(t, out, "SceneNode: root")
	assert.Contains(t, out, "DirectionalLightNode")
	assert.Contains(t, out, "LineNode: frustum")
	assert.Equal(t, 3, strings.Count(out, "->"))
}
