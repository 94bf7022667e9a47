// Package scene holds the scene graph: a tree of typed nodes walked by the renderer and the resource loaders.
// Scene trees are not safe for concurrent use.
package scene

// Node is a vertex of the scene tree.
type Node interface {
	// Name returns the node's label.
	Name() string

	// SetName sets the node's label.
	SetName(name string)

	// Kind returns the node type name, e.g. "GeometryNode".
	Kind() string

	// Parent returns the node this node was last added to, or nil.
	Parent() Node

	// Children returns the child list in insertion order.
	//
	// Returns:
	//   - []Node: a copy of the children
	Children() []Node

	// AddNode appends a child. The child is not detached from a previous parent and adding the
	// same node twice lists it twice.
	//
	// Parameters:
	//   - n: the child; nil is ignored
	AddNode(n Node)

	// RemoveNode removes the first occurrence of n from the children.
	//
	// Parameters:
	//   - n: the child to remove
	//
	// Returns:
	//   - bool: true if n was a child
	RemoveNode(n Node) bool

	base() *nodeBase
}

type nodeBase struct {
	self     Node
	name     string
	parent   Node
	children []Node
}

func (b *nodeBase) base() *nodeBase {
	return b
}

func (b *nodeBase) Name() string {
	return b.name
}

func (b *nodeBase) SetName(name string) {
	b.name = name
}

func (b *nodeBase) Parent() Node {
	return b.parent
}

func (b *nodeBase) Children() []Node {
	out := make([]Node, len(b.children))
	copy(out, b.children)
	return out
}

func (b *nodeBase) AddNode(n Node) {
	if n == nil {
		return
	}
	n.base().parent = b.self
	b.children = append(b.children, n)
}

func (b *nodeBase) RemoveNode(n Node) bool {
	for i, c := range b.children {
		if c == n {
			b.children = append(b.children[:i], b.children[i+1:]...)
			if !b.contains(n) {
				n.base().parent = nil
			}
			return true
		}
	}
	return false
}

func (b *nodeBase) contains(n Node) bool {
	for _, c := range b.children {
		if c == n {
			return true
		}
	}
	return false
}

// SceneNode groups children without adding behavior.
type SceneNode struct {
	nodeBase
}

var _ Node = &SceneNode{}

// NewSceneNode creates an empty group node.
//
// Parameters:
//   - name: the node label
//
// Returns:
//   - *SceneNode: the node
func NewSceneNode(name string) *SceneNode {
	n := &SceneNode{}
	n.self = n
	n.name = name
	return n
}

func (n *SceneNode) Kind() string {
	return "SceneNode"
}
