package scene

import (
	"fmt"
	"io"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/emicklei/dot"
)

// WriteDot writes the bounds graph of root in Graphviz DOT format. Every node becomes one
// vertex labelled with its kind, name and world bounding sphere; a node listed under several
// parents becomes one vertex with several incoming edges.
//
// Parameters:
//   - root: the subtree to export
//   - w: the destination
//
// Returns:
//   - error: the first write error
func WriteDot(root Node, w io.Writer) error {
	g := dot.NewGraph(dot.Directed)
	g.Attr("rankdir", "TB")

	ids := make(map[Node]dot.Node)
	var visit func(n Node, parent common.Mat4) dot.Node
	visit = func(n Node, parent common.Mat4) dot.Node {
		if v, ok := ids[n]; ok {
			return v
		}
		v := g.Node(fmt.Sprintf("n%d", len(ids)))
		ids[n] = v
		v.Label(dotLabel(n, parent))
		v.Attr("shape", "box")

		m := parent
		if t, ok := n.(*TransformationNode); ok {
			m = common.MulMat4(parent, t.LocalMatrix())
		}
		for _, c := range n.base().children {
			g.Edge(v, visit(c, m))
		}
		return v
	}
	if root != nil {
		visit(root, common.IdentityMat4())
	}

	_, err := io.WriteString(w, g.String())
	return err
}

func dotLabel(n Node, parent common.Mat4) string {
	label := n.Kind()
	if n.Name() != "" {
		label += ": " + n.Name()
	}
	if b, ok := WorldBounds(n, parent); ok {
		label += fmt.Sprintf("\ncenter (%.2f, %.2f, %.2f) radius %.2f", b.Center[0], b.Center[1], b.Center[2], b.Radius)
	} else {
		label += "\nno bounds"
	}
	return label
}
