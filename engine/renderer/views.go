package renderer

import (
	"errors"
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/display"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
)

// Drawable is a drawable scene node together with its world matrix.
type Drawable struct {
	Node      scene.Node
	Transform common.Mat4
}

// ViewStats describes the last frame a view handled.
type ViewStats struct {
	// Collected is the number of drawable nodes found in the scene.
	Collected int
	// Culled is the number of drawables rejected by the frustum test.
	Culled int
	// Drawn is the number of draws submitted.
	Drawn int
	// Err joins the errors of the frame's draws, or nil.
	Err error
}

// RenderingView turns the renderer's scene into draws. It is attached to the renderer Process phase.
type RenderingView interface {
	event.Listener[RenderingEventArg]

	// Viewport returns the viewport the view renders for.
	//
	// Returns:
	//   - display.Viewport: the viewport
	Viewport() display.Viewport

	// Collect walks root and returns every GeometryNode and LineNode with its world matrix.
	//
	// Parameters:
	//   - root: the scene root; nil yields nothing
	//
	// Returns:
	//   - []Drawable: the drawables in walk order
	Collect(root scene.Node) []Drawable

	// Render submits one draw per item to r.
	//
	// Parameters:
	//   - r: the renderer with a frame in progress
	//   - items: the drawables
	//
	// Returns:
	//   - error: the joined draw errors, or nil
	Render(r Renderer, items []Drawable) error

	// Stats returns the counters of the last handled frame.
	//
	// Returns:
	//   - ViewStats: the counters
	Stats() ViewStats
}

type renderingView struct {
	mu       *sync.Mutex
	viewport display.Viewport
	stats    ViewStats
}

var _ RenderingView = &renderingView{}

// NewRenderingView creates the standard view: every drawable node is drawn.
//
// Parameters:
//   - viewport: the viewport to render for
//
// Returns:
//   - RenderingView: the view
func NewRenderingView(viewport display.Viewport) RenderingView {
	return &renderingView{mu: &sync.Mutex{}, viewport: viewport}
}

func (v *renderingView) Handle(arg RenderingEventArg) {
	items := v.Collect(arg.Renderer.SceneRoot())
	err := v.Render(arg.Renderer, items)
	v.record(ViewStats{Collected: len(items), Drawn: drawableCount(items), Err: err})
	if err != nil {
		arg.Renderer.Logger().Warn("scene draw failed", "frame", arg.Frame, "error", err)
	}
}

func (v *renderingView) record(s ViewStats) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.stats = s
}

func (v *renderingView) Viewport() display.Viewport {
	return v.viewport
}

func (v *renderingView) Collect(root scene.Node) []Drawable {
	var out []Drawable
	scene.Walk(root, func(n scene.Node, m common.Mat4) bool {
		switch n.(type) {
		case *scene.GeometryNode, *scene.LineNode:
			out = append(out, Drawable{Node: n, Transform: m})
		}
		return true
	})
	return out
}

func (v *renderingView) Render(r Renderer, items []Drawable) error {
	var errs []error
	for _, item := range items {
		cmd, ok := drawCommand(item)
		if !ok {
			continue
		}
		if err := r.Draw(cmd); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v *renderingView) Stats() ViewStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

// drawableCount counts the items that produce a draw: empty line nodes and geometry without a model do not.
func drawableCount(items []Drawable) int {
	n := 0
	for _, item := range items {
		if _, ok := drawCommand(item); ok {
			n++
		}
	}
	return n
}

func drawCommand(item Drawable) (DrawCommand, bool) {
	switch n := item.Node.(type) {
	case *scene.GeometryNode:
		if n.Model() == nil {
			return DrawCommand{}, false
		}
		mat := n.Material()
		return DrawCommand{
			Name:      n.Name(),
			Model:     n.Model(),
			Transform: item.Transform,
			Color:     mat.Color,
			Texture:   mat.Texture,
			Shader:    mat.Shader,
		}, true
	case *scene.LineNode:
		lines := n.Lines()
		if len(lines) == 0 {
			return DrawCommand{}, false
		}
		return DrawCommand{
			Name:      n.Name(),
			Lines:     lines,
			Transform: item.Transform,
			Color:     n.Color(),
		}, true
	}
	return DrawCommand{}, false
}

// AcceleratedRenderingView draws only the geometry whose world bounding sphere intersects the
// viewport's viewing volume. Line nodes are never culled.
type AcceleratedRenderingView interface {
	RenderingView

	// Cull collects the drawables of root and drops those outside the viewing volume.
	//
	// Parameters:
	//   - root: the scene root
	//
	// Returns:
	//   - []Drawable: the visible drawables
	//   - int: how many were culled
	Cull(root scene.Node) ([]Drawable, int)
}

type acceleratedRenderingView struct {
	*renderingView
}

var _ AcceleratedRenderingView = &acceleratedRenderingView{}

// NewAcceleratedRenderingView creates a frustum-culling view.
//
// Parameters:
//   - viewport: the viewport whose viewing volume is culled against
//
// Returns:
//   - AcceleratedRenderingView: the view
func NewAcceleratedRenderingView(viewport display.Viewport) AcceleratedRenderingView {
	return &acceleratedRenderingView{renderingView: &renderingView{mu: &sync.Mutex{}, viewport: viewport}}
}

func (v *acceleratedRenderingView) Handle(arg RenderingEventArg) {
	items, culled := v.Cull(arg.Renderer.SceneRoot())
	err := v.Render(arg.Renderer, items)
	v.record(ViewStats{Collected: len(items) + culled, Culled: culled, Drawn: drawableCount(items), Err: err})
	if err != nil {
		arg.Renderer.Logger().Warn("scene draw failed", "frame", arg.Frame, "error", err)
	}
}

func (v *acceleratedRenderingView) Cull(root scene.Node) ([]Drawable, int) {
	items := v.Collect(root)
	vv := v.viewport.ViewingVolume()
	if vv == nil {
		return items, 0
	}
	planes := common.ExtractFrustumFromMatrix(vv.ViewProjectionMatrix())

	visible := items[:0]
	culled := 0
	for _, item := range items {
		g, ok := item.Node.(*scene.GeometryNode)
		if !ok {
			visible = append(visible, item)
			continue
		}
		bounds := g.Bounds().Transform(item.Transform)
		if planes.ContainsSphere(bounds.Center, bounds.Radius) {
			visible = append(visible, item)
		} else {
			culled++
		}
	}
	return visible, culled
}

// ExtRenderingView composes a standard and an accelerated view over one viewport: the accelerated
// view selects the visible set and the standard view draws it. Both capabilities are offered on the
// composed view and forwarded to the part that owns them.
type ExtRenderingView struct {
	mu          *sync.Mutex
	standard    RenderingView
	accelerated AcceleratedRenderingView
	stats       ViewStats
}

var _ AcceleratedRenderingView = &ExtRenderingView{}

// NewExtRenderingView creates the composed view.
//
// Parameters:
//   - viewport: the viewport shared by both views
//
// Returns:
//   - *ExtRenderingView: the view
func NewExtRenderingView(viewport display.Viewport) *ExtRenderingView {
	return &ExtRenderingView{
		mu:          &sync.Mutex{},
		standard:    NewRenderingView(viewport),
		accelerated: NewAcceleratedRenderingView(viewport),
	}
}

// Handle culls with the accelerated view, then renders the visible set with the standard view.
func (v *ExtRenderingView) Handle(arg RenderingEventArg) {
	items, culled := v.Cull(arg.Renderer.SceneRoot())
	err := v.Render(arg.Renderer, items)

	v.mu.Lock()
	v.stats = ViewStats{Collected: len(items) + culled, Culled: culled, Drawn: drawableCount(items), Err: err}
	v.mu.Unlock()

	if err != nil {
		arg.Renderer.Logger().Warn("scene draw failed", "frame", arg.Frame, "error", err)
	}
}

func (v *ExtRenderingView) Viewport() display.Viewport {
	return v.standard.Viewport()
}

func (v *ExtRenderingView) Collect(root scene.Node) []Drawable {
	return v.standard.Collect(root)
}

func (v *ExtRenderingView) Render(r Renderer, items []Drawable) error {
	return v.standard.Render(r, items)
}

func (v *ExtRenderingView) Cull(root scene.Node) ([]Drawable, int) {
	return v.accelerated.Cull(root)
}

func (v *ExtRenderingView) Stats() ViewStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

// Standard returns the view that draws.
func (v *ExtRenderingView) Standard() RenderingView {
	return v.standard
}

// Accelerated returns the view that culls.
func (v *ExtRenderingView) Accelerated() AcceleratedRenderingView {
	return v.accelerated
}
