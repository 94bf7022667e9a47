package camera

import (
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
)

type frustumImpl struct {
	ViewingVolume

	cam       Camera
	mu        *sync.Mutex
	visualize bool
	destroyed bool
	node      *scene.LineNode
}

// Frustum decorates a Camera with clip-plane computation and optional debug geometry.
// The debug geometry is a LineNode holding the 12 edges of the volume in world space; it is
// refreshed on Update while visualization is on.
type Frustum interface {
	ViewingVolume

	// Camera returns the decorated camera.
	//
	// Returns:
	//   - Camera: the wrapped camera
	Camera() Camera

	// ClipPlanes returns the six inward-facing planes of the current view-projection.
	//
	// Returns:
	//   - common.Frustum: the planes
	ClipPlanes() common.Frustum

	// Contains reports whether a world-space sphere is at least partly inside the volume.
	//
	// Parameters:
	//   - center: sphere center
	//   - radius: sphere radius
	//
	// Returns:
	//   - bool: false only when the sphere is entirely outside a clip plane
	Contains(center [3]float32, radius float32) bool

	// VisualizeClipping turns the debug geometry on or off. Turning it on fills the node immediately.
	//
	// Parameters:
	//   - enabled: true to draw the frustum edges
	VisualizeClipping(enabled bool)

	// IsVisualizingClipping reports whether debug geometry is on.
	IsVisualizingClipping() bool

	// FrustumNode returns the debug geometry node. The same node is returned on every call.
	//
	// Returns:
	//   - *scene.LineNode: the node
	FrustumNode() *scene.LineNode

	// Destroy empties the debug geometry and stops refreshing it. The wrapped camera is untouched.
	Destroy()

	// Destroyed reports whether Destroy has been called.
	Destroyed() bool
}

var _ Frustum = &frustumImpl{}

// NewFrustum wraps cam.
//
// Parameters:
//   - cam: the camera to decorate
//
// Returns:
//   - Frustum: the frustum
func NewFrustum(cam Camera) Frustum {
	node := scene.NewLineNode("Frustum")
	node.SetColor(1, 1, 0, 1)
	return &frustumImpl{
		ViewingVolume: cam,
		cam:           cam,
		mu:            &sync.Mutex{},
		node:          node,
	}
}

func (f *frustumImpl) Camera() Camera {
	return f.cam
}

func (f *frustumImpl) ClipPlanes() common.Frustum {
	return common.ExtractFrustumFromMatrix(f.cam.ViewProjectionMatrix())
}

func (f *frustumImpl) Contains(center [3]float32, radius float32) bool {
	return f.ClipPlanes().ContainsSphere(center, radius)
}

func (f *frustumImpl) VisualizeClipping(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visualize = enabled
	f.refresh()
}

func (f *frustumImpl) IsVisualizingClipping() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.visualize
}

func (f *frustumImpl) FrustumNode() *scene.LineNode {
	return f.node
}

func (f *frustumImpl) Destroy() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.destroyed = true
	f.visualize = false
	f.node.SetLines(nil)
}

func (f *frustumImpl) Destroyed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.destroyed
}

func (f *frustumImpl) Update(deltaTime float32) {
	f.cam.Update(deltaTime)
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh()
}

// refresh rebuilds the debug lines from the current volume. Caller must hold the mutex.
func (f *frustumImpl) refresh() {
	if f.destroyed {
		return
	}
	if !f.visualize {
		f.node.SetLines(nil)
		return
	}
	corners := common.FrustumCorners(f.cam.InverseViewProjectionMatrix())
	lines := make([]scene.Line, 0, len(common.FrustumEdges))
	for _, e := range common.FrustumEdges {
		lines = append(lines, scene.Line{From: corners[e[0]], To: corners[e[1]]})
	}
	f.node.SetLines(lines)
}
