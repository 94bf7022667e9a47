// Package display binds a region of the window to the viewing volume that is rendered into it.
package display

import (
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/camera"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
)

// Viewport binds a window to exactly one viewing volume provider: usually a Frustum, sometimes
// a bare Camera. The binding is replaced in place; the Viewport itself lives as long as its owner.
type Viewport interface {
	// Frame returns the window the viewport covers.
	//
	// Returns:
	//   - window.Window: the frame
	Frame() window.Window

	// ViewingVolume returns the bound provider.
	//
	// Returns:
	//   - camera.ViewingVolume: the provider, or nil if none is bound
	ViewingVolume() camera.ViewingVolume

	// SetViewingVolume replaces the bound provider. The previous one is not touched.
	//
	// Parameters:
	//   - v: the new provider
	SetViewingVolume(v camera.ViewingVolume)

	// Dimension returns the viewport rectangle in window pixels. It always covers the whole frame.
	//
	// Returns:
	//   - x, y: top-left corner
	//   - width, height: size in pixels
	Dimension() (x, y, width, height int)

	// Aspect returns width / height of the viewport, or 1 for a degenerate frame.
	Aspect() float32
}

type viewport struct {
	mu     *sync.Mutex
	frame  window.Window
	volume camera.ViewingVolume
}

var _ Viewport = &viewport{}

// NewViewport creates a Viewport over frame with no provider bound.
//
// Parameters:
//   - frame: the window to cover
//
// Returns:
//   - Viewport: the viewport
func NewViewport(frame window.Window) Viewport {
	return &viewport{
		mu:    &sync.Mutex{},
		frame: frame,
	}
}

func (v *viewport) Frame() window.Window {
	return v.frame
}

func (v *viewport) ViewingVolume() camera.ViewingVolume {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.volume
}

func (v *viewport) SetViewingVolume(vv camera.ViewingVolume) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.volume = vv
}

func (v *viewport) Dimension() (x, y, width, height int) {
	return 0, 0, v.frame.Width(), v.frame.Height()
}

func (v *viewport) Aspect() float32 {
	_, _, w, h := v.Dimension()
	if w <= 0 || h <= 0 {
		return 1
	}
	return float32(w) / float32(h)
}
