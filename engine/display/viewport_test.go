package display

import (
	"testing"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/camera"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
	"github.com/stretchr/testify/assert"
)

func TestViewport_Dimension(t *testing.T) {
	w := window.NewHeadlessWindow()
	v := NewViewport(w)

	x, y, width, height := v.Dimension()
	assert.Equal(t, [4]int{0, 0, 800, 600}, [4]int{x, y, width, height})
	assert.InDelta(t, 4.0/3.0, v.Aspect(), 1e-6)
	assert.Same(t, w, v.Frame())

	w.SimulateResize(1000, 500)
	assert.InDelta(t, 2.0, v.Aspect(), 1e-6)

	w.SimulateResize(0, 0)
	assert.Equal(t, float32(1), v.Aspect())
}

func TestViewport_SetViewingVolume(t *testing.T) {
	v := NewViewport(window.NewHeadlessWindow())
	assert.Nil(t, v.ViewingVolume())

	cam := camera.NewCamera(camera.NewViewingVolume())
	f := camera.NewFrustum(cam)

	v.SetViewingVolume(f)
	assert.Same(t, f, v.ViewingVolume())

	v.SetViewingVolume(cam)
	assert.Same(t, cam, v.ViewingVolume())
	assert.False(t, f.Destroyed(), "replacing the provider does not touch the previous one")
}
