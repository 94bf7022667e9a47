package hud

import (
	"image"
	"image/color"
	"io"
	"log/slog"
	"testing"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/display"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer(t *testing.T) (renderer.Renderer, *renderer.HeadlessBackend) {
	t.Helper()
	frame := window.NewHeadlessWindow()
	frame.HandleInitialize(engine.InitializeEventArg{})
	hb := renderer.NewHeadlessBackend()
	r := renderer.NewRenderer(display.NewViewport(frame),
		renderer.WithBackend(hb),
		renderer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	r.HandleInitialize(engine.InitializeEventArg{})
	return r, hb
}

func TestHUD_NoSurfacesDrawsNothing(t *testing.T) {
	r, hb := newRenderer(t)
	h := NewHUD()
	r.PostProcessEvent().Attach(h)

	r.HandleProcess(engine.ProcessEventArg{Frame: 0})

	assert.Equal(t, 0, hb.Overlays())
	assert.Nil(t, h.Canvas())
	assert.Equal(t, 0, h.Frames())
}

func TestHUD_CompositesSurfacesAtTheirPosition(t *testing.T) {
	r, hb := newRenderer(t)
	h := NewHUD()
	r.PostProcessEvent().Attach(h)

	red := h.CreateSurface(4, 4)
	red.Clear(color.RGBA{R: 255, A: 255})
	red.SetPosition(10, 20)

	blue := h.CreateSurface(2, 2)
	blue.Clear(color.RGBA{B: 255, A: 255})
	blue.SetPosition(11, 21)

	r.HandleProcess(engine.ProcessEventArg{Frame: 0})

	require.Equal(t, 1, hb.Overlays())
	canvas := h.Canvas()
	require.NotNil(t, canvas)
	assert.Equal(t, image.Rect(0, 0, 800, 600), canvas.Bounds())
	assert.Equal(t, color.RGBA{R: 255, A: 255}, canvas.RGBAAt(10, 20))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, canvas.RGBAAt(11, 21))
	assert.Equal(t, color.RGBA{}, canvas.RGBAAt(9, 20))
	assert.Equal(t, color.RGBA{}, canvas.RGBAAt(14, 20))
	assert.Equal(t, 1, h.Frames())
}

func TestHUD_HiddenAndRemovedSurfaces(t *testing.T) {
	r, hb := newRenderer(t)
	h := NewHUD()
	r.PostProcessEvent().Attach(h)

	s := h.CreateSurface(2, 2)
	s.SetVisible(false)
	r.HandleProcess(engine.ProcessEventArg{Frame: 0})
	assert.Equal(t, 0, hb.Overlays())

	s.SetVisible(true)
	r.HandleProcess(engine.ProcessEventArg{Frame: 1})
	assert.Equal(t, 1, hb.Overlays())

	assert.True(t, h.RemoveSurface(s))
	assert.False(t, h.RemoveSurface(s))
	assert.Empty(t, h.Surfaces())
	r.HandleProcess(engine.ProcessEventArg{Frame: 2})
	assert.Equal(t, 1, hb.Overlays())
}

func TestHUD_CanvasFollowsResize(t *testing.T) {
	frame := window.NewHeadlessWindow()
	frame.HandleInitialize(engine.InitializeEventArg{})
	r := renderer.NewRenderer(display.NewViewport(frame),
		renderer.WithBackend(renderer.NewHeadlessBackend()),
		renderer.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	r.HandleInitialize(engine.InitializeEventArg{})
	h := NewHUD()
	r.PostProcessEvent().Attach(h)
	h.CreateSurface(1, 1)

	r.HandleProcess(engine.ProcessEventArg{Frame: 0})
	frame.SimulateResize(320, 240)
	r.HandleProcess(engine.ProcessEventArg{Frame: 1})

	assert.Equal(t, image.Rect(0, 0, 320, 240), h.Canvas().Bounds())
}

func TestHUD_AddSurfaceIgnoresNil(t *testing.T) {
	h := NewHUD()
	h.AddSurface(nil)
	h.AddSurface(NewSurface(1, 1))
	assert.Len(t, h.Surfaces(), 1)
}

func TestSurface_DrawText(t *testing.T) {
	s := NewSurface(64, 16)
	s.SetTextColor(color.RGBA{G: 255, A: 255})

	advance := s.DrawText(0, 0, "Hi")
	assert.Equal(t, 14, advance)

	lit := 0
	img := s.Image()
	for y := 0; y < 16; y++ {
		for x := 0; x < 64; x++ {
			if img.RGBAAt(x, y).A != 0 {
				lit++
				assert.Less(t, x, 14)
			}
		}
	}
	assert.Positive(t, lit)
}

func TestSurface_Fill(t *testing.T) {
	s := NewSurface(4, 4)
	s.Fill(image.Rect(2, 2, 10, 10), color.RGBA{R: 255, A: 255})

	assert.Equal(t, color.RGBA{}, s.Image().RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{R: 255, A: 255}, s.Image().RGBAAt(3, 3))
	w, hgt := s.Size()
	assert.Equal(t, 4, w)
	assert.Equal(t, 4, hgt)
}
