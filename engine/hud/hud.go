// Package hud draws 2D surfaces over the rendered frame.
package hud

import (
	"image"
	"image/color"
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
)

type hud struct {
	mu *sync.Mutex

	surfaces []*Surface
	canvas   *image.RGBA
	face     font.Face
	frames   int
}

// HUD composites its surfaces in insertion order onto one overlay image the size of the viewport and
// hands it to the renderer. It is attached to the renderer PostProcess phase.
type HUD interface {
	event.Listener[renderer.RenderingEventArg]

	// CreateSurface creates a transparent surface at the origin and adds it.
	//
	// Parameters:
	//   - width, height: the surface size in pixels
	//
	// Returns:
	//   - *Surface: the surface
	CreateSurface(width, height int) *Surface

	// AddSurface adds s on top of the existing surfaces. Adding a surface twice draws it twice.
	//
	// Parameters:
	//   - s: the surface; nil is ignored
	AddSurface(s *Surface)

	// RemoveSurface removes the first occurrence of s.
	//
	// Parameters:
	//   - s: the surface
	//
	// Returns:
	//   - bool: true if s was found
	RemoveSurface(s *Surface) bool

	// Surfaces returns the surfaces in drawing order.
	//
	// Returns:
	//   - []*Surface: a copy of the surface list
	Surfaces() []*Surface

	// Canvas returns the last composited overlay, or nil before the first frame with surfaces.
	//
	// Returns:
	//   - *image.RGBA: the overlay
	Canvas() *image.RGBA

	// Frames returns how many overlays have been handed to the renderer.
	Frames() int
}

var _ HUD = &hud{}

// NewHUD creates an empty HUD.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - HUD: the HUD
func NewHUD(options ...HUDBuilderOption) HUD {
	h := &hud{
		mu:   &sync.Mutex{},
		face: defaultFace(),
	}
	for _, opt := range options {
		opt(h)
	}
	return h
}

func (h *hud) CreateSurface(width, height int) *Surface {
	s := newSurface(width, height, h.face)
	h.AddSurface(s)
	return s
}

func (h *hud) AddSurface(s *Surface) {
	if s == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.surfaces = append(h.surfaces, s)
}

func (h *hud) RemoveSurface(s *Surface) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, existing := range h.surfaces {
		if existing == s {
			h.surfaces = append(h.surfaces[:i], h.surfaces[i+1:]...)
			return true
		}
	}
	return false
}

func (h *hud) Surfaces() []*Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*Surface, len(h.surfaces))
	copy(out, h.surfaces)
	return out
}

func (h *hud) Canvas() *image.RGBA {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canvas
}

func (h *hud) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Handle composites the visible surfaces and draws them over the frame. Nothing is drawn when no
// surface is visible.
func (h *hud) Handle(arg renderer.RenderingEventArg) {
	_, _, width, height := arg.Renderer.Viewport().Dimension()
	if width <= 0 || height <= 0 {
		return
	}

	h.mu.Lock()
	surfaces := make([]*Surface, 0, len(h.surfaces))
	for _, s := range h.surfaces {
		if s.Visible() {
			surfaces = append(surfaces, s)
		}
	}
	if len(surfaces) == 0 {
		h.mu.Unlock()
		return
	}
	if h.canvas == nil || h.canvas.Rect.Dx() != width || h.canvas.Rect.Dy() != height {
		h.canvas = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	canvas := h.canvas
	h.mu.Unlock()

	draw.Draw(canvas, canvas.Bounds(), image.Transparent, image.Point{}, draw.Src)
	for _, s := range surfaces {
		s.composite(canvas)
	}

	if err := arg.Renderer.DrawOverlay(canvas); err != nil {
		arg.Renderer.Logger().Warn("hud overlay failed", "frame", arg.Frame, "error", err)
		return
	}
	h.mu.Lock()
	h.frames++
	h.mu.Unlock()
}

// Surface is a positioned RGBA image drawn by a HUD. Pixels are premultiplied by alpha, as in image.RGBA.
type Surface struct {
	mu *sync.Mutex

	x, y      int
	img       *image.RGBA
	face      font.Face
	textColor color.Color
	visible   bool
}

// NewSurface creates a transparent surface using the default font.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - *Surface: the surface
func NewSurface(width, height int) *Surface {
	return newSurface(width, height, defaultFace())
}

func newSurface(width, height int, face font.Face) *Surface {
	return &Surface{
		mu:        &sync.Mutex{},
		img:       image.NewRGBA(image.Rect(0, 0, max(width, 0), max(height, 0))),
		face:      face,
		textColor: color.White,
		visible:   true,
	}
}

// Position returns the top-left corner on the overlay.
func (s *Surface) Position() (x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.x, s.y
}

// SetPosition moves the surface. Parts outside the overlay are clipped.
func (s *Surface) SetPosition(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.x, s.y = x, y
}

// Visible reports whether the surface is drawn.
func (s *Surface) Visible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible
}

// SetVisible shows or hides the surface.
func (s *Surface) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visible = visible
}

// Image returns the backing image. Writes to it show up in the next frame.
func (s *Surface) Image() *image.RGBA {
	return s.img
}

// Size returns the surface dimensions.
func (s *Surface) Size() (width, height int) {
	return s.img.Rect.Dx(), s.img.Rect.Dy()
}

// Clear fills the whole surface with c.
func (s *Surface) Clear(c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, s.img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
}

// Fill blends c over the rectangle r.
func (s *Surface) Fill(r image.Rectangle, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draw.Draw(s.img, r.Intersect(s.img.Bounds()), image.NewUniform(c), image.Point{}, draw.Over)
}

// SetTextColor sets the color used by DrawText.
func (s *Surface) SetTextColor(c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.textColor = c
}

// DrawText draws one line of text with its top-left corner at (x, y).
//
// Parameters:
//   - x, y: the top-left corner in surface pixels
//   - text: the text
//
// Returns:
//   - int: the advance width of the text in pixels
func (s *Surface) DrawText(x, y int, text string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	d := &font.Drawer{
		Dst:  s.img,
		Src:  image.NewUniform(s.textColor),
		Face: s.face,
	}
	d.Dot = fixedPoint(x, y+s.face.Metrics().Ascent.Ceil())
	start := d.Dot.X
	d.DrawString(text)
	return (d.Dot.X - start).Ceil()
}

func (s *Surface) composite(dst *image.RGBA) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.img.Bounds().Add(image.Pt(s.x, s.y))
	draw.Draw(dst, r, s.img, image.Point{}, draw.Over)
}
