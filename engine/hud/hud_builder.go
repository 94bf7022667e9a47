package hud

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// HUDBuilderOption is a functional option applied to a HUD during construction via NewHUD.
type HUDBuilderOption func(*hud)

// WithFace sets the font used by surfaces created with CreateSurface.
//
// Parameters:
//   - face: the font face
//
// Returns:
//   - HUDBuilderOption: a function that applies the font option to a HUD
func WithFace(face font.Face) HUDBuilderOption {
	return func(h *hud) {
		if face != nil {
			h.face = face
		}
	}
}

func defaultFace() font.Face {
	return basicfont.Face7x13
}

func fixedPoint(x, y int) fixed.Point26_6 {
	return fixed.P(x, y)
}
