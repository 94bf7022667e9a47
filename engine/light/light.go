package light

import (
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
)

// lightImpl is the implementation of the Light interface.
type lightImpl struct {
	direction [3]float32
	color     [3]float32
	intensity float32
	enabled   bool
}

// Light is a directional light carried by a scene light node. It has no position, only a
// direction, like a distant sun. The direction is in the space of the node that holds the light;
// Transformed produces the world-space copy the renderer consumes.
type Light interface {
	// Direction returns the normalized direction of the light.
	//
	// Returns:
	//   - [3]float32: normalized direction as (x, y, z)
	Direction() [3]float32

	// Color returns the RGB color of the light.
	//
	// Returns:
	//   - [3]float32: color as (r, g, b)
	Color() [3]float32

	// Intensity returns the scalar intensity multiplier for the light.
	Intensity() float32

	// Enabled returns whether this light contributes to rendering.
	Enabled() bool

	// SetDirection sets the direction of the light and normalizes it.
	//
	// Parameters:
	//   - x, y, z: direction components (will be normalized)
	SetDirection(x, y, z float32)

	// SetColor sets the RGB color of the light.
	//
	// Parameters:
	//   - r, g, b: color components
	SetColor(r, g, b float32)

	// SetIntensity sets the scalar intensity multiplier.
	//
	// Parameters:
	//   - intensity: the intensity value
	SetIntensity(intensity float32)

	// SetEnabled enables or disables the light.
	//
	// Parameters:
	//   - enabled: true to enable
	SetEnabled(enabled bool)

	// Transformed returns a copy of the light with its direction rotated by m.
	//
	// Parameters:
	//   - m: the model matrix of the node holding the light
	//
	// Returns:
	//   - Light: the transformed copy
	Transformed(m common.Mat4) Light
}

var _ Light = &lightImpl{}

// NewLight creates a directional light. Defaults: white, intensity 1, pointing down -Y, enabled.
//
// Parameters:
//   - opts: variadic list of LightBuilderOption functions to configure the light
//
// Returns:
//   - Light: a new Light instance
func NewLight(opts ...LightBuilderOption) Light {
	l := &lightImpl{
		direction: [3]float32{0, -1, 0},
		color:     [3]float32{1, 1, 1},
		intensity: 1.0,
		enabled:   true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *lightImpl) Direction() [3]float32 {
	return l.direction
}

func (l *lightImpl) Color() [3]float32 {
	return l.color
}

func (l *lightImpl) Intensity() float32 {
	return l.intensity
}

func (l *lightImpl) Enabled() bool {
	return l.enabled
}

func (l *lightImpl) SetDirection(x, y, z float32) {
	l.direction = common.Normalize([3]float32{x, y, z})
}

func (l *lightImpl) SetColor(r, g, b float32) {
	l.color = [3]float32{r, g, b}
}

func (l *lightImpl) SetIntensity(intensity float32) {
	l.intensity = intensity
}

func (l *lightImpl) SetEnabled(enabled bool) {
	l.enabled = enabled
}

func (l *lightImpl) Transformed(m common.Mat4) Light {
	out := *l
	d := l.direction
	out.direction = common.Normalize([3]float32{
		m[0]*d[0] + m[4]*d[1] + m[8]*d[2],
		m[1]*d[0] + m[5]*d[1] + m[9]*d[2],
		m[2]*d[0] + m[6]*d[1] + m[10]*d[2],
	})
	return &out
}
