package light

import (
	"encoding/binary"
	"math"
)

// GPULightSource is the WGSL struct matching GPULight.
const GPULightSource = `struct Light {
    direction: vec3<f32>,
    intensity: f32,
    color: vec3<f32>,
    enabled: f32,
};
`

// GPULight is the uniform layout of a single directional light. Size: 32 bytes.
type GPULight struct {
	Direction [3]float32
	Intensity float32
	Color     [3]float32
	Enabled   float32
}

// NewGPULight packs l for upload. A nil light packs as disabled.
//
// Parameters:
//   - l: the world-space light
//
// Returns:
//   - GPULight: the packed light
func NewGPULight(l Light) GPULight {
	if l == nil || !l.Enabled() {
		return GPULight{}
	}
	return GPULight{
		Direction: l.Direction(),
		Intensity: l.Intensity(),
		Color:     l.Color(),
		Enabled:   1,
	}
}

// Marshal serializes the light into a 32-byte little-endian buffer.
//
// Returns:
//   - []byte: the uniform bytes
func (g GPULight) Marshal() []byte {
	buf := make([]byte, 32)
	fields := [8]float32{
		g.Direction[0], g.Direction[1], g.Direction[2], g.Intensity,
		g.Color[0], g.Color[1], g.Color[2], g.Enabled,
	}
	for i, f := range fields {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}
