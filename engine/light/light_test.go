package light

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/stretchr/testify/assert"
)

func TestNewLightDefaults(t *testing.T) {
	l := NewLight()
	assert.Equal(t, [3]float32{0, -1, 0}, l.Direction())
	assert.Equal(t, [3]float32{1, 1, 1}, l.Color())
	assert.Equal(t, float32(1), l.Intensity())
	assert.True(t, l.Enabled())
}

func TestWithDirectionNormalizes(t *testing.T) {
	l := NewLight(WithDirection(0, 0, -5), WithColor(1, 0, 0))
	assert.Equal(t, [3]float32{0, 0, -1}, l.Direction())
	assert.Equal(t, [3]float32{1, 0, 0}, l.Color())
}

func TestTransformedRotatesDirectionOnly(t *testing.T) {
	var m common.Mat4
	common.BuildModelMatrix(m[:], [3]float32{1, 2, 3}, [3]float32{0, 0, 0}, [3]float32{2, 2, 2})

	l := NewLight(WithDirection(1, 0, 0))
	w := l.Transformed(m)

	assert.InDelta(t, 1, w.Direction()[0], 1e-6, "translation and scale do not change a direction")
	assert.Equal(t, [3]float32{1, 0, 0}, l.Direction(), "original is untouched")
}

func TestGPULightMarshal(t *testing.T) {
	buf := NewGPULight(NewLight(WithIntensity(0.5))).Marshal()
	assert.Len(t, buf, 32)
	assert.Equal(t, float32(0.5), math.Float32frombits(binary.LittleEndian.Uint32(buf[12:16])))
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(buf[28:32])))

	disabled := NewGPULight(NewLight(WithEnabled(false)))
	assert.Equal(t, GPULight{}, disabled)
}
