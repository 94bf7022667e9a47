package pipeline

import (
	"testing"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
)

func TestNewPipeline_KindDefaults(t *testing.T) {
	s := resource.NewShaderSource("s", "@vertex fn vs_main() {} @fragment fn fs_main() {}")

	mesh := NewPipeline("mesh", PipelineKindMesh, s)
	assert.Equal(t, wgpu.PrimitiveTopologyTriangleList, mesh.Topology())
	assert.True(t, mesh.DepthTestEnabled())
	assert.False(t, mesh.BlendEnabled())
	assert.Same(t, s, mesh.Shader())
	assert.Nil(t, mesh.RenderPipeline())

	lines := NewPipeline("lines", PipelineKindLines, s)
	assert.Equal(t, wgpu.PrimitiveTopologyLineList, lines.Topology())

	overlay := NewPipeline("overlay", PipelineKindOverlay, s)
	assert.False(t, overlay.DepthTestEnabled())
	assert.False(t, overlay.DepthWriteEnabled())
	assert.True(t, overlay.BlendEnabled())
	assert.NotNil(t, overlay.BlendState())
}

func TestNewPipeline_Options(t *testing.T) {
	p := NewPipeline("custom", PipelineKindMesh, nil,
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
		WithBlendEnabled(true),
		WithDepthWriteEnabled(false),
	)

	assert.Equal(t, "custom", p.PipelineKey())
	assert.Equal(t, PipelineKindMesh, p.Kind())
	assert.Equal(t, wgpu.CullModeBack, p.CullMode())
	assert.Equal(t, wgpu.FrontFaceCW, p.FrontFace())
	assert.True(t, p.BlendEnabled())
	assert.False(t, p.DepthWriteEnabled())
	assert.Equal(t, wgpu.ColorWriteMaskAll, p.WriteMask())
}

func TestPipelineKind_String(t *testing.T) {
	assert.Equal(t, "mesh", PipelineKindMesh.String())
	assert.Equal(t, "lines", PipelineKindLines.String())
	assert.Equal(t, "overlay", PipelineKindOverlay.String())
	assert.Equal(t, "unknown", PipelineKind(9).String())
}
