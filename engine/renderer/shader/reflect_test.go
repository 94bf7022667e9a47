package shader

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const litSource = `
struct Frame { view_proj: mat4x4<f32> };

// @group(9) @binding(9) var<uniform> commented: Frame;
/* @group(8) @binding(0) var hidden: sampler; /* nested */ */
@group(2) @binding(1) var base_sampler: sampler;
@group(0) @binding(0) var<uniform> frame: Frame;
@group(2) @binding(0) var base_texture: texture_2d<f32>;
@group(1) @binding(0) var<storage, read_write> particles: array<vec4<f32>>;
@group(3) @binding(0) var shadow: texture_depth_2d;
@group(3) @binding(1) var shadow_sampler: sampler_comparison;
@group(4) @binding(0) var target: texture_storage_2d<rgba8unorm, write>;

@vertex
fn vs_main() {}

@fragment fn fs_main() {}
@fragment fn fs_debug() {}
`

func TestReflect_Bindings(t *testing.T) {
	r := Reflect(litSource)

	require.Len(t, r.Bindings, 7)
	var names []string
	for _, b := range r.Bindings {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"frame", "particles", "base_texture", "base_sampler", "shadow", "shadow_sampler", "target"}, names)

	frame, ok := r.Lookup(0, 0)
	require.True(t, ok)
	assert.Equal(t, wgpu.BufferBindingTypeUniform, frame.Entry.Buffer.Type)
	assert.Equal(t, "uniform buffer", frame.Kind())

	particles, _ := r.Lookup(1, 0)
	assert.Equal(t, wgpu.BufferBindingTypeStorage, particles.Entry.Buffer.Type)
	assert.Equal(t, "storage buffer", particles.Kind())

	tex, _ := r.Lookup(2, 0)
	assert.Equal(t, wgpu.TextureSampleTypeFloat, tex.Entry.Texture.SampleType)
	assert.Equal(t, wgpu.TextureViewDimension2D, tex.Entry.Texture.ViewDimension)
	assert.Equal(t, "texture", tex.Kind())
	assert.Equal(t, "texture_2d<f32>", tex.Type)

	sampler, _ := r.Lookup(2, 1)
	assert.Equal(t, wgpu.SamplerBindingTypeFiltering, sampler.Entry.Sampler.Type)

	shadow, _ := r.Lookup(3, 0)
	assert.Equal(t, wgpu.TextureSampleTypeDepth, shadow.Entry.Texture.SampleType)
	cmp, _ := r.Lookup(3, 1)
	assert.Equal(t, wgpu.SamplerBindingTypeComparison, cmp.Entry.Sampler.Type)

	target, _ := r.Lookup(4, 0)
	assert.Equal(t, "storage texture", target.Kind())
	assert.Equal(t, wgpu.StorageTextureAccessWriteOnly, target.Entry.StorageTexture.Access)

	_, ok = r.Lookup(9, 9)
	assert.False(t, ok, "commented declarations are ignored")
	_, ok = r.Lookup(8, 0)
	assert.False(t, ok, "nested block comments are ignored")
}

func TestReflect_EntryPoints(t *testing.T) {
	r := Reflect(litSource)
	assert.Equal(t, []string{"vs_main"}, r.VertexEntryPoints)
	assert.Equal(t, []string{"fs_main", "fs_debug"}, r.FragmentEntryPoints)

	assert.NoError(t, r.CheckEntryPoints("vs_main", "fs_debug"))
	assert.ErrorIs(t, r.CheckEntryPoints("vs_other", "fs_main"), ErrEntryPointNotAnnotated)
	assert.ErrorIs(t, r.CheckEntryPoints("vs_main", "fs_other"), ErrEntryPointNotAnnotated)
}

func TestReflection_CheckLayout(t *testing.T) {
	layout := Reflect(`
@group(0) @binding(0) var<uniform> frame: Frame;
@group(1) @binding(0) var<uniform> object: Object;
@group(2) @binding(0) var base_texture: texture_2d<f32>;
@group(2) @binding(1) var base_sampler: sampler;
`)

	tests := []struct {
		name    string
		source  string
		wantErr bool
	}{
		{"no bindings", "@vertex fn vs_main() {}", false},
		{"subset", "@group(2) @binding(0) var t: texture_2d<f32>;", false},
		{"renamed", "@group(0) @binding(0) var<uniform> globals: Globals;", false},
		{"unknown slot", "@group(5) @binding(0) var<uniform> extra: Extra;", true},
		{"storage for uniform", "@group(1) @binding(0) var<storage, read> object: array<f32>;", true},
		{"integer texture", "@group(2) @binding(0) var t: texture_2d<u32>;", true},
		{"cube texture", "@group(2) @binding(0) var t: texture_cube<f32>;", true},
		{"texture for sampler", "@group(2) @binding(1) var t: texture_2d<f32>;", true},
		{"comparison sampler", "@group(2) @binding(1) var s: sampler_comparison;", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Reflect(tt.source).CheckLayout(layout)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBindingMismatch)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestReflection_CheckLayoutJoinsErrors(t *testing.T) {
	layout := Reflect("@group(0) @binding(0) var<uniform> frame: Frame;")
	err := Reflect(`
@group(0) @binding(0) var s: sampler;
@group(1) @binding(0) var<uniform> object: Object;
`).CheckLayout(layout)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "@group(0) @binding(0) s: sampler")
	assert.Contains(t, err.Error(), "@group(1) @binding(0) object: Object")
}

func TestSplitTypeParams(t *testing.T) {
	base, params := splitTypeParams("texture_storage_2d<rgba8unorm, write>")
	assert.Equal(t, "texture_storage_2d", base)
	assert.Equal(t, "rgba8unorm, write", params)

	base, params = splitTypeParams("sampler")
	assert.Equal(t, "sampler", base)
	assert.Empty(t, params)
}
