package renderer

import (
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/light"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/model"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer/shader"
)

const (
	// frameUniformSize is the byte size of the Frame uniform: view_proj, camera_position, light.
	frameUniformSize = 64 + 16 + 32

	// objectUniformSize is the byte size of the Object uniform: model, color, flags.
	objectUniformSize = 64 + 16 + 16

	// objectStride is the dynamic offset step between Object uniforms. WebGPU requires 256-byte alignment.
	objectStride = 256
)

// Marshal packs the frame uniform.
//
// Returns:
//   - []byte: frameUniformSize bytes
func (s FrameState) Marshal() []byte {
	out := make([]byte, 0, frameUniformSize)
	out = append(out, common.SliceToBytes(s.ViewProjection[:])...)
	pos := [4]float32{s.CameraPosition[0], s.CameraPosition[1], s.CameraPosition[2], 1}
	out = append(out, common.SliceToBytes(pos[:])...)
	out = append(out, s.Light.Marshal()...)
	return out
}

// marshalObject packs the per-draw uniform.
func marshalObject(transform common.Mat4, color [4]float32, unlit bool) []byte {
	var flags [4]float32
	if unlit {
		flags[1] = 1
	}
	out := make([]byte, 0, objectUniformSize)
	out = append(out, common.SliceToBytes(transform[:])...)
	out = append(out, common.SliceToBytes(color[:])...)
	out = append(out, common.SliceToBytes(flags[:])...)
	return out
}

// meshShaderSource is the built-in shader for meshes and lines. Custom shaders use the same bind groups:
// group 0 Frame, group 1 Object (dynamic offset), group 2 texture and sampler.
const meshShaderSource = model.GPUVertexSource + light.GPULightSource + `
struct Frame {
    view_proj: mat4x4<f32>,
    camera_position: vec4<f32>,
    light: Light,
};

struct Object {
    model: mat4x4<f32>,
    color: vec4<f32>,
    flags: vec4<f32>,
};

@group(0) @binding(0) var<uniform> frame: Frame;
@group(1) @binding(0) var<uniform> object: Object;
@group(2) @binding(0) var base_texture: texture_2d<f32>;
@group(2) @binding(1) var base_sampler: sampler;

struct VertexOutput {
    @builtin(position) clip_position: vec4<f32>,
    @location(0) normal: vec3<f32>,
    @location(1) uv: vec2<f32>,
};

@vertex
fn vs_main(in: VertexInput) -> VertexOutput {
    var out: VertexOutput;
    out.clip_position = frame.view_proj * object.model * vec4<f32>(in.position, 1.0);
    out.normal = (object.model * vec4<f32>(in.normal, 0.0)).xyz;
    out.uv = in.uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    let color = object.color * textureSample(base_texture, base_sampler, in.uv);
    if (object.flags.y > 0.5 || frame.light.enabled < 0.5) {
        return color;
    }
    let n = normalize(in.normal);
    let diffuse = max(dot(n, -frame.light.direction), 0.0) * frame.light.intensity;
    return vec4<f32>(color.rgb * (vec3<f32>(0.2) + frame.light.color * diffuse), color.a);
}
`

// meshLayout is the resource interface custom mesh shaders are checked against.
var meshLayout = shader.Reflect(meshShaderSource)

// overlayShaderSource draws one full-screen triangle sampling the premultiplied overlay texture.
const overlayShaderSource = `
@group(0) @binding(0) var overlay_texture: texture_2d<f32>;
@group(0) @binding(1) var overlay_sampler: sampler;

struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

@vertex
fn vs_main(@builtin(vertex_index) index: u32) -> VertexOutput {
    let uv = vec2<f32>(f32((index << 1u) & 2u), f32(index & 2u));
    var out: VertexOutput;
    out.position = vec4<f32>(uv * vec2<f32>(2.0, -2.0) + vec2<f32>(-1.0, 1.0), 0.0, 1.0);
    out.uv = uv;
    return out;
}

@fragment
fn fs_main(in: VertexOutput) -> @location(0) vec4<f32> {
    return textureSample(overlay_texture, overlay_sampler, in.uv);
}
`
