package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// SamplerOptions configures the sampler shared by every texture. Zero fields fall back to
// repeat addressing, linear filtering, a LOD range of [0, 32] and no anisotropy.
type SamplerOptions struct {
	AddressModeU  wgpu.AddressMode
	AddressModeV  wgpu.AddressMode
	AddressModeW  wgpu.AddressMode
	MagFilter     wgpu.FilterMode
	MinFilter     wgpu.FilterMode
	MipmapFilter  wgpu.MipmapFilterMode
	LodMinClamp   float32
	LodMaxClamp   float32
	MaxAnisotropy uint16
}

// WGPURendererBackendBuilderOption is a functional option applied to the wgpu backend during construction.
type WGPURendererBackendBuilderOption func(*wgpuRendererBackendImpl)

// WithMSAA sets the multisample anti-aliasing sample count.
// When not specified, the default is MSAA4x. Use MSAAOff to disable MSAA entirely.
//
// Parameters:
//   - count: the MSAASampleCount to use
//
// Returns:
//   - WGPURendererBackendBuilderOption: a function that applies the MSAA option
func WithMSAA(count MSAASampleCount) WGPURendererBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		b.sampleCount = count
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU fallback adapter instead of hardware GPU
// acceleration. This requires a software Vulkan ICD such as SwiftShader or lavapipe.
//
// Parameters:
//   - force: true to force the software fallback adapter
//
// Returns:
//   - WGPURendererBackendBuilderOption: a function that applies the fallback adapter option
func WithForceSoftwareRenderer(force bool) WGPURendererBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		b.forceFallbackAdapter = force
	}
}

// WithSampler overrides the shared texture sampler.
//
// Parameters:
//   - options: the sampler settings; zero fields keep their defaults
//
// Returns:
//   - WGPURendererBackendBuilderOption: a function that applies the sampler option
func WithSampler(options SamplerOptions) WGPURendererBackendBuilderOption {
	return func(b *wgpuRendererBackendImpl) {
		b.samplerOptions = options
	}
}
