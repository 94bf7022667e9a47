package pipeline

import (
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineKind identifies what a pipeline draws and therefore which vertex input and bind groups it uses.
type PipelineKind int

const (
	// PipelineKindMesh draws indexed GPUVertex meshes with frame, object and texture bind groups.
	PipelineKindMesh PipelineKind = iota

	// PipelineKindLines draws unindexed GPUVertex line lists with the mesh bind groups.
	PipelineKindLines

	// PipelineKindOverlay draws a full-screen triangle sampling the overlay texture. It has no vertex input.
	PipelineKindOverlay
)

func (k PipelineKind) String() string {
	switch k {
	case PipelineKindMesh:
		return "mesh"
	case PipelineKindLines:
		return "lines"
	case PipelineKindOverlay:
		return "overlay"
	default:
		return "unknown"
	}
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	mu *sync.Mutex

	kind        PipelineKind
	pipelineKey string
	shader      resource.Shader

	renderPipeline *wgpu.RenderPipeline

	depthTestEnabled  bool
	depthWriteEnabled bool
	blendEnabled      bool
	cullMode          wgpu.CullMode
	topology          wgpu.PrimitiveTopology
	frontFace         wgpu.FrontFace
	writeMask         wgpu.ColorWriteMask
	blendState        *wgpu.BlendState
}

// Pipeline describes one render pipeline: the shader it runs and the fixed-function state around it.
// Backends compile it and attach the resulting GPU object with SetRenderPipeline.
type Pipeline interface {
	// Kind returns what the pipeline draws.
	//
	// Returns:
	//   - PipelineKind: mesh, lines or overlay
	Kind() PipelineKind

	// PipelineKey returns the unique key used for caching and lookups.
	//
	// Returns:
	//   - string: the key
	PipelineKey() string

	// Shader returns the WGSL program run by the pipeline.
	//
	// Returns:
	//   - resource.Shader: the shader
	Shader() resource.Shader

	// RenderPipeline returns the compiled GPU pipeline, or nil if no GPU backend compiled it.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the compiled pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the compiled GPU pipeline.
	//
	// Parameters:
	//   - p: the WebGPU render pipeline
	SetRenderPipeline(p *wgpu.RenderPipeline)

	// DepthTestEnabled returns whether depth testing is enabled.
	//
	// Returns:
	//   - bool: true if fragments are depth tested
	DepthTestEnabled() bool

	// DepthWriteEnabled returns whether depth writing is enabled.
	//
	// Returns:
	//   - bool: true if fragments write depth
	DepthWriteEnabled() bool

	// BlendEnabled returns whether alpha blending is enabled.
	//
	// Returns:
	//   - bool: true if BlendState is applied
	BlendEnabled() bool

	// CullMode returns the face culling mode.
	//
	// Returns:
	//   - wgpu.CullMode: e.g. wgpu.CullModeNone or wgpu.CullModeBack
	CullMode() wgpu.CullMode

	// Topology returns the primitive topology.
	//
	// Returns:
	//   - wgpu.PrimitiveTopology: e.g. wgpu.PrimitiveTopologyTriangleList
	Topology() wgpu.PrimitiveTopology

	// FrontFace returns the front face winding order.
	//
	// Returns:
	//   - wgpu.FrontFace: e.g. wgpu.FrontFaceCCW
	FrontFace() wgpu.FrontFace

	// WriteMask returns the color write mask.
	//
	// Returns:
	//   - wgpu.ColorWriteMask: e.g. wgpu.ColorWriteMaskAll
	WriteMask() wgpu.ColorWriteMask

	// BlendState returns the blend state used when blending is enabled.
	//
	// Returns:
	//   - *wgpu.BlendState: the blend state
	BlendState() *wgpu.BlendState
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a Pipeline of the given kind running shader s.
// Defaults: depth test and write on, no blending, no culling, CCW front faces, and the topology
// that matches the kind.
//
// Parameters:
//   - pipelineKey: the unique key for this pipeline
//   - kind: what the pipeline draws
//   - s: the shader to run
//   - opts: options overriding the defaults
//
// Returns:
//   - Pipeline: the pipeline description
func NewPipeline(pipelineKey string, kind PipelineKind, s resource.Shader, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		mu:                &sync.Mutex{},
		pipelineKey:       pipelineKey,
		kind:              kind,
		shader:            s,
		depthTestEnabled:  true,
		depthWriteEnabled: true,
		cullMode:          wgpu.CullModeNone,
		topology:          wgpu.PrimitiveTopologyTriangleList,
		frontFace:         wgpu.FrontFaceCCW,
		writeMask:         wgpu.ColorWriteMaskAll,
		blendState: &wgpu.BlendState{
			Color: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorSrcAlpha,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
			Alpha: wgpu.BlendComponent{
				SrcFactor: wgpu.BlendFactorOne,
				DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
				Operation: wgpu.BlendOperationAdd,
			},
		},
	}
	switch kind {
	case PipelineKindLines:
		p.topology = wgpu.PrimitiveTopologyLineList
	case PipelineKindOverlay:
		p.depthTestEnabled = false
		p.depthWriteEnabled = false
		p.blendEnabled = true
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) Kind() PipelineKind {
	return p.kind
}

func (p *pipeline) PipelineKey() string {
	return p.pipelineKey
}

func (p *pipeline) Shader() resource.Shader {
	return p.shader
}

func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderPipeline
}

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderPipeline = rp
}

func (p *pipeline) DepthTestEnabled() bool {
	return p.depthTestEnabled
}

func (p *pipeline) DepthWriteEnabled() bool {
	return p.depthWriteEnabled
}

func (p *pipeline) BlendEnabled() bool {
	return p.blendEnabled
}

func (p *pipeline) CullMode() wgpu.CullMode {
	return p.cullMode
}

func (p *pipeline) Topology() wgpu.PrimitiveTopology {
	return p.topology
}

func (p *pipeline) FrontFace() wgpu.FrontFace {
	return p.frontFace
}

func (p *pipeline) WriteMask() wgpu.ColorWriteMask {
	return p.writeMask
}

func (p *pipeline) BlendState() *wgpu.BlendState {
	return p.blendState
}
