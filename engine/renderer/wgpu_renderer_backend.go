package renderer

import (
	"errors"
	"fmt"
	"image"
	"runtime"
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/model"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer/pipeline"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// initialObjectCapacity is the number of per-draw uniforms the object buffer holds before it grows.
const initialObjectCapacity = 256

type gpuMesh struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32
}

type gpuTexture struct {
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	bindGroup *wgpu.BindGroup
	width     int
	height    int
}

func (t *gpuTexture) release() {
	if t.bindGroup != nil {
		t.bindGroup.Release()
	}
	if t.view != nil {
		t.view.Release()
	}
	if t.texture != nil {
		t.texture.Release()
	}
}

type wgpuRendererBackendImpl struct {
	mu     *sync.Mutex
	device *wgpu.Device
	queue  *wgpu.Queue

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface

	surfaceFormat        *wgpu.TextureFormat
	msaaTexture          *wgpu.Texture
	msaaTextureView      *wgpu.TextureView
	depthTexture         *wgpu.Texture
	depthTextureView     *wgpu.TextureView
	renderPassDescriptor *wgpu.RenderPassDescriptor

	presentMode          wgpu.PresentMode
	sampleCount          MSAASampleCount
	forceFallbackAdapter bool
	samplerOptions       SamplerOptions
	clearColor           [4]float32
	width                int
	height               int

	frameLayout   *wgpu.BindGroupLayout
	objectLayout  *wgpu.BindGroupLayout
	textureLayout *wgpu.BindGroupLayout
	meshLayout    *wgpu.PipelineLayout
	overlayLayout *wgpu.PipelineLayout

	sampler        *wgpu.Sampler
	frameBuffer    *wgpu.Buffer
	frameBindGroup *wgpu.BindGroup

	objectBuffer    *wgpu.Buffer
	objectBindGroup *wgpu.BindGroup
	objectCapacity  int
	objectCount     int

	whiteTexture *gpuTexture
	overlay      *gpuTexture
	textures     map[resource.Texture]*gpuTexture
	meshes       map[model.Model]*gpuMesh
	pipelines    []pipeline.Pipeline

	// Buffers and bind groups referenced by the current pass; released once the frame is submitted.
	transientBuffers    []*wgpu.Buffer
	transientBindGroups []*wgpu.BindGroup

	frameEncoder *wgpu.CommandEncoder
	framePass    *wgpu.RenderPassEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

// NewWGPURendererBackend creates the WebGPU backend. No GPU object exists until Init.
//
// Parameters:
//   - options: functional options for MSAA, adapter selection and sampling
//
// Returns:
//   - RendererBackend: the backend
func NewWGPURendererBackend(options ...WGPURendererBackendBuilderOption) RendererBackend {
	b := &wgpuRendererBackendImpl{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: MSAA4x,
		clearColor:  [4]float32{0.1, 0.1, 0.1, 1},
		textures:    make(map[resource.Texture]*gpuTexture),
		meshes:      make(map[model.Model]*gpuMesh),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *wgpuRendererBackendImpl) Init(frame window.Window) error {
	descriptor := frame.SurfaceDescriptor()
	if descriptor == nil {
		return errors.New("frame has no platform surface")
	}

	runtime.LockOSThread()
	b.instance = wgpu.CreateInstance(nil)
	b.surface = b.instance.CreateSurface(descriptor)

	a, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: b.forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: wgpu.DefaultLimits(),
		},
	})
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	b.device = d
	b.queue = d.GetQueue()

	if err := b.createSharedObjects(); err != nil {
		return err
	}
	b.Resize(frame.Width(), frame.Height())
	return nil
}

// createSharedObjects builds the bind group layouts, the sampler and the uniform buffers every draw uses.
func (b *wgpuRendererBackendImpl) createSharedObjects() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	visibility := wgpu.ShaderStageVertex | wgpu.ShaderStageFragment

	frameEntry := wgpu.BindGroupLayoutEntry{Binding: 0, Visibility: visibility}
	frameEntry.Buffer.Type = wgpu.BufferBindingTypeUniform
	frameEntry.Buffer.MinBindingSize = frameUniformSize

	objectEntry := wgpu.BindGroupLayoutEntry{Binding: 0, Visibility: visibility}
	objectEntry.Buffer.Type = wgpu.BufferBindingTypeUniform
	objectEntry.Buffer.HasDynamicOffset = true
	objectEntry.Buffer.MinBindingSize = objectUniformSize

	textureEntry := wgpu.BindGroupLayoutEntry{Binding: 0, Visibility: wgpu.ShaderStageFragment}
	textureEntry.Texture.SampleType = wgpu.TextureSampleTypeFloat
	textureEntry.Texture.ViewDimension = wgpu.TextureViewDimension2D
	samplerEntry := wgpu.BindGroupLayoutEntry{Binding: 1, Visibility: wgpu.ShaderStageFragment}
	samplerEntry.Sampler.Type = wgpu.SamplerBindingTypeFiltering

	var err error
	if b.frameLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Frame Bind Group Layout", Entries: []wgpu.BindGroupLayoutEntry{frameEntry},
	}); err != nil {
		return err
	}
	if b.objectLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Object Bind Group Layout", Entries: []wgpu.BindGroupLayoutEntry{objectEntry},
	}); err != nil {
		return err
	}
	if b.textureLayout, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Texture Bind Group Layout", Entries: []wgpu.BindGroupLayoutEntry{textureEntry, samplerEntry},
	}); err != nil {
		return err
	}
	if b.meshLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Mesh Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.frameLayout, b.objectLayout, b.textureLayout},
	}); err != nil {
		return err
	}
	if b.overlayLayout, err = b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Overlay Pipeline Layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{b.textureLayout},
	}); err != nil {
		return err
	}

	o := b.samplerOptions
	if b.sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Default Sampler",
		AddressModeU:  common.Coalesce(o.AddressModeU, wgpu.AddressModeRepeat),
		AddressModeV:  common.Coalesce(o.AddressModeV, wgpu.AddressModeRepeat),
		AddressModeW:  common.Coalesce(o.AddressModeW, wgpu.AddressModeRepeat),
		MagFilter:     common.Coalesce(o.MagFilter, wgpu.FilterModeLinear),
		MinFilter:     common.Coalesce(o.MinFilter, wgpu.FilterModeLinear),
		MipmapFilter:  common.Coalesce(o.MipmapFilter, wgpu.MipmapFilterModeLinear),
		LodMinClamp:   common.Coalesce(o.LodMinClamp, 0.0),
		LodMaxClamp:   common.Coalesce(o.LodMaxClamp, 32.0),
		MaxAnisotropy: common.Coalesce(o.MaxAnisotropy, 1),
	}); err != nil {
		return err
	}

	if b.frameBuffer, err = b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Frame Uniform Buffer",
		Size:  frameUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	}); err != nil {
		return err
	}
	if b.frameBindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Frame Bind Group",
		Layout:  b.frameLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: b.frameBuffer, Offset: 0, Size: frameUniformSize}},
	}); err != nil {
		return err
	}
	if err = b.growObjectBuffer(initialObjectCapacity); err != nil {
		return err
	}

	b.whiteTexture, err = b.createTexture("White Texture", []byte{255, 255, 255, 255}, 1, 1, 4)
	return err
}

// growObjectBuffer replaces the object ring with one holding capacity uniforms. The old buffer stays
// alive until the frame that referenced it is submitted.
func (b *wgpuRendererBackendImpl) growObjectBuffer(capacity int) error {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Object Uniform Buffer",
		Size:  uint64(capacity * objectStride),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return err
	}
	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   "Object Bind Group",
		Layout:  b.objectLayout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Offset: 0, Size: objectUniformSize}},
	})
	if err != nil {
		buf.Release()
		return err
	}
	if b.objectBuffer != nil {
		b.transientBuffers = append(b.transientBuffers, b.objectBuffer)
		b.transientBindGroups = append(b.transientBindGroups, b.objectBindGroup)
	}
	b.objectBuffer = buf
	b.objectBindGroup = bg
	b.objectCapacity = capacity
	b.objectCount = 0
	return nil
}

func (b *wgpuRendererBackendImpl) createTexture(label string, pixels []byte, width, height, stride int) (*gpuTexture, error) {
	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:     label,
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		Format:        wgpu.TextureFormatRGBA8UnormSrgb,
		MipLevelCount: 1,
		SampleCount:   1,
	})
	if err != nil {
		return nil, err
	}
	out := &gpuTexture{texture: tex, width: width, height: height}
	b.writeTexture(out, pixels, stride)

	if out.view, err = tex.CreateView(nil); err != nil {
		out.release()
		return nil, err
	}
	if out.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  label + " Bind Group",
		Layout: b.textureLayout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: out.view},
			{Binding: 1, Sampler: b.sampler},
		},
	}); err != nil {
		out.release()
		return nil, err
	}
	return out, nil
}

func (b *wgpuRendererBackendImpl) writeTexture(t *gpuTexture, pixels []byte, stride int) {
	b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(stride),
			RowsPerImage: uint32(t.height),
		},
		&wgpu.Extent3D{
			Width:              uint32(t.width),
			Height:             uint32(t.height),
			DepthOrArrayLayers: 1,
		},
	)
}

// Resize is a wrapper for the boilerplate of reconfiguring the surface and rebuilding the
// MSAA and depth targets.
func (b *wgpuRendererBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.surface == nil || width <= 0 || height <= 0 {
		return
	}
	b.width, b.height = width, height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseTargets()

	count := uint32(b.sampleCount)
	msaaEnabled := count > 1

	if msaaEnabled {
		msaaTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   count,
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(fmt.Sprintf("failed to create msaa texture: %v", err))
		}
		b.msaaTexture = msaaTexture
		b.msaaTextureView, err = msaaTexture.CreateView(nil)
		if err != nil {
			panic(fmt.Sprintf("failed to create msaa texture view: %v", err))
		}
	}

	// Depth texture sample count must match the color attachment.
	depthTexture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   count,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(fmt.Sprintf("failed to create depth texture: %v", err))
	}
	b.depthTexture = depthTexture
	b.depthTextureView, err = depthTexture.CreateView(nil)
	if err != nil {
		panic(fmt.Sprintf("failed to create depth texture view: %v", err))
	}

	// With MSAA the resolve target is set per frame to the swapchain view; without it the view is.
	storeOp := wgpu.StoreOpStore
	if msaaEnabled {
		storeOp = wgpu.StoreOpDiscard
	}
	b.renderPassDescriptor = &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{
			{
				View:       b.msaaTextureView,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    storeOp,
				ClearValue: b.clearValue(),
			},
		},
		DepthStencilAttachment: &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		},
	}
}

func (b *wgpuRendererBackendImpl) clearValue() wgpu.Color {
	c := b.clearColor
	return wgpu.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2]), A: float64(c[3])}
}

func (b *wgpuRendererBackendImpl) releaseTargets() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		b.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		b.presentMode = wgpu.PresentModeImmediate
	}
}

func (b *wgpuRendererBackendImpl) SetClearColor(c [4]float32) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.clearColor = c
	if b.renderPassDescriptor != nil {
		b.renderPassDescriptor.ColorAttachments[0].ClearValue = b.clearValue()
	}
}

func (b *wgpuRendererBackendImpl) RegisterPipeline(p pipeline.Pipeline) error {
	s := p.Shader()
	if s == nil {
		return fmt.Errorf("pipeline %s has no shader", p.PipelineKey())
	}
	if err := s.Load(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil || b.surfaceFormat == nil {
		return errors.New("backend not initialized")
	}

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: s.Name(),
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.Source(),
		},
	})
	if err != nil {
		return err
	}
	defer module.Release()

	layout := b.meshLayout
	buffers := []wgpu.VertexBufferLayout{model.GPUVertexLayout()}
	if p.Kind() == pipeline.PipelineKindOverlay {
		layout = b.overlayLayout
		buffers = nil
	}

	created, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey() + " Render Pipeline",
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: s.VertexEntryPoint(),
			Buffers:    buffers,
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: s.FragmentEntryPoint(),
			Targets: []wgpu.ColorTargetState{
				func() wgpu.ColorTargetState {
					state := wgpu.ColorTargetState{
						Format:    *b.surfaceFormat,
						WriteMask: p.WriteMask(),
					}
					if p.BlendEnabled() {
						state.Blend = p.BlendState()
					}
					return state
				}(),
			},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  p.Topology(),
			FrontFace: p.FrontFace(),
			CullMode:  p.CullMode(),
		},
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: func() *wgpu.DepthStencilState {
			depthCompare := wgpu.CompareFunctionLess
			if !p.DepthTestEnabled() {
				depthCompare = wgpu.CompareFunctionAlways
			}
			return &wgpu.DepthStencilState{
				Format:            wgpu.TextureFormatDepth24Plus,
				DepthWriteEnabled: p.DepthWriteEnabled(),
				DepthCompare:      depthCompare,
				StencilFront: wgpu.StencilFaceState{
					Compare: wgpu.CompareFunctionAlways,
				},
				StencilBack: wgpu.StencilFaceState{
					Compare: wgpu.CompareFunctionAlways,
				},
			}
		}(),
	})
	if err != nil {
		return err
	}

	if old := p.RenderPipeline(); old != nil {
		old.Release()
	} else {
		b.pipelines = append(b.pipelines, p)
	}
	p.SetRenderPipeline(created)
	return nil
}

func (b *wgpuRendererBackendImpl) UploadTexture(t resource.Texture) error {
	if !t.Loaded() {
		return fmt.Errorf("texture %s is not loaded", t.Name())
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.device == nil {
		return errors.New("backend not initialized")
	}
	if _, ok := b.textures[t]; ok {
		return nil
	}
	gt, err := b.createTexture(t.Name(), t.Pixels(), t.Width(), t.Height(), t.Width()*4)
	if err != nil {
		return err
	}
	b.textures[t] = gt
	return nil
}

func (b *wgpuRendererBackendImpl) BeginFrame(state FrameState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.renderPassDescriptor == nil {
		return errors.New("surface not configured")
	}
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}

	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.queue.WriteBuffer(b.frameBuffer, 0, state.Marshal())
	b.objectCount = 0

	if b.sampleCount > 1 {
		b.renderPassDescriptor.ColorAttachments[0].ResolveTarget = view
	} else {
		b.renderPassDescriptor.ColorAttachments[0].View = view
	}
	pass := encoder.BeginRenderPass(b.renderPassDescriptor)

	b.frameEncoder = encoder
	b.framePass = pass
	b.frameSurface = surfaceTexture
	b.frameView = view

	return nil
}

// nextObject writes one per-draw uniform and returns its dynamic offset.
func (b *wgpuRendererBackendImpl) nextObject(cmd DrawCommand, unlit bool) (uint32, error) {
	if b.objectCount == b.objectCapacity {
		if err := b.growObjectBuffer(b.objectCapacity * 2); err != nil {
			return 0, err
		}
	}
	offset := uint32(b.objectCount * objectStride)
	b.queue.WriteBuffer(b.objectBuffer, uint64(offset), marshalObject(cmd.Transform, cmd.Color, unlit))
	b.objectCount++
	return offset, nil
}

func (b *wgpuRendererBackendImpl) Draw(p pipeline.Pipeline, cmd DrawCommand) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	renderPipeline := p.RenderPipeline()
	if renderPipeline == nil {
		return fmt.Errorf("pipeline %s is not compiled", p.PipelineKey())
	}

	var (
		vertexBuffer *wgpu.Buffer
		indexBuffer  *wgpu.Buffer
		count        uint32
	)
	if cmd.Model != nil {
		mesh, err := b.mesh(cmd.Model)
		if err != nil {
			return err
		}
		vertexBuffer, indexBuffer, count = mesh.vertexBuffer, mesh.indexBuffer, mesh.indexCount
	} else {
		if len(cmd.Lines) == 0 {
			return nil
		}
		data := make([]byte, 0, len(cmd.Lines)*2*32)
		for _, l := range cmd.Lines {
			from := model.GPUVertex{Position: l.From}
			to := model.GPUVertex{Position: l.To}
			data = append(data, from.Marshal()...)
			data = append(data, to.Marshal()...)
		}
		buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: cmd.Name + " Line Buffer",
			Size:  uint64(len(data)),
			Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return err
		}
		b.queue.WriteBuffer(buf, 0, data)
		b.transientBuffers = append(b.transientBuffers, buf)
		vertexBuffer, count = buf, uint32(len(cmd.Lines)*2)
	}

	offset, err := b.nextObject(cmd, cmd.Model == nil)
	if err != nil {
		return err
	}
	texture := b.whiteTexture
	if gt, ok := b.textures[cmd.Texture]; ok && cmd.Texture != nil {
		texture = gt
	}

	b.framePass.SetPipeline(renderPipeline)
	b.framePass.SetBindGroup(0, b.frameBindGroup, nil)
	b.framePass.SetBindGroup(1, b.objectBindGroup, []uint32{offset})
	b.framePass.SetBindGroup(2, texture.bindGroup, nil)
	b.framePass.SetVertexBuffer(0, vertexBuffer, 0, wgpu.WholeSize)
	if indexBuffer != nil {
		b.framePass.SetIndexBuffer(indexBuffer, wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
		b.framePass.DrawIndexed(count, 1, 0, 0, 0)
	} else {
		b.framePass.Draw(count, 1, 0, 0)
	}
	return nil
}

// mesh returns the GPU buffers of m, creating them on first use.
func (b *wgpuRendererBackendImpl) mesh(m model.Model) (*gpuMesh, error) {
	if mesh, ok := b.meshes[m]; ok {
		return mesh, nil
	}
	vertexData := m.VertexData()
	indexData := m.IndexData()
	if len(vertexData) == 0 || len(indexData) == 0 {
		return nil, fmt.Errorf("model %s has no geometry", m.Name())
	}

	vb, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name() + " Vertex Buffer",
		Size:  uint64(len(vertexData)),
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, err
	}
	b.queue.WriteBuffer(vb, 0, vertexData)

	ib, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: m.Name() + " Index Buffer",
		Size:  uint64(len(indexData)),
		Usage: wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		vb.Release()
		return nil, err
	}
	b.queue.WriteBuffer(ib, 0, indexData)

	mesh := &gpuMesh{vertexBuffer: vb, indexBuffer: ib, indexCount: uint32(m.IndexCount())}
	b.meshes[m] = mesh
	return mesh, nil
}

func (b *wgpuRendererBackendImpl) DrawOverlay(p pipeline.Pipeline, img *image.RGBA) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return ErrNoFrame
	}
	if p == nil || p.RenderPipeline() == nil {
		return errors.New("overlay pipeline is not compiled")
	}
	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return nil
	}

	if b.overlay == nil || b.overlay.width != size.X || b.overlay.height != size.Y {
		if b.overlay != nil {
			b.transientBindGroups = append(b.transientBindGroups, b.overlay.bindGroup)
			b.overlay.bindGroup = nil
			b.overlay.release()
		}
		gt, err := b.createTexture("Overlay Texture", img.Pix, size.X, size.Y, img.Stride)
		if err != nil {
			return err
		}
		b.overlay = gt
	} else {
		b.writeTexture(b.overlay, img.Pix, img.Stride)
	}

	b.framePass.SetPipeline(p.RenderPipeline())
	b.framePass.SetBindGroup(0, b.overlay.bindGroup, nil)
	b.framePass.Draw(3, 1, 0, 0)
	return nil
}

func (b *wgpuRendererBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.framePass == nil {
		return
	}
	b.framePass.End()
	b.framePass.Release()
	b.framePass = nil

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err == nil {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}
	b.frameEncoder.Release()
	b.frameEncoder = nil
	b.releaseTransients()

	if err != nil {
		b.frameView.Release()
		b.frameSurface.Release()
		b.frameSurface = nil
		b.frameView = nil
	}
}

func (b *wgpuRendererBackendImpl) releaseTransients() {
	for _, bg := range b.transientBindGroups {
		if bg != nil {
			bg.Release()
		}
	}
	for _, buf := range b.transientBuffers {
		buf.Release()
	}
	b.transientBindGroups = nil
	b.transientBuffers = nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameSurface == nil {
		return
	}

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	b.frameSurface.Release()
	b.frameSurface = nil
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseTransients()
	for _, p := range b.pipelines {
		if rp := p.RenderPipeline(); rp != nil {
			rp.Release()
			p.SetRenderPipeline(nil)
		}
	}
	b.pipelines = nil
	for m, mesh := range b.meshes {
		mesh.vertexBuffer.Release()
		mesh.indexBuffer.Release()
		delete(b.meshes, m)
	}
	for t, gt := range b.textures {
		gt.release()
		delete(b.textures, t)
	}
	for _, gt := range []*gpuTexture{b.overlay, b.whiteTexture} {
		if gt != nil {
			gt.release()
		}
	}
	b.overlay, b.whiteTexture = nil, nil

	for _, bg := range []*wgpu.BindGroup{b.objectBindGroup, b.frameBindGroup} {
		if bg != nil {
			bg.Release()
		}
	}
	for _, buf := range []*wgpu.Buffer{b.objectBuffer, b.frameBuffer} {
		if buf != nil {
			buf.Release()
		}
	}
	b.objectBindGroup, b.frameBindGroup, b.objectBuffer, b.frameBuffer = nil, nil, nil, nil
	if b.sampler != nil {
		b.sampler.Release()
		b.sampler = nil
	}
	for _, pl := range []*wgpu.PipelineLayout{b.meshLayout, b.overlayLayout} {
		if pl != nil {
			pl.Release()
		}
	}
	for _, bgl := range []*wgpu.BindGroupLayout{b.frameLayout, b.objectLayout, b.textureLayout} {
		if bgl != nil {
			bgl.Release()
		}
	}
	b.meshLayout, b.overlayLayout = nil, nil
	b.frameLayout, b.objectLayout, b.textureLayout = nil, nil, nil
	b.releaseTargets()
	b.renderPassDescriptor = nil
	b.surfaceFormat = nil

	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
