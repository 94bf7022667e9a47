package renderer

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/display"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/light"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer/pipeline"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer/shader"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

const (
	// MeshPipelineKey is the built-in pipeline for meshes without a custom shader.
	MeshPipelineKey = "mesh"
	// LinesPipelineKey is the built-in pipeline for line nodes.
	LinesPipelineKey = "lines"
	// OverlayPipelineKey is the built-in pipeline for the overlay image.
	OverlayPipelineKey = "overlay"
)

// ErrNoFrame is returned by Draw and DrawOverlay outside of the rendering phases of a frame.
var ErrNoFrame = errors.New("no frame in progress")

// RenderingEventArg is passed to every rendering phase listener.
type RenderingEventArg struct {
	// Renderer is the renderer firing the phase.
	Renderer Renderer
	// DeltaTime is the engine tick delta in seconds. Zero for Initialize and Deinitialize.
	DeltaTime float32
	// Frame is the engine tick counter.
	Frame uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	viewport  display.Viewport
	sceneRoot scene.Node
	backend   RendererBackend

	pipelineCache   map[string]pipeline.Pipeline
	pendingShaders  []pipeline.Pipeline
	uploaded        map[resource.Texture]bool
	pendingTextures []resource.Texture

	initializeEvent   *event.Event[RenderingEventArg]
	preProcessEvent   *event.Event[RenderingEventArg]
	processEvent      *event.Event[RenderingEventArg]
	postProcessEvent  *event.Event[RenderingEventArg]
	deinitializeEvent *event.Event[RenderingEventArg]

	initialized bool
	inFrame     bool
	resize      *[2]int
	clearColor  [4]float32
	presentMode *PresentMode

	logger *slog.Logger
}

// Renderer draws the scene bound to it into its viewport. It is an engine Module and fires its own
// rendering phases on every engine Process: PreProcess, Process and PostProcess, with the frame open
// so listeners can Draw.
type Renderer interface {
	engine.Module

	// SceneRoot returns the bound scene root.
	//
	// Returns:
	//   - scene.Node: the root, or nil if none is bound
	SceneRoot() scene.Node

	// SetSceneRoot binds a scene root. The previous root is not touched.
	//
	// Parameters:
	//   - root: the new root
	SetSceneRoot(root scene.Node)

	// Viewport returns the viewport the renderer draws into.
	//
	// Returns:
	//   - display.Viewport: the viewport
	Viewport() display.Viewport

	// InitializeEvent is fired once after the backend is ready.
	//
	// Returns:
	//   - *event.Event[RenderingEventArg]: the attach point
	InitializeEvent() *event.Event[RenderingEventArg]

	// PreProcessEvent is fired first in every frame.
	//
	// Returns:
	//   - *event.Event[RenderingEventArg]: the attach point
	PreProcessEvent() *event.Event[RenderingEventArg]

	// ProcessEvent is fired in every frame after PreProcess. Rendering views attach here.
	//
	// Returns:
	//   - *event.Event[RenderingEventArg]: the attach point
	ProcessEvent() *event.Event[RenderingEventArg]

	// PostProcessEvent is fired last in every frame. Overlays attach here.
	//
	// Returns:
	//   - *event.Event[RenderingEventArg]: the attach point
	PostProcessEvent() *event.Event[RenderingEventArg]

	// DeinitializeEvent is fired once before the backend is released.
	//
	// Returns:
	//   - *event.Event[RenderingEventArg]: the attach point
	DeinitializeEvent() *event.Event[RenderingEventArg]

	// LoadTexture decodes t and uploads it to the GPU. Before Initialize the upload is queued;
	// the texture is still decoded immediately.
	//
	// Parameters:
	//   - t: the texture
	//
	// Returns:
	//   - error: a decode or upload error
	LoadTexture(t resource.Texture) error

	// TextureUploaded reports whether t has reached the GPU.
	//
	// Parameters:
	//   - t: the texture
	//
	// Returns:
	//   - bool: true once uploaded
	TextureUploaded(t resource.Texture) bool

	// LoadShader loads s and compiles a mesh pipeline for it. Before Initialize the compile is queued.
	// Loading the same shader twice is a no-op.
	//
	// Parameters:
	//   - s: the shader
	//
	// Returns:
	//   - error: a load or compile error
	LoadShader(s resource.Shader) error

	// Pipeline returns the cached pipeline for key, or nil.
	//
	// Parameters:
	//   - key: the pipeline key
	//
	// Returns:
	//   - pipeline.Pipeline: the pipeline
	Pipeline(key string) pipeline.Pipeline

	// Draw submits one draw to the frame in progress.
	//
	// Parameters:
	//   - cmd: the draw
	//
	// Returns:
	//   - error: ErrNoFrame outside a frame, or a backend error
	Draw(cmd DrawCommand) error

	// DrawOverlay blends img over the frame in progress.
	//
	// Parameters:
	//   - img: an image the size of the viewport
	//
	// Returns:
	//   - error: ErrNoFrame outside a frame, or a backend error
	DrawOverlay(img *image.RGBA) error

	// SetClearColor sets the background color.
	//
	// Parameters:
	//   - r, g, b, a: components in [0, 1]
	SetClearColor(r, g, b, a float32)

	// Backend returns the GPU backend.
	//
	// Returns:
	//   - RendererBackend: the backend
	Backend() RendererBackend

	// Logger returns the renderer's logger. Listeners attached to the renderer log through it.
	//
	// Returns:
	//   - *slog.Logger: the logger
	Logger() *slog.Logger
}

var _ Renderer = &renderer{}

// NewRenderer creates a Renderer drawing into viewport. The backend defaults to the wgpu backend and
// is initialized on engine Initialize. The renderer installs the viewport frame's resize callback.
//
// Parameters:
//   - viewport: the viewport to draw into
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(viewport display.Viewport, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:                &sync.Mutex{},
		viewport:          viewport,
		pipelineCache:     make(map[string]pipeline.Pipeline),
		uploaded:          make(map[resource.Texture]bool),
		initializeEvent:   event.NewEvent[RenderingEventArg](),
		preProcessEvent:   event.NewEvent[RenderingEventArg](),
		processEvent:      event.NewEvent[RenderingEventArg](),
		postProcessEvent:  event.NewEvent[RenderingEventArg](),
		deinitializeEvent: event.NewEvent[RenderingEventArg](),
		clearColor:        [4]float32{0.1, 0.1, 0.1, 1},
		logger:            slog.Default(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.backend == nil {
		r.backend = NewWGPURendererBackend()
	}
	if r.presentMode != nil {
		r.backend.SetPresentMode(*r.presentMode)
	}
	r.backend.SetClearColor(r.clearColor)

	viewport.Frame().SetResizeCallback(func(width, height int) {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.resize = &[2]int{width, height}
	})
	return r
}

// HandleInitialize initializes the backend, compiles the built-in and queued pipelines, uploads queued
// textures, then fires the rendering Initialize event. Backend failure is fatal.
func (r *renderer) HandleInitialize(_ engine.InitializeEventArg) {
	if err := r.backend.Init(r.viewport.Frame()); err != nil {
		panic(fmt.Sprintf("failed to initialize renderer backend: %v", err))
	}

	builtins := []pipeline.Pipeline{
		pipeline.NewPipeline(MeshPipelineKey, pipeline.PipelineKindMesh, resource.NewShaderSource(MeshPipelineKey, meshShaderSource)),
		pipeline.NewPipeline(LinesPipelineKey, pipeline.PipelineKindLines, resource.NewShaderSource(LinesPipelineKey, meshShaderSource)),
		pipeline.NewPipeline(OverlayPipelineKey, pipeline.PipelineKindOverlay, resource.NewShaderSource(OverlayPipelineKey, overlayShaderSource),
			pipeline.WithBlendState(premultipliedBlend())),
	}
	for _, p := range builtins {
		if err := r.backend.RegisterPipeline(p); err != nil {
			panic(fmt.Sprintf("failed to compile built-in pipeline %s: %v", p.PipelineKey(), err))
		}
	}

	r.mu.Lock()
	for _, p := range builtins {
		r.pipelineCache[p.PipelineKey()] = p
	}
	shaders := r.pendingShaders
	textures := r.pendingTextures
	r.pendingShaders = nil
	r.pendingTextures = nil
	r.initialized = true
	r.mu.Unlock()

	for _, p := range shaders {
		if err := r.backend.RegisterPipeline(p); err != nil {
			r.logger.Error("shader compile failed", "shader", p.PipelineKey(), "error", err)
			r.mu.Lock()
			delete(r.pipelineCache, p.PipelineKey())
			r.mu.Unlock()
		}
	}
	for _, t := range textures {
		if err := r.upload(t); err != nil {
			r.logger.Error("texture upload failed", "texture", t.Name(), "error", err)
		}
	}

	r.logger.Info("renderer initialized", "pipelines", len(r.pipelineCache), "textures", len(textures))
	r.initializeEvent.Notify(RenderingEventArg{Renderer: r})
}

// HandleProcess renders one frame: begin, PreProcess, Process, PostProcess, end and present.
func (r *renderer) HandleProcess(arg engine.ProcessEventArg) {
	r.mu.Lock()
	if !r.initialized {
		r.mu.Unlock()
		return
	}
	resize := r.resize
	r.resize = nil
	root := r.sceneRoot
	r.mu.Unlock()

	if resize != nil {
		r.backend.Resize(resize[0], resize[1])
	}

	if err := r.backend.BeginFrame(r.frameState(root, arg.DeltaTime)); err != nil {
		r.logger.Warn("frame skipped", "frame", arg.Frame, "error", err)
		return
	}
	r.setInFrame(true)

	rarg := RenderingEventArg{Renderer: r, DeltaTime: arg.DeltaTime, Frame: arg.Frame}
	r.preProcessEvent.Notify(rarg)
	r.processEvent.Notify(rarg)
	r.postProcessEvent.Notify(rarg)

	r.setInFrame(false)
	r.backend.EndFrame()
	r.backend.Present()
}

// HandleDeinitialize fires the rendering Deinitialize event and releases the backend.
func (r *renderer) HandleDeinitialize(_ engine.DeinitializeEventArg) {
	r.mu.Lock()
	if !r.initialized {
		r.mu.Unlock()
		return
	}
	r.mu.Unlock()

	r.deinitializeEvent.Notify(RenderingEventArg{Renderer: r})

	r.mu.Lock()
	r.initialized = false
	clear(r.uploaded)
	r.mu.Unlock()
	r.backend.Release()
	r.logger.Info("renderer released")
}

// frameState advances the bound viewing volume and gathers the per-frame uniforms.
func (r *renderer) frameState(root scene.Node, dt float32) FrameState {
	state := FrameState{ViewProjection: common.IdentityMat4()}
	if vv := r.viewport.ViewingVolume(); vv != nil {
		if aspect := r.viewport.Aspect(); aspect != vv.Aspect() {
			vv.SetAspect(aspect)
		}
		vv.Update(dt)
		state.ViewProjection = vv.ViewProjectionMatrix()
		state.CameraPosition = vv.Position()
	}
	for _, l := range scene.Lights(root) {
		if l.Enabled() {
			state.Light = light.NewGPULight(l)
			break
		}
	}
	return state
}

func (r *renderer) setInFrame(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inFrame = v
}

func (r *renderer) SceneRoot() scene.Node {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sceneRoot
}

func (r *renderer) SetSceneRoot(root scene.Node) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sceneRoot = root
}

func (r *renderer) Viewport() display.Viewport {
	return r.viewport
}

func (r *renderer) InitializeEvent() *event.Event[RenderingEventArg] {
	return r.initializeEvent
}

func (r *renderer) PreProcessEvent() *event.Event[RenderingEventArg] {
	return r.preProcessEvent
}

func (r *renderer) ProcessEvent() *event.Event[RenderingEventArg] {
	return r.processEvent
}

func (r *renderer) PostProcessEvent() *event.Event[RenderingEventArg] {
	return r.postProcessEvent
}

func (r *renderer) DeinitializeEvent() *event.Event[RenderingEventArg] {
	return r.deinitializeEvent
}

func (r *renderer) LoadTexture(t resource.Texture) error {
	if t == nil {
		return nil
	}
	if err := t.Load(); err != nil {
		return fmt.Errorf("load texture %s: %w", t.Name(), err)
	}

	r.mu.Lock()
	if r.uploaded[t] {
		r.mu.Unlock()
		return nil
	}
	if !r.initialized {
		r.pendingTextures = append(r.pendingTextures, t)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()
	return r.upload(t)
}

func (r *renderer) upload(t resource.Texture) error {
	if err := r.backend.UploadTexture(t); err != nil {
		return fmt.Errorf("upload texture %s: %w", t.Name(), err)
	}
	r.mu.Lock()
	r.uploaded[t] = true
	r.mu.Unlock()
	return nil
}

func (r *renderer) TextureUploaded(t resource.Texture) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploaded[t]
}

func (r *renderer) LoadShader(s resource.Shader) error {
	if s == nil {
		return nil
	}
	key := shaderPipelineKey(s)

	r.mu.Lock()
	if _, ok := r.pipelineCache[key]; ok {
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	if err := s.Load(); err != nil {
		return fmt.Errorf("load shader %s: %w", s.Name(), err)
	}
	refl := shader.Reflect(s.Source())
	if err := refl.CheckEntryPoints(s.VertexEntryPoint(), s.FragmentEntryPoint()); err != nil {
		return fmt.Errorf("load shader %s: %w", s.Name(), err)
	}
	if err := refl.CheckLayout(meshLayout); err != nil {
		return fmt.Errorf("load shader %s: %w", s.Name(), err)
	}
	p := pipeline.NewPipeline(key, pipeline.PipelineKindMesh, s)

	r.mu.Lock()
	if !r.initialized {
		r.pipelineCache[key] = p
		r.pendingShaders = append(r.pendingShaders, p)
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	if err := r.backend.RegisterPipeline(p); err != nil {
		return fmt.Errorf("compile shader %s: %w", s.Name(), err)
	}
	r.mu.Lock()
	r.pipelineCache[key] = p
	r.mu.Unlock()
	return nil
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) Draw(cmd DrawCommand) error {
	r.mu.Lock()
	inFrame := r.inFrame
	r.mu.Unlock()
	if !inFrame {
		return ErrNoFrame
	}

	key := MeshPipelineKey
	switch {
	case cmd.Model == nil:
		key = LinesPipelineKey
	case cmd.Shader != nil:
		if err := r.LoadShader(cmd.Shader); err != nil {
			return err
		}
		key = shaderPipelineKey(cmd.Shader)
	}
	if cmd.Texture != nil && !r.TextureUploaded(cmd.Texture) {
		if err := r.LoadTexture(cmd.Texture); err != nil {
			return err
		}
	}

	p := r.Pipeline(key)
	if p == nil {
		return fmt.Errorf("render pipeline %q not found in cache", key)
	}
	return r.backend.Draw(p, cmd)
}

func (r *renderer) DrawOverlay(img *image.RGBA) error {
	r.mu.Lock()
	inFrame := r.inFrame
	p := r.pipelineCache[OverlayPipelineKey]
	r.mu.Unlock()
	if !inFrame {
		return ErrNoFrame
	}
	if img == nil {
		return nil
	}
	return r.backend.DrawOverlay(p, img)
}

func (r *renderer) SetClearColor(red, green, blue, alpha float32) {
	r.mu.Lock()
	r.clearColor = [4]float32{red, green, blue, alpha}
	r.mu.Unlock()
	r.backend.SetClearColor([4]float32{red, green, blue, alpha})
}

func (r *renderer) Backend() RendererBackend {
	return r.backend
}

func (r *renderer) Logger() *slog.Logger {
	return r.logger
}

func shaderPipelineKey(s resource.Shader) string {
	return "shader:" + s.Name()
}

// premultipliedBlend matches image.RGBA, whose color channels are already multiplied by alpha.
func premultipliedBlend() *wgpu.BlendState {
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
		Alpha: wgpu.BlendComponent{
			SrcFactor: wgpu.BlendFactorOne,
			DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
			Operation: wgpu.BlendOperationAdd,
		},
	}
}
