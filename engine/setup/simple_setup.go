// Package setup assembles a ready-to-run engine: a frame, a renderer, an input device, a default
// scene with a camera and a viewing frustum, texture and shader loading, and a HUD.
//
// Typical use:
//
//	s := setup.NewSimpleSetup("demo")
//	s.SetScene(root)
//	s.Engine().Start()
//
// All mutators must be called from the goroutine that runs the engine, or before Start.
package setup

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/camera"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/display"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/event"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/hud"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/input"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
)

const (
	// DefaultWidth and DefaultHeight are the frame size in pixels.
	DefaultWidth  = 800
	DefaultHeight = 600
	// DefaultDepth is the frame color depth in bits.
	DefaultDepth = 32
	// DefaultDotFile is where EnableDebugging writes the scene graph.
	DefaultDotFile = "scene.dot"
)

// SimpleSetup owns one engine and the modules wired into it. The engine, frame, renderer, input
// device, viewport, HUD and texture loader live as long as the SimpleSetup; the scene and the
// camera can be replaced.
type SimpleSetup struct {
	mu *sync.Mutex

	title    string
	logger   *slog.Logger
	headless bool
	tickRate float64
	profile  bool
	dotFile  string
	dataDirs []string

	engine        engine.Engine
	frame         window.Window
	viewport      display.Viewport
	backend       renderer.RendererBackend
	renderer      renderer.Renderer
	input         input.Input
	scene         scene.Node
	camera        camera.Camera
	frustum       camera.Frustum
	frustumBound  bool
	renderingView *renderer.ExtRenderingView
	textureLoader renderer.TextureLoader
	shaderLoaders []*renderer.ShaderLoader
	hud           hud.HUD
	directories   resource.DirectoryManager
}

// NewSimpleSetup builds and wires every module. Nothing runs until Engine().Start() is called.
//
// The frame, the renderer and the input device are registered on the engine in that order, so all
// three phases reach them in that order. The renderer draws the scene through an ExtRenderingView,
// loads the textures of its scene when it initializes, and draws the HUD after the scene. Pressing
// escape or closing the frame stops the engine.
//
// Parameters:
//   - title: the frame title
//   - options: functional options
//
// Returns:
//   - *SimpleSetup: the assembled setup
func NewSimpleSetup(title string, options ...SimpleSetupBuilderOption) *SimpleSetup {
	s := &SimpleSetup{
		mu:       &sync.Mutex{},
		title:    title,
		tickRate: 60,
		dotFile:  DefaultDotFile,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(os.Stdout, nil))
	}

	s.build()
	s.register()
	s.wire()
	return s
}

func (s *SimpleSetup) build() {
	s.engine = engine.NewEngine(
		engine.WithLogger(s.logger),
		engine.WithTickRate(s.tickRate),
		engine.WithProfiling(s.profile),
	)

	if s.frame == nil {
		frameOptions := []window.WindowBuilderOption{
			window.WithTitle(s.title),
			window.WithWidth(DefaultWidth),
			window.WithHeight(DefaultHeight),
			window.WithDepth(DefaultDepth),
			window.WithLogger(s.logger),
		}
		if s.headless {
			s.frame = window.NewHeadlessWindow(frameOptions...)
		} else {
			s.frame = window.NewWindow(frameOptions...)
		}
	}
	s.viewport = display.NewViewport(s.frame)

	if s.backend == nil && s.headless {
		s.backend = renderer.NewHeadlessBackend()
	}
	rendererOptions := []renderer.RendererBuilderOption{renderer.WithLogger(s.logger)}
	if s.backend != nil {
		rendererOptions = append(rendererOptions, renderer.WithBackend(s.backend))
	}
	s.renderer = renderer.NewRenderer(s.viewport, rendererOptions...)
	s.backend = s.renderer.Backend()

	s.input = input.NewInput(s.frame, input.WithLogger(s.logger))

	root := scene.NewSceneNode("Scene")
	root.AddNode(scene.NewDirectionalLightNode())
	s.scene = root

	s.camera = camera.NewCamera(camera.NewInterpolatedViewingVolume(camera.NewViewingVolume()))
	s.frustum = camera.NewFrustum(s.camera)
	s.renderingView = renderer.NewExtRenderingView(s.viewport)
	s.textureLoader = renderer.NewTextureLoader(s.renderer)
	s.hud = hud.NewHUD()
	s.directories = resource.NewDirectoryManager(s.dataDirs...)
}

func (s *SimpleSetup) register() {
	for _, m := range []engine.Module{s.frame, s.renderer, s.input} {
		if err := s.engine.RegisterModule(m); err != nil {
			panic(fmt.Sprintf("failed to register module: %v", err))
		}
	}
}

func (s *SimpleSetup) wire() {
	s.renderer.ProcessEvent().Attach(s.renderingView)
	s.renderer.SetSceneRoot(s.scene)
	s.viewport.SetViewingVolume(s.frustum)
	s.frustumBound = true
	s.renderer.InitializeEvent().Attach(renderer.NewTextureLoadOnInit(s.textureLoader))
	s.input.KeyEvent().Attach(&quitHandler{engine: s.engine})
	s.renderer.PostProcessEvent().Attach(s.hud)
	s.frame.SetCloseCallback(s.engine.Stop)
}

// quitHandler stops the engine when escape is reported.
type quitHandler struct {
	engine engine.Engine
}

var _ event.Listener[input.KeyboardEventArg] = &quitHandler{}

func (q *quitHandler) Handle(arg input.KeyboardEventArg) {
	if arg.Sym == common.KeyEscape {
		q.engine.Stop()
	}
}

// Engine returns the engine. It cannot be replaced.
func (s *SimpleSetup) Engine() engine.Engine {
	return s.engine
}

// Frame returns the display surface. With WithHeadless it is a window.HeadlessWindow.
func (s *SimpleSetup) Frame() window.Window {
	return s.frame
}

// Renderer returns the renderer.
func (s *SimpleSetup) Renderer() renderer.Renderer {
	return s.renderer
}

// Mouse returns the pointing device.
func (s *SimpleSetup) Mouse() input.Mouse {
	return s.input
}

// Keyboard returns the keyboard.
func (s *SimpleSetup) Keyboard() input.Keyboard {
	return s.input
}

// Joystick returns the joystick.
func (s *SimpleSetup) Joystick() input.Joystick {
	return s.input
}

// Scene returns the active scene root.
func (s *SimpleSetup) Scene() scene.Node {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scene
}

// Camera returns the active camera.
func (s *SimpleSetup) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

// HUD returns the overlay.
func (s *SimpleSetup) HUD() hud.HUD {
	return s.hud
}

// Title returns the title passed to NewSimpleSetup.
func (s *SimpleSetup) Title() string {
	return s.title
}

// Viewport returns the single viewport. It is never replaced, only rebound.
func (s *SimpleSetup) Viewport() display.Viewport {
	return s.viewport
}

// Frustum returns the frustum owned by the setup. After SetCameraVolume it is no longer bound to
// the viewport; see FrustumBound.
func (s *SimpleSetup) Frustum() camera.Frustum {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frustum
}

// FrustumBound reports whether the viewport renders through Frustum.
func (s *SimpleSetup) FrustumBound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frustumBound
}

// RenderingView returns the view attached to the renderer Process phase.
func (s *SimpleSetup) RenderingView() *renderer.ExtRenderingView {
	return s.renderingView
}

// TextureLoader returns the texture loader bound to the renderer.
func (s *SimpleSetup) TextureLoader() renderer.TextureLoader {
	return s.textureLoader
}

// ShaderLoaders returns the shader loaders installed by SetScene, oldest first. Every call to
// SetScene adds one and none is ever removed.
func (s *SimpleSetup) ShaderLoaders() []*renderer.ShaderLoader {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*renderer.ShaderLoader, len(s.shaderLoaders))
	copy(out, s.shaderLoaders)
	return out
}

// DirectoryManager returns the resource search path. Pass it to resource.WithDirectoryManager to
// resolve relative file names against the directories added with AddDataDirectory.
func (s *SimpleSetup) DirectoryManager() resource.DirectoryManager {
	return s.directories
}

// Logger returns the logger shared by every module.
func (s *SimpleSetup) Logger() *slog.Logger {
	return s.logger
}

// AddDataDirectory appends dir to the resource search path.
//
// Parameters:
//   - dir: the directory
func (s *SimpleSetup) AddDataDirectory(dir string) {
	s.directories.AppendPath(dir)
}

// NewTextureFile creates a file texture whose relative path resolves through the setup's data
// directories, including directories added after this call.
//
// Parameters:
//   - path: the image file
//   - options: further texture options
//
// Returns:
//   - resource.Texture: the texture
func (s *SimpleSetup) NewTextureFile(path string, options ...resource.TextureBuilderOption) resource.Texture {
	opts := append([]resource.TextureBuilderOption{resource.WithDirectoryManager(s.directories)}, options...)
	return resource.NewTextureFile(path, opts...)
}

// NewShaderFile creates a WGSL file shader resolved through the setup's data directories.
func (s *SimpleSetup) NewShaderFile(path string, options ...resource.ShaderBuilderOption) resource.Shader {
	opts := append([]resource.ShaderBuilderOption{resource.WithShaderDirectoryManager(s.directories)}, options...)
	return resource.NewShaderFile(path, opts...)
}

// SetCamera makes cam the active camera. The current frustum is destroyed and a new one wrapping
// cam is bound to the viewport. cam stays owned by the caller.
//
// Parameters:
//   - cam: the new camera
func (s *SimpleSetup) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera = cam
	s.frustum.Destroy()
	s.frustum = camera.NewFrustum(cam)
	s.viewport.SetViewingVolume(s.frustum)
	s.frustumBound = true
}

// SetCameraVolume wraps volume in a new camera and binds that camera to the viewport directly.
// No frustum is created or destroyed: the current one is kept but no longer follows the view.
// volume stays owned by the caller.
//
// Parameters:
//   - volume: the viewing volume
func (s *SimpleSetup) SetCameraVolume(volume camera.ViewingVolume) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera = camera.NewCamera(volume)
	s.viewport.SetViewingVolume(s.camera)
	s.frustumBound = false
}

// SetScene makes root the active scene. Its textures are loaded before SetScene returns, and a new
// shader loader for root is attached to the engine Initialize phase. The previous scene is left
// untouched.
//
// Parameters:
//   - root: the new scene root, owned by the caller
func (s *SimpleSetup) SetScene(root scene.Node) {
	s.mu.Lock()
	s.scene = root
	s.mu.Unlock()

	s.renderer.SetSceneRoot(root)
	if err := s.textureLoader.Load(root); err != nil {
		s.logger.Error("scene texture load failed", "error", err)
	}

	loader := renderer.NewShaderLoader(s.textureLoader, root)
	s.engine.InitializeEvent().Attach(loader)

	s.mu.Lock()
	s.shaderLoaders = append(s.shaderLoaders, loader)
	s.mu.Unlock()
}

// EnableDebugging turns on frustum visualization, adds the frustum node to the active scene and
// writes the scene graph in DOT format. Every call adds the node again. A file error is logged and
// does not undo the other two steps.
func (s *SimpleSetup) EnableDebugging() {
	s.mu.Lock()
	frustum, root, bound := s.frustum, s.scene, s.frustumBound
	s.mu.Unlock()

	if !bound {
		s.logger.Warn("frustum is not bound to the viewport, visualizing the previous camera")
	}
	frustum.VisualizeClipping(true)
	root.AddNode(frustum.FrustumNode())

	if err := s.writeDot(root); err != nil {
		s.logger.Error("can not write scene graph", "file", s.dotFile, "error", err)
		return
	}
	s.logger.Info("saved scene graph", "file", s.dotFile)
	s.logger.Info("to create an SVG image run: dot -Tsvg " + s.dotFile + " > " + svgName(s.dotFile))
}

func (s *SimpleSetup) writeDot(root scene.Node) error {
	f, err := os.Create(s.dotFile)
	if err != nil {
		return err
	}
	if err := scene.WriteDot(root, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func svgName(dotFile string) string {
	return strings.TrimSuffix(dotFile, filepath.Ext(dotFile)) + ".svg"
}
