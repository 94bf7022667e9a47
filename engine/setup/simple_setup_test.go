package setup

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/camera"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/model"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHeadlessSetup(t *testing.T, options ...SimpleSetupBuilderOption) *SimpleSetup {
	t.Helper()
	opts := append([]SimpleSetupBuilderOption{
		WithHeadless(true),
		WithTickRate(10000),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithDotFile(filepath.Join(t.TempDir(), "scene.dot")),
	}, options...)
	return NewSimpleSetup("test", opts...)
}

func headlessFrame(t *testing.T, s *SimpleSetup) window.HeadlessWindow {
	t.Helper()
	frame, ok := s.Frame().(window.HeadlessWindow)
	require.True(t, ok, "frame should be headless")
	return frame
}

func headlessBackend(t *testing.T, s *SimpleSetup) *renderer.HeadlessBackend {
	t.Helper()
	hb, ok := s.Renderer().Backend().(*renderer.HeadlessBackend)
	require.True(t, ok, "backend should be headless")
	return hb
}

func texturedCube(name string, tex resource.Texture, sh resource.Shader) *scene.GeometryNode {
	return scene.NewGeometryNode(name, model.NewCube(name, 1), &scene.Material{
		Color:   [4]float32{1, 1, 1, 1},
		Texture: tex,
		Shader:  sh,
	})
}

func TestSimpleSetup_Defaults(t *testing.T) {
	s := newHeadlessSetup(t)

	assert.Equal(t, "test", s.Title())
	assert.Equal(t, "test", s.Frame().Title())
	assert.Equal(t, DefaultWidth, s.Frame().Width())
	assert.Equal(t, DefaultHeight, s.Frame().Height())
	assert.Equal(t, DefaultDepth, s.Frame().Depth())

	assert.Same(t, s.Scene(), s.Renderer().SceneRoot())
	children := s.Scene().Children()
	require.Len(t, children, 1)
	assert.IsType(t, &scene.DirectionalLightNode{}, children[0])

	assert.Same(t, s.Frustum(), s.Viewport().ViewingVolume())
	assert.Same(t, s.Camera(), s.Frustum().Camera())
	assert.True(t, s.FrustumBound())
	assert.Implements(t, (*camera.InterpolatedViewingVolume)(nil), s.Camera().Volume())

	assert.Same(t, s.Viewport(), s.RenderingView().Viewport())
	assert.Same(t, s.Renderer(), s.TextureLoader().Renderer())
	assert.Empty(t, s.ShaderLoaders())
	assert.NotNil(t, s.HUD())
	assert.NotNil(t, s.Logger())

	assert.Equal(t, 1, s.Renderer().ProcessEvent().Size())
	assert.Equal(t, 1, s.Renderer().InitializeEvent().Size())
	assert.Equal(t, 1, s.Renderer().PostProcessEvent().Size())
	assert.Equal(t, 1, s.Keyboard().KeyEvent().Size())
}

func TestSimpleSetup_InputAccessorsShareOneDevice(t *testing.T) {
	s := newHeadlessSetup(t)
	assert.Same(t, s.Keyboard(), s.Mouse())
	assert.Same(t, s.Mouse(), s.Joystick())
}

func TestSimpleSetup_ModulesRegisteredInOrder(t *testing.T) {
	s := newHeadlessSetup(t)

	regs := s.Engine().Registrations()
	require.Len(t, regs, 3)
	assert.Same(t, s.Frame(), regs[0].Module)
	assert.Same(t, s.Renderer(), regs[1].Module)
	assert.Equal(t, s.Keyboard(), regs[2].Module)
	for _, r := range regs {
		assert.Equal(t, []engine.Phase{engine.PhaseInitialize, engine.PhaseProcess, engine.PhaseDeinitialize}, r.Phases)
	}

	assert.ErrorIs(t, s.Engine().RegisterModule(s.Renderer()), engine.ErrModuleRegistered)
}

func TestSimpleSetup_InitializeReachesModulesInOrder(t *testing.T) {
	s := newHeadlessSetup(t)
	frame := headlessFrame(t, s)
	hb := headlessBackend(t, s)

	var order []string
	s.Renderer().InitializeEvent().AttachFunc(func(renderer.RenderingEventArg) {
		assert.True(t, frame.IsRunning(), "frame initializes before the renderer")
		order = append(order, "renderer")
	})
	s.Engine().InitializeEvent().AttachFunc(func(engine.InitializeEventArg) {
		assert.True(t, hb.Initialized())
		order = append(order, "listener")
	})

	s.Engine().InitializeEvent().Notify(engine.InitializeEventArg{})
	assert.Equal(t, []string{"renderer", "listener"}, order)
}

func TestSimpleSetup_EscapeStopsEngine(t *testing.T) {
	s := newHeadlessSetup(t)
	frame := headlessFrame(t, s)

	frame.SimulateKeyDown(common.KeySpace)
	s.Engine().ProcessEvent().Notify(engine.ProcessEventArg{})
	assert.Equal(t, 0, s.Engine().StopRequests())

	frame.SimulateKeyDown(common.KeyEscape)
	s.Engine().ProcessEvent().Notify(engine.ProcessEventArg{Frame: 1})
	assert.Equal(t, 1, s.Engine().StopRequests())
}

func TestSimpleSetup_CloseStopsEngine(t *testing.T) {
	s := newHeadlessSetup(t)
	headlessFrame(t, s).SimulateClose()
	assert.Equal(t, 1, s.Engine().StopRequests())
}

func TestSimpleSetup_SetCameraRebindsFrustum(t *testing.T) {
	s := newHeadlessSetup(t)

	var previous []camera.Frustum
	var cam camera.Camera
	for i := 0; i < 3; i++ {
		previous = append(previous, s.Frustum())
		cam = camera.NewCamera(camera.NewViewingVolume(camera.WithPosition(float32(i), 0, 5)))
		s.SetCamera(cam)
	}

	assert.Same(t, cam, s.Camera())
	assert.Same(t, cam, s.Frustum().Camera())
	assert.Same(t, s.Frustum(), s.Viewport().ViewingVolume())
	assert.True(t, s.FrustumBound())
	assert.False(t, s.Frustum().Destroyed())
	for _, f := range previous {
		assert.True(t, f.Destroyed())
		assert.NotSame(t, f, s.Frustum())
	}
}

func TestSimpleSetup_SetCameraKeepsCallerCamera(t *testing.T) {
	s := newHeadlessSetup(t)
	first := camera.NewCamera(camera.NewViewingVolume(camera.WithPosition(1, 2, 3)))
	s.SetCamera(first)
	s.SetCamera(camera.NewCamera(camera.NewViewingVolume()))

	assert.Equal(t, [3]float32{1, 2, 3}, first.Position())
	first.Move(1, 0, 0)
	assert.NotEqual(t, [3]float32{1, 2, 3}, first.Position())
}

func TestSimpleSetup_SetCameraVolumeBindsBareCamera(t *testing.T) {
	s := newHeadlessSetup(t)
	frustum := s.Frustum()

	volume := camera.NewViewingVolume(camera.WithPosition(0, 0, 10))
	s.SetCameraVolume(volume)

	assert.Same(t, volume, s.Camera().Volume())
	assert.Same(t, s.Camera(), s.Viewport().ViewingVolume())
	assert.Same(t, frustum, s.Frustum())
	assert.False(t, frustum.Destroyed())
	assert.False(t, s.FrustumBound())

	cam := camera.NewCamera(camera.NewViewingVolume())
	s.SetCamera(cam)
	assert.True(t, frustum.Destroyed())
	assert.True(t, s.FrustumBound())
	assert.Same(t, s.Frustum(), s.Viewport().ViewingVolume())
}

func TestSimpleSetup_SetSceneLoadsTexturesImmediately(t *testing.T) {
	s := newHeadlessSetup(t)
	old := s.Scene()

	tex := resource.NewTextureImage("crate", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	sampled := resource.NewTextureImage("noise", image.NewRGBA(image.Rect(0, 0, 2, 2)))
	shader := resource.NewShaderSource("toon", "@vertex fn vs_main() {} @fragment fn fs_main() {}", resource.WithShaderTextures(sampled))
	root := scene.NewSceneNode("level")
	root.AddNode(texturedCube("box", tex, shader))

	s.SetScene(root)

	assert.Same(t, root, s.Scene())
	assert.Same(t, root, s.Renderer().SceneRoot())
	assert.True(t, s.TextureLoader().Loaded(tex))
	assert.True(t, s.TextureLoader().Loaded(sampled))
	require.Len(t, s.ShaderLoaders(), 1)
	assert.Same(t, root, s.ShaderLoaders()[0].Root())

	assert.Len(t, old.Children(), 1, "previous scene is left intact")
}

func TestSimpleSetup_SetSceneAccumulatesShaderLoaders(t *testing.T) {
	s := newHeadlessSetup(t)
	listeners := s.Engine().InitializeEvent().Size()

	for i := 0; i < 3; i++ {
		s.SetScene(scene.NewSceneNode("scene"))
	}

	assert.Len(t, s.ShaderLoaders(), 3)
	assert.Equal(t, listeners+3, s.Engine().InitializeEvent().Size())
}

func TestSimpleSetup_SetSceneLogsTextureErrors(t *testing.T) {
	var logs bytes.Buffer
	s := newHeadlessSetup(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))

	root := scene.NewSceneNode("broken")
	root.AddNode(texturedCube("box", resource.NewTextureFile(filepath.Join(t.TempDir(), "missing.png")), nil))
	s.SetScene(root)

	assert.Same(t, root, s.Scene())
	assert.Contains(t, logs.String(), "scene texture load failed")
	assert.Contains(t, logs.String(), "missing.png")
	assert.Len(t, s.ShaderLoaders(), 1)
}

func TestSimpleSetup_EnableDebugging(t *testing.T) {
	var logs bytes.Buffer
	dotFile := filepath.Join(t.TempDir(), "scene.dot")
	s := newHeadlessSetup(t,
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithDotFile(dotFile),
	)

	s.EnableDebugging()

	assert.True(t, s.Frustum().IsVisualizingClipping())
	children := s.Scene().Children()
	require.Len(t, children, 2)
	assert.Same(t, s.Frustum().FrustumNode(), children[1])
	assert.NotEmpty(t, s.Frustum().FrustumNode().Lines())

	data, err := os.ReadFile(dotFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "digraph")
	assert.Contains(t, logs.String(), "saved scene graph")
	assert.Contains(t, logs.String(), "scene.svg")
}

func TestSimpleSetup_EnableDebuggingTwiceAddsTwoNodes(t *testing.T) {
	s := newHeadlessSetup(t)

	s.EnableDebugging()
	s.EnableDebugging()

	count := 0
	for _, c := range s.Scene().Children() {
		if c == scene.Node(s.Frustum().FrustumNode()) {
			count++
		}
	}
	assert.Equal(t, 2, count)
}

func TestSimpleSetup_EnableDebuggingReportsFileErrors(t *testing.T) {
	var logs bytes.Buffer
	s := newHeadlessSetup(t,
		WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		WithDotFile(filepath.Join(t.TempDir(), "missing", "scene.dot")),
	)

	assert.NotPanics(t, s.EnableDebugging)

	assert.True(t, s.Frustum().IsVisualizingClipping())
	assert.Len(t, s.Scene().Children(), 2)
	assert.Contains(t, logs.String(), "level=ERROR")
	assert.Contains(t, logs.String(), "can not write scene graph")
}

func TestSimpleSetup_EnableDebuggingWarnsWhenFrustumUnbound(t *testing.T) {
	var logs bytes.Buffer
	s := newHeadlessSetup(t, WithLogger(slog.New(slog.NewTextHandler(&logs, nil))))
	s.SetCameraVolume(camera.NewViewingVolume())

	s.EnableDebugging()

	assert.Contains(t, logs.String(), "level=WARN")
	assert.Contains(t, logs.String(), "frustum is not bound")
}

func TestSimpleSetup_DataDirectories(t *testing.T) {
	assets := t.TempDir()
	extra := t.TempDir()
	s := newHeadlessSetup(t, WithDataDirectories(assets))

	s.AddDataDirectory(extra)
	s.AddDataDirectory(extra)

	assert.Equal(t, []string{filepath.Clean(assets), filepath.Clean(extra)}, s.DirectoryManager().Paths())

	require.NoError(t, os.WriteFile(filepath.Join(extra, "tile.png"), []byte("x"), 0o644))
	found, err := s.DirectoryManager().FindFileInPath("tile.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(extra, "tile.png"), found)
}

func TestSimpleSetup_FileResourcesUseDataDirectories(t *testing.T) {
	s := newHeadlessSetup(t)
	tex := s.NewTextureFile("tile.png")
	sh := s.NewShaderFile("toon.wgsl")
	require.Error(t, tex.Load())

	assets := t.TempDir()
	f, err := os.Create(filepath.Join(assets, "tile.png"))
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	require.NoError(t, f.Close())
	require.NoError(t, os.WriteFile(filepath.Join(assets, "toon.wgsl"), []byte("@vertex fn vs_main() {} @fragment fn fs_main() {}"), 0o644))

	s.AddDataDirectory(assets)

	require.NoError(t, tex.Load())
	assert.Equal(t, 2, tex.Width())
	require.NoError(t, sh.Load())
	assert.Contains(t, sh.Source(), "vs_main")
}

func TestSimpleSetup_CustomWindowAndBackend(t *testing.T) {
	frame := window.NewHeadlessWindow(window.WithTitle("custom"), window.WithWidth(320), window.WithHeight(200))
	hb := renderer.NewHeadlessBackend()
	s := NewSimpleSetup("ignored",
		WithWindow(frame),
		WithRendererBackend(hb),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)

	assert.Same(t, frame, s.Frame())
	assert.Same(t, hb, s.Renderer().Backend())
	assert.Same(t, frame, s.Viewport().Frame())
	assert.Equal(t, "custom", s.Frame().Title())
	assert.Equal(t, "ignored", s.Title())
}

func TestSimpleSetup_RunsHeadless(t *testing.T) {
	s := newHeadlessSetup(t)
	hb := headlessBackend(t, s)

	tex := resource.NewTextureImage("crate", image.NewRGBA(image.Rect(0, 0, 4, 4)))
	shader := resource.NewShaderSource("toon", "@vertex fn vs_main() {} @fragment fn fs_main() {}")
	root := scene.NewSceneNode("level")
	front := scene.NewTransformationNode("front", scene.WithPosition(0, 0, -5))
	front.AddNode(texturedCube("visible", tex, shader))
	behind := scene.NewTransformationNode("behind", scene.WithPosition(0, 0, 20))
	behind.AddNode(texturedCube("hidden", nil, nil))
	root.AddNode(front)
	root.AddNode(behind)
	s.SetScene(root)

	label := s.HUD().CreateSurface(64, 16)
	label.DrawText(0, 0, "fps")

	var livePipelines []string
	s.Engine().ProcessEvent().AttachFunc(func(arg engine.ProcessEventArg) {
		if arg.Frame >= 2 {
			livePipelines = hb.Pipelines()
			s.Engine().Stop()
		}
	})
	s.Engine().Start()

	assert.Equal(t, 3, hb.Frames())
	assert.Equal(t, 1, hb.Releases())
	assert.Equal(t, 3, hb.Overlays())
	assert.Contains(t, livePipelines, "shader:toon")
	assert.Empty(t, hb.Pipelines(), "deinitialize releases the backend pipelines")
	assert.Contains(t, hb.Textures(), "crate")
	assert.NoError(t, s.ShaderLoaders()[0].Err())
	assert.Equal(t, 1, s.ShaderLoaders()[0].Loaded())

	stats := s.RenderingView().Stats()
	assert.Equal(t, 2, stats.Collected)
	assert.Equal(t, 1, stats.Culled)
	assert.Equal(t, 1, stats.Drawn)
	draws := hb.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, "visible", draws[0].Command.Name)
	assert.Equal(t, "shader:toon", draws[0].Pipeline)
}
