package renderer

import (
	"image"
	"io"
	"log/slog"
	"runtime"
	"testing"
	"time"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/camera"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/display"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/model"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer/shader"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testRig struct {
	frame    window.HeadlessWindow
	viewport display.Viewport
	backend  *HeadlessBackend
	renderer Renderer
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	frame := window.NewHeadlessWindow()
	frame.HandleInitialize(engine.InitializeEventArg{})
	vp := display.NewViewport(frame)
	hb := NewHeadlessBackend()
	r := NewRenderer(vp,
		WithBackend(hb),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return &testRig{frame: frame, viewport: vp, backend: hb, renderer: r}
}

func (rig *testRig) frameTick(n uint64) {
	rig.renderer.HandleProcess(engine.ProcessEventArg{DeltaTime: 0.016, Frame: n})
}

func imageTexture(name string) resource.Texture {
	return resource.NewTextureImage(name, image.NewRGBA(image.Rect(0, 0, 2, 2)))
}

func testShader(name string, textures ...resource.Texture) resource.Shader {
	return resource.NewShaderSource(name, "@vertex fn vs_main() {} @fragment fn fs_main() {}", resource.WithShaderTextures(textures...))
}

func TestRenderer_PhaseOrder(t *testing.T) {
	rig := newTestRig(t)
	r := rig.renderer

	var log []string
	record := func(name string) func(RenderingEventArg) {
		return func(arg RenderingEventArg) {
			assert.Same(t, r, arg.Renderer)
			log = append(log, name)
		}
	}
	r.InitializeEvent().AttachFunc(record("init"))
	r.PreProcessEvent().AttachFunc(record("pre"))
	r.ProcessEvent().AttachFunc(record("process"))
	r.PostProcessEvent().AttachFunc(record("post"))
	r.DeinitializeEvent().AttachFunc(record("deinit"))

	r.HandleInitialize(engine.InitializeEventArg{})
	assert.True(t, rig.backend.Initialized())
	rig.frameTick(0)
	rig.frameTick(1)
	r.HandleDeinitialize(engine.DeinitializeEventArg{})

	assert.Equal(t, []string{
		"init",
		"pre", "process", "post",
		"pre", "process", "post",
		"deinit",
	}, log)
	assert.Equal(t, 2, rig.backend.Frames())
	assert.Equal(t, 1, rig.backend.Releases())
	assert.False(t, rig.backend.Initialized())
}

func TestRenderer_BuiltinPipelines(t *testing.T) {
	rig := newTestRig(t)
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})

	assert.Equal(t, []string{MeshPipelineKey, LinesPipelineKey, OverlayPipelineKey}, rig.backend.Pipelines())
	require.NotNil(t, rig.renderer.Pipeline(OverlayPipelineKey))
	assert.True(t, rig.renderer.Pipeline(OverlayPipelineKey).BlendEnabled())
	assert.False(t, rig.renderer.Pipeline(OverlayPipelineKey).DepthTestEnabled())
}

func TestRenderer_ProcessBeforeInitializeIsIgnored(t *testing.T) {
	rig := newTestRig(t)
	fired := 0
	rig.renderer.ProcessEvent().AttachFunc(func(RenderingEventArg) { fired++ })

	rig.frameTick(0)
	assert.Zero(t, fired)
	assert.Zero(t, rig.backend.Frames())
}

func TestRenderer_DrawOutsideFrame(t *testing.T) {
	rig := newTestRig(t)
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})

	err := rig.renderer.Draw(DrawCommand{Model: model.NewCube("cube", 1)})
	assert.ErrorIs(t, err, ErrNoFrame)
	assert.ErrorIs(t, rig.renderer.DrawOverlay(image.NewRGBA(image.Rect(0, 0, 1, 1))), ErrNoFrame)
}

func TestRenderer_TexturesQueuedUntilInitialize(t *testing.T) {
	rig := newTestRig(t)
	tex := imageTexture("grass")

	require.NoError(t, rig.renderer.LoadTexture(tex))
	assert.True(t, tex.Loaded())
	assert.False(t, rig.renderer.TextureUploaded(tex))
	assert.Empty(t, rig.backend.Textures())

	rig.renderer.HandleInitialize(engine.InitializeEventArg{})
	assert.True(t, rig.renderer.TextureUploaded(tex))
	assert.Equal(t, []string{"grass"}, rig.backend.Textures())

	require.NoError(t, rig.renderer.LoadTexture(tex))
	assert.Equal(t, []string{"grass"}, rig.backend.Textures())
}

func TestRenderer_LoadTextureReportsDecodeErrors(t *testing.T) {
	rig := newTestRig(t)
	err := rig.renderer.LoadTexture(resource.NewTextureFile("does-not-exist.png"))
	assert.ErrorContains(t, err, "does-not-exist.png")
}

func TestRenderer_ShadersQueuedUntilInitialize(t *testing.T) {
	rig := newTestRig(t)
	s := testShader("toon")

	require.NoError(t, rig.renderer.LoadShader(s))
	assert.NotContains(t, rig.backend.Pipelines(), "shader:toon")

	rig.renderer.HandleInitialize(engine.InitializeEventArg{})
	assert.Contains(t, rig.backend.Pipelines(), "shader:toon")

	require.NoError(t, rig.renderer.LoadShader(s))
	count := 0
	for _, key := range rig.backend.Pipelines() {
		if key == "shader:toon" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestRenderer_LoadShaderRejectsMissingEntryPoint(t *testing.T) {
	rig := newTestRig(t)
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})

	err := rig.renderer.LoadShader(resource.NewShaderSource("broken", "fn vs_main() {}"))
	assert.Error(t, err)
	assert.Nil(t, rig.renderer.Pipeline("shader:broken"))
}

func TestRenderer_LoadShaderChecksResourceInterface(t *testing.T) {
	rig := newTestRig(t)
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})

	unannotated := resource.NewShaderSource("plain", "fn vs_main() {} fn fs_main() {}")
	err := rig.renderer.LoadShader(unannotated)
	assert.ErrorIs(t, err, shader.ErrEntryPointNotAnnotated)

	mismatched := resource.NewShaderSource("storage", `
@group(1) @binding(0) var<storage, read> objects: array<vec4<f32>>;
@vertex fn vs_main() {}
@fragment fn fs_main() {}
`)
	err = rig.renderer.LoadShader(mismatched)
	assert.ErrorIs(t, err, shader.ErrBindingMismatch)
	assert.Nil(t, rig.renderer.Pipeline("shader:storage"))

	compatible := resource.NewShaderSource("tinted", `
@group(0) @binding(0) var<uniform> frame: Frame;
@group(2) @binding(0) var base_texture: texture_2d<f32>;
@vertex fn vs_main() {}
@fragment fn fs_main() {}
`)
	require.NoError(t, rig.renderer.LoadShader(compatible))
	assert.NotNil(t, rig.renderer.Pipeline("shader:tinted"))
}

func TestRenderer_DrawRouting(t *testing.T) {
	rig := newTestRig(t)
	tex := imageTexture("bricks")

	root := scene.NewSceneNode("root")
	root.AddNode(scene.NewGeometryNode("plain", model.NewCube("cube", 1), nil))
	root.AddNode(scene.NewGeometryNode("toon", model.NewCube("cube2", 1), &scene.Material{
		Color:   [4]float32{1, 0, 0, 1},
		Texture: tex,
		Shader:  testShader("toon"),
	}))
	lines := scene.NewLineNode("axes")
	lines.AddLine([3]float32{0, 0, 0}, [3]float32{1, 0, 0})
	root.AddNode(lines)
	root.AddNode(scene.NewLineNode("empty"))

	rig.renderer.SetSceneRoot(root)
	view := NewRenderingView(rig.viewport)
	rig.renderer.ProcessEvent().Attach(view)

	rig.renderer.HandleInitialize(engine.InitializeEventArg{})
	rig.frameTick(0)

	draws := rig.backend.Draws()
	require.Len(t, draws, 3)
	assert.Equal(t, MeshPipelineKey, draws[0].Pipeline)
	assert.Equal(t, "shader:toon", draws[1].Pipeline)
	assert.Equal(t, LinesPipelineKey, draws[2].Pipeline)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, draws[1].Command.Color)
	assert.True(t, rig.renderer.TextureUploaded(tex))

	stats := view.Stats()
	assert.Equal(t, 3, stats.Drawn)
	assert.NoError(t, stats.Err)
}

func TestRenderer_FrameStateCarriesCameraAndLight(t *testing.T) {
	rig := newTestRig(t)
	vv := camera.NewViewingVolume(camera.WithPosition(0, 2, 5))
	rig.viewport.SetViewingVolume(vv)

	root := scene.NewSceneNode("root")
	root.AddNode(scene.NewDirectionalLightNode())
	rig.renderer.SetSceneRoot(root)

	rig.renderer.HandleInitialize(engine.InitializeEventArg{})
	rig.frameTick(0)

	state := rig.backend.LastFrameState()
	assert.Equal(t, [3]float32{0, 2, 5}, state.CameraPosition)
	assert.Equal(t, vv.ViewProjectionMatrix(), state.ViewProjection)
	assert.InDelta(t, float32(800)/600, vv.Aspect(), 1e-6)
	assert.Equal(t, float32(1), state.Light.Enabled)
}

func TestRenderer_ResizeIsAppliedOnNextFrame(t *testing.T) {
	rig := newTestRig(t)
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})

	rig.frame.SimulateResize(1024, 768)
	w, h := rig.backend.Size()
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, h)

	rig.frameTick(0)
	w, h = rig.backend.Size()
	assert.Equal(t, 1024, w)
	assert.Equal(t, 768, h)
}

func TestRenderer_Options(t *testing.T) {
	frame := window.NewHeadlessWindow()
	hb := NewHeadlessBackend()
	r := NewRenderer(display.NewViewport(frame),
		WithBackend(hb),
		WithPresentMode(PresentModeVSync),
		WithClearColor(0, 0, 1, 1),
	)
	assert.Same(t, hb, r.Backend())
	assert.Equal(t, PresentModeVSync, hb.PresentMode())
	assert.Equal(t, [4]float32{0, 0, 1, 1}, hb.ClearColor())

	r.SetClearColor(1, 1, 1, 1)
	assert.Equal(t, [4]float32{1, 1, 1, 1}, hb.ClearColor())
}

func TestExtRenderingView_CullsGeometryOutsideTheVolume(t *testing.T) {
	rig := newTestRig(t)
	rig.viewport.SetViewingVolume(camera.NewViewingVolume())

	root := scene.NewSceneNode("root")
	front := scene.NewTransformationNode("front", scene.WithPosition(0, 0, -5))
	front.AddNode(scene.NewGeometryNode("visible", model.NewCube("a", 1), nil))
	behind := scene.NewTransformationNode("behind", scene.WithPosition(0, 0, 10))
	behind.AddNode(scene.NewGeometryNode("hidden", model.NewCube("b", 1), nil))
	lines := scene.NewLineNode("far lines")
	lines.AddLine([3]float32{0, 0, 50}, [3]float32{0, 0, 60})
	root.AddNode(front)
	root.AddNode(behind)
	root.AddNode(lines)
	rig.renderer.SetSceneRoot(root)

	view := NewExtRenderingView(rig.viewport)
	assert.Same(t, rig.viewport, view.Viewport())
	rig.renderer.ProcessEvent().Attach(view)
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})
	rig.frameTick(0)

	draws := rig.backend.Draws()
	require.Len(t, draws, 2)
	assert.Equal(t, "visible", draws[0].Command.Name)
	assert.Equal(t, "far lines", draws[1].Command.Name)

	stats := view.Stats()
	assert.Equal(t, 3, stats.Collected)
	assert.Equal(t, 1, stats.Culled)
	assert.Equal(t, 2, stats.Drawn)
}

func TestExtRenderingView_OffersCulling(t *testing.T) {
	rig := newTestRig(t)
	rig.viewport.SetViewingVolume(camera.NewViewingVolume())

	root := scene.NewSceneNode("root")
	front := scene.NewTransformationNode("front", scene.WithPosition(0, 0, -5))
	front.AddNode(scene.NewGeometryNode("visible", model.NewCube("a", 1), nil))
	behind := scene.NewTransformationNode("behind", scene.WithPosition(0, 0, 10))
	behind.AddNode(scene.NewGeometryNode("hidden", model.NewCube("b", 1), nil))
	root.AddNode(front)
	root.AddNode(behind)

	var view AcceleratedRenderingView = NewExtRenderingView(rig.viewport)
	items, culled := view.Cull(root)
	require.Len(t, items, 1)
	assert.Equal(t, "visible", items[0].Node.Name())
	assert.Equal(t, 1, culled)
	assert.Len(t, view.Collect(root), 2)
}

func TestAcceleratedRenderingView_NoVolumeKeepsEverything(t *testing.T) {
	rig := newTestRig(t)
	root := scene.NewSceneNode("root")
	behind := scene.NewTransformationNode("behind", scene.WithPosition(0, 0, 10))
	behind.AddNode(scene.NewGeometryNode("hidden", model.NewCube("b", 1), nil))
	root.AddNode(behind)

	items, culled := NewAcceleratedRenderingView(rig.viewport).Cull(root)
	assert.Len(t, items, 1)
	assert.Zero(t, culled)
}

func TestTextureLoader_LoadDecodesAndQueues(t *testing.T) {
	rig := newTestRig(t)
	a, b := imageTexture("a"), imageTexture("b")
	missing := resource.NewTextureFile("missing.png")

	root := scene.NewSceneNode("root")
	root.AddNode(scene.NewGeometryNode("a", model.NewCube("a", 1), &scene.Material{Texture: a}))
	root.AddNode(scene.NewGeometryNode("b", model.NewCube("b", 1), &scene.Material{Texture: b}))
	root.AddNode(scene.NewGeometryNode("m", model.NewCube("m", 1), &scene.Material{Texture: missing}))

	tl := NewTextureLoader(rig.renderer)
	assert.Same(t, rig.renderer, tl.Renderer())

	err := tl.Load(root)
	require.Error(t, err)
	assert.ErrorContains(t, err, "missing.png")

	assert.True(t, a.Loaded())
	assert.True(t, b.Loaded())
	assert.True(t, tl.Loaded(a))
	assert.True(t, tl.Loaded(b))
	assert.False(t, tl.Loaded(missing))
	assert.Empty(t, rig.backend.Textures())

	rig.renderer.HandleInitialize(engine.InitializeEventArg{})
	assert.ElementsMatch(t, []string{"a", "b"}, rig.backend.Textures())
}

func TestTextureLoader_LoadReleasesDecodeWorkers(t *testing.T) {
	rig := newTestRig(t)
	tl := NewTextureLoader(rig.renderer)
	before := runtime.NumGoroutine()

	root := scene.NewSceneNode("root")
	root.AddNode(scene.NewGeometryNode("a", model.NewCube("a", 1), &scene.Material{Texture: imageTexture("a")}))
	require.NoError(t, tl.Load(root))

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before
	}, time.Second, 10*time.Millisecond)
}

func TestTextureLoader_LoadNilScene(t *testing.T) {
	rig := newTestRig(t)
	assert.NoError(t, NewTextureLoader(rig.renderer).Load(nil))
}

func TestTextureLoadOnInit_UploadsBoundScene(t *testing.T) {
	rig := newTestRig(t)
	tex := imageTexture("sky")
	root := scene.NewSceneNode("root")
	root.AddNode(scene.NewGeometryNode("dome", model.NewCube("dome", 1), &scene.Material{Texture: tex}))
	rig.renderer.SetSceneRoot(root)

	tl := NewTextureLoader(rig.renderer)
	rig.renderer.InitializeEvent().Attach(NewTextureLoadOnInit(tl))
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})

	assert.True(t, tl.Loaded(tex))
	assert.True(t, rig.renderer.TextureUploaded(tex))
}

func TestShaderLoader_CompilesShadersAndTheirTextures(t *testing.T) {
	rig := newTestRig(t)
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})

	noise := imageTexture("noise")
	root := scene.NewSceneNode("root")
	root.AddNode(scene.NewGeometryNode("water", model.NewCube("water", 1), &scene.Material{Shader: testShader("water", noise)}))

	sl := NewShaderLoader(NewTextureLoader(rig.renderer), root)
	assert.Same(t, root, sl.Root())
	sl.Handle(engine.InitializeEventArg{})

	assert.NoError(t, sl.Err())
	assert.Equal(t, 1, sl.Loaded())
	assert.Contains(t, rig.backend.Pipelines(), "shader:water")
	assert.True(t, rig.renderer.TextureUploaded(noise))
}

func TestShaderLoader_KeepsErrors(t *testing.T) {
	rig := newTestRig(t)
	rig.renderer.HandleInitialize(engine.InitializeEventArg{})

	root := scene.NewSceneNode("root")
	root.AddNode(scene.NewGeometryNode("bad", model.NewCube("bad", 1), &scene.Material{
		Shader: resource.NewShaderSource("bad", "fn main() {}"),
	}))

	sl := NewShaderLoader(NewTextureLoader(rig.renderer), root)
	sl.Handle(engine.InitializeEventArg{})
	assert.Error(t, sl.Err())
	assert.Zero(t, sl.Loaded())
}

func TestGPUTypes_Sizes(t *testing.T) {
	assert.Len(t, FrameState{}.Marshal(), frameUniformSize)

	obj := marshalObject([16]float32{}, [4]float32{1, 1, 1, 1}, true)
	assert.Len(t, obj, objectUniformSize)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, obj[84:88])
	assert.LessOrEqual(t, objectUniformSize, objectStride)
	assert.Contains(t, meshShaderSource, "fn vs_main")
	assert.Contains(t, overlayShaderSource, "fn fs_main")
}
