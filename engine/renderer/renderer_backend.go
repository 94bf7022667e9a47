package renderer

import (
	"image"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/light"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/model"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer/pipeline"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/scene"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// MSAASampleCount controls the number of samples used for multisample anti-aliasing (MSAA).
// WebGPU guarantees support for 1 (off) and 4.
type MSAASampleCount uint32

const (
	// MSAAOff disables multisample anti-aliasing (sample count 1).
	MSAAOff MSAASampleCount = 1

	// MSAA4x enables 4x multisample anti-aliasing. This is the default.
	MSAA4x MSAASampleCount = 4
)

// FrameState is the per-frame data shared by every draw: the camera and the scene light.
type FrameState struct {
	ViewProjection common.Mat4
	CameraPosition [3]float32
	// Light is the first enabled directional light of the scene, packed for upload.
	Light light.GPULight
}

// DrawCommand is one draw submitted to the renderer. Exactly one of Model or Lines is set.
type DrawCommand struct {
	// Name identifies the draw in logs and recordings.
	Name string
	// Model is the indexed mesh to draw.
	Model model.Model
	// Lines are world-space segments drawn unlit with Color.
	Lines []scene.Line
	// Transform is the model matrix.
	Transform common.Mat4
	// Color multiplies the texture, or is the flat color when Texture is nil.
	Color [4]float32
	// Texture is sampled by the shader when set.
	Texture resource.Texture
	// Shader replaces the built-in mesh shader when set.
	Shader resource.Shader
}

// RendererBackend is the GPU API behind a Renderer. All methods are called on the engine goroutine.
type RendererBackend interface {
	// Init creates the device and the surface for frame. Failure is fatal to the renderer.
	//
	// Parameters:
	//   - frame: the window to render into
	//
	// Returns:
	//   - error: an error if the GPU could not be set up
	Init(frame window.Window) error

	// Resize reconfigures the surface and depth buffer.
	//
	// Parameters:
	//   - width, height: the new surface size in pixels
	Resize(width, height int)

	// SetPresentMode selects how frames are presented. Takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: VSync or Uncapped
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the frame is cleared to.
	//
	// Parameters:
	//   - c: RGBA in [0, 1]
	SetClearColor(c [4]float32)

	// RegisterPipeline compiles p.
	//
	// Parameters:
	//   - p: the pipeline description
	//
	// Returns:
	//   - error: an error if the shader or pipeline failed to compile
	RegisterPipeline(p pipeline.Pipeline) error

	// UploadTexture copies a loaded texture to the GPU. Uploading the same texture twice is a no-op.
	//
	// Parameters:
	//   - t: a texture whose Load has succeeded
	//
	// Returns:
	//   - error: an error if the GPU texture could not be created
	UploadTexture(t resource.Texture) error

	// BeginFrame acquires the next surface image and begins the main render pass.
	//
	// Parameters:
	//   - state: the per-frame uniforms
	//
	// Returns:
	//   - error: an error if no surface image is available this frame
	BeginFrame(state FrameState) error

	// Draw encodes one draw with p in the current render pass.
	//
	// Parameters:
	//   - p: a registered pipeline
	//   - cmd: the draw
	//
	// Returns:
	//   - error: an error if the draw could not be encoded
	Draw(p pipeline.Pipeline, cmd DrawCommand) error

	// DrawOverlay blends img over the whole frame with p.
	//
	// Parameters:
	//   - p: the registered overlay pipeline
	//   - img: an RGBA image the size of the frame
	//
	// Returns:
	//   - error: an error if the overlay could not be uploaded
	DrawOverlay(p pipeline.Pipeline, img *image.RGBA) error

	// EndFrame ends the render pass and submits the frame's commands.
	EndFrame()

	// Present shows the submitted frame.
	Present()

	// Release frees every GPU object. The backend may be initialized again afterwards.
	Release()
}
