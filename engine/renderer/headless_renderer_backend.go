package renderer

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/renderer/pipeline"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/resource"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine/window"
)

// RecordedDraw is one draw captured by a HeadlessBackend.
type RecordedDraw struct {
	Pipeline string
	Command  DrawCommand
}

// HeadlessBackend is a RendererBackend without a GPU. It validates and records what the renderer
// submits so the rest of the engine can run on machines with no display.
type HeadlessBackend struct {
	mu *sync.Mutex

	initialized bool
	frameOpen   bool
	frames      int
	releases    int
	width       int
	height      int
	presentMode PresentMode
	clearColor  [4]float32

	pipelines []string
	textures  []string
	uploaded  map[resource.Texture]bool
	draws     []RecordedDraw
	lastDraws []RecordedDraw
	overlays  int
	lastState FrameState
}

var _ RendererBackend = &HeadlessBackend{}

// NewHeadlessBackend creates a HeadlessBackend.
//
// Returns:
//   - *HeadlessBackend: the backend
func NewHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{
		mu:       &sync.Mutex{},
		uploaded: make(map[resource.Texture]bool),
	}
}

func (h *HeadlessBackend) Init(frame window.Window) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return errors.New("backend already initialized")
	}
	h.initialized = true
	h.width, h.height = frame.Width(), frame.Height()
	return nil
}

func (h *HeadlessBackend) Resize(width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	h.width, h.height = width, height
}

func (h *HeadlessBackend) SetPresentMode(mode PresentMode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.presentMode = mode
}

func (h *HeadlessBackend) SetClearColor(c [4]float32) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clearColor = c
}

func (h *HeadlessBackend) RegisterPipeline(p pipeline.Pipeline) error {
	s := p.Shader()
	if s == nil {
		return fmt.Errorf("pipeline %s has no shader", p.PipelineKey())
	}
	if err := s.Load(); err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return errors.New("backend not initialized")
	}
	h.pipelines = append(h.pipelines, p.PipelineKey())
	return nil
}

func (h *HeadlessBackend) UploadTexture(t resource.Texture) error {
	if !t.Loaded() {
		return fmt.Errorf("texture %s is not loaded", t.Name())
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return errors.New("backend not initialized")
	}
	if h.uploaded[t] {
		return nil
	}
	h.uploaded[t] = true
	h.textures = append(h.textures, t.Name())
	return nil
}

func (h *HeadlessBackend) BeginFrame(state FrameState) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.initialized {
		return errors.New("backend not initialized")
	}
	if h.frameOpen {
		return errors.New("previous frame not ended")
	}
	h.frameOpen = true
	h.lastState = state
	h.draws = nil
	return nil
}

func (h *HeadlessBackend) Draw(p pipeline.Pipeline, cmd DrawCommand) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.frameOpen {
		return ErrNoFrame
	}
	h.draws = append(h.draws, RecordedDraw{Pipeline: p.PipelineKey(), Command: cmd})
	return nil
}

func (h *HeadlessBackend) DrawOverlay(p pipeline.Pipeline, img *image.RGBA) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.frameOpen {
		return ErrNoFrame
	}
	if p == nil {
		return errors.New("overlay pipeline is not registered")
	}
	h.overlays++
	return nil
}

func (h *HeadlessBackend) EndFrame() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.frameOpen {
		return
	}
	h.frameOpen = false
	h.frames++
	h.lastDraws = h.draws
	h.draws = nil
}

func (h *HeadlessBackend) Present() {}

func (h *HeadlessBackend) Release() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.initialized = false
	h.frameOpen = false
	h.releases++
	h.pipelines = nil
	clear(h.uploaded)
}

// Initialized reports whether Init has run without a matching Release.
func (h *HeadlessBackend) Initialized() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.initialized
}

// Frames returns how many frames have been ended.
func (h *HeadlessBackend) Frames() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frames
}

// Releases returns how many times Release has been called.
func (h *HeadlessBackend) Releases() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.releases
}

// Pipelines returns the keys of the registered pipelines in registration order.
func (h *HeadlessBackend) Pipelines() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.pipelines...)
}

// Textures returns the names of every texture uploaded, in upload order.
func (h *HeadlessBackend) Textures() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.textures...)
}

// Draws returns the draws of the last ended frame.
func (h *HeadlessBackend) Draws() []RecordedDraw {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]RecordedDraw(nil), h.lastDraws...)
}

// Overlays returns how many overlays have been drawn.
func (h *HeadlessBackend) Overlays() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.overlays
}

// LastFrameState returns the uniforms passed to the last BeginFrame.
func (h *HeadlessBackend) LastFrameState() FrameState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastState
}

// Size returns the current surface size.
func (h *HeadlessBackend) Size() (width, height int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width, h.height
}

// PresentMode returns the selected present mode.
func (h *HeadlessBackend) PresentMode() PresentMode {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presentMode
}

// ClearColor returns the selected clear color.
func (h *HeadlessBackend) ClearColor() [4]float32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.clearColor
}
