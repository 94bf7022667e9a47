package window

import (
	"sync"

	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/common"
	"github.com/OpenEngineDK/branches-templatecanvas-SetupHelpers/engine"
	"github.com/cogentcore/webgpu/wgpu"
)

// HeadlessWindow is a Window without a platform surface. Input is injected with the Simulate
// methods, which invoke the installed callbacks synchronously.
type HeadlessWindow interface {
	Window

	// SimulateKeyDown reports a key press.
	//
	// Parameters:
	//   - key: the pressed key
	SimulateKeyDown(key common.Key)

	// SimulateKeyUp reports a key release.
	//
	// Parameters:
	//   - key: the released key
	SimulateKeyUp(key common.Key)

	// SimulateMouseMove reports a cursor move.
	//
	// Parameters:
	//   - x, y: the new cursor position
	SimulateMouseMove(x, y int32)

	// SimulateMouseButton reports a button press or release at the last cursor position.
	//
	// Parameters:
	//   - button: the button
	//   - pressed: true for press, false for release
	SimulateMouseButton(button common.MouseButton, pressed bool)

	// SimulateScroll reports a scroll wheel step.
	//
	// Parameters:
	//   - delta: vertical scroll delta
	SimulateScroll(delta float32)

	// SimulateResize changes the client size and reports it.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	SimulateResize(width, height int)

	// SimulateJoystick connects a joystick with the given state, or disconnects it when state is nil.
	//
	// Parameters:
	//   - state: the joystick snapshot returned by later JoystickState calls
	SimulateJoystick(state *common.JoystickState)

	// SimulateClose closes the window as if the user clicked the close button.
	SimulateClose()

	// Polls returns how many Process ticks the window has handled.
	//
	// Returns:
	//   - int: the number of HandleProcess calls while open
	Polls() int
}

type headlessWindow struct {
	callbacks

	mu       *sync.Mutex
	title    string
	width    int
	height   int
	depth    int
	running  bool
	closed   bool
	polls    int
	cursor   [2]int32
	joystick *common.JoystickState
}

var _ HeadlessWindow = &headlessWindow{}

// NewHeadlessWindow creates a HeadlessWindow. It accepts the same options as NewWindow;
// options without meaning off-screen are ignored.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - HeadlessWindow: the window
func NewHeadlessWindow(options ...WindowBuilderOption) HeadlessWindow {
	cfg := NewWindow(options...).(*engineWindow)
	return &headlessWindow{
		mu:     &sync.Mutex{},
		title:  cfg.title,
		width:  cfg.width,
		height: cfg.height,
		depth:  cfg.depth,
	}
}

func (h *headlessWindow) HandleInitialize(_ engine.InitializeEventArg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = !h.closed
}

func (h *headlessWindow) HandleProcess(_ engine.ProcessEventArg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		h.polls++
	}
}

func (h *headlessWindow) HandleDeinitialize(_ engine.DeinitializeEventArg) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.running = false
}

func (h *headlessWindow) Title() string {
	return h.title
}

func (h *headlessWindow) Width() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.width
}

func (h *headlessWindow) Height() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.height
}

func (h *headlessWindow) Depth() int {
	return h.depth
}

func (h *headlessWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return nil
}

func (h *headlessWindow) JoystickState() (common.JoystickState, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.joystick == nil {
		return common.JoystickState{}, false
	}
	return *h.joystick, true
}

func (h *headlessWindow) IsRunning() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.running
}

func (h *headlessWindow) Polls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.polls
}

func (h *headlessWindow) SimulateKeyDown(key common.Key) {
	h.keyDown(key)
}

func (h *headlessWindow) SimulateKeyUp(key common.Key) {
	h.keyUp(key)
}

func (h *headlessWindow) SimulateMouseMove(x, y int32) {
	h.mu.Lock()
	h.cursor = [2]int32{x, y}
	h.mu.Unlock()
	h.mouseMove(x, y)
}

func (h *headlessWindow) SimulateMouseButton(button common.MouseButton, pressed bool) {
	h.mu.Lock()
	c := h.cursor
	h.mu.Unlock()
	h.mouseButton(button, pressed, c[0], c[1])
}

func (h *headlessWindow) SimulateScroll(delta float32) {
	h.scroll(delta)
}

func (h *headlessWindow) SimulateResize(width, height int) {
	h.mu.Lock()
	h.width = width
	h.height = height
	h.mu.Unlock()
	h.resize(width, height)
}

func (h *headlessWindow) SimulateJoystick(state *common.JoystickState) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if state == nil {
		h.joystick = nil
		return
	}
	cp := common.JoystickState{
		Name:    state.Name,
		Axes:    append([]float32(nil), state.Axes...),
		Buttons: append([]bool(nil), state.Buttons...),
	}
	h.joystick = &cp
}

func (h *headlessWindow) SimulateClose() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.closed = true
	h.running = false
	h.mu.Unlock()
	h.close()
}
